package log

import (
	"context"
	"log"
)

type CslLogger struct{}

func NewCslLogger() (*CslLogger, error) {
	return &CslLogger{}, nil
}

func (l *CslLogger) Info(ctx context.Context, format string, args ...interface{}) {
	log.Printf("[INFO] "+format, args...)
}

func (l *CslLogger) Error(ctx context.Context, format string, args ...interface{}) {
	log.Printf("[ERROR] "+format, args...)
}

func (l *CslLogger) Warn(ctx context.Context, format string, args ...interface{}) {
	log.Printf("[WARN] "+format, args...)
}

func (l *CslLogger) Debug(ctx context.Context, format string, args ...interface{}) {
	log.Printf("[DEBUG] "+format, args...)
}
