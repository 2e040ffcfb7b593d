package ui

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gitstats/git-stats/cfg"
	"github.com/gitstats/git-stats/pkg/db"
	"github.com/gitstats/git-stats/pkg/log"
)

// Server represents the persistence service web server
type Server struct {
	Logger log.Logger
	Config *cfg.Config
	MySQL  *db.Mysql
	server *http.Server
	port   int
}

// NewServer creates a new persistence service server
func NewServer(logger log.Logger, config *cfg.Config, mysql *db.Mysql, port int) (*Server, error) {
	return &Server{
		Logger: logger,
		Config: config,
		MySQL:  mysql,
		port:   port,
	}, nil
}

// Start initializes and starts the HTTP server
func (s *Server) Start() error {
	gormDB, err := s.MySQL.Db()
	if err != nil {
		return fmt.Errorf("failed to connect database: %w", err)
	}

	handler, err := NewHandler(s.Logger, s.Config, gormDB)
	if err != nil {
		return fmt.Errorf("failed to create handler: %w", err)
	}

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.Logger.Info(context.Background(), "Starting persistence service on port %d", s.port)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		s.Logger.Info(ctx, "Shutting down persistence service")
		return s.server.Shutdown(ctx)
	}
	return nil
}
