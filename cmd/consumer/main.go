package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gitstats/git-stats/cfg"
	"github.com/gitstats/git-stats/internal/model"
	"github.com/gitstats/git-stats/pkg/db"
	"github.com/gitstats/git-stats/pkg/kafka"
	"github.com/gitstats/git-stats/pkg/log"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load configuration
	viperLoader, _ := cfg.NewViperLoader()
	loader, _ := cfg.NewLoader(viperLoader)
	config, err := loader.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger and database
	logger, _ := log.NewCslLogger()
	mysql, _ := db.NewMysql(config)

	entryMd, _ := model.NewLeaderboardEntry(config, logger, mysql)
	if err := mysql.Migrate(entryMd); err != nil {
		logger.Error(ctx, "Failed to migrate database: %v", err)
		os.Exit(1)
	}

	// Consume profile snapshots and keep the leaderboard tables current
	consumer := kafka.NewConsumer(config, logger, config.Kafka.ProfileTopic, config.Kafka.GroupId)
	consumer.RegisterHandler("profile", func(value []byte) error {
		message := model.ProfileMessage{}
		if err := json.Unmarshal(value, &message); err != nil {
			return fmt.Errorf("failed to unmarshal profile message: %w", err)
		}
		return entryMd.UpsertBatch([]model.ProfileMessage{message})
	})

	// Stop on SIGINT/SIGTERM
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		logger.Info(ctx, "Shutting down consumer")
		cancel()
	}()

	if err := consumer.Start(ctx); err != nil {
		logger.Error(ctx, "Consumer failed: %v", err)
		os.Exit(1)
	}
}
