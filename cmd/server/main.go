package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gitstats/git-stats/cfg"
	"github.com/gitstats/git-stats/internal/model"
	"github.com/gitstats/git-stats/internal/ui"
	"github.com/gitstats/git-stats/pkg/db"
	"github.com/gitstats/git-stats/pkg/log"
)

func main() {
	ctx := context.Background()
	viperLoader, _ := cfg.NewViperLoader()
	loader, _ := cfg.NewLoader(viperLoader)
	config, err := loader.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, _ := log.NewCslLogger()
	mysql, _ := db.NewMysql(config)

	// Migrate database
	entryMd, _ := model.NewLeaderboardEntry(config, logger, mysql)
	counterMd, _ := model.NewUserCounter(config, logger, mysql)
	bannerMd, _ := model.NewSharedBanner(config, logger, mysql)
	recentMd, _ := model.NewRecentUser(config, logger, mysql)
	if err := mysql.Migrate(entryMd, counterMd, bannerMd, recentMd); err != nil {
		logger.Error(ctx, "Failed to migrate database: %v", err)
		os.Exit(1)
	}

	server, err := ui.NewServer(logger, config, mysql, config.Server.Port)
	if err != nil {
		logger.Error(ctx, "Failed to create server: %v", err)
		os.Exit(1)
	}

	// Graceful shutdown on SIGINT/SIGTERM
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := server.Stop(shutdownCtx); err != nil {
			logger.Error(ctx, "Failed to stop server: %v", err)
		}
	}()

	if err := server.Start(); err != nil {
		logger.Error(ctx, "Server failed: %v", err)
		os.Exit(1)
	}
}
