package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gitstats/git-stats/cfg"
	"github.com/gitstats/git-stats/internal/gateway"
	"github.com/gitstats/git-stats/internal/githubapi"
	"github.com/gitstats/git-stats/internal/stats"
	"github.com/gitstats/git-stats/pkg/log"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: run <github-username>")
		os.Exit(1)
	}
	username := os.Args[1]

	ctx := context.Background()
	// viperLoader, _ := cfg.NewMockLoader()
	viperLoader, _ := cfg.NewViperLoader()
	loader, _ := cfg.NewLoader(viperLoader)
	config, err := loader.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, _ := log.NewCslLogger()
	caller, _ := githubapi.NewCaller(logger, config)
	aggregator, _ := stats.NewAggregator(logger, config, caller)
	gatewayClient, _ := gateway.NewClient(logger, config)

	//
	logger.Info(ctx, "Fetching GitHub stats for %s", username)
	fetchCtx, cancel := context.WithTimeout(ctx, time.Duration(config.Stats.FetchTimeoutSec)*time.Second)
	defer cancel()

	profile, err := aggregator.Fetch(fetchCtx, username, time.Now())
	if err != nil {
		logger.Error(ctx, "Failed to fetch profile: %v", err)
		os.Exit(1)
	}

	//
	logger.Info(ctx, "Login: %s", profile.Login)
	logger.Info(ctx, "Repos: %d | Followers: %d | Following: %d", profile.PublicRepoCount, profile.Followers, profile.Following)
	logger.Info(ctx, "Lifetime contributions: %d", profile.LifetimeContributions)
	logger.Info(ctx, "Current streak: %d days", profile.CurrentStreak)
	logger.Info(ctx, "Open source contributions: %d", profile.OpenSourceContributions)
	logger.Info(ctx, "Top languages: %s", strings.Join(profile.TopLanguages(3), ", "))
	logger.Info(ctx, "Badges: %s, %s", profile.ContributionBadge, profile.FollowerBadge)

	// Lỗi gateway không làm mất profile đã in ở trên
	snapshot, err := gatewayClient.UpdateLeaderboard(fetchCtx, profile.Login, profile.LifetimeContributions, profile.Followers, profile.AvatarUrl)
	if err != nil {
		logger.Warn(ctx, "Leaderboard update failed: %v", err)
		return
	}
	logger.Info(ctx, "Top contributions: %s (%d), top followers: %s (%d)",
		snapshot.TopContributions.Username, snapshot.TopContributions.Contributions,
		snapshot.TopFollowers.Username, snapshot.TopFollowers.Followers)

	if total, err := gatewayClient.IncrementUserCount(fetchCtx); err != nil {
		logger.Warn(ctx, "User count increment failed: %v", err)
	} else {
		logger.Info(ctx, "Total users: %d", total)
	}
}
