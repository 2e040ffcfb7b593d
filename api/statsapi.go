// Gói api cung cấp facade public để tương tác với pipeline tổng hợp
package api

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gitstats/git-stats/cfg"
	"github.com/gitstats/git-stats/internal/gateway"
	"github.com/gitstats/git-stats/internal/githubapi"
	"github.com/gitstats/git-stats/internal/model"
	"github.com/gitstats/git-stats/internal/stats"
	"github.com/gitstats/git-stats/pkg/kafka"
	"github.com/gitstats/git-stats/pkg/log"
)

// FetchStats chứa thống kê về lần fetch gần nhất
type FetchStats struct {
	Username     string    `json:"username"`
	IsRunning    bool      `json:"isRunning"`
	StartTime    time.Time `json:"startTime"`
	Duration     string    `json:"duration"`
	LastError    string    `json:"lastError"`
	GatewayError string    `json:"gatewayError"`
	TotalUsers   int64     `json:"totalUsers"`
}

// StatsAPI cung cấp các thao tác fetch profile và chuyển tiếp kết quả
// sang dịch vụ persistence
type StatsAPI struct {
	ctx        context.Context
	config     *cfg.Config
	logger     log.Logger
	aggregator *stats.Aggregator
	gateway    *gateway.Client
	producer   *kafka.Producer

	fetchStatsMu sync.RWMutex
	fetching     bool
	fetchStats   *FetchStats
	lastProfile  *stats.Profile
	cancelFetch  context.CancelFunc
}

// NewStatsAPI tạo một instance mới của StatsAPI
func NewStatsAPI() *StatsAPI {
	return &StatsAPI{
		fetchStats: &FetchStats{},
	}
}

// Initialize khởi tạo các thành phần cần thiết cho pipeline.
// Loader được truyền vào để test dùng được mock config.
func (a *StatsAPI) Initialize(ctx context.Context, loader cfg.Loader) error {
	a.ctx = ctx

	var err error
	a.config, err = loader.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	a.logger, err = log.NewCslLogger()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	caller, err := githubapi.NewCaller(a.logger, a.config)
	if err != nil {
		return fmt.Errorf("failed to create github caller: %w", err)
	}

	a.aggregator, err = stats.NewAggregator(a.logger, a.config, caller)
	if err != nil {
		return fmt.Errorf("failed to create aggregator: %w", err)
	}

	a.gateway, err = gateway.NewClient(a.logger, a.config)
	if err != nil {
		return fmt.Errorf("failed to create gateway client: %w", err)
	}

	// Kafka là tuỳ chọn: không cấu hình broker thì bỏ qua khâu publish
	if len(a.config.Kafka.Brokers) > 0 {
		a.producer = kafka.NewProducer(a.config, a.logger, a.config.Kafka.ProfileTopic)
	}

	return nil
}

// StartFetch bắt đầu một phiên fetch cho username.
// Phiên fetch cũ còn chạy sẽ bị huỷ: fetch mới nhất luôn thắng.
func (a *StatsAPI) StartFetch(username string) (string, error) {
	if username == "" {
		return "", errors.New("username is required")
	}

	a.fetchStatsMu.Lock()
	if a.cancelFetch != nil {
		a.cancelFetch()
	}

	timeout := time.Duration(a.config.Stats.FetchTimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	fetchCtx, cancel := context.WithTimeout(a.ctx, timeout)
	a.cancelFetch = cancel
	a.fetching = true
	runStats := &FetchStats{
		Username:  username,
		IsRunning: true,
		StartTime: time.Now(),
	}
	a.fetchStats = runStats
	a.fetchStatsMu.Unlock()

	go a.runFetch(fetchCtx, cancel, username, runStats)

	return "Started fetching stats for " + username, nil
}

// Fetch chạy một phiên fetch đồng bộ và trả về profile
func (a *StatsAPI) Fetch(ctx context.Context, username string) (*stats.Profile, error) {
	profile, err := a.aggregator.Fetch(ctx, username, time.Now())
	if err != nil {
		return nil, err
	}

	a.forwardProfile(ctx, profile)

	a.fetchStatsMu.Lock()
	a.lastProfile = profile
	a.fetchStatsMu.Unlock()

	return profile, nil
}

// runFetch chạy phiên fetch nền. runStats là bản ghi của riêng phiên này:
// phiên đã bị StartFetch thay thế thì chỉ được ghi vào bản ghi cũ của mình,
// không được đụng tới thống kê hay profile của phiên mới.
func (a *StatsAPI) runFetch(ctx context.Context, cancel context.CancelFunc, username string, runStats *FetchStats) {
	defer cancel()

	profile, err := a.aggregator.Fetch(ctx, username, time.Now())

	a.fetchStatsMu.Lock()
	runStats.IsRunning = false
	runStats.Duration = time.Since(runStats.StartTime).String()
	if err != nil {
		runStats.LastError = err.Error()
	}
	if a.fetchStats != runStats {
		a.fetchStatsMu.Unlock()
		return
	}
	a.fetching = false
	if err != nil {
		a.fetchStatsMu.Unlock()
		return
	}
	a.lastProfile = profile
	a.fetchStatsMu.Unlock()

	a.forwardProfile(ctx, profile)
}

// forwardProfile đẩy profile đã hoàn chỉnh sang Kafka và gateway.
// Lỗi ở đây chỉ được ghi nhận, không làm mất profile đã tính xong.
func (a *StatsAPI) forwardProfile(ctx context.Context, profile *stats.Profile) {
	if a.producer != nil {
		message := model.ProfileMessage{
			Username:      profile.Login,
			Contributions: profile.LifetimeContributions,
			Followers:     profile.Followers,
			AvatarUrl:     profile.AvatarUrl,
			Streak:        profile.CurrentStreak,
			OpenSource:    profile.OpenSourceContributions,
		}
		if err := a.producer.Publish(ctx, "profile", message); err != nil {
			a.logger.Error(ctx, "Failed to publish profile to kafka: %v", err)
		}
	}

	if _, err := a.gateway.UpdateLeaderboard(ctx, profile.Login, profile.LifetimeContributions, profile.Followers, profile.AvatarUrl); err != nil {
		a.logger.Error(ctx, "Leaderboard update failed, keeping profile: %v", err)
		a.recordGatewayError(err)
		return
	}

	total, err := a.gateway.IncrementUserCount(ctx)
	if err != nil {
		a.logger.Error(ctx, "User count increment failed, keeping profile: %v", err)
		a.recordGatewayError(err)
		return
	}

	a.fetchStatsMu.Lock()
	a.fetchStats.TotalUsers = total
	a.fetchStatsMu.Unlock()
}

func (a *StatsAPI) recordGatewayError(err error) {
	a.fetchStatsMu.Lock()
	a.fetchStats.GatewayError = err.Error()
	a.fetchStatsMu.Unlock()
}

// GetFetchStats trả thống kê về phiên fetch gần nhất
func (a *StatsAPI) GetFetchStats() (*FetchStats, error) {
	a.fetchStatsMu.RLock()
	defer a.fetchStatsMu.RUnlock()

	if a.fetchStats == nil {
		return &FetchStats{}, nil
	}

	statsCopy := *a.fetchStats
	if statsCopy.IsRunning {
		statsCopy.Duration = time.Since(statsCopy.StartTime).String()
	}
	return &statsCopy, nil
}

// Profile trả profile của lần fetch thành công gần nhất
func (a *StatsAPI) Profile() *stats.Profile {
	a.fetchStatsMu.RLock()
	defer a.fetchStatsMu.RUnlock()
	return a.lastProfile
}
