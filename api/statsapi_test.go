package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gitstats/git-stats/cfg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newGithubStub dựng GitHub API giả với một user có vài repo và lịch
// contribution. Trả cùng một server cho cả REST lẫn GraphQL.
func newGithubStub(t *testing.T) *httptest.Server {
	t.Helper()

	today := time.Now().UTC().Format("2006-01-02")
	yesterday := time.Now().UTC().AddDate(0, 0, -1).Format("2006-01-02")

	mux := http.NewServeMux()
	mux.HandleFunc("/users/octocat", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"login":"octocat","avatar_url":"https://example.com/a.png","html_url":"https://github.com/octocat","followers":120,"following":9,"public_repos":8}`)
	})
	mux.HandleFunc("/users/octocat/repos", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"id":1,"name":"hello","language":"Go"},{"id":2,"name":"world","language":"Go"},{"id":3,"name":"site","language":"TypeScript"}]`)
	})
	mux.HandleFunc("/users/octocat/events", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"id":"1","type":"PullRequestEvent","repo":{"id":9,"name":"other/lib","private":false},"payload":{"action":"closed","pull_request":{"merged":true}}}]`)
	})
	mux.HandleFunc("/graphql", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Query string `json:"query"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		if strings.Contains(req.Query, "weeks") {
			fmt.Fprintf(w, `{"data":{"user":{"contributionsCollection":{"contributionCalendar":{
				"totalContributions":500,
				"weeks":[{"contributionDays":[
					{"contributionCount":3,"date":%q},
					{"contributionCount":5,"date":%q}
				]}]}}}}}`, yesterday, today)
			return
		}
		fmt.Fprint(w, `{"data":{"user":{"contributionsCollection":{"contributionCalendar":{"totalContributions":500}}}}}`)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newTestConfig(github *httptest.Server, gatewayUrl string) *cfg.Config {
	loader, _ := cfg.NewMockLoader()
	config, _ := loader.Load()

	config.GithubApi.ApiUrl = github.URL
	config.GithubApi.GraphqlUrl = github.URL + "/graphql"
	config.GithubApi.RequestsPerSecond = 10000
	// Một năm duy nhất là đủ cho test, không cần đi hết từ epoch
	config.Stats.EpochYear = time.Now().Year()
	config.Gateway.BaseUrl = gatewayUrl
	// Không broker: bỏ qua khâu Kafka
	config.Kafka.Brokers = nil
	return config
}

func initStatsAPI(t *testing.T, config *cfg.Config) *StatsAPI {
	t.Helper()
	statsAPI := NewStatsAPI()
	require.NoError(t, statsAPI.Initialize(context.Background(), &cfg.MockLoader{Config: config}))
	return statsAPI
}

func TestFetchBuildsProfileAndForwards(t *testing.T) {
	github := newGithubStub(t)

	var leaderboardCalls, incrementCalls atomic.Int64
	gatewayMux := http.NewServeMux()
	gatewayMux.HandleFunc("/api/update-leaderboard", func(w http.ResponseWriter, r *http.Request) {
		leaderboardCalls.Add(1)
		fmt.Fprint(w, `{"topContributions":{"username":"octocat","contributions":500},"topFollowers":{"username":"octocat","followers":120}}`)
	})
	gatewayMux.HandleFunc("/api/increment-user", func(w http.ResponseWriter, r *http.Request) {
		incrementCalls.Add(1)
		fmt.Fprint(w, `{"totalUsers":7}`)
	})
	gatewayServer := httptest.NewServer(gatewayMux)
	defer gatewayServer.Close()

	statsAPI := initStatsAPI(t, newTestConfig(github, gatewayServer.URL))

	profile, err := statsAPI.Fetch(context.Background(), "octocat")
	require.NoError(t, err)

	assert.Equal(t, "octocat", profile.Login)
	assert.Equal(t, 500, profile.LifetimeContributions)
	assert.Equal(t, 2, profile.CurrentStreak)
	assert.Equal(t, 1, profile.OpenSourceContributions)
	assert.Equal(t, []string{"Go", "TypeScript"}, profile.TopLanguages(2))

	assert.Equal(t, int64(1), leaderboardCalls.Load())
	assert.Equal(t, int64(1), incrementCalls.Load())

	fetchStats, err := statsAPI.GetFetchStats()
	require.NoError(t, err)
	assert.Equal(t, int64(7), fetchStats.TotalUsers)
	assert.Empty(t, fetchStats.GatewayError)

	assert.Same(t, profile, statsAPI.Profile())
}

func TestFetchKeepsProfileWhenGatewayFails(t *testing.T) {
	github := newGithubStub(t)

	gatewayServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer gatewayServer.Close()

	statsAPI := initStatsAPI(t, newTestConfig(github, gatewayServer.URL))

	// Gateway chết không được làm mất profile đã tính xong
	profile, err := statsAPI.Fetch(context.Background(), "octocat")
	require.NoError(t, err)
	assert.Equal(t, "octocat", profile.Login)

	fetchStats, err := statsAPI.GetFetchStats()
	require.NoError(t, err)
	assert.Contains(t, fetchStats.GatewayError, "update-leaderboard")
}

func TestFetchUnknownUser(t *testing.T) {
	github := newGithubStub(t)

	statsAPI := initStatsAPI(t, newTestConfig(github, "http://127.0.0.1:1"))

	_, err := statsAPI.Fetch(context.Background(), "ghost")
	require.Error(t, err)
}

func TestStartFetchSupersedesPreviousRun(t *testing.T) {
	today := time.Now().UTC().Format("2006-01-02")

	mux := http.NewServeMux()
	// slowuser treo cho tới khi request bị huỷ
	mux.HandleFunc("/users/slowuser", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
		fmt.Fprint(w, `{"login":"slowuser"}`)
	})
	// newuser trả lời chậm vừa đủ để phiên cũ kịp kết thúc trước
	mux.HandleFunc("/users/newuser", func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(400 * time.Millisecond)
		fmt.Fprint(w, `{"login":"newuser","followers":5}`)
	})
	mux.HandleFunc("/users/newuser/repos", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[]`)
	})
	mux.HandleFunc("/users/newuser/events", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[]`)
	})
	mux.HandleFunc("/graphql", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"data":{"user":{"contributionsCollection":{"contributionCalendar":{
			"totalContributions":9,
			"weeks":[{"contributionDays":[{"contributionCount":9,"date":%q}]}]}}}}}`, today)
	})
	github := httptest.NewServer(mux)
	defer github.Close()

	gatewayServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"totalUsers":1,"topContributions":{},"topFollowers":{}}`)
	}))
	defer gatewayServer.Close()

	statsAPI := initStatsAPI(t, newTestConfig(github, gatewayServer.URL))

	_, err := statsAPI.StartFetch("slowuser")
	require.NoError(t, err)
	time.Sleep(50 * time.Millisecond)

	// Phiên mới huỷ phiên cũ; goroutine cũ kết thúc với context canceled
	// trong lúc newuser vẫn đang chạy
	_, err = statsAPI.StartFetch("newuser")
	require.NoError(t, err)
	time.Sleep(200 * time.Millisecond)

	fetchStats, err := statsAPI.GetFetchStats()
	require.NoError(t, err)
	assert.Equal(t, "newuser", fetchStats.Username)
	assert.True(t, fetchStats.IsRunning)
	assert.Empty(t, fetchStats.LastError)

	require.Eventually(t, func() bool {
		fetchStats, err := statsAPI.GetFetchStats()
		return err == nil && !fetchStats.IsRunning
	}, 5*time.Second, 10*time.Millisecond)

	fetchStats, err = statsAPI.GetFetchStats()
	require.NoError(t, err)
	assert.Equal(t, "newuser", fetchStats.Username)
	assert.Empty(t, fetchStats.LastError)
	assert.Equal(t, "newuser", statsAPI.Profile().Login)
}

func TestStartFetchRunsInBackground(t *testing.T) {
	github := newGithubStub(t)

	gatewayServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"totalUsers":1,"topContributions":{},"topFollowers":{}}`)
	}))
	defer gatewayServer.Close()

	statsAPI := initStatsAPI(t, newTestConfig(github, gatewayServer.URL))

	_, err := statsAPI.StartFetch("")
	require.Error(t, err)

	message, err := statsAPI.StartFetch("octocat")
	require.NoError(t, err)
	assert.Contains(t, message, "octocat")

	require.Eventually(t, func() bool {
		fetchStats, err := statsAPI.GetFetchStats()
		return err == nil && !fetchStats.IsRunning
	}, 5*time.Second, 10*time.Millisecond)

	fetchStats, err := statsAPI.GetFetchStats()
	require.NoError(t, err)
	assert.Empty(t, fetchStats.LastError)
	assert.Equal(t, "octocat", statsAPI.Profile().Login)
}
