package ui

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gitstats/git-stats/cfg"
	"github.com/gitstats/git-stats/internal/model"
	"github.com/gitstats/git-stats/pkg/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestMux(t *testing.T) (*http.ServeMux, *gorm.DB) {
	t.Helper()

	gormDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, gormDB.AutoMigrate(
		&model.LeaderboardEntry{},
		&model.UserCounter{},
		&model.SharedBanner{},
		&model.RecentUser{},
	))

	loader, _ := cfg.NewMockLoader()
	config, err := loader.Load()
	require.NoError(t, err)

	logger, _ := log.NewCslLogger()
	handler, err := NewHandler(logger, config, gormDB)
	require.NoError(t, err)

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)
	return mux, gormDB
}

func doJSON(t *testing.T, mux *http.ServeMux, method, path, body string, out interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	recorder := httptest.NewRecorder()
	mux.ServeHTTP(recorder, req)
	if out != nil && recorder.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), out))
	}
	return recorder
}

func TestUpdateLeaderboardReturnsSnapshot(t *testing.T) {
	mux, _ := newTestMux(t)

	snapshot := leaderboardSnapshot{}
	recorder := doJSON(t, mux, http.MethodPost, "/api/update-leaderboard",
		`{"username":"octocat","contributions":1500,"followers":40,"avatar_url":"https://example.com/a.png"}`, &snapshot)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "octocat", snapshot.TopContributions.Username)

	// Người đóng góp nhiều hơn chiếm vị trí dẫn đầu về contribution,
	// octocat vẫn dẫn đầu về follower
	recorder = doJSON(t, mux, http.MethodPost, "/api/update-leaderboard",
		`{"username":"torvalds","contributions":99999,"followers":10}`, &snapshot)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "torvalds", snapshot.TopContributions.Username)
	assert.Equal(t, 99999, snapshot.TopContributions.Contributions)
	assert.Equal(t, "octocat", snapshot.TopFollowers.Username)

	// Cập nhật lại cùng username là upsert, không thêm dòng mới
	recorder = doJSON(t, mux, http.MethodPost, "/api/update-leaderboard",
		`{"username":"octocat","contributions":2000,"followers":41}`, &snapshot)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "torvalds", snapshot.TopContributions.Username)
	assert.Equal(t, 41, snapshot.TopFollowers.Followers)
}

func TestUpdateLeaderboardRejectsBadRequests(t *testing.T) {
	mux, _ := newTestMux(t)

	recorder := doJSON(t, mux, http.MethodGet, "/api/update-leaderboard", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, recorder.Code)

	recorder = doJSON(t, mux, http.MethodPost, "/api/update-leaderboard", `{"contributions":5}`, nil)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestUserCountIncrementsMonotonically(t *testing.T) {
	mux, _ := newTestMux(t)

	count := userCountResponse{}
	recorder := doJSON(t, mux, http.MethodGet, "/api/user-count", "", &count)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, int64(0), count.TotalUsers)

	recorder = doJSON(t, mux, http.MethodPost, "/api/increment-user", "", &count)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, int64(1), count.TotalUsers)

	recorder = doJSON(t, mux, http.MethodPost, "/api/increment-user", "", &count)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, int64(2), count.TotalUsers)

	recorder = doJSON(t, mux, http.MethodGet, "/api/user-count", "", &count)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, int64(2), count.TotalUsers)
}

func TestIncrementReturnsStoredTotal(t *testing.T) {
	mux, gormDB := newTestMux(t)

	count := userCountResponse{}
	recorder := doJSON(t, mux, http.MethodPost, "/api/increment-user", "", &count)
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Equal(t, int64(1), count.TotalUsers)

	// Một writer khác (consumer, instance thứ hai) đẩy bộ đếm lên 40
	require.NoError(t, gormDB.Model(&model.UserCounter{}).
		Where("name = ?", model.CounterTotalUsers).
		UpdateColumn("total", 40).Error)

	// Tổng trả về phải là giá trị đã lưu sau khi cộng, không phải
	// giá trị đọc trước đó cộng một
	recorder = doJSON(t, mux, http.MethodPost, "/api/increment-user", "", &count)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, int64(41), count.TotalUsers)

	stored := userCountResponse{}
	recorder = doJSON(t, mux, http.MethodGet, "/api/user-count", "", &stored)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, count.TotalUsers, stored.TotalUsers)
}

func TestSharedBannerRoundTrip(t *testing.T) {
	mux, _ := newTestMux(t)

	recorder := doJSON(t, mux, http.MethodPost, "/api/save-shared-banner",
		`{"username":"octocat","imageUrl":"https://img.example.com/x.png","userData":{"login":"octocat","followers":42}}`, nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	shared := sharedUserResponse{}
	recorder = doJSON(t, mux, http.MethodGet, "/api/user/octocat", "", &shared)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "octocat", shared.Username)
	assert.Equal(t, "https://img.example.com/x.png", shared.ImageUrl)
	assert.JSONEq(t, `{"login":"octocat","followers":42}`, string(shared.UserData))

	recorder = doJSON(t, mux, http.MethodGet, "/api/user/nobody", "", nil)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestSharePageRendersTwitterCard(t *testing.T) {
	mux, _ := newTestMux(t)

	recorder := doJSON(t, mux, http.MethodGet, "/share/octocat?imageUrl=https://img.example.com/x.png", "", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	body := recorder.Body.String()
	assert.Contains(t, body, `name="twitter:card"`)
	assert.Contains(t, body, "octocat")
	assert.Contains(t, body, "https://img.example.com/x.png")

	// Không có imageUrl và cũng không có banner đã lưu
	recorder = doJSON(t, mux, http.MethodGet, "/share/nobody", "", nil)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestRecentUsersStrip(t *testing.T) {
	mux, _ := newTestMux(t)

	doJSON(t, mux, http.MethodPost, "/api/update-leaderboard", `{"username":"alpha","contributions":1,"followers":1}`, nil)
	doJSON(t, mux, http.MethodPost, "/api/update-leaderboard", `{"username":"beta","contributions":2,"followers":2}`, nil)

	var recent []recentUserResponse
	recorder := doJSON(t, mux, http.MethodGet, "/api/recent-users", "", &recent)
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Len(t, recent, 2)

	usernames := []string{recent[0].Username, recent[1].Username}
	assert.Contains(t, usernames, "alpha")
	assert.Contains(t, usernames, "beta")

	recent = nil
	recorder = doJSON(t, mux, http.MethodGet, "/api/recent-users?limit=1", "", &recent)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Len(t, recent, 1)
}
