package ui

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gitstats/git-stats/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//
type updateLeaderboardRequest struct {
	Username      string `json:"username"`
	Contributions int    `json:"contributions"`
	Followers     int    `json:"followers"`
	AvatarUrl     string `json:"avatar_url"`
}

type topContribution struct {
	Username      string `json:"username"`
	Contributions int    `json:"contributions"`
}

type topFollower struct {
	Username  string `json:"username"`
	Followers int    `json:"followers"`
}

type leaderboardSnapshot struct {
	TopContributions topContribution `json:"topContributions"`
	TopFollowers     topFollower     `json:"topFollowers"`
}

// updateLeaderboard upserts the caller's stats and responds with the
// current top-contributions and top-followers records
func (h *Handler) updateLeaderboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	var req updateLeaderboardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Username == "" {
		http.Error(w, "Missing username", http.StatusBadRequest)
		return
	}

	now := time.Now()
	entry := model.LeaderboardEntry{
		Username:      model.TruncateString(req.Username, 250),
		Contributions: req.Contributions,
		Followers:     req.Followers,
		AvatarUrl:     model.TruncateString(req.AvatarUrl, 500),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := h.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "username"}},
		DoUpdates: clause.AssignmentColumns([]string{"contributions", "followers", "avatar_url", "updated_at"}),
	}).Create(&entry).Error; err != nil {
		h.Logger.Error(r.Context(), "Failed to upsert leaderboard entry: %v", err)
		http.Error(w, "Failed to update leaderboard", http.StatusInternalServerError)
		return
	}

	// Touch the recent-users strip as part of the same update
	recent := model.RecentUser{
		Username:  entry.Username,
		AvatarUrl: entry.AvatarUrl,
		SeenAt:    now,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "username"}},
		DoUpdates: clause.AssignmentColumns([]string{"avatar_url", "seen_at", "updated_at"}),
	}).Create(&recent).Error; err != nil {
		h.Logger.Warn(r.Context(), "Failed to record recent user: %v", err)
	}

	// Read back the current leaders
	var topContrib model.LeaderboardEntry
	if err := h.db.Order("contributions DESC").First(&topContrib).Error; err != nil {
		h.Logger.Error(r.Context(), "Failed to read top contributions: %v", err)
		http.Error(w, "Failed to read leaderboard", http.StatusInternalServerError)
		return
	}

	var topFollow model.LeaderboardEntry
	if err := h.db.Order("followers DESC").First(&topFollow).Error; err != nil {
		h.Logger.Error(r.Context(), "Failed to read top followers: %v", err)
		http.Error(w, "Failed to read leaderboard", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, r, leaderboardSnapshot{
		TopContributions: topContribution{Username: topContrib.Username, Contributions: topContrib.Contributions},
		TopFollowers:     topFollower{Username: topFollow.Username, Followers: topFollow.Followers},
	})
}

//
type userCountResponse struct {
	TotalUsers int64 `json:"totalUsers"`
}

// incrementUserCount bumps the monotonic visitor counter and returns the total
func (h *Handler) incrementUserCount(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	var total int64
	err := h.db.Transaction(func(tx *gorm.DB) error {
		counter := model.UserCounter{}
		if err := tx.Where(model.UserCounter{Name: model.CounterTotalUsers}).FirstOrCreate(&counter).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.UserCounter{}).
			Where("name = ?", model.CounterTotalUsers).
			UpdateColumn("total", gorm.Expr("total + ?", 1)).Error; err != nil {
			return err
		}
		// Đọc lại sau khi cộng: hai increment chạy song song không được
		// trả về cùng một tổng
		if err := tx.Where("name = ?", model.CounterTotalUsers).First(&counter).Error; err != nil {
			return err
		}
		total = counter.Total
		return nil
	})
	if err != nil {
		h.Logger.Error(r.Context(), "Failed to increment user count: %v", err)
		http.Error(w, "Failed to increment user count", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, r, userCountResponse{TotalUsers: total})
}

// getUserCount returns the current visitor counter
func (h *Handler) getUserCount(w http.ResponseWriter, r *http.Request) {
	counter := model.UserCounter{}
	err := h.db.Where("name = ?", model.CounterTotalUsers).First(&counter).Error
	if err != nil && err != gorm.ErrRecordNotFound {
		h.Logger.Error(r.Context(), "Failed to read user count: %v", err)
		http.Error(w, "Failed to read user count", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, r, userCountResponse{TotalUsers: counter.Total})
}
