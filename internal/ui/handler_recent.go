package ui

import (
	"net/http"
	"strconv"

	"github.com/gitstats/git-stats/internal/model"
)

//
type recentUserResponse struct {
	Username  string `json:"username"`
	AvatarUrl string `json:"avatarUrl"`
	SeenAt    string `json:"seenAt"`
}

// getRecentUsers returns the most recently looked-up users
func (h *Handler) getRecentUsers(w http.ResponseWriter, r *http.Request) {
	limit := h.Config.Server.RecentUsersLimit
	if limit <= 0 {
		limit = 12
	}
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	var recent []model.RecentUser
	if err := h.db.Order("seen_at DESC").Limit(limit).Find(&recent).Error; err != nil {
		h.Logger.Error(r.Context(), "Failed to fetch recent users: %v", err)
		http.Error(w, "Failed to fetch recent users", http.StatusInternalServerError)
		return
	}

	response := make([]recentUserResponse, 0, len(recent))
	for _, user := range recent {
		response = append(response, recentUserResponse{
			Username:  user.Username,
			AvatarUrl: user.AvatarUrl,
			SeenAt:    user.SeenAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}

	h.writeJSON(w, r, response)
}
