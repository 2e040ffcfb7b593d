package ui

import (
	"encoding/json"
	"net/http"

	"github.com/gitstats/git-stats/cfg"
	"github.com/gitstats/git-stats/pkg/log"
	"gorm.io/gorm"
)

// Handler manages HTTP requests for the persistence service
type Handler struct {
	Logger log.Logger
	Config *cfg.Config
	db     *gorm.DB
}

// NewHandler creates a new handler on top of an open gorm connection
func NewHandler(logger log.Logger, config *cfg.Config, db *gorm.DB) (*Handler, error) {
	return &Handler{
		Logger: logger,
		Config: config,
		db:     db,
	}, nil
}

// RegisterRoutes sets up the HTTP routes for the persistence service
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/update-leaderboard", h.updateLeaderboard)
	mux.HandleFunc("/api/increment-user", h.incrementUserCount)
	mux.HandleFunc("/api/user-count", h.getUserCount)
	mux.HandleFunc("/api/save-shared-banner", h.saveSharedBanner)
	mux.HandleFunc("/api/user/", h.getSharedUser)
	mux.HandleFunc("/api/recent-users", h.getRecentUsers)
	mux.HandleFunc("/share/", h.showSharePage)
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, value interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(value); err != nil {
		h.Logger.Error(r.Context(), "Failed to encode JSON response: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}
