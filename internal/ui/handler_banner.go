package ui

import (
	"encoding/json"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/gitstats/git-stats/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//
type saveBannerRequest struct {
	Username string          `json:"username"`
	ImageUrl string          `json:"imageUrl"`
	UserData json.RawMessage `json:"userData"`
}

// saveSharedBanner stores a rendered stats card shared externally
func (h *Handler) saveSharedBanner(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	var req saveBannerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Username == "" || req.ImageUrl == "" {
		http.Error(w, "Missing username or imageUrl", http.StatusBadRequest)
		return
	}

	now := time.Now()
	banner := model.SharedBanner{
		Username:  model.TruncateString(req.Username, 250),
		ImageUrl:  model.TruncateString(req.ImageUrl, 500),
		Payload:   string(req.UserData),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "username"}},
		DoUpdates: clause.AssignmentColumns([]string{"image_url", "payload", "updated_at"}),
	}).Create(&banner).Error; err != nil {
		h.Logger.Error(r.Context(), "Failed to save shared banner: %v", err)
		http.Error(w, "Failed to save shared banner", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, r, map[string]string{"status": "saved"})
}

//
type sharedUserResponse struct {
	Username string          `json:"username"`
	ImageUrl string          `json:"imageUrl"`
	UserData json.RawMessage `json:"userData,omitempty"`
}

// getSharedUser returns the stored banner record for /api/user/{username}
func (h *Handler) getSharedUser(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimPrefix(r.URL.Path, "/api/user/")
	if username == "" || strings.Contains(username, "/") {
		http.Error(w, "Invalid username", http.StatusBadRequest)
		return
	}

	banner := model.SharedBanner{}
	err := h.db.Where("username = ?", username).First(&banner).Error
	if err == gorm.ErrRecordNotFound {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.Logger.Error(r.Context(), "Failed to read shared banner: %v", err)
		http.Error(w, "Failed to read shared banner", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, r, sharedUserResponse{
		Username: banner.Username,
		ImageUrl: banner.ImageUrl,
		UserData: json.RawMessage(banner.Payload),
	})
}

var sharePageTemplate = template.Must(template.New("share").Parse(`<html>
  <head>
    <meta name="twitter:card" content="summary_large_image">
    <meta name="twitter:title" content="Check out {{.Username}}'s GitHub Stats!">
    <meta name="twitter:description" content="Contributions, streaks, and more!">
    <meta name="twitter:image" content="{{.ImageUrl}}">
    <meta name="twitter:image:alt" content="{{.Username}}'s GitHub stats">
    <title>{{.Username}}'s GitHub Stats</title>
  </head>
  <body>
    <p><a href="{{.ImageUrl}}">{{.Username}}'s GitHub stats</a></p>
  </body>
</html>
`))

type sharePageData struct {
	Username string
	ImageUrl string
}

// showSharePage renders the card page used by external share intents,
// /share/{username}?imageUrl=... . Without an imageUrl it falls back to
// the stored banner.
func (h *Handler) showSharePage(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimPrefix(r.URL.Path, "/share/")
	if username == "" || strings.Contains(username, "/") {
		http.Error(w, "Invalid username", http.StatusBadRequest)
		return
	}

	imageUrl := r.URL.Query().Get("imageUrl")
	if imageUrl == "" {
		banner := model.SharedBanner{}
		err := h.db.Where("username = ?", username).First(&banner).Error
		if err == gorm.ErrRecordNotFound {
			http.Error(w, "User not found", http.StatusNotFound)
			return
		}
		if err != nil {
			h.Logger.Error(r.Context(), "Failed to read shared banner: %v", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		imageUrl = banner.ImageUrl
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := sharePageTemplate.Execute(w, sharePageData{Username: username, ImageUrl: imageUrl}); err != nil {
		h.Logger.Error(r.Context(), "Failed to execute template: %v", err)
	}
}
