package model

import (
	"time"

	"github.com/gitstats/git-stats/cfg"
	"github.com/gitstats/git-stats/pkg/db"
	"github.com/gitstats/git-stats/pkg/log"
)

// RecentUser ghi lại user vừa được tra cứu, phục vụ dải "recent users"
type RecentUser struct {
	Model
	Username  string    `json:"username" gorm:"column:username;type:varchar(255);not null;uniqueIndex"`
	AvatarUrl string    `json:"avatar_url" gorm:"column:avatar_url;type:varchar(512)"`
	SeenAt    time.Time `json:"seen_at" gorm:"column:seen_at;not null"`
	CreatedAt time.Time `gorm:"column:created_at;not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:CURRENT_TIMESTAMP"`
}

func NewRecentUser(config *cfg.Config, logger log.Logger, db *db.Mysql) (*RecentUser, error) {
	recent := &RecentUser{
		Model: Model{
			Config: config,
			Logger: logger,
			Mysql:  db,
		},
	}
	return recent, nil
}

func (r *RecentUser) TableName() string {
	return "recent_users"
}
