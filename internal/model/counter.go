package model

import (
	"time"

	"github.com/gitstats/git-stats/cfg"
	"github.com/gitstats/git-stats/pkg/db"
	"github.com/gitstats/git-stats/pkg/log"
)

// UserCounter là bộ đếm toàn cục chỉ tăng, ví dụ tổng số khách đã dùng trang
type UserCounter struct {
	Model
	Name      string    `json:"name" gorm:"column:name;type:varchar(64);not null;uniqueIndex"`
	Total     int64     `json:"total" gorm:"column:total;default:0"`
	CreatedAt time.Time `gorm:"column:created_at;not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:CURRENT_TIMESTAMP"`
}

// CounterTotalUsers là tên bộ đếm khách của dashboard
const CounterTotalUsers = "total_users"

func NewUserCounter(config *cfg.Config, logger log.Logger, db *db.Mysql) (*UserCounter, error) {
	counter := &UserCounter{
		Model: Model{
			Config: config,
			Logger: logger,
			Mysql:  db,
		},
	}
	return counter, nil
}

func (c *UserCounter) TableName() string {
	return "user_counters"
}
