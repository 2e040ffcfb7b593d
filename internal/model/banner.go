package model

import (
	"time"

	"github.com/gitstats/git-stats/cfg"
	"github.com/gitstats/git-stats/pkg/db"
	"github.com/gitstats/git-stats/pkg/log"
)

// SharedBanner lưu thẻ stats đã render mà user chia sẻ ra ngoài:
// URL ảnh đã upload cùng bản JSON của profile tại thời điểm chia sẻ
type SharedBanner struct {
	Model
	Username  string    `json:"username" gorm:"column:username;type:varchar(255);not null;uniqueIndex"`
	ImageUrl  string    `json:"image_url" gorm:"column:image_url;type:varchar(512);not null"`
	Payload   string    `json:"payload" gorm:"column:payload;type:text"`
	CreatedAt time.Time `gorm:"column:created_at;not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:CURRENT_TIMESTAMP"`
}

func NewSharedBanner(config *cfg.Config, logger log.Logger, db *db.Mysql) (*SharedBanner, error) {
	banner := &SharedBanner{
		Model: Model{
			Config: config,
			Logger: logger,
			Mysql:  db,
		},
	}
	return banner, nil
}

func (b *SharedBanner) TableName() string {
	return "shared_banners"
}
