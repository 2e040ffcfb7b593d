package model

import (
	"fmt"
	"time"

	"github.com/gitstats/git-stats/cfg"
	"github.com/gitstats/git-stats/pkg/db"
	"github.com/gitstats/git-stats/pkg/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LeaderboardEntry lưu thống kê mới nhất của mỗi user từng xuất hiện,
// phục vụ bảng xếp hạng theo contribution và theo follower
type LeaderboardEntry struct {
	Model
	Username      string    `json:"username" gorm:"column:username;type:varchar(255);not null;uniqueIndex"`
	Contributions int       `json:"contributions" gorm:"column:contributions;default:0"`
	Followers     int       `json:"followers" gorm:"column:followers;default:0"`
	AvatarUrl     string    `json:"avatar_url" gorm:"column:avatar_url;type:varchar(512)"`
	CreatedAt     time.Time `gorm:"column:created_at;not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt     time.Time `gorm:"column:updated_at;not null;default:CURRENT_TIMESTAMP"`
}

func NewLeaderboardEntry(config *cfg.Config, logger log.Logger, db *db.Mysql) (*LeaderboardEntry, error) {
	entry := &LeaderboardEntry{
		Model: Model{
			Config: config,
			Logger: logger,
			Mysql:  db,
		},
	}
	return entry, nil
}

func (e *LeaderboardEntry) TableName() string {
	return "leaderboard_entries"
}

// UpsertBatch ghi một loạt snapshot profile nhận từ Kafka,
// trùng username thì cập nhật số liệu mới nhất
func (e *LeaderboardEntry) UpsertBatch(messages []ProfileMessage) error {
	db, err := e.Mysql.Db()
	if err != nil {
		return fmt.Errorf("failed to get database connection: %w", err)
	}

	entries := make([]LeaderboardEntry, 0, len(messages))
	now := time.Now()
	for _, msg := range messages {
		entries = append(entries, LeaderboardEntry{
			Username:      TruncateString(msg.Username, 250),
			Contributions: msg.Contributions,
			Followers:     msg.Followers,
			AvatarUrl:     TruncateString(msg.AvatarUrl, 500),
			CreatedAt:     now,
			UpdatedAt:     now,
		})
	}

	return db.Transaction(func(tx *gorm.DB) error {
		result := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "username"}},
			DoUpdates: clause.AssignmentColumns([]string{"contributions", "followers", "avatar_url", "updated_at"}),
		}).CreateInBatches(entries, 100)

		if result.Error != nil {
			return fmt.Errorf("failed to batch upsert leaderboard entries: %w", result.Error)
		}
		return nil
	})
}
