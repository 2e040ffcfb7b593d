package model

import (
	"time"

	"github.com/gitstats/git-stats/cfg"
	"github.com/gitstats/git-stats/pkg/db"
	"github.com/gitstats/git-stats/pkg/log"
)

type Model struct {
	Config    *cfg.Config `gorm:"-"`
	Logger    log.Logger  `gorm:"-"`
	Mysql     *db.Mysql   `gorm:"-"`
	ID        uint        `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}
