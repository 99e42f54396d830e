package repo

import (
	"time"

	"gorm.io/gorm"
)

type Repo struct {
	DB         *gorm.DB
	RefreshTTL time.Duration
}

func New(db *gorm.DB, refreshTTL time.Duration) *Repo {
	return &Repo{DB: db, RefreshTTL: refreshTTL}
}
