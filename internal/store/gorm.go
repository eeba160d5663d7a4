package store

import (
	"context"
	"errors"
	"time"

	"github.com/sirdesai22/hackollab/internal/models"
	"gorm.io/gorm"
)

// GormStore implements Store on PostgreSQL through GORM.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// enqueue writes outbox events on tx, defaulting them to be due immediately.
func enqueue(tx *gorm.DB, events []models.Outbox) error {
	if len(events) == 0 {
		return nil
	}
	now := time.Now()
	for i := range events {
		if events[i].NextAttemptAt.IsZero() {
			events[i].NextAttemptAt = now
		}
	}
	return tx.Create(&events).Error
}

// translate maps GORM sentinel errors onto the package's errors.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	default:
		return err
	}
}
