package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirdesai22/hackollab/internal/models"
	"gorm.io/gorm"
)

func (s *GormStore) CreateHackathon(ctx context.Context, h *models.Hackathon, events ...models.Outbox) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(h).Error; err != nil {
			return err
		}
		return enqueue(tx, withEntity(events, h.ID))
	})
	return translate(err)
}

func (s *GormStore) GetHackathon(ctx context.Context, id uuid.UUID) (*models.Hackathon, error) {
	var h models.Hackathon
	if err := s.db.WithContext(ctx).First(&h, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &h, nil
}

func (s *GormStore) ListHackathons(ctx context.Context) ([]models.Hackathon, error) {
	var out []models.Hackathon
	err := s.db.WithContext(ctx).Order("created_at DESC").Find(&out).Error
	return out, err
}
