package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirdesai22/hackollab/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (s *GormStore) CreateInvites(ctx context.Context, invites []*models.Invite, events ...models.Outbox) error {
	if len(invites) == 0 {
		return nil
	}
	for _, inv := range invites {
		if inv.ID == uuid.Nil {
			inv.ID = uuid.New()
		}
		if inv.Status == "" {
			inv.Status = models.InvitePending
		}
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&invites).Error; err != nil {
			return err
		}
		return enqueue(tx, events)
	})
	return translate(err)
}

func (s *GormStore) GetInvite(ctx context.Context, id uuid.UUID) (*models.Invite, error) {
	var inv models.Invite
	err := s.db.WithContext(ctx).
		Preload("Project").
		Preload("Sender").
		Preload("Receiver").
		First(&inv, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &inv, nil
}

func (s *GormStore) RespondToInvite(ctx context.Context, id uuid.UUID, status models.InviteStatus, events ...models.Outbox) (*models.Invite, error) {
	var inv models.Invite
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&inv, "id = ?", id).Error; err != nil {
			return err
		}
		if inv.Status != models.InvitePending {
			return ErrInviteNotPending
		}
		now := time.Now()
		if err := tx.Model(&inv).Updates(map[string]any{
			"status":       status,
			"responded_at": now,
		}).Error; err != nil {
			return err
		}
		if status == models.InviteAccepted {
			err := tx.Clauses(clause.OnConflict{DoNothing: true}).
				Create(&models.ProjectCollaborator{ProjectID: inv.ProjectID, UserID: inv.ReceiverID}).Error
			if err != nil {
				return err
			}
		}
		return enqueue(tx, events)
	})
	if err != nil {
		return nil, translate(err)
	}
	return s.GetInvite(ctx, id)
}

func (s *GormStore) ListInvites(ctx context.Context, f InviteFilter) ([]models.Invite, error) {
	q := s.db.WithContext(ctx).Preload("Project").Preload("Sender").Preload("Receiver")
	if f.SenderID != nil {
		q = q.Where("sender_id = ?", *f.SenderID)
	}
	if f.ReceiverID != nil {
		q = q.Where("receiver_id = ?", *f.ReceiverID)
	}
	if f.ProjectID != nil {
		q = q.Where("project_id = ?", *f.ProjectID)
	}
	var out []models.Invite
	err := q.Order("created_at DESC").Find(&out).Error
	return out, err
}
