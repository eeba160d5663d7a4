package store

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/sirdesai22/hackollab/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (s *GormStore) CreateProject(ctx context.Context, p *models.Project, events ...models.Outbox) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(p).Error; err != nil {
			return err
		}
		return enqueue(tx, withEntity(events, p.ID))
	})
	return translate(err)
}

func (s *GormStore) GetProject(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	var p models.Project
	err := s.db.WithContext(ctx).
		Preload("Creator").
		Preload("InterestedUsers").
		Preload("Collaborators").
		First(&p, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

// containsAny matches rows whose JSONB array column holds at least one of values.
func containsAny(db *gorm.DB, column string, values []string) *gorm.DB {
	cond := db.Session(&gorm.Session{NewDB: true})
	for i, v := range values {
		doc, _ := json.Marshal([]string{v})
		if i == 0 {
			cond = cond.Where(column+" @> ?::jsonb", string(doc))
		} else {
			cond = cond.Or(column+" @> ?::jsonb", string(doc))
		}
	}
	return cond
}

func (s *GormStore) ListProjects(ctx context.Context, f ProjectFilter) ([]models.Project, error) {
	q := s.db.WithContext(ctx).Preload("Creator")
	if f.Visibility != "" {
		q = q.Where("visibility = ?", f.Visibility)
	}
	if f.Difficulty != "" {
		q = q.Where("difficulty = ?", f.Difficulty)
	}
	if len(f.Tech) > 0 {
		q = q.Where(containsAny(s.db, "tech_stack", f.Tech))
	}
	if len(f.Tags) > 0 {
		q = q.Where(containsAny(s.db, "tags", f.Tags))
	}
	var out []models.Project
	err := q.Order("created_at DESC").Find(&out).Error
	return out, err
}

func (s *GormStore) ListProjectsByCreator(ctx context.Context, creatorID uuid.UUID) ([]models.Project, error) {
	var out []models.Project
	err := s.db.WithContext(ctx).
		Preload("Creator").
		Preload("InterestedUsers").
		Preload("Collaborators").
		Where("creator_id = ?", creatorID).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

func (s *GormStore) UpdateProjectInviteStatus(ctx context.Context, id uuid.UUID, status string) (*models.Project, error) {
	res := s.db.WithContext(ctx).Model(&models.Project{}).Where("id = ?", id).Update("invite_status", status)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return s.GetProject(ctx, id)
}

func (s *GormStore) AddInterest(ctx context.Context, userID, projectID uuid.UUID, events ...models.Outbox) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p models.Project
		if err := tx.Select("id").First(&p, "id = ?", projectID).Error; err != nil {
			return err
		}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.ProjectInterest{ProjectID: projectID, UserID: userID})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrDuplicate
		}
		return enqueue(tx, events)
	})
	return translate(err)
}

func (s *GormStore) ListInterestedProjects(ctx context.Context, userID uuid.UUID) ([]models.Project, error) {
	var out []models.Project
	err := s.db.WithContext(ctx).
		Preload("Creator").
		Joins("JOIN project_interests pi ON pi.project_id = projects.id").
		Where("pi.user_id = ?", userID).
		Order("pi.created_at DESC").
		Find(&out).Error
	return out, err
}
