package store

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/sirdesai22/hackollab/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func externalColumn(provider string) (string, error) {
	switch provider {
	case "firebase":
		return "firebase_uid", nil
	case "clerk":
		return "clerk_id", nil
	default:
		return "", errors.New("unknown identity provider " + provider)
	}
}

func linkExternal(u *models.User, ext ExternalID) {
	subject := ext.Subject
	if ext.Provider == "firebase" {
		u.FirebaseUID = &subject
	} else {
		u.ClerkID = &subject
	}
}

func (s *GormStore) EnsureUser(ctx context.Context, ext ExternalID, profile UserProfile, events ...models.Outbox) (*models.User, bool, error) {
	var (
		user    models.User
		created bool
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		created, err = ensureUser(tx, ext, profile, &user)
		if err != nil {
			return err
		}
		if created {
			return enqueue(tx, withEntity(events, user.ID))
		}
		return nil
	})
	if err != nil {
		return nil, false, translate(err)
	}
	return &user, created, nil
}

// ensureUser loads the user bound to ext or creates one. It never attaches
// ext to an existing row found by email: a new subject whose email is already
// taken gets ErrDuplicate. A concurrent first login for the same subject loses
// the insert race and picks up the winner's row.
func ensureUser(tx *gorm.DB, ext ExternalID, profile UserProfile, user *models.User) (bool, error) {
	col, err := externalColumn(ext.Provider)
	if err != nil {
		return false, err
	}
	bySubject := func() error {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where(col+" = ?", ext.Subject).First(user).Error
	}
	err = bySubject()
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	*user = models.User{
		ID:           uuid.New(),
		Name:         profile.Name,
		Email:        strings.TrimSpace(profile.Email),
		Bio:          profile.Bio,
		GithubURL:    profile.GithubURL,
		PortfolioURL: profile.PortfolioURL,
		Availability: profile.Availability,
	}
	linkExternal(user, ext)
	res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(user)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 1 {
		return true, nil
	}

	err = bySubject()
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// The conflict was on email, held by a different account.
		return false, ErrDuplicate
	}
	return false, err
}

func (s *GormStore) UpsertUser(ctx context.Context, ext ExternalID, profile UserProfile, events ...models.Outbox) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := ensureUser(tx, ext, profile, &user); err != nil {
			return err
		}
		if err := applyProfile(tx, &user, profile); err != nil {
			return err
		}
		return enqueue(tx, withEntity(events, user.ID))
	})
	if err != nil {
		return nil, translate(err)
	}
	return s.GetUser(ctx, user.ID)
}

func applyProfile(tx *gorm.DB, user *models.User, p UserProfile) error {
	updates := map[string]any{}
	set := func(col, v string) {
		if v = strings.TrimSpace(v); v != "" {
			updates[col] = v
		}
	}
	set("name", p.Name)
	set("email", p.Email)
	set("bio", p.Bio)
	set("github_url", p.GithubURL)
	set("portfolio_url", p.PortfolioURL)
	set("availability", p.Availability)
	if len(updates) == 0 {
		return nil
	}
	return tx.Model(user).Updates(updates).Error
}

func (s *GormStore) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).Preload("Skills.Skill").First(&u, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	if u.Skills == nil {
		u.Skills = []models.UserSkill{}
	}
	return &u, nil
}

func (s *GormStore) GetUserByExternalID(ctx context.Context, subject string) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).
		Where("firebase_uid = ? OR clerk_id = ?", subject, subject).
		First(&u).Error
	if err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *GormStore) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := s.db.WithContext(ctx).Preload("Skills.Skill").Order("created_at DESC").Find(&users).Error
	return users, err
}

func (s *GormStore) UpdateUser(ctx context.Context, id uuid.UUID, profile UserProfile, skills []SkillLevel, events ...models.Outbox) (*models.User, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, "id = ?", id).Error; err != nil {
			return err
		}
		if err := applyProfile(tx, &user, profile); err != nil {
			return err
		}
		if skills != nil {
			if err := replaceSkills(tx, id, skills); err != nil {
				return err
			}
		}
		return enqueue(tx, withEntity(events, id))
	})
	if err != nil {
		return nil, translate(err)
	}
	return s.GetUser(ctx, id)
}

func replaceSkills(tx *gorm.DB, userID uuid.UUID, skills []SkillLevel) error {
	if err := tx.Where("user_id = ?", userID).Delete(&models.UserSkill{}).Error; err != nil {
		return err
	}
	seen := map[string]bool{}
	for _, sl := range skills {
		name := strings.TrimSpace(sl.Name)
		if name == "" || seen[strings.ToLower(name)] {
			continue
		}
		seen[strings.ToLower(name)] = true

		skill := models.Skill{ID: uuid.New(), Name: name}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&skill).Error; err != nil {
			return err
		}
		if err := tx.Where("name = ?", name).First(&skill).Error; err != nil {
			return err
		}
		us := models.UserSkill{UserID: userID, SkillID: skill.ID, Level: sl.Level}
		if err := tx.Omit("Skill").Create(&us).Error; err != nil {
			return err
		}
	}
	return nil
}

// withEntity fills a zero EntityID on events created before the row existed.
func withEntity(events []models.Outbox, id uuid.UUID) []models.Outbox {
	for i := range events {
		if events[i].EntityID == uuid.Nil {
			events[i].EntityID = id
		}
	}
	return events
}
