package db

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/sirdesai22/hackollab/internal/models"
	"gorm.io/gorm"
)

// Seed inserts a small demo data set into an empty database and queues the
// rows for indexing.
func Seed(ctx context.Context, database *gorm.DB) error {
	var count int64
	if err := database.WithContext(ctx).Model(&models.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Info().Msg("data already exists, skipping seed")
		return nil
	}

	return database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ownerUID, devUID := "seed_owner", "seed_dev"
		owner := models.User{
			ID: uuid.New(), ClerkID: &ownerUID, Name: "Prathamesh", Email: "owner@example.com",
			Bio: "Building accessibility tools", Availability: "Weekends",
		}
		dev := models.User{
			ID: uuid.New(), ClerkID: &devUID, Name: "Ada", Email: "ada@example.com",
			Bio: "Backend and infra", GithubURL: "https://github.com/ada", Availability: "Evenings",
		}
		if err := tx.Omit("Skills").Create(&[]models.User{owner, dev}).Error; err != nil {
			return err
		}

		for _, s := range []struct {
			user  uuid.UUID
			name  string
			level string
		}{
			{owner.ID, "React", "Advanced"},
			{owner.ID, "AI", "Intermediate"},
			{dev.ID, "Go", "Advanced"},
			{dev.ID, "PostgreSQL", "Intermediate"},
		} {
			var skill models.Skill
			err := tx.Where(models.Skill{Name: s.name}).Attrs(models.Skill{ID: uuid.New()}).FirstOrCreate(&skill).Error
			if err != nil {
				return err
			}
			if err := tx.Omit("Skill").Create(&models.UserSkill{UserID: s.user, SkillID: skill.ID, Level: s.level}).Error; err != nil {
				return err
			}
		}

		start := time.Now().AddDate(0, 1, 0)
		deadline := start.AddDate(0, 0, -7)
		hackathon := models.Hackathon{
			ID:            uuid.New(),
			CreatorID:     owner.ID,
			Title:         "DevFest",
			Description:   "48 hours of building",
			HackathonDate: &start,
			Deadline:      &deadline,
			Location:      "Bengaluru",
			Organizer:     "GDG Bengaluru",
			EventMode:     "Offline",
			Rounds:        []string{"Ideation", "Prototype", "Finals"},
			Tags:          []string{"AI", "Web"},
			TechStack:     []string{"Go", "React"},
			RolesNeeded:   []string{"Backend", "Designer"},
			MaxTeamSize:   4,
			Visibility:    models.DefaultHackathonVisibility,
		}
		if err := tx.Create(&hackathon).Error; err != nil {
			return err
		}

		project := models.Project{
			ID:                uuid.New(),
			CreatorID:         owner.ID,
			Title:             "Voice for All",
			Description:       "AI assistant for mute people",
			Tags:              []string{"AI", "Accessibility"},
			TechStack:         []string{"Go", "React"},
			MaxTeamSize:       3,
			Status:            models.DefaultProjectStatus,
			Difficulty:        "Beginner",
			Visibility:        models.VisibilityOpenToAll,
			CollaborationType: "Remote",
			InviteStatus:      models.DefaultInviteStatus,
		}
		if err := tx.Omit("Creator", "InterestedUsers", "Collaborators").Create(&project).Error; err != nil {
			return err
		}

		now := time.Now()
		events := []models.Outbox{
			{Kind: models.KindIndex, EntityType: "user", EntityID: owner.ID, Op: "UPSERT", NextAttemptAt: now},
			{Kind: models.KindIndex, EntityType: "user", EntityID: dev.ID, Op: "UPSERT", NextAttemptAt: now},
			{Kind: models.KindIndex, EntityType: "hackathon", EntityID: hackathon.ID, Op: "UPSERT", NextAttemptAt: now},
			{Kind: models.KindIndex, EntityType: "project", EntityID: project.ID, Op: "UPSERT", NextAttemptAt: now},
		}
		if err := tx.Create(&events).Error; err != nil {
			return err
		}

		log.Info().Msg("sample data inserted")
		return nil
	})
}
