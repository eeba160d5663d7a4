package db

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/sirdesai22/hackollab/internal/models"
	"gorm.io/gorm"
)

// Migrate creates or updates the schema. The join models carry the
// composite keys that make interests and collaborators unique per pair.
func Migrate(ctx context.Context, database *gorm.DB) error {
	if err := database.SetupJoinTable(&models.Project{}, "InterestedUsers", &models.ProjectInterest{}); err != nil {
		return err
	}
	if err := database.SetupJoinTable(&models.Project{}, "Collaborators", &models.ProjectCollaborator{}); err != nil {
		return err
	}
	err := database.WithContext(ctx).AutoMigrate(
		&models.User{},
		&models.Skill{},
		&models.UserSkill{},
		&models.Project{},
		&models.ProjectInterest{},
		&models.ProjectCollaborator{},
		&models.Hackathon{},
		&models.Invite{},
		&models.Outbox{},
		&models.DLQ{},
	)
	if err != nil {
		return err
	}
	log.Info().Msg("database migrated")
	return nil
}
