package main

import (
	"github.com/rs/zerolog/log"
	"github.com/sirdesai22/hackollab/internal/db"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, database, err := openDatabase(cmd.Context())
		if err != nil {
			return err
		}
		defer closeDatabase(database)

		if err := db.Migrate(cmd.Context(), database); err != nil {
			return err
		}
		log.Info().Msg("schema up to date")
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Migrate and insert demo users, a hackathon and a project",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, database, err := openDatabase(cmd.Context())
		if err != nil {
			return err
		}
		defer closeDatabase(database)

		if err := db.Migrate(cmd.Context(), database); err != nil {
			return err
		}
		if err := db.Seed(cmd.Context(), database); err != nil {
			return err
		}
		log.Info().Msg("seed data inserted")
		return nil
	},
}
