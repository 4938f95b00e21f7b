package cmd

import (
	"docdot_backend/pkg/database"
	"docdot_backend/pkg/logger"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema and seed the badge catalog and question bank",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		logger.InitLogger(cfg)
		defer logger.Log.Sync()

		db, err := database.InitDB(&cfg.Database, false)
		if err != nil {
			return fmt.Errorf("initialize database: %w", err)
		}
		if err := database.Migrate(db, cfg.Questions.SeedFile); err != nil {
			return err
		}
		logger.Log.Info("Database migration finished", zap.String("mode", cfg.Server.Mode))
		return nil
	},
}
