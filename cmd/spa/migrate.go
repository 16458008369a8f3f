package main

import (
	"github.com/spf13/cobra"

	"github.com/Spok95/spa-clinic/internal/infra/db"
	"github.com/Spok95/spa-clinic/internal/infra/logger"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			log := logger.New(cfg)
			if err := db.Migrate(cfg.Postgres.DSN); err != nil {
				return err
			}
			log.Info("migrations applied")
			return nil
		},
	}
}
