package main

import (
	"fmt"
	"os"
	_ "time/tzdata"

	"github.com/spf13/cobra"

	"github.com/Spok95/spa-clinic/internal/config"
)

var cfgFile string

func main() {
	root := &cobra.Command{
		Use:           "spa",
		Short:         "Spa/clinic back office: treatments, assignments, sessions, commissions.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "config/example.yaml", "config file path")

	root.AddCommand(newServeCommand(), newMigrateCommand(), newCatalogCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}
	if cfg.Postgres.DSN == "" {
		return cfg, fmt.Errorf("postgres.dsn is empty (set it in %s or APP_POSTGRES_DSN)", cfgFile)
	}
	return cfg, nil
}
