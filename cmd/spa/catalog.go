package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Spok95/spa-clinic/internal/domain/catalog"
	"github.com/Spok95/spa-clinic/internal/infra/db"
	"github.com/Spok95/spa-clinic/internal/infra/logger"
)

func newCatalogCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Price list import/export (xlsx)",
	}

	var out string
	export := &cobra.Command{
		Use:   "export",
		Short: "Write the price list to an xlsx file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withCatalog(cmd.Context(), func(repo *catalog.Repo) error {
				data, err := catalog.ExportPriceList(cmd.Context(), repo)
				if err != nil {
					return err
				}
				return os.WriteFile(out, data, 0o644)
			})
		},
	}
	export.Flags().StringVar(&out, "out", "price-list.xlsx", "output file")

	var file string
	imp := &cobra.Command{
		Use:   "import",
		Short: "Update prices from an xlsx file produced by export",
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := os.ReadFile(file)
			if err != nil {
				return err
			}
			return withCatalog(cmd.Context(), func(repo *catalog.Repo) error {
				res, err := catalog.ImportPriceList(cmd.Context(), repo, data)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "rows: %d, updated: %d\n", res.Rows, res.Updated)
				for _, e := range res.Errors {
					fmt.Fprintln(cmd.ErrOrStderr(), e)
				}
				return nil
			})
		},
	}
	imp.Flags().StringVar(&file, "file", "", "xlsx file to import")
	_ = imp.MarkFlagRequired("file")

	cmd.AddCommand(export, imp)
	return cmd
}

func withCatalog(ctx context.Context, fn func(repo *catalog.Repo) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logger.New(cfg)

	if ctx == nil {
		ctx = context.Background()
	}
	pool, err := db.Connect(ctx, cfg.Postgres.DSN, cfg.Postgres.MaxConns)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := fn(catalog.NewRepo(pool)); err != nil {
		log.Error("catalog command failed", "err", err)
		return err
	}
	return nil
}
