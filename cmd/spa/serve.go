package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/Spok95/spa-clinic/internal/api"
	"github.com/Spok95/spa-clinic/internal/domain/assignments"
	"github.com/Spok95/spa-clinic/internal/domain/catalog"
	"github.com/Spok95/spa-clinic/internal/domain/commissions"
	"github.com/Spok95/spa-clinic/internal/domain/patients"
	"github.com/Spok95/spa-clinic/internal/domain/reports"
	"github.com/Spok95/spa-clinic/internal/domain/sessions"
	"github.com/Spok95/spa-clinic/internal/domain/staff"
	"github.com/Spok95/spa-clinic/internal/infra/cache"
	"github.com/Spok95/spa-clinic/internal/infra/db"
	httpx "github.com/Spok95/spa-clinic/internal/infra/http"
	"github.com/Spok95/spa-clinic/internal/infra/logger"
	"github.com/Spok95/spa-clinic/internal/infra/metrics"
)

func newServeCommand() *cobra.Command {
	var skipMigrations bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(skipMigrations)
		},
	}
	cmd.Flags().BoolVar(&skipMigrations, "skip-migrations", false, "do not apply migrations on start")
	return cmd
}

func serve(skipMigrations bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logger.New(cfg)

	loc, err := cfg.Location()
	if err != nil {
		return fmt.Errorf("app.timezone: %w", err)
	}

	if !skipMigrations {
		if err := db.Migrate(cfg.Postgres.DSN); err != nil {
			log.Error("migrations failed", "err", err)
			return err
		}
		log.Info("migrations applied")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg.Postgres.DSN, cfg.Postgres.MaxConns)
	if err != nil {
		log.Error("db connect failed", "err", err)
		return err
	}
	defer pool.Close()
	log.Info("db connected")

	rdb, err := cache.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		// без кэша отчёты просто идут в БД
		log.Warn("redis unavailable, report cache disabled", "err", err)
	}
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
		log.Info("redis connected", "addr", cfg.Redis.Addr)
	}
	reportCache := cache.NewReports(rdb, cfg.Redis.TTL, log)

	m := metrics.New(prometheus.DefaultRegisterer)

	catalogRepo := catalog.NewRepo(pool)
	sessionRepo := sessions.NewRepo(pool)

	h := &api.Handler{
		Patients: patients.NewRepo(pool),
		Staff:    staff.NewRepo(pool),
		Catalog:  catalogRepo,
		Assignments: assignments.NewService(
			assignments.NewRepo(pool), catalogRepo, log, m, reportCache,
			cfg.Commissions.DefaultComponentPercentage,
		),
		Sessions: sessions.NewService(
			sessionRepo, log, m, reportCache, cfg.Sessions.NextAppointmentAfter,
		),
		Reports:     reports.NewService(reports.NewRepo(pool), sessionRepo, reportCache, log),
		Commissions: commissions.NewService(commissions.NewRepo(pool), log, m),
		Log:         log,
		Location:    loc,
	}

	engine := httpx.NewEngine(log, m, cfg.Metrics.Enabled)
	h.Register(engine.Group("/api/v1"))

	srv := httpx.New(cfg.HTTP.Addr, engine)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server error", "err", err)
			stop()
		}
	}()
	log.Info("HTTP server started", "addr", cfg.HTTP.Addr)

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown", "err", err)
	}
	log.Info("graceful shutdown complete")
	return nil
}
