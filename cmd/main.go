package main

//
//  @title           quantlevels API
//  @version         1.0
//  @description     Quant level ingestion and read service.
//  @termsOfService  https://github.com/guttosm/quantlevels
//  @contact.name    API Support
//  @contact.url     https://github.com/guttosm/quantlevels
//  @contact.email   support@example.com
//  @license.name    MIT
//  @license.url     https://opensource.org/licenses/MIT
//  @host            localhost:8080
//  @BasePath        /
//  @schemes         http
//
//  @tag.name        levels
//  @tag.description Stored price levels by date, ticker and zone
//
//  @tag.name        health
//  @tag.description Liveness and readiness probes

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/guttosm/quantlevels/config"
	_ "github.com/guttosm/quantlevels/docs" // swagger docs
	"github.com/guttosm/quantlevels/internal/app"
	"github.com/guttosm/quantlevels/internal/ingestion"
	"github.com/guttosm/quantlevels/internal/logger"
	"github.com/guttosm/quantlevels/internal/scheduler"
)

// startServer initializes and starts the HTTP server in a separate goroutine.
func startServer(router http.Handler, port string) *http.Server {
	server := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.L().Info().Str("port", port).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.L().Fatal().Err(err).Msg("server failed to start")
		}
	}()

	return server
}

// gracefulShutdown waits for SIGINT/SIGTERM, shuts the server down and runs cleanup.
func gracefulShutdown(ctx context.Context, server *http.Server, cleanup func()) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	logger.L().Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.L().Fatal().Err(err).Msg("server forced to shutdown")
	}

	cleanup()
	logger.L().Info().Msg("server exited gracefully")
}

// runMigrate applies the goose migrations to the configured store.
func runMigrate(cfg config.Config, dir string) error {
	store, err := app.OpenStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	return app.Migrate(store, dir)
}

// runIngest performs one incremental (or historical) run against the feed.
func runIngest(ctx context.Context, cfg config.Config, historical bool) (ingestion.Result, error) {
	if err := cfg.Feed.Validate(); err != nil {
		return ingestion.Result{}, err
	}

	store, err := app.OpenStore(cfg)
	if err != nil {
		return ingestion.Result{}, err
	}
	defer store.Close()

	runner := app.NewRunner(store, app.NewFeedClient(cfg), cfg)
	if historical {
		return runner.RunHistorical(ctx)
	}
	return runner.RunIncremental(ctx)
}

// runSchedule triggers incremental runs on cfg.Ingest.Cron until ctx is done.
func runSchedule(ctx context.Context, cfg config.Config, runNow bool) error {
	if err := cfg.Feed.Validate(); err != nil {
		return err
	}

	store, err := app.OpenStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	sched := scheduler.New(ctx, app.NewRunner(store, app.NewFeedClient(cfg), cfg))
	if err := sched.Register(cfg.Ingest.Cron); err != nil {
		return err
	}
	sched.Start()
	if runNow {
		go sched.RunNow()
	}

	<-ctx.Done()
	sched.Stop()
	return nil
}

// main is the entry point of the quantlevels application.
//
// Modes (selected via --mode flag):
//   - ingest:     incremental run from the latest stored level date (LEVELS_WRITE_MODE).
//   - historical: full feed reload, overwriting the levels table.
//   - schedule:   incremental runs on INGEST_CRON until interrupted.
//   - migrate:    applies goose migrations from MIGRATIONS_DIR.
//   - api:        starts the REST API over stored levels.
func main() {
	config.LoadConfig()
	logger.Init()
	defer func() { _ = logger.Close() }()

	cfg := config.AppConfig

	mode := flag.String("mode", "ingest", "Mode: ingest, historical, schedule, migrate or api")
	port := flag.String("port", cfg.Server.Port, "Port for API mode")
	dir := flag.String("migrations", cfg.Store.MigrationsDir, "Directory with goose migrations")
	now := flag.Bool("now", false, "In schedule mode, run once immediately")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch *mode {
	case "ingest", "historical":
		historical := *mode == "historical"
		logger.L().Info().Bool("historical", historical).Msg("running ingestion")

		res, err := runIngest(ctx, cfg, historical)
		if err != nil {
			logger.L().Fatal().Err(err).Msg("ingestion failed")
		}
		logger.L().Info().
			Int("posts", res.Posts).
			Int("rows", res.Rows).
			Dur("elapsed", res.Elapsed).
			Msg("ingestion completed successfully")

	case "schedule":
		logger.L().Info().Str("cron", cfg.Ingest.Cron).Msg("starting scheduler")
		if err := runSchedule(ctx, cfg, *now); err != nil {
			logger.L().Fatal().Err(err).Msg("scheduler failed")
		}
		logger.L().Info().Msg("scheduler stopped")

	case "migrate":
		if err := runMigrate(cfg, *dir); err != nil {
			logger.L().Fatal().Err(err).Msg("migration failed")
		}

	case "api":
		stop()
		logger.L().Info().Msg("starting API server")

		router, cleanup, err := app.InitializeApp()
		if err != nil {
			logger.L().Fatal().Err(err).Msg("app init error")
		}

		server := startServer(router, *port)
		gracefulShutdown(context.Background(), server, cleanup)

	default:
		logger.L().Fatal().Str("mode", *mode).Msg("unknown mode")
	}
}
