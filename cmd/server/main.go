package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"cafeteria/backend/internal/cache"
	"cafeteria/backend/internal/config"
	"cafeteria/backend/internal/httpapi"
	"cafeteria/backend/internal/logging"
	"cafeteria/backend/internal/reporting"
	"cafeteria/backend/internal/service"
	"cafeteria/backend/internal/store"
	"cafeteria/backend/internal/store/memory"
	pgstore "cafeteria/backend/internal/store/postgres"
)

const startupTimeout = 10 * time.Second

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "cafeteria",
		Short:         "Point of sale and reporting backend for the cafeteria",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}
	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Start the HTTP API",
			RunE:  runServe,
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Apply the PostgreSQL schema and seed the starter catalogue",
			RunE:  runMigrate,
		},
	)
	return root
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := buildApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer app.close()

	server := &http.Server{
		Addr:              cfg.Address(),
		Handler:           app.handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Info().Str("addr", cfg.Address()).Str("business", cfg.BusinessName).Msg("cafeteria backend listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("shutdown error")
		}
		return nil
	})

	err = group.Wait()
	logger.Info().Msg("server stopped")
	return err
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required to run migrations")
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	ctx, cancel := context.WithTimeout(cmd.Context(), startupTimeout)
	defer cancel()

	pg, err := pgstore.New(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return err
	}
	defer pg.Close()

	if err := pg.Migrate(ctx); err != nil {
		return err
	}
	logger.Info().Msg("schema applied")
	return nil
}

type app struct {
	handler http.Handler
	closers []func() error
	logger  zerolog.Logger
}

func (a *app) close() {
	for _, closeFn := range a.closers {
		if err := closeFn(); err != nil {
			a.logger.Error().Err(err).Msg("close error")
		}
	}
}

// buildApp wires the store, the replay cache and the HTTP API from cfg. With
// no DATABASE_URL the seeded in-memory store is used.
func buildApp(ctx context.Context, cfg config.Config, logger zerolog.Logger) (*app, error) {
	startCtx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()

	a := &app{logger: logger}

	var repo store.Repository
	var reports store.ReportStore
	if cfg.DatabaseURL != "" {
		pg, err := pgstore.New(startCtx, cfg.DatabaseURL, logger)
		if err != nil {
			return nil, fmt.Errorf("postgres unavailable and DATABASE_URL is set, refusing to start with in-memory fallback: %w", err)
		}
		a.closers = append(a.closers, pg.Close)
		if err := pg.Migrate(startCtx); err != nil {
			a.close()
			return nil, err
		}
		repo, reports = pg, pg
		logger.Info().Msg("repository: postgres")
	} else {
		mem := memory.NewSeeded()
		repo, reports = mem, mem
		logger.Info().Msg("repository: in-memory")
	}

	replay := cache.SaleReplayCache(cache.NoopSaleReplayCache{})
	if cfg.RedisAddr != "" {
		redisCache := cache.NewRedisSaleReplayCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := redisCache.Ping(startCtx); err != nil {
			logger.Warn().Err(err).Msg("redis unavailable, idempotency keys disabled")
			_ = redisCache.Close()
		} else {
			replay = redisCache
			a.closers = append(a.closers, redisCache.Close)
			logger.Info().Msg("cache: redis")
		}
	}

	loc := cfg.Location()
	metrics := httpapi.NewMetrics()
	svc := service.New(repo, replay, cfg.IdempotencyTTL, loc, logger)
	engine := reporting.NewEngine(reports, reporting.Options{
		BusinessName:            cfg.BusinessName,
		Location:                loc,
		OperatingHourStart:      cfg.OperatingHourStart,
		OperatingHourEnd:        cfg.OperatingHourEnd,
		TopProductsLimit:        cfg.TopProductsLimit,
		TopProductsWindowDays:   cfg.TopProductsWindowDays,
		TrendWindowDays:         cfg.TrendWindowDays,
		CategoryWindowDays:      cfg.CategoryWindowDays,
		ForecastMinDays:         cfg.ForecastMinDays,
		LowTransactionThreshold: cfg.LowTransactionThreshold,
		CategoryEmoji:           cfg.CategoryEmoji,
	}, logger, reporting.NewMetrics(metrics.Registerer()))

	api := httpapi.New(svc, engine, httpapi.Options{
		AllowedOrigin:      cfg.AllowedOrigin,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		RequestTimeout:     cfg.RequestTimeout,
		Logger:             logger,
		Metrics:            metrics,
	})
	a.handler = api.Handler()
	return a, nil
}
