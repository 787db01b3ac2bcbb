// Package main provides the reminder dispatcher: it polls due reminders from
// Postgres and publishes them to the reminder Redis Stream.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/rueidis"
	"github.com/robfig/cron/v3"

	"github.com/campushub/eventmap/internal/config"
	"github.com/campushub/eventmap/internal/logger"
	"github.com/campushub/eventmap/internal/repository"
	"github.com/campushub/eventmap/internal/service"
)

const (
	signalBufferSize = 1
	exitCode         = 1
)

func setupDatabase(cfg *config.Config) (*pgxpool.Pool, error) {
	return pgxpool.New(context.Background(), cfg.DatabaseURL)
}

func setupRedisClient(cfg *config.Config) (rueidis.Client, error) {
	return rueidis.NewClient(rueidis.ClientOption{
		InitAddress: []string{cfg.RedisAddr},
	})
}

func setupSignalHandling() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, signalBufferSize)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("shutdown signal received, stopping dispatcher")
		cancel()
	}()

	return ctx, cancel
}

func runDispatchLoop(
	ctx context.Context,
	dispatch service.ReminderDispatchService,
	pollInterval time.Duration,
	batchSize int,
) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("dispatcher stopped")
			return
		case <-ticker.C:
			if err := dispatch.DispatchDue(ctx, batchSize); err != nil {
				slog.Error("error dispatching reminders", slog.String("error", err.Error()))
			}
		}
	}
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(exitCode)
	}

	loggerInstance := logger.Setup(cfg.LogLevel, "dispatcher")
	slog.SetDefault(loggerInstance)

	dbPool, err := setupDatabase(cfg)
	if err != nil {
		slog.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(exitCode)
	}
	defer dbPool.Close()

	redisClient, err := setupRedisClient(cfg)
	if err != nil {
		slog.Error("failed to connect to Redis", slog.String("error", err.Error()))
		os.Exit(exitCode)
	}
	defer redisClient.Close()

	reminderRepo := repository.NewReminderRepositoryImpl(dbPool)
	dispatch := service.NewReminderDispatchServiceImpl(reminderRepo, redisClient)

	ctx, cancel := setupSignalHandling()
	defer cancel()

	// Delivered reminders only matter for redelivery debugging; drop them on
	// a schedule instead of letting the table grow.
	purger := cron.New()
	if _, err := purger.AddFunc(cfg.PurgeCron, func() {
		purged, err := dispatch.PurgeDelivered(ctx, cfg.PurgeRetention)
		if err != nil {
			slog.Error("reminder purge failed", slog.String("error", err.Error()))
			return
		}
		if purged > 0 {
			slog.Info("purged delivered reminders", slog.Int64("count", purged))
		}
	}); err != nil {
		slog.Error("invalid purge cron expression",
			slog.String("cron", cfg.PurgeCron),
			slog.String("error", err.Error()),
		)
		os.Exit(exitCode)
	}
	purger.Start()
	defer purger.Stop()

	slog.Info("starting reminder dispatcher",
		slog.Duration("poll_interval", cfg.DispatcherPollInterval),
		slog.Int("batch_size", cfg.DispatcherBatchSize),
		slog.String("purge_cron", cfg.PurgeCron),
	)

	runDispatchLoop(ctx, dispatch, cfg.DispatcherPollInterval, cfg.DispatcherBatchSize)
}
