package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/liftboard/liftboard/internal/alerts"
	"github.com/liftboard/liftboard/internal/app"
	"github.com/liftboard/liftboard/internal/lifts"
	"github.com/liftboard/liftboard/internal/masterdata/techs"
	"github.com/liftboard/liftboard/internal/parts"
	"github.com/liftboard/liftboard/internal/repairs"
	"github.com/liftboard/liftboard/internal/shared"
	"github.com/liftboard/liftboard/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := pgxpool.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	auditLogger := shared.NewAuditLogger(pool)
	numbering := shared.NewNumbering(pool)

	alertsService := alerts.NewService(alerts.NewRepository(pool))
	techsService := techs.NewService(techs.NewRepository(pool))
	repairsService := repairs.NewService(repairs.NewRepository(pool), techsService, alertsService, numbering, auditLogger)
	partsService := parts.NewService(parts.NewRepository(pool), alertsService, auditLogger)
	liftsService := lifts.NewService(lifts.NewRepository(pool), repairsService, auditLogger)

	scans := jobs.NewScans(logger, repairsService, partsService, liftsService, alertsService)

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers:  scans.Handlers(),
		Cron:      jobs.CronEntries(),
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
