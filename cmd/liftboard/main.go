package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/liftboard/liftboard/internal/alerts"
	"github.com/liftboard/liftboard/internal/analytics"
	analyticshttp "github.com/liftboard/liftboard/internal/analytics/http"
	"github.com/liftboard/liftboard/internal/app"
	"github.com/liftboard/liftboard/internal/approvals"
	"github.com/liftboard/liftboard/internal/coreitems"
	"github.com/liftboard/liftboard/internal/estimates"
	"github.com/liftboard/liftboard/internal/lifts"
	"github.com/liftboard/liftboard/internal/masterdata/entities"
	"github.com/liftboard/liftboard/internal/masterdata/techs"
	"github.com/liftboard/liftboard/internal/masterdata/vehicles"
	"github.com/liftboard/liftboard/internal/observability"
	"github.com/liftboard/liftboard/internal/parts"
	"github.com/liftboard/liftboard/internal/procurement"
	"github.com/liftboard/liftboard/internal/qr"
	"github.com/liftboard/liftboard/internal/repairs"
	"github.com/liftboard/liftboard/internal/shared"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
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

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	auditLogger := shared.NewAuditLogger(pool)
	numbering := shared.NewNumbering(pool)

	alertsRepo := alerts.NewRepository(pool)
	alertsService := alerts.NewService(alertsRepo)
	alertsHandler := alerts.NewHandler(logger, alertsService)

	entitiesRepo := entities.NewRepository(pool)
	entitiesService := entities.NewService(entitiesRepo)
	entitiesHandler := entities.NewHandler(logger, entitiesService)

	vehiclesRepo := vehicles.NewRepository(pool)
	vehiclesService := vehicles.NewService(vehiclesRepo)
	vehiclesHandler := vehicles.NewHandler(logger, vehiclesService)

	techsRepo := techs.NewRepository(pool)
	techsService := techs.NewService(techsRepo)
	techsHandler := techs.NewHandler(logger, techsService)

	repairsRepo := repairs.NewRepository(pool)
	repairsService := repairs.NewService(repairsRepo, techsService, alertsService, numbering, auditLogger)
	repairsHandler := repairs.NewHandler(logger, repairsService)

	liftsRepo := lifts.NewRepository(pool)
	liftsService := lifts.NewService(liftsRepo, repairsService, auditLogger)
	liftsHandler := lifts.NewHandler(logger, liftsService)

	partsRepo := parts.NewRepository(pool)
	partsService := parts.NewService(partsRepo, alertsService, auditLogger)
	partsHandler := parts.NewHandler(logger, partsService)

	coreItemsRepo := coreitems.NewRepository(pool)
	coreItemsService := coreitems.NewService(coreItemsRepo, auditLogger)
	coreItemsHandler := coreitems.NewHandler(logger, coreItemsService)

	procurementRepo := procurement.NewRepository(pool)
	procurementService := procurement.NewService(procurementRepo, partsService, numbering, auditLogger)
	procurementHandler := procurement.NewHandler(logger, procurementService)

	estimatesRepo := estimates.NewRepository(pool)
	estimatesService := estimates.NewService(estimatesRepo, auditLogger, decimal.NewFromFloat(cfg.EstimateTaxRate))
	estimatesHandler := estimates.NewHandler(logger, estimatesService)

	approvalsRepo := approvals.NewRepository(pool)
	approvalsService := approvals.NewService(approvalsRepo, alertsService, auditLogger)
	approvalsHandler := approvals.NewHandler(logger, approvalsService)

	qrService := qr.NewService(partsService, repairsService)
	qrHandler := qr.NewHandler(logger, qrService)

	analyticsCache := analytics.NewCache(redisClient, cfg.KPICache)
	analyticsService := analytics.NewService(analytics.Ports{
		Repairs:   repairsService,
		Lifts:     liftsService,
		Parts:     partsService,
		Estimates: estimatesService,
		Approvals: approvalsService,
		Alerts:    alertsService,
		Techs:     techsService,
		Entities:  entitiesService,
	}, analyticsCache)
	analyticsHandler := analyticshttp.NewHandler(logger, analyticsService)

	metrics := observability.NewMetrics()

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		RepairsHandler:     repairsHandler,
		LiftsHandler:       liftsHandler,
		PartsHandler:       partsHandler,
		CoreItemsHandler:   coreItemsHandler,
		ProcurementHandler: procurementHandler,
		EstimatesHandler:   estimatesHandler,
		ApprovalsHandler:   approvalsHandler,
		AlertsHandler:      alertsHandler,
		QRHandler:          qrHandler,
		EntitiesHandler:    entitiesHandler,
		VehiclesHandler:    vehiclesHandler,
		TechsHandler:       techsHandler,
		AnalyticsHandler:   analyticsHandler,
		Metrics:            metrics,
		CacheBumper:        analyticsService,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
