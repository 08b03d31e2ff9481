package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/liftboard/liftboard/internal/alerts"
	analyticshttp "github.com/liftboard/liftboard/internal/analytics/http"
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
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger             *slog.Logger
	Config             *Config
	RepairsHandler     *repairs.Handler
	LiftsHandler       *lifts.Handler
	PartsHandler       *parts.Handler
	CoreItemsHandler   *coreitems.Handler
	ProcurementHandler *procurement.Handler
	EstimatesHandler   *estimates.Handler
	ApprovalsHandler   *approvals.Handler
	AlertsHandler      *alerts.Handler
	QRHandler          *qr.Handler
	EntitiesHandler    *entities.Handler
	VehiclesHandler    *vehicles.Handler
	TechsHandler       *techs.Handler
	AnalyticsHandler   *analyticshttp.Handler
	Metrics            *observability.Metrics
	CacheBumper        CacheBumper
}

// NewRouter constructs the chi.Router with LiftBoard defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.Metrics != nil {
		r.Handle("/metrics", params.Metrics.Handler())
	}

	r.Route("/api/v1", func(api chi.Router) {
		if params.CacheBumper != nil {
			api.Use(BumpOnWrite(params.Logger, params.CacheBumper))
		}
		api.Route("/repair-orders", params.RepairsHandler.MountRoutes)
		api.Route("/lifts", params.LiftsHandler.MountRoutes)
		api.Route("/parts", params.PartsHandler.MountRoutes)
		api.Route("/core-items", params.CoreItemsHandler.MountRoutes)
		api.Route("/purchase-orders", params.ProcurementHandler.MountRoutes)
		api.Route("/estimates", params.EstimatesHandler.MountRoutes)
		api.Route("/approvals", params.ApprovalsHandler.MountRoutes)
		api.Route("/alerts", params.AlertsHandler.MountRoutes)
		api.Route("/qr", params.QRHandler.MountRoutes)
		api.Route("/entities", params.EntitiesHandler.MountRoutes)
		api.Route("/vehicles", params.VehiclesHandler.MountRoutes)
		api.Route("/techs", params.TechsHandler.MountRoutes)
		api.Route("/dashboard", params.AnalyticsHandler.MountRoutes)
	})

	return r
}
