package analytics

import (
	"context"

	"github.com/liftboard/liftboard/internal/alerts"
	"github.com/liftboard/liftboard/internal/approvals"
	"github.com/liftboard/liftboard/internal/estimates"
	"github.com/liftboard/liftboard/internal/lifts"
	"github.com/liftboard/liftboard/internal/masterdata/entities"
	"github.com/liftboard/liftboard/internal/masterdata/techs"
	"github.com/liftboard/liftboard/internal/parts"
	"github.com/liftboard/liftboard/internal/repairs"
)

// RepairsPort lists repair orders for KPI aggregation.
type RepairsPort interface {
	List(ctx context.Context, filter repairs.ListFilter) ([]repairs.RO, error)
}

// LiftsPort lists lift bays.
type LiftsPort interface {
	List(ctx context.Context) ([]lifts.Lift, error)
}

// PartsPort lists low stock parts.
type PartsPort interface {
	ListLowStock(ctx context.Context) ([]parts.Part, error)
}

// EstimatesPort lists estimates with computed totals.
type EstimatesPort interface {
	List(ctx context.Context, filter estimates.ListFilter) ([]estimates.Estimate, error)
}

// ApprovalsPort lists approval requests.
type ApprovalsPort interface {
	List(ctx context.Context, filter approvals.ListFilter) ([]approvals.Approval, error)
}

// AlertsPort lists alerts.
type AlertsPort interface {
	List(ctx context.Context, filter alerts.ListFilter) ([]alerts.Alert, error)
}

// TechsPort lists technicians.
type TechsPort interface {
	List(ctx context.Context) ([]techs.Tech, error)
}

// EntitiesPort lists customer and vendor records.
type EntitiesPort interface {
	List(ctx context.Context, search string) ([]entities.Entity, error)
}

// Ports bundles the module readers the dashboard aggregates over.
type Ports struct {
	Repairs   RepairsPort
	Lifts     LiftsPort
	Parts     PartsPort
	Estimates EstimatesPort
	Approvals ApprovalsPort
	Alerts    AlertsPort
	Techs     TechsPort
	Entities  EntitiesPort
}

// Service coordinates dashboard aggregation with the cache layer.
type Service struct {
	ports Ports
	cache *Cache
}

// NewService wires module ports with a Cache helper.
func NewService(ports Ports, cache *Cache) *Service {
	return &Service{ports: ports, cache: cache}
}

// InvalidateCache bumps the cache version after writes that change KPIs.
func (s *Service) InvalidateCache(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Bump(ctx)
}
