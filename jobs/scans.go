package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/liftboard/liftboard/internal/alerts"
	jobmetrics "github.com/liftboard/liftboard/internal/jobs"
	"github.com/liftboard/liftboard/internal/lifts"
	"github.com/liftboard/liftboard/internal/parts"
	"github.com/liftboard/liftboard/internal/repairs"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// RepairsScanner lists overdue repair orders.
type RepairsScanner interface {
	ListOverdue(ctx context.Context, now time.Time) ([]repairs.RO, error)
}

// PartsScanner lists low stock parts.
type PartsScanner interface {
	ListLowStock(ctx context.Context) ([]parts.Part, error)
}

// LiftsScanner lists lift bays.
type LiftsScanner interface {
	List(ctx context.Context) ([]lifts.Lift, error)
}

// AlertsSink raises alerts and answers idempotence checks.
type AlertsSink interface {
	Raise(ctx context.Context, input alerts.CreateInput) (alerts.Alert, error)
	HasUnreadFor(ctx context.Context, entityID string, entityType alerts.EntityType) (bool, error)
}

// Scans bundles the periodic shop sweeps. Each scan is idempotent: an entity
// with an unread alert is skipped until someone acknowledges it.
type Scans struct {
	logger  *slog.Logger
	repairs RepairsScanner
	parts   PartsScanner
	lifts   LiftsScanner
	alerts  AlertsSink
	metrics *jobmetrics.Metrics
	now     func() time.Time
}

// NewScans constructs the scan handlers.
func NewScans(logger *slog.Logger, repairsPort RepairsScanner, partsPort PartsScanner, liftsPort LiftsScanner, alertsSink AlertsSink) *Scans {
	return &Scans{
		logger:  logger,
		repairs: repairsPort,
		parts:   partsPort,
		lifts:   liftsPort,
		alerts:  alertsSink,
		metrics: defaultJobMetrics,
		now:     time.Now,
	}
}

// WithNow overrides the scan clock for testing.
func (s *Scans) WithNow(fn func() time.Time) {
	if fn != nil {
		s.now = fn
	}
}

// Handlers returns the asynq registrations for all scans.
func (s *Scans) Handlers() []TaskHandler {
	return []TaskHandler{
		{Type: TaskOverdueScan, Handler: s.HandleOverdueScan},
		{Type: TaskLowStockScan, Handler: s.HandleLowStockScan},
		{Type: TaskLiftMaintenanceScan, Handler: s.HandleLiftMaintenanceScan},
	}
}

// CronEntries returns the default schedule for all scans.
func CronEntries() []CronRegistration {
	return []CronRegistration{
		{Spec: "*/15 * * * *", Task: NewOverdueScanTask()},
		{Spec: "0 * * * *", Task: NewLowStockScanTask()},
		{Spec: "0 6 * * *", Task: NewLiftMaintenanceScanTask()},
	}
}

// HandleOverdueScan raises an error alert for every overdue repair order that
// does not already have an unread alert.
func (s *Scans) HandleOverdueScan(ctx context.Context, _ *asynq.Task) error {
	tracker := s.metrics.Track(TaskOverdueScan)
	return tracker.End(s.scanOverdue(ctx))
}

func (s *Scans) scanOverdue(ctx context.Context) error {
	now := s.now().UTC()
	overdue, err := s.repairs.ListOverdue(ctx, now)
	if err != nil {
		return err
	}
	raised := 0
	for _, ro := range overdue {
		already, err := s.alerts.HasUnreadFor(ctx, ro.ID, alerts.EntityRO)
		if err != nil {
			return err
		}
		if already {
			continue
		}
		_, err = s.alerts.Raise(ctx, alerts.CreateInput{
			Type:       alerts.TypeError,
			Title:      "Repair Order Overdue",
			Message:    fmt.Sprintf("%s is %d days past its estimated completion", ro.Number, ro.DaysOverdue(now)),
			EntityID:   ro.ID,
			EntityType: alerts.EntityRO,
		})
		if err != nil {
			return err
		}
		raised++
	}
	s.logger.Info("overdue scan complete", slog.Int("overdue", len(overdue)), slog.Int("raised", raised))
	return nil
}

// HandleLowStockScan raises a warning for every low stock part that does not
// already have an unread alert.
func (s *Scans) HandleLowStockScan(ctx context.Context, _ *asynq.Task) error {
	tracker := s.metrics.Track(TaskLowStockScan)
	return tracker.End(s.scanLowStock(ctx))
}

func (s *Scans) scanLowStock(ctx context.Context) error {
	low, err := s.parts.ListLowStock(ctx)
	if err != nil {
		return err
	}
	raised := 0
	for _, part := range low {
		already, err := s.alerts.HasUnreadFor(ctx, part.ID, alerts.EntityPart)
		if err != nil {
			return err
		}
		if already {
			continue
		}
		_, err = s.alerts.Raise(ctx, alerts.CreateInput{
			Type:       alerts.TypeWarning,
			Title:      "Low Stock",
			Message:    fmt.Sprintf("%s (%s) is at %d, reorder point %d", part.Name, part.PartNumber, part.Quantity, part.MinQuantity),
			EntityID:   part.ID,
			EntityType: alerts.EntityPart,
		})
		if err != nil {
			return err
		}
		raised++
	}
	s.logger.Info("low stock scan complete", slog.Int("low", len(low)), slog.Int("raised", raised))
	return nil
}

// HandleLiftMaintenanceScan raises an info alert for every lift past its
// scheduled service date.
func (s *Scans) HandleLiftMaintenanceScan(ctx context.Context, _ *asynq.Task) error {
	tracker := s.metrics.Track(TaskLiftMaintenanceScan)
	return tracker.End(s.scanLiftMaintenance(ctx))
}

func (s *Scans) scanLiftMaintenance(ctx context.Context) error {
	now := s.now().UTC()
	all, err := s.lifts.List(ctx)
	if err != nil {
		return err
	}
	raised := 0
	for _, lift := range all {
		if !lift.ServiceDue(now) {
			continue
		}
		already, err := s.alerts.HasUnreadFor(ctx, lift.ID, alerts.EntityLift)
		if err != nil {
			return err
		}
		if already {
			continue
		}
		_, err = s.alerts.Raise(ctx, alerts.CreateInput{
			Type:       alerts.TypeInfo,
			Title:      "Lift Service Due",
			Message:    fmt.Sprintf("%s is past its scheduled service date", lift.Name),
			EntityID:   lift.ID,
			EntityType: alerts.EntityLift,
		})
		if err != nil {
			return err
		}
		raised++
	}
	s.logger.Info("maintenance scan complete", slog.Int("raised", raised))
	return nil
}
