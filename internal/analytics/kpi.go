package analytics

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/liftboard/liftboard/internal/alerts"
	"github.com/liftboard/liftboard/internal/approvals"
	"github.com/liftboard/liftboard/internal/estimates"
	"github.com/liftboard/liftboard/internal/lifts"
	"github.com/liftboard/liftboard/internal/masterdata/techs"
	"github.com/liftboard/liftboard/internal/repairs"
)

// KPISummary contains the shop indicators surfaced on the dashboard. All
// values are derived at read time; nothing here is stored.
type KPISummary struct {
	TotalEntities    int     `json:"total_entities"`
	TotalROs         int     `json:"total_ros"`
	OpenROs          int     `json:"open_ros"`
	CompletedROs     int     `json:"completed_ros"`
	CompletionRate   float64 `json:"completion_rate"`
	ActiveROs        int     `json:"active_ros"`
	OverdueROs       int     `json:"overdue_ros"`
	ReworkROs        int     `json:"rework_ros"`
	AvgDaysInRepair  float64 `json:"avg_days_in_repair"`
	AvailableLifts   int     `json:"available_lifts"`
	LiftUtilization  float64 `json:"lift_utilization"`
	AvailableTechs   int     `json:"available_techs"`
	BusyTechs        int     `json:"busy_techs"`
	LowStockParts    int     `json:"low_stock_parts"`
	PendingApprovals int     `json:"pending_approvals"`
	UnreadAlerts     int     `json:"unread_alerts"`
	TotalRevenue     float64 `json:"total_revenue"`
	GeneratedAt      string  `json:"generated_at"`
}

// TechWorkload reports in-progress repair orders per technician. Every
// technician appears, including those with no work.
type TechWorkload struct {
	TechID    string `json:"tech_id"`
	Name      string `json:"name"`
	Available bool   `json:"available"`
	ActiveROs int    `json:"active_ros"`
}

type dashboardData struct {
	ros       []repairs.RO
	lifts     []lifts.Lift
	lowStock  int
	estimates []estimates.Estimate
	pending   []approvals.Approval
	unread    []alerts.Alert
	entities  int
	available int
	busy      int
}

func (s *Service) collect(ctx context.Context, now time.Time) (dashboardData, error) {
	var data dashboardData
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ros, err := s.ports.Repairs.List(ctx, repairs.ListFilter{})
		data.ros = ros
		return err
	})
	g.Go(func() error {
		ls, err := s.ports.Lifts.List(ctx)
		data.lifts = ls
		return err
	})
	g.Go(func() error {
		low, err := s.ports.Parts.ListLowStock(ctx)
		data.lowStock = len(low)
		return err
	})
	g.Go(func() error {
		ests, err := s.ports.Estimates.List(ctx, estimates.ListFilter{})
		data.estimates = ests
		return err
	})
	g.Go(func() error {
		pending, err := s.ports.Approvals.List(ctx, approvals.ListFilter{Status: approvals.StatusPending})
		data.pending = pending
		return err
	})
	g.Go(func() error {
		unread, err := s.ports.Alerts.List(ctx, alerts.ListFilter{UnreadOnly: true, Now: now})
		data.unread = unread
		return err
	})
	g.Go(func() error {
		es, err := s.ports.Entities.List(ctx, "")
		data.entities = len(es)
		return err
	})
	g.Go(func() error {
		ts, err := s.ports.Techs.List(ctx)
		for _, t := range ts {
			switch t.Availability {
			case techs.AvailabilityAvailable:
				data.available++
			case techs.AvailabilityBusy:
				data.busy++
			}
		}
		return err
	})
	if err := g.Wait(); err != nil {
		return dashboardData{}, err
	}
	return data, nil
}

func buildSummary(data dashboardData, now time.Time) KPISummary {
	summary := KPISummary{
		TotalEntities:    data.entities,
		AvailableTechs:   data.available,
		BusyTechs:        data.busy,
		LowStockParts:    data.lowStock,
		PendingApprovals: len(data.pending),
		UnreadAlerts:     len(data.unread),
		GeneratedAt:      now.Format(time.RFC3339),
	}
	activeDays := 0.0
	for _, ro := range data.ros {
		summary.TotalROs++
		switch ro.Status {
		case repairs.ROStatusOpen, repairs.ROStatusInProgress:
			summary.OpenROs++
		case repairs.ROStatusCompleted, repairs.ROStatusClosed:
			summary.CompletedROs++
		}
		if !ro.Status.Terminal() {
			summary.ActiveROs++
			activeDays += float64(ro.DaysInRepair(now))
		}
		if ro.IsOverdue(now) {
			summary.OverdueROs++
		}
		if ro.IsRework {
			summary.ReworkROs++
		}
	}
	if summary.TotalROs > 0 {
		summary.CompletionRate = float64(summary.CompletedROs) / float64(summary.TotalROs) * 100
	}
	if summary.ActiveROs > 0 {
		summary.AvgDaysInRepair = activeDays / float64(summary.ActiveROs)
	}
	occupied := 0
	for _, l := range data.lifts {
		switch l.Status {
		case lifts.StatusOccupied:
			occupied++
		case lifts.StatusAvailable:
			summary.AvailableLifts++
		}
	}
	if len(data.lifts) > 0 {
		summary.LiftUtilization = float64(occupied) / float64(len(data.lifts)) * 100
	}
	for _, est := range data.estimates {
		summary.TotalRevenue += est.Total.InexactFloat64()
	}
	return summary
}

// GetKPISummary resolves the dashboard card using cache-aware lookups.
func (s *Service) GetKPISummary(ctx context.Context, now time.Time) (KPISummary, error) {
	loader := func(ctx context.Context) (interface{}, error) {
		data, err := s.collect(ctx, now)
		if err != nil {
			return KPISummary{}, err
		}
		return buildSummary(data, now), nil
	}

	if s.cache == nil {
		value, err := loader(ctx)
		if err != nil {
			return KPISummary{}, err
		}
		return value.(KPISummary), nil
	}

	key, err := s.cache.BuildKey(ctx, "analytics", "kpi")
	if err != nil {
		return KPISummary{}, err
	}
	var summary KPISummary
	if err := s.cache.FetchJSON(ctx, key, &summary, loader); err != nil {
		return KPISummary{}, err
	}
	return summary, nil
}

// GetTechWorkload returns in-progress repair order counts per technician,
// zero-initialised so idle technicians still appear.
func (s *Service) GetTechWorkload(ctx context.Context) ([]TechWorkload, error) {
	ts, err := s.ports.Techs.List(ctx)
	if err != nil {
		return nil, err
	}
	ros, err := s.ports.Repairs.List(ctx, repairs.ListFilter{})
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(ts))
	for _, ro := range ros {
		if ro.Status != repairs.ROStatusInProgress {
			continue
		}
		for _, techID := range ro.AssignedTechs {
			counts[techID]++
		}
	}
	workload := make([]TechWorkload, 0, len(ts))
	for _, t := range ts {
		workload = append(workload, TechWorkload{
			TechID:    t.ID,
			Name:      t.Name,
			Available: t.Available(),
			ActiveROs: counts[t.ID],
		})
	}
	return workload, nil
}
