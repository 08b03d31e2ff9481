package lifts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/liftboard/liftboard/internal/repairs"
	"github.com/liftboard/liftboard/internal/shared"
)

// RepositoryPort describes repository operations used by Service.
type RepositoryPort interface {
	Get(ctx context.Context, id string) (Lift, error)
	List(ctx context.Context) ([]Lift, error)
	FindByRO(ctx context.Context, roID string) (Lift, error)
	Update(ctx context.Context, lift Lift) error
}

// RepairOrders resolves repair order state for assignment checks.
type RepairOrders interface {
	Get(ctx context.Context, roID string) (repairs.RO, error)
}

// AuditPort abstracts audit logging.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service coordinates lift occupancy.
type Service struct {
	repo  RepositoryPort
	ros   RepairOrders
	audit AuditPort
	now   func() time.Time
}

// NewService builds Service.
func NewService(repo RepositoryPort, ros RepairOrders, audit AuditPort) *Service {
	return &Service{repo: repo, ros: ros, audit: audit, now: time.Now}
}

// WithNow overrides the service clock for testing.
func (s *Service) WithNow(fn func() time.Time) {
	if fn != nil {
		s.now = fn
	}
}

// Get returns one lift.
func (s *Service) Get(ctx context.Context, id string) (Lift, error) {
	return s.repo.Get(ctx, id)
}

// List returns every lift.
func (s *Service) List(ctx context.Context) ([]Lift, error) {
	return s.repo.List(ctx)
}

// ListAvailable returns lifts free to take work.
func (s *Service) ListAvailable(ctx context.Context) ([]Lift, error) {
	lifts, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	available := make([]Lift, 0)
	for _, l := range lifts {
		if l.Status == StatusAvailable {
			available = append(available, l)
		}
	}
	return available, nil
}

// AssignRO puts an active repair order on an available lift. An RO may sit on
// at most one lift at a time.
func (s *Service) AssignRO(ctx context.Context, liftID, roID string) (Lift, error) {
	if strings.TrimSpace(roID) == "" {
		return Lift{}, fmt.Errorf("%w: ro id required", ErrValidation)
	}
	ro, err := s.ros.Get(ctx, roID)
	if err != nil {
		return Lift{}, err
	}
	if ro.Status != repairs.ROStatusOpen && ro.Status != repairs.ROStatusInProgress {
		return Lift{}, fmt.Errorf("%w: repair order is %s", ErrInvalidState, ro.Status)
	}

	lift, err := s.repo.Get(ctx, liftID)
	if err != nil {
		return Lift{}, err
	}
	if lift.Status != StatusAvailable && lift.Status != StatusReserved {
		return Lift{}, fmt.Errorf("%w: lift %s is %s", ErrInvalidState, lift.Name, lift.Status)
	}
	if existing, err := s.repo.FindByRO(ctx, roID); err == nil {
		return Lift{}, fmt.Errorf("%w: on %s", ErrROOnLift, existing.Name)
	} else if !errors.Is(err, ErrNotFound) {
		return Lift{}, err
	}

	lift.Status = StatusOccupied
	lift.CurrentROID = &roID
	lift.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, lift); err != nil {
		return Lift{}, err
	}
	s.recordAudit(ctx, "LIFT_ASSIGN", lift.ID, map[string]any{"ro_id": roID})
	return lift, nil
}

// Release frees an occupied lift.
func (s *Service) Release(ctx context.Context, liftID string) (Lift, error) {
	lift, err := s.repo.Get(ctx, liftID)
	if err != nil {
		return Lift{}, err
	}
	if !lift.Occupied() {
		return Lift{}, fmt.Errorf("%w: lift %s is not occupied", ErrInvalidState, lift.Name)
	}
	lift.Status = StatusAvailable
	lift.CurrentROID = nil
	lift.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, lift); err != nil {
		return Lift{}, err
	}
	s.recordAudit(ctx, "LIFT_RELEASE", lift.ID, nil)
	return lift, nil
}

// SetStatus changes a lift's operational status. An occupied lift must be
// released before it can change status, and occupied itself is only reachable
// through AssignRO.
func (s *Service) SetStatus(ctx context.Context, liftID string, status Status) (Lift, error) {
	if !validStatus(status) {
		return Lift{}, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}
	if status == StatusOccupied {
		return Lift{}, fmt.Errorf("%w: occupied is set by assignment", ErrInvalidState)
	}
	lift, err := s.repo.Get(ctx, liftID)
	if err != nil {
		return Lift{}, err
	}
	if lift.Occupied() {
		return Lift{}, fmt.Errorf("%w: release lift %s first", ErrInvalidState, lift.Name)
	}
	lift.Status = status
	lift.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, lift); err != nil {
		return Lift{}, err
	}
	s.recordAudit(ctx, "LIFT_SET_STATUS", lift.ID, map[string]any{"status": string(status)})
	return lift, nil
}

// MarkServiced records completed maintenance and schedules the next service.
func (s *Service) MarkServiced(ctx context.Context, liftID string, nextServiceAt *time.Time) (Lift, error) {
	lift, err := s.repo.Get(ctx, liftID)
	if err != nil {
		return Lift{}, err
	}
	now := s.now().UTC()
	lift.LastServiced = &now
	lift.NextServiceAt = nextServiceAt
	if lift.Status == StatusMaintenance {
		lift.Status = StatusAvailable
	}
	lift.UpdatedAt = now
	if err := s.repo.Update(ctx, lift); err != nil {
		return Lift{}, err
	}
	s.recordAudit(ctx, "LIFT_SERVICED", lift.ID, nil)
	return lift, nil
}

func (s *Service) recordAudit(ctx context.Context, action, liftID string, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		Action:   action,
		Entity:   "lift",
		EntityID: liftID,
		Meta:     meta,
	})
}
