package repairs

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/liftboard/liftboard/internal/alerts"
	"github.com/liftboard/liftboard/internal/shared"
)

// RepositoryPort describes repository operations used by Service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	GetRO(ctx context.Context, id string) (RO, error)
	ListROs(ctx context.Context, filter ListFilter) ([]RO, error)
}

// TxRepository groups mutations executed within one transaction.
// InsertRO persists the order header only; phases go through InsertPhase.
type TxRepository interface {
	InsertRO(ctx context.Context, ro RO) error
	UpdateRO(ctx context.Context, ro RO) error
	InsertPhase(ctx context.Context, phase Phase) error
	UpdatePhase(ctx context.Context, phase Phase) error
	InsertHistory(ctx context.Context, entry HistoryEntry) error
}

// TechDirectory resolves technician existence for assignment checks.
type TechDirectory interface {
	Exists(ctx context.Context, techID string) (bool, error)
}

// AlertsPort raises shop alerts from lifecycle events.
type AlertsPort interface {
	Raise(ctx context.Context, input alerts.CreateInput) (alerts.Alert, error)
}

// NumberingPort issues document numbers.
type NumberingPort interface {
	Next(ctx context.Context, prefix string, at time.Time) (string, error)
}

// AuditPort abstracts audit logging.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// ListFilter narrows RO listings.
type ListFilter struct {
	Status ROStatus
	TechID string
}

// Service coordinates the repair order lifecycle.
type Service struct {
	repo      RepositoryPort
	techs     TechDirectory
	alerts    AlertsPort
	numbering NumberingPort
	audit     AuditPort
	now       func() time.Time
}

// NewService builds Service.
func NewService(repo RepositoryPort, techs TechDirectory, alertsPort AlertsPort, numbering NumberingPort, audit AuditPort) *Service {
	return &Service{repo: repo, techs: techs, alerts: alertsPort, numbering: numbering, audit: audit, now: time.Now}
}

// WithNow overrides the service clock for testing.
func (s *Service) WithNow(fn func() time.Time) {
	if fn != nil {
		s.now = fn
	}
}

// CreateROInput describes a new repair order.
type CreateROInput struct {
	VehicleID           string
	CustomerID          string
	Description         string
	Priority            Priority
	EstimatedCompletion *time.Time
	Phases              []CreatePhaseInput
}

// CreatePhaseInput describes one phase of a new RO.
type CreatePhaseInput struct {
	Name           string
	Description    string
	EstimatedHours float64
}

// CreateRO opens a new repair order. When no phases are supplied the
// standard phase template is applied.
func (s *Service) CreateRO(ctx context.Context, input CreateROInput) (RO, error) {
	if strings.TrimSpace(input.VehicleID) == "" || strings.TrimSpace(input.CustomerID) == "" {
		return RO{}, fmt.Errorf("%w: vehicle and customer required", ErrValidation)
	}
	priority := input.Priority
	if priority == "" {
		priority = PriorityMedium
	}
	now := s.now().UTC()
	number := ""
	if s.numbering != nil {
		var err error
		number, err = s.numbering.Next(ctx, "RO", now)
		if err != nil {
			return RO{}, err
		}
	} else {
		number = fmt.Sprintf("RO-%d", now.UnixNano())
	}

	ro := RO{
		ID:                  uuid.NewString(),
		Number:              number,
		VehicleID:           input.VehicleID,
		CustomerID:          input.CustomerID,
		Description:         input.Description,
		Status:              ROStatusOpen,
		Priority:            priority,
		EstimatedCompletion: input.EstimatedCompletion,
		AssignedTechs:       []string{},
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	phases := input.Phases
	if len(phases) == 0 {
		for _, std := range StandardPhases {
			phases = append(phases, CreatePhaseInput{Name: std.Name})
		}
	}
	for i, in := range phases {
		if strings.TrimSpace(in.Name) == "" {
			return RO{}, fmt.Errorf("%w: phase name required", ErrValidation)
		}
		ro.Phases = append(ro.Phases, Phase{
			ID:             uuid.NewString(),
			ROID:           ro.ID,
			Name:           in.Name,
			Description:    in.Description,
			EstimatedHours: in.EstimatedHours,
			Status:         PhaseStatusPending,
			Order:          i + 1,
		})
	}

	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := tx.InsertRO(ctx, ro); err != nil {
			return err
		}
		for _, p := range ro.Phases {
			if err := tx.InsertPhase(ctx, p); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return RO{}, err
	}
	s.recordAudit(ctx, "RO_CREATE", ro.ID, map[string]any{"number": ro.Number})
	return ro, nil
}

// Get returns one repair order with phases.
func (s *Service) Get(ctx context.Context, roID string) (RO, error) {
	return s.repo.GetRO(ctx, roID)
}

// List returns repair orders matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]RO, error) {
	return s.repo.ListROs(ctx, filter)
}

// ListOverdue returns ROs whose estimated completion is strictly in the past
// and whose status is neither completed nor closed.
func (s *Service) ListOverdue(ctx context.Context, now time.Time) ([]RO, error) {
	ros, err := s.repo.ListROs(ctx, ListFilter{})
	if err != nil {
		return nil, err
	}
	overdue := make([]RO, 0)
	for _, ro := range ros {
		if ro.IsOverdue(now) {
			overdue = append(overdue, ro)
		}
	}
	sort.Slice(overdue, func(i, j int) bool { return overdue[i].Number < overdue[j].Number })
	return overdue, nil
}

// AssignTech assigns a technician. Without a phase id the tech joins the
// RO-level set; with a phase id the phase assignment is set and the tech
// joins the RO-level set as well, keeping the set a superset of phase
// assignees.
func (s *Service) AssignTech(ctx context.Context, roID, techID, phaseID string) (RO, error) {
	if strings.TrimSpace(techID) == "" {
		return RO{}, fmt.Errorf("%w: tech id required", ErrValidation)
	}
	if s.techs != nil {
		ok, err := s.techs.Exists(ctx, techID)
		if err != nil {
			return RO{}, err
		}
		if !ok {
			return RO{}, fmt.Errorf("%w: tech %s", ErrNotFound, techID)
		}
	}
	ro, err := s.repo.GetRO(ctx, roID)
	if err != nil {
		return RO{}, err
	}

	var phase Phase
	phaseIdx := -1
	if phaseID != "" {
		var ok bool
		phase, phaseIdx, ok = ro.FindPhase(phaseID)
		if !ok {
			return RO{}, fmt.Errorf("%w: %s", ErrPhaseNotFound, phaseID)
		}
		phase.AssignedTechID = techID
		ro.Phases[phaseIdx] = phase
	}
	if !ro.HasTech(techID) {
		ro.AssignedTechs = append(ro.AssignedTechs, techID)
	}
	ro.UpdatedAt = s.now().UTC()

	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if phaseIdx >= 0 {
			if err := tx.UpdatePhase(ctx, phase); err != nil {
				return err
			}
		}
		return tx.UpdateRO(ctx, ro)
	})
	if err != nil {
		return RO{}, err
	}
	s.recordAudit(ctx, "RO_ASSIGN_TECH", ro.ID, map[string]any{"tech_id": techID, "phase_id": phaseID})
	return ro, nil
}

// AdvancePhase moves a phase one step forward: pending becomes in_progress
// (stamping the start date if unset), in_progress becomes completed
// (stamping the end date). Phases already completed or on hold are a no-op:
// the RO is returned unchanged and UpdatedAt is not bumped.
func (s *Service) AdvancePhase(ctx context.Context, roID, phaseID string) (RO, error) {
	ro, err := s.repo.GetRO(ctx, roID)
	if err != nil {
		return RO{}, err
	}
	phase, idx, ok := ro.FindPhase(phaseID)
	if !ok {
		return RO{}, fmt.Errorf("%w: %s", ErrPhaseNotFound, phaseID)
	}

	now := s.now().UTC()
	var event string
	switch phase.Status {
	case PhaseStatusPending:
		phase.Status = PhaseStatusInProgress
		if phase.StartedAt == nil {
			started := now
			phase.StartedAt = &started
		}
		event = HistoryStarted
	case PhaseStatusInProgress:
		phase.Status = PhaseStatusCompleted
		ended := now
		phase.EndedAt = &ended
		if phase.StartedAt != nil {
			phase.ActualHours = ended.Sub(*phase.StartedAt).Hours()
		}
		event = HistoryCompleted
	default:
		// completed and on_hold do not advance
		return ro, nil
	}

	ro.Phases[idx] = phase
	ro.UpdatedAt = now

	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := tx.UpdatePhase(ctx, phase); err != nil {
			return err
		}
		if err := tx.UpdateRO(ctx, ro); err != nil {
			return err
		}
		return tx.InsertHistory(ctx, HistoryEntry{
			ROID:      ro.ID,
			PhaseID:   phase.ID,
			PhaseName: phase.Name,
			Event:     event,
			TechID:    phase.AssignedTechID,
			At:        now,
		})
	})
	if err != nil {
		return RO{}, err
	}
	s.recordAudit(ctx, "RO_ADVANCE_PHASE", ro.ID, map[string]any{"phase_id": phase.ID, "event": event})
	return ro, nil
}

// ResumePhase moves an on_hold phase back to in_progress.
func (s *Service) ResumePhase(ctx context.Context, roID, phaseID string) (RO, error) {
	ro, err := s.repo.GetRO(ctx, roID)
	if err != nil {
		return RO{}, err
	}
	phase, idx, ok := ro.FindPhase(phaseID)
	if !ok {
		return RO{}, fmt.Errorf("%w: %s", ErrPhaseNotFound, phaseID)
	}
	if phase.Status != PhaseStatusOnHold {
		return RO{}, fmt.Errorf("%w: phase %s is %s", ErrInvalidState, phaseID, phase.Status)
	}

	now := s.now().UTC()
	phase.Status = PhaseStatusInProgress
	if phase.StartedAt == nil {
		started := now
		phase.StartedAt = &started
	}
	ro.Phases[idx] = phase
	ro.UpdatedAt = now

	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := tx.UpdatePhase(ctx, phase); err != nil {
			return err
		}
		if err := tx.UpdateRO(ctx, ro); err != nil {
			return err
		}
		return tx.InsertHistory(ctx, HistoryEntry{
			ROID:      ro.ID,
			PhaseID:   phase.ID,
			PhaseName: phase.Name,
			Event:     HistoryResumed,
			TechID:    phase.AssignedTechID,
			At:        now,
		})
	})
	if err != nil {
		return RO{}, err
	}
	s.recordAudit(ctx, "RO_RESUME_PHASE", ro.ID, map[string]any{"phase_id": phase.ID})
	return ro, nil
}

// FlagRework puts a phase on hold and marks the RO as rework.
func (s *Service) FlagRework(ctx context.Context, roID, phaseID, reason string) (RO, error) {
	if strings.TrimSpace(reason) == "" {
		return RO{}, fmt.Errorf("%w: rework reason required", ErrValidation)
	}
	ro, err := s.repo.GetRO(ctx, roID)
	if err != nil {
		return RO{}, err
	}
	phase, idx, ok := ro.FindPhase(phaseID)
	if !ok {
		return RO{}, fmt.Errorf("%w: %s", ErrPhaseNotFound, phaseID)
	}

	now := s.now().UTC()
	phase.Status = PhaseStatusOnHold
	ro.Phases[idx] = phase
	ro.IsRework = true
	ro.ReworkReason = reason
	ro.UpdatedAt = now

	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := tx.UpdatePhase(ctx, phase); err != nil {
			return err
		}
		if err := tx.UpdateRO(ctx, ro); err != nil {
			return err
		}
		return tx.InsertHistory(ctx, HistoryEntry{
			ROID:      ro.ID,
			PhaseID:   phase.ID,
			PhaseName: phase.Name,
			Event:     HistoryHeld,
			TechID:    phase.AssignedTechID,
			At:        now,
		})
	})
	if err != nil {
		return RO{}, err
	}
	if s.alerts != nil {
		_, _ = s.alerts.Raise(ctx, alerts.CreateInput{
			Type:       alerts.TypeWarning,
			Title:      "Rework Flagged",
			Message:    fmt.Sprintf("%s phase %q flagged for rework: %s", ro.Number, phase.Name, reason),
			EntityID:   ro.ID,
			EntityType: alerts.EntityRO,
		})
	}
	s.recordAudit(ctx, "RO_FLAG_REWORK", ro.ID, map[string]any{"phase_id": phase.ID, "reason": reason})
	return ro, nil
}

// Start moves an open RO into in_progress. Phase advancement never cascades
// to RO status, so the transition is an explicit command.
func (s *Service) Start(ctx context.Context, roID string) (RO, error) {
	ro, err := s.repo.GetRO(ctx, roID)
	if err != nil {
		return RO{}, err
	}
	if ro.Status != ROStatusOpen {
		return RO{}, fmt.Errorf("%w: RO is %s", ErrInvalidState, ro.Status)
	}
	ro.Status = ROStatusInProgress
	ro.UpdatedAt = s.now().UTC()
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		return tx.UpdateRO(ctx, ro)
	})
	if err != nil {
		return RO{}, err
	}
	s.recordAudit(ctx, "RO_START", ro.ID, nil)
	return ro, nil
}

// Complete marks an in_progress RO completed once every phase is completed.
func (s *Service) Complete(ctx context.Context, roID string) (RO, error) {
	ro, err := s.repo.GetRO(ctx, roID)
	if err != nil {
		return RO{}, err
	}
	if ro.Status != ROStatusInProgress {
		return RO{}, fmt.Errorf("%w: RO is %s", ErrInvalidState, ro.Status)
	}
	for _, p := range ro.Phases {
		if p.Status != PhaseStatusCompleted {
			return RO{}, fmt.Errorf("%w: phase %q is %s", ErrInvalidState, p.Name, p.Status)
		}
	}
	now := s.now().UTC()
	ro.Status = ROStatusCompleted
	ro.ActualCompletion = &now
	ro.UpdatedAt = now
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		return tx.UpdateRO(ctx, ro)
	})
	if err != nil {
		return RO{}, err
	}
	s.recordAudit(ctx, "RO_COMPLETE", ro.ID, nil)
	return ro, nil
}

// Close archives a completed RO.
func (s *Service) Close(ctx context.Context, roID string) (RO, error) {
	ro, err := s.repo.GetRO(ctx, roID)
	if err != nil {
		return RO{}, err
	}
	if ro.Status != ROStatusCompleted {
		return RO{}, fmt.Errorf("%w: RO is %s", ErrInvalidState, ro.Status)
	}
	ro.Status = ROStatusClosed
	ro.UpdatedAt = s.now().UTC()
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		return tx.UpdateRO(ctx, ro)
	})
	if err != nil {
		return RO{}, err
	}
	s.recordAudit(ctx, "RO_CLOSE", ro.ID, nil)
	return ro, nil
}

func (s *Service) recordAudit(ctx context.Context, action, roID string, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		Action:   action,
		Entity:   "repair_order",
		EntityID: roID,
		Meta:     meta,
	})
}
