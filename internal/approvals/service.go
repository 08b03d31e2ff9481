package approvals

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/liftboard/liftboard/internal/alerts"
	"github.com/liftboard/liftboard/internal/shared"
)

// RepositoryPort describes repository operations used by Service.
type RepositoryPort interface {
	Insert(ctx context.Context, approval Approval) error
	Get(ctx context.Context, id string) (Approval, error)
	List(ctx context.Context, filter ListFilter) ([]Approval, error)
	Update(ctx context.Context, approval Approval) error
}

// AlertsPort raises shop alerts on approval events.
type AlertsPort interface {
	Raise(ctx context.Context, input alerts.CreateInput) (alerts.Alert, error)
}

// AuditPort abstracts audit logging.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// ListFilter narrows approval listings.
type ListFilter struct {
	EntityID string
	Status   Status
}

// Service coordinates customer approval requests.
type Service struct {
	repo   RepositoryPort
	alerts AlertsPort
	audit  AuditPort
	now    func() time.Time
}

// NewService builds Service.
func NewService(repo RepositoryPort, alertsPort AlertsPort, audit AuditPort) *Service {
	return &Service{repo: repo, alerts: alertsPort, audit: audit, now: time.Now}
}

// WithNow overrides the service clock for testing.
func (s *Service) WithNow(fn func() time.Time) {
	if fn != nil {
		s.now = fn
	}
}

// RequestInput describes a new approval request.
type RequestInput struct {
	EntityID    string
	EntityType  EntityType
	Description string
	Amount      *decimal.Decimal
}

// Request opens a pending approval. Repeated requests against the same
// entity are deliberate: each re-quote needs its own sign-off.
func (s *Service) Request(ctx context.Context, input RequestInput) (Approval, error) {
	if strings.TrimSpace(input.EntityID) == "" {
		return Approval{}, fmt.Errorf("%w: entity id required", ErrValidation)
	}
	if !validEntityType(input.EntityType) {
		return Approval{}, fmt.Errorf("%w: unknown entity type %q", ErrValidation, input.EntityType)
	}
	approval := Approval{
		ID:          uuid.NewString(),
		EntityID:    input.EntityID,
		EntityType:  input.EntityType,
		Description: input.Description,
		Amount:      input.Amount,
		Status:      StatusPending,
		RequestedAt: s.now().UTC(),
	}
	if err := s.repo.Insert(ctx, approval); err != nil {
		return Approval{}, err
	}
	if s.alerts != nil {
		notice := alerts.CreateInput{
			Type:    alerts.TypeInfo,
			Title:   "Approval Requested",
			Message: fmt.Sprintf("approval pending for %s %s", input.EntityType, input.EntityID),
		}
		if input.EntityType == EntityRO {
			notice.EntityID = input.EntityID
			notice.EntityType = alerts.EntityRO
		}
		_, _ = s.alerts.Raise(ctx, notice)
	}
	s.recordAudit(ctx, "APPROVAL_REQUEST", approval.ID, map[string]any{"entity_id": input.EntityID, "entity_type": string(input.EntityType)})
	return approval, nil
}

// Get returns one approval.
func (s *Service) Get(ctx context.Context, id string) (Approval, error) {
	return s.repo.Get(ctx, id)
}

// List returns approvals matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Approval, error) {
	return s.repo.List(ctx, filter)
}

// Approve decides a pending approval positively.
func (s *Service) Approve(ctx context.Context, id, respondedBy string) (Approval, error) {
	return s.decide(ctx, id, respondedBy, StatusApproved, "APPROVAL_APPROVE")
}

// Reject decides a pending approval negatively.
func (s *Service) Reject(ctx context.Context, id, respondedBy string) (Approval, error) {
	return s.decide(ctx, id, respondedBy, StatusRejected, "APPROVAL_REJECT")
}

func (s *Service) decide(ctx context.Context, id, respondedBy string, status Status, action string) (Approval, error) {
	approval, err := s.repo.Get(ctx, id)
	if err != nil {
		return Approval{}, err
	}
	if !approval.Pending() {
		return Approval{}, fmt.Errorf("%w: approval is %s", ErrAlreadyDecided, approval.Status)
	}
	now := s.now().UTC()
	approval.Status = status
	approval.RespondedAt = &now
	approval.RespondedBy = respondedBy
	if err := s.repo.Update(ctx, approval); err != nil {
		return Approval{}, err
	}
	s.recordAudit(ctx, action, approval.ID, map[string]any{"responded_by": respondedBy})
	return approval, nil
}

func (s *Service) recordAudit(ctx context.Context, action, id string, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		Action:   action,
		Entity:   "approval",
		EntityID: id,
		Meta:     meta,
	})
}
