package coreitems

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/liftboard/liftboard/internal/shared"
)

// RepositoryPort describes repository operations used by Service.
type RepositoryPort interface {
	Insert(ctx context.Context, item CoreItem) error
	Get(ctx context.Context, id string) (CoreItem, error)
	List(ctx context.Context, filter ListFilter) ([]CoreItem, error)
	Update(ctx context.Context, item CoreItem) error
}

// AuditPort abstracts audit logging.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// ListFilter narrows core item listings.
type ListFilter struct {
	Status Status
	ROID   string
}

// Service coordinates core deposit tracking.
type Service struct {
	repo  RepositoryPort
	audit AuditPort
	now   func() time.Time
}

// NewService builds Service.
func NewService(repo RepositoryPort, audit AuditPort) *Service {
	return &Service{repo: repo, audit: audit, now: time.Now}
}

// WithNow overrides the service clock for testing.
func (s *Service) WithNow(fn func() time.Time) {
	if fn != nil {
		s.now = fn
	}
}

// CreateInput describes a new core item.
type CreateInput struct {
	PartID      string
	ROID        string
	Description string
	CoreCharge  decimal.Decimal
	Condition   Condition
}

// Create registers a new core awaiting return.
func (s *Service) Create(ctx context.Context, input CreateInput) (CoreItem, error) {
	if strings.TrimSpace(input.Description) == "" {
		return CoreItem{}, fmt.Errorf("%w: description required", ErrValidation)
	}
	if input.CoreCharge.IsNegative() {
		return CoreItem{}, fmt.Errorf("%w: core charge must be non-negative", ErrValidation)
	}
	if input.Condition == "" {
		input.Condition = ConditionUnknown
	}
	if !validCondition(input.Condition) {
		return CoreItem{}, fmt.Errorf("%w: unknown condition %q", ErrValidation, input.Condition)
	}
	item := CoreItem{
		ID:          uuid.NewString(),
		PartID:      input.PartID,
		ROID:        input.ROID,
		Description: input.Description,
		CoreCharge:  input.CoreCharge,
		Condition:   input.Condition,
		Status:      StatusPendingReturn,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.repo.Insert(ctx, item); err != nil {
		return CoreItem{}, err
	}
	s.recordAudit(ctx, "CORE_CREATE", item.ID, map[string]any{"ro_id": item.ROID})
	return item, nil
}

// Get returns one core item.
func (s *Service) Get(ctx context.Context, id string) (CoreItem, error) {
	return s.repo.Get(ctx, id)
}

// List returns core items matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]CoreItem, error) {
	return s.repo.List(ctx, filter)
}

// MarkReturned settles a pending core as returned, stamping the return time.
func (s *Service) MarkReturned(ctx context.Context, id string) (CoreItem, error) {
	return s.resolve(ctx, id, StatusReturned, "CORE_RETURN")
}

// MarkCharged settles a pending core as charged.
func (s *Service) MarkCharged(ctx context.Context, id string) (CoreItem, error) {
	return s.resolve(ctx, id, StatusCharged, "CORE_CHARGE")
}

func (s *Service) resolve(ctx context.Context, id string, status Status, action string) (CoreItem, error) {
	item, err := s.repo.Get(ctx, id)
	if err != nil {
		return CoreItem{}, err
	}
	if item.Resolved() {
		return CoreItem{}, fmt.Errorf("%w: core is %s", ErrInvalidState, item.Status)
	}
	item.Status = status
	if status == StatusReturned {
		now := s.now().UTC()
		item.ReturnedAt = &now
	}
	if err := s.repo.Update(ctx, item); err != nil {
		return CoreItem{}, err
	}
	s.recordAudit(ctx, action, item.ID, nil)
	return item, nil
}

func (s *Service) recordAudit(ctx context.Context, action, id string, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		Action:   action,
		Entity:   "core_item",
		EntityID: id,
		Meta:     meta,
	})
}
