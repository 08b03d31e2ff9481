package estimates

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
	Insert(ctx context.Context, est Estimate) error
	Get(ctx context.Context, id string) (Estimate, error)
	GetByRO(ctx context.Context, roID string) (Estimate, error)
	List(ctx context.Context, filter ListFilter) ([]Estimate, error)
	Update(ctx context.Context, est Estimate) error
	InsertItem(ctx context.Context, item Item) error
	DeleteItem(ctx context.Context, estimateID, itemID string) error
}

// AuditPort abstracts audit logging.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// ListFilter narrows estimate listings.
type ListFilter struct {
	Status Status
}

// Service coordinates estimate pricing and workflow. Every estimate returned
// from the service carries freshly computed totals.
type Service struct {
	repo    RepositoryPort
	audit   AuditPort
	taxRate decimal.Decimal
	now     func() time.Time
}

// NewService builds Service with the shop tax rate.
func NewService(repo RepositoryPort, audit AuditPort, taxRate decimal.Decimal) *Service {
	return &Service{repo: repo, audit: audit, taxRate: taxRate, now: time.Now}
}

// WithNow overrides the service clock for testing.
func (s *Service) WithNow(fn func() time.Time) {
	if fn != nil {
		s.now = fn
	}
}

// CreateInput describes a new estimate.
type CreateInput struct {
	ROID     string
	Items    []ItemInput
	Discount decimal.Decimal
}

// ItemInput describes one estimate line.
type ItemInput struct {
	Type        ItemType
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
}

// Create opens a draft estimate for a repair order.
func (s *Service) Create(ctx context.Context, input CreateInput) (Estimate, error) {
	if strings.TrimSpace(input.ROID) == "" {
		return Estimate{}, fmt.Errorf("%w: ro id required", ErrValidation)
	}
	if input.Discount.IsNegative() {
		return Estimate{}, fmt.Errorf("%w: discount must be non-negative", ErrValidation)
	}
	now := s.now().UTC()
	est := Estimate{
		ID:        uuid.NewString(),
		ROID:      input.ROID,
		Status:    StatusDraft,
		Discount:  input.Discount,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, in := range input.Items {
		item, err := s.buildItem(est.ID, in)
		if err != nil {
			return Estimate{}, err
		}
		est.Items = append(est.Items, item)
	}
	if err := s.repo.Insert(ctx, est); err != nil {
		return Estimate{}, err
	}
	s.recordAudit(ctx, "ESTIMATE_CREATE", est.ID, map[string]any{"ro_id": est.ROID})
	return Price(est, s.taxRate), nil
}

// Get returns one estimate with computed totals.
func (s *Service) Get(ctx context.Context, id string) (Estimate, error) {
	est, err := s.repo.Get(ctx, id)
	if err != nil {
		return Estimate{}, err
	}
	return Price(est, s.taxRate), nil
}

// GetByRO returns the estimate for a repair order.
func (s *Service) GetByRO(ctx context.Context, roID string) (Estimate, error) {
	est, err := s.repo.GetByRO(ctx, roID)
	if err != nil {
		return Estimate{}, err
	}
	return Price(est, s.taxRate), nil
}

// List returns estimates matching the filter, totals computed.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Estimate, error) {
	ests, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	for i := range ests {
		ests[i] = Price(ests[i], s.taxRate)
	}
	return ests, nil
}

// AddItem appends a line to a draft estimate.
func (s *Service) AddItem(ctx context.Context, estimateID string, input ItemInput) (Estimate, error) {
	est, err := s.repo.Get(ctx, estimateID)
	if err != nil {
		return Estimate{}, err
	}
	if !est.Status.Editable() {
		return Estimate{}, fmt.Errorf("%w: estimate is %s", ErrInvalidState, est.Status)
	}
	item, err := s.buildItem(est.ID, input)
	if err != nil {
		return Estimate{}, err
	}
	if err := s.repo.InsertItem(ctx, item); err != nil {
		return Estimate{}, err
	}
	est.Items = append(est.Items, item)
	est.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, est); err != nil {
		return Estimate{}, err
	}
	s.recordAudit(ctx, "ESTIMATE_ADD_ITEM", est.ID, map[string]any{"item_id": item.ID})
	return Price(est, s.taxRate), nil
}

// RemoveItem deletes a line from a draft estimate.
func (s *Service) RemoveItem(ctx context.Context, estimateID, itemID string) (Estimate, error) {
	est, err := s.repo.Get(ctx, estimateID)
	if err != nil {
		return Estimate{}, err
	}
	if !est.Status.Editable() {
		return Estimate{}, fmt.Errorf("%w: estimate is %s", ErrInvalidState, est.Status)
	}
	if err := s.repo.DeleteItem(ctx, estimateID, itemID); err != nil {
		return Estimate{}, err
	}
	kept := make([]Item, 0, len(est.Items))
	for _, item := range est.Items {
		if item.ID != itemID {
			kept = append(kept, item)
		}
	}
	est.Items = kept
	est.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, est); err != nil {
		return Estimate{}, err
	}
	s.recordAudit(ctx, "ESTIMATE_REMOVE_ITEM", est.ID, map[string]any{"item_id": itemID})
	return Price(est, s.taxRate), nil
}

// SetDiscount updates the discount on a draft estimate.
func (s *Service) SetDiscount(ctx context.Context, id string, discount decimal.Decimal) (Estimate, error) {
	if discount.IsNegative() {
		return Estimate{}, fmt.Errorf("%w: discount must be non-negative", ErrValidation)
	}
	est, err := s.repo.Get(ctx, id)
	if err != nil {
		return Estimate{}, err
	}
	if !est.Status.Editable() {
		return Estimate{}, fmt.Errorf("%w: estimate is %s", ErrInvalidState, est.Status)
	}
	est.Discount = discount
	est.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, est); err != nil {
		return Estimate{}, err
	}
	s.recordAudit(ctx, "ESTIMATE_SET_DISCOUNT", est.ID, map[string]any{"discount": discount.String()})
	return Price(est, s.taxRate), nil
}

// Send moves a draft estimate to sent, freezing its items.
func (s *Service) Send(ctx context.Context, id string) (Estimate, error) {
	return s.transition(ctx, id, StatusDraft, StatusSent, "ESTIMATE_SEND")
}

// Approve marks a sent estimate approved.
func (s *Service) Approve(ctx context.Context, id string) (Estimate, error) {
	return s.transition(ctx, id, StatusSent, StatusApproved, "ESTIMATE_APPROVE")
}

// Reject marks a sent estimate rejected.
func (s *Service) Reject(ctx context.Context, id string) (Estimate, error) {
	return s.transition(ctx, id, StatusSent, StatusRejected, "ESTIMATE_REJECT")
}

func (s *Service) transition(ctx context.Context, id string, from, to Status, action string) (Estimate, error) {
	est, err := s.repo.Get(ctx, id)
	if err != nil {
		return Estimate{}, err
	}
	if est.Status != from {
		return Estimate{}, fmt.Errorf("%w: estimate is %s", ErrInvalidState, est.Status)
	}
	est.Status = to
	est.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, est); err != nil {
		return Estimate{}, err
	}
	s.recordAudit(ctx, action, est.ID, nil)
	return Price(est, s.taxRate), nil
}

func (s *Service) buildItem(estimateID string, in ItemInput) (Item, error) {
	if !validItemType(in.Type) {
		return Item{}, fmt.Errorf("%w: unknown item type %q", ErrValidation, in.Type)
	}
	if strings.TrimSpace(in.Description) == "" {
		return Item{}, fmt.Errorf("%w: item description required", ErrValidation)
	}
	if !in.Quantity.IsPositive() {
		return Item{}, fmt.Errorf("%w: item quantity must be positive", ErrValidation)
	}
	if in.UnitPrice.IsNegative() {
		return Item{}, fmt.Errorf("%w: unit price must be non-negative", ErrValidation)
	}
	return Item{
		ID:          uuid.NewString(),
		EstimateID:  estimateID,
		Type:        in.Type,
		Description: in.Description,
		Quantity:    in.Quantity,
		UnitPrice:   in.UnitPrice,
	}, nil
}

func (s *Service) recordAudit(ctx context.Context, action, id string, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		Action:   action,
		Entity:   "estimate",
		EntityID: id,
		Meta:     meta,
	})
}
