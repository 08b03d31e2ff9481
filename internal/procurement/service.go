package procurement

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/liftboard/liftboard/internal/parts"
	"github.com/liftboard/liftboard/internal/shared"
)

// RepositoryPort describes repository operations used by Service.
type RepositoryPort interface {
	Insert(ctx context.Context, po PO) error
	Get(ctx context.Context, id string) (PO, error)
	List(ctx context.Context, filter ListFilter) ([]PO, error)
	Update(ctx context.Context, po PO) error
}

// PartsPort posts received quantities into stock.
type PartsPort interface {
	ReceiveStock(ctx context.Context, partID string, qty int, refID string) (parts.Part, error)
}

// NumberingPort issues document numbers.
type NumberingPort interface {
	Next(ctx context.Context, prefix string, at time.Time) (string, error)
}

// AuditPort abstracts audit logging.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// ListFilter narrows PO listings.
type ListFilter struct {
	Status     POStatus
	SupplierID string
}

// Service coordinates the purchase order workflow.
type Service struct {
	repo      RepositoryPort
	parts     PartsPort
	numbering NumberingPort
	audit     AuditPort
	now       func() time.Time
}

// NewService builds Service.
func NewService(repo RepositoryPort, partsPort PartsPort, numbering NumberingPort, audit AuditPort) *Service {
	return &Service{repo: repo, parts: partsPort, numbering: numbering, audit: audit, now: time.Now}
}

// WithNow overrides the service clock for testing.
func (s *Service) WithNow(fn func() time.Time) {
	if fn != nil {
		s.now = fn
	}
}

// CreateInput describes a new purchase order.
type CreateInput struct {
	SupplierID string
	ExpectedAt *time.Time
	Lines      []CreateLineInput
}

// CreateLineInput describes one ordered item.
type CreateLineInput struct {
	PartID      string
	Description string
	Quantity    int
	UnitPrice   decimal.Decimal
}

// Create opens a draft purchase order. Line totals and the PO total are
// computed from quantity and unit price.
func (s *Service) Create(ctx context.Context, input CreateInput) (PO, error) {
	if strings.TrimSpace(input.SupplierID) == "" {
		return PO{}, fmt.Errorf("%w: supplier required", ErrValidation)
	}
	if len(input.Lines) == 0 {
		return PO{}, fmt.Errorf("%w: at least one line required", ErrValidation)
	}
	now := s.now().UTC()
	number, err := s.numbering.Next(ctx, "PO", now)
	if err != nil {
		return PO{}, err
	}
	po := PO{
		ID:         uuid.NewString(),
		Number:     number,
		SupplierID: input.SupplierID,
		Status:     POStatusDraft,
		ExpectedAt: input.ExpectedAt,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	for _, in := range input.Lines {
		if in.Quantity < 0 {
			return PO{}, fmt.Errorf("%w: line quantity must be non-negative", ErrValidation)
		}
		if in.UnitPrice.IsNegative() {
			return PO{}, fmt.Errorf("%w: unit price must be non-negative", ErrValidation)
		}
		line := POLine{
			ID:          uuid.NewString(),
			POID:        po.ID,
			PartID:      in.PartID,
			Description: in.Description,
			Quantity:    in.Quantity,
			UnitPrice:   in.UnitPrice,
			LineTotal:   shared.LineTotal(in.Quantity, in.UnitPrice),
		}
		po.Lines = append(po.Lines, line)
	}
	po.TotalAmount = ComputeTotal(po.Lines)

	if err := s.repo.Insert(ctx, po); err != nil {
		return PO{}, err
	}
	s.recordAudit(ctx, "PO_CREATE", po.ID, map[string]any{"number": po.Number, "total": po.TotalAmount.String()})
	return po, nil
}

// Get returns one purchase order with lines.
func (s *Service) Get(ctx context.Context, id string) (PO, error) {
	return s.repo.Get(ctx, id)
}

// List returns purchase orders matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]PO, error) {
	return s.repo.List(ctx, filter)
}

// Submit moves a draft PO to submitted.
func (s *Service) Submit(ctx context.Context, id string) (PO, error) {
	return s.transition(ctx, id, POStatusDraft, POStatusSubmitted, "PO_SUBMIT")
}

// Approve moves a submitted PO to approved.
func (s *Service) Approve(ctx context.Context, id string) (PO, error) {
	return s.transition(ctx, id, POStatusSubmitted, POStatusApproved, "PO_APPROVE")
}

// Cancel voids a PO that has not been received.
func (s *Service) Cancel(ctx context.Context, id string) (PO, error) {
	po, err := s.repo.Get(ctx, id)
	if err != nil {
		return PO{}, err
	}
	if po.Status.Terminal() {
		return PO{}, fmt.Errorf("%w: PO is %s", ErrInvalidState, po.Status)
	}
	po.Status = POStatusCancelled
	po.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, po); err != nil {
		return PO{}, err
	}
	s.recordAudit(ctx, "PO_CANCEL", po.ID, nil)
	return po, nil
}

// Receive marks an approved PO received and posts each part-linked line into
// stock. Lines without a part id only affect the PO.
func (s *Service) Receive(ctx context.Context, id string) (PO, error) {
	po, err := s.repo.Get(ctx, id)
	if err != nil {
		return PO{}, err
	}
	if po.Status != POStatusApproved {
		return PO{}, fmt.Errorf("%w: PO is %s", ErrInvalidState, po.Status)
	}
	po.Status = POStatusReceived
	po.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, po); err != nil {
		return PO{}, err
	}
	if s.parts != nil {
		for _, line := range po.Lines {
			if line.PartID == "" {
				continue
			}
			if _, err := s.parts.ReceiveStock(ctx, line.PartID, line.Quantity, po.ID); err != nil {
				return PO{}, fmt.Errorf("post line %s to stock: %w", line.ID, err)
			}
		}
	}
	s.recordAudit(ctx, "PO_RECEIVE", po.ID, nil)
	return po, nil
}

func (s *Service) transition(ctx context.Context, id string, from, to POStatus, action string) (PO, error) {
	po, err := s.repo.Get(ctx, id)
	if err != nil {
		return PO{}, err
	}
	if po.Status != from {
		return PO{}, fmt.Errorf("%w: PO is %s", ErrInvalidState, po.Status)
	}
	po.Status = to
	po.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, po); err != nil {
		return PO{}, err
	}
	s.recordAudit(ctx, action, po.ID, nil)
	return po, nil
}

func (s *Service) recordAudit(ctx context.Context, action, poID string, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		Action:   action,
		Entity:   "purchase_order",
		EntityID: poID,
		Meta:     meta,
	})
}
