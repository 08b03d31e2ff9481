package parts

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
	Insert(ctx context.Context, part Part) error
	Get(ctx context.Context, id string) (Part, error)
	GetByNumber(ctx context.Context, partNumber string) (Part, error)
	List(ctx context.Context, filter ListFilter) ([]Part, error)
	Update(ctx context.Context, part Part) error
	InsertMovement(ctx context.Context, movement Movement) error
}

// AlertsPort raises shop alerts on stock events.
type AlertsPort interface {
	Raise(ctx context.Context, input alerts.CreateInput) (alerts.Alert, error)
	HasUnreadFor(ctx context.Context, entityID string, entityType alerts.EntityType) (bool, error)
}

// AuditPort abstracts audit logging.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// ListFilter narrows part listings.
type ListFilter struct {
	Search  string
	LowOnly bool
}

// Service coordinates part stock.
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

// CreateInput describes a new part.
type CreateInput struct {
	PartNumber  string
	Name        string
	Description string
	Quantity    int
	MinQuantity int
	UnitCost    decimal.Decimal
	Location    string
	SupplierID  string
}

// Create registers a new part.
func (s *Service) Create(ctx context.Context, input CreateInput) (Part, error) {
	if strings.TrimSpace(input.PartNumber) == "" || strings.TrimSpace(input.Name) == "" {
		return Part{}, fmt.Errorf("%w: part number and name required", ErrValidation)
	}
	if input.Quantity < 0 || input.MinQuantity < 0 {
		return Part{}, fmt.Errorf("%w: quantities must be non-negative", ErrValidation)
	}
	if input.UnitCost.IsNegative() {
		return Part{}, fmt.Errorf("%w: unit cost must be non-negative", ErrValidation)
	}
	now := s.now().UTC()
	part := Part{
		ID:          uuid.NewString(),
		PartNumber:  input.PartNumber,
		Name:        input.Name,
		Description: input.Description,
		Quantity:    input.Quantity,
		MinQuantity: input.MinQuantity,
		UnitCost:    input.UnitCost,
		Location:    input.Location,
		SupplierID:  input.SupplierID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Insert(ctx, part); err != nil {
		return Part{}, err
	}
	s.recordAudit(ctx, "PART_CREATE", part.ID, map[string]any{"part_number": part.PartNumber})
	return part, nil
}

// Get returns one part.
func (s *Service) Get(ctx context.Context, id string) (Part, error) {
	return s.repo.Get(ctx, id)
}

// GetByNumber returns a part by its part number.
func (s *Service) GetByNumber(ctx context.Context, partNumber string) (Part, error) {
	return s.repo.GetByNumber(ctx, partNumber)
}

// List returns parts matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Part, error) {
	return s.repo.List(ctx, filter)
}

// ListLowStock returns parts at or below their reorder point.
func (s *Service) ListLowStock(ctx context.Context) ([]Part, error) {
	return s.repo.List(ctx, ListFilter{LowOnly: true})
}

// ReceiveStock adds quantity, for example from a purchase order receipt.
func (s *Service) ReceiveStock(ctx context.Context, partID string, qty int, refID string) (Part, error) {
	if qty <= 0 {
		return Part{}, fmt.Errorf("%w: quantity must be positive", ErrValidation)
	}
	part, err := s.repo.Get(ctx, partID)
	if err != nil {
		return Part{}, err
	}
	part.Quantity += qty
	part.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, part); err != nil {
		return Part{}, err
	}
	_ = s.repo.InsertMovement(ctx, Movement{
		PartID: part.ID, Delta: qty, Reason: ReasonReceive, RefID: refID, At: part.UpdatedAt,
	})
	s.recordAudit(ctx, "PART_RECEIVE", part.ID, map[string]any{"qty": qty, "ref_id": refID})
	return part, nil
}

// ConsumeStock subtracts quantity. Stock never goes negative; over-consumption
// fails with ErrInsufficientStock. Dropping to or below the reorder point
// raises a low stock alert unless one is already unread.
func (s *Service) ConsumeStock(ctx context.Context, partID string, qty int, refID string) (Part, error) {
	if qty <= 0 {
		return Part{}, fmt.Errorf("%w: quantity must be positive", ErrValidation)
	}
	part, err := s.repo.Get(ctx, partID)
	if err != nil {
		return Part{}, err
	}
	if part.Quantity < qty {
		return Part{}, fmt.Errorf("%w: %s has %d, requested %d", ErrInsufficientStock, part.PartNumber, part.Quantity, qty)
	}
	part.Quantity -= qty
	part.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, part); err != nil {
		return Part{}, err
	}
	_ = s.repo.InsertMovement(ctx, Movement{
		PartID: part.ID, Delta: -qty, Reason: ReasonConsume, RefID: refID, At: part.UpdatedAt,
	})
	if part.LowStock() {
		s.raiseLowStock(ctx, part)
	}
	s.recordAudit(ctx, "PART_CONSUME", part.ID, map[string]any{"qty": qty, "ref_id": refID})
	return part, nil
}

func (s *Service) raiseLowStock(ctx context.Context, part Part) {
	if s.alerts == nil {
		return
	}
	already, err := s.alerts.HasUnreadFor(ctx, part.ID, alerts.EntityPart)
	if err != nil || already {
		return
	}
	_, _ = s.alerts.Raise(ctx, alerts.CreateInput{
		Type:       alerts.TypeWarning,
		Title:      "Low Stock",
		Message:    fmt.Sprintf("%s (%s) is at %d, reorder point %d", part.Name, part.PartNumber, part.Quantity, part.MinQuantity),
		EntityID:   part.ID,
		EntityType: alerts.EntityPart,
	})
}

func (s *Service) recordAudit(ctx context.Context, action, partID string, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		Action:   action,
		Entity:   "part",
		EntityID: partID,
		Meta:     meta,
	})
}
