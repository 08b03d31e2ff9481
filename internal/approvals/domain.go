package approvals

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// EntityType enumerates what an approval can be requested against.
type EntityType string

const (
	EntityEstimate EntityType = "estimate"
	EntityPO       EntityType = "po"
	EntityRO       EntityType = "ro"
)

// Status enumerates approval states.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Approval is one customer sign-off request against an estimate, purchase
// order, or repair order. Multiple requests may exist for one entity; each
// is decided independently.
type Approval struct {
	ID          string           `json:"id"`
	EntityID    string           `json:"entity_id"`
	EntityType  EntityType       `json:"entity_type"`
	Description string           `json:"description"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	Status      Status           `json:"status"`
	RequestedAt time.Time        `json:"requested_at"`
	RespondedAt *time.Time       `json:"responded_at,omitempty"`
	RespondedBy string           `json:"responded_by,omitempty"`
}

var (
	// ErrNotFound indicates the approval does not exist.
	ErrNotFound = errors.New("approvals: approval not found")
	// ErrAlreadyDecided occurs when a non-pending approval is decided again.
	ErrAlreadyDecided = errors.New("approvals: approval already decided")
	// ErrValidation indicates invalid input.
	ErrValidation = errors.New("approvals: invalid input")
)

// Pending reports whether the approval still awaits a decision.
func (a Approval) Pending() bool {
	return a.Status == StatusPending
}

func validEntityType(t EntityType) bool {
	switch t {
	case EntityEstimate, EntityPO, EntityRO:
		return true
	}
	return false
}
