package coreitems

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Status enumerates core charge lifecycle states. A core starts pending
// return and ends either returned (deposit refunded) or charged (deposit
// kept).
type Status string

const (
	StatusPendingReturn Status = "pending_return"
	StatusReturned      Status = "returned"
	StatusCharged       Status = "charged"
)

// Condition grades the physical state of the core as received.
type Condition string

const (
	ConditionGood    Condition = "good"
	ConditionDamaged Condition = "damaged"
	ConditionUnknown Condition = "unknown"
)

// CoreItem tracks a refundable core deposit tied to a part swap.
type CoreItem struct {
	ID          string          `json:"id"`
	PartID      string          `json:"part_id,omitempty"`
	ROID        string          `json:"ro_id,omitempty"`
	Description string          `json:"description"`
	CoreCharge  decimal.Decimal `json:"core_charge"`
	Condition   Condition       `json:"condition"`
	Status      Status          `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	ReturnedAt  *time.Time      `json:"returned_at,omitempty"`
}

var (
	// ErrNotFound indicates the core item does not exist.
	ErrNotFound = errors.New("coreitems: core item not found")
	// ErrInvalidState occurs when a core is resolved twice.
	ErrInvalidState = errors.New("coreitems: core already resolved")
	// ErrValidation indicates invalid input.
	ErrValidation = errors.New("coreitems: invalid input")
)

// Resolved reports whether the core deposit has been settled.
func (c CoreItem) Resolved() bool {
	return c.Status != StatusPendingReturn
}

func validCondition(c Condition) bool {
	switch c {
	case ConditionGood, ConditionDamaged, ConditionUnknown:
		return true
	}
	return false
}
