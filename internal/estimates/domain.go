package estimates

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Status enumerates estimate lifecycle states.
type Status string

const (
	StatusDraft    Status = "draft"
	StatusSent     Status = "sent"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// ItemType categorizes estimate lines for the labor/parts split.
type ItemType string

const (
	ItemLabor ItemType = "labor"
	ItemPart  ItemType = "part"
	ItemFee   ItemType = "fee"
)

// Item is one estimate line. Total is quantity times unit price, computed on
// read.
type Item struct {
	ID          string          `json:"id"`
	EstimateID  string          `json:"estimate_id"`
	Type        ItemType        `json:"type"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Total       decimal.Decimal `json:"total"`
}

// Estimate prices the work of one repair order. The monetary rollups are
// derived from the items and the tax rate and are never stored.
type Estimate struct {
	ID         string          `json:"id"`
	ROID       string          `json:"ro_id"`
	Status     Status          `json:"status"`
	Items      []Item          `json:"items"`
	Discount   decimal.Decimal `json:"discount"`
	LaborTotal decimal.Decimal `json:"labor_total"`
	PartsTotal decimal.Decimal `json:"parts_total"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	Tax        decimal.Decimal `json:"tax"`
	Total      decimal.Decimal `json:"total"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

var (
	// ErrNotFound indicates the estimate does not exist.
	ErrNotFound = errors.New("estimates: estimate not found")
	// ErrItemNotFound indicates the item does not exist on the estimate.
	ErrItemNotFound = errors.New("estimates: item not found")
	// ErrInvalidState occurs when an action violates the estimate workflow.
	ErrInvalidState = errors.New("estimates: invalid state transition")
	// ErrValidation indicates invalid input.
	ErrValidation = errors.New("estimates: invalid input")
)

// Editable reports whether items may still change.
func (s Status) Editable() bool {
	return s == StatusDraft
}

func validItemType(t ItemType) bool {
	switch t {
	case ItemLabor, ItemPart, ItemFee:
		return true
	}
	return false
}
