package procurement

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// POStatus enumerates purchase order lifecycle states.
type POStatus string

const (
	POStatusDraft     POStatus = "draft"
	POStatusSubmitted POStatus = "submitted"
	POStatusApproved  POStatus = "approved"
	POStatusReceived  POStatus = "received"
	POStatusCancelled POStatus = "cancelled"
)

// POLine is one ordered item. LineTotal is quantity times unit price and is
// computed, never supplied.
type POLine struct {
	ID          string          `json:"id"`
	POID        string          `json:"po_id"`
	PartID      string          `json:"part_id,omitempty"`
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// PO is a purchase order aggregate. TotalAmount is the sum of line totals,
// fixed when the order is created; lines do not change afterwards.
type PO struct {
	ID          string          `json:"id"`
	Number      string          `json:"number"`
	SupplierID  string          `json:"supplier_id"`
	Status      POStatus        `json:"status"`
	Lines       []POLine        `json:"lines"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	ExpectedAt  *time.Time      `json:"expected_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

var (
	// ErrNotFound indicates the purchase order does not exist.
	ErrNotFound = errors.New("procurement: purchase order not found")
	// ErrInvalidState occurs when an action violates the PO workflow.
	ErrInvalidState = errors.New("procurement: invalid state transition")
	// ErrValidation indicates invalid input.
	ErrValidation = errors.New("procurement: invalid input")
)

// Terminal reports whether the PO can no longer change.
func (s POStatus) Terminal() bool {
	return s == POStatusReceived || s == POStatusCancelled
}

// ComputeTotal sums line totals.
func ComputeTotal(lines []POLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.LineTotal)
	}
	return total
}
