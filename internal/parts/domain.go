package parts

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Part is an inventory stock record. Quantity never goes negative.
type Part struct {
	ID          string          `json:"id"`
	PartNumber  string          `json:"part_number"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Quantity    int             `json:"quantity"`
	MinQuantity int             `json:"min_quantity"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
	Location    string          `json:"location,omitempty"`
	SupplierID  string          `json:"supplier_id,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Movement records one stock change for traceability.
type Movement struct {
	PartID string    `json:"part_id"`
	Delta  int       `json:"delta"`
	Reason string    `json:"reason"`
	RefID  string    `json:"ref_id,omitempty"`
	At     time.Time `json:"at"`
}

// Movement reasons.
const (
	ReasonReceive = "receive"
	ReasonConsume = "consume"
	ReasonPO      = "po_receipt"
	ReasonScan    = "scan"
	ReasonAdjust  = "adjustment"
)

var (
	// ErrNotFound indicates the part does not exist.
	ErrNotFound = errors.New("parts: part not found")
	// ErrInsufficientStock occurs when consumption exceeds on-hand quantity.
	ErrInsufficientStock = errors.New("parts: insufficient stock")
	// ErrDuplicate indicates the part number is already in use.
	ErrDuplicate = errors.New("parts: part number already exists")
	// ErrValidation indicates invalid input.
	ErrValidation = errors.New("parts: invalid input")
)

// LowStock reports whether on-hand quantity is at or below the reorder point.
func (p Part) LowStock() bool {
	return p.Quantity <= p.MinQuantity
}

// StockValue returns on-hand quantity times unit cost.
func (p Part) StockValue() decimal.Decimal {
	return p.UnitCost.Mul(decimal.NewFromInt(int64(p.Quantity)))
}
