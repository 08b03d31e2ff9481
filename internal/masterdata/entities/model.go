package entities

import (
	"errors"
	"time"
)

// Kind enumerates how the shop relates to an entity.
type Kind string

const (
	KindCustomer Kind = "customer"
	KindVendor   Kind = "vendor"
	KindBoth     Kind = "both"
)

// Entity is a customer, a vendor, or both. Vendors double as purchase order
// suppliers.
type Entity struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Kind      Kind      `json:"kind"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

var (
	// ErrNotFound indicates the entity does not exist.
	ErrNotFound = errors.New("entities: entity not found")
	// ErrValidation indicates invalid input.
	ErrValidation = errors.New("entities: invalid input")
)

// IsCustomer reports whether the entity can own vehicles and repair orders.
func (e Entity) IsCustomer() bool {
	return e.Kind == KindCustomer || e.Kind == KindBoth
}

// IsVendor reports whether the entity can supply purchase orders.
func (e Entity) IsVendor() bool {
	return e.Kind == KindVendor || e.Kind == KindBoth
}

func validKind(k Kind) bool {
	switch k {
	case KindCustomer, KindVendor, KindBoth:
		return true
	}
	return false
}
