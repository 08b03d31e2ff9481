package lifts

import (
	"errors"
	"time"
)

// Status enumerates lift bay states.
type Status string

const (
	StatusAvailable   Status = "available"
	StatusOccupied    Status = "occupied"
	StatusReserved    Status = "reserved"
	StatusMaintenance Status = "maintenance"
	StatusOutOfOrder  Status = "out_of_order"
)

// Lift is a physical bay. A lift holds at most one repair order, and an
// occupied lift always references the RO it holds.
type Lift struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Status        Status     `json:"status"`
	CurrentROID   *string    `json:"current_ro_id,omitempty"`
	LastServiced  *time.Time `json:"last_serviced,omitempty"`
	NextServiceAt *time.Time `json:"next_service_at,omitempty"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

var (
	// ErrNotFound indicates the lift does not exist.
	ErrNotFound = errors.New("lifts: lift not found")
	// ErrInvalidState occurs when an action violates lift occupancy rules.
	ErrInvalidState = errors.New("lifts: invalid state transition")
	// ErrROOnLift indicates the repair order is already on another lift.
	ErrROOnLift = errors.New("lifts: repair order already on a lift")
	// ErrValidation indicates invalid input.
	ErrValidation = errors.New("lifts: invalid input")
)

// Occupied reports whether the lift currently holds a repair order.
func (l Lift) Occupied() bool {
	return l.CurrentROID != nil && *l.CurrentROID != ""
}

// ServiceDue reports whether scheduled maintenance is past due.
func (l Lift) ServiceDue(now time.Time) bool {
	return l.NextServiceAt != nil && l.NextServiceAt.Before(now)
}

func validStatus(s Status) bool {
	switch s {
	case StatusAvailable, StatusOccupied, StatusReserved, StatusMaintenance, StatusOutOfOrder:
		return true
	}
	return false
}
