package techs

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Availability enumerates technician availability states. It is
// informational only; assignment never checks it.
type Availability string

const (
	AvailabilityAvailable Availability = "available"
	AvailabilityBusy      Availability = "busy"
	AvailabilityOff       Availability = "off"
)

// Tech is a technician who can be assigned to repair orders and phases.
type Tech struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Specialties    []string        `json:"specialties,omitempty"`
	Certifications []string        `json:"certifications,omitempty"`
	Availability   Availability    `json:"availability"`
	HourlyRate     decimal.Decimal `json:"hourly_rate"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

var (
	// ErrNotFound indicates the technician does not exist.
	ErrNotFound = errors.New("techs: technician not found")
	// ErrValidation indicates invalid input.
	ErrValidation = errors.New("techs: invalid input")
)

// Available reports whether the technician is marked available for work.
func (t Tech) Available() bool {
	return t.Availability == AvailabilityAvailable
}

func validAvailability(a Availability) bool {
	switch a {
	case AvailabilityAvailable, AvailabilityBusy, AvailabilityOff:
		return true
	}
	return false
}
