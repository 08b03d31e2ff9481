package vehicles

import (
	"errors"
	"time"
)

// Vehicle belongs to a customer entity and is the subject of repair orders.
type Vehicle struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"owner_id"`
	Year         int       `json:"year"`
	Make         string    `json:"make"`
	Model        string    `json:"model"`
	VIN          string    `json:"vin,omitempty"`
	LicensePlate string    `json:"license_plate,omitempty"`
	Color        string    `json:"color,omitempty"`
	Mileage      int       `json:"mileage,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

var (
	// ErrNotFound indicates the vehicle does not exist.
	ErrNotFound = errors.New("vehicles: vehicle not found")
	// ErrValidation indicates invalid input.
	ErrValidation = errors.New("vehicles: invalid input")
)
