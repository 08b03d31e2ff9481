package alerts

import (
	"errors"
	"time"
)

// Type enumerates alert severities.
type Type string

const (
	TypeInfo    Type = "info"
	TypeWarning Type = "warning"
	TypeError   Type = "error"
	TypeSuccess Type = "success"
)

// EntityType names the kind of entity an alert refers to.
type EntityType string

const (
	EntityRO   EntityType = "ro"
	EntityLift EntityType = "lift"
	EntityPart EntityType = "part"
	EntityTech EntityType = "tech"
)

// Alert is a stored notification. Delivery is out of scope; consumers poll.
type Alert struct {
	ID         string     `json:"id"`
	Type       Type       `json:"type"`
	Title      string     `json:"title"`
	Message    string     `json:"message"`
	EntityID   string     `json:"entity_id,omitempty"`
	EntityType EntityType `json:"entity_type,omitempty"`
	IsRead     bool       `json:"is_read"`
	CreatedAt  time.Time  `json:"created_at"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
}

// CreateInput describes a new alert.
type CreateInput struct {
	Type       Type
	Title      string
	Message    string
	EntityID   string
	EntityType EntityType
	ExpiresAt  *time.Time
}

var (
	// ErrNotFound indicates the alert does not exist.
	ErrNotFound = errors.New("alerts: alert not found")
	// ErrValidation indicates invalid input.
	ErrValidation = errors.New("alerts: invalid input")
)

// Expired reports whether the alert is past its expiry.
func (a Alert) Expired(now time.Time) bool {
	return a.ExpiresAt != nil && a.ExpiresAt.Before(now)
}

func validType(t Type) bool {
	switch t {
	case TypeInfo, TypeWarning, TypeError, TypeSuccess:
		return true
	}
	return false
}
