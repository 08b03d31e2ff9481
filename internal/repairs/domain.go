package repairs

import (
	"errors"
	"time"
)

// ROStatus enumerates repair order lifecycle states.
type ROStatus string

const (
	ROStatusOpen       ROStatus = "open"
	ROStatusInProgress ROStatus = "in_progress"
	ROStatusCompleted  ROStatus = "completed"
	ROStatusClosed     ROStatus = "closed"
)

// Priority enumerates repair order priorities.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// PhaseStatus enumerates phase lifecycle states.
type PhaseStatus string

const (
	PhaseStatusPending    PhaseStatus = "pending"
	PhaseStatusInProgress PhaseStatus = "in_progress"
	PhaseStatusCompleted  PhaseStatus = "completed"
	PhaseStatusOnHold     PhaseStatus = "on_hold"
)

// Phase is a unit of work within a repair order. Phase identity is only
// meaningful within its parent RO.
type Phase struct {
	ID             string      `json:"id"`
	ROID           string      `json:"ro_id"`
	Name           string      `json:"name"`
	Description    string      `json:"description,omitempty"`
	EstimatedHours float64     `json:"estimated_hours"`
	ActualHours    float64     `json:"actual_hours,omitempty"`
	Status         PhaseStatus `json:"status"`
	StartedAt      *time.Time  `json:"started_at,omitempty"`
	EndedAt        *time.Time  `json:"ended_at,omitempty"`
	AssignedTechID string      `json:"assigned_tech_id,omitempty"`
	Order          int         `json:"order"`
}

// RO is the aggregate root of shop work. Phases are embedded and owned
// exclusively by the RO.
type RO struct {
	ID                  string     `json:"id"`
	Number              string     `json:"number"`
	VehicleID           string     `json:"vehicle_id"`
	CustomerID          string     `json:"customer_id"`
	Description         string     `json:"description"`
	Status              ROStatus   `json:"status"`
	Priority            Priority   `json:"priority"`
	EstimatedCompletion *time.Time `json:"estimated_completion,omitempty"`
	ActualCompletion    *time.Time `json:"actual_completion,omitempty"`
	Phases              []Phase    `json:"phases"`
	AssignedTechs       []string   `json:"assigned_techs"`
	IsRework            bool       `json:"is_rework"`
	ReworkReason        string     `json:"rework_reason,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// HistoryEntry records a phase transition for the timeline view.
type HistoryEntry struct {
	ROID      string    `json:"ro_id"`
	PhaseID   string    `json:"phase_id"`
	PhaseName string    `json:"phase_name"`
	Event     string    `json:"event"`
	TechID    string    `json:"tech_id,omitempty"`
	At        time.Time `json:"at"`
}

// History event names.
const (
	HistoryStarted   = "started"
	HistoryCompleted = "completed"
	HistoryHeld      = "held"
	HistoryResumed   = "resumed"
)

// StandardPhase describes one entry of the default phase template.
type StandardPhase struct {
	Name  string
	Order int
}

// StandardPhases is the default phase sequence applied when an RO is created
// without an explicit phase list.
var StandardPhases = []StandardPhase{
	{Name: "Pull", Order: 1},
	{Name: "Diagnose", Order: 2},
	{Name: "Build", Order: 3},
	{Name: "Reinstall", Order: 4},
	{Name: "Test Drive", Order: 5},
	{Name: "Complete", Order: 6},
}

var (
	// ErrNotFound indicates the repair order does not exist.
	ErrNotFound = errors.New("repairs: repair order not found")
	// ErrPhaseNotFound indicates the phase does not exist on the RO.
	ErrPhaseNotFound = errors.New("repairs: phase not found")
	// ErrInvalidState occurs when an action violates the phase workflow.
	ErrInvalidState = errors.New("repairs: invalid state transition")
	// ErrValidation indicates invalid input.
	ErrValidation = errors.New("repairs: invalid input")
)

// Terminal reports whether the RO no longer counts as active work.
func (s ROStatus) Terminal() bool {
	return s == ROStatusCompleted || s == ROStatusClosed
}

// IsOverdue reports whether the RO is past its estimated completion and not
// yet done. Computed on read, never stored.
func (ro RO) IsOverdue(now time.Time) bool {
	return ro.EstimatedCompletion != nil &&
		ro.EstimatedCompletion.Before(now) &&
		!ro.Status.Terminal()
}

// DaysInRepair returns whole days since the RO was opened.
func (ro RO) DaysInRepair(now time.Time) int {
	if now.Before(ro.CreatedAt) {
		return 0
	}
	return int(now.Sub(ro.CreatedAt).Hours() / 24)
}

// DaysOverdue returns whole days past the estimated completion. Zero when no
// estimate is set or the estimate is still in the future.
func (ro RO) DaysOverdue(now time.Time) int {
	if ro.EstimatedCompletion == nil || now.Before(*ro.EstimatedCompletion) {
		return 0
	}
	return int(now.Sub(*ro.EstimatedCompletion).Hours() / 24)
}

// FindPhase returns the phase with the given id and its index.
func (ro RO) FindPhase(phaseID string) (Phase, int, bool) {
	for i, p := range ro.Phases {
		if p.ID == phaseID {
			return p, i, true
		}
	}
	return Phase{}, -1, false
}

// HasTech reports whether the tech is in the RO-level assigned set.
func (ro RO) HasTech(techID string) bool {
	for _, id := range ro.AssignedTechs {
		if id == techID {
			return true
		}
	}
	return false
}
