package qr

import (
	"errors"
	"time"
)

// PayloadType enumerates the kinds of scannable codes the shop prints.
type PayloadType string

const (
	TypePartScan       PayloadType = "part_scan"
	TypeVehicleCheckin PayloadType = "vehicle_checkin"
	TypeWorkCompletion PayloadType = "work_completion"
)

// Payload is the decoded envelope of a scanned code: a type tag, an
// arbitrary data map, the scan time, and the scanner identity. Which data
// keys are required depends on the type: part scans carry part_id and
// quantity, vehicle check-ins carry vehicle_id and customer_id, work
// completions carry ro_id and phase_id.
type Payload struct {
	Type      PayloadType    `json:"type"`
	Data      map[string]any `json:"data"`
	Timestamp time.Time      `json:"timestamp"`
	ScannedBy string         `json:"scanned_by"`
}

// DataString extracts one string field from the data map.
func (p Payload) DataString(key string) string {
	v, _ := p.Data[key].(string)
	return v
}

// DataInt extracts one numeric field from the data map. JSON numbers
// decode as float64.
func (p Payload) DataInt(key string) int {
	switch v := p.Data[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return 0
}

// Result reports what a dispatched scan did.
type Result struct {
	Type      PayloadType `json:"type"`
	EntityID  string      `json:"entity_id"`
	Detail    string      `json:"detail"`
	ScannedBy string      `json:"scanned_by,omitempty"`
}

var (
	// ErrUnknownType indicates a payload type the dispatcher cannot route.
	ErrUnknownType = errors.New("qr: unknown payload type")
	// ErrValidation indicates a payload missing required fields.
	ErrValidation = errors.New("qr: invalid payload")
)
