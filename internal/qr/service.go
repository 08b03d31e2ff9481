package qr

import (
	"context"
	"fmt"

	"github.com/liftboard/liftboard/internal/parts"
	"github.com/liftboard/liftboard/internal/repairs"
)

// PartsPort consumes scanned parts from stock.
type PartsPort interface {
	ConsumeStock(ctx context.Context, partID string, qty int, refID string) (parts.Part, error)
}

// RepairsPort opens and advances repair orders from scans.
type RepairsPort interface {
	CreateRO(ctx context.Context, input repairs.CreateROInput) (repairs.RO, error)
	AdvancePhase(ctx context.Context, roID, phaseID string) (repairs.RO, error)
}

// Service routes scanned payloads to the owning module. The scanner itself is
// dumb; all behavior lives behind the dispatch.
type Service struct {
	parts   PartsPort
	repairs RepairsPort
}

// NewService builds Service.
func NewService(partsPort PartsPort, repairsPort RepairsPort) *Service {
	return &Service{parts: partsPort, repairs: repairsPort}
}

// Dispatch routes one scan. Part scans consume stock, vehicle check-ins open
// a repair order with the standard phases, work completions advance the
// named phase.
func (s *Service) Dispatch(ctx context.Context, payload Payload) (Result, error) {
	switch payload.Type {
	case TypePartScan:
		return s.dispatchPartScan(ctx, payload)
	case TypeVehicleCheckin:
		return s.dispatchVehicleCheckin(ctx, payload)
	case TypeWorkCompletion:
		return s.dispatchWorkCompletion(ctx, payload)
	default:
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownType, payload.Type)
	}
}

func (s *Service) dispatchPartScan(ctx context.Context, payload Payload) (Result, error) {
	partID := payload.DataString("part_id")
	if partID == "" {
		return Result{}, fmt.Errorf("%w: part scan requires part_id", ErrValidation)
	}
	qty := payload.DataInt("quantity")
	if qty == 0 {
		qty = 1
	}
	part, err := s.parts.ConsumeStock(ctx, partID, qty, payload.DataString("ro_id"))
	if err != nil {
		return Result{}, err
	}
	return Result{
		Type:      TypePartScan,
		EntityID:  part.ID,
		Detail:    fmt.Sprintf("consumed %d of %s, %d remaining", qty, part.PartNumber, part.Quantity),
		ScannedBy: payload.ScannedBy,
	}, nil
}

func (s *Service) dispatchVehicleCheckin(ctx context.Context, payload Payload) (Result, error) {
	vehicleID := payload.DataString("vehicle_id")
	customerID := payload.DataString("customer_id")
	if vehicleID == "" || customerID == "" {
		return Result{}, fmt.Errorf("%w: vehicle check-in requires vehicle_id and customer_id", ErrValidation)
	}
	ro, err := s.repairs.CreateRO(ctx, repairs.CreateROInput{
		VehicleID:   vehicleID,
		CustomerID:  customerID,
		Description: "Vehicle check-in via scan",
	})
	if err != nil {
		return Result{}, err
	}
	return Result{
		Type:      TypeVehicleCheckin,
		EntityID:  ro.ID,
		Detail:    fmt.Sprintf("opened %s", ro.Number),
		ScannedBy: payload.ScannedBy,
	}, nil
}

func (s *Service) dispatchWorkCompletion(ctx context.Context, payload Payload) (Result, error) {
	roID := payload.DataString("ro_id")
	phaseID := payload.DataString("phase_id")
	if roID == "" || phaseID == "" {
		return Result{}, fmt.Errorf("%w: work completion requires ro_id and phase_id", ErrValidation)
	}
	ro, err := s.repairs.AdvancePhase(ctx, roID, phaseID)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Type:      TypeWorkCompletion,
		EntityID:  ro.ID,
		Detail:    fmt.Sprintf("advanced phase on %s", ro.Number),
		ScannedBy: payload.ScannedBy,
	}, nil
}
