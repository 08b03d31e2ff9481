package qr

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/liftboard/liftboard/internal/parts"
	"github.com/liftboard/liftboard/internal/repairs"
)

type stubParts struct {
	consumed map[string]int
}

func (s *stubParts) ConsumeStock(_ context.Context, partID string, qty int, _ string) (parts.Part, error) {
	if partID == "part-missing" {
		return parts.Part{}, parts.ErrNotFound
	}
	if s.consumed == nil {
		s.consumed = make(map[string]int)
	}
	s.consumed[partID] += qty
	return parts.Part{ID: partID, PartNumber: "BRK-2042", Quantity: 10 - s.consumed[partID]}, nil
}

type stubRepairs struct {
	created  []repairs.CreateROInput
	advanced [][2]string
}

func (s *stubRepairs) CreateRO(_ context.Context, input repairs.CreateROInput) (repairs.RO, error) {
	s.created = append(s.created, input)
	return repairs.RO{ID: "ro-new", Number: "RO-2024-005"}, nil
}

func (s *stubRepairs) AdvancePhase(_ context.Context, roID, phaseID string) (repairs.RO, error) {
	if roID == "ro-missing" {
		return repairs.RO{}, repairs.ErrNotFound
	}
	s.advanced = append(s.advanced, [2]string{roID, phaseID})
	return repairs.RO{ID: roID, Number: "RO-2024-001"}, nil
}

func newTestService() (*Service, *stubParts, *stubRepairs) {
	pp := &stubParts{}
	rp := &stubRepairs{}
	return NewService(pp, rp), pp, rp
}

func scanAt() time.Time {
	return time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
}

func TestDispatchPartScanConsumesStock(t *testing.T) {
	svc, pp, _ := newTestService()

	result, err := svc.Dispatch(context.Background(), Payload{
		Type:      TypePartScan,
		Data:      map[string]any{"part_id": "part-1", "quantity": float64(2), "ro_id": "ro-1"},
		Timestamp: scanAt(),
		ScannedBy: "tech-1",
	})
	require.NoError(t, err)
	require.Equal(t, TypePartScan, result.Type)
	require.Equal(t, "part-1", result.EntityID)
	require.Equal(t, "tech-1", result.ScannedBy)
	require.Equal(t, map[string]int{"part-1": 2}, pp.consumed)
}

func TestDispatchPartScanDefaultsToOne(t *testing.T) {
	svc, pp, _ := newTestService()

	_, err := svc.Dispatch(context.Background(), Payload{
		Type: TypePartScan,
		Data: map[string]any{"part_id": "part-1"},
	})
	require.NoError(t, err)
	require.Equal(t, 1, pp.consumed["part-1"])
}

func TestDispatchVehicleCheckinOpensRO(t *testing.T) {
	svc, _, rp := newTestService()

	result, err := svc.Dispatch(context.Background(), Payload{
		Type:      TypeVehicleCheckin,
		Data:      map[string]any{"vehicle_id": "veh-1", "customer_id": "ent-1"},
		Timestamp: scanAt(),
		ScannedBy: "advisor",
	})
	require.NoError(t, err)
	require.Equal(t, "ro-new", result.EntityID)
	require.Len(t, rp.created, 1)
	require.Equal(t, "veh-1", rp.created[0].VehicleID)
}

func TestDispatchWorkCompletionAdvancesPhase(t *testing.T) {
	svc, _, rp := newTestService()

	result, err := svc.Dispatch(context.Background(), Payload{
		Type: TypeWorkCompletion,
		Data: map[string]any{"ro_id": "ro-1", "phase_id": "phase-2"},
	})
	require.NoError(t, err)
	require.Equal(t, "ro-1", result.EntityID)
	require.Equal(t, [][2]string{{"ro-1", "phase-2"}}, rp.advanced)
}

func TestDispatchUnknownType(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Dispatch(context.Background(), Payload{Type: "tool_checkout"})
	require.ErrorIs(t, err, ErrUnknownType)
}

func TestDispatchValidatesRequiredDataKeys(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Dispatch(context.Background(), Payload{Type: TypePartScan})
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.Dispatch(context.Background(), Payload{
		Type: TypeVehicleCheckin,
		Data: map[string]any{"vehicle_id": "veh-1"},
	})
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.Dispatch(context.Background(), Payload{
		Type: TypeWorkCompletion,
		Data: map[string]any{"ro_id": "ro-1"},
	})
	require.ErrorIs(t, err, ErrValidation)
}

func TestDispatchIgnoresNonStringDataValues(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Dispatch(context.Background(), Payload{
		Type: TypePartScan,
		Data: map[string]any{"part_id": 42},
	})
	require.ErrorIs(t, err, ErrValidation)
}

func TestDispatchPropagatesDomainErrors(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Dispatch(context.Background(), Payload{
		Type: TypePartScan,
		Data: map[string]any{"part_id": "part-missing"},
	})
	require.ErrorIs(t, err, parts.ErrNotFound)

	_, err = svc.Dispatch(context.Background(), Payload{
		Type: TypeWorkCompletion,
		Data: map[string]any{"ro_id": "ro-missing", "phase_id": "phase-1"},
	})
	require.ErrorIs(t, err, repairs.ErrNotFound)
}
