package lifts

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/liftboard/liftboard/internal/repairs"
)

type memoryRepo struct {
	lifts map[string]Lift
}

func newMemoryRepo(lifts ...Lift) *memoryRepo {
	m := &memoryRepo{lifts: make(map[string]Lift)}
	for _, l := range lifts {
		m.lifts[l.ID] = l
	}
	return m
}

func (m *memoryRepo) Get(_ context.Context, id string) (Lift, error) {
	l, ok := m.lifts[id]
	if !ok {
		return Lift{}, ErrNotFound
	}
	return l, nil
}

func (m *memoryRepo) List(_ context.Context) ([]Lift, error) {
	out := make([]Lift, 0, len(m.lifts))
	for _, l := range m.lifts {
		out = append(out, l)
	}
	return out, nil
}

func (m *memoryRepo) FindByRO(_ context.Context, roID string) (Lift, error) {
	for _, l := range m.lifts {
		if l.CurrentROID != nil && *l.CurrentROID == roID {
			return l, nil
		}
	}
	return Lift{}, ErrNotFound
}

func (m *memoryRepo) Update(_ context.Context, l Lift) error {
	if _, ok := m.lifts[l.ID]; !ok {
		return ErrNotFound
	}
	m.lifts[l.ID] = l
	return nil
}

type stubROs struct {
	ros map[string]repairs.RO
}

func (s stubROs) Get(_ context.Context, roID string) (repairs.RO, error) {
	ro, ok := s.ros[roID]
	if !ok {
		return repairs.RO{}, repairs.ErrNotFound
	}
	return ro, nil
}

func newTestService(repo *memoryRepo) *Service {
	ros := stubROs{ros: map[string]repairs.RO{
		"ro-open":      {ID: "ro-open", Status: repairs.ROStatusOpen},
		"ro-active":    {ID: "ro-active", Status: repairs.ROStatusInProgress},
		"ro-completed": {ID: "ro-completed", Status: repairs.ROStatusCompleted},
	}}
	svc := NewService(repo, ros, nil)
	svc.WithNow(func() time.Time { return time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC) })
	return svc
}

func TestAssignROToAvailableLift(t *testing.T) {
	repo := newMemoryRepo(Lift{ID: "lift-1", Name: "Lift 1", Status: StatusAvailable})
	svc := newTestService(repo)

	lift, err := svc.AssignRO(context.Background(), "lift-1", "ro-open")
	require.NoError(t, err)
	require.Equal(t, StatusOccupied, lift.Status)
	require.NotNil(t, lift.CurrentROID)
	require.Equal(t, "ro-open", *lift.CurrentROID)
}

func TestAssignRORejectsCompletedRO(t *testing.T) {
	repo := newMemoryRepo(Lift{ID: "lift-1", Name: "Lift 1", Status: StatusAvailable})
	svc := newTestService(repo)

	_, err := svc.AssignRO(context.Background(), "lift-1", "ro-completed")
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestAssignRORejectsOccupiedLift(t *testing.T) {
	roID := "ro-active"
	repo := newMemoryRepo(
		Lift{ID: "lift-1", Name: "Lift 1", Status: StatusOccupied, CurrentROID: &roID},
	)
	svc := newTestService(repo)

	_, err := svc.AssignRO(context.Background(), "lift-1", "ro-open")
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestAssignRORejectsSecondLiftForSameRO(t *testing.T) {
	roID := "ro-active"
	repo := newMemoryRepo(
		Lift{ID: "lift-1", Name: "Lift 1", Status: StatusOccupied, CurrentROID: &roID},
		Lift{ID: "lift-2", Name: "Lift 2", Status: StatusAvailable},
	)
	svc := newTestService(repo)

	_, err := svc.AssignRO(context.Background(), "lift-2", "ro-active")
	require.ErrorIs(t, err, ErrROOnLift)
}

func TestAssignROToReservedLift(t *testing.T) {
	repo := newMemoryRepo(Lift{ID: "lift-1", Name: "Lift 1", Status: StatusReserved})
	svc := newTestService(repo)

	lift, err := svc.AssignRO(context.Background(), "lift-1", "ro-open")
	require.NoError(t, err)
	require.Equal(t, StatusOccupied, lift.Status)
}

func TestAssignROUnknownRO(t *testing.T) {
	repo := newMemoryRepo(Lift{ID: "lift-1", Name: "Lift 1", Status: StatusAvailable})
	svc := newTestService(repo)

	_, err := svc.AssignRO(context.Background(), "lift-1", "ro-missing")
	require.ErrorIs(t, err, repairs.ErrNotFound)
}

func TestReleaseFreesLift(t *testing.T) {
	roID := "ro-active"
	repo := newMemoryRepo(Lift{ID: "lift-1", Name: "Lift 1", Status: StatusOccupied, CurrentROID: &roID})
	svc := newTestService(repo)

	lift, err := svc.Release(context.Background(), "lift-1")
	require.NoError(t, err)
	require.Equal(t, StatusAvailable, lift.Status)
	require.Nil(t, lift.CurrentROID)
}

func TestReleaseRejectsIdleLift(t *testing.T) {
	repo := newMemoryRepo(Lift{ID: "lift-1", Name: "Lift 1", Status: StatusAvailable})
	svc := newTestService(repo)

	_, err := svc.Release(context.Background(), "lift-1")
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestSetStatusMaintenance(t *testing.T) {
	repo := newMemoryRepo(Lift{ID: "lift-1", Name: "Lift 1", Status: StatusAvailable})
	svc := newTestService(repo)

	lift, err := svc.SetStatus(context.Background(), "lift-1", StatusMaintenance)
	require.NoError(t, err)
	require.Equal(t, StatusMaintenance, lift.Status)
}

func TestSetStatusRejectsOccupiedLift(t *testing.T) {
	roID := "ro-active"
	repo := newMemoryRepo(Lift{ID: "lift-1", Name: "Lift 1", Status: StatusOccupied, CurrentROID: &roID})
	svc := newTestService(repo)

	_, err := svc.SetStatus(context.Background(), "lift-1", StatusMaintenance)
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestSetStatusRejectsOccupiedTarget(t *testing.T) {
	repo := newMemoryRepo(Lift{ID: "lift-1", Name: "Lift 1", Status: StatusAvailable})
	svc := newTestService(repo)

	_, err := svc.SetStatus(context.Background(), "lift-1", StatusOccupied)
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestMarkServicedClearsMaintenance(t *testing.T) {
	repo := newMemoryRepo(Lift{ID: "lift-1", Name: "Lift 1", Status: StatusMaintenance})
	svc := newTestService(repo)

	next := time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)
	lift, err := svc.MarkServiced(context.Background(), "lift-1", &next)
	require.NoError(t, err)
	require.Equal(t, StatusAvailable, lift.Status)
	require.NotNil(t, lift.LastServiced)
	require.Equal(t, &next, lift.NextServiceAt)
}

func TestListAvailable(t *testing.T) {
	roID := "ro-active"
	repo := newMemoryRepo(
		Lift{ID: "lift-1", Name: "Lift 1", Status: StatusAvailable},
		Lift{ID: "lift-2", Name: "Lift 2", Status: StatusOccupied, CurrentROID: &roID},
		Lift{ID: "lift-3", Name: "Lift 3", Status: StatusOutOfOrder},
	)
	svc := newTestService(repo)

	lifts, err := svc.ListAvailable(context.Background())
	require.NoError(t, err)
	require.Len(t, lifts, 1)
	require.Equal(t, "lift-1", lifts[0].ID)
}
