package techs

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type memoryRepo struct {
	techs map[string]Tech
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{techs: make(map[string]Tech)}
}

func (m *memoryRepo) Insert(_ context.Context, t Tech) error {
	m.techs[t.ID] = t
	return nil
}

func (m *memoryRepo) Get(_ context.Context, id string) (Tech, error) {
	t, ok := m.techs[id]
	if !ok {
		return Tech{}, ErrNotFound
	}
	return t, nil
}

func (m *memoryRepo) List(_ context.Context) ([]Tech, error) {
	out := make([]Tech, 0, len(m.techs))
	for _, t := range m.techs {
		out = append(out, t)
	}
	return out, nil
}

func (m *memoryRepo) Update(_ context.Context, t Tech) error {
	if _, ok := m.techs[t.ID]; !ok {
		return ErrNotFound
	}
	m.techs[t.ID] = t
	return nil
}

func (m *memoryRepo) Exists(_ context.Context, id string) (bool, error) {
	_, ok := m.techs[id]
	return ok, nil
}

func newTestService(repo *memoryRepo) *Service {
	svc := NewService(repo)
	svc.WithNow(func() time.Time { return time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC) })
	return svc
}

func TestCreateStartsAvailable(t *testing.T) {
	svc := newTestService(newMemoryRepo())

	tech, err := svc.Create(context.Background(), CreateInput{
		Name:           "Jordan Reyes",
		Specialties:    []string{"engine", "brakes"},
		Certifications: []string{"ASE A1"},
		HourlyRate:     decimal.RequireFromString("48.00"),
	})
	require.NoError(t, err)
	require.Equal(t, AvailabilityAvailable, tech.Availability)
	require.True(t, tech.Available())
}

func TestCreateRejectsNegativeRate(t *testing.T) {
	svc := newTestService(newMemoryRepo())

	_, err := svc.Create(context.Background(), CreateInput{
		Name:       "Jordan Reyes",
		HourlyRate: decimal.RequireFromString("-1"),
	})
	require.ErrorIs(t, err, ErrValidation)
}

func TestSetAvailability(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)

	tech, err := svc.Create(context.Background(), CreateInput{Name: "Casey Lindqvist"})
	require.NoError(t, err)

	updated, err := svc.SetAvailability(context.Background(), tech.ID, AvailabilityOff)
	require.NoError(t, err)
	require.Equal(t, AvailabilityOff, updated.Availability)
	require.False(t, updated.Available())
}

func TestSetAvailabilityRejectsUnknownState(t *testing.T) {
	svc := newTestService(newMemoryRepo())

	tech, err := svc.Create(context.Background(), CreateInput{Name: "Casey Lindqvist"})
	require.NoError(t, err)

	_, err = svc.SetAvailability(context.Background(), tech.ID, "vacation")
	require.ErrorIs(t, err, ErrValidation)
}
