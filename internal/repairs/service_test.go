package repairs

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/liftboard/liftboard/internal/alerts"
)

type memoryRepo struct {
	ros     map[string]*RO
	history []HistoryEntry
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{ros: make(map[string]*RO)}
}

func (m *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return fn(ctx, m)
}

func (m *memoryRepo) GetRO(_ context.Context, id string) (RO, error) {
	ro, ok := m.ros[id]
	if !ok {
		return RO{}, ErrNotFound
	}
	return cloneRO(*ro), nil
}

func (m *memoryRepo) ListROs(_ context.Context, filter ListFilter) ([]RO, error) {
	var out []RO
	for _, ro := range m.ros {
		if filter.Status != "" && ro.Status != filter.Status {
			continue
		}
		if filter.TechID != "" && !ro.HasTech(filter.TechID) {
			continue
		}
		out = append(out, cloneRO(*ro))
	}
	return out, nil
}

func (m *memoryRepo) InsertRO(_ context.Context, ro RO) error {
	stored := cloneRO(ro)
	stored.Phases = nil // header only, phases arrive via InsertPhase
	m.ros[ro.ID] = &stored
	return nil
}

func (m *memoryRepo) UpdateRO(_ context.Context, ro RO) error {
	existing, ok := m.ros[ro.ID]
	if !ok {
		return ErrNotFound
	}
	phases := existing.Phases
	stored := cloneRO(ro)
	stored.Phases = phases
	m.ros[ro.ID] = &stored
	return nil
}

func (m *memoryRepo) InsertPhase(_ context.Context, p Phase) error {
	ro, ok := m.ros[p.ROID]
	if !ok {
		return ErrNotFound
	}
	ro.Phases = append(ro.Phases, p)
	return nil
}

func (m *memoryRepo) UpdatePhase(_ context.Context, p Phase) error {
	ro, ok := m.ros[p.ROID]
	if !ok {
		return ErrNotFound
	}
	for i := range ro.Phases {
		if ro.Phases[i].ID == p.ID {
			ro.Phases[i] = p
			return nil
		}
	}
	return ErrPhaseNotFound
}

func (m *memoryRepo) InsertHistory(_ context.Context, entry HistoryEntry) error {
	m.history = append(m.history, entry)
	return nil
}

func cloneRO(ro RO) RO {
	ro.Phases = append([]Phase(nil), ro.Phases...)
	ro.AssignedTechs = append([]string(nil), ro.AssignedTechs...)
	return ro
}

type stubTechs struct {
	known map[string]bool
}

func (s stubTechs) Exists(_ context.Context, techID string) (bool, error) {
	return s.known[techID], nil
}

type stubAlerts struct {
	raised []alerts.CreateInput
}

func (s *stubAlerts) Raise(_ context.Context, input alerts.CreateInput) (alerts.Alert, error) {
	s.raised = append(s.raised, input)
	return alerts.Alert{ID: "alert-1", Type: input.Type, Title: input.Title}, nil
}

type stubNumbering struct {
	seq int
}

func (s *stubNumbering) Next(_ context.Context, prefix string, at time.Time) (string, error) {
	s.seq++
	return fmt.Sprintf("%s-%d-%03d", prefix, at.Year(), s.seq), nil
}

func newTestService(repo *memoryRepo, at time.Time) (*Service, *stubAlerts) {
	techs := stubTechs{known: map[string]bool{"tech-1": true, "tech-2": true}}
	al := &stubAlerts{}
	svc := NewService(repo, techs, al, &stubNumbering{}, nil)
	svc.WithNow(func() time.Time { return at })
	return svc, al
}

func TestCreateROAppliesStandardPhases(t *testing.T) {
	repo := newMemoryRepo()
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	svc, _ := newTestService(repo, now)

	ro, err := svc.CreateRO(context.Background(), CreateROInput{
		VehicleID:  "veh-1",
		CustomerID: "ent-1",
	})
	require.NoError(t, err)
	require.Equal(t, "RO-2024-001", ro.Number)
	require.Equal(t, ROStatusOpen, ro.Status)
	require.Equal(t, PriorityMedium, ro.Priority)
	require.Len(t, ro.Phases, 6)
	require.Equal(t, "Pull", ro.Phases[0].Name)
	require.Equal(t, "Complete", ro.Phases[5].Name)
	for i, p := range ro.Phases {
		require.Equal(t, PhaseStatusPending, p.Status)
		require.Equal(t, i+1, p.Order)
	}
	require.Empty(t, ro.AssignedTechs)
}

func TestCreateROStoresPhasesOnce(t *testing.T) {
	repo := newMemoryRepo()
	svc, _ := newTestService(repo, time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))

	ro, err := svc.CreateRO(context.Background(), CreateROInput{VehicleID: "veh-1", CustomerID: "ent-1"})
	require.NoError(t, err)

	got, err := svc.Get(context.Background(), ro.ID)
	require.NoError(t, err)
	require.Len(t, got.Phases, 6)
	seen := make(map[string]bool, len(got.Phases))
	for _, p := range got.Phases {
		require.False(t, seen[p.ID], "phase %s stored twice", p.Name)
		seen[p.ID] = true
	}
}

func TestCreateRORequiresVehicleAndCustomer(t *testing.T) {
	svc, _ := newTestService(newMemoryRepo(), time.Now())
	_, err := svc.CreateRO(context.Background(), CreateROInput{VehicleID: "veh-1"})
	require.ErrorIs(t, err, ErrValidation)
}

func TestAssignTechAddsToEmptySet(t *testing.T) {
	repo := newMemoryRepo()
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	svc, _ := newTestService(repo, now)

	ro, err := svc.CreateRO(context.Background(), CreateROInput{VehicleID: "veh-1", CustomerID: "ent-1"})
	require.NoError(t, err)

	got, err := svc.AssignTech(context.Background(), ro.ID, "tech-2", "")
	require.NoError(t, err)
	require.Equal(t, []string{"tech-2"}, got.AssignedTechs)
}

func TestAssignTechIsIdempotentPerTech(t *testing.T) {
	repo := newMemoryRepo()
	svc, _ := newTestService(repo, time.Now())

	ro, err := svc.CreateRO(context.Background(), CreateROInput{VehicleID: "veh-1", CustomerID: "ent-1"})
	require.NoError(t, err)

	_, err = svc.AssignTech(context.Background(), ro.ID, "tech-1", "")
	require.NoError(t, err)
	got, err := svc.AssignTech(context.Background(), ro.ID, "tech-1", "")
	require.NoError(t, err)
	require.Equal(t, []string{"tech-1"}, got.AssignedTechs)
}

func TestAssignTechToPhaseJoinsROSet(t *testing.T) {
	repo := newMemoryRepo()
	svc, _ := newTestService(repo, time.Now())

	ro, err := svc.CreateRO(context.Background(), CreateROInput{VehicleID: "veh-1", CustomerID: "ent-1"})
	require.NoError(t, err)
	phaseID := ro.Phases[1].ID

	got, err := svc.AssignTech(context.Background(), ro.ID, "tech-2", phaseID)
	require.NoError(t, err)
	require.Equal(t, "tech-2", got.Phases[1].AssignedTechID)
	require.Contains(t, got.AssignedTechs, "tech-2")
}

func TestAssignTechUnknownTech(t *testing.T) {
	repo := newMemoryRepo()
	svc, _ := newTestService(repo, time.Now())

	ro, err := svc.CreateRO(context.Background(), CreateROInput{VehicleID: "veh-1", CustomerID: "ent-1"})
	require.NoError(t, err)

	_, err = svc.AssignTech(context.Background(), ro.ID, "tech-999", "")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestAdvancePhaseLifecycle(t *testing.T) {
	repo := newMemoryRepo()
	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	current := start
	svc, _ := newTestService(repo, start)
	svc.WithNow(func() time.Time { return current })

	ro, err := svc.CreateRO(context.Background(), CreateROInput{VehicleID: "veh-1", CustomerID: "ent-1"})
	require.NoError(t, err)
	phaseID := ro.Phases[0].ID

	got, err := svc.AdvancePhase(context.Background(), ro.ID, phaseID)
	require.NoError(t, err)
	require.Equal(t, PhaseStatusInProgress, got.Phases[0].Status)
	require.NotNil(t, got.Phases[0].StartedAt)
	require.Equal(t, start, *got.Phases[0].StartedAt)
	require.Nil(t, got.Phases[0].EndedAt)

	current = start.Add(3 * time.Hour)
	got, err = svc.AdvancePhase(context.Background(), ro.ID, phaseID)
	require.NoError(t, err)
	require.Equal(t, PhaseStatusCompleted, got.Phases[0].Status)
	require.NotNil(t, got.Phases[0].EndedAt)
	require.Equal(t, current, *got.Phases[0].EndedAt)
	require.InDelta(t, 3.0, got.Phases[0].ActualHours, 0.001)

	require.Len(t, repo.history, 2)
	require.Equal(t, HistoryStarted, repo.history[0].Event)
	require.Equal(t, HistoryCompleted, repo.history[1].Event)
}

func TestAdvancePhaseCompletedIsNoOp(t *testing.T) {
	repo := newMemoryRepo()
	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	current := start
	svc, _ := newTestService(repo, start)
	svc.WithNow(func() time.Time { return current })

	ro, err := svc.CreateRO(context.Background(), CreateROInput{VehicleID: "veh-1", CustomerID: "ent-1"})
	require.NoError(t, err)
	phaseID := ro.Phases[0].ID

	_, err = svc.AdvancePhase(context.Background(), ro.ID, phaseID)
	require.NoError(t, err)
	done, err := svc.AdvancePhase(context.Background(), ro.ID, phaseID)
	require.NoError(t, err)
	require.Equal(t, PhaseStatusCompleted, done.Phases[0].Status)

	before := done.UpdatedAt
	current = current.Add(time.Hour)
	again, err := svc.AdvancePhase(context.Background(), ro.ID, phaseID)
	require.NoError(t, err)
	require.Equal(t, PhaseStatusCompleted, again.Phases[0].Status)
	require.Equal(t, before, again.UpdatedAt)
	require.Len(t, repo.history, 2)
}

func TestAdvancePhaseOnHoldIsNoOp(t *testing.T) {
	repo := newMemoryRepo()
	svc, _ := newTestService(repo, time.Now())

	ro, err := svc.CreateRO(context.Background(), CreateROInput{VehicleID: "veh-1", CustomerID: "ent-1"})
	require.NoError(t, err)
	phaseID := ro.Phases[0].ID

	_, err = svc.FlagRework(context.Background(), ro.ID, phaseID, "paint defect")
	require.NoError(t, err)

	got, err := svc.AdvancePhase(context.Background(), ro.ID, phaseID)
	require.NoError(t, err)
	require.Equal(t, PhaseStatusOnHold, got.Phases[0].Status)
}

func TestResumePhaseFromHold(t *testing.T) {
	repo := newMemoryRepo()
	svc, _ := newTestService(repo, time.Now())

	ro, err := svc.CreateRO(context.Background(), CreateROInput{VehicleID: "veh-1", CustomerID: "ent-1"})
	require.NoError(t, err)
	phaseID := ro.Phases[2].ID

	_, err = svc.FlagRework(context.Background(), ro.ID, phaseID, "wrong part installed")
	require.NoError(t, err)

	got, err := svc.ResumePhase(context.Background(), ro.ID, phaseID)
	require.NoError(t, err)
	require.Equal(t, PhaseStatusInProgress, got.Phases[2].Status)
}

func TestResumePhaseRejectsNonHeld(t *testing.T) {
	repo := newMemoryRepo()
	svc, _ := newTestService(repo, time.Now())

	ro, err := svc.CreateRO(context.Background(), CreateROInput{VehicleID: "veh-1", CustomerID: "ent-1"})
	require.NoError(t, err)

	_, err = svc.ResumePhase(context.Background(), ro.ID, ro.Phases[0].ID)
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestFlagReworkMarksROAndRaisesAlert(t *testing.T) {
	repo := newMemoryRepo()
	svc, al := newTestService(repo, time.Now())

	ro, err := svc.CreateRO(context.Background(), CreateROInput{VehicleID: "veh-1", CustomerID: "ent-1"})
	require.NoError(t, err)
	phaseID := ro.Phases[1].ID

	got, err := svc.FlagRework(context.Background(), ro.ID, phaseID, "misdiagnosed")
	require.NoError(t, err)
	require.True(t, got.IsRework)
	require.Equal(t, "misdiagnosed", got.ReworkReason)
	require.Equal(t, PhaseStatusOnHold, got.Phases[1].Status)

	require.Len(t, al.raised, 1)
	require.Equal(t, alerts.TypeWarning, al.raised[0].Type)
	require.Equal(t, ro.ID, al.raised[0].EntityID)
	require.Equal(t, alerts.EntityRO, al.raised[0].EntityType)

	require.Len(t, repo.history, 1)
	require.Equal(t, HistoryHeld, repo.history[0].Event)
}

func TestFlagReworkRequiresReason(t *testing.T) {
	repo := newMemoryRepo()
	svc, _ := newTestService(repo, time.Now())

	ro, err := svc.CreateRO(context.Background(), CreateROInput{VehicleID: "veh-1", CustomerID: "ent-1"})
	require.NoError(t, err)

	_, err = svc.FlagRework(context.Background(), ro.ID, ro.Phases[0].ID, "  ")
	require.ErrorIs(t, err, ErrValidation)
}

func TestCompleteRequiresAllPhasesDone(t *testing.T) {
	repo := newMemoryRepo()
	svc, _ := newTestService(repo, time.Now())

	ro, err := svc.CreateRO(context.Background(), CreateROInput{
		VehicleID:  "veh-1",
		CustomerID: "ent-1",
		Phases:     []CreatePhaseInput{{Name: "Diagnose"}, {Name: "Build"}},
	})
	require.NoError(t, err)

	_, err = svc.Start(context.Background(), ro.ID)
	require.NoError(t, err)

	_, err = svc.Complete(context.Background(), ro.ID)
	require.ErrorIs(t, err, ErrInvalidState)

	for _, p := range ro.Phases {
		_, err = svc.AdvancePhase(context.Background(), ro.ID, p.ID)
		require.NoError(t, err)
		_, err = svc.AdvancePhase(context.Background(), ro.ID, p.ID)
		require.NoError(t, err)
	}

	done, err := svc.Complete(context.Background(), ro.ID)
	require.NoError(t, err)
	require.Equal(t, ROStatusCompleted, done.Status)
	require.NotNil(t, done.ActualCompletion)
}

func TestStartRejectsNonOpen(t *testing.T) {
	repo := newMemoryRepo()
	svc, _ := newTestService(repo, time.Now())

	ro, err := svc.CreateRO(context.Background(), CreateROInput{VehicleID: "veh-1", CustomerID: "ent-1"})
	require.NoError(t, err)

	_, err = svc.Start(context.Background(), ro.ID)
	require.NoError(t, err)
	_, err = svc.Start(context.Background(), ro.ID)
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestCloseRequiresCompleted(t *testing.T) {
	repo := newMemoryRepo()
	svc, _ := newTestService(repo, time.Now())

	ro, err := svc.CreateRO(context.Background(), CreateROInput{VehicleID: "veh-1", CustomerID: "ent-1"})
	require.NoError(t, err)

	_, err = svc.Close(context.Background(), ro.ID)
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestListOverdue(t *testing.T) {
	repo := newMemoryRepo()
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	svc, _ := newTestService(repo, now)

	past := now.Add(-48 * time.Hour)
	future := now.Add(48 * time.Hour)

	late, err := svc.CreateRO(context.Background(), CreateROInput{
		VehicleID: "veh-1", CustomerID: "ent-1", EstimatedCompletion: &past,
	})
	require.NoError(t, err)
	_, err = svc.CreateRO(context.Background(), CreateROInput{
		VehicleID: "veh-2", CustomerID: "ent-2", EstimatedCompletion: &future,
	})
	require.NoError(t, err)
	_, err = svc.CreateRO(context.Background(), CreateROInput{
		VehicleID: "veh-3", CustomerID: "ent-3",
	})
	require.NoError(t, err)

	overdue, err := svc.ListOverdue(context.Background(), now)
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	require.Equal(t, late.ID, overdue[0].ID)
}

func TestOverdueExcludesCompleted(t *testing.T) {
	repo := newMemoryRepo()
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	svc, _ := newTestService(repo, now)

	past := now.Add(-24 * time.Hour)
	ro, err := svc.CreateRO(context.Background(), CreateROInput{
		VehicleID: "veh-1", CustomerID: "ent-1", EstimatedCompletion: &past,
		Phases: []CreatePhaseInput{{Name: "Diagnose"}},
	})
	require.NoError(t, err)
	_, err = svc.Start(context.Background(), ro.ID)
	require.NoError(t, err)
	_, err = svc.AdvancePhase(context.Background(), ro.ID, ro.Phases[0].ID)
	require.NoError(t, err)
	_, err = svc.AdvancePhase(context.Background(), ro.ID, ro.Phases[0].ID)
	require.NoError(t, err)
	_, err = svc.Complete(context.Background(), ro.ID)
	require.NoError(t, err)

	overdue, err := svc.ListOverdue(context.Background(), now)
	require.NoError(t, err)
	require.Empty(t, overdue)
}

func TestGetUnknownRO(t *testing.T) {
	svc, _ := newTestService(newMemoryRepo(), time.Now())
	_, err := svc.Get(context.Background(), "ro-missing")
	require.ErrorIs(t, err, ErrNotFound)
}
