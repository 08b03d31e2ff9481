package approvals

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/liftboard/liftboard/internal/alerts"
)

type memoryRepo struct {
	approvals map[string]Approval
	order     []string
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{approvals: make(map[string]Approval)}
}

func (m *memoryRepo) Insert(_ context.Context, a Approval) error {
	m.approvals[a.ID] = a
	m.order = append(m.order, a.ID)
	return nil
}

func (m *memoryRepo) Get(_ context.Context, id string) (Approval, error) {
	a, ok := m.approvals[id]
	if !ok {
		return Approval{}, ErrNotFound
	}
	return a, nil
}

func (m *memoryRepo) List(_ context.Context, filter ListFilter) ([]Approval, error) {
	var out []Approval
	for _, id := range m.order {
		a := m.approvals[id]
		if filter.EntityID != "" && a.EntityID != filter.EntityID {
			continue
		}
		if filter.Status != "" && a.Status != filter.Status {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (m *memoryRepo) Update(_ context.Context, a Approval) error {
	if _, ok := m.approvals[a.ID]; !ok {
		return ErrNotFound
	}
	m.approvals[a.ID] = a
	return nil
}

type stubAlerts struct {
	raised []alerts.CreateInput
}

func (s *stubAlerts) Raise(_ context.Context, input alerts.CreateInput) (alerts.Alert, error) {
	s.raised = append(s.raised, input)
	return alerts.Alert{ID: "alert-1"}, nil
}

func newTestService(repo *memoryRepo) (*Service, *stubAlerts) {
	al := &stubAlerts{}
	svc := NewService(repo, al, nil)
	svc.WithNow(func() time.Time { return time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC) })
	return svc, al
}

func TestRequestOpensPendingApproval(t *testing.T) {
	svc, al := newTestService(newMemoryRepo())

	amount := decimal.RequireFromString("450.00")
	approval, err := svc.Request(context.Background(), RequestInput{
		EntityID:    "ro-1",
		EntityType:  EntityRO,
		Description: "Replace tie rod ends",
		Amount:      &amount,
	})
	require.NoError(t, err)
	require.Equal(t, StatusPending, approval.Status)
	require.True(t, approval.Pending())
	require.Nil(t, approval.RespondedAt)

	require.Len(t, al.raised, 1)
	require.Equal(t, alerts.TypeInfo, al.raised[0].Type)
	require.Equal(t, "ro-1", al.raised[0].EntityID)
}

func TestDuplicateRequestsAreKept(t *testing.T) {
	repo := newMemoryRepo()
	svc, _ := newTestService(repo)

	for i := 0; i < 2; i++ {
		_, err := svc.Request(context.Background(), RequestInput{
			EntityID:   "est-1",
			EntityType: EntityEstimate,
		})
		require.NoError(t, err)
	}

	all, err := svc.List(context.Background(), ListFilter{EntityID: "est-1"})
	require.NoError(t, err)
	require.Len(t, all, 2)
}

func TestApproveStampsResponse(t *testing.T) {
	svc, _ := newTestService(newMemoryRepo())

	approval, err := svc.Request(context.Background(), RequestInput{EntityID: "est-1", EntityType: EntityEstimate})
	require.NoError(t, err)

	decided, err := svc.Approve(context.Background(), approval.ID, "service advisor")
	require.NoError(t, err)
	require.Equal(t, StatusApproved, decided.Status)
	require.NotNil(t, decided.RespondedAt)
	require.Equal(t, "service advisor", decided.RespondedBy)
}

func TestRejectFromPending(t *testing.T) {
	svc, _ := newTestService(newMemoryRepo())

	approval, err := svc.Request(context.Background(), RequestInput{EntityID: "po-1", EntityType: EntityPO})
	require.NoError(t, err)

	decided, err := svc.Reject(context.Background(), approval.ID, "customer")
	require.NoError(t, err)
	require.Equal(t, StatusRejected, decided.Status)
}

func TestDecidedApprovalCannotChange(t *testing.T) {
	svc, _ := newTestService(newMemoryRepo())

	approval, err := svc.Request(context.Background(), RequestInput{EntityID: "est-1", EntityType: EntityEstimate})
	require.NoError(t, err)

	_, err = svc.Approve(context.Background(), approval.ID, "advisor")
	require.NoError(t, err)
	_, err = svc.Reject(context.Background(), approval.ID, "advisor")
	require.ErrorIs(t, err, ErrAlreadyDecided)
}

func TestRequestRejectsUnknownEntityType(t *testing.T) {
	svc, _ := newTestService(newMemoryRepo())
	_, err := svc.Request(context.Background(), RequestInput{EntityID: "sup-1", EntityType: "vendor"})
	require.ErrorIs(t, err, ErrValidation)
}
