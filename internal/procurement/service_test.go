package procurement

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/liftboard/liftboard/internal/parts"
)

type memoryRepo struct {
	pos map[string]PO
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{pos: make(map[string]PO)}
}

func (m *memoryRepo) Insert(_ context.Context, po PO) error {
	m.pos[po.ID] = po
	return nil
}

func (m *memoryRepo) Get(_ context.Context, id string) (PO, error) {
	po, ok := m.pos[id]
	if !ok {
		return PO{}, ErrNotFound
	}
	return po, nil
}

func (m *memoryRepo) List(_ context.Context, filter ListFilter) ([]PO, error) {
	var out []PO
	for _, po := range m.pos {
		if filter.Status != "" && po.Status != filter.Status {
			continue
		}
		if filter.SupplierID != "" && po.SupplierID != filter.SupplierID {
			continue
		}
		out = append(out, po)
	}
	return out, nil
}

func (m *memoryRepo) Update(_ context.Context, po PO) error {
	existing, ok := m.pos[po.ID]
	if !ok {
		return ErrNotFound
	}
	po.Lines = existing.Lines
	m.pos[po.ID] = po
	return nil
}

type stubParts struct {
	received map[string]int
}

func (s *stubParts) ReceiveStock(_ context.Context, partID string, qty int, _ string) (parts.Part, error) {
	if s.received == nil {
		s.received = make(map[string]int)
	}
	s.received[partID] += qty
	return parts.Part{ID: partID, Quantity: s.received[partID]}, nil
}

type stubNumbering struct {
	seq int
}

func (s *stubNumbering) Next(_ context.Context, prefix string, at time.Time) (string, error) {
	s.seq++
	return fmt.Sprintf("%s-%d-%03d", prefix, at.Year(), s.seq), nil
}

func newTestService(repo *memoryRepo) (*Service, *stubParts) {
	pp := &stubParts{}
	svc := NewService(repo, pp, &stubNumbering{}, nil)
	svc.WithNow(func() time.Time { return time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC) })
	return svc, pp
}

func draftInput() CreateInput {
	return CreateInput{
		SupplierID: "sup-1",
		Lines: []CreateLineInput{
			{PartID: "part-1", Description: "Brake pads", Quantity: 20, UnitPrice: decimal.RequireFromString("12.50")},
			{Description: "Shipping", Quantity: 1, UnitPrice: decimal.RequireFromString("18.00")},
		},
	}
}

func TestCreateComputesTotals(t *testing.T) {
	svc, _ := newTestService(newMemoryRepo())

	po, err := svc.Create(context.Background(), draftInput())
	require.NoError(t, err)
	require.Equal(t, "PO-2024-001", po.Number)
	require.Equal(t, POStatusDraft, po.Status)
	require.Len(t, po.Lines, 2)
	require.True(t, po.Lines[0].LineTotal.Equal(decimal.RequireFromString("250.00")))
	require.True(t, po.TotalAmount.Equal(decimal.RequireFromString("268.00")))
}

func TestCreateRejectsEmptyLines(t *testing.T) {
	svc, _ := newTestService(newMemoryRepo())
	_, err := svc.Create(context.Background(), CreateInput{SupplierID: "sup-1"})
	require.ErrorIs(t, err, ErrValidation)
}

func TestCreateRejectsNegativeQuantity(t *testing.T) {
	svc, _ := newTestService(newMemoryRepo())
	_, err := svc.Create(context.Background(), CreateInput{
		SupplierID: "sup-1",
		Lines:      []CreateLineInput{{Quantity: -1, UnitPrice: decimal.NewFromInt(5)}},
	})
	require.ErrorIs(t, err, ErrValidation)
}

func TestCreateAllowsZeroQuantityLines(t *testing.T) {
	svc, _ := newTestService(newMemoryRepo())

	po, err := svc.Create(context.Background(), CreateInput{
		SupplierID: "sup-1",
		Lines: []CreateLineInput{
			{PartID: "part-1", Quantity: 0, UnitPrice: decimal.RequireFromString("99.95")},
			{Description: "Shipping", Quantity: 1, UnitPrice: decimal.RequireFromString("18.00")},
		},
	})
	require.NoError(t, err)
	require.True(t, po.Lines[0].LineTotal.Equal(decimal.Zero))
	require.True(t, po.TotalAmount.Equal(decimal.RequireFromString("18.00")))
}

func TestWorkflowHappyPath(t *testing.T) {
	svc, pp := newTestService(newMemoryRepo())

	po, err := svc.Create(context.Background(), draftInput())
	require.NoError(t, err)

	po, err = svc.Submit(context.Background(), po.ID)
	require.NoError(t, err)
	require.Equal(t, POStatusSubmitted, po.Status)

	po, err = svc.Approve(context.Background(), po.ID)
	require.NoError(t, err)
	require.Equal(t, POStatusApproved, po.Status)

	po, err = svc.Receive(context.Background(), po.ID)
	require.NoError(t, err)
	require.Equal(t, POStatusReceived, po.Status)

	// only the part-linked line posts to stock
	require.Equal(t, map[string]int{"part-1": 20}, pp.received)
}

func TestSubmitRequiresDraft(t *testing.T) {
	svc, _ := newTestService(newMemoryRepo())

	po, err := svc.Create(context.Background(), draftInput())
	require.NoError(t, err)
	_, err = svc.Submit(context.Background(), po.ID)
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), po.ID)
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestReceiveRequiresApproved(t *testing.T) {
	svc, pp := newTestService(newMemoryRepo())

	po, err := svc.Create(context.Background(), draftInput())
	require.NoError(t, err)

	_, err = svc.Receive(context.Background(), po.ID)
	require.ErrorIs(t, err, ErrInvalidState)
	require.Empty(t, pp.received)
}

func TestCancelBeforeReceipt(t *testing.T) {
	svc, _ := newTestService(newMemoryRepo())

	po, err := svc.Create(context.Background(), draftInput())
	require.NoError(t, err)
	_, err = svc.Submit(context.Background(), po.ID)
	require.NoError(t, err)

	po, err = svc.Cancel(context.Background(), po.ID)
	require.NoError(t, err)
	require.Equal(t, POStatusCancelled, po.Status)

	_, err = svc.Approve(context.Background(), po.ID)
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestCancelRejectsReceivedPO(t *testing.T) {
	svc, _ := newTestService(newMemoryRepo())

	po, err := svc.Create(context.Background(), draftInput())
	require.NoError(t, err)
	_, err = svc.Submit(context.Background(), po.ID)
	require.NoError(t, err)
	_, err = svc.Approve(context.Background(), po.ID)
	require.NoError(t, err)
	_, err = svc.Receive(context.Background(), po.ID)
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), po.ID)
	require.ErrorIs(t, err, ErrInvalidState)
}
