package estimates

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type memoryRepo struct {
	estimates map[string]Estimate
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{estimates: make(map[string]Estimate)}
}

func (m *memoryRepo) Insert(_ context.Context, est Estimate) error {
	m.estimates[est.ID] = est
	return nil
}

func (m *memoryRepo) Get(_ context.Context, id string) (Estimate, error) {
	est, ok := m.estimates[id]
	if !ok {
		return Estimate{}, ErrNotFound
	}
	return cloneEstimate(est), nil
}

func (m *memoryRepo) GetByRO(_ context.Context, roID string) (Estimate, error) {
	for _, est := range m.estimates {
		if est.ROID == roID {
			return cloneEstimate(est), nil
		}
	}
	return Estimate{}, ErrNotFound
}

// cloneEstimate detaches the item slice, like a row scan would.
func cloneEstimate(est Estimate) Estimate {
	est.Items = append([]Item(nil), est.Items...)
	return est
}

func (m *memoryRepo) List(_ context.Context, filter ListFilter) ([]Estimate, error) {
	var out []Estimate
	for _, est := range m.estimates {
		if filter.Status != "" && est.Status != filter.Status {
			continue
		}
		out = append(out, est)
	}
	return out, nil
}

func (m *memoryRepo) Update(_ context.Context, est Estimate) error {
	existing, ok := m.estimates[est.ID]
	if !ok {
		return ErrNotFound
	}
	est.Items = existing.Items
	m.estimates[est.ID] = est
	return nil
}

func (m *memoryRepo) InsertItem(_ context.Context, item Item) error {
	est, ok := m.estimates[item.EstimateID]
	if !ok {
		return ErrNotFound
	}
	est.Items = append(est.Items, item)
	m.estimates[item.EstimateID] = est
	return nil
}

func (m *memoryRepo) DeleteItem(_ context.Context, estimateID, itemID string) error {
	est, ok := m.estimates[estimateID]
	if !ok {
		return ErrNotFound
	}
	for i, item := range est.Items {
		if item.ID == itemID {
			est.Items = append(est.Items[:i], est.Items[i+1:]...)
			m.estimates[estimateID] = est
			return nil
		}
	}
	return ErrItemNotFound
}

func newTestService(repo *memoryRepo) *Service {
	svc := NewService(repo, nil, decimal.RequireFromString("0.08"))
	svc.WithNow(func() time.Time { return time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC) })
	return svc
}

func fixtureInput() CreateInput {
	return CreateInput{
		ROID: "ro-1",
		Items: []ItemInput{
			{Type: ItemLabor, Description: "Diagnosis", Quantity: decimal.NewFromInt(2), UnitPrice: decimal.RequireFromString("125.00")},
			{Type: ItemPart, Description: "Brake pads", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.RequireFromString("89.99")},
			{Type: ItemFee, Description: "Shop supplies", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.RequireFromString("15.00")},
		},
	}
}

func TestCreateComputesTotals(t *testing.T) {
	svc := newTestService(newMemoryRepo())

	est, err := svc.Create(context.Background(), fixtureInput())
	require.NoError(t, err)
	require.Equal(t, StatusDraft, est.Status)
	require.True(t, est.LaborTotal.Equal(decimal.RequireFromString("250.00")), est.LaborTotal.String())
	require.True(t, est.PartsTotal.Equal(decimal.RequireFromString("89.99")), est.PartsTotal.String())
	require.True(t, est.Subtotal.Equal(decimal.RequireFromString("354.99")), est.Subtotal.String())
	require.True(t, est.Tax.Equal(decimal.RequireFromString("28.40")), est.Tax.String())
	require.True(t, est.Total.Equal(decimal.RequireFromString("383.39")), est.Total.String())
}

func TestFeeCountsTowardSubtotalOnly(t *testing.T) {
	svc := newTestService(newMemoryRepo())

	est, err := svc.Create(context.Background(), CreateInput{
		ROID: "ro-1",
		Items: []ItemInput{
			{Type: ItemFee, Description: "Disposal", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.RequireFromString("10.00")},
		},
	})
	require.NoError(t, err)
	require.True(t, est.LaborTotal.IsZero())
	require.True(t, est.PartsTotal.IsZero())
	require.True(t, est.Subtotal.Equal(decimal.RequireFromString("10.00")))
}

func TestTotalsRecomputedOnRead(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)

	created, err := svc.Create(context.Background(), fixtureInput())
	require.NoError(t, err)

	got, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	require.True(t, got.Total.Equal(created.Total))
}

func TestAddItemUpdatesTotals(t *testing.T) {
	svc := newTestService(newMemoryRepo())

	est, err := svc.Create(context.Background(), CreateInput{ROID: "ro-1"})
	require.NoError(t, err)
	require.True(t, est.Total.IsZero())

	est, err = svc.AddItem(context.Background(), est.ID, ItemInput{
		Type: ItemLabor, Description: "Alignment", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.RequireFromString("100.00"),
	})
	require.NoError(t, err)
	require.True(t, est.Total.Equal(decimal.RequireFromString("108.00")), est.Total.String())
}

func TestRemoveItemUpdatesTotals(t *testing.T) {
	svc := newTestService(newMemoryRepo())

	est, err := svc.Create(context.Background(), fixtureInput())
	require.NoError(t, err)
	partItem := est.Items[1]

	est, err = svc.RemoveItem(context.Background(), est.ID, partItem.ID)
	require.NoError(t, err)
	require.Len(t, est.Items, 2)
	require.True(t, est.PartsTotal.IsZero())

	// a later read sees the same two items, no duplicates
	got, err := svc.Get(context.Background(), est.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 2)
	for _, item := range got.Items {
		require.NotEqual(t, partItem.ID, item.ID)
	}
}

func TestSentEstimateIsFrozen(t *testing.T) {
	svc := newTestService(newMemoryRepo())

	est, err := svc.Create(context.Background(), fixtureInput())
	require.NoError(t, err)
	_, err = svc.Send(context.Background(), est.ID)
	require.NoError(t, err)

	_, err = svc.AddItem(context.Background(), est.ID, ItemInput{
		Type: ItemFee, Description: "Extra", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(1),
	})
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestApproveRequiresSent(t *testing.T) {
	svc := newTestService(newMemoryRepo())

	est, err := svc.Create(context.Background(), fixtureInput())
	require.NoError(t, err)

	_, err = svc.Approve(context.Background(), est.ID)
	require.ErrorIs(t, err, ErrInvalidState)

	_, err = svc.Send(context.Background(), est.ID)
	require.NoError(t, err)
	got, err := svc.Approve(context.Background(), est.ID)
	require.NoError(t, err)
	require.Equal(t, StatusApproved, got.Status)
}

func TestRejectFromSent(t *testing.T) {
	svc := newTestService(newMemoryRepo())

	est, err := svc.Create(context.Background(), fixtureInput())
	require.NoError(t, err)
	_, err = svc.Send(context.Background(), est.ID)
	require.NoError(t, err)

	got, err := svc.Reject(context.Background(), est.ID)
	require.NoError(t, err)
	require.Equal(t, StatusRejected, got.Status)
}

func TestDiscountComesOffBeforeTax(t *testing.T) {
	svc := newTestService(newMemoryRepo())

	input := fixtureInput()
	input.Discount = decimal.RequireFromString("54.99")
	est, err := svc.Create(context.Background(), input)
	require.NoError(t, err)
	// subtotal 354.99 - 54.99 = 300.00, tax 8% = 24.00
	require.True(t, est.Tax.Equal(decimal.RequireFromString("24.00")), est.Tax.String())
	require.True(t, est.Total.Equal(decimal.RequireFromString("324.00")), est.Total.String())
}

func TestSetDiscountOnDraftOnly(t *testing.T) {
	svc := newTestService(newMemoryRepo())

	est, err := svc.Create(context.Background(), fixtureInput())
	require.NoError(t, err)

	est, err = svc.SetDiscount(context.Background(), est.ID, decimal.RequireFromString("10.00"))
	require.NoError(t, err)
	require.True(t, est.Discount.Equal(decimal.RequireFromString("10.00")))

	_, err = svc.Send(context.Background(), est.ID)
	require.NoError(t, err)
	_, err = svc.SetDiscount(context.Background(), est.ID, decimal.Zero)
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestDiscountNeverGoesNegative(t *testing.T) {
	svc := newTestService(newMemoryRepo())

	est, err := svc.Create(context.Background(), CreateInput{
		ROID:     "ro-1",
		Discount: decimal.RequireFromString("500.00"),
		Items: []ItemInput{
			{Type: ItemFee, Description: "Disposal", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.RequireFromString("10.00")},
		},
	})
	require.NoError(t, err)
	require.True(t, est.Total.IsZero(), est.Total.String())
}

func TestCreateRejectsUnknownItemType(t *testing.T) {
	svc := newTestService(newMemoryRepo())
	_, err := svc.Create(context.Background(), CreateInput{
		ROID: "ro-1",
		Items: []ItemInput{
			{Type: "discount", Description: "x", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(1)},
		},
	})
	require.ErrorIs(t, err, ErrValidation)
}
