package jobs

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/liftboard/liftboard/internal/alerts"
	"github.com/liftboard/liftboard/internal/lifts"
	"github.com/liftboard/liftboard/internal/parts"
	"github.com/liftboard/liftboard/internal/repairs"
)

type stubRepairsScanner struct{ overdue []repairs.RO }

func (s stubRepairsScanner) ListOverdue(context.Context, time.Time) ([]repairs.RO, error) {
	return s.overdue, nil
}

type stubPartsScanner struct{ low []parts.Part }

func (s stubPartsScanner) ListLowStock(context.Context) ([]parts.Part, error) {
	return s.low, nil
}

type stubLiftsScanner struct{ all []lifts.Lift }

func (s stubLiftsScanner) List(context.Context) ([]lifts.Lift, error) {
	return s.all, nil
}

type stubAlertsSink struct {
	unread map[string]bool
	raised []alerts.CreateInput
}

func (s *stubAlertsSink) Raise(_ context.Context, input alerts.CreateInput) (alerts.Alert, error) {
	s.raised = append(s.raised, input)
	return alerts.Alert{ID: "alert-" + input.EntityID}, nil
}

func (s *stubAlertsSink) HasUnreadFor(_ context.Context, entityID string, _ alerts.EntityType) (bool, error) {
	return s.unread[entityID], nil
}

func scanNow() time.Time {
	return time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
}

func newScans(repairsPort RepairsScanner, partsPort PartsScanner, liftsPort LiftsScanner, sink *stubAlertsSink) *Scans {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := NewScans(logger, repairsPort, partsPort, liftsPort, sink)
	s.WithNow(scanNow)
	return s
}

func TestOverdueScanSkipsUnreadAlerts(t *testing.T) {
	past := scanNow().Add(-72 * time.Hour)
	repairsPort := stubRepairsScanner{overdue: []repairs.RO{
		{ID: "ro-1", Number: "RO-2024-001", EstimatedCompletion: &past, CreatedAt: past},
		{ID: "ro-2", Number: "RO-2024-002", EstimatedCompletion: &past, CreatedAt: past},
	}}
	sink := &stubAlertsSink{unread: map[string]bool{"ro-1": true}}
	scans := newScans(repairsPort, stubPartsScanner{}, stubLiftsScanner{}, sink)

	require.NoError(t, scans.HandleOverdueScan(context.Background(), nil))
	require.Len(t, sink.raised, 1)
	require.Equal(t, "ro-2", sink.raised[0].EntityID)
	require.Equal(t, alerts.TypeError, sink.raised[0].Type)
}

func TestOverdueScanReportsDaysPastEstimate(t *testing.T) {
	opened := scanNow().Add(-30 * 24 * time.Hour)
	estimate := scanNow().Add(-72 * time.Hour)
	repairsPort := stubRepairsScanner{overdue: []repairs.RO{
		{ID: "ro-1", Number: "RO-2024-001", EstimatedCompletion: &estimate, CreatedAt: opened},
	}}
	sink := &stubAlertsSink{unread: map[string]bool{}}
	scans := newScans(repairsPort, stubPartsScanner{}, stubLiftsScanner{}, sink)

	require.NoError(t, scans.HandleOverdueScan(context.Background(), nil))
	require.Len(t, sink.raised, 1)
	// Days are measured against the estimate, not against the open date.
	require.Contains(t, sink.raised[0].Message, "3 days past its estimated completion")
}

func TestOverdueScanIsIdempotent(t *testing.T) {
	past := scanNow().Add(-72 * time.Hour)
	repairsPort := stubRepairsScanner{overdue: []repairs.RO{
		{ID: "ro-1", Number: "RO-2024-001", EstimatedCompletion: &past, CreatedAt: past},
	}}
	sink := &stubAlertsSink{unread: map[string]bool{}}
	scans := newScans(repairsPort, stubPartsScanner{}, stubLiftsScanner{}, sink)

	require.NoError(t, scans.HandleOverdueScan(context.Background(), nil))
	require.Len(t, sink.raised, 1)

	// The first alert is still unread, so a second sweep raises nothing.
	sink.unread["ro-1"] = true
	require.NoError(t, scans.HandleOverdueScan(context.Background(), nil))
	require.Len(t, sink.raised, 1)
}

func TestLowStockScanRaisesWarning(t *testing.T) {
	partsPort := stubPartsScanner{low: []parts.Part{
		{ID: "part-2", PartNumber: "OIL-FLT-110", Name: "Oil Filter", Quantity: 3, MinQuantity: 10},
	}}
	sink := &stubAlertsSink{unread: map[string]bool{}}
	scans := newScans(stubRepairsScanner{}, partsPort, stubLiftsScanner{}, sink)

	require.NoError(t, scans.HandleLowStockScan(context.Background(), nil))
	require.Len(t, sink.raised, 1)
	require.Equal(t, "part-2", sink.raised[0].EntityID)
	require.Equal(t, alerts.EntityPart, sink.raised[0].EntityType)
	require.Contains(t, sink.raised[0].Message, "OIL-FLT-110")
}

func TestLiftMaintenanceScanOnlyFlagsDueLifts(t *testing.T) {
	overdueService := scanNow().Add(-24 * time.Hour)
	futureService := scanNow().Add(30 * 24 * time.Hour)
	liftsPort := stubLiftsScanner{all: []lifts.Lift{
		{ID: "lift-1", Name: "Bay 1", NextServiceAt: &overdueService},
		{ID: "lift-2", Name: "Bay 2", NextServiceAt: &futureService},
		{ID: "lift-3", Name: "Bay 3"},
	}}
	sink := &stubAlertsSink{unread: map[string]bool{}}
	scans := newScans(stubRepairsScanner{}, stubPartsScanner{}, liftsPort, sink)

	require.NoError(t, scans.HandleLiftMaintenanceScan(context.Background(), nil))
	require.Len(t, sink.raised, 1)
	require.Equal(t, "lift-1", sink.raised[0].EntityID)
	require.Equal(t, alerts.EntityLift, sink.raised[0].EntityType)
}

func TestCronEntriesCoverAllScans(t *testing.T) {
	entries := CronEntries()
	require.Len(t, entries, 3)

	types := make(map[string]bool, len(entries))
	for _, entry := range entries {
		require.NotEmpty(t, entry.Spec)
		types[entry.Task.Type()] = true
	}
	require.True(t, types[TaskOverdueScan])
	require.True(t, types[TaskLowStockScan])
	require.True(t, types[TaskLiftMaintenanceScan])
}
