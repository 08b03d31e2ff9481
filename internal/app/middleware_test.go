package app

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

type countingBumper struct {
	bumps int
}

func (b *countingBumper) InvalidateCache(context.Context) error {
	b.bumps++
	return nil
}

func newBumpedHandler(bumper *countingBumper, status int) http.Handler {
	mw := BumpOnWrite(slog.Default(), bumper)
	return mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	}))
}

func TestBumpOnWriteAfterMutation(t *testing.T) {
	bumper := &countingBumper{}
	h := newBumpedHandler(bumper, http.StatusCreated)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/repair-orders", nil))
	require.Equal(t, 1, bumper.bumps)
}

func TestBumpOnWriteSkipsReads(t *testing.T) {
	bumper := &countingBumper{}
	h := newBumpedHandler(bumper, http.StatusOK)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard/kpi", nil))
	require.Zero(t, bumper.bumps)
}

func TestBumpOnWriteSkipsFailedMutations(t *testing.T) {
	bumper := &countingBumper{}
	h := newBumpedHandler(bumper, http.StatusUnprocessableEntity)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/parts", nil))
	require.Zero(t, bumper.bumps)
}
