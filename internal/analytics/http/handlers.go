package analyticshttp

import (
	"encoding/csv"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/liftboard/liftboard/internal/analytics"
	"github.com/liftboard/liftboard/internal/platform/httpx"
)

// Handler exposes the dashboard aggregation endpoints.
type Handler struct {
	logger  *slog.Logger
	service *analytics.Service
	now     func() time.Time
}

// NewHandler constructs the analytics handler.
func NewHandler(logger *slog.Logger, service *analytics.Service) *Handler {
	return &Handler{logger: logger, service: service, now: time.Now}
}

// WithNow overrides the handler clock for testing.
func (h *Handler) WithNow(fn func() time.Time) {
	if fn != nil {
		h.now = fn
	}
}

func (h *Handler) handleKPISummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.GetKPISummary(r.Context(), h.now().UTC())
	if err != nil {
		h.logger.Error("kpi summary", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

func (h *Handler) handleTechWorkload(w http.ResponseWriter, r *http.Request) {
	workload, err := h.service.GetTechWorkload(r.Context())
	if err != nil {
		h.logger.Error("tech workload", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"workload": workload})
}

func (h *Handler) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	workload, err := h.service.GetTechWorkload(r.Context())
	if err != nil {
		h.logger.Error("workload export", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="tech-workload.csv"`)

	writer := csv.NewWriter(w)
	defer writer.Flush()
	_ = writer.Write([]string{"tech_id", "name", "available", "active_ros"})
	for _, row := range workload {
		_ = writer.Write([]string{
			row.TechID,
			row.Name,
			strconv.FormatBool(row.Available),
			strconv.Itoa(row.ActiveROs),
		})
	}
}
