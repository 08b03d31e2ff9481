package analyticshttp

import "github.com/go-chi/chi/v5"

// MountRoutes registers dashboard routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/kpi", h.handleKPISummary)
	r.Get("/workload", h.handleTechWorkload)
	r.Get("/workload.csv", h.handleExportCSV)
}
