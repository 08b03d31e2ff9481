package techs

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/liftboard/liftboard/internal/platform/httpx"
)

// Handler wires HTTP endpoints for technician master data.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs the techs handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers technician routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleList)
	r.Post("/", h.handleCreate)
	r.Get("/{id}", h.handleGet)
	r.Post("/{id}/availability", h.handleSetAvailability)
}

type createTechRequest struct {
	Name           string          `json:"name" validate:"required"`
	Specialties    []string        `json:"specialties"`
	Certifications []string        `json:"certifications"`
	HourlyRate     decimal.Decimal `json:"hourly_rate"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createTechRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := httpx.Validate(&req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	tech, err := h.service.Create(r.Context(), CreateInput{
		Name:           req.Name,
		Specialties:    req.Specialties,
		Certifications: req.Certifications,
		HourlyRate:     req.HourlyRate,
	})
	if err != nil {
		h.respondError(w, "create tech", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, tech)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	tech, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, "get tech", err)
		return
	}
	httpx.JSON(w, http.StatusOK, tech)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	techs, err := h.service.List(r.Context())
	if err != nil {
		h.respondError(w, "list techs", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"techs": techs})
}

type availabilityRequest struct {
	Availability string `json:"availability" validate:"required"`
}

func (h *Handler) handleSetAvailability(w http.ResponseWriter, r *http.Request) {
	var req availabilityRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := httpx.Validate(&req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	tech, err := h.service.SetAvailability(r.Context(), chi.URLParam(r, "id"), Availability(req.Availability))
	if err != nil {
		h.respondError(w, "set tech availability", err)
		return
	}
	httpx.JSON(w, http.StatusOK, tech)
}

func (h *Handler) respondError(w http.ResponseWriter, context string, err error) {
	h.logger.Error(context, slog.Any("error", err))
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrValidation):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		httpx.RespondError(w, err)
	}
}
