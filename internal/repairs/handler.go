package repairs

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/liftboard/liftboard/internal/platform/httpx"
)

// Handler wires HTTP endpoints for the repairs module.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs the repairs handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers repair order routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleList)
	r.Post("/", h.handleCreate)
	r.Get("/overdue", h.handleListOverdue)
	r.Get("/{id}", h.handleGet)
	r.Post("/{id}/assign-tech", h.handleAssignTech)
	r.Post("/{id}/phases/{phaseID}/advance", h.handleAdvancePhase)
	r.Post("/{id}/phases/{phaseID}/resume", h.handleResumePhase)
	r.Post("/{id}/phases/{phaseID}/rework", h.handleFlagRework)
	r.Post("/{id}/start", h.handleStart)
	r.Post("/{id}/complete", h.handleComplete)
	r.Post("/{id}/close", h.handleClose)
}

type createRORequest struct {
	VehicleID           string               `json:"vehicle_id" validate:"required"`
	CustomerID          string               `json:"customer_id" validate:"required"`
	Description         string               `json:"description"`
	Priority            string               `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	EstimatedCompletion *time.Time           `json:"estimated_completion"`
	Phases              []createPhaseRequest `json:"phases" validate:"dive"`
}

type createPhaseRequest struct {
	Name           string  `json:"name" validate:"required"`
	Description    string  `json:"description"`
	EstimatedHours float64 `json:"estimated_hours" validate:"gte=0"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRORequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := httpx.Validate(&req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	input := CreateROInput{
		VehicleID:           req.VehicleID,
		CustomerID:          req.CustomerID,
		Description:         req.Description,
		Priority:            Priority(req.Priority),
		EstimatedCompletion: req.EstimatedCompletion,
	}
	for _, p := range req.Phases {
		input.Phases = append(input.Phases, CreatePhaseInput{
			Name:           p.Name,
			Description:    p.Description,
			EstimatedHours: p.EstimatedHours,
		})
	}
	ro, err := h.service.CreateRO(r.Context(), input)
	if err != nil {
		h.respondError(w, "create repair order", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, ro)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ro, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, "get repair order", err)
		return
	}
	httpx.JSON(w, http.StatusOK, ro)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	filter := ListFilter{
		Status: ROStatus(r.URL.Query().Get("status")),
		TechID: r.URL.Query().Get("tech_id"),
	}
	ros, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.respondError(w, "list repair orders", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"repair_orders": ros})
}

func (h *Handler) handleListOverdue(w http.ResponseWriter, r *http.Request) {
	ros, err := h.service.ListOverdue(r.Context(), time.Now().UTC())
	if err != nil {
		h.respondError(w, "list overdue repair orders", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"repair_orders": ros})
}

type assignTechRequest struct {
	TechID  string `json:"tech_id" validate:"required"`
	PhaseID string `json:"phase_id"`
}

func (h *Handler) handleAssignTech(w http.ResponseWriter, r *http.Request) {
	var req assignTechRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := httpx.Validate(&req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	ro, err := h.service.AssignTech(r.Context(), chi.URLParam(r, "id"), req.TechID, req.PhaseID)
	if err != nil {
		h.respondError(w, "assign tech", err)
		return
	}
	httpx.JSON(w, http.StatusOK, ro)
}

func (h *Handler) handleAdvancePhase(w http.ResponseWriter, r *http.Request) {
	ro, err := h.service.AdvancePhase(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "phaseID"))
	if err != nil {
		h.respondError(w, "advance phase", err)
		return
	}
	httpx.JSON(w, http.StatusOK, ro)
}

func (h *Handler) handleResumePhase(w http.ResponseWriter, r *http.Request) {
	ro, err := h.service.ResumePhase(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "phaseID"))
	if err != nil {
		h.respondError(w, "resume phase", err)
		return
	}
	httpx.JSON(w, http.StatusOK, ro)
}

type reworkRequest struct {
	Reason string `json:"reason" validate:"required"`
}

func (h *Handler) handleFlagRework(w http.ResponseWriter, r *http.Request) {
	var req reworkRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := httpx.Validate(&req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	ro, err := h.service.FlagRework(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "phaseID"), req.Reason)
	if err != nil {
		h.respondError(w, "flag rework", err)
		return
	}
	httpx.JSON(w, http.StatusOK, ro)
}

func (h *Handler) handleStart(w http.ResponseWriter, r *http.Request) {
	ro, err := h.service.Start(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, "start repair order", err)
		return
	}
	httpx.JSON(w, http.StatusOK, ro)
}

func (h *Handler) handleComplete(w http.ResponseWriter, r *http.Request) {
	ro, err := h.service.Complete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, "complete repair order", err)
		return
	}
	httpx.JSON(w, http.StatusOK, ro)
}

func (h *Handler) handleClose(w http.ResponseWriter, r *http.Request) {
	ro, err := h.service.Close(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, "close repair order", err)
		return
	}
	httpx.JSON(w, http.StatusOK, ro)
}

func (h *Handler) respondError(w http.ResponseWriter, context string, err error) {
	h.logger.Error(context, slog.Any("error", err))
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrPhaseNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrValidation):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, ErrInvalidState):
		httpx.Problem(w, http.StatusConflict, "Invalid State", err.Error())
	default:
		httpx.RespondError(w, err)
	}
}
