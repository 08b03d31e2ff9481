package lifts

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/liftboard/liftboard/internal/platform/httpx"
	"github.com/liftboard/liftboard/internal/repairs"
)

// Handler wires HTTP endpoints for the lifts module.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs the lifts handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers lift routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleList)
	r.Get("/available", h.handleListAvailable)
	r.Get("/{id}", h.handleGet)
	r.Post("/{id}/assign", h.handleAssignRO)
	r.Post("/{id}/release", h.handleRelease)
	r.Post("/{id}/status", h.handleSetStatus)
	r.Post("/{id}/serviced", h.handleMarkServiced)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	lifts, err := h.service.List(r.Context())
	if err != nil {
		h.respondError(w, "list lifts", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"lifts": lifts})
}

func (h *Handler) handleListAvailable(w http.ResponseWriter, r *http.Request) {
	lifts, err := h.service.ListAvailable(r.Context())
	if err != nil {
		h.respondError(w, "list available lifts", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"lifts": lifts})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	lift, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, "get lift", err)
		return
	}
	httpx.JSON(w, http.StatusOK, lift)
}

type assignRequest struct {
	ROID string `json:"ro_id" validate:"required"`
}

func (h *Handler) handleAssignRO(w http.ResponseWriter, r *http.Request) {
	var req assignRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := httpx.Validate(&req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	lift, err := h.service.AssignRO(r.Context(), chi.URLParam(r, "id"), req.ROID)
	if err != nil {
		h.respondError(w, "assign repair order to lift", err)
		return
	}
	httpx.JSON(w, http.StatusOK, lift)
}

func (h *Handler) handleRelease(w http.ResponseWriter, r *http.Request) {
	lift, err := h.service.Release(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, "release lift", err)
		return
	}
	httpx.JSON(w, http.StatusOK, lift)
}

type setStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

func (h *Handler) handleSetStatus(w http.ResponseWriter, r *http.Request) {
	var req setStatusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := httpx.Validate(&req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	lift, err := h.service.SetStatus(r.Context(), chi.URLParam(r, "id"), Status(req.Status))
	if err != nil {
		h.respondError(w, "set lift status", err)
		return
	}
	httpx.JSON(w, http.StatusOK, lift)
}

type servicedRequest struct {
	NextServiceAt *time.Time `json:"next_service_at"`
}

func (h *Handler) handleMarkServiced(w http.ResponseWriter, r *http.Request) {
	var req servicedRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	lift, err := h.service.MarkServiced(r.Context(), chi.URLParam(r, "id"), req.NextServiceAt)
	if err != nil {
		h.respondError(w, "mark lift serviced", err)
		return
	}
	httpx.JSON(w, http.StatusOK, lift)
}

func (h *Handler) respondError(w http.ResponseWriter, context string, err error) {
	h.logger.Error(context, slog.Any("error", err))
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, repairs.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrValidation):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, ErrInvalidState), errors.Is(err, ErrROOnLift):
		httpx.Problem(w, http.StatusConflict, "Invalid State", err.Error())
	default:
		httpx.RespondError(w, err)
	}
}
