package entities

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/liftboard/liftboard/internal/platform/httpx"
)

// Handler wires HTTP endpoints for entity master data.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs the entities handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers entity routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleList)
	r.Post("/", h.handleCreate)
	r.Get("/{id}", h.handleGet)
	r.Put("/{id}", h.handleUpdate)
}

type upsertRequest struct {
	Name    string `json:"name" validate:"required"`
	Kind    string `json:"kind" validate:"required,oneof=customer vendor both"`
	Email   string `json:"email" validate:"omitempty,email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Notes   string `json:"notes"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req upsertRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := httpx.Validate(&req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	entity, err := h.service.Create(r.Context(), toInput(req))
	if err != nil {
		h.respondError(w, "create entity", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, entity)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	entity, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, "get entity", err)
		return
	}
	httpx.JSON(w, http.StatusOK, entity)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	entities, err := h.service.List(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.respondError(w, "list entities", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"entities": entities})
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var req upsertRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := httpx.Validate(&req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	entity, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), toInput(req))
	if err != nil {
		h.respondError(w, "update entity", err)
		return
	}
	httpx.JSON(w, http.StatusOK, entity)
}

func toInput(req upsertRequest) UpsertInput {
	return UpsertInput{
		Name:    req.Name,
		Kind:    Kind(req.Kind),
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
		Notes:   req.Notes,
	}
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
