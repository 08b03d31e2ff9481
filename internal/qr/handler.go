package qr

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/liftboard/liftboard/internal/parts"
	"github.com/liftboard/liftboard/internal/platform/httpx"
	"github.com/liftboard/liftboard/internal/repairs"
)

// Handler wires the scan dispatch endpoint.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs the qr handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers scan routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/scan", h.handleScan)
}

func (h *Handler) handleScan(w http.ResponseWriter, r *http.Request) {
	var payload Payload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	result, err := h.service.Dispatch(r.Context(), payload)
	if err != nil {
		h.respondError(w, "dispatch scan", err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) respondError(w http.ResponseWriter, context string, err error) {
	h.logger.Error(context, slog.Any("error", err))
	switch {
	case errors.Is(err, ErrUnknownType), errors.Is(err, ErrValidation):
		httpx.Problem(w, http.StatusBadRequest, "Invalid Payload", err.Error())
	case errors.Is(err, parts.ErrNotFound), errors.Is(err, repairs.ErrNotFound), errors.Is(err, repairs.ErrPhaseNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, parts.ErrInsufficientStock):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	default:
		httpx.RespondError(w, err)
	}
}
