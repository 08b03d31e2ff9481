package alerts

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/liftboard/liftboard/internal/platform/httpx"
)

// Handler wires HTTP endpoints for the alerts module.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs the alerts handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers alert routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleList)
	r.Post("/{id}/read", h.handleMarkRead)
	r.Post("/read-all", h.handleMarkAllRead)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	filter := ListFilter{
		UnreadOnly: r.URL.Query().Get("unread") == "true",
		EntityType: EntityType(r.URL.Query().Get("entity_type")),
	}
	alerts, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.respondError(w, "list alerts", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"alerts": alerts})
}

func (h *Handler) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.service.MarkRead(r.Context(), id); err != nil {
		h.respondError(w, "mark alert read", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"id": id, "is_read": true})
}

func (h *Handler) handleMarkAllRead(w http.ResponseWriter, r *http.Request) {
	count, err := h.service.MarkAllRead(r.Context())
	if err != nil {
		h.respondError(w, "mark all alerts read", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"marked": count})
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
