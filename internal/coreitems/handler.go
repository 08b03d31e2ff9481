package coreitems

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/liftboard/liftboard/internal/platform/httpx"
)

// Handler wires HTTP endpoints for the core items module.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs the core items handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers core item routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleList)
	r.Post("/", h.handleCreate)
	r.Get("/{id}", h.handleGet)
	r.Post("/{id}/return", h.handleMarkReturned)
	r.Post("/{id}/charge", h.handleMarkCharged)
}

type createCoreRequest struct {
	PartID      string          `json:"part_id"`
	ROID        string          `json:"ro_id"`
	Description string          `json:"description" validate:"required"`
	CoreCharge  decimal.Decimal `json:"core_charge"`
	Condition   string          `json:"condition"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createCoreRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := httpx.Validate(&req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	item, err := h.service.Create(r.Context(), CreateInput{
		PartID:      req.PartID,
		ROID:        req.ROID,
		Description: req.Description,
		CoreCharge:  req.CoreCharge,
		Condition:   Condition(req.Condition),
	})
	if err != nil {
		h.respondError(w, "create core item", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, item)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	item, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, "get core item", err)
		return
	}
	httpx.JSON(w, http.StatusOK, item)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	filter := ListFilter{
		Status: Status(r.URL.Query().Get("status")),
		ROID:   r.URL.Query().Get("ro_id"),
	}
	items, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.respondError(w, "list core items", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"core_items": items})
}

func (h *Handler) handleMarkReturned(w http.ResponseWriter, r *http.Request) {
	item, err := h.service.MarkReturned(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, "mark core returned", err)
		return
	}
	httpx.JSON(w, http.StatusOK, item)
}

func (h *Handler) handleMarkCharged(w http.ResponseWriter, r *http.Request) {
	item, err := h.service.MarkCharged(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, "mark core charged", err)
		return
	}
	httpx.JSON(w, http.StatusOK, item)
}

func (h *Handler) respondError(w http.ResponseWriter, context string, err error) {
	h.logger.Error(context, slog.Any("error", err))
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrValidation):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, ErrInvalidState):
		httpx.Problem(w, http.StatusConflict, "Invalid State", err.Error())
	default:
		httpx.RespondError(w, err)
	}
}
