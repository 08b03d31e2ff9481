package approvals

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/liftboard/liftboard/internal/platform/httpx"
)

// Handler wires HTTP endpoints for the approvals module.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs the approvals handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers approval routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleList)
	r.Post("/", h.handleRequest)
	r.Get("/{id}", h.handleGet)
	r.Post("/{id}/approve", h.handleApprove)
	r.Post("/{id}/reject", h.handleReject)
}

type requestApprovalRequest struct {
	EntityID    string           `json:"entity_id" validate:"required"`
	EntityType  string           `json:"entity_type" validate:"required,oneof=estimate po ro"`
	Description string           `json:"description"`
	Amount      *decimal.Decimal `json:"amount"`
}

func (h *Handler) handleRequest(w http.ResponseWriter, r *http.Request) {
	var req requestApprovalRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := httpx.Validate(&req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	approval, err := h.service.Request(r.Context(), RequestInput{
		EntityID:    req.EntityID,
		EntityType:  EntityType(req.EntityType),
		Description: req.Description,
		Amount:      req.Amount,
	})
	if err != nil {
		h.respondError(w, "request approval", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, approval)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	approval, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, "get approval", err)
		return
	}
	httpx.JSON(w, http.StatusOK, approval)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	filter := ListFilter{
		EntityID: r.URL.Query().Get("entity_id"),
		Status:   Status(r.URL.Query().Get("status")),
	}
	approvals, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.respondError(w, "list approvals", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"approvals": approvals})
}

type decisionRequest struct {
	RespondedBy string `json:"responded_by" validate:"required"`
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	var req decisionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := httpx.Validate(&req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	approval, err := h.service.Approve(r.Context(), chi.URLParam(r, "id"), req.RespondedBy)
	if err != nil {
		h.respondError(w, "approve", err)
		return
	}
	httpx.JSON(w, http.StatusOK, approval)
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	var req decisionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := httpx.Validate(&req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	approval, err := h.service.Reject(r.Context(), chi.URLParam(r, "id"), req.RespondedBy)
	if err != nil {
		h.respondError(w, "reject", err)
		return
	}
	httpx.JSON(w, http.StatusOK, approval)
}

func (h *Handler) respondError(w http.ResponseWriter, context string, err error) {
	h.logger.Error(context, slog.Any("error", err))
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrValidation):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, ErrAlreadyDecided):
		httpx.Problem(w, http.StatusConflict, "Already Decided", err.Error())
	default:
		httpx.RespondError(w, err)
	}
}
