package parts

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/liftboard/liftboard/internal/platform/httpx"
)

// Handler wires HTTP endpoints for the parts module.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs the parts handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers part routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleList)
	r.Post("/", h.handleCreate)
	r.Get("/low-stock", h.handleListLowStock)
	r.Get("/{id}", h.handleGet)
	r.Post("/{id}/receive", h.handleReceive)
	r.Post("/{id}/consume", h.handleConsume)
}

type createPartRequest struct {
	PartNumber  string          `json:"part_number" validate:"required"`
	Name        string          `json:"name" validate:"required"`
	Description string          `json:"description"`
	Quantity    int             `json:"quantity" validate:"gte=0"`
	MinQuantity int             `json:"min_quantity" validate:"gte=0"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
	Location    string          `json:"location"`
	SupplierID  string          `json:"supplier_id"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createPartRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := httpx.Validate(&req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	part, err := h.service.Create(r.Context(), CreateInput{
		PartNumber:  req.PartNumber,
		Name:        req.Name,
		Description: req.Description,
		Quantity:    req.Quantity,
		MinQuantity: req.MinQuantity,
		UnitCost:    req.UnitCost,
		Location:    req.Location,
		SupplierID:  req.SupplierID,
	})
	if err != nil {
		h.respondError(w, "create part", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, part)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	part, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, "get part", err)
		return
	}
	httpx.JSON(w, http.StatusOK, part)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	parts, err := h.service.List(r.Context(), ListFilter{Search: r.URL.Query().Get("q")})
	if err != nil {
		h.respondError(w, "list parts", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"parts": parts})
}

func (h *Handler) handleListLowStock(w http.ResponseWriter, r *http.Request) {
	parts, err := h.service.ListLowStock(r.Context())
	if err != nil {
		h.respondError(w, "list low stock parts", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"parts": parts})
}

type stockRequest struct {
	Quantity int    `json:"quantity" validate:"required,gt=0"`
	RefID    string `json:"ref_id"`
}

func (h *Handler) handleReceive(w http.ResponseWriter, r *http.Request) {
	var req stockRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := httpx.Validate(&req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	part, err := h.service.ReceiveStock(r.Context(), chi.URLParam(r, "id"), req.Quantity, req.RefID)
	if err != nil {
		h.respondError(w, "receive stock", err)
		return
	}
	httpx.JSON(w, http.StatusOK, part)
}

func (h *Handler) handleConsume(w http.ResponseWriter, r *http.Request) {
	var req stockRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := httpx.Validate(&req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	part, err := h.service.ConsumeStock(r.Context(), chi.URLParam(r, "id"), req.Quantity, req.RefID)
	if err != nil {
		h.respondError(w, "consume stock", err)
		return
	}
	httpx.JSON(w, http.StatusOK, part)
}

func (h *Handler) respondError(w http.ResponseWriter, context string, err error) {
	h.logger.Error(context, slog.Any("error", err))
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrValidation):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, ErrInsufficientStock), errors.Is(err, ErrDuplicate):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	default:
		httpx.RespondError(w, err)
	}
}
