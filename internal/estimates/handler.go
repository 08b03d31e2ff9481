package estimates

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/liftboard/liftboard/internal/platform/httpx"
)

// Handler wires HTTP endpoints for the estimates module.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs the estimates handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers estimate routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleList)
	r.Post("/", h.handleCreate)
	r.Get("/{id}", h.handleGet)
	r.Post("/{id}/items", h.handleAddItem)
	r.Delete("/{id}/items/{itemID}", h.handleRemoveItem)
	r.Put("/{id}/discount", h.handleSetDiscount)
	r.Post("/{id}/send", h.handleSend)
	r.Post("/{id}/approve", h.handleApprove)
	r.Post("/{id}/reject", h.handleReject)
}

type itemRequest struct {
	Type        string          `json:"type" validate:"required,oneof=labor part fee"`
	Description string          `json:"description" validate:"required"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

type createEstimateRequest struct {
	ROID     string          `json:"ro_id" validate:"required"`
	Items    []itemRequest   `json:"items" validate:"dive"`
	Discount decimal.Decimal `json:"discount"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createEstimateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := httpx.Validate(&req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	input := CreateInput{ROID: req.ROID, Discount: req.Discount}
	for _, item := range req.Items {
		input.Items = append(input.Items, ItemInput{
			Type:        ItemType(item.Type),
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		})
	}
	est, err := h.service.Create(r.Context(), input)
	if err != nil {
		h.respondError(w, "create estimate", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, est)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	est, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, "get estimate", err)
		return
	}
	httpx.JSON(w, http.StatusOK, est)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	if roID := r.URL.Query().Get("ro_id"); roID != "" {
		est, err := h.service.GetByRO(r.Context(), roID)
		if err != nil {
			h.respondError(w, "get estimate by ro", err)
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]any{"estimates": []Estimate{est}})
		return
	}
	ests, err := h.service.List(r.Context(), ListFilter{Status: Status(r.URL.Query().Get("status"))})
	if err != nil {
		h.respondError(w, "list estimates", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"estimates": ests})
}

func (h *Handler) handleAddItem(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := httpx.Validate(&req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	est, err := h.service.AddItem(r.Context(), chi.URLParam(r, "id"), ItemInput{
		Type:        ItemType(req.Type),
		Description: req.Description,
		Quantity:    req.Quantity,
		UnitPrice:   req.UnitPrice,
	})
	if err != nil {
		h.respondError(w, "add estimate item", err)
		return
	}
	httpx.JSON(w, http.StatusOK, est)
}

func (h *Handler) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	est, err := h.service.RemoveItem(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "itemID"))
	if err != nil {
		h.respondError(w, "remove estimate item", err)
		return
	}
	httpx.JSON(w, http.StatusOK, est)
}

type discountRequest struct {
	Discount decimal.Decimal `json:"discount"`
}

func (h *Handler) handleSetDiscount(w http.ResponseWriter, r *http.Request) {
	var req discountRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	est, err := h.service.SetDiscount(r.Context(), chi.URLParam(r, "id"), req.Discount)
	if err != nil {
		h.respondError(w, "set estimate discount", err)
		return
	}
	httpx.JSON(w, http.StatusOK, est)
}

func (h *Handler) handleSend(w http.ResponseWriter, r *http.Request) {
	est, err := h.service.Send(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, "send estimate", err)
		return
	}
	httpx.JSON(w, http.StatusOK, est)
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	est, err := h.service.Approve(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, "approve estimate", err)
		return
	}
	httpx.JSON(w, http.StatusOK, est)
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	est, err := h.service.Reject(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, "reject estimate", err)
		return
	}
	httpx.JSON(w, http.StatusOK, est)
}

func (h *Handler) respondError(w http.ResponseWriter, context string, err error) {
	h.logger.Error(context, slog.Any("error", err))
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrItemNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrValidation):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, ErrInvalidState):
		httpx.Problem(w, http.StatusConflict, "Invalid State", err.Error())
	default:
		httpx.RespondError(w, err)
	}
}
