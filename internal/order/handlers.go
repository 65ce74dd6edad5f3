package order

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/backend-storefront/internal/common"
	"github.com/noah-isme/backend-storefront/internal/pricing"
)

// Handler exposes the buyer's order endpoints.
type Handler struct {
	Svc *Service
}

// Create handles POST /api/v1/orders.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "order service not configured", nil)
		return
	}
	userID, _ := common.UserID(r.Context())
	var req CreateInput
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, r, err)
		return
	}
	ord, err := h.Svc.Create(r.Context(), userID, req)
	if err != nil {
		common.WriteError(w, r, toAppError(err))
		return
	}
	w.Header().Set("Location", "/api/v1/orders/"+ord.ID)
	common.JSON(w, http.StatusCreated, map[string]any{"data": ord})
}

// List handles GET /api/v1/orders.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "order service not configured", nil)
		return
	}
	userID, ok := common.UserID(r.Context())
	if !ok {
		common.WriteError(w, r, ErrUnauthorized)
		return
	}
	page := common.ParsePagination(r, 20)
	res, err := h.Svc.List(r.Context(), userID, page)
	if err != nil {
		common.WriteError(w, r, err)
		return
	}
	page.TotalItems = int(res.Total)
	w.Header().Set("X-Total-Count", strconv.FormatInt(res.Total, 10))
	common.JSON(w, http.StatusOK, map[string]any{
		"data":       res.Items,
		"pagination": page,
	})
}

// Get handles GET /api/v1/orders/{orderID}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "order service not configured", nil)
		return
	}
	userID, ok := common.UserID(r.Context())
	if !ok {
		common.WriteError(w, r, ErrUnauthorized)
		return
	}
	ord, err := h.Svc.Get(r.Context(), userID, chi.URLParam(r, "orderID"))
	if err != nil {
		common.WriteError(w, r, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": ord})
}

// Cancel handles POST /api/v1/orders/{orderID}/cancel.
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "order service not configured", nil)
		return
	}
	userID, ok := common.UserID(r.Context())
	if !ok {
		common.WriteError(w, r, ErrUnauthorized)
		return
	}
	orderID := chi.URLParam(r, "orderID")
	if err := h.Svc.Cancel(r.Context(), userID, orderID); err != nil {
		common.WriteError(w, r, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": map[string]any{"id": orderID, "status": "CANCELED"}})
}

func toAppError(err error) error {
	var shortage *pricing.StockShortageError
	if errors.As(err, &shortage) {
		return common.Conflict("INSUFFICIENT_STOCK", "insufficient stock").WithDetails(shortage.Items)
	}
	if common.IsAppError(err) {
		return err
	}
	return common.Internal("unable to place order", err)
}
