package checkout

import (
	"errors"
	"net/http"

	"github.com/noah-isme/backend-storefront/internal/common"
	"github.com/noah-isme/backend-storefront/internal/pricing"
)

// Handler exposes the checkout summary endpoint.
type Handler struct {
	Svc *Service
}

// Summary handles GET /api/v1/checkout/summary.
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "checkout service not configured", nil)
		return
	}
	userID, _ := common.UserID(r.Context())
	out, err := h.Svc.Summary(r.Context(), userID)
	if err != nil {
		common.WriteError(w, r, toAppError(err))
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": out})
}

func toAppError(err error) error {
	switch {
	case errors.Is(err, ErrUnauthorized):
		return ErrUnauthorized
	case errors.Is(err, ErrEmptyCart):
		return ErrEmptyCart
	}
	var stockErr *pricing.InsufficientStockError
	if errors.As(err, &stockErr) {
		return common.Conflict("INSUFFICIENT_STOCK", stockErr.Error()).WithDetails(stockErr)
	}
	return common.Internal("unable to build checkout summary", err)
}
