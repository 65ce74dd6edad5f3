package order

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/backend-storefront/internal/common"
)

// AdminHandler provides administrative order management endpoints.
type AdminHandler struct {
	Svc *Service
}

// Cancel handles POST /api/v1/admin/orders/{orderID}/cancel. Only pending orders
// can be canceled; their stock is returned to the catalog.
func (h *AdminHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "order service not configured", nil)
		return
	}
	if err := h.Svc.AdminCancel(r.Context(), chi.URLParam(r, "orderID")); err != nil {
		common.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
