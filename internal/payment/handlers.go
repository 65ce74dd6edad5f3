package payment

import (
	"net/http"

	"github.com/noah-isme/backend-storefront/internal/common"
)

// Handler exposes HTTP endpoints for payment intents.
type Handler struct {
	Svc *Service
}

// IntentInput is the body of POST /api/v1/payments/intent.
type IntentInput struct {
	OrderID string `json:"orderId" validate:"required,uuid"`
}

// Intent creates (or reuses) a payment intent for the authenticated user's order.
func (h *Handler) Intent(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "payment service not configured", nil)
		return
	}
	userID, err := common.RequireUserID(r.Context())
	if err != nil {
		common.WriteError(w, r, err)
		return
	}
	var req IntentInput
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, r, err)
		return
	}
	if err := common.Validate(req); err != nil {
		common.WriteError(w, r, err)
		return
	}
	intent, err := h.Svc.CreateIntent(r.Context(), userID, req.OrderID)
	if err != nil {
		common.WriteError(w, r, err)
		return
	}
	status := http.StatusCreated
	if intent.Reused {
		status = http.StatusOK
	}
	common.JSON(w, status, map[string]any{"data": intent})
}
