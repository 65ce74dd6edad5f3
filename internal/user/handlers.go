package user

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/backend-storefront/internal/common"
)

// Handler exposes REST endpoints for the buyer's profile, address book and saved payment methods.
type Handler struct {
	Service *Service
}

// Me handles GET /api/v1/users/me.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.begin(w, r)
	if !ok {
		return
	}
	profile, err := h.Service.Profile(r.Context(), userID)
	if err != nil {
		common.WriteError(w, r, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": profile})
}

// ListAddresses handles GET /api/v1/users/me/addresses.
func (h *Handler) ListAddresses(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.begin(w, r)
	if !ok {
		return
	}
	addresses, err := h.Service.ListAddresses(r.Context(), userID)
	if err != nil {
		common.WriteError(w, r, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": addresses})
}

// CreateAddress handles POST /api/v1/users/me/addresses.
func (h *Handler) CreateAddress(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.begin(w, r)
	if !ok {
		return
	}
	var req AddressInput
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, r, err)
		return
	}
	address, err := h.Service.CreateAddress(r.Context(), userID, req)
	if err != nil {
		common.WriteError(w, r, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": address})
}

// UpdateAddress handles PUT /api/v1/users/me/addresses/{addressID}.
func (h *Handler) UpdateAddress(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.begin(w, r)
	if !ok {
		return
	}
	var req AddressInput
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, r, err)
		return
	}
	address, err := h.Service.UpdateAddress(r.Context(), userID, chi.URLParam(r, "addressID"), req)
	if err != nil {
		common.WriteError(w, r, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": address})
}

// DeleteAddress handles DELETE /api/v1/users/me/addresses/{addressID}.
func (h *Handler) DeleteAddress(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.begin(w, r)
	if !ok {
		return
	}
	if err := h.Service.DeleteAddress(r.Context(), userID, chi.URLParam(r, "addressID")); err != nil {
		common.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListPaymentMethods handles GET /api/v1/users/me/payment-methods.
func (h *Handler) ListPaymentMethods(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.begin(w, r)
	if !ok {
		return
	}
	methods, err := h.Service.ListPaymentMethods(r.Context(), userID)
	if err != nil {
		common.WriteError(w, r, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": methods})
}

// AddPaymentMethod handles POST /api/v1/users/me/payment-methods.
func (h *Handler) AddPaymentMethod(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.begin(w, r)
	if !ok {
		return
	}
	var req PaymentMethodInput
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, r, err)
		return
	}
	method, err := h.Service.AddPaymentMethod(r.Context(), userID, req)
	if err != nil {
		common.WriteError(w, r, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": method})
}

// DeletePaymentMethod handles DELETE /api/v1/users/me/payment-methods/{methodID}.
func (h *Handler) DeletePaymentMethod(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.begin(w, r)
	if !ok {
		return
	}
	if err := h.Service.DeletePaymentMethod(r.Context(), userID, chi.URLParam(r, "methodID")); err != nil {
		common.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) begin(w http.ResponseWriter, r *http.Request) (string, bool) {
	if h.Service == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "user service not configured", nil)
		return "", false
	}
	userID, ok := common.UserID(r.Context())
	if !ok {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid token", nil)
		return "", false
	}
	return userID, true
}
