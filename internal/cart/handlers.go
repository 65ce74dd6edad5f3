package cart

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/backend-storefront/internal/common"
)

// Handler wires cart and wishlist services to HTTP. Every route requires an authenticated buyer.
type Handler struct {
	Svc      *Service
	Wishlist *Wishlist
}

type cartView struct {
	ID        *string `json:"id"`
	Lines     []Line  `json:"lines"`
	ItemCount int     `json:"itemCount"`
}

type addItemRequest struct {
	ProductID string `json:"productId" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"gt=0,lte=999"`
}

type updateItemRequest struct {
	Quantity int `json:"quantity" validate:"gt=0,lte=999"`
}

type wishlistRequest struct {
	ProductID string `json:"productId" validate:"required,uuid"`
}

// Get handles GET /api/v1/cart.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart service not configured", nil)
		return
	}
	buyerID, err := common.RequireUserID(r.Context())
	if err != nil {
		common.WriteError(w, r, err)
		return
	}
	c, err := h.Svc.CartWithLines(r.Context(), buyerID)
	if err != nil {
		common.WriteError(w, r, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": toView(c)})
}

// AddItem handles POST /api/v1/cart/items.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart service not configured", nil)
		return
	}
	buyerID, err := common.RequireUserID(r.Context())
	if err != nil {
		common.WriteError(w, r, err)
		return
	}
	var req addItemRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, r, err)
		return
	}
	if err := common.Validate(req); err != nil {
		common.WriteError(w, r, err)
		return
	}
	c, err := h.Svc.AddItem(r.Context(), buyerID, req.ProductID, req.Quantity)
	if err != nil {
		common.WriteError(w, r, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": toView(c)})
}

// UpdateItem handles PATCH /api/v1/cart/items/{productID}.
func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart service not configured", nil)
		return
	}
	buyerID, err := common.RequireUserID(r.Context())
	if err != nil {
		common.WriteError(w, r, err)
		return
	}
	var req updateItemRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, r, err)
		return
	}
	if err := common.Validate(req); err != nil {
		common.WriteError(w, r, err)
		return
	}
	c, err := h.Svc.UpdateQty(r.Context(), buyerID, chi.URLParam(r, "productID"), req.Quantity)
	if err != nil {
		common.WriteError(w, r, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": toView(c)})
}

// RemoveItem handles DELETE /api/v1/cart/items/{productID}.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart service not configured", nil)
		return
	}
	buyerID, err := common.RequireUserID(r.Context())
	if err != nil {
		common.WriteError(w, r, err)
		return
	}
	c, err := h.Svc.RemoveItem(r.Context(), buyerID, chi.URLParam(r, "productID"))
	if err != nil {
		common.WriteError(w, r, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": toView(c)})
}

// Clear handles DELETE /api/v1/cart.
func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart service not configured", nil)
		return
	}
	buyerID, err := common.RequireUserID(r.Context())
	if err != nil {
		common.WriteError(w, r, err)
		return
	}
	if err := h.Svc.Clear(r.Context(), buyerID); err != nil {
		common.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListWishlist handles GET /api/v1/wishlist.
func (h *Handler) ListWishlist(w http.ResponseWriter, r *http.Request) {
	if h.Wishlist == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "wishlist not configured", nil)
		return
	}
	buyerID, err := common.RequireUserID(r.Context())
	if err != nil {
		common.WriteError(w, r, err)
		return
	}
	items, err := h.Wishlist.List(r.Context(), buyerID)
	if err != nil {
		common.WriteError(w, r, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": items})
}

// AddWishlist handles POST /api/v1/wishlist.
func (h *Handler) AddWishlist(w http.ResponseWriter, r *http.Request) {
	if h.Wishlist == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "wishlist not configured", nil)
		return
	}
	buyerID, err := common.RequireUserID(r.Context())
	if err != nil {
		common.WriteError(w, r, err)
		return
	}
	var req wishlistRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, r, err)
		return
	}
	if err := common.Validate(req); err != nil {
		common.WriteError(w, r, err)
		return
	}
	if err := h.Wishlist.Add(r.Context(), buyerID, req.ProductID); err != nil {
		common.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RemoveWishlist handles DELETE /api/v1/wishlist/{productID}.
func (h *Handler) RemoveWishlist(w http.ResponseWriter, r *http.Request) {
	if h.Wishlist == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "wishlist not configured", nil)
		return
	}
	buyerID, err := common.RequireUserID(r.Context())
	if err != nil {
		common.WriteError(w, r, err)
		return
	}
	if err := h.Wishlist.Remove(r.Context(), buyerID, chi.URLParam(r, "productID")); err != nil {
		common.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func toView(c *Cart) cartView {
	if c == nil {
		return cartView{Lines: []Line{}}
	}
	id := c.ID
	return cartView{ID: &id, Lines: c.Lines, ItemCount: c.ItemCount()}
}
