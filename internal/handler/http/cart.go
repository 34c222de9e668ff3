package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/royalboe/commercia/internal/domain"
	"github.com/royalboe/commercia/internal/service"
	"github.com/royalboe/commercia/pkg/httputil"
	"github.com/royalboe/commercia/pkg/validator"
)

// CartHandler handles HTTP requests for cart endpoints. Anonymous sessions
// address their cart with a code carried in the X-Cart-Code header or the
// code query parameter; authenticated users are addressed by identity.
type CartHandler struct {
	service *service.CartService
	logger  *slog.Logger
}

// NewCartHandler creates a new cart HTTP handler.
func NewCartHandler(svc *service.CartService, logger *slog.Logger) *CartHandler {
	return &CartHandler{service: svc, logger: logger}
}

// CartResponse wraps a cart with its derived total over active items.
type CartResponse struct {
	*domain.Cart
	CartTotal int64 `json:"cart_total"`
}

func cartView(c *domain.Cart) CartResponse {
	return CartResponse{Cart: c, CartTotal: c.Total()}
}

// AddCartItemRequest is the JSON request body for adding a product to a cart.
type AddCartItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
}

// SetCartItemQuantityRequest is the JSON request body for replacing an item's
// quantity.
type SetCartItemQuantityRequest struct {
	Quantity int `json:"quantity" validate:"required,gt=0"`
}

// MergeCartRequest is the JSON request body for merging a session cart into
// the authenticated user's cart.
type MergeCartRequest struct {
	Code string `json:"code" validate:"required"`
}

// GetCart handles GET /api/v1/carts
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.service.GetCart(r.Context(), actorFrom(r), cartCode(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: cartView(cart)})
}

// AddItem handles POST /api/v1/carts/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddCartItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	cart, err := h.service.AddItem(r.Context(), actorFrom(r), cartCode(r), req.ProductID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: cartView(cart)})
}

// SetItemQuantity handles PUT /api/v1/carts/items/{itemID}
func (h *CartHandler) SetItemQuantity(w http.ResponseWriter, r *http.Request) {
	itemID, err := strconv.ParseInt(chi.URLParam(r, "itemID"), 10, 64)
	if err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "item id must be an integer"},
		})
		return
	}

	var req SetCartItemQuantityRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	cart, err := h.service.SetItemQuantity(r.Context(), actorFrom(r), cartCode(r), itemID, req.Quantity)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: cartView(cart)})
}

// RemoveItem handles DELETE /api/v1/carts/items/{itemID}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := strconv.ParseInt(chi.URLParam(r, "itemID"), 10, 64)
	if err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "item id must be an integer"},
		})
		return
	}

	cart, err := h.service.RemoveItem(r.Context(), actorFrom(r), cartCode(r), itemID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: cartView(cart)})
}

// MergeCart handles POST /api/v1/carts/merge
func (h *CartHandler) MergeCart(w http.ResponseWriter, r *http.Request) {
	var req MergeCartRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	cart, err := h.service.MergeCart(r.Context(), actorFrom(r), req.Code)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: cartView(cart)})
}
