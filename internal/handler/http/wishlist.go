package http

import (
	"log/slog"
	"net/http"

	"github.com/royalboe/commercia/internal/service"
	"github.com/royalboe/commercia/pkg/httputil"
	"github.com/royalboe/commercia/pkg/pagination"
	"github.com/royalboe/commercia/pkg/validator"
)

// WishlistHandler handles HTTP requests for wishlist endpoints.
type WishlistHandler struct {
	service *service.WishlistService
	logger  *slog.Logger
}

// NewWishlistHandler creates a new wishlist HTTP handler.
func NewWishlistHandler(svc *service.WishlistService, logger *slog.Logger) *WishlistHandler {
	return &WishlistHandler{service: svc, logger: logger}
}

// ToggleWishlistProductRequest is the JSON request body for toggling a
// product's wishlist membership.
type ToggleWishlistProductRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
}

// ToggleWishlistResponse reports the wishlist after a toggle and whether the
// product is now in it.
type ToggleWishlistResponse struct {
	Wishlist any  `json:"wishlist"`
	Added    bool `json:"added"`
}

// GetWishlist handles GET /api/v1/wishlists/me
func (h *WishlistHandler) GetWishlist(w http.ResponseWriter, r *http.Request) {
	wishlist, err := h.service.GetWishlist(r.Context(), actorFrom(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: wishlist})
}

// ListWishlists handles GET /api/v1/wishlists
func (h *WishlistHandler) ListWishlists(w http.ResponseWriter, r *http.Request) {
	p := pagination.FromRequest(r)

	wishlists, total, err := h.service.ListWishlists(r.Context(), actorFrom(r), p)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.NewPaginatedResponse(wishlists, total, p))
}

// ToggleProduct handles POST /api/v1/wishlists/toggle
func (h *WishlistHandler) ToggleProduct(w http.ResponseWriter, r *http.Request) {
	var req ToggleWishlistProductRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	wishlist, added, err := h.service.ToggleProduct(r.Context(), actorFrom(r), req.ProductID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: ToggleWishlistResponse{
		Wishlist: wishlist,
		Added:    added,
	}})
}
