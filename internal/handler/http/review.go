package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/royalboe/commercia/internal/service"
	"github.com/royalboe/commercia/pkg/httputil"
	"github.com/royalboe/commercia/pkg/pagination"
	"github.com/royalboe/commercia/pkg/validator"
)

// ReviewHandler handles HTTP requests for review and rating endpoints.
// Reviews are nested under products, addressed by product slug.
type ReviewHandler struct {
	service  *service.ReviewService
	products *service.ProductService
	logger   *slog.Logger
}

// NewReviewHandler creates a new review HTTP handler.
func NewReviewHandler(svc *service.ReviewService, products *service.ProductService, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{
		service:  svc,
		products: products,
		logger:   logger,
	}
}

// CreateReviewRequest is the JSON request body for creating a review.
type CreateReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,gte=1,lte=5"`
	Comment string `json:"comment" validate:"max=2000"`
}

// UpdateReviewRequest is the JSON request body for updating a review.
type UpdateReviewRequest struct {
	Rating  *int    `json:"rating" validate:"omitempty,gte=1,lte=5"`
	Comment *string `json:"comment" validate:"omitempty,max=2000"`
}

// resolveProductID maps the product slug in the URL to its id.
func (h *ReviewHandler) resolveProductID(r *http.Request) (string, error) {
	product, err := h.products.GetProductBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		return "", err
	}
	return product.ID, nil
}

// ListReviews handles GET /api/v1/products/{slug}/reviews
func (h *ReviewHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	productID, err := h.resolveProductID(r)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	p := pagination.FromRequest(r)
	reviews, total, err := h.service.ListReviews(r.Context(), productID, p)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.NewPaginatedResponse(reviews, total, p))
}

// CreateReview handles POST /api/v1/products/{slug}/reviews
func (h *ReviewHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	productID, err := h.resolveProductID(r)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	var req CreateReviewRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	review, err := h.service.CreateReview(r.Context(), actorFrom(r), &service.CreateReviewInput{
		ProductID: productID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: review})
}

// GetRating handles GET /api/v1/products/{slug}/rating
func (h *ReviewHandler) GetRating(w http.ResponseWriter, r *http.Request) {
	productID, err := h.resolveProductID(r)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	rating, err := h.service.GetRating(r.Context(), productID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: rating})
}

// UpdateReview handles PUT /api/v1/reviews/{id}
func (h *ReviewHandler) UpdateReview(w http.ResponseWriter, r *http.Request) {
	var req UpdateReviewRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	review, err := h.service.UpdateReview(r.Context(), actorFrom(r), chi.URLParam(r, "id"), &service.UpdateReviewInput{
		Rating:  req.Rating,
		Comment: req.Comment,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: review})
}

// DeleteReview handles DELETE /api/v1/reviews/{id}
func (h *ReviewHandler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteReview(r.Context(), actorFrom(r), chi.URLParam(r, "id")); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
