package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/royalboe/commercia/internal/cache"
	"github.com/royalboe/commercia/internal/domain"
	"github.com/royalboe/commercia/internal/event"
	"github.com/royalboe/commercia/internal/repository"
	apperrors "github.com/royalboe/commercia/pkg/errors"
	"github.com/royalboe/commercia/pkg/pagination"
)

// ReviewService implements the business logic for review operations. Every
// review mutation refreshes the product's stored rating aggregate and drops
// the cached copy.
type ReviewService struct {
	repo     repository.ReviewRepository
	products repository.ProductRepository
	ratings  *cache.RatingCache
	producer *event.Producer
	logger   *slog.Logger
}

// NewReviewService creates a new review service.
func NewReviewService(repo repository.ReviewRepository, products repository.ProductRepository, ratings *cache.RatingCache, producer *event.Producer, logger *slog.Logger) *ReviewService {
	return &ReviewService{
		repo:     repo,
		products: products,
		ratings:  ratings,
		producer: producer,
		logger:   logger,
	}
}

// CreateReviewInput holds the parameters for creating a review.
type CreateReviewInput struct {
	ProductID string
	Rating    int
	Comment   string
}

// UpdateReviewInput holds the parameters for updating a review.
type UpdateReviewInput struct {
	Rating  *int
	Comment *string
}

// CreateReview records the actor's review of a product. A user may review a
// product at most once.
func (s *ReviewService) CreateReview(ctx context.Context, actor Actor, input *CreateReviewInput) (*domain.Review, error) {
	if actor.UserID == "" {
		return nil, apperrors.Forbidden("authentication required")
	}
	if !domain.IsValidRating(input.Rating) {
		return nil, apperrors.InvalidInput("rating must be between 1 and 5")
	}

	if _, err := s.products.GetByID(ctx, input.ProductID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.InvalidInput(fmt.Sprintf("unknown product %s", input.ProductID))
		}
		return nil, fmt.Errorf("load product: %w", err)
	}

	now := time.Now().UTC()
	review := &domain.Review{
		ID:        uuid.New().String(),
		ProductID: input.ProductID,
		UserID:    actor.UserID,
		Rating:    input.Rating,
		Comment:   input.Comment,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, review); err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}

	s.invalidateRating(ctx, input.ProductID)

	if err := s.producer.PublishReviewCreated(ctx, review); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish review.created event",
			slog.String("review_id", review.ID),
			slog.String("error", err.Error()),
		)
		// Do not fail the operation if event publishing fails.
	}

	s.logger.InfoContext(ctx, "review created",
		slog.String("review_id", review.ID),
		slog.String("product_id", review.ProductID),
		slog.Int("rating", review.Rating),
	)

	return review, nil
}

// ListReviews returns a product's reviews with the total count.
func (s *ReviewService) ListReviews(ctx context.Context, productID string, p pagination.Params) ([]domain.Review, int, error) {
	reviews, total, err := s.repo.ListByProduct(ctx, productID, p)
	if err != nil {
		return nil, 0, fmt.Errorf("list reviews: %w", err)
	}
	return reviews, total, nil
}

// UpdateReview changes the actor's own review.
func (s *ReviewService) UpdateReview(ctx context.Context, actor Actor, id string, input *UpdateReviewInput) (*domain.Review, error) {
	review, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get review by id: %w", err)
	}

	if !actor.CanAccess(review.UserID) {
		return nil, apperrors.Forbidden("review belongs to another user")
	}

	if input.Rating != nil {
		if !domain.IsValidRating(*input.Rating) {
			return nil, apperrors.InvalidInput("rating must be between 1 and 5")
		}
		review.Rating = *input.Rating
	}
	if input.Comment != nil {
		review.Comment = *input.Comment
	}

	if err := s.repo.Update(ctx, review); err != nil {
		return nil, fmt.Errorf("update review: %w", err)
	}

	s.invalidateRating(ctx, review.ProductID)

	return review, nil
}

// DeleteReview removes the actor's own review.
func (s *ReviewService) DeleteReview(ctx context.Context, actor Actor, id string) error {
	review, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get review by id: %w", err)
	}

	if !actor.CanAccess(review.UserID) {
		return apperrors.Forbidden("review belongs to another user")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete review: %w", err)
	}

	s.invalidateRating(ctx, review.ProductID)

	return nil
}

// GetRating returns the product's rating aggregate, read through the cache.
func (s *ReviewService) GetRating(ctx context.Context, productID string) (*domain.Rating, error) {
	if rating, err := s.ratings.Get(ctx, productID); err == nil {
		return rating, nil
	}

	rating, err := s.repo.GetRating(ctx, productID)
	if errors.Is(err, apperrors.ErrNotFound) {
		// No aggregate row means the product has no reviews yet; that is a
		// zero rating, not a missing resource.
		return &domain.Rating{ProductID: productID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get product rating: %w", err)
	}

	if err := s.ratings.Set(ctx, rating); err != nil {
		s.logger.WarnContext(ctx, "failed to cache product rating",
			slog.String("product_id", productID),
			slog.String("error", err.Error()),
		)
	}

	return rating, nil
}

func (s *ReviewService) invalidateRating(ctx context.Context, productID string) {
	if err := s.ratings.Delete(ctx, productID); err != nil {
		s.logger.WarnContext(ctx, "failed to invalidate cached rating",
			slog.String("product_id", productID),
			slog.String("error", err.Error()),
		)
	}
}
