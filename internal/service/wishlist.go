package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/royalboe/commercia/internal/domain"
	"github.com/royalboe/commercia/internal/repository"
	apperrors "github.com/royalboe/commercia/pkg/errors"
	"github.com/royalboe/commercia/pkg/pagination"
)

// WishlistService implements the business logic for wishlist operations.
type WishlistService struct {
	repo     repository.WishlistRepository
	products repository.ProductRepository
	logger   *slog.Logger
}

// NewWishlistService creates a new wishlist service.
func NewWishlistService(repo repository.WishlistRepository, products repository.ProductRepository, logger *slog.Logger) *WishlistService {
	return &WishlistService{
		repo:     repo,
		products: products,
		logger:   logger,
	}
}

// GetWishlist returns the actor's wishlist, creating an empty one on first
// use.
func (s *WishlistService) GetWishlist(ctx context.Context, actor Actor) (*domain.Wishlist, error) {
	if actor.UserID == "" {
		return nil, apperrors.Forbidden("authentication required")
	}

	wishlist, err := s.repo.GetOrCreateByUser(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("get wishlist: %w", err)
	}

	return wishlist, nil
}

// ListWishlists returns all wishlists. Admin only.
func (s *WishlistService) ListWishlists(ctx context.Context, actor Actor, p pagination.Params) ([]domain.Wishlist, int, error) {
	if !actor.Admin {
		return nil, 0, apperrors.Forbidden("only admins may list wishlists")
	}

	wishlists, total, err := s.repo.List(ctx, p)
	if err != nil {
		return nil, 0, fmt.Errorf("list wishlists: %w", err)
	}

	return wishlists, total, nil
}

// ToggleProduct adds the product to the actor's wishlist, or removes it if
// already present. The updated wishlist is returned along with whether the
// product is now in it.
func (s *WishlistService) ToggleProduct(ctx context.Context, actor Actor, productID string) (*domain.Wishlist, bool, error) {
	if actor.UserID == "" {
		return nil, false, apperrors.Forbidden("authentication required")
	}

	if _, err := s.products.GetByID(ctx, productID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, false, apperrors.NotFound("product", productID)
		}
		return nil, false, fmt.Errorf("load product: %w", err)
	}

	wishlist, err := s.repo.GetOrCreateByUser(ctx, actor.UserID)
	if err != nil {
		return nil, false, fmt.Errorf("get wishlist: %w", err)
	}

	added, err := s.repo.ToggleProduct(ctx, wishlist.ID, productID)
	if err != nil {
		return nil, false, fmt.Errorf("toggle wishlist product: %w", err)
	}

	s.logger.InfoContext(ctx, "wishlist product toggled",
		slog.String("wishlist_id", wishlist.ID),
		slog.String("product_id", productID),
		slog.Bool("added", added),
	)

	updated, err := s.repo.GetByID(ctx, wishlist.ID)
	if err != nil {
		return nil, false, fmt.Errorf("get wishlist by id: %w", err)
	}

	return updated, added, nil
}
