package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/royalboe/commercia/internal/domain"
	"github.com/royalboe/commercia/internal/event"
	"github.com/royalboe/commercia/internal/repository"
	apperrors "github.com/royalboe/commercia/pkg/errors"
)

// CartService implements the business logic for cart operations. A cart is
// addressed either by the acting user or by an anonymous session code.
type CartService struct {
	repo     repository.CartRepository
	products repository.ProductRepository
	producer *event.Producer
	logger   *slog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(repo repository.CartRepository, products repository.ProductRepository, producer *event.Producer, logger *slog.Logger) *CartService {
	return &CartService{
		repo:     repo,
		products: products,
		producer: producer,
		logger:   logger,
	}
}

// resolveCart loads the actor's cart, or the session cart when code is set.
// Exactly one identity must be present.
func (s *CartService) resolveCart(ctx context.Context, actor Actor, code string) (*domain.Cart, error) {
	switch {
	case code != "" && actor.UserID != "":
		return nil, apperrors.InvalidInput("provide either a session code or a user identity, not both")
	case code != "":
		return s.repo.GetOrCreateByCode(ctx, code)
	case actor.UserID != "":
		return s.repo.GetOrCreateByUser(ctx, actor.UserID)
	default:
		return nil, apperrors.InvalidInput("a session code or user identity is required")
	}
}

// GetCart returns the cart for the given identity, creating an empty one on
// first use.
func (s *CartService) GetCart(ctx context.Context, actor Actor, code string) (*domain.Cart, error) {
	cart, err := s.resolveCart(ctx, actor, code)
	if err != nil {
		return nil, fmt.Errorf("resolve cart: %w", err)
	}
	return cart, nil
}

// AddItem adds one unit of the product to the identity's cart. Repeating the
// call for the same product increments its quantity.
func (s *CartService) AddItem(ctx context.Context, actor Actor, code string, productID string) (*domain.Cart, error) {
	if _, err := s.products.GetByID(ctx, productID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("product", productID)
		}
		return nil, fmt.Errorf("load product: %w", err)
	}

	cart, err := s.resolveCart(ctx, actor, code)
	if err != nil {
		return nil, fmt.Errorf("resolve cart: %w", err)
	}

	if err := s.repo.AddItem(ctx, cart.ID, productID); err != nil {
		return nil, fmt.Errorf("add cart item: %w", err)
	}

	return s.repo.GetByID(ctx, cart.ID)
}

// SetItemQuantity replaces an item's quantity. The new value is absolute, not
// an increment.
func (s *CartService) SetItemQuantity(ctx context.Context, actor Actor, code string, itemID int64, quantity int) (*domain.Cart, error) {
	if quantity <= 0 {
		return nil, apperrors.InvalidInput("quantity must be positive")
	}

	cart, err := s.resolveCart(ctx, actor, code)
	if err != nil {
		return nil, fmt.Errorf("resolve cart: %w", err)
	}

	if err := s.repo.SetItemQuantity(ctx, cart.ID, itemID, quantity); err != nil {
		return nil, fmt.Errorf("set cart item quantity: %w", err)
	}

	return s.repo.GetByID(ctx, cart.ID)
}

// RemoveItem deletes an item from the identity's cart.
func (s *CartService) RemoveItem(ctx context.Context, actor Actor, code string, itemID int64) (*domain.Cart, error) {
	cart, err := s.resolveCart(ctx, actor, code)
	if err != nil {
		return nil, fmt.Errorf("resolve cart: %w", err)
	}

	if err := s.repo.RemoveItem(ctx, cart.ID, itemID); err != nil {
		return nil, fmt.Errorf("remove cart item: %w", err)
	}

	return s.repo.GetByID(ctx, cart.ID)
}

// MergeCart folds the session cart identified by code into the actor's cart.
// A missing session cart is not an error; the actor's cart is returned as is.
func (s *CartService) MergeCart(ctx context.Context, actor Actor, code string) (*domain.Cart, error) {
	if actor.UserID == "" {
		return nil, apperrors.Forbidden("authentication required")
	}
	if code == "" {
		return nil, apperrors.InvalidInput("session code is required")
	}

	err := s.repo.Merge(ctx, code, actor.UserID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("merge cart: %w", err)
	}
	merged := err == nil

	cart, err := s.repo.GetOrCreateByUser(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("get user cart: %w", err)
	}

	if merged {
		if err := s.producer.PublishCartMerged(ctx, cart, actor.UserID); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish cart.merged event",
				slog.String("cart_id", cart.ID),
				slog.String("error", err.Error()),
			)
		}

		s.logger.InfoContext(ctx, "cart merged",
			slog.String("cart_id", cart.ID),
			slog.String("user_id", actor.UserID),
		)
	}

	return cart, nil
}
