// Package repository defines the persistence interfaces consumed by the
// service layer. Implementations live in the postgres subpackage.
package repository

import (
	"context"

	"github.com/royalboe/commercia/internal/domain"
	"github.com/royalboe/commercia/pkg/pagination"
)

// CategoryRepository defines persistence operations for categories.
type CategoryRepository interface {
	Create(ctx context.Context, c *domain.Category) error
	GetByID(ctx context.Context, id string) (*domain.Category, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Category, error)
	List(ctx context.Context, p pagination.Params) ([]domain.Category, int, error)
	Update(ctx context.Context, c *domain.Category) error
	Delete(ctx context.Context, id string) error
}

// ProductFilter defines filter criteria for listing products.
type ProductFilter struct {
	CategorySlug *string
	InStock      *bool
	Page         int
	PerPage      int
}

// ProductRepository defines persistence operations for products. Reads join
// the product's rating aggregate when one exists.
type ProductRepository interface {
	// Create inserts the product and its category links atomically.
	Create(ctx context.Context, p *domain.Product, categoryIDs []string) error

	GetByID(ctx context.Context, id string) (*domain.Product, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Product, error)

	// GetByIDs loads the given products in one query. Missing ids are simply
	// absent from the result.
	GetByIDs(ctx context.Context, ids []string) ([]domain.Product, error)

	List(ctx context.Context, filter ProductFilter) ([]domain.Product, int, error)

	// Update rewrites the product row and, when categoryIDs is non-nil,
	// replaces its category links.
	Update(ctx context.Context, p *domain.Product, categoryIDs []string) error

	Delete(ctx context.Context, id string) error
}

// OrderFilter defines filter criteria for listing orders.
type OrderFilter struct {
	UserID  *string
	Status  *string
	Page    int
	PerPage int
}

// OrderRepository defines persistence operations for orders. Every item
// mutation recomputes the order's stored total in the same transaction.
type OrderRepository interface {
	// Create inserts a new order and its items atomically.
	Create(ctx context.Context, order *domain.Order) error

	GetByID(ctx context.Context, id string) (*domain.Order, error)
	List(ctx context.Context, filter OrderFilter) ([]domain.Order, int, error)
	UpdateStatus(ctx context.Context, id string, status string) error

	// ReplaceItems removes all existing items of the order and inserts the
	// given set in their place.
	ReplaceItems(ctx context.Context, orderID string, items []domain.OrderItem) error

	// DeleteItem removes one item from the order.
	DeleteItem(ctx context.Context, orderID string, itemID int64) error

	Delete(ctx context.Context, id string) error
}

// CartRepository defines persistence operations for carts. A cart is owned by
// either a user or an anonymous session code, never both.
type CartRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Cart, error)

	// GetOrCreateByUser returns the user's cart, creating an empty one on
	// first use.
	GetOrCreateByUser(ctx context.Context, userID string) (*domain.Cart, error)

	// GetOrCreateByCode returns the session cart for code, creating an empty
	// one on first use.
	GetOrCreateByCode(ctx context.Context, code string) (*domain.Cart, error)

	// AddItem adds one unit of the product to the cart. If the product is
	// already in the cart its quantity is incremented by one; an inactive
	// line is reactivated.
	AddItem(ctx context.Context, cartID, productID string) error

	// SetItemQuantity replaces the item's quantity with the given value.
	SetItemQuantity(ctx context.Context, cartID string, itemID int64, quantity int) error

	// RemoveItem deletes one item from the cart.
	RemoveItem(ctx context.Context, cartID string, itemID int64) error

	// Merge folds the session cart identified by code into the user's cart
	// and deletes the session cart, all atomically. It returns ErrNotFound
	// when no session cart exists for code.
	Merge(ctx context.Context, code, userID string) error

	Delete(ctx context.Context, id string) error
}

// ReviewRepository defines persistence operations for reviews. Every mutation
// recomputes the product's rating aggregate in the same transaction.
type ReviewRepository interface {
	Create(ctx context.Context, rev *domain.Review) error
	GetByID(ctx context.Context, id string) (*domain.Review, error)
	ListByProduct(ctx context.Context, productID string, p pagination.Params) ([]domain.Review, int, error)
	Update(ctx context.Context, rev *domain.Review) error
	Delete(ctx context.Context, id string) error

	// GetRating returns the stored aggregate for a product, or ErrNotFound
	// when the product has no reviews.
	GetRating(ctx context.Context, productID string) (*domain.Rating, error)
}

// WishlistRepository defines persistence operations for wishlists.
type WishlistRepository interface {
	// GetOrCreateByUser returns the user's wishlist with its products,
	// creating an empty one on first use.
	GetOrCreateByUser(ctx context.Context, userID string) (*domain.Wishlist, error)

	GetByID(ctx context.Context, id string) (*domain.Wishlist, error)
	List(ctx context.Context, p pagination.Params) ([]domain.Wishlist, int, error)

	// ToggleProduct adds the product to the wishlist, or removes it if
	// already present. It reports whether the product ended up in the list.
	ToggleProduct(ctx context.Context, wishlistID, productID string) (bool, error)
}

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context, p pagination.Params) ([]domain.User, int, error)
	Update(ctx context.Context, u *domain.User) error
	Delete(ctx context.Context, id string) error
}
