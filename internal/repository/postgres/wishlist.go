package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/royalboe/commercia/internal/domain"
	"github.com/royalboe/commercia/pkg/database"
	apperrors "github.com/royalboe/commercia/pkg/errors"
	"github.com/royalboe/commercia/pkg/pagination"
)

// WishlistRepository implements repository.WishlistRepository using PostgreSQL.
type WishlistRepository struct {
	pool database.DBTX
}

// NewWishlistRepository creates a new PostgreSQL-backed wishlist repository.
func NewWishlistRepository(pool database.DBTX) *WishlistRepository {
	return &WishlistRepository{pool: pool}
}

// GetOrCreateByUser returns the user's wishlist, creating an empty one on
// first use.
func (r *WishlistRepository) GetOrCreateByUser(ctx context.Context, userID string) (*domain.Wishlist, error) {
	query := `
		SELECT id, user_id, created_at, updated_at
		FROM wishlists
		WHERE user_id = $1`

	w, err := r.scanWishlist(ctx, query, userID)
	if err == nil {
		return w, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	insert := `
		INSERT INTO wishlists (id, user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO NOTHING`

	if _, err := r.pool.Exec(ctx, insert, uuid.NewString(), userID, now, now); err != nil {
		return nil, fmt.Errorf("insert wishlist: %w", err)
	}

	return r.scanWishlist(ctx, query, userID)
}

// GetByID retrieves a wishlist with its products.
func (r *WishlistRepository) GetByID(ctx context.Context, id string) (*domain.Wishlist, error) {
	query := `
		SELECT id, user_id, created_at, updated_at
		FROM wishlists
		WHERE id = $1`

	return r.scanWishlist(ctx, query, id)
}

// List returns all wishlists with the total count. Products are loaded per
// wishlist.
func (r *WishlistRepository) List(ctx context.Context, p pagination.Params) ([]domain.Wishlist, int, error) {
	query := `
		SELECT id, user_id, created_at, updated_at,
			   count(*) OVER() AS total_count
		FROM wishlists
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, p.PerPage, p.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("list wishlists: %w", err)
	}
	defer rows.Close()

	var totalCount int
	wishlists := make([]domain.Wishlist, 0)

	for rows.Next() {
		var w domain.Wishlist
		if err := rows.Scan(&w.ID, &w.UserID, &w.CreatedAt, &w.UpdatedAt, &totalCount); err != nil {
			return nil, 0, fmt.Errorf("scan wishlist row: %w", err)
		}
		wishlists = append(wishlists, w)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate wishlist rows: %w", err)
	}

	for i := range wishlists {
		products, err := r.loadProducts(ctx, wishlists[i].ID)
		if err != nil {
			return nil, 0, err
		}
		wishlists[i].Products = products
	}

	return wishlists, totalCount, nil
}

// ToggleProduct adds the product to the wishlist, or removes it if already
// present. It reports whether the product ended up in the list.
func (r *WishlistRepository) ToggleProduct(ctx context.Context, wishlistID, productID string) (bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	ct, err := tx.Exec(ctx, `DELETE FROM wishlist_products WHERE wishlist_id = $1 AND product_id = $2`, wishlistID, productID)
	if err != nil {
		return false, fmt.Errorf("delete wishlist product: %w", err)
	}

	added := ct.RowsAffected() == 0
	if added {
		_, err = tx.Exec(ctx, `INSERT INTO wishlist_products (wishlist_id, product_id) VALUES ($1, $2)`, wishlistID, productID)
		if err != nil {
			return false, fmt.Errorf("insert wishlist product: %w", err)
		}
	}

	if _, err := tx.Exec(ctx, `UPDATE wishlists SET updated_at = $1 WHERE id = $2`, time.Now().UTC(), wishlistID); err != nil {
		return false, fmt.Errorf("touch wishlist: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit transaction: %w", err)
	}

	return added, nil
}

func (r *WishlistRepository) scanWishlist(ctx context.Context, query string, arg any) (*domain.Wishlist, error) {
	var w domain.Wishlist
	err := r.pool.QueryRow(ctx, query, arg).Scan(&w.ID, &w.UserID, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan wishlist: %w", err)
	}

	products, err := r.loadProducts(ctx, w.ID)
	if err != nil {
		return nil, err
	}
	w.Products = products

	return &w, nil
}

func (r *WishlistRepository) loadProducts(ctx context.Context, wishlistID string) ([]domain.Product, error) {
	query := `
		SELECT p.id, p.name, p.slug, p.description, p.price, p.stock, p.created_at, p.updated_at
		FROM wishlist_products wp
		JOIN products p ON p.id = wp.product_id
		WHERE wp.wishlist_id = $1
		ORDER BY p.name`

	rows, err := r.pool.Query(ctx, query, wishlistID)
	if err != nil {
		return nil, fmt.Errorf("query wishlist products: %w", err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0)
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Slug, &p.Description, &p.Price, &p.Stock, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan wishlist product: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wishlist product rows: %w", err)
	}

	return products, nil
}
