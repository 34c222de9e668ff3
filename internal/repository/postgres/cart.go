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
)

// CartRepository implements repository.CartRepository using PostgreSQL. Item
// prices are never stored on the cart; reads join the products table so
// subtotals always reflect current prices.
type CartRepository struct {
	pool database.DBTX
}

// NewCartRepository creates a new PostgreSQL-backed cart repository.
func NewCartRepository(pool database.DBTX) *CartRepository {
	return &CartRepository{pool: pool}
}

// GetByID retrieves a cart with its items.
func (r *CartRepository) GetByID(ctx context.Context, id string) (*domain.Cart, error) {
	query := `
		SELECT id, user_id, code, created_at, updated_at
		FROM carts
		WHERE id = $1`

	return r.scanCart(ctx, query, id)
}

// GetOrCreateByUser returns the user's cart, creating an empty one on first
// use.
func (r *CartRepository) GetOrCreateByUser(ctx context.Context, userID string) (*domain.Cart, error) {
	query := `
		SELECT id, user_id, code, created_at, updated_at
		FROM carts
		WHERE user_id = $1`

	cart, err := r.scanCart(ctx, query, userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	insert := `
		INSERT INTO carts (id, user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO NOTHING`

	if _, err := r.pool.Exec(ctx, insert, uuid.NewString(), userID, now, now); err != nil {
		return nil, fmt.Errorf("insert cart: %w", err)
	}

	// A concurrent request may have created the cart first; re-read either way.
	return r.scanCart(ctx, query, userID)
}

// GetOrCreateByCode returns the session cart for code, creating an empty one
// on first use.
func (r *CartRepository) GetOrCreateByCode(ctx context.Context, code string) (*domain.Cart, error) {
	query := `
		SELECT id, user_id, code, created_at, updated_at
		FROM carts
		WHERE code = $1`

	cart, err := r.scanCart(ctx, query, code)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	insert := `
		INSERT INTO carts (id, code, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (code) DO NOTHING`

	if _, err := r.pool.Exec(ctx, insert, uuid.NewString(), code, now, now); err != nil {
		return nil, fmt.Errorf("insert cart: %w", err)
	}

	return r.scanCart(ctx, query, code)
}

// AddItem adds one unit of the product to the cart. An existing line has its
// quantity incremented by one and is reactivated if inactive.
func (r *CartRepository) AddItem(ctx context.Context, cartID, productID string) error {
	query := `
		INSERT INTO cart_items (cart_id, product_id, quantity, is_active)
		VALUES ($1, $2, 1, TRUE)
		ON CONFLICT (cart_id, product_id) DO UPDATE
		SET quantity = cart_items.quantity + 1, is_active = TRUE`

	if _, err := r.pool.Exec(ctx, query, cartID, productID); err != nil {
		return fmt.Errorf("add cart item: %w", err)
	}

	if err := r.touch(ctx, cartID); err != nil {
		return err
	}

	return nil
}

// SetItemQuantity replaces the item's quantity with the given value.
func (r *CartRepository) SetItemQuantity(ctx context.Context, cartID string, itemID int64, quantity int) error {
	query := `
		UPDATE cart_items
		SET quantity = $1
		WHERE id = $2 AND cart_id = $3`

	ct, err := r.pool.Exec(ctx, query, quantity, itemID, cartID)
	if err != nil {
		return fmt.Errorf("update cart item quantity: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("cart item", fmt.Sprintf("%d", itemID))
	}

	return r.touch(ctx, cartID)
}

// RemoveItem deletes one item from the cart.
func (r *CartRepository) RemoveItem(ctx context.Context, cartID string, itemID int64) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE id = $1 AND cart_id = $2`, itemID, cartID)
	if err != nil {
		return fmt.Errorf("delete cart item: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("cart item", fmt.Sprintf("%d", itemID))
	}

	return r.touch(ctx, cartID)
}

// Merge folds the session cart identified by code into the user's cart and
// deletes the session cart, all in one transaction. Items present in both
// carts have their quantities added; items only in the session cart are
// copied over. Inactive session items are discarded with the session cart.
func (r *CartRepository) Merge(ctx context.Context, code, userID string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var sourceID string
	err = tx.QueryRow(ctx, `SELECT id FROM carts WHERE code = $1 AND user_id IS NULL`, code).Scan(&sourceID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("load session cart: %w", err)
	}

	var destID string
	err = tx.QueryRow(ctx, `SELECT id FROM carts WHERE user_id = $1`, userID).Scan(&destID)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("load user cart: %w", err)
		}
		destID = uuid.NewString()
		now := time.Now().UTC()
		_, err = tx.Exec(ctx, `
			INSERT INTO carts (id, user_id, created_at, updated_at)
			VALUES ($1, $2, $3, $4)`, destID, userID, now, now)
		if err != nil {
			return fmt.Errorf("insert user cart: %w", err)
		}
	}

	mergeQuery := `
		INSERT INTO cart_items (cart_id, product_id, quantity, is_active)
		SELECT $1, product_id, quantity, TRUE
		FROM cart_items
		WHERE cart_id = $2 AND is_active
		ON CONFLICT (cart_id, product_id) DO UPDATE
		SET quantity = cart_items.quantity + EXCLUDED.quantity, is_active = TRUE`

	if _, err := tx.Exec(ctx, mergeQuery, destID, sourceID); err != nil {
		return fmt.Errorf("merge cart items: %w", err)
	}

	// Cascade removes the session cart's items.
	if _, err := tx.Exec(ctx, `DELETE FROM carts WHERE id = $1`, sourceID); err != nil {
		return fmt.Errorf("delete session cart: %w", err)
	}

	if _, err := tx.Exec(ctx, `UPDATE carts SET updated_at = $1 WHERE id = $2`, time.Now().UTC(), destID); err != nil {
		return fmt.Errorf("touch user cart: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// Delete removes a cart and its items.
func (r *CartRepository) Delete(ctx context.Context, id string) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM carts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("cart", id)
	}

	return nil
}

func (r *CartRepository) touch(ctx context.Context, cartID string) error {
	if _, err := r.pool.Exec(ctx, `UPDATE carts SET updated_at = $1 WHERE id = $2`, time.Now().UTC(), cartID); err != nil {
		return fmt.Errorf("touch cart: %w", err)
	}
	return nil
}

func (r *CartRepository) scanCart(ctx context.Context, query string, arg any) (*domain.Cart, error) {
	var c domain.Cart
	err := r.pool.QueryRow(ctx, query, arg).Scan(&c.ID, &c.UserID, &c.Code, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan cart: %w", err)
	}

	items, err := r.loadCartItems(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	c.Items = items

	return &c, nil
}

// loadCartItems joins the products table so each line carries the current
// price and name.
func (r *CartRepository) loadCartItems(ctx context.Context, cartID string) ([]domain.CartItem, error) {
	query := `
		SELECT ci.id, ci.cart_id, ci.product_id, p.name, ci.quantity, p.price, ci.is_active
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.cart_id = $1
		ORDER BY ci.id`

	rows, err := r.pool.Query(ctx, query, cartID)
	if err != nil {
		return nil, fmt.Errorf("query cart items: %w", err)
	}
	defer rows.Close()

	items := make([]domain.CartItem, 0)
	for rows.Next() {
		var item domain.CartItem
		if err := rows.Scan(
			&item.ID,
			&item.CartID,
			&item.ProductID,
			&item.ProductName,
			&item.Quantity,
			&item.UnitPrice,
			&item.IsActive,
		); err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cart item rows: %w", err)
	}

	return items, nil
}
