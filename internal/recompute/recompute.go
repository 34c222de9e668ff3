// Package recompute keeps derived aggregates consistent with the line items
// they are computed from. Its handlers are registered on the event bus and run
// inside the same transaction as the mutation that published the event, so an
// order's stored total and a product's stored rating can never be observed out
// of sync with their rows.
package recompute

import (
	"context"
	"fmt"

	"github.com/royalboe/commercia/internal/event"
	"github.com/royalboe/commercia/pkg/database"
)

const orderTotalSQL = `
	UPDATE orders
	SET total_amount = (
		SELECT COALESCE(SUM(price_at_order * quantity), 0)
		FROM order_items
		WHERE order_id = $1
	), updated_at = now()
	WHERE id = $1`

const ratingDeleteSQL = `
	DELETE FROM product_ratings
	WHERE product_id = $1
	  AND NOT EXISTS (SELECT 1 FROM reviews WHERE product_id = $1)`

const ratingUpsertSQL = `
	INSERT INTO product_ratings (product_id, average_rating, total_ratings)
	SELECT $1, ROUND(AVG(rating)::numeric, 1), COUNT(*)
	FROM reviews
	WHERE product_id = $1
	HAVING COUNT(*) > 0
	ON CONFLICT (product_id) DO UPDATE
	SET average_rating = EXCLUDED.average_rating,
	    total_ratings = EXCLUDED.total_ratings,
	    updated_at = now()`

// Register wires the aggregate handlers into bus.
func Register(bus *event.Bus) {
	bus.Subscribe(event.OrderItemsChanged{}, OrderTotal)
	bus.Subscribe(event.ReviewsChanged{}, ProductRating)
}

// OrderTotal recomputes orders.total_amount from the order's items.
func OrderTotal(ctx context.Context, q database.Querier, e any) error {
	ev, ok := e.(event.OrderItemsChanged)
	if !ok {
		return fmt.Errorf("recompute: unexpected event %T", e)
	}
	if _, err := q.Exec(ctx, orderTotalSQL, ev.OrderID); err != nil {
		return fmt.Errorf("recompute order total: %w", err)
	}
	return nil
}

// ProductRating recomputes the product's rating aggregate from its reviews.
// With no reviews left the aggregate row is removed rather than zeroed.
func ProductRating(ctx context.Context, q database.Querier, e any) error {
	ev, ok := e.(event.ReviewsChanged)
	if !ok {
		return fmt.Errorf("recompute: unexpected event %T", e)
	}
	if _, err := q.Exec(ctx, ratingDeleteSQL, ev.ProductID); err != nil {
		return fmt.Errorf("recompute product rating: %w", err)
	}
	if _, err := q.Exec(ctx, ratingUpsertSQL, ev.ProductID); err != nil {
		return fmt.Errorf("recompute product rating: %w", err)
	}
	return nil
}
