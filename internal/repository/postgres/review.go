package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/royalboe/commercia/internal/domain"
	"github.com/royalboe/commercia/internal/event"
	"github.com/royalboe/commercia/pkg/database"
	apperrors "github.com/royalboe/commercia/pkg/errors"
	"github.com/royalboe/commercia/pkg/pagination"
)

// ReviewRepository implements repository.ReviewRepository using PostgreSQL.
// Every mutation publishes ReviewsChanged on the bus before committing, so
// the product's rating aggregate is recomputed inside the same transaction.
type ReviewRepository struct {
	pool database.DBTX
	bus  *event.Bus
}

// NewReviewRepository creates a new PostgreSQL-backed review repository.
func NewReviewRepository(pool database.DBTX, bus *event.Bus) *ReviewRepository {
	return &ReviewRepository{pool: pool, bus: bus}
}

// Create inserts a new review and refreshes the product's rating aggregate.
func (r *ReviewRepository) Create(ctx context.Context, rev *domain.Review) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO reviews (id, product_id, user_id, rating, comment, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err = tx.Exec(ctx, query, rev.ID, rev.ProductID, rev.UserID, rev.Rating, rev.Comment, rev.CreatedAt, rev.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("review", "product_id", rev.ProductID)
		}
		return fmt.Errorf("insert review: %w", err)
	}

	if err := r.bus.Publish(ctx, tx, event.ReviewsChanged{ProductID: rev.ProductID}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// GetByID retrieves a review by its ID.
func (r *ReviewRepository) GetByID(ctx context.Context, id string) (*domain.Review, error) {
	query := `
		SELECT id, product_id, user_id, rating, comment, created_at, updated_at
		FROM reviews
		WHERE id = $1`

	var rev domain.Review
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&rev.ID,
		&rev.ProductID,
		&rev.UserID,
		&rev.Rating,
		&rev.Comment,
		&rev.CreatedAt,
		&rev.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan review: %w", err)
	}

	return &rev, nil
}

// ListByProduct returns a product's reviews, newest first, with the total count.
func (r *ReviewRepository) ListByProduct(ctx context.Context, productID string, p pagination.Params) ([]domain.Review, int, error) {
	query := `
		SELECT id, product_id, user_id, rating, comment, created_at, updated_at,
			   count(*) OVER() AS total_count
		FROM reviews
		WHERE product_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, productID, p.PerPage, p.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	var totalCount int
	reviews := make([]domain.Review, 0)

	for rows.Next() {
		var rev domain.Review
		if err := rows.Scan(
			&rev.ID,
			&rev.ProductID,
			&rev.UserID,
			&rev.Rating,
			&rev.Comment,
			&rev.CreatedAt,
			&rev.UpdatedAt,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan review row: %w", err)
		}
		reviews = append(reviews, rev)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate review rows: %w", err)
	}

	return reviews, totalCount, nil
}

// Update rewrites a review's rating and comment and refreshes the product's
// rating aggregate.
func (r *ReviewRepository) Update(ctx context.Context, rev *domain.Review) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		UPDATE reviews
		SET rating = $1, comment = $2, updated_at = $3
		WHERE id = $4`

	ct, err := tx.Exec(ctx, query, rev.Rating, rev.Comment, time.Now().UTC(), rev.ID)
	if err != nil {
		return fmt.Errorf("update review: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("review", rev.ID)
	}

	if err := r.bus.Publish(ctx, tx, event.ReviewsChanged{ProductID: rev.ProductID}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// Delete removes a review and refreshes the product's rating aggregate.
func (r *ReviewRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var productID string
	err = tx.QueryRow(ctx, `DELETE FROM reviews WHERE id = $1 RETURNING product_id`, id).Scan(&productID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NotFound("review", id)
		}
		return fmt.Errorf("delete review: %w", err)
	}

	if err := r.bus.Publish(ctx, tx, event.ReviewsChanged{ProductID: productID}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// GetRating returns the stored rating aggregate for a product.
func (r *ReviewRepository) GetRating(ctx context.Context, productID string) (*domain.Rating, error) {
	query := `
		SELECT product_id, average_rating, total_ratings
		FROM product_ratings
		WHERE product_id = $1`

	var rating domain.Rating
	err := r.pool.QueryRow(ctx, query, productID).Scan(&rating.ProductID, &rating.AverageRating, &rating.TotalRatings)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan product rating: %w", err)
	}

	return &rating, nil
}
