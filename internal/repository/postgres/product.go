package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/royalboe/commercia/internal/domain"
	"github.com/royalboe/commercia/internal/repository"
	"github.com/royalboe/commercia/pkg/database"
	apperrors "github.com/royalboe/commercia/pkg/errors"
)

// ProductRepository implements repository.ProductRepository using PostgreSQL.
type ProductRepository struct {
	pool database.DBTX
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool database.DBTX) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// productSelect fetches a product with its categories aggregated as JSONB and
// its rating aggregate left-joined, so a single query returns the full shape.
const productSelect = `
	SELECT
		p.id, p.name, p.slug, p.description, p.price, p.stock, p.created_at, p.updated_at,
		COALESCE(
			JSONB_AGG(
				JSONB_BUILD_OBJECT('id', c.id, 'name', c.name, 'slug', c.slug)
				ORDER BY c.name
			) FILTER (WHERE c.id IS NOT NULL),
			'[]'::jsonb
		) AS categories,
		pr.average_rating, pr.total_ratings
	FROM products p
	LEFT JOIN product_categories pc ON pc.product_id = p.id
	LEFT JOIN categories c ON c.id = pc.category_id
	LEFT JOIN product_ratings pr ON pr.product_id = p.id`

const productGroupBy = `
	GROUP BY p.id, p.name, p.slug, p.description, p.price, p.stock, p.created_at, p.updated_at,
		pr.average_rating, pr.total_ratings`

// Create inserts a new product and its category links atomically.
func (r *ProductRepository) Create(ctx context.Context, p *domain.Product, categoryIDs []string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO products (id, name, slug, description, price, stock, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err = tx.Exec(ctx, query, p.ID, p.Name, p.Slug, p.Description, p.Price, p.Stock, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("product", "slug", p.Slug)
		}
		return fmt.Errorf("insert product: %w", err)
	}

	if err := insertCategoryLinks(ctx, tx, p.ID, categoryIDs); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// GetByID retrieves a product by its ID.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	query := productSelect + `
	WHERE p.id = $1` + productGroupBy

	return r.scanProduct(ctx, query, id)
}

// GetBySlug retrieves a product by its slug.
func (r *ProductRepository) GetBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	query := productSelect + `
	WHERE p.slug = $1` + productGroupBy

	return r.scanProduct(ctx, query, slug)
}

// GetByIDs loads the given products in one query. Missing ids are absent from
// the result.
func (r *ProductRepository) GetByIDs(ctx context.Context, ids []string) ([]domain.Product, error) {
	if len(ids) == 0 {
		return []domain.Product{}, nil
	}

	query := `
		SELECT id, name, slug, description, price, stock, created_at, updated_at
		FROM products
		WHERE id = ANY($1)`

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("query products by ids: %w", err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0, len(ids))
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Slug, &p.Description, &p.Price, &p.Stock, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product rows: %w", err)
	}

	return products, nil
}

// List returns products matching the given filter with the total count.
func (r *ProductRepository) List(ctx context.Context, filter repository.ProductFilter) ([]domain.Product, int, error) {
	var (
		conditions []string
		args       []any
		argIndex   int = 1
	)

	if filter.CategorySlug != nil {
		conditions = append(conditions, fmt.Sprintf(`p.id IN (
			SELECT pc2.product_id FROM product_categories pc2
			JOIN categories c2 ON c2.id = pc2.category_id
			WHERE c2.slug = $%d)`, argIndex))
		args = append(args, *filter.CategorySlug)
		argIndex++
	}

	if filter.InStock != nil {
		if *filter.InStock {
			conditions = append(conditions, "p.stock > 0")
		} else {
			conditions = append(conditions, "p.stock = 0")
		}
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	limit := filter.PerPage
	if limit <= 0 {
		limit = 20
	}
	offset := 0
	if filter.Page > 1 {
		offset = (filter.Page - 1) * limit
	}

	// count(*) OVER() runs before GROUP BY collapses rows, so count over a
	// window on the grouped result instead.
	query := fmt.Sprintf(`%s
	%s%s
	ORDER BY p.created_at DESC
	LIMIT $%d OFFSET $%d`, productSelect, whereClause, productGroupBy, argIndex, argIndex+1)

	countQuery := fmt.Sprintf(`SELECT count(*) FROM products p %s`, whereClause)

	var totalCount int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0)
	for rows.Next() {
		p, err := scanProductRow(rows)
		if err != nil {
			return nil, 0, err
		}
		products = append(products, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate product rows: %w", err)
	}

	return products, totalCount, nil
}

// Update rewrites the product row and, when categoryIDs is non-nil, replaces
// its category links.
func (r *ProductRepository) Update(ctx context.Context, p *domain.Product, categoryIDs []string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		UPDATE products
		SET name = $1, slug = $2, description = $3, price = $4, stock = $5, updated_at = $6
		WHERE id = $7`

	ct, err := tx.Exec(ctx, query, p.Name, p.Slug, p.Description, p.Price, p.Stock, time.Now().UTC(), p.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("product", "slug", p.Slug)
		}
		return fmt.Errorf("update product: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("product", p.ID)
	}

	if categoryIDs != nil {
		if _, err := tx.Exec(ctx, `DELETE FROM product_categories WHERE product_id = $1`, p.ID); err != nil {
			return fmt.Errorf("clear category links: %w", err)
		}
		if err := insertCategoryLinks(ctx, tx, p.ID, categoryIDs); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// Delete removes a product.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("product", id)
	}

	return nil
}

func insertCategoryLinks(ctx context.Context, tx pgx.Tx, productID string, categoryIDs []string) error {
	query := `
		INSERT INTO product_categories (product_id, category_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING`

	for _, categoryID := range categoryIDs {
		if _, err := tx.Exec(ctx, query, productID, categoryID); err != nil {
			return fmt.Errorf("insert category link: %w", err)
		}
	}

	return nil
}

func (r *ProductRepository) scanProduct(ctx context.Context, query string, arg any) (*domain.Product, error) {
	p, err := scanProductRow(r.pool.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}

	return p, nil
}

// rowScanner is satisfied by both pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanProductRow(row rowScanner) (*domain.Product, error) {
	var (
		p              domain.Product
		categoriesJSON []byte
		avgRating      *float64
		totalRatings   *int
	)

	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Slug,
		&p.Description,
		&p.Price,
		&p.Stock,
		&p.CreatedAt,
		&p.UpdatedAt,
		&categoriesJSON,
		&avgRating,
		&totalRatings,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, pgx.ErrNoRows
		}
		return nil, fmt.Errorf("scan product: %w", err)
	}

	if len(categoriesJSON) > 0 && string(categoriesJSON) != "null" {
		if err := json.Unmarshal(categoriesJSON, &p.Categories); err != nil {
			return nil, fmt.Errorf("unmarshal product categories: %w", err)
		}
	}
	if p.Categories == nil {
		p.Categories = []domain.Category{}
	}

	if avgRating != nil && totalRatings != nil {
		p.Rating = &domain.Rating{
			ProductID:     p.ID,
			AverageRating: *avgRating,
			TotalRatings:  *totalRatings,
		}
	}

	return &p, nil
}
