package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/royalboe/commercia/internal/domain"
	"github.com/royalboe/commercia/pkg/database"
	apperrors "github.com/royalboe/commercia/pkg/errors"
	"github.com/royalboe/commercia/pkg/pagination"
)

func newCategoryRepo(t *testing.T) (*CategoryRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	return NewCategoryRepository(mock), mock
}

func TestCategoryRepository_Create_DuplicateSlug(t *testing.T) {
	repo, mock := newCategoryRepo(t)

	now := time.Now().UTC()
	c := &domain.Category{ID: "cat-001", Name: "Tools", Slug: "tools", CreatedAt: now, UpdatedAt: now}

	mock.ExpectExec("INSERT INTO categories").
		WithArgs(c.ID, c.Name, c.Slug, c.Description, c.CreatedAt, c.UpdatedAt).
		WillReturnError(errors.New("ERROR: duplicate key value violates unique constraint (SQLSTATE 23505)"))

	err := repo.Create(context.Background(), c)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
}

func TestCategoryRepository_List(t *testing.T) {
	repo, mock := newCategoryRepo(t)

	now := time.Now().UTC()
	rows := pgxmock.NewRows([]string{"id", "name", "slug", "description", "created_at", "updated_at", "total_count"}).
		AddRow("cat-001", "Gadgets", "gadgets", "", now, now, 2).
		AddRow("cat-002", "Tools", "tools", "", now, now, 2)

	mock.ExpectQuery("SELECT").WithArgs(20, 0).WillReturnRows(rows)

	categories, total, err := repo.List(context.Background(), pagination.Default())
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, categories, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryRepository_Delete_NotFound(t *testing.T) {
	repo, mock := newCategoryRepo(t)

	mock.ExpectExec("DELETE FROM categories").
		WithArgs("missing").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := repo.Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
