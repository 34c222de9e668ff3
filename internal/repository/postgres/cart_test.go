package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/royalboe/commercia/pkg/database"
	apperrors "github.com/royalboe/commercia/pkg/errors"
)

func newCartRepo(t *testing.T) (*CartRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	return NewCartRepository(mock), mock
}

func cartRows(id string, userID, code *string) *pgxmock.Rows {
	now := time.Now().UTC()
	return pgxmock.NewRows([]string{"id", "user_id", "code", "created_at", "updated_at"}).
		AddRow(id, userID, code, now, now)
}

func emptyItemRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{"id", "cart_id", "product_id", "name", "quantity", "price", "is_active"})
}

func TestCartRepository_GetOrCreateByUser_Existing(t *testing.T) {
	repo, mock := newCartRepo(t)

	userID := "user-001"
	mock.ExpectQuery("SELECT").WithArgs(userID).WillReturnRows(cartRows("cart-001", &userID, nil))
	mock.ExpectQuery("SELECT").WithArgs("cart-001").WillReturnRows(
		emptyItemRows().AddRow(int64(1), "cart-001", "prod-001", "Widget", 2, int64(500), true),
	)

	cart, err := repo.GetOrCreateByUser(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, "cart-001", cart.ID)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, int64(1000), cart.Items[0].SubTotal())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCartRepository_GetOrCreateByUser_CreatesOnFirstUse(t *testing.T) {
	repo, mock := newCartRepo(t)

	userID := "user-002"
	mock.ExpectQuery("SELECT").WithArgs(userID).WillReturnError(pgx.ErrNoRows)
	mock.ExpectExec("INSERT INTO carts").
		WithArgs(pgxmock.AnyArg(), userID, pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectQuery("SELECT").WithArgs(userID).WillReturnRows(cartRows("cart-002", &userID, nil))
	mock.ExpectQuery("SELECT").WithArgs("cart-002").WillReturnRows(emptyItemRows())

	cart, err := repo.GetOrCreateByUser(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, "cart-002", cart.ID)
	assert.Empty(t, cart.Items)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCartRepository_AddItem_Upserts(t *testing.T) {
	repo, mock := newCartRepo(t)

	mock.ExpectExec("INSERT INTO cart_items").
		WithArgs("cart-001", "prod-001").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("UPDATE carts").
		WithArgs(pgxmock.AnyArg(), "cart-001").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := repo.AddItem(context.Background(), "cart-001", "prod-001")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCartRepository_SetItemQuantity_NotFound(t *testing.T) {
	repo, mock := newCartRepo(t)

	mock.ExpectExec("UPDATE cart_items").
		WithArgs(3, int64(42), "cart-001").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.SetItemQuantity(context.Background(), "cart-001", 42, 3)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCartRepository_Merge_Success(t *testing.T) {
	repo, mock := newCartRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM carts WHERE code = .+ AND user_id IS NULL").
		WithArgs("sess-abc").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow("cart-src"))
	mock.ExpectQuery("SELECT id FROM carts WHERE user_id").
		WithArgs("user-001").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow("cart-dst"))
	mock.ExpectExec("INSERT INTO cart_items").
		WithArgs("cart-dst", "cart-src").
		WillReturnResult(pgxmock.NewResult("INSERT", 2))
	mock.ExpectExec("DELETE FROM carts").
		WithArgs("cart-src").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec("UPDATE carts").
		WithArgs(pgxmock.AnyArg(), "cart-dst").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	err := repo.Merge(context.Background(), "sess-abc", "user-001")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCartRepository_Merge_CreatesUserCart(t *testing.T) {
	repo, mock := newCartRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM carts WHERE code = .+ AND user_id IS NULL").
		WithArgs("sess-abc").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow("cart-src"))
	mock.ExpectQuery("SELECT id FROM carts WHERE user_id").
		WithArgs("user-001").
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectExec("INSERT INTO carts").
		WithArgs(pgxmock.AnyArg(), "user-001", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO cart_items").
		WithArgs(pgxmock.AnyArg(), "cart-src").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("DELETE FROM carts").
		WithArgs("cart-src").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec("UPDATE carts").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	err := repo.Merge(context.Background(), "sess-abc", "user-001")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCartRepository_Merge_NoSessionCart(t *testing.T) {
	repo, mock := newCartRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM carts WHERE code = .+ AND user_id IS NULL").
		WithArgs("sess-missing").
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectRollback()

	err := repo.Merge(context.Background(), "sess-missing", "user-001")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
