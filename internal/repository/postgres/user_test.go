package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/royalboe/commercia/internal/domain"
	"github.com/royalboe/commercia/pkg/database"
	apperrors "github.com/royalboe/commercia/pkg/errors"
)

func newUserRepo(t *testing.T) (*UserRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	return NewUserRepository(mock), mock
}

func TestUserRepository_Create_DuplicateEmail(t *testing.T) {
	repo, mock := newUserRepo(t)

	now := time.Now().UTC()
	u := &domain.User{ID: "user-001", Email: "a@example.com", Username: "a", Role: domain.RoleCustomer, CreatedAt: now, UpdatedAt: now}

	mock.ExpectExec("INSERT INTO users").
		WithArgs(u.ID, u.Email, u.Username, u.FirstName, u.LastName, u.Role, u.Phone, u.Address, u.DateOfBirth, u.CreatedAt, u.UpdatedAt).
		WillReturnError(errors.New("ERROR: duplicate key value violates unique constraint (SQLSTATE 23505)"))

	err := repo.Create(context.Background(), u)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
}

func TestUserRepository_GetByEmail_NotFound(t *testing.T) {
	repo, mock := newUserRepo(t)

	mock.ExpectQuery("SELECT").WithArgs("missing@example.com").WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByEmail(context.Background(), "missing@example.com")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUserRepository_GetByID(t *testing.T) {
	repo, mock := newUserRepo(t)

	now := time.Now().UTC()
	rows := pgxmock.NewRows([]string{
		"id", "email", "username", "first_name", "last_name", "role",
		"phone", "address", "date_of_birth", "created_at", "updated_at",
	}).AddRow("user-001", "a@example.com", "a", "Ada", "L", domain.RoleAdmin, "", "", nil, now, now)

	mock.ExpectQuery("SELECT").WithArgs("user-001").WillReturnRows(rows)

	u, err := repo.GetByID(context.Background(), "user-001")
	require.NoError(t, err)
	assert.True(t, u.IsAdmin())
	assert.NoError(t, mock.ExpectationsWereMet())
}
