// AngelaMos | 2026
// repository_test.go

package user

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pos-nt/backend/internal/core"
)

func newMockRepo(t *testing.T) (Repository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewRepository(sqlx.NewDb(db, "sqlmock")), mock
}

func userRows() *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "email", "password_hash", "name", "phone", "role", "is_active",
		"plan_type", "plan_expires_at", "plan_last_payment",
		"reset_token_hash", "reset_token_expires_at", "last_login_at",
		"created_by", "created_at", "updated_at", "deleted_at",
	}).AddRow(
		"user-1", "owner@example.com", "hash", "Owner", "", "admin", true,
		"free", nil, nil,
		nil, nil, nil,
		nil, now, now, nil,
	)
}

func TestCreateMapsDuplicateEmail(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("INSERT INTO users").
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err := repo.Create(context.Background(), &User{
		ID:    "user-1",
		Email: "owner@example.com",
	})

	assert.ErrorIs(t, err, core.ErrDuplicateKey)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByIDNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("FROM users").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetByID(context.Background(), "missing")

	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByActiveTokenResolvesUser(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("FROM users u").
		WithArgs("user-1", "token-hash").
		WillReturnRows(userRows())

	found, err := repo.GetByActiveToken(
		context.Background(),
		"user-1",
		"token-hash",
	)

	require.NoError(t, err)
	assert.Equal(t, "user-1", found.ID)
	assert.Equal(t, "owner@example.com", found.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByActiveTokenMissesUnknownHash(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("FROM users u").
		WithArgs("user-1", "stale-hash").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetByActiveToken(
		context.Background(),
		"user-1",
		"stale-hash",
	)

	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestDemotePlan(t *testing.T) {
	t.Run("updates row", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectExec("UPDATE users").
			WithArgs("user-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.DemotePlan(context.Background(), "user-1"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing user", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectExec("UPDATE users").
			WithArgs("missing").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.DemotePlan(context.Background(), "missing")
		assert.ErrorIs(t, err, core.ErrNotFound)
	})
}

func TestConsumePasswordResetIsOneTime(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("UPDATE users").
		WithArgs("owner@example.com", "reset-hash").
		WillReturnRows(userRows())
	mock.ExpectQuery("UPDATE users").
		WithArgs("owner@example.com", "reset-hash").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	ctx := context.Background()

	_, err := repo.ConsumePasswordReset(ctx, "owner@example.com", "reset-hash")
	require.NoError(t, err)

	// The first claim cleared the token, so replaying it misses.
	_, err = repo.ConsumePasswordReset(ctx, "owner@example.com", "reset-hash")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `100\%`, escapeLike("100%"))
	assert.Equal(t, `a\_b`, escapeLike("a_b"))
	assert.Equal(t, `back\\slash`, escapeLike(`back\slash`))
}
