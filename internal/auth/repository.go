// AngelaMos | 2026
// repository.go

package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/pos-nt/backend/internal/core"
)

type Repository interface {
	Add(ctx context.Context, record *TokenRecord) error
	Remove(ctx context.Context, userID, tokenHash string) error
	RemoveAllForUser(ctx context.Context, userID string) (int64, error)
	ListForUser(ctx context.Context, userID string) ([]TokenRecord, error)
	DeleteExpired(ctx context.Context, retention time.Duration) (int64, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Add(ctx context.Context, record *TokenRecord) error {
	query := `
		INSERT INTO access_tokens (
			id, user_id, token_hash, expires_at
		) VALUES (
			$1, $2, $3, $4
		)
		RETURNING created_at`

	err := r.db.GetContext(ctx, &record.CreatedAt, query,
		record.ID,
		record.UserID,
		record.TokenHash,
		record.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("add access token: %w", err)
	}

	return nil
}

func (r *repository) Remove(
	ctx context.Context,
	userID, tokenHash string,
) error {
	query := `
		DELETE FROM access_tokens
		WHERE user_id = $1 AND token_hash = $2`

	_, err := r.db.ExecContext(ctx, query, userID, tokenHash)
	if err != nil {
		return fmt.Errorf("remove access token: %w", err)
	}

	return nil
}

func (r *repository) RemoveAllForUser(
	ctx context.Context,
	userID string,
) (int64, error) {
	query := `
		DELETE FROM access_tokens
		WHERE user_id = $1`

	result, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		return 0, fmt.Errorf("remove all user tokens: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("remove all user tokens: %w", err)
	}

	return rows, nil
}

func (r *repository) ListForUser(
	ctx context.Context,
	userID string,
) ([]TokenRecord, error) {
	query := `
		SELECT id, user_id, token_hash, created_at, expires_at
		FROM access_tokens
		WHERE user_id = $1 AND expires_at > NOW()
		ORDER BY created_at DESC`

	var records []TokenRecord
	if err := r.db.SelectContext(ctx, &records, query, userID); err != nil {
		return nil, fmt.Errorf("list user tokens: %w", err)
	}

	return records, nil
}

// DeleteExpired removes tokens that expired more than retention ago. The
// grace period keeps recently expired rows around for the refresh window.
func (r *repository) DeleteExpired(
	ctx context.Context,
	retention time.Duration,
) (int64, error) {
	query := `
		DELETE FROM access_tokens
		WHERE expires_at < $1`

	cutoff := time.Now().Add(-retention)

	result, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete expired tokens: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete expired tokens: %w", err)
	}

	return rows, nil
}
