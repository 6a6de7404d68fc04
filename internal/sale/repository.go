// AngelaMos | 2026
// repository.go

package sale

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/pos-nt/backend/internal/core"
)

type Repository interface {
	Create(ctx context.Context, sale *Sale) error
	GetByID(ctx context.Context, userID, id string) (*Sale, error)
	Delete(ctx context.Context, userID, id string) error
	List(ctx context.Context, userID string, params ListSalesParams) ([]Sale, int, error)
	CountForUserSince(ctx context.Context, userID string, since time.Time) (int, error)
	StatsForRange(ctx context.Context, from, to time.Time) ([]DailyStats, error)
	StatsForUser(ctx context.Context, userID string, from, to time.Time) (*DailyStats, error)
}

// repository holds the full *sqlx.DB rather than core.DBTX: creating a sale
// spans three tables and a stock mutation, which needs a transaction.
type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// Create inserts the sale and its items and decrements product stock, all or
// nothing. A line whose quantity exceeds remaining stock aborts the whole
// sale with ErrInvalidInput.
func (r *repository) Create(ctx context.Context, sale *Sale) error {
	return core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		saleQuery := `
			INSERT INTO sales (
				id, user_id, total, payment_method, customer_id, notes
			) VALUES (
				$1, $2, $3, $4, $5, $6
			)
			RETURNING created_at`

		err := tx.GetContext(ctx, &sale.CreatedAt, saleQuery,
			sale.ID,
			sale.UserID,
			sale.Total,
			sale.PaymentMethod,
			sale.CustomerID,
			sale.Notes,
		)
		if err != nil {
			return fmt.Errorf("insert sale: %w", err)
		}

		itemQuery := `
			INSERT INTO sale_items (
				id, sale_id, product_id, name, quantity, unit_price, subtotal
			) VALUES (
				$1, $2, $3, $4, $5, $6, $7
			)`

		stockQuery := `
			UPDATE products
			SET stock = stock - $3, updated_at = NOW()
			WHERE id = $1 AND user_id = $2
				AND deleted_at IS NULL
				AND stock >= $3`

		for i := range sale.Items {
			item := &sale.Items[i]
			item.SaleID = sale.ID

			if _, err := tx.ExecContext(ctx, itemQuery,
				item.ID,
				item.SaleID,
				item.ProductID,
				item.Name,
				item.Quantity,
				item.UnitPrice,
				item.Subtotal,
			); err != nil {
				return fmt.Errorf("insert sale item: %w", err)
			}

			result, err := tx.ExecContext(ctx, stockQuery,
				item.ProductID,
				sale.UserID,
				item.Quantity,
			)
			if err != nil {
				return fmt.Errorf("decrement stock: %w", err)
			}

			rows, err := result.RowsAffected()
			if err != nil {
				return fmt.Errorf("decrement stock: %w", err)
			}
			if rows == 0 {
				return fmt.Errorf(
					"insufficient stock for product %s: %w",
					item.ProductID,
					core.ErrInvalidInput,
				)
			}
		}

		return nil
	})
}

func (r *repository) GetByID(
	ctx context.Context,
	userID, id string,
) (*Sale, error) {
	query := `
		SELECT id, user_id, total, payment_method, customer_id, notes, created_at
		FROM sales
		WHERE id = $1 AND user_id = $2`

	var sale Sale
	err := r.db.GetContext(ctx, &sale, query, id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get sale: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get sale: %w", err)
	}

	itemQuery := `
		SELECT id, sale_id, product_id, name, quantity, unit_price, subtotal
		FROM sale_items
		WHERE sale_id = $1
		ORDER BY name ASC`

	if err := r.db.SelectContext(ctx, &sale.Items, itemQuery, id); err != nil {
		return nil, fmt.Errorf("get sale items: %w", err)
	}

	return &sale, nil
}

// Delete removes a sale and restores the stock its items consumed.
func (r *repository) Delete(ctx context.Context, userID, id string) error {
	return core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var items []SaleItem
		itemQuery := `
			SELECT id, sale_id, product_id, name, quantity, unit_price, subtotal
			FROM sale_items
			WHERE sale_id = $1`

		if err := tx.SelectContext(ctx, &items, itemQuery, id); err != nil {
			return fmt.Errorf("load sale items: %w", err)
		}

		restoreQuery := `
			UPDATE products
			SET stock = stock + $3, updated_at = NOW()
			WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL`

		for _, item := range items {
			if _, err := tx.ExecContext(ctx, restoreQuery,
				item.ProductID,
				userID,
				item.Quantity,
			); err != nil {
				return fmt.Errorf("restore stock: %w", err)
			}
		}

		if _, err := tx.ExecContext(ctx,
			`DELETE FROM sale_items WHERE sale_id = $1`, id,
		); err != nil {
			return fmt.Errorf("delete sale items: %w", err)
		}

		result, err := tx.ExecContext(ctx,
			`DELETE FROM sales WHERE id = $1 AND user_id = $2`, id, userID,
		)
		if err != nil {
			return fmt.Errorf("delete sale: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("delete sale: %w", err)
		}
		if rows == 0 {
			return fmt.Errorf("delete sale: %w", core.ErrNotFound)
		}

		return nil
	})
}

func (r *repository) List(
	ctx context.Context,
	userID string,
	params ListSalesParams,
) ([]Sale, int, error) {
	params.Normalize()

	conditions := "user_id = $1"
	args := []any{userID}
	argIdx := 2

	if !params.From.IsZero() {
		conditions += fmt.Sprintf(" AND created_at >= $%d", argIdx)
		args = append(args, params.From)
		argIdx++
	}

	if !params.To.IsZero() {
		conditions += fmt.Sprintf(" AND created_at < $%d", argIdx)
		args = append(args, params.To)
		argIdx++
	}

	countQuery := "SELECT COUNT(*) FROM sales WHERE " + conditions
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count sales: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, user_id, total, payment_method, customer_id, notes, created_at
		FROM sales
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`,
		conditions, argIdx, argIdx+1)

	args = append(args, params.PageSize, params.Offset())

	var sales []Sale
	if err := r.db.SelectContext(ctx, &sales, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list sales: %w", err)
	}

	return sales, total, nil
}

func (r *repository) CountForUserSince(
	ctx context.Context,
	userID string,
	since time.Time,
) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM sales
		WHERE user_id = $1 AND created_at >= $2`

	var count int
	if err := r.db.GetContext(ctx, &count, query, userID, since); err != nil {
		return 0, fmt.Errorf("count sales: %w", err)
	}

	return count, nil
}

// StatsForRange aggregates per-user sales across all users, for the daily
// summary job.
func (r *repository) StatsForRange(
	ctx context.Context,
	from, to time.Time,
) ([]DailyStats, error) {
	query := `
		SELECT
			s.user_id,
			COUNT(*) AS sale_count,
			COALESCE(SUM(s.total), 0) AS total,
			COALESCE((
				SELECT SUM(i.quantity)
				FROM sale_items i
				JOIN sales s2 ON s2.id = i.sale_id
				WHERE s2.user_id = s.user_id
					AND s2.created_at >= $1 AND s2.created_at < $2
			), 0) AS item_count
		FROM sales s
		WHERE s.created_at >= $1 AND s.created_at < $2
		GROUP BY s.user_id`

	var stats []DailyStats
	if err := r.db.SelectContext(ctx, &stats, query, from, to); err != nil {
		return nil, fmt.Errorf("range stats: %w", err)
	}

	return stats, nil
}

func (r *repository) StatsForUser(
	ctx context.Context,
	userID string,
	from, to time.Time,
) (*DailyStats, error) {
	query := `
		SELECT
			$1::text AS user_id,
			COUNT(*) AS sale_count,
			COALESCE(SUM(total), 0) AS total,
			COALESCE((
				SELECT SUM(i.quantity)
				FROM sale_items i
				JOIN sales s2 ON s2.id = i.sale_id
				WHERE s2.user_id = $1
					AND s2.created_at >= $2 AND s2.created_at < $3
			), 0) AS item_count
		FROM sales
		WHERE user_id = $1 AND created_at >= $2 AND created_at < $3`

	var stats DailyStats
	if err := r.db.GetContext(ctx, &stats, query, userID, from, to); err != nil {
		return nil, fmt.Errorf("user stats: %w", err)
	}

	return &stats, nil
}
