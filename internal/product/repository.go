// AngelaMos | 2026
// repository.go

package product

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/pos-nt/backend/internal/core"
)

const productColumns = `
	id, user_id, name, description, barcode, category, price, cost,
	stock, min_stock, is_active, created_at, updated_at, deleted_at`

type Repository interface {
	Create(ctx context.Context, product *Product) error
	GetByID(ctx context.Context, userID, id string) (*Product, error)
	GetByBarcode(ctx context.Context, userID, barcode string) (*Product, error)
	Update(ctx context.Context, product *Product) error
	AdjustStock(ctx context.Context, userID, id string, delta int) (*Product, error)
	SoftDelete(ctx context.Context, userID, id string) error
	List(ctx context.Context, userID string, params ListProductsParams) ([]Product, int, error)
	ListLowStock(ctx context.Context, userID string) ([]Product, error)
	CountForUser(ctx context.Context, userID string) (int, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, product *Product) error {
	query := `
		INSERT INTO products (
			id, user_id, name, description, barcode, category,
			price, cost, stock, min_stock, is_active
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
		)
		RETURNING created_at, updated_at`

	err := r.db.GetContext(ctx, product, query,
		product.ID,
		product.UserID,
		product.Name,
		product.Description,
		product.Barcode,
		product.Category,
		product.Price,
		product.Cost,
		product.Stock,
		product.MinStock,
		product.IsActive,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("create product: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create product: %w", err)
	}

	return nil
}

func (r *repository) GetByID(
	ctx context.Context,
	userID, id string,
) (*Product, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM products
		WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL`, productColumns)

	var product Product
	err := r.db.GetContext(ctx, &product, query, id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get product: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}

	return &product, nil
}

func (r *repository) GetByBarcode(
	ctx context.Context,
	userID, barcode string,
) (*Product, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM products
		WHERE barcode = $1 AND user_id = $2 AND deleted_at IS NULL`,
		productColumns)

	var product Product
	err := r.db.GetContext(ctx, &product, query, barcode, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get product by barcode: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get product by barcode: %w", err)
	}

	return &product, nil
}

func (r *repository) Update(ctx context.Context, product *Product) error {
	query := `
		UPDATE products
		SET name = $3, description = $4, barcode = $5, category = $6,
			price = $7, cost = $8, stock = $9, min_stock = $10,
			is_active = $11, updated_at = NOW()
		WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &product.UpdatedAt, query,
		product.ID,
		product.UserID,
		product.Name,
		product.Description,
		product.Barcode,
		product.Category,
		product.Price,
		product.Cost,
		product.Stock,
		product.MinStock,
		product.IsActive,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update product: %w", core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}

	return nil
}

// AdjustStock applies a stock delta and returns the updated row. A negative
// delta that would take stock below zero fails the WHERE clause and reports
// insufficient stock.
func (r *repository) AdjustStock(
	ctx context.Context,
	userID, id string,
	delta int,
) (*Product, error) {
	query := fmt.Sprintf(`
		UPDATE products
		SET stock = stock + $3, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
			AND deleted_at IS NULL
			AND stock + $3 >= 0
		RETURNING %s`, productColumns)

	var product Product
	err := r.db.GetContext(ctx, &product, query, id, userID, delta)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("adjust stock: %w", core.ErrInvalidInput)
	}
	if err != nil {
		return nil, fmt.Errorf("adjust stock: %w", err)
	}

	return &product, nil
}

func (r *repository) SoftDelete(ctx context.Context, userID, id string) error {
	query := `
		UPDATE products
		SET deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete product: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) List(
	ctx context.Context,
	userID string,
	params ListProductsParams,
) ([]Product, int, error) {
	params.Normalize()

	conditions := []string{"user_id = $1", "deleted_at IS NULL"}
	args := []any{userID}
	argIdx := 2

	if params.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(name ILIKE $%d OR barcode ILIKE $%d)", argIdx, argIdx))
		args = append(args, "%"+escapeLike(params.Search)+"%")
		argIdx++
	}

	if params.Category != "" {
		conditions = append(conditions, fmt.Sprintf("category = $%d", argIdx))
		args = append(args, params.Category)
		argIdx++
	}

	if params.ActiveOnly {
		conditions = append(conditions, "is_active = true")
	}

	whereClause := strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf(
		"SELECT COUNT(*) FROM products WHERE %s",
		whereClause,
	)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM products
		WHERE %s
		ORDER BY name ASC
		LIMIT $%d OFFSET $%d`,
		productColumns, whereClause, argIdx, argIdx+1)

	args = append(args, params.PageSize, params.Offset())

	var products []Product
	if err := r.db.SelectContext(ctx, &products, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}

	return products, total, nil
}

func (r *repository) ListLowStock(
	ctx context.Context,
	userID string,
) ([]Product, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM products
		WHERE user_id = $1
			AND deleted_at IS NULL
			AND is_active = true
			AND min_stock > 0
			AND stock <= min_stock
		ORDER BY stock ASC`, productColumns)

	var products []Product
	if err := r.db.SelectContext(ctx, &products, query, userID); err != nil {
		return nil, fmt.Errorf("list low stock: %w", err)
	}

	return products, nil
}

func (r *repository) CountForUser(
	ctx context.Context,
	userID string,
) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM products
		WHERE user_id = $1 AND deleted_at IS NULL`

	var count int
	if err := r.db.GetContext(ctx, &count, query, userID); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}

	return count, nil
}

func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "%", "\\%")
	s = strings.ReplaceAll(s, "_", "\\_")
	return s
}
