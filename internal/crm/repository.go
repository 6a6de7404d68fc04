// AngelaMos | 2026
// repository.go

package crm

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/pos-nt/backend/internal/core"
)

const customerColumns = `
	id, user_id, name, email, phone, address, notes,
	created_at, updated_at, deleted_at`

type Repository interface {
	CreateCustomer(ctx context.Context, customer *Customer) error
	GetCustomer(ctx context.Context, userID, id string) (*Customer, error)
	UpdateCustomer(ctx context.Context, customer *Customer) error
	DeleteCustomer(ctx context.Context, userID, id string) error
	ListCustomers(ctx context.Context, userID string, params ListCustomersParams) ([]Customer, int, error)

	CreateFollowUp(ctx context.Context, followUp *FollowUp) error
	CompleteFollowUp(ctx context.Context, userID, id string) error
	ListFollowUps(ctx context.Context, userID string, pendingOnly bool) ([]FollowUp, error)
	ListCustomerFollowUps(ctx context.Context, userID, customerID string) ([]FollowUp, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) CreateCustomer(
	ctx context.Context,
	customer *Customer,
) error {
	query := `
		INSERT INTO customers (
			id, user_id, name, email, phone, address, notes
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7
		)
		RETURNING created_at, updated_at`

	err := r.db.GetContext(ctx, customer, query,
		customer.ID,
		customer.UserID,
		customer.Name,
		customer.Email,
		customer.Phone,
		customer.Address,
		customer.Notes,
	)
	if err != nil {
		return fmt.Errorf("create customer: %w", err)
	}

	return nil
}

func (r *repository) GetCustomer(
	ctx context.Context,
	userID, id string,
) (*Customer, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM customers
		WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL`,
		customerColumns)

	var customer Customer
	err := r.db.GetContext(ctx, &customer, query, id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get customer: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get customer: %w", err)
	}

	return &customer, nil
}

func (r *repository) UpdateCustomer(
	ctx context.Context,
	customer *Customer,
) error {
	query := `
		UPDATE customers
		SET name = $3, email = $4, phone = $5, address = $6, notes = $7,
			updated_at = NOW()
		WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &customer.UpdatedAt, query,
		customer.ID,
		customer.UserID,
		customer.Name,
		customer.Email,
		customer.Phone,
		customer.Address,
		customer.Notes,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update customer: %w", core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update customer: %w", err)
	}

	return nil
}

func (r *repository) DeleteCustomer(
	ctx context.Context,
	userID, id string,
) error {
	query := `
		UPDATE customers
		SET deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete customer: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) ListCustomers(
	ctx context.Context,
	userID string,
	params ListCustomersParams,
) ([]Customer, int, error) {
	params.Normalize()

	conditions := "user_id = $1 AND deleted_at IS NULL"
	args := []any{userID}
	argIdx := 2

	if params.Search != "" {
		conditions += fmt.Sprintf(
			" AND (name ILIKE $%d OR email ILIKE $%d OR phone ILIKE $%d)",
			argIdx, argIdx, argIdx,
		)
		args = append(args, "%"+escapeLike(params.Search)+"%")
		argIdx++
	}

	countQuery := "SELECT COUNT(*) FROM customers WHERE " + conditions
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count customers: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM customers
		WHERE %s
		ORDER BY name ASC
		LIMIT $%d OFFSET $%d`,
		customerColumns, conditions, argIdx, argIdx+1)

	args = append(args, params.PageSize, params.Offset())

	var customers []Customer
	if err := r.db.SelectContext(ctx, &customers, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list customers: %w", err)
	}

	return customers, total, nil
}

func (r *repository) CreateFollowUp(
	ctx context.Context,
	followUp *FollowUp,
) error {
	query := `
		INSERT INTO follow_ups (
			id, customer_id, user_id, note, due_at
		) VALUES (
			$1, $2, $3, $4, $5
		)
		RETURNING created_at`

	err := r.db.GetContext(ctx, &followUp.CreatedAt, query,
		followUp.ID,
		followUp.CustomerID,
		followUp.UserID,
		followUp.Note,
		followUp.DueAt,
	)
	if err != nil {
		return fmt.Errorf("create follow-up: %w", err)
	}

	return nil
}

func (r *repository) CompleteFollowUp(
	ctx context.Context,
	userID, id string,
) error {
	query := `
		UPDATE follow_ups
		SET done_at = NOW()
		WHERE id = $1 AND user_id = $2 AND done_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("complete follow-up: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("complete follow-up: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("complete follow-up: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) ListFollowUps(
	ctx context.Context,
	userID string,
	pendingOnly bool,
) ([]FollowUp, error) {
	query := `
		SELECT id, customer_id, user_id, note, due_at, done_at, created_at
		FROM follow_ups
		WHERE user_id = $1`

	if pendingOnly {
		query += " AND done_at IS NULL"
	}
	query += " ORDER BY due_at ASC"

	var followUps []FollowUp
	if err := r.db.SelectContext(ctx, &followUps, query, userID); err != nil {
		return nil, fmt.Errorf("list follow-ups: %w", err)
	}

	return followUps, nil
}

func (r *repository) ListCustomerFollowUps(
	ctx context.Context,
	userID, customerID string,
) ([]FollowUp, error) {
	query := `
		SELECT id, customer_id, user_id, note, due_at, done_at, created_at
		FROM follow_ups
		WHERE user_id = $1 AND customer_id = $2
		ORDER BY due_at ASC`

	var followUps []FollowUp
	err := r.db.SelectContext(ctx, &followUps, query, userID, customerID)
	if err != nil {
		return nil, fmt.Errorf("list customer follow-ups: %w", err)
	}

	return followUps, nil
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "%", "\\%")
	s = strings.ReplaceAll(s, "_", "\\_")
	return s
}
