// AngelaMos | 2026
// service_test.go

package product

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pos-nt/backend/internal/core"
)

type stubRepo struct {
	product *Product
	err     error
}

func (s *stubRepo) Create(_ context.Context, _ *Product) error { return s.err }

func (s *stubRepo) GetByID(_ context.Context, _, _ string) (*Product, error) {
	if s.product == nil {
		return nil, core.ErrNotFound
	}
	return s.product, s.err
}

func (s *stubRepo) GetByBarcode(
	_ context.Context,
	_, _ string,
) (*Product, error) {
	return s.product, s.err
}

func (s *stubRepo) Update(_ context.Context, _ *Product) error { return s.err }

func (s *stubRepo) AdjustStock(
	_ context.Context,
	_, _ string,
	delta int,
) (*Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.product.Stock += delta
	return s.product, nil
}

func (s *stubRepo) SoftDelete(_ context.Context, _, _ string) error {
	return s.err
}

func (s *stubRepo) List(
	_ context.Context,
	_ string,
	_ ListProductsParams,
) ([]Product, int, error) {
	return nil, 0, nil
}

func (s *stubRepo) ListLowStock(_ context.Context, _ string) ([]Product, error) {
	return nil, nil
}

func (s *stubRepo) CountForUser(_ context.Context, _ string) (int, error) {
	return 0, nil
}

type capturingAlerter struct {
	calls []string
}

func (c *capturingAlerter) LowStock(
	_ context.Context,
	_, name string,
	_, _ int,
) {
	c.calls = append(c.calls, name)
}

func TestAdjustStockAlertsWhenLow(t *testing.T) {
	repo := &stubRepo{product: &Product{
		ID: "p1", UserID: "user-1", Name: "Cafe", Stock: 10, MinStock: 5,
	}}
	alerter := &capturingAlerter{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewService(repo, alerter, logger)

	p, err := svc.AdjustStock(context.Background(), "user-1", "p1", -6)
	require.NoError(t, err)

	assert.Equal(t, 4, p.Stock)
	assert.Equal(t, []string{"Cafe"}, alerter.calls)
}

func TestAdjustStockNoAlertAboveThreshold(t *testing.T) {
	repo := &stubRepo{product: &Product{
		ID: "p1", UserID: "user-1", Name: "Cafe", Stock: 10, MinStock: 5,
	}}
	alerter := &capturingAlerter{}
	svc := NewService(repo, alerter, nil)

	_, err := svc.AdjustStock(context.Background(), "user-1", "p1", -2)
	require.NoError(t, err)

	assert.Empty(t, alerter.calls)
}

func TestUpdateAlertsWhenStockDropsToThreshold(t *testing.T) {
	repo := &stubRepo{product: &Product{
		ID: "p1", UserID: "user-1", Name: "Pan", Stock: 10, MinStock: 5,
	}}
	alerter := &capturingAlerter{}
	svc := NewService(repo, alerter, nil)

	newStock := 5
	_, err := svc.Update(context.Background(), "user-1", "p1", UpdateProductRequest{
		Stock: &newStock,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"Pan"}, alerter.calls)
}

func TestLowStockThreshold(t *testing.T) {
	assert.False(t, (&Product{Stock: 6, MinStock: 5}).LowStock())
	assert.True(t, (&Product{Stock: 5, MinStock: 5}).LowStock())
	assert.True(t, (&Product{Stock: 0, MinStock: 5}).LowStock())
	// A zero threshold disables alerts entirely.
	assert.False(t, (&Product{Stock: 0, MinStock: 0}).LowStock())
}
