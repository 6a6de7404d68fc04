// AngelaMos | 2026
// service_test.go

package sale

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pos-nt/backend/internal/core"
	"github.com/pos-nt/backend/internal/product"
)

type stubRepo struct {
	created *Sale
	err     error
}

func (s *stubRepo) Create(_ context.Context, sale *Sale) error {
	s.created = sale
	return s.err
}

func (s *stubRepo) GetByID(_ context.Context, _, _ string) (*Sale, error) {
	return nil, core.ErrNotFound
}

func (s *stubRepo) Delete(_ context.Context, _, _ string) error {
	return nil
}

func (s *stubRepo) List(
	_ context.Context,
	_ string,
	_ ListSalesParams,
) ([]Sale, int, error) {
	return nil, 0, nil
}

func (s *stubRepo) CountForUserSince(
	_ context.Context,
	_ string,
	_ time.Time,
) (int, error) {
	return 0, nil
}

func (s *stubRepo) StatsForRange(
	_ context.Context,
	_, _ time.Time,
) ([]DailyStats, error) {
	return nil, nil
}

func (s *stubRepo) StatsForUser(
	_ context.Context,
	_ string,
	_, _ time.Time,
) (*DailyStats, error) {
	return &DailyStats{}, nil
}

type stubProducts struct {
	catalog map[string]*product.Product
}

func (s *stubProducts) Get(
	_ context.Context,
	_, id string,
) (*product.Product, error) {
	p, ok := s.catalog[id]
	if !ok {
		return nil, fmt.Errorf("product: %w", core.ErrNotFound)
	}
	return p, nil
}

func newTestService(repo *stubRepo, products *stubProducts) *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(repo, products, nil, logger)
}

func TestCreateSaleResolvesPricesFromCatalog(t *testing.T) {
	repo := &stubRepo{}
	products := &stubProducts{catalog: map[string]*product.Product{
		"p1": {ID: "p1", Name: "Cafe", Price: 10.50, IsActive: true},
		"p2": {ID: "p2", Name: "Pan", Price: 2.25, IsActive: true},
	}}
	svc := newTestService(repo, products)

	sale, err := svc.Create(context.Background(), "user-1", CreateSaleRequest{
		PaymentMethod: PaymentCash,
		Items: []SaleLineRequest{
			{ProductID: "p1", Quantity: 2},
			{ProductID: "p2", Quantity: 4},
		},
	})
	require.NoError(t, err)

	assert.InDelta(t, 30.0, sale.Total, 0.001)
	require.Len(t, sale.Items, 2)
	assert.Equal(t, 10.50, sale.Items[0].UnitPrice)
	assert.InDelta(t, 21.0, sale.Items[0].Subtotal, 0.001)
	assert.Equal(t, "Cafe", sale.Items[0].Name)
	assert.Same(t, sale, repo.created)
}

func TestCreateSaleRejectsUnknownProduct(t *testing.T) {
	repo := &stubRepo{}
	products := &stubProducts{catalog: map[string]*product.Product{}}
	svc := newTestService(repo, products)

	_, err := svc.Create(context.Background(), "user-1", CreateSaleRequest{
		PaymentMethod: PaymentCash,
		Items:         []SaleLineRequest{{ProductID: "missing", Quantity: 1}},
	})

	assert.ErrorIs(t, err, core.ErrInvalidInput)
	assert.Nil(t, repo.created)
}

func TestCreateSaleRejectsInactiveProduct(t *testing.T) {
	repo := &stubRepo{}
	products := &stubProducts{catalog: map[string]*product.Product{
		"p1": {ID: "p1", Name: "Cafe", Price: 10.50, IsActive: false},
	}}
	svc := newTestService(repo, products)

	_, err := svc.Create(context.Background(), "user-1", CreateSaleRequest{
		PaymentMethod: PaymentCard,
		Items:         []SaleLineRequest{{ProductID: "p1", Quantity: 1}},
	})

	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestCreateSaleRejectsInvalidPaymentMethod(t *testing.T) {
	svc := newTestService(&stubRepo{}, &stubProducts{})

	_, err := svc.Create(context.Background(), "user-1", CreateSaleRequest{
		PaymentMethod: "bitcoin",
		Items:         []SaleLineRequest{{ProductID: "p1", Quantity: 1}},
	})

	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestCreateSalePropagatesRepositoryError(t *testing.T) {
	repo := &stubRepo{err: fmt.Errorf("insufficient stock: %w", core.ErrInvalidInput)}
	products := &stubProducts{catalog: map[string]*product.Product{
		"p1": {ID: "p1", Name: "Cafe", Price: 1, IsActive: true},
	}}
	svc := newTestService(repo, products)

	_, err := svc.Create(context.Background(), "user-1", CreateSaleRequest{
		PaymentMethod: PaymentTransfer,
		Items:         []SaleLineRequest{{ProductID: "p1", Quantity: 99}},
	})

	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestValidPaymentMethod(t *testing.T) {
	assert.True(t, ValidPaymentMethod(PaymentCash))
	assert.True(t, ValidPaymentMethod(PaymentCard))
	assert.True(t, ValidPaymentMethod(PaymentTransfer))
	assert.False(t, ValidPaymentMethod("check"))
	assert.False(t, ValidPaymentMethod(""))
}
