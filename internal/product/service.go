// AngelaMos | 2026
// service.go

package product

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/pos-nt/backend/internal/middleware"
)

// StockAlerter receives low-stock events. Delivery is best-effort and must
// never block or fail a stock mutation.
type StockAlerter interface {
	LowStock(ctx context.Context, ownerID, name string, stock, minStock int)
}

type Service struct {
	repo    Repository
	alerter StockAlerter
	logger  *slog.Logger
}

func NewService(
	repo Repository,
	alerter StockAlerter,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, alerter: alerter, logger: logger}
}

func (s *Service) CountForUser(
	ctx context.Context,
	userID string,
) (int, error) {
	return s.repo.CountForUser(ctx, userID)
}

func (s *Service) Create(
	ctx context.Context,
	userID string,
	req CreateProductRequest,
) (*Product, error) {
	product := &Product{
		ID:          uuid.New().String(),
		UserID:      userID,
		Name:        req.Name,
		Description: req.Description,
		Barcode:     req.Barcode,
		Category:    req.Category,
		Price:       req.Price,
		Cost:        req.Cost,
		Stock:       req.Stock,
		MinStock:    req.MinStock,
		IsActive:    true,
	}

	if err := s.repo.Create(ctx, product); err != nil {
		return nil, err
	}

	return product, nil
}

func (s *Service) Get(
	ctx context.Context,
	userID, id string,
) (*Product, error) {
	return s.repo.GetByID(ctx, userID, id)
}

func (s *Service) GetByBarcode(
	ctx context.Context,
	userID, barcode string,
) (*Product, error) {
	return s.repo.GetByBarcode(ctx, userID, barcode)
}

func (s *Service) Update(
	ctx context.Context,
	userID, id string,
	req UpdateProductRequest,
) (*Product, error) {
	product, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Barcode != nil {
		product.Barcode = *req.Barcode
	}
	if req.Category != nil {
		product.Category = *req.Category
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if req.Cost != nil {
		product.Cost = *req.Cost
	}
	if req.Stock != nil {
		product.Stock = *req.Stock
	}
	if req.MinStock != nil {
		product.MinStock = *req.MinStock
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, product); err != nil {
		return nil, err
	}

	s.alertIfLow(ctx, product)

	return product, nil
}

// AdjustStock applies a restock or manual correction.
func (s *Service) AdjustStock(
	ctx context.Context,
	userID, id string,
	delta int,
) (*Product, error) {
	product, err := s.repo.AdjustStock(ctx, userID, id, delta)
	if err != nil {
		return nil, err
	}

	s.alertIfLow(ctx, product)

	return product, nil
}

func (s *Service) Delete(ctx context.Context, userID, id string) error {
	return s.repo.SoftDelete(ctx, userID, id)
}

func (s *Service) List(
	ctx context.Context,
	userID string,
	params ListProductsParams,
) ([]Product, int, error) {
	return s.repo.List(ctx, userID, params)
}

func (s *Service) ListLowStock(
	ctx context.Context,
	userID string,
) ([]Product, error) {
	return s.repo.ListLowStock(ctx, userID)
}

func (s *Service) alertIfLow(ctx context.Context, p *Product) {
	if s.alerter == nil || !p.LowStock() {
		return
	}
	s.alerter.LowStock(ctx, p.UserID, p.Name, p.Stock, p.MinStock)
}

var _ middleware.ProductCounter = (*Service)(nil)
