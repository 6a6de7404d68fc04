// AngelaMos | 2026
// service.go

package sale

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pos-nt/backend/internal/core"
	"github.com/pos-nt/backend/internal/middleware"
	"github.com/pos-nt/backend/internal/notify"
	"github.com/pos-nt/backend/internal/product"
)

// ProductSource resolves line-item products; unit prices always come from
// the catalog, never from the request.
type ProductSource interface {
	Get(ctx context.Context, userID, id string) (*product.Product, error)
}

type Service struct {
	repo     Repository
	products ProductSource
	notifier *notify.Notifier
	logger   *slog.Logger
}

func NewService(
	repo Repository,
	products ProductSource,
	notifier *notify.Notifier,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:     repo,
		products: products,
		notifier: notifier,
		logger:   logger,
	}
}

func (s *Service) CountForUserSince(
	ctx context.Context,
	userID string,
	since time.Time,
) (int, error) {
	return s.repo.CountForUserSince(ctx, userID, since)
}

func (s *Service) Create(
	ctx context.Context,
	userID string,
	req CreateSaleRequest,
) (*Sale, error) {
	if !ValidPaymentMethod(req.PaymentMethod) {
		return nil, fmt.Errorf(
			"create sale: invalid payment method %q: %w",
			req.PaymentMethod,
			core.ErrInvalidInput,
		)
	}

	sale := &Sale{
		ID:            uuid.New().String(),
		UserID:        userID,
		PaymentMethod: req.PaymentMethod,
		CustomerID:    req.CustomerID,
		Notes:         req.Notes,
		Items:         make([]SaleItem, 0, len(req.Items)),
	}

	for _, line := range req.Items {
		p, err := s.products.Get(ctx, userID, line.ProductID)
		if err != nil {
			if errors.Is(err, core.ErrNotFound) {
				return nil, fmt.Errorf(
					"create sale: unknown product %s: %w",
					line.ProductID,
					core.ErrInvalidInput,
				)
			}
			return nil, fmt.Errorf("resolve product: %w", err)
		}

		if !p.IsActive {
			return nil, fmt.Errorf(
				"create sale: product %s is inactive: %w",
				p.Name,
				core.ErrInvalidInput,
			)
		}

		subtotal := p.Price * float64(line.Quantity)
		sale.Items = append(sale.Items, SaleItem{
			ID:        uuid.New().String(),
			ProductID: p.ID,
			Name:      p.Name,
			Quantity:  line.Quantity,
			UnitPrice: p.Price,
			Subtotal:  subtotal,
		})
		sale.Total += subtotal
	}

	if err := s.repo.Create(ctx, sale); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		itemCount := 0
		for _, item := range sale.Items {
			itemCount += item.Quantity
		}
		s.notifier.SaleCreated(ctx, notify.SaleEvent{
			OwnerID:       sale.UserID,
			Total:         sale.Total,
			PaymentMethod: sale.PaymentMethod,
			ItemCount:     itemCount,
		})
	}

	return sale, nil
}

func (s *Service) Get(ctx context.Context, userID, id string) (*Sale, error) {
	return s.repo.GetByID(ctx, userID, id)
}

func (s *Service) Delete(ctx context.Context, userID, id string) error {
	return s.repo.Delete(ctx, userID, id)
}

func (s *Service) List(
	ctx context.Context,
	userID string,
	params ListSalesParams,
) ([]Sale, int, error) {
	return s.repo.List(ctx, userID, params)
}

// TodayStats summarizes the user's sales since local midnight.
func (s *Service) TodayStats(
	ctx context.Context,
	userID string,
) (*DailyStats, error) {
	now := time.Now()
	midnight := time.Date(
		now.Year(), now.Month(), now.Day(),
		0, 0, 0, 0, now.Location(),
	)

	return s.repo.StatsForUser(ctx, userID, midnight, now)
}

// SendDailySummaries pushes each user's day totals through the notifier. It
// is meant to run once per day from the scheduler.
func (s *Service) SendDailySummaries(ctx context.Context) error {
	now := time.Now()
	midnight := time.Date(
		now.Year(), now.Month(), now.Day(),
		0, 0, 0, 0, now.Location(),
	)

	stats, err := s.repo.StatsForRange(ctx, midnight, now)
	if err != nil {
		return fmt.Errorf("daily summary stats: %w", err)
	}

	for _, st := range stats {
		s.notifier.DailySummary(ctx, notify.SummaryEvent{
			OwnerID:   st.UserID,
			Date:      midnight,
			SaleCount: st.SaleCount,
			Total:     st.Total,
			ItemCount: st.ItemCount,
		})
	}

	s.logger.Info("daily summaries sent", "users", len(stats))

	return nil
}

var _ middleware.SaleCounter = (*Service)(nil)
