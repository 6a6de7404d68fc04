// AngelaMos | 2026
// dto.go

package sale

import (
	"time"
)

type SaleLineRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity"   validate:"required,gt=0"`
}

type CreateSaleRequest struct {
	PaymentMethod string            `json:"payment_method" validate:"required,oneof=cash card transfer"`
	CustomerID    *string           `json:"customer_id"    validate:"omitempty,uuid"`
	Notes         string            `json:"notes"          validate:"omitempty,max=500"`
	Items         []SaleLineRequest `json:"items"          validate:"required,min=1,max=100,dive"`
}

type ListSalesParams struct {
	Page     int
	PageSize int
	From     time.Time
	To       time.Time
}

func (p *ListSalesParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 || p.PageSize > 100 {
		p.PageSize = 20
	}
}

func (p *ListSalesParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

type SaleItemResponse struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	Subtotal  float64 `json:"subtotal"`
}

type SaleResponse struct {
	ID            string             `json:"id"`
	Total         float64            `json:"total"`
	PaymentMethod string             `json:"payment_method"`
	CustomerID    *string            `json:"customer_id,omitempty"`
	Notes         string             `json:"notes,omitempty"`
	Items         []SaleItemResponse `json:"items,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
}

type DailyStatsResponse struct {
	SaleCount int     `json:"sale_count"`
	Total     float64 `json:"total"`
	ItemCount int     `json:"item_count"`
}

func ToResponse(s *Sale) SaleResponse {
	items := make([]SaleItemResponse, 0, len(s.Items))
	for _, item := range s.Items {
		items = append(items, SaleItemResponse{
			ProductID: item.ProductID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Subtotal:  item.Subtotal,
		})
	}

	return SaleResponse{
		ID:            s.ID,
		Total:         s.Total,
		PaymentMethod: s.PaymentMethod,
		CustomerID:    s.CustomerID,
		Notes:         s.Notes,
		Items:         items,
		CreatedAt:     s.CreatedAt,
	}
}

func ToResponseList(sales []Sale) []SaleResponse {
	out := make([]SaleResponse, 0, len(sales))
	for i := range sales {
		out = append(out, ToResponse(&sales[i]))
	}
	return out
}
