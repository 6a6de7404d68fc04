// AngelaMos | 2026
// dto.go

package product

import (
	"time"
)

type CreateProductRequest struct {
	Name        string  `json:"name"        validate:"required,min=1,max=200"`
	Description string  `json:"description" validate:"omitempty,max=1000"`
	Barcode     string  `json:"barcode"     validate:"omitempty,max=64"`
	Category    string  `json:"category"    validate:"omitempty,max=100"`
	Price       float64 `json:"price"       validate:"required,gt=0"`
	Cost        float64 `json:"cost"        validate:"omitempty,gte=0"`
	Stock       int     `json:"stock"       validate:"omitempty,gte=0"`
	MinStock    int     `json:"min_stock"   validate:"omitempty,gte=0"`
}

type UpdateProductRequest struct {
	Name        *string  `json:"name"        validate:"omitempty,min=1,max=200"`
	Description *string  `json:"description" validate:"omitempty,max=1000"`
	Barcode     *string  `json:"barcode"     validate:"omitempty,max=64"`
	Category    *string  `json:"category"    validate:"omitempty,max=100"`
	Price       *float64 `json:"price"       validate:"omitempty,gt=0"`
	Cost        *float64 `json:"cost"        validate:"omitempty,gte=0"`
	Stock       *int     `json:"stock"       validate:"omitempty,gte=0"`
	MinStock    *int     `json:"min_stock"   validate:"omitempty,gte=0"`
	IsActive    *bool    `json:"is_active"`
}

type AdjustStockRequest struct {
	Delta int `json:"delta" validate:"required"`
}

type ListProductsParams struct {
	Page       int
	PageSize   int
	Search     string
	Category   string
	ActiveOnly bool
}

func (p *ListProductsParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 || p.PageSize > 100 {
		p.PageSize = 20
	}
}

func (p *ListProductsParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

type ProductResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Barcode     string    `json:"barcode,omitempty"`
	Category    string    `json:"category,omitempty"`
	Price       float64   `json:"price"`
	Cost        float64   `json:"cost"`
	Stock       int       `json:"stock"`
	MinStock    int       `json:"min_stock"`
	LowStock    bool      `json:"low_stock"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func ToResponse(p *Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Barcode:     p.Barcode,
		Category:    p.Category,
		Price:       p.Price,
		Cost:        p.Cost,
		Stock:       p.Stock,
		MinStock:    p.MinStock,
		LowStock:    p.LowStock(),
		IsActive:    p.IsActive,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func ToResponseList(products []Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(products))
	for i := range products {
		out = append(out, ToResponse(&products[i]))
	}
	return out
}
