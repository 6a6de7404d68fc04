// AngelaMos | 2026
// entity.go

package product

import (
	"time"
)

type Product struct {
	ID          string     `db:"id"`
	UserID      string     `db:"user_id"`
	Name        string     `db:"name"`
	Description string     `db:"description"`
	Barcode     string     `db:"barcode"`
	Category    string     `db:"category"`
	Price       float64    `db:"price"`
	Cost        float64    `db:"cost"`
	Stock       int        `db:"stock"`
	MinStock    int        `db:"min_stock"`
	IsActive    bool       `db:"is_active"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
	DeletedAt   *time.Time `db:"deleted_at"`
}

// LowStock reports whether the product has fallen to or below its alert
// threshold.
func (p *Product) LowStock() bool {
	return p.MinStock > 0 && p.Stock <= p.MinStock
}
