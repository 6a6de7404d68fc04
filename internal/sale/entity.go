// AngelaMos | 2026
// entity.go

package sale

import (
	"time"
)

const (
	PaymentCash     = "cash"
	PaymentCard     = "card"
	PaymentTransfer = "transfer"
)

type Sale struct {
	ID            string    `db:"id"`
	UserID        string    `db:"user_id"`
	Total         float64   `db:"total"`
	PaymentMethod string    `db:"payment_method"`
	CustomerID    *string   `db:"customer_id"`
	Notes         string    `db:"notes"`
	CreatedAt     time.Time `db:"created_at"`

	Items []SaleItem `db:"-"`
}

type SaleItem struct {
	ID        string  `db:"id"`
	SaleID    string  `db:"sale_id"`
	ProductID string  `db:"product_id"`
	Name      string  `db:"name"`
	Quantity  int     `db:"quantity"`
	UnitPrice float64 `db:"unit_price"`
	Subtotal  float64 `db:"subtotal"`
}

// DailyStats aggregates one user's sales for a single day.
type DailyStats struct {
	UserID    string  `db:"user_id"`
	SaleCount int     `db:"sale_count"`
	Total     float64 `db:"total"`
	ItemCount int     `db:"item_count"`
}

func ValidPaymentMethod(method string) bool {
	switch method {
	case PaymentCash, PaymentCard, PaymentTransfer:
		return true
	}
	return false
}
