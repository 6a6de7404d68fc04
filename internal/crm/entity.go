// AngelaMos | 2026
// entity.go

package crm

import (
	"time"
)

type Customer struct {
	ID        string     `db:"id"`
	UserID    string     `db:"user_id"`
	Name      string     `db:"name"`
	Email     string     `db:"email"`
	Phone     string     `db:"phone"`
	Address   string     `db:"address"`
	Notes     string     `db:"notes"`
	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt time.Time  `db:"updated_at"`
	DeletedAt *time.Time `db:"deleted_at"`
}

// FollowUp is a dated reminder attached to a customer.
type FollowUp struct {
	ID         string     `db:"id"`
	CustomerID string     `db:"customer_id"`
	UserID     string     `db:"user_id"`
	Note       string     `db:"note"`
	DueAt      time.Time  `db:"due_at"`
	DoneAt     *time.Time `db:"done_at"`
	CreatedAt  time.Time  `db:"created_at"`
}

func (f *FollowUp) IsDone() bool {
	return f.DoneAt != nil
}
