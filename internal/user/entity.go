// AngelaMos | 2026
// entity.go

package user

import (
	"time"
)

const (
	RoleAdmin      = "admin"
	RoleSupervisor = "supervisor"
	RoleSeller     = "seller"
)

type User struct {
	ID                  string     `db:"id"`
	Email               string     `db:"email"`
	PasswordHash        string     `db:"password_hash"`
	Name                string     `db:"name"`
	Phone               string     `db:"phone"`
	Role                string     `db:"role"`
	IsActive            bool       `db:"is_active"`
	PlanType            string     `db:"plan_type"`
	PlanExpiresAt       *time.Time `db:"plan_expires_at"`
	PlanLastPayment     *time.Time `db:"plan_last_payment"`
	ResetTokenHash      *string    `db:"reset_token_hash"`
	ResetTokenExpiresAt *time.Time `db:"reset_token_expires_at"`
	LastLoginAt         *time.Time `db:"last_login_at"`
	CreatedBy           *string    `db:"created_by"`
	CreatedAt           time.Time  `db:"created_at"`
	UpdatedAt           time.Time  `db:"updated_at"`
	DeletedAt           *time.Time `db:"deleted_at"`
}

func (u *User) IsDeleted() bool {
	return u.DeletedAt != nil
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleSupervisor, RoleSeller:
		return true
	}
	return false
}
