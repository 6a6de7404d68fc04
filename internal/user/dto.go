// AngelaMos | 2026
// dto.go

package user

import (
	"time"
)

type CreateStaffRequest struct {
	Email    string `json:"email"    validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=128"`
	Name     string `json:"name"     validate:"required,min=1,max=100"`
	Phone    string `json:"phone"    validate:"omitempty,max=20"`
	Role     string `json:"role"     validate:"required,oneof=supervisor seller"`
}

type UpdateUserRequest struct {
	Name  *string `json:"name"  validate:"omitempty,min=1,max=100"`
	Phone *string `json:"phone" validate:"omitempty,max=20"`
	Role  *string `json:"role"  validate:"omitempty,oneof=admin supervisor seller"`
}

type UpdateProfileRequest struct {
	Name  *string `json:"name"  validate:"omitempty,min=1,max=100"`
	Phone *string `json:"phone" validate:"omitempty,max=20"`
}

type SetActiveRequest struct {
	Active bool `json:"active"`
}

type UpdatePlanRequest struct {
	PlanType  string     `json:"plan_type"  validate:"required,oneof=free basic premium enterprise"`
	ExpiresAt *time.Time `json:"expires_at" validate:"omitempty"`
}

type ListUsersParams struct {
	Page       int    `json:"page"`
	PageSize   int    `json:"page_size"`
	Search     string `json:"search"`
	Role       string `json:"role"`
	CreatedBy  string `json:"created_by"`
	ActiveOnly bool   `json:"active_only"`
}

func (p *ListUsersParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 || p.PageSize > 100 {
		p.PageSize = 20
	}
}

func (p *ListUsersParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

type UserResponse struct {
	ID            string     `json:"id"`
	Email         string     `json:"email"`
	Name          string     `json:"name"`
	Phone         string     `json:"phone,omitempty"`
	Role          string     `json:"role"`
	IsActive      bool       `json:"is_active"`
	PlanType      string     `json:"plan_type"`
	PlanExpiresAt *time.Time `json:"plan_expires_at,omitempty"`
	LastLoginAt   *time.Time `json:"last_login_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func ToResponse(u *User) UserResponse {
	return UserResponse{
		ID:            u.ID,
		Email:         u.Email,
		Name:          u.Name,
		Phone:         u.Phone,
		Role:          u.Role,
		IsActive:      u.IsActive,
		PlanType:      u.PlanType,
		PlanExpiresAt: u.PlanExpiresAt,
		LastLoginAt:   u.LastLoginAt,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

func ToResponseList(users []User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for i := range users {
		out = append(out, ToResponse(&users[i]))
	}
	return out
}
