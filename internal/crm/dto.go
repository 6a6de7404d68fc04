// AngelaMos | 2026
// dto.go

package crm

import (
	"time"
)

type CreateCustomerRequest struct {
	Name    string `json:"name"    validate:"required,min=1,max=200"`
	Email   string `json:"email"   validate:"omitempty,email,max=255"`
	Phone   string `json:"phone"   validate:"omitempty,max=20"`
	Address string `json:"address" validate:"omitempty,max=500"`
	Notes   string `json:"notes"   validate:"omitempty,max=1000"`
}

type UpdateCustomerRequest struct {
	Name    *string `json:"name"    validate:"omitempty,min=1,max=200"`
	Email   *string `json:"email"   validate:"omitempty,email,max=255"`
	Phone   *string `json:"phone"   validate:"omitempty,max=20"`
	Address *string `json:"address" validate:"omitempty,max=500"`
	Notes   *string `json:"notes"   validate:"omitempty,max=1000"`
}

type CreateFollowUpRequest struct {
	CustomerID string    `json:"customer_id" validate:"required,uuid"`
	Note       string    `json:"note"        validate:"required,min=1,max=500"`
	DueAt      time.Time `json:"due_at"      validate:"required"`
}

type ListCustomersParams struct {
	Page     int
	PageSize int
	Search   string
}

func (p *ListCustomersParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 || p.PageSize > 100 {
		p.PageSize = 20
	}
}

func (p *ListCustomersParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

type CustomerResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type FollowUpResponse struct {
	ID         string     `json:"id"`
	CustomerID string     `json:"customer_id"`
	Note       string     `json:"note"`
	DueAt      time.Time  `json:"due_at"`
	DoneAt     *time.Time `json:"done_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

func ToCustomerResponse(c *Customer) CustomerResponse {
	return CustomerResponse{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		Address:   c.Address,
		Notes:     c.Notes,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func ToCustomerResponseList(customers []Customer) []CustomerResponse {
	out := make([]CustomerResponse, 0, len(customers))
	for i := range customers {
		out = append(out, ToCustomerResponse(&customers[i]))
	}
	return out
}

func ToFollowUpResponse(f *FollowUp) FollowUpResponse {
	return FollowUpResponse{
		ID:         f.ID,
		CustomerID: f.CustomerID,
		Note:       f.Note,
		DueAt:      f.DueAt,
		DoneAt:     f.DoneAt,
		CreatedAt:  f.CreatedAt,
	}
}

func ToFollowUpResponseList(followUps []FollowUp) []FollowUpResponse {
	out := make([]FollowUpResponse, 0, len(followUps))
	for i := range followUps {
		out = append(out, ToFollowUpResponse(&followUps[i]))
	}
	return out
}
