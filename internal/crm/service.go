// AngelaMos | 2026
// service.go

package crm

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/pos-nt/backend/internal/core"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) CreateCustomer(
	ctx context.Context,
	userID string,
	req CreateCustomerRequest,
) (*Customer, error) {
	customer := &Customer{
		ID:      uuid.New().String(),
		UserID:  userID,
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
		Notes:   req.Notes,
	}

	if err := s.repo.CreateCustomer(ctx, customer); err != nil {
		return nil, err
	}

	return customer, nil
}

func (s *Service) GetCustomer(
	ctx context.Context,
	userID, id string,
) (*Customer, error) {
	return s.repo.GetCustomer(ctx, userID, id)
}

func (s *Service) UpdateCustomer(
	ctx context.Context,
	userID, id string,
	req UpdateCustomerRequest,
) (*Customer, error) {
	customer, err := s.repo.GetCustomer(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		customer.Name = *req.Name
	}
	if req.Email != nil {
		customer.Email = *req.Email
	}
	if req.Phone != nil {
		customer.Phone = *req.Phone
	}
	if req.Address != nil {
		customer.Address = *req.Address
	}
	if req.Notes != nil {
		customer.Notes = *req.Notes
	}

	if err := s.repo.UpdateCustomer(ctx, customer); err != nil {
		return nil, err
	}

	return customer, nil
}

func (s *Service) DeleteCustomer(
	ctx context.Context,
	userID, id string,
) error {
	return s.repo.DeleteCustomer(ctx, userID, id)
}

func (s *Service) ListCustomers(
	ctx context.Context,
	userID string,
	params ListCustomersParams,
) ([]Customer, int, error) {
	return s.repo.ListCustomers(ctx, userID, params)
}

// CreateFollowUp verifies the customer belongs to the user before attaching
// the reminder.
func (s *Service) CreateFollowUp(
	ctx context.Context,
	userID string,
	req CreateFollowUpRequest,
) (*FollowUp, error) {
	if _, err := s.repo.GetCustomer(ctx, userID, req.CustomerID); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, fmt.Errorf(
				"create follow-up: unknown customer: %w",
				core.ErrInvalidInput,
			)
		}
		return nil, err
	}

	followUp := &FollowUp{
		ID:         uuid.New().String(),
		CustomerID: req.CustomerID,
		UserID:     userID,
		Note:       req.Note,
		DueAt:      req.DueAt,
	}

	if err := s.repo.CreateFollowUp(ctx, followUp); err != nil {
		return nil, err
	}

	return followUp, nil
}

func (s *Service) CompleteFollowUp(
	ctx context.Context,
	userID, id string,
) error {
	return s.repo.CompleteFollowUp(ctx, userID, id)
}

func (s *Service) ListFollowUps(
	ctx context.Context,
	userID string,
	pendingOnly bool,
) ([]FollowUp, error) {
	return s.repo.ListFollowUps(ctx, userID, pendingOnly)
}

func (s *Service) ListCustomerFollowUps(
	ctx context.Context,
	userID, customerID string,
) ([]FollowUp, error) {
	return s.repo.ListCustomerFollowUps(ctx, userID, customerID)
}
