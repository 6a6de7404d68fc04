// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pos-nt/backend/internal/auth"
	"github.com/pos-nt/backend/internal/core"
	"github.com/pos-nt/backend/internal/middleware"
	"github.com/pos-nt/backend/internal/plan"
)

type Service struct {
	repo   Repository
	policy *plan.Policy
}

func NewService(repo Repository, policy *plan.Policy) *Service {
	return &Service{repo: repo, policy: policy}
}

// FindActiveByToken resolves the identity for the authorization gate. The
// token must be in the user's active list; an inactive account is reported
// distinctly so the gate can collapse both cases into one response.
func (s *Service) FindActiveByToken(
	ctx context.Context,
	userID, token string,
) (*middleware.AuthUser, error) {
	user, err := s.repo.GetByActiveToken(ctx, userID, core.HashToken(token))
	if err != nil {
		return nil, err
	}

	if !user.IsActive {
		return nil, fmt.Errorf("find user: %w", core.ErrUserInactive)
	}

	return s.toAuthUser(user), nil
}

func (s *Service) FindActiveByID(
	ctx context.Context,
	userID string,
) (*middleware.AuthUser, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !user.IsActive {
		return nil, fmt.Errorf("find user: %w", core.ErrUserInactive)
	}

	return s.toAuthUser(user), nil
}

func (s *Service) DemotePlan(ctx context.Context, userID string) error {
	return s.repo.DemotePlan(ctx, userID)
}

func (s *Service) CountCreatedBy(
	ctx context.Context,
	userID string,
) (int, error) {
	return s.repo.CountCreatedBy(ctx, userID)
}

func (s *Service) GetByEmail(
	ctx context.Context,
	email string,
) (*auth.UserInfo, error) {
	user, err := s.repo.GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) GetByID(
	ctx context.Context,
	id string,
) (*auth.UserInfo, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) Create(
	ctx context.Context,
	params auth.CreateUserParams,
) (*auth.UserInfo, error) {
	role := params.Role
	if role == "" {
		role = RoleSeller
	}
	if !ValidRole(role) {
		return nil, fmt.Errorf(
			"create user: invalid role %q: %w",
			role,
			core.ErrInvalidInput,
		)
	}

	planType := params.PlanType
	if planType == "" {
		planType = string(plan.TierFree)
	}

	user := &User{
		ID:            uuid.New().String(),
		Email:         strings.ToLower(params.Email),
		PasswordHash:  params.PasswordHash,
		Name:          params.Name,
		Phone:         params.Phone,
		Role:          role,
		IsActive:      true,
		PlanType:      planType,
		PlanExpiresAt: params.PlanExpiresAt,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) UpdatePassword(
	ctx context.Context,
	userID, passwordHash string,
) error {
	return s.repo.UpdatePassword(ctx, userID, passwordHash)
}

func (s *Service) RecordLogin(ctx context.Context, userID string) error {
	return s.repo.RecordLogin(ctx, userID)
}

func (s *Service) StorePasswordReset(
	ctx context.Context,
	userID, tokenHash string,
	expiresAt time.Time,
) error {
	return s.repo.SetPasswordReset(ctx, userID, tokenHash, expiresAt)
}

func (s *Service) ConsumePasswordReset(
	ctx context.Context,
	email, tokenHash string,
) (*auth.UserInfo, error) {
	user, err := s.repo.ConsumePasswordReset(
		ctx,
		strings.ToLower(email),
		tokenHash,
	)
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

// CreateStaff provisions an account under the creator. Staff inherit the
// creator's plan so their requests pass the same plan gate.
func (s *Service) CreateStaff(
	ctx context.Context,
	creatorID string,
	req CreateStaffRequest,
) (*User, error) {
	if !ValidRole(req.Role) || req.Role == RoleAdmin {
		return nil, fmt.Errorf(
			"create staff: invalid role %q: %w",
			req.Role,
			core.ErrInvalidInput,
		)
	}

	creator, err := s.repo.GetByID(ctx, creatorID)
	if err != nil {
		return nil, err
	}

	passwordHash, err := core.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &User{
		ID:            uuid.New().String(),
		Email:         strings.ToLower(req.Email),
		PasswordHash:  passwordHash,
		Name:          req.Name,
		Phone:         req.Phone,
		Role:          req.Role,
		IsActive:      true,
		PlanType:      creator.PlanType,
		PlanExpiresAt: creator.PlanExpiresAt,
		CreatedBy:     &creatorID,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *Service) GetUser(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) UpdateUser(
	ctx context.Context,
	id string,
	req UpdateUserRequest,
) (*User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.Role != nil {
		if !ValidRole(*req.Role) {
			return nil, fmt.Errorf(
				"update user: invalid role %q: %w",
				*req.Role,
				core.ErrInvalidInput,
			)
		}
		user.Role = *req.Role
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *Service) SetActive(
	ctx context.Context,
	id string,
	active bool,
) error {
	return s.repo.SetActive(ctx, id, active)
}

// UpdatePlan moves a user to a new tier with a fresh expiry.
func (s *Service) UpdatePlan(
	ctx context.Context,
	id, planType string,
	expiresAt *time.Time,
) (*User, error) {
	if !plan.ValidTier(plan.Tier(planType)) {
		return nil, fmt.Errorf(
			"update plan: invalid tier %q: %w",
			planType,
			core.ErrInvalidInput,
		)
	}

	if err := s.repo.UpdatePlan(ctx, id, planType, expiresAt); err != nil {
		return nil, err
	}

	return s.repo.GetByID(ctx, id)
}

func (s *Service) DeleteUser(
	ctx context.Context,
	requesterID, targetID string,
) error {
	if requesterID == targetID {
		return fmt.Errorf(
			"cannot delete your own account: %w",
			core.ErrForbidden,
		)
	}

	target, err := s.repo.GetByID(ctx, targetID)
	if err != nil {
		return err
	}

	if target.IsAdmin() {
		return fmt.Errorf("cannot delete admin users: %w", core.ErrForbidden)
	}

	return s.repo.SoftDelete(ctx, targetID)
}

func (s *Service) ListUsers(
	ctx context.Context,
	params ListUsersParams,
) ([]User, int, error) {
	return s.repo.List(ctx, params)
}

func (s *Service) GetMe(ctx context.Context, userID string) (*User, error) {
	if userID == "" {
		return nil, fmt.Errorf("get me: %w", core.ErrUnauthorized)
	}

	return s.repo.GetByID(ctx, userID)
}

func (s *Service) UpdateMe(
	ctx context.Context,
	userID string,
	req UpdateProfileRequest,
) (*User, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *Service) toAuthUser(u *User) *middleware.AuthUser {
	return &middleware.AuthUser{
		ID:            u.ID,
		Email:         u.Email,
		Role:          u.Role,
		PlanType:      u.PlanType,
		PlanExpiresAt: u.PlanExpiresAt,
		PlanFeatures:  s.policy.LimitsFor(plan.Tier(u.PlanType)).Features,
	}
}

func toUserInfo(u *User) *auth.UserInfo {
	return &auth.UserInfo{
		ID:            u.ID,
		Email:         u.Email,
		Name:          u.Name,
		Phone:         u.Phone,
		PasswordHash:  u.PasswordHash,
		Role:          u.Role,
		Active:        u.IsActive,
		PlanType:      u.PlanType,
		PlanExpiresAt: u.PlanExpiresAt,
		CreatedAt:     u.CreatedAt,
	}
}

var (
	_ auth.UserProvider       = (*Service)(nil)
	_ middleware.UserSource   = (*Service)(nil)
	_ middleware.StaffCounter = (*Service)(nil)
)
