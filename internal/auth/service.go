// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pos-nt/backend/internal/config"
	"github.com/pos-nt/backend/internal/core"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountInactive    = errors.New("account is inactive")
	ErrEmailExists        = errors.New("email already exists")
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")
)

const (
	trialPeriod      = 30 * 24 * time.Hour
	resetTokenExpiry = time.Hour
	resetTokenBytes  = 32
)

type UserInfo struct {
	ID            string
	Email         string
	Name          string
	Phone         string
	PasswordHash  string
	Role          string
	Active        bool
	PlanType      string
	PlanExpiresAt *time.Time
	CreatedAt     time.Time
}

type CreateUserParams struct {
	Email         string
	PasswordHash  string
	Name          string
	Phone         string
	Role          string
	PlanType      string
	PlanExpiresAt *time.Time
}

type UserProvider interface {
	GetByEmail(ctx context.Context, email string) (*UserInfo, error)
	GetByID(ctx context.Context, id string) (*UserInfo, error)
	// Create persists a new account. An empty Role defaults to the
	// lowest-privilege role (seller).
	Create(ctx context.Context, params CreateUserParams) (*UserInfo, error)
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
	RecordLogin(ctx context.Context, userID string) error
	StorePasswordReset(
		ctx context.Context,
		userID, tokenHash string,
		expiresAt time.Time,
	) error
	ConsumePasswordReset(
		ctx context.Context,
		email, tokenHash string,
	) (*UserInfo, error)
}

type Mailer interface {
	SendPasswordReset(ctx context.Context, to, token string) error
}

type Service struct {
	repo      Repository
	jwt       *JWTManager
	users     UserProvider
	blacklist *Blacklist
	mailer    Mailer
	jwtCfg    config.JWTConfig
	logger    *slog.Logger
}

func NewService(
	repo Repository,
	jwtManager *JWTManager,
	users UserProvider,
	blacklist *Blacklist,
	mailer Mailer,
	jwtCfg config.JWTConfig,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		repo:      repo,
		jwt:       jwtManager,
		users:     users,
		blacklist: blacklist,
		mailer:    mailer,
		jwtCfg:    jwtCfg,
		logger:    logger,
	}
}

func (s *Service) Login(
	ctx context.Context,
	req LoginRequest,
) (*AuthResponse, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			//nolint:errcheck // timing attack prevention - always verify to prevent enumeration
			_, _, _ = core.VerifyPasswordTimingSafe(req.Password, nil)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	valid, newHash, err := core.VerifyPasswordTimingSafe(
		req.Password,
		&user.PasswordHash,
	)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}

	if !valid {
		return nil, ErrInvalidCredentials
	}

	if !user.Active {
		return nil, ErrAccountInactive
	}

	if newHash != "" {
		//nolint:errcheck // best-effort rehash upgrade
		_ = s.users.UpdatePassword(ctx, user.ID, newHash)
	}

	//nolint:errcheck // last-login bookkeeping never blocks a login
	_ = s.users.RecordLogin(ctx, user.ID)

	return s.createAuthResponse(ctx, user)
}

// Register creates a seller account on the free tier with a trial period.
func (s *Service) Register(
	ctx context.Context,
	req RegisterRequest,
) (*AuthResponse, error) {
	passwordHash, err := core.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	trialEnd := time.Now().Add(trialPeriod)

	// Role is left empty so the provider assigns its lowest-privilege
	// default (seller). Elevation is an admin operation, never self-service.
	user, err := s.users.Create(ctx, CreateUserParams{
		Email:         req.Email,
		PasswordHash:  passwordHash,
		Name:          req.Name,
		Phone:         req.Phone,
		PlanType:      "free",
		PlanExpiresAt: &trialEnd,
	})
	if err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return s.createAuthResponse(ctx, user)
}

// Refresh exchanges a valid refresh token for a fresh access token pair.
func (s *Service) Refresh(
	ctx context.Context,
	refreshToken string,
) (*AuthResponse, error) {
	claims, err := s.jwt.VerifyRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, core.ErrTokenExpired) {
			return nil, fmt.Errorf("refresh: %w", core.ErrTokenExpired)
		}
		return nil, fmt.Errorf("refresh: %w", core.ErrTokenInvalid)
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, fmt.Errorf("refresh: %w", core.ErrTokenInvalid)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if !user.Active {
		return nil, ErrAccountInactive
	}

	return s.createAuthResponse(ctx, user)
}

// IssueAccessToken mints an access token and records its hash in the user's
// active-token list before handing the token out. A token that was signed but
// never recorded does not exist as far as the gate is concerned.
func (s *Service) IssueAccessToken(
	ctx context.Context,
	userID string,
) (string, error) {
	token, expiresAt, err := s.jwt.CreateAccessToken(userID)
	if err != nil {
		return "", fmt.Errorf("create access token: %w", err)
	}

	record := &TokenRecord{
		ID:        uuid.New().String(),
		UserID:    userID,
		TokenHash: core.HashToken(token),
		ExpiresAt: expiresAt,
	}

	if err := s.repo.Add(ctx, record); err != nil {
		return "", fmt.Errorf("store access token: %w", err)
	}

	return token, nil
}

// Logout revokes the presented access token: it joins the blacklist and
// leaves the active-token list in the same operation.
func (s *Service) Logout(
	ctx context.Context,
	userID, accessToken string,
) error {
	if err := s.blacklist.Add(ctx, accessToken, ReasonLogout); err != nil {
		return fmt.Errorf("blacklist token: %w", err)
	}

	if err := s.repo.Remove(ctx, userID, core.HashToken(accessToken)); err != nil {
		return fmt.Errorf("remove token: %w", err)
	}

	return nil
}

// LogoutAll drops every active token for the user. Only the presented token
// can be blacklisted directly; the rest die on the active-list check.
func (s *Service) LogoutAll(
	ctx context.Context,
	userID, currentToken string,
) error {
	if err := s.blacklist.Add(ctx, currentToken, ReasonSecurity); err != nil {
		return fmt.Errorf("blacklist token: %w", err)
	}

	removed, err := s.repo.RemoveAllForUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("remove all tokens: %w", err)
	}

	s.logger.Info("all sessions revoked",
		"user_id", userID,
		"tokens_removed", removed,
	)

	return nil
}

func (s *Service) ChangePassword(
	ctx context.Context,
	userID, currentPassword, newPassword, currentToken string,
) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}

	valid, _, err := core.VerifyPasswordWithRehash(
		currentPassword,
		user.PasswordHash,
	)
	if err != nil {
		return fmt.Errorf("verify password: %w", err)
	}

	if !valid {
		return ErrInvalidCredentials
	}

	newHash, err := core.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.users.UpdatePassword(ctx, userID, newHash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	if err := s.LogoutAll(ctx, userID, currentToken); err != nil {
		return fmt.Errorf("logout all: %w", err)
	}

	return nil
}

// ForgotPassword issues a one-time reset token and mails it. Unknown emails
// succeed silently so the endpoint cannot be used for enumeration.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("get user: %w", err)
	}

	token, err := core.GenerateSecureToken(resetTokenBytes)
	if err != nil {
		return fmt.Errorf("generate reset token: %w", err)
	}

	expiresAt := time.Now().Add(resetTokenExpiry)
	tokenHash := core.HashToken(token)

	if err := s.users.StorePasswordReset(ctx, user.ID, tokenHash, expiresAt); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}

	if err := s.mailer.SendPasswordReset(ctx, user.Email, token); err != nil {
		s.logger.Error("password reset email failed",
			"error", err,
			"user_id", user.ID,
		)
		return fmt.Errorf("send reset email: %w", err)
	}

	return nil
}

func (s *Service) ResetPassword(
	ctx context.Context,
	email, token, newPassword string,
) error {
	user, err := s.users.ConsumePasswordReset(ctx, email, core.HashToken(token))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return ErrInvalidResetToken
		}
		return fmt.Errorf("consume reset token: %w", err)
	}

	newHash, err := core.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.users.UpdatePassword(ctx, user.ID, newHash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	// Existing sessions are stale credentials after a reset.
	if _, err := s.repo.RemoveAllForUser(ctx, user.ID); err != nil {
		return fmt.Errorf("remove all tokens: %w", err)
	}

	return nil
}

// PurgeExpiredTokens removes token rows past the retention window. Run from
// the maintenance scheduler.
func (s *Service) PurgeExpiredTokens(
	ctx context.Context,
	retention time.Duration,
) (int64, error) {
	return s.repo.DeleteExpired(ctx, retention)
}

func (s *Service) createAuthResponse(
	ctx context.Context,
	user *UserInfo,
) (*AuthResponse, error) {
	accessToken, err := s.IssueAccessToken(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	refreshToken, _, err := s.jwt.CreateRefreshToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("create refresh token: %w", err)
	}

	expiresIn := int(s.jwtCfg.AccessTokenExpire / time.Second)

	return &AuthResponse{
		User: UserResponse{
			ID:            user.ID,
			Email:         user.Email,
			Name:          user.Name,
			Phone:         user.Phone,
			Role:          user.Role,
			PlanType:      user.PlanType,
			PlanExpiresAt: user.PlanExpiresAt,
			CreatedAt:     user.CreatedAt,
		},
		Tokens: TokenResponse{
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			TokenType:    "Bearer",
			ExpiresIn:    expiresIn,
			ExpiresAt:    time.Now().Add(s.jwtCfg.AccessTokenExpire),
		},
	}, nil
}
