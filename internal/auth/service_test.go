// AngelaMos | 2026
// service_test.go

package auth

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pos-nt/backend/internal/core"
)

type memoryTokenRepo struct {
	records []TokenRecord
}

func (m *memoryTokenRepo) Add(_ context.Context, record *TokenRecord) error {
	m.records = append(m.records, *record)
	return nil
}

func (m *memoryTokenRepo) Remove(
	_ context.Context,
	userID, tokenHash string,
) error {
	kept := m.records[:0]
	for _, r := range m.records {
		if r.UserID != userID || r.TokenHash != tokenHash {
			kept = append(kept, r)
		}
	}
	m.records = kept
	return nil
}

func (m *memoryTokenRepo) RemoveAllForUser(
	_ context.Context,
	userID string,
) (int64, error) {
	var removed int64
	kept := m.records[:0]
	for _, r := range m.records {
		if r.UserID == userID {
			removed++
			continue
		}
		kept = append(kept, r)
	}
	m.records = kept
	return removed, nil
}

func (m *memoryTokenRepo) ListForUser(
	_ context.Context,
	userID string,
) ([]TokenRecord, error) {
	var out []TokenRecord
	for _, r := range m.records {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memoryTokenRepo) DeleteExpired(
	_ context.Context,
	_ time.Duration,
) (int64, error) {
	return 0, nil
}

type stubUserProvider struct {
	byEmail      map[string]*UserInfo
	byID         map[string]*UserInfo
	passwordSet  map[string]string
	loginCount   int
	resetStored  string
	consumeErr   error
	consumedUser *UserInfo
}

func newStubUserProvider(users ...*UserInfo) *stubUserProvider {
	p := &stubUserProvider{
		byEmail:     map[string]*UserInfo{},
		byID:        map[string]*UserInfo{},
		passwordSet: map[string]string{},
	}
	for _, u := range users {
		p.byEmail[u.Email] = u
		p.byID[u.ID] = u
	}
	return p
}

func (p *stubUserProvider) GetByEmail(
	_ context.Context,
	email string,
) (*UserInfo, error) {
	u, ok := p.byEmail[email]
	if !ok {
		return nil, core.ErrNotFound
	}
	return u, nil
}

func (p *stubUserProvider) GetByID(
	_ context.Context,
	id string,
) (*UserInfo, error) {
	u, ok := p.byID[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	return u, nil
}

func (p *stubUserProvider) Create(
	_ context.Context,
	params CreateUserParams,
) (*UserInfo, error) {
	if _, exists := p.byEmail[params.Email]; exists {
		return nil, core.ErrDuplicateKey
	}
	role := params.Role
	if role == "" {
		role = "seller"
	}
	u := &UserInfo{
		ID:            "new-user",
		Email:         params.Email,
		Name:          params.Name,
		PasswordHash:  params.PasswordHash,
		Role:          role,
		Active:        true,
		PlanType:      params.PlanType,
		PlanExpiresAt: params.PlanExpiresAt,
	}
	p.byEmail[u.Email] = u
	p.byID[u.ID] = u
	return u, nil
}

func (p *stubUserProvider) UpdatePassword(
	_ context.Context,
	userID, passwordHash string,
) error {
	p.passwordSet[userID] = passwordHash
	return nil
}

func (p *stubUserProvider) RecordLogin(_ context.Context, _ string) error {
	p.loginCount++
	return nil
}

func (p *stubUserProvider) StorePasswordReset(
	_ context.Context,
	_, tokenHash string,
	_ time.Time,
) error {
	p.resetStored = tokenHash
	return nil
}

func (p *stubUserProvider) ConsumePasswordReset(
	_ context.Context,
	_, _ string,
) (*UserInfo, error) {
	if p.consumeErr != nil {
		return nil, p.consumeErr
	}
	return p.consumedUser, nil
}

type stubMailer struct {
	sentTo    string
	sentToken string
	err       error
}

func (m *stubMailer) SendPasswordReset(
	_ context.Context,
	to, token string,
) error {
	m.sentTo = to
	m.sentToken = token
	return m.err
}

func newTestAuthService(
	t *testing.T,
	users *stubUserProvider,
	mailer Mailer,
) (*Service, *memoryTokenRepo) {
	t.Helper()

	m := newTestJWTManager(t, time.Hour)
	repo := &memoryTokenRepo{}
	bl, _ := newTestBlacklist(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	svc := NewService(repo, m, users, bl, mailer, m.config, logger)
	return svc, repo
}

func activeUser(t *testing.T, password string) *UserInfo {
	t.Helper()

	hash, err := core.HashPassword(password)
	require.NoError(t, err)

	return &UserInfo{
		ID:           "user-1",
		Email:        "owner@example.com",
		Name:         "Owner",
		PasswordHash: hash,
		Role:         "admin",
		Active:       true,
		PlanType:     "free",
	}
}

func TestLoginIssuesRecordedToken(t *testing.T) {
	users := newStubUserProvider(activeUser(t, "secreta123"))
	svc, repo := newTestAuthService(t, users, &stubMailer{})

	resp, err := svc.Login(context.Background(), LoginRequest{
		Email:    "owner@example.com",
		Password: "secreta123",
	})
	require.NoError(t, err)

	assert.Equal(t, "user-1", resp.User.ID)
	assert.Equal(t, "Bearer", resp.Tokens.TokenType)
	assert.NotEmpty(t, resp.Tokens.RefreshToken)

	// The access token hash must be in the active list before it is handed out.
	require.Len(t, repo.records, 1)
	assert.Equal(t, core.HashToken(resp.Tokens.AccessToken), repo.records[0].TokenHash)
	assert.Equal(t, 1, users.loginCount)
}

func TestLoginWrongPassword(t *testing.T) {
	users := newStubUserProvider(activeUser(t, "secreta123"))
	svc, repo := newTestAuthService(t, users, &stubMailer{})

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    "owner@example.com",
		Password: "wrong",
	})

	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Empty(t, repo.records)
}

func TestLoginUnknownEmail(t *testing.T) {
	svc, _ := newTestAuthService(t, newStubUserProvider(), &stubMailer{})

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    "nobody@example.com",
		Password: "whatever",
	})

	// Same error as a wrong password so the endpoint cannot enumerate emails.
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginInactiveAccount(t *testing.T) {
	u := activeUser(t, "secreta123")
	u.Active = false
	svc, _ := newTestAuthService(t, newStubUserProvider(u), &stubMailer{})

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    "owner@example.com",
		Password: "secreta123",
	})

	assert.ErrorIs(t, err, ErrAccountInactive)
}

func TestRegisterCreatesSellerOnTrial(t *testing.T) {
	users := newStubUserProvider()
	svc, _ := newTestAuthService(t, users, &stubMailer{})

	resp, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "new@example.com",
		Password: "secreta123",
		Name:     "Nueva Tienda",
	})
	require.NoError(t, err)

	// Registration never picks a role; the account lands on the
	// lowest-privilege default.
	created := users.byEmail["new@example.com"]
	require.NotNil(t, created)
	assert.Equal(t, "seller", created.Role)
	assert.Equal(t, "free", created.PlanType)
	require.NotNil(t, created.PlanExpiresAt)
	assert.WithinDuration(
		t,
		time.Now().Add(30*24*time.Hour),
		*created.PlanExpiresAt,
		time.Minute,
	)
	assert.NotEmpty(t, resp.Tokens.AccessToken)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	users := newStubUserProvider(activeUser(t, "secreta123"))
	svc, _ := newTestAuthService(t, users, &stubMailer{})

	_, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "owner@example.com",
		Password: "secreta123",
		Name:     "Otra",
	})

	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestRefreshRoundTrip(t *testing.T) {
	users := newStubUserProvider(activeUser(t, "secreta123"))
	svc, _ := newTestAuthService(t, users, &stubMailer{})

	refresh, _, err := svc.jwt.CreateRefreshToken("user-1")
	require.NoError(t, err)

	resp, err := svc.Refresh(context.Background(), refresh)
	require.NoError(t, err)
	assert.Equal(t, "user-1", resp.User.ID)
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	users := newStubUserProvider(activeUser(t, "secreta123"))
	svc, _ := newTestAuthService(t, users, &stubMailer{})

	access, err := svc.IssueAccessToken(context.Background(), "user-1")
	require.NoError(t, err)

	_, err = svc.Refresh(context.Background(), access)
	assert.ErrorIs(t, err, core.ErrTokenInvalid)
}

func TestLogoutRevokesToken(t *testing.T) {
	users := newStubUserProvider(activeUser(t, "secreta123"))
	svc, repo := newTestAuthService(t, users, &stubMailer{})
	ctx := context.Background()

	token, err := svc.IssueAccessToken(ctx, "user-1")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, "user-1", token))

	revoked, err := svc.blacklist.IsBlacklisted(ctx, token)
	require.NoError(t, err)
	assert.True(t, revoked)
	assert.Empty(t, repo.records)
}

func TestLogoutAllDropsEverySession(t *testing.T) {
	users := newStubUserProvider(activeUser(t, "secreta123"))
	svc, repo := newTestAuthService(t, users, &stubMailer{})
	ctx := context.Background()

	first, err := svc.IssueAccessToken(ctx, "user-1")
	require.NoError(t, err)
	_, err = svc.IssueAccessToken(ctx, "user-1")
	require.NoError(t, err)

	require.NoError(t, svc.LogoutAll(ctx, "user-1", first))

	assert.Empty(t, repo.records)
}

func TestForgotPasswordSilentOnUnknownEmail(t *testing.T) {
	mailer := &stubMailer{}
	svc, _ := newTestAuthService(t, newStubUserProvider(), mailer)

	err := svc.ForgotPassword(context.Background(), "nobody@example.com")

	assert.NoError(t, err)
	assert.Empty(t, mailer.sentTo)
}

func TestForgotPasswordMailsHashedToken(t *testing.T) {
	users := newStubUserProvider(activeUser(t, "secreta123"))
	mailer := &stubMailer{}
	svc, _ := newTestAuthService(t, users, mailer)

	require.NoError(
		t,
		svc.ForgotPassword(context.Background(), "owner@example.com"),
	)

	assert.Equal(t, "owner@example.com", mailer.sentTo)
	require.NotEmpty(t, mailer.sentToken)
	// Only the hash is stored; the mailed token never touches the database.
	assert.Equal(t, core.HashToken(mailer.sentToken), users.resetStored)
}

func TestResetPasswordRevokesSessions(t *testing.T) {
	u := activeUser(t, "secreta123")
	users := newStubUserProvider(u)
	users.consumedUser = u
	svc, repo := newTestAuthService(t, users, &stubMailer{})
	ctx := context.Background()

	_, err := svc.IssueAccessToken(ctx, "user-1")
	require.NoError(t, err)

	require.NoError(
		t,
		svc.ResetPassword(ctx, "owner@example.com", "reset-token", "nueva1234"),
	)

	assert.NotEmpty(t, users.passwordSet["user-1"])
	assert.Empty(t, repo.records)
}

func TestResetPasswordInvalidToken(t *testing.T) {
	users := newStubUserProvider()
	users.consumeErr = core.ErrNotFound
	svc, _ := newTestAuthService(t, users, &stubMailer{})

	err := svc.ResetPassword(
		context.Background(),
		"owner@example.com",
		"bad-token",
		"nueva1234",
	)

	assert.ErrorIs(t, err, ErrInvalidResetToken)
}
