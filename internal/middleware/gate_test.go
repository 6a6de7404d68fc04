// AngelaMos | 2026
// gate_test.go

package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pos-nt/backend/internal/config"
	"github.com/pos-nt/backend/internal/core"
	"github.com/pos-nt/backend/internal/plan"
)

var testNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

type stubVerifier struct {
	accessClaims  *TokenClaims
	accessErr     error
	refreshClaims *TokenClaims
	refreshErr    error
}

func (s *stubVerifier) VerifyAccessToken(
	_ context.Context,
	_ string,
) (*TokenClaims, error) {
	return s.accessClaims, s.accessErr
}

func (s *stubVerifier) VerifyRefreshToken(
	_ context.Context,
	_ string,
) (*TokenClaims, error) {
	return s.refreshClaims, s.refreshErr
}

type stubIssuer struct {
	token string
	err   error
	calls int
}

func (s *stubIssuer) IssueAccessToken(
	_ context.Context,
	_ string,
) (string, error) {
	s.calls++
	return s.token, s.err
}

type stubBlacklist struct {
	revoked     bool
	reason      string
	err         error
	reasonCalls int
}

func (s *stubBlacklist) IsBlacklisted(
	_ context.Context,
	_ string,
) (bool, error) {
	return s.revoked, s.err
}

func (s *stubBlacklist) Reason(
	_ context.Context,
	_ string,
) (string, error) {
	s.reasonCalls++
	return s.reason, nil
}

type stubUsers struct {
	user      *AuthUser
	findErr   error
	demoted   int
	demoteErr error
}

func (s *stubUsers) FindActiveByToken(
	_ context.Context,
	_, _ string,
) (*AuthUser, error) {
	return s.user, s.findErr
}

func (s *stubUsers) FindActiveByID(
	_ context.Context,
	_ string,
) (*AuthUser, error) {
	return s.user, s.findErr
}

func (s *stubUsers) DemotePlan(_ context.Context, _ string) error {
	s.demoted++
	return s.demoteErr
}

type stubSales struct {
	count int
	err   error
}

func (s *stubSales) CountForUserSince(
	_ context.Context,
	_ string,
	_ time.Time,
) (int, error) {
	return s.count, s.err
}

type gateStubs struct {
	verifier  *stubVerifier
	issuer    *stubIssuer
	blacklist *stubBlacklist
	users     *stubUsers
	sales     *stubSales
}

func defaultStubs() *gateStubs {
	return &gateStubs{
		verifier: &stubVerifier{
			accessClaims: &TokenClaims{
				UserID:    "user-1",
				ExpiresAt: testNow.Add(30 * time.Minute),
			},
		},
		issuer:    &stubIssuer{token: "rotated-token"},
		blacklist: &stubBlacklist{},
		users: &stubUsers{
			user: &AuthUser{
				ID:       "user-1",
				Email:    "owner@example.com",
				Role:     "admin",
				PlanType: "premium",
			},
		},
		sales: &stubSales{},
	}
}

func newTestGate(t *testing.T, stubs *gateStubs) *Gate {
	t.Helper()

	g, _ := newTestGateWithRedis(t, stubs)
	return g
}

func newTestGateWithRedis(
	t *testing.T,
	stubs *gateStubs,
) (*Gate, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	g := NewGate(config.GateConfig{
		AttemptLimit:  5,
		AttemptWindow: 15 * time.Minute,
		RotateWithin:  5 * time.Minute,
	}, GateDeps{
		Verifier:  stubs.verifier,
		Issuer:    stubs.issuer,
		Blacklist: stubs.blacklist,
		Users:     stubs.users,
		Sales:     stubs.sales,
		Redis:     rdb,
		Policy:    plan.DefaultPolicy(),
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	g.now = func() time.Time { return testNow }

	return g, mr
}

func authedRequest(token string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/v1/products", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.RemoteAddr = "10.0.0.1:50000"
	return req
}

func serveGate(
	g *Gate,
	req *http.Request,
	roles ...string,
) (*httptest.ResponseRecorder, *AuthUser) {
	var seen *AuthUser

	handler := g.RequireRoles(roles...)(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			seen = GetAuthUser(r.Context())
			w.WriteHeader(http.StatusOK)
		},
	))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec, seen
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestGateHappyPath(t *testing.T) {
	stubs := defaultStubs()
	g := newTestGate(t, stubs)

	rec, seen := serveGate(g, authedRequest("valid-token"))

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, seen)
	assert.Equal(t, "user-1", seen.ID)
	assert.Empty(t, rec.Header().Get(NewTokenHeader))
	assert.Zero(t, stubs.issuer.calls)
}

func TestGateMissingToken(t *testing.T) {
	g := newTestGate(t, defaultStubs())

	rec, _ := serveGate(g, authedRequest(""))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "No autorizado", body["error"])
	assert.Equal(t, "token not provided", body["message"])
}

func TestGateInvalidToken(t *testing.T) {
	stubs := defaultStubs()
	stubs.verifier.accessClaims = nil
	stubs.verifier.accessErr = fmt.Errorf("verify: %w", core.ErrTokenInvalid)
	g := newTestGate(t, stubs)

	rec, _ := serveGate(g, authedRequest("garbage"))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "invalid authorization token", body["message"])
}

func TestGateBlacklistedToken(t *testing.T) {
	stubs := defaultStubs()
	stubs.blacklist.revoked = true
	stubs.blacklist.reason = "logout"
	g := newTestGate(t, stubs)

	rec, _ := serveGate(g, authedRequest("revoked-token"))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "token invalid - session closed", body["message"])
	// The revocation reason is looked up for the audit log.
	assert.Equal(t, 1, stubs.blacklist.reasonCalls)
}

func TestGateUnknownOrInactiveUser(t *testing.T) {
	for name, findErr := range map[string]error{
		"unknown user": core.ErrNotFound,
		"inactive":     core.ErrUserInactive,
	} {
		t.Run(name, func(t *testing.T) {
			stubs := defaultStubs()
			stubs.users.user = nil
			stubs.users.findErr = findErr
			g := newTestGate(t, stubs)

			rec, _ := serveGate(g, authedRequest("valid-token"))

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			body := decodeBody(t, rec)
			assert.Equal(t, "user not found or inactive", body["message"])
		})
	}
}

func TestGateRoleNotPermitted(t *testing.T) {
	stubs := defaultStubs()
	stubs.users.user.Role = "seller"
	g := newTestGate(t, stubs)

	rec, _ := serveGate(g, authedRequest("valid-token"), "admin", "supervisor")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(
		t,
		"you do not have permission to access this resource",
		body["message"],
	)
}

func TestGateEmptyRoleListAdmitsAnyRole(t *testing.T) {
	stubs := defaultStubs()
	stubs.users.user.Role = "seller"
	g := newTestGate(t, stubs)

	rec, _ := serveGate(g, authedRequest("valid-token"))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGateRotatesNearExpiry(t *testing.T) {
	stubs := defaultStubs()
	stubs.verifier.accessClaims.ExpiresAt = testNow.Add(2 * time.Minute)
	g := newTestGate(t, stubs)

	req := authedRequest("old-token")
	req.AddCookie(&http.Cookie{Name: RefreshCookieName, Value: "refresh-1"})

	rec, _ := serveGate(g, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "rotated-token", rec.Header().Get(NewTokenHeader))
	assert.Equal(t, 1, stubs.issuer.calls)
}

func TestGateNoRotationWithoutRefreshCookie(t *testing.T) {
	stubs := defaultStubs()
	stubs.verifier.accessClaims.ExpiresAt = testNow.Add(2 * time.Minute)
	g := newTestGate(t, stubs)

	rec, _ := serveGate(g, authedRequest("old-token"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get(NewTokenHeader))
	assert.Zero(t, stubs.issuer.calls)
}

func TestGateRotationFailureStillServes(t *testing.T) {
	stubs := defaultStubs()
	stubs.verifier.accessClaims.ExpiresAt = testNow.Add(2 * time.Minute)
	stubs.issuer.err = fmt.Errorf("storage down")
	g := newTestGate(t, stubs)

	req := authedRequest("old-token")
	req.AddCookie(&http.Cookie{Name: RefreshCookieName, Value: "refresh-1"})

	rec, _ := serveGate(g, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get(NewTokenHeader))
}

func TestGateExpiredTokenWithRefreshCookie(t *testing.T) {
	stubs := defaultStubs()
	stubs.verifier.accessClaims = nil
	stubs.verifier.accessErr = fmt.Errorf("verify: %w", core.ErrTokenExpired)
	stubs.verifier.refreshClaims = &TokenClaims{
		UserID:    "user-1",
		ExpiresAt: testNow.Add(6 * 24 * time.Hour),
	}
	g := newTestGate(t, stubs)

	req := authedRequest("expired-token")
	req.AddCookie(&http.Cookie{Name: RefreshCookieName, Value: "refresh-1"})

	rec, seen := serveGate(g, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "rotated-token", rec.Header().Get(NewTokenHeader))
	require.NotNil(t, seen)
	assert.Equal(t, "user-1", seen.ID)
}

func TestGateExpiredTokenWithoutRefreshCookie(t *testing.T) {
	stubs := defaultStubs()
	stubs.verifier.accessClaims = nil
	stubs.verifier.accessErr = fmt.Errorf("verify: %w", core.ErrTokenExpired)
	g := newTestGate(t, stubs)

	rec, _ := serveGate(g, authedRequest("expired-token"))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "session expired, please re-authenticate", body["message"])
}

func TestGateExpiredTokenWithBadRefreshCookie(t *testing.T) {
	stubs := defaultStubs()
	stubs.verifier.accessClaims = nil
	stubs.verifier.accessErr = fmt.Errorf("verify: %w", core.ErrTokenExpired)
	stubs.verifier.refreshErr = fmt.Errorf("verify: %w", core.ErrTokenInvalid)
	g := newTestGate(t, stubs)

	req := authedRequest("expired-token")
	req.AddCookie(&http.Cookie{Name: RefreshCookieName, Value: "bad-refresh"})

	rec, _ := serveGate(g, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Zero(t, stubs.issuer.calls)
}

func TestGateDemotesExpiredPlan(t *testing.T) {
	expired := testNow.Add(-time.Hour)
	stubs := defaultStubs()
	stubs.users.user.PlanType = "premium"
	stubs.users.user.PlanExpiresAt = &expired
	g := newTestGate(t, stubs)

	rec, seen := serveGate(g, authedRequest("valid-token"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, stubs.users.demoted)
	require.NotNil(t, seen)
	assert.Equal(t, "free", seen.PlanType)
}

func TestGateDemotionFailureBlocksRequest(t *testing.T) {
	expired := testNow.Add(-time.Hour)
	stubs := defaultStubs()
	stubs.users.user.PlanExpiresAt = &expired
	stubs.users.demoteErr = fmt.Errorf("db down")
	g := newTestGate(t, stubs)

	rec, _ := serveGate(g, authedRequest("valid-token"))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGateFreeTierDailyQuota(t *testing.T) {
	t.Run("under limit", func(t *testing.T) {
		stubs := defaultStubs()
		stubs.users.user.PlanType = "free"
		stubs.sales.count = 9
		g := newTestGate(t, stubs)

		rec, _ := serveGate(g, authedRequest("valid-token"))

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("at limit", func(t *testing.T) {
		stubs := defaultStubs()
		stubs.users.user.PlanType = "free"
		stubs.sales.count = 10
		g := newTestGate(t, stubs)

		rec, _ := serveGate(g, authedRequest("valid-token"))

		assert.Equal(t, http.StatusForbidden, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "plan limit reached", body["error"])
		assert.Equal(t, true, body["upgrade"])
	})
}

func TestGatePaidTierSkipsDailyQuota(t *testing.T) {
	stubs := defaultStubs()
	stubs.users.user.PlanType = "basic"
	stubs.sales.err = fmt.Errorf("must not be called")
	g := newTestGate(t, stubs)

	rec, _ := serveGate(g, authedRequest("valid-token"))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGateAttemptThrottle(t *testing.T) {
	g := newTestGate(t, defaultStubs())

	for i := 0; i < 5; i++ {
		rec, _ := serveGate(g, authedRequest("valid-token"))
		require.Equal(t, http.StatusOK, rec.Code, "request %d", i+1)
	}

	rec, _ := serveGate(g, authedRequest("valid-token"))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestGateAttemptThrottleWindowRollsOver(t *testing.T) {
	g, mr := newTestGateWithRedis(t, defaultStubs())

	for i := 0; i < 5; i++ {
		rec, _ := serveGate(g, authedRequest("valid-token"))
		require.Equal(t, http.StatusOK, rec.Code, "request %d", i+1)
	}

	rec, _ := serveGate(g, authedRequest("valid-token"))
	require.Equal(t, http.StatusTooManyRequests, rec.Code)

	mr.FastForward(16 * time.Minute)

	rec, _ = serveGate(g, authedRequest("valid-token"))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGateAttemptThrottleIsPerIP(t *testing.T) {
	g := newTestGate(t, defaultStubs())

	for i := 0; i < 6; i++ {
		req := authedRequest("valid-token")
		req.RemoteAddr = fmt.Sprintf("10.0.0.%d:50000", i+1)
		rec, _ := serveGate(g, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}
