// AngelaMos | 2026
// gate.go

package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	redis_rate "github.com/go-redis/redis_rate/v10"
	"github.com/redis/go-redis/v9"

	"github.com/pos-nt/backend/internal/config"
	"github.com/pos-nt/backend/internal/core"
	"github.com/pos-nt/backend/internal/plan"
)

const (
	// NewTokenHeader carries a transparently rotated access token back to
	// the caller, outside the response body.
	NewTokenHeader = "New-Access-Token"

	// RefreshCookieName is the scoped cookie the client presents alongside
	// the bearer token.
	RefreshCookieName = "refresh_token"
)

type TokenClaims struct {
	UserID    string
	ExpiresAt time.Time
}

type TokenVerifier interface {
	VerifyAccessToken(ctx context.Context, token string) (*TokenClaims, error)
	VerifyRefreshToken(ctx context.Context, token string) (*TokenClaims, error)
}

type TokenIssuer interface {
	// IssueAccessToken signs a fresh access token and persists it to the
	// user's active-token list before returning it.
	IssueAccessToken(ctx context.Context, userID string) (string, error)
}

type BlacklistChecker interface {
	IsBlacklisted(ctx context.Context, token string) (bool, error)
	// Reason reports why a token was revoked, or empty if it was not.
	Reason(ctx context.Context, token string) (string, error)
}

type UserSource interface {
	// FindActiveByToken resolves a user only when the exact token is in the
	// user's active-token list and the account is active.
	FindActiveByToken(ctx context.Context, userID, token string) (*AuthUser, error)
	FindActiveByID(ctx context.Context, userID string) (*AuthUser, error)
	// DemotePlan durably drops the user's plan to the free tier.
	DemotePlan(ctx context.Context, userID string) error
}

type SaleCounter interface {
	CountForUserSince(ctx context.Context, userID string, since time.Time) (int, error)
}

// Gate is the request authorization pipeline: attempt throttling, token
// verification, revocation, identity and role checks, transparent token
// rotation, and plan enforcement, in that order.
type Gate struct {
	verifier     TokenVerifier
	issuer       TokenIssuer
	blacklist    BlacklistChecker
	users        UserSource
	sales        SaleCounter
	attempts     *redis_rate.Limiter
	attemptLimit redis_rate.Limit
	policy       *plan.Policy
	rotateWithin time.Duration
	logger       *slog.Logger
	now          func() time.Time
}

type GateDeps struct {
	Verifier  TokenVerifier
	Issuer    TokenIssuer
	Blacklist BlacklistChecker
	Users     UserSource
	Sales     SaleCounter
	Redis     *redis.Client
	Policy    *plan.Policy
	Logger    *slog.Logger
}

func NewGate(cfg config.GateConfig, deps GateDeps) *Gate {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Gate{
		verifier:  deps.Verifier,
		issuer:    deps.Issuer,
		blacklist: deps.Blacklist,
		users:     deps.Users,
		sales:     deps.Sales,
		attempts:  redis_rate.NewLimiter(deps.Redis),
		attemptLimit: redis_rate.Limit{
			Rate:   cfg.AttemptLimit,
			Burst:  cfg.AttemptLimit,
			Period: cfg.AttemptWindow,
		},
		policy:       deps.Policy,
		rotateWithin: cfg.RotateWithin,
		logger:       logger,
		now:          time.Now,
	}
}

// RequireRoles gates a route to the given roles. An empty list admits any
// authenticated role.
func (g *Gate) RequireRoles(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			g.serve(w, r, next, roles)
		})
	}
}

func (g *Gate) serve(
	w http.ResponseWriter,
	r *http.Request,
	next http.Handler,
	roles []string,
) {
	ctx := r.Context()
	sourceIP := clientIP(r)

	if !g.allowAttempt(ctx, sourceIP) {
		writeRateLimited(w)
		return
	}

	accessToken := bearerToken(r)
	if accessToken == "" {
		writeUnauthorized(w, "token not provided")
		return
	}

	refreshToken := refreshCookie(r)

	claims, err := g.verifier.VerifyAccessToken(ctx, accessToken)
	switch {
	case err == nil:
		g.serveVerified(w, r, next, roles, accessToken, refreshToken, claims, sourceIP)

	case errors.Is(err, core.ErrTokenExpired) && refreshToken != "":
		g.serveRefreshed(w, r, next, roles, refreshToken, sourceIP)

	case errors.Is(err, core.ErrTokenExpired):
		writeUnauthorized(w, "session expired, please re-authenticate")

	default:
		writeUnauthorized(w, "invalid authorization token")
	}
}

// serveVerified handles the common path: a signature-valid, unexpired token.
func (g *Gate) serveVerified(
	w http.ResponseWriter,
	r *http.Request,
	next http.Handler,
	roles []string,
	accessToken, refreshToken string,
	claims *TokenClaims,
	sourceIP string,
) {
	ctx := r.Context()

	// Revocation overrides cryptographic validity.
	revoked, err := g.blacklist.IsBlacklisted(ctx, accessToken)
	if err != nil {
		g.fail(w, sourceIP, "blacklist lookup", err)
		return
	}
	if revoked {
		//nolint:errcheck // reason is audit-only; the rejection stands regardless
		reason, _ := g.blacklist.Reason(ctx, accessToken)
		g.logger.Warn("revoked token presented",
			"reason", reason,
			"user_id", claims.UserID,
			"ip", sourceIP,
		)
		writeUnauthorized(w, "token invalid - session closed")
		return
	}

	user, err := g.users.FindActiveByToken(ctx, claims.UserID, accessToken)
	if err != nil {
		if isIdentityError(err) {
			// Deliberately one message for unknown user, token not in
			// the active list, and inactive account.
			writeUnauthorized(w, "user not found or inactive")
			return
		}
		g.fail(w, sourceIP, "user lookup", err)
		return
	}

	if !g.roleAllowed(user, roles) {
		writeUnauthorized(w, "you do not have permission to access this resource")
		return
	}

	token := accessToken
	if g.now().After(claims.ExpiresAt.Add(-g.rotateWithin)) && refreshToken != "" {
		rotated, rotErr := g.issuer.IssueAccessToken(ctx, user.ID)
		if rotErr != nil {
			// The presented token is still valid; rotation is advisory.
			g.logger.Error("proactive token rotation failed",
				"error", rotErr,
				"user_id", user.ID,
			)
		} else {
			w.Header().Set(NewTokenHeader, rotated)
			token = rotated
		}
	}

	g.finish(w, r, next, user, token, sourceIP)
}

// serveRefreshed handles an expired access token backed by a refresh token.
func (g *Gate) serveRefreshed(
	w http.ResponseWriter,
	r *http.Request,
	next http.Handler,
	roles []string,
	refreshToken, sourceIP string,
) {
	ctx := r.Context()

	claims, err := g.verifier.VerifyRefreshToken(ctx, refreshToken)
	if err != nil {
		writeUnauthorized(w, "session expired, please re-authenticate")
		return
	}

	user, err := g.users.FindActiveByID(ctx, claims.UserID)
	if err != nil {
		if isIdentityError(err) {
			writeUnauthorized(w, "user not found or inactive")
			return
		}
		g.fail(w, sourceIP, "user lookup", err)
		return
	}

	if !g.roleAllowed(user, roles) {
		writeUnauthorized(w, "you do not have permission to access this resource")
		return
	}

	newToken, err := g.issuer.IssueAccessToken(ctx, user.ID)
	if err != nil {
		g.fail(w, sourceIP, "mint access token", err)
		return
	}
	w.Header().Set(NewTokenHeader, newToken)

	// Blacklist and near-expiry checks are skipped: the token was minted an
	// instant ago.
	g.finish(w, r, next, user, newToken, sourceIP)
}

// finish runs the plan gate and forwards the request with identity attached.
func (g *Gate) finish(
	w http.ResponseWriter,
	r *http.Request,
	next http.Handler,
	user *AuthUser,
	token, sourceIP string,
) {
	ctx := r.Context()

	if user.PlanExpiresAt != nil && user.PlanExpiresAt.Before(g.now()) {
		// The demotion must be durable before the request proceeds so a
		// concurrent request sees the free tier.
		if err := g.users.DemotePlan(ctx, user.ID); err != nil {
			g.fail(w, sourceIP, "plan demotion", err)
			return
		}
		user.PlanType = string(plan.TierFree)
		g.logger.Info("plan expired, demoted to free tier",
			"user_id", user.ID,
			"expired_at", user.PlanExpiresAt,
		)
	}

	if plan.Tier(user.PlanType) == plan.TierFree {
		limits := g.policy.LimitsFor(plan.TierFree)
		count, err := g.sales.CountForUserSince(ctx, user.ID, g.midnight())
		if err != nil {
			g.fail(w, sourceIP, "daily sale count", err)
			return
		}
		if !limits.AllowsDailySales(count) {
			writeQuotaExceeded(w, limits.MaxDailySales)
			return
		}
	}

	ctx = context.WithValue(ctx, AuthUserKey, user)
	ctx = context.WithValue(ctx, AccessTokenKey, token)
	ctx = context.WithValue(ctx, SourceIPKey, sourceIP)
	ctx = context.WithValue(ctx, UserAgentKey, r.UserAgent())

	next.ServeHTTP(w, r.WithContext(ctx))
}

func (g *Gate) roleAllowed(user *AuthUser, roles []string) bool {
	if len(roles) == 0 || slices.Contains(roles, user.Role) {
		return true
	}

	g.logger.Warn("access denied: role not permitted",
		"email", user.Email,
		"role", user.Role,
		"allowed_roles", strings.Join(roles, ","),
	)
	return false
}

func (g *Gate) allowAttempt(ctx context.Context, sourceIP string) bool {
	res, err := g.attempts.Allow(ctx, "authgate:ip:"+sourceIP, g.attemptLimit)
	if err != nil {
		g.logger.Warn("auth attempt limiter unavailable, failing open",
			"error", err,
			"ip", sourceIP,
		)
		return true
	}
	return res.Allowed > 0
}

func (g *Gate) midnight() time.Time {
	now := g.now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

// fail handles storage-layer faults: full detail server-side only, no cause
// leaked to the caller.
func (g *Gate) fail(w http.ResponseWriter, sourceIP, op string, err error) {
	g.logger.Error("authorization gate failure",
		"op", op,
		"error", err,
		"ip", sourceIP,
	)
	writeUnauthorized(w, "")
}

func isIdentityError(err error) bool {
	return errors.Is(err, core.ErrNotFound) ||
		errors.Is(err, core.ErrUserInactive)
}

func bearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}

func refreshCookie(r *http.Request) string {
	cookie, err := r.Cookie(RefreshCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ips := strings.Split(xff, ",")
		return strings.TrimSpace(ips[len(ips)-1])
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}

	return ip
}

// Gate rejections keep the wire shape existing clients parse:
// {"error":"No autorizado","message":...}.
func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)

	body := map[string]any{"error": "No autorizado"}
	if message != "" {
		body["message"] = message
	}

	//nolint:errcheck // best-effort response write
	_ = json.NewEncoder(w).Encode(body)
}

func writeQuotaExceeded(w http.ResponseWriter, limit int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)

	//nolint:errcheck // best-effort response write
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": "plan limit reached",
		"message": "daily sales limit of " + strconv.Itoa(limit) +
			" reached, upgrade your plan to continue",
		"upgrade": true,
	})
}

func writeRateLimited(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)

	//nolint:errcheck // best-effort response write
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error":   "too many requests",
		"message": "too many authentication attempts, please try again later",
	})
}
