// AngelaMos | 2026
// context.go

package middleware

import (
	"context"
	"time"
)

type contextKey string

const (
	AuthUserKey    contextKey = "auth_user"
	AccessTokenKey contextKey = "access_token"
	SourceIPKey    contextKey = "source_ip"
	UserAgentKey   contextKey = "user_agent"
	RequestIDKey   contextKey = "request_id"
)

// AuthUser is the identity the gate attaches to authorized requests.
type AuthUser struct {
	ID            string
	Email         string
	Role          string
	PlanType      string
	PlanExpiresAt *time.Time
	PlanFeatures  []string
}

func GetAuthUser(ctx context.Context) *AuthUser {
	if u, ok := ctx.Value(AuthUserKey).(*AuthUser); ok {
		return u
	}
	return nil
}

func GetUserID(ctx context.Context) string {
	if u := GetAuthUser(ctx); u != nil {
		return u.ID
	}
	return ""
}

func GetUserRole(ctx context.Context) string {
	if u := GetAuthUser(ctx); u != nil {
		return u.Role
	}
	return ""
}

func GetPlanType(ctx context.Context) string {
	if u := GetAuthUser(ctx); u != nil {
		return u.PlanType
	}
	return ""
}

func GetAccessToken(ctx context.Context) string {
	if t, ok := ctx.Value(AccessTokenKey).(string); ok {
		return t
	}
	return ""
}

func GetSourceIP(ctx context.Context) string {
	if ip, ok := ctx.Value(SourceIPKey).(string); ok {
		return ip
	}
	return ""
}

func GetUserAgent(ctx context.Context) string {
	if ua, ok := ctx.Value(UserAgentKey).(string); ok {
		return ua
	}
	return ""
}

func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}

func IsAuthenticated(ctx context.Context) bool {
	return GetUserID(ctx) != ""
}
