// AngelaMos | 2026
// planlimits.go

package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/pos-nt/backend/internal/plan"
)

type ProductCounter interface {
	CountForUser(ctx context.Context, userID string) (int, error)
}

type StaffCounter interface {
	CountCreatedBy(ctx context.Context, userID string) (int, error)
}

// PlanGates enforces per-tier capacity ceilings and feature flags on routes
// that create resources. It must run after the authorization gate.
type PlanGates struct {
	policy   *plan.Policy
	products ProductCounter
	staff    StaffCounter
	logger   *slog.Logger
}

func NewPlanGates(
	policy *plan.Policy,
	products ProductCounter,
	staff StaffCounter,
	logger *slog.Logger,
) *PlanGates {
	if logger == nil {
		logger = slog.Default()
	}
	return &PlanGates{
		policy:   policy,
		products: products,
		staff:    staff,
		logger:   logger,
	}
}

// RequireFeature rejects requests whose plan tier lacks the feature.
func (p *PlanGates) RequireFeature(feature string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := GetAuthUser(r.Context())
			if user == nil {
				writeUnauthorized(w, "")
				return
			}

			if !p.policy.HasFeature(plan.Tier(user.PlanType), feature) {
				p.logger.Warn("feature not available on plan",
					"user_id", user.ID,
					"plan", user.PlanType,
					"feature", feature,
				)
				writeUpgradeRequired(
					w,
					"this feature is not available on your current plan",
				)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ProductCapacity blocks product creation once the tier's product ceiling is
// reached.
func (p *PlanGates) ProductCapacity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := GetAuthUser(r.Context())
		if user == nil {
			writeUnauthorized(w, "")
			return
		}

		limits := p.policy.LimitsFor(plan.Tier(user.PlanType))
		if limits.MaxProducts != plan.Unlimited {
			count, err := p.products.CountForUser(r.Context(), user.ID)
			if err != nil {
				p.logger.Error("product count failed", "error", err)
				writeUnauthorized(w, "")
				return
			}
			if !limits.AllowsProducts(count) {
				writeUpgradeRequired(w, fmt.Sprintf(
					"you have reached the limit of %d products on your current plan",
					limits.MaxProducts,
				))
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

// StaffCapacity blocks staff account creation once the tier's user ceiling
// is reached.
func (p *PlanGates) StaffCapacity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := GetAuthUser(r.Context())
		if user == nil {
			writeUnauthorized(w, "")
			return
		}

		limits := p.policy.LimitsFor(plan.Tier(user.PlanType))
		if limits.MaxUsers != plan.Unlimited {
			count, err := p.staff.CountCreatedBy(r.Context(), user.ID)
			if err != nil {
				p.logger.Error("staff count failed", "error", err)
				writeUnauthorized(w, "")
				return
			}
			if !limits.AllowsUsers(count) {
				writeUpgradeRequired(w, fmt.Sprintf(
					"you have reached the limit of %d users on your current plan",
					limits.MaxUsers,
				))
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

func writeUpgradeRequired(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)

	//nolint:errcheck // best-effort response write
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error":   "plan limit reached",
		"message": message,
		"upgrade": true,
	})
}
