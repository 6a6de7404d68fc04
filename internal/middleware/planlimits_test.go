// AngelaMos | 2026
// planlimits_test.go

package middleware

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pos-nt/backend/internal/plan"
)

type fixedProductCount int

func (c fixedProductCount) CountForUser(
	_ context.Context,
	_ string,
) (int, error) {
	return int(c), nil
}

type fixedStaffCount int

func (c fixedStaffCount) CountCreatedBy(
	_ context.Context,
	_ string,
) (int, error) {
	return int(c), nil
}

func newTestPlanGates(products, staff int) *PlanGates {
	return NewPlanGates(
		plan.DefaultPolicy(),
		fixedProductCount(products),
		fixedStaffCount(staff),
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
}

func authedCtxRequest(planType string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/v1/products", nil)
	ctx := context.WithValue(req.Context(), AuthUserKey, &AuthUser{
		ID:       "user-1",
		Role:     "admin",
		PlanType: planType,
	})
	return req.WithContext(ctx)
}

func serveMiddleware(
	mw func(http.Handler) http.Handler,
	req *http.Request,
) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})).ServeHTTP(rec, req)
	return rec
}

func TestProductCapacity(t *testing.T) {
	t.Run("under ceiling", func(t *testing.T) {
		gates := newTestPlanGates(49, 0)
		rec := serveMiddleware(gates.ProductCapacity, authedCtxRequest("free"))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("at ceiling", func(t *testing.T) {
		gates := newTestPlanGates(50, 0)
		rec := serveMiddleware(gates.ProductCapacity, authedCtxRequest("free"))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("unlimited tier skips count", func(t *testing.T) {
		gates := newTestPlanGates(1_000_000, 0)
		rec := serveMiddleware(
			gates.ProductCapacity,
			authedCtxRequest("enterprise"),
		)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestStaffCapacity(t *testing.T) {
	t.Run("under ceiling", func(t *testing.T) {
		gates := newTestPlanGates(0, 1)
		rec := serveMiddleware(gates.StaffCapacity, authedCtxRequest("free"))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("at ceiling", func(t *testing.T) {
		gates := newTestPlanGates(0, 2)
		rec := serveMiddleware(gates.StaffCapacity, authedCtxRequest("free"))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestRequireFeature(t *testing.T) {
	gates := newTestPlanGates(0, 0)
	mw := gates.RequireFeature(plan.FeatureCustomerManagement)

	t.Run("missing from free tier", func(t *testing.T) {
		rec := serveMiddleware(mw, authedCtxRequest("free"))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("present on basic tier", func(t *testing.T) {
		rec := serveMiddleware(mw, authedCtxRequest("basic"))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		rec := serveMiddleware(
			mw,
			httptest.NewRequest(http.MethodPost, "/v1/customers", nil),
		)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
