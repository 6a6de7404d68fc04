// AngelaMos | 2026
// handler_test.go

package crm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"github.com/pos-nt/backend/internal/core"
	"github.com/pos-nt/backend/internal/middleware"
)

type stubRepo struct {
	completedUser string
	completedID   string
	completeErr   error
}

func (s *stubRepo) CreateCustomer(_ context.Context, _ *Customer) error {
	return nil
}

func (s *stubRepo) GetCustomer(
	_ context.Context,
	_, _ string,
) (*Customer, error) {
	return nil, core.ErrNotFound
}

func (s *stubRepo) UpdateCustomer(_ context.Context, _ *Customer) error {
	return nil
}

func (s *stubRepo) DeleteCustomer(_ context.Context, _, _ string) error {
	return nil
}

func (s *stubRepo) ListCustomers(
	_ context.Context,
	_ string,
	_ ListCustomersParams,
) ([]Customer, int, error) {
	return nil, 0, nil
}

func (s *stubRepo) CreateFollowUp(_ context.Context, _ *FollowUp) error {
	return nil
}

func (s *stubRepo) CompleteFollowUp(
	_ context.Context,
	userID, id string,
) error {
	if s.completeErr != nil {
		return s.completeErr
	}
	s.completedUser = userID
	s.completedID = id
	return nil
}

func (s *stubRepo) ListFollowUps(
	_ context.Context,
	_ string,
	_ bool,
) ([]FollowUp, error) {
	return nil, nil
}

func (s *stubRepo) ListCustomerFollowUps(
	_ context.Context,
	_, _ string,
) ([]FollowUp, error) {
	return nil, nil
}

func newFollowUpRouter(repo Repository) http.Handler {
	h := NewHandler(NewService(repo))

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := context.WithValue(
				req.Context(),
				middleware.AuthUserKey,
				&middleware.AuthUser{
					ID:       "user-1",
					Role:     "admin",
					PlanType: "basic",
				},
			)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	r.Patch("/follow-ups/{followUpID}/done", h.CompleteFollowUp)
	return r
}

func TestCompleteFollowUpMarksDone(t *testing.T) {
	repo := &stubRepo{}
	router := newFollowUpRouter(repo)

	req := httptest.NewRequest(
		http.MethodPatch,
		"/follow-ups/fu-1/done",
		nil,
	)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "user-1", repo.completedUser)
	assert.Equal(t, "fu-1", repo.completedID)
}

func TestCompleteFollowUpUnknownID(t *testing.T) {
	repo := &stubRepo{completeErr: core.ErrNotFound}
	router := newFollowUpRouter(repo)

	req := httptest.NewRequest(
		http.MethodPatch,
		"/follow-ups/missing/done",
		nil,
	)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
