// AngelaMos | 2026
// handler.go

package crm

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/pos-nt/backend/internal/core"
	"github.com/pos-nt/backend/internal/middleware"
	"github.com/pos-nt/backend/internal/plan"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	gate *middleware.Gate,
	gates *middleware.PlanGates,
) {
	r.Route("/customers", func(r chi.Router) {
		r.Use(gate.RequireRoles("admin", "supervisor"))
		r.Use(gates.RequireFeature(plan.FeatureCustomerManagement))

		r.Post("/", h.CreateCustomer)
		r.Get("/", h.ListCustomers)
		r.Get("/{customerID}", h.GetCustomer)
		r.Put("/{customerID}", h.UpdateCustomer)
		r.Delete("/{customerID}", h.DeleteCustomer)
		r.Get("/{customerID}/follow-ups", h.ListCustomerFollowUps)

		r.Route("/follow-ups", func(r chi.Router) {
			r.Post("/", h.CreateFollowUp)
			r.Get("/", h.ListFollowUps)
			r.Patch("/{followUpID}/done", h.CompleteFollowUp)
		})
	})
}

func (h *Handler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req CreateCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	created, err := h.service.CreateCustomer(r.Context(), userID, req)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.Created(w, ToCustomerResponse(created))
}

func (h *Handler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	pageSize, _ := strconv.Atoi(q.Get("page_size"))

	params := ListCustomersParams{
		Page:     page,
		PageSize: pageSize,
		Search:   q.Get("search"),
	}

	customers, total, err := h.service.ListCustomers(r.Context(), userID, params)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.Paginated(
		w,
		ToCustomerResponseList(customers),
		params.Page,
		params.PageSize,
		total,
	)
}

func (h *Handler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	customerID := chi.URLParam(r, "customerID")

	found, err := h.service.GetCustomer(r.Context(), userID, customerID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "customer")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToCustomerResponse(found))
}

func (h *Handler) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	customerID := chi.URLParam(r, "customerID")

	var req UpdateCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	updated, err := h.service.UpdateCustomer(
		r.Context(),
		userID,
		customerID,
		req,
	)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "customer")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToCustomerResponse(updated))
}

func (h *Handler) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	customerID := chi.URLParam(r, "customerID")

	if err := h.service.DeleteCustomer(r.Context(), userID, customerID); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "customer")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) CreateFollowUp(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req CreateFollowUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	created, err := h.service.CreateFollowUp(r.Context(), userID, req)
	if err != nil {
		if errors.Is(err, core.ErrInvalidInput) {
			core.BadRequest(w, err.Error())
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.Created(w, ToFollowUpResponse(created))
}

func (h *Handler) CompleteFollowUp(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	followUpID := chi.URLParam(r, "followUpID")

	err := h.service.CompleteFollowUp(r.Context(), userID, followUpID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "follow-up")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) ListFollowUps(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	pendingOnly := r.URL.Query().Get("pending") == "true"

	followUps, err := h.service.ListFollowUps(r.Context(), userID, pendingOnly)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToFollowUpResponseList(followUps))
}

func (h *Handler) ListCustomerFollowUps(
	w http.ResponseWriter,
	r *http.Request,
) {
	userID := middleware.GetUserID(r.Context())
	customerID := chi.URLParam(r, "customerID")

	followUps, err := h.service.ListCustomerFollowUps(
		r.Context(),
		userID,
		customerID,
	)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToFollowUpResponseList(followUps))
}
