// AngelaMos | 2026
// handler.go

package sale

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/pos-nt/backend/internal/core"
	"github.com/pos-nt/backend/internal/middleware"
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

// RegisterRoutes mounts the sale endpoints. planLimit is the per-tier
// request limiter; it runs after the gate so the plan type is on the
// context.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	gate *middleware.Gate,
	planLimit func(http.Handler) http.Handler,
) {
	r.Route("/sales", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(gate.RequireRoles("admin", "seller"), planLimit)
			r.Post("/", h.Create)
		})

		r.Group(func(r chi.Router) {
			r.Use(gate.RequireRoles("admin", "supervisor"), planLimit)
			r.Get("/", h.List)
			r.Get("/today", h.TodayStats)
			r.Get("/{saleID}", h.Get)
		})

		r.Group(func(r chi.Router) {
			r.Use(gate.RequireRoles("admin"), planLimit)
			r.Delete("/{saleID}", h.Delete)
		})
	})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req CreateSaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	created, err := h.service.Create(r.Context(), userID, req)
	if err != nil {
		if errors.Is(err, core.ErrInvalidInput) {
			core.BadRequest(w, err.Error())
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.Created(w, ToResponse(created))
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	params := listParamsFromQuery(r)

	sales, total, err := h.service.List(r.Context(), userID, params)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.Paginated(w, ToResponseList(sales), params.Page, params.PageSize, total)
}

func (h *Handler) TodayStats(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	stats, err := h.service.TodayStats(r.Context(), userID)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, DailyStatsResponse{
		SaleCount: stats.SaleCount,
		Total:     stats.Total,
		ItemCount: stats.ItemCount,
	})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	saleID := chi.URLParam(r, "saleID")

	found, err := h.service.Get(r.Context(), userID, saleID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "sale")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToResponse(found))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	saleID := chi.URLParam(r, "saleID")

	if err := h.service.Delete(r.Context(), userID, saleID); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "sale")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.NoContent(w)
}

func listParamsFromQuery(r *http.Request) ListSalesParams {
	q := r.URL.Query()

	page, _ := strconv.Atoi(q.Get("page"))
	pageSize, _ := strconv.Atoi(q.Get("page_size"))

	params := ListSalesParams{Page: page, PageSize: pageSize}

	if from, err := time.Parse(time.RFC3339, q.Get("from")); err == nil {
		params.From = from
	}
	if to, err := time.Parse(time.RFC3339, q.Get("to")); err == nil {
		params.To = to
	}

	return params
}
