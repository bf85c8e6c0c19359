// AngelaMos | 2026
// handler.go

package order

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/leafcare/internal/core"
	"github.com/carterperez-dev/leafcare/internal/middleware"
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
	authenticator, userOnly func(http.Handler) http.Handler,
) {
	r.Group(func(r chi.Router) {
		r.Use(authenticator)
		r.Use(userOnly)

		r.Get("/cart", h.ViewCart)
		r.Post("/cart/items", h.AddToCart)
		r.Post("/cart/checkout", h.PlaceOrder)
		r.Get("/orders", h.GetOrders)
	})
}

func (h *Handler) RegisterAdminRoutes(
	r chi.Router,
	authenticator, adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/admin/orders", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(adminOnly)

		r.Get("/", h.ListAllOrders)
		r.Get("/lines", h.ListOrderLines)
	})
}

func (h *Handler) AddToCart(w http.ResponseWriter, r *http.Request) {
	var req AddToCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	item, err := h.service.AddToCart(r.Context(), middleware.GetUsername(r.Context()), req)
	if err != nil {
		writeOrderError(w, err)
		return
	}

	core.OK(w, ToCartItemResponse(*item))
}

func (h *Handler) ViewCart(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ViewCart(r.Context(), middleware.GetUsername(r.Context()))
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToCartResponse(items))
}

func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.service.PlaceOrder(r.Context(), middleware.GetUsername(r.Context()))
	if err != nil {
		writeOrderError(w, err)
		return
	}

	core.Created(w, ToOrderResponse(o))
}

func (h *Handler) GetOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.GetOrders(r.Context(), middleware.GetUsername(r.Context()))
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, OrderListResponse{Orders: ToOrderResponseList(orders)})
}

func (h *Handler) ListAllOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.ListAllOrders(r.Context())
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, OrderListResponse{Orders: ToOrderResponseList(orders)})
}

func (h *Handler) ListOrderLines(w http.ResponseWriter, r *http.Request) {
	lines, err := h.service.ListOrderLines(r.Context())
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, OrderLineListResponse{Lines: ToOrderLineResponseList(lines)})
}

func writeOrderError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrEmptyCart):
		core.JSONError(w, core.EmptyCartError())
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "supplement")
	case errors.Is(err, core.ErrInvalidInput):
		core.BadRequest(w, "quantity must be at least 1")
	default:
		core.InternalServerError(w, err)
	}
}
