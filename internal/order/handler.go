// AngelaMos | 2026
// handler.go

package order

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/carterperez-dev/storefront/internal/access"
	"github.com/carterperez-dev/storefront/internal/core"
	"github.com/carterperez-dev/storefront/internal/middleware"
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

// RegisterRoutes mounts /orders and /order-lines. placeLimit, when set,
// wraps only order placement.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
	placeLimit func(http.Handler) http.Handler,
) {
	r.Route("/orders", func(r chi.Router) {
		r.Use(authenticator)

		place := http.Handler(http.HandlerFunc(h.PlaceOrder))
		if placeLimit != nil {
			place = placeLimit(place)
		}
		r.Method(http.MethodPost, "/", place)

		r.With(middleware.Authorize(access.ResourceOrder, access.ActionList)).
			Get("/", h.ListOrders)
		r.With(middleware.Authorize(access.ResourceOrder, access.ActionShow)).
			Get("/summary", h.GetSummary)
		r.With(middleware.Authorize(access.ResourceOrder, access.ActionShow)).
			Get("/{orderID}", h.GetOrder)
		r.With(middleware.Authorize(access.ResourceOrder, access.ActionEdit)).
			Patch("/{orderID}/status", h.UpdateStatus)
		r.With(middleware.Authorize(access.ResourceOrder, access.ActionDelete)).
			Delete("/{orderID}", h.DeleteOrder)
	})

	r.Route("/order-lines", func(r chi.Router) {
		r.Use(authenticator)

		r.With(middleware.Authorize(access.ResourceOrderLine, access.ActionList)).
			Get("/", h.ListLines)
		r.With(middleware.Authorize(access.ResourceOrderLine, access.ActionShow)).
			Get("/{lineID}", h.GetLine)
	})
}

// PlaceOrder places an order for the caller, or for body.user_id when the
// caller may place on that user's behalf.
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	caller := middleware.CallerFrom(r.Context())

	var req PlaceOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		invalidRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		invalidRequest(w, core.FormatValidationError(err))
		return
	}

	ownerID := caller.ID
	if req.UserID != nil {
		ownerID = *req.UserID
	}

	target := access.Target{Resource: access.ResourceOrder, OwnerID: ownerID}
	if !caller.Can(access.ActionPlace, target) {
		core.Forbidden(w, "insufficient permissions")
		return
	}

	o, err := h.service.Place(r.Context(), ownerID, req.Lines())
	if err != nil {
		writeError(w, err)
		return
	}

	core.Created(w, ToOrderResponse(o))
}

// ListOrders lists every order for admins and only the caller's own
// orders for everyone else.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	caller := middleware.CallerFrom(r.Context())

	params := ListOrdersParams{
		Pagination: core.PaginationFrom(r),
		UserID:     r.URL.Query().Get("user_id"),
		Status:     Status(r.URL.Query().Get("status")),
	}
	if !caller.IsAdmin() {
		params.UserID = caller.ID
	}
	if !isIDFilter(params.UserID) {
		invalidRequest(w, "user_id must be a uuid")
		return
	}
	if params.Status != "" && !params.Status.Valid() {
		invalidRequest(w, "unknown order status")
		return
	}

	orders, total, err := h.service.List(r.Context(), params)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	params.Normalize()
	core.Paginated(
		w,
		ToOrderResponseList(orders),
		params.Page,
		params.PageSize,
		total,
	)
}

// GetOrder answers 404 both for a missing order and for another user's
// order so the response never reveals that the id exists.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	caller := middleware.CallerFrom(r.Context())

	o, err := h.service.Get(r.Context(), chi.URLParam(r, "orderID"))
	if err != nil {
		writeError(w, err)
		return
	}

	if !caller.IsAdmin() && o.UserID != caller.ID {
		core.NotFound(w, "order")
		return
	}

	core.OK(w, ToOrderResponse(o))
}

func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	caller := middleware.CallerFrom(r.Context())

	userID := caller.ID
	if requested := r.URL.Query().Get("user_id"); requested != "" && caller.IsAdmin() {
		userID = requested
	}

	summary, err := h.service.Summary(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, ToSummaryResponse(summary))
}

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	o, err := h.service.UpdateStatus(r.Context(), chi.URLParam(r, "orderID"), req.Status)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, ToOrderResponse(o))
}

func (h *Handler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "orderID")); err != nil {
		writeError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) ListLines(w http.ResponseWriter, r *http.Request) {
	params := ListLinesParams{
		Pagination: core.PaginationFrom(r),
		OrderID:    r.URL.Query().Get("order_id"),
		ProductID:  r.URL.Query().Get("product_id"),
	}
	if !isIDFilter(params.OrderID) || !isIDFilter(params.ProductID) {
		invalidRequest(w, "order_id and product_id must be uuids")
		return
	}

	lines, total, err := h.service.ListLines(r.Context(), params)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	params.Normalize()
	core.Paginated(
		w,
		ToLineResponseList(lines),
		params.Page,
		params.PageSize,
		total,
	)
}

func (h *Handler) GetLine(w http.ResponseWriter, r *http.Request) {
	l, err := h.service.GetLine(r.Context(), chi.URLParam(r, "lineID"))
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, ToLineResponse(l))
}

// isIDFilter accepts an absent filter or a well-formed uuid.
func isIDFilter(v string) bool {
	return v == "" || uuid.Validate(v) == nil
}

func invalidRequest(w http.ResponseWriter, message string) {
	core.JSONError(w, core.NewAppError(
		core.ErrInvalidRequest,
		message,
		http.StatusBadRequest,
		"INVALID_REQUEST",
	))
}

func writeError(w http.ResponseWriter, err error) {
	if appErr := core.OrderError(err); appErr != nil {
		core.JSONError(w, appErr)
		return
	}

	switch {
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "order")
	case errors.Is(err, core.ErrInvalidInput):
		core.BadRequest(w, "invalid order data")
	default:
		core.InternalServerError(w, err)
	}
}
