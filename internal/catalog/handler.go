// AngelaMos | 2026
// handler.go

package catalog

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

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

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/categories", func(r chi.Router) {
		r.Use(authenticator)
		h.mount(r, access.ResourceCategory, crud{
			list:   h.ListCategories,
			show:   h.GetCategory,
			create: h.CreateCategory,
			update: h.UpdateCategory,
			remove: h.DeleteCategory,
		})
	})

	r.Route("/products", func(r chi.Router) {
		r.Use(authenticator)
		h.mount(r, access.ResourceProduct, crud{
			list:   h.ListProducts,
			show:   h.GetProduct,
			create: h.CreateProduct,
			update: h.UpdateProduct,
			remove: h.DeleteProduct,
		})
	})
}

type crud struct {
	list, show, create, update, remove http.HandlerFunc
}

func (h *Handler) mount(r chi.Router, res access.Resource, c crud) {
	gate := func(a access.Action) func(http.Handler) http.Handler {
		return middleware.Authorize(res, a)
	}

	r.With(gate(access.ActionList)).Get("/", c.list)
	r.With(gate(access.ActionNew)).Post("/", c.create)
	r.With(gate(access.ActionShow)).Get("/{id}", c.show)
	r.With(gate(access.ActionEdit)).Put("/{id}", c.update)
	r.With(gate(access.ActionDelete)).Delete("/{id}", c.remove)
}

func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListCategories(r.Context())
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, categories)
}

func (h *Handler) GetCategory(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.GetCategory(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "category", err)
		return
	}

	core.OK(w, c)
}

func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if !h.decode(w, r, &req) {
		return
	}

	c, err := h.service.CreateCategory(r.Context(), req)
	if err != nil {
		writeError(w, "category", err)
		return
	}

	core.Created(w, c)
}

func (h *Handler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if !h.decode(w, r, &req) {
		return
	}

	c, err := h.service.UpdateCategory(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeError(w, "category", err)
		return
	}

	core.OK(w, c)
}

func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteCategory(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, "category", err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	params := ListProductsParams{
		Pagination: core.PaginationFrom(r),
		Search:     r.URL.Query().Get("search"),
		CategoryID: r.URL.Query().Get("category_id"),
	}

	products, total, err := h.service.ListProducts(r.Context(), params)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	out := make([]ProductResponse, len(products))
	for i := range products {
		out[i] = ToProductResponse(&products[i], nil)
	}

	params.Normalize()
	core.Paginated(w, out, params.Page, params.PageSize, total)
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, c, err := h.service.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "product", err)
		return
	}

	core.OK(w, ToProductResponse(p, c))
}

func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if !h.decode(w, r, &req) {
		return
	}

	p, c, err := h.service.CreateProduct(r.Context(), req)
	if err != nil {
		writeError(w, "product", err)
		return
	}

	core.Created(w, ToProductResponse(p, c))
}

func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req UpdateProductRequest
	if !h.decode(w, r, &req) {
		return
	}

	p, c, err := h.service.UpdateProduct(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeError(w, "product", err)
		return
	}

	core.OK(w, ToProductResponse(p, c))
}

func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteProduct(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, "product", err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		core.BadRequest(w, "invalid request body")
		return false
	}

	if err := h.validator.Struct(dst); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return false
	}

	return true
}

func writeError(w http.ResponseWriter, resource string, err error) {
	switch {
	case errors.Is(err, core.ErrInvalidReference):
		core.JSONError(w, core.NewAppError(
			err,
			"referenced category does not exist",
			http.StatusUnprocessableEntity,
			"INVALID_REFERENCE",
		))
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, resource)
	case errors.Is(err, core.ErrDuplicateKey):
		core.JSONError(w, core.DuplicateError(resource))
	case errors.Is(err, ErrInUse):
		core.JSONError(w, core.NewAppError(
			err,
			resource+" is still referenced",
			http.StatusConflict,
			"IN_USE",
		))
	case errors.Is(err, core.ErrInvalidInput):
		core.BadRequest(w, err.Error())
	default:
		core.InternalServerError(w, err)
	}
}
