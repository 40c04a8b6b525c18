// AngelaMos | 2026
// handler.go

package setting

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
	r.Route("/settings", func(r chi.Router) {
		r.Use(authenticator)

		r.With(middleware.Authorize(access.ResourceSetting, access.ActionList)).
			Get("/", h.List)
		r.With(middleware.Authorize(access.ResourceSetting, access.ActionShow)).
			Get("/{key}", h.Get)
		r.With(middleware.Authorize(access.ResourceSetting, access.ActionEdit)).
			Put("/{key}", h.Put)
		r.With(middleware.Authorize(access.ResourceSetting, access.ActionDelete)).
			Delete("/{key}", h.Delete)
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	settings, err := h.service.List(r.Context())
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, settings)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	s, err := h.service.Get(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, s)
}

func (h *Handler) Put(w http.ResponseWriter, r *http.Request) {
	var req PutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	s, err := h.service.Put(r.Context(), chi.URLParam(r, "key"), req.Value)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, s)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "key")); err != nil {
		writeError(w, err)
		return
	}

	core.NoContent(w)
}

func writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, core.ErrNotFound) {
		core.NotFound(w, "setting")
		return
	}
	core.InternalServerError(w, err)
}
