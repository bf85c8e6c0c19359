// AngelaMos | 2026
// handler.go

package catalog

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/leafcare/internal/core"
)

const multipartMemory = 8 << 20

type Handler struct {
	service        *Service
	validator      *validator.Validate
	maxUploadBytes int64
}

func NewHandler(service *Service, maxUploadBytes int64) *Handler {
	return &Handler{
		service:        service,
		validator:      validator.New(validator.WithRequiredStructEnabled()),
		maxUploadBytes: maxUploadBytes,
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator, userOnly func(http.Handler) http.Handler,
) {
	r.Route("/supplements", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(userOnly)

		r.Get("/", h.ListSupplements)
	})
}

func (h *Handler) RegisterAdminRoutes(
	r chi.Router,
	authenticator, adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/admin/supplements", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(adminOnly)

		r.Get("/", h.ListSupplements)
		r.Post("/", h.AddSupplement)
		r.Delete("/{name}", h.DeleteSupplement)
	})
}

func (h *Handler) ListSupplements(w http.ResponseWriter, r *http.Request) {
	supplements, err := h.service.ListSupplements(r.Context())
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, SupplementListResponse{
		Supplements: ToSupplementResponseList(supplements),
	})
}

// AddSupplement accepts a multipart form with name, description, price and
// an optional image file.
func (h *Handler) AddSupplement(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+multipartMemory)

	if err := r.ParseMultipartForm(multipartMemory); err != nil &&
		!errors.Is(err, http.ErrNotMultipart) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			core.JSONError(w, core.UploadError("request body too large"))
			return
		}
		core.BadRequest(w, "invalid form body")
		return
	}

	price, err := strconv.ParseFloat(strings.TrimSpace(r.FormValue("price")), 64)
	if err != nil {
		core.BadRequest(w, "price must be a number")
		return
	}

	req := AddSupplementRequest{
		Name:        strings.TrimSpace(r.FormValue("name")),
		Description: strings.TrimSpace(r.FormValue("description")),
		Price:       price,
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	var upload *ImageUpload
	file, header, err := r.FormFile("image")
	switch {
	case err == nil:
		defer file.Close() //nolint:errcheck // read-only multipart part
		upload = &ImageUpload{Filename: header.Filename, Body: file}
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	default:
		core.BadRequest(w, "invalid image field")
		return
	}

	supplement, err := h.service.AddSupplement(r.Context(), req, upload)
	if err != nil {
		writeCatalogError(w, err)
		return
	}

	core.Created(w, ToSupplementResponse(supplement))
}

func (h *Handler) DeleteSupplement(w http.ResponseWriter, r *http.Request) {
	name, err := core.URLParam(r, "name")
	if err != nil || name == "" {
		core.BadRequest(w, "supplement name required")
		return
	}

	if err := h.service.DeleteSupplement(r.Context(), name); err != nil {
		writeCatalogError(w, err)
		return
	}

	core.NoContent(w)
}

func writeCatalogError(w http.ResponseWriter, err error) {
	switch {
	case core.IsAppError(err):
		core.JSONError(w, err)
	case errors.Is(err, core.ErrDuplicateKey):
		core.JSONError(w, core.DuplicateError("supplement"))
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "supplement")
	case errors.Is(err, core.ErrInvalidInput):
		core.BadRequest(w, err.Error())
	default:
		core.InternalServerError(w, err)
	}
}
