// AngelaMos | 2026
// handler.go

package prediction

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/leafcare/internal/core"
	"github.com/carterperez-dev/leafcare/internal/inference"
	"github.com/carterperez-dev/leafcare/internal/middleware"
)

const multipartMemory = 8 << 20

type Handler struct {
	service        *Service
	maxUploadBytes int64
}

func NewHandler(service *Service, maxUploadBytes int64) *Handler {
	return &Handler{
		service:        service,
		maxUploadBytes: maxUploadBytes,
	}
}

// RegisterRoutes mounts the public recognition endpoints. optionalAuth
// attaches a session when one is presented but never rejects.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	optionalAuth func(http.Handler) http.Handler,
) {
	r.Get("/diseases", h.ListDiseases)

	r.With(optionalAuth).Post("/predictions", h.Predict)
}

func (h *Handler) RegisterAdminRoutes(
	r chi.Router,
	authenticator, adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/admin/predictions", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(adminOnly)

		r.Get("/", h.ListLogs)
	})
}

func (h *Handler) Predict(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+multipartMemory)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			core.JSONError(w, core.UploadError("request body too large"))
			return
		}
		core.BadRequest(w, "multipart form with an image field required")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		core.BadRequest(w, "image file required")
		return
	}
	defer file.Close() //nolint:errcheck // read-only multipart part

	if header.Size > h.maxUploadBytes {
		core.JSONError(w, core.UploadError("image too large"))
		return
	}

	username := ""
	if middleware.IsAuthenticated(r.Context()) {
		username = middleware.GetUsername(r.Context())
	}

	outcome, err := h.service.Predict(r.Context(), username, header.Filename, file)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrModelUnavailable):
			core.JSONError(w, core.ModelUnavailableError())
		case errors.Is(err, core.ErrInvalidInput):
			core.BadRequest(w, "file is not a supported image")
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	core.OK(w, PredictionResponse{
		Disease:    outcome.Result.Label,
		ClassIndex: outcome.Result.Index,
		Confidence: outcome.Result.Confidence,
		Remedy:     outcome.Remedy,
		ImageName:  outcome.ImageName,
	})
}

func (h *Handler) ListDiseases(w http.ResponseWriter, _ *http.Request) {
	core.OK(w, map[string]any{
		"diseases": inference.Diseases(),
	})
}

func (h *Handler) ListLogs(w http.ResponseWriter, r *http.Request) {
	logs, err := h.service.ListLogs(r.Context())
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, LogListResponse{Logs: ToLogResponseList(logs)})
}
