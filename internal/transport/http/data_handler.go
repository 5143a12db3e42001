package http

import (
	"errors"
	"log/slog"
	"net/http"
	"regexp"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "zhvipulse/internal/errors"
	"zhvipulse/internal/services"
)

var zipPattern = regexp.MustCompile(`^\d{5}$`)

// DataHandler serves the per-ZIP series, KPI summary and insight endpoints
// the dashboard consumes.
type DataHandler struct {
	service DataServiceInterface
	logger  *slog.Logger
}

// NewDataHandler creates a new data handler
func NewDataHandler(service DataServiceInterface, logger *slog.Logger) *DataHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &DataHandler{
		service: service,
		logger:  logger.With(slog.String("component", "data_handler")),
	}
}

// Routes returns the data routes
func (h *DataHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/zips", h.GetZips)
	r.Route("/zips/{zip}", func(r chi.Router) {
		r.Use(h.ZipCtx)
		r.Get("/series", h.GetSeries)
		r.Get("/summary", h.GetSummary)
		r.Get("/insight", h.GetInsight)
	})

	return r
}

// ZipCtx validates the zip URL parameter
func (h *DataHandler) ZipCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		zip := chi.URLParam(r, "zip")
		if !zipPattern.MatchString(zip) {
			h.renderError(w, r, apierrors.ErrValidation("zip", "ZIP code must be 5 digits"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetZips handles GET /api/zips
func (h *DataHandler) GetZips(w http.ResponseWriter, r *http.Request) {
	zips := h.service.Zips(r.Context())
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   zips,
		"count":  len(zips),
	})
}

// GetSeries handles GET /api/zips/{zip}/series
func (h *DataHandler) GetSeries(w http.ResponseWriter, r *http.Request) {
	zip := chi.URLParam(r, "zip")

	points, err := h.service.Series(r.Context(), zip)
	if err != nil {
		h.handleServiceError(w, r, zip, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"zip":    zip,
		"data":   points,
		"count":  len(points),
	})
}

// GetSummary handles GET /api/zips/{zip}/summary
func (h *DataHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	zip := chi.URLParam(r, "zip")

	kpi, err := h.service.Summary(r.Context(), zip)
	if err != nil {
		h.handleServiceError(w, r, zip, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"zip":    zip,
		"data":   kpi,
	})
}

// GetInsight handles GET /api/zips/{zip}/insight
func (h *DataHandler) GetInsight(w http.ResponseWriter, r *http.Request) {
	zip := chi.URLParam(r, "zip")

	insight, err := h.service.Insight(r.Context(), zip)
	if err != nil {
		h.handleServiceError(w, r, zip, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status":  "success",
		"zip":     zip,
		"insight": insight,
	})
}

func (h *DataHandler) handleServiceError(w http.ResponseWriter, r *http.Request, zip string, err error) {
	if errors.Is(err, services.ErrZipNotFound) {
		h.renderError(w, r, apierrors.NotFoundError("ZIP "+zip))
		return
	}

	h.logger.ErrorContext(r.Context(), "data service error",
		slog.String("zip", zip),
		slog.String("error", err.Error()))
	h.renderError(w, r, apierrors.FromError(err))
}

func (h *DataHandler) renderError(w http.ResponseWriter, r *http.Request, apiErr *apierrors.APIError) {
	if err := render.Render(w, r, apierrors.NewErrorResponse(apiErr)); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to render error response",
			slog.String("error", err.Error()))
	}
}
