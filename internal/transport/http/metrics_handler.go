package http

import (
	"net/http"

	"github.com/go-chi/render"

	apierrors "rankpulse/internal/errors"
)

// MetricsHandler exposes the Prometheus scrape endpoint
type MetricsHandler struct {
	prometheus http.Handler
}

// NewMetricsHandler creates a metrics handler around the Prometheus exporter
// handler. A nil handler means the metric exporter is disabled.
func NewMetricsHandler(prometheus http.Handler) *MetricsHandler {
	return &MetricsHandler{prometheus: prometheus}
}

// ServeHTTP handles GET /metrics
func (h *MetricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.prometheus == nil {
		render.Render(w, r, apierrors.NewProblemDetails(
			http.StatusNotFound,
			apierrors.TypeNotFound,
			"Metrics Disabled",
			"The Prometheus metric exporter is not enabled",
			r.URL.Path,
		))
		return
	}
	h.prometheus.ServeHTTP(w, r)
}
