package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "rankpulse/internal/errors"
	customMiddleware "rankpulse/internal/middleware"
)

// UploadField is the multipart form field carrying an uploaded workbook
const UploadField = "file"

// multipartMemory is how much of an upload ParseMultipartForm keeps in memory
const multipartMemory = 8 << 20

// DashboardHandler serves the keyword dashboard API with RFC 7807 errors
type DashboardHandler struct {
	service          DashboardServiceInterface
	validator        *customMiddleware.Validator
	errorHandler     *apierrors.ErrorHandler
	logger           *slog.Logger
	maxUploadBytes   int64
	uploadMiddleware []func(http.Handler) http.Handler
}

// NewDashboardHandler creates a new dashboard handler. uploadMiddleware is
// applied to the upload route only, after the body size limit.
func NewDashboardHandler(
	service DashboardServiceInterface,
	validator *customMiddleware.Validator,
	errorHandler *apierrors.ErrorHandler,
	logger *slog.Logger,
	maxUploadBytes int64,
	uploadMiddleware ...func(http.Handler) http.Handler,
) *DashboardHandler {
	return &DashboardHandler{
		service:          service,
		validator:        validator,
		errorHandler:     errorHandler,
		logger:           logger.With(slog.String("component", "dashboard_handler")),
		maxUploadBytes:   maxUploadBytes,
		uploadMiddleware: uploadMiddleware,
	}
}

// Routes returns the dashboard routes
func (h *DashboardHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/files", h.ListFiles)

	r.Route("/snapshot", func(r chi.Router) {
		r.Get("/", h.GetSnapshot)
		r.Get("/opportunities", h.GetOpportunities)
		r.Get("/export", h.ExportSnapshot)

		upload := append([]func(http.Handler) http.Handler{
			customMiddleware.MaxBodySize(h.maxUploadBytes),
			customMiddleware.ContentTypeValidator(h.errorHandler, "multipart/form-data"),
		}, h.uploadMiddleware...)
		r.With(upload...).Post("/upload", h.UploadSnapshot)
	})

	r.Route("/history", func(r chi.Router) {
		r.Get("/trends", h.GetTrends)
		r.Get("/trends/export", h.ExportTrends)
		r.Get("/compare", h.GetComparison)
		r.Get("/export", h.ExportComparison)
	})

	return r
}

// ListFiles handles GET /api/files
func (h *DashboardHandler) ListFiles(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.ListFiles(r.Context())
	if err != nil {
		h.fail(w, r, "failed to list files", err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   entries,
		"count":  len(entries),
	})
}

// GetSnapshot handles GET /api/snapshot
func (h *DashboardHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	params, ok := h.snapshotParams(w, r)
	if !ok {
		return
	}

	view, err := h.service.Snapshot(r.Context(), params.query())
	if err != nil {
		h.fail(w, r, "failed to build snapshot view", err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   view,
	})
}

// UploadSnapshot handles POST /api/snapshot/upload. The workbook arrives in
// the "file" multipart field; view parameters come from the query string.
func (h *DashboardHandler) UploadSnapshot(w http.ResponseWriter, r *http.Request) {
	params, ok := h.snapshotParams(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		h.failUpload(w, r, err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile(UploadField)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation(UploadField, "a spreadsheet must be uploaded in the file field"))
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		h.failUpload(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "snapshot uploaded",
		slog.String("request_id", customMiddleware.GetRequestID(r.Context())),
		slog.String("file", header.Filename),
		slog.Int64("size_bytes", header.Size),
	)

	view, err := h.service.UploadSnapshot(r.Context(), header.Filename, content, params.filter())
	if err != nil {
		h.fail(w, r, "failed to process upload", err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   view,
	})
}

// GetOpportunities handles GET /api/snapshot/opportunities
func (h *DashboardHandler) GetOpportunities(w http.ResponseWriter, r *http.Request) {
	params, ok := h.snapshotParams(w, r)
	if !ok {
		return
	}

	view, err := h.service.Opportunities(r.Context(), params.File)
	if err != nil {
		h.fail(w, r, "failed to find opportunities", err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   view,
	})
}

// ExportSnapshot handles GET /api/snapshot/export
func (h *DashboardHandler) ExportSnapshot(w http.ResponseWriter, r *http.Request) {
	params, ok := h.snapshotParams(w, r)
	if !ok {
		return
	}

	h.sendCSV(w, r, func(ctx context.Context, dst io.Writer) (string, error) {
		return h.service.ExportSnapshot(ctx, params.query(), dst)
	})
}

// GetTrends handles GET /api/history/trends
func (h *DashboardHandler) GetTrends(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.History(r.Context())
	if err != nil {
		h.fail(w, r, "failed to build history", err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   view,
	})
}

// ExportTrends handles GET /api/history/trends/export
func (h *DashboardHandler) ExportTrends(w http.ResponseWriter, r *http.Request) {
	h.sendCSV(w, r, h.service.ExportTrends)
}

// GetComparison handles GET /api/history/compare
func (h *DashboardHandler) GetComparison(w http.ResponseWriter, r *http.Request) {
	params, ok := h.compareParams(w, r)
	if !ok {
		return
	}

	view, err := h.service.Compare(r.Context(), params.query())
	if err != nil {
		h.fail(w, r, "failed to compare snapshots", err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   view,
	})
}

// ExportComparison handles GET /api/history/export
func (h *DashboardHandler) ExportComparison(w http.ResponseWriter, r *http.Request) {
	params, ok := h.compareParams(w, r)
	if !ok {
		return
	}

	h.sendCSV(w, r, func(ctx context.Context, dst io.Writer) (string, error) {
		return h.service.ExportComparison(ctx, params.query(), dst)
	})
}

// snapshotParams parses and validates snapshot parameters, writing the error
// response itself when they are invalid
func (h *DashboardHandler) snapshotParams(w http.ResponseWriter, r *http.Request) (snapshotParams, bool) {
	params, err := parseSnapshotParams(r.URL.Query())
	if err == nil {
		err = h.validator.ValidateStruct(params)
	}
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return params, false
	}
	return params, true
}

// compareParams parses and validates comparison parameters
func (h *DashboardHandler) compareParams(w http.ResponseWriter, r *http.Request) (compareParams, bool) {
	params, err := parseCompareParams(r.URL.Query())
	if err == nil {
		err = h.validator.ValidateStruct(params)
	}
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return params, false
	}
	return params, true
}

// sendCSV renders the export into memory first so a failure still produces
// a problem response instead of a truncated download
func (h *DashboardHandler) sendCSV(w http.ResponseWriter, r *http.Request, export func(context.Context, io.Writer) (string, error)) {
	var buf bytes.Buffer
	name, err := export(r.Context(), &buf)
	if err != nil {
		h.fail(w, r, "failed to export csv", err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.WarnContext(r.Context(), "csv download interrupted",
			slog.String("file", name),
			slog.String("error", err.Error()))
	}
}

// failUpload maps multipart and body read errors
func (h *DashboardHandler) failUpload(w http.ResponseWriter, r *http.Request, err error) {
	var sizeErr *http.MaxBytesError
	if errors.As(err, &sizeErr) {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
}

func (h *DashboardHandler) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	h.logger.DebugContext(r.Context(), msg,
		slog.String("request_id", customMiddleware.GetRequestID(r.Context())),
		slog.String("error", err.Error()),
	)
	h.errorHandler.HandleError(w, r, err)
}
