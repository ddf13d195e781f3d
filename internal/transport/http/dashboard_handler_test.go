package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"rankpulse/internal/dataprocessing"
	apierrors "rankpulse/internal/errors"
	"rankpulse/internal/infrastructure"
	customMiddleware "rankpulse/internal/middleware"
	"rankpulse/internal/services"
	"rankpulse/pkg/contracts/domain"
)

// MockDashboardService is a mock implementation of DashboardServiceInterface
type MockDashboardService struct {
	mock.Mock
}

func (m *MockDashboardService) ListFiles(ctx context.Context) ([]services.FileEntry, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]services.FileEntry), args.Error(1)
}

func (m *MockDashboardService) Snapshot(ctx context.Context, q services.SnapshotQuery) (*services.SnapshotView, error) {
	args := m.Called(q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.SnapshotView), args.Error(1)
}

func (m *MockDashboardService) UploadSnapshot(ctx context.Context, name string, content []byte, filter domain.ViewFilter) (*services.SnapshotView, error) {
	args := m.Called(name, content, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.SnapshotView), args.Error(1)
}

func (m *MockDashboardService) Opportunities(ctx context.Context, file string) (*services.OpportunitiesView, error) {
	args := m.Called(file)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.OpportunitiesView), args.Error(1)
}

func (m *MockDashboardService) ExportSnapshot(ctx context.Context, q services.SnapshotQuery, dst io.Writer) (string, error) {
	args := m.Called(q, dst)
	return args.String(0), args.Error(1)
}

func (m *MockDashboardService) History(ctx context.Context) (*services.HistoryView, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.HistoryView), args.Error(1)
}

func (m *MockDashboardService) ExportTrends(ctx context.Context, dst io.Writer) (string, error) {
	args := m.Called(dst)
	return args.String(0), args.Error(1)
}

func (m *MockDashboardService) Compare(ctx context.Context, q services.ComparisonQuery) (*services.ComparisonView, error) {
	args := m.Called(q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ComparisonView), args.Error(1)
}

func (m *MockDashboardService) ExportComparison(ctx context.Context, q services.ComparisonQuery, dst io.Writer) (string, error) {
	args := m.Called(q, dst)
	return args.String(0), args.Error(1)
}

func newTestHandler(svc *MockDashboardService, maxUpload int64) http.Handler {
	logger := infrastructure.DiscardLogger()
	h := NewDashboardHandler(
		svc,
		customMiddleware.NewValidator(logger),
		apierrors.NewErrorHandler(logger, false),
		logger,
		maxUpload,
	)
	return h.Routes()
}

func serve(t *testing.T, handler http.Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func defaultFilter() domain.ViewFilter {
	return domain.ViewFilter{SortBy: domain.SortByImpressions}
}

func TestDashboardHandler_ListFiles(t *testing.T) {
	tests := []struct {
		name           string
		setupMock      func(*MockDashboardService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "files listed",
			setupMock: func(m *MockDashboardService) {
				m.On("ListFiles").Return([]services.FileEntry{
					{Name: "gsc_2024-01-01.xlsx", Size: 10, ModTime: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"count":1`,
		},
		{
			name: "data directory missing",
			setupMock: func(m *MockDashboardService) {
				m.On("ListFiles").Return(nil, apierrors.NewAppError(apierrors.ErrTypeNotFound, "data directory not found", nil))
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `"/errors/not-found"`,
		},
		{
			name: "internal error",
			setupMock: func(m *MockDashboardService) {
				m.On("ListFiles").Return(nil, errors.New("disk failure"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `"Internal Server Error"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockDashboardService)
			tt.setupMock(svc)

			rec := serve(t, newTestHandler(svc, 1<<20), httptest.NewRequest(http.MethodGet, "/files", nil))

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.expectedBody)
			svc.AssertExpectations(t)
		})
	}
}

func TestDashboardHandler_GetSnapshot(t *testing.T) {
	tests := []struct {
		name           string
		target         string
		expectedQuery  *services.SnapshotQuery
		serviceErr     error
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "defaults",
			target:         "/snapshot",
			expectedQuery:  &services.SnapshotQuery{Filter: defaultFilter()},
			expectedStatus: http.StatusOK,
			expectedBody:   `"status":"success"`,
		},
		{
			name:   "all parameters",
			target: "/snapshot?file=gsc_2024-01-01.xlsx&positions=1-3,7-10&q=Shoes&min_ctr=2.5&sort=position&limit=20",
			expectedQuery: &services.SnapshotQuery{
				File: "gsc_2024-01-01.xlsx",
				Filter: domain.ViewFilter{
					Buckets:   []domain.PositionBucket{domain.BucketTop3, domain.BucketBottom},
					Search:    "Shoes",
					MinCTR:    2.5,
					SortBy:    domain.SortByPosition,
					Ascending: true,
					Limit:     20,
				},
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:   "repeated positions and explicit order",
			target: "/snapshot?positions=4-6&positions=1-3&sort=clicks&order=asc",
			expectedQuery: &services.SnapshotQuery{Filter: domain.ViewFilter{
				Buckets:   []domain.PositionBucket{domain.BucketMiddle, domain.BucketTop3},
				SortBy:    domain.SortByClicks,
				Ascending: true,
			}},
			expectedStatus: http.StatusOK,
		},
		{
			name:   "keyword sort descending",
			target: "/snapshot?sort=keyword&order=desc",
			expectedQuery: &services.SnapshotQuery{Filter: domain.ViewFilter{
				SortBy: domain.SortByKeyword,
			}},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "unknown position range",
			target:         "/snapshot?positions=11-20",
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `positions[0] must be one of`,
		},
		{
			name:           "limit below minimum",
			target:         "/snapshot?limit=5",
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `VALIDATION_FAILED`,
		},
		{
			name:           "limit not a number",
			target:         "/snapshot?limit=ten",
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `limit must be an integer`,
		},
		{
			name:           "min ctr out of range",
			target:         "/snapshot?min_ctr=150",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "path in file name",
			target:         "/snapshot?file=../secret.xlsx",
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `file must be a plain file name`,
		},
		{
			name:           "unknown sort field",
			target:         "/snapshot?sort=volume",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "schema error",
			target:         "/snapshot",
			expectedQuery:  &services.SnapshotQuery{Filter: defaultFilter()},
			serviceErr:     &dataprocessing.SchemaResolutionError{Missing: []domain.CanonicalField{domain.FieldPosition}, Available: []string{"Query"}},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `"/errors/data/schema"`,
		},
		{
			name:           "no data",
			target:         "/snapshot",
			expectedQuery:  &services.SnapshotQuery{Filter: defaultFilter()},
			serviceErr:     &dataprocessing.NoDataAvailableError{Location: "data"},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `"/errors/data/not-found"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockDashboardService)
			if tt.expectedQuery != nil {
				if tt.serviceErr != nil {
					svc.On("Snapshot", *tt.expectedQuery).Return(nil, tt.serviceErr)
				} else {
					svc.On("Snapshot", *tt.expectedQuery).Return(&services.SnapshotView{Source: "gsc_2024-01-01.xlsx", Matched: 3}, nil)
				}
			}

			rec := serve(t, newTestHandler(svc, 1<<20), httptest.NewRequest(http.MethodGet, tt.target, nil))

			assert.Equal(t, tt.expectedStatus, rec.Code, rec.Body.String())
			if tt.expectedBody != "" {
				assert.Contains(t, rec.Body.String(), tt.expectedBody)
			}
			svc.AssertExpectations(t)
			if tt.expectedQuery == nil {
				svc.AssertNotCalled(t, "Snapshot", mock.Anything)
			}
		})
	}
}

func TestDashboardHandler_GetSnapshotEnvelope(t *testing.T) {
	svc := new(MockDashboardService)
	svc.On("Snapshot", services.SnapshotQuery{Filter: defaultFilter()}).
		Return(&services.SnapshotView{Source: "gsc_2024-01-01.xlsx", Matched: 3}, nil)

	rec := serve(t, newTestHandler(svc, 1<<20), httptest.NewRequest(http.MethodGet, "/snapshot", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")

	body := decodeBody(t, rec)
	assert.Equal(t, "success", body["status"])
	data, ok := body["data"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "gsc_2024-01-01.xlsx", data["source"])
	assert.NotContains(t, body, "count")
}

func multipartUpload(t *testing.T, field, name string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(field, name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestDashboardHandler_UploadSnapshot(t *testing.T) {
	content := []byte("PK fake workbook bytes")

	t.Run("uploaded workbook", func(t *testing.T) {
		svc := new(MockDashboardService)
		filter := domain.ViewFilter{
			Buckets: []domain.PositionBucket{domain.BucketTop3},
			SortBy:  domain.SortByImpressions,
		}
		svc.On("UploadSnapshot", "gsc_2024-03-01.xlsx", content, filter).
			Return(&services.SnapshotView{Source: "gsc_2024-03-01.xlsx"}, nil)

		body, contentType := multipartUpload(t, UploadField, "gsc_2024-03-01.xlsx", content)
		req := httptest.NewRequest(http.MethodPost, "/snapshot/upload?positions=1-3", body)
		req.Header.Set("Content-Type", contentType)

		rec := serve(t, newTestHandler(svc, 1<<20), req)
		assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Contains(t, rec.Body.String(), `"status":"success"`)
		svc.AssertExpectations(t)
	})

	t.Run("invalid upload rejected by service", func(t *testing.T) {
		svc := new(MockDashboardService)
		svc.On("UploadSnapshot", "notes.txt", content, defaultFilter()).
			Return(nil, apierrors.NewAppError(apierrors.ErrTypeValidation, "invalid upload", services.ErrInvalidUpload))

		body, contentType := multipartUpload(t, UploadField, "notes.txt", content)
		req := httptest.NewRequest(http.MethodPost, "/snapshot/upload", body)
		req.Header.Set("Content-Type", contentType)

		rec := serve(t, newTestHandler(svc, 1<<20), req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing file field", func(t *testing.T) {
		svc := new(MockDashboardService)
		body, contentType := multipartUpload(t, "attachment", "gsc.xlsx", content)
		req := httptest.NewRequest(http.MethodPost, "/snapshot/upload", body)
		req.Header.Set("Content-Type", contentType)

		rec := serve(t, newTestHandler(svc, 1<<20), req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "file field")
		svc.AssertNotCalled(t, "UploadSnapshot", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("wrong content type", func(t *testing.T) {
		svc := new(MockDashboardService)
		req := httptest.NewRequest(http.MethodPost, "/snapshot/upload", bytes.NewBufferString(`{}`))
		req.Header.Set("Content-Type", "application/json")

		rec := serve(t, newTestHandler(svc, 1<<20), req)
		assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
		assert.Contains(t, rec.Body.String(), "UNSUPPORTED_MEDIA_TYPE")
	})

	t.Run("upload middleware applied", func(t *testing.T) {
		svc := new(MockDashboardService)
		logger := infrastructure.DiscardLogger()
		blocked := func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusTooManyRequests)
			})
		}
		h := NewDashboardHandler(svc, customMiddleware.NewValidator(logger),
			apierrors.NewErrorHandler(logger, false), logger, 1<<20, blocked)

		body, contentType := multipartUpload(t, UploadField, "gsc.xlsx", content)
		req := httptest.NewRequest(http.MethodPost, "/snapshot/upload", body)
		req.Header.Set("Content-Type", contentType)

		rec := serve(t, h.Routes(), req)
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)

		// Other routes are not limited
		svc.On("History").Return(&services.HistoryView{}, nil)
		rec = serve(t, h.Routes(), httptest.NewRequest(http.MethodGet, "/history/trends", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestDashboardHandler_GetOpportunities(t *testing.T) {
	svc := new(MockDashboardService)
	svc.On("Opportunities", "gsc_2024-01-08.xlsx").Return(&services.OpportunitiesView{
		Source: "gsc_2024-01-08.xlsx",
		Opportunities: domain.Opportunities{
			QuickWins: []domain.KeywordRow{{Keyword: "boots", Position: 5}},
		},
	}, nil)

	rec := serve(t, newTestHandler(svc, 1<<20),
		httptest.NewRequest(http.MethodGet, "/snapshot/opportunities?file=gsc_2024-01-08.xlsx", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"boots"`)
	svc.AssertExpectations(t)
}

func TestDashboardHandler_ExportSnapshot(t *testing.T) {
	t.Run("csv download", func(t *testing.T) {
		svc := new(MockDashboardService)
		svc.On("ExportSnapshot", services.SnapshotQuery{Filter: defaultFilter()}, mock.Anything).
			Run(func(args mock.Arguments) {
				fmt.Fprint(args.Get(1).(io.Writer), "Keyword,Position\nshoes,2\n")
			}).
			Return("keywords_2024-01-08.csv", nil)

		rec := serve(t, newTestHandler(svc, 1<<20), httptest.NewRequest(http.MethodGet, "/snapshot/export", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
		assert.Equal(t, `attachment; filename="keywords_2024-01-08.csv"`, rec.Header().Get("Content-Disposition"))
		assert.Equal(t, "Keyword,Position\nshoes,2\n", rec.Body.String())
	})

	t.Run("export failure renders a problem", func(t *testing.T) {
		svc := new(MockDashboardService)
		svc.On("ExportSnapshot", services.SnapshotQuery{Filter: defaultFilter()}, mock.Anything).
			Run(func(args mock.Arguments) {
				fmt.Fprint(args.Get(1).(io.Writer), "partial")
			}).
			Return("", &dataprocessing.EmptySnapshotError{Source: "gsc.xlsx"})

		rec := serve(t, newTestHandler(svc, 1<<20), httptest.NewRequest(http.MethodGet, "/snapshot/export", nil))

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Empty(t, rec.Header().Get("Content-Disposition"))
		assert.NotContains(t, rec.Body.String(), "partial")
	})
}

func TestDashboardHandler_History(t *testing.T) {
	svc := new(MockDashboardService)
	d := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)
	svc.On("History").Return(&services.HistoryView{
		Trends: []domain.TrendPoint{{Date: &d, Keywords: 3}},
		Dates:  []time.Time{d},
	}, nil)
	svc.On("ExportTrends", mock.Anything).
		Run(func(args mock.Arguments) {
			fmt.Fprint(args.Get(0).(io.Writer), "Date,Keywords\n2024-01-08,3\n")
		}).
		Return(services.TrendsFileName, nil)

	handler := newTestHandler(svc, 1<<20)

	rec := serve(t, handler, httptest.NewRequest(http.MethodGet, "/history/trends", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"available_dates"`)

	rec = serve(t, handler, httptest.NewRequest(http.MethodGet, "/history/trends/export", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), services.TrendsFileName)
	svc.AssertExpectations(t)
}

func TestDashboardHandler_GetComparison(t *testing.T) {
	current := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)
	baseline := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name           string
		target         string
		expectedQuery  *services.ComparisonQuery
		serviceErr     error
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "default periods",
			target:         "/history/compare",
			expectedQuery:  &services.ComparisonQuery{},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "explicit periods",
			target:         "/history/compare?current=2024-01-08&baseline=2024-01-01&limit=5",
			expectedQuery:  &services.ComparisonQuery{Current: &current, Baseline: &baseline, Limit: 5},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "malformed date",
			target:         "/history/compare?current=08/01/2024",
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "YYYY-MM-DD",
		},
		{
			name:           "limit too large",
			target:         "/history/compare?limit=500",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "same dates",
			target:         "/history/compare?current=2024-01-01&baseline=2024-01-01",
			expectedQuery:  &services.ComparisonQuery{Current: &baseline, Baseline: &baseline},
			serviceErr:     dataprocessing.ErrSameComparisonDates,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"/errors/history/same-dates"`,
		},
		{
			name:           "unknown date",
			target:         "/history/compare?current=2024-01-08&baseline=2024-01-01",
			expectedQuery:  &services.ComparisonQuery{Current: &current, Baseline: &baseline},
			serviceErr:     fmt.Errorf("%w: 2024-01-01", dataprocessing.ErrDateNotFound),
			expectedStatus: http.StatusNotFound,
			expectedBody:   `"/errors/history/date-not-found"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockDashboardService)
			if tt.expectedQuery != nil {
				if tt.serviceErr != nil {
					svc.On("Compare", *tt.expectedQuery).Return(nil, tt.serviceErr)
				} else {
					svc.On("Compare", *tt.expectedQuery).Return(&services.ComparisonView{Applicable: true}, nil)
				}
			}

			rec := serve(t, newTestHandler(svc, 1<<20), httptest.NewRequest(http.MethodGet, tt.target, nil))

			assert.Equal(t, tt.expectedStatus, rec.Code, rec.Body.String())
			if tt.expectedBody != "" {
				assert.Contains(t, rec.Body.String(), tt.expectedBody)
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestDashboardHandler_ExportComparison(t *testing.T) {
	t.Run("not applicable", func(t *testing.T) {
		svc := new(MockDashboardService)
		svc.On("ExportComparison", services.ComparisonQuery{}, mock.Anything).
			Return("", apierrors.NewAppError(apierrors.ErrTypeNotFound, "comparison needs two dated snapshots", services.ErrComparisonNotApplicable))

		rec := serve(t, newTestHandler(svc, 1<<20), httptest.NewRequest(http.MethodGet, "/history/export", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Type"), "json")
	})

	t.Run("csv download", func(t *testing.T) {
		svc := new(MockDashboardService)
		svc.On("ExportComparison", services.ComparisonQuery{Limit: 3}, mock.Anything).
			Return("keyword_comparison_2024-01-08_vs_2024-01-01.csv", nil)

		rec := serve(t, newTestHandler(svc, 1<<20), httptest.NewRequest(http.MethodGet, "/history/export?limit=3", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Disposition"), "keyword_comparison_2024-01-08_vs_2024-01-01.csv")
	})
}
