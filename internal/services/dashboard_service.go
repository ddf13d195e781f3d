package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"rankpulse/internal/config"
	"rankpulse/internal/dataprocessing"
	"rankpulse/internal/exporter"
	"rankpulse/internal/files"
	"rankpulse/internal/infrastructure"
	"rankpulse/internal/validation"
	"rankpulse/pkg/contracts/domain"
)

// TrendsFileName is the download name of the trend export
const TrendsFileName = "keyword_trends.csv"

// DashboardService orchestrates the keyword analysis for the HTTP and CLI
// adapters. Every call reads the spreadsheets again; nothing is cached
// between requests.
type DashboardService struct {
	dataDir     string
	reportsDir  string
	topN        int
	moversLimit int

	discovery  *files.Discovery
	aggregator *dataprocessing.Aggregator
	validator  *validation.FileValidator
	csv        *exporter.CSVWriter
	tracer     trace.Tracer
	metrics    *infrastructure.BusinessMetrics
	logger     *slog.Logger
}

// Option configures a DashboardService
type Option func(*DashboardService)

// WithTracer sets the tracer used for history and comparison spans
func WithTracer(tracer trace.Tracer) Option {
	return func(s *DashboardService) {
		if tracer != nil {
			s.tracer = tracer
		}
	}
}

// WithMetrics sets the business metrics instruments
func WithMetrics(metrics *infrastructure.BusinessMetrics) Option {
	return func(s *DashboardService) {
		s.metrics = metrics
	}
}

// NewDashboardService creates a dashboard service reading spreadsheets from
// cfg.Paths.DataDir
func NewDashboardService(cfg *config.Config, logger *slog.Logger, opts ...Option) *DashboardService {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &DashboardService{
		dataDir:     cfg.Paths.DataDir,
		reportsDir:  cfg.Paths.ReportsDir,
		topN:        cfg.Analysis.TopN,
		moversLimit: cfg.Analysis.MoversLimit,
		discovery:   files.NewDiscovery(""),
		validator:   validation.NewFileValidator(logger),
		csv:         exporter.NewCSVWriter(cfg.Paths.ReportsDir, logger),
		tracer:      otel.Tracer(infrastructure.MeterName),
		logger:      logger.With(slog.String("component", "dashboard_service")),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.aggregator = dataprocessing.NewAggregator(
		dataprocessing.WithLogger(logger),
		dataprocessing.WithTracer(s.tracer),
		dataprocessing.WithMetrics(s.metrics),
		dataprocessing.WithMaxParallel(cfg.Analysis.MaxParallelFiles),
	)

	s.logger.Info("DashboardService initialized",
		slog.String("data_dir", s.dataDir),
		slog.String("reports_dir", s.reportsDir),
		slog.Int("top_n", s.topN))

	return s
}

// DataDir returns the directory spreadsheets are read from
func (s *DashboardService) DataDir() string {
	return s.dataDir
}

// ListFiles returns the spreadsheets of the data directory in name order
// with the snapshot date each would get
func (s *DashboardService) ListFiles(ctx context.Context) ([]FileEntry, error) {
	found, err := s.findSpreadsheets()
	if err != nil {
		return nil, err
	}

	entries := make([]FileEntry, 0, len(found))
	for _, f := range found {
		entries = append(entries, FileEntry{
			Name:    f.Name,
			Size:    f.Size,
			ModTime: f.ModTime,
			Date:    dataprocessing.ResolveSnapshotDate(dataprocessing.FileSource(f.Path)),
		})
	}

	s.logger.DebugContext(ctx, "Listed spreadsheets", slog.Int("count", len(entries)))
	return entries, nil
}

// Snapshot builds the view of one spreadsheet from the data directory
func (s *DashboardService) Snapshot(ctx context.Context, q SnapshotQuery) (*SnapshotView, error) {
	snap, date, err := s.loadFromDataDir(ctx, q.File)
	if err != nil {
		return nil, err
	}
	return s.buildView(snap, date, q.Filter), nil
}

// UploadSnapshot builds the view of an uploaded spreadsheet. Uploads have no
// modification time, so their date comes from the file name or is unknown.
func (s *DashboardService) UploadSnapshot(ctx context.Context, name string, content []byte, filter domain.ViewFilter) (*SnapshotView, error) {
	if err := s.validator.ValidateUploadName(name); err != nil {
		return nil, invalidUpload(err)
	}
	if len(content) == 0 {
		return nil, invalidUpload(fmt.Errorf("uploaded file %q is empty", name))
	}

	src := dataprocessing.UploadSource(name, content)
	snap, err := s.aggregator.LoadSnapshot(ctx, src, nil)
	if err != nil {
		return nil, undecodable(src.Name, err)
	}

	s.logger.InfoContext(ctx, "Processed upload",
		slog.String("file", src.Name),
		slog.Int("size_bytes", len(content)),
		slog.Int("rows", snap.Len()))

	return s.buildView(snap, dataprocessing.ResolveSnapshotDate(src), filter), nil
}

// Opportunities finds the opportunity subsets of one spreadsheet
func (s *DashboardService) Opportunities(ctx context.Context, file string) (*OpportunitiesView, error) {
	snap, date, err := s.loadFromDataDir(ctx, file)
	if err != nil {
		return nil, err
	}
	return &OpportunitiesView{
		Source:        snap.Source,
		Date:          date,
		Opportunities: dataprocessing.FindOpportunities(snap),
	}, nil
}

// ExportSnapshot writes the filtered keyword table of one spreadsheet as CSV
// to dst and returns the download file name. The filter limit is ignored.
func (s *DashboardService) ExportSnapshot(ctx context.Context, q SnapshotQuery, dst io.Writer) (string, error) {
	snap, _, err := s.loadFromDataDir(ctx, q.File)
	if err != nil {
		return "", err
	}

	filter := q.Filter
	filter.Limit = 0
	rows := dataprocessing.ApplyFilter(snap.Rows, filter)

	if err := exporter.WriteKeywords(dst, rows, snap.ExtraColumns); err != nil {
		return "", fmt.Errorf("failed to export %s: %w", snap.Source, err)
	}
	return exporter.SnapshotFileName(snap.Source), nil
}

// SaveSnapshotReport writes the keyword export of one spreadsheet into the
// reports directory and returns the path written
func (s *DashboardService) SaveSnapshotReport(ctx context.Context, q SnapshotQuery) (string, error) {
	snap, _, err := s.loadFromDataDir(ctx, q.File)
	if err != nil {
		return "", err
	}
	if err := s.validator.ValidateReportsDirectory(s.reportsDir); err != nil {
		return "", err
	}

	filter := q.Filter
	filter.Limit = 0
	headers, records := exporter.KeywordRecords(dataprocessing.ApplyFilter(snap.Rows, filter), snap.ExtraColumns)

	return s.csv.WriteCSV(exporter.SnapshotFileName(snap.Source), exporter.WriteOptions{
		Headers:   headers,
		Records:   records,
		BOMPrefix: true,
	})
}

// History aggregates every spreadsheet of the data directory into trend
// points
func (s *DashboardService) History(ctx context.Context) (*HistoryView, error) {
	ctx, span := s.tracer.Start(ctx, "services.history")
	defer span.End()

	table, err := s.loadTable(ctx)
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}

	view := &HistoryView{
		Trends:    dataprocessing.Trends(table),
		Dates:     dataprocessing.AvailableDates(table),
		Snapshots: table.Snapshots,
		Skipped:   table.Skipped,
	}
	if view.Dates == nil {
		view.Dates = []time.Time{}
	}
	if view.Skipped == nil {
		view.Skipped = []domain.SkippedFile{}
	}

	span.SetAttributes(
		attribute.Int("snapshots.count", len(view.Snapshots)),
		attribute.Int("dates.count", len(view.Dates)),
	)
	return view, nil
}

// ExportTrends writes the trend points of the data directory as CSV to dst
// and returns the download file name
func (s *DashboardService) ExportTrends(ctx context.Context, dst io.Writer) (string, error) {
	view, err := s.History(ctx)
	if err != nil {
		return "", err
	}
	if err := exporter.WriteTrends(dst, view.Trends); err != nil {
		return "", fmt.Errorf("failed to export trends: %w", err)
	}
	return TrendsFileName, nil
}

// Compare computes the comparison between two snapshot dates plus the
// biggest movers. With fewer than two known dates the view is returned with
// Applicable set to false instead of an error.
func (s *DashboardService) Compare(ctx context.Context, q ComparisonQuery) (*ComparisonView, error) {
	ctx, span := s.tracer.Start(ctx, "services.compare")
	defer span.End()

	table, err := s.loadTable(ctx)
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}

	view := &ComparisonView{
		Dates:   dataprocessing.AvailableDates(table),
		Skipped: table.Skipped,
	}
	if view.Dates == nil {
		view.Dates = []time.Time{}
	}

	latest, previous, ok := dataprocessing.DefaultPeriods(table)
	if !ok {
		view.Reason = fmt.Sprintf("comparison needs at least two dated snapshots, found %d", len(view.Dates))
		span.SetAttributes(attribute.Bool("comparison.applicable", false))
		return view, nil
	}

	current, baseline := latest, previous
	if q.Current != nil {
		current = *q.Current
	}
	if q.Baseline != nil {
		baseline = *q.Baseline
	}

	span.SetAttributes(
		attribute.String("comparison.current", current.Format(time.DateOnly)),
		attribute.String("comparison.baseline", baseline.Format(time.DateOnly)),
	)

	result, err := dataprocessing.Compare(table, current, baseline)
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}

	infrastructure.RecordComparison(ctx, s.metrics, result.Common, len(result.New), len(result.Dropped))

	limit := q.Limit
	if limit <= 0 {
		limit = s.moversLimit
	}
	movers := dataprocessing.BiggestMovers(result, limit)

	view.Applicable = true
	view.Comparison = result
	view.Movers = &movers

	s.logger.InfoContext(ctx, "Compared snapshots",
		slog.String("current", current.Format(time.DateOnly)),
		slog.String("baseline", baseline.Format(time.DateOnly)),
		slog.Int("common", result.Common),
		slog.Int("new", len(result.New)),
		slog.Int("dropped", len(result.Dropped)))

	return view, nil
}

// ExportComparison writes a comparison as CSV to dst and returns the
// download file name
func (s *DashboardService) ExportComparison(ctx context.Context, q ComparisonQuery, dst io.Writer) (string, error) {
	view, err := s.Compare(ctx, q)
	if err != nil {
		return "", err
	}
	if !view.Applicable {
		return "", notApplicable(len(view.Dates))
	}

	if err := exporter.WriteComparison(dst, view.Comparison); err != nil {
		return "", fmt.Errorf("failed to export comparison: %w", err)
	}
	return exporter.ComparisonFileName(view.Comparison.Current, view.Comparison.Baseline), nil
}

// SaveComparisonReport writes a comparison into the reports directory and
// returns the path written
func (s *DashboardService) SaveComparisonReport(ctx context.Context, q ComparisonQuery) (string, error) {
	view, err := s.Compare(ctx, q)
	if err != nil {
		return "", err
	}
	if !view.Applicable {
		return "", notApplicable(len(view.Dates))
	}
	if err := s.validator.ValidateReportsDirectory(s.reportsDir); err != nil {
		return "", err
	}

	result := view.Comparison
	return s.csv.WriteCSV(exporter.ComparisonFileName(result.Current, result.Baseline), exporter.WriteOptions{
		Headers:   exporter.ComparisonHeaders,
		Records:   exporter.ComparisonRecords(result),
		BOMPrefix: true,
	})
}

// findSpreadsheets lists the data directory after checking it exists
func (s *DashboardService) findSpreadsheets() ([]files.FileInfo, error) {
	if err := s.validator.ValidateDataDirectory(s.dataDir); err != nil {
		return nil, dataDirUnavailable(s.dataDir, err)
	}
	found, err := s.discovery.FindSpreadsheets(s.dataDir)
	if err != nil {
		return nil, dataDirUnavailable(s.dataDir, err)
	}
	return found, nil
}

// loadFromDataDir extracts the named spreadsheet, or the latest one when
// name is empty, and resolves its date
func (s *DashboardService) loadFromDataDir(ctx context.Context, name string) (*domain.Snapshot, *time.Time, error) {
	found, err := s.findSpreadsheets()
	if err != nil {
		return nil, nil, err
	}

	var file files.FileInfo
	if name == "" {
		latest, ok := files.GetLatestFile(found)
		if !ok {
			return nil, nil, &dataprocessing.NoDataAvailableError{Location: s.dataDir}
		}
		file = latest
	} else {
		file, err = s.discovery.FindSpreadsheet(s.dataDir, name)
		if err != nil {
			return nil, nil, err
		}
	}

	src := dataprocessing.FileSource(file.Path)
	snap, err := s.aggregator.LoadSnapshot(ctx, src, nil)
	if err != nil {
		return nil, nil, undecodable(src.Name, err)
	}
	return snap, dataprocessing.ResolveSnapshotDate(src), nil
}

// loadTable aggregates the whole data directory
func (s *DashboardService) loadTable(ctx context.Context) (*domain.LongitudinalTable, error) {
	if err := s.validator.ValidateDataDirectory(s.dataDir); err != nil {
		return nil, dataDirUnavailable(s.dataDir, err)
	}
	return s.aggregator.LoadDirectory(ctx, s.dataDir)
}

// buildView applies filter to snap. A zero limit uses the configured top-N.
func (s *DashboardService) buildView(snap *domain.Snapshot, date *time.Time, filter domain.ViewFilter) *SnapshotView {
	if filter.SortBy == "" {
		filter.SortBy = domain.SortByImpressions
	}
	if filter.Limit <= 0 {
		filter.Limit = s.topN
	}

	unlimited := filter
	unlimited.Limit = 0
	rows := dataprocessing.ApplyFilter(snap.Rows, unlimited)
	matched := len(rows)
	if len(rows) > filter.Limit {
		rows = rows[:filter.Limit]
	}

	return &SnapshotView{
		Source:       snap.Source,
		Date:         date,
		Columns:      snap.Columns,
		ExtraColumns: snap.ExtraColumns,
		Summary:      dataprocessing.Summarize(snap.Rows),
		Distribution: dataprocessing.PositionDistribution(snap.Rows),
		TopKeywords:  dataprocessing.TopKeywords(snap.Rows, TopTableSize),
		Keywords:     rows,
		Matched:      matched,
		Filter:       filter,
	}
}

func recordSpanError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
