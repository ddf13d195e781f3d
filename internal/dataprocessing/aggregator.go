package dataprocessing

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"rankpulse/internal/files"
	"rankpulse/internal/infrastructure"
	"rankpulse/pkg/contracts/domain"
)

// DefaultMaxParallelFiles bounds concurrent workbook decoding
const DefaultMaxParallelFiles = 4

// Skip reasons used as metric labels
const (
	skipReasonSchema     = "schema"
	skipReasonEmpty      = "empty"
	skipReasonProcessing = "processing"
)

// Aggregator builds snapshots from spreadsheet files and merges them into a
// longitudinal table
type Aggregator struct {
	logger      *slog.Logger
	tracer      trace.Tracer
	metrics     *infrastructure.BusinessMetrics
	discovery   *files.Discovery
	maxParallel int
}

// AggregatorOption configures an Aggregator
type AggregatorOption func(*Aggregator)

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) AggregatorOption {
	return func(a *Aggregator) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithTracer sets the tracer used for aggregation spans
func WithTracer(tracer trace.Tracer) AggregatorOption {
	return func(a *Aggregator) {
		if tracer != nil {
			a.tracer = tracer
		}
	}
}

// WithMetrics sets the ingestion instruments
func WithMetrics(metrics *infrastructure.BusinessMetrics) AggregatorOption {
	return func(a *Aggregator) {
		a.metrics = metrics
	}
}

// WithMaxParallel bounds how many files are decoded at once
func WithMaxParallel(n int) AggregatorOption {
	return func(a *Aggregator) {
		if n > 0 {
			a.maxParallel = n
		}
	}
}

// NewAggregator creates a new aggregator
func NewAggregator(opts ...AggregatorOption) *Aggregator {
	a := &Aggregator{
		logger:      slog.Default(),
		tracer:      otel.Tracer(infrastructure.MeterName),
		discovery:   files.NewDiscovery(""),
		maxParallel: DefaultMaxParallelFiles,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = a.logger.With(slog.String("component", "aggregator"))
	return a
}

// LoadDirectory aggregates every spreadsheet directly inside dir.
func (a *Aggregator) LoadDirectory(ctx context.Context, dir string) (*domain.LongitudinalTable, error) {
	found, err := a.discovery.FindSpreadsheets(dir)
	if err != nil {
		return nil, err
	}

	table, err := a.Aggregate(ctx, SourcesFrom(found))
	var noData *NoDataAvailableError
	if errors.As(err, &noData) {
		noData.Location = dir
	}
	return table, err
}

// fileResult is the outcome for one source, stored in its file-order slot
type fileResult struct {
	snapshot *domain.Snapshot
	err      error
}

// Aggregate turns each source into a dated snapshot and concatenates the
// usable ones in file-name order. Files that fail to decode, resolve or
// extract are recorded in Skipped and never abort the batch. When nothing is
// usable a *NoDataAvailableError is returned.
func (a *Aggregator) Aggregate(ctx context.Context, sources []SourceFile) (*domain.LongitudinalTable, error) {
	ctx, span := a.tracer.Start(ctx, "dataprocessing.aggregate",
		trace.WithAttributes(attribute.Int("files.count", len(sources))))
	defer span.End()

	ordered := make([]SourceFile, len(sources))
	copy(ordered, sources)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Name < ordered[j].Name
	})

	results := make([]fileResult, len(ordered))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.maxParallel)
	for i, src := range ordered {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if !files.IsSpreadsheet(src.Name) {
				results[i] = fileResult{err: &ProcessingError{Source: src.Name, Cause: errors.New("unsupported file type")}}
				return nil
			}
			snap, err := a.LoadSnapshot(gctx, src, ResolveSnapshotDate(src))
			results[i] = fileResult{snapshot: snap, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	table := &domain.LongitudinalTable{}
	for i, res := range results {
		name := ordered[i].Name
		if res.err != nil {
			if !IsRecoverable(res.err) {
				infrastructure.RecordError(ctx, res.err)
				return nil, res.err
			}
			a.logger.WarnContext(ctx, "Skipping file",
				slog.String("file", name),
				slog.String("reason", res.err.Error()))
			table.Skipped = append(table.Skipped, domain.SkippedFile{Source: name, Reason: res.err.Error()})
			continue
		}

		snap := res.snapshot
		table.Rows = append(table.Rows, snap.Rows...)
		table.Snapshots = append(table.Snapshots, domain.SnapshotInfo{
			Source:  snap.Source,
			Date:    snap.Date,
			Rows:    snap.Len(),
			Columns: snap.Columns,
		})
	}

	span.SetAttributes(
		attribute.Int("files.loaded", len(table.Snapshots)),
		attribute.Int("files.skipped", len(table.Skipped)),
		attribute.Int("rows.total", len(table.Rows)),
	)

	if len(table.Snapshots) == 0 {
		err := &NoDataAvailableError{Skipped: table.Skipped}
		infrastructure.RecordError(ctx, err)
		return nil, err
	}

	a.logger.InfoContext(ctx, "Aggregated snapshots",
		slog.Int("loaded", len(table.Snapshots)),
		slog.Int("skipped", len(table.Skipped)),
		slog.Int("rows", len(table.Rows)))

	return table, nil
}

// LoadSnapshot decodes, resolves and extracts a single source. date is
// stamped on every row when non-nil; single-file views pass nil.
func (a *Aggregator) LoadSnapshot(ctx context.Context, src SourceFile, date *time.Time) (*domain.Snapshot, error) {
	start := time.Now()

	snap, err := loadSnapshot(src, date)
	if err != nil {
		infrastructure.RecordFileSkipped(ctx, a.metrics, skipReason(err), time.Since(start))
		return nil, err
	}

	infrastructure.RecordFileProcessed(ctx, a.metrics, snap.Len(), time.Since(start))
	a.logger.DebugContext(ctx, "Extracted snapshot",
		slog.String("file", src.Name),
		slog.Int("rows", snap.Len()),
		slog.Bool("ctr_derived", snap.Columns.CTRDerived),
		slog.Bool("ctr_rescaled", snap.Columns.CTRRescaled))

	return snap, nil
}

func loadSnapshot(src SourceFile, date *time.Time) (*domain.Snapshot, error) {
	raw, err := ParseWorkbook(src)
	if err != nil {
		return nil, err
	}

	mapping, err := ResolveColumns(raw.Headers)
	if err != nil {
		var schemaErr *SchemaResolutionError
		if errors.As(err, &schemaErr) {
			schemaErr.Source = src.Name
		}
		return nil, err
	}

	return ExtractSnapshot(raw, mapping, date)
}

func skipReason(err error) string {
	var schemaErr *SchemaResolutionError
	var emptyErr *EmptySnapshotError
	switch {
	case errors.As(err, &schemaErr):
		return skipReasonSchema
	case errors.As(err, &emptyErr):
		return skipReasonEmpty
	default:
		return skipReasonProcessing
	}
}
