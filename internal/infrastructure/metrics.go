package infrastructure

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// BusinessMetrics holds the application-specific instruments
type BusinessMetrics struct {
	// HTTP metrics
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram
	HTTPActiveRequests  metric.Int64UpDownCounter

	// Ingestion metrics
	FilesProcessed     metric.Int64Counter
	FilesSkipped       metric.Int64Counter
	RowsExtracted      metric.Int64Counter
	ExtractionDuration metric.Float64Histogram

	// Analysis metrics
	ComparisonsTotal metric.Int64Counter
}

// CreateBusinessMetrics creates application-specific metrics on meter. A nil
// meter yields no-op instruments.
func CreateBusinessMetrics(meter metric.Meter) (*BusinessMetrics, error) {
	if meter == nil {
		meter = noop.NewMeterProvider().Meter(MeterName)
	}

	m := &BusinessMetrics{}
	var err error

	if m.HTTPRequestsTotal, err = meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
	); err != nil {
		return nil, err
	}

	if m.HTTPRequestDuration, err = meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	if m.HTTPActiveRequests, err = meter.Int64UpDownCounter(
		"http_active_requests",
		metric.WithDescription("Number of active HTTP requests"),
	); err != nil {
		return nil, err
	}

	if m.FilesProcessed, err = meter.Int64Counter(
		"rankpulse_files_processed_total",
		metric.WithDescription("Spreadsheet files turned into snapshots"),
	); err != nil {
		return nil, err
	}

	if m.FilesSkipped, err = meter.Int64Counter(
		"rankpulse_files_skipped_total",
		metric.WithDescription("Spreadsheet files skipped during aggregation, by reason"),
	); err != nil {
		return nil, err
	}

	if m.RowsExtracted, err = meter.Int64Counter(
		"rankpulse_rows_extracted_total",
		metric.WithDescription("Top-10 keyword rows extracted from snapshots"),
	); err != nil {
		return nil, err
	}

	if m.ExtractionDuration, err = meter.Float64Histogram(
		"rankpulse_extraction_duration_seconds",
		metric.WithDescription("Time to decode and extract one spreadsheet"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	if m.ComparisonsTotal, err = meter.Int64Counter(
		"rankpulse_comparisons_total",
		metric.WithDescription("Period-over-period comparisons computed"),
	); err != nil {
		return nil, err
	}

	return m, nil
}

// NoopBusinessMetrics returns instruments that record nothing
func NoopBusinessMetrics() *BusinessMetrics {
	m, _ := CreateBusinessMetrics(nil)
	return m
}

// RecordFileProcessed records a successfully extracted snapshot
func RecordFileProcessed(ctx context.Context, m *BusinessMetrics, rows int, duration time.Duration) {
	if m == nil {
		return
	}
	m.FilesProcessed.Add(ctx, 1)
	m.RowsExtracted.Add(ctx, int64(rows))
	m.ExtractionDuration.Record(ctx, duration.Seconds(),
		metric.WithAttributes(attribute.String("status", "success")))
}

// RecordFileSkipped records a file dropped from a batch
func RecordFileSkipped(ctx context.Context, m *BusinessMetrics, reason string, duration time.Duration) {
	if m == nil {
		return
	}
	m.FilesSkipped.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
	m.ExtractionDuration.Record(ctx, duration.Seconds(),
		metric.WithAttributes(attribute.String("status", "skipped")))
}

// RecordComparison records a computed comparison
func RecordComparison(ctx context.Context, m *BusinessMetrics, common, added, dropped int) {
	if m == nil {
		return
	}
	m.ComparisonsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.Bool("has_new", added > 0),
		attribute.Bool("has_dropped", dropped > 0),
		attribute.Bool("has_common", common > 0),
	))
}
