// Package services implements the orchestration layer shared by the HTTP and
// CLI adapters of rankpulse.
//
// DashboardService turns the data directory (or an uploaded workbook) into
// the views the dashboard renders:
//
//	svc := services.NewDashboardService(cfg, logger,
//	    services.WithTracer(providers.Tracer),
//	    services.WithMetrics(metrics),
//	)
//
//	view, err := svc.Snapshot(ctx, services.SnapshotQuery{File: "gsc_2024-01-08.xlsx"})
//	history, err := svc.History(ctx)
//	cmp, err := svc.Compare(ctx, services.ComparisonQuery{})
//
// Every call re-reads the spreadsheets; there is no cache. Errors are the
// typed errors of the dataprocessing package, files.ErrFileNotFound, or
// *errors.AppError values, all of which internal/errors maps to RFC 7807
// responses.
//
// HealthService reports whether the data directory is usable.
package services
