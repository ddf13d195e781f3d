package http

import (
	"context"
	"io"

	"rankpulse/internal/services"
	"rankpulse/pkg/contracts/domain"
)

// DashboardServiceInterface defines the keyword analysis operations the
// handlers need
type DashboardServiceInterface interface {
	ListFiles(ctx context.Context) ([]services.FileEntry, error)
	Snapshot(ctx context.Context, q services.SnapshotQuery) (*services.SnapshotView, error)
	UploadSnapshot(ctx context.Context, name string, content []byte, filter domain.ViewFilter) (*services.SnapshotView, error)
	Opportunities(ctx context.Context, file string) (*services.OpportunitiesView, error)
	ExportSnapshot(ctx context.Context, q services.SnapshotQuery, dst io.Writer) (string, error)
	History(ctx context.Context) (*services.HistoryView, error)
	ExportTrends(ctx context.Context, dst io.Writer) (string, error)
	Compare(ctx context.Context, q services.ComparisonQuery) (*services.ComparisonView, error)
	ExportComparison(ctx context.Context, q services.ComparisonQuery, dst io.Writer) (string, error)
}
