package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"

	"rankpulse/internal/files"
	"rankpulse/internal/infrastructure"
)

// HealthService provides health check functionality
type HealthService struct {
	version   string
	dataDir   string
	startTime time.Time
	sampler   *infrastructure.RuntimeSampler
	logger    *slog.Logger
}

// HealthOption configures a HealthService
type HealthOption func(*HealthService)

// WithRuntimeSampler reports runtime statistics from sampler, which also
// records them as metrics
func WithRuntimeSampler(sampler *infrastructure.RuntimeSampler) HealthOption {
	return func(hs *HealthService) {
		hs.sampler = sampler
	}
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                   `json:"status"`
	Timestamp time.Time                `json:"timestamp"`
	Version   string                   `json:"version"`
	Runtime   map[string]interface{}   `json:"runtime,omitempty"`
	Services  map[string]ServiceHealth `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// NewHealthService creates a new health service watching dataDir
func NewHealthService(version, dataDir string, logger *slog.Logger, opts ...HealthOption) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	hs := &HealthService{
		version:   version,
		dataDir:   dataDir,
		startTime: time.Now(),
		logger:    logger.With(slog.String("component", "health_service")),
	}
	for _, opt := range opts {
		opt(hs)
	}
	return hs
}

// HealthCheck returns overall health status. The service is degraded, not
// down, when the data directory is unusable: uploads still work.
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime:   hs.runtimeStats(ctx),
		Services: map[string]ServiceHealth{
			"data": hs.checkDataHealth(),
		},
	}

	if status.Services["data"].Status != "ready" {
		status.Status = "degraded"
	}

	hs.logger.DebugContext(ctx, "Health check completed",
		slog.String("status", status.Status))

	return status
}

func (hs *HealthService) runtimeStats(ctx context.Context) map[string]interface{} {
	if hs.sampler != nil {
		stats := hs.sampler.Sample(ctx).Map()
		stats["go_version"] = runtime.Version()
		return stats
	}
	return map[string]interface{}{
		"uptime_seconds": time.Since(hs.startTime).Seconds(),
		"go_version":     runtime.Version(),
		"goroutines":     runtime.NumGoroutine(),
	}
}

// checkDataHealth checks that the data directory is readable
func (hs *HealthService) checkDataHealth() ServiceHealth {
	info, err := os.Stat(hs.dataDir)
	if err != nil {
		return ServiceHealth{
			Status:  "not_ready",
			Message: fmt.Sprintf("Data directory not found: %s", hs.dataDir),
		}
	}
	if !info.IsDir() {
		return ServiceHealth{
			Status:  "not_ready",
			Message: fmt.Sprintf("Data path is not a directory: %s", hs.dataDir),
		}
	}

	found, err := files.NewDiscovery("").FindSpreadsheets(hs.dataDir)
	if err != nil {
		return ServiceHealth{
			Status:  "not_ready",
			Message: fmt.Sprintf("Cannot read data directory: %v", err),
		}
	}

	return ServiceHealth{
		Status:  "ready",
		Message: fmt.Sprintf("%d spreadsheets available", len(found)),
	}
}
