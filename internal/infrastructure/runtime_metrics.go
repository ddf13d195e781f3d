package infrastructure

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// RuntimeStats is a point-in-time view of the Go runtime
type RuntimeStats struct {
	Goroutines   int64         `json:"goroutines"`
	HeapBytes    int64         `json:"heap_bytes"`
	SystemBytes  int64         `json:"system_bytes"`
	GCCount      uint32        `json:"gc_count"`
	LastGCPause  time.Duration `json:"last_gc_pause_ns"`
	CPUCount     int           `json:"cpu_count"`
	Uptime       time.Duration `json:"uptime_ns"`
	CollectedAt  time.Time     `json:"collected_at"`
}

// RuntimeSampler records runtime gauges on a fixed interval so long-running
// directory scans show up as heap and goroutine growth on /metrics
type RuntimeSampler struct {
	goroutines  metric.Int64Gauge
	heapBytes   metric.Int64Gauge
	systemBytes metric.Int64Gauge
	gcPause     metric.Float64Histogram
	uptime      metric.Float64Gauge

	startTime time.Time
	interval  time.Duration

	mu      sync.Mutex
	lastGC  uint32
	stopCh  chan struct{}
	stopped bool
}

// NewRuntimeSampler creates the runtime instruments on meter. A nil meter
// yields no-op instruments.
func NewRuntimeSampler(meter metric.Meter, interval time.Duration) (*RuntimeSampler, error) {
	if meter == nil {
		meter = noop.NewMeterProvider().Meter(MeterName)
	}
	if interval <= 0 {
		interval = 15 * time.Second
	}

	s := &RuntimeSampler{
		startTime: time.Now(),
		interval:  interval,
		stopCh:    make(chan struct{}),
	}

	var err error
	if s.goroutines, err = meter.Int64Gauge(
		"runtime_goroutines",
		metric.WithDescription("Number of active goroutines"),
	); err != nil {
		return nil, fmt.Errorf("failed to create goroutine gauge: %w", err)
	}

	if s.heapBytes, err = meter.Int64Gauge(
		"runtime_heap_bytes",
		metric.WithDescription("Bytes of allocated heap objects"),
		metric.WithUnit("By"),
	); err != nil {
		return nil, fmt.Errorf("failed to create heap gauge: %w", err)
	}

	if s.systemBytes, err = meter.Int64Gauge(
		"runtime_system_bytes",
		metric.WithDescription("Memory obtained from the OS in bytes"),
		metric.WithUnit("By"),
	); err != nil {
		return nil, fmt.Errorf("failed to create system memory gauge: %w", err)
	}

	if s.gcPause, err = meter.Float64Histogram(
		"runtime_gc_pause_seconds",
		metric.WithDescription("Garbage collection pause duration"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("failed to create gc pause histogram: %w", err)
	}

	if s.uptime, err = meter.Float64Gauge(
		"process_uptime_seconds",
		metric.WithDescription("Process uptime in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("failed to create uptime gauge: %w", err)
	}

	return s, nil
}

// Sample reads the runtime statistics and records them
func (s *RuntimeSampler) Sample(ctx context.Context) RuntimeStats {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	stats := RuntimeStats{
		Goroutines:  int64(runtime.NumGoroutine()),
		HeapBytes:   int64(mem.HeapAlloc),
		SystemBytes: int64(mem.Sys),
		GCCount:     mem.NumGC,
		LastGCPause: time.Duration(mem.PauseNs[(mem.NumGC+255)%256]),
		CPUCount:    runtime.NumCPU(),
		Uptime:      time.Since(s.startTime),
		CollectedAt: time.Now(),
	}

	s.goroutines.Record(ctx, stats.Goroutines)
	s.heapBytes.Record(ctx, stats.HeapBytes)
	s.systemBytes.Record(ctx, stats.SystemBytes)
	s.uptime.Record(ctx, stats.Uptime.Seconds())

	// Only record a pause once per collection
	s.mu.Lock()
	if stats.GCCount != s.lastGC && stats.LastGCPause > 0 {
		s.gcPause.Record(ctx, stats.LastGCPause.Seconds())
	}
	s.lastGC = stats.GCCount
	s.mu.Unlock()

	return stats
}

// Run samples until ctx is cancelled or Stop is called
func (s *RuntimeSampler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.Sample(ctx)
	for {
		select {
		case <-ticker.C:
			s.Sample(ctx)
		case <-s.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Stop ends Run. It is safe to call more than once.
func (s *RuntimeSampler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.stopped {
		close(s.stopCh)
		s.stopped = true
	}
}

// Map returns the stats in the shape used by the health endpoint
func (stats RuntimeStats) Map() map[string]interface{} {
	return map[string]interface{}{
		"goroutines":       stats.Goroutines,
		"heap_mb":          stats.HeapBytes / 1024 / 1024,
		"system_mb":        stats.SystemBytes / 1024 / 1024,
		"gc_count":         stats.GCCount,
		"last_gc_pause_ms": stats.LastGCPause.Milliseconds(),
		"cpu_count":        stats.CPUCount,
		"uptime_seconds":   int64(stats.Uptime.Seconds()),
	}
}
