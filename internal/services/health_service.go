package services

import (
	"context"
	"log/slog"
	"os"
	"runtime"
	"time"
)

// HealthService provides health check functionality
type HealthService struct {
	version    string
	sourcePath string
	cache      SnapshotProvider
	startTime  time.Time
	logger     *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
	Dataset   map[string]interface{} `json:"dataset,omitempty"`
}

// NewHealthService creates a new health service.
func NewHealthService(version, sourcePath string, cache SnapshotProvider, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		version:    version,
		sourcePath: sourcePath,
		cache:      cache,
		startTime:  time.Now(),
		logger:     logger.With(slog.String("component", "health_service")),
	}
}

// HealthCheck reports liveness plus basic runtime information.
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"go_version":     runtime.Version(),
			"goroutines":     runtime.NumGoroutine(),
			"uptime_seconds": time.Since(hs.startTime).Seconds(),
		},
	}
}

// ReadinessCheck probes the dataset source: the service is ready when the
// source file is readable and the record set can be built. An empty record
// set is still ready; it is a valid terminal state.
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ready",
		Timestamp: time.Now(),
		Version:   hs.version,
		Dataset:   map[string]interface{}{"source": hs.sourcePath},
	}

	if _, err := os.Stat(hs.sourcePath); err != nil {
		status.Status = "not_ready"
		status.Dataset["error"] = err.Error()
		return status
	}

	snap, err := hs.cache.Load(ctx)
	if err != nil {
		hs.logger.WarnContext(ctx, "readiness probe failed to load dataset",
			slog.String("error", err.Error()))
		status.Status = "not_ready"
		status.Dataset["error"] = err.Error()
		return status
	}

	status.Dataset["records"] = len(snap.Records)
	status.Dataset["loaded_at"] = snap.LoadedAt
	return status
}
