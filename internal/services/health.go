package services

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/sdos/internal/shared"
)

// HealthStatus is the backend's answer to GET /health.
type HealthStatus struct {
	Status  string        `json:"status"`
	Latency time.Duration `json:"-"`
}

type HealthService struct {
	api *APIService
}

func NewHealthService(api *APIService) *HealthService {
	return &HealthService{api: api}
}

// Check pings the backend. Anything but a 2xx "ok" is [shared.ErrServiceUnavailable].
func (h *HealthService) Check(ctx context.Context) (HealthStatus, error) {
	start := time.Now()
	resp, err := h.api.Get(ctx, "/health")
	if err != nil {
		return HealthStatus{}, fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}

	status := HealthStatus{Latency: time.Since(start)}
	if !resp.OK() {
		return status, fmt.Errorf("%w: status %d", shared.ErrServiceUnavailable, resp.StatusCode)
	}
	if err := resp.Decode(&status); err != nil {
		return status, fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}
	if status.Status != "ok" {
		return status, fmt.Errorf("%w: backend reports %q", shared.ErrServiceUnavailable, status.Status)
	}
	return status, nil
}
