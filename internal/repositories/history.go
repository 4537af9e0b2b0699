package repositories

import (
	"context"
	"fmt"

	"github.com/desertthunder/sdos/internal/models"
)

// RouteHistory implements tasks.HistoryRecorder using RouteRepository.
//
// Paths already recorded for the same pair are silently skipped.
type RouteHistory struct {
	repo *RouteRepository
}

// NewRouteHistory creates a new RouteHistory with the given repository
func NewRouteHistory(repo *RouteRepository) *RouteHistory {
	return &RouteHistory{repo: repo}
}

// Record stores path as discovered in sessionID.
// Returns nil if the route already exists.
func (h *RouteHistory) Record(ctx context.Context, sessionID string, path models.Path, seconds float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	route := models.NewRouteRecord(0, sessionID, path, seconds)
	src, dst := route.Source(), route.Target()

	exists, err := h.repo.Exists(src.ID, dst.ID, route.Signature())
	if err != nil {
		return fmt.Errorf("failed to record route: %w", err)
	}
	if exists {
		return nil
	}

	if err := h.repo.Create(route); err != nil {
		return fmt.Errorf("failed to record route: %w", err)
	}
	return nil
}
