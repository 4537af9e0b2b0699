package tasks

import (
	"fmt"

	"github.com/desertthunder/sdos/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	RequestPath Phase = iota
	RequestAlternate
	ResolveMedia
	RecordRoute
	BatchConnect
)

func (p Phase) String() string {
	switch p {
	case RequestPath:
		return "request_path"
	case RequestAlternate:
		return "request_alternate"
	case ResolveMedia:
		return "resolve_media"
	case RecordRoute:
		return "record_route"
	case BatchConnect:
		return "batch_connect"
	default:
		return ""
	}
}

func requestPathUpdate(source, target int64) ProgressUpdate {
	return ProgressUpdate{
		Phase:   RequestPath,
		Step:    1,
		Total:   2,
		Message: fmt.Sprintf("Finding a connection between %d and %d...", source, target),
	}
}

func requestAlternateUpdate(excluded int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   RequestAlternate,
		Step:    1,
		Total:   2,
		Message: fmt.Sprintf("Looking for another route avoiding %d edges...", excluded),
	}
}

func resolveMediaUpdate(path models.Path) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolveMedia,
		Step:    2,
		Total:   2,
		Message: fmt.Sprintf("Fetching covers and previews for %d steps...", len(path)),
		Data:    path,
	}
}

func recordRouteFailedUpdate(err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   RecordRoute,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Could not save route to history: %v", err),
	}
}

func batchStartedUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   BatchConnect,
		Step:    0,
		Total:   total,
		Message: fmt.Sprintf("Connecting %d pairs...", total),
	}
}

func batchCompletedUpdate(step, total int, res BatchResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   BatchConnect,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d steps)", step, total, res.Pair, len(res.Path)),
		Data:    res,
	}
}

func batchFailedUpdate(step, total int, res BatchResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   BatchConnect,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %s", step, total, res.Pair, res.Message),
		Data:    res,
	}
}
