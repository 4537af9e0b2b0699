package models

// PathRequest is the body sent to the path-finding service.
type PathRequest struct {
	SourceID     int64  `json:"source_id"`
	TargetID     int64  `json:"target_id"`
	ExcludeEdges []Edge `json:"exclude_edges,omitempty"`
	// Rebuild asks the backend to rebuild its collaboration graph first.
	Rebuild bool `json:"rebuild,omitempty"`
}

// Outcome classifies a path lookup.
type Outcome int

const (
	// OutcomeFailed is a transport or protocol failure.
	OutcomeFailed Outcome = iota
	// OutcomeNotFound means the backend answered and no connection exists.
	OutcomeNotFound
	// OutcomeFound carries a path with at least one step.
	OutcomeFound
)

func (o Outcome) String() string {
	switch o {
	case OutcomeFound:
		return "found"
	case OutcomeNotFound:
		return "not found"
	default:
		return "failed"
	}
}

// PathResult is the typed outcome of a path lookup.
//
// Path is set only for [OutcomeFound]; Message only for [OutcomeFailed],
// and only when the backend supplied a user-facing detail.
type PathResult struct {
	Outcome Outcome
	Path    Path
	Seconds float64
	Message string
}

// Found builds a found result; an empty path is reported as not found.
func Found(p Path, seconds float64) PathResult {
	if len(p) == 0 {
		return NotFound(seconds)
	}
	return PathResult{Outcome: OutcomeFound, Path: p, Seconds: seconds}
}

func NotFound(seconds float64) PathResult {
	return PathResult{Outcome: OutcomeNotFound, Seconds: seconds}
}

// Failed builds a failure result with an optional user-facing message.
func Failed(message string) PathResult {
	return PathResult{Outcome: OutcomeFailed, Message: message}
}
