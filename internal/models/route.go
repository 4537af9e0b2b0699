package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// RouteRecord is a distinct path persisted to route history.
type RouteRecord struct {
	id        string
	sequence  int
	sessionID string
	source    Artist
	target    Artist
	path      Path
	seconds   float64
	createdAt time.Time
}

// NewRouteRecord creates a record for path discovered within sessionID.
func NewRouteRecord(sequence int, sessionID string, path Path, seconds float64) *RouteRecord {
	r := &RouteRecord{
		sequence:  sequence,
		sessionID: sessionID,
		path:      path.Clone(),
		seconds:   seconds,
		createdAt: time.Now(),
	}
	if len(path) > 0 {
		first, last := path[0], path[len(path)-1]
		r.source = Artist{ID: first.FromID, Name: first.FromName}
		r.target = Artist{ID: last.ToID, Name: last.ToName}
	}
	return r
}

func (r *RouteRecord) ID() string { return r.id }
func (r *RouteRecord) Sequence() int { return r.sequence }
func (r *RouteRecord) SessionID() string { return r.sessionID }
func (r *RouteRecord) Source() Artist { return r.source }
func (r *RouteRecord) Target() Artist { return r.target }
func (r *RouteRecord) Path() Path { return r.path.Clone() }
func (r *RouteRecord) Seconds() float64 { return r.seconds }
func (r *RouteRecord) Signature() string { return r.path.Signature() }
func (r *RouteRecord) Degrees() int { return len(r.path) }
func (r *RouteRecord) CreatedAt() time.Time { return r.createdAt }

// UpdatedAt equals CreatedAt; route records are never modified.
func (r *RouteRecord) UpdatedAt() time.Time { return r.createdAt }

func (r *RouteRecord) SetID(id string) { r.id = id }
func (r *RouteRecord) SetSequence(seq int) { r.sequence = seq }
func (r *RouteRecord) SetCreatedAt(t time.Time) { r.createdAt = t }
func (r *RouteRecord) SetSource(a Artist) { r.source = a }
func (r *RouteRecord) SetTarget(a Artist) { r.target = a }

// Validate checks that the record holds a non-empty path attached to a session.
func (r *RouteRecord) Validate() error {
	if r.sessionID == "" {
		return fmt.Errorf("route record requires a session id")
	}
	if len(r.path) == 0 {
		return fmt.Errorf("route record requires at least one step")
	}
	return nil
}

// StepsJSON encodes the path for storage.
func (r *RouteRecord) StepsJSON() (string, error) {
	data, err := json.Marshal(r.path)
	if err != nil {
		return "", fmt.Errorf("failed to encode steps: %w", err)
	}
	return string(data), nil
}

// DecodeSteps parses a stored path.
func DecodeSteps(data string) (Path, error) {
	var p Path
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return nil, fmt.Errorf("failed to decode steps: %w", err)
	}
	return p, nil
}
