// Package session tracks the distinct routes discovered for one source/target pair.
//
// A [Session] deduplicates paths by signature, builds the exclusion set sent
// with alternate-route requests, cycles through known routes, and issues
// request generations so that a response to a superseded request can be
// recognised and dropped.
package session

import (
	"errors"
	"sort"
	"sync"

	"github.com/desertthunder/sdos/internal/models"
	"github.com/desertthunder/sdos/internal/shared"
)

// ErrStale is returned by the generation-checked mutators when a newer request has been issued.
var ErrStale = errors.New("superseded request")

// Status is the outcome of [Session.RecordIfNew].
type Status int

const (
	Added Status = iota
	Duplicate
)

func (s Status) String() string {
	if s == Added {
		return "added"
	}
	return "duplicate"
}

// Generation identifies one issued request.
type Generation uint64

// Session holds the routes for the current pair. It is safe for concurrent use.
type Session struct {
	mu         sync.Mutex
	id         string
	source     int64
	target     int64
	paths      []models.Path
	signatures map[string]int
	index      int
	generation Generation
}

// New returns an empty session.
func New() *Session {
	return &Session{id: shared.GenerateID(), signatures: make(map[string]int)}
}

// ID identifies the session in route history. It changes on every [Session.Reset].
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// Reset empties the session for a new source/target pair.
func (s *Session) Reset(source, target int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset(source, target)
}

// ResetWith replaces the session with one holding only path, provided g is
// still the current generation. It returns the new path's index.
func (s *Session) ResetWith(g Generation, source, target int64, path models.Path) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if g != s.generation {
		return 0, ErrStale
	}
	s.reset(source, target)
	_, idx := s.recordIfNew(path)
	return idx, nil
}

func (s *Session) reset(source, target int64) {
	s.id = shared.GenerateID()
	s.source, s.target = source, target
	s.paths = nil
	s.signatures = make(map[string]int)
	s.index = 0
}

// Pair returns the pair given to the last [Session.Reset].
func (s *Session) Pair() (source, target int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.source, s.target
}

// RecordIfNew appends path unless a path with the same signature is already recorded.
//
// On Added the cycle index moves to the new path. On Duplicate nothing changes
// and index is the position of the existing copy.
func (s *Session) RecordIfNew(path models.Path) (Status, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recordIfNew(path)
}

// RecordIfNewAt is [Session.RecordIfNew] guarded by generation g.
func (s *Session) RecordIfNewAt(g Generation, path models.Path) (Status, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if g != s.generation {
		return Duplicate, 0, ErrStale
	}
	status, idx := s.recordIfNew(path)
	return status, idx, nil
}

func (s *Session) recordIfNew(path models.Path) (Status, int) {
	sig := path.Signature()
	if i, ok := s.signatures[sig]; ok {
		return Duplicate, i
	}

	s.paths = append(s.paths, path.Clone())
	s.index = len(s.paths) - 1
	s.signatures[sig] = s.index
	return Added, s.index
}

// BuildExclusionSet returns every undirected edge across all recorded paths,
// deduplicated and sorted.
func (s *Session) BuildExclusionSet() []models.Edge {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[models.Edge]struct{})
	for _, p := range s.paths {
		for _, step := range p {
			seen[step.Edge()] = struct{}{}
		}
	}

	edges := make([]models.Edge, 0, len(seen))
	for e := range seen {
		edges = append(edges, e)
	}
	sort.Slice(edges, func(i, j int) bool { return edges[i].Less(edges[j]) })
	return edges
}

// CycleNext advances the cycle index, wrapping, and returns the path there.
// It reports false and does nothing when the session is empty.
func (s *Session) CycleNext() (models.Path, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cycleNext()
}

// CycleNextAt is [Session.CycleNext] guarded by generation g.
func (s *Session) CycleNextAt(g Generation) (models.Path, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if g != s.generation {
		return nil, false, ErrStale
	}
	p, ok := s.cycleNext()
	return p, ok, nil
}

func (s *Session) cycleNext() (models.Path, bool) {
	if len(s.paths) == 0 {
		return nil, false
	}
	s.index = (s.index + 1) % len(s.paths)
	return s.paths[s.index].Clone(), true
}

// Current returns the path at the cycle index.
func (s *Session) Current() (models.Path, int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.paths) == 0 {
		return nil, 0, false
	}
	return s.paths[s.index].Clone(), s.index, true
}

func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.paths)
}

// Index returns the cycle index.
func (s *Session) Index() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index
}

// Paths returns a copy of the recorded paths in discovery order.
func (s *Session) Paths() []models.Path {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Path, len(s.paths))
	for i, p := range s.paths {
		out[i] = p.Clone()
	}
	return out
}

// Endpoints returns the first recorded path's source and target.
func (s *Session) Endpoints() (source, target int64, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.paths) == 0 {
		return 0, 0, false
	}
	return s.paths[0].Endpoints()
}

// Begin issues a new request generation, superseding all earlier ones.
func (s *Session) Begin() Generation {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	return s.generation
}

// IsCurrent reports whether g is the latest issued generation.
func (s *Session) IsCurrent(g Generation) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return g == s.generation
}
