// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/desertthunder/sdos/internal/models"
)

// StubPathFinder returns queued results in order, repeating the last one once exhausted.
// It records every request it receives.
type StubPathFinder struct {
	mu       sync.Mutex
	results  []models.PathResult
	requests []models.PathRequest
}

func NewStubPathFinder(results ...models.PathResult) *StubPathFinder {
	return &StubPathFinder{results: results}
}

func (s *StubPathFinder) FindPath(ctx context.Context, req models.PathRequest) models.PathResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)
	switch len(s.results) {
	case 0:
		return models.NotFound(0)
	case 1:
		return s.results[0]
	}
	r := s.results[0]
	s.results = s.results[1:]
	return r
}

// Push queues another result.
func (s *StubPathFinder) Push(r models.PathResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, r)
}

func (s *StubPathFinder) Requests() []models.PathRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.PathRequest, len(s.requests))
	copy(out, s.requests)
	return out
}

// BlockingPathFinder waits for Release before answering each request.
type BlockingPathFinder struct {
	Result  models.PathResult
	Started chan models.PathRequest
	release chan struct{}
}

func NewBlockingPathFinder(r models.PathResult) *BlockingPathFinder {
	return &BlockingPathFinder{Result: r, Started: make(chan models.PathRequest, 8), release: make(chan struct{})}
}

func (b *BlockingPathFinder) FindPath(ctx context.Context, req models.PathRequest) models.PathResult {
	b.Started <- req
	select {
	case <-b.release:
		return b.Result
	case <-ctx.Done():
		return models.Failed("")
	}
}

// Release unblocks one pending request.
func (b *BlockingPathFinder) Release() { b.release <- struct{}{} }

// MediaFunc adapts a function to a media lookup tier and counts calls.
type MediaFunc struct {
	name  string
	fn    func(track, artist string) (models.MediaInfo, error)
	calls atomic.Int64
}

func NewMediaFunc(name string, fn func(track, artist string) (models.MediaInfo, error)) *MediaFunc {
	return &MediaFunc{name: name, fn: fn}
}

func (m *MediaFunc) Lookup(ctx context.Context, track, artist string) (models.MediaInfo, error) {
	m.calls.Add(1)
	return m.fn(track, artist)
}

func (m *MediaFunc) Name() string { return m.name }

// Calls returns how many lookups were made.
func (m *MediaFunc) Calls() int { return int(m.calls.Load()) }

// StubSearcher returns fixed matches for every query.
type StubSearcher struct {
	Matches []models.ArtistMatch
	Err     error
	Queries []string
}

func (s *StubSearcher) SearchArtists(ctx context.Context, query string, limit int) ([]models.ArtistMatch, error) {
	s.Queries = append(s.Queries, query)
	if s.Err != nil {
		return nil, s.Err
	}
	if limit > 0 && len(s.Matches) > limit {
		return s.Matches[:limit], nil
	}
	return s.Matches, nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
