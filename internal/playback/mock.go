package playback

import (
	"context"
	"sync"
	"time"
)

// MockOutput is a test double for [Output].
type MockOutput struct {
	mu       sync.Mutex
	loaded   string
	paused   bool
	position time.Duration
	duration time.Duration
	known    bool
	onEnded  func()

	LoadErr error
	PlayErr error
	// LoadGate, when set, makes Load wait until it is closed or ctx is done.
	LoadGate chan struct{}

	Loads []string
	Plays int
	Stops int
}

// NewMockOutput creates an unloaded mock output with a known 30s duration.
func NewMockOutput() *MockOutput {
	return &MockOutput{paused: true, duration: 30 * time.Second, known: true}
}

func (m *MockOutput) Load(ctx context.Context, url string, onEnded func()) error {
	m.mu.Lock()
	m.Loads = append(m.Loads, url)
	gate := m.LoadGate
	m.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoadErr != nil {
		return m.LoadErr
	}
	m.loaded, m.paused, m.position, m.onEnded = url, true, 0, onEnded
	return nil
}

func (m *MockOutput) Play() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Plays++
	if m.PlayErr != nil {
		return m.PlayErr
	}
	if m.loaded != "" {
		m.paused = false
	}
	return nil
}

func (m *MockOutput) Pause() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paused = true
}

func (m *MockOutput) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Stops++
	m.loaded, m.paused, m.position, m.onEnded = "", true, 0, nil
}

func (m *MockOutput) Paused() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.paused
}

func (m *MockOutput) Position() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.position
}

func (m *MockOutput) Duration() (time.Duration, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.duration, m.known
}

// LoadCount returns how many loads have started.
func (m *MockOutput) LoadCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Loads)
}

// Loaded returns the loaded url, or "".
func (m *MockOutput) Loaded() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loaded
}

// SetPosition moves the playhead.
func (m *MockOutput) SetPosition(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.position = d
}

// SetDuration sets the length; known=false simulates missing metadata.
func (m *MockOutput) SetDuration(d time.Duration, known bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.duration, m.known = d, known
}

// Finish simulates the source playing to its end.
func (m *MockOutput) Finish() {
	m.mu.Lock()
	fn := m.onEnded
	m.position, m.paused = m.duration, true
	m.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// MockControl records what the controller shows on a preview control.
type MockControl struct {
	mu       sync.Mutex
	Name     string
	playing  bool
	progress float64
	visible  bool
	updates  int
}

func NewMockControl(name string) *MockControl { return &MockControl{Name: name} }

func (c *MockControl) SetPlaying(playing bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.playing = playing
}

func (c *MockControl) SetProgress(fraction float64, visible bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.progress, c.visible = fraction, visible
	c.updates++
}

func (c *MockControl) Playing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playing
}

// Progress returns the shown fraction and visibility.
func (c *MockControl) Progress() (float64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.progress, c.visible
}

func (c *MockControl) Updates() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.updates
}

var (
	_ Output  = (*MockOutput)(nil)
	_ Control = (*MockControl)(nil)
)
