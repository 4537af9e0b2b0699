package render

import (
	"sync"

	"github.com/desertthunder/sdos/internal/models"
)

// CoverState tracks display-time cover failures for one card.
type CoverState int

const (
	// CoverResolved shows the resolved cover, or the default when none was found.
	CoverResolved CoverState = iota
	// CoverDefault shows the default cover after the resolved one failed.
	CoverDefault
	// CoverPlaceholder shows a neutral placeholder; no further image loads are attempted.
	CoverPlaceholder
)

func (s CoverState) String() string {
	switch s {
	case CoverResolved:
		return "resolved"
	case CoverDefault:
		return "default"
	default:
		return "placeholder"
	}
}

// Card is the render model of one step.
type Card struct {
	Number   int
	Step     models.ConnectionStep
	Title    string
	FromName string
	ToName   string
	Cover    string
	Preview  string
	Links    []Link
}

// HasPreview reports whether the card gets a preview control.
func (c Card) HasPreview() bool { return c.Preview != "" }

// Model is a rendered path. Card data is immutable; visibility and cover
// state change during reveal and display and are guarded by the model.
type Model struct {
	Path         models.Path
	Cards        []Card
	DefaultCover string

	mu      sync.Mutex
	visible []bool
	covers  []CoverState
}

func newModel(path models.Path, cards []Card, defaultCover string) *Model {
	return &Model{
		Path:         path,
		Cards:        cards,
		DefaultCover: defaultCover,
		visible:      make([]bool, len(cards)),
		covers:       make([]CoverState, len(cards)),
	}
}

func (m *Model) Len() int { return len(m.Cards) }

// Visible reports whether card i has been revealed.
func (m *Model) Visible(i int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return i >= 0 && i < len(m.visible) && m.visible[i]
}

// VisibleCount returns how many cards are revealed.
func (m *Model) VisibleCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, v := range m.visible {
		if v {
			n++
		}
	}
	return n
}

func (m *Model) show(i int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i >= 0 && i < len(m.visible) {
		m.visible[i] = true
	}
}

func (m *Model) showAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.visible {
		m.visible[i] = true
	}
}

// CoverSource returns the image card i should display and its state.
// The placeholder state returns "".
func (m *Model) CoverSource(i int) (string, CoverState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch m.covers[i] {
	case CoverResolved:
		return m.Cards[i].Cover, CoverResolved
	case CoverDefault:
		return m.DefaultCover, CoverDefault
	default:
		return "", CoverPlaceholder
	}
}

// CoverFailed records that the image for card i failed to load and returns what to show next.
//
// The first failure falls back to the default cover; any later failure (or a
// failure of the default itself) settles on the placeholder.
func (m *Model) CoverFailed(i int) (string, CoverState) {
	m.mu.Lock()
	if m.covers[i] == CoverResolved && m.Cards[i].Cover != m.DefaultCover {
		m.covers[i] = CoverDefault
	} else {
		m.covers[i] = CoverPlaceholder
	}
	m.mu.Unlock()
	return m.CoverSource(i)
}
