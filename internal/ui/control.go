package ui

import (
	"sync"

	"github.com/desertthunder/sdos/internal/playback"
)

var _ playback.Control = (*cardControl)(nil)

// cardControl is the play button of one card. The controller writes it from
// its own goroutines; View reads it on the program goroutine.
type cardControl struct {
	mu       sync.Mutex
	playing  bool
	fraction float64
	visible  bool
}

func (c *cardControl) SetPlaying(playing bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.playing = playing
}

func (c *cardControl) SetProgress(fraction float64, visible bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fraction = fraction
	c.visible = visible
}

func (c *cardControl) snapshot() (playing bool, fraction float64, visible bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playing, c.fraction, c.visible
}

// icon is the glyph shown on the button.
func (c *cardControl) icon() string {
	if playing, _, _ := c.snapshot(); playing {
		return "⏸"
	}
	return "▶"
}
