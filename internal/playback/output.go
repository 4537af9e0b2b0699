package playback

import (
	"context"
	"time"
)

// Output is the single shared audio output.
type Output interface {
	// Load replaces the current source with url, positioned at the start and paused.
	// onEnded is called once if the source plays to its end; it may run on any goroutine.
	Load(ctx context.Context, url string, onEnded func()) error
	// Play starts or resumes the loaded source.
	Play() error
	// Pause keeps the position.
	Pause()
	// Stop pauses, rewinds and unloads.
	Stop()
	// Paused is true when nothing is loaded or playback is paused.
	Paused() bool
	Position() time.Duration
	// Duration reports false while the length is unknown.
	Duration() (time.Duration, bool)
}

// Control is a preview affordance owned by the presentation layer.
//
// Implementations must be comparable (pointer types) since the controller
// uses equality to detect re-activation. Methods are called with the
// controller's lock held and must not call back into the controller.
type Control interface {
	// SetPlaying switches the icon between "pause" (true) and "play" (false).
	SetPlaying(playing bool)
	// SetProgress shows fraction (0..1) of the progress indicator, or hides it.
	SetProgress(fraction float64, visible bool)
}
