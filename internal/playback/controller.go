package playback

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/sdos/internal/schedule"
	"github.com/desertthunder/sdos/internal/shared"
)

// DefaultFrameInterval is the progress refresh interval.
const DefaultFrameInterval = 100 * time.Millisecond

// EventKind classifies controller events.
type EventKind int

const (
	EventPlaying EventKind = iota
	EventPaused
	EventStopped
	EventEnded
	EventError
)

func (k EventKind) String() string {
	switch k {
	case EventPlaying:
		return "playing"
	case EventPaused:
		return "paused"
	case EventStopped:
		return "stopped"
	case EventEnded:
		return "ended"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// Event reports a transition. Err is set for [EventError].
type Event struct {
	Kind    EventKind
	Control Control
	URL     string
	Err     error
}

// Options configures a [Controller].
type Options struct {
	Scheduler     schedule.Scheduler
	FrameInterval time.Duration
	Logger        *log.Logger
}

// Controller guarantees at most one bound, playing preview across any number of controls.
type Controller struct {
	out      Output
	sched    schedule.Scheduler
	interval time.Duration
	logger   *log.Logger

	loadMu sync.Mutex

	mu         sync.Mutex
	bound      Control
	url        string
	loadSeq    uint64
	cancelLoad context.CancelFunc
	cancelTick schedule.Cancel
	subs       []chan Event
}

// NewController creates a controller for out.
func NewController(out Output, opts Options) *Controller {
	if opts.Scheduler == nil {
		opts.Scheduler = schedule.New()
	}
	if opts.FrameInterval <= 0 {
		opts.FrameInterval = DefaultFrameInterval
	}
	if opts.Logger == nil {
		opts.Logger = shared.DiscardLogger()
	}
	return &Controller{
		out:      out,
		sched:    opts.Scheduler,
		interval: opts.FrameInterval,
		logger:   opts.Logger,
	}
}

// Subscribe returns a channel of transitions and failures. Slow readers miss events.
func (c *Controller) Subscribe() <-chan Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	ch := make(chan Event, 16)
	c.subs = append(c.subs, ch)
	return ch
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state()
}

func (c *Controller) state() State {
	switch {
	case c.bound == nil:
		return Idle
	case c.out.Paused():
		return Paused
	default:
		return Playing
	}
}

// Bound returns the bound control, or nil when idle.
func (c *Controller) Bound() Control {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bound
}

// Activate is the single entry point for a preview control.
//
// Re-activating the bound control toggles pause/resume. Activating another
// control tears the bound one down first. A failure to start or resume
// returns the controller to Idle, resets ctl's visuals and wraps
// [shared.ErrPlaybackFailed].
//
// The preview is loaded without holding the state lock, so [Controller.Stop]
// and [Controller.State] never wait on a download. A load superseded by Stop
// or a later activation is cancelled and never plays.
func (c *Controller) Activate(ctx context.Context, ctl Control, url string) error {
	if ctl == nil || strings.TrimSpace(url) == "" {
		return fmt.Errorf("%w: preview control requires a url", shared.ErrInvalidInput)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	if c.bound == ctl && c.url == url {
		defer c.mu.Unlock()
		return c.toggle(ctl, url)
	}

	c.release()
	c.loadSeq++
	seq := c.loadSeq
	if c.cancelLoad != nil {
		c.cancelLoad()
	}
	loadCtx, cancel := context.WithCancel(ctx)
	c.cancelLoad = cancel
	c.mu.Unlock()
	defer cancel()

	// Loads share the single output one at a time.
	c.loadMu.Lock()
	defer c.loadMu.Unlock()
	if !c.current(seq) {
		return nil
	}

	err := c.out.Load(loadCtx, url, func() { c.ended(seq) })

	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.loadSeq {
		c.logger.Debug("preview load superseded", "url", url)
		c.out.Stop()
		return nil
	}
	c.cancelLoad = nil
	if err != nil {
		return c.fail(ctl, url, "load", err)
	}

	c.bound, c.url = ctl, url
	if err := c.out.Play(); err != nil {
		return c.fail(ctl, url, "start", err)
	}

	ctl.SetPlaying(true)
	ctl.SetProgress(0, true)
	c.startTick()
	c.emit(Event{Kind: EventPlaying, Control: ctl, URL: url})
	return nil
}

// toggle pauses or resumes the bound control. Called with c.mu held.
func (c *Controller) toggle(ctl Control, url string) error {
	if !c.out.Paused() {
		c.out.Pause()
		c.stopTick()
		ctl.SetPlaying(false)
		ctl.SetProgress(0, false)
		c.emit(Event{Kind: EventPaused, Control: ctl, URL: url})
		return nil
	}
	if err := c.out.Play(); err != nil {
		return c.fail(ctl, url, "resume", err)
	}
	ctl.SetPlaying(true)
	c.startTick()
	c.emit(Event{Kind: EventPlaying, Control: ctl, URL: url})
	return nil
}

func (c *Controller) current(seq uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return seq == c.loadSeq
}

// Stop returns to Idle from any state and cancels a pending load.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.loadSeq++
	if c.cancelLoad != nil {
		c.cancelLoad()
		c.cancelLoad = nil
	}
	if c.bound == nil {
		return
	}
	ctl, url := c.bound, c.url
	c.release()
	c.emit(Event{Kind: EventStopped, Control: ctl, URL: url})
}

// ended handles natural end of media for load seq; stale callbacks are ignored.
func (c *Controller) ended(seq uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if seq != c.loadSeq || c.bound == nil {
		return
	}
	ctl, url := c.bound, c.url
	c.release()
	c.emit(Event{Kind: EventEnded, Control: ctl, URL: url})
}

// release tears down the bound control's visuals and unloads the output.
// With nothing bound the output is left alone: a load may be writing to it.
func (c *Controller) release() {
	c.stopTick()
	if c.bound == nil {
		return
	}
	c.bound.SetPlaying(false)
	c.bound.SetProgress(0, false)
	c.out.Stop()
	c.bound, c.url = nil, ""
}

func (c *Controller) fail(ctl Control, url, op string, err error) error {
	c.logger.Error("preview playback failed", "op", op, "url", url, "error", err)
	if c.bound == ctl {
		c.release()
	} else if c.bound == nil {
		c.out.Stop()
	}
	ctl.SetPlaying(false)
	ctl.SetProgress(0, false)

	wrapped := fmt.Errorf("%w: %s: %v", shared.ErrPlaybackFailed, op, err)
	c.emit(Event{Kind: EventError, Control: ctl, URL: url, Err: wrapped})
	return wrapped
}

func (c *Controller) startTick() {
	c.stopTick()
	c.cancelTick = c.sched.Every(c.interval, c.tick)
}

func (c *Controller) stopTick() {
	if c.cancelTick != nil {
		c.cancelTick()
		c.cancelTick = nil
	}
}

// tick samples position/duration onto the bound control. Unknown duration is a no-op.
func (c *Controller) tick() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.bound == nil || c.out.Paused() {
		return
	}
	dur, ok := c.out.Duration()
	if !ok || dur <= 0 {
		return
	}
	frac := float64(c.out.Position()) / float64(dur)
	c.bound.SetProgress(min(max(frac, 0), 1), true)
}

func (c *Controller) emit(e Event) {
	for _, ch := range c.subs {
		select {
		case ch <- e:
		default:
		}
	}
}
