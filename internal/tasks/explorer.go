package tasks

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/sdos/internal/models"
	"github.com/desertthunder/sdos/internal/playback"
	"github.com/desertthunder/sdos/internal/render"
	"github.com/desertthunder/sdos/internal/services"
	"github.com/desertthunder/sdos/internal/session"
	"github.com/desertthunder/sdos/internal/shared"
)

// User-facing messages.
const (
	MsgSubmitFailed     = "Error finding connection."
	MsgNoConnection     = "No connection found!"
	MsgNoAlternative    = "No alternative route found"
	MsgAlternateFailed  = "Error attempting alternative route"
	MsgMissingSelection = "Select both artists."
)

// InstructionKind tells the presentation layer what to do with an [Instruction].
type InstructionKind int

const (
	// ShowPath paints Instruction.Model.
	ShowPath InstructionKind = iota
	// ShowMessage replaces the results with Instruction.Message.
	ShowMessage
	// Stale means a newer request superseded this one; leave the display alone.
	Stale
	// Busy means an alternate request is already in flight; leave the display alone.
	Busy
)

func (k InstructionKind) String() string {
	switch k {
	case ShowPath:
		return "show_path"
	case ShowMessage:
		return "show_message"
	case Stale:
		return "stale"
	case Busy:
		return "busy"
	default:
		return "unknown"
	}
}

// Instruction is the outcome of a user action, expressed as what to display.
type Instruction struct {
	Kind    InstructionKind
	Model   *render.Model
	Message string
	// Animate requests the staged reveal. Only the first render of a session animates.
	Animate bool
	// Revisit is set when a previously found route is shown again.
	Revisit bool
	// Index and Total locate the shown route within the session.
	Index   int
	Total   int
	Seconds float64
	Err     error
}

// Player is the playback entry point the explorer drives.
type Player interface {
	Activate(ctx context.Context, ctl playback.Control, url string) error
	Stop()
}

// HistoryRecorder persists newly discovered routes.
type HistoryRecorder interface {
	Record(ctx context.Context, sessionID string, path models.Path, seconds float64) error
}

// Explorer wires the route session, path finder, render pipeline and player
// into the three user actions: submit, request alternate, and activate preview.
type Explorer struct {
	finder   services.PathFinder
	session  *session.Session
	pipeline *render.Pipeline
	player   Player
	recorder HistoryRecorder
	progress chan<- ProgressUpdate
	logger   *log.Logger

	alternating atomic.Bool

	mu         sync.Mutex
	lastSource int64
	lastTarget int64
}

// ExplorerOpts holds the optional collaborators of an [Explorer].
type ExplorerOpts struct {
	Session  *session.Session
	Recorder HistoryRecorder
	Progress chan<- ProgressUpdate
	Logger   *log.Logger
}

// NewExplorer creates an explorer. player may be nil when previews are not wanted.
func NewExplorer(finder services.PathFinder, pipeline *render.Pipeline, player Player, opts ExplorerOpts) *Explorer {
	if opts.Session == nil {
		opts.Session = session.New()
	}
	if opts.Logger == nil {
		opts.Logger = shared.DiscardLogger()
	}
	return &Explorer{
		finder:   finder,
		session:  opts.Session,
		pipeline: pipeline,
		player:   player,
		recorder: opts.Recorder,
		progress: opts.Progress,
		logger:   opts.Logger,
	}
}

// Session returns the route session.
func (e *Explorer) Session() *session.Session { return e.session }

// Pipeline returns the render pipeline used to build results.
func (e *Explorer) Pipeline() *render.Pipeline { return e.pipeline }

// sendProgress sends a progress update through the channel without blocking.
func (e *Explorer) sendProgress(update ProgressUpdate) {
	if e.progress == nil {
		return
	}
	select {
	case e.progress <- update:
	default:
	}
}

func (e *Explorer) stopAudio() {
	if e.player != nil {
		e.player.Stop()
	}
}

// Submit requests a path for a new pair. The session is replaced only when a path is found.
func (e *Explorer) Submit(ctx context.Context, source, target int64) Instruction {
	if source <= 0 || target <= 0 {
		return message(MsgMissingSelection)
	}

	e.stopAudio()
	gen := e.session.Begin()

	e.mu.Lock()
	e.lastSource, e.lastTarget = source, target
	e.mu.Unlock()

	e.sendProgress(requestPathUpdate(source, target))
	res := e.finder.FindPath(ctx, models.PathRequest{SourceID: source, TargetID: target})
	if !e.session.IsCurrent(gen) {
		return Instruction{Kind: Stale}
	}

	switch res.Outcome {
	case models.OutcomeFailed:
		e.logger.Error("path request failed", "source", source, "target", target, "detail", res.Message)
		return message(orDefault(res.Message, MsgSubmitFailed))
	case models.OutcomeNotFound:
		return message(MsgNoConnection)
	}

	idx, err := e.session.ResetWith(gen, source, target, res.Path)
	if err != nil {
		return Instruction{Kind: Stale}
	}
	e.record(ctx, res.Path, res.Seconds)

	ins := e.show(ctx, gen, res.Path, MsgSubmitFailed)
	ins.Animate = ins.Kind == ShowPath
	ins.Index, ins.Seconds = idx, res.Seconds
	return ins
}

// RequestAlternate asks for a route that avoids every edge seen so far in the session.
//
// Only one alternate request runs at a time; concurrent calls return [Busy].
func (e *Explorer) RequestAlternate(ctx context.Context) Instruction {
	if !e.alternating.CompareAndSwap(false, true) {
		return Instruction{Kind: Busy}
	}
	defer e.alternating.Store(false)

	e.stopAudio()

	source, target, ok := e.session.Endpoints()
	if !ok {
		e.mu.Lock()
		source, target = e.lastSource, e.lastTarget
		e.mu.Unlock()
		if source <= 0 || target <= 0 {
			return message(MsgNoAlternative)
		}
	}

	exclude := e.session.BuildExclusionSet()
	gen := e.session.Begin()

	e.sendProgress(requestAlternateUpdate(len(exclude)))
	res := e.finder.FindPath(ctx, models.PathRequest{SourceID: source, TargetID: target, ExcludeEdges: exclude})
	if !e.session.IsCurrent(gen) {
		return Instruction{Kind: Stale}
	}

	switch res.Outcome {
	case models.OutcomeFailed:
		e.logger.Error("alternate request failed", "source", source, "target", target, "detail", res.Message)
		return message(orDefault(res.Message, MsgAlternateFailed))
	case models.OutcomeNotFound:
		return e.cycle(ctx, gen)
	}

	status, idx, err := e.session.RecordIfNewAt(gen, res.Path)
	if err != nil {
		return Instruction{Kind: Stale}
	}
	if status == session.Duplicate {
		e.logger.Debug("alternate route already known", "index", idx)
		return e.cycle(ctx, gen)
	}
	e.record(ctx, res.Path, res.Seconds)

	ins := e.show(ctx, gen, res.Path, MsgAlternateFailed)
	ins.Index, ins.Seconds = idx, res.Seconds
	return ins
}

// Activate forwards a preview activation to the player.
func (e *Explorer) Activate(ctx context.Context, ctl playback.Control, url string) error {
	if e.player == nil {
		return shared.ErrNothingLoaded
	}
	return e.player.Activate(ctx, ctl, url)
}

// Reset stops audio, supersedes any in-flight request and empties the session.
func (e *Explorer) Reset() {
	e.stopAudio()
	e.session.Begin()
	e.session.Reset(0, 0)

	e.mu.Lock()
	e.lastSource, e.lastTarget = 0, 0
	e.mu.Unlock()
}

// cycle redisplays the next known route, or reports that there is none.
func (e *Explorer) cycle(ctx context.Context, gen session.Generation) Instruction {
	path, ok, err := e.session.CycleNextAt(gen)
	if err != nil {
		return Instruction{Kind: Stale}
	}
	if !ok {
		return message(MsgNoAlternative)
	}
	ins := e.show(ctx, gen, path, MsgAlternateFailed)
	ins.Revisit = ins.Kind == ShowPath
	ins.Index = e.session.Index()
	return ins
}

func (e *Explorer) show(ctx context.Context, gen session.Generation, path models.Path, failure string) Instruction {
	e.sendProgress(resolveMediaUpdate(path))
	model, err := e.pipeline.Build(ctx, path)
	if !e.session.IsCurrent(gen) {
		return Instruction{Kind: Stale}
	}
	if err != nil {
		e.logger.Error("failed to render path", "error", err)
		ins := message(failure)
		ins.Err = err
		return ins
	}
	return Instruction{Kind: ShowPath, Model: model, Total: e.session.Len()}
}

func (e *Explorer) record(ctx context.Context, path models.Path, seconds float64) {
	if e.recorder == nil {
		return
	}
	if err := e.recorder.Record(ctx, e.session.ID(), path, seconds); err != nil {
		e.logger.Warn("failed to record route", "error", err)
		e.sendProgress(recordRouteFailedUpdate(err))
	}
}

func message(msg string) Instruction {
	return Instruction{Kind: ShowMessage, Message: msg}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
