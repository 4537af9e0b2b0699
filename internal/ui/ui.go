package ui

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/sdos/internal/formatter"
	"github.com/desertthunder/sdos/internal/models"
	"github.com/desertthunder/sdos/internal/playback"
	"github.com/desertthunder/sdos/internal/render"
	"github.com/desertthunder/sdos/internal/schedule"
	"github.com/desertthunder/sdos/internal/services"
	"github.com/desertthunder/sdos/internal/shared"
	"github.com/desertthunder/sdos/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	FormView ViewState = iota
	LoadingView
	ResultsView
	MessageView
)

const (
	fieldFrom = iota
	fieldTo
)

const (
	DefaultDebounce    = 250 * time.Millisecond
	DefaultSearchLimit = 8
)

// Options holds the collaborators of the TUI. Explorer is required.
type Options struct {
	Explorer *tasks.Explorer
	Searcher services.ArtistSearcher
	// Player is stopped on exit and its events surface playback failures.
	Player        *playback.Controller
	Progress      <-chan tasks.ProgressUpdate
	HTTPClient    *http.Client
	SearchLimit   int
	Debounce      time.Duration
	FrameInterval time.Duration
	Clipboard     func(string) error
	OpenURL       func(string) error
	Logger        *log.Logger
}

type artistField struct {
	input  textinput.Model
	artist models.Artist
	seq    int
}

// Model represents the TUI application state.
type Model struct {
	ctx    context.Context
	opts   Options
	view   ViewState
	width  int
	height int

	fields      [2]artistField
	focus       int
	suggestions list.Model
	searching   bool

	spinner  spinner.Model
	progress tasks.ProgressUpdate
	events   <-chan playback.Event

	shown        tasks.Instruction
	result       *render.Model
	controls     []*cardControl
	bindings     map[int]render.Binding
	cancelReveal schedule.Cancel
	// routeCtx scopes preview activations to the displayed route.
	routeCtx     context.Context
	cancelRoute  context.CancelFunc
	selected     int
	alternating  bool
	ticking      bool

	message   string
	status    string
	statusErr bool
	help      help.Model
	keys      keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, opts Options) *Model {
	if opts.SearchLimit <= 0 {
		opts.SearchLimit = DefaultSearchLimit
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.FrameInterval <= 0 {
		opts.FrameInterval = playback.DefaultFrameInterval
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 5 * time.Second}
	}
	if opts.Clipboard == nil {
		opts.Clipboard = clipboard.WriteAll
	}
	if opts.OpenURL == nil {
		opts.OpenURL = shared.OpenBrowser
	}
	if opts.Logger == nil {
		opts.Logger = shared.DiscardLogger()
	}

	m := &Model{
		ctx:         ctx,
		opts:        opts,
		view:        FormView,
		suggestions: newSuggestionList(),
		spinner:     spinner.New(spinner.WithSpinner(spinner.Dot)),
		help:        help.New(),
		keys:        newKeyMap(),
	}
	for i, placeholder := range []string{"From artist (name or id)", "To artist (name or id)"} {
		in := textinput.New()
		in.Placeholder = placeholder
		in.CharLimit = 120
		m.fields[i].input = in
	}
	m.fields[fieldFrom].input.Focus()
	if opts.Player != nil {
		m.events = opts.Player.Subscribe()
	}
	return m
}

// Init starts the cursor blink and the progress and playback listeners.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.waitForProgress(), m.waitForPlayback())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.suggestions.SetSize(max(msg.Width-4, 20), min(12, max(msg.Height/2, 4)))
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case FormView:
			return m.handleFormKeys(msg)
		case LoadingView:
			return m.handleLoadingKeys(msg)
		case ResultsView:
			return m.handleResultKeys(msg)
		case MessageView:
			return m.handleMessageKeys(msg)
		}

	case spinner.TickMsg:
		if m.view != LoadingView && !m.alternating {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case Msg:
		return m, m.handleMsg(msg)
	}

	if m.view == FormView {
		var cmd tea.Cmd
		m.fields[m.focus].input, cmd = m.fields[m.focus].input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleMsg(msg Msg) tea.Cmd {
	switch msg.kind {
	case MsgSearchDue:
		d := msg.data.(searchDue)
		if d.seq != m.fields[d.field].seq {
			return nil
		}
		m.searching = true
		return m.search(d)

	case MsgSuggestions:
		s := msg.data.(suggestions)
		if s.seq != m.fields[s.field].seq {
			return nil
		}
		m.searching = false
		if s.err != nil {
			m.opts.Logger.Warn("artist search failed", "error", s.err)
			m.setStatus("Search failed.", true)
			m.clearSuggestions()
			return nil
		}
		if s.field != m.focus {
			return nil
		}
		cmd := m.suggestions.SetItems(suggestionItems(s.matches))
		m.suggestions.Select(0)
		return cmd

	case MsgInstruction:
		d := msg.data.(instruction)
		if d.alternate {
			m.alternating = false
		}
		return m.apply(d.ins)

	case MsgProgressUpdate:
		m.progress = msg.data.(tasks.ProgressUpdate)
		return m.waitForProgress()

	case MsgPlayback:
		e := msg.data.(playback.Event)
		if e.Kind == playback.EventError {
			m.setStatus(fmt.Sprintf("Preview failed: %v", e.Err), true)
		}
		return m.waitForPlayback()

	case MsgActivated:
		if err := errOf(msg); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			m.opts.Logger.Debug("preview activation failed", "error", err)
			m.setStatus("Preview unavailable.", true)
		}
		return nil

	case MsgFrame:
		if m.view != ResultsView {
			m.ticking = false
			return nil
		}
		return m.nextFrame()

	case MsgCoverChecked:
		c := msg.data.(coverChecked)
		if c.ok || c.model != m.result {
			return nil
		}
		if _, state := c.model.CoverFailed(c.card); state == render.CoverDefault {
			return m.checkCover(c.model, c.card)
		}
		return nil

	case MsgShared:
		if err := errOf(msg); err != nil {
			m.opts.Logger.Warn("clipboard write failed", "error", err)
			m.setStatus("Could not copy to clipboard.", true)
			return nil
		}
		m.setStatus("Copied to clipboard.", false)
		return nil

	case MsgOpened:
		d := msg.data.(struct {
			url string
			err error
		})
		if d.err != nil {
			m.opts.Logger.Warn("failed to open link", "url", d.url, "error", d.err)
			m.setStatus("Could not open "+d.url, true)
		}
		return nil
	}
	return nil
}

func (m *Model) handleFormKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.interrupt):
		return m, m.quit()
	case key.Matches(msg, m.keys.next):
		m.clearSuggestions()
		return m, m.focusField(1 - m.focus)
	case key.Matches(msg, m.keys.enter):
		return m, m.handleFormEnter()
	case key.Matches(msg, m.keys.back):
		m.clearSuggestions()
		return m, nil
	case msg.Type == tea.KeyUp:
		m.suggestions.CursorUp()
		return m, nil
	case msg.Type == tea.KeyDown:
		m.suggestions.CursorDown()
		return m, nil
	}

	f := &m.fields[m.focus]
	before := f.input.Value()
	var cmd tea.Cmd
	f.input, cmd = f.input.Update(msg)
	if f.input.Value() == before {
		return m, cmd
	}
	return m, tea.Batch(cmd, m.inputChanged(m.focus))
}

func (m *Model) handleLoadingKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.interrupt):
		return m, m.quit()
	case key.Matches(msg, m.keys.back):
		// Supersedes the request in flight; its instruction arrives stale.
		m.opts.Explorer.Reset()
		m.view = FormView
		return m, m.focusField(m.focus)
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, m.quit()
	case key.Matches(msg, m.keys.up):
		if m.selected > 0 {
			m.selected--
		}
	case key.Matches(msg, m.keys.down):
		if m.result != nil && m.selected < m.result.VisibleCount()-1 {
			m.selected++
		}
	case key.Matches(msg, m.keys.play), key.Matches(msg, m.keys.enter):
		return m, m.activate()
	case key.Matches(msg, m.keys.alternate):
		return m, m.requestAlternate()
	case key.Matches(msg, m.keys.reset):
		return m, m.reset()
	case key.Matches(msg, m.keys.share):
		return m, m.share()
	case key.Matches(msg, m.keys.open):
		return m, m.openLink(0)
	case key.Matches(msg, m.keys.service):
		return m, m.openLink(int(msg.String()[0] - '1'))
	case key.Matches(msg, m.keys.back):
		m.leaveResults()
		return m, m.focusField(m.focus)
	case key.Matches(msg, m.keys.help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

func (m *Model) handleMessageKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, m.quit()
	case key.Matches(msg, m.keys.alternate):
		if m.opts.Explorer.Session().Len() > 0 {
			return m, m.requestAlternate()
		}
	case key.Matches(msg, m.keys.reset):
		return m, m.reset()
	case key.Matches(msg, m.keys.back), key.Matches(msg, m.keys.enter):
		m.view = FormView
		return m, m.focusField(m.focus)
	}
	return m, nil
}

// handleFormEnter picks the highlighted suggestion, or submits when there is none.
func (m *Model) handleFormEnter() tea.Cmd {
	if len(m.suggestions.Items()) > 0 {
		if item, ok := m.suggestions.SelectedItem().(suggestionItem); ok {
			m.pick(item.match)
			if m.focus == fieldFrom && m.fields[fieldTo].artist.ID == 0 {
				return m.focusField(fieldTo)
			}
			return nil
		}
	}
	return m.submit()
}

func (m *Model) pick(match models.ArtistMatch) {
	f := &m.fields[m.focus]
	f.seq++
	f.input.SetValue(match.Name)
	f.input.CursorEnd()
	f.artist = models.Artist{ID: match.ID, Name: match.Name}
	m.clearSuggestions()
	m.status = ""
}

// inputChanged drops the field's selection and schedules a debounced search.
// Numeric input selects the id directly.
func (m *Model) inputChanged(field int) tea.Cmd {
	f := &m.fields[field]
	f.seq++
	f.artist = models.Artist{}

	query := strings.TrimSpace(f.input.Value())
	if id, err := strconv.ParseInt(query, 10, 64); err == nil && id > 0 {
		f.artist = models.Artist{ID: id}
		m.clearSuggestions()
		return nil
	}
	if query == "" || m.opts.Searcher == nil {
		m.clearSuggestions()
		return nil
	}

	seq := f.seq
	return tea.Tick(m.opts.Debounce, func(time.Time) tea.Msg {
		return searchDueMsg(field, seq, query)
	})
}

func (m *Model) search(d searchDue) tea.Cmd {
	searcher, ctx, limit := m.opts.Searcher, m.ctx, m.opts.SearchLimit
	return func() tea.Msg {
		matches, err := searcher.SearchArtists(ctx, d.query, limit)
		return suggestionsMsg(d.field, d.seq, matches, err)
	}
}

func (m *Model) focusField(field int) tea.Cmd {
	m.focus = field
	for i := range m.fields {
		m.fields[i].input.Blur()
	}
	return m.fields[field].input.Focus()
}

func (m *Model) clearSuggestions() {
	m.suggestions.SetItems(nil)
	m.searching = false
}

func (m *Model) submit() tea.Cmd {
	from, to := m.fields[fieldFrom].artist, m.fields[fieldTo].artist
	if from.ID <= 0 || to.ID <= 0 {
		m.setStatus(tasks.MsgMissingSelection, true)
		return nil
	}

	m.leaveResults()
	m.view = LoadingView
	m.status = ""
	m.progress = tasks.ProgressUpdate{}

	explorer, ctx := m.opts.Explorer, m.ctx
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		return instructionMsg(explorer.Submit(ctx, from.ID, to.ID), false)
	})
}

func (m *Model) requestAlternate() tea.Cmd {
	if m.alternating {
		m.setStatus("Still looking for another route...", false)
		return nil
	}
	m.alternating = true
	m.setStatus("Looking for another route...", false)

	explorer, ctx := m.opts.Explorer, m.ctx
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		return instructionMsg(explorer.RequestAlternate(ctx), true)
	})
}

// apply carries out an explorer instruction.
func (m *Model) apply(ins tasks.Instruction) tea.Cmd {
	switch ins.Kind {
	case tasks.Stale:
		return nil
	case tasks.Busy:
		m.setStatus("Still looking for another route...", false)
		return nil
	case tasks.ShowMessage:
		m.leaveResults()
		m.message = ins.Message
		m.status = ""
		m.view = MessageView
		return nil
	case tasks.ShowPath:
		return m.showPath(ins)
	}
	return nil
}

func (m *Model) showPath(ins tasks.Instruction) tea.Cmd {
	m.stopReveal()
	m.endRoute()
	m.routeCtx, m.cancelRoute = context.WithCancel(m.ctx)
	model := ins.Model
	m.shown = ins
	m.result = model
	m.selected = 0
	m.controls = make([]*cardControl, model.Len())
	m.bindings = make(map[int]render.Binding)

	wired := render.Wire(model, m.opts.Explorer, func(i int, _ render.Card) playback.Control {
		c := &cardControl{}
		m.controls[i] = c
		return c
	})
	for _, b := range wired {
		m.bindings[b.Card] = b
	}
	m.cancelReveal = m.opts.Explorer.Pipeline().Reveal(model, ins.Animate, nil)
	m.view = ResultsView

	switch {
	case ins.Revisit:
		m.setStatus(fmt.Sprintf("No new route. Showing route %d of %d again.", ins.Index+1, ins.Total), false)
	case ins.Total > 1:
		m.setStatus(fmt.Sprintf("Route %d of %d, found in %s.", ins.Index+1, ins.Total, formatter.Elapsed(ins.Seconds)), false)
	default:
		m.setStatus(fmt.Sprintf("Found in %s.", formatter.Elapsed(ins.Seconds)), false)
	}

	cmds := []tea.Cmd{m.startFrames()}
	for i := range model.Cards {
		cmds = append(cmds, m.checkCover(model, i))
	}
	return tea.Batch(cmds...)
}

func (m *Model) activate() tea.Cmd {
	b, ok := m.bindings[m.selected]
	if !ok {
		m.setStatus("No preview for this step.", false)
		return nil
	}
	ctx := m.routeCtx
	if ctx == nil {
		ctx = m.ctx
	}
	return func() tea.Msg {
		return activatedMsg(b.Activate(ctx))
	}
}

func (m *Model) reset() tea.Cmd {
	m.leaveResults()
	m.opts.Explorer.Reset()
	for i := range m.fields {
		m.fields[i].input.Reset()
		m.fields[i].artist = models.Artist{}
		m.fields[i].seq++
	}
	m.clearSuggestions()
	m.alternating = false
	m.message = ""
	m.status = ""
	m.view = FormView
	return m.focusField(fieldFrom)
}

func (m *Model) share() tea.Cmd {
	if m.result == nil {
		return nil
	}
	text, write := formatter.ShareText(m.result.Path), m.opts.Clipboard
	return func() tea.Msg {
		return sharedMsg(write(text))
	}
}

func (m *Model) openLink(idx int) tea.Cmd {
	if m.result == nil || m.selected >= m.result.Len() {
		return nil
	}
	links := m.result.Cards[m.selected].Links
	if idx < 0 || idx >= len(links) {
		m.setStatus("No link for this step.", false)
		return nil
	}
	url, open := links[idx].URL, m.opts.OpenURL
	return func() tea.Msg {
		return openedMsg(url, open(url))
	}
}

// checkCover probes the image card i currently shows. Failures walk the
// cover fallback chain; the placeholder is never probed.
func (m *Model) checkCover(model *render.Model, i int) tea.Cmd {
	src, state := model.CoverSource(i)
	if state == render.CoverPlaceholder || src == "" {
		return nil
	}
	client, ctx := m.opts.HTTPClient, m.ctx
	return func() tea.Msg {
		return coverCheckedMsg(model, i, probeImage(ctx, client, src))
	}
}

func probeImage(ctx context.Context, client *http.Client, url string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return false
	}
	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode < 400 || resp.StatusCode == http.StatusMethodNotAllowed
}

func (m *Model) startFrames() tea.Cmd {
	if m.ticking {
		return nil
	}
	m.ticking = true
	return m.nextFrame()
}

func (m *Model) nextFrame() tea.Cmd {
	return tea.Tick(m.opts.FrameInterval, func(time.Time) tea.Msg {
		return frameMsg()
	})
}

func (m *Model) waitForProgress() tea.Cmd {
	ch := m.opts.Progress
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		update, ok := <-ch
		if !ok {
			return nil
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) waitForPlayback() tea.Cmd {
	ch := m.events
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		e, ok := <-ch
		if !ok {
			return nil
		}
		return playbackMsg(e)
	}
}

// leaveResults tears down the displayed route: audio, reveal and bindings.
func (m *Model) leaveResults() {
	if m.opts.Player != nil {
		m.opts.Player.Stop()
	}
	m.stopReveal()
	m.endRoute()
	m.result = nil
	m.controls = nil
	m.bindings = nil
	if m.view == ResultsView {
		m.view = FormView
	}
}

// endRoute cancels activations still queued for the route being left.
func (m *Model) endRoute() {
	if m.cancelRoute != nil {
		m.cancelRoute()
		m.cancelRoute = nil
	}
}

func (m *Model) stopReveal() {
	if m.cancelReveal != nil {
		m.cancelReveal()
		m.cancelReveal = nil
	}
}

func (m *Model) quit() tea.Cmd {
	m.leaveResults()
	return tea.Quit
}

func (m *Model) setStatus(s string, isErr bool) {
	m.status = s
	m.statusErr = isErr
}
