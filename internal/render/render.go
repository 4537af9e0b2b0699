// Package render turns a path into cards enriched with media, reveals them,
// and wires their preview controls to the player.
package render

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/sdos/internal/models"
	"github.com/desertthunder/sdos/internal/playback"
	"github.com/desertthunder/sdos/internal/schedule"
	"github.com/desertthunder/sdos/internal/shared"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultRevealDelay = 400 * time.Millisecond
	DefaultLookups     = 4
	DefaultCover       = "https://coverartarchive.org/img/big_logo.svg"
)

// Resolver is the media lookup used to enrich steps.
type Resolver interface {
	Resolve(ctx context.Context, track, artist string) models.MediaInfo
}

// Activator is the player entry point a card's preview control is wired to.
type Activator interface {
	Activate(ctx context.Context, ctl playback.Control, url string) error
}

// Options configures a [Pipeline].
type Options struct {
	Scheduler    schedule.Scheduler
	RevealDelay  time.Duration
	DefaultCover string
	// MaxLookups bounds concurrent media lookups per path.
	MaxLookups int
	Logger     *log.Logger
}

// Pipeline builds and reveals render models.
type Pipeline struct {
	resolver     Resolver
	sched        schedule.Scheduler
	revealDelay  time.Duration
	defaultCover string
	maxLookups   int
	logger       *log.Logger
}

func NewPipeline(resolver Resolver, opts Options) *Pipeline {
	if opts.Scheduler == nil {
		opts.Scheduler = schedule.New()
	}
	if opts.RevealDelay <= 0 {
		opts.RevealDelay = DefaultRevealDelay
	}
	if opts.DefaultCover == "" {
		opts.DefaultCover = DefaultCover
	}
	if opts.MaxLookups <= 0 {
		opts.MaxLookups = DefaultLookups
	}
	if opts.Logger == nil {
		opts.Logger = shared.DiscardLogger()
	}
	return &Pipeline{
		resolver:     resolver,
		sched:        opts.Scheduler,
		revealDelay:  opts.RevealDelay,
		defaultCover: opts.DefaultCover,
		maxLookups:   opts.MaxLookups,
		logger:       opts.Logger,
	}
}

// Build resolves media for every step concurrently, keyed by (track, from_name),
// and assembles cards in path order regardless of completion order.
//
// The only error is ctx's, when it is cancelled before all lookups finish.
func (p *Pipeline) Build(ctx context.Context, path models.Path) (*Model, error) {
	infos := make([]models.MediaInfo, len(path))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.maxLookups)
	for i, step := range path {
		if !step.HasTrack() {
			continue
		}
		g.Go(func() error {
			infos[i] = p.resolver.Resolve(gctx, step.Track, step.FromName)
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	cards := make([]Card, len(path))
	for i, step := range path {
		cards[i] = p.card(i, step, infos[i])
	}

	p.logger.Debug("path rendered", "steps", len(cards))
	return newModel(path.Clone(), cards, p.defaultCover), nil
}

func (p *Pipeline) card(i int, step models.ConnectionStep, info models.MediaInfo) Card {
	cover := info.Cover
	if cover == "" {
		cover = p.defaultCover
	}
	c := Card{
		Number:   i + 1,
		Step:     step,
		Title:    step.Track,
		FromName: step.FromName,
		ToName:   step.ToName,
		Cover:    cover,
	}
	if step.HasTrack() {
		c.Preview = info.Preview
		c.Links = StepLinks(step)
	}
	return c
}

// Reveal shows m's cards. With animate, card i appears i*delay after the call,
// in step order; otherwise all cards are visible on return. onShow, if set,
// is called with each index as it appears.
//
// The returned cancel stops any reveal still pending.
func (p *Pipeline) Reveal(m *Model, animate bool, onShow func(i int)) schedule.Cancel {
	if !animate {
		m.showAll()
		if onShow != nil {
			for i := range m.Cards {
				onShow(i)
			}
		}
		return func() {}
	}

	cancels := make([]schedule.Cancel, 0, len(m.Cards))
	for i := range m.Cards {
		cancels = append(cancels, p.sched.After(time.Duration(i)*p.revealDelay, func() {
			m.show(i)
			if onShow != nil {
				onShow(i)
			}
		}))
	}
	return func() {
		for _, c := range cancels {
			c()
		}
	}
}

// Binding connects one card's preview control to the player.
type Binding struct {
	Card    int
	Control playback.Control
	url     string
	player  Activator
}

// Activate forwards to the player with the card's preview url.
func (b Binding) Activate(ctx context.Context) error {
	return b.player.Activate(ctx, b.Control, b.url)
}

// Wire creates a binding for every card that has a preview, using newControl
// to obtain the card's control. Cards without a preview get none.
func Wire(m *Model, player Activator, newControl func(i int, c Card) playback.Control) []Binding {
	var bindings []Binding
	for i, c := range m.Cards {
		if !c.HasPreview() {
			continue
		}
		bindings = append(bindings, Binding{
			Card:    i,
			Control: newControl(i, c),
			url:     c.Preview,
			player:  player,
		})
	}
	return bindings
}
