package render

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/sdos/internal/media"
	"github.com/desertthunder/sdos/internal/models"
	"github.com/desertthunder/sdos/internal/playback"
	"github.com/desertthunder/sdos/internal/schedule"
	tu "github.com/desertthunder/sdos/internal/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDefaultCover = "/static/default_cover.jpeg"

func threeSteps() models.Path {
	return models.Path{
		{FromID: 1, ToID: 2, FromName: "Alpha", ToName: "Beta", Track: "First Song"},
		{FromID: 2, ToID: 3, FromName: "Beta", ToName: "Gamma", Track: ""},
		{FromID: 3, ToID: 4, FromName: "Gamma", ToName: "Delta", Track: "Last Song"},
	}
}

type resolverFunc func(ctx context.Context, track, artist string) models.MediaInfo

func (f resolverFunc) Resolve(ctx context.Context, track, artist string) models.MediaInfo {
	return f(ctx, track, artist)
}

func newTestPipeline(r Resolver, sched schedule.Scheduler) *Pipeline {
	return NewPipeline(r, Options{Scheduler: sched, DefaultCover: testDefaultCover})
}

func TestBuild(t *testing.T) {
	t.Run("Cards", func(t *testing.T) {
		tier := tu.NewMediaFunc("catalog", func(track, artist string) (models.MediaInfo, error) {
			if track == "First Song" && artist == "Alpha" {
				return models.MediaInfo{Cover: "c1.jpg", Preview: "p1.mp3"}, nil
			}
			return models.MediaInfo{}, errors.New("miss")
		})
		p := newTestPipeline(media.NewResolver(tier, nil, nil), schedule.NewManual())

		m, err := p.Build(context.Background(), threeSteps())
		require.NoError(t, err)
		require.Equal(t, 3, m.Len())

		first := m.Cards[0]
		assert.Equal(t, 1, first.Number)
		assert.Equal(t, "First Song", first.Title)
		assert.Equal(t, "Alpha", first.FromName)
		assert.Equal(t, "Beta", first.ToName)
		assert.Equal(t, "c1.jpg", first.Cover)
		assert.Equal(t, "p1.mp3", first.Preview)
		assert.Len(t, first.Links, 4)

		second := m.Cards[1]
		assert.Equal(t, 2, second.Number)
		assert.Equal(t, testDefaultCover, second.Cover)
		assert.False(t, second.HasPreview())
		assert.Empty(t, second.Links)

		third := m.Cards[2]
		assert.Equal(t, testDefaultCover, third.Cover)
		assert.Empty(t, third.Preview)
		assert.Len(t, third.Links, 4)

		assert.Equal(t, 2, tier.Calls(), "steps without a track are not looked up")
		assert.Equal(t, 0, m.VisibleCount())
	})

	t.Run("Order Independent Of Completion", func(t *testing.T) {
		path := threeSteps()
		path[1].Track = "Middle Song"

		var mu sync.Mutex
		gates := map[string]chan struct{}{
			"First Song":  make(chan struct{}),
			"Middle Song": make(chan struct{}),
			"Last Song":   make(chan struct{}),
		}
		r := resolverFunc(func(ctx context.Context, track, artist string) models.MediaInfo {
			mu.Lock()
			gate := gates[track]
			mu.Unlock()
			<-gate
			return models.MediaInfo{Cover: track + ".jpg"}
		})
		p := NewPipeline(r, Options{Scheduler: schedule.NewManual(), MaxLookups: 3})

		// Release in reverse order.
		go func() {
			close(gates["Last Song"])
			time.Sleep(5 * time.Millisecond)
			close(gates["Middle Song"])
			time.Sleep(5 * time.Millisecond)
			close(gates["First Song"])
		}()

		m, err := p.Build(context.Background(), path)
		require.NoError(t, err)
		assert.Equal(t, "First Song.jpg", m.Cards[0].Cover)
		assert.Equal(t, "Middle Song.jpg", m.Cards[1].Cover)
		assert.Equal(t, "Last Song.jpg", m.Cards[2].Cover)
	})

	t.Run("Cancelled", func(t *testing.T) {
		r := resolverFunc(func(ctx context.Context, track, artist string) models.MediaInfo {
			<-ctx.Done()
			return models.MediaInfo{}
		})
		p := newTestPipeline(r, schedule.NewManual())

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		m, err := p.Build(ctx, threeSteps())
		assert.ErrorIs(t, err, context.Canceled)
		assert.Nil(t, m)
	})

	t.Run("Empty Path", func(t *testing.T) {
		p := newTestPipeline(resolverFunc(func(context.Context, string, string) models.MediaInfo {
			t.Fatal("no lookups expected")
			return models.MediaInfo{}
		}), schedule.NewManual())
		m, err := p.Build(context.Background(), nil)
		require.NoError(t, err)
		assert.Equal(t, 0, m.Len())
	})

	t.Run("Defaults", func(t *testing.T) {
		p := NewPipeline(nil, Options{})
		assert.Equal(t, DefaultRevealDelay, p.revealDelay)
		assert.Equal(t, DefaultCover, p.defaultCover)
		assert.Equal(t, DefaultLookups, p.maxLookups)
	})
}

func TestStepLinks(t *testing.T) {
	t.Run("No Track", func(t *testing.T) {
		assert.Nil(t, StepLinks(models.ConnectionStep{FromName: "A", ToName: "B"}))
	})

	t.Run("Encoding", func(t *testing.T) {
		links := StepLinks(models.ConnectionStep{FromName: "Simon & Garfunkel", ToName: "Paul Simon", Track: "Mrs. Robinson"})
		require.Len(t, links, 4)

		byService := map[string]string{}
		for _, l := range links {
			byService[l.Service] = l.URL
		}

		q := "Mrs.%20Robinson%20Simon%20%26%20Garfunkel%20Paul%20Simon"
		assert.Equal(t, "https://musicbrainz.org/search?query=recording%3AMrs.%20Robinson%20AND%20artist%3ASimon%20%26%20Garfunkel&type=recording", byService[ServiceMusicBrainz])
		assert.Equal(t, "https://music.apple.com/us/search?term="+q, byService[ServiceAppleMusic])
		assert.Equal(t, "https://open.spotify.com/search/"+q, byService[ServiceSpotify])
		assert.Equal(t, "https://www.youtube.com/results?search_query="+q, byService[ServiceYouTube])

		for _, l := range links {
			assert.NotContains(t, l.URL, "+", l.Service)
			assert.NotContains(t, l.URL, " ", l.Service)
		}
	})

	t.Run("Literal Plus", func(t *testing.T) {
		links := StepLinks(models.ConnectionStep{FromName: "A+B", ToName: "C", Track: "x"})
		assert.True(t, strings.Contains(links[1].URL, "A%2BB"))
	})
}

func TestReveal(t *testing.T) {
	build := func(t *testing.T, sched schedule.Scheduler) (*Pipeline, *Model) {
		t.Helper()
		p := newTestPipeline(resolverFunc(func(context.Context, string, string) models.MediaInfo {
			return models.MediaInfo{}
		}), sched)
		m, err := p.Build(context.Background(), threeSteps())
		require.NoError(t, err)
		return p, m
	}

	t.Run("Staged", func(t *testing.T) {
		sched := schedule.NewManual()
		p, m := build(t, sched)

		var shown []int
		p.Reveal(m, true, func(i int) { shown = append(shown, i) })
		assert.Equal(t, 0, m.VisibleCount())

		sched.Advance(0)
		assert.Equal(t, []int{0}, shown)
		assert.True(t, m.Visible(0))
		assert.False(t, m.Visible(1))

		sched.Advance(399 * time.Millisecond)
		assert.Equal(t, 1, m.VisibleCount())

		sched.Advance(time.Millisecond)
		assert.True(t, m.Visible(1))

		sched.Advance(400 * time.Millisecond)
		assert.Equal(t, []int{0, 1, 2}, shown)
		assert.Equal(t, 3, m.VisibleCount())
	})

	t.Run("Immediate", func(t *testing.T) {
		sched := schedule.NewManual()
		p, m := build(t, sched)

		var shown []int
		p.Reveal(m, false, func(i int) { shown = append(shown, i) })
		assert.Equal(t, 3, m.VisibleCount())
		assert.Equal(t, []int{0, 1, 2}, shown)
		assert.Equal(t, 0, sched.Pending())
	})

	t.Run("Cancel", func(t *testing.T) {
		sched := schedule.NewManual()
		p, m := build(t, sched)

		cancel := p.Reveal(m, true, nil)
		sched.Advance(400 * time.Millisecond)
		assert.Equal(t, 2, m.VisibleCount())

		cancel()
		sched.Advance(time.Second)
		assert.Equal(t, 2, m.VisibleCount())
		assert.False(t, m.Visible(2))
	})

	t.Run("Out Of Range", func(t *testing.T) {
		_, m := build(t, schedule.NewManual())
		assert.False(t, m.Visible(-1))
		assert.False(t, m.Visible(3))
	})
}

func TestCoverFailed(t *testing.T) {
	cards := []Card{{Cover: "real.jpg"}, {Cover: testDefaultCover}}
	m := newModel(models.Path{{}, {}}, cards, testDefaultCover)

	t.Run("Resolved Then Default Then Placeholder", func(t *testing.T) {
		src, st := m.CoverSource(0)
		assert.Equal(t, "real.jpg", src)
		assert.Equal(t, CoverResolved, st)

		src, st = m.CoverFailed(0)
		assert.Equal(t, testDefaultCover, src)
		assert.Equal(t, CoverDefault, st)

		src, st = m.CoverFailed(0)
		assert.Empty(t, src)
		assert.Equal(t, CoverPlaceholder, st)

		src, st = m.CoverFailed(0)
		assert.Empty(t, src)
		assert.Equal(t, CoverPlaceholder, st)
	})

	t.Run("Default Failing Goes Straight To Placeholder", func(t *testing.T) {
		src, st := m.CoverFailed(1)
		assert.Empty(t, src)
		assert.Equal(t, CoverPlaceholder, st)
	})

	t.Run("String", func(t *testing.T) {
		assert.Equal(t, "resolved", CoverResolved.String())
		assert.Equal(t, "default", CoverDefault.String())
		assert.Equal(t, "placeholder", CoverPlaceholder.String())
	})
}

func TestWire(t *testing.T) {
	tier := tu.NewMediaFunc("catalog", func(track, artist string) (models.MediaInfo, error) {
		return models.MediaInfo{Preview: track + ".mp3"}, nil
	})
	p := newTestPipeline(media.NewResolver(tier, nil, nil), schedule.NewManual())
	m, err := p.Build(context.Background(), threeSteps())
	require.NoError(t, err)

	out := playback.NewMockOutput()
	player := playback.NewController(out, playback.Options{Scheduler: schedule.NewManual()})

	controls := map[int]*playback.MockControl{}
	bindings := Wire(m, player, func(i int, c Card) playback.Control {
		ctl := playback.NewMockControl(c.Title)
		controls[i] = ctl
		return ctl
	})

	require.Len(t, bindings, 2, "card without a track gets no control")
	assert.Equal(t, 0, bindings[0].Card)
	assert.Equal(t, 2, bindings[1].Card)

	ctx := context.Background()
	require.NoError(t, bindings[0].Activate(ctx))
	assert.Equal(t, "First Song.mp3", out.Loaded())
	assert.True(t, controls[0].Playing())

	require.NoError(t, bindings[1].Activate(ctx))
	assert.Equal(t, "Last Song.mp3", out.Loaded())
	assert.False(t, controls[0].Playing())
	assert.True(t, controls[2].Playing())
	assert.Equal(t, playback.Playing, player.State())
}
