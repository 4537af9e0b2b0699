// Package media resolves (track, artist) pairs to cover art and preview URLs.
//
// A [Resolver] tries a primary tier (the public catalog) and then a fallback
// tier (the backend's cover proxy), and memoizes every outcome, including
// "nothing found", for the life of the resolver. Tier failures are logged at
// debug level and never reach the caller.
package media

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/sdos/internal/models"
	"github.com/desertthunder/sdos/internal/shared"
	"golang.org/x/sync/singleflight"
)

// Tier is one source of media info.
type Tier interface {
	Lookup(ctx context.Context, track, artist string) (models.MediaInfo, error)
	Name() string
}

// key is the normalized cache key. Separate fields avoid separator collisions.
type key struct {
	track  string
	artist string
}

func (k key) flight() string { return k.track + "\x00" + k.artist }

// entry is a cached outcome. found is false for the explicit "none" variant.
// aborted marks a fetch cut short by its caller's context; it is never cached.
type entry struct {
	info    models.MediaInfo
	found   bool
	aborted bool
}

// Stats counts resolver activity.
type Stats struct {
	PrimaryCalls  int
	FallbackCalls int
	Hits          int
	Misses        int
	Entries       int
}

// Resolver is a memoizing, tiered media lookup. It is safe for concurrent use.
type Resolver struct {
	primary  Tier
	fallback Tier
	logger   *log.Logger

	mu     sync.Mutex
	cache  map[key]entry
	stats  Stats
	flight singleflight.Group
}

// NewResolver creates a resolver. Either tier may be nil to skip it.
func NewResolver(primary, fallback Tier, logger *log.Logger) *Resolver {
	if logger == nil {
		logger = shared.DiscardLogger()
	}
	return &Resolver{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
		cache:    make(map[key]entry),
	}
}

// Resolve returns media for track by artist. Missing media is the zero [models.MediaInfo].
func (r *Resolver) Resolve(ctx context.Context, track, artist string) models.MediaInfo {
	info, _ := r.Lookup(ctx, track, artist)
	return info
}

// Lookup is [Resolver.Resolve] that also reports whether either tier found anything.
//
// A blank track returns immediately without touching the cache. Concurrent
// lookups of the same key share one round trip. A caller whose ctx ends
// stops waiting; a waiter whose shared fetch was aborted by another caller's
// ctx retries with its own.
func (r *Resolver) Lookup(ctx context.Context, track, artist string) (models.MediaInfo, bool) {
	if shared.IsBlank(track) {
		return models.MediaInfo{}, false
	}
	k := key{track: shared.NormalizeKey(track), artist: shared.NormalizeKey(artist)}

	for {
		if e, ok := r.cached(k); ok {
			return e.info, e.found
		}
		if ctx.Err() != nil {
			return models.MediaInfo{}, false
		}

		ch := r.flight.DoChan(k.flight(), func() (any, error) {
			if e, ok := r.cached(k); ok {
				return e, nil
			}
			return r.fetch(ctx, k), nil
		})

		select {
		case <-ctx.Done():
			return models.MediaInfo{}, false
		case res := <-ch:
			e := res.Val.(entry)
			if e.aborted && ctx.Err() == nil {
				continue
			}
			return e.info, e.found
		}
	}
}

func (r *Resolver) cached(k key) (entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.cache[k]
	if ok {
		r.stats.Hits++
	}
	return e, ok
}

// fetch walks the tiers and stores the outcome.
//
// A lookup interrupted by ctx is returned as none but not cached.
func (r *Resolver) fetch(ctx context.Context, k key) entry {
	r.mu.Lock()
	r.stats.Misses++
	r.mu.Unlock()

	for i, tier := range []Tier{r.primary, r.fallback} {
		if tier == nil {
			continue
		}
		r.count(i)

		info, err := tier.Lookup(ctx, k.track, k.artist)
		if err == nil && !info.IsZero() {
			e := entry{info: info, found: true}
			r.store(k, e)
			r.logger.Debug("media resolved", "tier", tier.Name(), "track", k.track, "artist", k.artist)
			return e
		}
		r.logger.Debug("media tier missed", "tier", tier.Name(), "track", k.track, "artist", k.artist, "error", err)
	}

	none := entry{}
	if ctx.Err() != nil {
		return entry{aborted: true}
	}
	r.store(k, none)
	return none
}

func (r *Resolver) count(tier int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if tier == 0 {
		r.stats.PrimaryCalls++
	} else {
		r.stats.FallbackCalls++
	}
}

func (r *Resolver) store(k key, e entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.cache[k]; !ok {
		r.cache[k] = e
	}
}

// Stats returns a snapshot of resolver counters.
func (r *Resolver) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.stats
	s.Entries = len(r.cache)
	return s
}
