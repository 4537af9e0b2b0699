package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/sdos/internal/formatter"
	"github.com/desertthunder/sdos/internal/shared"
	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"
)

// Search lists artists matching a query.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	query := strings.TrimSpace(cmd.StringArg("query"))
	if query == "" {
		return fmt.Errorf("%w: query", shared.ErrMissingArgument)
	}
	limit := int(cmd.Int("limit"))
	if limit <= 0 {
		limit = r.config.Backend.SearchLimit
	}

	start := time.Now()
	matches, err := r.searcher.SearchArtists(ctx, query, limit)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)
	r.logger.Debug("search complete", "query", query, "results", len(matches), "elapsed", elapsed)

	if cmd.Bool("json") {
		return r.writeJSON(matches, true)
	}

	r.writePlainHeader(fmt.Sprintf("Artists matching %q", query))
	if len(matches) == 0 {
		r.writePlain("No artists found.\n")
	}
	for _, m := range matches {
		r.writePlain("%8d  %s", m.ID, m.Name)
		if m.ReleaseCount > 0 {
			r.writePlain(" (%s releases)", humanize.Comma(int64(m.ReleaseCount)))
		}
		r.writePlain("\n")
	}
	return r.writePlainln("%d results in %s", len(matches), formatter.Elapsed(elapsed.Seconds()))
}

// mediaReport is the JSON shape of the media command.
type mediaReport struct {
	Track         string `json:"track"`
	Artist        string `json:"artist"`
	Cover         string `json:"cover,omitempty"`
	Preview       string `json:"preview,omitempty"`
	Found         bool   `json:"found"`
	PrimaryCalls  int    `json:"primary_calls"`
	FallbackCalls int    `json:"fallback_calls"`
}

// Media resolves the cover art and preview for one track through both tiers.
func (r *Runner) Media(ctx context.Context, cmd *cli.Command) error {
	track := strings.TrimSpace(cmd.StringArg("track"))
	artist := strings.TrimSpace(cmd.StringArg("artist"))
	if track == "" || artist == "" {
		return fmt.Errorf("%w: track and artist", shared.ErrMissingArgument)
	}

	info, found := r.resolver.Lookup(ctx, track, artist)
	stats := r.resolver.Stats()
	report := mediaReport{
		Track:         track,
		Artist:        artist,
		Cover:         info.Cover,
		Preview:       info.Preview,
		Found:         found,
		PrimaryCalls:  stats.PrimaryCalls,
		FallbackCalls: stats.FallbackCalls,
	}

	if cmd.Bool("json") {
		return r.writeJSON(report, true)
	}

	r.writePlainHeader(fmt.Sprintf("%s by %s", track, artist))
	r.writePlain("Cover:   %s\n", orNone(info.Cover))
	r.writePlain("Preview: %s\n", orNone(info.Preview))
	return r.writePlainln("catalog calls: %d, cover proxy calls: %d", stats.PrimaryCalls, stats.FallbackCalls)
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
