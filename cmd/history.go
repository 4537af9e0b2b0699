package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/sdos/internal/formatter"
	"github.com/desertthunder/sdos/internal/models"
	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"
)

// historyEntry is the JSON shape of a recorded route.
type historyEntry struct {
	Number    int         `json:"number"`
	SessionID string      `json:"session_id"`
	Source    string      `json:"source"`
	Target    string      `json:"target"`
	Degrees   int         `json:"degrees"`
	Seconds   float64     `json:"seconds"`
	Path      models.Path `json:"path"`
	CreatedAt string      `json:"created_at"`
}

// HistoryList prints recorded routes, newest first.
func (r *Runner) HistoryList(ctx context.Context, cmd *cli.Command) error {
	routes, err := r.history()
	if err != nil {
		return err
	}

	records, err := routes.List(map[string]any{
		"limit":     int(cmd.Int("limit")),
		"source_id": cmd.Int64("source"),
		"target_id": cmd.Int64("target"),
	})
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		entries := make([]historyEntry, len(records))
		for i, rec := range records {
			entries[i] = historyEntry{
				Number:    rec.Sequence(),
				SessionID: rec.SessionID(),
				Source:    rec.Source().Name,
				Target:    rec.Target().Name,
				Degrees:   rec.Degrees(),
				Seconds:   rec.Seconds(),
				Path:      rec.Path(),
				CreatedAt: rec.CreatedAt().UTC().Format("2006-01-02T15:04:05Z"),
			}
		}
		return r.writeJSON(entries, true)
	}

	r.writePlainHeader("Route history")
	if len(records) == 0 {
		r.writePlain("No routes recorded yet. Run 'sdos connect' to find one.\n")
		return nil
	}
	for _, rec := range records {
		r.writePlain("#%-4d %s → %s  %s  %s\n",
			rec.Sequence(), rec.Source().Name, rec.Target().Name,
			formatter.Degrees(rec.Degrees()), humanize.Time(rec.CreatedAt()))
	}
	return nil
}

// HistoryShow renders one recorded route.
func (r *Runner) HistoryShow(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}
	routes, err := r.history()
	if err != nil {
		return err
	}

	rec, err := routes.GetBySequence(int(cmd.IntArg("number")))
	if err != nil {
		return err
	}

	if format == formatter.FormatText {
		r.writePlain("Route #%d, found %s\n\n", rec.Sequence(), humanize.Time(rec.CreatedAt()))
	}
	return r.writeRoute(formatter.NewRoute(rec.Path(), rec.Seconds(), nil), format)
}

// HistoryClear deletes every recorded route and, optionally, the artist lookup cache.
func (r *Runner) HistoryClear(ctx context.Context, cmd *cli.Command) error {
	routes, err := r.history()
	if err != nil {
		return err
	}

	n, err := routes.Clear()
	if err != nil {
		return err
	}
	r.logger.Info("cleared route history", "routes", n)
	r.writePlain("✓ Removed %s routes\n", humanize.Comma(n))

	if cmd.Bool("lookups") {
		n, err := r.lookups.Clear()
		if err != nil {
			return fmt.Errorf("failed to clear artist lookups: %w", err)
		}
		r.writePlain("✓ Removed %s cached artist lookups\n", humanize.Comma(n))
	}
	return nil
}
