package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/desertthunder/sdos/internal/formatter"
	"github.com/desertthunder/sdos/internal/models"
	"github.com/desertthunder/sdos/internal/services"
	"github.com/desertthunder/sdos/internal/shared"
	"github.com/desertthunder/sdos/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Connect finds a route between two artists and prints it, followed by up to
// --alternates routes that avoid every edge already shown.
func (r *Runner) Connect(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	from, err := r.resolveArtist(ctx, cmd.String("from"))
	if err != nil {
		return fmt.Errorf("failed to resolve --from: %w", err)
	}
	to, err := r.resolveArtist(ctx, cmd.String("to"))
	if err != nil {
		return fmt.Errorf("failed to resolve --to: %w", err)
	}

	progress := make(chan tasks.ProgressUpdate, 16)
	defer close(progress)
	go r.logProgress(progress)

	explorer := r.explorer(nil, !cmd.Bool("no-media"), !cmd.Bool("no-history"), progress)

	r.logger.Info("finding connection", "from", from.ID, "to", to.ID)
	ins := explorer.Submit(ctx, from.ID, to.ID)
	if ins.Kind != tasks.ShowPath {
		return r.connectMessage(ins)
	}

	route := formatter.NewRoute(ins.Model.Path, ins.Seconds, ins.Model)
	if err := r.writeRoute(route, format); err != nil {
		return err
	}

	if dir := cmd.String("bundle"); dir != "" {
		if err := r.writeBundle(route, dir); err != nil {
			return err
		}
	}

	for i := 1; i <= int(cmd.Int("alternates")); i++ {
		ins := explorer.RequestAlternate(ctx)
		switch {
		case ins.Kind == tasks.ShowMessage:
			r.writePlainln("%s", ins.Message)
			return nil
		case ins.Revisit:
			r.writePlainln("%s", tasks.MsgNoAlternative)
			return nil
		case ins.Kind != tasks.ShowPath:
			return nil
		}

		r.writePlainln("Alternate route %d", i)
		alt := formatter.NewRoute(ins.Model.Path, ins.Seconds, ins.Model)
		if err := r.writeRoute(alt, format); err != nil {
			return err
		}
	}
	return nil
}

// connectMessage prints the explorer's message. "No connection" is an answer,
// anything else is a failure.
func (r *Runner) connectMessage(ins tasks.Instruction) error {
	if ins.Message == tasks.MsgNoConnection {
		return r.writePlain("%s\n", ins.Message)
	}
	if ins.Err != nil {
		return fmt.Errorf("%w: %s: %v", shared.ErrAPIRequest, ins.Message, ins.Err)
	}
	return fmt.Errorf("%w: %s", shared.ErrAPIRequest, ins.Message)
}

func (r *Runner) writeRoute(route formatter.Route, format formatter.Format) error {
	data, err := formatter.Render(route, format)
	if err != nil {
		return err
	}
	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if len(data) > 0 && data[len(data)-1] != '\n' {
		return r.writePlain("\n")
	}
	return nil
}

func (r *Runner) writeBundle(route formatter.Route, dir string) error {
	result, err := formatter.WriteMarkdownBundle(route, dir, r.httpClient)
	if err != nil {
		return fmt.Errorf("failed to write bundle: %w", err)
	}
	for _, w := range result.Warnings {
		r.logger.Warn("bundle", "warning", w)
	}
	r.writePlainln("✓ Bundle written to %s (%d files, %d covers)", result.Directory, len(result.Files), result.Covers)
	return nil
}

// resolveArtist turns an id or a name into an artist. Names are looked up in
// the local cache first; fresh search results are cached for next time.
func (r *Runner) resolveArtist(ctx context.Context, ref string) (models.Artist, error) {
	ref = strings.TrimSpace(ref)
	if _, err := strconv.ParseInt(ref, 10, 64); err == nil || ref == "" {
		return services.ResolveArtist(ctx, r.searcher, ref, r.config.Backend.SearchLimit)
	}

	if _, err := r.history(); err != nil {
		r.logger.Debug("artist lookup cache unavailable", "error", err)
	} else if match, err := r.lookups.Get(ref); err == nil {
		r.logger.Debug("artist lookup cache hit", "query", ref, "id", match.ID)
		return models.Artist{ID: match.ID, Name: match.Name}, nil
	}

	artist, err := services.ResolveArtist(ctx, r.searcher, ref, r.config.Backend.SearchLimit)
	if err != nil {
		return artist, err
	}
	r.logger.Info("resolved artist", "query", ref, "id", artist.ID, "name", artist.Name)

	if r.lookups != nil {
		if err := r.lookups.Put(ref, models.ArtistMatch{ID: artist.ID, Name: artist.Name}); err != nil {
			r.logger.Warn("failed to cache artist lookup", "query", ref, "error", err)
		}
	}
	return artist, nil
}
