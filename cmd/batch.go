package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/desertthunder/sdos/internal/formatter"
	"github.com/desertthunder/sdos/internal/shared"
	"github.com/desertthunder/sdos/internal/tasks"
	"github.com/urfave/cli/v3"
)

// pairSpec is one unresolved line of a batch file.
type pairSpec struct {
	line   int
	source string
	target string
	label  string
}

// readPairs parses "source,target[,label]" records. Blank lines and lines
// starting with # are skipped.
func readPairs(in io.Reader) ([]pairSpec, error) {
	reader := csv.NewReader(in)
	reader.Comment = '#'
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var specs []pairSpec
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
		}

		line, _ := reader.FieldPos(0)
		if len(record) < 2 {
			return nil, fmt.Errorf("%w: line %d: expected source,target", shared.ErrInvalidInput, line)
		}

		spec := pairSpec{line: line, source: strings.TrimSpace(record[0]), target: strings.TrimSpace(record[1])}
		if len(record) > 2 {
			spec.label = strings.TrimSpace(record[2])
		}
		if spec.source == "" || spec.target == "" {
			return nil, fmt.Errorf("%w: line %d: empty artist", shared.ErrInvalidInput, line)
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

// Batch connects every pair in a file and writes one route file per pair plus a manifest.
func (r *Runner) Batch(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("file")
	if path == "" {
		return fmt.Errorf("%w: file", shared.ErrMissingArgument)
	}
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open batch file: %w", err)
	}
	specs, err := readPairs(f)
	f.Close()
	if err != nil {
		return err
	}
	if len(specs) == 0 {
		return fmt.Errorf("%w: %s has no pairs", shared.ErrInvalidInput, path)
	}

	pairs := make([]tasks.Pair, 0, len(specs))
	for _, spec := range specs {
		from, err := r.resolveArtist(ctx, spec.source)
		if err != nil {
			return fmt.Errorf("line %d: %w", spec.line, err)
		}
		to, err := r.resolveArtist(ctx, spec.target)
		if err != nil {
			return fmt.Errorf("line %d: %w", spec.line, err)
		}
		pairs = append(pairs, tasks.Pair{SourceID: from.ID, TargetID: to.ID, Label: spec.label})
	}

	progress := make(chan tasks.ProgressUpdate, len(pairs)+1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			r.writePlain("[%d/%d] %s\n", update.Step, update.Total, update.Message)
		}
	}()

	withMedia := cmd.Bool("media")
	explorer := r.explorer(nil, withMedia, false, progress)
	summary, err := explorer.Batch(ctx, pairs, tasks.BatchOpts{
		Format:     format,
		OutputDir:  cmd.String("out"),
		NumWorkers: int(cmd.Int("workers")),
		RateLimit:  cmd.Float("rate"),
		WithMedia:  withMedia,
	})
	close(progress)
	<-done
	if err != nil {
		return err
	}

	r.writePlainln("✓ Batch complete: %d found, %d not found, %d failed", summary.Found, summary.NotFound, summary.Failed)
	r.writePlain("Output: %s\n", summary.OutputDirectory)
	r.writePlain("Manifest: %s\n", summary.ManifestPath)
	return nil
}
