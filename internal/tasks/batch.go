package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/desertthunder/sdos/internal/formatter"
	"github.com/desertthunder/sdos/internal/models"
	"github.com/desertthunder/sdos/internal/render"
	"golang.org/x/time/rate"
)

// Pair is one source/target request in a batch.
type Pair struct {
	SourceID int64
	TargetID int64
	Label    string // Display name, defaults to "source-target"
}

func (p Pair) String() string {
	if p.Label != "" {
		return p.Label
	}
	return fmt.Sprintf("%d-%d", p.SourceID, p.TargetID)
}

// BatchOpts contains configuration for batch connections.
type BatchOpts struct {
	Format     formatter.Format // Output format for each route file
	OutputDir  string           // Base output directory (default: sdos_batch_{epoch})
	NumWorkers int              // Concurrent workers (default: 4, max 10)
	RateLimit  float64          // Path requests per second (default: 2)
	WithMedia  bool             // Resolve covers and previews for each route
}

// BatchResult is the outcome for a single pair.
type BatchResult struct {
	Pair     string      `json:"pair"`
	SourceID int64       `json:"source_id"`
	TargetID int64       `json:"target_id"`
	Outcome  string      `json:"outcome"`
	Message  string      `json:"message,omitempty"`
	Seconds  float64     `json:"seconds,omitempty"`
	File     string      `json:"file,omitempty"`
	Path     models.Path `json:"-"`
	index    int
}

// BatchSummary describes a finished batch and is written as its manifest.
type BatchSummary struct {
	OutputDirectory string        `json:"output_directory"`
	ManifestPath    string        `json:"-"`
	Total           int           `json:"total"`
	Found           int           `json:"found"`
	NotFound        int           `json:"not_found"`
	Failed          int           `json:"failed"`
	Results         []BatchResult `json:"results"`
}

// Batch finds a route for every pair with a rate-limited worker pool and writes
// each found route to its own file, plus a JSON manifest.
//
// Batches never touch the interactive session. Per-pair failures are recorded
// in the summary; only setup and manifest errors are returned.
func (e *Explorer) Batch(ctx context.Context, pairs []Pair, opts BatchOpts) (*BatchSummary, error) {
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("sdos_batch_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 4
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 2.0
	}
	if opts.Format == "" {
		opts.Format = formatter.FormatMarkdown
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	summary := &BatchSummary{
		OutputDirectory: opts.OutputDir,
		Total:           len(pairs),
		Results:         make([]BatchResult, 0, len(pairs)),
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	jobs := make(chan int, len(pairs))
	results := make(chan BatchResult, len(pairs))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go e.batchWorker(ctx, &wg, limiter, pairs, jobs, results, opts)
	}

	e.sendProgress(batchStartedUpdate(len(pairs)))
	for i := range pairs {
		jobs <- i
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		summary.Results = append(summary.Results, res)
		switch res.Outcome {
		case models.OutcomeFound.String():
			summary.Found++
			e.sendProgress(batchCompletedUpdate(completed, len(pairs), res))
		case models.OutcomeNotFound.String():
			summary.NotFound++
			e.sendProgress(batchFailedUpdate(completed, len(pairs), res))
		default:
			summary.Failed++
			e.sendProgress(batchFailedUpdate(completed, len(pairs), res))
		}
	}
	sort.Slice(summary.Results, func(i, j int) bool { return summary.Results[i].index < summary.Results[j].index })

	manifestPath := filepath.Join(opts.OutputDir, "batch_manifest.json")
	if err := formatter.WriteJSON(summary, manifestPath); err != nil {
		return summary, fmt.Errorf("batch completed but failed to write manifest: %w", err)
	}
	summary.ManifestPath = manifestPath
	return summary, nil
}

// batchWorker connects pairs from the jobs channel.
func (e *Explorer) batchWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	limiter *rate.Limiter,
	pairs []Pair,
	jobs <-chan int,
	results chan<- BatchResult,
	opts BatchOpts,
) {
	defer wg.Done()

	for i := range jobs {
		pair := pairs[i]
		res := BatchResult{Pair: pair.String(), SourceID: pair.SourceID, TargetID: pair.TargetID, index: i}

		if err := limiter.Wait(ctx); err != nil {
			res.Outcome = models.OutcomeFailed.String()
			res.Message = err.Error()
			results <- res
			continue
		}

		results <- e.connectPair(ctx, pair, res, opts)
	}
}

func (e *Explorer) connectPair(ctx context.Context, pair Pair, res BatchResult, opts BatchOpts) BatchResult {
	if pair.SourceID <= 0 || pair.TargetID <= 0 {
		res.Outcome = models.OutcomeFailed.String()
		res.Message = MsgMissingSelection
		return res
	}

	pr := e.finder.FindPath(ctx, models.PathRequest{SourceID: pair.SourceID, TargetID: pair.TargetID})
	res.Outcome = pr.Outcome.String()
	res.Seconds = pr.Seconds
	switch pr.Outcome {
	case models.OutcomeFailed:
		res.Message = orDefault(pr.Message, MsgSubmitFailed)
		return res
	case models.OutcomeNotFound:
		res.Message = MsgNoConnection
		return res
	}
	res.Path = pr.Path
	e.record(ctx, pr.Path, pr.Seconds)

	var model *render.Model
	if opts.WithMedia && e.pipeline != nil {
		m, err := e.pipeline.Build(ctx, pr.Path)
		if err != nil {
			e.logger.Warn("batch media lookup cancelled", "pair", res.Pair, "error", err)
		}
		model = m
	}

	file := filepath.Join(opts.OutputDir, fmt.Sprintf("%d_%d%s", pair.SourceID, pair.TargetID, opts.Format.Extension()))
	route := formatter.NewRoute(pr.Path, pr.Seconds, model)
	if err := formatter.WriteRoute(route, opts.Format, file); err != nil {
		res.Outcome = models.OutcomeFailed.String()
		res.Message = fmt.Sprintf("write failed: %v", err)
		return res
	}
	res.File = file
	return res
}
