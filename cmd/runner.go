package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/sdos/internal/media"
	"github.com/desertthunder/sdos/internal/render"
	"github.com/desertthunder/sdos/internal/repositories"
	"github.com/desertthunder/sdos/internal/services"
	"github.com/desertthunder/sdos/internal/shared"
	"github.com/desertthunder/sdos/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	api        *services.APIService
	paths      services.PathFinder
	searcher   services.ArtistSearcher
	health     *services.HealthService
	resolver   *media.Resolver
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer

	db      *sql.DB
	routes  *repositories.RouteRepository
	lookups *repositories.ArtistLookupRepository
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	API        *services.APIService
	PathFinder services.PathFinder
	Searcher   services.ArtistSearcher
	Resolver   *media.Resolver
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	// DB is the route history database. When nil it is opened from the config on first use.
	DB *sql.DB
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	if opts.API == nil {
		client := services.NewBearerClient(context.Background(), opts.Config.Backend.Token, opts.HTTPClient)
		opts.API = services.NewAPIService(opts.Config.Backend.BaseURL, client)
	}
	if opts.PathFinder == nil {
		opts.PathFinder = services.NewPathService(opts.API, opts.Logger.WithPrefix("path"))
	}
	if opts.Searcher == nil {
		opts.Searcher = services.NewSearchService(opts.API, opts.Logger.WithPrefix("search"))
	}
	if opts.Resolver == nil {
		opts.Resolver = newResolver(opts.Config, opts.API, opts.HTTPClient, opts.Logger)
	}

	r := &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		api:        opts.API,
		paths:      opts.PathFinder,
		searcher:   opts.Searcher,
		health:     services.NewHealthService(opts.API),
		resolver:   opts.Resolver,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}
	if opts.DB != nil {
		r.useDB(opts.DB)
	}
	return r
}

// newResolver builds the two-tier media resolver: the public catalog, then the backend cover proxy.
func newResolver(config *shared.Config, api *services.APIService, client *http.Client, logger *log.Logger) *media.Resolver {
	var primary media.Tier
	if !config.Catalog.Disabled {
		primary = services.NewCatalogService(services.CatalogOptions{
			BaseURL:     config.Catalog.BaseURL,
			Country:     config.Catalog.Country,
			ArtworkSize: config.Catalog.ArtworkSize,
			RateLimit:   config.Catalog.RateLimit,
			Burst:       config.Catalog.Burst,
			Client:      client,
		})
	}
	return media.NewResolver(primary, services.NewCoverService(api), logger.WithPrefix("media"))
}

// SetLogger replaces the logger, e.g. with a file logger while the TUI owns the terminal.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

func (r *Runner) useDB(db *sql.DB) {
	r.db = db
	r.routes = repositories.NewRouteRepository(db)
	r.lookups = repositories.NewArtistLookupRepository(db)
}

// history opens the route history database on first use.
func (r *Runner) history() (*repositories.RouteRepository, error) {
	if r.db == nil {
		db, err := shared.OpenHistory(r.config.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to open route history: %w", err)
		}
		r.useDB(db)
	}
	return r.routes, nil
}

// recorder returns the history recorder, or nil when the database is unavailable.
func (r *Runner) recorder() tasks.HistoryRecorder {
	routes, err := r.history()
	if err != nil {
		r.logger.Warn("route history disabled", "error", err)
		return nil
	}
	return repositories.NewRouteHistory(routes)
}

// Close releases the history database if it was opened.
func (r *Runner) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

// pipeline builds a render pipeline from the config. Without media, covers and
// previews are never looked up.
func (r *Runner) pipeline(withMedia bool) *render.Pipeline {
	var resolver render.Resolver = r.resolver
	if !withMedia {
		resolver = media.NewResolver(nil, nil, r.logger)
	}
	return render.NewPipeline(resolver, render.Options{
		RevealDelay:  r.config.Render.RevealDelay(),
		DefaultCover: r.config.Render.DefaultCover,
		MaxLookups:   r.config.Render.MaxConcurrentLookups,
		Logger:       r.logger.WithPrefix("render"),
	})
}

// explorer wires an explorer for one command run.
func (r *Runner) explorer(player tasks.Player, withMedia, record bool, progress chan<- tasks.ProgressUpdate) *tasks.Explorer {
	opts := tasks.ExplorerOpts{Progress: progress, Logger: r.logger.WithPrefix("explorer")}
	if record {
		opts.Recorder = r.recorder()
	}
	return tasks.NewExplorer(r.paths, r.pipeline(withMedia), player, opts)
}

// logProgress drains progress updates into the debug log until ch is closed.
func (r *Runner) logProgress(ch <-chan tasks.ProgressUpdate) {
	for update := range ch {
		r.logger.Debug(update.Message, "phase", update.Phase, "step", update.Step, "total", update.Total)
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		connectCommand, batchCommand, searchCommand, mediaCommand, historyCommand,
		setupCommand, healthCommand, apiCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
