package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/sdos/internal/playback"
	"github.com/desertthunder/sdos/internal/shared"
	"github.com/desertthunder/sdos/internal/tasks"
	"github.com/desertthunder/sdos/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive explorer.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, closer, err := shared.NewFileLogger(r.config.Log.File)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	defer closer.Close()
	shared.SetLogLevel(fileLogger, r.config.Log.LogLevel())
	r.SetLogger(fileLogger)

	var (
		controller *playback.Controller
		player     tasks.Player
	)
	if !cmd.Bool("no-audio") {
		out := playback.NewSpeakerOutput(r.httpClient, fileLogger.WithPrefix("speaker"))
		controller = playback.NewController(out, playback.Options{
			FrameInterval: r.config.Playback.FrameInterval(),
			Logger:        fileLogger.WithPrefix("playback"),
		})
		player = controller
	}

	progress := make(chan tasks.ProgressUpdate, 16)
	explorer := r.explorer(player, true, true, progress)

	model := ui.NewModel(ctx, ui.Options{
		Explorer:      explorer,
		Searcher:      r.searcher,
		Player:        controller,
		Progress:      progress,
		HTTPClient:    r.httpClient,
		SearchLimit:   r.config.Backend.SearchLimit,
		FrameInterval: r.config.Playback.FrameInterval(),
		Logger:        fileLogger.WithPrefix("ui"),
	})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
