// submodule cmd contains command definitions
package main

import (
	"github.com/desertthunder/sdos/internal/formatter"
	"github.com/urfave/cli/v3"
)

func formatFlag(value string) *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "Output format (text, markdown, csv, json)",
		Value:   value,
	}
}

// connectCommand finds a route between two artists
func connectCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "connect",
		Aliases: []string{"path"},
		Usage:   "Find what connects two artists",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "from",
				Usage:    "Source artist (id or name)",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "to",
				Usage:    "Target artist (id or name)",
				Required: true,
			},
			&cli.IntFlag{
				Name:    "alternates",
				Aliases: []string{"n"},
				Usage:   "Number of alternate routes to try after the first",
			},
			formatFlag(string(formatter.FormatText)),
			&cli.BoolFlag{
				Name:  "no-media",
				Usage: "Skip cover art and preview lookups",
			},
			&cli.StringFlag{
				Name:  "bundle",
				Usage: "Write the first route as a Markdown bundle with downloaded covers to this directory",
			},
			&cli.BoolFlag{
				Name:  "no-history",
				Usage: "Do not record found routes",
			},
		},
		Action: r.Connect,
	}
}

// batchCommand connects every pair listed in a file
func batchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "batch",
		Usage: "Connect every artist pair in a CSV file (source,target[,label])",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "file",
			},
		},
		Flags: []cli.Flag{
			formatFlag(string(formatter.FormatMarkdown)),
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   "Output directory (default: sdos_batch_<epoch>)",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Concurrent workers (max 10)",
				Value: 4,
			},
			&cli.FloatFlag{
				Name:  "rate",
				Usage: "Path requests per second",
				Value: 2,
			},
			&cli.BoolFlag{
				Name:  "media",
				Usage: "Resolve covers and previews for each route",
			},
		},
		Action: r.Batch,
	}
}

// searchCommand queries the artist search endpoint
func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "search",
		Usage: "Search artists by name",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "query",
			},
		},
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of results",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Search,
	}
}

// mediaCommand resolves cover art and a preview for one track
func mediaCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "media",
		Usage: "Resolve cover art and a preview clip for a track",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "track",
			},
			&cli.StringArg{
				Name: "artist",
			},
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Media,
	}
}

// historyCommand manages recorded routes
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Browse routes found in earlier sessions",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List recorded routes, newest first",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of routes",
						Value: 20,
					},
					&cli.Int64Flag{
						Name:  "source",
						Usage: "Only routes from this artist id",
					},
					&cli.Int64Flag{
						Name:  "target",
						Usage: "Only routes to this artist id",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.HistoryList,
			},
			{
				Name:  "show",
				Usage: "Show a recorded route by number",
				Arguments: []cli.Argument{
					&cli.IntArg{
						Name: "number",
					},
				},
				Flags: []cli.Flag{
					formatFlag(string(formatter.FormatText)),
				},
				Action: r.HistoryShow,
			},
			{
				Name:  "clear",
				Usage: "Delete all recorded routes",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "lookups",
						Usage: "Also clear cached artist name lookups",
					},
				},
				Action: r.HistoryClear,
			},
		},
	}
}

// setupCommand handles setup operations for database and configuration.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "database",
				Usage: "Initialize database and run migrations",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   defaultConfigPath,
					},
				},
				Action: r.SetupDatabase,
			},
			{
				Name:  "config",
				Usage: "Write an example configuration file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   defaultConfigPath,
					},
				},
				Action: r.SetupConfig,
			},
		},
	}
}

// healthCommand checks the backend
func healthCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "health",
		Usage:  "Check that the path-finding backend is reachable",
		Action: r.Health,
	}
}

// apiCommand handles direct backend API calls
func apiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Direct API calls to the path-finding backend",
		Commands: []*cli.Command{
			{
				Name:  "get",
				Usage: "Direct GET to the backend, prints raw JSON",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
						Value: true,
					},
				},
				Action: r.APIGet,
			},
			{
				Name:  "post",
				Usage: "Direct POST with JSON body",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "data",
						Aliases:  []string{"d"},
						Usage:    "JSON body to send",
						Required: true,
					},
				},
				Action: r.APIPost,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive explorer",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "no-audio",
				Usage: "Disable preview playback",
			},
		},
		Action: r.TUI,
	}
}
