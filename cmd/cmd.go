// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

// setupCommand prepares the run-history database, the sink indices, and the config file
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Initialize the history database, sink indices, and config file",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Initialize run-history database and run migrations",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupDatabase,
			},
			{
				Name:  "indices",
				Usage: "Create the tracks, artists, albums, and genres indices",
				Flags: []cli.Flag{
					configFlag(),
					&cli.BoolFlag{
						Name:  "recreate",
						Usage: "Drop and recreate existing indices",
					},
					&cli.IntFlag{
						Name:  "wait",
						Usage: "Attempts to wait for the cluster before giving up",
						Value: 5,
					},
				},
				Action: r.SetupIndices,
			},
			{
				Name:  "config",
				Usage: "Write a config.toml template",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Path for the new config file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupConfig,
			},
		},
	}
}

// runCommand executes one full ingest run
func runCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Read a library export and index it into the search cluster",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:    "library",
				Aliases: []string{"l"},
				Usage:   "Path to the library export (overrides config)",
			},
			&cli.BoolFlag{
				Name:  "fail-fast",
				Usage: "Abort the run on the first exhausted batch",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output the run summary as JSON",
			},
			&cli.StringFlag{
				Name:  "report",
				Usage: "Base path for summary and failed-ids report files",
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "Suppress progress output",
			},
		},
		Action: r.Run,
	}
}

// inspectCommand parses and normalizes without writing anything
func inspectCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "inspect",
		Usage: "Parse and normalize a library export without writing to the sink",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:    "library",
				Aliases: []string{"l"},
				Usage:   "Path to the library export (overrides config)",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output counts as JSON",
			},
		},
		Action: r.Inspect,
	}
}

// historyCommand lists and shows recorded runs
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Inspect past runs",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List recorded runs, most recent first",
				Flags: []cli.Flag{
					configFlag(),
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of runs to list (0 for all)",
						Value: 20,
					},
				},
				Action: r.HistoryList,
			},
			{
				Name:  "show",
				Usage: "Show one run by ID or unique ID prefix (defaults to the latest)",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "id",
					},
				},
				Flags: []cli.Flag{
					configFlag(),
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output the run as JSON",
					},
				},
				Action: r.HistoryShow,
			},
		},
	}
}
