package main

import (
	"context"
	"fmt"
	"sync"

	"github.com/desertthunder/tuneidx/internal/formatter"
	"github.com/desertthunder/tuneidx/internal/pipeline"
	"github.com/desertthunder/tuneidx/internal/repositories"
	"github.com/desertthunder/tuneidx/internal/shared"
	"github.com/urfave/cli/v3"
)

// Run executes one full ingest: read, normalize, aggregate, write, record.
func (r *Runner) Run(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfigOrDefault(cmd)
	if cmd.Bool("fail-fast") {
		config.Writer.FailFast = true
	}
	r.config = config

	libraryPath := cmd.String("library")
	if libraryPath == "" {
		libraryPath = config.Library.Path
	}
	if libraryPath == "" {
		return fmt.Errorf("%w: library path (set --library or library.path in config)", shared.ErrMissingArgument)
	}

	target, err := r.openSink()
	if err != nil {
		return err
	}

	indexer := pipeline.NewIndexer(target, r.logger)

	var progress chan pipeline.ProgressUpdate
	var wg sync.WaitGroup
	if !cmd.Bool("quiet") {
		progress = make(chan pipeline.ProgressUpdate, 64)
		wg.Add(1)
		go func() {
			defer wg.Done()
			for update := range progress {
				r.writePlain("%s\n", update.Message)
			}
		}()
	}

	summary, runErr := indexer.Run(ctx, progress, libraryPath)
	if progress != nil {
		close(progress)
		wg.Wait()
	}

	if summary != nil {
		r.recordRun(summary)
	}

	if runErr != nil {
		return runErr
	}

	if cmd.Bool("json") {
		if err := r.writeJSON(summary, true); err != nil {
			return err
		}
	} else {
		r.writePlain("\n%s", formatter.SummaryToText(summary))
	}

	if base := cmd.String("report"); base != "" {
		result, err := formatter.WriteRunReport(summary, base)
		if err != nil {
			return err
		}
		r.writePlain("Report written to %s\n", result.SummaryFile)
		if result.FailedFile != "" {
			r.writePlain("Failed document ids written to %s\n", result.FailedFile)
		}
	}

	if code := summary.ExitCode(); code != 0 {
		return cli.Exit(fmt.Sprintf("run completed with %d failed batches", summary.FailedBatches), code)
	}
	return nil
}

// recordRun persists the run outcome; history store failures are logged,
// never fatal to a run that already happened.
func (r *Runner) recordRun(summary *pipeline.RunSummary) {
	db, closeDB, err := r.openDB()
	if err != nil {
		r.logger.Warn("run not recorded", "error", err)
		return
	}
	defer closeDB()

	if err := shared.RunMigrations(db); err != nil {
		r.logger.Warn("run not recorded", "error", err)
		return
	}

	repo := repositories.NewRunRepository(db)
	if err := repo.Create(summary.Record()); err != nil {
		r.logger.Warn("run not recorded", "error", err)
		return
	}
	r.logger.Debug("run recorded", "run_id", summary.RunID)
}
