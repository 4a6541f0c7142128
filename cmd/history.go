package main

import (
	"context"

	"github.com/desertthunder/tuneidx/internal/formatter"
	"github.com/desertthunder/tuneidx/internal/models"
	"github.com/desertthunder/tuneidx/internal/repositories"
	"github.com/desertthunder/tuneidx/internal/shared"
	"github.com/urfave/cli/v3"
)

// HistoryList lists recorded runs, most recent first.
func (r *Runner) HistoryList(ctx context.Context, cmd *cli.Command) error {
	r.config = r.loadConfigOrDefault(cmd)
	limit := cmd.Int("limit")

	db, closeDB, err := r.openDB()
	if err != nil {
		return err
	}
	defer closeDB()

	if err := shared.RunMigrations(db); err != nil {
		return err
	}

	runs, err := repositories.NewRunRepository(db).List(limit)
	if err != nil {
		return err
	}

	return r.writePlain("%s", formatter.HistoryToText(runs))
}

// HistoryShow displays one run by ID or prefix, defaulting to the latest.
func (r *Runner) HistoryShow(ctx context.Context, cmd *cli.Command) error {
	r.config = r.loadConfigOrDefault(cmd)
	id := cmd.StringArg("id")

	db, closeDB, err := r.openDB()
	if err != nil {
		return err
	}
	defer closeDB()

	if err := shared.RunMigrations(db); err != nil {
		return err
	}

	repo := repositories.NewRunRepository(db)

	var run *models.RunRecord
	if id == "" {
		run, err = repo.Latest()
	} else {
		run, err = repo.Get(id)
	}
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(run, true)
	}
	return r.writePlain("%s", formatter.RecordToText(run))
}
