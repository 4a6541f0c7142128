package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/desertthunder/tuneidx/internal/models"
	"github.com/desertthunder/tuneidx/internal/shared"
)

// RunRepository persists pipeline run outcomes for the history command.
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository creates a new RunRepository with the given database connection
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Create inserts a finished run into the database with a generated sequence.
// The run keeps the ID the pipeline assigned it so log lines and history rows
// can be correlated.
func (r *RunRepository) Create(run *models.RunRecord) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "runs")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}
	run.Sequence = sequence

	failedIDs, err := marshalFailedIDs(run.FailedIDs)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO runs (id, sequence, state, library_path, read_count, normalized_count, skipped_missing_id, skipped_unusable, duplicate_id, track_count, artist_count, album_count, genre_count, failed_batches, failed_ids, error, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		run.ID,
		run.Sequence,
		run.State,
		run.LibraryPath,
		run.ReadCount,
		run.NormalizedCount,
		run.SkippedMissingID,
		run.SkippedUnusable,
		run.DuplicateID,
		run.TrackCount,
		run.ArtistCount,
		run.AlbumCount,
		run.GenreCount,
		run.FailedBatches,
		failedIDs,
		run.Error,
		run.StartedAt,
		run.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	return nil
}

// Get retrieves a run by its full ID or a unique ID prefix.
func (r *RunRepository) Get(id string) (*models.RunRecord, error) {
	query := runSelect + ` WHERE id = ?`

	run, err := r.scanOne(r.db.QueryRow(query, id))
	if err == nil || !errors.Is(err, shared.ErrRunNotFound) {
		return run, err
	}

	// Prefix match for operator convenience, but only when unambiguous.
	rows, err := r.db.Query(runSelect+` WHERE id LIKE ? LIMIT 2`, id+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	matches, err := r.scanAll(rows)
	if err != nil {
		return nil, err
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return nil, fmt.Errorf("%w: %s", shared.ErrRunNotFound, id)
	default:
		return nil, fmt.Errorf("%w: ambiguous prefix %s", shared.ErrRunNotFound, id)
	}
}

// Latest returns the most recent run, or ErrRunNotFound when none exist.
func (r *RunRepository) Latest() (*models.RunRecord, error) {
	query := runSelect + ` ORDER BY sequence DESC LIMIT 1`
	return r.scanOne(r.db.QueryRow(query))
}

// List returns runs ordered most recent first, capped at limit.
// A non-positive limit returns every recorded run.
func (r *RunRepository) List(limit int) ([]*models.RunRecord, error) {
	query := runSelect + ` ORDER BY sequence DESC`

	var rows *sql.Rows
	var err error
	if limit > 0 {
		rows, err = r.db.Query(query+` LIMIT ?`, limit)
	} else {
		rows, err = r.db.Query(query)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	return r.scanAll(rows)
}

// Delete removes a run row. Run history has no soft delete; a deleted run
// is simply gone from the history listing.
func (r *RunRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrRunNotFound, id)
	}

	return nil
}

const runSelect = `
	SELECT id, sequence, state, library_path, read_count, normalized_count, skipped_missing_id, skipped_unusable, duplicate_id, track_count, artist_count, album_count, genre_count, failed_batches, failed_ids, error, started_at, finished_at
	FROM runs`

func (r *RunRepository) scanOne(row *sql.Row) (*models.RunRecord, error) {
	run := &models.RunRecord{}
	var failedIDs, runErr sql.NullString

	err := row.Scan(
		&run.ID,
		&run.Sequence,
		&run.State,
		&run.LibraryPath,
		&run.ReadCount,
		&run.NormalizedCount,
		&run.SkippedMissingID,
		&run.SkippedUnusable,
		&run.DuplicateID,
		&run.TrackCount,
		&run.ArtistCount,
		&run.AlbumCount,
		&run.GenreCount,
		&run.FailedBatches,
		&failedIDs,
		&runErr,
		&run.StartedAt,
		&run.FinishedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w", shared.ErrRunNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	if err := applyNullable(run, failedIDs, runErr); err != nil {
		return nil, err
	}
	return run, nil
}

func (r *RunRepository) scanAll(rows *sql.Rows) ([]*models.RunRecord, error) {
	var runs []*models.RunRecord
	for rows.Next() {
		run := &models.RunRecord{}
		var failedIDs, runErr sql.NullString

		err := rows.Scan(
			&run.ID,
			&run.Sequence,
			&run.State,
			&run.LibraryPath,
			&run.ReadCount,
			&run.NormalizedCount,
			&run.SkippedMissingID,
			&run.SkippedUnusable,
			&run.DuplicateID,
			&run.TrackCount,
			&run.ArtistCount,
			&run.AlbumCount,
			&run.GenreCount,
			&run.FailedBatches,
			&failedIDs,
			&runErr,
			&run.StartedAt,
			&run.FinishedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if err := applyNullable(run, failedIDs, runErr); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}
	return runs, nil
}

func applyNullable(run *models.RunRecord, failedIDs, runErr sql.NullString) error {
	if failedIDs.Valid && strings.TrimSpace(failedIDs.String) != "" {
		if err := json.Unmarshal([]byte(failedIDs.String), &run.FailedIDs); err != nil {
			return fmt.Errorf("failed to decode failed_ids for run %s: %w", run.ID, err)
		}
	}
	if runErr.Valid {
		run.Error = runErr.String
	}
	return nil
}

func marshalFailedIDs(ids []string) (any, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return nil, fmt.Errorf("failed to encode failed_ids: %w", err)
	}
	return string(data), nil
}
