package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/tuneidx/internal/aggregate"
	"github.com/desertthunder/tuneidx/internal/library"
	"github.com/desertthunder/tuneidx/internal/normalize"
	"github.com/desertthunder/tuneidx/internal/shared"
	"github.com/urfave/cli/v3"
)

// inspectReport is the dry-run result: everything a real run would compute
// short of writing to the sink.
type inspectReport struct {
	LibraryPath string          `json:"library_path"`
	Tally       normalize.Tally `json:"tally"`
	TrackCount  int             `json:"track_count"`
	ArtistCount int             `json:"artist_count"`
	AlbumCount  int             `json:"album_count"`
	GenreCount  int             `json:"genre_count"`
}

// Inspect parses and normalizes the export without touching the sink.
func (r *Runner) Inspect(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfigOrDefault(cmd)

	libraryPath := cmd.String("library")
	if libraryPath == "" {
		libraryPath = config.Library.Path
	}
	if libraryPath == "" {
		return fmt.Errorf("%w: library path (set --library or library.path in config)", shared.ErrMissingArgument)
	}

	lib, err := library.Open(libraryPath)
	if err != nil {
		return err
	}

	tracks, tally := normalize.Tracks(lib.Entries())
	summary := aggregate.Summarize(tracks)

	report := inspectReport{
		LibraryPath: libraryPath,
		Tally:       tally,
		TrackCount:  len(tracks),
		ArtistCount: len(summary.Artists),
		AlbumCount:  len(summary.Albums),
		GenreCount:  len(summary.Genres),
	}

	if cmd.Bool("json") {
		return r.writeJSON(report, true)
	}

	r.writePlain("Library: %s\n\n", report.LibraryPath)
	r.writePlain("Entries read: %d\n", tally.Read)
	r.writePlain("Tracks normalized: %d\n", tally.Normalized)
	r.writePlain("Skipped (missing id): %d\n", tally.SkippedMissingID)
	r.writePlain("Skipped (unusable): %d\n", tally.SkippedUnusable)
	r.writePlain("Duplicate ids: %d\n\n", tally.DuplicateID)
	r.writePlain("Would index: %d tracks, %d artists, %d albums, %d genres\n",
		report.TrackCount, report.ArtistCount, report.AlbumCount, report.GenreCount)

	return nil
}
