// package pipeline sequences the ingestion stages and reports run outcomes.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/tuneidx/internal/aggregate"
	"github.com/desertthunder/tuneidx/internal/library"
	"github.com/desertthunder/tuneidx/internal/models"
	"github.com/desertthunder/tuneidx/internal/normalize"
	"github.com/desertthunder/tuneidx/internal/shared"
	"github.com/desertthunder/tuneidx/internal/sink"
)

// State is the orchestrator's position in the run lifecycle.
type State int

const (
	NotStarted State = iota
	Reading
	Normalizing
	Aggregating
	Writing
	Completed
	Failed
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not_started"
	case Reading:
		return "reading"
	case Normalizing:
		return "normalizing"
	case Aggregating:
		return "aggregating"
	case Writing:
		return "writing"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	default:
		return ""
	}
}

// MarshalJSON emits the state name rather than its ordinal.
func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// Sink abstracts the document store for the orchestrator.
// [sink.Writer] is the production implementation.
type Sink interface {
	// EnsureIndices prepares the four target indices.
	EnsureIndices(ctx context.Context, recreate bool) error

	// Write upserts documents into one index and reports per-batch failures.
	Write(ctx context.Context, index string, docs []models.Document) (*sink.WriteResult, error)

	// Refresh makes written documents visible to search.
	Refresh(ctx context.Context, indices ...string) error
}

// RunSummary is the user-visible result of one pipeline run.
type RunSummary struct {
	RunID       string          `json:"run_id"`
	LibraryPath string          `json:"library_path"`
	State       State           `json:"state"`
	Tally       normalize.Tally `json:"tally"`

	TrackCount  int `json:"track_count"`
	ArtistCount int `json:"artist_count"`
	AlbumCount  int `json:"album_count"`
	GenreCount  int `json:"genre_count"`

	DocumentsIndexed int      `json:"documents_indexed"`
	FailedBatches    int      `json:"failed_batches"`
	FailedIDs        []string `json:"failed_ids,omitempty"`

	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// Succeeded reports a fully clean run: completed with every batch landed.
func (s *RunSummary) Succeeded() bool {
	return s.State == Completed && s.FailedBatches == 0 && len(s.FailedIDs) == 0
}

// ExitCode derives the process exit code: 0 on full success, 1 on a fatal
// source or sink error, 2 on partial completion with failed batches.
func (s *RunSummary) ExitCode() int {
	switch {
	case s.State != Completed:
		return 1
	case s.FailedBatches > 0 || len(s.FailedIDs) > 0:
		return 2
	default:
		return 0
	}
}

// Duration returns the wall-clock length of the run.
func (s *RunSummary) Duration() time.Duration {
	return s.FinishedAt.Sub(s.StartedAt)
}

// Record converts the summary into a run-history row.
func (s *RunSummary) Record() *models.RunRecord {
	return &models.RunRecord{
		ID:               s.RunID,
		State:            s.State.String(),
		LibraryPath:      s.LibraryPath,
		ReadCount:        s.Tally.Read,
		NormalizedCount:  s.Tally.Normalized,
		SkippedMissingID: s.Tally.SkippedMissingID,
		SkippedUnusable:  s.Tally.SkippedUnusable,
		DuplicateID:      s.Tally.DuplicateID,
		TrackCount:       s.TrackCount,
		ArtistCount:      s.ArtistCount,
		AlbumCount:       s.AlbumCount,
		GenreCount:       s.GenreCount,
		FailedBatches:    s.FailedBatches,
		FailedIDs:        s.FailedIDs,
		Error:            s.Error,
		StartedAt:        s.StartedAt,
		FinishedAt:       s.FinishedAt,
	}
}

// Indexer sequences Reader → Normalizer → Aggregator → Writer.
type Indexer struct {
	sink   Sink
	logger *log.Logger
	state  State
}

// NewIndexer creates an Indexer writing to the given sink.
func NewIndexer(s Sink, logger *log.Logger) *Indexer {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Indexer{sink: s, logger: logger, state: NotStarted}
}

// State returns the orchestrator's current lifecycle state.
func (ix *Indexer) State() State { return ix.state }

// sendProgress sends a progress update through the channel without blocking.
func (ix *Indexer) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Run executes one full pipeline pass over the export at libraryPath.
//
// A fatal source error or a fail-fast write abort returns the error along
// with a summary in the Failed state; partial write failures complete the
// run and are reported only through the summary.
func (ix *Indexer) Run(ctx context.Context, progress chan<- ProgressUpdate, libraryPath string) (*RunSummary, error) {
	if ix.sink == nil {
		return nil, fmt.Errorf("%w: sink not initialized", shared.ErrSinkUnavailable)
	}

	summary := &RunSummary{
		RunID:       shared.GenerateID(),
		LibraryPath: libraryPath,
		StartedAt:   time.Now().UTC(),
	}
	logger := ix.logger.With("run_id", summary.RunID)

	fail := func(err error) (*RunSummary, error) {
		ix.state = Failed
		summary.State = Failed
		summary.Error = err.Error()
		summary.FinishedAt = time.Now().UTC()
		logger.Error("run failed", "state", Failed, "error", err)
		return summary, err
	}

	// Reading
	ix.state = Reading
	logger.Info("reading library export", "path", libraryPath)
	ix.sendProgress(progress, readLibraryUpdate(libraryPath))

	lib, err := library.Open(libraryPath)
	if err != nil {
		return fail(err)
	}
	ix.sendProgress(progress, readDoneUpdate(lib.Len()))

	// Normalizing
	ix.state = Normalizing
	ix.sendProgress(progress, normalizeUpdate(lib.Len()))

	tracks, tally := normalize.Tracks(lib.Entries())
	summary.Tally = tally
	summary.TrackCount = len(tracks)
	logger.Info("normalized entries",
		"read", tally.Read,
		"normalized", tally.Normalized,
		"skipped_missing_id", tally.SkippedMissingID,
		"skipped_unusable", tally.SkippedUnusable,
		"duplicate_id", tally.DuplicateID,
	)
	ix.sendProgress(progress, normalizeDoneUpdate(tally))

	// Aggregating
	ix.state = Aggregating
	ix.sendProgress(progress, aggregateUpdate())

	agg := aggregate.Summarize(tracks)
	summary.ArtistCount = len(agg.Artists)
	summary.AlbumCount = len(agg.Albums)
	summary.GenreCount = len(agg.Genres)
	ix.sendProgress(progress, aggregateDoneUpdate(len(agg.Artists), len(agg.Albums), len(agg.Genres)))

	// Writing
	ix.state = Writing
	if err := ix.sink.EnsureIndices(ctx, false); err != nil {
		return fail(err)
	}

	collections := []struct {
		index string
		docs  []models.Document
	}{
		{sink.IndexTracks, trackDocs(tracks)},
		{sink.IndexArtists, artistDocs(agg.Artists)},
		{sink.IndexAlbums, albumDocs(agg.Albums)},
		{sink.IndexGenres, genreDocs(agg.Genres)},
	}

	writes := &sink.WriteResult{}
	for i, col := range collections {
		ix.sendProgress(progress, writeIndexUpdate(i+1, len(collections), col.index, len(col.docs)))

		res, err := ix.sink.Write(ctx, col.index, col.docs)
		if res != nil {
			writes.Merge(res)
		}
		if err != nil {
			summary.DocumentsIndexed = writes.Indexed
			summary.FailedBatches = writes.FailedBatches
			summary.FailedIDs = writes.FailedIDs
			return fail(err)
		}

		ix.sendProgress(progress, writeDoneUpdate(i+1, len(collections), col.index, res.Indexed, len(res.FailedIDs)))
	}

	summary.DocumentsIndexed = writes.Indexed
	summary.FailedBatches = writes.FailedBatches
	summary.FailedIDs = writes.FailedIDs

	ix.sendProgress(progress, refreshUpdate())
	if err := ix.sink.Refresh(ctx, sink.Indices...); err != nil {
		// Documents are durable at this point; a failed refresh only
		// delays visibility, so it is logged rather than failing the run.
		logger.Warn("refresh failed", "error", err)
	}

	ix.state = Completed
	summary.State = Completed
	summary.FinishedAt = time.Now().UTC()
	logger.Info("run completed",
		"tracks", summary.TrackCount,
		"artists", summary.ArtistCount,
		"albums", summary.AlbumCount,
		"genres", summary.GenreCount,
		"indexed", summary.DocumentsIndexed,
		"failed_batches", summary.FailedBatches,
		"duration", summary.Duration(),
	)

	return summary, nil
}

func trackDocs(tracks []models.Track) []models.Document {
	docs := make([]models.Document, len(tracks))
	for i, t := range tracks {
		docs[i] = t
	}
	return docs
}

func artistDocs(artists []models.ArtistSummary) []models.Document {
	docs := make([]models.Document, len(artists))
	for i, a := range artists {
		docs[i] = a
	}
	return docs
}

func albumDocs(albums []models.AlbumSummary) []models.Document {
	docs := make([]models.Document, len(albums))
	for i, a := range albums {
		docs[i] = a
	}
	return docs
}

func genreDocs(genres []models.GenreSummary) []models.Document {
	docs := make([]models.Document, len(genres))
	for i, g := range genres {
		docs[i] = g
	}
	return docs
}
