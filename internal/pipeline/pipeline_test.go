package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"sort"
	"testing"

	"github.com/desertthunder/tuneidx/internal/models"
	"github.com/desertthunder/tuneidx/internal/shared"
	"github.com/desertthunder/tuneidx/internal/sink"
)

// fakeSink records writes in memory, keyed the way the document store
// would key them, so idempotence can be asserted on final contents.
type fakeSink struct {
	ensureCalls int
	refreshed   [][]string
	contents    map[string]map[string]models.Document

	writeErr  map[string]error // index -> fail-fast error
	partially map[string]int   // index -> number of batches to report failed
}

func newFakeSink() *fakeSink {
	return &fakeSink{contents: make(map[string]map[string]models.Document)}
}

func (f *fakeSink) EnsureIndices(ctx context.Context, recreate bool) error {
	f.ensureCalls++
	return nil
}

func (f *fakeSink) Write(ctx context.Context, index string, docs []models.Document) (*sink.WriteResult, error) {
	if err, ok := f.writeErr[index]; ok {
		return &sink.WriteResult{Attempted: len(docs), FailedBatches: 1, FailedIDs: docIDs(docs)}, err
	}

	result := &sink.WriteResult{Attempted: len(docs)}
	if n, ok := f.partially[index]; ok && n > 0 {
		result.FailedBatches = n
		result.FailedIDs = docIDs(docs[:n])
		docs = docs[n:]
	}

	if f.contents[index] == nil {
		f.contents[index] = make(map[string]models.Document)
	}
	for _, doc := range docs {
		f.contents[index][doc.DocID()] = doc
	}
	result.Indexed = len(docs)
	return result, nil
}

func (f *fakeSink) Refresh(ctx context.Context, indices ...string) error {
	f.refreshed = append(f.refreshed, indices)
	return nil
}

func docIDs(docs []models.Document) []string {
	ids := make([]string, len(docs))
	for i, doc := range docs {
		ids[i] = doc.DocID()
	}
	return ids
}

func fixturePath() string {
	return filepath.Join("..", "library", "testdata", "library.xml")
}

func TestIndexerRun(t *testing.T) {
	t.Run("Completed Run", func(t *testing.T) {
		fake := newFakeSink()
		ix := NewIndexer(fake, nil)

		summary, err := ix.Run(context.Background(), nil, fixturePath())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if summary.State != Completed {
			t.Errorf("expected Completed, got %s", summary.State)
		}
		if ix.State() != Completed {
			t.Errorf("indexer state should be Completed, got %s", ix.State())
		}
		if !summary.Succeeded() || summary.ExitCode() != 0 {
			t.Errorf("expected clean success, got %+v", summary)
		}

		// Fixture: 5 raw entries, 2 normalized (one duplicate overwrote in
		// place), 1 missing id, 1 unusable.
		if summary.Tally.Read != 5 || summary.TrackCount != 2 {
			t.Errorf("unexpected tally %+v, tracks %d", summary.Tally, summary.TrackCount)
		}

		if got := len(fake.contents[sink.IndexTracks]); got != 2 {
			t.Errorf("expected 2 track documents, got %d", got)
		}
		if summary.ArtistCount != 1 || len(fake.contents[sink.IndexArtists]) != 1 {
			t.Errorf("expected 1 artist summary, got %d", summary.ArtistCount)
		}
		if summary.DocumentsIndexed == 0 {
			t.Error("expected indexed documents to be counted")
		}

		if fake.ensureCalls != 1 {
			t.Errorf("expected indices ensured once, got %d", fake.ensureCalls)
		}
		if len(fake.refreshed) != 1 {
			t.Errorf("expected one refresh, got %d", len(fake.refreshed))
		}
	})

	t.Run("Skipped Entry Absent Everywhere", func(t *testing.T) {
		fake := newFakeSink()
		ix := NewIndexer(fake, nil)

		summary, err := ix.Run(context.Background(), nil, fixturePath())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if summary.Tally.SkippedMissingID != 1 {
			t.Fatalf("fixture should skip one entry for missing id, got %+v", summary.Tally)
		}

		for index, docs := range fake.contents {
			for id, doc := range docs {
				if track, ok := doc.(models.Track); ok && track.Name != nil && *track.Name == "Orphaned Entry" {
					t.Errorf("skipped entry leaked into %s as %s", index, id)
				}
			}
		}
	})

	t.Run("Fatal Source Error", func(t *testing.T) {
		fake := newFakeSink()
		ix := NewIndexer(fake, nil)

		summary, err := ix.Run(context.Background(), nil, filepath.Join("testdata", "missing.xml"))
		if err == nil {
			t.Fatal("expected error for missing export")
		}
		if !errors.Is(err, shared.ErrSourceMissing) {
			t.Errorf("expected ErrSourceMissing, got %v", err)
		}

		if summary.State != Failed || summary.ExitCode() != 1 {
			t.Errorf("expected Failed summary, got %+v", summary)
		}
		if summary.Error == "" {
			t.Error("expected error recorded in summary")
		}
		if len(fake.contents) != 0 {
			t.Error("nothing should be written after a fatal source error")
		}
	})

	t.Run("Fail Fast Write Abort", func(t *testing.T) {
		fake := newFakeSink()
		fake.writeErr = map[string]error{
			sink.IndexTracks: fmt.Errorf("%w: tracks batch aborted run", shared.ErrBatchFailed),
		}
		ix := NewIndexer(fake, nil)

		summary, err := ix.Run(context.Background(), nil, fixturePath())
		if !errors.Is(err, shared.ErrBatchFailed) {
			t.Fatalf("expected ErrBatchFailed, got %v", err)
		}

		if summary.State != Failed {
			t.Errorf("expected Failed, got %s", summary.State)
		}
		if summary.FailedBatches == 0 || len(summary.FailedIDs) == 0 {
			t.Errorf("expected failed batch accounting, got %+v", summary)
		}
	})

	t.Run("Partial Failure Still Completes", func(t *testing.T) {
		fake := newFakeSink()
		fake.partially = map[string]int{sink.IndexTracks: 1}
		ix := NewIndexer(fake, nil)

		summary, err := ix.Run(context.Background(), nil, fixturePath())
		if err != nil {
			t.Fatalf("partial failure must not abort the run, got %v", err)
		}

		if summary.State != Completed {
			t.Errorf("expected Completed, got %s", summary.State)
		}
		if summary.FailedBatches != 1 || len(summary.FailedIDs) != 1 {
			t.Errorf("expected one failed batch surfaced, got %+v", summary)
		}
		if summary.Succeeded() {
			t.Error("a run with failed batches is not a clean success")
		}
		if summary.ExitCode() != 2 {
			t.Errorf("expected exit code 2, got %d", summary.ExitCode())
		}

		// The other collections still landed.
		if len(fake.contents[sink.IndexArtists]) == 0 || len(fake.contents[sink.IndexGenres]) == 0 {
			t.Error("expected aggregate collections written despite track batch failure")
		}
	})

	t.Run("Progress Updates Emitted", func(t *testing.T) {
		fake := newFakeSink()
		ix := NewIndexer(fake, nil)

		progress := make(chan ProgressUpdate, 64)
		if _, err := ix.Run(context.Background(), progress, fixturePath()); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		close(progress)

		seen := map[Phase]bool{}
		for update := range progress {
			seen[update.Phase] = true
			if update.Message == "" {
				t.Errorf("phase %s update has no message", update.Phase)
			}
		}

		for _, phase := range []Phase{ReadLibrary, NormalizeTracks, ComputeAggregates, WriteIndex, RefreshIndices} {
			if !seen[phase] {
				t.Errorf("no update seen for phase %s", phase)
			}
		}
	})

	t.Run("Full Progress Channel Never Blocks", func(t *testing.T) {
		fake := newFakeSink()
		ix := NewIndexer(fake, nil)

		progress := make(chan ProgressUpdate) // unbuffered, never read
		if _, err := ix.Run(context.Background(), progress, fixturePath()); err != nil {
			t.Fatalf("expected run to finish with a blocked channel, got %v", err)
		}
	})
}

func TestIdempotence(t *testing.T) {
	fake := newFakeSink()

	for i := 0; i < 2; i++ {
		ix := NewIndexer(fake, nil)
		if _, err := ix.Run(context.Background(), nil, fixturePath()); err != nil {
			t.Fatalf("run %d failed: %v", i+1, err)
		}
	}

	first := snapshotIDs(fake)

	ix := NewIndexer(fake, nil)
	if _, err := ix.Run(context.Background(), nil, fixturePath()); err != nil {
		t.Fatalf("third run failed: %v", err)
	}

	if !reflect.DeepEqual(first, snapshotIDs(fake)) {
		t.Error("re-running the pipeline changed collection contents")
	}

	for index, ids := range first {
		unique := map[string]bool{}
		for _, id := range ids {
			if unique[id] {
				t.Errorf("duplicate document %s in %s", id, index)
			}
			unique[id] = true
		}
	}
}

func snapshotIDs(f *fakeSink) map[string][]string {
	out := make(map[string][]string, len(f.contents))
	for index, docs := range f.contents {
		ids := make([]string, 0, len(docs))
		for id := range docs {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		out[index] = ids
	}
	return out
}

func TestStateString(t *testing.T) {
	cases := map[State]string{
		NotStarted:  "not_started",
		Reading:     "reading",
		Normalizing: "normalizing",
		Aggregating: "aggregating",
		Writing:     "writing",
		Completed:   "completed",
		Failed:      "failed",
	}

	for state, want := range cases {
		if state.String() != want {
			t.Errorf("State(%d).String() = %q, want %q", state, state.String(), want)
		}
	}
}
