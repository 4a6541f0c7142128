package formatter

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/tuneidx/internal/models"
	"github.com/desertthunder/tuneidx/internal/normalize"
	"github.com/desertthunder/tuneidx/internal/pipeline"
	th "github.com/desertthunder/tuneidx/internal/testing"
)

func sampleSummary() *pipeline.RunSummary {
	started := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	return &pipeline.RunSummary{
		RunID:       "run-abc123",
		LibraryPath: "/exports/Library.xml",
		State:       pipeline.Completed,
		Tally: normalize.Tally{
			Read:             120,
			Normalized:       110,
			SkippedMissingID: 4,
			SkippedUnusable:  3,
			DuplicateID:      3,
		},
		TrackCount:       110,
		ArtistCount:      18,
		AlbumCount:       25,
		GenreCount:       7,
		DocumentsIndexed: 158,
		FailedBatches:    1,
		FailedIDs:        []string{"1001", "1002"},
		StartedAt:        started,
		FinishedAt:       started.Add(45 * time.Second),
	}
}

func TestRenderers(t *testing.T) {
	t.Run("SummaryToText", func(t *testing.T) {
		output := string(SummaryToText(sampleSummary()))

		for _, want := range []string{
			"Run: run-abc123",
			"State: completed",
			"Entries read: 120",
			"Tracks normalized: 110",
			"Skipped (missing id): 4",
			"Duplicate ids: 3",
			"Artists: 18",
			"Documents indexed: 158",
			"Failed batches: 1 (2 documents)",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("text output missing %q, got:\n%s", want, output)
			}
		}
	})

	t.Run("SummaryToText Omits Failure Lines On Success", func(t *testing.T) {
		summary := sampleSummary()
		summary.FailedBatches = 0
		summary.FailedIDs = nil

		output := string(SummaryToText(summary))
		if strings.Contains(output, "Failed batches") {
			t.Errorf("clean run should not mention failed batches:\n%s", output)
		}
		if strings.Contains(output, "Error:") {
			t.Errorf("clean run should not mention an error:\n%s", output)
		}
	})

	t.Run("SummaryToMarkdown", func(t *testing.T) {
		output := string(SummaryToMarkdown(sampleSummary()))

		if !strings.Contains(output, "# Run run-abc123") {
			t.Errorf("Markdown missing title")
		}
		if !strings.Contains(output, "| 120 | 110 | 4 | 3 | 3 |") {
			t.Errorf("Markdown missing tally row, got:\n%s", output)
		}
		if !strings.Contains(output, "| 110 | 18 | 25 | 7 |") {
			t.Errorf("Markdown missing collection row")
		}
		if !strings.Contains(output, "- `1001`") {
			t.Errorf("Markdown missing failed document list")
		}
	})

	t.Run("SummaryToJSON", func(t *testing.T) {
		data, err := SummaryToJSON(sampleSummary())
		if err != nil {
			t.Fatalf("SummaryToJSON failed: %v", err)
		}

		var decoded map[string]any
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if decoded["state"] != "completed" {
			t.Errorf("expected state name in JSON, got %v", decoded["state"])
		}
		if decoded["run_id"] != "run-abc123" {
			t.Errorf("unexpected run_id: %v", decoded["run_id"])
		}
	})

	t.Run("FailedIDsToCSV", func(t *testing.T) {
		data, err := FailedIDsToCSV(sampleSummary())
		if err != nil {
			t.Fatalf("FailedIDsToCSV failed: %v", err)
		}

		output := string(data)
		if !strings.Contains(output, "Position,Document ID") {
			t.Errorf("CSV missing headers, got: %s", output)
		}
		if !strings.Contains(output, "1,1001") || !strings.Contains(output, "2,1002") {
			t.Errorf("CSV missing failed ids, got: %s", output)
		}
	})

	t.Run("HistoryToText", func(t *testing.T) {
		started := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
		runs := []*models.RunRecord{
			{
				ID:         "run-later",
				Sequence:   2,
				State:      "completed",
				TrackCount: 110,
				StartedAt:  started.Add(time.Hour),
				FinishedAt: started.Add(time.Hour + time.Minute),
			},
			{
				ID:            "run-earlier",
				Sequence:      1,
				State:         "failed",
				FailedBatches: 3,
				StartedAt:     started,
				FinishedAt:    started.Add(time.Minute),
			},
		}

		output := string(HistoryToText(runs))
		if !strings.Contains(output, "run-later") || !strings.Contains(output, "run-earlier") {
			t.Errorf("history missing runs, got:\n%s", output)
		}
		if strings.Index(output, "run-later") > strings.Index(output, "run-earlier") {
			t.Errorf("history should list most recent first:\n%s", output)
		}
	})

	t.Run("HistoryToText Empty", func(t *testing.T) {
		output := string(HistoryToText(nil))
		if !strings.Contains(output, "No runs recorded") {
			t.Errorf("unexpected empty history output: %s", output)
		}
	})

	t.Run("RecordToText", func(t *testing.T) {
		run := sampleSummary().Record()
		run.Sequence = 7

		output := string(RecordToText(run))
		if !strings.Contains(output, "Run: run-abc123 (#7)") {
			t.Errorf("record output missing id line, got:\n%s", output)
		}
		if !strings.Contains(output, "Tracks: 110, Artists: 18, Albums: 25, Genres: 7") {
			t.Errorf("record output missing counts line, got:\n%s", output)
		}
	})
}

func TestWriteRunReport(t *testing.T) {
	t.Run("Writes Summary And Failed CSV", func(t *testing.T) {
		dir := t.TempDir()
		base := filepath.Join(dir, "report")

		result, err := WriteRunReport(sampleSummary(), base)
		if err != nil {
			t.Fatalf("WriteRunReport failed: %v", err)
		}

		th.AssertFileExists(t, result.SummaryFile)
		th.AssertFileExists(t, result.FailedFile)

		content := th.MustReadFile(t, result.SummaryFile)
		if !strings.Contains(content, "run-abc123") {
			t.Errorf("summary file missing run id: %s", content)
		}
	})

	t.Run("Skips Failed CSV On Clean Run", func(t *testing.T) {
		dir := t.TempDir()
		summary := sampleSummary()
		summary.FailedBatches = 0
		summary.FailedIDs = nil

		result, err := WriteRunReport(summary, filepath.Join(dir, "clean"))
		if err != nil {
			t.Fatalf("WriteRunReport failed: %v", err)
		}

		if result.FailedFile != "" {
			t.Errorf("clean run should not produce a failed ids file, got %s", result.FailedFile)
		}
	})
}
