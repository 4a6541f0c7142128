// package formatter renders run summaries and run history to various formats (text, Markdown, CSV, JSON)
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/desertthunder/tuneidx/internal/models"
	"github.com/desertthunder/tuneidx/internal/pipeline"
)

// SummaryToText renders a run summary as plain text for terminal output.
func SummaryToText(summary *pipeline.RunSummary) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Run: %s\n", summary.RunID))
	buf.WriteString(fmt.Sprintf("Library: %s\n", summary.LibraryPath))
	buf.WriteString(fmt.Sprintf("State: %s\n", summary.State))
	buf.WriteString(fmt.Sprintf("Duration: %s\n\n", summary.Duration().Round(time.Millisecond)))

	buf.WriteString(fmt.Sprintf("Entries read: %d\n", summary.Tally.Read))
	buf.WriteString(fmt.Sprintf("Tracks normalized: %d\n", summary.Tally.Normalized))
	buf.WriteString(fmt.Sprintf("Skipped (missing id): %d\n", summary.Tally.SkippedMissingID))
	buf.WriteString(fmt.Sprintf("Skipped (unusable): %d\n", summary.Tally.SkippedUnusable))
	buf.WriteString(fmt.Sprintf("Duplicate ids: %d\n\n", summary.Tally.DuplicateID))

	buf.WriteString(fmt.Sprintf("Tracks: %d\n", summary.TrackCount))
	buf.WriteString(fmt.Sprintf("Artists: %d\n", summary.ArtistCount))
	buf.WriteString(fmt.Sprintf("Albums: %d\n", summary.AlbumCount))
	buf.WriteString(fmt.Sprintf("Genres: %d\n\n", summary.GenreCount))

	buf.WriteString(fmt.Sprintf("Documents indexed: %d\n", summary.DocumentsIndexed))
	if summary.FailedBatches > 0 {
		buf.WriteString(fmt.Sprintf("Failed batches: %d (%d documents)\n", summary.FailedBatches, len(summary.FailedIDs)))
	}
	if summary.Error != "" {
		buf.WriteString(fmt.Sprintf("Error: %s\n", summary.Error))
	}

	return buf.Bytes()
}

// SummaryToMarkdown renders a run summary as a Markdown report.
func SummaryToMarkdown(summary *pipeline.RunSummary) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# Run %s\n\n", summary.RunID))
	buf.WriteString(fmt.Sprintf("**Library**: %s\n", summary.LibraryPath))
	buf.WriteString(fmt.Sprintf("**State**: %s\n", summary.State))
	buf.WriteString(fmt.Sprintf("**Started**: %s\n", summary.StartedAt.Format(time.RFC3339)))
	buf.WriteString(fmt.Sprintf("**Duration**: %s\n\n", summary.Duration().Round(time.Millisecond)))

	buf.WriteString("## Normalization\n\n")
	buf.WriteString("| Read | Normalized | Missing ID | Unusable | Duplicates |\n")
	buf.WriteString("|------|------------|------------|----------|------------|\n")
	buf.WriteString(fmt.Sprintf("| %d | %d | %d | %d | %d |\n\n",
		summary.Tally.Read,
		summary.Tally.Normalized,
		summary.Tally.SkippedMissingID,
		summary.Tally.SkippedUnusable,
		summary.Tally.DuplicateID,
	))

	buf.WriteString("## Collections\n\n")
	buf.WriteString("| Tracks | Artists | Albums | Genres |\n")
	buf.WriteString("|--------|---------|--------|--------|\n")
	buf.WriteString(fmt.Sprintf("| %d | %d | %d | %d |\n\n",
		summary.TrackCount, summary.ArtistCount, summary.AlbumCount, summary.GenreCount))

	buf.WriteString(fmt.Sprintf("**Documents indexed**: %d\n", summary.DocumentsIndexed))
	if summary.FailedBatches > 0 {
		buf.WriteString(fmt.Sprintf("**Failed batches**: %d\n\n", summary.FailedBatches))
		buf.WriteString("## Failed Documents\n\n")
		for _, id := range summary.FailedIDs {
			buf.WriteString(fmt.Sprintf("- `%s`\n", id))
		}
	}
	if summary.Error != "" {
		buf.WriteString(fmt.Sprintf("\n**Error**: %s\n", summary.Error))
	}

	return buf.Bytes()
}

// SummaryToJSON renders a run summary as indented JSON.
func SummaryToJSON(summary *pipeline.RunSummary) ([]byte, error) {
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal summary: %w", err)
	}
	return data, nil
}

// FailedIDsToCSV renders the documents that never landed as CSV with columns: Index Position, Document ID.
func FailedIDsToCSV(summary *pipeline.RunSummary) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"Position", "Document ID"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for i, id := range summary.FailedIDs {
		if err := writer.Write([]string{fmt.Sprintf("%d", i+1), id}); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// HistoryToText renders recorded runs as an aligned plain-text listing,
// most recent first.
func HistoryToText(runs []*models.RunRecord) []byte {
	var buf bytes.Buffer

	if len(runs) == 0 {
		buf.WriteString("No runs recorded.\n")
		return buf.Bytes()
	}

	buf.WriteString(fmt.Sprintf("%-4s %-36s %-10s %-8s %-8s %-8s %-20s\n",
		"#", "ID", "State", "Tracks", "Failed", "Skipped", "Started"))
	for _, run := range runs {
		skipped := run.SkippedMissingID + run.SkippedUnusable
		buf.WriteString(fmt.Sprintf("%-4d %-36s %-10s %-8d %-8d %-8d %-20s\n",
			run.Sequence,
			run.ID,
			run.State,
			run.TrackCount,
			run.FailedBatches,
			skipped,
			run.StartedAt.Format("2006-01-02 15:04:05"),
		))
	}

	return buf.Bytes()
}

// RecordToText renders one stored run in the same shape as a live summary.
func RecordToText(run *models.RunRecord) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Run: %s (#%d)\n", run.ID, run.Sequence))
	buf.WriteString(fmt.Sprintf("Library: %s\n", run.LibraryPath))
	buf.WriteString(fmt.Sprintf("State: %s\n", run.State))
	buf.WriteString(fmt.Sprintf("Started: %s\n", run.StartedAt.Format(time.RFC3339)))
	buf.WriteString(fmt.Sprintf("Finished: %s\n\n", run.FinishedAt.Format(time.RFC3339)))

	buf.WriteString(fmt.Sprintf("Entries read: %d\n", run.ReadCount))
	buf.WriteString(fmt.Sprintf("Tracks normalized: %d\n", run.NormalizedCount))
	buf.WriteString(fmt.Sprintf("Skipped (missing id): %d\n", run.SkippedMissingID))
	buf.WriteString(fmt.Sprintf("Skipped (unusable): %d\n", run.SkippedUnusable))
	buf.WriteString(fmt.Sprintf("Duplicate ids: %d\n\n", run.DuplicateID))

	buf.WriteString(fmt.Sprintf("Tracks: %d, Artists: %d, Albums: %d, Genres: %d\n",
		run.TrackCount, run.ArtistCount, run.AlbumCount, run.GenreCount))

	if run.FailedBatches > 0 {
		buf.WriteString(fmt.Sprintf("Failed batches: %d (%d documents)\n", run.FailedBatches, len(run.FailedIDs)))
	}
	if run.Error != "" {
		buf.WriteString(fmt.Sprintf("Error: %s\n", run.Error))
	}

	return buf.Bytes()
}

// ReportResult contains the paths of files created by WriteRunReport
type ReportResult struct {
	SummaryFile string
	FailedFile  string
}

// WriteRunReport writes a run summary to disk as {base}_summary.json, plus
// {base}_failed.csv when any documents failed to land.
//
// Defaults to the run ID as the base filename.
func WriteRunReport(summary *pipeline.RunSummary, baseFilepath string) (*ReportResult, error) {
	if baseFilepath == "" {
		baseFilepath = summary.RunID
	}

	jsonData, err := SummaryToJSON(summary)
	if err != nil {
		return nil, err
	}

	summaryFile := baseFilepath + "_summary.json"
	if err := os.WriteFile(summaryFile, jsonData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write summary file: %w", err)
	}

	result := &ReportResult{SummaryFile: summaryFile}

	if len(summary.FailedIDs) > 0 {
		csvData, err := FailedIDsToCSV(summary)
		if err != nil {
			return nil, err
		}

		failedFile := baseFilepath + "_failed.csv"
		if err := os.WriteFile(failedFile, csvData, 0644); err != nil {
			return nil, fmt.Errorf("failed to write failed ids file: %w", err)
		}
		result.FailedFile = failedFile
	}

	return result, nil
}
