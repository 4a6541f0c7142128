package pipeline

import (
	"fmt"

	"github.com/desertthunder/tuneidx/internal/normalize"
)

// ProgressUpdate represents a progress event during a pipeline run.
//
// Used to send real-time updates to the CLI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Pipeline phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data
}

// Pipeline phase enumeration
type Phase int

const (
	ReadLibrary Phase = iota
	NormalizeTracks
	ComputeAggregates
	WriteIndex
	RefreshIndices
)

func (p Phase) String() string {
	switch p {
	case ReadLibrary:
		return "read_library"
	case NormalizeTracks:
		return "normalize_tracks"
	case ComputeAggregates:
		return "compute_aggregates"
	case WriteIndex:
		return "write_index"
	case RefreshIndices:
		return "refresh_indices"
	default:
		return ""
	}
}

func readLibraryUpdate(path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ReadLibrary,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Reading library export: %s", path),
	}
}

func readDoneUpdate(entries int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ReadLibrary,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Found %d raw entries", entries),
		Data:    entries,
	}
}

func normalizeUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   NormalizeTracks,
		Step:    0,
		Total:   total,
		Message: "Normalizing entries...",
	}
}

func normalizeDoneUpdate(tally normalize.Tally) ProgressUpdate {
	return ProgressUpdate{
		Phase:   NormalizeTracks,
		Step:    tally.Read,
		Total:   tally.Read,
		Message: fmt.Sprintf("Normalized %d tracks (%d skipped)", tally.Normalized, tally.SkippedMissingID+tally.SkippedUnusable),
		Data:    tally,
	}
}

func aggregateUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   ComputeAggregates,
		Step:    1,
		Total:   1,
		Message: "Computing artist, album, and genre summaries...",
	}
}

func aggregateDoneUpdate(artists, albums, genres int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ComputeAggregates,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Derived %d artists, %d albums, %d genres", artists, albums, genres),
	}
}

func writeIndexUpdate(step, total int, index string, docCount int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteIndex,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Writing %d documents to %q...", step, total, docCount, index),
	}
}

func writeDoneUpdate(step, total int, index string, indexed int, failed int) ProgressUpdate {
	if failed > 0 {
		return ProgressUpdate{
			Phase:   WriteIndex,
			Step:    step,
			Total:   total,
			Message: fmt.Sprintf("[%d/%d] ✗ %q: %d indexed, %d failed", step, total, index, indexed, failed),
		}
	}
	return ProgressUpdate{
		Phase:   WriteIndex,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %q: %d documents", step, total, index, indexed),
	}
}

func refreshUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   RefreshIndices,
		Step:    1,
		Total:   1,
		Message: "Refreshing indices...",
	}
}
