// package normalize converts raw library entries into typed Track records.
//
// This is the validation boundary of the pipeline: no untyped attribute map
// travels past it. Each raw entry either becomes a [models.Track] or is
// skipped and counted, never silently dropped.
package normalize

import (
	"iter"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/tuneidx/internal/library"
	"github.com/desertthunder/tuneidx/internal/models"
)

// Tally accounts for every raw entry handed to the normalizer.
//
// Read = Normalized + SkippedMissingID + SkippedUnusable + DuplicateID
// always holds; a duplicate replaces the earlier track in place, so it adds
// to Read and DuplicateID but not to Normalized.
type Tally struct {
	Read             int `json:"read"`
	Normalized       int `json:"normalized"`
	SkippedMissingID int `json:"skipped_missing_id"`
	SkippedUnusable  int `json:"skipped_unusable"`
	DuplicateID      int `json:"duplicate_id"`
}

// Tracks normalizes every entry in the sequence and returns the typed
// records alongside the skip accounting.
//
// Entries without a stable identifier ("Track ID", falling back to
// "Persistent ID") are skipped. Entries missing both "Artist" and "Name"
// are treated as non-music or corrupt metadata and skipped separately.
// When the same identifier appears twice, the later entry wins and the
// earlier record is replaced in place.
func Tracks(entries iter.Seq[library.RawEntry]) ([]models.Track, Tally) {
	var tally Tally
	var tracks []models.Track
	position := make(map[string]int)

	for entry := range entries {
		tally.Read++

		track, ok := Entry(entry)
		if !ok {
			tally.SkippedMissingID++
			continue
		}

		if track.Artist == nil && track.Name == nil {
			tally.SkippedUnusable++
			continue
		}

		if at, seen := position[track.TrackID]; seen {
			tracks[at] = track
			tally.DuplicateID++
			continue
		}

		position[track.TrackID] = len(tracks)
		tracks = append(tracks, track)
		tally.Normalized++
	}

	return tracks, tally
}

// Entry coerces a single raw entry into a [models.Track].
//
// Returns false when the entry has no stable identifier. All other fields
// are optional: absent or uncoercible values become nil (or the documented
// zero default for counts), empty and whitespace-only strings become nil.
func Entry(raw library.RawEntry) (models.Track, bool) {
	id := trackID(raw)
	if id == "" {
		return models.Track{}, false
	}

	track := models.Track{
		TrackID:      id,
		PersistentID: optString(raw, "Persistent ID"),
		Name:         optString(raw, "Name"),
		Artist:       optString(raw, "Artist"),
		AlbumArtist:  optString(raw, "Album Artist"),
		Album:        optString(raw, "Album"),
		Genre:        optString(raw, "Genre"),
		Composer:     optString(raw, "Composer"),
		Kind:         optString(raw, "Kind"),
		Year:         optInt(raw, "Year"),
		BitRate:      optInt(raw, "Bit Rate"),
		SampleRate:   optInt(raw, "Sample Rate"),
		TrackNumber:  optInt(raw, "Track Number"),
		DiscNumber:   optInt(raw, "Disc Number"),
		PlayCount:    countOrZero(raw, "Play Count"),
		SkipCount:    countOrZero(raw, "Skip Count"),
		Rating:       optRating(raw),
		TotalTimeMS:  optInt64(raw, "Total Time"),
		SizeBytes:    optInt64(raw, "Size"),
		Compilation:  boolOrFalse(raw, "Compilation"),
		DateAdded:    optTime(raw, "Date Added"),
		DateModified: optTime(raw, "Date Modified"),
		LastPlayed:   optTime(raw, "Play Date UTC"),
	}

	return track, true
}

// trackID extracts the stable identifier, preferring the numeric
// "Track ID" and falling back to "Persistent ID".
func trackID(raw library.RawEntry) string {
	if n, ok := asInt64(raw["Track ID"]); ok {
		return strconv.FormatInt(n, 10)
	}
	if s := optString(raw, "Track ID"); s != nil {
		return *s
	}
	if s := optString(raw, "Persistent ID"); s != nil {
		return *s
	}
	return ""
}

// asInt64 coerces the numeric types the plist decoder produces.
func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case uint64:
		return int64(n), true
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	default:
		return 0, false
	}
}

func optString(raw library.RawEntry, key string) *string {
	s, ok := raw[key].(string)
	if !ok {
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func optInt(raw library.RawEntry, key string) *int {
	n, ok := asInt64(raw[key])
	if !ok {
		return nil
	}
	v := int(n)
	return &v
}

func optInt64(raw library.RawEntry, key string) *int64 {
	n, ok := asInt64(raw[key])
	if !ok || n < 0 {
		return nil
	}
	return &n
}

// countOrZero returns a non-negative count, defaulting to 0 when the field
// is absent, uncoercible, or negative.
func countOrZero(raw library.RawEntry, key string) int {
	n, ok := asInt64(raw[key])
	if !ok || n < 0 {
		return 0
	}
	return int(n)
}

// optRating clamps the source's 0-100 rating scale.
func optRating(raw library.RawEntry) *int {
	n, ok := asInt64(raw["Rating"])
	if !ok {
		return nil
	}
	v := int(n)
	if v < 0 {
		v = 0
	}
	if v > 100 {
		v = 100
	}
	return &v
}

func boolOrFalse(raw library.RawEntry, key string) bool {
	b, ok := raw[key].(bool)
	return ok && b
}

func optTime(raw library.RawEntry, key string) *time.Time {
	t, ok := raw[key].(time.Time)
	if !ok {
		return nil
	}
	return &t
}
