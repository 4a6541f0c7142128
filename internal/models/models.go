// package models defines the data model for the library indexing pipeline
package models

import (
	"time"
)

// UnknownArtist is the sentinel grouping key used for tracks without an
// artist in album and genre aggregates. Tracks grouped under it never
// appear in the artists index.
const UnknownArtist = "Unknown Artist"

// AlbumKeySeparator joins artist and album into a composite document ID.
// The unit separator cannot occur in trimmed plist strings, so the
// composite key is collision-free.
const AlbumKeySeparator = "\x1f"

// Document is implemented by every record written to the document store.
type Document interface {
	// DocID returns the deterministic document identifier derived from the record's logical key.
	DocID() string
}

// Track is one normalized record per library entry.
type Track struct {
	TrackID      string     `json:"track_id"`
	PersistentID *string    `json:"persistent_id,omitempty"`
	Name         *string    `json:"name,omitempty"`
	Artist       *string    `json:"artist,omitempty"`
	AlbumArtist  *string    `json:"album_artist,omitempty"`
	Album        *string    `json:"album,omitempty"`
	Genre        *string    `json:"genre,omitempty"`
	Composer     *string    `json:"composer,omitempty"`
	Kind         *string    `json:"kind,omitempty"`
	Year         *int       `json:"year,omitempty"`
	BitRate      *int       `json:"bit_rate,omitempty"`
	SampleRate   *int       `json:"sample_rate,omitempty"`
	TrackNumber  *int       `json:"track_number,omitempty"`
	DiscNumber   *int       `json:"disc_number,omitempty"`
	PlayCount    int        `json:"play_count"`
	SkipCount    int        `json:"skip_count"`
	Rating       *int       `json:"rating,omitempty"`
	TotalTimeMS  *int64     `json:"total_time_ms,omitempty"`
	SizeBytes    *int64     `json:"size_bytes,omitempty"`
	Compilation  bool       `json:"compilation,omitempty"`
	DateAdded    *time.Time `json:"date_added,omitempty"`
	DateModified *time.Time `json:"date_modified,omitempty"`
	LastPlayed   *time.Time `json:"last_played,omitempty"`
}

func (t Track) DocID() string { return t.TrackID }

// ArtistName returns the track's artist or [UnknownArtist] when absent.
func (t Track) ArtistName() string {
	if t.Artist == nil {
		return UnknownArtist
	}
	return *t.Artist
}

// ArtistSummary aggregates all tracks by a single artist.
type ArtistSummary struct {
	Name           string   `json:"name"`
	TrackCount     int      `json:"track_count"`
	AlbumCount     int      `json:"album_count"`
	TotalPlayCount int      `json:"total_play_count"`
	AverageRating  *float64 `json:"average_rating,omitempty"`
	TotalTimeMS    int64    `json:"total_time_ms"`
	Genres         []string `json:"genres,omitempty"`
}

func (a ArtistSummary) DocID() string { return a.Name }

// AlbumSummary aggregates all tracks on a single (artist, album) pair.
type AlbumSummary struct {
	Artist         string   `json:"artist"`
	Album          string   `json:"album"`
	TrackCount     int      `json:"track_count"`
	Year           *int     `json:"year,omitempty"`
	TotalPlayCount int      `json:"total_play_count"`
	AverageRating  *float64 `json:"average_rating,omitempty"`
	AverageBitRate *float64 `json:"average_bit_rate,omitempty"`
	TotalTimeMS    int64    `json:"total_time_ms"`
}

func (a AlbumSummary) DocID() string { return a.Artist + AlbumKeySeparator + a.Album }

// GenreSummary aggregates all tracks in a single genre.
type GenreSummary struct {
	Name           string   `json:"name"`
	ArtistCount    int      `json:"artist_count"`
	AlbumCount     int      `json:"album_count"`
	TrackCount     int      `json:"track_count"`
	TotalPlayCount int      `json:"total_play_count"`
	AverageRating  *float64 `json:"average_rating,omitempty"`
	TotalTimeMS    int64    `json:"total_time_ms"`
}

func (g GenreSummary) DocID() string { return g.Name }

// RunRecord is the persisted outcome of one pipeline run.
type RunRecord struct {
	ID               string
	Sequence         int
	State            string
	LibraryPath      string
	ReadCount        int
	NormalizedCount  int
	SkippedMissingID int
	SkippedUnusable  int
	DuplicateID      int
	TrackCount       int
	ArtistCount      int
	AlbumCount       int
	GenreCount       int
	FailedBatches    int
	FailedIDs        []string
	Error            string
	StartedAt        time.Time
	FinishedAt       time.Time
}

// Validate checks that the record carries the fields the runs table requires.
func (r *RunRecord) Validate() error {
	if r.ID == "" {
		return ErrMissingID
	}
	if r.State == "" {
		return ErrMissingState
	}
	if r.StartedAt.IsZero() || r.FinishedAt.IsZero() {
		return ErrMissingTimestamps
	}
	return nil
}
