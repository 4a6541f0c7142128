// Package models defines the typed records produced by the ingestion pipeline.
//
// The package contains two categories of types:
//
// 1. Sink documents: JSON-serializable records written to the document store
//   - [Track] : One normalized record per library entry
//   - [ArtistSummary] : Derived aggregate per artist
//   - [AlbumSummary] : Derived aggregate per (artist, album) pair
//   - [GenreSummary] : Derived aggregate per genre
//
// 2. Local records: entities persisted in the run-history database
//   - [RunRecord] : Outcome of one pipeline run (counts, failures, timing)
//
// All sink documents implement the [Document] interface. A document's ID is
// derived deterministically from its logical key (track_id, artist name,
// (artist, album) pair, genre name), which is what makes re-running the
// pipeline idempotent: writing the same logical entity twice targets the
// same document and overwrites rather than duplicates.
//
// Optional Track fields are pointers with omitempty tags. A field absent in
// the source is nil and omitted from the emitted JSON, never serialized as
// an empty string or zero.
package models
