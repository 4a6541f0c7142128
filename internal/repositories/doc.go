// Package repositories implements SQLite persistence for run history.
//
// Each pipeline run is recorded as one row in the runs table, carrying its
// counts, skip accounting, failed batch ids, and timing. Sequence numbers
// provide stable, human-readable ordering (e.g., run #42) independent of
// UUIDs and timestamps; the [NextSequence] function atomically increments a
// per-table counter in a dedicated sequence table.
package repositories
