// Package pipeline orchestrates one ingestion run: read the library
// export, normalize it into typed tracks, derive the aggregate views, and
// upsert all four collections into the document store.
//
// # State Machine
//
// A run moves strictly through
//
//	NotStarted → Reading → Normalizing → Aggregating → Writing → Completed
//
// with the Failed terminal state reachable from Reading (fatal source
// error) or Writing (fail-fast abort). No stage starts before the prior
// stage's full output exists: aggregation is a full-pass function over the
// complete track set, so the pipeline is a sequential batch job per run.
// The [Indexer] owns the in-memory track set for the duration of a run and
// nothing mutates a track once aggregation begins.
//
// # Progress Reporting
//
// Long stages emit [ProgressUpdate] values on a caller-supplied channel.
// Sends never block: a full or absent channel drops the update rather than
// stalling the run; a slow consumer simply sees fewer updates.
//
// # Run Summary
//
// Every run, including a failed one, produces a [RunSummary] carrying
// the normalizer tally, aggregate record counts, write failures, and
// timing. Skipped and failed records are always counted and surfaced;
// nothing is dropped unreported. [RunSummary.ExitCode] derives the process
// exit code: 0 only when the source was read and every batch landed.
package pipeline
