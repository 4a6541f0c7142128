// Package sink writes pipeline output into the Elasticsearch document store.
//
// # Client
//
// [Client] wraps the official go-elasticsearch client with the endpoint and
// basic-auth credentials from [shared.ElasticsearchConfig]. It owns index
// bootstrap ([Client.EnsureIndices] creates the four target indices with
// explicit field mappings) and the raw _bulk call.
//
// # Writer
//
// [Writer] performs the idempotent bulk upsert. Every document is indexed
// under its deterministic [models.Document] ID, so writing the same logical
// entity twice overwrites the previous version instead of duplicating it.
// That property is what makes re-running the pipeline safe.
//
// Documents are partitioned into bounded batches dispatched by a small
// worker pool and throttled with a [rate.Limiter]. Batches are independent:
// two batches never target the same document, so no ordering between them
// is required. A batch that fails with a transient error (transport
// failure, 429, 5xx) is retried with exponential backoff up to a fixed
// attempt limit; on exhaustion the batch is recorded failed with its
// document ids and later batches proceed, unless fail-fast mode aborts the
// whole write.
//
// # Error Handling
//
//   - [shared.ErrSinkUnavailable] : endpoint unreachable or not healthy
//   - [shared.ErrIndexSetup] : index bootstrap failed
//   - [shared.ErrBatchFailed] : fail-fast abort after an unrecoverable batch
package sink
