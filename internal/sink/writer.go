package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/desertthunder/tuneidx/internal/models"
	"github.com/desertthunder/tuneidx/internal/shared"
)

// Writer upserts documents into one index in bounded, independently
// retried batches.
type Writer struct {
	client  *Client
	cfg     shared.WriterConfig
	limiter *rate.Limiter
	logger  *log.Logger
}

// WriteResult accounts for every document handed to [Writer.Write].
type WriteResult struct {
	Attempted     int      // Documents submitted
	Indexed       int      // Documents confirmed indexed
	FailedBatches int      // Batches that exhausted their retries
	FailedIDs     []string // Document ids not confirmed indexed, sorted
}

// Failed reports whether any document was left unwritten.
func (r *WriteResult) Failed() bool {
	return r.FailedBatches > 0 || len(r.FailedIDs) > 0
}

// Merge folds another result (e.g. from a different index) into r.
func (r *WriteResult) Merge(other *WriteResult) {
	r.Attempted += other.Attempted
	r.Indexed += other.Indexed
	r.FailedBatches += other.FailedBatches
	r.FailedIDs = append(r.FailedIDs, other.FailedIDs...)
	sort.Strings(r.FailedIDs)
}

type batchJob struct {
	number int
	docs   []models.Document
}

type batchResult struct {
	number    int
	indexed   int
	failedIDs []string
	err       error
}

// NewWriter creates a Writer over the given client, applying defaults for
// unset tuning knobs.
func NewWriter(client *Client, cfg shared.WriterConfig, logger *log.Logger) *Writer {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 500
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 4
	}
	if cfg.BackoffMS <= 0 {
		cfg.BackoffMS = 500
	}
	if cfg.NumWorkers <= 0 {
		cfg.NumWorkers = 4
	}
	if cfg.NumWorkers > 16 {
		cfg.NumWorkers = 16
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 10.0
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &Writer{
		client:  client,
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), 1),
		logger:  logger,
	}
}

// EnsureIndices delegates index bootstrap to the underlying client.
func (w *Writer) EnsureIndices(ctx context.Context, recreate bool) error {
	return w.client.EnsureIndices(ctx, recreate)
}

// Refresh delegates to the underlying client.
func (w *Writer) Refresh(ctx context.Context, indices ...string) error {
	return w.client.Refresh(ctx, indices...)
}

// Write upserts all documents into index.
//
// Batches are dispatched to a bounded worker pool; each batch retries
// transient failures with exponential backoff before being recorded as
// failed. Partial failure is reported in the result, not returned as an
// error, unless fail-fast mode is configured, in which case the first
// exhausted batch cancels the remaining work and Write returns
// [shared.ErrBatchFailed].
func (w *Writer) Write(ctx context.Context, index string, docs []models.Document) (*WriteResult, error) {
	result := &WriteResult{Attempted: len(docs)}
	if len(docs) == 0 {
		return result, nil
	}

	batches := partition(docs, w.cfg.BatchSize)
	w.logger.Info("writing documents", "index", index, "documents", len(docs), "batches", len(batches))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan batchJob, len(batches))
	results := make(chan batchResult, len(batches))

	var wg sync.WaitGroup
	for i := 0; i < w.cfg.NumWorkers; i++ {
		wg.Add(1)
		go w.worker(ctx, &wg, index, jobs, results)
	}

	for i, batch := range batches {
		jobs <- batchJob{number: i + 1, docs: batch}
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	var failFastErr error
	for res := range results {
		if res.err != nil {
			result.FailedBatches++
			result.FailedIDs = append(result.FailedIDs, res.failedIDs...)
			w.logger.Error("batch failed", "index", index, "batch", res.number, "documents", len(res.failedIDs), "error", res.err)

			if w.cfg.FailFast && failFastErr == nil {
				failFastErr = res.err
				cancel()
			}
			continue
		}

		result.Indexed += res.indexed
		if len(res.failedIDs) > 0 {
			// The batch went through but individual documents were
			// rejected (e.g. mapping conflicts). Surface them, never drop
			// them silently.
			result.FailedIDs = append(result.FailedIDs, res.failedIDs...)
			w.logger.Warn("documents rejected", "index", index, "batch", res.number, "rejected", len(res.failedIDs))
		}
	}

	sort.Strings(result.FailedIDs)

	if failFastErr != nil {
		return result, fmt.Errorf("%w: %s batch aborted run: %v", shared.ErrBatchFailed, index, failFastErr)
	}

	return result, nil
}

// worker drains the job channel, writing one batch at a time.
func (w *Writer) worker(ctx context.Context, wg *sync.WaitGroup, index string, jobs <-chan batchJob, results chan<- batchResult) {
	defer wg.Done()

	for job := range jobs {
		select {
		case <-ctx.Done():
			results <- batchResult{number: job.number, failedIDs: docIDs(job.docs), err: ctx.Err()}
			continue
		default:
		}

		indexed, failedIDs, err := w.writeBatch(ctx, index, job.docs)
		results <- batchResult{number: job.number, indexed: indexed, failedIDs: failedIDs, err: err}
	}
}

// writeBatch sends one batch, retrying transient failures with exponential
// backoff up to the configured attempt limit.
func (w *Writer) writeBatch(ctx context.Context, index string, docs []models.Document) (int, []string, error) {
	body, err := bulkBody(docs)
	if err != nil {
		return 0, docIDs(docs), err
	}

	var lastErr error
	for attempt := 1; attempt <= w.cfg.MaxAttempts; attempt++ {
		if err := w.limiter.Wait(ctx); err != nil {
			return 0, docIDs(docs), err
		}

		indexed, failedIDs, retryable, err := w.attemptBulk(ctx, index, body, docs)
		if err == nil {
			return indexed, failedIDs, nil
		}

		lastErr = err
		if !retryable {
			break
		}

		if attempt < w.cfg.MaxAttempts {
			delay := backoffDelay(w.cfg.BackoffMS, attempt)
			w.logger.Warn("retrying batch", "index", index, "attempt", attempt, "of", w.cfg.MaxAttempts, "delay", delay, "error", err)

			select {
			case <-ctx.Done():
				return 0, docIDs(docs), ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return 0, docIDs(docs), lastErr
}

// attemptBulk performs a single bulk request and classifies the outcome.
func (w *Writer) attemptBulk(ctx context.Context, index string, body []byte, docs []models.Document) (indexed int, failedIDs []string, retryable bool, err error) {
	res, err := w.client.Bulk(ctx, index, body)
	if err != nil {
		return 0, nil, true, fmt.Errorf("bulk request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusTooManyRequests || res.StatusCode >= http.StatusInternalServerError {
		io.Copy(io.Discard, res.Body)
		return 0, nil, true, fmt.Errorf("bulk request returned %s", res.Status())
	}
	if res.IsError() {
		detail, _ := io.ReadAll(res.Body)
		return 0, nil, false, fmt.Errorf("bulk request returned %s: %s", res.Status(), string(detail))
	}

	var parsed bulkResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return 0, nil, false, fmt.Errorf("failed to decode bulk response: %w", err)
	}

	if !parsed.Errors {
		return len(docs), nil, false, nil
	}

	for _, item := range parsed.Items {
		for _, op := range item {
			if op.Status >= 200 && op.Status < 300 {
				indexed++
			} else {
				failedIDs = append(failedIDs, op.ID)
			}
		}
	}

	return indexed, failedIDs, false, nil
}

type bulkResponse struct {
	Errors bool                    `json:"errors"`
	Items  []map[string]bulkOpItem `json:"items"`
}

type bulkOpItem struct {
	ID     string `json:"_id"`
	Status int    `json:"status"`
}

// bulkBody renders documents as NDJSON index actions keyed by each
// document's deterministic ID, which is what makes the write an upsert.
func bulkBody(docs []models.Document) ([]byte, error) {
	var buf []byte
	for _, doc := range docs {
		meta, err := json.Marshal(map[string]map[string]string{"index": {"_id": doc.DocID()}})
		if err != nil {
			return nil, fmt.Errorf("failed to marshal bulk action: %w", err)
		}
		payload, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal document %s: %w", doc.DocID(), err)
		}

		buf = append(buf, meta...)
		buf = append(buf, '\n')
		buf = append(buf, payload...)
		buf = append(buf, '\n')
	}
	return buf, nil
}

func partition(docs []models.Document, size int) [][]models.Document {
	var batches [][]models.Document
	for start := 0; start < len(docs); start += size {
		end := start + size
		if end > len(docs) {
			end = len(docs)
		}
		batches = append(batches, docs[start:end])
	}
	return batches
}

func docIDs(docs []models.Document) []string {
	ids := make([]string, len(docs))
	for i, doc := range docs {
		ids[i] = doc.DocID()
	}
	return ids
}

func backoffDelay(baseMS, attempt int) time.Duration {
	delay := time.Duration(baseMS) * time.Millisecond
	for i := 1; i < attempt; i++ {
		delay *= 2
	}
	if delay > 30*time.Second {
		delay = 30 * time.Second
	}
	return delay
}
