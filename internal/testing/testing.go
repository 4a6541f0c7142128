// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"

	"github.com/desertthunder/tuneidx/internal/models"
	"github.com/desertthunder/tuneidx/internal/sink"
)

// MockSink is a test double for [pipeline.Sink]. Zero value succeeds on
// every call; set the error fields or Results to shape outcomes.
type MockSink struct {
	EnsureErr  error
	WriteErr   error
	RefreshErr error

	// Results maps index name to a canned write result. Indices without
	// an entry report everything indexed.
	Results map[string]*sink.WriteResult

	EnsureCalls  int
	RefreshCalls int
	Written      map[string][]models.Document
}

func (m *MockSink) EnsureIndices(ctx context.Context, recreate bool) error {
	m.EnsureCalls++
	return m.EnsureErr
}

func (m *MockSink) Write(ctx context.Context, index string, docs []models.Document) (*sink.WriteResult, error) {
	if m.WriteErr != nil {
		return nil, m.WriteErr
	}
	if m.Written == nil {
		m.Written = make(map[string][]models.Document)
	}
	m.Written[index] = append(m.Written[index], docs...)

	if res, ok := m.Results[index]; ok {
		return res, nil
	}
	return &sink.WriteResult{Attempted: len(docs), Indexed: len(docs)}, nil
}

func (m *MockSink) Refresh(ctx context.Context, indices ...string) error {
	m.RefreshCalls++
	return m.RefreshErr
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper answers every request with the same canned status and
// body, minting a fresh response per call so multi-request clients can be
// driven through it. Responses carry the document store's product header;
// requests are recorded for assertion.
type MockRoundTripper struct {
	status int
	body   string
	err    error

	Requests []*http.Request
}

func NewMockRoundTripper(status int, body string, err error) *MockRoundTripper {
	return &MockRoundTripper{status: status, body: body, err: err}
}

func (m *MockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	m.Requests = append(m.Requests, req)
	if m.err != nil {
		return nil, m.err
	}

	header := http.Header{}
	header.Set("X-Elastic-Product", "Elasticsearch")
	header.Set("Content-Type", "application/json")

	return &http.Response{
		StatusCode: m.status,
		Header:     header,
		Body:       io.NopCloser(strings.NewReader(m.body)),
		Request:    req,
	}, nil
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
