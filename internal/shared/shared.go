// package shared defines shared helpers
package shared

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// NewLogger builds the application [log.Logger] writing to w, with
// timestamps and caller reporting enabled. A nil writer falls back
// to [os.Stderr].
func NewLogger(w io.Writer) *log.Logger {
	if w == nil {
		w = os.Stderr
	}
	opts := log.Options{ReportTimestamp: true, ReportCaller: true}
	return log.NewWithOptions(w, opts)
}

// WithLogger derives a child logger carrying the given key-value pairs
// on every entry, e.g. the run id for the duration of one pipeline run.
func WithLogger(l *log.Logger, kv ...any) *log.Logger {
	return l.With(kv...)
}

// SetLogLevel adjusts the minimum [log.Level] the logger emits.
func SetLogLevel(l *log.Logger, ll log.Level) {
	l.SetLevel(ll)
}

// GenerateID returns a fresh v4 UUID string, used for run ids.
func GenerateID() string {
	return uuid.New().String()
}
