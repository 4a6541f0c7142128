package shared

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestGenerateID(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := GenerateID()
		if len(id) != 36 {
			t.Fatalf("expected UUID string, got %q", id)
		}
		if seen[id] {
			t.Fatalf("duplicate id generated: %s", id)
		}
		seen[id] = true
	}
}

func TestLogger(t *testing.T) {
	t.Run("NewLogger writes to provided writer", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf)

		logger.Info("hello")
		if !strings.Contains(buf.String(), "hello") {
			t.Errorf("expected log output, got %q", buf.String())
		}
	})

	t.Run("WithLogger adds fields", func(t *testing.T) {
		var buf bytes.Buffer
		logger := WithLogger(NewLogger(&buf), "run_id", "abc123")

		logger.Info("tagged")
		if !strings.Contains(buf.String(), "abc123") {
			t.Errorf("expected run_id in output, got %q", buf.String())
		}
	})

	t.Run("SetLogLevel filters output", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf)
		SetLogLevel(logger, log.ErrorLevel)

		logger.Info("hidden")
		if buf.Len() != 0 {
			t.Errorf("info line should be filtered, got %q", buf.String())
		}

		logger.Error("shown")
		if !strings.Contains(buf.String(), "shown") {
			t.Errorf("error line should pass, got %q", buf.String())
		}
	})
}
