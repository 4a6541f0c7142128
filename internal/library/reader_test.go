package library

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/desertthunder/tuneidx/internal/shared"
)

func TestOpen(t *testing.T) {
	t.Run("Valid Export", func(t *testing.T) {
		lib, err := Open(filepath.Join("testdata", "library.xml"))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if lib.Len() != 5 {
			t.Errorf("expected 5 entries, got %d", lib.Len())
		}

		if lib.Path() != filepath.Join("testdata", "library.xml") {
			t.Errorf("unexpected path %s", lib.Path())
		}
	})

	t.Run("Missing File", func(t *testing.T) {
		_, err := Open(filepath.Join("testdata", "no_such_library.xml"))
		if err == nil {
			t.Fatal("expected error for missing file")
		}

		if !errors.Is(err, shared.ErrSourceMissing) {
			t.Errorf("expected ErrSourceMissing, got %v", err)
		}
	})

	t.Run("Malformed Content", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "broken.xml")
		if err := os.WriteFile(path, []byte("<plist><dict><key>Tracks"), 0644); err != nil {
			t.Fatalf("failed to write fixture: %v", err)
		}

		_, err := Open(path)
		if err == nil {
			t.Fatal("expected error for malformed file")
		}

		if !errors.Is(err, shared.ErrSourceMalformed) {
			t.Errorf("expected ErrSourceMalformed, got %v", err)
		}
	})

	t.Run("Missing Tracks Dictionary", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "no_tracks.xml")
		content := `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
	<key>Major Version</key><integer>1</integer>
</dict>
</plist>`
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write fixture: %v", err)
		}

		_, err := Open(path)
		if !errors.Is(err, shared.ErrSourceMalformed) {
			t.Errorf("expected ErrSourceMalformed, got %v", err)
		}
	})
}

func TestEntries(t *testing.T) {
	lib, err := Open(filepath.Join("testdata", "library.xml"))
	if err != nil {
		t.Fatalf("failed to open library: %v", err)
	}

	t.Run("Sorted Key Order", func(t *testing.T) {
		var names []string
		for entry := range lib.Entries() {
			if name, ok := entry["Name"].(string); ok {
				names = append(names, name)
			} else {
				names = append(names, "")
			}
		}

		if len(names) != 5 {
			t.Fatalf("expected 5 entries, got %d", len(names))
		}

		if names[0] != "Paranoid Android" {
			t.Errorf("expected first entry to be Paranoid Android, got %q", names[0])
		}
		if names[4] != "Paranoid Android (Remaster)" {
			t.Errorf("expected last entry to be the duplicate, got %q", names[4])
		}
	})

	t.Run("Raw Types Preserved", func(t *testing.T) {
		var first RawEntry
		for entry := range lib.Entries() {
			first = entry
			break
		}

		if _, ok := first["Track ID"].(uint64); !ok {
			t.Errorf("expected Track ID to decode as uint64, got %T", first["Track ID"])
		}
		if _, ok := first["Name"].(string); !ok {
			t.Errorf("expected Name to decode as string, got %T", first["Name"])
		}
	})

	t.Run("Early Break", func(t *testing.T) {
		count := 0
		for range lib.Entries() {
			count++
			if count == 2 {
				break
			}
		}
		if count != 2 {
			t.Errorf("expected iteration to stop at 2, got %d", count)
		}
	})
}
