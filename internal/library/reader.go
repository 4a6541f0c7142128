// package library loads the property-list music library export
package library

import (
	"fmt"
	"iter"
	"os"
	"sort"
	"strconv"

	"howett.net/plist"

	"github.com/desertthunder/tuneidx/internal/shared"
)

// RawEntry is one uninterpreted per-track attribute mapping from the export.
type RawEntry map[string]any

// Library holds the parsed export.
type Library struct {
	path    string
	keys    []string
	entries map[string]RawEntry
}

// Open reads and parses the export at path.
//
// The file is opened read-only and closed before Open returns. Failures are
// classified as [shared.ErrSourceMissing] (absent or unreadable file) or
// [shared.ErrSourceMalformed] (unparsable plist or missing "Tracks"
// dictionary); both are fatal to a pipeline run.
func Open(path string) (*Library, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", shared.ErrSourceMissing, path, err)
	}
	defer f.Close()

	var root map[string]any
	if err := plist.NewDecoder(f).Decode(&root); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", shared.ErrSourceMalformed, path, err)
	}

	rawTracks, ok := root["Tracks"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s: no \"Tracks\" dictionary", shared.ErrSourceMalformed, path)
	}

	lib := &Library{
		path:    path,
		keys:    make([]string, 0, len(rawTracks)),
		entries: make(map[string]RawEntry, len(rawTracks)),
	}

	for key, value := range rawTracks {
		entry, ok := value.(map[string]any)
		if !ok {
			// Malformed single entry. Keep it in the sequence as an empty
			// mapping so the normalizer counts the skip instead of the
			// reader dropping it unreported.
			entry = map[string]any{}
		}
		lib.keys = append(lib.keys, key)
		lib.entries[key] = RawEntry(entry)
	}

	sortKeys(lib.keys)
	return lib, nil
}

// Path returns the export path the library was read from.
func (l *Library) Path() string { return l.path }

// Len returns the number of raw entries in the export.
func (l *Library) Len() int { return len(l.keys) }

// Entries yields each raw per-track mapping in sorted key order.
func (l *Library) Entries() iter.Seq[RawEntry] {
	return func(yield func(RawEntry) bool) {
		for _, key := range l.keys {
			if !yield(l.entries[key]) {
				return
			}
		}
	}
}

// sortKeys orders numerically when every key parses as an integer (the
// usual shape, since the Tracks dictionary is keyed by track ID), falling
// back to lexical order otherwise.
func sortKeys(keys []string) {
	numeric := make(map[string]int64, len(keys))
	allNumeric := true
	for _, key := range keys {
		n, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			allNumeric = false
			break
		}
		numeric[key] = n
	}

	sort.Slice(keys, func(i, j int) bool {
		if allNumeric {
			return numeric[keys[i]] < numeric[keys[j]]
		}
		return keys[i] < keys[j]
	})
}
