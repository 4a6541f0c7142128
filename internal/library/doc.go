// Package library reads the hierarchical property-list export produced by
// the source media library application (e.g. "iTunes Music Library.xml").
//
// [Open] parses the export eagerly so the file handle is closed before any
// downstream stage runs, then [Library.Entries] yields one raw attribute
// map per track without interpreting field types. Interpretation and
// validation happen in the normalize package; this package only
// distinguishes the two fatal failure modes of a run:
//
//   - [shared.ErrSourceMissing] : file absent or unreadable
//   - [shared.ErrSourceMalformed] : not well-formed plist, or no "Tracks" dictionary
//
// Entries are yielded in sorted key order so a given export always produces
// the same entry sequence.
package library
