package model

import (
	"os"
	"sync"
	"sync/atomic"
)

// ComponentRecord represents one eligible component file in the corpus.
//
// Design decision: Content loading and the referenced flag are guarded
// here rather than in the scanner because the scan phase may run with
// multiple workers. sync.Once guarantees each file is read at most once
// even when several checking contexts race to load it, and atomic.Bool
// makes the false-to-true flag transition safe without a per-record lock.
type ComponentRecord struct {
	// RelativePath is the slash-normalized path relative to the scan root.
	// It is the record's unique key within the corpus.
	RelativePath string `json:"relative_path"`

	// Identifier is the file's base name with the component extension
	// stripped. It is the token searched for during reference scanning.
	// Identifiers are not unique across the corpus: two files with the
	// same base name in different subtrees share one matching token,
	// and any content containing that token marks both as referenced.
	Identifier string `json:"identifier"`

	// AbsolutePath is the resolved filesystem path used for reading.
	AbsolutePath string `json:"-"`

	// content holds the file's full text after the first load.
	// Read-only once loadOnce has fired.
	content  string
	loadErr  error
	loadOnce sync.Once

	// referenced transitions from false to true when the identifier is
	// found inside a different file's content. Never reset.
	referenced atomic.Bool
}

// NewComponentRecord creates a record for a component file.
// The referenced flag starts false and content is loaded lazily.
func NewComponentRecord(relativePath, identifier, absolutePath string) *ComponentRecord {
	return &ComponentRecord{
		RelativePath: relativePath,
		Identifier:   identifier,
		AbsolutePath: absolutePath,
	}
}

// Content returns the file's full text, reading it from disk on first call.
// Subsequent calls return the memoized result, including the memoized error:
// a file that failed to read once contributes no outgoing references for the
// whole run rather than being retried.
func (r *ComponentRecord) Content() (string, error) {
	r.loadOnce.Do(func() {
		data, err := os.ReadFile(r.AbsolutePath)
		if err != nil {
			r.loadErr = err
			return
		}
		r.content = string(data)
	})
	return r.content, r.loadErr
}

// SetContent injects content directly, bypassing the filesystem.
// Intended for tests and for callers that already hold the file's text.
// It wins only if no load has happened yet.
func (r *ComponentRecord) SetContent(content string) {
	r.loadOnce.Do(func() {
		r.content = content
	})
}

// MarkReferenced records that the identifier was found in another file.
// The transition is monotonic; concurrent calls are safe.
func (r *ComponentRecord) MarkReferenced() {
	r.referenced.Store(true)
}

// Referenced reports whether any other file's content contained this
// record's identifier.
func (r *ComponentRecord) Referenced() bool {
	return r.referenced.Load()
}
