package driven

import "context"

// CorpusFile is one markdown file discovered under the corpus root.
type CorpusFile struct {
	// RelPath is the slash-separated path relative to the corpus root.
	RelPath string
}

// Corpus enumerates and reads the markdown corpus on behalf of the indexer
// and the file-fetch service.
type Corpus interface {
	// ListFiles walks the given top-level zones and returns every
	// markdown file found, skipping hidden and build directories.
	// Nonexistent zones are silently skipped.
	ListFiles(ctx context.Context, zones []string) ([]CorpusFile, error)

	// ReadFile returns the raw bytes of a corpus-relative path.
	// Paths resolving outside the root are rejected.
	ReadFile(ctx context.Context, relPath string) ([]byte, error)

	// Root returns the corpus root directory.
	Root() string
}

// CorpusWatcher observes the corpus for changes after an index build,
// so status surfaces can flag a stale index. Watching never triggers a
// rebuild; rebuilds stay whole-corpus and explicit.
type CorpusWatcher interface {
	// Watch begins observing the given zones. Safe to call again to
	// reset after a rebuild.
	Watch(zones []string) error

	// Dirty reports whether any change was seen since the last Watch.
	Dirty() bool

	// Close stops watching.
	Close() error
}
