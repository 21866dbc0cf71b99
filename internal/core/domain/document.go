package domain

import "time"

// SourceDocument is a corpus file read at index time. It is never persisted;
// the indexer derives Sections and Chunks from it and discards it.
type SourceDocument struct {
	// Path is the file path relative to the corpus root, slash-separated.
	Path string

	// Title is the display title: front-matter override or filename stem.
	Title string

	// Body is the raw markdown body with front matter removed.
	Body string
}

// Section is a heading-delimited subdivision of a document body.
// Derived during indexing, not separately persisted.
type Section struct {
	// Title is the heading text, or the document title when the
	// document has no headings.
	Title string

	// Anchor is the slugified heading, empty for the implicit section.
	Anchor string

	// Content is the section's plain text after markdown stripping.
	Content string
}

// Chunk is the atomic retrieval unit: a bounded slice of a section's plain
// text. Every chunk belongs to exactly one section of exactly one document.
type Chunk struct {
	// ID is the chunk identifier assigned at build time.
	ID string

	// Path is the owning document's corpus-relative path.
	Path string

	// Title is the composite "Doc · Section" display title.
	Title string

	// Anchor is the owning section's slug, if any.
	Anchor string

	// Route is the deep-link route to the raw file.
	Route string

	// Excerpt is a short plain-text preview of the chunk.
	Excerpt string

	// Source is the visibility tag: the first segment of Path.
	Source string

	// Content is the full chunk text fed to the full-text index.
	Content string
}

// IndexStatus is the build metadata of the retrieval index.
type IndexStatus struct {
	// OK is false when the index file is absent or unreadable.
	OK bool `json:"ok"`

	// IndexedAt is the last build timestamp, RFC3339.
	IndexedAt string `json:"indexed_at,omitempty"`

	// Version is the fixed schema tag written at build time.
	Version string `json:"version,omitempty"`

	// Documents is the total section count across indexed files.
	Documents int `json:"documents"`

	// Chunks is the total chunk-window count across all sections.
	Chunks int `json:"chunks"`
}

// BuildResult summarises a completed index rebuild.
type BuildResult struct {
	IndexedAt time.Time
	Documents int
	Chunks    int
}
