// Package chunker provides a fixed-size text chunking processor.
package chunker

import (
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/custodia-labs/axchat/internal/core/domain"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 120

// ExcerptLength is the number of characters kept in a chunk excerpt.
const ExcerptLength = 260

// Processor splits section text into fixed-size overlapping chunks.
type Processor struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Ensure overlap doesn't exceed chunk size
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// Process splits one section of a document into retrieval chunks. Each
// chunk carries the document path, a display title, the section anchor,
// the fetch route, the source zone, and an excerpt of its content.
func (p *Processor) Process(doc domain.SourceDocument, section domain.Section) []domain.Chunk {
	windows := p.split(section.Content)
	if len(windows) == 0 {
		return nil
	}

	title := doc.Title
	if section.Anchor != "" && section.Title != "" {
		title = doc.Title + " · " + section.Title
	}
	route := "/api/axchat/file?path=" + url.QueryEscape(doc.Path)
	source, _, _ := strings.Cut(doc.Path, "/")

	chunks := make([]domain.Chunk, 0, len(windows))
	for _, window := range windows {
		chunks = append(chunks, domain.Chunk{
			ID:      uuid.New().String(),
			Path:    doc.Path,
			Title:   title,
			Anchor:  section.Anchor,
			Route:   route,
			Excerpt: makeExcerpt(window),
			Source:  source,
			Content: window,
		})
	}
	return chunks
}

// split produces overlapping windows over the text. Sizes and overlap
// are counted in runes so multi-byte text never gets cut mid-character.
// Whitespace-only windows are dropped; the final window always reaches
// the end of the text.
func (p *Processor) split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	runes := []rune(text)
	textLen := len(runes)
	estimated := (textLen / (p.chunkSize - p.overlap)) + 1
	windows := make([]string, 0, estimated)

	start := 0
	for {
		end := start + p.chunkSize
		if end > textLen {
			end = textLen
		}

		window := string(runes[start:end])
		if strings.TrimSpace(window) != "" {
			windows = append(windows, window)
		}

		if end == textLen {
			break
		}
		start = end - p.overlap
		if start < 0 {
			start = 0
		}
	}

	return windows
}

func makeExcerpt(text string) string {
	trimmed := strings.TrimSpace(text)
	if utf8.RuneCountInString(trimmed) <= ExcerptLength {
		return trimmed
	}
	runes := []rune(trimmed)
	return strings.TrimSpace(string(runes[:ExcerptLength])) + "…"
}
