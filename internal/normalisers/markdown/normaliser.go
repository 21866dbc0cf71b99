package markdown

import (
	"path"
	"regexp"
	"strings"

	"github.com/custodia-labs/axchat/internal/core/domain"
)

// Normaliser converts a raw markdown corpus file into heading-delimited
// sections of plain text, ready for chunking.
type Normaliser struct {
	translit Transliterator
}

// Option configures the normaliser.
type Option func(*Normaliser)

// WithTransliterator replaces the anchor-slug transliteration function.
func WithTransliterator(t Transliterator) Option {
	return func(n *Normaliser) {
		if t != nil {
			n.translit = t
		}
	}
}

// New creates a markdown normaliser.
func New(opts ...Option) *Normaliser {
	n := &Normaliser{translit: DefaultTransliterator}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

var headingPattern = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)

// Normalise parses a corpus file: front matter supplies a title override,
// the body splits into sections on heading markers (levels 1-6), and each
// section's markdown is stripped to plain text. A body without headings
// yields a single section titled by the document. Sections whose stripped
// text is empty are dropped.
func (n *Normaliser) Normalise(raw []byte, relPath string) domain.SourceDocument {
	frontTitle, body := splitFrontMatter(string(raw))

	title := frontTitle
	if title == "" {
		base := path.Base(relPath)
		title = strings.TrimSuffix(base, path.Ext(base))
	}

	doc := domain.SourceDocument{
		Path:  relPath,
		Title: title,
		Body:  body,
	}
	return doc
}

// Sections splits a document body on heading markers and strips each
// section to plain text.
func (n *Normaliser) Sections(doc domain.SourceDocument) []domain.Section {
	var sections []domain.Section
	current := domain.Section{Title: doc.Title}
	var content strings.Builder

	flush := func() {
		text := stripMarkdown(content.String())
		if text != "" {
			current.Content = text
			sections = append(sections, current)
		}
		content.Reset()
	}

	for _, line := range strings.Split(doc.Body, "\n") {
		match := headingPattern.FindStringSubmatch(strings.TrimRight(line, "\r"))
		if match != nil {
			flush()
			heading := strings.TrimSpace(match[2])
			if heading == "" {
				heading = doc.Title
			}
			current = domain.Section{
				Title:  heading,
				Anchor: Slugify(heading, n.translit),
			}
			continue
		}
		content.WriteString(line)
		content.WriteByte('\n')
	}
	flush()

	return sections
}

// Front matter is a leading "---" fence with key: value lines. Only the
// title key matters here; malformed fences fall through as body text.
func splitFrontMatter(raw string) (title, body string) {
	trimmed := strings.TrimPrefix(raw, "\uFEFF")
	if !strings.HasPrefix(trimmed, "---") {
		return "", raw
	}
	rest := trimmed[3:]
	if !strings.HasPrefix(rest, "\n") && !strings.HasPrefix(rest, "\r\n") {
		return "", raw
	}

	lines := strings.Split(rest, "\n")
	for i, line := range lines {
		line = strings.TrimRight(line, "\r")
		if i > 0 && (line == "---" || line == "...") {
			return title, strings.Join(lines[i+1:], "\n")
		}
		if key, value, ok := strings.Cut(line, ":"); ok {
			if strings.TrimSpace(key) == "title" {
				title = strings.Trim(strings.TrimSpace(value), `"'`)
			}
		}
	}
	// Unterminated fence: treat the whole file as body.
	return "", raw
}

var (
	codeBlocks    = regexp.MustCompile("(?s)```.*?```")
	inlineCode    = regexp.MustCompile("`[^`]*`")
	images        = regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`)
	links         = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	blockquotes   = regexp.MustCompile(`(?m)^\s*>\s?`)
	bulletMarkers = regexp.MustCompile(`(?m)^\s*[-*+]\s+`)
	numberMarkers = regexp.MustCompile(`(?m)^\s*\d+\.\s+`)
	emphasis      = regexp.MustCompile(`[*_~#]`)
	whitespace    = regexp.MustCompile(`\s+`)
)

// stripMarkdown reduces markdown to searchable plain text: code and
// images vanish, links keep their label, structural markers drop, and
// all whitespace collapses to single spaces.
func stripMarkdown(md string) string {
	text := codeBlocks.ReplaceAllString(md, " ")
	text = inlineCode.ReplaceAllString(text, " ")
	text = images.ReplaceAllString(text, " ")
	text = links.ReplaceAllString(text, "$1")
	text = blockquotes.ReplaceAllString(text, "")
	text = bulletMarkers.ReplaceAllString(text, "")
	text = numberMarkers.ReplaceAllString(text, "")
	text = emphasis.ReplaceAllString(text, " ")
	text = whitespace.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
