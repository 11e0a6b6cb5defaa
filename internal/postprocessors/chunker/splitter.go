// Package chunker cuts markdown documents into index-sized chunks. Tables
// are kept whole; text is split recursively on paragraph, line and word
// boundaries with overlap between neighbouring chunks.
package chunker

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/docbot/internal/core/ports/driven"
)

// Ensure Splitter implements the interface.
var _ driven.Splitter = (*Splitter)(nil)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 200

// Chunk types.
const (
	TypeText  = "text"
	TypeTable = "table"
)

// defaultSeparators are tried in order; "" splits into characters.
var defaultSeparators = []string{"\n\n", "\n", " ", ""}

var (
	htmlTablePattern = regexp.MustCompile(`(?is)<table[^>]*>.*?</table>`)
	tableRulePattern = regexp.MustCompile(`:?-+:?`)
)

// Splitter splits markdown into text and table segments.
type Splitter struct {
	chunkSize  int
	overlap    int
	separators []string
}

// Option configures the splitter.
type Option func(*Splitter)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(s *Splitter) {
		if size > 0 {
			s.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(s *Splitter) {
		if overlap >= 0 {
			s.overlap = overlap
		}
	}
}

// New creates a splitter with the given options.
func New(opts ...Option) *Splitter {
	s := &Splitter{
		chunkSize:  DefaultChunkSize,
		overlap:    DefaultChunkOverlap,
		separators: defaultSeparators,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.overlap >= s.chunkSize {
		s.overlap = s.chunkSize / 4
	}

	return s
}

// Split cuts content into chunks. Each table (markdown, or a run of HTML
// tables separated only by whitespace) is one chunk.
func (s *Splitter) Split(content string) []driven.SplitSegment {
	var out []driven.SplitSegment
	for _, seg := range extractTables(content) {
		if strings.TrimSpace(seg.Text) == "" {
			continue
		}
		if seg.Type == TypeTable {
			out = append(out, seg)
			continue
		}
		for _, text := range s.splitText(seg.Text, s.separators) {
			out = append(out, driven.SplitSegment{Text: text, Type: TypeText})
		}
	}
	return out
}

// extractTables separates HTML and markdown tables from the text around them.
func extractTables(content string) []driven.SplitSegment {
	matches := htmlTablePattern.FindAllStringIndex(content, -1)
	if len(matches) == 0 {
		return extractMarkdownTables(content)
	}

	var segments []driven.SplitSegment
	last := 0
	for i := 0; i < len(matches); i++ {
		start, end := matches[i][0], matches[i][1]
		if before := content[last:start]; strings.TrimSpace(before) != "" {
			segments = append(segments, extractMarkdownTables(before)...)
		}

		tables := []string{content[start:end]}
		for i+1 < len(matches) && strings.TrimSpace(content[end:matches[i+1][0]]) == "" {
			i++
			tables = append(tables, content[matches[i][0]:matches[i][1]])
			end = matches[i][1]
		}
		segments = append(segments, driven.SplitSegment{Text: strings.Join(tables, "\n"), Type: TypeTable})
		last = end
	}
	if rest := content[last:]; strings.TrimSpace(rest) != "" {
		segments = append(segments, extractMarkdownTables(rest)...)
	}
	return segments
}

// extractMarkdownTables finds pipe tables: a header line followed by a
// separator rule, then every following non-blank line containing a pipe.
func extractMarkdownTables(content string) []driven.SplitSegment {
	var (
		segments []driven.SplitSegment
		text     []string
	)
	flushText := func() {
		if t := strings.TrimSpace(strings.Join(text, "\n")); t != "" {
			segments = append(segments, driven.SplitSegment{Text: t, Type: TypeText})
		}
		text = nil
	}

	lines := strings.Split(content, "\n")
	for i := 0; i < len(lines); {
		line := lines[i]
		if strings.Contains(line, "|") && i+1 < len(lines) &&
			strings.Contains(lines[i+1], "|") && tableRulePattern.MatchString(lines[i+1]) {
			flushText()
			table := []string{line, lines[i+1]}
			i += 2
			for i < len(lines) && strings.Contains(lines[i], "|") && strings.TrimSpace(lines[i]) != "" {
				table = append(table, lines[i])
				i++
			}
			segments = append(segments, driven.SplitSegment{Text: strings.Join(table, "\n"), Type: TypeTable})
			continue
		}
		text = append(text, line)
		i++
	}
	flushText()
	return segments
}

// splitText splits on the first separator present in text, recursing into
// pieces that are still too long with the remaining separators.
func (s *Splitter) splitText(text string, separators []string) []string {
	separator := separators[len(separators)-1]
	var rest []string
	for i, sep := range separators {
		if sep == "" {
			separator = sep
			break
		}
		if strings.Contains(text, sep) {
			separator = sep
			rest = separators[i+1:]
			break
		}
	}

	var pieces []string
	for _, p := range strings.Split(text, separator) {
		if p != "" {
			pieces = append(pieces, p)
		}
	}

	var final, good []string
	for _, p := range pieces {
		if length(p) < s.chunkSize {
			good = append(good, p)
			continue
		}
		if len(good) > 0 {
			final = append(final, s.merge(good, separator)...)
			good = nil
		}
		if len(rest) == 0 {
			final = append(final, p)
		} else {
			final = append(final, s.splitText(p, rest)...)
		}
	}
	if len(good) > 0 {
		final = append(final, s.merge(good, separator)...)
	}
	return final
}

// merge packs pieces into chunks of at most chunkSize characters, carrying
// up to overlap characters of trailing pieces into the next chunk.
func (s *Splitter) merge(pieces []string, separator string) []string {
	sepLen := length(separator)
	var (
		docs    []string
		current []string
		total   int
	)
	joinedLen := func(n int) int {
		if len(current) > 0 {
			return total + n + sepLen
		}
		return total + n
	}

	for _, p := range pieces {
		n := length(p)
		if joinedLen(n) > s.chunkSize && len(current) > 0 {
			if doc := strings.TrimSpace(strings.Join(current, separator)); doc != "" {
				docs = append(docs, doc)
			}
			for total > s.overlap || (joinedLen(n) > s.chunkSize && total > 0) {
				total -= length(current[0])
				if len(current) > 1 {
					total -= sepLen
				}
				current = current[1:]
			}
		}
		current = append(current, p)
		total += n
		if len(current) > 1 {
			total += sepLen
		}
	}
	if doc := strings.TrimSpace(strings.Join(current, separator)); doc != "" {
		docs = append(docs, doc)
	}
	return docs
}

func length(s string) int {
	return utf8.RuneCountInString(s)
}
