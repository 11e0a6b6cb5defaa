package domain

import (
	"fmt"
	"strings"
)

// ContextSeparator joins formatted context blocks.
const ContextSeparator = "\n\n---\n\n"

// unknownLabel is used when chunk metadata lacks a code or source.
const unknownLabel = "Unknown"

// Chunk metadata keys written by ingestion and read by retrieval.
const (
	MetaDocumentKey        = "document_key"
	MetaLegacyDocumentKey  = "product_key"
	MetaDocumentCode       = "document_code"
	MetaLegacyDocumentCode = "product_code"
	MetaYear               = "year"
	MetaStandard           = "standard"
	MetaSource             = "source"
	MetaFilePath           = "file_path"
	MetaType               = "type"
	MetaChunkIndex         = "chunk_index"
	MetaChunkType          = "chunk_type"
)

// ChunkMetadata is the flat key-value metadata stored with each chunk.
// Two shapes are supported: structured (document_key and friends) and
// legacy (a bare source filename with an implied stem).
type ChunkMetadata map[string]string

// DocumentKey returns the structured document key, if present.
func (m ChunkMetadata) DocumentKey() string {
	if k := m[MetaDocumentKey]; k != "" {
		return k
	}
	return m[MetaLegacyDocumentKey]
}

// DocumentCode returns the short document code, if present.
func (m ChunkMetadata) DocumentCode() string {
	if c := m[MetaDocumentCode]; c != "" {
		return c
	}
	return m[MetaLegacyDocumentCode]
}

// Source returns the source filename, if present.
func (m ChunkMetadata) Source() string {
	return m[MetaSource]
}

// MatchesDocument reports whether the chunk belongs to the document key,
// by structured key or by the legacy filename identity.
func (m ChunkMetadata) MatchesDocument(key string) bool {
	if key == "" {
		return true
	}
	if m.DocumentKey() == key {
		return true
	}
	src := m.Source()
	return src == key+".md" || src == key
}

// Descriptor derives a document descriptor from chunk metadata.
// The second return is false when the metadata identifies no document.
func (m ChunkMetadata) Descriptor() (DocumentDescriptor, bool) {
	if key := m.DocumentKey(); key != "" {
		return DocumentDescriptor{
			Key:      key,
			Code:     m.DocumentCode(),
			Year:     m[MetaYear],
			Standard: m[MetaStandard],
		}, true
	}

	src := m.Source()
	if src == "" {
		return DocumentDescriptor{}, false
	}
	stem := src
	if i := strings.LastIndex(src, "."); i > 0 {
		stem = src[:i]
	}
	d := DocumentDescriptor{
		Key:      stem,
		Code:     ShortCode(stem),
		Standard: strings.ReplaceAll(stem, "_", " "),
	}
	for _, part := range strings.Split(stem, "_") {
		if isYear(part) {
			d.Year = part
			break
		}
	}
	return d, true
}

func isYear(s string) bool {
	if len(s) != 4 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// RetrievedChunk is a passage surfaced by similarity search.
type RetrievedChunk struct {
	// Text is the chunk content.
	Text string

	// DocumentCode is the short code of the owning document.
	DocumentCode string

	// SourceLabel is the source filename.
	SourceLabel string

	// Similarity is 1 - distance as reported by the index.
	Similarity float64
}

// NewRetrievedChunk builds a chunk from an index hit.
func NewRetrievedChunk(text string, meta ChunkMetadata, distance float64) RetrievedChunk {
	c := RetrievedChunk{
		Text:         text,
		DocumentCode: meta.DocumentCode(),
		SourceLabel:  meta.Source(),
		Similarity:   1 - distance,
	}
	if c.DocumentCode == "" {
		c.DocumentCode = unknownLabel
	}
	if c.SourceLabel == "" {
		c.SourceLabel = unknownLabel
	}
	return c
}

// Format renders the chunk as a context block.
func (c RetrievedChunk) Format() string {
	return fmt.Sprintf("[%s - %s | Relevance: %.2f]\n%s", c.DocumentCode, c.SourceLabel, c.Similarity, c.Text)
}

// JoinContext renders chunks as a single context string.
func JoinContext(chunks []RetrievedChunk) string {
	blocks := make([]string, len(chunks))
	for i, c := range chunks {
		blocks[i] = c.Format()
	}
	return strings.Join(blocks, ContextSeparator)
}
