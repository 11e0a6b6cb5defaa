package domain

import (
	"path/filepath"
	"regexp"
	"strings"
)

// documentFilenamePattern is the [CODE]_[YEAR]_[STANDARD] naming convention.
var documentFilenamePattern = regexp.MustCompile(`^([A-Z0-9]+)_(\d{4})_([A-Za-z0-9]+)$`)

// SourceDocument is a file read for ingestion, before chunking.
type SourceDocument struct {
	// Path is the file location on disk.
	Path string

	// Content is the full markdown text.
	Content string

	// Metadata is copied onto every chunk cut from the document.
	Metadata ChunkMetadata
}

// Chunk is a unit of a source document stored in the index.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// Text is the chunk content.
	Text string

	// Metadata identifies the owning document and chunk position.
	Metadata ChunkMetadata

	// Embedding is the vector representation for similarity search.
	Embedding []float32
}

// ParseDocumentFilename extracts a descriptor from a conforming filename
// such as PCGH_2025_Eurovent.md. The second return is false otherwise.
func ParseDocumentFilename(name string) (DocumentDescriptor, bool) {
	stem := filepath.Base(name)
	if i := strings.LastIndex(stem, "."); i > 0 {
		stem = stem[:i]
	}
	m := documentFilenamePattern.FindStringSubmatch(stem)
	if m == nil {
		return DocumentDescriptor{}, false
	}
	return DocumentDescriptor{
		Key:      stem,
		Code:     m[1],
		Year:     m[2],
		Standard: m[3],
	}, true
}

// NewSourceDocument builds a source document with metadata derived from its filename.
func NewSourceDocument(path, content string) SourceDocument {
	name := filepath.Base(path)
	meta := ChunkMetadata{
		MetaSource:   name,
		MetaFilePath: path,
		MetaType:     "markdown",
	}
	if d, ok := ParseDocumentFilename(name); ok {
		meta[MetaDocumentKey] = d.Key
		meta[MetaDocumentCode] = d.Code
		meta[MetaYear] = d.Year
		meta[MetaStandard] = d.Standard
	}
	return SourceDocument{Path: path, Content: content, Metadata: meta}
}
