package domain

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestChunkMetadata_Accessors(t *testing.T) {
	structured := ChunkMetadata{MetaDocumentKey: "PCGH_2025_Eurovent", MetaDocumentCode: "PCGH", MetaSource: "PCGH_2025_Eurovent.md"}
	assert.Equal(t, "PCGH_2025_Eurovent", structured.DocumentKey())
	assert.Equal(t, "PCGH", structured.DocumentCode())
	assert.Equal(t, "PCGH_2025_Eurovent.md", structured.Source())

	legacy := ChunkMetadata{MetaLegacyDocumentKey: "PDWA_2025_Eurovent", MetaLegacyDocumentCode: "PDWA"}
	assert.Equal(t, "PDWA_2025_Eurovent", legacy.DocumentKey())
	assert.Equal(t, "PDWA", legacy.DocumentCode())
}

func TestChunkMetadata_MatchesDocument(t *testing.T) {
	tests := []struct {
		name     string
		meta     ChunkMetadata
		key      string
		expected bool
	}{
		{"structured key", ChunkMetadata{MetaDocumentKey: "PCGH_2025_Eurovent"}, "PCGH_2025_Eurovent", true},
		{"legacy product key", ChunkMetadata{MetaLegacyDocumentKey: "PCGH_2025_Eurovent"}, "PCGH_2025_Eurovent", true},
		{"source with extension", ChunkMetadata{MetaSource: "GC_manual.md"}, "GC_manual", true},
		{"bare source", ChunkMetadata{MetaSource: "GC_manual"}, "GC_manual", true},
		{"other document", ChunkMetadata{MetaDocumentKey: "PDWA_2025_Eurovent", MetaSource: "PDWA_2025_Eurovent.md"}, "PCGH_2025_Eurovent", false},
		{"pdf source does not match", ChunkMetadata{MetaSource: "GC_manual.pdf"}, "GC_manual", false},
		{"empty filter matches all", ChunkMetadata{}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.meta.MatchesDocument(tt.key))
		})
	}
}

func TestChunkMetadata_Descriptor(t *testing.T) {
	tests := []struct {
		name string
		meta ChunkMetadata
		want DocumentDescriptor
		ok   bool
	}{
		{
			name: "structured",
			meta: ChunkMetadata{MetaDocumentKey: "PCGH_2025_Eurovent", MetaDocumentCode: "PCGH", MetaYear: "2025", MetaStandard: "Eurovent"},
			want: DocumentDescriptor{Key: "PCGH_2025_Eurovent", Code: "PCGH", Year: "2025", Standard: "Eurovent"},
			ok:   true,
		},
		{
			name: "legacy filename",
			meta: ChunkMetadata{MetaSource: "GC_2023_install_guide.md"},
			want: DocumentDescriptor{Key: "GC_2023_install_guide", Code: "GC", Year: "2023", Standard: "GC 2023 install guide"},
			ok:   true,
		},
		{
			name: "legacy without year",
			meta: ChunkMetadata{MetaSource: "manual.v2.txt"},
			want: DocumentDescriptor{Key: "manual.v2", Code: "manual.v2", Standard: "manual.v2"},
			ok:   true,
		},
		{
			name: "no identity",
			meta: ChunkMetadata{MetaType: "markdown"},
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.meta.Descriptor()
			assert.Equal(t, tt.ok, ok)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("descriptor mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNewRetrievedChunk(t *testing.T) {
	c := NewRetrievedChunk("text", ChunkMetadata{MetaDocumentCode: "PCGH", MetaSource: "PCGH_2025_Eurovent.md"}, 0.25)
	assert.Equal(t, "PCGH", c.DocumentCode)
	assert.Equal(t, "PCGH_2025_Eurovent.md", c.SourceLabel)
	assert.InDelta(t, 0.75, c.Similarity, 1e-9)

	unknown := NewRetrievedChunk("text", ChunkMetadata{}, 0.5)
	assert.Equal(t, "Unknown", unknown.DocumentCode)
	assert.Equal(t, "Unknown", unknown.SourceLabel)
}

func TestRetrievedChunk_Format(t *testing.T) {
	c := RetrievedChunk{Text: "Max pressure: 10 bar", DocumentCode: "PCGH", SourceLabel: "PCGH_2025_Eurovent.md", Similarity: 0.8765}
	assert.Equal(t, "[PCGH - PCGH_2025_Eurovent.md | Relevance: 0.88]\nMax pressure: 10 bar", c.Format())
}

func TestJoinContext(t *testing.T) {
	chunks := []RetrievedChunk{
		{Text: "a", DocumentCode: "A", SourceLabel: "a.md", Similarity: 0.9},
		{Text: "b", DocumentCode: "B", SourceLabel: "b.md", Similarity: 0.5},
	}
	assert.Equal(t,
		"[A - a.md | Relevance: 0.90]\na\n\n---\n\n[B - b.md | Relevance: 0.50]\nb",
		JoinContext(chunks))
	assert.Equal(t, "", JoinContext(nil))
}
