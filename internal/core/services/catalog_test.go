package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docbot/internal/core/domain"
)

func TestDiscoverCatalog(t *testing.T) {
	index := &mockIndex{metadata: []domain.ChunkMetadata{
		{domain.MetaDocumentKey: "PCGH_2025_Eurovent", domain.MetaDocumentCode: "PCGH",
			domain.MetaYear: "2025", domain.MetaStandard: "Eurovent"},
		{domain.MetaDocumentKey: "PCGH_2025_Eurovent", domain.MetaDocumentCode: "PCGH",
			domain.MetaYear: "2025", domain.MetaStandard: "Eurovent"},
		{domain.MetaSource: "GC_Oposiciones_2026.md"},
		{domain.MetaChunkIndex: "3"},
	}}

	catalog, err := DiscoverCatalog(context.Background(), index, 100)

	require.NoError(t, err)
	assert.Equal(t, []string{"GC_Oposiciones_2026", "PCGH_2025_Eurovent"}, catalog.Keys())

	d, ok := catalog.Get("GC_Oposiciones_2026")
	require.True(t, ok)
	assert.Equal(t, "GC", d.Code)
	assert.Equal(t, "2026", d.Year)
}

func TestDiscoverCatalog_Idempotent(t *testing.T) {
	index := &mockIndex{metadata: []domain.ChunkMetadata{
		{domain.MetaSource: "B_2024_X.md"},
		{domain.MetaSource: "A_2024_X.md"},
	}}

	first, err := DiscoverCatalog(context.Background(), index, 100)
	require.NoError(t, err)
	second, err := DiscoverCatalog(context.Background(), index, 100)
	require.NoError(t, err)

	assert.Equal(t, first.Keys(), second.Keys())
	assert.Equal(t, first.Formatted(), second.Formatted())
}

func TestDiscoverCatalog_EmptyIndex(t *testing.T) {
	catalog, err := DiscoverCatalog(context.Background(), &mockIndex{}, 100)

	require.NoError(t, err)
	assert.Equal(t, 0, catalog.Len())
	assert.Equal(t, domain.NoDocumentsAvailable, catalog.Formatted())
}

func TestDiscoverCatalog_IndexError(t *testing.T) {
	_, err := DiscoverCatalog(context.Background(), &mockIndex{metaErr: errors.New("no collection")}, 100)

	require.ErrorIs(t, err, domain.ErrIndexUnavailable)
}
