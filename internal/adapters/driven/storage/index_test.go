package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docbot/internal/adapters/driven/storage/chroma"
	"github.com/custodia-labs/docbot/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docbot/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/docbot/internal/core/domain"
)

func TestOpenIndex(t *testing.T) {
	settings := domain.DefaultAppSettings()

	settings.Index.Backend = domain.IndexBackendMemory
	idx, err := OpenIndex(&settings, nil)
	require.NoError(t, err)
	assert.IsType(t, &memory.ChunkIndex{}, idx)

	settings.Index.Backend = domain.IndexBackendChroma
	idx, err = OpenIndex(&settings, nil)
	require.NoError(t, err)
	assert.IsType(t, &chroma.Index{}, idx)

	settings.Index.Backend = domain.IndexBackendSQLite
	settings.Index.DataDir = t.TempDir()
	idx, err = OpenIndex(&settings, nil)
	require.NoError(t, err)
	assert.IsType(t, &sqlite.Store{}, idx)
	assert.NoError(t, idx.Close())

	settings.Index.Backend = "redis"
	_, err = OpenIndex(&settings, nil)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}
