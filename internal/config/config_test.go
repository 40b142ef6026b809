package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 1000, cfg.Knowledge.ChunkSize)
	assert.Equal(t, 200, cfg.Knowledge.ChunkOverlap)
	assert.Equal(t, 5, cfg.Knowledge.TopK)
	assert.Equal(t, int64(10*1024*1024), cfg.Upload.MaxSize)
	assert.Equal(t, "text-embedding-3-small", cfg.AI.EmbeddingModel)
	assert.Equal(t, "pgvector", cfg.Knowledge.VectorStore.Provider)
}

func TestValidateRejectsOverlapNotBelowChunkSize(t *testing.T) {
	cfg := &Config{
		Upload: UploadConfig{
			MaxSize:      1024,
			AllowedTypes: []string{"text/plain"},
		},
		Knowledge: KnowledgeConfig{
			ChunkSize:    1000,
			ChunkOverlap: 1000,
			TopK:         5,
		},
	}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chunk_overlap")

	cfg.Knowledge.ChunkOverlap = 1200
	assert.Error(t, cfg.Validate())

	cfg.Knowledge.ChunkOverlap = -1
	assert.Error(t, cfg.Validate())

	cfg.Knowledge.ChunkOverlap = 999
	assert.NoError(t, cfg.Validate())
}

func TestValidateRejectsNonPositiveLimits(t *testing.T) {
	cfg := &Config{
		Upload: UploadConfig{
			MaxSize:      0,
			AllowedTypes: []string{"text/plain"},
		},
		Knowledge: KnowledgeConfig{
			ChunkSize:    1000,
			ChunkOverlap: 200,
			TopK:         5,
		},
	}
	assert.Error(t, cfg.Validate())

	cfg.Upload.MaxSize = 1024
	cfg.Knowledge.TopK = 0
	assert.Error(t, cfg.Validate())

	cfg.Knowledge.TopK = 5
	cfg.Knowledge.ChunkSize = 0
	assert.Error(t, cfg.Validate())
}

func TestAllowsMediaType(t *testing.T) {
	uc := UploadConfig{
		AllowedTypes: []string{"application/pdf", "text/plain", "image/png", "image/jpeg"},
	}
	assert.True(t, uc.AllowsMediaType("application/pdf"))
	assert.True(t, uc.AllowsMediaType("TEXT/PLAIN"))
	assert.False(t, uc.AllowsMediaType("image/gif"))
	assert.False(t, uc.AllowsMediaType("application/msword"))
}
