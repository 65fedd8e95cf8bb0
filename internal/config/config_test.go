package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	require.NoError(t, LoadConfig())
	require.NotNil(t, AppConfig)

	assert.Equal(t, "gemini", AppConfig.AI.Provider)
	assert.Equal(t, "text-embedding-004", AppConfig.AI.EmbeddingModel)
	assert.Equal(t, "gemini-2.0-flash", AppConfig.AI.GenerationModel)

	assert.Equal(t, 768, AppConfig.Retrieval.VectorDim)
	assert.Equal(t, 5, AppConfig.Retrieval.TopK)
	assert.Equal(t, 100, AppConfig.Retrieval.UpsertBatchSize)
	assert.Equal(t, "health_insurance_rag", AppConfig.Retrieval.Milvus.Collection)

	assert.ElementsMatch(t, []string{".pdf", ".docx", ".txt", ".md"}, AppConfig.FileUpload.AllowedTypes)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("MILVUS_ADDRESS", "milvus.internal:19530")
	t.Setenv("VECTOR_STORE_PROVIDER", "memory")
	t.Setenv("REDIS_ADDR", "redis.internal:6379")
	t.Setenv("INSURHUB_RETRIEVAL_UPSERT_BATCH_SIZE", "25")

	require.NoError(t, LoadConfig())

	assert.Equal(t, "test-key", AppConfig.AI.GeminiAPIKey)
	assert.Equal(t, "milvus.internal:19530", AppConfig.Retrieval.Milvus.Address)
	assert.Equal(t, "memory", AppConfig.Retrieval.Provider)
	assert.True(t, AppConfig.Cache.Enabled)
	assert.Equal(t, "redis.internal:6379", AppConfig.Cache.RedisAddr)
	assert.Equal(t, 25, AppConfig.Retrieval.UpsertBatchSize)
}

func TestValidateConfigRejectsBadValues(t *testing.T) {
	cfg := &Config{
		AI:        AIConfig{Provider: "gemini"},
		Retrieval: RetrievalConfig{VectorDim: 768, TopK: 5, UpsertBatchSize: 100, Provider: "milvus"},
	}
	require.NoError(t, validateConfig(cfg))

	cfg.Retrieval.VectorDim = 0
	assert.Error(t, validateConfig(cfg))
	cfg.Retrieval.VectorDim = 768

	cfg.Retrieval.UpsertBatchSize = 0
	assert.Error(t, validateConfig(cfg))
	cfg.Retrieval.UpsertBatchSize = 100

	cfg.AI.Provider = "unknown"
	assert.Error(t, validateConfig(cfg))
}
