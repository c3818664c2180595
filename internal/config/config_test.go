package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	t.Setenv("ENABLE_MOCKS", "true")
	t.Setenv("VECTOR_STORE_DRIVER", "memory")

	cfg, err := Parse("test")
	require.NoError(t, err)

	assert.Equal(t, ":8000", cfg.ServerAddr)
	assert.Equal(t, "test", cfg.Environment)
	assert.Equal(t, 500, cfg.ChunkerCfg.MaxTokens)
	assert.Equal(t, TokenizerTiktoken, cfg.ChunkerCfg.Tokenizer)
	assert.Equal(t, "text-embedding-3-small", cfg.OpenAICfg.EmbeddingModel)
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAICfg.ChatModel)
	assert.Equal(t, 120*time.Second, cfg.OpenAICfg.RequestTimeout)
	assert.Equal(t, 4, cfg.IngestCfg.EmbedConcurrency)
}

func TestParse_QdrantSettings(t *testing.T) {
	t.Setenv("QDRANT_URL", "https://qdrant.example.com:6333")
	t.Setenv("QDRANT_API_KEY", "secret")
	t.Setenv("QDRANT_TIMEOUT", "30s")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Parse("test")
	require.NoError(t, err)

	assert.Equal(t, VectorStoreQdrant, cfg.VectorStoreDriver)
	assert.Equal(t, "https://qdrant.example.com:6333", cfg.QdrantCfg.URL)
	assert.Equal(t, "secret", cfg.QdrantCfg.APIKey)
	assert.Equal(t, 30*time.Second, cfg.QdrantCfg.RequestTimeout)
	assert.Equal(t, "sk-test", cfg.OpenAICfg.APIKey)
}

func TestParse_ValidationErrors(t *testing.T) {
	t.Run("missing credentials", func(t *testing.T) {
		t.Setenv("VECTOR_STORE_DRIVER", "qdrant")

		_, err := Parse("test")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "QDRANT_URL")
		assert.Contains(t, err.Error(), "OPENAI_API_KEY")
	})

	t.Run("unknown driver", func(t *testing.T) {
		t.Setenv("ENABLE_MOCKS", "true")
		t.Setenv("VECTOR_STORE_DRIVER", "milvus")

		_, err := Parse("test")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "VECTOR_STORE_DRIVER")
	})

	t.Run("postgres without database url", func(t *testing.T) {
		t.Setenv("ENABLE_MOCKS", "true")
		t.Setenv("VECTOR_STORE_DRIVER", "postgres")

		_, err := Parse("test")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "DATABASE_URL")
	})

	t.Run("invalid chunk budget", func(t *testing.T) {
		t.Setenv("ENABLE_MOCKS", "true")
		t.Setenv("VECTOR_STORE_DRIVER", "memory")
		t.Setenv("CHUNK_MAX_TOKENS", "0")

		_, err := Parse("test")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "CHUNK_MAX_TOKENS")
	})
}

func TestValidateTelegram(t *testing.T) {
	t.Setenv("ENABLE_MOCKS", "true")
	t.Setenv("VECTOR_STORE_DRIVER", "memory")

	cfg, err := Parse("test")
	require.NoError(t, err)
	assert.Error(t, cfg.ValidateTelegram())

	cfg.TelegramCfg.BotToken = "123:abc"
	assert.NoError(t, cfg.ValidateTelegram())
}

func TestGetEnvFile(t *testing.T) {
	assert.Equal(t, ".env.prod", getEnvFile("production"))
	assert.Equal(t, ".env.local", getEnvFile("dev"))
	assert.Equal(t, ".env.staging", getEnvFile("staging"))
}

func TestLoadClientConfig(t *testing.T) {
	t.Setenv("MINDTRACE_URL", "http://localhost:8000")
	t.Setenv("MINDTRACE_TIMEOUT", "5s")
	// No OPENAI_API_KEY: the client does not validate server settings.
	t.Setenv("OPENAI_API_KEY", "")

	cfg, err := LoadClientConfig("client-test")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000", cfg.URL)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 10*time.Second, cfg.ConnTimeout)
}
