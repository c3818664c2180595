package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/futig/mindtrace-ai/internal/config"
	"github.com/futig/mindtrace-ai/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestConnector(t *testing.T, handler http.HandlerFunc) *Connector {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := config.OpenAIConfig{
		HTTPClientConfig: config.HTTPClientConfig{
			RequestTimeout:        5 * time.Second,
			ConnTimeout:           time.Second,
			KeepAlive:             time.Second,
			IdleConnTimeout:       time.Second,
			ResponseHeaderTimeout: 5 * time.Second,
		},
		APIKey:         "sk-test",
		BaseURL:        server.URL + "/v1/",
		EmbeddingModel: "text-embedding-3-small",
		ChatModel:      "gpt-4o-mini",
	}

	return NewConnector(cfg, zap.NewNop())
}

func writeEmbedding(w http.ResponseWriter, dims int) {
	vector := make([]float32, dims)
	vector[0] = 1
	_ = json.NewEncoder(w).Encode(entity.OpenAIEmbeddingResponse{
		Data: []entity.OpenAIEmbeddingData{{Index: 0, Embedding: vector}},
	})
}

func TestEmbed(t *testing.T) {
	conn := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req entity.OpenAIEmbeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "text-embedding-3-small", req.Model)
		assert.Equal(t, "hello", req.Input)

		writeEmbedding(w, entity.VectorSize)
	})

	vector, err := conn.Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.Len(t, vector, entity.VectorSize)
	assert.Equal(t, float32(1), vector[0])
}

func TestEmbed_Failures(t *testing.T) {
	t.Run("wrong dimension", func(t *testing.T) {
		conn := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
			writeEmbedding(w, 3)
		})
		_, err := conn.Embed(context.Background(), "hello")
		assert.ErrorIs(t, err, entity.ErrEmbedding)
	})

	t.Run("unauthorized", func(t *testing.T) {
		conn := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":{"message":"bad key"}}`))
		})
		_, err := conn.Embed(context.Background(), "hello")
		assert.ErrorIs(t, err, entity.ErrEmbedding)
	})

	t.Run("empty input", func(t *testing.T) {
		conn := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("no request expected")
		})
		_, err := conn.Embed(context.Background(), "   ")
		assert.ErrorIs(t, err, entity.ErrEmbedding)
	})
}

func TestComplete(t *testing.T) {
	conn := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)

		var req entity.OpenAIChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4o-mini", req.Model)
		assert.InDelta(t, 0.3, req.Temperature, 1e-9)
		require.NotNil(t, req.ResponseFormat)
		assert.Equal(t, "json_object", req.ResponseFormat.Type)
		require.Len(t, req.Messages, 2)

		_ = json.NewEncoder(w).Encode(entity.OpenAIChatResponse{
			Choices: []entity.OpenAIChatChoice{{
				Message:      entity.ChatMessage{Role: entity.ChatRoleAssistant, Content: `{"a":1}`},
				FinishReason: "stop",
			}},
		})
	})

	out, err := conn.Complete(context.Background(), entity.CompletionRequest{
		Messages: []entity.ChatMessage{
			{Role: entity.ChatRoleSystem, Content: "sys"},
			{Role: entity.ChatRoleUser, Content: "usr"},
		},
		Temperature: 0.3,
		JSONMode:    true,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, out)
}

func TestComplete_NoChoices(t *testing.T) {
	conn := newTestConnector(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	})

	_, err := conn.Complete(context.Background(), entity.CompletionRequest{})
	assert.True(t, errors.Is(err, entity.ErrCompletion))
}
