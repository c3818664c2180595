package openai

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/futig/mindtrace-ai/internal/config"
	"github.com/futig/mindtrace-ai/internal/entity"
	"github.com/futig/mindtrace-ai/internal/integration/common"
	pkghttp "github.com/futig/mindtrace-ai/pkg/http"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const (
	embeddingsEndpoint = "/embeddings"
	chatEndpoint       = "/chat/completions"
)

// Connector talks to an OpenAI compatible API for embeddings and chat completions
type Connector struct {
	config    config.OpenAIConfig
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewConnector(
	cfg config.OpenAIConfig,
	logger *zap.Logger,
	opts ...pkghttp.HttpOpts,
) *Connector {
	extra := append([]pkghttp.HttpOpts{pkghttp.WithAuthToken(cfg.APIKey)}, opts...)

	return &Connector{
		connector: common.NewBaseConnector(strings.TrimRight(cfg.BaseURL, "/"), cfg.HTTPClientConfig, logger, extra...),
		config:    cfg,
		logger:    logger,
	}
}

func (c *Connector) EmbeddingModel() string {
	return c.config.EmbeddingModel
}

// Embed returns the embedding vector of text
func (c *Connector) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: empty input", entity.ErrEmbedding)
	}

	req := entity.OpenAIEmbeddingRequest{
		Model: c.config.EmbeddingModel,
		Input: text,
	}

	var resp entity.OpenAIEmbeddingResponse
	if err := c.connector.DoRequest(ctx, http.MethodPost, embeddingsEndpoint, req, &resp); err != nil {
		ctxzap.Error(ctx, "embedding request failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", entity.ErrEmbedding, err)
	}

	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("%w: response has no data", entity.ErrEmbedding)
	}

	vector := resp.Data[0].Embedding
	if len(vector) != entity.VectorSize {
		return nil, fmt.Errorf("%w: expected %d dimensions, got %d", entity.ErrEmbedding, entity.VectorSize, len(vector))
	}

	ctxzap.Debug(ctx, "embedding computed",
		zap.String("model", c.config.EmbeddingModel),
		zap.Int("input_length", len(text)),
	)

	return vector, nil
}

// Complete runs a chat completion and returns the content of the first choice
func (c *Connector) Complete(ctx context.Context, req entity.CompletionRequest) (string, error) {
	chatReq := entity.OpenAIChatRequest{
		Model:       c.config.ChatModel,
		Messages:    req.Messages,
		Temperature: req.Temperature,
	}
	if req.JSONMode {
		chatReq.ResponseFormat = &entity.OpenAIResponseFormat{Type: "json_object"}
	}

	ctxzap.Info(ctx, "requesting chat completion",
		zap.String("model", c.config.ChatModel),
		zap.Int("message_count", len(req.Messages)),
	)

	var resp entity.OpenAIChatResponse
	if err := c.connector.DoRequest(ctx, http.MethodPost, chatEndpoint, chatReq, &resp); err != nil {
		ctxzap.Error(ctx, "chat completion failed", zap.Error(err))
		return "", fmt.Errorf("%w: %w", entity.ErrCompletion, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: response has no choices", entity.ErrCompletion)
	}

	content := resp.Choices[0].Message.Content
	ctxzap.Info(ctx, "chat completion received",
		zap.String("finish_reason", resp.Choices[0].FinishReason),
		zap.Int("content_length", len(content)),
	)

	return content, nil
}
