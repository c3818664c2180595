package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"math"
	"strings"
	"unicode"

	"github.com/futig/mindtrace-ai/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// MockConnector is an offline stand-in for the OpenAI API.
// Embeddings are hashed bag-of-words vectors, so texts sharing words score higher.
type MockConnector struct {
	logger *zap.Logger
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{
		logger: logger,
	}
}

func (m *MockConnector) EmbeddingModel() string {
	return "mock-embedding"
}

func (m *MockConnector) Embed(ctx context.Context, text string) ([]float32, error) {
	ctxzap.Debug(ctx, "[MOCK] computing embedding", zap.Int("input_length", len(text)))

	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: empty input", entity.ErrEmbedding)
	}

	return hashEmbedding(text), nil
}

func (m *MockConnector) Complete(ctx context.Context, req entity.CompletionRequest) (string, error) {
	ctxzap.Info(ctx, "[MOCK] requesting chat completion",
		zap.Int("message_count", len(req.Messages)),
		zap.Bool("json_mode", req.JSONMode),
	)

	if req.JSONMode {
		report := map[string]any{
			"summary_changes": "The client now wants the changes described in the new description.",
			"changes_details": []map[string]string{
				{"type": string(entity.ChangeTypeModified), "description": "Mock comparison of the two descriptions."},
			},
			"recommendations": "Review the updated requirements with the team.",
		}
		data, err := json.Marshal(report)
		if err != nil {
			return "", fmt.Errorf("%w: %w", entity.ErrCompletion, err)
		}
		return string(data), nil
	}

	question := ""
	for _, msg := range req.Messages {
		if msg.Role == entity.ChatRoleUser {
			question = msg.Content
		}
	}
	if idx := strings.LastIndex(question, "Question:"); idx >= 0 {
		question = strings.TrimSpace(question[idx+len("Question:"):])
	}

	return fmt.Sprintf("[MOCK] Based on the provided documents: %s", question), nil
}

func hashEmbedding(text string) []float32 {
	vector := make([]float32, entity.VectorSize)

	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		h := fnv.New32a()
		h.Write([]byte(w))
		vector[h.Sum32()%entity.VectorSize] += 1
	}

	var norm float64
	for _, v := range vector {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		vector[0] = 1
		return vector
	}

	scale := float32(1 / math.Sqrt(norm))
	for i := range vector {
		vector[i] *= scale
	}
	return vector
}
