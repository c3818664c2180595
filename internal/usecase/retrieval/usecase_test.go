package retrieval

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/futig/mindtrace-ai/internal/entity"
	"github.com/futig/mindtrace-ai/internal/integration/openai"
	"github.com/futig/mindtrace-ai/internal/vectorstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingCompleter struct {
	answer string
	err    error
	got    []entity.CompletionRequest
}

func (c *recordingCompleter) Complete(_ context.Context, req entity.CompletionRequest) (string, error) {
	c.got = append(c.got, req)
	return c.answer, c.err
}

type brokenSearcher struct{}

func (brokenSearcher) Search(context.Context, string, entity.VectorQuery) ([]entity.SearchResult, error) {
	return nil, errors.New("connection reset by peer")
}

type brokenEmbedder struct{}

func (brokenEmbedder) Embed(context.Context, string) ([]float32, error) {
	return nil, fmt.Errorf("%w: 429 too many requests", entity.ErrEmbedding)
}

func seedStore(t *testing.T, mock *openai.MockConnector) *vectorstore.Memory {
	t.Helper()

	store := vectorstore.NewMemory()
	require.NoError(t, store.EnsureCollection(context.Background(), entity.DefaultCollection, entity.VectorSize))

	docs := []struct {
		id, project, text string
	}{
		{"00000000-0000-0000-0000-000000000001", "p1", "login with email and password"},
		{"00000000-0000-0000-0000-000000000002", "p1", "password reset by email link"},
		{"00000000-0000-0000-0000-000000000003", "p1", "monthly invoices for customers"},
		{"00000000-0000-0000-0000-000000000004", "p2", "login with email and password"},
		{"00000000-0000-0000-0000-000000000005", "p2", "password policy for admins"},
	}

	points := make([]entity.VectorPoint, 0, len(docs))
	for _, d := range docs {
		vector, err := mock.Embed(context.Background(), d.text)
		require.NoError(t, err)
		points = append(points, entity.VectorPoint{
			ID:     d.id,
			Vector: vector,
			Payload: entity.Payload{
				ProjectID:   d.project,
				Text:        d.text,
				Filename:    entity.StringPtr("spec.pdf"),
				PageNumbers: []int{1, 2},
				Title:       entity.StringPtr("Accounts"),
			},
		})
	}
	require.NoError(t, store.Upsert(context.Background(), entity.DefaultCollection, points))

	return store
}

func TestSearch(t *testing.T) {
	mock := openai.NewMockConnector(zap.NewNop())
	uc := NewUsecase(mock, mock, seedStore(t, mock), zap.NewNop())

	results, err := uc.Search(context.Background(), "email password", "p1", 2)
	require.NoError(t, err)

	require.Len(t, results, 2)
	for _, r := range results {
		assert.Equal(t, "p1", r.ProjectID)
	}
	assert.GreaterOrEqual(t, results[0].Score, results[1].Score)
	assert.Equal(t, "login with email and password", results[0].Text)
}

func TestSearchUnknownProject(t *testing.T) {
	mock := openai.NewMockConnector(zap.NewNop())
	uc := NewUsecase(mock, mock, seedStore(t, mock), zap.NewNop())

	results, err := uc.Search(context.Background(), "email", "nobody", 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchValidation(t *testing.T) {
	mock := openai.NewMockConnector(zap.NewNop())
	uc := NewUsecase(mock, mock, vectorstore.NewMemory(), zap.NewNop())

	tests := []struct {
		name    string
		query   string
		project string
		limit   int
		wantErr error
	}{
		{"empty query", "  ", "p1", 3, entity.ErrMissingField},
		{"empty project", "login", "", 3, entity.ErrMissingField},
		{"zero limit", "login", "p1", 0, entity.ErrInvalidParameter},
		{"limit too large", "login", "p1", 101, entity.ErrInvalidParameter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.Search(context.Background(), tt.query, tt.project, tt.limit)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestSearchFailures(t *testing.T) {
	mock := openai.NewMockConnector(zap.NewNop())

	_, err := NewUsecase(brokenEmbedder{}, mock, vectorstore.NewMemory(), zap.NewNop()).
		Search(context.Background(), "login", "p1", 3)
	assert.ErrorIs(t, err, entity.ErrSearch)
	assert.ErrorIs(t, err, entity.ErrEmbedding)

	_, err = NewUsecase(mock, mock, brokenSearcher{}, zap.NewNop()).
		Search(context.Background(), "login", "p1", 3)
	assert.ErrorIs(t, err, entity.ErrSearch)
}

func TestAsk(t *testing.T) {
	mock := openai.NewMockConnector(zap.NewNop())
	completer := &recordingCompleter{answer: "Users log in with their email."}
	uc := NewUsecase(mock, completer, seedStore(t, mock), zap.NewNop())

	answer, err := uc.Ask(context.Background(), " How do users log in? ", "p1", 2)
	require.NoError(t, err)

	assert.Equal(t, "How do users log in?", answer.Question)
	assert.Equal(t, "Users log in with their email.", answer.Answer)
	require.Len(t, answer.Contexts, 2)

	ctx0 := answer.Contexts[0]
	require.NotNil(t, ctx0.Source)
	assert.Equal(t, "spec.pdf - p. 1, 2", *ctx0.Source)
	assert.Equal(t, []int{1, 2}, ctx0.PageNumbers)

	require.Len(t, completer.got, 1)
	req := completer.got[0]
	assert.Equal(t, answerTemperature, req.Temperature)
	assert.False(t, req.JSONMode)
	require.Len(t, req.Messages, 2)
	assert.Equal(t, entity.ChatRoleSystem, req.Messages[0].Role)
	assert.Contains(t, req.Messages[0].Content, "Reply in French")
	assert.Contains(t, req.Messages[0].Content, ctx0.Text+"\n(Source: spec.pdf - p. 1, 2, Title: Accounts)")
	assert.Equal(t, "How do users log in?", req.Messages[1].Content)
}

func TestAskWithMockModel(t *testing.T) {
	mock := openai.NewMockConnector(zap.NewNop())
	uc := NewUsecase(mock, mock, seedStore(t, mock), zap.NewNop())

	answer, err := uc.Ask(context.Background(), "What about invoices?", "p1", 5)
	require.NoError(t, err)

	assert.Equal(t, "[MOCK] Based on the provided documents: What about invoices?", answer.Answer)
	assert.Len(t, answer.Contexts, 3)
}

func TestAskWithoutDocuments(t *testing.T) {
	mock := openai.NewMockConnector(zap.NewNop())
	completer := &recordingCompleter{answer: "Could you tell me which module you mean?"}
	uc := NewUsecase(mock, completer, vectorstore.NewMemory(), zap.NewNop())

	answer, err := uc.Ask(context.Background(), "What is the deadline?", "p1", 5)
	require.NoError(t, err)

	assert.NotNil(t, answer.Contexts)
	assert.Empty(t, answer.Contexts)
	assert.Len(t, completer.got, 1)
}

func TestAskCompletionFailure(t *testing.T) {
	mock := openai.NewMockConnector(zap.NewNop())
	completer := &recordingCompleter{err: fmt.Errorf("%w: 500", entity.ErrCompletion)}
	uc := NewUsecase(mock, completer, seedStore(t, mock), zap.NewNop())

	_, err := uc.Ask(context.Background(), "How do users log in?", "p1", 5)
	assert.ErrorIs(t, err, entity.ErrCompletion)

	_, err = uc.Ask(context.Background(), "How do users log in?", "p1", 0)
	assert.ErrorIs(t, err, entity.ErrInvalidParameter)
}
