package retrieval

import (
	"fmt"
	"strings"

	"github.com/futig/mindtrace-ai/internal/entity"
)

const answerTemperature = 0.7

const answerInstructions = `You are a precise and collaborative AI assistant specialized in software development projects.

Answer questions as accurately as possible using the provided project context.

If the context does not contain enough information to give a confident answer, do not say that the information is missing.
Instead, respond naturally by asking thoughtful and specific follow-up questions that help clarify the user's intent or gather more details about the topic.

When answering:
- If the context provides enough detail, give a clear, concise and accurate answer.
- If the context is incomplete, ask a relevant clarifying question related to the user's query without mentioning the lack of context.
- Reply in French when the question is written in French.
- Always maintain a professional, conversational and helpful tone.`

func buildAnswerRequest(question string, contexts []entity.Context) entity.CompletionRequest {
	blocks := make([]string, len(contexts))
	for i, c := range contexts {
		blocks[i] = fmt.Sprintf("%s\n(Source: %s, Title: %s)", c.Text, deref(c.Source), deref(c.Title))
	}

	system := answerInstructions + "\n\nContext:\n" + strings.Join(blocks, "\n\n")

	return entity.CompletionRequest{
		Messages: []entity.ChatMessage{
			{Role: entity.ChatRoleSystem, Content: system},
			{Role: entity.ChatRoleUser, Content: question},
		},
		Temperature: answerTemperature,
	}
}

func deref(s *string) string {
	if s == nil {
		return "None"
	}
	return *s
}
