package entity

import (
	"fmt"
	"strings"
)

// Context is a retrieved chunk used to ground an answer
type Context struct {
	Text        string  `json:"text"`
	Source      *string `json:"source"`
	Filename    *string `json:"filename"`
	PageNumbers []int   `json:"page_numbers"`
	Title       *string `json:"title"`
	Score       float32 `json:"score"`
}

// ContextFromResult converts a search hit into grounding context
func ContextFromResult(r SearchResult) Context {
	var parts []string
	if r.Filename != nil && *r.Filename != "" {
		parts = append(parts, *r.Filename)
	}
	if len(r.PageNumbers) > 0 {
		pages := make([]string, len(r.PageNumbers))
		for i, p := range r.PageNumbers {
			pages[i] = fmt.Sprint(p)
		}
		parts = append(parts, "p. "+strings.Join(pages, ", "))
	}

	return Context{
		Text:        r.Text,
		Source:      StringPtr(strings.Join(parts, " - ")),
		Filename:    r.Filename,
		PageNumbers: r.PageNumbers,
		Title:       r.Title,
		Score:       r.Score,
	}
}

// Answer is the grounded reply to a question
type Answer struct {
	Question string    `json:"question"`
	Answer   string    `json:"answer"`
	Contexts []Context `json:"contexts"`
}
