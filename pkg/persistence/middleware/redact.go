package middleware

import (
	"context"
	"fmt"
	"regexp"

	"github.com/aretw0/folio/pkg/domain"
	"github.com/aretw0/folio/pkg/ports"
)

// Mask replaces every redacted match.
const Mask = "***"

// EmailPattern matches e-mail addresses without swallowing trailing punctuation.
const EmailPattern = `[\w.+-]+@[\w-]+(\.[\w-]+)+`

type redactMiddleware struct {
	next     ports.StoryStore
	patterns []*regexp.Regexp
}

// NewRedactMiddleware creates a middleware that masks text matching any pattern in
// page text, choice text and the story prompt before they are persisted. Producers
// sometimes echo personal data from prompts; this keeps it out of storage.
func NewRedactMiddleware(patternStrings []string) (Middleware, error) {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid redact pattern %q: %w", p, err)
		}
		patterns[i] = re
	}
	return func(next ports.StoryStore) ports.StoryStore {
		return &redactMiddleware{next: next, patterns: patterns}
	}, nil
}

func (m *redactMiddleware) Save(ctx context.Context, story *domain.Story) error {
	if story == nil {
		return m.next.Save(ctx, story)
	}
	// Clone so the caller's in-memory story keeps its original text.
	cloned := story.Clone()
	cloned.Prompt = m.mask(cloned.Prompt)
	for _, node := range cloned.Nodes {
		node.Text = m.mask(node.Text)
		for i := range node.Choices {
			node.Choices[i].Text = m.mask(node.Choices[i].Text)
		}
	}
	return m.next.Save(ctx, cloned)
}

func (m *redactMiddleware) mask(s string) string {
	for _, p := range m.patterns {
		s = p.ReplaceAllString(s, Mask)
	}
	return s
}

func (m *redactMiddleware) Load(ctx context.Context, storyID string) (*domain.Story, error) {
	return m.next.Load(ctx, storyID)
}

func (m *redactMiddleware) Delete(ctx context.Context, storyID string) error {
	return m.next.Delete(ctx, storyID)
}

func (m *redactMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}
