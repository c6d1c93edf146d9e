package tui

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/aretw0/folio/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderBook_FallsBackToMarkdown(t *testing.T) {
	pages := []domain.Page{
		{Kind: domain.PageCover, Number: 1, Title: "Tale"},
		{Kind: domain.PageContent, Number: 3, NodeID: "a", Chunks: 1, Text: "Hello"},
	}
	failing := func(string) (string, error) { return "", errors.New("no style") }

	out := RenderBook(pages, failing)
	assert.Contains(t, out, "# Tale")
	assert.Contains(t, out, "Hello")
	assert.Equal(t, 1, strings.Count(out, "\n---\n"))
}

func TestNewRenderer(t *testing.T) {
	render := NewRenderer(60)
	out, err := render("# Title\n\nSome *text*.")
	require.NoError(t, err)
	assert.Contains(t, out, "Title")
	assert.Contains(t, out, "text")
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf, "1.2.3\n")
	assert.Contains(t, buf.String(), "v1.2.3")
}
