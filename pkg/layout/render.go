package layout

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/aretw0/folio/pkg/domain"
)

const (
	continuedFromFormat = "(continued from page %d)"
	continuedOnFormat   = "(continued on page %d)"

	// Unwritten is printed in place of a page number for choices with no target yet.
	Unwritten = "(this path is unwritten)"
	// TheEnd closes the last chunk of an ending node.
	TheEnd = "THE END"
)

var (
	continuedFromRe = regexp.MustCompile(`\A\(continued from page \d+\)\n\n`)
	continuedOnRe   = regexp.MustCompile(`\n\n\(continued on page \d+\)\z`)
)

// DecorateText returns the page's chunk wrapped in its continuation markers.
func DecorateText(p domain.Page) string {
	var sb strings.Builder
	if p.ContinuedFrom > 0 {
		sb.WriteString(fmt.Sprintf(continuedFromFormat, p.ContinuedFrom))
		sb.WriteString("\n\n")
	}
	sb.WriteString(p.Text)
	if p.ContinuedOn > 0 {
		sb.WriteString("\n\n")
		sb.WriteString(fmt.Sprintf(continuedOnFormat, p.ContinuedOn))
	}
	return sb.String()
}

// StripMarkers removes the continuation markers DecorateText adds.
func StripMarkers(s string) string {
	s = continuedFromRe.ReplaceAllString(s, "")
	return continuedOnRe.ReplaceAllString(s, "")
}

// ChoiceLine renders one printed choice.
func ChoiceLine(c domain.PageChoice) string {
	if c.Page == 0 {
		return fmt.Sprintf("%s %s", c.Text, Unwritten)
	}
	return fmt.Sprintf("%s: turn to page %d", c.Text, c.Page)
}

// RenderPage renders a physical page as Markdown.
func RenderPage(p domain.Page) string {
	var sb strings.Builder

	switch p.Kind {
	case domain.PageCover:
		sb.WriteString(fmt.Sprintf("# %s\n", p.Title))
		if p.CoverURL != "" {
			sb.WriteString(fmt.Sprintf("\n![cover](%s)\n", p.CoverURL))
		}
	case domain.PageBackCover:
		if p.Summary != "" {
			sb.WriteString(fmt.Sprintf("%s\n", p.Summary))
		}
	default:
		sb.WriteString(fmt.Sprintf("## %d\n\n", p.Number))
		if p.IllustrationURL != "" {
			sb.WriteString(fmt.Sprintf("![illustration](%s)\n\n", p.IllustrationURL))
		}
		sb.WriteString(DecorateText(p))
		sb.WriteString("\n")

		if len(p.Choices) > 0 {
			sb.WriteString("\n")
			for _, c := range p.Choices {
				sb.WriteString("- " + ChoiceLine(c) + "\n")
			}
		}
		if p.Ending {
			sb.WriteString(fmt.Sprintf("\n**%s**\n", TheEnd))
		}
	}

	return sb.String()
}

// RenderBook renders every page, separated by horizontal rules.
func RenderBook(pages []domain.Page) string {
	parts := make([]string, 0, len(pages))
	for _, p := range pages {
		parts = append(parts, RenderPage(p))
	}
	return strings.Join(parts, "\n---\n\n")
}
