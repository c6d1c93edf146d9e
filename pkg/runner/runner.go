package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/aretw0/folio"
	"github.com/aretw0/folio/internal/logging"
	"github.com/aretw0/folio/pkg/domain"
	"github.com/aretw0/folio/pkg/graph"
	"github.com/aretw0/folio/pkg/layout"
)

// Engine is the subset of the folio engine a reading session needs.
type Engine interface {
	Get(ctx context.Context, storyID string) (*domain.Story, error)
	Expand(ctx context.Context, storyID, nodeID, choiceID string) (*domain.Story, string, error)
}

var _ Engine = (*folio.Engine)(nil)

// ContentRenderer is a function that transforms the content before outputting it.
// This allows for TUI rendering (markdown to ANSI) without coupling the core package.
type ContentRenderer func(string) (string, error)

// quitWords end a session early.
var quitWords = map[string]bool{"q": true, "quit": true, "exit": true}

// Runner walks a reader through a story.
type Runner struct {
	engine    Engine
	handler   *TextHandler
	renderer  ContentRenderer
	logger    *slog.Logger
	startNode string
	expand    bool
}

// New creates a Runner reading from Stdin and writing to Stdout.
func New(engine Engine, opts ...Option) *Runner {
	r := &Runner{
		engine: engine,
		logger: logging.NewNop(),
		expand: true,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.handler == nil {
		r.handler = NewTextHandler(nil, nil)
	}
	return r
}

// Run reads storyID until an ending, a page without choices, a quit word or the end of
// input. It returns the ID of the last page shown.
func (r *Runner) Run(ctx context.Context, storyID string) (string, error) {
	story, err := r.engine.Get(ctx, storyID)
	if err != nil {
		return "", err
	}

	current := story.StartNodeID
	if r.startNode != "" {
		current = r.startNode
	}
	if story.Node(current) == nil {
		return "", fmt.Errorf("page %q: %w", current, domain.ErrNodeNotFound)
	}
	pages := graph.AssignPageNumbers(story.Nodes, story.StartNodeID)

	for {
		node := story.Node(current)
		r.show(pageView(story, node, pages[current]))

		if story.IsEnding(current) || len(node.Choices) == 0 {
			return current, nil
		}

		ids := make([]string, len(node.Choices))
		for i, c := range node.Choices {
			ids[i] = c.ID
		}

		idx, quit, err := r.ask(ctx, ids)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return current, nil
			}
			return current, err
		}
		if quit {
			return current, nil
		}

		choice := node.Choices[idx]
		if story.Node(choice.NextNodeID) != nil {
			current = choice.NextNodeID
			continue
		}
		if !r.expand {
			r.handler.Output(layout.Unwritten)
			continue
		}

		r.logger.Debug("expanding choice", "story_id", storyID, "node_id", current, "choice_id", choice.ID)
		next, newID, err := r.engine.Expand(ctx, storyID, current, choice.ID)
		switch {
		case errors.Is(err, folio.ErrNoProducer):
			r.handler.Output(layout.Unwritten)
			continue
		case err != nil:
			return current, fmt.Errorf("expand %s/%s: %w", current, choice.ID, err)
		}
		story, current = next, newID
		pages = graph.AssignPageNumbers(story.Nodes, story.StartNodeID)
	}
}

// ask reads until the reader names a valid choice or quits.
func (r *Runner) ask(ctx context.Context, ids []string) (int, bool, error) {
	for {
		raw, err := r.handler.Input(ctx)
		if err != nil {
			return 0, false, err
		}
		answer, err := SanitizeInput(raw)
		if err != nil {
			r.handler.Output(err.Error())
			continue
		}
		if quitWords[strings.ToLower(answer)] {
			return 0, true, nil
		}
		idx, err := ParseChoice(answer, ids)
		if err != nil {
			r.handler.Output(err.Error())
			continue
		}
		return idx, false, nil
	}
}

func (r *Runner) show(markdown string) {
	out := markdown
	if r.renderer != nil {
		if rendered, err := r.renderer(markdown); err == nil {
			out = rendered
		} else {
			r.logger.Warn("render failed, printing markdown", "err", err)
		}
	}
	r.handler.Output(out)
}

// pageView renders a node as the reader sees it, with numbered choices.
func pageView(story *domain.Story, node *domain.Node, number int) string {
	var sb strings.Builder
	if number > 0 {
		fmt.Fprintf(&sb, "## %d\n\n", number)
	}
	if node.IllustrationURL != "" {
		fmt.Fprintf(&sb, "![illustration](%s)\n\n", node.IllustrationURL)
	}
	sb.WriteString(node.Text)
	sb.WriteString("\n")

	if story.IsEnding(node.ID) {
		fmt.Fprintf(&sb, "\n**%s**\n", layout.TheEnd)
		return sb.String()
	}
	if len(node.Choices) > 0 {
		sb.WriteString("\n")
		for i, c := range node.Choices {
			fmt.Fprintf(&sb, "%d. %s", i+1, c.Text)
			if story.Node(c.NextNodeID) == nil {
				sb.WriteString(" *(unwritten)*")
			}
			sb.WriteString("\n")
		}
	}
	return sb.String()
}
