package dsl

import (
	"fmt"

	"github.com/aretw0/folio/pkg/domain"
)

// Builder manages the story construction.
type Builder struct {
	story *domain.Story
	nodes map[string]*NodeBuilder
	order []string
}

// New creates a new story builder.
func New(storyID string) *Builder {
	return &Builder{
		story: &domain.Story{ID: storyID},
		nodes: make(map[string]*NodeBuilder),
	}
}

// Title sets the story title printed on the cover.
func (b *Builder) Title(title string) *Builder {
	b.story.Title = title
	return b
}

// Prompt sets the summary printed on the back cover.
func (b *Builder) Prompt(prompt string) *Builder {
	b.story.Prompt = prompt
	return b
}

// Cover sets the cover artwork.
func (b *Builder) Cover(url string) *Builder {
	b.story.CoverURL = url
	return b
}

// Thresholds sets the ending thresholds.
func (b *Builder) Thresholds(favorable, unfavorable, mixed int) *Builder {
	b.story.Thresholds = domain.Thresholds{Favorable: favorable, Unfavorable: unfavorable, Mixed: mixed}
	return b
}

// Start designates the root node. By default the first added node is the root.
func (b *Builder) Start(nodeID string) *Builder {
	b.story.StartNodeID = nodeID
	return b
}

// Add creates a new node in the story.
// If the node already exists, it returns the existing builder.
func (b *Builder) Add(id string) *NodeBuilder {
	if nb, ok := b.nodes[id]; ok {
		return nb
	}
	nb := &NodeBuilder{
		node:    domain.Node{ID: id, Choices: []domain.Choice{}},
		builder: b,
	}
	b.nodes[id] = nb
	b.order = append(b.order, id)
	return nb
}

// Build compiles the story. Dangling references are kept as written; Build only checks
// that the start node exists.
func (b *Builder) Build() (*domain.Story, error) {
	story := *b.story
	if story.StartNodeID == "" && len(b.order) > 0 {
		story.StartNodeID = b.order[0]
	}

	story.Nodes = make(map[string]*domain.Node, len(b.nodes))
	story.EndNodeIDs = nil
	for _, id := range b.order {
		nb := b.nodes[id]
		node := nb.node
		story.Nodes[id] = node.Clone()
		if nb.ending {
			story.MarkEnding(id)
		}
	}

	if err := story.Validate(); err != nil {
		return nil, fmt.Errorf("failed to build story %q: %w", story.ID, err)
	}
	return &story, nil
}

// MustBuild is like Build but panics on error. Intended for fixtures.
func (b *Builder) MustBuild() *domain.Story {
	s, err := b.Build()
	if err != nil {
		panic(err)
	}
	return s
}
