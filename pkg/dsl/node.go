package dsl

import "github.com/aretw0/folio/pkg/domain"

// NodeBuilder provides a fluent API for configuring a node.
type NodeBuilder struct {
	node    domain.Node
	builder *Builder
	ending  bool
}

// Text sets the prose of the node.
func (n *NodeBuilder) Text(content string) *NodeBuilder {
	n.node.Text = content
	return n
}

// Illustrate attaches artwork to the node.
func (n *NodeBuilder) Illustrate(url string) *NodeBuilder {
	n.node.IllustrationURL = url
	return n
}

// Go adds a resolved, already explored choice leading to target.
func (n *NodeBuilder) Go(choiceID, text, target string, outcome domain.Outcome) *NodeBuilder {
	n.node.Choices = append(n.node.Choices, domain.Choice{
		ID:         choiceID,
		Text:       text,
		NextNodeID: target,
		Chosen:     true,
		Outcome:    outcome,
	})
	return n
}

// Stub adds an unexplored choice with no target yet.
func (n *NodeBuilder) Stub(choiceID, text string, outcome domain.Outcome) *NodeBuilder {
	n.node.Choices = append(n.node.Choices, domain.Choice{
		ID:      choiceID,
		Text:    text,
		Outcome: outcome,
	})
	return n
}

// Ending flags the node as terminal.
func (n *NodeBuilder) Ending() *NodeBuilder {
	n.ending = true
	return n
}

// Add starts another node on the same story.
func (n *NodeBuilder) Add(id string) *NodeBuilder {
	return n.builder.Add(id)
}

// Build returns the underlying domain.Node.
func (n *NodeBuilder) Build() domain.Node {
	return *n.node.Clone()
}
