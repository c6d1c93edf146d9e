package graph

import (
	"fmt"

	"github.com/aretw0/folio/pkg/domain"
)

// newNode wraps a producer result into a node with freshly minted ids.
// Every generated choice starts as an unexplored stub.
func newNode(gen domain.Generated, ids IDGenerator) *domain.Node {
	node := &domain.Node{
		ID:              ids.mint(),
		Text:            gen.Text,
		IllustrationURL: gen.IllustrationURL,
		Choices:         make([]domain.Choice, 0, len(gen.Choices)),
	}
	for _, gc := range gen.Choices {
		node.Choices = append(node.Choices, domain.Choice{
			ID:        ids.mint(),
			Text:      gc.Text,
			Outcome:   gc.Outcome.Normalize(),
			Rationale: gc.Rationale,
		})
	}
	return node
}

// NewStory seeds a story whose root node is built from gen.
func NewStory(title, prompt string, gen domain.Generated, thresholds domain.Thresholds, ids IDGenerator) *domain.Story {
	root := newNode(gen, ids)
	story := &domain.Story{
		ID:          ids.mint(),
		Title:       title,
		Prompt:      prompt,
		Nodes:       map[string]*domain.Node{root.ID: root},
		StartNodeID: root.ID,
		Thresholds:  thresholds,
	}
	if gen.Ending || len(gen.Choices) == 0 {
		story.MarkEnding(root.ID)
	}
	return story
}

// Attach folds a producer result into the story as one atomic edit: a new node is added,
// the originating choice is resolved to it and marked chosen, and the node joins the
// ending set when the result is terminal. It returns the updated story and the new
// node's id.
func Attach(story *domain.Story, fromNodeID, choiceID string, gen domain.Generated, ids IDGenerator) (*domain.Story, string, error) {
	if err := story.Validate(); err != nil {
		return story, "", err
	}
	from := story.Node(fromNodeID)
	if from == nil {
		return story, "", fmt.Errorf("attach from '%s': %w", fromNodeID, domain.ErrNodeNotFound)
	}
	idx := from.Choice(choiceID)
	if idx < 0 {
		return story, "", fmt.Errorf("attach via '%s': %w", choiceID, domain.ErrChoiceNotFound)
	}
	if target := from.Choices[idx].NextNodeID; target != "" && story.Node(target) != nil {
		return story, "", fmt.Errorf("attach via '%s' (points to '%s'): %w", choiceID, target, domain.ErrChoiceResolved)
	}

	out := story.Clone()
	node := newNode(gen, ids)
	out.Nodes[node.ID] = node

	choice := &out.Nodes[fromNodeID].Choices[idx]
	choice.NextNodeID = node.ID
	choice.Chosen = true

	if gen.Ending || len(gen.Choices) == 0 {
		out.MarkEnding(node.ID)
	}
	return out, node.ID, nil
}

// PrepareRequest builds the snapshot a content producer receives when the author follows
// the open stub choiceID on nodeID. Scores include the followed choice's own outcome, so
// MustEnd tells the producer whether the page it writes has to conclude the story.
func PrepareRequest(story *domain.Story, nodeID, choiceID string) (domain.GenerationRequest, error) {
	if err := story.Validate(); err != nil {
		return domain.GenerationRequest{}, err
	}
	node := story.Node(nodeID)
	if node == nil {
		return domain.GenerationRequest{}, fmt.Errorf("request for '%s': %w", nodeID, domain.ErrNodeNotFound)
	}
	idx := node.Choice(choiceID)
	if idx < 0 {
		return domain.GenerationRequest{}, fmt.Errorf("request via '%s': %w", choiceID, domain.ErrChoiceNotFound)
	}
	choice := node.Choices[idx]

	scores := ScorePath(story, nodeID, BuildParentMap(story))
	scores.Add(choice.Outcome)

	return domain.GenerationRequest{
		StoryID:  story.ID,
		Title:    story.Title,
		Prompt:   story.Prompt,
		NodeID:   nodeID,
		NodeText: node.Text,
		ChoiceID: choiceID,
		Choice:   choice.Text,
		Scores:   scores,
		MustEnd:  scores.Reached(story.EffectiveThresholds()),
	}, nil
}
