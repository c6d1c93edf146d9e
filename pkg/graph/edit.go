package graph

import (
	"fmt"

	"github.com/aretw0/folio/pkg/domain"
)

// edit clones story and hands fn the clone's copy of nodeID.
func edit(story *domain.Story, nodeID string, fn func(out *domain.Story, n *domain.Node) error) (*domain.Story, error) {
	if story == nil {
		return nil, domain.ErrInvalidStory
	}
	if story.Node(nodeID) == nil {
		return story, fmt.Errorf("edit '%s': %w", nodeID, domain.ErrNodeNotFound)
	}
	out := story.Clone()
	if err := fn(out, out.Nodes[nodeID]); err != nil {
		return story, err
	}
	return out, nil
}

func choiceAt(n *domain.Node, choiceID string) (*domain.Choice, error) {
	idx := n.Choice(choiceID)
	if idx < 0 {
		return nil, fmt.Errorf("choice '%s' on '%s': %w", choiceID, n.ID, domain.ErrChoiceNotFound)
	}
	return &n.Choices[idx], nil
}

// SetText replaces the prose of a node.
func SetText(story *domain.Story, nodeID, text string) (*domain.Story, error) {
	return edit(story, nodeID, func(_ *domain.Story, n *domain.Node) error {
		n.Text = text
		return nil
	})
}

// SetIllustration replaces (or, with an empty url, removes) the artwork of a node.
func SetIllustration(story *domain.Story, nodeID, url string) (*domain.Story, error) {
	return edit(story, nodeID, func(_ *domain.Story, n *domain.Node) error {
		n.IllustrationURL = url
		return nil
	})
}

// AddChoice appends an unexplored stub to a node and returns the new choice id.
func AddChoice(story *domain.Story, nodeID, text string, outcome domain.Outcome, ids IDGenerator) (*domain.Story, string, error) {
	choiceID := ids.mint()
	out, err := edit(story, nodeID, func(_ *domain.Story, n *domain.Node) error {
		n.Choices = append(n.Choices, domain.Choice{
			ID:      choiceID,
			Text:    text,
			Outcome: outcome.Normalize(),
		})
		return nil
	})
	if err != nil {
		return out, "", err
	}
	return out, choiceID, nil
}

// RemoveChoice drops a choice from a node. The target node, if any, is left in place and
// may become an orphan.
func RemoveChoice(story *domain.Story, nodeID, choiceID string) (*domain.Story, error) {
	return edit(story, nodeID, func(_ *domain.Story, n *domain.Node) error {
		idx := n.Choice(choiceID)
		if idx < 0 {
			return fmt.Errorf("choice '%s' on '%s': %w", choiceID, nodeID, domain.ErrChoiceNotFound)
		}
		n.Choices = append(n.Choices[:idx], n.Choices[idx+1:]...)
		return nil
	})
}

// LinkChoice points a choice at an existing node, which may create a convergence or a
// cycle. An empty targetID turns the choice back into a stub.
func LinkChoice(story *domain.Story, nodeID, choiceID, targetID string) (*domain.Story, error) {
	return edit(story, nodeID, func(out *domain.Story, n *domain.Node) error {
		if targetID != "" && out.Node(targetID) == nil {
			return fmt.Errorf("link to '%s': %w", targetID, domain.ErrNodeNotFound)
		}
		c, err := choiceAt(n, choiceID)
		if err != nil {
			return err
		}
		c.NextNodeID = targetID
		if targetID == "" {
			c.Chosen = false
		}
		return nil
	})
}

// MarkChosen flags a choice as explored.
func MarkChosen(story *domain.Story, nodeID, choiceID string) (*domain.Story, error) {
	return edit(story, nodeID, func(_ *domain.Story, n *domain.Node) error {
		c, err := choiceAt(n, choiceID)
		if err != nil {
			return err
		}
		c.Chosen = true
		return nil
	})
}

// SetEnding adds or removes a node from the ending set.
func SetEnding(story *domain.Story, nodeID string, ending bool) (*domain.Story, error) {
	return edit(story, nodeID, func(out *domain.Story, _ *domain.Node) error {
		if ending {
			out.MarkEnding(nodeID)
		} else {
			out.UnmarkEnding(nodeID)
		}
		return nil
	})
}
