package graph_test

import (
	"testing"

	"github.com/aretw0/folio/pkg/domain"
	"github.com/aretw0/folio/pkg/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEdits(t *testing.T) {
	s := exampleStory()

	out, err := graph.SetText(s, "N2", "A new page")
	require.NoError(t, err)
	assert.Equal(t, "A new page", out.Nodes["N2"].Text)
	assert.Equal(t, "Behind the door", s.Nodes["N2"].Text)

	out, err = graph.SetIllustration(out, "N2", "art://door.png")
	require.NoError(t, err)
	assert.Equal(t, "art://door.png", out.Nodes["N2"].IllustrationURL)

	out, err = graph.RemoveChoice(out, "R", "C1")
	require.NoError(t, err)
	require.Len(t, out.Nodes["R"].Choices, 1)
	assert.Equal(t, "C2", out.Nodes["R"].Choices[0].ID)

	out, err = graph.SetEnding(out, "N2", true)
	require.NoError(t, err)
	assert.True(t, out.IsEnding("N2"))
	out, err = graph.SetEnding(out, "N2", false)
	require.NoError(t, err)
	assert.False(t, out.IsEnding("N2"))
}

func TestLinkChoice(t *testing.T) {
	s := exampleStory()

	// Resolving the stub onto the root creates a self-loop; numbering still terminates.
	out, err := graph.LinkChoice(s, "R", "C1", "R")
	require.NoError(t, err)
	assert.Equal(t, "R", out.Nodes["R"].Choices[0].NextNodeID)
	assert.Equal(t, map[string]int{"R": 1, "N2": 2}, graph.AssignPageNumbers(out.Nodes, out.StartNodeID))

	_, err = graph.LinkChoice(s, "R", "C1", "ghost")
	assert.ErrorIs(t, err, domain.ErrNodeNotFound)

	out, err = graph.LinkChoice(s, "R", "C2", "")
	require.NoError(t, err)
	assert.False(t, out.Nodes["R"].Choices[1].Resolved())
	assert.False(t, out.Nodes["R"].Choices[1].Chosen)
}

func TestMarkChosen(t *testing.T) {
	out, err := graph.MarkChosen(exampleStory(), "R", "C1")
	require.NoError(t, err)
	assert.True(t, out.Nodes["R"].Choices[0].Chosen)

	_, err = graph.MarkChosen(exampleStory(), "R", "C9")
	assert.ErrorIs(t, err, domain.ErrChoiceNotFound)
}

func TestEdits_UnknownNode(t *testing.T) {
	s := exampleStory()
	_, err := graph.SetText(s, "ghost", "x")
	assert.ErrorIs(t, err, domain.ErrNodeNotFound)
	_, _, err = graph.AddChoice(s, "ghost", "x", domain.OutcomeNone, nil)
	assert.ErrorIs(t, err, domain.ErrNodeNotFound)
}
