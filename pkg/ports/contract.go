package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/folio/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contractStory(id string) *domain.Story {
	return &domain.Story{
		ID:     id,
		Title:  "Contract",
		Prompt: "A story used to verify stores.",
		Nodes: map[string]*domain.Node{
			"root": {ID: "root", Text: "Begin", IllustrationURL: "art://root", Choices: []domain.Choice{
				{ID: "c1", Text: "On", NextNodeID: "end", Chosen: true, Outcome: domain.OutcomeFavorable, Rationale: "hope"},
				{ID: "c2", Text: "Wait", Outcome: domain.OutcomeNone},
			}},
			"end": {ID: "end", Text: "Fin", Choices: []domain.Choice{}},
		},
		StartNodeID: "root",
		EndNodeIDs:  []string{"end"},
		Thresholds:  domain.Thresholds{Favorable: 2, Unfavorable: 3, Mixed: 4},
	}
}

// RunStoryStoreContract runs a suite of tests to verify that a StoryStore implementation
// adheres to the defined interface contract.
func RunStoryStoreContract(t *testing.T, store StoryStore) {
	ctx := context.Background()
	storyID := "contract-story-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		story := contractStory(storyID)

		err := store.Save(ctx, story)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, storyID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, story, loaded)
	})

	t.Run("Loaded copy is isolated", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, contractStory(storyID)))

		loaded, err := store.Load(ctx, storyID)
		require.NoError(t, err)
		loaded.Nodes["root"].Choices[0].NextNodeID = ""

		again, err := store.Load(ctx, storyID)
		require.NoError(t, err)
		assert.Equal(t, "end", again.Nodes["root"].Choices[0].NextNodeID)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+storyID)
		assert.ErrorIs(t, err, domain.ErrStoryNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, contractStory(storyID)))

		err := store.Delete(ctx, storyID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, storyID)
		assert.ErrorIs(t, err, domain.ErrStoryNotFound, "Load after Delete should return ErrStoryNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := storyID + "-1"
		id2 := storyID + "-2"
		_ = store.Save(ctx, contractStory(id1))
		_ = store.Save(ctx, contractStory(id2))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		stories, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, stories, id1)
		assert.Contains(t, stories, id2)
	})
}
