package loam

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/folio/pkg/domain"
	"github.com/aretw0/loam"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRepo(t *testing.T, files map[string]string) *Importer {
	t.Helper()
	tmpDir := t.TempDir()
	repo, err := loam.Init(tmpDir, loam.WithVersioning(false))
	require.NoError(t, err)

	for filename, content := range files {
		err := os.WriteFile(filepath.Join(tmpDir, filename), []byte(content), 0644)
		require.NoError(t, err)
	}
	return New(loam.NewTypedRepository[PageMetadata](repo))
}

func TestImporter_Import(t *testing.T) {
	importer := setupRepo(t, map[string]string{
		"gate.md": `---
start: true
title: The Gate
prompt: A traveller at a gate.
thresholds:
  favorable: 2
  unfavorable: 2
  mixed: 2
choices:
  - id: knock
    text: Knock
    to: hall.md
    outcome: Favorable
  - text: Leave
    outcome: unfavorable
---
A gate looms.
`,
		"hall.md": `---
ending: true
---
Warm light inside.`,
	})

	story, err := importer.Import(context.Background(), "gate-story")
	require.NoError(t, err)

	assert.Equal(t, "gate-story", story.ID)
	assert.Equal(t, "gate", story.StartNodeID)
	assert.Equal(t, "The Gate", story.Title)
	assert.Equal(t, domain.Thresholds{Favorable: 2, Unfavorable: 2, Mixed: 2}, story.Thresholds)
	assert.Equal(t, []string{"hall"}, story.EndNodeIDs)

	gate := story.Nodes["gate"]
	require.NotNil(t, gate)
	assert.Equal(t, "A gate looms.", gate.Text)
	require.Len(t, gate.Choices, 2)

	assert.Equal(t, "hall", gate.Choices[0].NextNodeID)
	assert.True(t, gate.Choices[0].Chosen)
	assert.Equal(t, domain.OutcomeFavorable, gate.Choices[0].Outcome)

	assert.Equal(t, "gate-2", gate.Choices[1].ID)
	assert.False(t, gate.Choices[1].Resolved())
	assert.False(t, gate.Choices[1].Chosen)

	hall := story.Nodes["hall"]
	require.NotNil(t, hall)
	assert.Equal(t, "Warm light inside.", hall.Text)
}

func TestImporter_FallsBackToStartID(t *testing.T) {
	importer := setupRepo(t, map[string]string{
		"start.md": "---\nid: start\n---\nBegin",
	})

	story, err := importer.Import(context.Background(), "s")
	require.NoError(t, err)
	assert.Equal(t, "start", story.StartNodeID)
}

func TestImporter_MissingStart(t *testing.T) {
	importer := setupRepo(t, map[string]string{
		"a.md": "---\nid: a\n---\nA",
	})

	_, err := importer.Import(context.Background(), "s")
	assert.ErrorIs(t, err, domain.ErrInvalidStory)
}

func TestImporter_DuplicateStart(t *testing.T) {
	importer := setupRepo(t, map[string]string{
		"a.md": "---\nstart: true\n---\nA",
		"b.md": "---\nstart: true\n---\nB",
	})

	_, err := importer.Import(context.Background(), "s")
	assert.ErrorIs(t, err, domain.ErrInvalidStory)
}
