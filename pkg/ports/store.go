package ports

import (
	"context"

	"github.com/aretw0/folio/pkg/domain"
)

// StoryStore defines the interface for persisting stories.
// Stores hold whole snapshots: every structural edit is saved as one replacement.
type StoryStore interface {
	// Save persists the story under story.ID.
	Save(ctx context.Context, story *domain.Story) error

	// Load retrieves the story with the given ID.
	// Returns domain.ErrStoryNotFound if the story does not exist.
	Load(ctx context.Context, storyID string) (*domain.Story, error)

	// Delete removes the story with the given ID.
	Delete(ctx context.Context, storyID string) error

	// List returns the IDs of all stored stories.
	List(ctx context.Context) ([]string, error)
}
