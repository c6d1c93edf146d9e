package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/folio/pkg/domain"
)

// Store implements ports.StoryStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*domain.Story
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*domain.Story),
	}
}

// Save persists a deep copy of the story in memory.
func (s *Store) Save(ctx context.Context, story *domain.Story) error {
	if err := story.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[story.ID] = story.Clone()
	return nil
}

// Load retrieves a copy of the story so callers can't mutate the stored snapshot.
func (s *Store) Load(ctx context.Context, storyID string) (*domain.Story, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	story, ok := s.data[storyID]
	if !ok {
		return nil, domain.ErrStoryNotFound
	}
	return story.Clone(), nil
}

// Delete removes the story.
func (s *Store) Delete(ctx context.Context, storyID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, storyID)
	return nil
}

// List returns stored story IDs in lexical order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
