package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"log/slog"

	"github.com/aretw0/folio/internal/logging"
	"github.com/aretw0/folio/pkg/domain"
	"github.com/aretw0/folio/pkg/ports"
)

// DefaultLockTTL bounds how long a distributed lock survives a crashed holder.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates story access, ensuring safe concurrent operations.
// It uses reference counting to garbage collect unused locks.
type Manager struct {
	store ports.StoryStore

	mu    sync.Mutex            // guards locks
	locks map[string]*lockEntry // active per-story locks

	locker  ports.DistributedLocker
	lockTTL time.Duration
	logger  *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the expiry passed to the distributed locker.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.lockTTL = ttl
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a new Manager over the given store.
func NewManager(store ports.StoryStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST lock entry.mu and call release(storyID) after unlocking.
func (m *Manager) acquire(storyID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[storyID]
	if !exists {
		entry = &lockEntry{}
		m.locks[storyID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(storyID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[storyID]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, storyID)
	}
}

// Load retrieves a story from the store.
func (m *Manager) Load(ctx context.Context, storyID string) (*domain.Story, error) {
	var story *domain.Story
	err := m.WithLock(ctx, storyID, func(ctx context.Context) error {
		var err error
		story, err = m.store.Load(ctx, storyID)
		return err
	})
	return story, err
}

// Save persists the story.
func (m *Manager) Save(ctx context.Context, story *domain.Story) error {
	return m.WithLock(ctx, story.ID, func(ctx context.Context) error {
		return m.store.Save(ctx, story)
	})
}

// Create saves a new story, refusing to overwrite an existing one.
func (m *Manager) Create(ctx context.Context, story *domain.Story) error {
	return m.WithLock(ctx, story.ID, func(ctx context.Context) error {
		_, err := m.store.Load(ctx, story.ID)
		if err == nil {
			return fmt.Errorf("%w: story %q already exists", domain.ErrInvalidStory, story.ID)
		}
		if !errors.Is(err, domain.ErrStoryNotFound) {
			return fmt.Errorf("failed to check story existence: %w", err)
		}
		return m.store.Save(ctx, story)
	})
}

// Update runs fn on the stored story and persists its result, all under the story lock.
// When fn fails nothing is saved.
func (m *Manager) Update(ctx context.Context, storyID string, fn func(context.Context, *domain.Story) (*domain.Story, error)) (*domain.Story, error) {
	var updated *domain.Story
	err := m.WithLock(ctx, storyID, func(ctx context.Context) error {
		story, err := m.store.Load(ctx, storyID)
		if err != nil {
			return err
		}
		next, err := fn(ctx, story)
		if err != nil {
			return err
		}
		if err := m.store.Save(ctx, next); err != nil {
			return fmt.Errorf("failed to save story: %w", err)
		}
		updated = next
		return nil
	})
	return updated, err
}

// Delete removes the story from the store.
func (m *Manager) Delete(ctx context.Context, storyID string) error {
	return m.WithLock(ctx, storyID, func(ctx context.Context) error {
		return m.store.Delete(ctx, storyID)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying story store.
func (m *Manager) Store() ports.StoryStore {
	return m.store
}

// WithLock executes fn while holding the lock for the story.
func (m *Manager) WithLock(ctx context.Context, storyID string, fn func(context.Context) error) error {
	entry := m.acquire(storyID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(storyID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, storyID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			// A canceled ctx must not strand the lock until TTL.
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"story_id", storyID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
