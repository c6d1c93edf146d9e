package session_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/folio/pkg/adapters/memory"
	"github.com/aretw0/folio/pkg/domain"
	"github.com/aretw0/folio/pkg/dsl"
	"github.com/aretw0/folio/pkg/ports"
	"github.com/aretw0/folio/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// SlowStore simulates latency to provoke lost updates if locking is missing.
type SlowStore struct {
	*memory.Store
}

func (s SlowStore) Load(ctx context.Context, id string) (*domain.Story, error) {
	time.Sleep(5 * time.Millisecond)
	return s.Store.Load(ctx, id)
}

func (s SlowStore) Save(ctx context.Context, story *domain.Story) error {
	time.Sleep(5 * time.Millisecond)
	return s.Store.Save(ctx, story)
}

func seed(id string) *domain.Story {
	b := dsl.New(id)
	b.Add("start").Text("")
	return b.MustBuild()
}

func TestManager_UpdateSerializes(t *testing.T) {
	manager := session.NewManager(SlowStore{memory.NewStore()})
	ctx := context.Background()
	require.NoError(t, manager.Save(ctx, seed("race")))

	var wg sync.WaitGroup
	writers := 10
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := manager.Update(ctx, "race", func(_ context.Context, s *domain.Story) (*domain.Story, error) {
				s.Nodes["start"].Text += "x"
				return s, nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	story, err := manager.Load(ctx, "race")
	require.NoError(t, err)
	assert.Len(t, story.Nodes["start"].Text, writers, "every read-modify-write must survive")
}

func TestManager_UpdateFailureSavesNothing(t *testing.T) {
	manager := session.NewManager(memory.NewStore())
	ctx := context.Background()
	require.NoError(t, manager.Save(ctx, seed("s")))

	boom := errors.New("boom")
	_, err := manager.Update(ctx, "s", func(_ context.Context, s *domain.Story) (*domain.Story, error) {
		s.Nodes["start"].Text = "changed"
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)

	story, err := manager.Load(ctx, "s")
	require.NoError(t, err)
	assert.Empty(t, story.Nodes["start"].Text)
}

func TestManager_UpdateMissing(t *testing.T) {
	manager := session.NewManager(memory.NewStore())

	_, err := manager.Update(context.Background(), "ghost", func(_ context.Context, s *domain.Story) (*domain.Story, error) {
		return s, nil
	})
	assert.ErrorIs(t, err, domain.ErrStoryNotFound)
}

func TestManager_CreateRefusesOverwrite(t *testing.T) {
	manager := session.NewManager(memory.NewStore())
	ctx := context.Background()

	require.NoError(t, manager.Create(ctx, seed("once")))
	err := manager.Create(ctx, seed("once"))
	assert.ErrorIs(t, err, domain.ErrInvalidStory)
}

type recordingLocker struct {
	mu       sync.Mutex
	locked   []string
	released int
	fail     error
}

func (l *recordingLocker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	if l.fail != nil {
		return nil, l.fail
	}
	l.mu.Lock()
	l.locked = append(l.locked, key)
	l.mu.Unlock()
	return func(ctx context.Context) error {
		l.mu.Lock()
		l.released++
		l.mu.Unlock()
		return nil
	}, nil
}

func TestManager_DistributedLocker(t *testing.T) {
	locker := &recordingLocker{}
	manager := session.NewManager(memory.NewStore(), session.WithLocker(locker), session.WithLockTTL(time.Second))
	ctx := context.Background()

	require.NoError(t, manager.Save(ctx, seed("shared")))
	_, err := manager.Load(ctx, "shared")
	require.NoError(t, err)

	assert.Equal(t, []string{"shared", "shared"}, locker.locked)
	assert.Equal(t, 2, locker.released)

	locker.fail = errors.New("redis down")
	err = manager.Save(ctx, seed("shared"))
	assert.ErrorContains(t, err, "failed to acquire distributed lock")
}
