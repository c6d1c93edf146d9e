package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/folio/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

const defaultPrefix = "folio:story:"

// farFuture scores index entries of stories that never expire (2100-01-01).
const farFuture = 4102444800

// Store implements ports.StoryStore using Redis.
// Stories are kept as JSON strings with a sorted-set index for listing.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*Store)

// WithTTL sets the expiration for stories.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix for stories.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: defaultPrefix,
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// Client exposes the underlying client so a Locker can share the connection.
func (s *Store) Client() *backend.Client {
	return s.client
}

func (s *Store) key(storyID string) string {
	return s.prefix + storyID
}

func (s *Store) indexKey() string {
	return s.prefix + "index"
}

// Save persists the story to Redis.
func (s *Store) Save(ctx context.Context, story *domain.Story) error {
	if err := story.Validate(); err != nil {
		return err
	}
	data, err := json.Marshal(story)
	if err != nil {
		return fmt.Errorf("failed to marshal story: %w", err)
	}

	score := float64(time.Now().Add(s.ttl).Unix())
	if s.ttl == 0 {
		score = farFuture
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.key(story.ID), data, s.ttl)
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{
		Score:  score,
		Member: story.ID,
	})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Load retrieves the story from Redis.
func (s *Store) Load(ctx context.Context, storyID string) (*domain.Story, error) {
	val, err := s.client.Get(ctx, s.key(storyID)).Result()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, domain.ErrStoryNotFound
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	var story domain.Story
	if err := json.Unmarshal([]byte(val), &story); err != nil {
		return nil, fmt.Errorf("failed to unmarshal story: %w", err)
	}
	return &story, nil
}

// Delete removes the story and its index entry.
func (s *Store) Delete(ctx context.Context, storyID string) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, s.key(storyID))
	pipe.ZRem(ctx, s.indexKey(), storyID)

	_, err := pipe.Exec(ctx)
	return err
}

// List returns stored story IDs, pruning expired index entries first.
func (s *Store) List(ctx context.Context) ([]string, error) {
	now := float64(time.Now().Unix())
	err := s.client.ZRemRangeByScore(ctx, s.indexKey(), "-inf", fmt.Sprintf("%f", now)).Err()
	if err != nil {
		return nil, fmt.Errorf("failed to prune expired stories: %w", err)
	}

	ids, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list stories: %w", err)
	}
	return ids, nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
