package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/folio/pkg/domain"
	"gopkg.in/yaml.v3"
)

// Format selects the on-disk encoding of a story file.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Store implements ports.StoryStore using the local filesystem.
// It stores each story as one file in a configured directory.
type Store struct {
	BasePath string
	Format   Format
}

// Option configures a Store.
type Option func(*Store)

// WithFormat selects JSON (default) or YAML files.
func WithFormat(f Format) Option {
	return func(s *Store) {
		s.Format = f
	}
}

// New creates a new Store with the given base path.
// If basePath is empty, it defaults to ".folio/stories".
func New(basePath string, opts ...Option) *Store {
	if basePath == "" {
		basePath = filepath.Join(".folio", "stories")
	}
	s := &Store{BasePath: basePath, Format: FormatJSON}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) ext() string {
	if s.Format == FormatYAML {
		return ".yaml"
	}
	return ".json"
}

func (s *Store) path(storyID string) string {
	return filepath.Join(s.BasePath, storyID+s.ext())
}

// Save persists the story atomically.
// It writes to a temporary file first, syncs via fsync, and then renames it to the destination.
func (s *Store) Save(ctx context.Context, story *domain.Story) error {
	if story == nil || story.ID == "" {
		return fmt.Errorf("story ID cannot be empty")
	}
	if err := story.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(s.BasePath, 0755); err != nil {
		return fmt.Errorf("failed to ensure story directory: %w", err)
	}

	data, err := Encode(story, s.Format)
	if err != nil {
		return err
	}

	// Same directory keeps the rename on one filesystem.
	tmpFile, err := os.CreateTemp(s.BasePath, "tmp-"+story.ID+"-*"+s.ext())
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	// Windows cannot rename an open file.
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	destPath := s.path(story.ID)
	if _, err := os.Stat(destPath); err == nil {
		if err := os.Remove(destPath); err != nil {
			return fmt.Errorf("failed to remove existing story file for overwrite: %w", err)
		}
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file to story: %w", err)
	}
	return nil
}

// Load retrieves the story from its file.
func (s *Store) Load(ctx context.Context, storyID string) (*domain.Story, error) {
	if storyID == "" {
		return nil, fmt.Errorf("story ID cannot be empty")
	}

	data, err := os.ReadFile(s.path(storyID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrStoryNotFound
		}
		return nil, fmt.Errorf("failed to read story file: %w", err)
	}
	return Decode(data, s.Format)
}

// Delete removes the story file.
func (s *Store) Delete(ctx context.Context, storyID string) error {
	if storyID == "" {
		return fmt.Errorf("story ID cannot be empty")
	}

	err := os.Remove(s.path(storyID))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete story file: %w", err)
	}
	return nil
}

// List returns all stored story IDs.
func (s *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list stories: %w", err)
	}

	ext := s.ext()
	var ids []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ext || strings.HasPrefix(name, "tmp-") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ext))
	}
	sort.Strings(ids)
	return ids, nil
}

// Encode serializes a story in the given format.
func Encode(story *domain.Story, format Format) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	switch format {
	case FormatYAML:
		data, err = yaml.Marshal(story)
	default:
		data, err = json.MarshalIndent(story, "", "  ")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to marshal story: %w", err)
	}
	return data, nil
}

// Decode parses a story document and validates it.
func Decode(data []byte, format Format) (*domain.Story, error) {
	var story domain.Story
	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &story)
	default:
		err = json.Unmarshal(data, &story)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal story: %w", err)
	}
	if err := story.Validate(); err != nil {
		return nil, fmt.Errorf("story %q: %w", story.ID, err)
	}
	return &story, nil
}

// FormatOf infers the encoding from a file extension.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// ReadFile loads a single story document from disk, picking the decoder by extension.
func ReadFile(path string) (*domain.Story, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Decode(data, FormatOf(path))
}
