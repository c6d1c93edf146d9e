package loam

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/folio/pkg/domain"
	"github.com/aretw0/loam"
)

// Importer builds a Story from a directory of page documents (Markdown with frontmatter,
// JSON or YAML) managed by Loam. Each document is one node.
type Importer struct {
	Repo *loam.TypedRepository[PageMetadata]
}

// New creates a new Loam importer over an existing repository.
func New(repo *loam.TypedRepository[PageMetadata]) *Importer {
	return &Importer{
		Repo: repo,
	}
}

// Open initializes a read-only Loam repository rooted at dir.
func Open(dir string) (*Importer, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}

	// Strict mode keeps numeric frontmatter consistent across serializers; read-only
	// stops Loam from sandboxing the directory.
	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}
	return New(loam.NewTypedRepository[PageMetadata](repo)), nil
}

// Import reads every document and assembles them into a story with the given ID.
// The root is the page flagged "start: true", falling back to a page with ID "start".
func (i *Importer) Import(ctx context.Context, storyID string) (*domain.Story, error) {
	docs, err := i.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	story := &domain.Story{
		ID:    storyID,
		Nodes: make(map[string]*domain.Node, len(docs)),
	}
	seen := make(map[string]string, len(docs))

	for _, entry := range docs {
		// List carries metadata only; the page body needs a full read.
		doc, err := i.Repo.Get(ctx, entry.ID)
		if err != nil {
			return nil, fmt.Errorf("loam get failed for %s: %w", entry.ID, err)
		}
		meta := doc.Data
		rawID := meta.ID
		if rawID == "" {
			rawID = doc.ID
		}
		id := trimExtension(rawID)

		if existing, ok := seen[id]; ok {
			return nil, fmt.Errorf("collision detected: ID '%s' is defined in both '%s' and '%s'", id, existing, doc.ID)
		}
		seen[id] = doc.ID

		story.Nodes[id] = &domain.Node{
			ID:              id,
			Text:            strings.TrimSpace(doc.Content),
			IllustrationURL: meta.Illustration,
			Choices:         buildChoices(id, meta.Choices),
		}
		if meta.Ending {
			story.MarkEnding(id)
		}
		if meta.Start {
			if story.StartNodeID != "" {
				return nil, fmt.Errorf("%w: both '%s' and '%s' are marked as start", domain.ErrInvalidStory, story.StartNodeID, id)
			}
			story.StartNodeID = id
			applyStoryMeta(story, meta)
		}
	}

	if story.StartNodeID == "" && story.Nodes["start"] != nil {
		story.StartNodeID = "start"
	}
	sort.Strings(story.EndNodeIDs)

	if err := story.Validate(); err != nil {
		return nil, fmt.Errorf("import %s: %w", storyID, err)
	}
	return story, nil
}

func buildChoices(nodeID string, metas []ChoiceMetadata) []domain.Choice {
	choices := make([]domain.Choice, 0, len(metas))
	for idx, m := range metas {
		target := m.To
		if target == "" {
			target = m.NextNodeID
		}
		target = trimExtension(target)

		id := m.ID
		if id == "" {
			id = fmt.Sprintf("%s-%d", nodeID, idx+1)
		}

		// A linked choice is considered followed unless stated otherwise.
		chosen := target != ""
		if m.Chosen != nil {
			chosen = *m.Chosen
		}

		choices = append(choices, domain.Choice{
			ID:         id,
			Text:       m.Text,
			NextNodeID: target,
			Chosen:     chosen,
			Outcome:    domain.Outcome(strings.ToLower(m.Outcome)).Normalize(),
			Rationale:  m.Rationale,
		})
	}
	return choices
}

func applyStoryMeta(story *domain.Story, meta PageMetadata) {
	story.Title = meta.Title
	story.Prompt = meta.Prompt
	story.CoverURL = meta.Cover
	if t := meta.Thresholds; t != nil {
		story.Thresholds = domain.Thresholds{
			Favorable:   t.Favorable,
			Unfavorable: t.Unfavorable,
			Mixed:       t.Mixed,
		}
	}
}

func trimExtension(id string) string {
	if id == "" {
		return ""
	}
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}
