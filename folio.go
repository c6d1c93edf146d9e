package folio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/aretw0/folio/internal/logging"
	"github.com/aretw0/folio/internal/metrics"
	"github.com/aretw0/folio/pkg/adapters/memory"
	"github.com/aretw0/folio/pkg/domain"
	"github.com/aretw0/folio/pkg/graph"
	"github.com/aretw0/folio/pkg/layout"
	"github.com/aretw0/folio/pkg/ports"
	"github.com/aretw0/folio/pkg/session"
)

// ErrNoProducer is returned by Expand when the engine has no content producer.
var ErrNoProducer = errors.New("no content producer configured")

// Engine is the high-level entry point for the Folio library.
// It runs the pure graph and layout algorithms over stories kept in a StoryStore,
// serializing every structural mutation per story.
type Engine struct {
	manager  *session.Manager
	store    ports.StoryStore
	locker   ports.DistributedLocker
	lockTTL  time.Duration
	producer ports.Producer
	ids      graph.IDGenerator
	hooks    domain.LifecycleHooks
	logger   *slog.Logger

	mu         sync.RWMutex
	layout     layout.Config
	thresholds domain.Thresholds
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithStore sets the persistence backend (default: in-memory).
func WithStore(store ports.StoryStore) Option {
	return func(e *Engine) {
		e.store = store
	}
}

// WithLocker enables distributed locking across engine replicas sharing a store.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(e *Engine) {
		e.locker = locker
	}
}

// WithLockTTL sets the expiry of distributed locks. Hosts with slow producers should
// set it above the producer timeout.
func WithLockTTL(ttl time.Duration) Option {
	return func(e *Engine) {
		e.lockTTL = ttl
	}
}

// WithProducer sets the content producer used by Expand.
func WithProducer(p ports.Producer) Option {
	return func(e *Engine) {
		e.producer = p
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLayout sets the physical page budget.
func WithLayout(cfg layout.Config) Option {
	return func(e *Engine) {
		e.layout = cfg
	}
}

// WithThresholds sets the ending thresholds given to stories created without their own.
func WithThresholds(t domain.Thresholds) Option {
	return func(e *Engine) {
		e.thresholds = t
	}
}

// WithIDGenerator replaces the UUID minting of node, choice and story IDs.
func WithIDGenerator(ids graph.IDGenerator) Option {
	return func(e *Engine) {
		e.ids = ids
	}
}

// New initializes a new Folio Engine.
func New(opts ...Option) *Engine {
	eng := &Engine{
		layout:     layout.DefaultConfig(),
		thresholds: domain.DefaultThresholds(),
	}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}
	if eng.store == nil {
		eng.store = memory.NewStore()
	}
	if eng.ids == nil {
		eng.ids = graph.NewID
	}

	mgrOpts := []session.Option{session.WithLogger(eng.logger)}
	if eng.locker != nil {
		mgrOpts = append(mgrOpts, session.WithLocker(eng.locker))
	}
	if eng.lockTTL > 0 {
		mgrOpts = append(mgrOpts, session.WithLockTTL(eng.lockTTL))
	}
	eng.manager = session.NewManager(eng.store, mgrOpts...)
	return eng
}

// SetLayout swaps the page budget at runtime (config hot reload).
func (e *Engine) SetLayout(cfg layout.Config) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.layout = cfg
}

// SetThresholds swaps the default thresholds at runtime.
func (e *Engine) SetThresholds(t domain.Thresholds) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.thresholds = t
}

func (e *Engine) settings() (layout.Config, domain.Thresholds) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.layout, e.thresholds
}

func (e *Engine) record(op, storyID string, err error) {
	metrics.Operation(op, err)
	if err != nil {
		e.logger.Debug("operation failed", "op", op, "story_id", storyID, "err", err)
	}
}

// Create seeds a new story from the producer-shaped first page and stores it.
func (e *Engine) Create(ctx context.Context, title, prompt string, first domain.Generated) (_ *domain.Story, err error) {
	defer func() { e.record("create", "", err) }()

	_, thresholds := e.settings()
	story := graph.NewStory(title, prompt, first, thresholds, e.ids)
	if err := e.manager.Create(ctx, story); err != nil {
		return nil, err
	}
	e.logger.Info("story created", "story_id", story.ID, "start", story.StartNodeID)
	return story, nil
}

// Put stores an externally built story, replacing any story with the same ID.
// The story must name a start node present in its node map.
func (e *Engine) Put(ctx context.Context, story *domain.Story) (err error) {
	if story == nil || story.ID == "" {
		err = fmt.Errorf("%w: story ID is required", domain.ErrInvalidStory)
		e.record("put", "", err)
		return err
	}
	defer func() { e.record("put", story.ID, err) }()

	if err := story.Validate(); err != nil {
		return err
	}
	if err := e.manager.Save(ctx, story); err != nil {
		return err
	}
	e.hooks.EmitGraphChange(ctx, domain.EventStoryEdited, story.ID)
	return nil
}

// Get loads a story.
func (e *Engine) Get(ctx context.Context, storyID string) (*domain.Story, error) {
	story, err := e.manager.Load(ctx, storyID)
	e.record("get", storyID, err)
	return story, err
}

// List returns the IDs of all stored stories.
func (e *Engine) List(ctx context.Context) ([]string, error) {
	ids, err := e.manager.List(ctx)
	e.record("list", "", err)
	return ids, err
}

// Remove deletes a whole story from the store.
func (e *Engine) Remove(ctx context.Context, storyID string) error {
	err := e.manager.Delete(ctx, storyID)
	e.record("remove", storyID, err)
	return err
}

// Pages returns the logical page number of every node: breadth-first from the start,
// then orphans in id order.
func (e *Engine) Pages(ctx context.Context, storyID string) (map[string]int, error) {
	story, err := e.manager.Load(ctx, storyID)
	e.record("pages", storyID, err)
	if err != nil {
		return nil, err
	}
	return graph.AssignPageNumbers(story.Nodes, story.StartNodeID), nil
}

// ScoreResult is the outcome tally of the canonical path to a node.
type ScoreResult struct {
	NodeID string        `json:"node_id"`
	Path   []string      `json:"path"`
	Scores domain.Scores `json:"scores"`
	// MustEnd reports whether the node has exhausted a threshold, so anything written
	// after it has to conclude the story.
	MustEnd bool `json:"must_end"`
}

// Score walks the parent map from nodeID back to the start. Unreachable nodes score zero
// with an empty path.
func (e *Engine) Score(ctx context.Context, storyID, nodeID string) (_ ScoreResult, err error) {
	defer func() { e.record("score", storyID, err) }()

	story, err := e.manager.Load(ctx, storyID)
	if err != nil {
		return ScoreResult{}, err
	}
	if story.Node(nodeID) == nil {
		return ScoreResult{}, fmt.Errorf("score '%s': %w", nodeID, domain.ErrNodeNotFound)
	}

	parents := graph.BuildParentMap(story)
	return ScoreResult{
		NodeID:  nodeID,
		Path:    graph.Path(story, nodeID, parents),
		Scores:  graph.ScorePath(story, nodeID, parents),
		MustEnd: graph.MustEnd(story, nodeID),
	}, nil
}

// LayoutOptions controls book assembly.
type LayoutOptions struct {
	Shuffle bool
	// Seed makes the shuffle reproducible. Nil draws from the global source.
	Seed *uint64
}

// Layout paginates a story into physical pages, optionally shuffling node groups.
func (e *Engine) Layout(ctx context.Context, storyID string, opts LayoutOptions) (_ []domain.Page, err error) {
	defer func() { e.record("layout", storyID, err) }()

	story, err := e.manager.Load(ctx, storyID)
	if err != nil {
		return nil, err
	}

	cfg, _ := e.settings()
	pages := layout.Layout(story, nil, cfg)
	if opts.Shuffle {
		var rng *rand.Rand
		if opts.Seed != nil {
			rng = rand.New(rand.NewPCG(*opts.Seed, *opts.Seed))
		}
		pages = layout.Shuffle(pages, rng)
	}

	metrics.LayoutPages(len(pages))
	e.hooks.EmitLayout(ctx, storyID, len(pages), opts.Shuffle)
	return pages, nil
}

// Delete removes nodeID and every node reachable from it through resolved choices,
// including descendants that another branch still leads to. It returns the removed IDs.
// The start node is refused with domain.ErrStartNodeProtected.
func (e *Engine) Delete(ctx context.Context, storyID, nodeID string) (_ []string, err error) {
	defer func() { e.record("delete", storyID, err) }()

	var removed []string
	_, err = e.manager.Update(ctx, storyID, func(_ context.Context, story *domain.Story) (*domain.Story, error) {
		next, ids, err := graph.DeleteNode(story, nodeID)
		if err != nil {
			return nil, err
		}
		removed = ids
		return next, nil
	})
	if err != nil {
		return nil, err
	}

	metrics.NodesDeleted(len(removed))
	e.logger.Info("nodes deleted", "story_id", storyID, "node_id", nodeID, "count", len(removed))
	e.hooks.EmitGraphChange(ctx, domain.EventNodesDeleted, storyID, removed...)
	return removed, nil
}

// EditFunc is a pure transformation of a story, typically one of the graph edit functions.
type EditFunc func(*domain.Story) (*domain.Story, error)

// Edit applies fn to the stored story under the story lock and saves the result.
func (e *Engine) Edit(ctx context.Context, storyID string, fn EditFunc) (_ *domain.Story, err error) {
	defer func() { e.record("edit", storyID, err) }()

	story, err := e.manager.Update(ctx, storyID, func(_ context.Context, s *domain.Story) (*domain.Story, error) {
		next, err := fn(s)
		if err != nil {
			return nil, err
		}
		if err := next.Validate(); err != nil {
			return nil, err
		}
		return next, nil
	})
	if err != nil {
		return nil, err
	}
	e.hooks.EmitGraphChange(ctx, domain.EventStoryEdited, storyID)
	return story, nil
}

// Expand follows the open stub choiceID on nodeID: it asks the producer for the next page
// and attaches it. The story lock is held across the producer call so a pending edge is
// never generated twice. Returns the updated story and the new node ID.
func (e *Engine) Expand(ctx context.Context, storyID, nodeID, choiceID string) (_ *domain.Story, _ string, err error) {
	defer func() { e.record("expand", storyID, err) }()

	if e.producer == nil {
		return nil, "", ErrNoProducer
	}

	var newID string
	story, err := e.manager.Update(ctx, storyID, func(ctx context.Context, story *domain.Story) (*domain.Story, error) {
		node := story.Node(nodeID)
		if node == nil {
			return nil, fmt.Errorf("expand '%s': %w", nodeID, domain.ErrNodeNotFound)
		}
		if idx := node.Choice(choiceID); idx >= 0 && story.Node(node.Choices[idx].NextNodeID) != nil {
			return nil, fmt.Errorf("expand '%s': %w", choiceID, domain.ErrChoiceResolved)
		}

		req, err := graph.PrepareRequest(story, nodeID, choiceID)
		if err != nil {
			return nil, err
		}

		start := time.Now()
		gen, err := e.producer.Generate(ctx, req)
		metrics.Generation(start, err)
		if err != nil {
			return nil, fmt.Errorf("generate page for '%s': %w", choiceID, err)
		}
		// The producer may ignore MustEnd; the threshold still decides.
		if req.MustEnd {
			gen.Ending = true
			gen.Choices = nil
		}

		// A writer that got past an expired lock may have resolved the edge meanwhile.
		current, err := e.manager.Store().Load(ctx, storyID)
		if err != nil {
			return nil, err
		}
		next, id, err := graph.Attach(current, nodeID, choiceID, gen, e.ids)
		if err != nil {
			return nil, err
		}
		newID = id
		return next, nil
	})
	if err != nil {
		return nil, "", err
	}

	e.logger.Info("page attached", "story_id", storyID, "from", nodeID, "choice", choiceID, "node_id", newID)
	e.hooks.EmitGraphChange(ctx, domain.EventNodeAttached, storyID, newID)
	return story, newID, nil
}

// Inspect reports structural defects of a stored story.
func (e *Engine) Inspect(ctx context.Context, storyID string) (domain.Report, error) {
	story, err := e.manager.Load(ctx, storyID)
	e.record("inspect", storyID, err)
	if err != nil {
		return domain.Report{}, err
	}
	return graph.Inspect(story), nil
}
