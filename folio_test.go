package folio_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/folio"
	"github.com/aretw0/folio/pkg/adapters/memory"
	"github.com/aretw0/folio/pkg/adapters/redis"
	"github.com/aretw0/folio/pkg/domain"
	"github.com/aretw0/folio/pkg/dsl"
	"github.com/aretw0/folio/pkg/graph"
	"github.com/aretw0/folio/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sequence() graph.IDGenerator {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("n%d", n)
	}
}

type scriptedProducer struct {
	mu       sync.Mutex
	requests []domain.GenerationRequest
	reply    domain.Generated
}

func (p *scriptedProducer) Generate(ctx context.Context, req domain.GenerationRequest) (domain.Generated, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.requests = append(p.requests, req)
	return p.reply, nil
}

var opening = domain.Generated{
	Text: "You wake in a cellar.",
	Choices: []domain.GeneratedChoice{
		{Text: "Climb the stairs", Outcome: domain.OutcomeFavorable},
		{Text: "Search the barrels", Outcome: domain.OutcomeUnfavorable},
	},
}

func TestEngine_CreateAndExpand(t *testing.T) {
	producer := &scriptedProducer{reply: domain.Generated{
		Text:    "A kitchen, still warm.",
		Choices: []domain.GeneratedChoice{{Text: "Eat", Outcome: domain.OutcomeMixed}},
	}}
	eng := folio.New(folio.WithProducer(producer), folio.WithIDGenerator(sequence()))
	ctx := context.Background()

	story, err := eng.Create(ctx, "Cellar", "Escape the house.", opening)
	require.NoError(t, err)
	require.Equal(t, "n4", story.ID)
	require.Equal(t, "n1", story.StartNodeID)

	updated, newID, err := eng.Expand(ctx, story.ID, "n1", "n2")
	require.NoError(t, err)
	assert.Equal(t, "n5", newID)
	assert.Equal(t, "n5", updated.Nodes["n1"].Choices[0].NextNodeID)
	assert.True(t, updated.Nodes["n1"].Choices[0].Chosen)

	require.Len(t, producer.requests, 1)
	req := producer.requests[0]
	assert.Equal(t, "You wake in a cellar.", req.NodeText)
	assert.Equal(t, "Climb the stairs", req.Choice)
	assert.Equal(t, domain.Scores{Favorable: 1}, req.Scores)
	assert.False(t, req.MustEnd)

	pages, err := eng.Pages(ctx, story.ID)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"n1": 1, "n5": 2}, pages)

	score, err := eng.Score(ctx, story.ID, "n5")
	require.NoError(t, err)
	assert.Equal(t, []string{"n1", "n5"}, score.Path)
	assert.Equal(t, domain.Scores{Favorable: 1}, score.Scores)
	assert.False(t, score.MustEnd)
}

func TestEngine_ExpandRejectsResolvedChoice(t *testing.T) {
	producer := &scriptedProducer{reply: domain.Generated{Text: "x"}}
	eng := folio.New(folio.WithProducer(producer), folio.WithIDGenerator(sequence()))
	ctx := context.Background()

	story, err := eng.Create(ctx, "t", "p", opening)
	require.NoError(t, err)

	_, _, err = eng.Expand(ctx, story.ID, "n1", "n2")
	require.NoError(t, err)

	_, _, err = eng.Expand(ctx, story.ID, "n1", "n2")
	assert.ErrorIs(t, err, domain.ErrChoiceResolved)
	assert.Len(t, producer.requests, 1, "a resolved edge must not reach the producer")
}

func TestEngine_ExpandWithoutProducer(t *testing.T) {
	eng := folio.New()
	_, _, err := eng.Expand(context.Background(), "s", "a", "b")
	assert.ErrorIs(t, err, folio.ErrNoProducer)
}

func TestEngine_ExpandForcesEndingAtThreshold(t *testing.T) {
	producer := &scriptedProducer{reply: domain.Generated{
		Text:    "The stairs lead outside.",
		Choices: []domain.GeneratedChoice{{Text: "Keep going"}},
	}}
	eng := folio.New(
		folio.WithProducer(producer),
		folio.WithIDGenerator(sequence()),
		folio.WithThresholds(domain.Thresholds{Favorable: 1, Unfavorable: 3, Mixed: 3}),
	)
	ctx := context.Background()

	story, err := eng.Create(ctx, "t", "p", opening)
	require.NoError(t, err)

	updated, newID, err := eng.Expand(ctx, story.ID, "n1", "n2")
	require.NoError(t, err)

	assert.True(t, producer.requests[0].MustEnd)
	assert.True(t, updated.IsEnding(newID))
	assert.Empty(t, updated.Nodes[newID].Choices)
}

func cave() *domain.Story {
	b := dsl.New("cave")
	b.Add("entrance").
		Text("A dark mouth in the hill.").
		Go("in", "Enter", "hall", domain.OutcomeMixed).
		Go("around", "Walk around", "ledge", domain.OutcomeFavorable)
	b.Add("hall").Text("Dripping water.").Go("down", "Descend", "pit", domain.OutcomeUnfavorable)
	b.Add("ledge").Text("Wind and a view.").Go("back", "Return", "entrance", domain.OutcomeNone)
	b.Add("pit").Text("Darkness.").Ending()
	return b.MustBuild()
}

func TestEngine_Delete(t *testing.T) {
	var events []*domain.GraphEvent
	eng := folio.New(folio.WithLifecycleHooks(domain.LifecycleHooks{
		OnGraphChange: func(ctx context.Context, e *domain.GraphEvent) { events = append(events, e) },
	}))
	ctx := context.Background()
	require.NoError(t, eng.Put(ctx, cave()))

	_, err := eng.Delete(ctx, "cave", "entrance")
	assert.ErrorIs(t, err, domain.ErrStartNodeProtected)

	removed, err := eng.Delete(ctx, "cave", "hall")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"hall", "pit"}, removed)

	story, err := eng.Get(ctx, "cave")
	require.NoError(t, err)
	assert.NotContains(t, story.Nodes, "pit")
	assert.False(t, story.Nodes["entrance"].Choices[0].Resolved())
	assert.NotContains(t, story.EndNodeIDs, "pit")

	require.Len(t, events, 2)
	assert.Equal(t, domain.EventStoryEdited, events[0].Type)
	assert.Equal(t, domain.EventNodesDeleted, events[1].Type)
}

func TestEngine_Layout(t *testing.T) {
	var layouts []*domain.LayoutEvent
	eng := folio.New(folio.WithLifecycleHooks(domain.LifecycleHooks{
		OnLayout: func(ctx context.Context, e *domain.LayoutEvent) { layouts = append(layouts, e) },
	}))
	ctx := context.Background()
	require.NoError(t, eng.Put(ctx, cave()))

	pages, err := eng.Layout(ctx, "cave", folio.LayoutOptions{})
	require.NoError(t, err)
	require.Len(t, pages, 6)
	assert.Equal(t, domain.PageCover, pages[0].Kind)
	assert.Equal(t, "entrance", pages[2].NodeID)

	seed := uint64(42)
	a, err := eng.Layout(ctx, "cave", folio.LayoutOptions{Shuffle: true, Seed: &seed})
	require.NoError(t, err)
	b, err := eng.Layout(ctx, "cave", folio.LayoutOptions{Shuffle: true, Seed: &seed})
	require.NoError(t, err)
	assert.Equal(t, a, b, "a seeded shuffle is reproducible")
	assert.Equal(t, "entrance", a[2].NodeID, "the start page stays first")

	require.Len(t, layouts, 3)
	assert.True(t, layouts[2].Shuffled)
	assert.Equal(t, 6, layouts[2].Pages)
}

func TestEngine_EditAndInspect(t *testing.T) {
	eng := folio.New()
	ctx := context.Background()
	require.NoError(t, eng.Put(ctx, cave()))

	story, err := eng.Edit(ctx, "cave", func(s *domain.Story) (*domain.Story, error) {
		return graph.SetText(s, "pit", "Light, far above.")
	})
	require.NoError(t, err)
	assert.Equal(t, "Light, far above.", story.Nodes["pit"].Text)

	_, err = eng.Edit(ctx, "cave", func(s *domain.Story) (*domain.Story, error) {
		return graph.SetText(s, "ghost", "")
	})
	assert.ErrorIs(t, err, domain.ErrNodeNotFound)

	report, err := eng.Inspect(ctx, "cave")
	require.NoError(t, err)
	assert.Equal(t, 4, report.Nodes)
	assert.Equal(t, 4, report.Reachable)
	assert.NoError(t, report.Err())
}

func TestEngine_Errors(t *testing.T) {
	eng := folio.New()
	ctx := context.Background()

	_, err := eng.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrStoryNotFound)

	err = eng.Put(ctx, &domain.Story{ID: "bad", StartNodeID: "x"})
	assert.ErrorIs(t, err, domain.ErrInvalidStory)

	err = eng.Put(ctx, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidStory)

	require.NoError(t, eng.Put(ctx, cave()))
	_, err = eng.Score(ctx, "cave", "ghost")
	assert.ErrorIs(t, err, domain.ErrNodeNotFound)
}

func TestEngine_ProducerFunc(t *testing.T) {
	var p ports.Producer = ports.ProducerFunc(func(ctx context.Context, req domain.GenerationRequest) (domain.Generated, error) {
		return domain.Generated{Text: "after " + req.Choice}, nil
	})
	eng := folio.New(folio.WithProducer(p), folio.WithIDGenerator(sequence()))
	ctx := context.Background()

	story, err := eng.Create(ctx, "t", "p", opening)
	require.NoError(t, err)

	updated, id, err := eng.Expand(ctx, story.ID, "n1", "n3")
	require.NoError(t, err)
	assert.Equal(t, "after Search the barrels", updated.Nodes[id].Text)
	assert.True(t, updated.IsEnding(id), "a page without choices ends the story")
}

func TestEngine_ExpandRechecksEdgeAfterGeneration(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	// Another writer resolves the same edge while the page is being generated.
	producer := ports.ProducerFunc(func(ctx context.Context, req domain.GenerationRequest) (domain.Generated, error) {
		story, err := store.Load(ctx, req.StoryID)
		if err != nil {
			return domain.Generated{}, err
		}
		other, _, err := graph.Attach(story, req.NodeID, req.ChoiceID, domain.Generated{Text: "The other writer's page."}, func() string { return "other" })
		if err != nil {
			return domain.Generated{}, err
		}
		if err := store.Save(ctx, other); err != nil {
			return domain.Generated{}, err
		}
		return domain.Generated{Text: "A page nobody will read."}, nil
	})

	eng := folio.New(folio.WithStore(store), folio.WithProducer(producer), folio.WithIDGenerator(sequence()))
	story, err := eng.Create(ctx, "t", "p", opening)
	require.NoError(t, err)

	_, _, err = eng.Expand(ctx, story.ID, "n1", "n2")
	assert.ErrorIs(t, err, domain.ErrChoiceResolved)

	stored, err := eng.Get(ctx, story.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Nodes, 2)
	assert.Equal(t, "other", stored.Nodes["n1"].Choices[0].NextNodeID)
	assert.Equal(t, "The other writer's page.", stored.Nodes["other"].Text)
}

func TestEngine_ExpandOnePendingEdgeAcrossReplicas(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	ctx := context.Background()

	var calls atomic.Int32
	started := make(chan struct{}, 2)
	proceed := make(chan struct{})
	producer := ports.ProducerFunc(func(ctx context.Context, req domain.GenerationRequest) (domain.Generated, error) {
		calls.Add(1)
		started <- struct{}{}
		<-proceed
		return domain.Generated{Text: "Upstairs."}, nil
	})

	replica := func() *folio.Engine {
		store := redis.New(mr.Addr(), "", 0)
		t.Cleanup(func() { _ = store.Close() })
		return folio.New(
			folio.WithStore(store),
			folio.WithLocker(redis.NewLocker(store.Client(), "folio:")),
			folio.WithLockTTL(time.Second),
			folio.WithProducer(producer),
		)
	}
	a, b := replica(), replica()

	story, err := a.Create(ctx, "t", "p", opening)
	require.NoError(t, err)
	choiceID := story.Nodes[story.StartNodeID].Choices[0].ID

	errs := make(chan error, 2)
	go func() {
		_, _, err := a.Expand(ctx, story.ID, story.StartNodeID, choiceID)
		errs <- err
	}()
	<-started
	go func() {
		_, _, err := b.Expand(ctx, story.ID, story.StartNodeID, choiceID)
		errs <- err
	}()

	time.Sleep(200 * time.Millisecond)
	close(proceed)

	var failures []error
	for range 2 {
		if err := <-errs; err != nil {
			failures = append(failures, err)
		}
	}
	require.Len(t, failures, 1)
	assert.ErrorIs(t, failures[0], domain.ErrChoiceResolved)
	assert.Equal(t, int32(1), calls.Load(), "one producer call per pending edge")

	stored, err := a.Get(ctx, story.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Nodes, 2)
}

func TestEngine_PagesAndDeleteCoverUnreachableAndSharedPages(t *testing.T) {
	b := dsl.New("fork")
	b.Add("r").
		Go("r-a", "Left", "a", domain.OutcomeNone).
		Go("r-b", "Right", "b", domain.OutcomeNone)
	b.Add("a").Go("a-m", "On", "m", domain.OutcomeNone)
	b.Add("b").Go("b-m", "On", "m", domain.OutcomeNone)
	b.Add("m").Ending()
	b.Add("z").Text("Nobody links here.")

	eng := folio.New()
	ctx := context.Background()
	require.NoError(t, eng.Put(ctx, b.MustBuild()))

	pages, err := eng.Pages(ctx, "fork")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"r": 1, "a": 2, "b": 3, "m": 4, "z": 5}, pages)

	removed, err := eng.Delete(ctx, "fork", "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "m"}, removed, "m goes although b still leads to it")

	story, err := eng.Get(ctx, "fork")
	require.NoError(t, err)
	assert.False(t, story.Nodes["b"].Choices[0].Resolved())
}
