package observability

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/aretw0/folio/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestCombine(t *testing.T) {
	var calls []string
	a := domain.LifecycleHooks{
		OnGraphChange: func(ctx context.Context, e *domain.GraphEvent) { calls = append(calls, "a:"+e.StoryID) },
	}
	b := domain.LifecycleHooks{
		OnGraphChange: func(ctx context.Context, e *domain.GraphEvent) { calls = append(calls, "b:"+e.StoryID) },
		OnLayout:      func(ctx context.Context, e *domain.LayoutEvent) { calls = append(calls, "b:layout") },
	}

	hooks := Combine(a, domain.LifecycleHooks{}, b)
	hooks.EmitGraphChange(context.Background(), domain.EventStoryEdited, "s1")
	hooks.EmitLayout(context.Background(), "s1", 4, false)

	assert.Equal(t, []string{"a:s1", "b:s1", "b:layout"}, calls)
}

func TestCombine_Empty(t *testing.T) {
	hooks := Combine()
	assert.Nil(t, hooks.OnGraphChange)
	assert.Nil(t, hooks.OnLayout)
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	hooks := LogHooks(logger)
	hooks.EmitGraphChange(context.Background(), domain.EventNodesDeleted, "tale", "a", "b")

	out := buf.String()
	assert.Contains(t, out, "graph_change")
	assert.Contains(t, out, "type=nodes_deleted")
	assert.Contains(t, out, "story_id=tale")
}
