package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/folio/pkg/domain"
)

// Combine returns hooks that invoke every non-nil callback of hooks, in order.
func Combine(hooks ...domain.LifecycleHooks) domain.LifecycleHooks {
	var graphFns []func(context.Context, *domain.GraphEvent)
	var layoutFns []func(context.Context, *domain.LayoutEvent)
	for _, h := range hooks {
		if h.OnGraphChange != nil {
			graphFns = append(graphFns, h.OnGraphChange)
		}
		if h.OnLayout != nil {
			layoutFns = append(layoutFns, h.OnLayout)
		}
	}

	var out domain.LifecycleHooks
	if len(graphFns) > 0 {
		out.OnGraphChange = func(ctx context.Context, e *domain.GraphEvent) {
			for _, fn := range graphFns {
				fn(ctx, e)
			}
		}
	}
	if len(layoutFns) > 0 {
		out.OnLayout = func(ctx context.Context, e *domain.LayoutEvent) {
			for _, fn := range layoutFns {
				fn(ctx, e)
			}
		}
	}
	return out
}

// LogHooks records every event on logger at debug level.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnGraphChange: func(ctx context.Context, e *domain.GraphEvent) {
			logger.DebugContext(ctx, "graph_change",
				"type", e.Type,
				"story_id", e.StoryID,
				"nodes", e.NodeIDs,
			)
		},
		OnLayout: func(ctx context.Context, e *domain.LayoutEvent) {
			logger.DebugContext(ctx, "layout",
				"story_id", e.StoryID,
				"pages", e.Pages,
				"shuffled", e.Shuffled,
			)
		},
	}
}
