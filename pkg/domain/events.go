package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventNodeAttached EventType = "node_attached"
	EventNodesDeleted EventType = "nodes_deleted"
	EventStoryEdited  EventType = "story_edited"
	EventLayout       EventType = "layout"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	StoryID   string    `json:"story_id"`
}

// GraphEvent reports a structural change of a story.
type GraphEvent struct {
	EventBase
	NodeIDs []string `json:"node_ids,omitempty"`
}

// LayoutEvent reports a finished pagination.
type LayoutEvent struct {
	EventBase
	Pages    int  `json:"pages"`
	Shuffled bool `json:"shuffled,omitempty"`
}

// LifecycleHooks lets hosts observe engine activity (logging, metrics).
type LifecycleHooks struct {
	OnGraphChange func(context.Context, *GraphEvent)
	OnLayout      func(context.Context, *LayoutEvent)
}

// EmitGraphChange invokes OnGraphChange if set.
func (h LifecycleHooks) EmitGraphChange(ctx context.Context, t EventType, storyID string, ids ...string) {
	if h.OnGraphChange == nil {
		return
	}
	h.OnGraphChange(ctx, &GraphEvent{
		EventBase: EventBase{Timestamp: time.Now(), Type: t, StoryID: storyID},
		NodeIDs:   ids,
	})
}

// EmitLayout invokes OnLayout if set.
func (h LifecycleHooks) EmitLayout(ctx context.Context, storyID string, pages int, shuffled bool) {
	if h.OnLayout == nil {
		return
	}
	h.OnLayout(ctx, &LayoutEvent{
		EventBase: EventBase{Timestamp: time.Now(), Type: EventLayout, StoryID: storyID},
		Pages:     pages,
		Shuffled:  shuffled,
	})
}
