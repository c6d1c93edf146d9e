package http

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/aretw0/folio/pkg/domain"
)

// StreamManager fans story events out to active SSE connections.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan string]struct{} // story ID -> set of channels
}

func NewStreamManager() *StreamManager {
	return &StreamManager{
		subscribers: make(map[string]map[chan string]struct{}),
	}
}

// Subscribe registers a listener for storyID. The returned func unsubscribes and closes
// the channel.
func (sm *StreamManager) Subscribe(storyID string) (<-chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	if _, ok := sm.subscribers[storyID]; !ok {
		sm.subscribers[storyID] = make(map[chan string]struct{})
	}
	sm.subscribers[storyID][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[storyID]; ok {
			if _, live := subs[ch]; !live {
				return
			}
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, storyID)
			}
		}
	}
}

// Broadcast sends msg to every subscriber of storyID. Slow clients drop messages.
func (sm *StreamManager) Broadcast(storyID string, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers[storyID] {
		select {
		case ch <- msg:
		default:
		}
	}
}

// Hooks returns engine hooks that broadcast every event as JSON.
func (sm *StreamManager) Hooks() domain.LifecycleHooks {
	send := func(storyID string, v any) {
		if b, err := json.Marshal(v); err == nil {
			sm.Broadcast(storyID, string(b))
		}
	}
	return domain.LifecycleHooks{
		OnGraphChange: func(ctx context.Context, e *domain.GraphEvent) { send(e.StoryID, e) },
		OnLayout:      func(ctx context.Context, e *domain.LayoutEvent) { send(e.StoryID, e) },
	}
}
