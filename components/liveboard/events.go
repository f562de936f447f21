package liveboard

import (
	"context"
	"sync"
	"time"
)

// Event reasons carried by BoardEvent.
const (
	EventLoading   = "loading"
	EventCommitted = "committed"
	EventSkipped   = "skipped"
	EventDiscarded = "discarded"
	EventReport    = "report"
	EventReset     = "reset"
	EventPrompt    = "prompt"
	EventPinned    = "pinned"
	EventUnpinned  = "unpinned"
)

// BoardEvent describes a board mutation. Fingerprint is the render plan
// fingerprint after the mutation, so listeners can skip stale repaints.
type BoardEvent struct {
	Reason      string    `json:"reason"`
	WidgetID    string    `json:"widgetId,omitempty"`
	LoadingID   string    `json:"loadingId,omitempty"`
	Kind        Kind      `json:"type,omitempty"`
	Title       string    `json:"title,omitempty"`
	Fingerprint string    `json:"fingerprint,omitempty"`
	At          time.Time `json:"at"`
}

// RefreshHook is notified after every board mutation.
type RefreshHook interface {
	BoardUpdated(ctx context.Context, event BoardEvent) error
}

type noopRefreshHook struct{}

func (noopRefreshHook) BoardUpdated(context.Context, BoardEvent) error { return nil }

// BroadcastHook fans board events out to in-process subscribers. Slow
// subscribers miss events rather than block the board.
type BroadcastHook struct {
	mu   sync.RWMutex
	subs map[int]chan BoardEvent
	next int
	size int
}

// NewBroadcastHook creates a broadcast hook with per-subscriber buffers.
func NewBroadcastHook() *BroadcastHook {
	return &BroadcastHook{
		subs: make(map[int]chan BoardEvent),
		size: 16,
	}
}

// BoardUpdated satisfies RefreshHook.
func (h *BroadcastHook) BoardUpdated(_ context.Context, event BoardEvent) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.subs {
		select {
		case ch <- event:
		default:
		}
	}
	return nil
}

// Subscribe returns a channel of board events and a cancel func. The channel
// is closed by cancel.
func (h *BroadcastHook) Subscribe() (<-chan BoardEvent, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.next
	h.next++
	ch := make(chan BoardEvent, h.size)
	h.subs[id] = ch
	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if sub, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Subscribers returns the number of live subscriptions.
func (h *BroadcastHook) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// MultiHook notifies every hook in order and returns the first error.
type MultiHook []RefreshHook

// BoardUpdated satisfies RefreshHook.
func (m MultiHook) BoardUpdated(ctx context.Context, event BoardEvent) error {
	for _, h := range m {
		if h == nil {
			continue
		}
		if err := h.BoardUpdated(ctx, event); err != nil {
			return err
		}
	}
	return nil
}
