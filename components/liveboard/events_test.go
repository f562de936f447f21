package liveboard

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcastHookSubscribe(t *testing.T) {
	hook := NewBroadcastHook()
	ch, cancel := hook.Subscribe()
	defer cancel()
	event := BoardEvent{Reason: EventCommitted, WidgetID: "card-1"}
	require.NoError(t, hook.BoardUpdated(context.Background(), event))
	select {
	case e := <-ch:
		assert.Equal(t, "card-1", e.WidgetID)
	default:
		t.Fatalf("expected event to be delivered")
	}
}

func TestBroadcastHookDropsForSlowSubscribers(t *testing.T) {
	hook := NewBroadcastHook()
	ch, cancel := hook.Subscribe()
	for i := 0; i < 100; i++ {
		require.NoError(t, hook.BoardUpdated(context.Background(), BoardEvent{Reason: EventLoading}))
	}
	assert.Equal(t, 16, len(ch))
	assert.Equal(t, 1, hook.Subscribers())
	cancel()
	cancel()
	assert.Equal(t, 0, hook.Subscribers())
}

type failingHook struct{ err error }

func (f failingHook) BoardUpdated(context.Context, BoardEvent) error { return f.err }

func TestMultiHook(t *testing.T) {
	rec := &recordingHook{}
	boom := errors.New("boom")
	hooks := MultiHook{rec, nil, failingHook{err: boom}, rec}
	err := hooks.BoardUpdated(context.Background(), BoardEvent{Reason: EventReset})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{EventReset}, rec.reasons())
}
