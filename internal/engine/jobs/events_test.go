package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(ch <-chan Event) []State {
	var out []State
	for ev := range ch {
		out = append(out, ev.State)
	}
	return out
}

func TestEventLogAdvance(t *testing.T) {
	l := newEventLog("j1")
	assert.False(t, l.advance(StateExtracting, ""), "first event must be queued")
	require.True(t, l.advance(StateQueued, ""))
	require.True(t, l.advance(StateExtracting, ""))
	assert.False(t, l.advance(StateCompleted, ""), "cannot skip phases")
	require.True(t, l.advance(StateFailed, "boom"))
	assert.False(t, l.advance(StateTranscribing, ""), "terminal is final")

	events, _, done := l.since(0)
	require.Len(t, events, 3)
	assert.True(t, done)
	for i, ev := range events {
		assert.Equal(t, i+1, ev.Seq)
		assert.Equal(t, "j1", ev.JobID)
	}
	assert.Equal(t, "boom", events[2].Message)
	assert.Equal(t, 100, events[2].ProgressPct)
}

func TestEventLogStream(t *testing.T) {
	l := newEventLog("j1")
	l.advance(StateQueued, "")
	l.advance(StateExtracting, "")

	ch := l.stream(context.Background())
	go func() {
		for _, s := range Phases[2:] {
			time.Sleep(time.Millisecond)
			l.advance(s, "")
		}
	}()

	assert.Equal(t, Phases, collect(ch))
}

func TestEventLogStreamCancel(t *testing.T) {
	l := newEventLog("j1")
	l.advance(StateQueued, "")

	ctx, cancel := context.WithCancel(context.Background())
	ch := l.stream(ctx)
	first := <-ch
	assert.Equal(t, StateQueued, first.State)
	cancel()

	select {
	case _, ok := <-ch:
		assert.False(t, ok, "stream should close after cancel")
	case <-time.After(time.Second):
		t.Fatal("stream did not close after cancel")
	}
	assert.True(t, l.advance(StateExtracting, ""), "log keeps accepting events")
}

func TestEventLogWait(t *testing.T) {
	l := newEventLog("j1")
	l.advance(StateQueued, "")

	events, done := l.wait(context.Background(), 0, 0)
	require.Len(t, events, 1)
	assert.False(t, done)

	events, done = l.wait(context.Background(), 1, 10*time.Millisecond)
	assert.Empty(t, events)
	assert.False(t, done)

	go func() {
		time.Sleep(5 * time.Millisecond)
		l.advance(StateFailed, "x")
	}()
	events, done = l.wait(context.Background(), 1, time.Second)
	require.Len(t, events, 1)
	assert.Equal(t, StateFailed, events[0].State)
	assert.True(t, done)
}
