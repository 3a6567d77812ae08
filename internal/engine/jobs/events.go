package jobs

import (
	"context"
	"sync"
	"time"
)

// Event is one state change of a job, in emission order.
type Event struct {
	Seq         int       `json:"seq"`
	JobID       string    `json:"job_id"`
	State       State     `json:"state"`
	ProgressPct int       `json:"progress_pct"`
	Message     string    `json:"message,omitempty"`
	At          time.Time `json:"at"`
}

// eventLog is the append-only history of one job. Appends wake every waiter
// by closing the current notify channel and installing a fresh one.
type eventLog struct {
	mu     sync.Mutex
	jobID  string
	events []Event
	notify chan struct{}
}

func newEventLog(jobID string) *eventLog {
	return &eventLog{jobID: jobID, notify: make(chan struct{})}
}

// advance appends a transition to state. Invalid transitions are ignored and
// reported as false.
func (l *eventLog) advance(state State, message string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if n := len(l.events); n > 0 {
		if !CanTransition(l.events[n-1].State, state) {
			return false
		}
	} else if state != StateQueued {
		return false
	}

	l.events = append(l.events, Event{
		Seq:         len(l.events) + 1,
		JobID:       l.jobID,
		State:       state,
		ProgressPct: state.Progress(),
		Message:     message,
		At:          time.Now().UTC(),
	})
	close(l.notify)
	l.notify = make(chan struct{})
	return true
}

// current returns the latest state.
func (l *eventLog) current() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.events) == 0 {
		return StateQueued
	}
	return l.events[len(l.events)-1].State
}

// since returns events with Seq > after, a channel closed on the next append,
// and whether the log has already reached a terminal state.
func (l *eventLog) since(after int) ([]Event, <-chan struct{}, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if after < 0 {
		after = 0
	}
	var out []Event
	if after < len(l.events) {
		out = append(out, l.events[after:]...)
	}
	done := len(l.events) > 0 && l.events[len(l.events)-1].State.Terminal()
	return out, l.notify, done
}

// stream delivers the full history and then live events on a channel that is
// closed after the terminal event or when ctx is done.
func (l *eventLog) stream(ctx context.Context) <-chan Event {
	ch := make(chan Event, len(Phases)+1)
	go func() {
		defer close(ch)
		seen := 0
		for {
			batch, wake, done := l.since(seen)
			for _, ev := range batch {
				select {
				case ch <- ev:
					seen = ev.Seq
				case <-ctx.Done():
					return
				}
			}
			if done {
				return
			}
			select {
			case <-wake:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}

// wait blocks until an event with Seq > after exists, the job is terminal,
// or timeout elapses, then returns the events after the cursor.
func (l *eventLog) wait(ctx context.Context, after int, timeout time.Duration) ([]Event, bool) {
	batch, wake, done := l.since(after)
	if len(batch) > 0 || done || timeout <= 0 {
		return batch, done
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-wake:
	case <-timer.C:
	case <-ctx.Done():
	}
	batch, _, done = l.since(after)
	return batch, done
}
