package watcher

import (
	"sync"
	"time"
)

// batchDebouncer collects file events and emits them as one batch after a
// quiet period. Every new event resets the timer.
type batchDebouncer struct {
	delay  time.Duration
	timer  *time.Timer
	mu     sync.Mutex
	events []Event
	emit   func([]Event)
}

func newBatchDebouncer(delay time.Duration, emit func([]Event)) *batchDebouncer {
	return &batchDebouncer{
		delay: delay,
		emit:  emit,
	}
}

// Add adds an event to the pending batch and resets the quiet-period timer.
// Repeated events for the same path are collapsed, keeping the latest.
func (b *batchDebouncer) Add(event Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	replaced := false
	for i := range b.events {
		if b.events[i].Path == event.Path {
			b.events[i] = event
			replaced = true
			break
		}
	}
	if !replaced {
		b.events = append(b.events, event)
	}

	if b.timer != nil {
		b.timer.Stop()
	}
	b.timer = time.AfterFunc(b.delay, b.flush)
}

func (b *batchDebouncer) flush() {
	b.mu.Lock()
	events := b.events
	b.events = nil
	b.timer = nil
	b.mu.Unlock()

	if len(events) > 0 && b.emit != nil {
		b.emit(events)
	}
}

// Flush immediately emits any pending events
func (b *batchDebouncer) Flush() {
	b.mu.Lock()
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	b.mu.Unlock()

	b.flush()
}

// Cancel discards pending events without emitting them
func (b *batchDebouncer) Cancel() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	b.events = nil
}

// Pending returns the number of events waiting to be emitted
func (b *batchDebouncer) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.events)
}
