package watcher

import "sync"

// PathChanged reports that Path changed, tagged with the Flag its owner cares about.
type PathChanged[F any] struct {
	Path string
	Flag F
}

// EventQueue buffers PathChanged messages between tracker callbacks and the consumer that
// drains them, so callbacks never reach into the consumer's state.
type EventQueue[F any] struct {
	mu     sync.Mutex
	events []PathChanged[F]
}

// NewEventQueue creates an empty queue.
func NewEventQueue[F any]() *EventQueue[F] {
	return &EventQueue[F]{}
}

// Push appends an event.
func (q *EventQueue[F]) Push(ev PathChanged[F]) {
	q.mu.Lock()
	q.events = append(q.events, ev)
	q.mu.Unlock()
}

// Drain removes and returns every queued event in push order.
func (q *EventQueue[F]) Drain() []PathChanged[F] {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.events
	q.events = nil
	return out
}

// Len reports the number of queued events.
func (q *EventQueue[F]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

// Notify returns a Callback that pushes a PathChanged carrying flag.
func (q *EventQueue[F]) Notify(flag F) Callback {
	return func(path string) {
		q.Push(PathChanged[F]{Path: path, Flag: flag})
	}
}
