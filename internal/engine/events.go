package engine

import "sync"

// Event is a notification published by an engine.
type Event interface{ Name() string }

// Event names.
const (
	EventUpdated = "Updated"
	EventLogged  = "Logged"
	EventFailed  = "Failed"
)

// Updated reports that sources of the bundle changed.
type Updated struct{ Paths []string }

func (Updated) Name() string { return EventUpdated }

// Logged carries a diagnostic line meant for the operator.
type Logged struct{ Message string }

func (Logged) Name() string { return EventLogged }

// Failed carries an error that happened outside of a Build call.
type Failed struct{ Err error }

func (Failed) Name() string { return EventFailed }

// queue delivers events in order without ever blocking the publisher.
type queue struct {
	mu     sync.Mutex
	items  []Event
	notify chan struct{}
	out    chan Event
	done   chan struct{}
	once   sync.Once
}

func newQueue() *queue {
	q := &queue{
		notify: make(chan struct{}, 1),
		out:    make(chan Event),
		done:   make(chan struct{}),
	}
	go q.run()
	return q
}

func (q *queue) push(e Event) {
	select {
	case <-q.done:
		return
	default:
	}
	q.mu.Lock()
	q.items = append(q.items, e)
	q.mu.Unlock()
	select {
	case q.notify <- struct{}{}:
	default:
	}
}

func (q *queue) run() {
	defer close(q.out)
	for {
		q.mu.Lock()
		if len(q.items) == 0 {
			q.mu.Unlock()
			select {
			case <-q.notify:
				continue
			case <-q.done:
				return
			}
		}
		e := q.items[0]
		q.items = q.items[1:]
		q.mu.Unlock()

		select {
		case q.out <- e:
		case <-q.done:
			return
		}
	}
}

// close drops pending events and closes the output channel.
func (q *queue) close() {
	q.once.Do(func() { close(q.done) })
}
