package progress

import "sync"

// Kind distinguishes progress events from status messages.
type Kind int

const (
	KindProgress Kind = iota
	KindStatus
)

// Event is one message published by a worker.
type Event struct {
	Kind Kind

	// Set for KindProgress.
	Completed int
	Total     int
	Label     string

	// Set for KindStatus.
	Message string
	Level   Level
}

// Queue is an unbounded FIFO of events.
//
// Producers never block; a single consumer reads Events until the channel
// is closed. Events published after Close are dropped. A consumer that gives
// up early calls Stop so the delivery goroutine exits.
type Queue struct {
	mu      sync.Mutex
	pending []Event
	closed  bool

	notify   chan struct{}
	out      chan Event
	stop     chan struct{}
	stopOnce sync.Once
}

// NewQueue creates a queue and starts its delivery goroutine.
func NewQueue() *Queue {
	q := &Queue{
		notify: make(chan struct{}, 1),
		out:    make(chan Event),
		stop:   make(chan struct{}),
	}
	go q.pump()
	return q
}

// Events returns the channel the consumer drains. It is closed after Close
// once every pending event has been delivered.
func (q *Queue) Events() <-chan Event {
	return q.out
}

func (q *Queue) Progress(completed, total int, label string) {
	q.push(Event{Kind: KindProgress, Completed: completed, Total: total, Label: label})
}

func (q *Queue) Status(msg string) {
	q.push(Event{Kind: KindStatus, Message: msg, Level: LevelInfo})
}

func (q *Queue) Message(level Level, msg string) {
	q.push(Event{Kind: KindStatus, Message: msg, Level: level})
}

// Close ends the stream. Safe to call more than once.
func (q *Queue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.wake()
}

// Stop discards pending events and closes the Events channel without
// waiting for the consumer. Safe to call more than once and after Close.
func (q *Queue) Stop() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.stopOnce.Do(func() { close(q.stop) })
}

func (q *Queue) push(e Event) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.pending = append(q.pending, e)
	q.mu.Unlock()
	q.wake()
}

func (q *Queue) wake() {
	select {
	case q.notify <- struct{}{}:
	default:
	}
}

func (q *Queue) pump() {
	defer close(q.out)
	for {
		q.mu.Lock()
		if len(q.pending) == 0 {
			closed := q.closed
			q.mu.Unlock()
			if closed {
				return
			}
			select {
			case <-q.notify:
			case <-q.stop:
				return
			}
			continue
		}
		e := q.pending[0]
		q.pending[0] = Event{}
		q.pending = q.pending[1:]
		q.mu.Unlock()

		select {
		case q.out <- e:
		case <-q.stop:
			q.mu.Lock()
			q.pending = nil
			q.mu.Unlock()
			return
		}
	}
}
