package progress

import "sync"

// Level indicates the severity/type of a status message.
type Level int

const (
	LevelInfo Level = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

func (l Level) String() string {
	switch l {
	case LevelVerbose:
		return "verbose"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	case LevelSuccess:
		return "success"
	default:
		return "info"
	}
}

// Reporter receives batch progress. Implementations must be safe for use
// from multiple goroutines and must not block for long.
type Reporter interface {
	// Progress is called once per finished track with the running count.
	Progress(completed, total int, label string)

	// Status publishes a one-line human-readable status.
	Status(msg string)
}

// LeveledReporter is implemented by reporters that distinguish message levels.
type LeveledReporter interface {
	Reporter
	Message(level Level, msg string)
}

// Report sends msg at level, using Status when r has no notion of levels.
func Report(r Reporter, level Level, msg string) {
	if r == nil {
		return
	}
	if lr, ok := r.(LeveledReporter); ok {
		lr.Message(level, msg)
		return
	}
	r.Status(msg)
}

// Discard drops every event.
var Discard Reporter = Func(nil)

// Func adapts a function receiving events to a LeveledReporter.
type Func func(Event)

func (f Func) Progress(completed, total int, label string) {
	if f != nil {
		f(Event{Kind: KindProgress, Completed: completed, Total: total, Label: label})
	}
}

func (f Func) Status(msg string) {
	f.Message(LevelInfo, msg)
}

func (f Func) Message(level Level, msg string) {
	if f != nil {
		f(Event{Kind: KindStatus, Message: msg, Level: level})
	}
}

// BatchProgress is a snapshot of one batch.
//
// Completed + Remaining always equals Total.
type BatchProgress struct {
	Total     int
	Completed int
	Remaining int
	LastLabel string
}

// Fraction returns Completed/Total in [0, 1]. An empty batch is complete.
func (p BatchProgress) Fraction() float64 {
	if p.Total <= 0 {
		return 1
	}
	return float64(p.Completed) / float64(p.Total)
}

// Tracker records the latest BatchProgress and forwards events to next.
type Tracker struct {
	mu   sync.Mutex
	snap BatchProgress
	next Reporter
}

// NewTracker creates a Tracker forwarding to next, which may be nil.
func NewTracker(next Reporter) *Tracker {
	return &Tracker{next: next}
}

// Progress updates the snapshot. Within a batch Completed never decreases.
func (t *Tracker) Progress(completed, total int, label string) {
	t.mu.Lock()
	if total != t.snap.Total {
		t.snap = BatchProgress{Total: total}
	}
	if completed > total {
		completed = total
	}
	if completed >= t.snap.Completed {
		t.snap.Completed = completed
		t.snap.LastLabel = label
	}
	t.snap.Remaining = t.snap.Total - t.snap.Completed
	t.mu.Unlock()

	if t.next != nil {
		t.next.Progress(completed, total, label)
	}
}

func (t *Tracker) Status(msg string) {
	if t.next != nil {
		t.next.Status(msg)
	}
}

func (t *Tracker) Message(level Level, msg string) {
	Report(t.next, level, msg)
}

// Snapshot returns the current state.
func (t *Tracker) Snapshot() BatchProgress {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snap
}
