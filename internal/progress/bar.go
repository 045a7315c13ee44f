package progress

import (
	"fmt"
	"io"
	"sync"

	"github.com/schollz/progressbar/v3"
)

// Bar renders progress as a terminal bar. Status lines are printed above it.
type Bar struct {
	mu      sync.Mutex
	w       io.Writer
	bar     *progressbar.ProgressBar
	total   int
	verbose bool
}

// NewBar creates a Bar writing to w. Verbose messages are only printed
// when verbose is set.
func NewBar(w io.Writer, verbose bool) *Bar {
	return &Bar{w: w, verbose: verbose}
}

func (b *Bar) Progress(completed, total int, label string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.bar == nil || total != b.total {
		b.total = total
		b.bar = progressbar.NewOptions(total,
			progressbar.OptionSetWriter(b.w),
			progressbar.OptionSetWidth(30),
			progressbar.OptionShowCount(),
			progressbar.OptionSetPredictTime(false),
			progressbar.OptionClearOnFinish(),
		)
	}
	b.bar.Describe(truncateLabel(label, 40))
	_ = b.bar.Set(completed)
}

func (b *Bar) Status(msg string) {
	b.Message(LevelInfo, msg)
}

func (b *Bar) Message(level Level, msg string) {
	if level == LevelVerbose && !b.verbose {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.bar != nil {
		_ = b.bar.Clear()
	}
	switch level {
	case LevelWarning, LevelError:
		fmt.Fprintf(b.w, "%s: %s\n", level, msg)
	default:
		fmt.Fprintln(b.w, msg)
	}
}

// Finish completes and clears the bar.
func (b *Bar) Finish() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.bar != nil {
		_ = b.bar.Finish()
		b.bar = nil
	}
}

func truncateLabel(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit-1]) + "…"
}
