package download

import (
	"errors"
	"fmt"
	"strings"

	"github.com/handiism/yamusic-downloader/internal/model"
)

// OutcomeKind is what happened to one track of a batch.
type OutcomeKind int

const (
	OutcomeDownloaded OutcomeKind = iota
	OutcomeSkipped
	OutcomeFailed
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeDownloaded:
		return "downloaded"
	case OutcomeSkipped:
		return "skipped"
	default:
		return "failed"
	}
}

// Outcome is the result for one track.
type Outcome struct {
	Track *model.Track
	Kind  OutcomeKind

	// Path is the audio file on disk for downloaded and skipped tracks.
	Path string

	// Err is set for failed tracks.
	Err error
}

// TrackError is the error recorded for a failed track.
type TrackError struct {
	Track *model.Track
	Op    string
	Err   error
}

func (e *TrackError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Track.Label(), e.Op, e.Err)
}

func (e *TrackError) Unwrap() error {
	return e.Err
}

// Failure pairs a failed track with a human-readable reason.
type Failure struct {
	Track  *model.Track
	Reason string
}

// BatchResult summarizes a batch. Outcomes are in input order.
type BatchResult struct {
	ID        string
	Succeeded int
	Skipped   int
	Failed    []Failure
	Outcomes  []Outcome
}

// Total returns the number of tracks in the batch.
func (r BatchResult) Total() int {
	return len(r.Outcomes)
}

// Summary returns one line suitable for a final dialog or log message.
func (r BatchResult) Summary() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d of %d downloaded", r.Succeeded, r.Total())
	if r.Skipped > 0 {
		fmt.Fprintf(&sb, ", %d skipped", r.Skipped)
	}
	if len(r.Failed) > 0 {
		fmt.Fprintf(&sb, ", %d failed", len(r.Failed))
	}
	return sb.String()
}

// Err joins the errors of all failed tracks, or returns nil.
func (r BatchResult) Err() error {
	var errs []error
	for _, o := range r.Outcomes {
		if o.Kind == OutcomeFailed && o.Err != nil {
			errs = append(errs, o.Err)
		}
	}
	return errors.Join(errs...)
}

func (r *BatchResult) record(o Outcome) {
	r.Outcomes = append(r.Outcomes, o)
	switch o.Kind {
	case OutcomeDownloaded:
		r.Succeeded++
	case OutcomeSkipped:
		r.Skipped++
	case OutcomeFailed:
		r.Failed = append(r.Failed, Failure{Track: o.Track, Reason: reason(o.Err)})
	}
}

// reason strips the TrackError prefix so the label is not repeated.
func reason(err error) string {
	var te *TrackError
	if errors.As(err, &te) {
		return te.Op + ": " + te.Err.Error()
	}
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}
