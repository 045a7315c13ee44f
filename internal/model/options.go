package model

import (
	"fmt"
	"strings"
)

// Quality selects which stream variant of a track is downloaded.
type Quality int

const (
	// QualityLow picks the lowest-bitrate MP3 stream.
	QualityLow Quality = iota

	// QualityNormal picks the highest-bitrate MP3 stream.
	QualityNormal

	// QualityLossless picks a FLAC stream when the catalog offers one and
	// falls back to the best MP3 otherwise.
	QualityLossless
)

// Qualities lists every quality in display order.
var Qualities = []Quality{QualityLow, QualityNormal, QualityLossless}

// String returns the canonical upper-case name.
func (q Quality) String() string {
	switch q {
	case QualityLow:
		return "LOW"
	case QualityNormal:
		return "NORMAL"
	case QualityLossless:
		return "LOSSLESS"
	default:
		return fmt.Sprintf("Quality(%d)", int(q))
	}
}

// Extensions returns the file extensions, including the dot, a download at
// this quality may produce. The first entry is the preferred one.
func (q Quality) Extensions() []string {
	if q == QualityLossless {
		return []string{".flac", ".mp3"}
	}
	return []string{".mp3"}
}

// ParseQuality parses "LOW", "NORMAL" or "LOSSLESS" (case-insensitive).
func ParseQuality(s string) (Quality, error) {
	for _, q := range Qualities {
		if strings.EqualFold(strings.TrimSpace(s), q.String()) {
			return q, nil
		}
	}
	return 0, &ParseError{Kind: "quality", Value: s}
}

// LyricsFormat selects how lyrics are fetched and stored.
type LyricsFormat int

const (
	// LyricsNone skips lyrics entirely.
	LyricsNone LyricsFormat = iota

	// LyricsText embeds plain unsynchronised lyrics.
	LyricsText

	// LyricsLRC stores time-synced lyrics in LRC format.
	LyricsLRC
)

// LyricsFormats lists every lyrics format in display order.
var LyricsFormats = []LyricsFormat{LyricsNone, LyricsText, LyricsLRC}

// String returns the canonical upper-case name.
func (f LyricsFormat) String() string {
	switch f {
	case LyricsNone:
		return "NONE"
	case LyricsText:
		return "TEXT"
	case LyricsLRC:
		return "LRC"
	default:
		return fmt.Sprintf("LyricsFormat(%d)", int(f))
	}
}

// ParseLyricsFormat parses "NONE", "TEXT" or "LRC" (case-insensitive).
func ParseLyricsFormat(s string) (LyricsFormat, error) {
	for _, f := range LyricsFormats {
		if strings.EqualFold(strings.TrimSpace(s), f.String()) {
			return f, nil
		}
	}
	return 0, &ParseError{Kind: "lyrics format", Value: s}
}

// ParseError is returned when an enum value cannot be parsed from a string.
type ParseError struct {
	Kind  string
	Value string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unknown %s %q", e.Kind, e.Value)
}

// DownloadOptions holds the user's choices for one batch.
//
// Options are captured once before a batch starts and never change while
// it runs.
type DownloadOptions struct {
	Quality      Quality
	Lyrics       LyricsFormat
	EmbedCover   bool
	SkipExisting bool
}

// DefaultDownloadOptions mirrors the initial state of the front ends.
func DefaultDownloadOptions() DownloadOptions {
	return DownloadOptions{
		Quality:      QualityNormal,
		Lyrics:       LyricsText,
		EmbedCover:   true,
		SkipExisting: true,
	}
}
