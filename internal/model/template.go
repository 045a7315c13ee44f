package model

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	ioutils "github.com/handiism/yamusic-downloader/internal/io"
)

// DefaultPathPattern is used when the user has not configured a pattern.
const DefaultPathPattern = "{album_artist}/{album}/{track_number} - {title}"

// maxSegmentBytes caps one rendered path segment. Most filesystems reject
// names longer than 255 bytes; the margin leaves room for the extension.
const maxSegmentBytes = 200

// TemplateError is returned when a path pattern cannot be rendered.
type TemplateError struct {
	Pattern     string
	Placeholder string
	Reason      string
}

func (e *TemplateError) Error() string {
	if e.Placeholder != "" {
		return fmt.Sprintf("path pattern %q: %s {%s}", e.Pattern, e.Reason, e.Placeholder)
	}
	return fmt.Sprintf("path pattern %q: %s", e.Pattern, e.Reason)
}

// placeholders maps every supported placeholder to its value getter.
var placeholders = map[string]func(t *Track) string{
	"title":        func(t *Track) string { return t.FullTitle() },
	"artist":       func(t *Track) string { return t.ArtistLine() },
	"album_artist": func(t *Track) string { return t.AlbumArtistLine() },
	"track_id":     func(t *Track) string { return t.ID },
	"album": func(t *Track) string {
		if t.Album == nil {
			return ""
		}
		return t.Album.Title
	},
	"album_id": func(t *Track) string {
		if t.Album == nil {
			return ""
		}
		return t.Album.ID
	},
	"year": func(t *Track) string {
		if t.Album == nil || t.Album.Year == 0 {
			return ""
		}
		return strconv.Itoa(t.Album.Year)
	},
	"genre": func(t *Track) string {
		if t.Album == nil {
			return ""
		}
		return t.Album.Genre
	},
	"track_number": func(t *Track) string {
		if t.Album == nil || t.Album.Position == 0 {
			return ""
		}
		return fmt.Sprintf("%02d", t.Album.Position)
	},
	"volume": func(t *Track) string {
		if t.Album == nil || t.Album.Volume == 0 {
			return ""
		}
		return strconv.Itoa(t.Album.Volume)
	},
}

// aliases accepted for compatibility with older patterns.
var aliases = map[string]string{
	"trackNumber": "track_number",
	"tracknum":    "track_number",
	"albumArtist": "album_artist",
}

// RenderPath renders pattern against the track into a relative file path
// without extension.
//
// The pattern is split on "/" (and "\") into segments. Each placeholder value
// is sanitized with ioutils.SanitizeFileName, so a value can never introduce
// a new directory level, and each rendered segment is sanitized again to
// clean literal text. Segments that end up empty become "_".
//
// Unknown placeholders and unterminated braces fail with *TemplateError;
// they are never left in the output literally.
//
// Example:
//
//	p, _ := RenderPath("{artist}/{title}", &Track{Title: "Song", Artists: []string{"A", "B"}})
//	// p == "A, B/Song"
func RenderPath(pattern string, t *Track) (string, error) {
	if strings.TrimSpace(pattern) == "" {
		return "", &TemplateError{Pattern: pattern, Reason: "empty pattern"}
	}

	raw := strings.Split(strings.ReplaceAll(pattern, `\`, "/"), "/")
	segments := make([]string, 0, len(raw))
	for _, seg := range raw {
		if seg == "" {
			continue
		}
		rendered, err := renderSegment(pattern, seg, t)
		if err != nil {
			return "", err
		}
		segments = append(segments, rendered)
	}
	if len(segments) == 0 {
		return "", &TemplateError{Pattern: pattern, Reason: "pattern has no path segments"}
	}

	return filepath.Join(segments...), nil
}

func renderSegment(pattern, seg string, t *Track) (string, error) {
	var b strings.Builder
	for len(seg) > 0 {
		open := strings.IndexByte(seg, '{')
		if open == -1 {
			b.WriteString(seg)
			break
		}
		b.WriteString(seg[:open])

		end := strings.IndexByte(seg[open:], '}')
		if end == -1 {
			return "", &TemplateError{Pattern: pattern, Reason: "unterminated placeholder"}
		}
		name := seg[open+1 : open+end]
		if alias, ok := aliases[name]; ok {
			name = alias
		}
		value, ok := placeholders[name]
		if !ok {
			return "", &TemplateError{Pattern: pattern, Placeholder: name, Reason: "unknown placeholder"}
		}
		b.WriteString(ioutils.SanitizeFileName(value(t)))
		seg = seg[open+end+1:]
	}

	out := strings.TrimSpace(ioutils.SanitizeFileName(b.String()))
	out = truncateUTF8(out, maxSegmentBytes)
	if out == "" {
		out = "_"
	}
	return out, nil
}

// truncateUTF8 cuts s to at most n bytes without splitting a rune.
func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	s = s[:n]
	for !utf8.ValidString(s) {
		s = s[:len(s)-1]
	}
	return strings.TrimRight(s, " .")
}
