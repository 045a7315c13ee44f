package audio

import (
	"context"
	"path/filepath"
	"regexp"
	"strings"

	ioutils "github.com/handiism/yamusic-downloader/internal/io"
	"github.com/handiism/yamusic-downloader/internal/model"
)

var (
	lrcTimeRe   = regexp.MustCompile(`\[\d+:\d+(?:[.:]\d+)?\]`)
	lrcHeaderRe = regexp.MustCompile(`^\[[A-Za-z#]+:[^\]]*\]$`)
)

// StripLRC converts LRC lyrics to plain text, dropping time tags and
// header lines such as [ar:Artist].
func StripLRC(lrc string) string {
	lines := strings.Split(strings.ReplaceAll(lrc, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if lrcHeaderRe.MatchString(line) {
			continue
		}
		out = append(out, strings.TrimSpace(lrcTimeRe.ReplaceAllString(line, "")))
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

// SidecarPath returns the lyrics file that accompanies audioPath.
// LRC lyrics use ".lrc", plain text ".txt".
func SidecarPath(audioPath string, format model.LyricsFormat) string {
	base := strings.TrimSuffix(audioPath, filepath.Ext(audioPath))
	if format == model.LyricsLRC {
		return base + ".lrc"
	}
	return base + ".txt"
}

// WriteSidecar writes lyrics next to audioPath and returns the file written.
func WriteSidecar(ctx context.Context, audioPath string, format model.LyricsFormat, lyrics string) (string, error) {
	path := SidecarPath(audioPath, format)
	if err := ioutils.WriteFile(ctx, path, []byte(lyrics)); err != nil {
		return "", err
	}
	return path, nil
}
