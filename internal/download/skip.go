package download

import (
	ioutils "github.com/handiism/yamusic-downloader/internal/io"
	"github.com/handiism/yamusic-downloader/internal/model"
)

// ExistingFile returns the first file that a download of quality q to
// targetPath could have produced, if one exists.
func ExistingFile(targetPath string, q model.Quality) (string, bool) {
	for _, ext := range q.Extensions() {
		if p := targetPath + ext; ioutils.IsRegularFile(p) {
			return p, true
		}
	}
	return "", false
}

// ShouldSkip reports whether the track at targetPath (without extension)
// can be skipped. It only looks at the file system.
func ShouldSkip(targetPath string, q model.Quality, skipExisting bool) bool {
	if !skipExisting {
		return false
	}
	_, ok := ExistingFile(targetPath, q)
	return ok
}
