package resolve

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Kind is the kind of object a URL points at.
type Kind int

const (
	KindTrack Kind = iota
	KindAlbum
	KindPlaylist
	KindSearch
)

func (k Kind) String() string {
	switch k {
	case KindTrack:
		return "track"
	case KindAlbum:
		return "album"
	case KindPlaylist:
		return "playlist"
	case KindSearch:
		return "search"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Ref holds the identifiers extracted from a URL.
type Ref struct {
	TrackID    string
	AlbumID    string
	Owner      string
	PlaylistID string
}

// ErrUnsupportedURL is returned for input that matches no known URL shape.
var ErrUnsupportedURL = errors.New("unsupported URL")

// MalformedURLError is returned when a URL has a known shape but its
// identifiers are missing or invalid.
type MalformedURLError struct {
	URL    string
	Reason string
}

func (e *MalformedURLError) Error() string {
	return fmt.Sprintf("malformed URL %q: %s", e.URL, e.Reason)
}

var (
	playlistRe = regexp.MustCompile(`/users/([^/]+)/playlists/([^/]*)`)
	trackRe    = regexp.MustCompile(`(?:^|/)track/(\d+)`)
	albumRe    = regexp.MustCompile(`(?:^|/)album/(\d+)`)
	digitsRe   = regexp.MustCompile(`^\d+$`)
)

// Classify decides what rawURL points at without touching the network.
func Classify(rawURL string) (Kind, Ref, error) {
	u := strings.TrimSpace(rawURL)
	if i := strings.IndexAny(u, "?#"); i >= 0 {
		u = u[:i]
	}
	u = strings.TrimRight(u, "/")
	if u == "" {
		return 0, Ref{}, ErrUnsupportedURL
	}

	if hasSegment(u, "playlists") {
		m := playlistRe.FindStringSubmatch(u)
		if m == nil {
			return 0, Ref{}, &MalformedURLError{URL: rawURL, Reason: "playlist URL must look like /users/<owner>/playlists/<id>"}
		}
		if !digitsRe.MatchString(m[2]) {
			return 0, Ref{}, &MalformedURLError{URL: rawURL, Reason: "playlist id must be numeric"}
		}
		return KindPlaylist, Ref{Owner: m[1], PlaylistID: m[2]}, nil
	}

	if hasSegment(u, "track") {
		m := trackRe.FindStringSubmatch(u)
		if m == nil {
			return 0, Ref{}, &MalformedURLError{URL: rawURL, Reason: "track id must be numeric"}
		}
		ref := Ref{TrackID: m[1]}
		if am := albumRe.FindStringSubmatch(u); am != nil {
			ref.AlbumID = am[1]
		}
		return KindTrack, ref, nil
	}

	if hasSegment(u, "album") {
		m := albumRe.FindStringSubmatch(u)
		if m == nil {
			return 0, Ref{}, &MalformedURLError{URL: rawURL, Reason: "album id must be numeric"}
		}
		return KindAlbum, Ref{AlbumID: m[1]}, nil
	}

	return 0, Ref{}, ErrUnsupportedURL
}

func hasSegment(u, name string) bool {
	for _, seg := range strings.Split(u, "/") {
		if seg == name {
			return true
		}
	}
	return false
}
