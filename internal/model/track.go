package model

import (
	"strings"
	"time"
)

// ArtistSeparator joins multiple artist names wherever a single string is needed.
const ArtistSeparator = ", "

// Track represents a single track as described by the catalog.
//
// A Track carries everything needed to name, download and tag a file:
//   - ID, Title and Version for identification and the title tag
//   - Artists in credit order
//   - Album for album-level tags and cover art
//   - Duration for playlists
//
// Example:
//
//	track := &Track{
//	    ID:      "10994777",
//	    Title:   "Come Together",
//	    Artists: []string{"The Beatles"},
//	    Album:   &AlbumRef{ID: "1153", Title: "Abbey Road", Volume: 1, Position: 1},
//	}
type Track struct {
	// ID is the catalog identifier of the track.
	ID string

	// Title is the track title.
	Title string

	// Version is an optional subtitle such as "Remastered 2009".
	Version string

	// Artists are the performing artists in credit order.
	Artists []string

	// Album is the album the track belongs to. Nil for orphan tracks.
	Album *AlbumRef

	// Duration is the track length. Zero means unknown.
	Duration time.Duration

	// CoverURI is the catalog cover template for the track, e.g.
	// "avatars.yandex.net/get-music-content/.../%%". Falls back to the album cover.
	CoverURI string

	// Available reports whether the track can still be streamed.
	Available bool

	// LyricsAvailable reports whether the catalog has lyrics for the track.
	LyricsAvailable bool
}

// AlbumRef holds the album-level metadata attached to a track.
type AlbumRef struct {
	ID         string
	Title      string
	Year       int
	Genre      string
	Artists    []string
	CoverURI   string
	TrackCount int

	// Volume is the 1-based disc number the track sits on.
	Volume int

	// Position is the 1-based track number within the volume.
	Position int
}

// ArtistLine returns all artists joined with ArtistSeparator.
func (t *Track) ArtistLine() string {
	return strings.Join(t.Artists, ArtistSeparator)
}

// FullTitle returns the title with the version appended in parentheses, if any.
func (t *Track) FullTitle() string {
	if t.Version == "" {
		return t.Title
	}
	return t.Title + " (" + t.Version + ")"
}

// Label is the short human-readable name used in status messages.
func (t *Track) Label() string {
	if len(t.Artists) == 0 {
		return t.FullTitle()
	}
	return t.FullTitle() + " — " + t.ArtistLine()
}

// AlbumArtistLine returns the album artists, or the track artists when the
// album has none.
func (t *Track) AlbumArtistLine() string {
	if t.Album != nil && len(t.Album.Artists) > 0 {
		return strings.Join(t.Album.Artists, ArtistSeparator)
	}
	return t.ArtistLine()
}

// Cover returns the cover template URI for the track, preferring the
// album cover so tracks of one album share a cache key.
func (t *Track) Cover() string {
	if t.Album != nil && t.Album.CoverURI != "" {
		return t.Album.CoverURI
	}
	return t.CoverURI
}
