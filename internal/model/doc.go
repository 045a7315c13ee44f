// Package model defines the core data structures used throughout
// the yamusic-downloader application.
//
// # Track
//
// Track is the descriptor of a single playable item as returned by the
// Yandex Music catalog. It is immutable once created:
//
//	track := &model.Track{ID: "1", Title: "Song", Artists: []string{"A", "B"}}
//	fmt.Println(track.ArtistLine()) // "A, B"
//
// # Path Templates
//
// RenderPath turns a user pattern into a relative file path (without extension):
//
//	p, err := model.RenderPath("{artist}/{album}/{title}", track)
//
// Available placeholders: {title}, {artist}, {album}, {album_artist}, {year},
// {genre}, {track_number}, {volume}, {track_id}, {album_id}.
//
// # Download Options
//
// DownloadOptions carries the per-batch choices (quality, lyrics format,
// cover embedding, skip-existing). Quality and LyricsFormat are closed
// enums parsed with ParseQuality and ParseLyricsFormat.
package model
