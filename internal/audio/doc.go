// Package audio writes what goes into and next to a downloaded file:
// ID3 tags, lyrics sidecars and batch playlists.
//
// # ID3 Tagging
//
//	tagger := audio.NewTagger(audio.DefaultTagConfig())
//	err := tagger.SaveTags(path, track, audio.Extras{Lyrics: text, Cover: jpeg})
//
// Tags are written as ID3v2.4 with UTF-8 text. The tagger covers title,
// artists, album artist, album, year, genre, track and disc numbers,
// unsynchronised lyrics and the front cover.
//
// # Lyrics
//
// LRC lyrics keep their timing in a ".lrc" sidecar. StripLRC turns them
// into plain text for embedding.
//
// # Playlist Generation
//
//	creator := audio.NewPlaylistCreator(audio.FormatM3U, true)
//	content := creator.CreatePlaylist(&audio.Playlist{Title: "Batch", Entries: entries})
//
// Supported formats:
//   - M3U (with optional extended info)
//   - PLS
//   - WPL (Windows Media Player)
//   - ZPL (Zune Media Player)
package audio
