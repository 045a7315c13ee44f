// Package config loads and saves the settings remembered between runs.
//
// Only three values are persisted, as a JSON object:
//
//	{
//	  "token": "y0_...",
//	  "output": "/home/me/Music/Yandex Music",
//	  "path_pattern": "{album_artist}/{album}/{track_number} - {title}"
//	}
//
// The file lives at DefaultPath(), under the user's config directory
// (%APPDATA% on Windows, $XDG_CONFIG_HOME or ~/.config elsewhere).
//
// # Loading from File
//
//	settings, err := config.Load(path)
//	// A missing file yields DefaultSettings()
//
// # Saving Settings
//
//	err := settings.Save(path) // temp file + rename
//
// Runtime holds the per-run knobs (quality, lyrics, workers, retries) that
// are taken from flags or the TUI and never written to disk.
package config
