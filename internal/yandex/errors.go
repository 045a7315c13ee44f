package yandex

import "errors"

var (
	// ErrAuth is returned when the token is missing, rejected or anonymous.
	ErrAuth = errors.New("authentication failed")

	// ErrNoDownloadInfo is returned when a track has no downloadable variant.
	ErrNoDownloadInfo = errors.New("no download info available")

	// ErrNoLyrics is returned when the catalog has no lyrics in the requested format.
	ErrNoLyrics = errors.New("no lyrics available")
)
