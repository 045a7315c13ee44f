// Package resolve turns user input into the list of tracks to download.
//
// Three URL shapes are understood:
//
//	https://music.yandex.ru/album/123/track/456   single track
//	https://music.yandex.ru/track/456             single track
//	https://music.yandex.ru/album/123             every track of the album
//	https://music.yandex.ru/users/alice/playlists/42
//
// Album tracks come back volume by volume in catalog order with their disc
// number and position filled in. Playlist entries the catalog no longer
// serves are dropped without error.
//
// Input problems are reported as ErrUnsupportedURL or *MalformedURLError
// before any network call. Catalog failures are wrapped in
// *ResolutionError, except authentication failures which are returned as
// is so callers can match yandex.ErrAuth.
package resolve
