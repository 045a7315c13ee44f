// Package yandex is a client for the Yandex Music JSON API.
//
// Only the calls needed to resolve and download tracks are covered:
// account status, track search, track lookup, album with tracks, user
// playlists, download info and lyrics. Responses are converted to
// model.Track so the rest of the program never sees wire types.
//
// # Sessions
//
// A Session owns the authenticated Client. The token is validated on the
// first call to Session.Client; concurrent first calls share one
// validation, and a failed validation is retried on the next call.
//
//	session := yandex.NewSession(token, yandex.WithLogger(logger))
//	client, err := session.Client(ctx)
//	if errors.Is(err, yandex.ErrAuth) {
//	    // bad token
//	}
//
// # Direct Links
//
// Track files are not served from the API host. DownloadInfo lists the
// available codecs and bitrates; DirectURL follows the chosen entry's
// info link and builds the signed storage URL.
package yandex
