// Package http provides the HTTP client shared by the catalog client and the
// track downloader.
//
// The Client in this package handles:
//   - Authorization and User-Agent headers
//   - JSON and raw byte responses
//   - Streamed file downloads with progress tracking
//   - Typed status errors so callers can map 401/403 to auth failures
//
// # Basic Usage
//
//	client := http.NewClient(http.WithToken(token))
//
//	var out struct{ Result json.RawMessage }
//	err := client.GetJSON(ctx, "https://api.music.yandex.net/tracks/1", &out)
//
//	err = client.DownloadFile(ctx, mp3URL, "/music/song.mp3", nil)
//
// # Progress Tracking
//
// The ProgressWriter type can be used to wrap any io.Writer for progress tracking:
//
//	pw := &http.ProgressWriter{
//	    Writer:   file,
//	    Total:    contentLength,
//	    OnUpdate: func(written, total int64) { /* update UI */ },
//	}
package http
