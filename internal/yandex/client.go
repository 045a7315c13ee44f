package yandex

import (
	"context"
	"crypto/hmac"
	"crypto/md5"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	ihttp "github.com/handiism/yamusic-downloader/internal/http"
	"github.com/handiism/yamusic-downloader/internal/model"
)

const (
	// DefaultBaseURL is the public API endpoint.
	DefaultBaseURL = "https://api.music.yandex.net"

	// DefaultCoverSize replaces the "%%" placeholder in cover URIs.
	DefaultCoverSize = "1000x1000"

	storageSignSalt = "XGRlBW9FXlekgbPrRHuSiA"
	lyricsSignKey   = "p93jhgh689SBReK6ghtw62"
)

// Client talks to the Yandex Music API.
//
// All methods take a context and are safe for concurrent use.
type Client struct {
	http    *ihttp.Client
	baseURL string
	logger  *zap.Logger
	now     func() time.Time
}

type clientConfig struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// Option customizes a Client or Session.
type Option func(*clientConfig)

// WithBaseURL points the client at a different API host.
func WithBaseURL(u string) Option {
	return func(c *clientConfig) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *clientConfig) { c.httpClient = hc }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *zap.Logger) Option {
	return func(c *clientConfig) { c.logger = l }
}

// NewClient creates a client for the given OAuth token.
//
// The token is not validated here; use a Session for validated access.
func NewClient(token string, opts ...Option) *Client {
	cfg := clientConfig{baseURL: DefaultBaseURL, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&cfg)
	}

	httpOpts := []ihttp.Option{ihttp.WithToken(token)}
	if cfg.httpClient != nil {
		httpOpts = append(httpOpts, ihttp.WithHTTPClient(cfg.httpClient))
	}

	return &Client{
		http:    ihttp.NewClient(httpOpts...),
		baseURL: cfg.baseURL,
		logger:  cfg.logger,
		now:     time.Now,
	}
}

// HTTP exposes the underlying HTTP client for file and cover downloads.
func (c *Client) HTTP() *ihttp.Client {
	return c.http
}

func (c *Client) get(ctx context.Context, path string, query url.Values, v any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	c.logger.Debug("api request", zap.String("path", path))

	if err := c.http.GetJSON(ctx, u, v); err != nil {
		if ihttp.IsUnauthorized(err) {
			return fmt.Errorf("%w: %v", ErrAuth, err)
		}
		return err
	}
	return nil
}

// Account describes the authenticated user.
type Account struct {
	UID   int64
	Login string
}

// AccountStatus validates the token. An anonymous session yields ErrAuth.
func (c *Client) AccountStatus(ctx context.Context) (*Account, error) {
	var resp envelope[accountStatusDTO]
	if err := c.get(ctx, "/account/status", nil, &resp); err != nil {
		return nil, fmt.Errorf("account status: %w", err)
	}
	if resp.Result.Account.UID == 0 {
		return nil, fmt.Errorf("account status: %w: anonymous session", ErrAuth)
	}
	return &Account{UID: resp.Result.Account.UID, Login: resp.Result.Account.Login}, nil
}

// Search returns the first page of tracks matching query.
//
// The query is passed verbatim. No results is not an error.
func (c *Client) Search(ctx context.Context, query string) ([]*model.Track, error) {
	q := url.Values{}
	q.Set("text", query)
	q.Set("type", "track")
	q.Set("page", "0")
	q.Set("nocorrect", "false")

	var resp envelope[struct {
		Tracks *struct {
			Results []trackDTO `json:"results"`
		} `json:"tracks"`
	}]
	if err := c.get(ctx, "/search", q, &resp); err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	if resp.Result.Tracks == nil {
		return nil, nil
	}

	tracks := make([]*model.Track, 0, len(resp.Result.Tracks.Results))
	for i := range resp.Result.Tracks.Results {
		tracks = append(tracks, resp.Result.Tracks.Results[i].toModel())
	}
	return tracks, nil
}

// Track fetches a single track by ID.
func (c *Client) Track(ctx context.Context, id string) (*model.Track, error) {
	var resp envelope[[]trackDTO]
	if err := c.get(ctx, "/tracks/"+url.PathEscape(id), nil, &resp); err != nil {
		return nil, fmt.Errorf("track %s: %w", id, err)
	}
	if len(resp.Result) == 0 {
		return nil, fmt.Errorf("track %s: not found", id)
	}
	return resp.Result[0].toModel(), nil
}

// AlbumWithTracks fetches an album and its tracks grouped by volume (disc).
//
// The album metadata of the response is attached to every track.
func (c *Client) AlbumWithTracks(ctx context.Context, id string) ([][]*model.Track, error) {
	var resp envelope[albumDTO]
	if err := c.get(ctx, "/albums/"+url.PathEscape(id)+"/with-tracks", nil, &resp); err != nil {
		return nil, fmt.Errorf("album %s: %w", id, err)
	}

	album := resp.Result
	volumes := make([][]*model.Track, 0, len(album.Volumes))
	for _, vol := range album.Volumes {
		tracks := make([]*model.Track, 0, len(vol))
		for i := range vol {
			t := vol[i].toModel()
			ref := album.toRef()
			if t.Album != nil {
				ref.Volume, ref.Position = t.Album.Volume, t.Album.Position
			}
			t.Album = ref
			tracks = append(tracks, t)
		}
		volumes = append(volumes, tracks)
	}
	return volumes, nil
}

// PlaylistEntry is one slot of a user playlist. Track is nil when the
// catalog no longer has the track.
type PlaylistEntry struct {
	ID    string
	Track *model.Track
}

// UserPlaylist fetches the entries of playlist kind owned by owner.
func (c *Client) UserPlaylist(ctx context.Context, owner, kind string) ([]PlaylistEntry, error) {
	path := "/users/" + url.PathEscape(owner) + "/playlists/" + url.PathEscape(kind)

	var resp envelope[playlistDTO]
	if err := c.get(ctx, path, nil, &resp); err != nil {
		return nil, fmt.Errorf("playlist %s/%s: %w", owner, kind, err)
	}

	entries := make([]PlaylistEntry, 0, len(resp.Result.Tracks))
	for _, e := range resp.Result.Tracks {
		entry := PlaylistEntry{ID: string(e.ID)}
		if e.Track != nil {
			entry.Track = e.Track.toModel()
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// DownloadInfo is one downloadable variant of a track.
type DownloadInfo struct {
	Codec   string
	Bitrate int
	Preview bool
	InfoURL string
}

// DownloadInfo lists the downloadable variants of a track, best first.
func (c *Client) DownloadInfo(ctx context.Context, trackID string) ([]DownloadInfo, error) {
	var resp envelope[[]downloadInfoDTO]
	if err := c.get(ctx, "/tracks/"+url.PathEscape(trackID)+"/download-info", nil, &resp); err != nil {
		return nil, fmt.Errorf("download info %s: %w", trackID, err)
	}

	infos := make([]DownloadInfo, 0, len(resp.Result))
	for _, d := range resp.Result {
		if d.DownloadInfoURL == "" {
			continue
		}
		infos = append(infos, DownloadInfo{
			Codec:   strings.ToLower(d.Codec),
			Bitrate: d.kbps(),
			Preview: d.Preview,
			InfoURL: d.DownloadInfoURL,
		})
	}
	if len(infos) == 0 {
		return nil, fmt.Errorf("track %s: %w", trackID, ErrNoDownloadInfo)
	}

	sort.SliceStable(infos, func(i, j int) bool { return infos[i].Bitrate > infos[j].Bitrate })
	return infos, nil
}

// DirectURL resolves a DownloadInfo into a signed storage URL.
func (c *Client) DirectURL(ctx context.Context, info DownloadInfo) (string, error) {
	var storage storageInfoDTO
	if err := c.http.GetXML(ctx, info.InfoURL, &storage); err != nil {
		if ihttp.IsUnauthorized(err) {
			return "", fmt.Errorf("%w: %v", ErrAuth, err)
		}
		return "", fmt.Errorf("storage info: %w", err)
	}
	if storage.Host == "" || storage.Path == "" {
		return "", fmt.Errorf("storage info: %w", ErrNoDownloadInfo)
	}
	return buildDirectURL(storage), nil
}

func buildDirectURL(s storageInfoDTO) string {
	sum := md5.Sum([]byte(storageSignSalt + strings.TrimPrefix(s.Path, "/") + s.S))
	sign := hex.EncodeToString(sum[:])
	return fmt.Sprintf("https://%s/get-mp3/%s/%s%s", s.Host, sign, s.TS, s.Path)
}

// Lyrics returns the lyrics of a track as plain text or LRC.
//
// Returns ErrNoLyrics when the catalog has none in that format.
func (c *Client) Lyrics(ctx context.Context, trackID string, format model.LyricsFormat) (string, error) {
	if format == model.LyricsNone {
		return "", nil
	}

	ts := strconv.FormatInt(c.now().Unix(), 10)
	mac := hmac.New(sha256.New, []byte(lyricsSignKey))
	mac.Write([]byte(trackID + ts))

	q := url.Values{}
	q.Set("format", format.String())
	q.Set("timeStamp", ts)
	q.Set("sign", base64.StdEncoding.EncodeToString(mac.Sum(nil)))

	var resp envelope[lyricsDTO]
	err := c.get(ctx, "/tracks/"+url.PathEscape(trackID)+"/lyrics", q, &resp)
	if ihttp.IsNotFound(err) {
		return "", fmt.Errorf("track %s: %w", trackID, ErrNoLyrics)
	}
	if err != nil {
		return "", fmt.Errorf("lyrics %s: %w", trackID, err)
	}
	if resp.Result.DownloadURL == "" {
		return "", fmt.Errorf("track %s: %w", trackID, ErrNoLyrics)
	}

	body, err := c.http.Get(ctx, resp.Result.DownloadURL)
	if err != nil {
		return "", fmt.Errorf("lyrics %s: %w", trackID, err)
	}
	return string(body), nil
}

// CoverURL expands a cover template URI into an absolute URL.
func CoverURL(uri, size string) string {
	if uri == "" {
		return ""
	}
	if size == "" {
		size = DefaultCoverSize
	}
	u := strings.Replace(uri, "%%", size, 1)
	if strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") {
		return u
	}
	return "https://" + strings.TrimPrefix(u, "//")
}

// IsAuth reports whether err is an authentication failure.
func IsAuth(err error) bool {
	return errors.Is(err, ErrAuth)
}
