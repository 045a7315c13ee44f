package download

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/handiism/yamusic-downloader/internal/audio"
	"github.com/handiism/yamusic-downloader/internal/config"
	ioutils "github.com/handiism/yamusic-downloader/internal/io"
	"github.com/handiism/yamusic-downloader/internal/model"
	"github.com/handiism/yamusic-downloader/internal/progress"
	"github.com/handiism/yamusic-downloader/internal/resolve"
	"github.com/handiism/yamusic-downloader/internal/yandex"
)

var (
	// ErrNoSelection is returned when a selected download has nothing selected.
	ErrNoSelection = errors.New("no tracks selected")

	// ErrEmptyURL is returned when a URL download gets blank input.
	ErrEmptyURL = errors.New("URL is empty")
)

// Manager runs one user action at a time: search, download by URL or
// download a selection of the last search results.
//
// Every action connects lazily through a yandex.Session, reports status and
// progress through the given Reporter and, once a batch has run, saves the
// settings so the next start remembers token, output folder and pattern.
type Manager struct {
	settingsPath string
	sessionOpts  []yandex.Option
	logger       *zap.Logger

	mu       sync.Mutex
	settings config.Settings
	runtime  config.Runtime
	session  *yandex.Session
	results  []*model.Track
}

// ManagerOption customizes a Manager.
type ManagerOption func(*Manager)

// WithSessionOptions passes options to every yandex.Session the manager creates.
func WithSessionOptions(opts ...yandex.Option) ManagerOption {
	return func(m *Manager) { m.sessionOpts = append(m.sessionOpts, opts...) }
}

// WithLogger sets the manager's logger.
func WithLogger(l *zap.Logger) ManagerOption {
	return func(m *Manager) { m.logger = l }
}

// NewManager creates a Manager. settingsPath may be empty to disable saving.
func NewManager(settings config.Settings, settingsPath string, rt config.Runtime, opts ...ManagerOption) *Manager {
	m := &Manager{
		settingsPath: settingsPath,
		settings:     settings,
		runtime:      rt,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Settings returns a copy of the current settings.
func (m *Manager) Settings() config.Settings {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.settings
}

// SetSettings replaces the settings used by the next action.
func (m *Manager) SetSettings(s config.Settings) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings = s
}

// Runtime returns a copy of the runtime knobs.
func (m *Manager) Runtime() config.Runtime {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.runtime
}

// SetRuntime replaces the runtime knobs used by the next batch.
func (m *Manager) SetRuntime(rt config.Runtime) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runtime = rt
}

// Results returns the tracks found by the last Search.
func (m *Manager) Results() []*model.Track {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*model.Track(nil), m.results...)
}

// client returns a validated client for the current token, reusing the
// session while the token is unchanged.
func (m *Manager) client(ctx context.Context, rep progress.Reporter) (*yandex.Client, error) {
	m.mu.Lock()
	token := strings.TrimSpace(m.settings.Token)
	if m.session == nil || m.session.Token() != token {
		opts := append([]yandex.Option{yandex.WithLogger(m.logger)}, m.sessionOpts...)
		m.session = yandex.NewSession(token, opts...)
	}
	session := m.session
	m.mu.Unlock()

	rep.Status("Connecting...")
	return session.Client(ctx)
}

// Search looks query up and remembers the results for DownloadSelected.
func (m *Manager) Search(ctx context.Context, query string, rep progress.Reporter) ([]*model.Track, error) {
	if rep == nil {
		rep = progress.Discard
	}

	client, err := m.client(ctx, rep)
	if err != nil {
		return nil, err
	}

	rep.Status("Searching...")
	tracks, err := resolve.NewResolver(client, m.logger).Search(ctx, query)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.results = tracks
	m.mu.Unlock()

	rep.Status(fmt.Sprintf("Found %d tracks.", len(tracks)))
	return tracks, nil
}

// DownloadURL resolves rawURL and downloads every track it refers to.
//
// Input and resolution errors abort before anything is downloaded. Per-track
// failures are in the returned BatchResult.
func (m *Manager) DownloadURL(ctx context.Context, rawURL string, rep progress.Reporter) (BatchResult, error) {
	if rep == nil {
		rep = progress.Discard
	}

	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return BatchResult{}, ErrEmptyURL
	}
	kind, ref, err := resolve.Classify(rawURL)
	if err != nil {
		return BatchResult{}, err
	}
	settings := m.Settings()
	if err := settings.Validate(); err != nil {
		return BatchResult{}, err
	}

	client, err := m.client(ctx, rep)
	if err != nil {
		return BatchResult{}, err
	}

	tracks, err := resolve.NewResolver(client, m.logger).Resolve(ctx, rawURL)
	if err != nil {
		return BatchResult{}, err
	}
	rep.Status(fmt.Sprintf("Found %d tracks.", len(tracks)))

	return m.runBatch(ctx, client, tracks, playlistTitle(kind, ref, tracks), rep)
}

// DownloadSelected downloads the given indexes of the last search results,
// in the order given.
func (m *Manager) DownloadSelected(ctx context.Context, indexes []int, rep progress.Reporter) (BatchResult, error) {
	if rep == nil {
		rep = progress.Discard
	}
	if len(indexes) == 0 {
		return BatchResult{}, ErrNoSelection
	}

	results := m.Results()
	tracks := make([]*model.Track, 0, len(indexes))
	for _, i := range indexes {
		if i < 0 || i >= len(results) {
			return BatchResult{}, fmt.Errorf("selection %d out of range (have %d results)", i, len(results))
		}
		tracks = append(tracks, results[i])
	}
	settings := m.Settings()
	if err := settings.Validate(); err != nil {
		return BatchResult{}, err
	}

	client, err := m.client(ctx, rep)
	if err != nil {
		return BatchResult{}, err
	}
	return m.runBatch(ctx, client, tracks, "Selected tracks", rep)
}

func (m *Manager) runBatch(ctx context.Context, client *yandex.Client, tracks []*model.Track, title string, rep progress.Reporter) (BatchResult, error) {
	settings := m.Settings()
	rt := m.Runtime()

	if err := ioutils.EnsureDir(settings.Output); err != nil {
		return BatchResult{}, fmt.Errorf("create output folder: %w", err)
	}

	downloader := NewTrackDownloader(client, client.HTTP(), audio.NewTagger(nil), ioutils.NewImageService(rt.CoverMaxSize), m.logger)
	batch := NewBatch(downloader, BatchConfig{
		Concurrency:   rt.Concurrency,
		MaxRetries:    rt.DownloadMaxRetries,
		RetryCooldown: time.Duration(rt.DownloadRetryCooldown * float64(time.Second)),
		RetryExponent: rt.DownloadRetryExponent,
	}, m.logger)

	result := batch.Run(ctx, tracks, Request{
		OutputRoot: settings.Output,
		Pattern:    settings.PathPattern,
		Options:    rt.Options,
	}, rep)

	if rt.PlaylistFormat != "" {
		m.writePlaylist(ctx, settings.Output, title, result, rt, rep)
	}

	// Settings are only remembered for runs that were not interrupted.
	if ctx.Err() != nil {
		rep.Status("Download cancelled.")
		return result, nil
	}

	if m.settingsPath != "" {
		if err := settings.Save(m.settingsPath); err != nil {
			progress.Report(rep, progress.LevelWarning, fmt.Sprintf("Could not save settings: %v", err))
		}
	}

	rep.Status("Download finished.")
	return result, nil
}

func (m *Manager) writePlaylist(ctx context.Context, root, title string, result BatchResult, rt config.Runtime, rep progress.Reporter) {
	format, err := audio.ParsePlaylistFormat(rt.PlaylistFormat)
	if err != nil {
		progress.Report(rep, progress.LevelWarning, err.Error())
		return
	}

	pl := &audio.Playlist{Title: title}
	for _, o := range result.Outcomes {
		if o.Path == "" {
			continue
		}
		rel, err := filepath.Rel(root, o.Path)
		if err != nil {
			rel = o.Path
		}
		entry := audio.PlaylistEntry{
			Path:     rel,
			Title:    o.Track.FullTitle(),
			Artist:   o.Track.ArtistLine(),
			Duration: o.Track.Duration,
		}
		if o.Track.Album != nil {
			entry.Album = o.Track.Album.Title
		}
		pl.Entries = append(pl.Entries, entry)
	}
	if len(pl.Entries) == 0 {
		return
	}

	creator := audio.NewPlaylistCreator(format, rt.M3UExtended)
	content := creator.CreatePlaylist(pl)
	path := filepath.Join(root, ioutils.SanitizeFileName(title)+creator.Format().Extension())
	if err := ioutils.WriteFile(ctx, path, []byte(content)); err != nil {
		progress.Report(rep, progress.LevelWarning, fmt.Sprintf("Error creating playlist: %v", err))
		return
	}
	progress.Report(rep, progress.LevelSuccess, "Created playlist "+filepath.Base(path))
}

func playlistTitle(kind resolve.Kind, ref resolve.Ref, tracks []*model.Track) string {
	switch kind {
	case resolve.KindAlbum:
		if len(tracks) > 0 && tracks[0].Album != nil && tracks[0].Album.Title != "" {
			return tracks[0].AlbumArtistLine() + " - " + tracks[0].Album.Title
		}
		return "Album " + ref.AlbumID
	case resolve.KindPlaylist:
		return ref.Owner + " - playlist " + ref.PlaylistID
	default:
		if len(tracks) == 1 {
			return tracks[0].ArtistLine() + " - " + tracks[0].FullTitle()
		}
		return "Tracks"
	}
}
