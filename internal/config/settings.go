package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	ioutils "github.com/handiism/yamusic-downloader/internal/io"
	"github.com/handiism/yamusic-downloader/internal/model"
)

const (
	appDirName     = "YandexMusicDownloader"
	configFileName = "config.json"
)

// ErrNoOutput is returned by Validate when no output folder is set.
var ErrNoOutput = errors.New("output folder is not set")

// Settings holds the options persisted between runs.
type Settings struct {
	Token       string `json:"token"`
	Output      string `json:"output"`
	PathPattern string `json:"path_pattern"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	homeDir, _ := os.UserHomeDir()
	return &Settings{
		Output:      filepath.Join(homeDir, "Music", "Yandex Music"),
		PathPattern: model.DefaultPathPattern,
	}
}

// DefaultPath returns <user config dir>/YandexMusicDownloader/config.json.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(dir, appDirName, configFileName), nil
}

// Load reads settings from a JSON file.
//
// A missing file yields DefaultSettings. Keys absent from the file keep
// their default values; an empty path_pattern falls back to the default.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, err
	}

	settings := DefaultSettings()
	if err := json.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if strings.TrimSpace(settings.PathPattern) == "" {
		settings.PathPattern = model.DefaultPathPattern
	}

	return settings, nil
}

// Save writes the whole settings file, replacing it atomically.
func (s *Settings) Save(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return ioutils.WriteFileAtomic(path, data)
}

// Validate checks the settings needed to start a batch.
func (s *Settings) Validate() error {
	if strings.TrimSpace(s.Output) == "" {
		return ErrNoOutput
	}
	if _, err := model.RenderPath(s.PathPattern, &model.Track{Title: "x"}); err != nil {
		return err
	}
	return nil
}

// Runtime holds per-run knobs that are not persisted.
type Runtime struct {
	Options model.DownloadOptions

	// Concurrency is the number of tracks downloaded at once.
	Concurrency int

	// DownloadMaxRetries is the number of attempts per track.
	DownloadMaxRetries int

	// DownloadRetryCooldown is the first retry delay in seconds.
	DownloadRetryCooldown float64

	// DownloadRetryExponent multiplies the cooldown after each attempt.
	DownloadRetryExponent float64

	// CoverMaxSize bounds embedded covers in pixels per side.
	CoverMaxSize int

	// PlaylistFormat is "", "m3u", "pls", "wpl" or "zpl". Empty disables
	// the batch playlist.
	PlaylistFormat string
	M3UExtended    bool
}

// DefaultRuntime returns runtime defaults.
func DefaultRuntime() Runtime {
	return Runtime{
		Options:               model.DefaultDownloadOptions(),
		Concurrency:           1,
		DownloadMaxRetries:    3,
		DownloadRetryCooldown: 0.2,
		DownloadRetryExponent: 4.0,
		CoverMaxSize:          1000,
		M3UExtended:           true,
	}
}
