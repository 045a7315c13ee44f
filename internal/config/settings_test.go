package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/handiism/yamusic-downloader/internal/model"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "config.json"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if s.PathPattern != model.DefaultPathPattern {
		t.Errorf("PathPattern = %q", s.PathPattern)
	}
	if s.Token != "" {
		t.Errorf("Token = %q, want empty", s.Token)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "YandexMusicDownloader", "config.json")
	want := &Settings{Token: "tok", Output: "/music", PathPattern: "{artist}/{title}"}

	if err := want.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if *got != *want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"token":"abc","path_pattern":"  "}`), 0644); err != nil {
		t.Fatal(err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if s.Token != "abc" {
		t.Errorf("Token = %q", s.Token)
	}
	if s.Output != DefaultSettings().Output {
		t.Errorf("Output = %q, want default", s.Output)
	}
	if s.PathPattern != model.DefaultPathPattern {
		t.Errorf("PathPattern = %q, want default", s.PathPattern)
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{not json`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		s       Settings
		wantErr bool
	}{
		{"ok", Settings{Output: "/music", PathPattern: "{title}"}, false},
		{"no output", Settings{Output: " ", PathPattern: "{title}"}, true},
		{"bad pattern", Settings{Output: "/music", PathPattern: "{nope}"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.s.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	s := Settings{PathPattern: "{title}"}
	if err := s.Validate(); !errors.Is(err, ErrNoOutput) {
		t.Errorf("expected ErrNoOutput, got %v", err)
	}
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("APPDATA", t.TempDir())

	p, err := DefaultPath()
	if err != nil {
		t.Skipf("no config dir on this platform: %v", err)
	}
	if filepath.Base(p) != "config.json" || filepath.Base(filepath.Dir(p)) != "YandexMusicDownloader" {
		t.Errorf("DefaultPath = %q", p)
	}
}
