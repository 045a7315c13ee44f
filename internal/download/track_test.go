package download

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/dhowden/tag"

	"github.com/handiism/yamusic-downloader/internal/model"
	"github.com/handiism/yamusic-downloader/internal/yandex"
)

func TestShouldSkip(t *testing.T) {
	dir := t.TempDir()
	mp3Target := filepath.Join(dir, "a")
	flacTarget := filepath.Join(dir, "b")
	dirTarget := filepath.Join(dir, "c")

	_ = os.WriteFile(mp3Target+".mp3", nil, 0644)
	_ = os.WriteFile(flacTarget+".flac", nil, 0644)
	_ = os.MkdirAll(dirTarget+".mp3", 0755)

	tests := []struct {
		name   string
		target string
		q      model.Quality
		skip   bool
		want   bool
	}{
		{"mp3 exists", mp3Target, model.QualityNormal, true, true},
		{"skip disabled", mp3Target, model.QualityNormal, false, false},
		{"flac only counts for lossless", flacTarget, model.QualityNormal, true, false},
		{"flac exists lossless", flacTarget, model.QualityLossless, true, true},
		{"mp3 satisfies lossless fallback", mp3Target, model.QualityLossless, true, true},
		{"directory is not a file", dirTarget, model.QualityNormal, true, false},
		{"missing", filepath.Join(dir, "zzz"), model.QualityLow, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShouldSkip(tt.target, tt.q, tt.skip); got != tt.want {
				t.Errorf("ShouldSkip = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSelectVariant(t *testing.T) {
	infos := []yandex.DownloadInfo{
		{Codec: "flac", Bitrate: 0, InfoURL: "flac"},
		{Codec: "mp3", Bitrate: 320, InfoURL: "320"},
		{Codec: "aac", Bitrate: 192, InfoURL: "aac"},
		{Codec: "mp3", Bitrate: 192, InfoURL: "192"},
		{Codec: "mp3", Bitrate: 64, InfoURL: "64-preview", Preview: true},
	}

	tests := []struct {
		q       model.Quality
		infos   []yandex.DownloadInfo
		wantURL string
		wantExt string
	}{
		{model.QualityNormal, infos, "320", ".mp3"},
		{model.QualityLow, infos, "192", ".mp3"},
		{model.QualityLossless, infos, "flac", ".flac"},
		{model.QualityLossless, infos[1:], "320", ".mp3"},
		{model.QualityNormal, infos[4:], "64-preview", ".mp3"},
	}
	for _, tt := range tests {
		info, ext, err := SelectVariant(tt.infos, tt.q)
		if err != nil {
			t.Errorf("SelectVariant(%v) error: %v", tt.q, err)
			continue
		}
		if info.InfoURL != tt.wantURL || ext != tt.wantExt {
			t.Errorf("SelectVariant(%v) = %s%s, want %s%s", tt.q, info.InfoURL, ext, tt.wantURL, tt.wantExt)
		}
	}

	_, _, err := SelectVariant([]yandex.DownloadInfo{{Codec: "aac"}}, model.QualityNormal)
	if !errors.Is(err, yandex.ErrNoDownloadInfo) {
		t.Errorf("expected ErrNoDownloadInfo, got %v", err)
	}
}

type fakeSource struct {
	infos  []yandex.DownloadInfo
	lyrics map[model.LyricsFormat]string
}

func (f *fakeSource) DownloadInfo(ctx context.Context, trackID string) ([]yandex.DownloadInfo, error) {
	return f.infos, nil
}

func (f *fakeSource) DirectURL(ctx context.Context, info yandex.DownloadInfo) (string, error) {
	return "https://storage.example/" + info.InfoURL, nil
}

func (f *fakeSource) Lyrics(ctx context.Context, trackID string, format model.LyricsFormat) (string, error) {
	if text, ok := f.lyrics[format]; ok {
		return text, nil
	}
	return "", yandex.ErrNoLyrics
}

type fakeFetcher struct {
	mu        sync.Mutex
	files     []string
	coverURLs []string
	cover     []byte
}

func (f *fakeFetcher) DownloadFile(ctx context.Context, url, destPath string, onProgress func(written, total int64)) error {
	f.mu.Lock()
	f.files = append(f.files, url)
	f.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return err
	}
	return os.WriteFile(destPath, make([]byte, 128), 0644)
}

func (f *fakeFetcher) DownloadBytes(ctx context.Context, url string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.coverURLs = append(f.coverURLs, url)
	return f.cover, nil
}

func testJPEG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for x := 0; x < 8; x++ {
		img.Set(x, x, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func lyricTrack() *model.Track {
	return &model.Track{
		ID:              "42",
		Title:           "Song",
		Artists:         []string{"Artist"},
		LyricsAvailable: true,
		Album:           &model.AlbumRef{Title: "Album", CoverURI: "avatars.example/c/%%", Position: 1},
	}
}

func TestTrackDownloader_MP3(t *testing.T) {
	src := &fakeSource{
		infos:  []yandex.DownloadInfo{{Codec: "mp3", Bitrate: 320, InfoURL: "x"}},
		lyrics: map[model.LyricsFormat]string{model.LyricsLRC: "[00:01.00]hello\n[00:02.00]world"},
	}
	files := &fakeFetcher{cover: testJPEG(t)}
	d := NewTrackDownloader(src, files, nil, nil, nil)

	opts := model.DefaultDownloadOptions()
	opts.Lyrics = model.LyricsLRC
	target := filepath.Join(t.TempDir(), "Artist", "Album", "01 - Song")

	path, err := d.Download(context.Background(), Job{Track: lyricTrack(), TargetPath: target, Options: opts}, NewCoverCache())
	if err != nil {
		t.Fatalf("Download failed: %v", err)
	}
	if path != target+".mp3" {
		t.Errorf("path = %q", path)
	}
	if len(files.files) != 1 || files.files[0] != "https://storage.example/x" {
		t.Errorf("downloaded %v", files.files)
	}
	if len(files.coverURLs) != 1 || files.coverURLs[0] != "https://avatars.example/c/1000x1000" {
		t.Errorf("cover URLs = %v", files.coverURLs)
	}

	lrc, err := os.ReadFile(target + ".lrc")
	if err != nil || !strings.Contains(string(lrc), "[00:01.00]hello") {
		t.Errorf("lrc sidecar = %q, %v", lrc, err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	meta, err := tag.ReadFrom(f)
	if err != nil {
		t.Fatalf("reading tags: %v", err)
	}
	if meta.Title() != "Song" || meta.Album() != "Album" {
		t.Errorf("tags = %q / %q", meta.Title(), meta.Album())
	}
	if meta.Lyrics() != "hello\nworld" {
		t.Errorf("embedded lyrics = %q", meta.Lyrics())
	}
	if meta.Picture() == nil {
		t.Error("cover not embedded")
	}
}

func TestTrackDownloader_NoCoverNoLyrics(t *testing.T) {
	src := &fakeSource{infos: []yandex.DownloadInfo{{Codec: "mp3", InfoURL: "x"}}}
	files := &fakeFetcher{}
	d := NewTrackDownloader(src, files, nil, nil, nil)

	opts := model.DownloadOptions{Quality: model.QualityNormal, Lyrics: model.LyricsNone, EmbedCover: false}
	target := filepath.Join(t.TempDir(), "song")

	if _, err := d.Download(context.Background(), Job{Track: lyricTrack(), TargetPath: target, Options: opts}, nil); err != nil {
		t.Fatalf("Download failed: %v", err)
	}
	if len(files.coverURLs) != 0 {
		t.Error("cover fetched although embedding is off")
	}
	if _, err := os.Stat(target + ".lrc"); !os.IsNotExist(err) {
		t.Error("lyrics sidecar written although lyrics are off")
	}
}

func TestTrackDownloader_FLAC(t *testing.T) {
	src := &fakeSource{
		infos:  []yandex.DownloadInfo{{Codec: "flac", InfoURL: "f"}, {Codec: "mp3", Bitrate: 320, InfoURL: "m"}},
		lyrics: map[model.LyricsFormat]string{model.LyricsText: "plain words"},
	}
	files := &fakeFetcher{cover: testJPEG(t)}
	d := NewTrackDownloader(src, files, nil, nil, nil)

	opts := model.DefaultDownloadOptions()
	opts.Quality = model.QualityLossless
	dir := t.TempDir()
	target := filepath.Join(dir, "01 - Song")

	path, err := d.Download(context.Background(), Job{Track: lyricTrack(), TargetPath: target, Options: opts}, NewCoverCache())
	if err != nil {
		t.Fatalf("Download failed: %v", err)
	}
	if path != target+".flac" {
		t.Errorf("path = %q", path)
	}
	if data, err := os.ReadFile(target + ".txt"); err != nil || string(data) != "plain words" {
		t.Errorf("text sidecar = %q, %v", data, err)
	}
	if _, err := os.Stat(filepath.Join(dir, "cover.jpg")); err != nil {
		t.Errorf("cover.jpg missing: %v", err)
	}
}

func TestTrackDownloader_NoVariant(t *testing.T) {
	d := NewTrackDownloader(&fakeSource{infos: []yandex.DownloadInfo{{Codec: "aac", InfoURL: "a"}}}, &fakeFetcher{}, nil, nil, nil)

	_, err := d.Download(context.Background(), Job{Track: lyricTrack(), TargetPath: filepath.Join(t.TempDir(), "x"), Options: model.DefaultDownloadOptions()}, nil)

	var te *TrackError
	if !errors.As(err, &te) || te.Op != "select variant" {
		t.Errorf("expected select variant TrackError, got %v", err)
	}
	if !errors.Is(err, yandex.ErrNoDownloadInfo) {
		t.Errorf("expected ErrNoDownloadInfo, got %v", err)
	}
}
