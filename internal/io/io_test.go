package ioutils

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"normal-file", "normal-file"},
		{"file:with:colons", "file_with_colons"},
		{"file<with>brackets", "file_with_brackets"},
		{"file/with\\slashes", "file_with_slashes"},
		{"file?with*wildcards", "file_with_wildcards"},
		{"trailing dots...", "trailing dots"},
		{"multiple   spaces", "multiple spaces"},
		{"trailing spaces   ", "trailing spaces"},
		{"..", ""},
		{"a. ", "a"},
		{"ends with dot . .", "ends with dot"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := SanitizeFileName(tt.input); got != tt.want {
				t.Errorf("SanitizeFileName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestWriteFileAtomic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")

	if err := WriteFileAtomic(path, []byte(`{"a":1}`)); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if err := WriteFileAtomic(path, []byte(`{"a":2}`)); err != nil {
		t.Fatalf("second write: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != `{"a":2}` {
		t.Errorf("content = %q", got)
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("expected temp files to be cleaned up, found %d entries", len(entries))
	}
}

func TestIsRegularFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.mp3")
	if err := os.WriteFile(file, nil, 0644); err != nil {
		t.Fatal(err)
	}

	if !IsRegularFile(file) {
		t.Error("expected regular file")
	}
	if IsRegularFile(dir) {
		t.Error("directory reported as regular file")
	}
	if IsRegularFile(filepath.Join(dir, "missing.mp3")) {
		t.Error("missing file reported as existing")
	}
}

func encodeTestImage(t *testing.T, w, h int, asPNG bool) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 100, A: 255})
		}
	}
	var buf bytes.Buffer
	var err error
	if asPNG {
		err = png.Encode(&buf, img)
	} else {
		err = jpeg.Encode(&buf, img, nil)
	}
	if err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestPrepareCover(t *testing.T) {
	svc := NewImageService(100)
	ctx := context.Background()

	small := encodeTestImage(t, 50, 50, false)
	out, err := svc.PrepareCover(ctx, small)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(out, small) {
		t.Error("small JPEG should be returned unchanged")
	}

	big := encodeTestImage(t, 300, 150, true)
	out, err = svc.PrepareCover(ctx, big)
	if err != nil {
		t.Fatal(err)
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(out))
	if err != nil {
		t.Fatal(err)
	}
	if format != "jpeg" {
		t.Errorf("format = %s, want jpeg", format)
	}
	if cfg.Width != 100 || cfg.Height != 50 {
		t.Errorf("size = %dx%d, want 100x50", cfg.Width, cfg.Height)
	}
}

func TestFitWithin(t *testing.T) {
	tests := []struct {
		w, h, mw, mh int
		wantW, wantH int
	}{
		{1500, 1000, 1000, 1000, 1000, 666},
		{800, 600, 1000, 1000, 800, 600},
		{1000, 2000, 500, 500, 250, 500},
	}
	for _, tt := range tests {
		gotW, gotH := fitWithin(tt.w, tt.h, tt.mw, tt.mh)
		if gotW != tt.wantW || gotH != tt.wantH {
			t.Errorf("fitWithin(%d,%d,%d,%d) = %dx%d, want %dx%d", tt.w, tt.h, tt.mw, tt.mh, gotW, gotH, tt.wantW, tt.wantH)
		}
	}
}
