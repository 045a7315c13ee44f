package main

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/handiism/yamusic-downloader/internal/download"
	"github.com/handiism/yamusic-downloader/internal/model"
	"github.com/handiism/yamusic-downloader/internal/yandex"
)

func TestParseSelection(t *testing.T) {
	tests := []struct {
		in      string
		want    []int
		wantErr bool
	}{
		{"1", []int{0}, false},
		{"3, 1,3", []int{2, 0}, false},
		{"all", []int{0, 1, 2}, false},
		{"ALL", []int{0, 1, 2}, false},
		{"4", nil, true},
		{"0", nil, true},
		{"x", nil, true},
	}

	for _, tt := range tests {
		got, err := parseSelection(tt.in, 3)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseSelection(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && !reflect.DeepEqual(got, tt.want) {
			t.Errorf("parseSelection(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	if _, err := parseSelection(" , ", 3); !errors.Is(err, download.ErrNoSelection) {
		t.Errorf("blank selection: expected ErrNoSelection, got %v", err)
	}
}

func TestRuntimeFromFlags(t *testing.T) {
	rt, err := runtimeFromFlags("lossless", "lrc", false, true, 4, 2, " M3U ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := model.DownloadOptions{Quality: model.QualityLossless, Lyrics: model.LyricsLRC, SkipExisting: true}
	if rt.Options != want {
		t.Errorf("options = %+v, want %+v", rt.Options, want)
	}
	if rt.Concurrency != 4 || rt.DownloadMaxRetries != 2 || rt.PlaylistFormat != "m3u" {
		t.Errorf("runtime = %+v", rt)
	}

	var perr *model.ParseError
	if _, err := runtimeFromFlags("best", "text", true, true, 1, 1, ""); !errors.As(err, &perr) {
		t.Errorf("expected *model.ParseError, got %v", err)
	}
	if _, err := runtimeFromFlags("low", "text", true, true, 0, 1, ""); err == nil {
		t.Error("expected error for zero workers")
	}
}

func TestDescribeError(t *testing.T) {
	err := fmt.Errorf("connect: %w", yandex.ErrAuth)
	if got := describeError(err); got != "authorization failed, check the OAuth token (-token)" {
		t.Errorf("describeError(auth) = %q", got)
	}
	if got := describeError(errors.New("boom")); got != "boom" {
		t.Errorf("describeError = %q", got)
	}
}
