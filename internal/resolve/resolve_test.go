package resolve

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/handiism/yamusic-downloader/internal/model"
	"github.com/handiism/yamusic-downloader/internal/yandex"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		url       string
		wantKind  Kind
		wantRef   Ref
		malformed bool
		unsupport bool
	}{
		{name: "album track", url: "https://music.yandex.ru/album/123/track/456", wantKind: KindTrack, wantRef: Ref{TrackID: "456", AlbumID: "123"}},
		{name: "bare track", url: "https://music.yandex.com/track/456?utm=x", wantKind: KindTrack, wantRef: Ref{TrackID: "456"}},
		{name: "album", url: "https://music.yandex.ru/album/555/", wantKind: KindAlbum, wantRef: Ref{AlbumID: "555"}},
		{name: "playlist", url: "https://music.yandex.ru/users/alice.b/playlists/42#top", wantKind: KindPlaylist, wantRef: Ref{Owner: "alice.b", PlaylistID: "42"}},
		{name: "playlist without owner", url: "https://music.yandex.ru/playlists/42", malformed: true},
		{name: "playlist non numeric", url: "https://music.yandex.ru/users/alice/playlists/abc", malformed: true},
		{name: "track without id", url: "https://music.yandex.ru/album/1/track/", malformed: true},
		{name: "album non numeric", url: "https://music.yandex.ru/album/xyz", malformed: true},
		{name: "artist page", url: "https://music.yandex.ru/artist/1", unsupport: true},
		{name: "soundtrack is not track", url: "https://example.com/soundtrack/1", unsupport: true},
		{name: "empty", url: "   ", unsupport: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, ref, err := Classify(tt.url)

			var me *MalformedURLError
			switch {
			case tt.malformed:
				if !errors.As(err, &me) {
					t.Fatalf("expected MalformedURLError, got %v", err)
				}
				return
			case tt.unsupport:
				if !errors.Is(err, ErrUnsupportedURL) {
					t.Fatalf("expected ErrUnsupportedURL, got %v", err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if kind != tt.wantKind {
				t.Errorf("kind = %v, want %v", kind, tt.wantKind)
			}
			if ref != tt.wantRef {
				t.Errorf("ref = %+v, want %+v", ref, tt.wantRef)
			}
		})
	}
}

type fakeCatalog struct {
	tracks    map[string]*model.Track
	albums    map[string][][]*model.Track
	playlists map[string][]yandex.PlaylistEntry
	search    []*model.Track
	err       error
	calls     int
}

func (f *fakeCatalog) Search(ctx context.Context, query string) ([]*model.Track, error) {
	f.calls++
	return f.search, f.err
}

func (f *fakeCatalog) Track(ctx context.Context, id string) (*model.Track, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	t, ok := f.tracks[id]
	if !ok {
		return nil, fmt.Errorf("track %s not found", id)
	}
	return t, nil
}

func (f *fakeCatalog) AlbumWithTracks(ctx context.Context, id string) ([][]*model.Track, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.albums[id], nil
}

func (f *fakeCatalog) UserPlaylist(ctx context.Context, owner, kind string) ([]yandex.PlaylistEntry, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.playlists[owner+"/"+kind], nil
}

func track(id string) *model.Track {
	return &model.Track{ID: id, Title: "t" + id, Available: true, Album: &model.AlbumRef{ID: "555", Title: "Album"}}
}

func TestResolver_Album(t *testing.T) {
	cat := &fakeCatalog{albums: map[string][][]*model.Track{
		"555": {{track("a"), track("b")}, {track("c"), track("d")}},
	}}
	r := NewResolver(cat, nil)

	got, err := r.Resolve(context.Background(), "https://music.yandex.ru/album/555")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	want := []struct {
		id       string
		volume   int
		position int
	}{
		{"a", 1, 1}, {"b", 1, 2}, {"c", 2, 1}, {"d", 2, 2},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d tracks, want %d", len(got), len(want))
	}
	for i, w := range want {
		if got[i].ID != w.id || got[i].Album.Volume != w.volume || got[i].Album.Position != w.position {
			t.Errorf("track %d = %s v%d p%d, want %s v%d p%d",
				i, got[i].ID, got[i].Album.Volume, got[i].Album.Position, w.id, w.volume, w.position)
		}
	}

	if cat.albums["555"][0][0].Album.Volume != 0 {
		t.Error("catalog tracks were mutated")
	}
}

func TestResolver_PlaylistDropsMissing(t *testing.T) {
	unavailable := track("x")
	unavailable.Available = false

	cat := &fakeCatalog{playlists: map[string][]yandex.PlaylistEntry{
		"alice/42": {
			{ID: "1", Track: track("1")},
			{ID: "2"},
			{ID: "3", Track: track("3")},
			{ID: "x", Track: unavailable},
			{ID: "5", Track: track("5")},
		},
	}}

	got, err := NewResolver(cat, nil).Resolve(context.Background(), "https://music.yandex.ru/users/alice/playlists/42")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	wantIDs := []string{"1", "3", "5"}
	if len(got) != len(wantIDs) {
		t.Fatalf("got %d tracks, want %d", len(got), len(wantIDs))
	}
	for i, id := range wantIDs {
		if got[i].ID != id {
			t.Errorf("track %d = %s, want %s", i, got[i].ID, id)
		}
	}
}

func TestResolver_Track(t *testing.T) {
	cat := &fakeCatalog{tracks: map[string]*model.Track{"456": track("456")}}

	got, err := NewResolver(cat, nil).Resolve(context.Background(), "https://music.yandex.ru/album/1/track/456")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != "456" {
		t.Errorf("got %v", got)
	}
}

func TestResolver_InputErrorsSkipNetwork(t *testing.T) {
	cat := &fakeCatalog{}
	r := NewResolver(cat, nil)

	_, err := r.Resolve(context.Background(), "https://music.yandex.ru/playlists/42")
	var me *MalformedURLError
	if !errors.As(err, &me) {
		t.Errorf("expected MalformedURLError, got %v", err)
	}

	_, err = r.Resolve(context.Background(), "https://example.com/")
	if !errors.Is(err, ErrUnsupportedURL) {
		t.Errorf("expected ErrUnsupportedURL, got %v", err)
	}

	if cat.calls != 0 {
		t.Errorf("catalog called %d times for invalid input", cat.calls)
	}
}

func TestResolver_ErrorWrapping(t *testing.T) {
	boom := errors.New("boom")

	_, err := NewResolver(&fakeCatalog{err: boom}, nil).Resolve(context.Background(), "https://music.yandex.ru/album/9")
	var re *ResolutionError
	if !errors.As(err, &re) {
		t.Fatalf("expected ResolutionError, got %v", err)
	}
	if re.Kind != KindAlbum || re.ID != "9" || !errors.Is(err, boom) {
		t.Errorf("unexpected ResolutionError: %+v", re)
	}

	authErr := fmt.Errorf("album 9: %w", yandex.ErrAuth)
	_, err = NewResolver(&fakeCatalog{err: authErr}, nil).Resolve(context.Background(), "https://music.yandex.ru/album/9")
	if !errors.Is(err, yandex.ErrAuth) {
		t.Errorf("expected ErrAuth, got %v", err)
	}
	if errors.As(err, &re) {
		t.Error("auth failure must not be wrapped as ResolutionError")
	}
}

func TestResolver_SearchEmpty(t *testing.T) {
	got, err := NewResolver(&fakeCatalog{}, nil).Search(context.Background(), "nothing at all")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d results", len(got))
	}
}
