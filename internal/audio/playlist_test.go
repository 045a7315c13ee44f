package audio

import (
	"strings"
	"testing"
	"time"
)

func TestPlaylistCreator_M3U(t *testing.T) {
	creator := NewPlaylistCreator(FormatM3U, false)

	content := creator.CreatePlaylist(createTestPlaylist())

	if !strings.Contains(content, "Artist/Album/01 - track1.mp3\n") {
		t.Errorf("M3U should contain the relative track path, got %q", content)
	}
	if strings.Contains(content, "#EXTINF") {
		t.Error("plain M3U should not contain #EXTINF")
	}
}

func TestPlaylistCreator_M3UExtended(t *testing.T) {
	creator := NewPlaylistCreator(FormatM3U, true)

	content := creator.CreatePlaylist(createTestPlaylist())

	if !strings.HasPrefix(content, "#EXTM3U") {
		t.Error("Extended M3U should start with #EXTM3U")
	}
	if !strings.Contains(content, "#EXTINF:180,Test Artist - track1") {
		t.Errorf("Extended M3U should contain #EXTINF with duration, got %q", content)
	}
}

func TestPlaylistCreator_PLS(t *testing.T) {
	creator := NewPlaylistCreator(FormatPLS, false)

	content := creator.CreatePlaylist(createTestPlaylist())

	if !strings.HasPrefix(content, "[playlist]") {
		t.Error("PLS should start with [playlist]")
	}
	if !strings.Contains(content, "File1=") {
		t.Error("PLS should contain File1=")
	}
	if !strings.Contains(content, "Length2=200") {
		t.Error("PLS should contain the second track length")
	}
	if !strings.Contains(content, "NumberOfEntries=2") {
		t.Error("PLS should contain NumberOfEntries")
	}
}

func TestPlaylistCreator_WPL(t *testing.T) {
	creator := NewPlaylistCreator(FormatWPL, false)

	content := creator.CreatePlaylist(createTestPlaylist())

	if !strings.Contains(content, "<?wpl") {
		t.Error("WPL should contain XML declaration")
	}
	if !strings.Contains(content, "<smil>") {
		t.Error("WPL should contain smil element")
	}
	if strings.Count(content, "<media src=") != 2 {
		t.Error("WPL should contain one media element per entry")
	}
}

func TestPlaylistCreator_ZPL(t *testing.T) {
	creator := NewPlaylistCreator(FormatZPL, false)

	content := creator.CreatePlaylist(createTestPlaylist())

	if !strings.Contains(content, "<?zpl") {
		t.Error("ZPL should contain XML declaration")
	}
	if !strings.Contains(content, `duration="180000"`) {
		t.Error("ZPL should contain durations in milliseconds")
	}
}

func TestPlaylistCreator_XMLEscape(t *testing.T) {
	pl := &Playlist{
		Title: "Album <Special>",
		Entries: []PlaylistEntry{
			{Path: "Artist & Co/Track & \"Quote\".mp3", Title: "Track & \"Quote\"", Artist: "Artist & Co"},
		},
	}

	content := NewPlaylistCreator(FormatWPL, false).CreatePlaylist(pl)

	if !strings.Contains(content, "Artist &amp; Co") {
		t.Error("WPL should escape & as &amp;")
	}
	if strings.Contains(content, "<Special>") {
		t.Error("WPL should escape < and >")
	}
}

func TestParsePlaylistFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    PlaylistFormat
		wantExt string
		wantErr bool
	}{
		{"m3u", FormatM3U, ".m3u", false},
		{" PLS ", FormatPLS, ".pls", false},
		{"wpl", FormatWPL, ".wpl", false},
		{"zpl", FormatZPL, ".zpl", false},
		{"xspf", FormatM3U, ".m3u", true},
	}
	for _, tt := range tests {
		got, err := ParsePlaylistFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParsePlaylistFormat(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want || got.Extension() != tt.wantExt {
			t.Errorf("ParsePlaylistFormat(%q) = %v (%s)", tt.in, got, got.Extension())
		}
	}
}

func createTestPlaylist() *Playlist {
	return &Playlist{
		Title: "Test Batch",
		Entries: []PlaylistEntry{
			{Path: "Artist/Album/01 - track1.mp3", Title: "track1", Artist: "Test Artist", Album: "Album", Duration: 180 * time.Second},
			{Path: "Artist/Album/02 - track2.mp3", Title: "track2", Artist: "Test Artist", Album: "Album", Duration: 200 * time.Second},
		},
	}
}
