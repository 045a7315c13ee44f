package audio

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// PlaylistFormat represents supported playlist file formats.
//
// Each format has different features and compatibility:
//   - M3U: Simple text format, widely supported
//   - PLS: INI-style format, used by Winamp
//   - WPL: XML format, Windows Media Player
//   - ZPL: XML format, Zune/Groove Music
type PlaylistFormat int

const (
	// FormatM3U creates .m3u files (most compatible).
	FormatM3U PlaylistFormat = iota

	// FormatPLS creates .pls files (Winamp/SHOUTcast format).
	FormatPLS

	// FormatWPL creates .wpl files (Windows Media Player).
	FormatWPL

	// FormatZPL creates .zpl files (Zune/Groove Music).
	FormatZPL
)

// ParsePlaylistFormat maps "m3u", "pls", "wpl" and "zpl" to a format.
func ParsePlaylistFormat(s string) (PlaylistFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "m3u", "m3u8":
		return FormatM3U, nil
	case "pls":
		return FormatPLS, nil
	case "wpl":
		return FormatWPL, nil
	case "zpl":
		return FormatZPL, nil
	}
	return FormatM3U, fmt.Errorf("unknown playlist format %q", s)
}

// Extension returns the file extension including the dot.
func (f PlaylistFormat) Extension() string {
	switch f {
	case FormatPLS:
		return ".pls"
	case FormatWPL:
		return ".wpl"
	case FormatZPL:
		return ".zpl"
	default:
		return ".m3u"
	}
}

// PlaylistEntry is one downloaded file in a playlist.
type PlaylistEntry struct {
	// Path is the audio file path relative to the playlist file.
	Path     string
	Title    string
	Artist   string
	Album    string
	Duration time.Duration
}

// Playlist is an ordered list of files written for one batch.
type Playlist struct {
	Title   string
	Entries []PlaylistEntry
}

// PlaylistCreator generates playlist files in various formats.
//
// Example:
//
//	creator := NewPlaylistCreator(FormatM3U, true)
//	content := creator.CreatePlaylist(pl)
//
//	// Result:
//	// #EXTM3U
//	// #EXTINF:180,Artist - Song Title
//	// Artist/Album/01 - Song Title.mp3
type PlaylistCreator struct {
	format   PlaylistFormat
	extended bool // For M3U: include EXTINF lines with duration/title
}

// NewPlaylistCreator creates a new PlaylistCreator.
//
// extended only affects M3U output.
func NewPlaylistCreator(format PlaylistFormat, extended bool) *PlaylistCreator {
	return &PlaylistCreator{
		format:   format,
		extended: extended,
	}
}

// Format returns the format the creator writes.
func (p *PlaylistCreator) Format() PlaylistFormat {
	return p.format
}

// CreatePlaylist renders pl in the creator's format.
//
// Entry paths are written with forward slashes so the file stays portable.
func (p *PlaylistCreator) CreatePlaylist(pl *Playlist) string {
	switch p.format {
	case FormatPLS:
		return p.createPLS(pl)
	case FormatWPL:
		return p.createWPL(pl)
	case FormatZPL:
		return p.createZPL(pl)
	default:
		return p.createM3U(pl)
	}
}

func entryPath(e PlaylistEntry) string {
	return filepath.ToSlash(e.Path)
}

func (p *PlaylistCreator) createM3U(pl *Playlist) string {
	var sb strings.Builder

	if p.extended {
		sb.WriteString("#EXTM3U\n")
		if pl.Title != "" {
			fmt.Fprintf(&sb, "#PLAYLIST:%s\n", pl.Title)
		}
	}

	for _, e := range pl.Entries {
		if p.extended {
			fmt.Fprintf(&sb, "#EXTINF:%d,%s - %s\n", int(e.Duration.Seconds()), e.Artist, e.Title)
		}
		sb.WriteString(entryPath(e) + "\n")
	}

	return sb.String()
}

// createPLS generates an INI-style PLS playlist:
//
//	[playlist]
//	File1=Artist/Album/01 - Song.mp3
//	Title1=Artist - Song
//	Length1=180
//	NumberOfEntries=1
//	Version=2
func (p *PlaylistCreator) createPLS(pl *Playlist) string {
	var sb strings.Builder

	sb.WriteString("[playlist]\n")

	for i, e := range pl.Entries {
		idx := i + 1
		fmt.Fprintf(&sb, "File%d=%s\n", idx, entryPath(e))
		fmt.Fprintf(&sb, "Title%d=%s - %s\n", idx, e.Artist, e.Title)
		fmt.Fprintf(&sb, "Length%d=%d\n", idx, int(e.Duration.Seconds()))
	}

	fmt.Fprintf(&sb, "NumberOfEntries=%d\n", len(pl.Entries))
	sb.WriteString("Version=2\n")

	return sb.String()
}

func (p *PlaylistCreator) createWPL(pl *Playlist) string {
	var sb strings.Builder

	sb.WriteString("<?wpl version=\"1.0\"?>\n")
	sb.WriteString("<smil>\n")
	sb.WriteString("  <head>\n")
	fmt.Fprintf(&sb, "    <title>%s</title>\n", escapeXML(pl.Title))
	sb.WriteString("  </head>\n")
	sb.WriteString("  <body>\n")
	sb.WriteString("    <seq>\n")

	for _, e := range pl.Entries {
		fmt.Fprintf(&sb, "      <media src=\"%s\"/>\n", escapeXML(entryPath(e)))
	}

	sb.WriteString("    </seq>\n")
	sb.WriteString("  </body>\n")
	sb.WriteString("</smil>\n")

	return sb.String()
}

// createZPL is WPL with per-track metadata attributes.
func (p *PlaylistCreator) createZPL(pl *Playlist) string {
	var sb strings.Builder

	sb.WriteString("<?zpl version=\"2.0\"?>\n")
	sb.WriteString("<smil>\n")
	sb.WriteString("  <head>\n")
	fmt.Fprintf(&sb, "    <title>%s</title>\n", escapeXML(pl.Title))
	sb.WriteString("    <meta name=\"Generator\" content=\"YandexMusicDownloader\"/>\n")
	fmt.Fprintf(&sb, "    <meta name=\"ItemCount\" content=\"%d\"/>\n", len(pl.Entries))
	sb.WriteString("  </head>\n")
	sb.WriteString("  <body>\n")
	sb.WriteString("    <seq>\n")

	for _, e := range pl.Entries {
		fmt.Fprintf(&sb, "      <media src=\"%s\" albumTitle=\"%s\" trackTitle=\"%s\" trackArtist=\"%s\" duration=\"%d\"/>\n",
			escapeXML(entryPath(e)),
			escapeXML(e.Album),
			escapeXML(e.Title),
			escapeXML(e.Artist),
			e.Duration.Milliseconds())
	}

	sb.WriteString("    </seq>\n")
	sb.WriteString("  </body>\n")
	sb.WriteString("</smil>\n")

	return sb.String()
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	"\"", "&quot;",
	"'", "&apos;",
)

func escapeXML(s string) string {
	return xmlEscaper.Replace(s)
}
