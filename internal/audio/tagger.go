package audio

import (
	"fmt"
	"strconv"

	"github.com/bogem/id3v2"

	"github.com/handiism/yamusic-downloader/internal/model"
)

// TagEditAction defines how to handle individual ID3 tags.
type TagEditAction int

const (
	// TagEmpty removes the frame.
	TagEmpty TagEditAction = iota

	// TagModify writes the catalog value.
	TagModify

	// TagDoNotModify leaves the existing frame unchanged.
	TagDoNotModify
)

// TagConfig holds tagging configuration for each ID3 field.
type TagConfig struct {
	// Artist controls the TPE1 (Lead artist) frame.
	Artist TagEditAction

	// AlbumArtist controls the TPE2 (Album artist) frame.
	AlbumArtist TagEditAction

	// Album controls the TALB (Album title) frame.
	Album TagEditAction

	// Year controls the year frame (TDRC in ID3v2.4).
	Year TagEditAction

	// Genre controls the TCON frame.
	Genre TagEditAction

	// TrackNumber controls the TRCK (Track number) frame.
	TrackNumber TagEditAction

	// DiscNumber controls the TPOS (Part of a set) frame.
	DiscNumber TagEditAction

	// TrackTitle controls the TIT2 (Title) frame.
	TrackTitle TagEditAction

	// Lyrics controls the USLT (Unsynchronized lyrics) frame.
	Lyrics TagEditAction

	// LyricsLanguage is the ISO-639-2 code written with USLT frames.
	LyricsLanguage string
}

// DefaultTagConfig writes every frame the catalog has data for.
func DefaultTagConfig() *TagConfig {
	return &TagConfig{
		Artist:         TagModify,
		AlbumArtist:    TagModify,
		Album:          TagModify,
		Year:           TagModify,
		Genre:          TagModify,
		TrackNumber:    TagModify,
		DiscNumber:     TagModify,
		TrackTitle:     TagModify,
		Lyrics:         TagModify,
		LyricsLanguage: "eng",
	}
}

// Extras carries the per-file data that is not part of the track metadata.
type Extras struct {
	// Lyrics is plain text for the USLT frame. Empty skips the frame.
	Lyrics string

	// Cover is a JPEG image for the APIC frame. Nil skips the frame.
	Cover []byte
}

// Tagger writes ID3 tags to MP3 files.
//
// Example:
//
//	tagger := NewTagger(DefaultTagConfig())
//	err := tagger.SaveTags("/music/A/B/01 - Song.mp3", track, audio.Extras{Cover: jpeg})
type Tagger struct {
	config *TagConfig
}

// NewTagger creates a new Tagger with the given configuration.
//
// If config is nil, DefaultTagConfig() is used.
func NewTagger(config *TagConfig) *Tagger {
	if config == nil {
		config = DefaultTagConfig()
	}
	return &Tagger{config: config}
}

// SaveTags writes ID3v2.4 tags for track into the MP3 file at path.
//
// The file must exist. Existing frames not covered by the configuration
// are preserved.
func (t *Tagger) SaveTags(path string, track *model.Track, extras Extras) error {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("open tags %s: %w", path, err)
	}
	defer tag.Close()

	tag.SetDefaultEncoding(id3v2.EncodingUTF8)
	t.updateStringTags(tag, track, extras.Lyrics)

	if extras.Cover != nil {
		t.updateArtwork(tag, extras.Cover)
	}

	if err := tag.Save(); err != nil {
		return fmt.Errorf("save tags %s: %w", path, err)
	}
	return nil
}

func applyText(tag *id3v2.Tag, action TagEditAction, id, value string) {
	switch action {
	case TagEmpty:
		tag.DeleteFrames(id)
	case TagModify:
		if value == "" {
			return
		}
		tag.DeleteFrames(id)
		tag.AddTextFrame(id, id3v2.EncodingUTF8, value)
	}
}

func (t *Tagger) updateStringTags(tag *id3v2.Tag, track *model.Track, lyrics string) {
	album := track.Album
	if album == nil {
		album = &model.AlbumRef{}
	}

	applyText(tag, t.config.TrackTitle, "TIT2", track.FullTitle())
	applyText(tag, t.config.Artist, "TPE1", track.ArtistLine())
	applyText(tag, t.config.AlbumArtist, "TPE2", track.AlbumArtistLine())
	applyText(tag, t.config.Album, "TALB", album.Title)
	applyText(tag, t.config.Genre, "TCON", album.Genre)

	var year string
	if album.Year > 0 {
		year = strconv.Itoa(album.Year)
	}
	applyText(tag, t.config.Year, yearFrameID(tag), year)

	var trck string
	if album.Position > 0 {
		trck = strconv.Itoa(album.Position)
		if album.TrackCount > 0 {
			trck += "/" + strconv.Itoa(album.TrackCount)
		}
	}
	applyText(tag, t.config.TrackNumber, "TRCK", trck)

	var tpos string
	if album.Volume > 0 {
		tpos = strconv.Itoa(album.Volume)
	}
	applyText(tag, t.config.DiscNumber, "TPOS", tpos)

	switch t.config.Lyrics {
	case TagEmpty:
		tag.DeleteFrames("USLT")
	case TagModify:
		if lyrics != "" {
			tag.DeleteFrames("USLT")
			tag.AddUnsynchronisedLyricsFrame(id3v2.UnsynchronisedLyricsFrame{
				Encoding:          id3v2.EncodingUTF8,
				Language:          t.config.LyricsLanguage,
				ContentDescriptor: "",
				Lyrics:            lyrics,
			})
		}
	}
}

// yearFrameID returns TDRC for ID3v2.4 tags and TYER for older versions.
func yearFrameID(tag *id3v2.Tag) string {
	if tag.Version() >= 4 {
		return "TDRC"
	}
	return "TYER"
}

// updateArtwork replaces any attached pictures with a front cover.
func (t *Tagger) updateArtwork(tag *id3v2.Tag, artwork []byte) {
	tag.DeleteFrames("APIC")

	tag.AddAttachedPicture(id3v2.PictureFrame{
		Encoding:    id3v2.EncodingUTF8,
		MimeType:    "image/jpeg",
		PictureType: id3v2.PTFrontCover,
		Description: "Cover",
		Picture:     artwork,
	})
}
