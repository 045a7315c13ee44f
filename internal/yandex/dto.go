package yandex

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/handiism/yamusic-downloader/internal/model"
)

// flexID accepts both numeric and string identifiers.
type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexID(n.String())
	return nil
}

type artistDTO struct {
	ID   flexID `json:"id"`
	Name string `json:"name"`
}

type trackPositionDTO struct {
	Volume int `json:"volume"`
	Index  int `json:"index"`
}

type albumDTO struct {
	ID            flexID            `json:"id"`
	Title         string            `json:"title"`
	Version       string            `json:"version"`
	Year          int               `json:"year"`
	Genre         string            `json:"genre"`
	CoverURI      string            `json:"coverUri"`
	TrackCount    int               `json:"trackCount"`
	Artists       []artistDTO       `json:"artists"`
	TrackPosition *trackPositionDTO `json:"trackPosition"`
	Volumes       [][]trackDTO      `json:"volumes"`
}

type lyricsInfoDTO struct {
	HasAvailableSyncLyrics bool `json:"hasAvailableSyncLyrics"`
	HasAvailableTextLyrics bool `json:"hasAvailableTextLyrics"`
}

type trackDTO struct {
	ID         flexID         `json:"id"`
	Title      string         `json:"title"`
	Version    string         `json:"version"`
	DurationMs int64          `json:"durationMs"`
	CoverURI   string         `json:"coverUri"`
	Available  *bool          `json:"available"`
	Artists    []artistDTO    `json:"artists"`
	Albums     []albumDTO     `json:"albums"`
	LyricsInfo *lyricsInfoDTO `json:"lyricsInfo"`
}

type playlistEntryDTO struct {
	ID    flexID    `json:"id"`
	Track *trackDTO `json:"track"`
}

type playlistDTO struct {
	Title  string             `json:"title"`
	Kind   int                `json:"kind"`
	Tracks []playlistEntryDTO `json:"tracks"`
}

type accountStatusDTO struct {
	Account struct {
		UID   int64  `json:"uid"`
		Login string `json:"login"`
	} `json:"account"`
}

type downloadInfoDTO struct {
	Codec           string `json:"codec"`
	BitrateInKbps   int    `json:"bitrateInKbps"`
	Bitrate         int    `json:"bitrate"`
	Preview         bool   `json:"preview"`
	DownloadInfoURL string `json:"downloadInfoUrl"`
	Direct          bool   `json:"direct"`
}

func (d *downloadInfoDTO) kbps() int {
	if d.BitrateInKbps > 0 {
		return d.BitrateInKbps
	}
	return d.Bitrate
}

type storageInfoDTO struct {
	Host string `xml:"host"`
	Path string `xml:"path"`
	TS   string `xml:"ts"`
	S    string `xml:"s"`
}

type lyricsDTO struct {
	DownloadURL string `json:"downloadUrl"`
}

// envelope is the common {"result": ...} wrapper of every API response.
type envelope[T any] struct {
	Result T `json:"result"`
}

func artistNames(in []artistDTO) []string {
	names := make([]string, 0, len(in))
	for _, a := range in {
		if name := strings.TrimSpace(a.Name); name != "" {
			names = append(names, name)
		}
	}
	return names
}

func (a *albumDTO) toRef() *model.AlbumRef {
	ref := &model.AlbumRef{
		ID:         string(a.ID),
		Title:      a.Title,
		Year:       a.Year,
		Genre:      a.Genre,
		Artists:    artistNames(a.Artists),
		CoverURI:   a.CoverURI,
		TrackCount: a.TrackCount,
	}
	if a.TrackPosition != nil {
		ref.Volume = a.TrackPosition.Volume
		ref.Position = a.TrackPosition.Index
	}
	return ref
}

func (t *trackDTO) toModel() *model.Track {
	track := &model.Track{
		ID:        string(t.ID),
		Title:     t.Title,
		Version:   t.Version,
		Artists:   artistNames(t.Artists),
		Duration:  time.Duration(t.DurationMs) * time.Millisecond,
		CoverURI:  t.CoverURI,
		Available: t.Available == nil || *t.Available,
	}
	if t.LyricsInfo != nil {
		track.LyricsAvailable = t.LyricsInfo.HasAvailableTextLyrics || t.LyricsInfo.HasAvailableSyncLyrics
	}
	if len(t.Albums) > 0 {
		track.Album = t.Albums[0].toRef()
	}
	return track
}
