package download

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/handiism/yamusic-downloader/internal/audio"
	ioutils "github.com/handiism/yamusic-downloader/internal/io"
	"github.com/handiism/yamusic-downloader/internal/model"
	"github.com/handiism/yamusic-downloader/internal/yandex"
)

// coverFileName is written next to FLAC files, which carry no embedded cover.
const coverFileName = "cover.jpg"

// Source is the catalog side of a track download. *yandex.Client implements it.
type Source interface {
	DownloadInfo(ctx context.Context, trackID string) ([]yandex.DownloadInfo, error)
	DirectURL(ctx context.Context, info yandex.DownloadInfo) (string, error)
	Lyrics(ctx context.Context, trackID string, format model.LyricsFormat) (string, error)
}

// Fetcher moves bytes. *http.Client from this module implements it.
type Fetcher interface {
	DownloadFile(ctx context.Context, url, destPath string, onProgress func(written, total int64)) error
	DownloadBytes(ctx context.Context, url string) ([]byte, error)
}

// TrackDownloader is the Downloader used in production: it picks a
// variant, downloads the file, then adds lyrics and cover art.
//
// Lyrics and cover failures are logged and do not fail the track.
type TrackDownloader struct {
	source    Source
	files     Fetcher
	tagger    *audio.Tagger
	images    *ioutils.ImageService
	coverSize string
	logger    *zap.Logger
}

// NewTrackDownloader creates a TrackDownloader. Nil tagger, images and
// logger get defaults.
func NewTrackDownloader(source Source, files Fetcher, tagger *audio.Tagger, images *ioutils.ImageService, logger *zap.Logger) *TrackDownloader {
	if tagger == nil {
		tagger = audio.NewTagger(nil)
	}
	if images == nil {
		images = ioutils.NewImageService(1000)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TrackDownloader{
		source:    source,
		files:     files,
		tagger:    tagger,
		images:    images,
		coverSize: yandex.DefaultCoverSize,
		logger:    logger,
	}
}

// Download implements Downloader.
func (d *TrackDownloader) Download(ctx context.Context, job Job, covers *CoverCache) (string, error) {
	track := job.Track

	infos, err := d.source.DownloadInfo(ctx, track.ID)
	if err != nil {
		return "", &TrackError{Track: track, Op: "download info", Err: err}
	}
	info, ext, err := SelectVariant(infos, job.Options.Quality)
	if err != nil {
		return "", &TrackError{Track: track, Op: "select variant", Err: err}
	}

	direct, err := d.source.DirectURL(ctx, info)
	if err != nil {
		return "", &TrackError{Track: track, Op: "resolve link", Err: err}
	}

	path := job.TargetPath + ext
	if err := d.files.DownloadFile(ctx, direct, path, nil); err != nil {
		return "", &TrackError{Track: track, Op: "download", Err: err}
	}

	lyrics := d.lyrics(ctx, track, job.Options.Lyrics)

	var cover []byte
	if job.Options.EmbedCover {
		cover = d.cover(ctx, track, covers)
	}

	if ext == ".flac" {
		d.writeFLACSidecars(ctx, path, job.Options.Lyrics, lyrics, cover)
		return path, nil
	}

	extras := audio.Extras{Cover: cover, Lyrics: lyrics}
	if job.Options.Lyrics == model.LyricsLRC && lyrics != "" {
		if _, err := audio.WriteSidecar(ctx, path, model.LyricsLRC, lyrics); err != nil {
			d.logger.Warn("writing lrc sidecar", zap.String("path", path), zap.Error(err))
		}
		extras.Lyrics = audio.StripLRC(lyrics)
	}
	if err := d.tagger.SaveTags(path, track, extras); err != nil {
		d.logger.Warn("tagging failed", zap.String("path", path), zap.Error(err))
	}
	return path, nil
}

// SelectVariant picks the download variant for q and the extension the
// file will get. infos must be sorted by bitrate, best first.
//
// LOSSLESS prefers FLAC and falls back to the best MP3, NORMAL takes the
// best MP3 and LOW the smallest one. Previews are used only when nothing
// else exists.
func SelectVariant(infos []yandex.DownloadInfo, q model.Quality) (yandex.DownloadInfo, string, error) {
	var mp3s []yandex.DownloadInfo
	var flac *yandex.DownloadInfo
	for _, preview := range []bool{false, true} {
		for i := range infos {
			if infos[i].Preview != preview {
				continue
			}
			switch infos[i].Codec {
			case "mp3":
				mp3s = append(mp3s, infos[i])
			case "flac":
				if flac == nil {
					flac = &infos[i]
				}
			}
		}
		if len(mp3s) > 0 || flac != nil {
			break
		}
	}

	if q == model.QualityLossless && flac != nil {
		return *flac, ".flac", nil
	}
	if len(mp3s) == 0 {
		return yandex.DownloadInfo{}, "", fmt.Errorf("no mp3 variant: %w", yandex.ErrNoDownloadInfo)
	}
	if q == model.QualityLow {
		return mp3s[len(mp3s)-1], ".mp3", nil
	}
	return mp3s[0], ".mp3", nil
}

func (d *TrackDownloader) lyrics(ctx context.Context, track *model.Track, format model.LyricsFormat) string {
	if format == model.LyricsNone || !track.LyricsAvailable {
		return ""
	}
	text, err := d.source.Lyrics(ctx, track.ID, format)
	if err != nil {
		if !errors.Is(err, yandex.ErrNoLyrics) {
			d.logger.Warn("fetching lyrics", zap.String("track", track.ID), zap.Error(err))
		}
		return ""
	}
	return text
}

func (d *TrackDownloader) cover(ctx context.Context, track *model.Track, covers *CoverCache) []byte {
	uri := track.Cover()
	if uri == "" {
		return nil
	}
	if covers == nil {
		covers = NewCoverCache()
	}

	data, err := covers.GetOrFetch(ctx, uri, func(ctx context.Context) ([]byte, error) {
		raw, err := d.files.DownloadBytes(ctx, yandex.CoverURL(uri, d.coverSize))
		if err != nil {
			return nil, err
		}
		return d.images.PrepareCover(ctx, raw)
	})
	if err != nil {
		d.logger.Warn("fetching cover", zap.String("track", track.ID), zap.Error(err))
		return nil
	}
	return data
}

func (d *TrackDownloader) writeFLACSidecars(ctx context.Context, path string, format model.LyricsFormat, lyrics string, cover []byte) {
	if lyrics != "" {
		if _, err := audio.WriteSidecar(ctx, path, format, lyrics); err != nil {
			d.logger.Warn("writing lyrics sidecar", zap.String("path", path), zap.Error(err))
		}
	}
	if cover != nil {
		coverPath := filepath.Join(filepath.Dir(path), coverFileName)
		if ioutils.IsRegularFile(coverPath) {
			return
		}
		if err := ioutils.WriteFileAtomic(coverPath, cover); err != nil {
			d.logger.Warn("writing cover file", zap.String("path", coverPath), zap.Error(err))
		}
	}
}
