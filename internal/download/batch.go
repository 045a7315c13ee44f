package download

import (
	"context"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/handiism/yamusic-downloader/internal/model"
	"github.com/handiism/yamusic-downloader/internal/progress"
	"github.com/handiism/yamusic-downloader/internal/yandex"
)

// Job is one track handed to a Downloader.
type Job struct {
	Track *model.Track

	// TargetPath is the absolute destination without extension.
	TargetPath string

	Options model.DownloadOptions
}

// Downloader fetches a single track. It returns the path of the audio file
// it wrote, which must be TargetPath plus one of Options.Quality.Extensions().
type Downloader interface {
	Download(ctx context.Context, job Job, covers *CoverCache) (string, error)
}

// Request describes where and how a batch is written.
type Request struct {
	OutputRoot string
	Pattern    string
	Options    model.DownloadOptions
}

// BatchConfig controls concurrency and retries.
type BatchConfig struct {
	// Concurrency is the number of tracks processed at once. Values below
	// one mean one.
	Concurrency int

	// MaxRetries is the number of download attempts per track.
	MaxRetries int

	// RetryCooldown is the delay before the second attempt. Each further
	// attempt multiplies it by RetryExponent.
	RetryCooldown time.Duration
	RetryExponent float64
}

// Batch downloads an ordered list of tracks.
//
// One track failing never stops the others. Progress is reported exactly
// once per track and in input order, whatever the concurrency.
type Batch struct {
	downloader Downloader
	cfg        BatchConfig
	logger     *zap.Logger
}

// NewBatch creates a Batch. A nil logger disables logging.
func NewBatch(d Downloader, cfg BatchConfig, logger *zap.Logger) *Batch {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	if cfg.MaxRetries < 1 {
		cfg.MaxRetries = 1
	}
	if cfg.RetryExponent <= 0 {
		cfg.RetryExponent = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Batch{downloader: d, cfg: cfg, logger: logger}
}

// Run processes tracks and returns the per-track outcomes.
//
// When ctx is cancelled no new track is started; the tracks that never
// started are reported as failed so that every track still produces one
// progress event.
func (b *Batch) Run(ctx context.Context, tracks []*model.Track, req Request, rep progress.Reporter) BatchResult {
	if rep == nil {
		rep = progress.Discard
	}

	id := uuid.NewString()
	logger := b.logger.With(zap.String("batch", id))
	covers := NewCoverCache()
	locks := newPathLocks()
	total := len(tracks)

	outcomes := make([]Outcome, total)
	done := make([]chan struct{}, total)
	for i := range done {
		done[i] = make(chan struct{})
	}

	logger.Info("batch started", zap.Int("tracks", total), zap.Int("workers", b.cfg.Concurrency))

	go func() {
		var g errgroup.Group
		g.SetLimit(b.cfg.Concurrency)
		for i, track := range tracks {
			if err := ctx.Err(); err != nil {
				outcomes[i] = Outcome{Track: track, Kind: OutcomeFailed, Err: err}
				close(done[i])
				continue
			}
			g.Go(func() error {
				defer close(done[i])
				outcomes[i] = b.process(ctx, track, req, covers, locks, rep, logger)
				return nil
			})
		}
		_ = g.Wait()
	}()

	result := BatchResult{ID: id, Outcomes: make([]Outcome, 0, total)}
	for i := range tracks {
		<-done[i]
		o := outcomes[i]
		result.record(o)

		label := o.Track.Label()
		switch o.Kind {
		case OutcomeDownloaded:
			progress.Report(rep, progress.LevelSuccess, "Downloaded: "+label)
		case OutcomeSkipped:
			progress.Report(rep, progress.LevelInfo, "Skipped (exists): "+o.Track.FullTitle())
		case OutcomeFailed:
			progress.Report(rep, progress.LevelError, fmt.Sprintf("Failed: %s: %s", label, reason(o.Err)))
			logger.Warn("track failed", zap.String("track", o.Track.ID), zap.Error(o.Err))
		}
		rep.Progress(i+1, total, label)
	}

	logger.Info("batch finished",
		zap.Int("succeeded", result.Succeeded),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", len(result.Failed)))
	return result
}

func (b *Batch) process(ctx context.Context, track *model.Track, req Request, covers *CoverCache, locks *pathLocks, rep progress.Reporter, logger *zap.Logger) Outcome {
	if err := ctx.Err(); err != nil {
		return Outcome{Track: track, Kind: OutcomeFailed, Err: err}
	}

	rel, err := model.RenderPath(req.Pattern, track)
	if err != nil {
		return Outcome{Track: track, Kind: OutcomeFailed, Err: &TrackError{Track: track, Op: "render path", Err: err}}
	}
	target := filepath.Join(req.OutputRoot, rel)

	// Tracks rendering to the same path never download at the same time.
	unlock := locks.lock(target)
	defer unlock()

	if ShouldSkip(target, req.Options.Quality, req.Options.SkipExisting) {
		existing, _ := ExistingFile(target, req.Options.Quality)
		logger.Debug("skipping existing file", zap.String("path", existing))
		return Outcome{Track: track, Kind: OutcomeSkipped, Path: existing}
	}

	progress.Report(rep, progress.LevelInfo, "Downloading: "+track.FullTitle())

	job := Job{Track: track, TargetPath: target, Options: req.Options}
	var path string
	for tries := 0; tries < b.cfg.MaxRetries; tries++ {
		path, err = b.downloader.Download(ctx, job, covers)
		if err == nil || !retryable(err) || tries == b.cfg.MaxRetries-1 {
			break
		}
		progress.Report(rep, progress.LevelWarning, fmt.Sprintf("Retry %d/%d for %s", tries+1, b.cfg.MaxRetries-1, track.FullTitle()))
		logger.Debug("retrying track", zap.String("track", track.ID), zap.Int("attempt", tries+1), zap.Error(err))
		b.waitForRetry(ctx, tries)
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return Outcome{Track: track, Kind: OutcomeFailed, Err: ctxErr}
		}
		var te *TrackError
		if !errors.As(err, &te) {
			err = &TrackError{Track: track, Op: "download", Err: err}
		}
		return Outcome{Track: track, Kind: OutcomeFailed, Err: err}
	}
	return Outcome{Track: track, Kind: OutcomeDownloaded, Path: path}
}

// retryable reports whether another attempt could succeed.
func retryable(err error) bool {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false
	case errors.Is(err, yandex.ErrAuth), errors.Is(err, yandex.ErrNoDownloadInfo):
		return false
	}
	var te *model.TemplateError
	return !errors.As(err, &te)
}

func (b *Batch) waitForRetry(ctx context.Context, tries int) {
	cooldown := float64(b.cfg.RetryCooldown) * math.Pow(b.cfg.RetryExponent, float64(tries))
	select {
	case <-ctx.Done():
	case <-time.After(time.Duration(cooldown)):
	}
}

// pathLocks hands out one mutex per rendered target path.
type pathLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newPathLocks() *pathLocks {
	return &pathLocks{locks: make(map[string]*sync.Mutex)}
}

func (p *pathLocks) lock(path string) func() {
	key := filepath.Clean(path)

	p.mu.Lock()
	l, ok := p.locks[key]
	if !ok {
		l = &sync.Mutex{}
		p.locks[key] = l
	}
	p.mu.Unlock()

	l.Lock()
	return l.Unlock
}
