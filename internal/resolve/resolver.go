package resolve

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/handiism/yamusic-downloader/internal/model"
	"github.com/handiism/yamusic-downloader/internal/yandex"
)

// Catalog is the part of the remote service the resolver needs.
// *yandex.Client implements it.
type Catalog interface {
	Search(ctx context.Context, query string) ([]*model.Track, error)
	Track(ctx context.Context, id string) (*model.Track, error)
	AlbumWithTracks(ctx context.Context, id string) ([][]*model.Track, error)
	UserPlaylist(ctx context.Context, owner, kind string) ([]yandex.PlaylistEntry, error)
}

// ResolutionError reports a catalog failure while expanding a URL or query.
type ResolutionError struct {
	Kind Kind
	ID   string
	Err  error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolve %s %s: %v", e.Kind, e.ID, e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// Resolver expands URLs and search queries into tracks.
type Resolver struct {
	catalog Catalog
	logger  *zap.Logger
}

// NewResolver creates a Resolver. A nil logger disables logging.
func NewResolver(catalog Catalog, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{catalog: catalog, logger: logger}
}

// Resolve returns the tracks rawURL refers to, in download order.
func (r *Resolver) Resolve(ctx context.Context, rawURL string) ([]*model.Track, error) {
	kind, ref, err := Classify(rawURL)
	if err != nil {
		return nil, err
	}

	switch kind {
	case KindTrack:
		track, err := r.catalog.Track(ctx, ref.TrackID)
		if err != nil {
			return nil, r.wrap(KindTrack, ref.TrackID, err)
		}
		return []*model.Track{track}, nil

	case KindAlbum:
		return r.album(ctx, ref.AlbumID)

	case KindPlaylist:
		return r.playlist(ctx, ref.Owner, ref.PlaylistID)
	}
	return nil, ErrUnsupportedURL
}

// Search passes query to the catalog verbatim. No results is not an error.
func (r *Resolver) Search(ctx context.Context, query string) ([]*model.Track, error) {
	tracks, err := r.catalog.Search(ctx, query)
	if err != nil {
		return nil, r.wrap(KindSearch, query, err)
	}
	r.logger.Debug("search finished", zap.String("query", query), zap.Int("results", len(tracks)))
	return tracks, nil
}

func (r *Resolver) album(ctx context.Context, id string) ([]*model.Track, error) {
	volumes, err := r.catalog.AlbumWithTracks(ctx, id)
	if err != nil {
		return nil, r.wrap(KindAlbum, id, err)
	}

	var tracks []*model.Track
	for v, volume := range volumes {
		for p, t := range volume {
			if t == nil {
				continue
			}
			tracks = append(tracks, stamp(t, id, v+1, p+1))
		}
	}
	r.logger.Debug("album resolved", zap.String("album", id), zap.Int("volumes", len(volumes)), zap.Int("tracks", len(tracks)))
	return tracks, nil
}

// stamp returns a copy of t carrying its disc number and position.
func stamp(t *model.Track, albumID string, volume, position int) *model.Track {
	cp := *t
	var ref model.AlbumRef
	if t.Album != nil {
		ref = *t.Album
	} else {
		ref.ID = albumID
	}
	ref.Volume = volume
	ref.Position = position
	cp.Album = &ref
	return &cp
}

func (r *Resolver) playlist(ctx context.Context, owner, kind string) ([]*model.Track, error) {
	entries, err := r.catalog.UserPlaylist(ctx, owner, kind)
	if err != nil {
		return nil, r.wrap(KindPlaylist, owner+"/"+kind, err)
	}

	tracks := make([]*model.Track, 0, len(entries))
	for _, e := range entries {
		if e.Track == nil || !e.Track.Available {
			r.logger.Debug("skipping unavailable playlist entry", zap.String("playlist", owner+"/"+kind), zap.String("entry", e.ID))
			continue
		}
		tracks = append(tracks, e.Track)
	}
	return tracks, nil
}

func (r *Resolver) wrap(kind Kind, id string, err error) error {
	if errors.Is(err, yandex.ErrAuth) || errors.Is(err, context.Canceled) {
		return err
	}
	return &ResolutionError{Kind: kind, ID: id, Err: err}
}
