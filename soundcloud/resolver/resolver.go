package resolver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"github.com/xeptore/flaw/v8"

	"github.com/xeptore/scplayer/cache"
	"github.com/xeptore/scplayer/config"
	"github.com/xeptore/scplayer/errutil"
	"github.com/xeptore/scplayer/soundcloud"
	"github.com/xeptore/scplayer/soundcloud/catalog"
	"github.com/xeptore/scplayer/soundcloud/clientid"
)

type Catalog interface {
	Search(ctx context.Context, query string, id clientid.ClientID) (*catalog.ResultSet, error)
	Resolve(ctx context.Context, permalink string, id clientid.ClientID) (*soundcloud.Track, error)
	StreamURL(ctx context.Context, track *soundcloud.Track, transcoding soundcloud.Transcoding, id clientid.ClientID) (*soundcloud.MediaLocator, error)
}

type Resolution struct {
	Track       *soundcloud.Track
	Transcoding soundcloud.Transcoding
	Locator     *soundcloud.MediaLocator
	FileName    string
}

type Resolver struct {
	scraper         clientid.Scraper
	catalog         Catalog
	credentialEntry string
	discoverURL     string
	tracks          *cache.TracksCache
	tracksTTL       time.Duration
	logger          zerolog.Logger
}

// New wires a Resolver. tracks may be nil; descriptors are then always fetched.
func New(cfg config.Config, scraper clientid.Scraper, c Catalog, tracks *cache.TracksCache, logger zerolog.Logger) *Resolver {
	return &Resolver{
		scraper:         scraper,
		catalog:         c,
		credentialEntry: cfg.CredentialEntry,
		discoverURL:     cfg.DiscoverURL,
		tracks:          tracks,
		tracksTTL:       cfg.DescriptorCacheTTL,
		logger:          logger.With().Str("module", "resolver").Logger(),
	}
}

func (r *Resolver) entryURL(trackURL string) string {
	if r.credentialEntry == config.CredentialEntryTrack && trackURL != "" {
		return trackURL
	}
	return r.discoverURL
}

// Search acquires a fresh client id and runs a catalog search with it.
func (r *Resolver) Search(ctx context.Context, query string) (*catalog.ResultSet, error) {
	id, err := r.scraper.Acquire(ctx, r.discoverURL)
	if nil != err {
		return nil, err
	}
	return r.catalog.Search(ctx, query, id)
}

// Describe returns the track descriptor only, so tracks without a
// progressive rendition can still be inspected.
func (r *Resolver) Describe(ctx context.Context, trackURL string) (*soundcloud.Track, error) {
	id, err := r.scraper.Acquire(ctx, r.entryURL(trackURL))
	if nil != err {
		return nil, err
	}
	return r.describe(ctx, trackURL, id)
}

func (r *Resolver) describe(ctx context.Context, trackURL string, id clientid.ClientID) (*soundcloud.Track, error) {
	if nil == r.tracks || r.tracksTTL <= 0 {
		return r.catalog.Resolve(ctx, trackURL, id)
	}

	item, err := r.tracks.Fetch(trackURL, r.tracksTTL, func() (*soundcloud.Track, error) {
		return r.catalog.Resolve(ctx, trackURL, id)
	})
	if nil != err {
		return nil, err
	}
	return item.Value(), nil
}

func (r *Resolver) Resolve(ctx context.Context, trackURL string) (*Resolution, error) {
	logger := r.logger.With().Str("track_url", trackURL).Logger()

	id, err := r.scraper.Acquire(ctx, r.entryURL(trackURL))
	if nil != err {
		return nil, err
	}

	track, err := r.describe(ctx, trackURL, id)
	if nil != err {
		return nil, err
	}

	transcoding, ok := track.ProgressiveTranscoding()
	if !ok {
		flawP := flaw.P{
			"track_id":  track.ID,
			"protocols": lo.Map(track.Transcodings, func(v soundcloud.Transcoding, _ int) string { return v.Protocol }),
		}
		return nil, fmt.Errorf("%w: %w", soundcloud.ErrUnsupportedFormat, flaw.From(errors.New("track has no progressive transcoding")).Append(flawP))
	}

	locator, err := r.catalog.StreamURL(ctx, track, transcoding, id)
	if nil != err {
		if errutil.IsContext(ctx) {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %w", soundcloud.ErrStreamExchange, err)
	}
	logger.Debug().Int64("track_id", track.ID).Str("preset", transcoding.Preset).Msg("Track resolved to media locator")

	return &Resolution{
		Track:       track,
		Transcoding: transcoding,
		Locator:     locator,
		FileName:    track.FileName(),
	}, nil
}
