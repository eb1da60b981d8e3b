package boundary

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/xeptore/scplayer/cache"
	"github.com/xeptore/scplayer/config"
	"github.com/xeptore/scplayer/download"
	"github.com/xeptore/scplayer/media/mp3"
	"github.com/xeptore/scplayer/pcm"
	"github.com/xeptore/scplayer/pipeline"
	"github.com/xeptore/scplayer/soundcloud"
	"github.com/xeptore/scplayer/soundcloud/catalog"
	"github.com/xeptore/scplayer/soundcloud/clientid"
	"github.com/xeptore/scplayer/soundcloud/resolver"
)

// Session bundles everything a host needs. It is safe for concurrent use;
// every call runs synchronously on the calling goroutine.
type Session struct {
	cfg        config.Config
	logger     zerolog.Logger
	resolver   *resolver.Resolver
	pipeline   *pipeline.Pipeline
	downloader *download.Downloader
	results    *Registry[*catalog.ResultSet]
}

func NewSession(cfg config.Config, logger zerolog.Logger) (*Session, error) {
	scraper, err := clientid.NewWebScraper(cfg, logger)
	if nil != err {
		return nil, err
	}

	var tracks *cache.TracksCache
	if cfg.DescriptorCacheTTL > 0 {
		tracks = &cache.New().Tracks
	}
	r := resolver.New(cfg, scraper, catalog.New(cfg, logger), tracks, logger)

	p, err := pipeline.New(cfg, mp3.Prober{}, mp3.DecoderFactory{}, logger)
	if nil != err {
		return nil, err
	}

	return &Session{
		cfg:        cfg,
		logger:     logger,
		resolver:   r,
		pipeline:   p,
		downloader: download.New(cfg, r, logger),
		results:    NewRegistry[*catalog.ResultSet](),
	}, nil
}

func invalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

func validateTrackURL(trackURL string) error {
	if strings.TrimSpace(trackURL) == "" {
		return invalidArgument("track url is empty")
	}
	if !soundcloud.IsLink(trackURL) {
		return invalidArgument("%q is not a SoundCloud track link", trackURL)
	}
	return nil
}

// Search runs a catalog search and registers the result set under a new
// handle. The handle must be released with ReleaseResults.
func (s *Session) Search(ctx context.Context, query string) (Handle, error) {
	if strings.TrimSpace(query) == "" {
		return 0, invalidArgument("search query is empty")
	}

	results, err := s.resolver.Search(ctx, query)
	if nil != err {
		return 0, err
	}
	return s.results.Put(results), nil
}

func (s *Session) result(h Handle, i int) (catalog.Result, bool) {
	results, ok := s.results.Get(h)
	if !ok {
		return catalog.Result{}, false
	}
	return results.At(i)
}

func (s *Session) ResultCount(h Handle) int {
	results, ok := s.results.Get(h)
	if !ok {
		return 0
	}
	return results.Len()
}

func (s *Session) ResultTitle(h Handle, i int) (string, bool) {
	r, ok := s.result(h, i)
	return r.Label, ok
}

func (s *Session) ResultURL(h Handle, i int) (string, bool) {
	r, ok := s.result(h, i)
	return r.Permalink, ok
}

func (s *Session) ResultDuration(h Handle, i int) (time.Duration, bool) {
	r, ok := s.result(h, i)
	return r.Duration, ok
}

func (s *Session) Results(h Handle) (*catalog.ResultSet, bool) {
	return s.results.Get(h)
}

// ReleaseResults drops the result set. Releasing an unknown or already
// released handle is a no-op.
func (s *Session) ReleaseResults(h Handle) bool {
	_, ok := s.results.Release(h)
	return ok
}

func (s *Session) Resolve(ctx context.Context, trackURL string) (*resolver.Resolution, error) {
	if err := validateTrackURL(trackURL); nil != err {
		return nil, err
	}
	return s.resolver.Resolve(ctx, trackURL)
}

func (s *Session) Describe(ctx context.Context, trackURL string) (*soundcloud.Track, error) {
	if err := validateTrackURL(trackURL); nil != err {
		return nil, err
	}
	return s.resolver.Describe(ctx, trackURL)
}

// StreamTrack resolves trackURL and decodes it into consume until the stream
// ends, cancel is set or ctx is done.
func (s *Session) StreamTrack(ctx context.Context, trackURL string, cancel pipeline.CancelToken, consume func(pcm.Block)) (pipeline.State, error) {
	if nil == consume {
		return pipeline.StateFailed, invalidArgument("consumer callback is nil")
	}

	res, err := s.Resolve(ctx, trackURL)
	if nil != err {
		return pipeline.StateFailed, err
	}
	s.logger.Info().Str("track", res.Track.Label()).Dur("duration", res.Track.Duration).Msg("Streaming track")

	return s.pipeline.Stream(ctx, res.Locator, cancel, consume)
}

// DownloadTrack writes the track into dir, or the configured download
// directory when dir is empty.
func (s *Session) DownloadTrack(ctx context.Context, trackURL, dir string) (*download.Result, error) {
	if err := validateTrackURL(trackURL); nil != err {
		return nil, err
	}
	if dir == "" {
		dir = s.cfg.DownloadDir
	}
	return s.downloader.Track(ctx, trackURL, dir)
}
