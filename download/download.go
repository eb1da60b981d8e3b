package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/xeptore/flaw/v8"

	"github.com/xeptore/scplayer/config"
	"github.com/xeptore/scplayer/errutil"
	"github.com/xeptore/scplayer/log"
	"github.com/xeptore/scplayer/pipeline"
	"github.com/xeptore/scplayer/soundcloud"
	"github.com/xeptore/scplayer/soundcloud/resolver"
)

var ErrFileWrite = errors.New("file write failed")

type Resolver interface {
	Resolve(ctx context.Context, trackURL string) (*resolver.Resolution, error)
}

type Result struct {
	Track *soundcloud.Track
	Path  string
	Bytes int64
}

type Downloader struct {
	resolver  Resolver
	userAgent string
	logger    zerolog.Logger
}

func New(cfg config.Config, r Resolver, logger zerolog.Logger) *Downloader {
	return &Downloader{
		resolver:  r,
		userAgent: cfg.UserAgent,
		logger:    logger.With().Str("module", "download").Logger(),
	}
}

// Track resolves trackURL and writes the raw progressive rendition to
// "{owner} - {title}.mp3" inside dir. A partially written file is removed.
func (d *Downloader) Track(ctx context.Context, trackURL, dir string) (*Result, error) {
	res, err := d.resolver.Resolve(ctx, trackURL)
	if nil != err {
		return nil, err
	}

	body, err := pipeline.Connect(ctx, d.userAgent, res.Locator)
	if nil != err {
		return nil, err
	}
	defer func() {
		if closeErr := body.Close(); nil != closeErr {
			d.logger.Debug().Func(log.Flaw(closeErr)).Msg("Failed to close media stream")
		}
	}()

	fileName := filepath.Join(dir, res.FileName)
	n, err := writeFile(ctx, fileName, body)
	if nil != err {
		return nil, err
	}
	d.logger.Info().Str("file", fileName).Int64("bytes", n).Int64("track_id", res.Track.ID).Msg("Track downloaded")

	return &Result{Track: res.Track, Path: fileName, Bytes: n}, nil
}

type fileWriter struct {
	f   *os.File
	err error
}

func (w *fileWriter) Write(p []byte) (int, error) {
	n, err := w.f.Write(p)
	if nil != err {
		w.err = err
	}
	return n, err
}

func writeFile(ctx context.Context, fileName string, r io.Reader) (n int64, err error) {
	flawP := flaw.P{"file_name": fileName}

	f, err := os.OpenFile(fileName, os.O_CREATE|os.O_SYNC|os.O_TRUNC|os.O_WRONLY, 0o0644)
	if nil != err {
		flawP["err_debug_tree"] = errutil.Tree(err).FlawP()
		return 0, fmt.Errorf("%w: %w", ErrFileWrite, flaw.From(fmt.Errorf("failed to create track file: %v", err)).Append(flawP))
	}
	defer func() {
		if nil != err {
			if removeErr := os.Remove(fileName); nil != removeErr && !errors.Is(removeErr, os.ErrNotExist) {
				flawP["remove_err_debug_tree"] = errutil.Tree(removeErr).FlawP()
				err = errors.Join(err, flaw.From(fmt.Errorf("failed to remove incomplete track file: %v", removeErr)).Append(flawP))
			}
		}

		if closeErr := f.Close(); nil != closeErr {
			flawP["err_debug_tree"] = errutil.Tree(closeErr).FlawP()
			closeErr = flaw.From(fmt.Errorf("failed to close track file: %v", closeErr)).Append(flawP)
			switch {
			case nil == err:
				err = fmt.Errorf("%w: %w", ErrFileWrite, closeErr)
			case errutil.IsContext(ctx):
				err = errors.Join(ctx.Err(), closeErr)
			default:
				err = errors.Join(err, closeErr)
			}
		}
	}()

	w := &fileWriter{f: f, err: nil}
	n, err = io.Copy(w, r)
	if nil != err {
		flawP["written"] = n
		flawP["err_debug_tree"] = errutil.Tree(err).FlawP()
		switch {
		case errutil.IsContext(ctx):
			return n, ctx.Err()
		case nil != w.err:
			return n, fmt.Errorf("%w: %w", ErrFileWrite, flaw.From(fmt.Errorf("failed to write track file: %v", err)).Append(flawP))
		default:
			return n, fmt.Errorf("%w: %w", pipeline.ErrStreamRead, flaw.From(fmt.Errorf("failed to read media stream: %v", err)).Append(flawP))
		}
	}

	if err := f.Sync(); nil != err {
		flawP["err_debug_tree"] = errutil.Tree(err).FlawP()
		return n, fmt.Errorf("%w: %w", ErrFileWrite, flaw.From(fmt.Errorf("failed to sync track file: %v", err)).Append(flawP))
	}

	return n, nil
}
