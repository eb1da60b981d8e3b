package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/xeptore/scplayer/boundary"
	"github.com/xeptore/scplayer/ctxutil"
	"github.com/xeptore/scplayer/errutil"
	"github.com/xeptore/scplayer/ratelimit"
)

const (
	flagDir   = "dir"
	flagJobs  = "jobs"
	flagGrace = "grace"
)

func downloadCommand() *cli.Command {
	//nolint:exhaustruct
	return &cli.Command{
		Name:      "download",
		Aliases:   []string{"d"},
		Usage:     "Download tracks as MP3 files",
		ArgsUsage: "<track url>...",
		Action:    download,
		Flags: []cli.Flag{
			//nolint:exhaustruct
			&cli.StringFlag{
				Name:    flagDir,
				Aliases: []string{"d"},
				Usage:   "Target directory, defaults to the configured download directory",
			},
			//nolint:exhaustruct
			&cli.IntFlag{
				Name:    flagJobs,
				Aliases: []string{"j"},
				Usage:   "Maximum number of concurrent downloads",
				Value:   ratelimit.DownloadConcurrency,
			},
			//nolint:exhaustruct
			&cli.DurationFlag{
				Name:  flagGrace,
				Usage: "Time in-flight downloads may keep running after an interrupt",
				Value: 5 * time.Second,
			},
		},
	}
}

func download(cliCtx *cli.Context) error {
	trackURLs := cliCtx.Args().Slice()
	if len(trackURLs) == 0 {
		return fmt.Errorf("%w: expected at least one track url argument", boundary.ErrInvalidArgument)
	}
	jobs := cliCtx.Int(flagJobs)
	if jobs < 1 {
		return fmt.Errorf("%w: jobs must be positive", boundary.ErrInvalidArgument)
	}

	e, cancel, err := setup(cliCtx)
	if nil != err {
		return err
	}
	defer cancel()

	dlCtx, dlCancel := ctxutil.WithDelayedTimeout(e.ctx, cliCtx.Duration(flagGrace))
	defer dlCancel()

	wg, wgCtx := errgroup.WithContext(dlCtx)
	wg.SetLimit(jobs)
	for i, trackURL := range trackURLs {
		if i > 0 {
			select {
			case <-e.ctx.Done():
			case <-time.After(ratelimit.DownloadSpacing()):
			}
		}
		if errutil.IsContext(e.ctx) {
			e.logger.Warn().Str("url", trackURL).Msg("Skipping download after interrupt")
			continue
		}
		wg.Go(func() error {
			res, err := e.session.DownloadTrack(wgCtx, trackURL, cliCtx.String(flagDir))
			if nil != err {
				return err
			}
			e.logger.Info().Str("file", res.Path).Str("size", humanize.Bytes(uint64(res.Bytes))).Msg("Downloaded")
			fmt.Fprintln(cliCtx.App.Writer, res.Path)
			return nil
		})
	}

	if err := wg.Wait(); nil != err {
		return err
	}
	if errutil.IsContext(e.ctx) {
		return e.ctx.Err()
	}
	return nil
}
