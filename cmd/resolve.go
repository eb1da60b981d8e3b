package main

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

const flagLocator = "locator"

func resolveCommand() *cli.Command {
	//nolint:exhaustruct
	return &cli.Command{
		Name:      "resolve",
		Aliases:   []string{"r"},
		Usage:     "Show track details",
		ArgsUsage: "<track url>",
		Action:    resolve,
		Flags: []cli.Flag{
			//nolint:exhaustruct
			&cli.BoolFlag{
				Name:  flagLocator,
				Usage: "Also exchange the progressive rendition for its media URL",
			},
		},
	}
}

func resolve(cliCtx *cli.Context) error {
	trackURL, err := firstArg(cliCtx, "track url")
	if nil != err {
		return err
	}

	e, cancel, err := setup(cliCtx)
	if nil != err {
		return err
	}
	defer cancel()

	w := cliCtx.App.Writer
	if !cliCtx.Bool(flagLocator) {
		track, err := e.session.Describe(e.ctx, trackURL)
		if nil != err {
			return err
		}
		fmt.Fprintf(w, "Title:     %s\nOwner:     %s\nDuration:  %s\nPermalink: %s\nFile:      %s\n", track.Title, track.Owner, formatDuration(track.Duration), track.Permalink, track.FileName())
		for _, v := range track.Transcodings {
			fmt.Fprintf(w, "  - %s %s %s\n", v.Protocol, v.MimeType, v.Quality)
		}
		return nil
	}

	res, err := e.session.Resolve(e.ctx, trackURL)
	if nil != err {
		return err
	}
	fmt.Fprintf(w, "Title:     %s\nOwner:     %s\nDuration:  %s\nFile:      %s\nMime:      %s\nLocator:   %s\n", res.Track.Title, res.Track.Owner, formatDuration(res.Track.Duration), res.FileName, res.Transcoding.MimeType, res.Locator.URL)
	return nil
}
