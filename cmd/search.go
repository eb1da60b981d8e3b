package main

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/xeptore/scplayer/iterutil"
)

func searchCommand() *cli.Command {
	//nolint:exhaustruct
	return &cli.Command{
		Name:      "search",
		Aliases:   []string{"s"},
		Usage:     "Search playable tracks",
		ArgsUsage: "<query>",
		Action:    search,
	}
}

func search(cliCtx *cli.Context) error {
	e, cancel, err := setup(cliCtx)
	if nil != err {
		return err
	}
	defer cancel()

	query := strings.Join(cliCtx.Args().Slice(), " ")
	h, err := e.session.Search(e.ctx, query)
	if nil != err {
		return err
	}
	defer e.session.ReleaseResults(h)

	results, _ := e.session.Results(h)
	if results.Len() == 0 {
		fmt.Fprintln(cliCtx.App.Writer, "No playable tracks found")
		return nil
	}

	for i, r := range iterutil.WithIndex(results.All()) {
		fmt.Fprintf(cliCtx.App.Writer, "%2d. %s [%s]\n    %s\n", i+1, r.Label, formatDuration(r.Duration), r.Permalink)
	}
	return nil
}
