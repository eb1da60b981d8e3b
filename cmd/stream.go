package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v2"
	"github.com/xeptore/flaw/v8"
	"golang.org/x/term"

	"github.com/xeptore/scplayer/boundary"
	"github.com/xeptore/scplayer/errutil"
	"github.com/xeptore/scplayer/pcm"
	"github.com/xeptore/scplayer/pipeline"
)

const (
	flagFormat = "format"
	flagOutput = "output"

	formatF32LE = "f32le"
	formatS16LE = "s16le"
)

func streamCommand() *cli.Command {
	//nolint:exhaustruct
	return &cli.Command{
		Name:      "stream",
		Usage:     "Decode a track into raw interleaved PCM",
		ArgsUsage: "<track url>",
		Action:    stream,
		Flags: []cli.Flag{
			//nolint:exhaustruct
			&cli.StringFlag{
				Name:    flagFormat,
				Aliases: []string{"f"},
				Usage:   "Sample format, f32le or s16le",
				Value:   formatF32LE,
			},
			//nolint:exhaustruct
			&cli.StringFlag{
				Name:    flagOutput,
				Aliases: []string{"o"},
				Usage:   "Output file, - for stdout",
				Value:   "-",
			},
		},
	}
}

type sampleEncoder func(dst []byte, samples []float32) []byte

func encoderFor(format string) (sampleEncoder, error) {
	switch format {
	case formatF32LE:
		return pcm.AppendF32LE, nil
	case formatS16LE:
		return pcm.AppendS16LE, nil
	default:
		return nil, fmt.Errorf("%w: unsupported sample format %q", boundary.ErrInvalidArgument, format)
	}
}

func openOutput(name string) (io.WriteCloser, error) {
	if name == "-" {
		if term.IsTerminal(int(os.Stdout.Fd())) {
			return nil, fmt.Errorf("%w: refusing to write raw PCM to a terminal", boundary.ErrInvalidArgument)
		}
		return os.Stdout, nil
	}

	f, err := os.OpenFile(name, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o0644)
	if nil != err {
		flawP := flaw.P{"file_name": name, "err_debug_tree": errutil.Tree(err).FlawP()}
		return nil, flaw.From(fmt.Errorf("failed to create output file: %v", err)).Append(flawP)
	}
	return f, nil
}

func stream(cliCtx *cli.Context) (err error) {
	trackURL, err := firstArg(cliCtx, "track url")
	if nil != err {
		return err
	}
	encode, err := encoderFor(cliCtx.String(flagFormat))
	if nil != err {
		return err
	}

	e, cancel, err := setup(cliCtx)
	if nil != err {
		return err
	}
	defer cancel()

	out, err := openOutput(cliCtx.String(flagOutput))
	if nil != err {
		return err
	}
	defer func() {
		if out == os.Stdout {
			return
		}
		if closeErr := out.Close(); nil != closeErr {
			err = errors.Join(err, closeErr)
		}
	}()

	var (
		w        = bufio.NewWriterSize(out, 64*1024)
		buf      []byte
		written  uint64
		writeErr error
		stop     = new(pipeline.Flag)
		started  bool
	)
	stopWatching := context.AfterFunc(e.ctx, stop.Cancel)
	defer stopWatching()

	state, err := e.session.StreamTrack(e.ctx, trackURL, stop, func(b pcm.Block) {
		if nil != writeErr {
			return
		}
		if !started {
			started = true
			e.logger.Info().Int("sample_rate", b.SampleRate).Int("channels", b.Channels).Str("format", cliCtx.String(flagFormat)).Msg("Streaming PCM")
		}
		buf = encode(buf[:0], b.Samples())
		n, err := w.Write(buf)
		written += uint64(n)
		if nil != err {
			writeErr = err
			stop.Cancel()
		}
	})
	if nil == writeErr {
		writeErr = w.Flush()
	}
	if nil != writeErr {
		flawP := flaw.P{"written": written, "err_debug_tree": errutil.Tree(writeErr).FlawP()}
		return flaw.From(fmt.Errorf("failed to write PCM output: %v", writeErr)).Append(flawP)
	}
	if nil != err {
		return err
	}

	e.logger.Info().Str("state", state.String()).Str("written", humanize.Bytes(written)).Msg("Stream ended")
	if state == pipeline.StateCancelled {
		return context.Canceled
	}
	return nil
}
