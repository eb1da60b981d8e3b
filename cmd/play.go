package main

import (
	"context"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/urfave/cli/v2"

	"github.com/xeptore/scplayer/pcm"
	"github.com/xeptore/scplayer/pipeline"
)

const speakerBufferSize = 250 * time.Millisecond

func playCommand() *cli.Command {
	//nolint:exhaustruct
	return &cli.Command{
		Name:      "play",
		Aliases:   []string{"p"},
		Usage:     "Play a track through the default audio device",
		ArgsUsage: "<track url>",
		Action:    play,
	}
}

// blockStreamer feeds decoded blocks to the speaker. It outputs silence while
// the decoder lags behind and ends once blocks is closed and drained.
type blockStreamer struct {
	blocks   <-chan pcm.Block
	pending  []float32
	channels int
	closed   bool
}

func (s *blockStreamer) Stream(samples [][2]float64) (n int, ok bool) {
	for n < len(samples) {
		if len(s.pending) == 0 {
			if s.closed {
				return n, n > 0
			}
			select {
			case b, open := <-s.blocks:
				if !open {
					s.closed = true
					continue
				}
				s.pending, s.channels = b.Samples(), b.Channels
				continue
			default:
				for ; n < len(samples); n++ {
					samples[n] = [2]float64{}
				}
				return n, true
			}
		}

		if s.channels == 1 {
			v := float64(s.pending[0])
			samples[n] = [2]float64{v, v}
			s.pending = s.pending[1:]
		} else {
			samples[n] = [2]float64{float64(s.pending[0]), float64(s.pending[1])}
			s.pending = s.pending[s.channels:]
		}
		n++
	}
	return n, true
}

func (s *blockStreamer) Err() error {
	return nil
}

type streamOutcome struct {
	state pipeline.State
	err   error
}

func play(cliCtx *cli.Context) error {
	trackURL, err := firstArg(cliCtx, "track url")
	if nil != err {
		return err
	}

	e, cancel, err := setup(cliCtx)
	if nil != err {
		return err
	}
	defer cancel()

	var (
		blocks  = make(chan pcm.Block, 64)
		formats = make(chan int, 1)
		outcome = make(chan streamOutcome, 1)
		stop    = new(pipeline.Flag)
		quit    = make(chan struct{})
	)
	abort := sync.OnceFunc(func() {
		stop.Cancel()
		close(quit)
	})
	defer abort()
	stopWatching := context.AfterFunc(e.ctx, stop.Cancel)
	defer stopWatching()

	go func() {
		defer close(blocks)
		announced := false
		state, err := e.session.StreamTrack(e.ctx, trackURL, stop, func(b pcm.Block) {
			if !announced {
				announced = true
				formats <- b.SampleRate
			}
			select {
			case blocks <- b.Clone():
			case <-e.ctx.Done():
			case <-quit:
			}
		})
		outcome <- streamOutcome{state: state, err: err}
	}()

	var sampleRate beep.SampleRate
	select {
	case sr := <-formats:
		sampleRate = beep.SampleRate(sr)
	case o := <-outcome:
		outcome <- o
		select {
		case sr := <-formats:
			sampleRate = beep.SampleRate(sr)
		default:
			if nil != o.err {
				return o.err
			}
			e.logger.Warn().Str("state", o.state.String()).Msg("Stream ended before producing audio")
			return nil
		}
	}

	if err := speaker.Init(sampleRate, sampleRate.N(speakerBufferSize)); nil != err {
		abort()
		<-outcome
		return err
	}
	defer speaker.Close()

	done := make(chan struct{})
	speaker.Play(beep.Seq(&blockStreamer{blocks: blocks, pending: nil, channels: 0, closed: false}, beep.Callback(func() { close(done) })))
	e.logger.Info().Int("sample_rate", int(sampleRate)).Str("url", trackURL).Msg("Playing")

	select {
	case <-done:
	case <-e.ctx.Done():
		speaker.Clear()
	}

	o := <-outcome
	if nil != o.err {
		return o.err
	}
	e.logger.Info().Str("state", o.state.String()).Msg("Playback ended")
	return nil
}
