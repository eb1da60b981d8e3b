package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/xeptore/flaw/v8"

	"github.com/xeptore/scplayer/config"
	"github.com/xeptore/scplayer/errutil"
	"github.com/xeptore/scplayer/log"
	"github.com/xeptore/scplayer/media"
	"github.com/xeptore/scplayer/pcm"
	"github.com/xeptore/scplayer/soundcloud"
)

var mp3Hint = media.Hint{Extension: "mp3", MimeType: "audio/mpeg"}

type Pipeline struct {
	userAgent string
	prober    media.Prober
	decoders  media.DecoderFactory
	layout    pcm.Layout
	logger    zerolog.Logger
}

func New(cfg config.Config, prober media.Prober, decoders media.DecoderFactory, logger zerolog.Logger) (*Pipeline, error) {
	layout, err := pcm.ParseLayout(cfg.ChannelLayout)
	if nil != err {
		return nil, err
	}

	return &Pipeline{
		userAgent: cfg.UserAgent,
		prober:    prober,
		decoders:  decoders,
		layout:    layout,
		logger:    logger.With().Str("module", "pipeline").Logger(),
	}, nil
}

// Stream connects to locator, decodes it and hands each decoded packet to
// consume as one interleaved block, synchronously on the calling goroutine.
// Blocks passed to consume share one buffer and must not be retained.
//
// A set cancel token ends the call as StateCancelled with a nil error.
// Cancelling ctx also ends it as StateCancelled, returning ctx.Err().
func (p *Pipeline) Stream(ctx context.Context, locator *soundcloud.MediaLocator, cancel CancelToken, consume func(pcm.Block)) (State, error) {
	if nil == cancel {
		cancel = Never
	}

	body, err := Connect(ctx, p.userAgent, locator)
	if nil != err {
		if errutil.IsContext(ctx) {
			return StateCancelled, ctx.Err()
		}
		return StateFailed, err
	}
	defer func() {
		if closeErr := body.Close(); nil != closeErr {
			p.logger.Debug().Func(log.Flaw(closeErr)).Msg("Failed to close media stream")
		}
	}()

	format, err := p.prober.Probe(body, mp3Hint)
	if nil != err {
		if errutil.IsContext(ctx) {
			return StateCancelled, ctx.Err()
		}
		flawP := flaw.P{"err_debug_tree": errutil.Tree(err).FlawP()}
		return StateFailed, fmt.Errorf("%w: %w", ErrProbe, flaw.From(fmt.Errorf("failed to probe media stream: %v", err)).Append(flawP))
	}

	track, ok := media.FirstTrack(format, media.CodecMP3)
	if !ok {
		flawP := flaw.P{"tracks": len(format.Tracks())}
		return StateFailed, fmt.Errorf("%w: %w", ErrNoDecodableTrack, flaw.From(errors.New("stream carries no mp3 track")).Append(flawP))
	}

	dec, err := p.decoders.NewDecoder(track.Params)
	if nil != err {
		flawP := flaw.P{
			"sample_rate":    track.Params.SampleRate,
			"channels":       track.Params.Channels,
			"err_debug_tree": errutil.Tree(err).FlawP(),
		}
		return StateFailed, fmt.Errorf("%w: %w", ErrDecoderInit, flaw.From(fmt.Errorf("failed to create decoder: %v", err)).Append(flawP))
	}

	logger := p.logger.With().
		Int("sample_rate", track.Params.SampleRate).
		Int("source_channels", track.Params.Channels).
		Int("output_channels", p.layout.OutputChannels(track.Params.Channels)).
		Logger()
	logger.Debug().Msg("Decoding media stream")

	var (
		interleaver = pcm.NewInterleaver(p.layout)
		decoded     int
		skipped     int
	)
	for {
		if cancel.Cancelled() {
			logger.Debug().Int("decoded", decoded).Int("skipped", skipped).Msg("Stream cancelled by consumer")
			return StateCancelled, nil
		}
		if errutil.IsContext(ctx) {
			return StateCancelled, ctx.Err()
		}

		packet, err := format.NextPacket()
		if nil != err {
			switch {
			case errors.Is(err, io.EOF):
				logger.Debug().Int("decoded", decoded).Int("skipped", skipped).Msg("Stream finished")
				return StateFinished, nil
			case errutil.IsContext(ctx):
				return StateCancelled, ctx.Err()
			default:
				return StateFailed, fmt.Errorf("%w: %w", ErrStreamRead, err)
			}
		}

		if packet.TrackID != track.ID {
			continue
		}

		buf, err := dec.Decode(packet)
		if nil != err {
			skipped++
			logger.Debug().Func(log.Flaw(err)).Int("packet", decoded+skipped).Msg("Skipping undecodable packet")
			continue
		}
		decoded++

		block := interleaver.Interleave(buf)
		if block.Len() == 0 {
			continue
		}
		consume(block)
	}
}
