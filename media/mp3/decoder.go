package mp3

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"slices"

	gomp3 "github.com/hajimehoshi/go-mp3"
	"github.com/xeptore/flaw/v8"

	"github.com/xeptore/scplayer/errutil"
	"github.com/xeptore/scplayer/media"
)

// go-mp3 always emits 16-bit little-endian stereo.
const bytesPerPCMFrame = 4

type DecoderFactory struct{}

func (DecoderFactory) NewDecoder(params media.CodecParams) (media.Decoder, error) {
	if params.Codec != media.CodecMP3 {
		return nil, fmt.Errorf("%w: %q", media.ErrUnsupportedCodec, params.Codec)
	}
	if params.Channels < 1 || params.Channels > 2 {
		return nil, flaw.From(fmt.Errorf("unsupported channel count: %d", params.Channels))
	}
	if params.SampleRate <= 0 {
		return nil, flaw.From(fmt.Errorf("invalid sample rate: %d", params.SampleRate))
	}
	// MPEG 2.5 sample rates have no decoder.
	v1, v2 := sampleRates[Version1], sampleRates[Version2]
	if !slices.Contains(v1[:], params.SampleRate) && !slices.Contains(v2[:], params.SampleRate) {
		flawP := flaw.P{"sample_rate": params.SampleRate}
		return nil, flaw.From(fmt.Errorf("unsupported sample rate: %d", params.SampleRate)).Append(flawP)
	}

	return &Decoder{
		channels: params.Channels,
		feed:     new(packetFeed),
		dec:      nil,
		pcm:      nil,
		buf:      new(media.AudioBuffer),
	}, nil
}

// packetFeed hands exactly one packet at a time to the frame decoder.
type packetFeed struct {
	data []byte
}

func (f *packetFeed) Read(p []byte) (int, error) {
	if len(f.data) == 0 {
		return 0, io.EOF
	}
	n := copy(p, f.data)
	f.data = f.data[n:]
	return n, nil
}

// Decoder decodes one MPEG audio frame per packet. The synthesis state and
// bit reservoir carry over between packets as long as packets decode cleanly.
type Decoder struct {
	channels int
	feed     *packetFeed
	dec      *gomp3.Decoder
	pcm      []byte
	buf      *media.AudioBuffer
}

func (d *Decoder) Decode(p media.Packet) (*media.AudioBuffer, error) {
	h, err := ParseHeader(p.Data)
	if nil != err {
		flawP := flaw.P{"packet_size": len(p.Data), "err_debug_tree": errutil.Tree(err).FlawP()}
		return nil, flaw.From(fmt.Errorf("invalid frame header: %v", err)).Append(flawP)
	}
	if h.Version == Version25 {
		return nil, flaw.From(errors.New("mpeg 2.5 frames are not supported"))
	}

	d.feed.data = p.Data
	defer func() { d.feed.data = nil }()

	if nil == d.dec {
		dec, err := gomp3.NewDecoder(d.feed)
		if nil != err {
			flawP := flaw.P{"packet_size": len(p.Data), "err_debug_tree": errutil.Tree(err).FlawP()}
			return nil, flaw.From(fmt.Errorf("failed to initialize frame decoder: %v", err)).Append(flawP)
		}
		d.dec = dec
	}

	frames := h.SamplesPerFrame()
	size := frames * bytesPerPCMFrame
	if cap(d.pcm) < size {
		d.pcm = make([]byte, size)
	}
	d.pcm = d.pcm[:size]

	if _, err := io.ReadFull(d.dec, d.pcm); nil != err {
		// go-mp3 drops its reservoir on any failure; start over on the next packet
		d.dec = nil
		flawP := flaw.P{"packet_size": len(p.Data), "err_debug_tree": errutil.Tree(err).FlawP()}
		return nil, flaw.From(fmt.Errorf("failed to decode frame: %v", err)).Append(flawP)
	}

	d.buf.Reset(h.SampleRate, d.channels, frames)
	for i := range frames {
		for ch := range d.channels {
			s := int16(binary.LittleEndian.Uint16(d.pcm[i*bytesPerPCMFrame+ch*2:]))
			d.buf.Planes[ch][i] = float32(s) / 32768
		}
	}
	return d.buf, nil
}
