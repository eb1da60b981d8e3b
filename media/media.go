// Package media describes the probe, demux and decode capabilities the
// streaming pipeline is written against.
package media

import (
	"errors"
	"io"
)

type Codec string

const (
	CodecNull Codec = ""
	CodecMP3  Codec = "mp3"
)

var (
	ErrUnsupportedCodec = errors.New("unsupported codec")
	ErrNoFrameSync      = errors.New("no frame sync found")
)

type CodecParams struct {
	Codec           Codec
	SampleRate      int
	Channels        int
	FramesPerPacket int
}

type Track struct {
	ID     int
	Params CodecParams
}

// Packet is one demuxed unit of compressed data. Data is owned by the
// receiver until the next call to NextPacket.
type Packet struct {
	TrackID int
	Data    []byte
}

type Hint struct {
	Extension string
	MimeType  string
}

type Format interface {
	Tracks() []Track
	// NextPacket returns io.EOF once the stream ends cleanly.
	NextPacket() (Packet, error)
}

type Prober interface {
	Probe(r io.Reader, hint Hint) (Format, error)
}

type Decoder interface {
	Decode(p Packet) (*AudioBuffer, error)
}

type DecoderFactory interface {
	NewDecoder(params CodecParams) (Decoder, error)
}

// AudioBuffer holds planar samples in [-1, 1]. It is valid until the next
// Decode call on the decoder that returned it.
type AudioBuffer struct {
	SampleRate int
	Frames     int
	Planes     [][]float32
}

func (b *AudioBuffer) Channels() int {
	return len(b.Planes)
}

// Reset resizes b to channels planes of frames samples, reusing capacity.
func (b *AudioBuffer) Reset(sampleRate, channels, frames int) {
	b.SampleRate = sampleRate
	b.Frames = frames
	if cap(b.Planes) < channels {
		b.Planes = make([][]float32, channels)
	}
	b.Planes = b.Planes[:channels]
	for i := range b.Planes {
		if cap(b.Planes[i]) < frames {
			b.Planes[i] = make([]float32, frames)
		}
		b.Planes[i] = b.Planes[i][:frames]
	}
}

// FirstTrack returns the first track carrying codec.
func FirstTrack(f Format, codec Codec) (Track, bool) {
	for _, t := range f.Tracks() {
		if t.Params.Codec == codec {
			return t, true
		}
	}
	return Track{}, false
}
