package pcm

import (
	"encoding/binary"
	"fmt"
	"math"
	"slices"

	"github.com/xeptore/scplayer/config"
	"github.com/xeptore/scplayer/mathutil"
	"github.com/xeptore/scplayer/media"
)

type Layout int

const (
	// LayoutStereo always yields two channels: mono is duplicated and only
	// the first two channels of wider sources are kept.
	LayoutStereo Layout = iota
	// LayoutPreserve keeps the source channel count.
	LayoutPreserve
)

func ParseLayout(s string) (Layout, error) {
	switch s {
	case config.ChannelLayoutStereo:
		return LayoutStereo, nil
	case config.ChannelLayoutPreserve:
		return LayoutPreserve, nil
	default:
		return 0, fmt.Errorf("unsupported channel layout %q", s)
	}
}

func (l Layout) OutputChannels(in int) int {
	if l == LayoutStereo {
		return 2
	}
	return in
}

// Block is a read-only view over interleaved samples. It is only valid for
// the duration of the consumer call that received it; use Clone to retain it.
type Block struct {
	samples    []float32
	Frames     int
	Channels   int
	SampleRate int
}

func NewBlock(samples []float32, channels, sampleRate int) Block {
	frames := 0
	if channels > 0 {
		frames = len(samples) / channels
	}
	return Block{
		samples:    samples,
		Frames:     frames,
		Channels:   channels,
		SampleRate: sampleRate,
	}
}

func (b Block) Samples() []float32 {
	return b.samples
}

// Len is the total sample count, Frames times Channels.
func (b Block) Len() int {
	return len(b.samples)
}

func (b Block) Clone() Block {
	b.samples = slices.Clone(b.samples)
	return b
}

// Interleaver turns planar decoder output into interleaved blocks, reusing a
// single buffer between calls.
type Interleaver struct {
	layout Layout
	buf    []float32
}

func NewInterleaver(layout Layout) *Interleaver {
	return &Interleaver{layout: layout, buf: nil}
}

func (il *Interleaver) Interleave(ab *media.AudioBuffer) Block {
	in := ab.Channels()
	out := il.layout.OutputChannels(in)
	if in == 0 || ab.Frames == 0 {
		return NewBlock(il.buf[:0], out, ab.SampleRate)
	}

	n := ab.Frames * out
	if cap(il.buf) < n {
		il.buf = make([]float32, n)
	}
	il.buf = il.buf[:n]

	for ch := range out {
		src := ab.Planes[min(ch, in-1)]
		for i := range ab.Frames {
			il.buf[i*out+ch] = src[i]
		}
	}
	return NewBlock(il.buf, out, ab.SampleRate)
}

func AppendS16LE(dst []byte, samples []float32) []byte {
	for _, s := range samples {
		v := int16(mathutil.Clamp(s*32767, math.MinInt16, math.MaxInt16))
		dst = binary.LittleEndian.AppendUint16(dst, uint16(v))
	}
	return dst
}

func AppendF32LE(dst []byte, samples []float32) []byte {
	for _, s := range samples {
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(s))
	}
	return dst
}
