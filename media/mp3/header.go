package mp3

import (
	"errors"
)

type Version int

const (
	Version25 Version = iota
	versionReserved
	Version2
	Version1
)

type ChannelMode int

const (
	ChannelModeStereo ChannelMode = iota
	ChannelModeJointStereo
	ChannelModeDualChannel
	ChannelModeMono
)

const HeaderSize = 4

var (
	errNoSync             = errors.New("no frame sync")
	errReservedVersion    = errors.New("reserved mpeg version")
	errUnsupportedLayer   = errors.New("only layer iii is supported")
	errFreeFormatBitrate  = errors.New("free format bitrate is not supported")
	errBadBitrate         = errors.New("bad bitrate index")
	errReservedSampleRate = errors.New("reserved sample rate index")
)

var (
	bitratesV1 = [16]int{0, 32, 40, 48, 56, 64, 80, 96, 112, 128, 160, 192, 224, 256, 320, 0}
	bitratesV2 = [16]int{0, 8, 16, 24, 32, 40, 48, 56, 64, 80, 96, 112, 128, 144, 160, 0}

	sampleRates = map[Version][3]int{
		Version1:  {44100, 48000, 32000},
		Version2:  {22050, 24000, 16000},
		Version25: {11025, 12000, 8000},
	}
)

// Header is a decoded MPEG audio Layer III frame header.
type Header struct {
	Version     Version
	Protected   bool
	Bitrate     int // kbit/s
	SampleRate  int
	Padding     bool
	ChannelMode ChannelMode
}

func ParseHeader(b []byte) (Header, error) {
	if len(b) < HeaderSize || b[0] != 0xFF || b[1]&0xE0 != 0xE0 {
		return Header{}, errNoSync
	}

	version := Version((b[1] >> 3) & 0x03)
	if version == versionReserved {
		return Header{}, errReservedVersion
	}

	if layer := (b[1] >> 1) & 0x03; layer != 0x01 {
		return Header{}, errUnsupportedLayer
	}

	bitrateIndex := b[2] >> 4
	switch bitrateIndex {
	case 0:
		return Header{}, errFreeFormatBitrate
	case 15:
		return Header{}, errBadBitrate
	}

	sampleRateIndex := (b[2] >> 2) & 0x03
	if sampleRateIndex == 3 {
		return Header{}, errReservedSampleRate
	}

	bitrate := bitratesV1[bitrateIndex]
	if version != Version1 {
		bitrate = bitratesV2[bitrateIndex]
	}

	return Header{
		Version:     version,
		Protected:   b[1]&0x01 == 0,
		Bitrate:     bitrate,
		SampleRate:  sampleRates[version][sampleRateIndex],
		Padding:     (b[2]>>1)&0x01 == 1,
		ChannelMode: ChannelMode(b[3] >> 6),
	}, nil
}

func (h Header) Channels() int {
	if h.ChannelMode == ChannelModeMono {
		return 1
	}
	return 2
}

// SamplesPerFrame is the number of PCM frames (per channel) the frame decodes to.
func (h Header) SamplesPerFrame() int {
	if h.Version == Version1 {
		return 1152
	}
	return 576
}

// FrameSize is the full frame length in bytes, header included.
func (h Header) FrameSize() int {
	padding := 0
	if h.Padding {
		padding = 1
	}
	return h.SamplesPerFrame()/8*h.Bitrate*1000/h.SampleRate + padding
}
