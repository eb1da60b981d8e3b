package mp3

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/xeptore/flaw/v8"

	"github.com/xeptore/scplayer/errutil"
	"github.com/xeptore/scplayer/media"
)

const (
	readBufferSize = 32 * 1024
	id3v2Size      = 10
	id3v1Size      = 128
	maxFrameSize   = 2881
	maxProbeScan   = 256 * 1024
	trackID        = 0
)

type Prober struct{}

// Probe skips leading ID3v2 tags and locates the first frame that is
// followed by a compatible frame header. The hint is advisory.
func (Prober) Probe(r io.Reader, _ media.Hint) (media.Format, error) {
	br := bufio.NewReaderSize(r, readBufferSize)
	if err := skipID3v2(br); nil != err {
		if errors.Is(err, io.EOF) {
			return nil, media.ErrNoFrameSync
		}
		return nil, err
	}

	h, err := syncFrame(br, maxProbeScan, true)
	if nil != err {
		if errors.Is(err, io.EOF) {
			return nil, media.ErrNoFrameSync
		}
		return nil, err
	}

	return &Demuxer{
		r: br,
		track: media.Track{
			ID: trackID,
			Params: media.CodecParams{
				Codec:           media.CodecMP3,
				SampleRate:      h.SampleRate,
				Channels:        h.Channels(),
				FramesPerPacket: h.SamplesPerFrame(),
			},
		},
		frame: make([]byte, maxFrameSize),
	}, nil
}

// Demuxer splits an MPEG audio elementary stream into one packet per frame.
type Demuxer struct {
	r     *bufio.Reader
	track media.Track
	frame []byte
}

func (d *Demuxer) Tracks() []media.Track {
	return []media.Track{d.track}
}

func (d *Demuxer) NextPacket() (media.Packet, error) {
	h, err := syncFrame(d.r, -1, false)
	if nil != err {
		return media.Packet{}, err
	}

	size := h.FrameSize()
	if n, err := io.ReadFull(d.r, d.frame[:size]); nil != err {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			// truncated trailing frame
			return media.Packet{}, io.EOF
		}
		flawP := flaw.P{"frame_size": size, "read": n, "err_debug_tree": errutil.Tree(err).FlawP()}
		return media.Packet{}, flaw.From(fmt.Errorf("failed to read frame: %v", err)).Append(flawP)
	}

	return media.Packet{TrackID: d.track.ID, Data: d.frame[:size]}, nil
}

func readError(err error, what string) error {
	if errors.Is(err, io.EOF) {
		return io.EOF
	}
	flawP := flaw.P{"err_debug_tree": errutil.Tree(err).FlawP()}
	return flaw.From(fmt.Errorf("failed to %s: %v", what, err)).Append(flawP)
}

func skipID3v2(r *bufio.Reader) error {
	for {
		b, err := r.Peek(id3v2Size)
		if nil != err {
			if errors.Is(err, io.EOF) {
				// shorter than a tag header; let frame sync decide
				return nil
			}
			return readError(err, "peek tag header")
		}
		if string(b[:3]) != "ID3" {
			return nil
		}

		size := int(b[6]&0x7F)<<21 | int(b[7]&0x7F)<<14 | int(b[8]&0x7F)<<7 | int(b[9]&0x7F)
		size += id3v2Size
		if b[5]&0x10 != 0 {
			size += id3v2Size
		}
		if _, err := r.Discard(size); nil != err {
			return readError(err, "skip id3v2 tag")
		}
	}
}

// syncFrame advances r to the next plausible frame header without consuming
// it. limit bounds the bytes scanned; a negative limit scans to the end.
// Unless strict, a header found without skipping any byte is trusted as is.
func syncFrame(r *bufio.Reader, limit int, strict bool) (Header, error) {
	for scanned := 0; limit < 0 || scanned <= limit; {
		b, err := r.Peek(HeaderSize)
		if nil != err {
			return Header{}, readError(err, "peek frame header")
		}

		if h, err := ParseHeader(b); nil == err {
			if scanned == 0 && !strict {
				return h, nil
			}
			ok, err := confirmFrame(r, h)
			if nil != err {
				return Header{}, err
			}
			if ok {
				return h, nil
			}
		}

		skip := 1
		if string(b[:3]) == "TAG" {
			skip = id3v1Size
		}
		n, err := r.Discard(skip)
		scanned += n
		if nil != err {
			return Header{}, readError(err, "skip unsynchronized bytes")
		}
	}
	return Header{}, media.ErrNoFrameSync
}

// confirmFrame accepts h when the stream ends within the frame or the
// following header agrees on version and sample rate.
func confirmFrame(r *bufio.Reader, h Header) (bool, error) {
	size := h.FrameSize()
	b, err := r.Peek(size + HeaderSize)
	if nil != err {
		if errors.Is(err, io.EOF) {
			return true, nil
		}
		return false, readError(err, "peek following frame header")
	}

	next, err := ParseHeader(b[size:])
	if nil != err {
		return string(b[size:size+3]) == "TAG", nil
	}
	return next.Version == h.Version && next.SampleRate == h.SampleRate, nil
}
