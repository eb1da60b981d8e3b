package mp3_test

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xeptore/scplayer/errutil"
	"github.com/xeptore/scplayer/media"
	"github.com/xeptore/scplayer/media/mp3"
)

var (
	stereoHeader = []byte{0xFF, 0xFB, 0x90, 0x00}
	monoHeader   = []byte{0xFF, 0xFB, 0x90, 0xC0}
)

// silentFrame builds an MPEG-1 Layer III frame whose side info and main data
// are all zero, which decodes to digital silence.
func silentFrame(t *testing.T, header []byte) []byte {
	t.Helper()

	h, err := mp3.ParseHeader(header)
	require.NoError(t, err)
	frame := make([]byte, h.FrameSize())
	copy(frame, header)
	return frame
}

func stream(t *testing.T, header []byte, frames int) []byte {
	t.Helper()

	var buf bytes.Buffer
	for range frames {
		buf.Write(silentFrame(t, header))
	}
	return buf.Bytes()
}

func id3v2Tag(payload int) []byte {
	tag := []byte{'I', 'D', '3', 0x04, 0x00, 0x00, 0x00, 0x00, byte(payload >> 7 & 0x7F), byte(payload & 0x7F)}
	return append(tag, make([]byte, payload)...)
}

func id3v1Tag() []byte {
	tag := make([]byte, 128)
	copy(tag, "TAG")
	return tag
}

func collect(t *testing.T, f media.Format) ([]media.Packet, error) {
	t.Helper()

	var out []media.Packet
	for {
		p, err := f.NextPacket()
		if nil != err {
			return out, err
		}
		out = append(out, media.Packet{TrackID: p.TrackID, Data: bytes.Clone(p.Data)})
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("connection reset by peer") }

func TestProbe(t *testing.T) {
	t.Parallel()

	t.Run("plain_stream", func(t *testing.T) {
		t.Parallel()

		f, err := mp3.Prober{}.Probe(bytes.NewReader(stream(t, stereoHeader, 3)), media.Hint{Extension: "mp3", MimeType: "audio/mpeg"})
		require.NoError(t, err)

		tracks := f.Tracks()
		require.Len(t, tracks, 1)
		assert.Equal(t, media.CodecMP3, tracks[0].Params.Codec)
		assert.Equal(t, 44100, tracks[0].Params.SampleRate)
		assert.Equal(t, 2, tracks[0].Params.Channels)
		assert.Equal(t, 1152, tracks[0].Params.FramesPerPacket)

		packets, err := collect(t, f)
		require.ErrorIs(t, err, io.EOF)
		require.Len(t, packets, 3)
		for _, p := range packets {
			assert.Equal(t, tracks[0].ID, p.TrackID)
			assert.Len(t, p.Data, 417)
			assert.Equal(t, stereoHeader, p.Data[:4])
		}
	})

	t.Run("tags_and_junk", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		buf.Write(id3v2Tag(300))
		buf.Write(stream(t, monoHeader, 2))
		buf.Write(make([]byte, 7))
		buf.Write(silentFrame(t, monoHeader))
		buf.Write(id3v1Tag())

		f, err := mp3.Prober{}.Probe(&buf, media.Hint{}) //nolint:exhaustruct
		require.NoError(t, err)
		assert.Equal(t, 1, f.Tracks()[0].Params.Channels)

		packets, err := collect(t, f)
		require.ErrorIs(t, err, io.EOF)
		assert.Len(t, packets, 3)
	})

	t.Run("truncated_trailing_frame", func(t *testing.T) {
		t.Parallel()

		data := append(stream(t, stereoHeader, 3), silentFrame(t, stereoHeader)[:100]...)
		f, err := mp3.Prober{}.Probe(bytes.NewReader(data), media.Hint{}) //nolint:exhaustruct
		require.NoError(t, err)

		packets, err := collect(t, f)
		require.ErrorIs(t, err, io.EOF)
		assert.Len(t, packets, 3)
	})

	t.Run("read_failure", func(t *testing.T) {
		t.Parallel()

		r := io.MultiReader(bytes.NewReader(stream(t, stereoHeader, 3)), failingReader{})
		f, err := mp3.Prober{}.Probe(r, media.Hint{}) //nolint:exhaustruct
		require.NoError(t, err)

		packets, err := collect(t, f)
		require.Error(t, err)
		assert.NotErrorIs(t, err, io.EOF)
		assert.True(t, errutil.IsFlaw(err))
		assert.Len(t, packets, 3)
	})

	t.Run("no_frames", func(t *testing.T) {
		t.Parallel()

		tests := map[string][]byte{
			"empty":    nil,
			"zeros":    make([]byte, 4096),
			"html":     []byte("<html><body>AccessDenied</body></html>"),
			"tag_only": id3v2Tag(64),
		}
		for name, data := range tests {
			_, err := mp3.Prober{}.Probe(bytes.NewReader(data), media.Hint{}) //nolint:exhaustruct
			assert.ErrorIs(t, err, media.ErrNoFrameSync, name)
		}
	})
}

func TestDecoder(t *testing.T) {
	t.Parallel()

	t.Run("factory_rejects", func(t *testing.T) {
		t.Parallel()

		_, err := mp3.DecoderFactory{}.NewDecoder(media.CodecParams{Codec: "aac", SampleRate: 44100, Channels: 2}) //nolint:exhaustruct
		require.ErrorIs(t, err, media.ErrUnsupportedCodec)

		_, err = mp3.DecoderFactory{}.NewDecoder(media.CodecParams{Codec: media.CodecMP3, SampleRate: 44100, Channels: 6}) //nolint:exhaustruct
		require.Error(t, err)

		for _, sr := range []int{8000, 11025, 12000, 7000} {
			_, err = mp3.DecoderFactory{}.NewDecoder(media.CodecParams{Codec: media.CodecMP3, SampleRate: sr, Channels: 1}) //nolint:exhaustruct
			require.Error(t, err, "sample rate %d", sr)
		}

		for _, sr := range []int{16000, 22050, 24000, 32000, 44100, 48000} {
			_, err = mp3.DecoderFactory{}.NewDecoder(media.CodecParams{Codec: media.CodecMP3, SampleRate: sr, Channels: 2}) //nolint:exhaustruct
			require.NoError(t, err, "sample rate %d", sr)
		}
	})

	t.Run("stereo_silence", func(t *testing.T) {
		t.Parallel()

		dec, err := mp3.DecoderFactory{}.NewDecoder(media.CodecParams{Codec: media.CodecMP3, SampleRate: 44100, Channels: 2}) //nolint:exhaustruct
		require.NoError(t, err)

		for range 3 {
			buf, err := dec.Decode(media.Packet{TrackID: 0, Data: silentFrame(t, stereoHeader)})
			require.NoError(t, err)
			assert.Equal(t, 44100, buf.SampleRate)
			assert.Equal(t, 1152, buf.Frames)
			require.Equal(t, 2, buf.Channels())
			for _, plane := range buf.Planes {
				require.Len(t, plane, 1152)
				for _, s := range plane {
					assert.InDelta(t, 0, s, 1e-6)
				}
			}
		}
	})

	t.Run("mono", func(t *testing.T) {
		t.Parallel()

		dec, err := mp3.DecoderFactory{}.NewDecoder(media.CodecParams{Codec: media.CodecMP3, SampleRate: 44100, Channels: 1}) //nolint:exhaustruct
		require.NoError(t, err)

		buf, err := dec.Decode(media.Packet{TrackID: 0, Data: silentFrame(t, monoHeader)})
		require.NoError(t, err)
		assert.Equal(t, 1, buf.Channels())
		assert.Equal(t, 1152, buf.Frames)
	})

	t.Run("recovers_after_bad_packet", func(t *testing.T) {
		t.Parallel()

		dec, err := mp3.DecoderFactory{}.NewDecoder(media.CodecParams{Codec: media.CodecMP3, SampleRate: 44100, Channels: 2}) //nolint:exhaustruct
		require.NoError(t, err)

		_, err = dec.Decode(media.Packet{TrackID: 0, Data: silentFrame(t, stereoHeader)})
		require.NoError(t, err)

		_, err = dec.Decode(media.Packet{TrackID: 0, Data: silentFrame(t, stereoHeader)[:20]})
		require.Error(t, err)

		_, err = dec.Decode(media.Packet{TrackID: 0, Data: []byte{0x00, 0x01}})
		require.Error(t, err)

		buf, err := dec.Decode(media.Packet{TrackID: 0, Data: silentFrame(t, stereoHeader)})
		require.NoError(t, err)
		assert.Equal(t, 1152, buf.Frames)
	})
}
