package soundcloud_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xeptore/scplayer/soundcloud"
)

func TestTrackFileName(t *testing.T) {
	t.Parallel()

	track := soundcloud.Track{Owner: "AC/DC", Title: "Back/In/Black"} //nolint:exhaustruct
	assert.Equal(t, "AC_DC - Back_In_Black.mp3", track.FileName())
	assert.Equal(t, "AC/DC - Back/In/Black", track.Label())
	assert.Equal(t, "Forss - Flickermood.mp3", soundcloud.FileName("Forss", "Flickermood"))
}

func TestProgressiveTranscoding(t *testing.T) {
	t.Parallel()

	t.Run("first_progressive_wins", func(t *testing.T) {
		t.Parallel()

		track := soundcloud.Track{ //nolint:exhaustruct
			Transcodings: []soundcloud.Transcoding{
				{URL: "https://api/hls", Protocol: soundcloud.ProtocolHLS},                   //nolint:exhaustruct
				{URL: "https://api/progressive-1", Protocol: soundcloud.ProtocolProgressive}, //nolint:exhaustruct
				{URL: "https://api/progressive-2", Protocol: soundcloud.ProtocolProgressive}, //nolint:exhaustruct
			},
		}
		tc, ok := track.ProgressiveTranscoding()
		assert.True(t, ok)
		assert.Equal(t, "https://api/progressive-1", tc.URL)
	})

	t.Run("hls_only", func(t *testing.T) {
		t.Parallel()

		track := soundcloud.Track{ //nolint:exhaustruct
			Transcodings: []soundcloud.Transcoding{
				{URL: "https://api/hls", Protocol: soundcloud.ProtocolHLS}, //nolint:exhaustruct
			},
		}
		_, ok := track.ProgressiveTranscoding()
		assert.False(t, ok)
	})
}

func TestHTTPStatusError(t *testing.T) {
	t.Parallel()

	inner := errors.New("diagnostics")
	err := fmt.Errorf("%w: %w", soundcloud.ErrNetwork, &soundcloud.HTTPStatusError{StatusCode: http.StatusNotFound, Status: "404 Not Found", Err: inner})
	assert.ErrorIs(t, err, soundcloud.ErrHTTPStatus)
	assert.ErrorIs(t, err, inner)

	var statusErr *soundcloud.HTTPStatusError
	if assert.ErrorAs(t, err, &statusErr) {
		assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	}
}
