package boundary_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xeptore/scplayer/boundary"
	"github.com/xeptore/scplayer/download"
	"github.com/xeptore/scplayer/pipeline"
	"github.com/xeptore/scplayer/soundcloud"
)

func TestStatusOf(t *testing.T) {
	t.Parallel()

	diagnostics := errors.New("diagnostics")
	tests := []struct {
		name   string
		err    error
		status boundary.Status
	}{
		{"nil", nil, boundary.StatusOK},
		{"invalid_argument", fmt.Errorf("%w: empty", boundary.ErrInvalidArgument), boundary.StatusInvalidArgument},
		{"client_id", fmt.Errorf("%w: %w", soundcloud.ErrClientIDNotFound, diagnostics), boundary.StatusClientIDNotFound},
		{"network", fmt.Errorf("%w: %w", soundcloud.ErrNetwork, diagnostics), boundary.StatusNetwork},
		{"http_status", &soundcloud.HTTPStatusError{StatusCode: http.StatusNotFound, Status: "404 Not Found", Err: diagnostics}, boundary.StatusNetwork},
		{"decode", fmt.Errorf("%w: %w", soundcloud.ErrDecode, diagnostics), boundary.StatusNetwork},
		{"unsupported", fmt.Errorf("%w: %w", soundcloud.ErrUnsupportedFormat, diagnostics), boundary.StatusUnsupportedFormat},
		{"exchange_wrapping_status", fmt.Errorf("%w: %w", soundcloud.ErrStreamExchange, &soundcloud.HTTPStatusError{StatusCode: 401, Status: "401", Err: diagnostics}), boundary.StatusStreamExchange},
		{"connect", fmt.Errorf("%w: %w", pipeline.ErrConnect, diagnostics), boundary.StatusConnect},
		{"probe", fmt.Errorf("%w: %w", pipeline.ErrProbe, diagnostics), boundary.StatusProbe},
		{"no_track", pipeline.ErrNoDecodableTrack, boundary.StatusNoDecodableTrack},
		{"decoder_init", pipeline.ErrDecoderInit, boundary.StatusDecoderInit},
		{"stream_read", pipeline.ErrStreamRead, boundary.StatusStreamRead},
		{"file_write", fmt.Errorf("%w: %w", download.ErrFileWrite, diagnostics), boundary.StatusFileWrite},
		{"cancelled", context.Canceled, boundary.StatusCancelled},
		{"deadline", context.DeadlineExceeded, boundary.StatusCancelled},
		{"network_timeout", fmt.Errorf("%w: %w", soundcloud.ErrNetwork, context.DeadlineExceeded), boundary.StatusNetwork},
		{"unclassified", diagnostics, boundary.StatusNetwork},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, test.status, boundary.StatusOf(test.err))
		})
	}
}
