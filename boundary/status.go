package boundary

import (
	"context"
	"errors"

	"github.com/xeptore/scplayer/download"
	"github.com/xeptore/scplayer/pipeline"
	"github.com/xeptore/scplayer/soundcloud"
)

type Status int

const (
	StatusOK                Status = 0
	StatusInvalidArgument   Status = -1
	StatusClientIDNotFound  Status = -2
	StatusNetwork           Status = -3
	StatusUnsupportedFormat Status = -4
	StatusStreamExchange    Status = -5
	StatusConnect           Status = -6
	StatusProbe             Status = -7
	StatusNoDecodableTrack  Status = -8
	StatusDecoderInit       Status = -9
	StatusStreamRead        Status = -10
	StatusFileWrite         Status = -11
	StatusCancelled         Status = -12
)

var ErrInvalidArgument = errors.New("invalid argument")

var statusTable = []struct {
	err    error
	status Status
}{
	{ErrInvalidArgument, StatusInvalidArgument},
	{soundcloud.ErrClientIDNotFound, StatusClientIDNotFound},
	// exchange failures wrap the catalog error that caused them
	{soundcloud.ErrStreamExchange, StatusStreamExchange},
	{soundcloud.ErrUnsupportedFormat, StatusUnsupportedFormat},
	{soundcloud.ErrNetwork, StatusNetwork},
	{soundcloud.ErrHTTPStatus, StatusNetwork},
	{soundcloud.ErrDecode, StatusNetwork},
	{pipeline.ErrConnect, StatusConnect},
	{pipeline.ErrProbe, StatusProbe},
	{pipeline.ErrNoDecodableTrack, StatusNoDecodableTrack},
	{pipeline.ErrDecoderInit, StatusDecoderInit},
	{pipeline.ErrStreamRead, StatusStreamRead},
	{download.ErrFileWrite, StatusFileWrite},
	{context.Canceled, StatusCancelled},
	{context.DeadlineExceeded, StatusCancelled},
}

// StatusOf maps err to its host status code. Unclassified errors report
// StatusNetwork.
func StatusOf(err error) Status {
	if nil == err {
		return StatusOK
	}
	for _, v := range statusTable {
		if errors.Is(err, v.err) {
			return v.status
		}
	}
	return StatusNetwork
}
