package pipeline

import "errors"

type State int

const (
	StateConnecting State = iota
	StateProbing
	StateDecoding
	StateFinished
	StateCancelled
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateProbing:
		return "probing"
	case StateDecoding:
		return "decoding"
	case StateFinished:
		return "finished"
	case StateCancelled:
		return "cancelled"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

func (s State) IsTerminal() bool {
	return s == StateFinished || s == StateCancelled || s == StateFailed
}

var (
	ErrConnect          = errors.New("media stream connection failed")
	ErrProbe            = errors.New("media stream probe failed")
	ErrNoDecodableTrack = errors.New("no decodable track")
	ErrDecoderInit      = errors.New("decoder initialization failed")
	ErrStreamRead       = errors.New("media stream read failed")
)
