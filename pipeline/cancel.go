package pipeline

import "sync/atomic"

// CancelToken is polled once before every packet is pulled from the stream.
type CancelToken interface {
	Cancelled() bool
}

type CancelFunc func() bool

func (f CancelFunc) Cancelled() bool {
	return f()
}

// Flag is a CancelToken that can be set from any goroutine.
type Flag struct {
	v atomic.Bool
}

func (f *Flag) Cancel() {
	f.v.Store(true)
}

func (f *Flag) Cancelled() bool {
	return f.v.Load()
}

var Never CancelToken = CancelFunc(func() bool { return false })
