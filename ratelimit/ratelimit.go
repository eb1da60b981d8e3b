package ratelimit

import (
	"math/rand/v2"
	"time"
)

const DownloadConcurrency = 2

// DownloadSpacing is the jittered pause between starting two downloads of
// one batch, between 250ms and 1s.
func DownloadSpacing() time.Duration {
	const (
		from = 250
		to   = 1000
	)
	millis := from + rand.IntN(to-from+1) //nolint:gosec
	return time.Duration(millis) * time.Millisecond
}
