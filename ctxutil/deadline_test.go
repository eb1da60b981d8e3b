package ctxutil_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/xeptore/scplayer/ctxutil"
)

type ctxKey struct{}

func TestWithDelayedTimeout(t *testing.T) {
	t.Parallel()

	t.Run("initially_active", func(t *testing.T) {
		t.Parallel()

		parentCtx, parentCancel := context.WithCancel(context.WithValue(t.Context(), ctxKey{}, "download"))
		defer parentCancel()

		ctx, cancel := ctxutil.WithDelayedTimeout(parentCtx, time.Second)
		defer cancel()

		assert.NoError(t, ctx.Err())
		assert.Equal(t, "download", ctx.Value(ctxKey{}))
	})

	t.Run("cancels_after_delay", func(t *testing.T) {
		t.Parallel()

		parentCtx, parentCancel := context.WithCancel(t.Context())
		defer parentCancel()

		delay := 500 * time.Millisecond
		ctx, cancel := ctxutil.WithDelayedTimeout(parentCtx, delay)
		defer cancel()

		start := time.Now()
		parentCancel()
		assert.NoError(t, ctx.Err(), "expected context to outlive its parent briefly")

		select {
		case <-ctx.Done():
			assert.GreaterOrEqual(t, time.Since(start), delay)
		case <-time.After(delay + 2*time.Second):
			assert.Fail(t, "expected context to be cancelled after the delay")
		}
	})

	t.Run("explicit_cancel", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := ctxutil.WithDelayedTimeout(t.Context(), time.Hour)
		cancel()

		select {
		case <-ctx.Done():
		case <-time.After(time.Second):
			assert.Fail(t, "expected context to be cancelled immediately")
		}
	})
}
