package mathutil_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xeptore/scplayer/mathutil"
)

func TestClamp(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, float32(1), mathutil.Clamp(float32(1.5), -1, 1), 0)
	assert.InDelta(t, float32(-1), mathutil.Clamp(float32(-3), -1, 1), 0)
	assert.InDelta(t, float32(0.25), mathutil.Clamp(float32(0.25), -1, 1), 0)
	assert.Equal(t, 10, mathutil.Clamp(42, 0, 10))
}
