package cache_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xeptore/scplayer/cache"
	"github.com/xeptore/scplayer/soundcloud"
)

func TestTracksCache(t *testing.T) {
	t.Parallel()

	c := cache.New()
	calls := 0
	fetch := func() (*soundcloud.Track, error) {
		calls++
		return &soundcloud.Track{ID: 7, Title: "Flickermood"}, nil //nolint:exhaustruct
	}

	item, err := c.Tracks.Fetch("https://soundcloud.com/forss/flickermood", time.Minute, fetch)
	require.NoError(t, err)
	assert.Equal(t, int64(7), item.Value().ID)

	_, err = c.Tracks.Fetch("https://soundcloud.com/forss/flickermood", time.Minute, fetch)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	assert.True(t, c.Tracks.Delete("https://soundcloud.com/forss/flickermood"))
	_, err = c.Tracks.Fetch("https://soundcloud.com/forss/flickermood", time.Minute, fetch)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)

	errFetch := errors.New("fetch failed")
	_, err = c.Tracks.Fetch("other", time.Minute, func() (*soundcloud.Track, error) { return nil, errFetch })
	assert.ErrorIs(t, err, errFetch)
}
