package cache

import (
	"sync"
	"time"

	"github.com/karlseguin/ccache/v3"

	"github.com/xeptore/scplayer/soundcloud"
)

type Cache struct {
	Tracks TracksCache
}

func New() *Cache {
	tracksCache := ccache.New(
		ccache.Configure[*soundcloud.Track]().
			MaxSize(1000).
			GetsPerPromote(3).
			ItemsToPrune(1),
	)

	return &Cache{
		Tracks: TracksCache{
			c:   tracksCache,
			mux: sync.Mutex{},
		},
	}
}

// TracksCache holds track descriptors keyed by permalink. Credentials and
// media locators never go in here.
type TracksCache struct {
	c   *ccache.Cache[*soundcloud.Track]
	mux sync.Mutex
}

func (c *TracksCache) Fetch(k string, ttl time.Duration, fetch func() (*soundcloud.Track, error)) (*ccache.Item[*soundcloud.Track], error) {
	c.mux.Lock()
	defer c.mux.Unlock()
	return c.c.Fetch(k, ttl, fetch)
}

func (c *TracksCache) Delete(k string) bool {
	c.mux.Lock()
	defer c.mux.Unlock()
	return c.c.Delete(k)
}
