package boundary_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xeptore/scplayer/boundary"
)

func TestRegistry(t *testing.T) {
	t.Parallel()

	r := boundary.NewRegistry[string]()

	var wg sync.WaitGroup
	handles := make([]boundary.Handle, 50)
	for i := range handles {
		wg.Add(1)
		go func() {
			defer wg.Done()
			handles[i] = r.Put("value")
		}()
	}
	wg.Wait()

	seen := make(map[boundary.Handle]bool, len(handles))
	for _, h := range handles {
		assert.NotZero(t, h)
		assert.False(t, seen[h])
		seen[h] = true
	}
	assert.Equal(t, 50, r.Len())

	v, ok := r.Release(handles[0])
	assert.True(t, ok)
	assert.Equal(t, "value", v)

	_, ok = r.Get(handles[0])
	assert.False(t, ok)
	_, ok = r.Release(handles[0])
	assert.False(t, ok)
	assert.Equal(t, 49, r.Len())
}

func TestErrorSlots(t *testing.T) {
	t.Parallel()

	s := boundary.NewErrorSlots()
	s.Set(1, "search failed")
	s.Set(2, "stream failed")

	msg, ok := s.Take(1)
	assert.True(t, ok)
	assert.Equal(t, "search failed", msg)

	_, ok = s.Take(1)
	assert.False(t, ok)

	s.Clear(2)
	_, ok = s.Take(2)
	assert.False(t, ok)
}

func TestErrorSlotsBounded(t *testing.T) {
	t.Parallel()

	s := boundary.NewErrorSlots()
	for key := range uint64(boundary.MaxErrorSlots + 10) {
		s.Set(key, "failed")
	}
	assert.Equal(t, boundary.MaxErrorSlots, s.Len())

	last := uint64(boundary.MaxErrorSlots + 9)
	msg, ok := s.Take(last)
	assert.True(t, ok)
	assert.Equal(t, "failed", msg)

	s.Set(last, "again")
	s.Set(last, "replaced")
	assert.Equal(t, boundary.MaxErrorSlots, s.Len())
	msg, ok = s.Take(last)
	assert.True(t, ok)
	assert.Equal(t, "replaced", msg)
}
