package boundary

import "sync"

// Handle is an opaque, non-zero reference handed across the host boundary.
type Handle uint64

// Registry maps handles to values. Lookups after Release report false
// instead of failing.
type Registry[T any] struct {
	mux   sync.Mutex
	next  Handle
	items map[Handle]T
}

func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{
		mux:   sync.Mutex{},
		next:  0,
		items: make(map[Handle]T),
	}
}

func (r *Registry[T]) Put(v T) Handle {
	r.mux.Lock()
	defer r.mux.Unlock()

	r.next++
	r.items[r.next] = v
	return r.next
}

func (r *Registry[T]) Get(h Handle) (T, bool) {
	r.mux.Lock()
	defer r.mux.Unlock()

	v, ok := r.items[h]
	return v, ok
}

func (r *Registry[T]) Release(h Handle) (T, bool) {
	r.mux.Lock()
	defer r.mux.Unlock()

	v, ok := r.items[h]
	delete(r.items, h)
	return v, ok
}

func (r *Registry[T]) Len() int {
	r.mux.Lock()
	defer r.mux.Unlock()

	return len(r.items)
}
