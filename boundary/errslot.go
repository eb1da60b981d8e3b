package boundary

import "sync"

// MaxErrorSlots bounds the pending messages, including those of threads that
// exited without reading theirs. When full, an arbitrary slot is dropped.
const MaxErrorSlots = 1024

// ErrorSlots keeps the last error message per calling thread.
type ErrorSlots struct {
	mux   sync.Mutex
	slots map[uint64]string
}

func NewErrorSlots() *ErrorSlots {
	return &ErrorSlots{
		mux:   sync.Mutex{},
		slots: make(map[uint64]string),
	}
}

func (s *ErrorSlots) Set(key uint64, msg string) {
	s.mux.Lock()
	defer s.mux.Unlock()

	if _, ok := s.slots[key]; !ok && len(s.slots) >= MaxErrorSlots {
		for k := range s.slots {
			delete(s.slots, k)
			break
		}
	}
	s.slots[key] = msg
}

// Take returns and clears the message stored for key.
func (s *ErrorSlots) Take(key uint64) (string, bool) {
	s.mux.Lock()
	defer s.mux.Unlock()

	msg, ok := s.slots[key]
	delete(s.slots, key)
	return msg, ok
}

func (s *ErrorSlots) Clear(key uint64) {
	s.mux.Lock()
	defer s.mux.Unlock()

	delete(s.slots, key)
}

func (s *ErrorSlots) Len() int {
	s.mux.Lock()
	defer s.mux.Unlock()

	return len(s.slots)
}
