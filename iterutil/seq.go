package iterutil

import (
	"iter"
)

// WithIndex pairs every value of s with its zero-based position.
func WithIndex[E any](s iter.Seq[E]) iter.Seq2[int, E] {
	return func(yield func(int, E) bool) {
		index := 0
		for v := range s {
			if !yield(index, v) {
				return
			}
			index++
		}
	}
}
