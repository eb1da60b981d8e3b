package catalog

import (
	"iter"
	"slices"
	"time"
)

type Result struct {
	Label     string
	Title     string
	Owner     string
	Permalink string
	Duration  time.Duration
}

// ResultSet is an immutable, ordered list of playable search hits.
type ResultSet struct {
	results []Result
}

func NewResultSet(results []Result) *ResultSet {
	return &ResultSet{results: slices.Clone(results)}
}

func (s *ResultSet) Len() int {
	if nil == s {
		return 0
	}
	return len(s.results)
}

func (s *ResultSet) At(i int) (Result, bool) {
	if i < 0 || i >= s.Len() {
		return Result{}, false
	}
	return s.results[i], true
}

func (s *ResultSet) All() iter.Seq[Result] {
	return func(yield func(Result) bool) {
		for i := range s.Len() {
			if !yield(s.results[i]) {
				return
			}
		}
	}
}
