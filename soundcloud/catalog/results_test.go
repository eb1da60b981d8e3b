package catalog_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xeptore/scplayer/soundcloud/catalog"
)

func TestResultSet(t *testing.T) {
	t.Parallel()

	var empty *catalog.ResultSet
	assert.Equal(t, 0, empty.Len())
	_, ok := empty.At(0)
	assert.False(t, ok)

	set := catalog.NewResultSet([]catalog.Result{{Label: "a"}, {Label: "b"}, {Label: "c"}}) //nolint:exhaustruct
	var labels []string
	for r := range set.All() {
		labels = append(labels, r.Label)
		if r.Label == "b" {
			break
		}
	}
	assert.Equal(t, []string{"a", "b"}, labels)
}
