package sliceutils_test

import (
	"testing"

	"github.com/habiliai/edudash/internal/sliceutils"
	"github.com/stretchr/testify/assert"
)

func TestTail(t *testing.T) {
	s := []int{1, 2, 3, 4, 5}

	assert.Equal(t, []int{4, 5}, sliceutils.Tail(s, 2))
	assert.Equal(t, s, sliceutils.Tail(s, 5))
	assert.Equal(t, s, sliceutils.Tail(s, 10))
	assert.Empty(t, sliceutils.Tail(s, 0))
	assert.Empty(t, sliceutils.Tail([]int(nil), 3))
}
