package pocketvec

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompareScores(t *testing.T) {
	nan := float32(math.NaN())

	assert.Equal(t, -1, compareScores(2, 1))
	assert.Equal(t, 1, compareScores(1, 2))
	assert.Equal(t, 0, compareScores(1, 1))
	assert.Equal(t, -1, compareScores(-5, nan))
	assert.Equal(t, 1, compareScores(nan, -5))
	assert.Equal(t, 0, compareScores(nan, nan))
}

func TestMergeResults(t *testing.T) {
	a := []SearchResult{{"a1", 0.9}, {"a2", 0.5}}
	b := []SearchResult{{"b1", 0.7}, {"b2", 0.5}}
	c := []SearchResult{{"c1", float32(math.NaN())}}

	got := MergeResults(4, a, b, c)
	assert.Equal(t, []SearchResult{{"a1", 0.9}, {"b1", 0.7}, {"a2", 0.5}, {"b2", 0.5}}, got)

	all := MergeResults(10, a, b, c)
	assert.Len(t, all, 5)
	assert.Equal(t, "c1", all[4].ID)

	assert.Empty(t, MergeResults(0, a, b))
	assert.Empty(t, MergeResults(3))
	assert.Equal(t, "a1", a[0].ID, "inputs untouched")
}
