package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// snapshot collects the index through Each
func snapshot(idx *Index) map[string]int {
	out := make(map[string]int)
	idx.Each(func(command string, count int) bool {
		out[command] = count
		return true
	})
	return out
}

func TestBuild(t *testing.T) {
	idx := Build([]string{"git status", "ls", "git status", "Git Status", "", "ls", "git status"})

	assert.Equal(t, 3, idx.Len())
	assert.Equal(t, 6, idx.Total())
	assert.Equal(t, map[string]int{
		"git status": 3,
		"Git Status": 1,
		"ls":         2,
	}, snapshot(idx), "commands are case-sensitive and empty lines are ignored")
}

func TestBuild_Empty(t *testing.T) {
	idx := Build(nil)

	assert.Zero(t, idx.Len())
	assert.Zero(t, idx.Total())
	assert.Empty(t, snapshot(idx))
}

func TestIndex_NoZeroCounts(t *testing.T) {
	idx := Build([]string{"a", "b", "a", "c"})

	idx.Each(func(command string, count int) bool {
		assert.Positive(t, count, command)
		return true
	})
}

func TestIndex_EachStops(t *testing.T) {
	idx := Build([]string{"a", "b", "c"})

	visited := 0
	idx.Each(func(string, int) bool {
		visited++
		return false
	})
	assert.Equal(t, 1, visited)
}

func TestIndex_NilSafe(t *testing.T) {
	var idx *Index

	assert.Zero(t, idx.Len())
	assert.Zero(t, idx.Total())
	assert.Empty(t, snapshot(idx))
}
