package producer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChunk(t *testing.T) {
	items := make([]int, 23)
	for i := range items {
		items[i] = i
	}

	chunks := Chunk(items, 10)
	assert.Len(t, chunks, 3)
	assert.Len(t, chunks[0], 10)
	assert.Len(t, chunks[1], 10)
	assert.Len(t, chunks[2], 3)
	assert.Equal(t, 22, chunks[2][2])
}

func TestChunk_Edges(t *testing.T) {
	assert.Nil(t, Chunk([]int{}, 10))
	assert.Len(t, Chunk([]int{1, 2, 3}, 0), 1)
	assert.Len(t, Chunk([]int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 10), 1)
}
