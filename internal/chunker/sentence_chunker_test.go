package chunker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elsayed85/quick-rag/internal/domain"
)

func TestChunk_WindowsWithOverlap(t *testing.T) {
	c := NewSentenceChunker(2, 1)
	chunks, err := c.Chunk(domain.Document{ID: "d", Path: "/books/a.txt", Content: "One. Two. Three."})
	require.NoError(t, err)

	require.Len(t, chunks, 2)
	assert.Equal(t, "One. Two.", chunks[0].Text)
	assert.Equal(t, "Two. Three.", chunks[1].Text)
	assert.Equal(t, "d:1", chunks[1].ChunkID)
	assert.Equal(t, "a.txt", chunks[0].SourceFile)
}

func TestChunk_PagesFromFormFeed(t *testing.T) {
	c := NewSentenceChunker(5, 0)
	chunks, err := c.Chunk(domain.Document{ID: "d", Path: "book.txt", Content: "Page one text.\fPage two text.\f\fPage four"})
	require.NoError(t, err)

	require.Len(t, chunks, 3)
	assert.Equal(t, 1, chunks[0].Page)
	assert.Equal(t, 2, chunks[1].Page)
	assert.Equal(t, 4, chunks[2].Page)
	assert.Equal(t, "Page four", chunks[2].Text)
	assert.Equal(t, 2, chunks[2].Index)
}

func TestChunk_EmptyDocument(t *testing.T) {
	chunks, err := NewSentenceChunker(5, 1).Chunk(domain.Document{ID: "d", Content: "   "})
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestNewSentenceChunker_ClampsOverlap(t *testing.T) {
	c := NewSentenceChunker(2, 5)
	chunks, err := c.Chunk(domain.Document{ID: "d", Content: "A. B. C. D."})
	require.NoError(t, err)
	assert.Len(t, chunks, 3)
}
