package services

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkText_SplitsAtHeadings(t *testing.T) {
	text := "# Jane Doe\nBackend engineer\n\n## Experience\nAcme Corp, 2019-2024\n\n## Education\nBSc Computer Science"

	chunks := NewTextChunker().ChunkText(text, 800, 100)

	require.Len(t, chunks, 3)
	assert.True(t, strings.HasPrefix(chunks[0], "# Jane Doe"))
	assert.True(t, strings.HasPrefix(chunks[1], "## Experience"))
	assert.True(t, strings.HasPrefix(chunks[2], "## Education"))
}

func TestChunkText_PacksLongSectionWithOverlap(t *testing.T) {
	var paragraphs []string
	for i := 0; i < 12; i++ {
		paragraphs = append(paragraphs, strings.Repeat("word ", 20))
	}
	text := "## Projects\n\n" + strings.Join(paragraphs, "\n\n")

	chunks := NewTextChunker().ChunkText(text, 300, 40)

	require.Greater(t, len(chunks), 1)
	for i := 1; i < len(chunks); i++ {
		tail := getLastNChars(chunks[i-1], 40)
		assert.True(t, strings.HasPrefix(chunks[i], tail), "chunk %d starts with the previous tail", i)
	}
	for _, c := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(c), 300+40+1)
	}
}

func TestChunkText_Empty(t *testing.T) {
	assert.Empty(t, NewTextChunker().ChunkText("  \n\n ", 500, 50))
}

func TestGetLastNChars_Runes(t *testing.T) {
	assert.Equal(t, "ünf", getLastNChars("fünf", 3))
	assert.Equal(t, "abc", getLastNChars("abc", 10))
	assert.Equal(t, "", getLastNChars("abc", 0))
}
