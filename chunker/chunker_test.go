package chunker

import (
	"strings"
	"testing"

	"github.com/poiesic/lectern/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkPages_ShortPage(t *testing.T) {
	pages := []core.Page{{Number: 1, Text: "A short page."}}

	chunks := ChunkPages(pages, DefaultConfig())

	require.Len(t, chunks, 1)
	assert.Equal(t, "A short page.", chunks[0].Content)
	assert.Equal(t, 1, chunks[0].Metadata.Page)
}

func TestChunkPages_EmptyPageContributesNothing(t *testing.T) {
	pages := []core.Page{
		{Number: 1, Text: "   \n  "},
		{Number: 2, Text: "Real content here."},
	}

	chunks := ChunkPages(pages, DefaultConfig())

	require.Len(t, chunks, 1)
	assert.Equal(t, 2, chunks[0].Metadata.Page)
}

func TestChunkPages_LongPageKeepsProvenance(t *testing.T) {
	// Page longer than the chunk size must produce multiple chunks, all
	// carrying the originating page number.
	para := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 10)
	text := para + "\n\n" + para + "\n\n" + para
	require.Greater(t, len(text), 1000)

	pages := []core.Page{{Number: 7, Text: text}}
	chunks := ChunkPages(pages, DefaultConfig())

	require.Greater(t, len(chunks), 1)
	for _, chunk := range chunks {
		assert.Equal(t, 7, chunk.Metadata.Page)
		assert.LessOrEqual(t, len(chunk.Content), 1000)
		assert.NotEmpty(t, chunk.Content)
	}
}

func TestChunkPages_PrefersParagraphBoundaries(t *testing.T) {
	first := strings.Repeat("alpha beta gamma. ", 30)
	second := strings.Repeat("delta epsilon zeta. ", 30)
	pages := []core.Page{{Number: 1, Text: first + "\n\n" + second}}

	chunks := ChunkPages(pages, Config{ChunkSize: 600, ChunkOverlap: 50})

	require.Greater(t, len(chunks), 1)
	// No chunk should split a word in half: every chunk boundary falls on
	// whitespace or punctuation for this input.
	for _, chunk := range chunks {
		assert.False(t, strings.HasPrefix(chunk.Content, "lpha"), "chunk starts mid-word: %q", chunk.Content[:10])
	}
}

func TestChunkPages_OversizedWord(t *testing.T) {
	// A single unbreakable token longer than the chunk size falls back to
	// character splitting rather than being dropped.
	word := strings.Repeat("x", 2500)
	pages := []core.Page{{Number: 3, Text: word}}

	chunks := ChunkPages(pages, DefaultConfig())

	require.Greater(t, len(chunks), 1)
	var total int
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk.Content), 1000)
		total += len(chunk.Content)
	}
	// Overlap means total emitted >= original length.
	assert.GreaterOrEqual(t, total, 2500)
}

func TestChunkPages_SanitizesConfig(t *testing.T) {
	pages := []core.Page{{Number: 1, Text: "Some text."}}

	// Nonsense values fall back to defaults instead of panicking or looping.
	chunks := ChunkPages(pages, Config{ChunkSize: -5, ChunkOverlap: -1})

	require.Len(t, chunks, 1)
	assert.Equal(t, "Some text.", chunks[0].Content)
}

func TestChunkPages_ConsecutiveChunksOverlap(t *testing.T) {
	text := strings.Repeat("one two three four five six seven eight nine ten. ", 40)
	pages := []core.Page{{Number: 1, Text: text}}

	chunks := ChunkPages(pages, Config{ChunkSize: 400, ChunkOverlap: 100})
	require.Greater(t, len(chunks), 1)

	// The head of each subsequent chunk repeats text from the previous one.
	for i := 1; i < len(chunks); i++ {
		head := chunks[i].Content
		if len(head) > 50 {
			head = head[:50]
		}
		firstWord := strings.Fields(head)[0]
		assert.Contains(t, chunks[i-1].Content, firstWord)
	}
}
