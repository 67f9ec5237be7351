// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package chunker

import (
	"strings"

	"github.com/poiesic/lectern/core"
)

// Config controls chunking behavior. Sizes are in characters, not tokens.
type Config struct {
	ChunkSize    int // Target chunk size.
	ChunkOverlap int // Overlap between consecutive chunks.
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		ChunkSize:    1000,
		ChunkOverlap: 200,
	}
}

// sanitize replaces out-of-range values with defaults.
func (c Config) sanitize() Config {
	def := DefaultConfig()
	if c.ChunkSize <= 0 {
		c.ChunkSize = def.ChunkSize
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		c.ChunkOverlap = def.ChunkOverlap
		if c.ChunkOverlap >= c.ChunkSize {
			c.ChunkOverlap = c.ChunkSize / 5
		}
	}
	return c
}

// ChunkPages splits per-page text into overlapping chunks, preserving page
// provenance. A page may yield zero or more chunks; every chunk's
// Metadata.Page is the page it was split from, so a chunk never silently
// spans a provenance change. Empty pages contribute nothing.
func ChunkPages(pages []core.Page, cfg Config) []core.Chunk {
	cfg = cfg.sanitize()

	var chunks []core.Chunk
	for _, page := range pages {
		text := strings.TrimSpace(page.Text)
		if text == "" {
			continue
		}
		for _, part := range splitText(text, cfg.ChunkSize, cfg.ChunkOverlap) {
			chunks = append(chunks, core.Chunk{
				Content:  part,
				Metadata: core.ChunkMetadata{Page: page.Number},
			})
		}
	}
	return chunks
}

// splitText breaks text into chunks of at most size characters with the
// requested overlap, preferring paragraph boundaries, then sentences, then
// words, and only splitting mid-word as a last resort.
func splitText(text string, size, overlap int) []string {
	if len(text) <= size {
		return []string{text}
	}
	return mergeParts(splitByParagraphs(text), "\n\n", size, overlap, splitParagraph)
}

// splitParagraph handles a single paragraph that exceeds the chunk size.
func splitParagraph(para string, size, overlap int) []string {
	return mergeParts(splitSentences(para), " ", size, overlap, splitSentence)
}

// splitSentence handles a single sentence that exceeds the chunk size.
func splitSentence(sent string, size, overlap int) []string {
	return mergeParts(strings.Fields(sent), " ", size, overlap, splitWord)
}

// splitWord is the character-level last resort for a single oversized word.
func splitWord(word string, size, overlap int) []string {
	var parts []string
	runes := []rune(word)
	step := size - overlap
	if step < 1 {
		step = 1
	}
	for start := 0; start < len(runes); start += step {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		parts = append(parts, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}
	return parts
}

// mergeParts greedily packs parts into chunks of at most size characters,
// joined by sep, carrying overlap characters from the end of each emitted
// chunk into the next. Parts that individually exceed the size are handed
// to the next finer splitter.
func mergeParts(parts []string, sep string, size, overlap int, finer func(string, int, int) []string) []string {
	var result []string
	var current strings.Builder

	flush := func() string {
		if current.Len() == 0 {
			return ""
		}
		chunk := current.String()
		result = append(result, chunk)
		current.Reset()
		return chunk
	}

	for _, part := range parts {
		if len(part) > size {
			flush()
			result = append(result, finer(part, size, overlap)...)
			continue
		}

		extra := len(part)
		if current.Len() > 0 {
			extra += len(sep)
		}
		if current.Len()+extra > size {
			emitted := flush()
			// Start next chunk with overlap from end of the emitted chunk.
			if tail := overlapTail(emitted, overlap); tail != "" && len(tail)+len(sep)+len(part) <= size {
				current.WriteString(tail)
			}
		}

		if current.Len() > 0 {
			current.WriteString(sep)
		}
		current.WriteString(part)
	}

	flush()
	return result
}

// overlapTail extracts up to overlap characters from the end of text,
// aligned to a word boundary where possible.
func overlapTail(text string, overlap int) string {
	if overlap <= 0 || text == "" {
		return ""
	}
	if len(text) <= overlap {
		return text
	}
	tail := text[len(text)-overlap:]
	// Drop the leading partial word.
	if idx := strings.IndexAny(tail, " \n\t"); idx >= 0 {
		tail = strings.TrimSpace(tail[idx:])
	}
	return tail
}

// splitByParagraphs splits on double-newlines.
func splitByParagraphs(text string) []string {
	parts := strings.Split(text, "\n\n")
	var result []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

// splitSentences does basic sentence splitting.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	for i, r := range text {
		current.WriteRune(r)
		if (r == '.' || r == '!' || r == '?') && i+1 < len(text) && text[i+1] == ' ' {
			sentences = append(sentences, strings.TrimSpace(current.String()))
			current.Reset()
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}

	return sentences
}
