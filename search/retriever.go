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


// Package search implements hybrid retrieval over stored chunks. A vector
// ranking and a keyword ranking are fused with reciprocal rank fusion, so
// a chunk that ranks well in either list surfaces even when the other list
// misses it entirely.
package search

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/poiesic/lectern/ai"
	"github.com/poiesic/lectern/core"
	"github.com/poiesic/lectern/quality"
	"github.com/poiesic/lectern/storage"
)

// Config controls hybrid retrieval.
type Config struct {
	// MatchThreshold is the minimum cosine similarity for a vector match.
	MatchThreshold float32

	// MatchCount is the maximum number of results returned.
	MatchCount int

	// RRFK is the reciprocal-rank-fusion smoothing constant. Larger
	// values flatten the influence of rank position.
	RRFK int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		MatchThreshold: 0.3,
		MatchCount:     10,
		RRFK:           50,
	}
}

// sanitize replaces out-of-range values with defaults.
func (c Config) sanitize() Config {
	def := DefaultConfig()
	if c.MatchThreshold < 0 || c.MatchThreshold > 1 {
		c.MatchThreshold = def.MatchThreshold
	}
	if c.MatchCount < 1 {
		c.MatchCount = def.MatchCount
	}
	if c.RRFK < 1 {
		c.RRFK = def.RRFK
	}
	return c
}

// Retriever provides hybrid vector and keyword search over chunks.
type Retriever struct {
	chunks   storage.ChunkRepository
	embedder ai.Embedder
	config   Config
	logger   *slog.Logger
}

// Option configures a Retriever.
type Option func(*Retriever)

// WithConfig overrides the default retrieval config.
func WithConfig(config Config) Option {
	return func(r *Retriever) {
		r.config = config.sanitize()
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Retriever) {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
	}
}

// NewRetriever creates a hybrid retriever.
func NewRetriever(chunks storage.ChunkRepository, embedder ai.Embedder, opts ...Option) (*Retriever, error) {
	if chunks == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	r := &Retriever{
		chunks:   chunks,
		embedder: embedder,
		config:   DefaultConfig(),
		logger:   slog.Default().With("component", "search"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Retrieve runs the hybrid search and formats the hits for prompt
// injection as "{content} (Page {page})" blocks. Any retrieval error
// degrades to an empty string; retrieval failure must never crash the
// caller.
func (r *Retriever) Retrieve(ctx context.Context, query string, documentIDs []string) string {
	results, err := r.Search(ctx, query, documentIDs)
	if err != nil {
		r.logger.Error("retrieval failed, returning empty context", "query", query, "err", err)
		return ""
	}

	blocks := make([]string, 0, len(results))
	for _, result := range results {
		blocks = append(blocks, fmt.Sprintf("%s (Page %d)", result.Chunk.Content, result.Chunk.Metadata.Page))
	}
	return strings.Join(blocks, "\n\n")
}

// Search runs the hybrid search and returns the fused ranking.
func (r *Retriever) Search(ctx context.Context, query string, documentIDs []string) ([]*core.SearchResult, error) {
	return r.SearchWithMonitor(ctx, query, documentIDs, nil)
}

// SearchWithMonitor runs the hybrid search with ranking callbacks at each
// stage.
func (r *Retriever) SearchWithMonitor(ctx context.Context, query string, documentIDs []string, monitor RetrievalMonitor) ([]*core.SearchResult, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	monitor.Start(query)

	// 1. Vector ranking
	embedding, err := r.embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query embedding: %w", err)
	}
	// Stored chunk vectors are unit length; the query must be too for
	// the dot product to be a cosine similarity.
	embedding = quality.NormalizeVector(embedding)

	matches, err := r.chunks.FindSimilar(ctx, embedding, r.config.MatchThreshold, r.config.MatchCount, documentIDs)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	vectorIds := make([]uint64, 0, len(matches))
	byID := make(map[core.ID]*core.Chunk)
	vectorRank := make(map[core.ID]int)
	for i, match := range matches {
		vectorRank[match.Chunk.Id] = i + 1
		byID[match.Chunk.Id] = match.Chunk
		vectorIds = append(vectorIds, uint64(match.Chunk.Id))
	}
	monitor.AfterVectorSearch(vectorIds)

	// 2. Keyword ranking
	keywordRank, keywordChunks, err := r.rankByKeywords(ctx, query, documentIDs)
	if err != nil {
		return nil, fmt.Errorf("keyword search: %w", err)
	}
	keywordIds := make([]uint64, 0, len(keywordChunks))
	for _, chunk := range keywordChunks {
		byID[chunk.Id] = chunk
		keywordIds = append(keywordIds, uint64(chunk.Id))
	}
	monitor.AfterKeywordSearch(keywordIds)

	// 3. Reciprocal rank fusion
	fused := make(map[core.ID]float32, len(byID))
	for id, rank := range vectorRank {
		fused[id] += 1 / float32(r.config.RRFK+rank)
	}
	for id, rank := range keywordRank {
		fused[id] += 1 / float32(r.config.RRFK+rank)
	}

	results := make([]*core.SearchResult, 0, len(fused))
	for id, score := range fused {
		results = append(results, &core.SearchResult{
			Chunk: byID[id],
			Score: score,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Chunk.Id < results[j].Chunk.Id
	})
	if len(results) > r.config.MatchCount {
		results = results[:r.config.MatchCount]
	}

	monitor.Finish(results)
	return results, nil
}

// rankByKeywords scores every candidate chunk by query-word overlap and
// returns the 1-based rank of each chunk with a nonzero score, best first.
func (r *Retriever) rankByKeywords(ctx context.Context, query string, documentIDs []string) (map[core.ID]int, []*core.Chunk, error) {
	queryWords := tokenizeAndFilter(query)
	if len(queryWords) == 0 {
		return nil, nil, nil
	}

	candidates, err := r.chunks.ListChunks(ctx, documentIDs)
	if err != nil {
		return nil, nil, err
	}

	type scored struct {
		chunk *core.Chunk
		score float32
	}
	var hits []scored
	for _, chunk := range candidates {
		if score := keywordScore(chunk.Content, queryWords); score > 0 {
			hits = append(hits, scored{chunk: chunk, score: score})
		}
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score > hits[j].score
		}
		return hits[i].chunk.Id < hits[j].chunk.Id
	})
	if len(hits) > r.config.MatchCount {
		hits = hits[:r.config.MatchCount]
	}

	ranks := make(map[core.ID]int, len(hits))
	chunks := make([]*core.Chunk, 0, len(hits))
	for i, hit := range hits {
		ranks[hit.chunk.Id] = i + 1
		chunks = append(chunks, hit.chunk)
	}
	return ranks, chunks, nil
}
