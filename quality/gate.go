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


// Package quality filters and deduplicates extracted knowledge points.
//
// The gate runs two independent sub-steps: an oracle relevance review and
// an embedding-based semantic merge. Both fail open: when the oracle or
// the embedding service is unavailable, the input passes through
// unchanged. Losing legitimately extracted content is worse than keeping
// the occasional low-quality point.
package quality

import (
	"context"
	"log/slog"
	"slices"

	"github.com/poiesic/lectern/ai"
	"github.com/poiesic/lectern/core"
)

// Config controls the quality gate.
type Config struct {
	// SemanticDedupThreshold is the cosine similarity at or above which
	// two points are considered the same concept and merged.
	SemanticDedupThreshold float32

	// QualityScoreThreshold is the review score below which a point is
	// flagged in logs. Low-scoring points are kept; only the oracle's
	// relevance verdict drops a point.
	QualityScoreThreshold int

	// DefinitionPreviewLength is how many characters of each definition
	// appear in the review prompt.
	DefinitionPreviewLength int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		SemanticDedupThreshold:  0.9,
		QualityScoreThreshold:   5,
		DefinitionPreviewLength: 300,
	}
}

// sanitize replaces out-of-range values with defaults.
func (c Config) sanitize() Config {
	def := DefaultConfig()
	if c.SemanticDedupThreshold <= 0 || c.SemanticDedupThreshold > 1 {
		c.SemanticDedupThreshold = def.SemanticDedupThreshold
	}
	if c.QualityScoreThreshold < 0 || c.QualityScoreThreshold > 10 {
		c.QualityScoreThreshold = def.QualityScoreThreshold
	}
	if c.DefinitionPreviewLength < 1 {
		c.DefinitionPreviewLength = def.DefinitionPreviewLength
	}
	return c
}

// reviewVerdict is one element of the oracle's relevance response.
type reviewVerdict struct {
	Index        int      `json:"index"`
	IsRelevant   bool     `json:"isRelevant"`
	QualityScore int      `json:"qualityScore"`
	Issues       []string `json:"issues"`
}

// Gate reviews and deduplicates knowledge points.
type Gate struct {
	generator ai.Generator
	embedder  ai.Embedder
	config    Config
	logger    *slog.Logger
}

// Option configures a Gate.
type Option func(*Gate)

// WithConfig overrides the default gate config.
func WithConfig(config Config) Option {
	return func(g *Gate) {
		g.config = config.sanitize()
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(g *Gate) {
		if logger == nil {
			logger = slog.Default()
		}
		g.logger = logger
	}
}

// NewGate creates a quality gate backed by the given oracle services.
func NewGate(generator ai.Generator, embedder ai.Embedder, opts ...Option) (*Gate, error) {
	if generator == nil {
		return nil, ErrGeneratorRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	gate := &Gate{
		generator: generator,
		embedder:  embedder,
		config:    DefaultConfig(),
		logger:    slog.Default().With("component", "quality"),
	}
	for _, opt := range opts {
		opt(gate)
	}
	return gate, nil
}

// Apply runs the relevance review and the semantic merge in order.
// It never returns an error: each sub-step falls back to its input when
// the backing service fails.
func (g *Gate) Apply(ctx context.Context, points []core.KnowledgePoint) []core.KnowledgePoint {
	if len(points) == 0 {
		return points
	}

	reviewed := g.filterByRelevance(ctx, points)
	merged := g.MergeBySemanticSimilarity(ctx, reviewed)

	g.logger.Info("quality gate applied",
		"input", len(points), "afterReview", len(reviewed), "afterMerge", len(merged))
	return merged
}

// filterByRelevance asks the oracle to review the full list in one call
// and drops points it marks irrelevant. Any oracle or parse failure skips
// the review and keeps every point.
func (g *Gate) filterByRelevance(ctx context.Context, points []core.KnowledgePoint) []core.KnowledgePoint {
	prompt := buildRelevancePrompt(points, g.config.DefinitionPreviewLength)

	response, err := g.generator.Generate(ctx, prompt, ai.GenerateOptions{
		JSONMode:    true,
		Temperature: 0.1,
	})
	if err != nil {
		g.logger.Warn("relevance review unavailable, keeping all points", "err", err)
		return points
	}

	verdicts, err := ai.DecodeJSON[[]reviewVerdict](response)
	if err != nil {
		g.logger.Warn("relevance review unparsable, keeping all points", "err", err)
		return points
	}

	drop := make(map[int]bool)
	for _, v := range verdicts {
		if v.Index < 0 || v.Index >= len(points) {
			continue
		}
		if !v.IsRelevant {
			drop[v.Index] = true
			g.logger.Debug("dropping irrelevant point",
				"title", points[v.Index].Title, "issues", v.Issues)
			continue
		}
		if v.QualityScore < g.config.QualityScoreThreshold {
			g.logger.Debug("keeping low-scoring point",
				"title", points[v.Index].Title, "score", v.QualityScore, "issues", v.Issues)
		}
	}

	// Points the oracle did not mention are kept.
	kept := make([]core.KnowledgePoint, 0, len(points))
	for i, point := range points {
		if !drop[i] {
			kept = append(kept, point)
		}
	}
	return kept
}

// MergeBySemanticSimilarity merges points whose definitions embed close
// together, catching duplicates with different titles ("BST" vs "Binary
// Search Tree"). One batched embedding call covers the whole list; if it
// fails, the input is returned unchanged.
func (g *Gate) MergeBySemanticSimilarity(ctx context.Context, points []core.KnowledgePoint) []core.KnowledgePoint {
	if len(points) < 2 {
		return points
	}

	texts := make([]string, len(points))
	for i, point := range points {
		texts[i] = point.Definition
	}

	vectors, err := g.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		g.logger.Warn("embedding service unavailable, skipping semantic dedup", "err", err)
		return points
	}
	if len(vectors) != len(points) {
		g.logger.Warn("embedding count mismatch, skipping semantic dedup",
			"want", len(points), "got", len(vectors))
		return points
	}

	for i := range vectors {
		vectors[i] = NormalizeVector(vectors[i])
	}

	var kept []core.KnowledgePoint
	var keptVectors [][]float32

	for i, candidate := range points {
		mergedInto := -1
		for j := range kept {
			if CosineSimilarity(keptVectors[j], vectors[i]) >= g.config.SemanticDedupThreshold {
				mergedInto = j
				break
			}
		}
		if mergedInto >= 0 {
			g.logger.Debug("merging semantically equivalent points",
				"kept", kept[mergedInto].Title, "merged", candidate.Title)
			kept[mergedInto] = mergePoints(kept[mergedInto], candidate)
			continue
		}
		kept = append(kept, candidate)
		keptVectors = append(keptVectors, vectors[i])
	}

	return kept
}

// mergePoints combines two equivalent points. The longer definition wins
// and sourcePages becomes the sorted union.
func mergePoints(base, other core.KnowledgePoint) core.KnowledgePoint {
	if len(other.Definition) > len(base.Definition) {
		base.Definition = other.Definition
	}
	base.SourcePages = unionSortedPages(base.SourcePages, other.SourcePages)
	base.KeyFormulas = unionStrings(base.KeyFormulas, other.KeyFormulas)
	base.KeyConcepts = unionStrings(base.KeyConcepts, other.KeyConcepts)
	base.Examples = unionStrings(base.Examples, other.Examples)
	return base
}

func unionSortedPages(a, b []int) []int {
	seen := make(map[int]bool, len(a)+len(b))
	var union []int
	for _, p := range a {
		if !seen[p] {
			seen[p] = true
			union = append(union, p)
		}
	}
	for _, p := range b {
		if !seen[p] {
			seen[p] = true
			union = append(union, p)
		}
	}
	slices.Sort(union)
	return union
}

func unionStrings(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	var union []string
	for _, s := range a {
		if !seen[s] {
			seen[s] = true
			union = append(union, s)
		}
	}
	for _, s := range b {
		if !seen[s] {
			seen[s] = true
			union = append(union, s)
		}
	}
	return union
}
