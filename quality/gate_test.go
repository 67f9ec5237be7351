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


package quality

import (
	"context"
	"errors"
	"testing"

	"github.com/poiesic/lectern/ai"
	"github.com/poiesic/lectern/ai/mock"
	"github.com/poiesic/lectern/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// orthogonalEmbedder returns a distinct basis vector per call position, so
// no two different texts ever merge. Identical texts share a vector.
func orthogonalEmbedder() *mock.MockEmbedder {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		seen := make(map[string]int)
		vectors := make([][]float32, len(texts))
		for i, text := range texts {
			axis, ok := seen[text]
			if !ok {
				axis = len(seen)
				seen[text] = axis
			}
			v := make([]float32, len(texts))
			v[axis] = 1
			vectors[i] = v
		}
		return vectors, nil
	}
	return embedder
}

func testPoints() []core.KnowledgePoint {
	return []core.KnowledgePoint{
		{Title: "BST", Definition: "A binary tree with ordered keys", SourcePages: []int{3}},
		{Title: "Office Hours", Definition: "Tuesdays 2-4pm in room 301", SourcePages: []int{1}},
		{Title: "Heap", Definition: "A complete tree satisfying the heap property", SourcePages: []int{9}},
	}
}

func TestApply_DropsIrrelevantPoints(t *testing.T) {
	gen := mock.NewMockGenerator()
	gen.Responses = []string{`[
		{"index": 0, "isRelevant": true, "qualityScore": 8, "issues": []},
		{"index": 1, "isRelevant": false, "qualityScore": 1, "issues": ["administrative content"]},
		{"index": 2, "isRelevant": true, "qualityScore": 7, "issues": []}
	]`}

	gate, err := NewGate(gen, orthogonalEmbedder())
	require.NoError(t, err)

	result := gate.Apply(context.Background(), testPoints())
	require.Len(t, result, 2)
	assert.Equal(t, "BST", result[0].Title)
	assert.Equal(t, "Heap", result[1].Title)
}

func TestApply_OracleFailureKeepsAllPoints(t *testing.T) {
	gen := mock.NewMockGenerator()
	gen.GenerateFunc = func(ctx context.Context, prompt string, opts ai.GenerateOptions) (string, error) {
		return "", errors.New("connection refused")
	}

	gate, err := NewGate(gen, orthogonalEmbedder())
	require.NoError(t, err)

	result := gate.Apply(context.Background(), testPoints())
	assert.Len(t, result, 3, "review failure must not drop anything")
}

func TestApply_UnparsableReviewKeepsAllPoints(t *testing.T) {
	gen := mock.NewMockGenerator()
	gen.Responses = []string{"I think they all look fine to me."}

	gate, err := NewGate(gen, orthogonalEmbedder())
	require.NoError(t, err)

	result := gate.Apply(context.Background(), testPoints())
	assert.Len(t, result, 3)
}

func TestApply_OutOfRangeIndicesIgnored(t *testing.T) {
	gen := mock.NewMockGenerator()
	gen.Responses = []string{`[
		{"index": -1, "isRelevant": false, "qualityScore": 0, "issues": []},
		{"index": 99, "isRelevant": false, "qualityScore": 0, "issues": []}
	]`}

	gate, err := NewGate(gen, orthogonalEmbedder())
	require.NoError(t, err)

	result := gate.Apply(context.Background(), testPoints())
	assert.Len(t, result, 3, "bogus indices cannot drop real points")
}

func TestApply_LowScoreIsNotACutoff(t *testing.T) {
	gen := mock.NewMockGenerator()
	gen.Responses = []string{`[
		{"index": 0, "isRelevant": true, "qualityScore": 1, "issues": ["vague"]},
		{"index": 1, "isRelevant": true, "qualityScore": 2, "issues": []},
		{"index": 2, "isRelevant": true, "qualityScore": 0, "issues": []}
	]`}

	gate, err := NewGate(gen, orthogonalEmbedder())
	require.NoError(t, err)

	result := gate.Apply(context.Background(), testPoints())
	assert.Len(t, result, 3, "relevance, not score, decides survival")
}

func TestMergeBySemanticSimilarity_MergesEquivalentPoints(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		// First two definitions embed almost identically; the third is
		// orthogonal.
		return [][]float32{
			{1, 0, 0},
			{0.99, 0.14, 0},
			{0, 0, 1},
		}, nil
	}

	gate, err := NewGate(mock.NewMockGenerator(), embedder)
	require.NoError(t, err)

	points := []core.KnowledgePoint{
		{Title: "BST", Definition: "Ordered binary tree", SourcePages: []int{3}},
		{Title: "Binary Search Tree", Definition: "A binary tree whose keys are ordered left to right", SourcePages: []int{15, 3}},
		{Title: "Heap", Definition: "Complete tree with the heap property", SourcePages: []int{9}},
	}

	result := gate.MergeBySemanticSimilarity(context.Background(), points)
	require.Len(t, result, 2)

	assert.Equal(t, "BST", result[0].Title, "earlier point is the merge base")
	assert.Equal(t, "A binary tree whose keys are ordered left to right", result[0].Definition)
	assert.Equal(t, []int{3, 15}, result[0].SourcePages)
	assert.Equal(t, "Heap", result[1].Title)
}

func TestMergeBySemanticSimilarity_EmbeddingFailureIsNoOp(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, errors.New("model not loaded")
	}

	gate, err := NewGate(mock.NewMockGenerator(), embedder)
	require.NoError(t, err)

	input := testPoints()
	result := gate.MergeBySemanticSimilarity(context.Background(), input)

	require.Len(t, result, len(input), "failure keeps the list length")
	for i := range input {
		assert.Equal(t, input[i].Title, result[i].Title, "failure keeps the titles")
	}
}

func TestMergeBySemanticSimilarity_CountMismatchIsNoOp(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return [][]float32{{1, 0}}, nil
	}

	gate, err := NewGate(mock.NewMockGenerator(), embedder)
	require.NoError(t, err)

	result := gate.MergeBySemanticSimilarity(context.Background(), testPoints())
	assert.Len(t, result, 3)
}

func TestMergeBySemanticSimilarity_SinglePoint(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	gate, err := NewGate(mock.NewMockGenerator(), embedder)
	require.NoError(t, err)

	points := []core.KnowledgePoint{{Title: "Only", Definition: "One"}}
	result := gate.MergeBySemanticSimilarity(context.Background(), points)

	assert.Len(t, result, 1)
	assert.Zero(t, embedder.CallCount(), "a single point needs no embeddings")
}

func TestNewGate_RequiresServices(t *testing.T) {
	_, err := NewGate(nil, mock.NewMockEmbedder())
	assert.ErrorIs(t, err, ErrGeneratorRequired)

	_, err = NewGate(mock.NewMockGenerator(), nil)
	assert.ErrorIs(t, err, ErrEmbedderRequired)
}

func TestConfig_Sanitize(t *testing.T) {
	cfg := Config{SemanticDedupThreshold: -0.5, QualityScoreThreshold: 99, DefinitionPreviewLength: 0}.sanitize()
	def := DefaultConfig()

	assert.Equal(t, def.SemanticDedupThreshold, cfg.SemanticDedupThreshold)
	assert.Equal(t, def.QualityScoreThreshold, cfg.QualityScoreThreshold)
	assert.Equal(t, def.DefinitionPreviewLength, cfg.DefinitionPreviewLength)
}
