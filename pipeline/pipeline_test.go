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


package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/poiesic/lectern/ai"
	"github.com/poiesic/lectern/ai/mock"
	"github.com/poiesic/lectern/core"
	badgerstore "github.com/poiesic/lectern/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	pipeline  *Pipeline
	documents *badgerstore.DocumentRepository
	knowledge *badgerstore.KnowledgeRepository
	chunks    *badgerstore.ChunkRepository
	provider  *mock.MockProvider
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	documents, knowledge, chunks, backend, err := badgerstore.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	provider := mock.NewMockProvider().(*mock.MockProvider)
	p, err := NewPipeline(documents, knowledge, chunks, provider)
	require.NoError(t, err)
	t.Cleanup(p.Release)

	return &testEnv{
		pipeline:  p,
		documents: documents,
		knowledge: knowledge,
		chunks:    chunks,
		provider:  provider,
	}
}

func lecturePages() []core.Page {
	return []core.Page{
		{Number: 1, Text: "A binary search tree keeps its keys in sorted order."},
		{Number: 2, Text: "An AVL tree rebalances itself with rotations."},
		{Number: 3, Text: "Heaps support constant-time access to the extremum."},
	}
}

// routeLectureOracle answers extraction and review prompts; everything
// else gets an empty object.
func routeLectureOracle(env *testEnv) {
	env.provider.GetMockGenerator().GenerateFunc = func(ctx context.Context, prompt string, opts ai.GenerateOptions) (string, error) {
		if strings.Contains(prompt, "Points to review") {
			return `[
				{"index": 0, "isRelevant": true, "qualityScore": 8, "issues": []},
				{"index": 1, "isRelevant": true, "qualityScore": 7, "issues": []}
			]`, nil
		}
		return `[
			{"title": "Binary Search Tree", "definition": "A tree with keys in sorted order", "sourcePages": [1]},
			{"title": "AVL Tree", "definition": "A self-balancing binary search tree", "sourcePages": [2]}
		]`, nil
	}
}

func TestProcessLecture_EndToEnd(t *testing.T) {
	env := newTestEnv(t)
	routeLectureOracle(env)

	ctx := context.Background()
	document := &core.Document{Id: "doc-1", CourseID: "cs101", Title: "Lecture 3"}

	var mu sync.Mutex
	var events []ProgressEvent
	err := env.pipeline.ProcessLecture(ctx, document, lecturePages(), func(event ProgressEvent) {
		mu.Lock()
		events = append(events, event)
		mu.Unlock()
	})
	require.NoError(t, err)

	got, err := env.documents.GetDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, core.StatusReady, got.Status)
	assert.Equal(t, core.KindLecture, got.Kind)
	assert.Equal(t, 3, got.PageCount)

	points, err := env.knowledge.GetKnowledgePoints(ctx, "doc-1")
	require.NoError(t, err)
	assert.Len(t, points, 2)

	outline, err := env.knowledge.GetOutline(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "doc-1", outline.DocumentID)
	assert.NotEmpty(t, outline.Sections)

	chunks, err := env.chunks.ListChunks(ctx, []string{"doc-1"})
	require.NoError(t, err)
	require.Len(t, chunks, 3, "one chunk per short page")
	for _, chunk := range chunks {
		assert.NotEmpty(t, chunk.Vector, "chunks are embedded")
	}

	require.NotEmpty(t, events)
	final := events[len(events)-1]
	assert.InDelta(t, 1.0, final.Overall, 1e-9, "all stages complete")
}

func TestProcessLecture_FirstBatchFailureMarksError(t *testing.T) {
	env := newTestEnv(t)
	env.provider.GetMockGenerator().GenerateFunc = func(ctx context.Context, prompt string, opts ai.GenerateOptions) (string, error) {
		return "", errors.New("oracle unreachable")
	}

	ctx := context.Background()
	document := &core.Document{Id: "doc-1", Title: "Lecture 3"}

	err := env.pipeline.ProcessLecture(ctx, document, lecturePages(), nil)
	require.Error(t, err)

	got, err := env.documents.GetDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, core.StatusError, got.Status)
	assert.Contains(t, got.StatusDetail, "oracle unreachable")
}

func TestProcessLecture_GateFailuresDegrade(t *testing.T) {
	env := newTestEnv(t)

	// Extraction succeeds; the review call and every embedding call fail.
	// The run must still finish ready, with all points kept.
	env.provider.GetMockGenerator().GenerateFunc = func(ctx context.Context, prompt string, opts ai.GenerateOptions) (string, error) {
		if strings.Contains(prompt, "Points to review") {
			return "", errors.New("review unavailable")
		}
		return `[{"title": "Heap", "definition": "A complete tree", "sourcePages": [3]}]`, nil
	}
	env.provider.GetMockEmbedder().EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, errors.New("embedder down")
	}

	ctx := context.Background()
	document := &core.Document{Id: "doc-1", Title: "Lecture 3"}

	err := env.pipeline.ProcessLecture(ctx, document, lecturePages(), nil)
	require.NoError(t, err)

	got, err := env.documents.GetDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, core.StatusReady, got.Status)

	points, err := env.knowledge.GetKnowledgePoints(ctx, "doc-1")
	require.NoError(t, err)
	assert.Len(t, points, 1, "fail-open gate keeps extracted points")

	chunks, err := env.chunks.ListChunks(ctx, []string{"doc-1"})
	require.NoError(t, err)
	require.NotEmpty(t, chunks)
	for _, chunk := range chunks {
		assert.Empty(t, chunk.Vector, "failed embedding leaves chunks unembedded")
	}
}

func TestProcessAssignment_EndToEnd(t *testing.T) {
	env := newTestEnv(t)
	env.provider.GetMockGenerator().Responses = []string{`[
		{"title": "Question 1", "orderNum": 1, "content": "Prove that heapify runs in linear time.", "points": 10},
		{"title": "Question 3", "orderNum": 3, "content": "Implement Dijkstra with a binary heap.", "points": 15}
	]`}

	ctx := context.Background()
	document := &core.Document{Id: "doc-2", Title: "Problem Set 2"}

	pages := []core.Page{{Number: 1, Text: "Question 1. Prove that heapify runs in linear time."}}
	err := env.pipeline.ProcessAssignment(ctx, document, pages, nil)
	require.NoError(t, err)

	got, err := env.documents.GetDocument(ctx, "doc-2")
	require.NoError(t, err)
	assert.Equal(t, core.StatusReady, got.Status)
	assert.Equal(t, core.KindAssignment, got.Kind)
	assert.Contains(t, got.StatusDetail, "validation warnings", "numbering gap and missing answers are surfaced")

	items, err := env.knowledge.GetAssignmentItems(ctx, "doc-2")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Question 1", items[0].Title)

	chunks, err := env.chunks.ListChunks(ctx, []string{"doc-2"})
	require.NoError(t, err)
	assert.NotEmpty(t, chunks)
}

func TestProcessAssignment_ParseFailureMarksError(t *testing.T) {
	env := newTestEnv(t)
	env.provider.GetMockGenerator().GenerateFunc = func(ctx context.Context, prompt string, opts ai.GenerateOptions) (string, error) {
		return "", errors.New("oracle unreachable")
	}

	ctx := context.Background()
	document := &core.Document{Id: "doc-2", Title: "Problem Set 2"}

	err := env.pipeline.ProcessAssignment(ctx, document, []core.Page{{Number: 1, Text: "Q1"}}, nil)
	require.Error(t, err)

	got, err := env.documents.GetDocument(ctx, "doc-2")
	require.NoError(t, err)
	assert.Equal(t, core.StatusError, got.Status)
}

func TestNewPipeline_RequiresDependencies(t *testing.T) {
	documents, knowledge, chunks, backend, err := badgerstore.NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	provider := mock.NewMockProvider()

	_, err = NewPipeline(nil, knowledge, chunks, provider)
	assert.ErrorIs(t, err, ErrDocumentRepositoryRequired)

	_, err = NewPipeline(documents, nil, chunks, provider)
	assert.ErrorIs(t, err, ErrKnowledgeRepositoryRequired)

	_, err = NewPipeline(documents, knowledge, nil, provider)
	assert.ErrorIs(t, err, ErrChunkRepositoryRequired)

	_, err = NewPipeline(documents, knowledge, chunks, nil)
	assert.ErrorIs(t, err, ErrProviderRequired)
}
