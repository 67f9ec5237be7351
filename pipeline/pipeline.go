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


// Package pipeline orchestrates document processing end to end: structure
// analysis, knowledge extraction, quality gating and outline synthesis for
// lectures; question parsing for assignments; chunking and embedding for
// both. Stages run sequentially within a document; only chunk embedding
// fans out, in small fixed-size groups on a worker pool.
//
// A run leaves the document in "ready" status, or in "error" status with a
// detail message when a fatal stage fails. Stages with oracle dependencies
// degrade to deterministic fallbacks, so the only fatal stages are the
// first extraction batch (lectures) and question parsing (assignments).
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/lectern/ai"
	"github.com/poiesic/lectern/analysis"
	"github.com/poiesic/lectern/assignment"
	"github.com/poiesic/lectern/chunker"
	"github.com/poiesic/lectern/core"
	"github.com/poiesic/lectern/extraction"
	"github.com/poiesic/lectern/outline"
	"github.com/poiesic/lectern/quality"
	"github.com/poiesic/lectern/storage"
)

const (
	// embedGroupSize is how many chunks share one embedding call.
	embedGroupSize = 5

	embedMaxAttempts = 3
	embedBaseDelay   = 500 * time.Millisecond
)

// Stage weights for the overall progress fraction.
var (
	lectureWeights = map[Stage]float64{
		StageStructure:  0.10,
		StageExtraction: 0.35,
		StageQuality:    0.15,
		StageOutline:    0.10,
		StageEmbedding:  0.30,
	}
	assignmentWeights = map[Stage]float64{
		StageAssignment: 0.50,
		StageEmbedding:  0.50,
	}
)

// Pipeline processes documents into knowledge points, outlines and
// embedded chunks.
type Pipeline struct {
	documents storage.DocumentRepository
	knowledge storage.KnowledgeRepository
	chunks    storage.ChunkRepository

	embedder ai.Embedder

	analyzer  *analysis.Analyzer
	extractor *extraction.Extractor
	gate      *quality.Gate
	outliner  *outline.Generator
	parser    *assignment.Parser

	chunkerConfig chunker.Config
	embedPool     *ants.Pool
	logger        *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent embedding.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		if p.embedPool != nil {
			p.embedPool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.embedPool = pool
		return nil
	}
}

// WithChunkerConfig overrides the default chunking config.
func WithChunkerConfig(config chunker.Config) Option {
	return func(p *Pipeline) error {
		p.chunkerConfig = config
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a document processing pipeline.
func NewPipeline(
	documents storage.DocumentRepository,
	knowledge storage.KnowledgeRepository,
	chunks storage.ChunkRepository,
	provider ai.Provider,
	opts ...Option,
) (*Pipeline, error) {
	if documents == nil {
		return nil, ErrDocumentRepositoryRequired
	}
	if knowledge == nil {
		return nil, ErrKnowledgeRepositoryRequired
	}
	if chunks == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if provider == nil {
		return nil, ErrProviderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		documents:     documents,
		knowledge:     knowledge,
		chunks:        chunks,
		embedder:      provider.Embedder(),
		chunkerConfig: chunker.DefaultConfig(),
		embedPool:     pool,
		logger:        slog.Default().With("component", "pipeline"),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	generator := provider.Generator()
	p.analyzer, err = analysis.NewAnalyzer(generator, analysis.WithLogger(p.logger))
	if err != nil {
		p.Release()
		return nil, err
	}
	p.extractor, err = extraction.NewExtractor(generator, extraction.WithLogger(p.logger))
	if err != nil {
		p.Release()
		return nil, err
	}
	p.gate, err = quality.NewGate(generator, p.embedder, quality.WithLogger(p.logger))
	if err != nil {
		p.Release()
		return nil, err
	}
	p.outliner, err = outline.NewGenerator(generator, outline.WithLogger(p.logger))
	if err != nil {
		p.Release()
		return nil, err
	}
	p.parser, err = assignment.NewParser(generator, assignment.WithLogger(p.logger))
	if err != nil {
		p.Release()
		return nil, err
	}

	return p, nil
}

// Release releases the worker pool. The pipeline should not be used after
// calling Release.
func (p *Pipeline) Release() {
	if p.embedPool != nil {
		p.embedPool.Release()
	}
}

// ProcessLecture runs the lecture path for a document: structure analysis,
// batched extraction, quality gating, outline synthesis, and chunk
// embedding. A first-batch extraction failure leaves the document in
// error status and is returned; everything else degrades.
func (p *Pipeline) ProcessLecture(ctx context.Context, document *core.Document, pages []core.Page, onProgress ProgressFunc) error {
	document.Kind = core.KindLecture
	document.Status = core.StatusProcessing
	document.PageCount = len(pages)
	if err := p.documents.PutDocument(ctx, document); err != nil {
		return err
	}

	tracker := newProgressTracker(lectureWeights, onProgress)
	logger := p.logger.With("documentId", document.Id)
	logger.Info("processing lecture", "pages", len(pages))

	structure := p.analyzer.Analyze(ctx, pages)
	tracker.complete(StageStructure)

	points, err := p.extractor.Extract(ctx, pages, func(completed, total int) {
		tracker.update(StageExtraction, completed, total)
	})
	if err != nil {
		p.markFailed(ctx, document.Id, err)
		return fmt.Errorf("lecture extraction: %w", err)
	}
	tracker.complete(StageExtraction)

	points = p.gate.Apply(ctx, points)
	tracker.complete(StageQuality)

	documentOutline := p.outliner.GenerateOutline(ctx, document.Id, &structure, points)
	tracker.complete(StageOutline)

	if err := p.knowledge.PutKnowledgePoints(ctx, document.Id, points); err != nil {
		p.markFailed(ctx, document.Id, err)
		return fmt.Errorf("storing knowledge points: %w", err)
	}
	if err := p.knowledge.PutOutline(ctx, &documentOutline); err != nil {
		p.markFailed(ctx, document.Id, err)
		return fmt.Errorf("storing outline: %w", err)
	}

	if err := p.embedAndStoreChunks(ctx, document.Id, pages, tracker); err != nil {
		p.markFailed(ctx, document.Id, err)
		return fmt.Errorf("storing chunks: %w", err)
	}

	logger.Info("lecture processed", "points", len(points), "sections", len(documentOutline.Sections))
	return p.documents.SetDocumentStatus(ctx, document.Id, core.StatusReady, "")
}

// ProcessAssignment runs the assignment path for a document: question
// parsing and chunk embedding. A parse failure leaves the document in
// error status and is returned.
func (p *Pipeline) ProcessAssignment(ctx context.Context, document *core.Document, pages []core.Page, onProgress ProgressFunc) error {
	document.Kind = core.KindAssignment
	document.Status = core.StatusProcessing
	document.PageCount = len(pages)
	if err := p.documents.PutDocument(ctx, document); err != nil {
		return err
	}

	tracker := newProgressTracker(assignmentWeights, onProgress)
	logger := p.logger.With("documentId", document.Id)
	logger.Info("processing assignment", "pages", len(pages))

	result, err := p.parser.Parse(ctx, pages)
	if err != nil {
		p.markFailed(ctx, document.Id, err)
		return fmt.Errorf("assignment parsing: %w", err)
	}
	tracker.complete(StageAssignment)

	if err := p.knowledge.PutAssignmentItems(ctx, document.Id, result.Items); err != nil {
		p.markFailed(ctx, document.Id, err)
		return fmt.Errorf("storing assignment items: %w", err)
	}

	if err := p.embedAndStoreChunks(ctx, document.Id, pages, tracker); err != nil {
		p.markFailed(ctx, document.Id, err)
		return fmt.Errorf("storing chunks: %w", err)
	}

	detail := ""
	if len(result.Warnings) > 0 {
		detail = fmt.Sprintf("%d validation warnings", len(result.Warnings))
	}
	logger.Info("assignment processed", "items", len(result.Items), "warnings", len(result.Warnings))
	return p.documents.SetDocumentStatus(ctx, document.Id, core.StatusReady, detail)
}

// markFailed records a fatal stage failure on the document. Best effort;
// the original error is what the caller sees.
func (p *Pipeline) markFailed(ctx context.Context, documentID string, cause error) {
	if err := p.documents.SetDocumentStatus(ctx, documentID, core.StatusError, cause.Error()); err != nil {
		p.logger.Error("failed to record document error status", "documentId", documentID, "err", err)
	}
}
