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


package lectern

import (
	"context"
	"log/slog"

	"github.com/poiesic/lectern/ai"
	"github.com/poiesic/lectern/ai/openai"
	"github.com/poiesic/lectern/core"
	"github.com/poiesic/lectern/outline"
	"github.com/poiesic/lectern/pipeline"
	"github.com/poiesic/lectern/search"
	"github.com/poiesic/lectern/storage"
	"github.com/poiesic/lectern/storage/badger"
)

// Library is the top-level entry point: an on-disk document store plus
// the processing pipeline and hybrid retriever wired to one AI provider.
type Library struct {
	backend   *badger.Backend
	documents storage.DocumentRepository
	knowledge storage.KnowledgeRepository
	chunks    storage.ChunkRepository
	provider  ai.Provider
	pipeline  *pipeline.Pipeline
	retriever *search.Retriever
	outliner  *outline.Generator
	logger    *slog.Logger
}

// LibraryOption configures a Library.
type LibraryOption func(*libraryOptions)

type libraryOptions struct {
	aiConfig     *ai.Config
	provider     ai.Provider
	inMemory     bool
	pipelineOpts []pipeline.Option
	searchOpts   []search.Option
}

// WithAIConfig overrides the provider configuration used when no
// explicit provider is supplied.
func WithAIConfig(config *ai.Config) LibraryOption {
	return func(o *libraryOptions) {
		o.aiConfig = config
	}
}

// WithProvider supplies a pre-built AI provider. The Library takes
// ownership and closes it on Close.
func WithProvider(provider ai.Provider) LibraryOption {
	return func(o *libraryOptions) {
		o.provider = provider
	}
}

// WithInMemoryStorage keeps all data in memory. Intended for tests.
func WithInMemoryStorage() LibraryOption {
	return func(o *libraryOptions) {
		o.inMemory = true
	}
}

// WithPipelineOptions forwards options to the processing pipeline.
func WithPipelineOptions(opts ...pipeline.Option) LibraryOption {
	return func(o *libraryOptions) {
		o.pipelineOpts = append(o.pipelineOpts, opts...)
	}
}

// WithSearchOptions forwards options to the hybrid retriever.
func WithSearchOptions(opts ...search.Option) LibraryOption {
	return func(o *libraryOptions) {
		o.searchOpts = append(o.searchOpts, opts...)
	}
}

// OpenLibrary opens (creating if needed) a library at filePath.
func OpenLibrary(filePath string, opts ...LibraryOption) (*Library, error) {
	options := &libraryOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	documents := badger.NewDocumentRepository(backend)
	knowledge := badger.NewKnowledgeRepository(backend)
	chunks := badger.NewChunkRepository(backend)

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			backend.Close()
			return nil, err
		}
	}

	logger := slog.Default().With("component", "library")

	pipelineOpts := append([]pipeline.Option{pipeline.WithLogger(logger)}, options.pipelineOpts...)
	pl, err := pipeline.NewPipeline(documents, knowledge, chunks, provider, pipelineOpts...)
	if err != nil {
		provider.Close()
		backend.Close()
		return nil, err
	}

	searchOpts := append([]search.Option{search.WithLogger(logger)}, options.searchOpts...)
	retriever, err := search.NewRetriever(chunks, provider.Embedder(), searchOpts...)
	if err != nil {
		pl.Release()
		provider.Close()
		backend.Close()
		return nil, err
	}

	outliner, err := outline.NewGenerator(provider.Generator(), outline.WithLogger(logger))
	if err != nil {
		pl.Release()
		provider.Close()
		backend.Close()
		return nil, err
	}

	return &Library{
		backend:   backend,
		documents: documents,
		knowledge: knowledge,
		chunks:    chunks,
		provider:  provider,
		pipeline:  pl,
		retriever: retriever,
		outliner:  outliner,
		logger:    logger,
	}, nil
}

// Close releases the worker pool, the AI provider and the storage
// backend, in that order.
func (l *Library) Close() error {
	l.pipeline.Release()

	if err := l.provider.Close(); err != nil {
		l.logger.Error("error closing AI provider", "err", err)
	}
	if err := l.backend.Close(); err != nil {
		l.logger.Error("error closing storage backend", "err", err)
		return err
	}
	return nil
}

// IngestLecture processes a lecture document: structure analysis,
// knowledge extraction, quality gating, outline synthesis and chunk
// embedding. onProgress may be nil.
func (l *Library) IngestLecture(ctx context.Context, document *core.Document, pages []core.Page, onProgress pipeline.ProgressFunc) error {
	return l.pipeline.ProcessLecture(ctx, document, pages, onProgress)
}

// IngestAssignment processes an assignment or exam document: question
// parsing, validation and chunk embedding. onProgress may be nil.
func (l *Library) IngestAssignment(ctx context.Context, document *core.Document, pages []core.Page, onProgress pipeline.ProgressFunc) error {
	return l.pipeline.ProcessAssignment(ctx, document, pages, onProgress)
}

// Retrieve returns formatted context for a query over the given
// documents (all documents when empty). Fail-open: returns "" on any
// retrieval error.
func (l *Library) Retrieve(ctx context.Context, query string, documentIDs []string) string {
	return l.retriever.Retrieve(ctx, query, documentIDs)
}

// Search runs the hybrid retrieval and returns ranked results.
func (l *Library) Search(ctx context.Context, query string, documentIDs []string) ([]*core.SearchResult, error) {
	return l.retriever.Search(ctx, query, documentIDs)
}

// Documents lists stored documents, optionally filtered by course.
func (l *Library) Documents(ctx context.Context, courseID string) ([]*core.Document, error) {
	return l.documents.ListDocuments(ctx, courseID)
}

// Document fetches one document record.
func (l *Library) Document(ctx context.Context, documentID string) (*core.Document, error) {
	return l.documents.GetDocument(ctx, documentID)
}

// KnowledgePoints returns the stored knowledge points of a document.
func (l *Library) KnowledgePoints(ctx context.Context, documentID string) ([]core.KnowledgePoint, error) {
	return l.knowledge.GetKnowledgePoints(ctx, documentID)
}

// Outline returns the stored outline of a document.
func (l *Library) Outline(ctx context.Context, documentID string) (*core.DocumentOutline, error) {
	return l.knowledge.GetOutline(ctx, documentID)
}

// AssignmentItems returns the stored questions of an assignment document.
func (l *Library) AssignmentItems(ctx context.Context, documentID string) ([]core.AssignmentItem, error) {
	return l.knowledge.GetAssignmentItems(ctx, documentID)
}

// CourseOutline synthesizes a course-level outline from the stored
// outlines of every ready document in the course.
func (l *Library) CourseOutline(ctx context.Context, courseID string) (core.CourseOutline, error) {
	documents, err := l.documents.ListDocuments(ctx, courseID)
	if err != nil {
		return core.CourseOutline{}, err
	}

	var outlines []core.DocumentOutline
	for _, document := range documents {
		if document.Status != core.StatusReady {
			continue
		}
		stored, err := l.knowledge.GetOutline(ctx, document.Id)
		if err != nil {
			continue
		}
		outlines = append(outlines, *stored)
	}

	return l.outliner.GenerateCourseOutline(ctx, courseID, outlines), nil
}

// DeleteDocument removes a document record together with its knowledge
// points, outline, assignment items and chunks.
func (l *Library) DeleteDocument(ctx context.Context, documentID string) error {
	if err := l.knowledge.DeleteDocumentKnowledge(ctx, documentID); err != nil {
		return err
	}
	if err := l.chunks.DeleteChunks(ctx, documentID); err != nil {
		return err
	}
	return l.documents.DeleteDocument(ctx, documentID)
}
