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


package storage

import (
	"context"

	"github.com/poiesic/lectern/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// DocumentRepository provides operations for managing document records.
type DocumentRepository interface {
	Repository

	// PutDocument inserts or replaces a document record.
	// Sets InsertedAt on first write and UpdatedAt on every write.
	PutDocument(ctx context.Context, document *core.Document) error

	// GetDocument retrieves a document by ID.
	// Returns ErrNotFound if the document doesn't exist.
	GetDocument(ctx context.Context, id string) (*core.Document, error)

	// ListDocuments retrieves all documents for a course, ordered by
	// insertion time. An empty courseID lists every document.
	ListDocuments(ctx context.Context, courseID string) ([]*core.Document, error)

	// SetDocumentStatus updates a document's processing status and detail
	// message. Returns ErrNotFound if the document doesn't exist.
	SetDocumentStatus(ctx context.Context, id string, status core.DocumentStatus, detail string) error

	// DeleteDocument removes a document record by ID.
	// Returns ErrNotFound if the document doesn't exist. Does not cascade;
	// callers remove the document's derived data through the other
	// repositories.
	DeleteDocument(ctx context.Context, id string) error
}

// KnowledgeRepository provides operations for a document's derived
// knowledge: extracted points, the outline, and assignment items.
type KnowledgeRepository interface {
	Repository

	// PutKnowledgePoints replaces the knowledge points stored for a document.
	PutKnowledgePoints(ctx context.Context, documentID string, points []core.KnowledgePoint) error

	// GetKnowledgePoints retrieves a document's knowledge points in their
	// stored order. Returns an empty slice when none exist.
	GetKnowledgePoints(ctx context.Context, documentID string) ([]core.KnowledgePoint, error)

	// PutOutline inserts or replaces a document's outline.
	PutOutline(ctx context.Context, outline *core.DocumentOutline) error

	// GetOutline retrieves a document's outline.
	// Returns ErrNotFound if no outline is stored.
	GetOutline(ctx context.Context, documentID string) (*core.DocumentOutline, error)

	// PutAssignmentItems replaces the assignment items stored for a document.
	PutAssignmentItems(ctx context.Context, documentID string, items []core.AssignmentItem) error

	// GetAssignmentItems retrieves a document's assignment items in their
	// stored order. Returns an empty slice when none exist.
	GetAssignmentItems(ctx context.Context, documentID string) ([]core.AssignmentItem, error)

	// DeleteDocumentKnowledge removes all points, the outline, and the
	// assignment items stored for a document. Missing data is not an error.
	DeleteDocumentKnowledge(ctx context.Context, documentID string) error
}

// ChunkRepository provides operations for embeddable text chunks.
type ChunkRepository interface {
	Repository

	// AddChunks adds one or more chunks to storage.
	// For chunks with Id=0, derives a content-based ID from the document
	// ID and chunk text. Sets InsertedAt if not already set.
	// Returns the chunks with IDs and timestamps populated.
	AddChunks(ctx context.Context, chunks ...*core.Chunk) ([]*core.Chunk, error)

	// ListChunks retrieves the chunks of the given documents. An empty
	// documentID list retrieves every stored chunk.
	ListChunks(ctx context.Context, documentIDs []string) ([]*core.Chunk, error)

	// DeleteChunks removes all chunks stored for a document.
	// Missing chunks are not an error.
	DeleteChunks(ctx context.Context, documentID string) error

	// FindSimilar finds chunks similar to the given vector, optionally
	// restricted to the given documents. Returns chunks with similarity
	// >= minSimilarity, up to limit results, ordered by similarity score
	// (highest first).
	FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int, documentIDs []string) ([]*core.SearchResult, error)
}
