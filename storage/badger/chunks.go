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


package badger

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/lectern/core"
	"github.com/poiesic/lectern/storage"
)

// ChunkRepository implements storage.ChunkRepository for BadgerDB.
type ChunkRepository struct {
	backend *Backend
}

var _ storage.ChunkRepository = (*ChunkRepository)(nil)

// NewChunkRepository creates a new ChunkRepository.
func NewChunkRepository(backend *Backend) *ChunkRepository {
	return &ChunkRepository{backend: backend}
}

// Close is a no-op; the shared backend is closed by its owner.
func (r *ChunkRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *ChunkRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddChunks adds one or more chunks to storage. Chunk IDs are derived from
// content, so re-ingesting the same document overwrites rather than
// duplicates.
func (r *ChunkRepository) AddChunks(ctx context.Context, chunks ...*core.Chunk) ([]*core.Chunk, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, chunk := range chunks {
			if chunk.Id == 0 {
				chunk.Id = chunkContentID(chunk)
			}
			if chunk.InsertedAt.IsZero() {
				chunk.InsertedAt = time.Now().UTC()
			}

			if err := tx.Set(makeChunkKey(chunk.Id), storage.MarshalChunk(chunk)); err != nil {
				return err
			}

			// Document index
			indexKey := makeChunkDocumentKey(chunk.DocumentID, chunk.Id)
			if err := tx.Set(indexKey, storage.MarshalID(chunk.Id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}
	return chunks, nil
}

// ListChunks retrieves the chunks of the given documents. An empty
// documentID list retrieves every stored chunk.
func (r *ChunkRepository) ListChunks(ctx context.Context, documentIDs []string) ([]*core.Chunk, error) {
	var chunks []*core.Chunk

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		if len(documentIDs) == 0 {
			return scanChunks(tx, func(chunk *core.Chunk) {
				chunks = append(chunks, chunk)
			})
		}
		for _, documentID := range documentIDs {
			ids, err := chunkIDsForDocument(tx, documentID)
			if err != nil {
				return err
			}
			for _, id := range ids {
				chunk, err := readChunk(tx, id)
				if err != nil {
					return err
				}
				if chunk != nil {
					chunks = append(chunks, chunk)
				}
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return chunks, nil
}

// DeleteChunks removes all chunks stored for a document.
func (r *ChunkRepository) DeleteChunks(ctx context.Context, documentID string) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		ids, err := chunkIDsForDocument(tx, documentID)
		if err != nil {
			return err
		}
		for _, id := range ids {
			if err := tx.Delete(makeChunkKey(id)); err != nil {
				return err
			}
			if err := tx.Delete(makeChunkDocumentKey(documentID, id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// FindSimilar finds chunks similar to the given vector, optionally
// restricted to the given documents. Vectors are expected to be normalized,
// so cosine similarity reduces to a dot product.
func (r *ChunkRepository) FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int, documentIDs []string) ([]*core.SearchResult, error) {
	filter := make(map[string]bool, len(documentIDs))
	for _, id := range documentIDs {
		filter[id] = true
	}

	var results []*core.SearchResult
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		return scanChunks(tx, func(chunk *core.Chunk) {
			if len(filter) > 0 && !filter[chunk.DocumentID] {
				return
			}
			if len(chunk.Vector) == 0 {
				return
			}

			similarity := dotProduct(vector, chunk.Vector)
			if similarity >= minSimilarity {
				results = append(results, &core.SearchResult{
					Chunk: chunk,
					Score: similarity,
				})
			}
		})
	}, false)
	if err != nil {
		return nil, err
	}

	// Sort by similarity descending
	slices.SortFunc(results, func(a, b *core.SearchResult) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return 0
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// scanChunks iterates every stored chunk record.
func scanChunks(tx *badger.Txn, visit func(chunk *core.Chunk)) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(chunkPrefix + ":")
	iter := tx.NewIterator(opts)
	defer iter.Close()

	for iter.Rewind(); iter.Valid(); iter.Next() {
		err := iter.Item().Value(func(val []byte) error {
			chunk, err := storage.UnmarshalChunk(val)
			if err != nil {
				return err
			}
			visit(chunk)
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// chunkIDsForDocument reads the document index entries for one document.
func chunkIDsForDocument(tx *badger.Txn, documentID string) ([]core.ID, error) {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = makeChunkDocumentScanPrefix(documentID)
	iter := tx.NewIterator(opts)
	defer iter.Close()

	var ids []core.ID
	for iter.Rewind(); iter.Valid(); iter.Next() {
		err := iter.Item().Value(func(val []byte) error {
			id, err := storage.UnmarshalID(val)
			if err != nil {
				return err
			}
			ids = append(ids, id)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return ids, nil
}

// readChunk reads and unmarshals a chunk, returning nil when the key is
// absent.
func readChunk(tx *badger.Txn, id core.ID) (*core.Chunk, error) {
	item, err := tx.Get(makeChunkKey(id))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var chunk *core.Chunk
	err = item.Value(func(val []byte) error {
		var err error
		chunk, err = storage.UnmarshalChunk(val)
		return err
	})
	return chunk, err
}

// chunkContentID derives a stable ID from a chunk's provenance and text.
func chunkContentID(chunk *core.Chunk) core.ID {
	return core.IDFromContent(fmt.Sprintf("%s:%d:%s", chunk.DocumentID, chunk.Metadata.Page, chunk.Content))
}

// dotProduct calculates the dot product of two vectors.
func dotProduct(a, b []float32) float32 {
	var sum float32
	minLen := len(a)
	if len(b) < minLen {
		minLen = len(b)
	}
	for i := 0; i < minLen; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
