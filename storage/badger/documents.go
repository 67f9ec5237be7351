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
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/lectern/core"
	"github.com/poiesic/lectern/storage"
)

// DocumentRepository implements storage.DocumentRepository for BadgerDB.
type DocumentRepository struct {
	backend *Backend
}

var _ storage.DocumentRepository = (*DocumentRepository)(nil)

// NewDocumentRepository creates a new DocumentRepository.
func NewDocumentRepository(backend *Backend) *DocumentRepository {
	return &DocumentRepository{backend: backend}
}

// Close is a no-op; the shared backend is closed by its owner.
func (r *DocumentRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *DocumentRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// PutDocument inserts or replaces a document record.
func (r *DocumentRepository) PutDocument(ctx context.Context, document *core.Document) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeDocumentKey(document.Id)

		// Preserve the original insertion time across replacements.
		old, err := readDocument(tx, key)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		if old != nil {
			document.InsertedAt = old.InsertedAt
		} else if document.InsertedAt.IsZero() {
			document.InsertedAt = now
		}
		document.UpdatedAt = now

		if err := tx.Set(key, storage.MarshalDocument(document)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// GetDocument retrieves a document by ID.
func (r *DocumentRepository) GetDocument(ctx context.Context, id string) (*core.Document, error) {
	var document *core.Document
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		document, err = readDocument(tx, makeDocumentKey(id))
		return err
	}, false)
	if err != nil {
		return nil, err
	}
	if document == nil {
		return nil, storage.ErrNotFound
	}
	return document, nil
}

// ListDocuments retrieves all documents for a course, ordered by insertion
// time. An empty courseID lists every document.
func (r *DocumentRepository) ListDocuments(ctx context.Context, courseID string) ([]*core.Document, error) {
	var documents []*core.Document

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(documentPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var document *core.Document
			err := iter.Item().Value(func(val []byte) error {
				var err error
				document, err = storage.UnmarshalDocument(val)
				return err
			})
			if err != nil {
				return err
			}
			if courseID != "" && document.CourseID != courseID {
				continue
			}
			documents = append(documents, document)
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	slices.SortFunc(documents, func(a, b *core.Document) int {
		return a.InsertedAt.Compare(b.InsertedAt)
	})
	return documents, nil
}

// SetDocumentStatus updates a document's processing status and detail message.
func (r *DocumentRepository) SetDocumentStatus(ctx context.Context, id string, status core.DocumentStatus, detail string) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeDocumentKey(id)
		document, err := readDocument(tx, key)
		if err != nil {
			return err
		}
		if document == nil {
			return storage.ErrNotFound
		}

		document.Status = status
		document.StatusDetail = detail
		document.UpdatedAt = time.Now().UTC()

		if err := tx.Set(key, storage.MarshalDocument(document)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// DeleteDocument removes a document record by ID.
func (r *DocumentRepository) DeleteDocument(ctx context.Context, id string) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeDocumentKey(id)
		document, err := readDocument(tx, key)
		if err != nil {
			return err
		}
		if document == nil {
			return storage.ErrNotFound
		}
		if err := tx.Delete(key); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// readDocument reads and unmarshals a document, returning nil when the key
// is absent.
func readDocument(tx *badger.Txn, key []byte) (*core.Document, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var document *core.Document
	err = item.Value(func(val []byte) error {
		var err error
		document, err = storage.UnmarshalDocument(val)
		return err
	})
	return document, err
}
