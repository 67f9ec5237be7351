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

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/lectern/core"
	"github.com/poiesic/lectern/storage"
)

// KnowledgeRepository implements storage.KnowledgeRepository for BadgerDB.
type KnowledgeRepository struct {
	backend *Backend
}

var _ storage.KnowledgeRepository = (*KnowledgeRepository)(nil)

// NewKnowledgeRepository creates a new KnowledgeRepository.
func NewKnowledgeRepository(backend *Backend) *KnowledgeRepository {
	return &KnowledgeRepository{backend: backend}
}

// Close is a no-op; the shared backend is closed by its owner.
func (r *KnowledgeRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *KnowledgeRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// PutKnowledgePoints replaces the knowledge points stored for a document.
func (r *KnowledgeRepository) PutKnowledgePoints(ctx context.Context, documentID string, points []core.KnowledgePoint) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := deletePrefix(tx, makeKnowledgePointScanPrefix(documentID)); err != nil {
			return err
		}
		for i := range points {
			key := makeKnowledgePointKey(documentID, i)
			if err := tx.Set(key, storage.MarshalKnowledgePoint(&points[i])); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetKnowledgePoints retrieves a document's knowledge points in their
// stored order.
func (r *KnowledgeRepository) GetKnowledgePoints(ctx context.Context, documentID string) ([]core.KnowledgePoint, error) {
	var points []core.KnowledgePoint

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeKnowledgePointScanPrefix(documentID)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			err := iter.Item().Value(func(val []byte) error {
				point, err := storage.UnmarshalKnowledgePoint(val)
				if err != nil {
					return err
				}
				points = append(points, *point)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return points, nil
}

// PutOutline inserts or replaces a document's outline.
func (r *KnowledgeRepository) PutOutline(ctx context.Context, outline *core.DocumentOutline) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeOutlineKey(outline.DocumentID)
		if err := tx.Set(key, storage.MarshalOutline(outline)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// GetOutline retrieves a document's outline.
func (r *KnowledgeRepository) GetOutline(ctx context.Context, documentID string) (*core.DocumentOutline, error) {
	var outline *core.DocumentOutline

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeOutlineKey(documentID))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return storage.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			var err error
			outline, err = storage.UnmarshalOutline(val)
			return err
		})
	}, false)
	if err != nil {
		return nil, err
	}
	return outline, nil
}

// PutAssignmentItems replaces the assignment items stored for a document.
func (r *KnowledgeRepository) PutAssignmentItems(ctx context.Context, documentID string, items []core.AssignmentItem) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := deletePrefix(tx, makeAssignmentItemScanPrefix(documentID)); err != nil {
			return err
		}
		for i := range items {
			key := makeAssignmentItemKey(documentID, i)
			if err := tx.Set(key, storage.MarshalAssignmentItem(&items[i])); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetAssignmentItems retrieves a document's assignment items in their
// stored order.
func (r *KnowledgeRepository) GetAssignmentItems(ctx context.Context, documentID string) ([]core.AssignmentItem, error) {
	var items []core.AssignmentItem

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeAssignmentItemScanPrefix(documentID)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			err := iter.Item().Value(func(val []byte) error {
				item, err := storage.UnmarshalAssignmentItem(val)
				if err != nil {
					return err
				}
				items = append(items, *item)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return items, nil
}

// DeleteDocumentKnowledge removes all points, the outline, and the
// assignment items stored for a document.
func (r *KnowledgeRepository) DeleteDocumentKnowledge(ctx context.Context, documentID string) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := deletePrefix(tx, makeKnowledgePointScanPrefix(documentID)); err != nil {
			return err
		}
		if err := deletePrefix(tx, makeAssignmentItemScanPrefix(documentID)); err != nil {
			return err
		}
		err := tx.Delete(makeOutlineKey(documentID))
		if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return tx.Commit()
	}, true)
}

// deletePrefix removes every key under the given prefix within the
// transaction.
func deletePrefix(tx *badger.Txn, prefix []byte) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	opts.PrefetchValues = false
	iter := tx.NewIterator(opts)
	defer iter.Close()

	var keys [][]byte
	for iter.Rewind(); iter.Valid(); iter.Next() {
		keys = append(keys, iter.Item().KeyCopy(nil))
	}
	for _, key := range keys {
		if err := tx.Delete(key); err != nil {
			return err
		}
	}
	return nil
}
