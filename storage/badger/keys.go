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
	"encoding/binary"
	"fmt"

	"github.com/poiesic/lectern/core"
)

// Key prefixes for different data types
const (
	documentPrefix       = "docrec"
	knowledgePointPrefix = "kptrec"
	outlinePrefix        = "outrec"
	assignmentPrefix     = "asgrec"
	chunkPrefix          = "chkrec"
	chunkDocumentPrefix  = "chkdoc"
)

// makeDocumentKey generates a key for a document by ID.
func makeDocumentKey(id string) []byte {
	return []byte(fmt.Sprintf("%s:%s", documentPrefix, id))
}

// makeKnowledgePointKey generates a composite key for one knowledge point.
// Format: prefix:documentID:position. The position is written BigEndian so
// lexicographic iteration preserves storage order.
func makeKnowledgePointKey(documentID string, position int) []byte {
	prefix := fmt.Sprintf("%s:%s:", knowledgePointPrefix, documentID)
	buf := make([]byte, len(prefix)+4)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint32(buf[offset:], uint32(position))
	return buf
}

// makeKnowledgePointScanPrefix generates the iteration prefix for a
// document's knowledge points.
func makeKnowledgePointScanPrefix(documentID string) []byte {
	return []byte(fmt.Sprintf("%s:%s:", knowledgePointPrefix, documentID))
}

// makeOutlineKey generates a key for a document's outline.
func makeOutlineKey(documentID string) []byte {
	return []byte(fmt.Sprintf("%s:%s", outlinePrefix, documentID))
}

// makeAssignmentItemKey generates a composite key for one assignment item.
// Format: prefix:documentID:position, BigEndian position as above.
func makeAssignmentItemKey(documentID string, position int) []byte {
	prefix := fmt.Sprintf("%s:%s:", assignmentPrefix, documentID)
	buf := make([]byte, len(prefix)+4)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint32(buf[offset:], uint32(position))
	return buf
}

// makeAssignmentItemScanPrefix generates the iteration prefix for a
// document's assignment items.
func makeAssignmentItemScanPrefix(documentID string) []byte {
	return []byte(fmt.Sprintf("%s:%s:", assignmentPrefix, documentID))
}

// makeChunkKey generates a key for a chunk by ID.
func makeChunkKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", chunkPrefix, id))
}

// makeChunkDocumentKey generates a composite key for the chunk-by-document
// index. Format: prefix:documentID:chunkID.
func makeChunkDocumentKey(documentID string, id core.ID) []byte {
	prefix := fmt.Sprintf("%s:%s:", chunkDocumentPrefix, documentID)
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makeChunkDocumentScanPrefix generates the iteration prefix for a
// document's chunk index entries.
func makeChunkDocumentScanPrefix(documentID string) []byte {
	return []byte(fmt.Sprintf("%s:%s:", chunkDocumentPrefix, documentID))
}
