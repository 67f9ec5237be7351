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
	"fmt"

	"github.com/poiesic/lectern/core"
)

// decodeErr tags a codec failure so callers can match ErrSerializationFailed.
func decodeErr(kind string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrSerializationFailed, kind, err)
}

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, core.IDMUS.Size(id))
	core.IDMUS.Marshal(id, buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	id, _, err := core.IDMUS.Unmarshal(data)
	if err != nil {
		return 0, decodeErr("id", err)
	}
	return id, nil
}

// MarshalDocument serializes a Document to bytes.
func MarshalDocument(document *core.Document) []byte {
	buf := make([]byte, core.DocumentMUS.Size(*document))
	core.DocumentMUS.Marshal(*document, buf)
	return buf
}

// UnmarshalDocument deserializes a Document from bytes.
func UnmarshalDocument(data []byte) (*core.Document, error) {
	document, _, err := core.DocumentMUS.Unmarshal(data)
	if err != nil {
		return nil, decodeErr("document", err)
	}
	return &document, nil
}

// MarshalChunk serializes a Chunk to bytes.
func MarshalChunk(chunk *core.Chunk) []byte {
	buf := make([]byte, core.ChunkMUS.Size(*chunk))
	core.ChunkMUS.Marshal(*chunk, buf)
	return buf
}

// UnmarshalChunk deserializes a Chunk from bytes.
func UnmarshalChunk(data []byte) (*core.Chunk, error) {
	chunk, _, err := core.ChunkMUS.Unmarshal(data)
	if err != nil {
		return nil, decodeErr("chunk", err)
	}
	return &chunk, nil
}

// MarshalKnowledgePoint serializes a KnowledgePoint to bytes.
func MarshalKnowledgePoint(point *core.KnowledgePoint) []byte {
	buf := make([]byte, core.KnowledgePointMUS.Size(*point))
	core.KnowledgePointMUS.Marshal(*point, buf)
	return buf
}

// UnmarshalKnowledgePoint deserializes a KnowledgePoint from bytes.
func UnmarshalKnowledgePoint(data []byte) (*core.KnowledgePoint, error) {
	point, _, err := core.KnowledgePointMUS.Unmarshal(data)
	if err != nil {
		return nil, decodeErr("knowledge point", err)
	}
	return &point, nil
}

// MarshalOutline serializes a DocumentOutline to bytes.
func MarshalOutline(outline *core.DocumentOutline) []byte {
	buf := make([]byte, core.DocumentOutlineMUS.Size(*outline))
	core.DocumentOutlineMUS.Marshal(*outline, buf)
	return buf
}

// UnmarshalOutline deserializes a DocumentOutline from bytes.
func UnmarshalOutline(data []byte) (*core.DocumentOutline, error) {
	outline, _, err := core.DocumentOutlineMUS.Unmarshal(data)
	if err != nil {
		return nil, decodeErr("outline", err)
	}
	return &outline, nil
}

// MarshalAssignmentItem serializes an AssignmentItem to bytes.
func MarshalAssignmentItem(item *core.AssignmentItem) []byte {
	buf := make([]byte, core.AssignmentItemMUS.Size(*item))
	core.AssignmentItemMUS.Marshal(*item, buf)
	return buf
}

// UnmarshalAssignmentItem deserializes an AssignmentItem from bytes.
func UnmarshalAssignmentItem(data []byte) (*core.AssignmentItem, error) {
	item, _, err := core.AssignmentItemMUS.Unmarshal(data)
	if err != nil {
		return nil, decodeErr("assignment item", err)
	}
	return &item, nil
}
