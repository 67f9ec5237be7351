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


// Package storage defines the persistence interfaces for documents and
// their derived knowledge, plus the binary serialization helpers shared by
// all backends.
//
// Three repositories split the surface by lifecycle:
//
//   - DocumentRepository holds the document records themselves and their
//     processing status.
//   - KnowledgeRepository holds what the pipeline derives from a document:
//     knowledge points, the outline, and assignment items. Derived data is
//     replaced wholesale on reprocessing, never patched.
//   - ChunkRepository holds the embeddable text chunks consumed by the
//     retriever, including the vector scan behind similarity search.
//
// Implementations must be safe for concurrent use. The canonical
// implementation lives in the badger subpackage; its in-memory mode backs
// the test helpers.
//
// Values are serialized with hand-written MUS codecs from the core
// package. The helpers here (MarshalDocument, UnmarshalChunk, ...) wrap
// those codecs with buffer allocation so backends deal only in byte
// slices.
package storage
