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


package search

import "github.com/poiesic/lectern/core"

// RetrievalMonitor provides hooks to observe the retrieval process.
// Implement this interface to track intermediate rankings during a search.
type RetrievalMonitor interface {
	Start(query string)
	AfterVectorSearch(ids []uint64)
	AfterKeywordSearch(ids []uint64)
	Finish(results []*core.SearchResult)
}

// noopMonitor is a no-op implementation of RetrievalMonitor
type noopMonitor struct{}

var _ RetrievalMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                  {}
func (n *noopMonitor) AfterVectorSearch(_ []uint64)    {}
func (n *noopMonitor) AfterKeywordSearch(_ []uint64)   {}
func (n *noopMonitor) Finish(_ []*core.SearchResult)   {}
