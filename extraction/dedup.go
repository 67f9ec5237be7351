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


package extraction

import (
	"slices"
	"strings"

	"github.com/poiesic/lectern/core"
)

// normalizeTitle is the dedup key: case-folded and trimmed.
func normalizeTitle(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}

// MergeByTitle deduplicates knowledge points by normalized title.
// The first occurrence is the base record; on a collision the survivor
// keeps the longer definition and the sorted union of both records'
// source pages. Relative order of first occurrences is preserved, which
// keeps merging deterministic across sequential batches.
func MergeByTitle(points []core.KnowledgePoint) []core.KnowledgePoint {
	if len(points) == 0 {
		return nil
	}

	index := make(map[string]int, len(points))
	merged := make([]core.KnowledgePoint, 0, len(points))

	for _, point := range points {
		key := normalizeTitle(point.Title)
		at, seen := index[key]
		if !seen {
			index[key] = len(merged)
			merged = append(merged, point)
			continue
		}
		merged[at] = mergePair(merged[at], point)
	}
	return merged
}

// mergePair folds b into a: longer definition wins, source pages union,
// auxiliary lists union preserving a's order first.
func mergePair(a, b core.KnowledgePoint) core.KnowledgePoint {
	if len(b.Definition) > len(a.Definition) {
		a.Definition = b.Definition
	}
	a.SourcePages = unionSorted(a.SourcePages, b.SourcePages)
	a.KeyFormulas = unionStrings(a.KeyFormulas, b.KeyFormulas)
	a.KeyConcepts = unionStrings(a.KeyConcepts, b.KeyConcepts)
	a.Examples = unionStrings(a.Examples, b.Examples)
	return a
}

// unionSorted returns the deduplicated union of both slices, ascending.
func unionSorted(a, b []int) []int {
	seen := make(map[int]bool, len(a)+len(b))
	out := make([]int, 0, len(a)+len(b))
	for _, v := range a {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	for _, v := range b {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	slices.Sort(out)
	return out
}

func unionStrings(a, b []string) []string {
	if len(b) == 0 {
		return a
	}
	seen := make(map[string]bool, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, v := range a {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	for _, v := range b {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
