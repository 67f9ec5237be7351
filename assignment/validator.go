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


package assignment

import (
	"fmt"
	"strings"

	"github.com/poiesic/lectern/core"
)

// minContentLength is the floor below which non-empty content is flagged
// as suspiciously short.
const minContentLength = 10

// AnnotateItems runs every local check against each item and fills in its
// Warnings list. Nothing is rejected; warnings are advisory and surface in
// the review UI. Runs entirely without the oracle.
func AnnotateItems(items []core.AssignmentItem) []core.AssignmentItem {
	for i := range items {
		var warnings []string

		if i > 0 && items[i].OrderNum != items[i-1].OrderNum+1 {
			warnings = append(warnings, fmt.Sprintf(
				"gap in question numbering: %d follows %d", items[i].OrderNum, items[i-1].OrderNum))
		}

		content := strings.TrimSpace(items[i].Content)
		switch {
		case content == "":
			warnings = append(warnings, "Empty question content")
		case len(content) < minContentLength:
			warnings = append(warnings, "Question content is suspiciously short")
		}

		if strings.TrimSpace(items[i].ReferenceAnswer) == "" {
			warnings = append(warnings, "Missing reference answer")
		}

		warnings = append(warnings, katexWarnings(items[i].Content)...)

		if dup := findDuplicate(items, i); dup >= 0 {
			warnings = append(warnings, fmt.Sprintf(
				"Possible duplicate of question %d", items[dup].OrderNum))
		}

		items[i].Warnings = warnings
	}
	return items
}

// katexWarnings flags unterminated math delimiters. A well-formed item has
// an even number of $$ blocks and an even number of remaining single $.
func katexWarnings(content string) []string {
	var warnings []string

	doubles := strings.Count(content, "$$")
	singles := strings.Count(content, "$") - 2*doubles

	if doubles%2 != 0 {
		warnings = append(warnings, "Unmatched $$ KaTeX block delimiter")
	}
	if singles%2 != 0 {
		warnings = append(warnings, "Unmatched $ KaTeX inline delimiter")
	}
	return warnings
}

// findDuplicate reports the position of an earlier item whose content
// matches items[i] exactly or contains/is contained by it. Returns -1 when
// there is none. Whitespace-only content never matches.
func findDuplicate(items []core.AssignmentItem, i int) int {
	current := strings.TrimSpace(items[i].Content)
	if current == "" {
		return -1
	}
	for j := 0; j < i; j++ {
		earlier := strings.TrimSpace(items[j].Content)
		if earlier == "" {
			continue
		}
		if earlier == current || strings.Contains(earlier, current) || strings.Contains(current, earlier) {
			return j
		}
	}
	return -1
}
