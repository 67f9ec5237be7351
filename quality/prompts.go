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


package quality

import (
	"fmt"
	"strings"

	"github.com/poiesic/lectern/core"
)

const relevancePromptTemplate = `You are reviewing knowledge points extracted from an academic document. For each point, judge whether it is relevant course content worth keeping.

A point is relevant when it captures a definition, theorem, algorithm, method, framework, or worked example from the subject matter. A point is NOT relevant when it is administrative (schedules, grading, contact info), a table-of-contents entry, a page header, or filler with no instructional value.

Return ONLY a JSON array, one element per point, in this exact format:
[
  {"index": 0, "isRelevant": true, "qualityScore": 8, "issues": []},
  {"index": 1, "isRelevant": false, "qualityScore": 2, "issues": ["administrative content"]}
]

Rules:
- "index" must match the point's number below.
- "qualityScore" is 0-10: completeness and precision of the definition.
- "issues" lists concrete problems, or [] if none.
- Do not add any text outside the JSON array.

Points to review:
%s`

// buildRelevancePrompt formats the points for a single review call.
// Definitions are truncated so the whole list fits in one request.
func buildRelevancePrompt(points []core.KnowledgePoint, previewLength int) string {
	var sb strings.Builder
	for i, point := range points {
		definition := point.Definition
		if len(definition) > previewLength {
			definition = definition[:previewLength] + "..."
		}
		sb.WriteString(fmt.Sprintf("[%d] %s: %s\n", i, point.Title, definition))
	}
	return fmt.Sprintf(relevancePromptTemplate, sb.String())
}
