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

const parsePromptTemplate = `You are parsing an assignment or exam paper into its individual question items.

Return ONLY a JSON array, one element per question, in this exact format:
[
  {
    "title": "short question label, e.g. Question 3",
    "orderNum": 3,
    "content": "the full question text, math kept in $...$ / $$...$$ notation",
    "options": ["A. ...", "B. ..."],
    "referenceAnswer": "the answer if the paper includes one",
    "explanation": "the solution walkthrough if included",
    "points": 10,
    "type": "multiple-choice | short-answer | proof | calculation | essay",
    "difficulty": "easy | medium | hard",
    "parentIndex": null,
    "sourcePages": [2]
  }
]

Rules:
- "orderNum" is 1-based and follows the paper's own numbering.
- Sub-questions (3a, 3b) set "parentIndex" to the ZERO-BASED position of their parent question in THIS array; top-level questions use null.
- Omit "options", "referenceAnswer" and "explanation" when the paper has none; never invent answers.
- "points" is 0 when the paper does not state a score.
- Keep all mathematical notation exactly as written.
- Do not add any text outside the JSON array.

Document pages:
%s`

func buildParsePrompt(pages []core.Page) string {
	var sb strings.Builder
	for _, page := range pages {
		sb.WriteString(fmt.Sprintf("--- Page %d ---\n%s\n", page.Number, page.Text))
	}
	return fmt.Sprintf(parsePromptTemplate, sb.String())
}
