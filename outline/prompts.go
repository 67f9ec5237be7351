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


package outline

import (
	"fmt"
	"strings"

	"github.com/poiesic/lectern/core"
)

const documentOutlinePromptTemplate = `You are organizing knowledge points extracted from an academic document into a study outline.

Document sections:
%s
Knowledge points:
%s
Return ONLY a JSON object in this exact format:
{
  "title": "substantive outline title",
  "summary": "2-3 sentence summary of the document",
  "sections": [
    {
      "title": "section title",
      "knowledgePoints": ["point title", "point title"],
      "briefDescription": "one sentence on what this section covers"
    }
  ]
}

Rules:
- Every knowledge point title listed above must appear in exactly one section's "knowledgePoints" array. Do not invent titles and do not omit any.
- Group points by topic; follow the document's own section order where it makes sense.
- "title" and "summary" must be non-empty.
- Do not add any text outside the JSON object.`

func buildDocumentOutlinePrompt(structure *core.DocumentStructure, points []core.KnowledgePoint) string {
	var sections strings.Builder
	if structure != nil {
		for _, section := range structure.Sections {
			sections.WriteString(fmt.Sprintf("- %s (pages %d-%d, %s)\n",
				section.Title, section.StartPage, section.EndPage, section.ContentType))
		}
	}
	if sections.Len() == 0 {
		sections.WriteString("(no section structure available)\n")
	}

	var titles strings.Builder
	for _, point := range points {
		titles.WriteString(fmt.Sprintf("- %s\n", point.Title))
	}

	return fmt.Sprintf(documentOutlinePromptTemplate, sections.String(), titles.String())
}

const courseOutlinePromptTemplate = `You are merging the outlines of several documents from one course into a single course-level topic map.

Document outlines:
%s
Return ONLY a JSON object in this exact format:
{
  "title": "course title",
  "summary": "2-3 sentence summary of the course",
  "topics": [
    {"title": "topic title", "subtopics": ["subtopic", "subtopic"], "documents": ["document title"]}
  ]
}

Rules:
- Merge overlapping themes across documents into shared topics.
- "title" and "summary" must be non-empty and there must be at least one topic.
- Do not add any text outside the JSON object.`

func buildCourseOutlinePrompt(outlines []core.DocumentOutline) string {
	var sb strings.Builder
	for _, outline := range outlines {
		sb.WriteString(fmt.Sprintf("## %s\n", outline.Title))
		for _, section := range outline.Sections {
			sb.WriteString(fmt.Sprintf("- %s\n", section.Title))
		}
	}
	return fmt.Sprintf(courseOutlinePromptTemplate, sb.String())
}
