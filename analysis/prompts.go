package analysis

import (
	"fmt"
	"strings"

	"github.com/poiesic/lectern/core"
)

const structurePromptTemplate = `Analyze the structure of an academic document from per-page content summaries and return it as JSON.

Output ONLY valid JSON which complies with the schema given below. Do not include any preamble, explanation,
greeting, or acknowledgment. Start your response directly with the opening brace { and end with the closing
brace }. Your output must exactly follow this schema:

{
  "subject": "course or field the document belongs to",
  "documentType": "lecture | textbook | notes | other",
  "sections": [
    {
      "title": "section title",
      "startPage": 1,
      "endPage": 5,
      "contentType": "definitions | theorems | examples | exercises | overview | mixed",
      "parentSection": "optional parent section title"
    }
  ]
}

Rules:
- Sections must cover every page from %d to %d with no gaps between consecutive sections.
- Label table-of-contents, introduction, and reference pages as "overview".
- When the document has no explicit headings, segment by topic boundaries instead.
- Use the page numbers exactly as given; startPage must not exceed endPage.
- The JSON must parse without errors; no trailing commas, no extra keys, and no extraneous text outside the object.

Pages:
%s`

// buildStructurePrompt renders the page summaries into the structure prompt.
// Each page contributes its number and the first summaryLength characters
// of its text.
func buildStructurePrompt(pages []core.Page, summaryLength int) string {
	var sb strings.Builder
	for _, page := range pages {
		text := page.Text
		if len(text) > summaryLength {
			text = text[:summaryLength]
		}
		fmt.Fprintf(&sb, "--- Page %d ---\n%s\n", page.Number, strings.TrimSpace(text))
	}

	return fmt.Sprintf(structurePromptTemplate,
		pages[0].Number, pages[len(pages)-1].Number, sb.String())
}
