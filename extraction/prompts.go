package extraction

import (
	"fmt"
	"strings"

	"github.com/poiesic/lectern/core"
)

const extractionPromptTemplate = `Extract the discrete, citable knowledge points from the following academic document pages and return them as JSON.

Output ONLY a valid JSON array which complies with the schema given below. Do not include any preamble, explanation,
greeting, or acknowledgment. Start your response directly with the opening bracket [ and end with the closing
bracket ]. Each element must exactly follow this schema:

{
  "title": "short name of the knowledge point",
  "definition": "complete, self-contained explanation",
  "keyFormulas": ["optional formulas, verbatim"],
  "keyConcepts": ["optional related concept names"],
  "examples": ["optional worked examples, condensed"],
  "sourcePages": [page numbers where this point appears]
}

Include:
- Concept definitions and terminology introduced by the document.
- Theorems, lemmas, and propositions together with their derivation logic.
- Algorithms with their steps and complexity.
- Classification frameworks and taxonomies.
- Worked examples that illustrate a method.

Exclude:
- Administrative remarks (deadlines, grading, course logistics).
- Table-of-contents entries and section headings with no content.
- Generic filler or transitional text.
- Near-duplicate restatements of a point already extracted from an earlier page.

Rules:
- Every sourcePages entry must be a page number that actually appears below.
- definition must stand alone without the surrounding slides.
- If the pages contain no knowledge points, return [].
- The JSON must parse without errors; no trailing commas and no text outside the array.

Pages:
%s`

// buildExtractionPrompt renders a page batch into the extraction prompt.
func buildExtractionPrompt(pages []core.Page) string {
	var sb strings.Builder
	for _, page := range pages {
		fmt.Fprintf(&sb, "--- Page %d ---\n%s\n", page.Number, strings.TrimSpace(page.Text))
	}
	return fmt.Sprintf(extractionPromptTemplate, sb.String())
}
