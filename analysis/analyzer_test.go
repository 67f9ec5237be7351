package analysis

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/poiesic/lectern/ai"
	"github.com/poiesic/lectern/ai/mock"
	"github.com/poiesic/lectern/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makePages(count int) []core.Page {
	pages := make([]core.Page, count)
	for i := range pages {
		pages[i] = core.Page{Number: i + 1, Text: fmt.Sprintf("Content of page %d about graph theory.", i+1)}
	}
	return pages
}

func TestAnalyze_ShortDocumentSkipsOracle(t *testing.T) {
	gen := mock.NewMockGenerator()
	analyzer, err := NewAnalyzer(gen)
	require.NoError(t, err)

	structure := analyzer.Analyze(context.Background(), makePages(3))

	assert.Equal(t, 0, gen.CallCount(), "short document must not call the oracle")
	require.Len(t, structure.Sections, 1)
	assert.Equal(t, "Full Document", structure.Sections[0].Title)
	assert.Equal(t, core.ContentMixed, structure.Sections[0].ContentType)
	assert.Equal(t, 1, structure.Sections[0].StartPage)
	assert.Equal(t, 3, structure.Sections[0].EndPage)
	assert.Equal(t, "Unknown", structure.Subject)
	assert.Equal(t, "unknown", structure.DocumentType)
}

func TestAnalyze_OracleStructureAccepted(t *testing.T) {
	gen := mock.NewMockGenerator()
	gen.Responses = []string{`{
		"subject": "Algorithms",
		"documentType": "lecture",
		"sections": [
			{"title": "Introduction", "startPage": 1, "endPage": 2, "contentType": "overview"},
			{"title": "Shortest Paths", "startPage": 3, "endPage": 8, "contentType": "theorems"}
		]
	}`}

	analyzer, err := NewAnalyzer(gen)
	require.NoError(t, err)

	structure := analyzer.Analyze(context.Background(), makePages(8))

	assert.Equal(t, 1, gen.CallCount())
	assert.Equal(t, "Algorithms", structure.Subject)
	require.Len(t, structure.Sections, 2)
	assert.Equal(t, "Shortest Paths", structure.Sections[1].Title)
}

func TestAnalyze_OracleFailureFallsBack(t *testing.T) {
	gen := mock.NewMockGenerator()
	gen.GenerateFunc = func(ctx context.Context, prompt string, opts ai.GenerateOptions) (string, error) {
		return "", errors.New("rate limited")
	}

	analyzer, err := NewAnalyzer(gen, WithConfig(Config{
		ShortDocumentThreshold: 5,
		PageSummaryLength:      500,
		SegmentSize:            10,
	}))
	require.NoError(t, err)

	structure := analyzer.Analyze(context.Background(), makePages(25))

	// 25 pages in windows of 10 -> 3 sections.
	require.Len(t, structure.Sections, 3)
	assert.Equal(t, "Section 1", structure.Sections[0].Title)
	assert.Equal(t, 1, structure.Sections[0].StartPage)
	assert.Equal(t, 10, structure.Sections[0].EndPage)
	assert.Equal(t, "Section 3", structure.Sections[2].Title)
	assert.Equal(t, 21, structure.Sections[2].StartPage)
	assert.Equal(t, 25, structure.Sections[2].EndPage)
	for _, section := range structure.Sections {
		assert.Equal(t, core.ContentMixed, section.ContentType)
	}
}

func TestAnalyze_InvalidOracleJSONFallsBack(t *testing.T) {
	gen := mock.NewMockGenerator()
	gen.Responses = []string{"I could not determine the structure, sorry."}

	analyzer, err := NewAnalyzer(gen)
	require.NoError(t, err)

	structure := analyzer.Analyze(context.Background(), makePages(12))

	require.Len(t, structure.Sections, 2)
	assert.Equal(t, "Section 1", structure.Sections[0].Title)
}

func TestAnalyze_SchemaViolationFallsBack(t *testing.T) {
	// Parses as JSON but fails structural validation (empty sections).
	gen := mock.NewMockGenerator()
	gen.Responses = []string{`{"subject": "Algorithms", "documentType": "lecture", "sections": []}`}

	analyzer, err := NewAnalyzer(gen)
	require.NoError(t, err)

	structure := analyzer.Analyze(context.Background(), makePages(12))

	require.NotEmpty(t, structure.Sections)
	assert.Equal(t, "Unknown", structure.Subject)
}

func TestAnalyze_PromptContainsTruncatedPages(t *testing.T) {
	gen := mock.NewMockGenerator()
	analyzer, err := NewAnalyzer(gen, WithConfig(Config{
		ShortDocumentThreshold: 5,
		PageSummaryLength:      10,
		SegmentSize:            10,
	}))
	require.NoError(t, err)

	analyzer.Analyze(context.Background(), makePages(6))

	require.Equal(t, 1, gen.CallCount())
	prompt := gen.Prompts()[0]
	assert.Contains(t, prompt, "--- Page 6 ---")
	// 10-character summaries only.
	assert.NotContains(t, prompt, "graph theory")
}

func TestNewAnalyzer_RequiresGenerator(t *testing.T) {
	_, err := NewAnalyzer(nil)
	assert.ErrorIs(t, err, ErrGeneratorRequired)
}
