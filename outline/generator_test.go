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

func testStructure() *core.DocumentStructure {
	return &core.DocumentStructure{
		Subject: "Data Structures",
		Sections: []core.SectionInfo{
			{Title: "Course Overview", StartPage: 1, EndPage: 2, ContentType: core.ContentOverview},
			{Title: "Binary Trees", StartPage: 3, EndPage: 10, ContentType: core.ContentDefinitions},
			{Title: "Heaps", StartPage: 11, EndPage: 20, ContentType: core.ContentTheorems},
		},
	}
}

func makePoints(count int) []core.KnowledgePoint {
	points := make([]core.KnowledgePoint, count)
	for i := range points {
		points[i] = core.KnowledgePoint{
			Title:       fmt.Sprintf("Point %d", i+1),
			Definition:  "A definition",
			SourcePages: []int{i%20 + 1},
		}
	}
	return points
}

func coveredTitles(t *testing.T, outline core.DocumentOutline) map[string]int {
	t.Helper()
	counts := make(map[string]int)
	for _, section := range outline.Sections {
		for _, title := range section.KnowledgePoints {
			counts[title]++
		}
	}
	return counts
}

func TestGenerateOutline_SmallSetSkipsOracle(t *testing.T) {
	gen := mock.NewMockGenerator()
	outliner, err := NewGenerator(gen)
	require.NoError(t, err)

	points := []core.KnowledgePoint{
		{Title: "BST", Definition: "d", SourcePages: []int{4}},
		{Title: "Heap Property", Definition: "d", SourcePages: []int{12}},
	}

	outline := outliner.GenerateOutline(context.Background(), "doc-1", testStructure(), points)

	assert.Zero(t, gen.CallCount(), "small sets are built locally")
	assert.Equal(t, "doc-1", outline.DocumentID)
	assert.Equal(t, "Binary Trees", outline.Title, "title skips the overview section")
	assert.Equal(t, "Data Structures", outline.Subject)
	assert.Equal(t, 2, outline.TotalKnowledgePoints)
	require.Len(t, outline.Sections, 2)
	assert.Equal(t, []string{"BST"}, outline.Sections[0].KnowledgePoints)
	assert.Equal(t, []string{"Heap Property"}, outline.Sections[1].KnowledgePoints)
	require.NoError(t, core.ValidateOutline(&outline))
}

func TestGenerateOutline_LocalCoverageIsExact(t *testing.T) {
	outliner, err := NewGenerator(mock.NewMockGenerator())
	require.NoError(t, err)

	// Pages chosen to hit both sections, the overlap between them, and
	// pages outside every section.
	points := []core.KnowledgePoint{
		{Title: "A", Definition: "d", SourcePages: []int{3}},
		{Title: "B", Definition: "d", SourcePages: []int{10, 11}},
		{Title: "C", Definition: "d", SourcePages: []int{20}},
		{Title: "D", Definition: "d", SourcePages: []int{99}},
		{Title: "E", Definition: "d", SourcePages: nil},
	}

	outline := outliner.GenerateOutline(context.Background(), "doc-1", testStructure(), points)

	counts := coveredTitles(t, outline)
	require.Len(t, counts, 5)
	for _, point := range points {
		assert.Equal(t, 1, counts[point.Title], "point %q must appear exactly once", point.Title)
	}

	last := outline.Sections[len(outline.Sections)-1]
	assert.Equal(t, fallbackSectionTitle, last.Title)
	assert.ElementsMatch(t, []string{"D", "E"}, last.KnowledgePoints)
}

func TestGenerateOutline_NoStructure(t *testing.T) {
	outliner, err := NewGenerator(mock.NewMockGenerator())
	require.NoError(t, err)

	outline := outliner.GenerateOutline(context.Background(), "doc-1", nil, makePoints(3))

	require.NoError(t, core.ValidateOutline(&outline))
	counts := coveredTitles(t, outline)
	assert.Len(t, counts, 3, "every point still lands in the catch-all")
}

func TestGenerateOutline_EmptyPoints(t *testing.T) {
	outliner, err := NewGenerator(mock.NewMockGenerator())
	require.NoError(t, err)

	outline := outliner.GenerateOutline(context.Background(), "doc-1", testStructure(), nil)
	require.NoError(t, core.ValidateOutline(&outline))
	assert.Zero(t, outline.TotalKnowledgePoints)
}

func TestGenerateOutline_LargeSetUsesOracle(t *testing.T) {
	gen := mock.NewMockGenerator()
	gen.Responses = []string{`{
		"title": "Trees and Heaps",
		"summary": "Binary trees, search trees and heap structures.",
		"sections": [
			{"title": "Trees", "knowledgePoints": ["Point 1"], "briefDescription": "Tree basics"}
		]
	}`}

	outliner, err := NewGenerator(gen)
	require.NoError(t, err)

	outline := outliner.GenerateOutline(context.Background(), "doc-1", testStructure(), makePoints(11))

	assert.Equal(t, 1, gen.CallCount())
	assert.Equal(t, "Trees and Heaps", outline.Title)
	assert.Equal(t, "doc-1", outline.DocumentID)
	assert.Equal(t, "Data Structures", outline.Subject, "subject backfilled from structure")
	assert.Equal(t, 11, outline.TotalKnowledgePoints)
}

func TestGenerateOutline_OracleFailureFallsBackLocal(t *testing.T) {
	gen := mock.NewMockGenerator()
	gen.GenerateFunc = func(ctx context.Context, prompt string, opts ai.GenerateOptions) (string, error) {
		return "", errors.New("service down")
	}

	outliner, err := NewGenerator(gen)
	require.NoError(t, err)

	points := makePoints(15)
	outline := outliner.GenerateOutline(context.Background(), "doc-1", testStructure(), points)

	require.NoError(t, core.ValidateOutline(&outline))
	assert.Len(t, coveredTitles(t, outline), 15, "fallback covers every point")
}

func TestGenerateOutline_InvalidOracleSchemaFallsBackLocal(t *testing.T) {
	gen := mock.NewMockGenerator()
	gen.Responses = []string{`{"title": "", "summary": "", "sections": []}`}

	outliner, err := NewGenerator(gen)
	require.NoError(t, err)

	outline := outliner.GenerateOutline(context.Background(), "doc-1", testStructure(), makePoints(12))
	require.NoError(t, core.ValidateOutline(&outline))
	assert.NotEmpty(t, outline.Sections)
}

func TestGenerateCourseOutline_OracleAccepted(t *testing.T) {
	gen := mock.NewMockGenerator()
	gen.Responses = []string{`{
		"title": "Algorithms 101",
		"summary": "Fundamental data structures and algorithms.",
		"topics": [{"title": "Trees", "subtopics": ["BST", "AVL"], "documents": ["Lecture 3"]}]
	}`}

	outliner, err := NewGenerator(gen)
	require.NoError(t, err)

	course := outliner.GenerateCourseOutline(context.Background(), "course-1", []core.DocumentOutline{
		{DocumentID: "doc-1", Title: "Lecture 3", Sections: []core.OutlineSection{{Title: "BST"}}},
	})

	assert.Equal(t, "course-1", course.CourseID)
	assert.Equal(t, "Algorithms 101", course.Title)
	require.Len(t, course.Topics, 1)
}

func TestGenerateCourseOutline_FailureBuildsTopicPerDocument(t *testing.T) {
	gen := mock.NewMockGenerator()
	gen.GenerateFunc = func(ctx context.Context, prompt string, opts ai.GenerateOptions) (string, error) {
		return "", errors.New("service down")
	}

	outliner, err := NewGenerator(gen)
	require.NoError(t, err)

	outlines := []core.DocumentOutline{
		{DocumentID: "doc-1", Title: "Lecture 1", Sections: []core.OutlineSection{{Title: "Intro"}, {Title: "Sorting"}}},
		{DocumentID: "doc-2", Title: "Lecture 2", Sections: []core.OutlineSection{{Title: "Graphs"}}},
	}

	course := outliner.GenerateCourseOutline(context.Background(), "course-1", outlines)

	require.Len(t, course.Topics, 2)
	assert.Equal(t, "Lecture 1", course.Topics[0].Title)
	assert.Equal(t, []string{"Intro", "Sorting"}, course.Topics[0].Subtopics)
	assert.Equal(t, []string{"doc-2"}, course.Topics[1].Documents)
}

func TestNewGenerator_RequiresGenerator(t *testing.T) {
	_, err := NewGenerator(nil)
	assert.ErrorIs(t, err, ErrGeneratorRequired)
}
