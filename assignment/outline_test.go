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
	"strings"
	"testing"

	"github.com/poiesic/lectern/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(i int) *int { return &i }

func TestBuildOutline_NestsSubQuestions(t *testing.T) {
	items := []core.AssignmentItem{
		{OrderNum: 1, Content: "Question 1: graph basics", ParentIndex: nil},
		{OrderNum: 2, Content: "Question 2: shortest paths", ParentIndex: nil},
		{OrderNum: 3, Content: "Part a: run Dijkstra by hand", ParentIndex: intPtr(1)},
		{OrderNum: 4, Content: "Part b: prove correctness", ParentIndex: intPtr(1)},
	}

	roots := BuildOutline(items)
	require.Len(t, roots, 2)

	assert.Equal(t, 1, roots[0].OrderNum)
	assert.Empty(t, roots[0].Children)

	require.Len(t, roots[1].Children, 2)
	assert.Equal(t, "Part a: run Dijkstra by hand", roots[1].Children[0].Title)
	assert.Equal(t, 4, roots[1].Children[1].OrderNum)
}

func TestBuildOutline_ParentResolvesByPositionNotOrderNum(t *testing.T) {
	// Order numbers are deliberately shuffled: parentIndex 0 must point
	// at the first list element regardless of its orderNum.
	items := []core.AssignmentItem{
		{OrderNum: 7, Content: "Bonus question"},
		{OrderNum: 1, Content: "Sub-part of the bonus", ParentIndex: intPtr(0)},
	}

	roots := BuildOutline(items)
	require.Len(t, roots, 1)
	assert.Equal(t, 7, roots[0].OrderNum)
	require.Len(t, roots[0].Children, 1)
	assert.Equal(t, 1, roots[0].Children[0].OrderNum)
}

func TestBuildOutline_UnresolvableParentsBecomeRoots(t *testing.T) {
	items := []core.AssignmentItem{
		{OrderNum: 1, Content: "Out-of-range parent", ParentIndex: intPtr(42)},
		{OrderNum: 2, Content: "Negative parent", ParentIndex: intPtr(-1)},
		{OrderNum: 3, Content: "Self-referential", ParentIndex: intPtr(2)},
	}

	roots := BuildOutline(items)
	assert.Len(t, roots, 3)
}

func TestBuildOutline_ParentCycleFallsBackToRoots(t *testing.T) {
	items := []core.AssignmentItem{
		{OrderNum: 1, Content: "Claims the second is its parent", ParentIndex: intPtr(1)},
		{OrderNum: 2, Content: "Claims the first is its parent", ParentIndex: intPtr(0)},
		{OrderNum: 3, Content: "Hangs off the cycle", ParentIndex: intPtr(0)},
	}

	roots := BuildOutline(items)
	require.Len(t, roots, 2)

	// Both cycle members surface as roots; neither is lost.
	assert.Equal(t, 1, roots[0].OrderNum)
	assert.Equal(t, 2, roots[1].OrderNum)

	// The off-cycle item still attaches to its (now root) parent.
	require.Len(t, roots[0].Children, 1)
	assert.Equal(t, 3, roots[0].Children[0].OrderNum)
}

func TestBuildOutline_TitleTruncation(t *testing.T) {
	long := strings.Repeat("x", 200)
	roots := BuildOutline([]core.AssignmentItem{{OrderNum: 1, Content: long}})

	require.Len(t, roots, 1)
	assert.Len(t, roots[0].Title, 80)
}

func TestBuildOutline_Empty(t *testing.T) {
	assert.Empty(t, BuildOutline(nil))
}
