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

	"github.com/poiesic/lectern/core"
)

// outlineTitleLength caps a node title at this many characters of content.
const outlineTitleLength = 80

// BuildOutline assembles the question tree by resolving each item's
// ParentIndex against positions in the list itself (not order numbers).
// Items whose parent is nil, out of range, self-referential, or part of
// a parent cycle become roots.
func BuildOutline(items []core.AssignmentItem) []*core.AssignmentOutlineItem {
	nodes := make([]*core.AssignmentOutlineItem, len(items))
	for i, item := range items {
		nodes[i] = &core.AssignmentOutlineItem{
			OrderNum: item.OrderNum,
			Title:    outlineTitle(item.Content),
		}
	}

	var roots []*core.AssignmentOutlineItem
	for i, item := range items {
		parent := item.ParentIndex
		if parent == nil || *parent < 0 || *parent >= len(items) || *parent == i || inParentCycle(items, i) {
			roots = append(roots, nodes[i])
			continue
		}
		nodes[*parent].Children = append(nodes[*parent].Children, nodes[i])
	}
	return roots
}

// inParentCycle reports whether following parent links from item i loops
// back to i. Cycle members are promoted to roots so no node is orphaned;
// items hanging off a cycle still attach to their (now root) parent.
func inParentCycle(items []core.AssignmentItem, i int) bool {
	j := i
	for steps := 0; steps <= len(items); steps++ {
		parent := items[j].ParentIndex
		if parent == nil || *parent < 0 || *parent >= len(items) || *parent == j {
			return false
		}
		j = *parent
		if j == i {
			return true
		}
	}
	return false
}

func outlineTitle(content string) string {
	content = strings.TrimSpace(content)
	runes := []rune(content)
	if len(runes) <= outlineTitleLength {
		return content
	}
	return string(runes[:outlineTitleLength])
}
