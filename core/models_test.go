package core

import (
	"testing"
)

func TestIDFromContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "same content produces same ID", content: "test content"},
		{name: "empty string", content: ""},
		{name: "long content", content: "The pumping lemma states that for every regular language there exists a pumping length"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id1 := IDFromContent(tt.content)
			id2 := IDFromContent(tt.content)

			if id1 != id2 {
				t.Errorf("IDFromContent() produced different IDs for same content: %d vs %d", id1, id2)
			}
		})
	}
}

func TestIDFromContent_Different(t *testing.T) {
	id1 := IDFromContent("content1")
	id2 := IDFromContent("content2")

	if id1 == id2 {
		t.Errorf("IDFromContent() produced same ID for different content")
	}
}

func TestChunkRoundTrip(t *testing.T) {
	chunk := Chunk{
		Id:         IDFromContent("chunk text"),
		DocumentID: "doc-1",
		Content:    "chunk text",
		Metadata:   ChunkMetadata{Page: 7},
		Vector:     []float32{0.25, -0.5, 1.0},
	}

	buf := make([]byte, ChunkMUS.Size(chunk))
	ChunkMUS.Marshal(chunk, buf)

	got, _, err := ChunkMUS.Unmarshal(buf)
	if err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if got.DocumentID != chunk.DocumentID || got.Content != chunk.Content {
		t.Errorf("round trip mismatch: got %+v", got)
	}
	if got.Metadata.Page != 7 {
		t.Errorf("Metadata.Page = %d, want 7", got.Metadata.Page)
	}
	if len(got.Vector) != 3 {
		t.Errorf("Vector length = %d, want 3", len(got.Vector))
	}
}

func TestKnowledgePointRoundTrip(t *testing.T) {
	point := KnowledgePoint{
		Title:       "Binary Search Tree",
		Definition:  "A binary tree where every left descendant is smaller than the node",
		KeyFormulas: []string{"h = O(log n)"},
		KeyConcepts: []string{"ordering invariant"},
		SourcePages: []int{3, 4, 5},
	}

	buf := make([]byte, KnowledgePointMUS.Size(point))
	KnowledgePointMUS.Marshal(point, buf)

	got, _, err := KnowledgePointMUS.Unmarshal(buf)
	if err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if got.Title != point.Title || got.Definition != point.Definition {
		t.Errorf("round trip mismatch: got %+v", got)
	}
	if len(got.SourcePages) != 3 || got.SourcePages[2] != 5 {
		t.Errorf("SourcePages = %v, want [3 4 5]", got.SourcePages)
	}
}

func TestAssignmentItemRoundTrip_ParentIndex(t *testing.T) {
	parent := 2
	item := AssignmentItem{
		Title:       "Question 3a",
		OrderNum:    4,
		Content:     "Prove the claim from part 3.",
		Points:      10,
		Type:        "proof",
		Difficulty:  "hard",
		ParentIndex: &parent,
		Warnings:    []string{"Missing reference answer"},
	}

	buf := make([]byte, AssignmentItemMUS.Size(item))
	AssignmentItemMUS.Marshal(item, buf)

	got, _, err := AssignmentItemMUS.Unmarshal(buf)
	if err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if got.ParentIndex == nil || *got.ParentIndex != 2 {
		t.Errorf("ParentIndex = %v, want 2", got.ParentIndex)
	}

	item.ParentIndex = nil
	buf = make([]byte, AssignmentItemMUS.Size(item))
	AssignmentItemMUS.Marshal(item, buf)
	got, _, err = AssignmentItemMUS.Unmarshal(buf)
	if err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if got.ParentIndex != nil {
		t.Errorf("ParentIndex = %v, want nil", got.ParentIndex)
	}
}
