package core

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing or database sequences.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Page is a single page of already-extracted plain text.
// Pages are produced by an external PDF-extraction collaborator and are
// input-only: no pipeline stage mutates them.
type Page struct {
	Number int
	Text   string
}

// ContentType labels what kind of academic content a section holds.
type ContentType string

const (
	ContentDefinitions ContentType = "definitions"
	ContentTheorems    ContentType = "theorems"
	ContentExamples    ContentType = "examples"
	ContentExercises   ContentType = "exercises"
	ContentOverview    ContentType = "overview"
	ContentMixed       ContentType = "mixed"
)

// ContentTypes lists the valid section content labels.
var ContentTypes = []ContentType{
	ContentDefinitions,
	ContentTheorems,
	ContentExamples,
	ContentExercises,
	ContentOverview,
	ContentMixed,
}

// SectionInfo describes one titled section of a document.
// Sections returned by the structure analyzer collectively cover
// [1, pageCount] with no gaps (producer-enforced, best effort).
type SectionInfo struct {
	Title         string      `json:"title"`
	StartPage     int         `json:"startPage"`
	EndPage       int         `json:"endPage"`
	ContentType   ContentType `json:"contentType"`
	ParentSection string      `json:"parentSection,omitempty"`
}

// DocumentStructure is the section-level breakdown of a document.
type DocumentStructure struct {
	Subject      string        `json:"subject"`
	DocumentType string        `json:"documentType"`
	Sections     []SectionInfo `json:"sections"`
}

// KnowledgePoint is a discrete, citable unit of academic content
// (definition, theorem, formula, worked example) extracted from a document.
// SourcePages grows monotonically as duplicates across batches merge; it
// never shrinks.
type KnowledgePoint struct {
	Title       string   `json:"title"`
	Definition  string   `json:"definition"`
	KeyFormulas []string `json:"keyFormulas,omitempty"`
	KeyConcepts []string `json:"keyConcepts,omitempty"`
	Examples    []string `json:"examples,omitempty"`
	SourcePages []int    `json:"sourcePages"`
}

// OutlineSection groups knowledge points (by title) under an outline heading.
type OutlineSection struct {
	Title            string   `json:"title"`
	KnowledgePoints  []string `json:"knowledgePoints"`
	BriefDescription string   `json:"briefDescription"`
}

// DocumentOutline is the hierarchical outline of one document.
// Every retained knowledge point's title appears in exactly one section's
// KnowledgePoints list (exact for the local builder, best effort for
// oracle-generated outlines).
type DocumentOutline struct {
	DocumentID           string           `json:"documentId"`
	Title                string           `json:"title"`
	Subject              string           `json:"subject"`
	TotalKnowledgePoints int              `json:"totalKnowledgePoints"`
	Sections             []OutlineSection `json:"sections"`
	Summary              string           `json:"summary"`
}

// CourseTopic is one cross-document topic in a course-level outline.
type CourseTopic struct {
	Title     string   `json:"title"`
	Subtopics []string `json:"subtopics"`
	Documents []string `json:"documents,omitempty"`
}

// CourseOutline merges several document outlines into course-level topics.
type CourseOutline struct {
	CourseID string        `json:"courseId"`
	Title    string        `json:"title"`
	Topics   []CourseTopic `json:"topics"`
	Summary  string        `json:"summary"`
}

// AssignmentItem is one ordered question item extracted from an assignment
// or exam paper. ParentIndex refers to another item's position in the same
// extraction batch (not a stable ID); it is used only to build the
// transient outline tree and is never persisted as a foreign key.
type AssignmentItem struct {
	Title           string   `json:"title"`
	OrderNum        int      `json:"orderNum"`
	Content         string   `json:"content"`
	Options         []string `json:"options,omitempty"`
	ReferenceAnswer string   `json:"referenceAnswer,omitempty"`
	Explanation     string   `json:"explanation,omitempty"`
	Points          int      `json:"points"`
	Type            string   `json:"type"`
	Difficulty      string   `json:"difficulty"`
	ParentIndex     *int     `json:"parentIndex"`
	SourcePages     []int    `json:"sourcePages,omitempty"`
	Warnings        []string `json:"warnings,omitempty"`
}

// AssignmentOutlineItem is a node in the transient assignment outline tree.
type AssignmentOutlineItem struct {
	OrderNum int                      `json:"orderNum"`
	Title    string                   `json:"title"`
	Children []*AssignmentOutlineItem `json:"children"`
}

// ChunkMetadata carries the provenance of a chunk.
type ChunkMetadata struct {
	Page int `json:"page"`
}

// Chunk is an embeddable, searchable unit of document text. A page may
// yield zero or more chunks; Metadata.Page is the page the chunk's first
// token came from.
type Chunk struct {
	Id         ID
	DocumentID string
	Content    string
	Metadata   ChunkMetadata
	Vector     []float32 // Embedding vector for semantic search (populated by the pipeline)
	InsertedAt time.Time
}

// SearchResult is a retrieved chunk with its relevance score.
type SearchResult struct {
	Chunk *Chunk
	Score float32
}

// DocumentStatus tracks the outcome of a pipeline run for a document.
type DocumentStatus string

const (
	StatusProcessing DocumentStatus = "processing"
	StatusReady      DocumentStatus = "ready"
	StatusError      DocumentStatus = "error"
)

// DocumentKind distinguishes the lecture and assignment processing paths.
type DocumentKind string

const (
	KindLecture    DocumentKind = "lecture"
	KindAssignment DocumentKind = "assignment"
)

// Document is the persisted record of one processed document.
type Document struct {
	Id           string
	CourseID     string
	Title        string
	Kind         DocumentKind
	Status       DocumentStatus
	StatusDetail string
	PageCount    int
	InsertedAt   time.Time
	UpdatedAt    time.Time
}
