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


// Package outline turns gated knowledge points into hierarchical study
// outlines. Small point sets are organized locally and deterministically;
// larger sets go through the oracle, with the local builder as the
// fallback for any oracle or schema failure. Outline generation never
// returns an error.
package outline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/lectern/ai"
	"github.com/poiesic/lectern/core"
)

// fallbackSectionTitle collects points that intersect no structure section.
const fallbackSectionTitle = "Additional Topics"

// Config controls outline generation.
type Config struct {
	// LocalOutlineThreshold is the point count at or below which the
	// outline is built locally without an oracle call.
	LocalOutlineThreshold int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		LocalOutlineThreshold: 10,
	}
}

// sanitize replaces out-of-range values with defaults.
func (c Config) sanitize() Config {
	if c.LocalOutlineThreshold < 1 {
		c.LocalOutlineThreshold = DefaultConfig().LocalOutlineThreshold
	}
	return c
}

// Generator produces document and course outlines.
type Generator struct {
	generator ai.Generator
	config    Config
	logger    *slog.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithConfig overrides the default outline config.
func WithConfig(config Config) Option {
	return func(g *Generator) {
		g.config = config.sanitize()
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) {
		if logger == nil {
			logger = slog.Default()
		}
		g.logger = logger
	}
}

// NewGenerator creates an outline generator backed by the given oracle.
func NewGenerator(generator ai.Generator, opts ...Option) (*Generator, error) {
	if generator == nil {
		return nil, ErrGeneratorRequired
	}

	gen := &Generator{
		generator: generator,
		config:    DefaultConfig(),
		logger:    slog.Default().With("component", "outline"),
	}
	for _, opt := range opts {
		opt(gen)
	}
	return gen, nil
}

// GenerateOutline builds the outline for one document. Point sets at or
// below the local threshold never touch the oracle; above it, the oracle's
// response is schema-validated and any failure degrades to the local
// builder.
func (g *Generator) GenerateOutline(ctx context.Context, documentID string, structure *core.DocumentStructure, points []core.KnowledgePoint) core.DocumentOutline {
	if len(points) <= g.config.LocalOutlineThreshold {
		g.logger.Debug("building outline locally", "points", len(points))
		return g.buildLocalOutline(documentID, structure, points)
	}

	prompt := buildDocumentOutlinePrompt(structure, points)
	response, err := g.generator.Generate(ctx, prompt, ai.GenerateOptions{
		JSONMode:    true,
		Temperature: 0.2,
	})
	if err != nil {
		g.logger.Warn("outline oracle call failed, using local builder", "err", err)
		return g.buildLocalOutline(documentID, structure, points)
	}

	outline, err := ai.DecodeJSON[core.DocumentOutline](response)
	if err != nil {
		g.logger.Warn("outline response unparsable, using local builder", "err", err)
		return g.buildLocalOutline(documentID, structure, points)
	}

	outline.DocumentID = documentID
	outline.TotalKnowledgePoints = len(points)
	if outline.Subject == "" && structure != nil {
		outline.Subject = structure.Subject
	}

	if err := core.ValidateOutline(&outline); err != nil {
		g.logger.Warn("outline failed validation, using local builder", "err", err)
		return g.buildLocalOutline(documentID, structure, points)
	}

	return outline
}

// buildLocalOutline walks the structure's non-overview sections in order
// and attaches each point to the first section whose page range intersects
// the point's source pages. Points that match no section land in a
// trailing catch-all section, so every point appears exactly once.
func (g *Generator) buildLocalOutline(documentID string, structure *core.DocumentStructure, points []core.KnowledgePoint) core.DocumentOutline {
	outline := core.DocumentOutline{
		DocumentID:           documentID,
		TotalKnowledgePoints: len(points),
	}

	var sections []core.SectionInfo
	if structure != nil {
		outline.Subject = structure.Subject
		for _, section := range structure.Sections {
			// Overview and table-of-contents sections carry no
			// substantive material of their own.
			if section.ContentType == core.ContentOverview {
				continue
			}
			sections = append(sections, section)
		}
	}

	if len(sections) > 0 {
		outline.Title = sections[0].Title
	} else {
		outline.Title = "Document Outline"
	}

	assigned := make([]bool, len(points))
	for _, section := range sections {
		var titles []string
		for i, point := range points {
			if assigned[i] {
				continue
			}
			if pagesIntersect(point.SourcePages, section.StartPage, section.EndPage) {
				assigned[i] = true
				titles = append(titles, point.Title)
			}
		}
		if len(titles) == 0 {
			continue
		}
		outline.Sections = append(outline.Sections, core.OutlineSection{
			Title:            section.Title,
			KnowledgePoints:  titles,
			BriefDescription: fmt.Sprintf("Covers pages %d-%d", section.StartPage, section.EndPage),
		})
	}

	var orphans []string
	for i, point := range points {
		if !assigned[i] {
			orphans = append(orphans, point.Title)
		}
	}
	if len(orphans) > 0 {
		outline.Sections = append(outline.Sections, core.OutlineSection{
			Title:            fallbackSectionTitle,
			KnowledgePoints:  orphans,
			BriefDescription: "Points not tied to a specific section",
		})
	}

	// An outline always has at least one section, even for an empty
	// point set.
	if len(outline.Sections) == 0 {
		outline.Sections = append(outline.Sections, core.OutlineSection{
			Title:            "Contents",
			KnowledgePoints:  []string{},
			BriefDescription: "No knowledge points were extracted",
		})
	}

	outline.Summary = fmt.Sprintf("Covers %d knowledge points across %d sections.",
		len(points), len(outline.Sections))
	return outline
}

// GenerateCourseOutline merges several document outlines into
// cross-document topics. Shares the document outline's fail-open design:
// any oracle or schema failure yields one topic per document.
func (g *Generator) GenerateCourseOutline(ctx context.Context, courseID string, outlines []core.DocumentOutline) core.CourseOutline {
	if len(outlines) == 0 {
		return core.CourseOutline{
			CourseID: courseID,
			Title:    "Course Outline",
			Summary:  "No document outlines available yet.",
		}
	}

	prompt := buildCourseOutlinePrompt(outlines)
	response, err := g.generator.Generate(ctx, prompt, ai.GenerateOptions{
		JSONMode:    true,
		Temperature: 0.2,
	})
	if err != nil {
		g.logger.Warn("course outline oracle call failed, using local builder", "err", err)
		return g.buildLocalCourseOutline(courseID, outlines)
	}

	course, err := ai.DecodeJSON[core.CourseOutline](response)
	if err != nil {
		g.logger.Warn("course outline response unparsable, using local builder", "err", err)
		return g.buildLocalCourseOutline(courseID, outlines)
	}

	course.CourseID = courseID
	if course.Title == "" || course.Summary == "" || len(course.Topics) == 0 {
		g.logger.Warn("course outline failed validation, using local builder")
		return g.buildLocalCourseOutline(courseID, outlines)
	}

	return course
}

// buildLocalCourseOutline makes one topic per document, with the
// document's section titles as subtopics.
func (g *Generator) buildLocalCourseOutline(courseID string, outlines []core.DocumentOutline) core.CourseOutline {
	course := core.CourseOutline{
		CourseID: courseID,
		Title:    "Course Outline",
		Summary:  fmt.Sprintf("Covers %d documents.", len(outlines)),
	}
	for _, outline := range outlines {
		topic := core.CourseTopic{
			Title:     outline.Title,
			Documents: []string{outline.DocumentID},
		}
		for _, section := range outline.Sections {
			topic.Subtopics = append(topic.Subtopics, section.Title)
		}
		course.Topics = append(course.Topics, topic)
	}
	return course
}

// pagesIntersect reports whether any page falls inside [start, end].
func pagesIntersect(pages []int, start, end int) bool {
	for _, p := range pages {
		if p >= start && p <= end {
			return true
		}
	}
	return false
}
