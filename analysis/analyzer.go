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


package analysis

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/lectern/ai"
	"github.com/poiesic/lectern/core"
)

// Config controls structure analysis.
type Config struct {
	// ShortDocumentThreshold is the page count at or below which the
	// analyzer returns a single full-document section without an oracle call.
	ShortDocumentThreshold int

	// PageSummaryLength is how many characters of each page are included
	// in the oracle prompt.
	PageSummaryLength int

	// SegmentSize is the fixed window width of the deterministic fallback
	// segmentation.
	SegmentSize int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		ShortDocumentThreshold: 5,
		PageSummaryLength:      500,
		SegmentSize:            10,
	}
}

// sanitize replaces out-of-range values with defaults.
func (c Config) sanitize() Config {
	def := DefaultConfig()
	if c.ShortDocumentThreshold < 1 {
		c.ShortDocumentThreshold = def.ShortDocumentThreshold
	}
	if c.PageSummaryLength < 1 {
		c.PageSummaryLength = def.PageSummaryLength
	}
	if c.SegmentSize < 1 {
		c.SegmentSize = def.SegmentSize
	}
	return c
}

// Analyzer classifies a document's pages into titled sections.
// It consults the oracle for long documents; every failure mode degrades
// to a deterministic segmentation, so analysis never aborts a pipeline run.
type Analyzer struct {
	generator ai.Generator
	config    Config
	logger    *slog.Logger
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithConfig overrides the default analysis config.
func WithConfig(config Config) Option {
	return func(a *Analyzer) {
		a.config = config.sanitize()
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(a *Analyzer) {
		if logger == nil {
			logger = slog.Default()
		}
		a.logger = logger.With("stage", "analysis")
	}
}

// NewAnalyzer creates a structure analyzer backed by the given oracle.
func NewAnalyzer(generator ai.Generator, opts ...Option) (*Analyzer, error) {
	if generator == nil {
		return nil, ErrGeneratorRequired
	}

	a := &Analyzer{
		generator: generator,
		config:    DefaultConfig(),
		logger:    slog.Default().With("stage", "analysis"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Analyze returns the section-level structure of the document.
// Short documents get a single full-document section. Longer documents go
// through the oracle; any oracle or validation failure falls back to
// fixed-window segmentation. Analyze never returns an error.
func (a *Analyzer) Analyze(ctx context.Context, pages []core.Page) core.DocumentStructure {
	if len(pages) == 0 {
		return core.DocumentStructure{
			Subject:      "Unknown",
			DocumentType: "unknown",
			Sections:     nil,
		}
	}

	if len(pages) <= a.config.ShortDocumentThreshold {
		a.logger.Debug("short document, skipping oracle", "pages", len(pages))
		return core.DocumentStructure{
			Subject:      "Unknown",
			DocumentType: "unknown",
			Sections: []core.SectionInfo{
				{
					Title:       "Full Document",
					StartPage:   pages[0].Number,
					EndPage:     pages[len(pages)-1].Number,
					ContentType: core.ContentMixed,
				},
			},
		}
	}

	structure, err := a.analyzeWithOracle(ctx, pages)
	if err != nil {
		a.logger.Warn("structure analysis failed, using fixed-window fallback",
			"pages", len(pages), "err", err)
		return a.fallbackStructure(pages)
	}
	return structure
}

// analyzeWithOracle asks the oracle for a DocumentStructure and validates it.
func (a *Analyzer) analyzeWithOracle(ctx context.Context, pages []core.Page) (core.DocumentStructure, error) {
	prompt := buildStructurePrompt(pages, a.config.PageSummaryLength)

	raw, err := a.generator.Generate(ctx, prompt, ai.GenerateOptions{JSONMode: true})
	if err != nil {
		return core.DocumentStructure{}, fmt.Errorf("oracle call: %w", err)
	}

	structure, err := ai.DecodeJSON[core.DocumentStructure](raw)
	if err != nil {
		return core.DocumentStructure{}, err
	}

	if err := core.ValidateStructure(&structure); err != nil {
		return core.DocumentStructure{}, err
	}

	a.logger.Debug("oracle structure accepted",
		"subject", structure.Subject, "sections", len(structure.Sections))
	return structure, nil
}

// fallbackStructure partitions pages into fixed windows of SegmentSize pages.
func (a *Analyzer) fallbackStructure(pages []core.Page) core.DocumentStructure {
	var sections []core.SectionInfo
	for start := 0; start < len(pages); start += a.config.SegmentSize {
		end := start + a.config.SegmentSize
		if end > len(pages) {
			end = len(pages)
		}
		sections = append(sections, core.SectionInfo{
			Title:       fmt.Sprintf("Section %d", len(sections)+1),
			StartPage:   pages[start].Number,
			EndPage:     pages[end-1].Number,
			ContentType: core.ContentMixed,
		})
	}

	return core.DocumentStructure{
		Subject:      "Unknown",
		DocumentType: "unknown",
		Sections:     sections,
	}
}
