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


package extraction

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/poiesic/lectern/ai"
	"github.com/poiesic/lectern/core"
)

// Config controls knowledge-point extraction.
type Config struct {
	// SinglePassMaxPages is the page count at or below which the whole
	// document is extracted in one oracle call.
	SinglePassMaxPages int

	// BatchPages is the batch width for longer documents.
	BatchPages int

	// BatchOverlap is how many pages consecutive batches share.
	BatchOverlap int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		SinglePassMaxPages: 50,
		BatchPages:         30,
		BatchOverlap:       3,
	}
}

// sanitize replaces out-of-range values with defaults.
func (c Config) sanitize() Config {
	def := DefaultConfig()
	if c.SinglePassMaxPages < 1 {
		c.SinglePassMaxPages = def.SinglePassMaxPages
	}
	if c.BatchPages < 1 {
		c.BatchPages = def.BatchPages
	}
	if c.BatchOverlap < 0 || c.BatchOverlap >= c.BatchPages {
		c.BatchOverlap = def.BatchOverlap
		if c.BatchOverlap >= c.BatchPages {
			c.BatchOverlap = 0
		}
	}
	return c
}

// ProgressFunc reports batch completion as (completedBatches, totalBatches).
type ProgressFunc func(completed, total int)

// Extractor pulls discrete, citable knowledge points out of page batches.
type Extractor struct {
	generator ai.Generator
	config    Config
	logger    *slog.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithConfig overrides the default extraction config.
func WithConfig(config Config) Option {
	return func(e *Extractor) {
		e.config = config.sanitize()
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger.With("stage", "extraction")
	}
}

// NewExtractor creates a knowledge-point extractor backed by the given oracle.
func NewExtractor(generator ai.Generator, opts ...Option) (*Extractor, error) {
	if generator == nil {
		return nil, ErrGeneratorRequired
	}

	e := &Extractor{
		generator: generator,
		config:    DefaultConfig(),
		logger:    slog.Default().With("stage", "extraction"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// batch is one contiguous page window submitted to the oracle.
type batch struct {
	pages []core.Page
}

// planBatches splits pages into overlapping windows. A short document is a
// single batch. The final window absorbs a tail no larger than the overlap
// so the last few pages don't get a batch of their own.
func (e *Extractor) planBatches(pages []core.Page) []batch {
	if len(pages) <= e.config.SinglePassMaxPages {
		return []batch{{pages: pages}}
	}

	step := e.config.BatchPages - e.config.BatchOverlap
	var batches []batch
	for start := 0; start < len(pages); start += step {
		end := start + e.config.BatchPages
		if end > len(pages) || len(pages)-end <= e.config.BatchOverlap {
			end = len(pages)
		}
		batches = append(batches, batch{pages: pages[start:end]})
		if end == len(pages) {
			break
		}
	}
	return batches
}

// Extract pulls knowledge points out of the document.
//
// Behavior:
//   - Documents up to SinglePassMaxPages are extracted in one oracle call.
//   - Longer documents run as sequential overlapping batches; onProgress
//     (if non-nil) receives (completedBatches, totalBatches) after each.
//   - Cancellation is checked at batch boundaries: once ctx is done,
//     Extract returns the points accumulated so far with a nil error.
//   - A failure of the first batch propagates, since it usually means the
//     document is unparseable or the oracle is misconfigured. Later batch
//     failures are logged and skipped so earlier results are not lost.
//
// The returned points are deduplicated by normalized title: an earlier
// batch's record is the base, later collisions contribute the longer
// definition and the union of source pages.
func (e *Extractor) Extract(ctx context.Context, pages []core.Page, onProgress ProgressFunc) ([]core.KnowledgePoint, error) {
	if len(pages) == 0 {
		return nil, nil
	}

	batches := e.planBatches(pages)
	e.logger.Info("starting extraction", "pages", len(pages), "batches", len(batches))

	var collected []core.KnowledgePoint
	for i, b := range batches {
		select {
		case <-ctx.Done():
			e.logger.Warn("extraction cancelled, returning partial results",
				"completedBatches", i, "totalBatches", len(batches), "points", len(collected))
			return MergeByTitle(collected), nil
		default:
		}

		points, err := e.extractBatch(ctx, b)
		if err != nil {
			if i == 0 {
				// A first-batch failure usually indicates a systemic
				// problem (bad credentials, malformed document) that the
				// caller must see.
				return nil, fmt.Errorf("first extraction batch: %w", err)
			}
			e.logger.Error("extraction batch failed, skipping",
				"batch", i+1, "totalBatches", len(batches), "err", err)
			continue
		}

		collected = append(collected, points...)
		if onProgress != nil {
			onProgress(i+1, len(batches))
		}
	}

	merged := MergeByTitle(collected)
	e.logger.Info("extraction complete", "raw", len(collected), "merged", len(merged))
	return merged, nil
}

// extractBatch runs one oracle call over a page window and returns the
// schema-valid points. Elements that fail to decode or validate are
// dropped individually instead of failing the batch.
func (e *Extractor) extractBatch(ctx context.Context, b batch) ([]core.KnowledgePoint, error) {
	prompt := buildExtractionPrompt(b.pages)

	raw, err := e.generator.Generate(ctx, prompt, ai.GenerateOptions{JSONMode: true})
	if err != nil {
		return nil, err
	}

	elements, err := ai.DecodeJSON[[]json.RawMessage](raw)
	if err != nil {
		return nil, err
	}

	points := make([]core.KnowledgePoint, 0, len(elements))
	for i, element := range elements {
		var point core.KnowledgePoint
		if err := json.Unmarshal(element, &point); err != nil {
			e.logger.Debug("dropping malformed knowledge point", "index", i, "err", err)
			continue
		}
		if err := core.ValidateKnowledgePoint(&point); err != nil {
			e.logger.Debug("dropping invalid knowledge point", "index", i, "err", err)
			continue
		}
		clampSourcePages(&point, b.pages)
		points = append(points, point)
	}
	return points, nil
}

// clampSourcePages drops cited pages outside the batch window (the oracle
// occasionally hallucinates page numbers) and fills an empty citation list
// with the batch's page range start.
func clampSourcePages(point *core.KnowledgePoint, pages []core.Page) {
	if len(pages) == 0 {
		return
	}
	first, last := pages[0].Number, pages[len(pages)-1].Number

	kept := point.SourcePages[:0]
	for _, p := range point.SourcePages {
		if p >= first && p <= last {
			kept = append(kept, p)
		}
	}
	if len(kept) == 0 {
		kept = append(kept, first)
	}
	point.SourcePages = kept
}
