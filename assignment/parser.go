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


// Package assignment parses assignment and exam papers into ordered
// question items. Extraction is a single oracle call; everything after it
// (validation warnings, the question tree) is local and deterministic.
package assignment

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/poiesic/lectern/ai"
	"github.com/poiesic/lectern/core"
)

// ParseResult is the full output of parsing one assignment document.
type ParseResult struct {
	Items    []core.AssignmentItem
	Outline  []*core.AssignmentOutlineItem
	Warnings []string
}

// Parser extracts question items from assignment pages.
type Parser struct {
	generator ai.Generator
	logger    *slog.Logger
}

// Option configures a Parser.
type Option func(*Parser)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Parser) {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
	}
}

// NewParser creates an assignment parser backed by the given oracle.
func NewParser(generator ai.Generator, opts ...Option) (*Parser, error) {
	if generator == nil {
		return nil, ErrGeneratorRequired
	}

	parser := &Parser{
		generator: generator,
		logger:    slog.Default().With("component", "assignment"),
	}
	for _, opt := range opts {
		opt(parser)
	}
	return parser, nil
}

// Parse extracts, annotates and organizes the question items of one
// document. Invalid oracle elements are dropped; an oracle failure or a
// fully unparseable response is an error, since an assignment document
// with no items has no useful degraded form.
func (p *Parser) Parse(ctx context.Context, pages []core.Page) (*ParseResult, error) {
	if len(pages) == 0 {
		return nil, fmt.Errorf("%w: document has no pages", ErrNoItems)
	}

	prompt := buildParsePrompt(pages)
	response, err := p.generator.Generate(ctx, prompt, ai.GenerateOptions{
		JSONMode:    true,
		Temperature: 0.1,
	})
	if err != nil {
		return nil, fmt.Errorf("assignment extraction: %w", err)
	}

	raw, err := ai.DecodeJSON[[]json.RawMessage](response)
	if err != nil {
		return nil, fmt.Errorf("assignment extraction: %w", err)
	}

	var items []core.AssignmentItem
	for _, element := range raw {
		var item core.AssignmentItem
		if err := json.Unmarshal(element, &item); err != nil {
			p.logger.Debug("dropping unparseable assignment item", "err", err)
			continue
		}
		if err := core.ValidateAssignmentItem(&item); err != nil {
			p.logger.Debug("dropping invalid assignment item", "title", item.Title, "err", err)
			continue
		}
		items = append(items, item)
	}

	if len(items) == 0 {
		return nil, ErrNoItems
	}

	items = AnnotateItems(items)

	result := &ParseResult{
		Items:   items,
		Outline: BuildOutline(items),
	}
	for _, item := range items {
		for _, warning := range item.Warnings {
			result.Warnings = append(result.Warnings, fmt.Sprintf("Question %d: %s", item.OrderNum, warning))
		}
	}

	p.logger.Info("assignment parsed",
		"items", len(items), "roots", len(result.Outline), "warnings", len(result.Warnings))
	return result, nil
}
