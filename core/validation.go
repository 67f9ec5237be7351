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


package core

import (
	"fmt"
	"slices"
	"strings"
)

// ValidateSection validates a SectionInfo according to domain rules.
//
// Validation rules:
//   - Title must not be empty
//   - StartPage must be >= 1 and <= EndPage
//   - ContentType must be one of the known labels
func ValidateSection(section *SectionInfo) error {
	if section == nil {
		return fmt.Errorf("%w: section is nil", ErrInvalidSection)
	}

	if strings.TrimSpace(section.Title) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidSection, ErrEmptyTitle)
	}

	if section.StartPage < 1 || section.EndPage < section.StartPage {
		return fmt.Errorf("%w: %w: [%d, %d]", ErrInvalidSection, ErrInvalidPageRange,
			section.StartPage, section.EndPage)
	}

	if !slices.Contains(ContentTypes, section.ContentType) {
		return fmt.Errorf("%w: %w: %q", ErrInvalidSection, ErrInvalidContentType, section.ContentType)
	}

	return nil
}

// ValidateStructure validates a DocumentStructure according to domain rules.
//
// Validation rules:
//   - At least one section
//   - Every section passes ValidateSection
//
// NOT validated: gap-free page coverage. Coverage is producer-enforced
// best effort; a structure with gaps is coarser, not invalid.
func ValidateStructure(structure *DocumentStructure) error {
	if structure == nil {
		return fmt.Errorf("%w: structure is nil", ErrInvalidStructure)
	}

	if len(structure.Sections) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidStructure, ErrNoSections)
	}

	for i := range structure.Sections {
		if err := ValidateSection(&structure.Sections[i]); err != nil {
			return fmt.Errorf("%w: section %d: %w", ErrInvalidStructure, i, err)
		}
	}

	return nil
}

// ValidateKnowledgePoint validates a KnowledgePoint according to domain rules.
//
// Validation rules:
//   - Title must not be empty
//   - Definition must not be empty
//
// NOT validated (populated by the pipeline):
//   - SourcePages (may be empty for a single-pass extraction; the
//     extractor fills page provenance from batch boundaries)
func ValidateKnowledgePoint(point *KnowledgePoint) error {
	if point == nil {
		return fmt.Errorf("%w: point is nil", ErrInvalidKnowledgePoint)
	}

	if strings.TrimSpace(point.Title) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidKnowledgePoint, ErrEmptyTitle)
	}

	if strings.TrimSpace(point.Definition) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidKnowledgePoint, ErrEmptyDefinition)
	}

	return nil
}

// ValidateOutline validates a DocumentOutline according to domain rules.
//
// Validation rules:
//   - Title and Summary must not be empty
//   - At least one section, each with a non-empty title
//
// NOT validated: every knowledge point appearing in exactly one section.
// The local builder guarantees it by construction; oracle-generated
// outlines are accepted as long as they are structurally sound.
func ValidateOutline(outline *DocumentOutline) error {
	if outline == nil {
		return fmt.Errorf("%w: outline is nil", ErrInvalidOutline)
	}

	if strings.TrimSpace(outline.Title) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidOutline, ErrEmptyTitle)
	}

	if strings.TrimSpace(outline.Summary) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidOutline, ErrEmptySummary)
	}

	if len(outline.Sections) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidOutline, ErrNoSections)
	}

	for i, section := range outline.Sections {
		if strings.TrimSpace(section.Title) == "" {
			return fmt.Errorf("%w: section %d: %w", ErrInvalidOutline, i, ErrEmptyTitle)
		}
	}

	return nil
}

// ValidateAssignmentItem validates an AssignmentItem according to domain rules.
//
// Validation rules:
//   - OrderNum must be positive
//   - Points must not be negative
//
// NOT validated: content quality. Empty content, missing answers, and
// similar defects are annotated as warnings by the assignment validator
// rather than rejected here.
func ValidateAssignmentItem(item *AssignmentItem) error {
	if item == nil {
		return fmt.Errorf("%w: item is nil", ErrInvalidAssignmentItem)
	}

	if item.OrderNum < 1 {
		return fmt.Errorf("%w: %w: %d", ErrInvalidAssignmentItem, ErrInvalidOrderNum, item.OrderNum)
	}

	if item.Points < 0 {
		return fmt.Errorf("%w: %w: %d", ErrInvalidAssignmentItem, ErrNegativePoints, item.Points)
	}

	return nil
}
