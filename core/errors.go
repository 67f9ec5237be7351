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

import "errors"

// Domain validation errors
var (
	// ErrInvalidStructure indicates a DocumentStructure failed validation.
	ErrInvalidStructure = errors.New("invalid document structure")

	// ErrInvalidSection indicates a SectionInfo failed validation.
	ErrInvalidSection = errors.New("invalid section")

	// ErrInvalidKnowledgePoint indicates a KnowledgePoint failed validation.
	ErrInvalidKnowledgePoint = errors.New("invalid knowledge point")

	// ErrInvalidOutline indicates a DocumentOutline failed validation.
	ErrInvalidOutline = errors.New("invalid outline")

	// ErrInvalidAssignmentItem indicates an AssignmentItem failed validation.
	ErrInvalidAssignmentItem = errors.New("invalid assignment item")

	// ErrEmptyTitle indicates a required title field is empty.
	ErrEmptyTitle = errors.New("title cannot be empty")

	// ErrEmptyDefinition indicates a knowledge point has no definition text.
	ErrEmptyDefinition = errors.New("definition cannot be empty")

	// ErrEmptySummary indicates an outline has no summary text.
	ErrEmptySummary = errors.New("summary cannot be empty")

	// ErrNoSections indicates a structure or outline has no sections.
	ErrNoSections = errors.New("at least one section required")

	// ErrInvalidPageRange indicates a section's page range is malformed.
	ErrInvalidPageRange = errors.New("invalid page range")

	// ErrInvalidContentType indicates an unknown section content type.
	ErrInvalidContentType = errors.New("invalid content type")

	// ErrInvalidOrderNum indicates an assignment item's order number is not positive.
	ErrInvalidOrderNum = errors.New("order number must be positive")

	// ErrNegativePoints indicates an assignment item has negative points.
	ErrNegativePoints = errors.New("points cannot be negative")
)
