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


package pipeline

import "sync"

// Stage identifies one phase of a document processing run.
type Stage string

const (
	StageStructure  Stage = "structure"
	StageExtraction Stage = "extraction"
	StageQuality    Stage = "quality"
	StageOutline    Stage = "outline"
	StageEmbedding  Stage = "embedding"
	StageAssignment Stage = "assignment"
)

// ProgressEvent reports progress within one stage plus the weighted
// overall fraction across the whole run.
type ProgressEvent struct {
	Stage     Stage
	Completed int
	Total     int
	Overall   float64
}

// ProgressFunc receives progress events during a pipeline run.
// Callbacks may arrive from multiple goroutines.
type ProgressFunc func(event ProgressEvent)

// progressTracker rolls per-stage progress up into a weighted overall
// fraction. Stages that report no work count as complete once a later
// stage starts reporting; weights should sum to 1.
type progressTracker struct {
	weights   map[Stage]float64
	fractions map[Stage]float64
	onEvent   ProgressFunc
	mu        sync.Mutex
}

func newProgressTracker(weights map[Stage]float64, onEvent ProgressFunc) *progressTracker {
	return &progressTracker{
		weights:   weights,
		fractions: make(map[Stage]float64, len(weights)),
		onEvent:   onEvent,
	}
}

// update records completed/total for a stage and emits an event.
// A total of 0 marks the stage complete.
func (t *progressTracker) update(stage Stage, completed, total int) {
	if t.onEvent == nil {
		return
	}

	t.mu.Lock()
	fraction := 1.0
	if total > 0 {
		fraction = float64(completed) / float64(total)
		if fraction > 1 {
			fraction = 1
		}
	}
	t.fractions[stage] = fraction

	var overall float64
	for stage, weight := range t.weights {
		overall += weight * t.fractions[stage]
	}
	t.mu.Unlock()

	t.onEvent(ProgressEvent{
		Stage:     stage,
		Completed: completed,
		Total:     total,
		Overall:   overall,
	})
}

// complete marks a stage fully done.
func (t *progressTracker) complete(stage Stage) {
	t.update(stage, 1, 1)
}
