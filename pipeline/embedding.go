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

import (
	"context"
	"sync"

	"github.com/poiesic/lectern/chunker"
	"github.com/poiesic/lectern/core"
	"github.com/poiesic/lectern/quality"
)

// embedAndStoreChunks splits pages into chunks, embeds them in fixed-size
// groups on the worker pool, and persists the result. An embedding failure
// after retries leaves the group's chunks unembedded rather than failing
// the run; those chunks still serve keyword search.
func (p *Pipeline) embedAndStoreChunks(ctx context.Context, documentID string, pages []core.Page, tracker *progressTracker) error {
	chunks := chunker.ChunkPages(pages, p.chunkerConfig)
	for i := range chunks {
		chunks[i].DocumentID = documentID
	}
	if len(chunks) == 0 {
		tracker.complete(StageEmbedding)
		return nil
	}

	groups := make([][]core.Chunk, 0, (len(chunks)+embedGroupSize-1)/embedGroupSize)
	for start := 0; start < len(chunks); start += embedGroupSize {
		end := start + embedGroupSize
		if end > len(chunks) {
			end = len(chunks)
		}
		groups = append(groups, chunks[start:end])
	}

	var wg sync.WaitGroup
	var completed int
	var mu sync.Mutex

	for _, group := range groups {
		group := group
		wg.Add(1)
		err := p.embedPool.Submit(func() {
			defer wg.Done()
			p.embedGroup(ctx, group)

			mu.Lock()
			completed++
			done := completed
			mu.Unlock()
			tracker.update(StageEmbedding, done, len(groups))
		})
		if err != nil {
			// Pool rejected the task (released or overloaded); embed inline.
			p.embedGroup(ctx, group)
			wg.Done()
		}
	}
	wg.Wait()

	stored := make([]*core.Chunk, len(chunks))
	for i := range chunks {
		stored[i] = &chunks[i]
	}
	_, err := p.chunks.AddChunks(ctx, stored...)
	if err != nil {
		return err
	}

	tracker.complete(StageEmbedding)
	return nil
}

// embedGroup embeds one group of chunks with retries, storing normalized
// vectors so similarity search can use plain dot products.
func (p *Pipeline) embedGroup(ctx context.Context, group []core.Chunk) {
	texts := make([]string, len(group))
	for i := range group {
		texts[i] = group[i].Content
	}

	var vectors [][]float32
	err := RetryWithBackoff(ctx, func() error {
		var embedErr error
		vectors, embedErr = p.embedder.EmbedTexts(ctx, texts)
		return embedErr
	}, embedMaxAttempts, embedBaseDelay)
	if err != nil {
		p.logger.Warn("embedding group failed, storing chunks without vectors",
			"chunks", len(group), "err", err)
		return
	}
	if len(vectors) != len(group) {
		p.logger.Warn("embedding count mismatch, storing chunks without vectors",
			"want", len(group), "got", len(vectors))
		return
	}

	for i := range group {
		group[i].Vector = quality.NormalizeVector(vectors[i])
	}
}
