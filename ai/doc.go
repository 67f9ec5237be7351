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


// Package ai provides abstractions for AI services used in Lectern.
//
// This package defines interfaces for AI operations including text
// generation and embeddings. It follows the dependency inversion
// principle, allowing the pipeline stages to depend on abstractions
// rather than concrete implementations; stages receive a Generator or
// Embedder as an explicit parameter, never a global client.
//
// # Design Principles
//
// The package is designed around three key interfaces:
//
//   - Generator: Produces (often JSON-constrained) text from a prompt
//   - Embedder: Generates vector embeddings from text
//   - Provider: Aggregates AI services for convenient initialization
//
// The generation service is treated as an unreliable oracle. Every caller
// validates its output and has a deterministic fallback; DecodeJSON
// implements the shared parse half of that validate-or-fallback contract.
//
// # Implementation Packages
//
// The ai package includes two implementation sub-packages:
//
//   - ai/openai: Production implementation using OpenAI-compatible APIs
//   - ai/mock: Test doubles for unit testing without external dependencies
//
// # Constructor Return Type Pattern
//
// Public constructors (openai.NewProvider, openai.NewGenerator, etc.)
// return INTERFACE types to enforce abstraction and prevent accidental
// coupling to concrete implementations.
//
//	provider, err := openai.NewProvider(config)  // returns ai.Provider
//
// Test utility constructors (mock.NewMockGenerator, mock.NewMockEmbedder)
// return CONCRETE types to enable test assertions and behavior injection
// via the mock's public fields (GenerateFunc, CallCount, Reset, etc.).
//
// # Usage Example
//
//	config := ai.DefaultConfig()
//	provider, err := openai.NewProvider(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	text, err := provider.Generator().Generate(ctx, prompt, ai.GenerateOptions{JSONMode: true})
//	vectors, err := provider.Embedder().EmbedTexts(ctx, []string{"BST", "Binary Search Tree"})
package ai
