package mock

import (
	"github.com/poiesic/lectern/ai"
)

// MockProvider is a test double for ai.Provider aggregating mock services.
type MockProvider struct {
	generator *MockGenerator
	embedder  *MockEmbedder
}

// NewMockProvider creates a provider backed by default mock services.
//
// Returns ai.Provider since it is the primary entry point; use
// GetMockGenerator/GetMockEmbedder to reach the concrete types for
// assertions and behavior injection.
func NewMockProvider() ai.Provider {
	return &MockProvider{
		generator: NewMockGenerator(),
		embedder:  NewMockEmbedder(),
	}
}

// Generator returns the mock text-generation service.
func (p *MockProvider) Generator() ai.Generator {
	return p.generator
}

// Embedder returns the mock embedding service.
func (p *MockProvider) Embedder() ai.Embedder {
	return p.embedder
}

// GetMockGenerator returns the concrete mock generator for test assertions.
func (p *MockProvider) GetMockGenerator() *MockGenerator {
	return p.generator
}

// GetMockEmbedder returns the concrete mock embedder for test assertions.
func (p *MockProvider) GetMockEmbedder() *MockEmbedder {
	return p.embedder
}

// Close releases resources. No-op for mocks.
func (p *MockProvider) Close() error {
	return nil
}
