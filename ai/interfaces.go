package ai

import "context"

// GenerateOptions controls a single text-generation call.
type GenerateOptions struct {
	// JSONMode constrains the model to emit valid JSON.
	JSONMode bool

	// Temperature controls sampling randomness. 0 is deterministic-ish
	// and is what the pipeline stages use for structured extraction.
	Temperature float64
}

// Generator produces text from a prompt using an external model service.
// The service is treated as an unreliable oracle: callers must validate
// the output and route any failure to their own fallback.
// Implementations must be thread-safe for concurrent use.
type Generator interface {
	// Generate runs a single completion for the prompt.
	// Returns the raw response text; callers parse and validate it.
	// Returns an error on transport failure, timeout, or rate limiting.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
}

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// The returned vector represents the semantic meaning of the text.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// Batch processing is more efficient than calling EmbedText multiple times.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Provider aggregates AI services for convenient initialization and lifecycle management.
// A provider creates and manages Generator and Embedder instances,
// ensuring they share configuration and resources appropriately.
type Provider interface {
	// Generator returns the text-generation service.
	// The returned Generator is safe for concurrent use.
	Generator() Generator

	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
