package port

import "context"

// GenerateOptions bounds and shapes one completion request.
type GenerateOptions struct {
	MaxTokens   int // mapped to Ollama num_predict
	Temperature float64
	NumCtx      int
	TopK        int
	TopP        float64
}

// AIProvider abstracts the local model backend for embeddings and completions.
// Implementations can target Ollama or any compatible API. The embedding model
// identity is recorded alongside persisted indexes, so EmbedModelName must be
// stable for the lifetime of an index.
type AIProvider interface {
	// ModelName returns the identifier of the generation model.
	ModelName() string

	// EmbedModelName returns the identifier of the embedding model.
	EmbedModelName() string

	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts in one call.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Generate produces a completion for the assembled prompt.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
}
