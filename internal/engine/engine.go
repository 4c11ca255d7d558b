package engine

import "context"

// Engine abstracts the embedding backend (Ollama or any server speaking the
// same API). The retriever depends on this interface instead of a concrete
// client so tests can substitute a double.
type Engine interface {
	// Embed returns the embedding vector for the given text using the
	// specified model.
	Embed(ctx context.Context, model string, text string) ([]float32, error)

	// IsRunning reports whether the inference backend is reachable.
	IsRunning(ctx context.Context) bool

	// ListModels returns the names of all locally available models.
	ListModels(ctx context.Context) ([]string, error)

	// HasModel reports whether the given model name is available locally.
	HasModel(ctx context.Context, name string) bool
}
