package engine

import (
	"context"
	"fmt"
	"io"
)

// EnsureReady checks that the embedding backend is running and the embed
// model is available. The recipe index is built offline against a specific
// model, so a missing model is a configuration error rather than something
// to pull automatically.
func EnsureReady(ctx context.Context, e Engine, embedModel string, w io.Writer) error {
	if !e.IsRunning(ctx) {
		return fmt.Errorf("embedding backend is not running. Start it with: ollama serve")
	}

	if !e.HasModel(ctx, embedModel) {
		return fmt.Errorf("embed model %q is not available locally. Pull it with: ollama pull %s", embedModel, embedModel)
	}
	fmt.Fprintf(w, "model %s: ready\n", embedModel)

	return nil
}
