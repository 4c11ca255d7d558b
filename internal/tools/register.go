package tools

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nutrichat/nutrichat/internal/retrieval"
	"github.com/nutrichat/nutrichat/internal/storage"
)

// RecipeRetriever is the semantic search surface tools depend on.
// *retrieval.Retriever implements it; tests substitute a double.
type RecipeRetriever interface {
	Retrieve(ctx context.Context, query string, k int, exclude []string, oversample int) (retrieval.Result, error)
	RerankWithin(ctx context.Context, query string, candidateIDs []int64, k int) ([]int64, error)
}

// Deps carries the shared dependencies tool handlers close over. All tools
// receive their dependencies here; none reach for globals.
type Deps struct {
	Store     *storage.Store
	Retriever RecipeRetriever
	Logger    *slog.Logger
}

// RegisterAll registers the full grounded tool set on the registry. It
// validates the exposed-field allow-list against the live recipes schema
// first, so a drifted migration fails at startup rather than corrupting
// tool output.
func RegisterAll(reg *Registry, deps Deps) error {
	if deps.Store == nil {
		return fmt.Errorf("tools: store is required")
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	columns, err := deps.Store.RecipeColumns()
	if err != nil {
		return fmt.Errorf("reading recipes schema: %w", err)
	}
	if err := validateExposedFields(columns); err != nil {
		return err
	}

	specs := []Spec{
		recipeLookupSpec(deps),
		ingredientSuggesterSpec(deps),
		nutritionAnalyzerSpec(deps),
		mealPlannerSpec(deps),
		shoppingListSpec(deps),
		recipeInstructionsSpec(deps),
		recipeResolverSpec(deps),
	}
	for _, spec := range specs {
		if err := reg.Register(spec); err != nil {
			return err
		}
	}
	return nil
}
