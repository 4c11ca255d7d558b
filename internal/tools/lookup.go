package tools

import (
	"context"
	"strings"
)

// defaultOversample widens index recall before grounding so that store-side
// filtering still leaves enough rows to fill k.
const defaultOversample = 3

func recipeLookupSpec(deps Deps) Spec {
	return Spec{
		Name:        "recipe_lookup",
		Description: "Find recipes in the dataset by semantic similarity to a free-text query. Returns the only recipe names and IDs that may be presented to the user.",
		Kind:        KindRetrieval,
		Handler: func(ctx context.Context, args map[string]any) (any, error) {
			query := strings.TrimSpace(stringArg(args, "query"))
			k := intArg(args, "k", 5, 1, 20)

			if query == "" {
				return map[string]any{
					"recipe_ids":  []int64{},
					"recipes":     []map[string]any{},
					"source":      "dataset",
					"assumptions": []string{"No query was provided, so no recipes were retrieved."},
				}, nil
			}

			res, err := deps.Retriever.Retrieve(ctx, query, k, nil, defaultOversample)
			if err != nil {
				deps.Logger.Warn("recipe lookup failed", "query", query, "error", err)
				return map[string]any{
					"status":      string(StatusFailure),
					"recipe_ids":  []int64{},
					"recipes":     []map[string]any{},
					"source":      "dataset",
					"assumptions": []string{"Semantic retrieval failed, so no recipes were returned."},
				}, nil
			}

			return map[string]any{
				"recipe_ids": recipeIDs(res.Recipes),
				"recipes":    recipeRecords(res.Recipes),
				"source":     "dataset",
			}, nil
		},
	}
}
