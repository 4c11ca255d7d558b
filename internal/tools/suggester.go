package tools

import (
	"context"
	"strings"

	"github.com/nutrichat/nutrichat/internal/storage"
)

func ingredientSuggesterSpec(deps Deps) Spec {
	return Spec{
		Name:        "ingredient_suggester",
		Description: "Suggest recipes that use the provided ingredients, optionally reranked by semantic relevance. Falls back from exact ingredient matching to partial matching.",
		Kind:        KindRetrieval,
		Handler: func(ctx context.Context, args map[string]any) (any, error) {
			ingredients := cleanIngredients(stringSliceArg(args, "ingredients"))
			k := intArg(args, "k", 5, 1, 20)
			rerank := boolArg(args, "semantic_rerank", true)

			if len(ingredients) == 0 {
				return map[string]any{
					"recipe_ids":  []int64{},
					"recipes":     []map[string]any{},
					"match_mode":  "none",
					"source":      "dataset",
					"assumptions": []string{"No ingredients were provided, so no ingredient-based filtering was applied."},
				}, nil
			}

			assumptions := []string{}
			matchMode := "strict"

			candidates, err := deps.Store.RecipesWithAllIngredients(ctx, ingredients)
			if err != nil {
				return suggesterFailure("Exact ingredient matching failed, so no recipes were returned."), nil
			}

			if len(candidates) == 0 {
				matchMode = "relaxed"
				minMatches := len(ingredients) - 1
				if minMatches < 1 {
					minMatches = 1
				}
				candidates, err = deps.Store.RecipesWithPartialIngredients(ctx, ingredients, minMatches)
				if err != nil {
					return suggesterFailure("Relaxed ingredient matching failed, so no recipes were returned."), nil
				}
				if len(candidates) == 0 {
					return map[string]any{
						"recipe_ids":  []int64{},
						"recipes":     []map[string]any{},
						"match_mode":  matchMode,
						"source":      "dataset",
						"assumptions": []string{"No recipes matched the provided ingredients, even with relaxed matching."},
					}, nil
				}
				assumptions = append(assumptions, "Recipes match most, but not all, provided ingredients.")
			}

			if rerank && len(candidates) > 1 {
				ranked, err := deps.Retriever.RerankWithin(ctx, strings.Join(ingredients, " "), recipeIDs(candidates), k)
				if err != nil || len(ranked) == 0 {
					assumptions = append(assumptions, "Semantic reranking was unavailable, so recipes are ordered by ingredient match.")
				} else {
					reranked, err := deps.Store.GetRecipesByIDs(ctx, ranked)
					if err != nil {
						return suggesterFailure("Retrieving reranked recipes failed, so no recipes were returned."), nil
					}
					candidates = reranked
				}
			}

			if len(candidates) > k {
				candidates = candidates[:k]
			}

			return map[string]any{
				"recipe_ids":  recipeIDs(candidates),
				"recipes":     recipeRecords(candidates),
				"match_mode":  matchMode,
				"source":      "dataset",
				"assumptions": assumptions,
			}, nil
		},
	}
}

func suggesterFailure(assumption string) map[string]any {
	return map[string]any{
		"status":      string(StatusFailure),
		"recipe_ids":  []int64{},
		"recipes":     []map[string]any{},
		"match_mode":  "none",
		"source":      "dataset",
		"assumptions": []string{assumption},
	}
}

func cleanIngredients(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, ing := range raw {
		ing = strings.ToLower(strings.TrimSpace(ing))
		if ing != "" {
			out = append(out, ing)
		}
	}
	return out
}

// ingredientNames parses the serialized ingredient list of a recipe row,
// skipping anything malformed.
func ingredientNames(r storage.Recipe) []string {
	return decodeStringList(r.IngredientsJSON)
}
