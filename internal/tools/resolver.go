package tools

import (
	"context"
	"strings"
)

func recipeResolverSpec(deps Deps) Spec {
	return Spec{
		Name:        "resolve_recipe_by_name",
		Description: "Resolve a recipe name mentioned in conversation to its dataset ID using case-insensitive substring matching.",
		Kind:        KindResolver,
		Handler: func(ctx context.Context, args map[string]any) (any, error) {
			name := strings.TrimSpace(stringArg(args, "name"))
			if name == "" {
				return map[string]any{
					"recipe_id":   nil,
					"matches":     []any{},
					"assumptions": []string{"No recipe name was provided."},
				}, nil
			}

			matches, err := deps.Store.ResolveRecipesByName(ctx, name, 5)
			if err != nil {
				return map[string]any{
					"status":      string(StatusFailure),
					"recipe_id":   nil,
					"matches":     []any{},
					"assumptions": []string{"Recipe name lookup failed."},
				}, nil
			}
			if len(matches) == 0 {
				return map[string]any{
					"recipe_id":   nil,
					"matches":     []any{},
					"assumptions": []string{"No recipe names in the dataset matched the provided name."},
				}, nil
			}

			best := matches[0]
			return map[string]any{
				"recipe_id":     best.RecipeID,
				"resolved_name": best.Name,
				"matches":       matches,
				"assumptions":   []string{"Recipe was resolved by fuzzy name matching."},
			}, nil
		},
	}
}
