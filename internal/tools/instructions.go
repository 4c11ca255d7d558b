package tools

import (
	"context"
	"errors"
	"strings"

	"github.com/nutrichat/nutrichat/internal/storage"
)

func recipeInstructionsSpec(deps Deps) Spec {
	return Spec{
		Name:        "recipe_instructions",
		Description: "Fetch the preparation instructions for a single recipe by ID.",
		Kind:        KindPresentation,
		Handler: func(ctx context.Context, args map[string]any) (any, error) {
			id, ok := int64Arg(args, "recipe_id")
			if !ok || id <= 0 {
				return map[string]any{
					"instructions": nil,
					"assumptions":  []string{"No recipe ID was provided."},
				}, nil
			}

			r, err := deps.Store.GetRecipe(ctx, id)
			if errors.Is(err, storage.ErrNotFound) {
				return map[string]any{
					"recipe_id":    id,
					"instructions": nil,
					"assumptions":  []string{"Recipe was not found in the dataset."},
				}, nil
			}
			if err != nil {
				return map[string]any{
					"status":       string(StatusFailure),
					"recipe_id":    id,
					"instructions": nil,
					"assumptions":  []string{"Failed to retrieve the recipe from the dataset."},
				}, nil
			}

			if strings.TrimSpace(r.Instructions) == "" {
				return map[string]any{
					"recipe_id":    id,
					"name":         r.Name,
					"instructions": nil,
					"assumptions":  []string{"No instructions are available for this recipe in the dataset."},
				}, nil
			}

			return map[string]any{
				"recipe_id":    r.RecipeID,
				"name":         r.Name,
				"instructions": r.Instructions,
				"assumptions":  []string{"Instructions are taken directly from the dataset."},
			}, nil
		},
	}
}
