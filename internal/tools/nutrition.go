package tools

import (
	"context"
	"strconv"
)

func nutritionAnalyzerSpec(deps Deps) Spec {
	return Spec{
		Name:        "nutrition_analyzer",
		Description: "Summarize nutrition for a set of recipes: per-recipe values and totals, straight from the dataset. PDV fields are percent daily values.",
		Kind:        KindCalculation,
		Handler: func(ctx context.Context, args map[string]any) (any, error) {
			ids := int64SliceArg(args, "recipe_ids")
			if len(ids) == 0 {
				return map[string]any{
					"recipe_ids":  []int64{},
					"per_recipe":  map[string]any{},
					"totals":      map[string]float64{},
					"assumptions": []string{"No recipe IDs were provided, so no nutrition was computed."},
				}, nil
			}

			recipes, err := deps.Store.GetRecipesByIDs(ctx, ids)
			if err != nil {
				return map[string]any{
					"status":      string(StatusFailure),
					"recipe_ids":  ids,
					"per_recipe":  map[string]any{},
					"totals":      map[string]float64{},
					"assumptions": []string{"Failed to retrieve nutrition data from the dataset."},
				}, nil
			}
			if len(recipes) == 0 {
				return map[string]any{
					"recipe_ids":  ids,
					"per_recipe":  map[string]any{},
					"totals":      map[string]float64{},
					"assumptions": []string{"None of the provided recipe IDs exist in the dataset."},
				}, nil
			}

			perRecipe := make(map[string]any, len(recipes))
			totals := make(map[string]float64, 7)
			for _, r := range recipes {
				nutrition := r.Nutrition()
				perRecipe[strconv.FormatInt(r.RecipeID, 10)] = map[string]any{
					"name":      r.Name,
					"nutrition": nutrition,
				}
				for field, value := range nutrition {
					totals[field] += value
				}
			}

			assumptions := []string{
				"Nutrition values are taken directly from the dataset.",
				"PDV values are summed without conversion to grams.",
			}
			if len(recipes) < len(ids) {
				assumptions = append(assumptions, "Some provided recipe IDs were not found and are excluded from the totals.")
			}

			return map[string]any{
				"recipe_ids":  recipeIDs(recipes),
				"per_recipe":  perRecipe,
				"totals":      totals,
				"assumptions": assumptions,
			}, nil
		},
	}
}
