package tools

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
)

func shoppingListSpec(deps Deps) Spec {
	return Spec{
		Name:        "shopping_list",
		Description: "Aggregate a deduplicated, sorted ingredient list from the recipes in a meal plan.",
		Kind:        KindAggregation,
		Handler: func(ctx context.Context, args map[string]any) (any, error) {
			planDays := mapSliceArg(args, "days")
			if len(planDays) == 0 {
				return map[string]any{
					"type":        "shopping_list",
					"items":       []string{},
					"assumptions": []string{"No meal plan was provided, so no shopping list was generated."},
				}, nil
			}

			seen := make(map[int64]bool)
			ids := make([]int64, 0, len(planDays))
			for _, day := range planDays {
				id, ok := toInt64(day["recipe_id"])
				if !ok || id <= 0 || seen[id] {
					continue
				}
				seen[id] = true
				ids = append(ids, id)
			}
			if len(ids) == 0 {
				return map[string]any{
					"type":        "shopping_list",
					"items":       []string{},
					"assumptions": []string{"The meal plan contained no valid recipe IDs."},
				}, nil
			}

			recipes, err := deps.Store.GetRecipesByIDs(ctx, ids)
			if err != nil {
				return map[string]any{
					"status":      string(StatusFailure),
					"type":        "shopping_list",
					"items":       []string{},
					"assumptions": []string{"Failed to retrieve meal plan recipes from the dataset."},
				}, nil
			}
			if len(recipes) == 0 {
				return map[string]any{
					"type":        "shopping_list",
					"items":       []string{},
					"assumptions": []string{"No meal plan recipes were found in the dataset."},
				}, nil
			}

			set := make(map[string]bool)
			for _, r := range recipes {
				names := ingredientNames(r)
				if names == nil {
					deps.Logger.Debug("skipping malformed ingredient list", "recipe_id", r.RecipeID)
					continue
				}
				for _, name := range names {
					name = strings.ToLower(strings.TrimSpace(name))
					if name != "" {
						set[name] = true
					}
				}
			}

			items := make([]string, 0, len(set))
			for name := range set {
				items = append(items, name)
			}
			sort.Strings(items)

			return map[string]any{
				"type":  "shopping_list",
				"items": items,
				"assumptions": []string{
					"Ingredients were aggregated from the selected meal plan recipes.",
					"Ingredient quantities are not included.",
				},
			}, nil
		},
	}
}

// decodeStringList parses a JSON array of strings, skipping non-string
// elements. Returns nil when the payload is not a JSON array at all.
func decodeStringList(raw string) []string {
	var items []any
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
