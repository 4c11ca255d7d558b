package tools

import (
	"context"
	"fmt"
	"strings"
)

func mealPlannerSpec(deps Deps) Spec {
	return Spec{
		Name:        "meal_planner",
		Description: "Build a simple multi-day meal plan by cycling through candidate recipe IDs, one recipe per day.",
		Kind:        KindPlanning,
		Handler: func(ctx context.Context, args map[string]any) (any, error) {
			days := intArg(args, "days", 0, 0, 14)
			candidates := int64SliceArg(args, "candidate_recipe_ids")

			if days < 1 {
				return map[string]any{
					"type":        "meal_plan",
					"days":        0,
					"plan":        []map[string]any{},
					"assumptions": []string{"days must be between 1 and 14, so no plan was generated."},
				}, nil
			}
			if len(candidates) == 0 {
				return map[string]any{
					"type":        "meal_plan",
					"days":        days,
					"plan":        []map[string]any{},
					"assumptions": []string{"No candidate recipes were provided, so no plan was generated."},
				}, nil
			}

			recipes, err := deps.Store.GetRecipesByIDs(ctx, candidates)
			if err != nil {
				return map[string]any{
					"status":      string(StatusFailure),
					"type":        "meal_plan",
					"days":        days,
					"plan":        []map[string]any{},
					"assumptions": []string{"Failed to retrieve candidate recipes from the dataset."},
				}, nil
			}
			if len(recipes) == 0 {
				return map[string]any{
					"type":        "meal_plan",
					"days":        days,
					"plan":        []map[string]any{},
					"assumptions": []string{"Candidate recipe IDs did not match any recipes in the dataset."},
				}, nil
			}

			plan := make([]map[string]any, days)
			for day := 0; day < days; day++ {
				r := recipes[day%len(recipes)]
				plan[day] = map[string]any{
					"day":       day + 1,
					"recipe_id": r.RecipeID,
					"name":      r.Name,
				}
			}

			assumptions := []string{"Recipes are assigned to days in round-robin order, one per day."}
			if len(recipes) < len(candidates) {
				assumptions = append(assumptions, "Some candidate recipe IDs were not found and are excluded from the plan.")
			}

			// Preferences are recorded, never silently dropped.
			if target := intArg(args, "calorie_target", 0, 0, 20000); target > 0 {
				assumptions = append(assumptions, fmt.Sprintf("Calorie target of approximately %d kcal/day was noted but not strictly enforced.", target))
			}
			if diet := strings.TrimSpace(stringArg(args, "diet_type")); diet != "" {
				assumptions = append(assumptions, fmt.Sprintf("Diet preference '%s' was noted but not strictly enforced.", diet))
			}

			return map[string]any{
				"type":        "meal_plan",
				"days":        days,
				"plan":        plan,
				"assumptions": assumptions,
			}, nil
		},
	}
}
