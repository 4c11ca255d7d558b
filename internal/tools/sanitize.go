package tools

import (
	"fmt"

	"github.com/nutrichat/nutrichat/internal/storage"
)

// exposedRecipeFields is the single allow-list of recipe fields that may
// leave the tool layer. Derived fields like the search document never
// appear here. RegisterAll validates every entry against the live schema
// at startup so a column rename fails loudly instead of silently dropping
// a field.
var exposedRecipeFields = []string{
	"recipe_id",
	"name",
	"ingredients_json",
	"instructions",
	"calories",
	"total_fat_pdv",
	"sugar_pdv",
	"sodium_pdv",
	"protein_pdv",
	"saturated_fat_pdv",
	"carbs_pdv",
}

// recipeRecord projects a store row onto the allow-listed field set.
func recipeRecord(r storage.Recipe) map[string]any {
	return map[string]any{
		"recipe_id":         r.RecipeID,
		"name":              r.Name,
		"ingredients_json":  r.IngredientsJSON,
		"instructions":      r.Instructions,
		"calories":          r.Calories,
		"total_fat_pdv":     r.TotalFatPDV,
		"sugar_pdv":         r.SugarPDV,
		"sodium_pdv":        r.SodiumPDV,
		"protein_pdv":       r.ProteinPDV,
		"saturated_fat_pdv": r.SaturatedFatPDV,
		"carbs_pdv":         r.CarbsPDV,
	}
}

func recipeRecords(recipes []storage.Recipe) []map[string]any {
	out := make([]map[string]any, len(recipes))
	for i, r := range recipes {
		out[i] = recipeRecord(r)
	}
	return out
}

func recipeIDs(recipes []storage.Recipe) []int64 {
	ids := make([]int64, len(recipes))
	for i, r := range recipes {
		ids[i] = r.RecipeID
	}
	return ids
}

// validateExposedFields confirms the allow-list against the actual recipes
// table columns.
func validateExposedFields(columns []string) error {
	known := make(map[string]bool, len(columns))
	for _, c := range columns {
		known[c] = true
	}
	for _, f := range exposedRecipeFields {
		if !known[f] {
			return fmt.Errorf("exposed recipe field %q does not exist in the recipes table", f)
		}
	}
	return nil
}
