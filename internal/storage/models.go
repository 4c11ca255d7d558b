package storage

import "errors"

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Recipe is a single row of the recipes table. The *JSON fields hold
// serialized lists exactly as ingested; Document is the composite text the
// embedding index was built from.
type Recipe struct {
	RecipeID        int64
	Name            string
	Description     string
	Minutes         int
	NSteps          int
	NIngredients    int
	Calories        float64
	TotalFatPDV     float64
	SugarPDV        float64
	SodiumPDV       float64
	ProteinPDV      float64
	SaturatedFatPDV float64
	CarbsPDV        float64
	StepsJSON       string
	IngredientsJSON string
	TagsJSON        string
	Document        string
	Instructions    string
}

// NutritionFields lists the seven nutrition columns in their canonical order.
var NutritionFields = []string{
	"calories",
	"total_fat_pdv",
	"sugar_pdv",
	"sodium_pdv",
	"protein_pdv",
	"saturated_fat_pdv",
	"carbs_pdv",
}

// Nutrition returns the recipe's nutrition values keyed by column name.
func (r Recipe) Nutrition() map[string]float64 {
	return map[string]float64{
		"calories":          r.Calories,
		"total_fat_pdv":     r.TotalFatPDV,
		"sugar_pdv":         r.SugarPDV,
		"sodium_pdv":        r.SodiumPDV,
		"protein_pdv":       r.ProteinPDV,
		"saturated_fat_pdv": r.SaturatedFatPDV,
		"carbs_pdv":         r.CarbsPDV,
	}
}

// NameMatch is a (recipe_id, name) pair returned by name resolution.
type NameMatch struct {
	RecipeID int64  `json:"recipe_id"`
	Name     string `json:"name"`
}
