package storage

import (
	"context"
	"fmt"
)

// SaveRecipe inserts a recipe row together with its normalized ingredient
// and tag associations in one transaction and returns the assigned recipe
// ID. Associations are lowercased, trimmed, and deduplicated so that both
// representations derive from the same source list.
//
// This is an ingestion-time write path; the query-serving core never calls
// it.
func (s *Store) SaveRecipe(ctx context.Context, r Recipe, ingredients, tags []string) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning recipe insert: %w", err)
	}

	res, err := tx.Exec(`
		INSERT INTO recipes (name, description, minutes, n_steps, n_ingredients,
			calories, total_fat_pdv, sugar_pdv, sodium_pdv, protein_pdv, saturated_fat_pdv, carbs_pdv,
			steps_json, ingredients_json, tags_json, document, instructions)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.Name, r.Description, r.Minutes, r.NSteps, r.NIngredients,
		r.Calories, r.TotalFatPDV, r.SugarPDV, r.SodiumPDV, r.ProteinPDV, r.SaturatedFatPDV, r.CarbsPDV,
		r.StepsJSON, r.IngredientsJSON, r.TagsJSON, r.Document, r.Instructions,
	)
	if err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("inserting recipe %q: %w", r.Name, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("reading recipe id: %w", err)
	}

	for _, ing := range normalizeTerms(ingredients) {
		if _, err := tx.Exec(
			`INSERT OR IGNORE INTO recipe_ingredients (recipe_id, ingredient) VALUES (?, ?)`,
			id, ing); err != nil {
			tx.Rollback()
			return 0, fmt.Errorf("inserting ingredient %q for recipe %d: %w", ing, id, err)
		}
	}

	for _, tag := range normalizeTerms(tags) {
		if _, err := tx.Exec(
			`INSERT OR IGNORE INTO recipe_tags (recipe_id, tag) VALUES (?, ?)`,
			id, tag); err != nil {
			tx.Rollback()
			return 0, fmt.Errorf("inserting tag %q for recipe %d: %w", tag, id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing recipe insert: %w", err)
	}
	return id, nil
}

// CountRecipes returns the number of recipes in the store.
func (s *Store) CountRecipes(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM recipes").Scan(&count)
	return count, err
}
