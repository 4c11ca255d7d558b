package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// recipeColumns is the canonical select list for recipes rows. scanRecipe
// must stay in sync with it.
const recipeColumns = `recipe_id, name, description, minutes, n_steps, n_ingredients,
	calories, total_fat_pdv, sugar_pdv, sodium_pdv, protein_pdv, saturated_fat_pdv, carbs_pdv,
	steps_json, ingredients_json, tags_json, document, instructions`

// recipeColumnsQualified is recipeColumns with the r. alias, for joined
// queries where recipe_id would otherwise be ambiguous.
const recipeColumnsQualified = `r.recipe_id, r.name, r.description, r.minutes, r.n_steps, r.n_ingredients,
	r.calories, r.total_fat_pdv, r.sugar_pdv, r.sodium_pdv, r.protein_pdv, r.saturated_fat_pdv, r.carbs_pdv,
	r.steps_json, r.ingredients_json, r.tags_json, r.document, r.instructions`

func scanRecipe(scan func(dest ...any) error, r *Recipe) error {
	return scan(
		&r.RecipeID, &r.Name, &r.Description, &r.Minutes, &r.NSteps, &r.NIngredients,
		&r.Calories, &r.TotalFatPDV, &r.SugarPDV, &r.SodiumPDV, &r.ProteinPDV,
		&r.SaturatedFatPDV, &r.CarbsPDV,
		&r.StepsJSON, &r.IngredientsJSON, &r.TagsJSON, &r.Document, &r.Instructions,
	)
}

// normalizeTerms lowercases and trims each term and drops empties. Both the
// association table and the substring matchers compare against this form.
func normalizeTerms(terms []string) []string {
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

func placeholders(n int) string {
	return "?" + strings.Repeat(",?", n-1)
}

// GetRecipe fetches a single recipe by ID. Returns ErrNotFound if the ID
// does not exist.
func (s *Store) GetRecipe(ctx context.Context, id int64) (Recipe, error) {
	var r Recipe
	row := s.db.QueryRowContext(ctx,
		`SELECT `+recipeColumns+` FROM recipes WHERE recipe_id = ?`, id)
	err := scanRecipe(row.Scan, &r)
	if err == sql.ErrNoRows {
		return Recipe{}, ErrNotFound
	}
	if err != nil {
		return Recipe{}, fmt.Errorf("fetching recipe %d: %w", id, err)
	}
	return r, nil
}

// GetRecipesByIDs fetches multiple recipes, preserving the caller's ID order
// rather than storage order. Unknown IDs are silently dropped and duplicate
// IDs collapse to their first occurrence.
func (s *Store) GetRecipesByIDs(ctx context.Context, ids []int64) ([]Recipe, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+recipeColumns+` FROM recipes WHERE recipe_id IN (`+placeholders(len(ids))+`)`,
		args...)
	if err != nil {
		return nil, fmt.Errorf("querying recipes by IDs: %w", err)
	}
	defer rows.Close()

	byID := make(map[int64]Recipe, len(ids))
	for rows.Next() {
		var r Recipe
		if err := scanRecipe(rows.Scan, &r); err != nil {
			return nil, fmt.Errorf("scanning recipe row: %w", err)
		}
		byID[r.RecipeID] = r
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	result := make([]Recipe, 0, len(byID))
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if r, ok := byID[id]; ok {
			result = append(result, r)
		}
	}
	return result, nil
}

// RecipesWithAllIngredients returns recipes whose exact ingredient
// associations contain ALL of the given ingredients (case-insensitive).
// Empty input yields an empty result, not all recipes.
func (s *Store) RecipesWithAllIngredients(ctx context.Context, ingredients []string) ([]Recipe, error) {
	ingredients = normalizeTerms(ingredients)
	if len(ingredients) == 0 {
		return nil, nil
	}

	args := make([]any, 0, len(ingredients)+1)
	for _, ing := range ingredients {
		args = append(args, ing)
	}
	args = append(args, len(ingredients))

	query := `
		SELECT ` + recipeColumnsQualified + `
		FROM recipes r
		JOIN recipe_ingredients ri ON r.recipe_id = ri.recipe_id
		WHERE ri.ingredient IN (` + placeholders(len(ingredients)) + `)
		GROUP BY r.recipe_id
		HAVING COUNT(DISTINCT ri.ingredient) = ?
		ORDER BY r.recipe_id ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying strict ingredient match: %w", err)
	}
	defer rows.Close()

	var result []Recipe
	for rows.Next() {
		var r Recipe
		if err := scanRecipe(rows.Scan, &r); err != nil {
			return nil, fmt.Errorf("scanning recipe row: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// RecipesWithAnyIngredients returns recipes scoring at least minMatches
// substring matches against the serialized ingredient list, ordered by
// descending match count. Ties break on ascending recipe_id so identical
// input always yields identical order.
func (s *Store) RecipesWithAnyIngredients(ctx context.Context, ingredients []string, minMatches int) ([]Recipe, error) {
	return s.recipesByIngredientScore(ctx, ingredients, minMatches)
}

// RecipesWithPartialIngredients applies the same substring-scoring policy as
// RecipesWithAnyIngredients. It exists as a named fallback stage so callers
// can record which matching stage produced a result.
func (s *Store) RecipesWithPartialIngredients(ctx context.Context, ingredients []string, minMatches int) ([]Recipe, error) {
	return s.recipesByIngredientScore(ctx, ingredients, minMatches)
}

func (s *Store) recipesByIngredientScore(ctx context.Context, ingredients []string, minMatches int) ([]Recipe, error) {
	ingredients = normalizeTerms(ingredients)
	if len(ingredients) == 0 || minMatches <= 0 {
		return nil, nil
	}

	scoreClauses := make([]string, len(ingredients))
	whereClauses := make([]string, len(ingredients))
	args := make([]any, 0, 2*len(ingredients)+1)
	for i := range ingredients {
		scoreClauses[i] = "CASE WHEN LOWER(ingredients_json) LIKE ? THEN 1 ELSE 0 END"
		whereClauses[i] = "LOWER(ingredients_json) LIKE ?"
	}
	for _, ing := range ingredients {
		args = append(args, "%"+ing+"%")
	}
	for _, ing := range ingredients {
		args = append(args, "%"+ing+"%")
	}
	args = append(args, minMatches)

	query := `
		SELECT ` + recipeColumns + `, match_count FROM (
			SELECT ` + recipeColumns + `,
				(` + strings.Join(scoreClauses, " + ") + `) AS match_count
			FROM recipes
			WHERE (` + strings.Join(whereClauses, " OR ") + `)
		)
		WHERE match_count >= ?
		ORDER BY match_count DESC, recipe_id ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying scored ingredient match: %w", err)
	}
	defer rows.Close()

	var result []Recipe
	for rows.Next() {
		var r Recipe
		var matchCount int
		err := rows.Scan(
			&r.RecipeID, &r.Name, &r.Description, &r.Minutes, &r.NSteps, &r.NIngredients,
			&r.Calories, &r.TotalFatPDV, &r.SugarPDV, &r.SodiumPDV, &r.ProteinPDV,
			&r.SaturatedFatPDV, &r.CarbsPDV,
			&r.StepsJSON, &r.IngredientsJSON, &r.TagsJSON, &r.Document, &r.Instructions,
			&matchCount,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning scored recipe row: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// ExcludeIngredients drops any recipe whose exact ingredient association
// contains a banned ingredient. No-op if either input is empty.
func (s *Store) ExcludeIngredients(ctx context.Context, recipes []Recipe, banned []string) ([]Recipe, error) {
	banned = normalizeTerms(banned)
	if len(recipes) == 0 || len(banned) == 0 {
		return recipes, nil
	}

	args := make([]any, len(banned))
	for i, b := range banned {
		args[i] = b
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT recipe_id FROM recipe_ingredients WHERE ingredient IN (`+placeholders(len(banned))+`)`,
		args...)
	if err != nil {
		return nil, fmt.Errorf("querying banned ingredients: %w", err)
	}
	defer rows.Close()

	bannedIDs := make(map[int64]bool)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		bannedIDs[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	result := make([]Recipe, 0, len(recipes))
	for _, r := range recipes {
		if !bannedIDs[r.RecipeID] {
			result = append(result, r)
		}
	}
	return result, nil
}

// ResolveRecipesByName does a case-insensitive substring match against recipe
// names. Results are ordered by recipe_id, so the first match is
// deterministic given identical data — it is a fuzzy match, not a relevance
// ranking.
func (s *Store) ResolveRecipesByName(ctx context.Context, name string, limit int) ([]NameMatch, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 5
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT recipe_id, name FROM recipes WHERE LOWER(name) LIKE ? ORDER BY recipe_id ASC LIMIT ?`,
		"%"+name+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("resolving recipe name: %w", err)
	}
	defer rows.Close()

	var matches []NameMatch
	for rows.Next() {
		var m NameMatch
		if err := rows.Scan(&m.RecipeID, &m.Name); err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// RecipeIngredients returns the normalized ingredient associations for a
// recipe.
func (s *Store) RecipeIngredients(ctx context.Context, id int64) ([]string, error) {
	return s.associationValues(ctx,
		`SELECT ingredient FROM recipe_ingredients WHERE recipe_id = ? ORDER BY ingredient ASC`, id)
}

// RecipeTags returns the normalized tag associations for a recipe.
func (s *Store) RecipeTags(ctx context.Context, id int64) ([]string, error) {
	return s.associationValues(ctx,
		`SELECT tag FROM recipe_tags WHERE recipe_id = ? ORDER BY tag ASC`, id)
}

func (s *Store) associationValues(ctx context.Context, query string, id int64) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("querying associations for recipe %d: %w", id, err)
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, rows.Err()
}
