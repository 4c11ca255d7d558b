package storage

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("opening test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// seedRecipe inserts a minimal recipe and returns its assigned ID.
func seedRecipe(t *testing.T, s *Store, name string, ingredients ...string) int64 {
	t.Helper()
	ingJSON, err := json.Marshal(ingredients)
	if err != nil {
		t.Fatal(err)
	}
	id, err := s.SaveRecipe(context.Background(), Recipe{
		Name:            name,
		IngredientsJSON: string(ingJSON),
		Calories:        100,
		ProteinPDV:      10,
	}, ingredients, nil)
	if err != nil {
		t.Fatalf("seeding recipe %q: %v", name, err)
	}
	return id
}

func TestGetRecipe_NotFound(t *testing.T) {
	s := openTestStore(t)

	_, err := s.GetRecipe(context.Background(), 42)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestGetRecipesByIDs_PreservesOrder(t *testing.T) {
	s := openTestStore(t)
	a := seedRecipe(t, s, "pancakes", "flour", "egg")
	b := seedRecipe(t, s, "omelette", "egg", "butter")
	c := seedRecipe(t, s, "toast", "bread")

	got, err := s.GetRecipesByIDs(context.Background(), []int64{c, a, c, b, 9999})
	if err != nil {
		t.Fatalf("GetRecipesByIDs: %v", err)
	}

	want := []int64{c, a, b}
	if len(got) != len(want) {
		t.Fatalf("got %d recipes, want %d", len(got), len(want))
	}
	for i, r := range got {
		if r.RecipeID != want[i] {
			t.Errorf("recipe[%d].RecipeID = %d, want %d", i, r.RecipeID, want[i])
		}
	}
}

func TestGetRecipesByIDs_Empty(t *testing.T) {
	s := openTestStore(t)

	got, err := s.GetRecipesByIDs(context.Background(), nil)
	if err != nil {
		t.Fatalf("GetRecipesByIDs: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d recipes, want 0", len(got))
	}
}

func TestRecipesWithAllIngredients(t *testing.T) {
	s := openTestStore(t)
	full := seedRecipe(t, s, "carbonara", "pasta", "egg", "bacon")
	seedRecipe(t, s, "cacio e pepe", "pasta", "cheese")

	got, err := s.RecipesWithAllIngredients(context.Background(), []string{"Pasta", "EGG "})
	if err != nil {
		t.Fatalf("RecipesWithAllIngredients: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d recipes, want 1", len(got))
	}
	if got[0].RecipeID != full {
		t.Errorf("RecipeID = %d, want %d", got[0].RecipeID, full)
	}
}

func TestRecipesWithAllIngredients_NoMatch(t *testing.T) {
	s := openTestStore(t)
	seedRecipe(t, s, "carbonara", "pasta", "egg")

	got, err := s.RecipesWithAllIngredients(context.Background(), []string{"pasta", "truffle"})
	if err != nil {
		t.Fatalf("RecipesWithAllIngredients: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d recipes, want 0", len(got))
	}
}

func TestRecipesWithPartialIngredients(t *testing.T) {
	s := openTestStore(t)
	two := seedRecipe(t, s, "fried rice", "rice", "egg", "scallion")
	seedRecipe(t, s, "plain rice", "rice")

	got, err := s.RecipesWithPartialIngredients(context.Background(), []string{"rice", "egg", "soy sauce"}, 2)
	if err != nil {
		t.Fatalf("RecipesWithPartialIngredients: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d recipes, want 1", len(got))
	}
	if got[0].RecipeID != two {
		t.Errorf("RecipeID = %d, want %d", got[0].RecipeID, two)
	}
}

func TestRecipesWithPartialIngredients_RanksByMatchCount(t *testing.T) {
	s := openTestStore(t)
	one := seedRecipe(t, s, "plain rice", "rice")
	three := seedRecipe(t, s, "fried rice", "rice", "egg", "scallion")

	got, err := s.RecipesWithPartialIngredients(context.Background(), []string{"rice", "egg", "scallion"}, 1)
	if err != nil {
		t.Fatalf("RecipesWithPartialIngredients: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d recipes, want 2", len(got))
	}
	if got[0].RecipeID != three || got[1].RecipeID != one {
		t.Errorf("order = [%d, %d], want [%d, %d]", got[0].RecipeID, got[1].RecipeID, three, one)
	}
}

func TestStrictMatchesWithinScoredMatches(t *testing.T) {
	s := openTestStore(t)
	seedRecipe(t, s, "carbonara", "pasta", "egg", "bacon")
	seedRecipe(t, s, "cacio e pepe", "pasta", "cheese")
	seedRecipe(t, s, "shakshuka", "egg", "tomato")
	seedRecipe(t, s, "toast", "bread")

	ctx := context.Background()
	for _, terms := range [][]string{
		{"pasta"},
		{"pasta", "egg"},
		{"egg"},
		{"pasta", "egg", "bacon"},
		{"saffron"},
	} {
		strict, err := s.RecipesWithAllIngredients(ctx, terms)
		if err != nil {
			t.Fatalf("RecipesWithAllIngredients(%v): %v", terms, err)
		}
		scored, err := s.RecipesWithAnyIngredients(ctx, terms, 1)
		if err != nil {
			t.Fatalf("RecipesWithAnyIngredients(%v): %v", terms, err)
		}

		scoredIDs := make(map[int64]bool, len(scored))
		for _, r := range scored {
			scoredIDs[r.RecipeID] = true
		}
		for _, r := range strict {
			if !scoredIDs[r.RecipeID] {
				t.Errorf("terms %v: strict match %d missing from scored matches", terms, r.RecipeID)
			}
		}
	}
}

func TestExcludeIngredients(t *testing.T) {
	s := openTestStore(t)
	withNuts := seedRecipe(t, s, "pesto pasta", "pasta", "basil", "pine nuts")
	without := seedRecipe(t, s, "tomato pasta", "pasta", "tomato")

	ctx := context.Background()
	recipes, err := s.GetRecipesByIDs(ctx, []int64{withNuts, without})
	if err != nil {
		t.Fatalf("GetRecipesByIDs: %v", err)
	}

	filtered, err := s.ExcludeIngredients(ctx, recipes, []string{"pine nuts"})
	if err != nil {
		t.Fatalf("ExcludeIngredients: %v", err)
	}
	if len(filtered) != 1 {
		t.Fatalf("got %d recipes, want 1", len(filtered))
	}
	if filtered[0].RecipeID != without {
		t.Errorf("RecipeID = %d, want %d", filtered[0].RecipeID, without)
	}
}

func TestExcludeIngredients_EmptyBanListIsNoOp(t *testing.T) {
	s := openTestStore(t)
	id := seedRecipe(t, s, "pesto pasta", "pasta", "basil")

	ctx := context.Background()
	recipes, err := s.GetRecipesByIDs(ctx, []int64{id})
	if err != nil {
		t.Fatalf("GetRecipesByIDs: %v", err)
	}

	filtered, err := s.ExcludeIngredients(ctx, recipes, nil)
	if err != nil {
		t.Fatalf("ExcludeIngredients: %v", err)
	}
	if len(filtered) != 1 {
		t.Errorf("got %d recipes, want 1", len(filtered))
	}
}

func TestResolveRecipesByName(t *testing.T) {
	s := openTestStore(t)
	first := seedRecipe(t, s, "Chocolate Cake")
	second := seedRecipe(t, s, "chocolate chip cookies")
	seedRecipe(t, s, "vanilla pudding")

	matches, err := s.ResolveRecipesByName(context.Background(), "CHOCOLATE", 5)
	if err != nil {
		t.Fatalf("ResolveRecipesByName: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("got %d matches, want 2", len(matches))
	}
	if matches[0].RecipeID != first || matches[1].RecipeID != second {
		t.Errorf("order = [%d, %d], want [%d, %d]", matches[0].RecipeID, matches[1].RecipeID, first, second)
	}
}

func TestResolveRecipesByName_Limit(t *testing.T) {
	s := openTestStore(t)
	seedRecipe(t, s, "soup one")
	seedRecipe(t, s, "soup two")
	seedRecipe(t, s, "soup three")

	matches, err := s.ResolveRecipesByName(context.Background(), "soup", 2)
	if err != nil {
		t.Fatalf("ResolveRecipesByName: %v", err)
	}
	if len(matches) != 2 {
		t.Errorf("got %d matches, want 2", len(matches))
	}
}

func TestSaveRecipe_NormalizesAssociations(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.SaveRecipe(ctx, Recipe{Name: "scramble"}, []string{"Egg", "egg ", "", "Milk"}, []string{"Breakfast", "breakfast"})
	if err != nil {
		t.Fatalf("SaveRecipe: %v", err)
	}

	ingredients, err := s.RecipeIngredients(ctx, id)
	if err != nil {
		t.Fatalf("RecipeIngredients: %v", err)
	}
	if len(ingredients) != 2 {
		t.Fatalf("got %d ingredients, want 2: %v", len(ingredients), ingredients)
	}
	for _, ing := range ingredients {
		if ing != "egg" && ing != "milk" {
			t.Errorf("unexpected ingredient %q", ing)
		}
	}

	tags, err := s.RecipeTags(ctx, id)
	if err != nil {
		t.Fatalf("RecipeTags: %v", err)
	}
	if len(tags) != 1 || tags[0] != "breakfast" {
		t.Errorf("tags = %v, want [breakfast]", tags)
	}
}

func TestRecipeColumns(t *testing.T) {
	s := openTestStore(t)

	cols, err := s.RecipeColumns()
	if err != nil {
		t.Fatalf("RecipeColumns: %v", err)
	}

	found := make(map[string]bool, len(cols))
	for _, c := range cols {
		found[c] = true
	}
	for _, want := range []string{"recipe_id", "name", "ingredients_json", "instructions", "calories"} {
		if !found[want] {
			t.Errorf("missing column %q", want)
		}
	}
}
