package retrieval

import (
	"context"
	"strings"

	"github.com/nutrichat/nutrichat/internal/storage"
)

// QueryEmbedder produces an embedding vector for query text. *Embedder
// implements it; tests substitute a deterministic double.
type QueryEmbedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Result is an ordered set of retrieved recipes. RecipeIDs and Recipes are
// parallel: every ID has its canonical store row at the same position.
type Result struct {
	RecipeIDs []int64
	Recipes   []storage.Recipe
}

// Retriever combines semantic index search with deterministic store access.
// Every semantic hit is re-fetched from the store before being trusted, so a
// stale or corrupted index entry can never surface fields the store doesn't
// actually have.
type Retriever struct {
	embedder QueryEmbedder
	index    VectorIndex
	store    *storage.Store
}

// NewRetriever creates a Retriever backed by the given embedder, index, and
// store.
func NewRetriever(embedder QueryEmbedder, index VectorIndex, store *storage.Store) *Retriever {
	return &Retriever{embedder: embedder, index: index, store: store}
}

// RetrieveIDs embeds the query and returns up to k recipe IDs ordered by
// descending similarity. Empty query or empty index yields an empty result.
func (r *Retriever) RetrieveIDs(ctx context.Context, query string, k int) ([]int64, error) {
	if strings.TrimSpace(query) == "" || k <= 0 {
		return nil, nil
	}

	vec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	scored, err := r.index.Search(vec, k)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, len(scored))
	for i, s := range scored {
		ids[i] = s.RecipeID
	}
	return ids, nil
}

// Retrieve runs the full grounded pipeline:
//
//  1. Recall k*oversample candidate IDs from the index.
//  2. Re-fetch those IDs from the store, preserving similarity-rank order.
//  3. Apply hard exclusion filtering if exclusions are given.
//  4. Truncate to the first k surviving rows.
//
// Filtering happens before truncation, so the final k rows all satisfy the
// hard constraints — at the cost of sometimes returning fewer than k. The
// pipeline never backfills.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int, exclude []string, oversample int) (Result, error) {
	if k < 1 {
		k = 1
	}
	if oversample < 1 {
		oversample = 1
	}

	candidateIDs, err := r.RetrieveIDs(ctx, query, k*oversample)
	if err != nil {
		return Result{}, err
	}
	if len(candidateIDs) == 0 {
		return Result{}, nil
	}

	recipes, err := r.store.GetRecipesByIDs(ctx, candidateIDs)
	if err != nil {
		return Result{}, err
	}

	if len(exclude) > 0 {
		recipes, err = r.store.ExcludeIngredients(ctx, recipes, exclude)
		if err != nil {
			return Result{}, err
		}
	}

	if len(recipes) > k {
		recipes = recipes[:k]
	}

	ids := make([]int64, len(recipes))
	for i, rec := range recipes {
		ids[i] = rec.RecipeID
	}
	return Result{RecipeIDs: ids, Recipes: recipes}, nil
}

// RerankWithin orders the given candidate IDs by semantic similarity to the
// query, restricted to the candidate set only, and returns up to k IDs. IDs
// absent from the index are dropped; callers must re-ground survivors
// through the store before exposing them.
func (r *Retriever) RerankWithin(ctx context.Context, query string, candidateIDs []int64, k int) ([]int64, error) {
	if strings.TrimSpace(query) == "" || len(candidateIDs) == 0 || k <= 0 {
		return nil, nil
	}

	vec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	scored, err := r.index.SearchWithin(vec, candidateIDs, k)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, len(scored))
	for i, s := range scored {
		ids[i] = s.RecipeID
	}
	return ids, nil
}
