package retrieval

import (
	"math"
	"testing"

	"github.com/nutrichat/nutrichat/internal/storage"
)

// openTestStore creates an in-memory store with the full migrated schema,
// including the recipe_vectors table.
func openTestStore(t *testing.T) *storage.Store {
	t.Helper()
	s, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("opening test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestIndexInsertAndSearch(t *testing.T) {
	s := openTestStore(t)
	idx := NewSQLiteIndex(s.DB())

	err := idx.Insert([]Record{
		{RecipeID: 1, Embedding: []float32{1, 0, 0}},
		{RecipeID: 2, Embedding: []float32{0, 1, 0}},
	})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}

	results, err := idx.Search([]float32{1, 0, 0}, 1)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if results[0].RecipeID != 1 {
		t.Errorf("RecipeID = %d, want 1", results[0].RecipeID)
	}
	if results[0].Score < 0.99 {
		t.Errorf("score = %f, want > 0.99", results[0].Score)
	}
}

func TestIndexSearch_DescendingScoreOrder(t *testing.T) {
	s := openTestStore(t)
	idx := NewSQLiteIndex(s.DB())

	err := idx.Insert([]Record{
		{RecipeID: 1, Embedding: []float32{1, 0}},
		{RecipeID: 2, Embedding: []float32{0.9, 0.1}},
		{RecipeID: 3, Embedding: []float32{0, 1}},
	})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}

	results, err := idx.Search([]float32{1, 0}, 3)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}

	want := []int64{1, 2, 3}
	for i, r := range results {
		if r.RecipeID != want[i] {
			t.Errorf("result[%d].RecipeID = %d, want %d", i, r.RecipeID, want[i])
		}
	}
	for i := 1; i < len(results); i++ {
		if results[i].Score > results[i-1].Score {
			t.Errorf("scores not descending at %d: %f > %f", i, results[i].Score, results[i-1].Score)
		}
	}
}

func TestIndexSearchWithin_RestrictsToCandidates(t *testing.T) {
	s := openTestStore(t)
	idx := NewSQLiteIndex(s.DB())

	err := idx.Insert([]Record{
		{RecipeID: 1, Embedding: []float32{1, 0}},
		{RecipeID: 2, Embedding: []float32{0.5, 0.5}},
		{RecipeID: 3, Embedding: []float32{0, 1}},
	})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}

	// Recipe 1 is the best global match but is not a candidate.
	results, err := idx.SearchWithin([]float32{1, 0}, []int64{2, 3}, 2)
	if err != nil {
		t.Fatalf("SearchWithin: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].RecipeID != 2 || results[1].RecipeID != 3 {
		t.Errorf("order = [%d, %d], want [2, 3]", results[0].RecipeID, results[1].RecipeID)
	}
}

func TestIndexSearch_ZeroQueryVector(t *testing.T) {
	s := openTestStore(t)
	idx := NewSQLiteIndex(s.DB())

	if err := idx.Insert([]Record{{RecipeID: 1, Embedding: []float32{1, 0}}}); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	results, err := idx.Search([]float32{0, 0}, 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("got %d results, want 0", len(results))
	}
}

func TestIndexCount(t *testing.T) {
	s := openTestStore(t)
	idx := NewSQLiteIndex(s.DB())

	if err := idx.Insert([]Record{
		{RecipeID: 1, Embedding: []float32{1, 0}},
		{RecipeID: 2, Embedding: []float32{0, 1}},
	}); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	count, err := idx.Count()
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
}

func TestNormalizeVector(t *testing.T) {
	v := NormalizeVector([]float32{3, 4})
	if math.Abs(float64(v[0])-0.6) > 1e-6 || math.Abs(float64(v[1])-0.8) > 1e-6 {
		t.Errorf("normalized = %v, want [0.6, 0.8]", v)
	}

	zero := NormalizeVector([]float32{0, 0})
	if zero[0] != 0 || zero[1] != 0 {
		t.Errorf("zero vector changed: %v", zero)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	in := []float32{0.1, -2.5, 3.75, 0}
	b := encodeFloat32s(in)

	out, err := decodeFloat32sInto(nil, b)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("got %d values, want %d", len(out), len(in))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Errorf("out[%d] = %f, want %f", i, out[i], in[i])
		}
	}

	if _, err := decodeFloat32sInto(nil, b[:5]); err == nil {
		t.Error("expected error for truncated blob")
	}
}
