package retrieval

// VectorIndex is the interface for the recipe embedding index. The default
// implementation uses SQLite with brute-force cosine similarity; the index is
// built once at ingestion time and read-only at query time.
type VectorIndex interface {
	// Insert adds index entries. Used only by the ingestion path.
	Insert(records []Record) error

	// Search returns the top-K most similar entries, highest similarity
	// first.
	Search(vector []float32, topK int) ([]ScoredID, error)

	// SearchWithin behaves like Search but restricts candidates to the
	// given recipe IDs.
	SearchWithin(vector []float32, ids []int64, topK int) ([]ScoredID, error)

	// Count returns the number of entries in the index.
	Count() (int, error)
}

// Record is a single embedding index entry. Every entry's recipe ID must
// correspond to a row in the recipes table; a broken link is a
// data-integrity fault in the ingested dataset, not a runtime condition to
// hide.
type Record struct {
	RecipeID  int64
	Embedding []float32
}

// ScoredID is a recipe ID with its cosine similarity to a query vector.
type ScoredID struct {
	RecipeID int64
	Score    float32
}
