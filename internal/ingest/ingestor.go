package ingest

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/nutrichat/nutrichat/internal/retrieval"
	"github.com/nutrichat/nutrichat/internal/storage"
)

// embedBatchSize bounds how many documents are embedded per batch so a large
// dataset doesn't hold thousands of vectors in flight.
const embedBatchSize = 32

// nutritionValues is the fixed order of the CSV nutrition array:
// calories, total fat, sugar, sodium, protein, saturated fat, carbs.
const nutritionValues = 7

// Ingestor builds the recipe database and embedding index from a processed
// dataset CSV. Expected columns: name, description, minutes, n_steps,
// n_ingredients, nutrition (JSON array of 7 numbers), steps, ingredients,
// tags (JSON arrays of strings).
type Ingestor struct {
	store    *storage.Store
	embedder *retrieval.Embedder
	index    retrieval.VectorIndex
	logger   *slog.Logger
}

func NewIngestor(store *storage.Store, embedder *retrieval.Embedder, index retrieval.VectorIndex, logger *slog.Logger) *Ingestor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ingestor{store: store, embedder: embedder, index: index, logger: logger}
}

// RunFromCSV ingests the dataset at path: every well-formed row becomes a
// recipe with deduplicated lowercase ingredient and tag associations, and
// every recipe document is embedded and stored as a unit-normalized vector.
// Malformed rows are logged and skipped. A final count mismatch between
// recipes and vectors is an error, since a partially indexed dataset would
// silently shrink semantic recall.
func (in *Ingestor) RunFromCSV(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening dataset: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return fmt.Errorf("reading header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(strings.ToLower(name))] = i
	}
	for _, required := range []string{"name", "nutrition", "steps", "ingredients", "tags"} {
		if _, ok := cols[required]; !ok {
			return fmt.Errorf("dataset is missing required column %q", required)
		}
	}

	var (
		row       int
		inserted  int
		skipped   int
		batchIDs  []int64
		batchDocs []string
	)

	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		row++
		if err != nil {
			in.logger.Warn("skipping unreadable row", "row", row, "error", err)
			skipped++
			continue
		}

		recipe, ingredients, tags, err := parseRow(record, cols)
		if err != nil {
			in.logger.Warn("skipping malformed row", "row", row, "error", err)
			skipped++
			continue
		}

		id, err := in.store.SaveRecipe(ctx, recipe, ingredients, tags)
		if err != nil {
			return fmt.Errorf("saving recipe at row %d: %w", row, err)
		}
		inserted++

		batchIDs = append(batchIDs, id)
		batchDocs = append(batchDocs, recipe.Document)
		if len(batchIDs) >= embedBatchSize {
			if err := in.embedBatch(ctx, batchIDs, batchDocs); err != nil {
				return err
			}
			batchIDs = batchIDs[:0]
			batchDocs = batchDocs[:0]
		}

		if inserted%500 == 0 {
			in.logger.Info("ingest progress", "inserted", inserted, "skipped", skipped)
		}
	}
	if len(batchIDs) > 0 {
		if err := in.embedBatch(ctx, batchIDs, batchDocs); err != nil {
			return err
		}
	}

	recipeCount, err := in.store.CountRecipes(ctx)
	if err != nil {
		return fmt.Errorf("counting recipes: %w", err)
	}
	vectorCount, err := in.index.Count()
	if err != nil {
		return fmt.Errorf("counting vectors: %w", err)
	}
	if recipeCount != vectorCount {
		return fmt.Errorf("ingest incomplete: %d recipes but %d vectors", recipeCount, vectorCount)
	}

	in.logger.Info("ingest complete", "inserted", inserted, "skipped", skipped)
	return nil
}

func (in *Ingestor) embedBatch(ctx context.Context, ids []int64, docs []string) error {
	vectors, err := in.embedder.EmbedBatch(ctx, docs)
	if err != nil {
		return fmt.Errorf("embedding batch: %w", err)
	}

	records := make([]retrieval.Record, len(ids))
	for i, id := range ids {
		retrieval.NormalizeVector(vectors[i])
		records[i] = retrieval.Record{RecipeID: id, Embedding: vectors[i]}
	}
	if err := in.index.Insert(records); err != nil {
		return fmt.Errorf("storing vectors: %w", err)
	}
	return nil
}

func parseRow(record []string, cols map[string]int) (storage.Recipe, []string, []string, error) {
	cell := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(record) {
			return ""
		}
		return record[i]
	}

	name := strings.TrimSpace(cell("name"))
	if name == "" {
		return storage.Recipe{}, nil, nil, fmt.Errorf("empty name")
	}

	var nutrition []float64
	if err := json.Unmarshal([]byte(cell("nutrition")), &nutrition); err != nil {
		return storage.Recipe{}, nil, nil, fmt.Errorf("parsing nutrition: %w", err)
	}
	if len(nutrition) != nutritionValues {
		return storage.Recipe{}, nil, nil, fmt.Errorf("nutrition has %d values, want %d", len(nutrition), nutritionValues)
	}

	steps, err := parseStringList(cell("steps"))
	if err != nil {
		return storage.Recipe{}, nil, nil, fmt.Errorf("parsing steps: %w", err)
	}
	ingredients, err := parseStringList(cell("ingredients"))
	if err != nil {
		return storage.Recipe{}, nil, nil, fmt.Errorf("parsing ingredients: %w", err)
	}
	tags, err := parseStringList(cell("tags"))
	if err != nil {
		return storage.Recipe{}, nil, nil, fmt.Errorf("parsing tags: %w", err)
	}

	recipe := storage.Recipe{
		Name:            name,
		Description:     strings.TrimSpace(cell("description")),
		Minutes:         parseIntCell(cell("minutes")),
		NSteps:          len(steps),
		NIngredients:    len(ingredients),
		Calories:        nutrition[0],
		TotalFatPDV:     nutrition[1],
		SugarPDV:        nutrition[2],
		SodiumPDV:       nutrition[3],
		ProteinPDV:      nutrition[4],
		SaturatedFatPDV: nutrition[5],
		CarbsPDV:        nutrition[6],
		StepsJSON:       mustMarshal(steps),
		IngredientsJSON: mustMarshal(ingredients),
		TagsJSON:        mustMarshal(tags),
		Document:        buildDocument(name, cell("description"), ingredients, tags),
		Instructions:    buildInstructions(steps),
	}
	return recipe, ingredients, tags, nil
}

func parseStringList(raw string) ([]string, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var items []string
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, err
	}
	return items, nil
}

func parseIntCell(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0
	}
	return n
}

func mustMarshal(items []string) string {
	if items == nil {
		items = []string{}
	}
	b, _ := json.Marshal(items)
	return string(b)
}

// buildDocument composes the text the embedding index is built from.
func buildDocument(name, description string, ingredients, tags []string) string {
	var b strings.Builder
	b.WriteString(name)
	if strings.TrimSpace(description) != "" {
		b.WriteString("\n")
		b.WriteString(strings.TrimSpace(description))
	}
	if len(ingredients) > 0 {
		b.WriteString("\nIngredients: ")
		b.WriteString(strings.Join(ingredients, ", "))
	}
	if len(tags) > 0 {
		b.WriteString("\nTags: ")
		b.WriteString(strings.Join(tags, ", "))
	}
	return b.String()
}

// buildInstructions renders steps as a numbered list.
func buildInstructions(steps []string) string {
	if len(steps) == 0 {
		return ""
	}
	var b strings.Builder
	for i, step := range steps {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%d. %s", i+1, strings.TrimSpace(step))
	}
	return b.String()
}
