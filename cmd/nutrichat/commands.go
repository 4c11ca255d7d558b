package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nutrichat/nutrichat/internal/config"
	"github.com/nutrichat/nutrichat/internal/engine"
	"github.com/nutrichat/nutrichat/internal/ingest"
	"github.com/nutrichat/nutrichat/internal/retrieval"
	"github.com/nutrichat/nutrichat/internal/storage"
)

// --- ingest ---

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Build the recipe database and embedding index from a dataset CSV",
	Long: `Build the recipe database and embedding index from a dataset CSV.

The CSV must carry name, nutrition, steps, ingredients, and tags columns,
with list cells encoded as JSON arrays. Ingestion runs locally and requires
Ollama with the configured embedding model.

Example:
  nutrichat ingest --csv ./recipes.csv`,
	RunE: func(cmd *cobra.Command, args []string) error {
		csvPath, _ := cmd.Flags().GetString("csv")
		if csvPath == "" {
			return fmt.Errorf("--csv is required")
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		setupLogging(cfg.Log.Level)

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		eng := engine.NewOllamaClient(cfg.Ollama.BaseURL)
		if err := engine.EnsureReady(ctx, eng, cfg.Ollama.EmbedModel, os.Stderr); err != nil {
			return err
		}

		store, err := storage.Open(cfg.Storage.DataDir)
		if err != nil {
			return fmt.Errorf("opening storage: %w", err)
		}
		defer store.Close()

		index := retrieval.NewSQLiteIndex(store.DB())
		embedder := retrieval.NewEmbedder(eng, cfg.Ollama.EmbedModel)

		ingestor := ingest.NewIngestor(store, embedder, index, slog.Default())
		if err := ingestor.RunFromCSV(ctx, csvPath); err != nil {
			return err
		}

		count, err := store.CountRecipes(ctx)
		if err != nil {
			return err
		}
		printSuccess("Ingested dataset: %d recipes indexed", count)
		return nil
	},
}

func init() {
	ingestCmd.Flags().String("csv", "", "path to the dataset CSV")
}

// --- tools ---

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List tools registered on the running server",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), "/v1/tools")
		if err != nil {
			return err
		}

		var body struct {
			Tools []struct {
				Name        string `json:"name"`
				Description string `json:"description"`
				Kind        string `json:"kind"`
				Version     string `json:"version"`
			} `json:"tools"`
		}
		if err := decodeJSON(resp, &body); err != nil {
			return err
		}

		for _, t := range body.Tools {
			fmt.Printf("  %s (%s, v%s)\n      %s\n", colorize(colorBold, t.Name), t.Kind, t.Version, t.Description)
		}
		return nil
	},
}

// --- call ---

var callCmd = &cobra.Command{
	Use:   "call <tool>",
	Short: "Invoke a tool on the running server",
	Long: `Invoke a tool on the running server and print the result envelope.

Examples:
  nutrichat call recipe_lookup --args '{"query": "spicy lentil soup", "k": 3}'
  nutrichat call nutrition_analyzer --args '{"recipe_ids": [12, 98]}'`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rawArgs, _ := cmd.Flags().GetString("args")

		toolArgs := map[string]any{}
		if rawArgs != "" {
			if err := json.Unmarshal([]byte(rawArgs), &toolArgs); err != nil {
				return fmt.Errorf("parsing --args: %w", err)
			}
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.post(cmd.Context(), "/v1/tools/"+args[0], toolArgs)
		if err != nil {
			return err
		}

		var result json.RawMessage
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		var pretty map[string]any
		if err := json.Unmarshal(result, &pretty); err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(pretty)
	},
}

func init() {
	callCmd.Flags().String("args", "", "tool arguments as a JSON object")
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		for _, k := range config.ShowAll(cfg) {
			fmt.Printf("  %s = %s\n", colorize(colorBold, k.Key), k.Value)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]
		if err := config.SetKey(key, value); err != nil {
			return err
		}
		printSuccess("Set %s = %s", key, value)
		return nil
	},
}

var configUnsetCmd = &cobra.Command{
	Use:   "unset <key>",
	Short: "Revert a configuration value to its default",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.UnsetKey(args[0]); err != nil {
			return err
		}
		printSuccess("Unset %s", args[0])
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configUnsetCmd)
}
