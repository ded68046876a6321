package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ppiankov/ciscope/internal/ingest"
	"github.com/ppiankov/ciscope/internal/model"
	"github.com/ppiankov/ciscope/internal/pipeline"
	"github.com/ppiankov/ciscope/internal/retrieval"
	"github.com/spf13/cobra"
)

var indexTimeout time.Duration

// indexCmd represents the index command
var indexCmd = &cobra.Command{
	Use:   "index <docs-dir>",
	Short: "Chunk and embed a document corpus",
	Long: `Index chunks a directory of competitor documents, embeds the chunks
and reports corpus statistics. Embeddings land in the cache, so a
subsequent 'ciscope analyze --docs' run over the same corpus skips the
embedding round-trips.

Example:
  ciscope index ./corpus`,
	Args: cobra.ExactArgs(1),
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
	indexCmd.Flags().DurationVar(&indexTimeout, "timeout", 5*time.Minute, "indexing timeout")
}

func runIndex(cmd *cobra.Command, args []string) error {
	dir := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), indexTimeout)
	defer cancel()

	cfg := model.DefaultConfig()
	cfg.Output.Verbose = verbose
	cfg.Embedding.APIKey = os.Getenv("OPENAI_API_KEY")
	if cfg.Embedding.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY environment variable not set")
	}

	chunker := ingest.NewChunker(cfg.Ingest)
	chunks, err := ingest.LoadDocuments(dir, chunker)
	if err != nil {
		return fmt.Errorf("load documents: %w", err)
	}
	if len(chunks) == 0 {
		return fmt.Errorf("no indexable documents in %s", dir)
	}

	embedder, err := pipeline.NewEmbedder(cfg)
	if err != nil {
		return fmt.Errorf("build embedder: %w", err)
	}

	retriever := retrieval.NewHybridRetriever(embedder, cfg.Retrieval, verbose)
	start := time.Now()
	if err := retriever.Index(ctx, chunks); err != nil {
		return fmt.Errorf("index corpus: %w", err)
	}

	fmt.Printf("✓ Indexed %d chunks from %s in %.1fs\n", retriever.NumChunks(), dir, time.Since(start).Seconds())
	return nil
}
