package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/ppiankov/ciscope/internal/ingest"
	"github.com/ppiankov/ciscope/internal/model"
	"github.com/ppiankov/ciscope/internal/pipeline"
	"github.com/ppiankov/ciscope/internal/store"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	factsPath      string
	docsDir        string
	outDir         string
	analyzeTimeout time.Duration
	deltaMode      bool
	noCache        bool
	embedWorkers   int
	llmEnabled     bool
	llmProvider    string
	llmModel       string
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze <query>",
	Short: "Analyze competitor facts against the program profile",
	Long: `Analyze runs the full intelligence pipeline:
- Index competitor documents and retrieve passages for the query
- Build impact signals from structured facts
- Score each signal's stance relative to your program profile
- Render a fully cited Markdown report plus a JSON sidecar
- Validate the report with the built-in critic

Example:
  ciscope analyze "CLDN18.2 gastric cancer readouts" --facts facts.yaml
  ciscope analyze "KRAS inhibitors" --facts facts.json --docs ./corpus --out ./reports
  ciscope analyze "PD-L1 combos" --facts facts.yaml --delta
  ciscope analyze "ADC safety" --facts facts.yaml --llm --llm-provider openai`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVar(&factsPath, "facts", "", "structured facts file, JSON or YAML (required)")
	analyzeCmd.Flags().StringVar(&docsDir, "docs", "", "directory of competitor documents to index (txt/md/html)")
	analyzeCmd.Flags().StringVar(&outDir, "out", "./ciscope-reports", "output directory (must resolve under the current directory)")
	analyzeCmd.Flags().DurationVar(&analyzeTimeout, "timeout", 5*time.Minute, "overall analysis timeout")
	analyzeCmd.Flags().BoolVar(&deltaMode, "delta", false, "compare against the previous run's JSON sidecar in the output directory")
	analyzeCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the embedding cache")
	analyzeCmd.Flags().IntVar(&embedWorkers, "workers", 0, "concurrent embedding workers (0 = config default)")

	// LLM reranker flags
	analyzeCmd.Flags().BoolVar(&llmEnabled, "llm", false, "enable LLM reranking of retrieved passages")
	analyzeCmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "LLM provider (openai, anthropic, ollama)")
	analyzeCmd.Flags().StringVar(&llmModel, "llm-model", "gpt-4o-mini", "LLM model name")

	_ = analyzeCmd.MarkFlagRequired("facts")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	query := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), analyzeTimeout)
	defer cancel()

	resolvedOut, err := resolveOutputDir(outDir)
	if err != nil {
		return err
	}

	cfg, err := buildAnalyzeConfig()
	if err != nil {
		return err
	}

	// The profile is required: stance scoring needs a baseline.
	ps, err := profileStore()
	if err != nil {
		return err
	}
	profile, err := ps.Load()
	if errors.Is(err, store.ErrNoProfile) {
		return fmt.Errorf("no program profile set (run 'ciscope profile set' first)")
	}
	if err != nil {
		return fmt.Errorf("load profile: %w", err)
	}

	facts, rejected, err := ingest.LoadFacts(factsPath)
	if err != nil {
		return fmt.Errorf("load facts: %w", err)
	}
	for _, rerr := range rejected {
		fmt.Fprintf(os.Stderr, "Warning: skipped fact record: %v\n", rerr)
	}
	if len(facts) == 0 {
		return fmt.Errorf("no valid facts in %s", factsPath)
	}

	var chunks []model.Chunk
	if docsDir != "" {
		if cfg.Embedding.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY environment variable not set (required to embed documents)")
		}
		chunker := ingest.NewChunker(cfg.Ingest)
		chunks, err = ingest.LoadDocuments(docsDir, chunker)
		if err != nil {
			return fmt.Errorf("load documents: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "Indexed corpus: %d chunks from %s\n", len(chunks), docsDir)
		}
	}

	p, err := pipeline.NewPipeline(cfg, profile)
	if err != nil {
		return fmt.Errorf("build pipeline: %w", err)
	}

	result, err := p.Run(ctx, pipeline.Input{
		Query:  query,
		Chunks: chunks,
		Facts:  facts,
	})
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	mdPath := filepath.Join(resolvedOut, "report.md")
	jsonPath := filepath.Join(resolvedOut, "report.json")

	// Delta compares against the sidecar the previous run left behind,
	// so it must be read before rendering overwrites it.
	if deltaMode {
		previous, err := pipeline.LoadJSON(jsonPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: no previous run to compare against: %v\n", err)
		} else {
			fmt.Print(pipeline.Diff(previous, result.Report).Format())
		}
	}

	renderer := pipeline.NewRenderer(verbose)
	if err := renderer.RenderReport(result.Report, mdPath, jsonPath); err != nil {
		return err
	}

	if !result.Report.CriticPassed {
		return fmt.Errorf("report failed critic validation (%d violations, see %s)", len(result.Report.Violations), jsonPath)
	}

	return nil
}

// buildAnalyzeConfig assembles configuration in precedence order: built-in
// defaults, then the config file and CISCOPE_* env read by viper, then flags.
func buildAnalyzeConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg, func(dc *mapstructure.DecoderConfig) { dc.TagName = "yaml" }); err != nil {
		return nil, fmt.Errorf("apply configuration: %w", err)
	}
	cfg.Output.Verbose = cfg.Output.Verbose || verbose
	if noCache {
		cfg.Cache.Enabled = false
	}
	if embedWorkers > 0 {
		cfg.Concurrency.EmbedWorkers = embedWorkers
	}

	cfg.Embedding.APIKey = os.Getenv("OPENAI_API_KEY")

	if llmEnabled {
		cfg.LLM.Provider = llmProvider
		cfg.LLM.Model = llmModel

		switch llmProvider {
		case "openai":
			cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
			if cfg.LLM.APIKey == "" {
				return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
			}
		case "anthropic", "claude":
			cfg.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
			if cfg.LLM.APIKey == "" {
				return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
			}
		case "ollama":
			// Ollama doesn't need an API key
			if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
				cfg.LLM.BaseURL = baseURL
			}
		}
	}

	return cfg, nil
}

// resolveOutputDir resolves out against the working directory and rejects
// paths that escape it.
func resolveOutputDir(out string) (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("resolve working directory: %w", err)
	}

	abs := out
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(cwd, out)
	}
	abs = filepath.Clean(abs)

	if abs != cwd && !strings.HasPrefix(abs, cwd+string(filepath.Separator)) {
		return "", fmt.Errorf("output directory %s is outside the working directory", out)
	}

	return abs, nil
}
