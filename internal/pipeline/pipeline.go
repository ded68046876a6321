package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ppiankov/ciscope/internal/cache"
	"github.com/ppiankov/ciscope/internal/classify"
	"github.com/ppiankov/ciscope/internal/embed"
	"github.com/ppiankov/ciscope/internal/llm"
	"github.com/ppiankov/ciscope/internal/model"
	"github.com/ppiankov/ciscope/internal/report"
	"github.com/ppiankov/ciscope/internal/retrieval"
	"github.com/ppiankov/ciscope/internal/signal"
	"github.com/ppiankov/ciscope/internal/stance"
	"github.com/ppiankov/ciscope/internal/worker"
)

// Pipeline orchestrates one analysis run: retrieve, rerank, classify,
// stance, write, critique.
type Pipeline struct {
	retriever *retrieval.HybridRetriever
	reranker  *retrieval.Reranker
	builder   *signal.Builder
	writer    *report.Writer
	critic    *report.Critic
	config    *model.Config
	program   model.ProgramProfile
	now       func() time.Time
}

// Input carries the corpus and facts for one run.
type Input struct {
	// Query drives retrieval over the indexed chunks.
	Query string

	// Chunks is the passage corpus to index. May be empty: the report is
	// then built from facts alone.
	Chunks []model.Chunk

	// Facts are the structured claims signals are built from.
	Facts []model.Fact
}

// Result pairs the report with the retrieved evidence passages.
type Result struct {
	Report   *model.Report
	Passages []retrieval.Passage
}

// NewPipeline creates a pipeline with the given configuration and program
// profile. The profile is required: stance scoring has no meaning without
// a program to compare against.
func NewPipeline(cfg *model.Config, profile model.ProgramProfile) (*Pipeline, error) {
	embedder, err := NewEmbedder(cfg)
	if err != nil {
		return nil, fmt.Errorf("build embedder: %w", err)
	}

	// A broken reranker provider degrades to fused order rather than
	// failing construction.
	var relevance retrieval.RelevanceModel
	provider, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM))
	if err != nil {
		fmt.Printf("Warning: Failed to initialize LLM provider: %v\n", err)
	} else if provider != nil {
		scorer, err := llm.NewRelevanceScorer(provider, cfg.LLM.Model)
		if err != nil {
			fmt.Printf("Warning: Failed to initialize relevance scorer: %v\n", err)
		} else {
			relevance = scorer
		}
	}

	return newPipeline(cfg, profile, embedder, relevance)
}

// newPipeline wires the collaborators. Split from NewPipeline so tests can
// inject embedder and relevance fakes.
func newPipeline(cfg *model.Config, profile model.ProgramProfile, embedder embed.Embedder, relevance retrieval.RelevanceModel) (*Pipeline, error) {
	if err := profile.Validate(); err != nil {
		return nil, fmt.Errorf("program profile: %w", err)
	}

	stanceScorer, err := stance.NewScorer(profile, cfg.Entities, cfg.Stance)
	if err != nil {
		return nil, fmt.Errorf("stance scorer: %w", err)
	}

	classifier := classify.NewImpactClassifier(cfg.Signals, cfg.Scoring)
	verbose := cfg.Output.Verbose

	return &Pipeline{
		retriever: retrieval.NewHybridRetriever(embedder, cfg.Retrieval, verbose),
		reranker:  retrieval.NewReranker(relevance, verbose),
		builder:   signal.NewBuilder(classifier, stanceScorer, verbose),
		writer:    report.NewWriter(profile.ProgramName, cfg.Report),
		critic:    report.NewCritic(cfg.Report),
		config:    cfg,
		program:   profile,
		now:       time.Now,
	}, nil
}

// NewEmbedder assembles the embedding stack: OpenAI backend, layered
// cache when enabled, concurrent batch dispatch when configured.
func NewEmbedder(cfg *model.Config) (embed.Embedder, error) {
	var embedder embed.Embedder
	embedder, err := embed.NewOpenAIEmbedder(cfg.Embedding)
	if err != nil {
		return nil, err
	}

	if cfg.Cache.Enabled {
		dir := cfg.Cache.Dir
		if dir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, fmt.Errorf("resolve cache dir: %w", err)
			}
			dir = filepath.Join(home, ".ciscope", "cache")
		}
		layered := cache.NewLayeredCache(cfg.Cache.TTL, dir, cfg.Cache.TTL)
		embedder = embed.NewCachedEmbedder(embedder, layered, cfg.Embedding.Model, cfg.Cache.TTL)
	}

	if cfg.Concurrency.EmbedWorkers > 1 {
		embedder = worker.NewParallelEmbedder(embedder, cfg.Embedding.BatchSize, cfg.Concurrency.EmbedWorkers)
	}

	return embedder, nil
}

// Run executes the full analysis and returns the report with its evidence
// passages. The report is always built; a critic failure is recorded on it,
// not returned as an error.
func (p *Pipeline) Run(ctx context.Context, in Input) (*Result, error) {
	if in.Query == "" {
		return nil, fmt.Errorf("query must not be empty")
	}

	start := p.now()

	var passages []retrieval.Passage
	if len(in.Chunks) > 0 {
		if err := p.retriever.Index(ctx, in.Chunks); err != nil {
			return nil, fmt.Errorf("index corpus: %w", err)
		}

		found, err := p.retriever.Search(ctx, in.Query, p.config.Retrieval.FinalTopK, nil)
		if err != nil {
			return nil, fmt.Errorf("search: %w", err)
		}

		passages = p.reranker.Rerank(ctx, in.Query, found, p.config.Retrieval.RerankTopK)
	}

	signals := p.builder.Build(in.Facts)
	actions := p.writer.Actions(signals, in.Facts)
	markdown := p.writer.Render(in.Query, in.Facts, signals, actions)

	passed, violations := p.critic.Run(markdown, in.Facts, actions)
	citation, numeric, action := p.critic.Metrics(markdown, in.Facts, actions)

	rep := &model.Report{
		Query:        in.Query,
		ProgramName:  p.program.ProgramName,
		GeneratedAt:  start.UTC(),
		Facts:        in.Facts,
		Signals:      signals,
		Actions:      actions,
		Markdown:     markdown,
		CriticPassed: passed,
		Violations:   violations,
		Trace: model.TraceMetrics{
			TotalFacts:          len(in.Facts),
			TotalSignals:        len(signals),
			TotalActions:        len(actions),
			CitationCoverage:    citation,
			NumericTraceability: numeric,
			ActionCompleteness:  action,
			ExecutionSeconds:    p.now().Sub(start).Seconds(),
			Model:               p.config.Embedding.Model,
			Timestamp:           start.UTC().Format(time.RFC3339),
		},
	}

	if err := rep.Validate(); err != nil {
		return nil, fmt.Errorf("report validation: %w", err)
	}

	return &Result{Report: rep, Passages: passages}, nil
}
