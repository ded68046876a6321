package model

import "time"

// RetrievalConfig tunes the hybrid retriever.
type RetrievalConfig struct {
	SparseTopN int     `yaml:"sparse_top_n"` // candidates from the BM25 index
	DenseTopN  int     `yaml:"dense_top_n"`  // candidates from the vector index
	FinalTopK  int     `yaml:"final_top_k"`  // results returned after fusion
	RRFK       float64 `yaml:"rrf_k"`        // reciprocal rank fusion constant
	RerankTopK int     `yaml:"rerank_top_k"` // results kept after reranking
}

// ScoringConfig tunes the signal score adjustments applied on top of fact
// confidence.
type ScoringConfig struct {
	CriticalImpactBoost float64 `yaml:"critical_impact_boost"` // regulatory/safety risks
	HighImpactBoost     float64 `yaml:"high_impact_boost"`     // timeline slips, threats
	NeutralPenalty      float64 `yaml:"neutral_penalty"`
	MinScore            float64 `yaml:"min_score"`
	MaxScore            float64 `yaml:"max_score"`
}

// StanceConfig tunes overlap thresholds and the per-category Jaccard weights.
// The weights sum to 1.0 by construction.
type StanceConfig struct {
	HighOverlap   float64            `yaml:"high_overlap_threshold"`
	MediumOverlap float64            `yaml:"medium_overlap_threshold"`
	Weights       map[string]float64 `yaml:"weights"`
}

// ReportConfig tunes report generation and the critic.
type ReportConfig struct {
	MaxSummaryBullets    int `yaml:"max_summary_bullets"`
	MaxWhatHappenedFacts int `yaml:"max_what_happened_facts"`
	MaxValuesPerFact     int `yaml:"max_values_per_fact"`
	MaxNumbersInTable    int `yaml:"max_numbers_in_table"`
	MinActions           int `yaml:"min_actions"` // critic gate 4 minimum
	MaxSentenceSplits    int `yaml:"max_sentence_splits"`
}

// EmbeddingConfig tunes the embedding client.
type EmbeddingConfig struct {
	Model             string        `yaml:"model"`
	BatchSize         int           `yaml:"batch_size"`
	Timeout           time.Duration `yaml:"timeout"`
	MaxRetries        int           `yaml:"max_retries"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	APIKey            string        `yaml:"-"` // from OPENAI_API_KEY, never persisted
	BaseURL           string        `yaml:"base_url,omitempty"`
}

// LLMConfig configures the optional LLM provider backing the reranker's
// pairwise relevance model.
type LLMConfig struct {
	Provider  string `yaml:"provider"` // openai, anthropic, ollama, "" (disabled)
	Model     string `yaml:"model"`
	APIKey    string `yaml:"-"`
	BaseURL   string `yaml:"base_url,omitempty"`
	Timeout   int    `yaml:"timeout"` // seconds
	MaxTokens int    `yaml:"max_tokens"`
}

// CacheConfig configures the layered embedding cache.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	Dir     string        `yaml:"dir,omitempty"` // default ~/.ciscope/cache
	TTL     time.Duration `yaml:"ttl"`
}

// ConcurrencyConfig bounds parallel work.
type ConcurrencyConfig struct {
	EmbedWorkers int `yaml:"embed_workers"`
}

// IngestConfig tunes document chunking.
type IngestConfig struct {
	ChunkSize    int `yaml:"chunk_size"`    // words per chunk
	ChunkOverlap int `yaml:"chunk_overlap"` // words shared between neighbours
}

// OutputConfig controls CLI output behaviour.
type OutputConfig struct {
	Verbose bool `yaml:"verbose"`
}

// SignalVocabulary holds the keyword lists the impact classifier matches
// against. They are data, not code: tests and deployments can extend them
// without touching the rule engine.
type SignalVocabulary struct {
	TimelineSlip            []string `yaml:"timeline_slip"`
	RegulatoryRisk          []string `yaml:"regulatory_risk"`
	TimelineAdvance         []string `yaml:"timeline_advance"`
	TimelineAdvanceNegation []string `yaml:"timeline_advance_negation"`
	SafetyRisk              []string `yaml:"safety_risk"`
	BiomarkerOpportunity    []string `yaml:"biomarker_opportunity"`
	CompetitiveThreat       []string `yaml:"competitive_threat"`
	CompetitiveNegation     []string `yaml:"competitive_negation"`
}

// LinePattern maps a line-of-therapy regex to its canonical form,
// e.g. "first-line" and "1l" both normalize to "1L".
type LinePattern struct {
	Pattern    string `yaml:"pattern"`
	Normalized string `yaml:"normalized"`
}

// StanceVocabulary holds the per-category patterns the entity extractor
// matches against profile and competitor text.
type StanceVocabulary struct {
	Targets    []string      `yaml:"targets"`
	Diseases   []string      `yaml:"diseases"`
	Lines      []LinePattern `yaml:"lines"`
	Biomarkers []string      `yaml:"biomarkers"`
	Mechanisms []string      `yaml:"mechanisms"`
}

// Config is the complete ciscope configuration.
type Config struct {
	Retrieval   RetrievalConfig   `yaml:"retrieval"`
	Scoring     ScoringConfig     `yaml:"scoring"`
	Stance      StanceConfig      `yaml:"stance"`
	Report      ReportConfig      `yaml:"report"`
	Embedding   EmbeddingConfig   `yaml:"embedding"`
	LLM         LLMConfig         `yaml:"llm"`
	Cache       CacheConfig       `yaml:"cache"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	Ingest      IngestConfig      `yaml:"ingest"`
	Output      OutputConfig      `yaml:"output"`
	Signals     SignalVocabulary  `yaml:"signals"`
	Entities    StanceVocabulary  `yaml:"entities"`
}

// DefaultConfig returns the built-in defaults. Flag, env and file values
// override these through the CLI layer.
func DefaultConfig() *Config {
	return &Config{
		Retrieval: RetrievalConfig{
			SparseTopN: 50,
			DenseTopN:  50,
			FinalTopK:  10,
			RRFK:       60,
			RerankTopK: 10,
		},
		Scoring: ScoringConfig{
			CriticalImpactBoost: 0.15,
			HighImpactBoost:     0.10,
			NeutralPenalty:      0.20,
			MinScore:            0.1,
			MaxScore:            1.0,
		},
		Stance: StanceConfig{
			HighOverlap:   0.55,
			MediumOverlap: 0.3,
			Weights: map[string]float64{
				"target":    0.35,
				"disease":   0.25,
				"line":      0.20,
				"biomarker": 0.15,
				"moa":       0.05,
			},
		},
		Report: ReportConfig{
			MaxSummaryBullets:    5,
			MaxWhatHappenedFacts: 7,
			MaxValuesPerFact:     2,
			MaxNumbersInTable:    3,
			MinActions:           3,
			MaxSentenceSplits:    100,
		},
		Embedding: EmbeddingConfig{
			Model:             "text-embedding-3-large",
			BatchSize:         50,
			Timeout:           60 * time.Second,
			MaxRetries:        3,
			RequestsPerSecond: 5,
		},
		LLM: LLMConfig{
			Provider:  "", // reranking disabled by default
			Timeout:   30,
			MaxTokens: 64,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     14 * 24 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			EmbedWorkers: 4,
		},
		Ingest: IngestConfig{
			ChunkSize:    220,
			ChunkOverlap: 40,
		},
		Signals:  DefaultSignalVocabulary(),
		Entities: DefaultStanceVocabulary(),
	}
}

// DefaultSignalVocabulary returns the built-in impact keyword lists.
// Keywords are matched against the lowercased event type.
func DefaultSignalVocabulary() SignalVocabulary {
	return SignalVocabulary{
		TimelineSlip: []string{
			"trial halt", "clinical hold", "partial hold", "full hold",
			"site pause", "enrollment pause", "dose pause",
			"study suspension", "trial suspension", "halted",
			"delayed", "postponed",
		},
		RegulatoryRisk: []string{
			"crl", "complete response letter",
			"refuse to file", "refuse-to-file", "rtf",
			"withdrawn", "withdrawal", "accelerated approval withdrawn",
			"not approvable", "deficiency letter",
			"regulatory setback", "filing delay",
		},
		TimelineAdvance: []string{
			"breakthrough therapy", "btd",
			"fast track", "priority review",
			"prime designation", "prime",
			"accelerated approval", "conditional approval",
			"phase 3 initiation", "phase 3 start",
			"pivotal trial", "registration trial",
			"rolling submission", "nda filing", "bla filing",
			"maa filing", "regulatory filing",
		},
		TimelineAdvanceNegation: []string{"withdrawn", "denied", "rejected"},
		SafetyRisk: []string{
			"safety", "adverse event", "ae", "sae",
			"grade ≥3", "grade 3", "grade 4", "grade 5",
			"serious adverse event", "treatment-related ae",
			"discontinuation", "dose reduction",
			"black box warning", "safety signal",
		},
		BiomarkerOpportunity: []string{
			"biomarker", "companion diagnostic", "companion dx",
			"predictive biomarker", "biomarker validation",
			"diagnostic approval", "cdx approval",
			"biomarker-selected", "biomarker enrichment",
		},
		CompetitiveThreat: []string{
			"approval", "market authorization",
			"launch", "commercial launch",
			"positive phase 3", "met primary endpoint",
			"superiority demonstrated",
		},
		CompetitiveNegation: []string{"missed", "failed", "negative", "withdrawn"},
	}
}

// DefaultStanceVocabulary returns the built-in entity extraction patterns.
// Patterns are regular expressions matched against lowercased text.
func DefaultStanceVocabulary() StanceVocabulary {
	return StanceVocabulary{
		Targets: []string{
			`kras\s*g12c`, `kras`,
			`egfr`, `egfr\s+mutation`,
			`her2`, `her2\+?`,
			`braf`, `braf\s+v600e`,
			`alk`, `alk\+?`,
			`ros1`,
			`pd-1`, `pd-l1`, `pdl1`,
			`ctla-4`, `ctla4`,
			`cldn18\.2`, `cldn18`,
			`trop2`,
			`cd3`, `cd20`,
			`vegf`, `vegfr`,
		},
		Diseases: []string{
			`nsclc`, `non-small cell lung cancer`,
			`gastric cancer`, `stomach cancer`,
			`pancreatic cancer`, `pdac`,
			`breast cancer`,
			`colorectal cancer`, `crc`,
			`melanoma`,
			`renal cell carcinoma`, `rcc`,
			`bladder cancer`,
			`ovarian cancer`,
			`prostate cancer`,
			`hcc`, `hepatocellular carcinoma`,
		},
		Lines: []LinePattern{
			{Pattern: `1l\b`, Normalized: "1L"},
			{Pattern: `2l\+?`, Normalized: "2L"},
			{Pattern: `3l\+?`, Normalized: "3L"},
			{Pattern: `first.{0,2}line`, Normalized: "1L"},
			{Pattern: `second.{0,2}line`, Normalized: "2L"},
			{Pattern: `third.{0,2}line`, Normalized: "3L"},
			{Pattern: `previously treated`, Normalized: "2L+"},
			{Pattern: `treatment.{0,10}naive`, Normalized: "1L"},
		},
		Biomarkers: []string{
			`pd-l1`, `pdl1`,
			`her2`, `her2\+`,
			`egfr`, `egfr mutation`,
			`kras`, `kras g12c`, `kras mutation`,
			`braf`, `braf v600e`,
			`alk`, `alk\+`,
			`ros1`,
			`ntrk`, `ntrk fusion`,
			`brca`, `brca mutation`,
			`msi-h`, `microsatellite instability`,
			`tmb-h`, `tumor mutational burden`,
		},
		Mechanisms: []string{
			`pd-1 inhibitor`, `pd-l1 inhibitor`,
			`ctla-4 inhibitor`,
			`her2 inhibitor`, `her2 adc`,
			`egfr inhibitor`, `egfr tki`,
			`kras inhibitor`, `kras g12c inhibitor`,
			`cdk4/6 inhibitor`,
			`parp inhibitor`,
			`vegf inhibitor`, `anti-vegf`,
			`adc`, `antibody.drug conjugate`,
			`car-t`, `car t-cell`,
			`bispecific`, `bispecific antibody`,
			`chemotherapy`, `chemo`,
		},
	}
}
