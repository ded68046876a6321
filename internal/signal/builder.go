// Package signal turns validated facts into classified, optionally
// stance-enriched signals.
package signal

import (
	"fmt"

	"github.com/ppiankov/ciscope/internal/classify"
	"github.com/ppiankov/ciscope/internal/model"
	"github.com/ppiankov/ciscope/internal/stance"
)

// Builder batches facts into signals. A nil stance scorer skips enrichment,
// which lets the pipeline run without a program profile.
type Builder struct {
	classifier *classify.ImpactClassifier
	scorer     *stance.Scorer
	verbose    bool
}

// NewBuilder composes the classifier with an optional stance scorer.
func NewBuilder(classifier *classify.ImpactClassifier, scorer *stance.Scorer, verbose bool) *Builder {
	return &Builder{classifier: classifier, scorer: scorer, verbose: verbose}
}

// Build generates one signal per fact. A fact that fails signal
// construction is skipped with a warning; one bad record must not abort
// the batch.
func (b *Builder) Build(facts []model.Fact) []model.Signal {
	signals := make([]model.Signal, 0, len(facts))
	for i, fact := range facts {
		sig, err := b.classifier.Signal(fact, fmt.Sprintf("sig_%03d", i+1))
		if err != nil {
			if b.verbose {
				fmt.Printf("Warning: skipping fact %s: %v\n", fact.ID, err)
			}
			continue
		}
		if b.scorer != nil {
			sig = b.scorer.Analyze(sig, fact.Entities)
		}
		signals = append(signals, sig)
	}
	return signals
}
