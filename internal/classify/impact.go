// Package classify maps extracted facts onto a fixed impact-code taxonomy
// with deterministic rules. No model calls: classification must be
// reproducible run to run.
package classify

import (
	"fmt"
	"math"
	"strings"

	"github.com/ppiankov/ciscope/internal/model"
)

// ImpactClassifier is stateless and safe for concurrent use.
type ImpactClassifier struct {
	vocab   model.SignalVocabulary
	scoring model.ScoringConfig
}

// NewImpactClassifier builds a classifier from the given vocabularies and
// scoring config.
func NewImpactClassifier(vocab model.SignalVocabulary, scoring model.ScoringConfig) *ImpactClassifier {
	return &ImpactClassifier{vocab: vocab, scoring: scoring}
}

// Classify maps a fact to one of eight mutually exclusive impact codes.
// Rules run in fixed priority order and the first match wins: event text
// often matches several keyword sets, and the order encodes which reading
// the domain cares about most (a regulatory setback is reported as such
// even when it also mentions a timeline).
func (c *ImpactClassifier) Classify(fact model.Fact) model.ImpactCode {
	eventType := strings.ToLower(fact.EventType)

	switch {
	case containsAny(eventType, c.vocab.TimelineSlip):
		return model.ImpactTimelineSlip
	case containsAny(eventType, c.vocab.RegulatoryRisk):
		return model.ImpactRegulatoryRisk
	case c.isTimelineAdvance(eventType):
		return model.ImpactTimelineAdvance
	case c.isDesignRisk(eventType, fact.Values):
		return model.ImpactDesignRisk
	case c.isSafetyRisk(eventType, fact.Values):
		return model.ImpactSafetyRisk
	case containsAny(eventType, c.vocab.BiomarkerOpportunity):
		return model.ImpactBiomarkerOpportunity
	case c.isCompetitiveThreat(eventType):
		return model.ImpactCompetitiveThreat
	}
	return model.ImpactNeutral
}

// Signal builds a complete signal for the fact: impact code, adjusted
// score, and a template-generated rationale.
func (c *ImpactClassifier) Signal(fact model.Fact, signalID string) (model.Signal, error) {
	code := c.Classify(fact)
	return model.NewSignal(signalID, fact.ID, code, c.Score(fact, code), c.Rationale(fact, code))
}

// Negation is local to the advance rule: "accelerated approval withdrawn"
// must not read as an advance, but the same words do not suppress other
// rules.
func (c *ImpactClassifier) isTimelineAdvance(eventType string) bool {
	if containsAny(eventType, c.vocab.TimelineAdvanceNegation) {
		return false
	}
	return containsAny(eventType, c.vocab.TimelineAdvance)
}

// Design risk is magnitude-based, not keyword-based: a modest efficacy
// delta against standard of care in the same line.
func (c *ImpactClassifier) isDesignRisk(eventType string, values map[string]any) bool {
	if !strings.Contains(eventType, "efficacy") && !strings.Contains(eventType, "readout") {
		return false
	}
	delta, ok := numericValue(values["delta"])
	if !ok {
		return false
	}
	endpoint, _ := values["endpoint"].(string)
	endpoint = strings.ToLower(endpoint)

	// PFS/OS deltas in months, ORR/response deltas in percentage points.
	if strings.Contains(endpoint, "pfs") || strings.Contains(endpoint, "os") {
		if delta < 3.0 {
			return true
		}
	}
	if strings.Contains(endpoint, "orr") || strings.Contains(endpoint, "response") {
		if delta < 15.0 {
			return true
		}
	}
	return false
}

func (c *ImpactClassifier) isSafetyRisk(eventType string, values map[string]any) bool {
	for _, key := range []string{"ae_rate", "grade3_rate"} {
		if rate, ok := numericValue(values[key]); ok && rate > 50 {
			return true
		}
	}
	return containsAny(eventType, c.vocab.SafetyRisk)
}

func (c *ImpactClassifier) isCompetitiveThreat(eventType string) bool {
	if containsAny(eventType, c.vocab.CompetitiveNegation) {
		return false
	}
	return containsAny(eventType, c.vocab.CompetitiveThreat)
}

// Score starts from the fact's extraction confidence and applies the fixed
// per-category adjustment, clamped and rounded to 2 decimals.
func (c *ImpactClassifier) Score(fact model.Fact, code model.ImpactCode) float64 {
	score := fact.Confidence

	switch code {
	case model.ImpactRegulatoryRisk, model.ImpactSafetyRisk:
		score += c.scoring.CriticalImpactBoost
	case model.ImpactTimelineSlip, model.ImpactCompetitiveThreat:
		score += c.scoring.HighImpactBoost
	case model.ImpactNeutral:
		score -= c.scoring.NeutralPenalty
	}

	if score > c.scoring.MaxScore {
		score = c.scoring.MaxScore
	}
	if score < c.scoring.MinScore {
		score = c.scoring.MinScore
	}
	return math.Round(score*100) / 100
}

// Rationale renders the per-category template: what happened, why it
// matters, and the strategic implication. Deterministic so the report's
// "why" fields are reproducible.
func (c *ImpactClassifier) Rationale(fact model.Fact, code model.ImpactCode) string {
	entities := fact.Entities
	if len(entities) > 3 {
		entities = entities[:3]
	}
	who := strings.Join(entities, ", ")
	what := fact.EventType

	switch code {
	case model.ImpactTimelineSlip:
		return fmt.Sprintf("%s for %s delays competitor timeline by 6-12 months. "+
			"This provides window for our program to advance positioning in overlapping indication.", what, who)
	case model.ImpactRegulatoryRisk:
		return fmt.Sprintf("%s for %s indicates regulatory scrutiny in this indication. "+
			"Our program should anticipate similar concerns and proactively address in regulatory strategy.", what, who)
	case model.ImpactTimelineAdvance:
		return fmt.Sprintf("%s for %s accelerates competitor approval timeline. "+
			"May compress our window for differentiation and requires expedited development if targeting same indication.", what, who)
	case model.ImpactDesignRisk:
		return fmt.Sprintf("%s shows modest efficacy benefit for %s. "+
			"Raises bar for clinical meaningfulness in this indication; our trial design should target larger effect size.", what, who)
	case model.ImpactSafetyRisk:
		return fmt.Sprintf("%s for %s reveals safety liability in drug class. "+
			"If we share mechanism, proactive safety monitoring and mitigation strategy required.", what, who)
	case model.ImpactBiomarkerOpportunity:
		return fmt.Sprintf("%s for %s validates predictive biomarker approach. "+
			"Could enable patient enrichment strategy for our program to improve efficacy signal.", what, who)
	case model.ImpactCompetitiveThreat:
		return fmt.Sprintf("%s for %s strengthens competitor position in target indication. "+
			"Requires differentiation strategy on efficacy, safety, or patient population.", what, who)
	}
	return fmt.Sprintf("%s for %s noted. Limited strategic implications for our program at this time.", what, who)
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func numericValue(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
