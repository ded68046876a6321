package stance

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/ppiankov/ciscope/internal/model"
)

// Impact codes where competitor progress hurts our program.
var negativeForUs = map[model.ImpactCode]bool{
	model.ImpactCompetitiveThreat:    true,
	model.ImpactTimelineAdvance:      true,
	model.ImpactBiomarkerOpportunity: true,
}

// Impact codes where a competitor setback helps our program.
var positiveForUs = map[model.ImpactCode]bool{
	model.ImpactTimelineSlip:   true,
	model.ImpactRegulatoryRisk: true,
	model.ImpactSafetyRisk:     true,
}

// Scorer assigns stances relative to one program profile. Safe for
// concurrent use: the program sets are computed once and never mutated.
type Scorer struct {
	cfg       model.StanceConfig
	extractor *Extractor
	program   map[string]map[string]bool
}

// NewScorer builds a scorer for the given profile. Category weights must be
// present and sum to a positive total, otherwise every overlap would score
// zero and every stance would degrade to Neutral.
func NewScorer(profile model.ProgramProfile, vocab model.StanceVocabulary, cfg model.StanceConfig) (*Scorer, error) {
	if err := profile.Validate(); err != nil {
		return nil, fmt.Errorf("stance scorer: %w", err)
	}
	if err := validateWeights(cfg.Weights); err != nil {
		return nil, fmt.Errorf("stance scorer: %w", err)
	}
	extractor, err := NewExtractor(vocab)
	if err != nil {
		return nil, fmt.Errorf("stance scorer: %w", err)
	}
	return &Scorer{
		cfg:       cfg,
		extractor: extractor,
		program:   extractor.ProgramEntities(profile),
	}, nil
}

// Overlap computes the weighted Jaccard similarity between the program and
// the competitor entities, returning the rounded total and the per-category
// breakdown. An empty set on either side contributes nothing: absence is
// never treated as a match.
func (s *Scorer) Overlap(competitorEntities []string) (float64, map[string]float64) {
	competitor := s.extractor.CompetitorEntities(competitorEntities)

	breakdown := make(map[string]float64, len(categories))
	total := 0.0
	for _, cat := range categories {
		j := jaccard(s.program[cat], competitor[cat])
		breakdown[cat] = j
		total += j * s.cfg.Weights[cat]
	}
	return math.Round(total*100) / 100, breakdown
}

// Analyze computes the overlap for the signal's originating entities and
// returns an enriched copy. The input signal is never mutated.
func (s *Scorer) Analyze(sig model.Signal, competitorEntities []string) model.Signal {
	overlap, breakdown := s.Overlap(competitorEntities)
	stance, rationale := s.determine(overlap, sig.ImpactCode, breakdown)
	return sig.WithStance(stance, rationale, overlap)
}

// determine maps (overlap, impact code) onto a stance. The high-overlap
// branch with a directionless impact code degrades to POTENTIALLY_HARMFUL
// rather than NEUTRAL: a close competitor doing anything notable warrants
// attention.
func (s *Scorer) determine(overlap float64, code model.ImpactCode, breakdown map[string]float64) (model.Stance, string) {
	switch {
	case overlap >= s.cfg.HighOverlap:
		switch {
		case negativeForUs[code]:
			return model.StanceHarmful, s.rationale(model.StanceHarmful, overlap, code, breakdown, true)
		case positiveForUs[code]:
			return model.StanceHelpful, s.rationale(model.StanceHelpful, overlap, code, breakdown, true)
		default:
			return model.StancePotentiallyHarmful, s.rationale(model.StancePotentiallyHarmful, overlap, code, breakdown, false)
		}
	case overlap >= s.cfg.MediumOverlap:
		switch {
		case negativeForUs[code]:
			return model.StancePotentiallyHarmful, s.rationale(model.StancePotentiallyHarmful, overlap, code, breakdown, false)
		case positiveForUs[code]:
			return model.StancePotentiallyHelpful, s.rationale(model.StancePotentiallyHelpful, overlap, code, breakdown, false)
		default:
			return model.StanceNeutral, fmt.Sprintf(
				"Moderate overlap (score=%s) with neutral impact. Limited strategic implications for our program.",
				formatScore(overlap))
		}
	}
	return model.StanceNeutral, fmt.Sprintf(
		"Low overlap (score=%s) with our program. Minimal strategic implications.", formatScore(overlap))
}

// rationale cites the top overlapping categories so the stance is auditable.
func (s *Scorer) rationale(stance model.Stance, overlap float64, code model.ImpactCode, breakdown map[string]float64, detailed bool) string {
	top := topCategories(breakdown, 2)

	if detailed {
		matchDetail := "Similar program"
		if len(top) > 0 {
			matchDetail = "Overlaps on " + strings.Join(top, ", ")
		}
		direction := "weakens their position"
		if stance == model.StanceHarmful {
			direction = "strengthens their position"
		}
		return fmt.Sprintf("%s to our program (overlap score=%s). %s. Competitor's %s in overlapping indication %s relative to our timeline.",
			stance, formatScore(overlap), matchDetail, strings.ToLower(string(code)), direction)
	}

	matched := "some factors"
	if len(top) > 0 {
		matched = top[0]
	}
	return fmt.Sprintf("%s (overlap score=%s). Moderate overlap on %s. Monitor for strategic implications.",
		stance, formatScore(overlap), matched)
}

func validateWeights(weights map[string]float64) error {
	total := 0.0
	for _, cat := range categories {
		w := weights[cat]
		if w < 0 {
			return fmt.Errorf("weight for category %s is negative (%v)", cat, w)
		}
		total += w
	}
	if total <= 0 {
		return fmt.Errorf("category weights missing or sum to zero")
	}
	return nil
}

func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	intersection := 0
	for k := range a {
		if b[k] {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	return float64(intersection) / float64(union)
}

// topCategories returns up to n categories scoring above 0.1, highest
// first, ties broken by the fixed category order.
func topCategories(breakdown map[string]float64, n int) []string {
	ranked := make([]string, 0, len(categories))
	for _, cat := range categories {
		if breakdown[cat] > 0.1 {
			ranked = append(ranked, cat)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return breakdown[ranked[i]] > breakdown[ranked[j]]
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

func formatScore(score float64) string {
	return strconv.FormatFloat(score, 'g', -1, 64)
}
