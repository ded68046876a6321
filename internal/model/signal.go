package model

import "fmt"

// ImpactCode classifies the strategic meaning of a competitive event.
// The eight codes are closed: the classifier and the stance policy switch
// over all of them, so a new code forces every site to be revisited.
type ImpactCode string

const (
	ImpactTimelineSlip         ImpactCode = "Timeline slip"
	ImpactTimelineAdvance      ImpactCode = "Timeline advance"
	ImpactRegulatoryRisk       ImpactCode = "Regulatory risk"
	ImpactDesignRisk           ImpactCode = "Design risk"
	ImpactSafetyRisk           ImpactCode = "Safety risk"
	ImpactBiomarkerOpportunity ImpactCode = "Biomarker opportunity"
	ImpactCompetitiveThreat    ImpactCode = "Competitive threat"
	ImpactNeutral              ImpactCode = "Neutral"
)

// ImpactCodes lists all valid impact codes.
func ImpactCodes() []ImpactCode {
	return []ImpactCode{
		ImpactTimelineSlip,
		ImpactTimelineAdvance,
		ImpactRegulatoryRisk,
		ImpactDesignRisk,
		ImpactSafetyRisk,
		ImpactBiomarkerOpportunity,
		ImpactCompetitiveThreat,
		ImpactNeutral,
	}
}

// Valid reports whether the code is one of the eight known categories.
func (c ImpactCode) Valid() bool {
	switch c {
	case ImpactTimelineSlip, ImpactTimelineAdvance, ImpactRegulatoryRisk,
		ImpactDesignRisk, ImpactSafetyRisk, ImpactBiomarkerOpportunity,
		ImpactCompetitiveThreat, ImpactNeutral:
		return true
	}
	return false
}

// Stance is a program-relative label: does a competitor signal help or hurt
// the user's own program.
type Stance string

const (
	StanceHarmful            Stance = "Harmful"
	StanceHelpful            Stance = "Helpful"
	StancePotentiallyHarmful Stance = "Potentially harmful"
	StancePotentiallyHelpful Stance = "Potentially helpful"
	StanceNeutral            Stance = "Neutral"
)

// Valid reports whether the stance is one of the five known labels.
func (s Stance) Valid() bool {
	switch s {
	case StanceHarmful, StanceHelpful, StancePotentiallyHarmful,
		StancePotentiallyHelpful, StanceNeutral:
		return true
	}
	return false
}

// Signal is a derived interpretation of exactly one Fact. The stance fields
// start empty and are filled by a second pass once a program profile is
// known; enrichment produces a new Signal value rather than mutating in
// place, so a partially-enriched Signal is never observable.
type Signal struct {
	ID              string     `json:"id" yaml:"id"`
	FromFact        string     `json:"from_fact" yaml:"from_fact"`
	ImpactCode      ImpactCode `json:"impact_code" yaml:"impact_code"`
	Score           float64    `json:"score" yaml:"score"`
	Why             string     `json:"why" yaml:"why"`
	Stance          Stance     `json:"stance,omitempty" yaml:"stance,omitempty"`
	StanceRationale string     `json:"stance_rationale,omitempty" yaml:"stance_rationale,omitempty"`
	OverlapScore    *float64   `json:"overlap_score,omitempty" yaml:"overlap_score,omitempty"`
}

// NewSignal builds a Signal without stance fields and validates it.
func NewSignal(id, fromFact string, code ImpactCode, score float64, why string) (Signal, error) {
	s := Signal{
		ID:         id,
		FromFact:   fromFact,
		ImpactCode: code,
		Score:      score,
		Why:        why,
	}
	if err := s.Validate(); err != nil {
		return Signal{}, err
	}
	return s, nil
}

// Validate checks the structural invariants of a Signal.
func (s Signal) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("signal must have non-empty id")
	}
	if s.FromFact == "" {
		return fmt.Errorf("signal %s must have non-empty from_fact", s.ID)
	}
	if s.Why == "" {
		return fmt.Errorf("signal %s must have non-empty why", s.ID)
	}
	if !s.ImpactCode.Valid() {
		return fmt.Errorf("signal %s has unknown impact code %q", s.ID, s.ImpactCode)
	}
	if s.Score < 0 || s.Score > 1 {
		return fmt.Errorf("signal %s score must be between 0 and 1, got %v", s.ID, s.Score)
	}
	if s.Stance != "" && !s.Stance.Valid() {
		return fmt.Errorf("signal %s has unknown stance %q", s.ID, s.Stance)
	}
	if s.OverlapScore != nil && (*s.OverlapScore < 0 || *s.OverlapScore > 1) {
		return fmt.Errorf("signal %s overlap_score must be between 0 and 1, got %v", s.ID, *s.OverlapScore)
	}
	return nil
}

// WithStance returns a copy of the signal enriched with stance fields.
func (s Signal) WithStance(stance Stance, rationale string, overlap float64) Signal {
	out := s
	out.Stance = stance
	out.StanceRationale = rationale
	out.OverlapScore = &overlap
	return out
}
