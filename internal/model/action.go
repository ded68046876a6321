package model

import (
	"fmt"
	"strings"
)

// Action is a recommended response tied to evidence. Owner and horizon must
// be concrete at construction time: critic gate 4 requires it downstream,
// and rejecting placeholders here keeps invalid actions out of the system
// entirely.
type Action struct {
	Title          string   `json:"title" yaml:"title"`
	Owner          string   `json:"owner" yaml:"owner"`
	Horizon        string   `json:"horizon" yaml:"horizon"`
	RationaleFacts []string `json:"rationale_facts" yaml:"rationale_facts"`
	Confidence     float64  `json:"confidence" yaml:"confidence"`
}

// placeholderOwner reports whether a value is one of the placeholder strings
// gate 4 rejects.
func placeholderOwner(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "tbd", "unknown":
		return true
	}
	return false
}

// NewAction builds an Action and validates it.
func NewAction(title, owner, horizon string, rationaleFacts []string, confidence float64) (Action, error) {
	a := Action{
		Title:          title,
		Owner:          owner,
		Horizon:        horizon,
		RationaleFacts: rationaleFacts,
		Confidence:     confidence,
	}
	if err := a.Validate(); err != nil {
		return Action{}, err
	}
	return a, nil
}

// Validate checks the structural invariants of an Action.
func (a Action) Validate() error {
	if strings.TrimSpace(a.Title) == "" {
		return fmt.Errorf("action must have non-empty title")
	}
	if placeholderOwner(a.Owner) {
		return fmt.Errorf("action %q owner cannot be empty, TBD or unknown", a.Title)
	}
	if placeholderOwner(a.Horizon) {
		return fmt.Errorf("action %q horizon cannot be empty, TBD or unknown", a.Title)
	}
	if len(a.RationaleFacts) == 0 {
		return fmt.Errorf("action %q must link to at least one fact", a.Title)
	}
	for i, id := range a.RationaleFacts {
		if id == "" {
			return fmt.Errorf("action %q rationale fact %d is empty", a.Title, i)
		}
	}
	if a.Confidence < 0 || a.Confidence > 1 {
		return fmt.Errorf("action %q confidence must be between 0 and 1, got %v", a.Title, a.Confidence)
	}
	return nil
}
