package model

import (
	"fmt"
	"time"
)

// Fact is an atomic, sourced competitive-intelligence claim extracted from a
// document. The verbatim quote is mandatory: numeric traceability (critic
// gate 2) is only as strong as the quotes facts carry.
type Fact struct {
	ID         string         `json:"id" yaml:"id"`
	Entities   []string       `json:"entities" yaml:"entities"` // company, drug, target, indication
	EventType  string         `json:"event_type" yaml:"event_type"`
	Values     map[string]any `json:"values" yaml:"values"` // e.g. {"endpoint": "PFS", "delta": 1.9}
	Date       string         `json:"date" yaml:"date"`     // ISO calendar date YYYY-MM-DD
	SourceID   string         `json:"source_id" yaml:"source_id"`
	Quote      string         `json:"quote" yaml:"quote"`
	Confidence float64        `json:"confidence" yaml:"confidence"`
}

// NewFact builds a Fact and validates it. Invalid facts are never constructed:
// an error here means the record must be rejected, not coerced.
func NewFact(id string, entities []string, eventType string, values map[string]any, date, sourceID, quote string, confidence float64) (Fact, error) {
	f := Fact{
		ID:         id,
		Entities:   entities,
		EventType:  eventType,
		Values:     values,
		Date:       date,
		SourceID:   sourceID,
		Quote:      quote,
		Confidence: confidence,
	}
	if err := f.Validate(); err != nil {
		return Fact{}, err
	}
	if f.Values == nil {
		f.Values = map[string]any{}
	}
	return f, nil
}

// Validate checks the structural invariants of a Fact.
func (f Fact) Validate() error {
	if f.ID == "" {
		return fmt.Errorf("fact must have non-empty id")
	}
	if f.Quote == "" {
		return fmt.Errorf("fact %s missing required quote for traceability", f.ID)
	}
	if f.SourceID == "" {
		return fmt.Errorf("fact %s missing required source_id for citation", f.ID)
	}
	if f.EventType == "" {
		return fmt.Errorf("fact %s must have non-empty event_type", f.ID)
	}
	if len(f.Entities) == 0 {
		return fmt.Errorf("fact %s must have at least one entity", f.ID)
	}
	for i, e := range f.Entities {
		if e == "" {
			return fmt.Errorf("fact %s entity %d is empty", f.ID, i)
		}
	}
	if f.Date == "" {
		return fmt.Errorf("fact %s missing required date", f.ID)
	}
	if _, err := time.Parse("2006-01-02", f.Date); err != nil {
		return fmt.Errorf("fact %s date must be ISO format (YYYY-MM-DD), got %q", f.ID, f.Date)
	}
	if f.Confidence < 0 || f.Confidence > 1 {
		return fmt.Errorf("fact %s confidence must be between 0 and 1, got %v", f.ID, f.Confidence)
	}
	return nil
}
