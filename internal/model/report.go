package model

import (
	"fmt"
	"time"
)

// TraceMetrics is the execution telemetry attached to a report and exported
// in the JSON sidecar.
type TraceMetrics struct {
	TotalFacts   int `json:"total_facts" yaml:"total_facts"`
	TotalSignals int `json:"total_signals" yaml:"total_signals"`
	TotalActions int `json:"total_actions" yaml:"total_actions"`

	// Coverage percentages in [0,100], computed by the report critic.
	CitationCoverage    float64 `json:"citation_coverage" yaml:"citation_coverage"`
	NumericTraceability float64 `json:"numeric_traceability" yaml:"numeric_traceability"`
	ActionCompleteness  float64 `json:"action_completeness" yaml:"action_completeness"`

	ExecutionSeconds float64 `json:"execution_time_seconds" yaml:"execution_time_seconds"`
	Model            string  `json:"model_used" yaml:"model_used"`
	Timestamp        string  `json:"timestamp" yaml:"timestamp"`
}

// Validate checks that counts are non-negative and percentages in range.
func (t TraceMetrics) Validate() error {
	if t.TotalFacts < 0 || t.TotalSignals < 0 || t.TotalActions < 0 {
		return fmt.Errorf("trace counts must be non-negative")
	}
	for name, v := range map[string]float64{
		"citation_coverage":    t.CitationCoverage,
		"numeric_traceability": t.NumericTraceability,
		"action_completeness":  t.ActionCompleteness,
	} {
		if v < 0 || v > 100 {
			return fmt.Errorf("%s must be between 0 and 100, got %v", name, v)
		}
	}
	if t.ExecutionSeconds < 0 {
		return fmt.Errorf("execution_time_seconds must be non-negative, got %v", t.ExecutionSeconds)
	}
	return nil
}

// Report is the complete output of one pipeline run. It is constructed once
// and exported to two sibling artifacts (Markdown and JSON sidecar) with
// identical logical content.
type Report struct {
	Query       string       `json:"query" yaml:"query"`
	ProgramName string       `json:"program_name" yaml:"program_name"`
	GeneratedAt time.Time    `json:"generated_at" yaml:"generated_at"`
	Facts       []Fact       `json:"facts" yaml:"facts"`
	Signals     []Signal     `json:"signals" yaml:"signals"`
	Actions     []Action     `json:"actions" yaml:"actions"`
	Trace       TraceMetrics `json:"trace" yaml:"trace"`

	// Markdown is the rendered report text the critic validated.
	Markdown string `json:"markdown_report" yaml:"markdown_report"`

	// CriticPassed and Violations record the gate outcome. Blocking emission
	// on failure is the caller's decision, not the report's.
	CriticPassed bool     `json:"critic_passed" yaml:"critic_passed"`
	Violations   []string `json:"violations,omitempty" yaml:"violations,omitempty"`
}

// Validate checks the structural invariants of a Report.
func (r Report) Validate() error {
	if r.Query == "" {
		return fmt.Errorf("report must have non-empty query")
	}
	if r.ProgramName == "" {
		return fmt.Errorf("report must have non-empty program_name")
	}
	for _, f := range r.Facts {
		if err := f.Validate(); err != nil {
			return fmt.Errorf("report fact: %w", err)
		}
	}
	for _, s := range r.Signals {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("report signal: %w", err)
		}
	}
	for _, a := range r.Actions {
		if err := a.Validate(); err != nil {
			return fmt.Errorf("report action: %w", err)
		}
	}
	return r.Trace.Validate()
}
