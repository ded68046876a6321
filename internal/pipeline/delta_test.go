package pipeline

import (
	"strings"
	"testing"

	"github.com/ppiankov/ciscope/internal/model"
)

func deltaReport(signals ...model.Signal) *model.Report {
	return &model.Report{Query: "q", ProgramName: "p", Signals: signals}
}

func TestDiff_NewSignal(t *testing.T) {
	previous := deltaReport(
		model.Signal{ID: "sig_001", FromFact: "fact_001", ImpactCode: model.ImpactCompetitiveThreat, Score: 0.8, Why: "w"},
	)
	current := deltaReport(
		model.Signal{ID: "sig_001", FromFact: "fact_001", ImpactCode: model.ImpactCompetitiveThreat, Score: 0.8, Why: "w"},
		model.Signal{ID: "sig_002", FromFact: "fact_002", ImpactCode: model.ImpactRegulatoryRisk, Score: 0.9, Why: "w"},
	)

	delta := Diff(previous, current)

	if len(delta.New) != 1 || delta.New[0].FromFact != "fact_002" {
		t.Errorf("Expected fact_002 as new, got %+v", delta.New)
	}
	if len(delta.Changed) != 0 {
		t.Errorf("Expected no changes, got %+v", delta.Changed)
	}
}

func TestDiff_ChangedSignal(t *testing.T) {
	previous := deltaReport(
		model.Signal{ID: "sig_001", FromFact: "fact_001", ImpactCode: model.ImpactNeutral, Score: 0.5, Why: "w"},
	)
	current := deltaReport(
		// Positional id differs but the fact is the same: matched, not new.
		model.Signal{ID: "sig_003", FromFact: "fact_001", ImpactCode: model.ImpactCompetitiveThreat, Score: 0.85, Why: "w"},
	)

	delta := Diff(previous, current)

	if len(delta.New) != 0 {
		t.Errorf("Expected no new signals, got %+v", delta.New)
	}
	if len(delta.Changed) != 1 {
		t.Fatalf("Expected 1 change, got %d", len(delta.Changed))
	}
	if delta.Changed[0].Before.ImpactCode != model.ImpactNeutral ||
		delta.Changed[0].After.ImpactCode != model.ImpactCompetitiveThreat {
		t.Errorf("Unexpected change pair: %+v", delta.Changed[0])
	}
}

func TestDiff_StanceChangeDetected(t *testing.T) {
	previous := deltaReport(
		model.Signal{ID: "s", FromFact: "f", ImpactCode: model.ImpactNeutral, Score: 0.5, Why: "w"},
	)
	current := deltaReport(
		model.Signal{ID: "s", FromFact: "f", ImpactCode: model.ImpactNeutral, Score: 0.5, Why: "w", Stance: model.StanceHarmful},
	)

	if delta := Diff(previous, current); len(delta.Changed) != 1 {
		t.Errorf("Expected stance change to register, got %+v", delta)
	}
}

func TestDiff_Unchanged(t *testing.T) {
	report := deltaReport(
		model.Signal{ID: "s", FromFact: "f", ImpactCode: model.ImpactNeutral, Score: 0.5, Why: "w"},
	)

	delta := Diff(report, report)
	if !delta.Empty() {
		t.Errorf("Expected empty delta, got %+v", delta)
	}
	if !strings.Contains(delta.Format(), "No new or changed signals") {
		t.Errorf("Unexpected format: %s", delta.Format())
	}
}

func TestDelta_Format(t *testing.T) {
	delta := Delta{
		New: []model.Signal{
			{ID: "s1", FromFact: "fact_009", ImpactCode: model.ImpactSafetyRisk, Score: 0.75, Why: "w"},
		},
		Changed: []SignalChange{
			{
				Before: model.Signal{FromFact: "fact_001", ImpactCode: model.ImpactNeutral, Score: 0.5, Why: "w"},
				After:  model.Signal{FromFact: "fact_001", ImpactCode: model.ImpactCompetitiveThreat, Score: 0.85, Why: "w", Stance: model.StanceHarmful},
			},
		},
	}

	out := delta.Format()

	if !strings.Contains(out, "New signals (1)") || !strings.Contains(out, "fact_009") {
		t.Errorf("Format missing new section: %s", out)
	}
	if !strings.Contains(out, "Changed signals (1)") || !strings.Contains(out, "fact_001") {
		t.Errorf("Format missing changed section: %s", out)
	}
	if !strings.Contains(out, "stance=none") {
		t.Errorf("Format missing stance label: %s", out)
	}
}
