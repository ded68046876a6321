package report

import (
	"strings"
	"testing"

	"github.com/ppiankov/ciscope/internal/model"
)

func newCritic() *Critic {
	return NewCritic(model.DefaultConfig().Report)
}

func completeActions() []model.Action {
	return []model.Action{
		{Title: "Review timeline assumptions", Owner: "Clinical Ops", Horizon: "2 weeks", RationaleFacts: []string{"f1"}, Confidence: 0.9},
		{Title: "Update regulatory strategy", Owner: "Regulatory", Horizon: "1 month", RationaleFacts: []string{"f1"}, Confidence: 0.8},
		{Title: "Monitor competitive landscape", Owner: "CI Team", Horizon: "Ongoing", RationaleFacts: []string{"f1"}, Confidence: 0.6},
	}
}

func TestCitationCoverage_FlagsUncitedSentence(t *testing.T) {
	c := newCritic()

	text := "The trial was halted in June [S1]\nThis is promising for our program."
	violations := c.CheckCitationCoverage(text)
	if len(violations) != 1 {
		t.Fatalf("Expected 1 violation, got %d: %v", len(violations), violations)
	}
	if !strings.Contains(violations[0], "Gate 1") {
		t.Errorf("Expected Gate 1 label: %s", violations[0])
	}
}

func TestCitationCoverage_SkipsNonContent(t *testing.T) {
	c := newCritic()

	text := strings.Join([]string{
		"# Heading without citation",
		"**Program:** AZ-CLDN18-ADC",
		"| ID | Claim |",
		"|----|-------|",
		"| F1 | a long claim without citation |",
		"> quoted snippet without citation",
		"---",
		"- ok [S1]",
	}, "\n")

	violations := c.CheckCitationCoverage(text)
	if len(violations) != 0 {
		t.Errorf("Expected no violations for non-content lines, got %v", violations)
	}
}

func TestCitationCoverage_ShortFragmentsIgnored(t *testing.T) {
	c := newCritic()

	violations := c.CheckCitationCoverage("Done. Okay. The competitor advanced its filing [S2]")
	if len(violations) != 0 {
		t.Errorf("Expected fragments under 10 chars ignored, got %v", violations)
	}
}

func TestNumericTraceability(t *testing.T) {
	c := newCritic()
	facts := []model.Fact{{
		ID: "f1", Entities: []string{"X"}, EventType: "readout",
		Date: "2025-06-15", SourceID: "s1",
		Quote: "ORR was 45% with PFS of 8.2 months", Confidence: 0.9,
	}}

	violations := c.CheckNumericTraceability("Reported ORR 45 and PFS 8.2 [S1]", facts)
	if len(violations) != 0 {
		t.Errorf("Expected traced numbers to pass, got %v", violations)
	}

	violations = c.CheckNumericTraceability("Reported ORR 62 [S1]", facts)
	if len(violations) != 1 {
		t.Errorf("Expected untraced number flagged, got %v", violations)
	}
}

func TestNumericTraceability_SkipsYearsAndCitations(t *testing.T) {
	c := newCritic()

	violations := c.CheckNumericTraceability("Approved in 2025 [S1] [F2]", nil)
	if len(violations) != 0 {
		t.Errorf("Expected years and citation numbers exempt, got %v", violations)
	}
}

func TestTimeReferences(t *testing.T) {
	c := newCritic()

	violations := c.CheckTimeReferences("The filing happened recently and more data is expected soon.")
	if len(violations) != 2 {
		t.Fatalf("Expected 2 violations, got %d: %v", len(violations), violations)
	}
	if !strings.Contains(violations[0], "recently") {
		t.Errorf("Expected the matched text reported: %s", violations[0])
	}

	violations = c.CheckTimeReferences("The filing happened on 2025-06-15.")
	if len(violations) != 0 {
		t.Errorf("Expected absolute dates to pass, got %v", violations)
	}
}

func TestActionCompleteness(t *testing.T) {
	c := newCritic()

	if v := c.CheckActionCompleteness(completeActions()); len(v) != 0 {
		t.Errorf("Expected complete actions to pass, got %v", v)
	}

	short := completeActions()[:2]
	if v := c.CheckActionCompleteness(short); len(v) != 1 {
		t.Errorf("Expected count violation, got %v", v)
	}

	bad := completeActions()
	bad[0].Owner = "TBD"
	bad[1].Horizon = ""
	v := c.CheckActionCompleteness(bad)
	if len(v) != 2 {
		t.Errorf("Expected owner and horizon violations, got %v", v)
	}
}

func TestRun_AggregatesAllGates(t *testing.T) {
	c := newCritic()

	passed, violations := c.Run("All good here with citation [S1]", nil, completeActions())
	if !passed || len(violations) != 0 {
		t.Errorf("Expected clean report to pass, got %v", violations)
	}

	passed, violations = c.Run("Something happened recently without citation", nil, nil)
	if passed {
		t.Error("Expected failing report")
	}
	if len(violations) < 3 {
		t.Errorf("Expected citation, time, and action violations, got %v", violations)
	}
}

func TestMetrics_VacuousCases(t *testing.T) {
	c := newCritic()

	citation, numeric, action := c.Metrics("", nil, nil)
	if citation != 0 {
		t.Errorf("Expected 0%% citation coverage for empty report, got %v", citation)
	}
	if numeric != 100 {
		t.Errorf("Expected 100%% traceability with zero numbers, got %v", numeric)
	}
	if action != 0 {
		t.Errorf("Expected 0%% action completeness with zero actions, got %v", action)
	}
}

func TestMetrics_PartialCoverage(t *testing.T) {
	c := newCritic()

	// Two sentences, one cited.
	text := "The hold was announced on the program [S1]. This changes our plan entirely."
	citation, _, action := c.Metrics(text, nil, completeActions())
	if citation != 50 {
		t.Errorf("Expected 50%% citation coverage, got %v", citation)
	}
	if action != 100 {
		t.Errorf("Expected 100%% action completeness, got %v", action)
	}
}

func TestSplitSentences_CapsSplits(t *testing.T) {
	text := strings.Repeat("word. ", 500)
	parts := splitSentences(text, 100)
	if len(parts) > 101 {
		t.Errorf("Expected split cap at 100, got %d parts", len(parts))
	}
}
