package classify

import (
	"strings"
	"testing"

	"github.com/ppiankov/ciscope/internal/model"
)

func newClassifier() *ImpactClassifier {
	cfg := model.DefaultConfig()
	return NewImpactClassifier(cfg.Signals, cfg.Scoring)
}

func fact(eventType string, values map[string]any, confidence float64) model.Fact {
	return model.Fact{
		ID:         "fact_001",
		Entities:   []string{"CompanyX", "DrugY"},
		EventType:  eventType,
		Values:     values,
		Date:       "2025-06-15",
		SourceID:   "src_001",
		Quote:      "quoted text",
		Confidence: confidence,
	}
}

func TestClassify_KeywordRules(t *testing.T) {
	c := newClassifier()

	tests := []struct {
		eventType string
		values    map[string]any
		want      model.ImpactCode
	}{
		{"partial clinical hold", nil, model.ImpactTimelineSlip},
		{"enrollment pause announced", nil, model.ImpactTimelineSlip},
		{"complete response letter received", nil, model.ImpactRegulatoryRisk},
		{"refuse-to-file decision", nil, model.ImpactRegulatoryRisk},
		{"breakthrough therapy designation granted", nil, model.ImpactTimelineAdvance},
		{"priority review accepted", nil, model.ImpactTimelineAdvance},
		{"grade 3 adverse event imbalance", nil, model.ImpactSafetyRisk},
		{"companion diagnostic approval", nil, model.ImpactBiomarkerOpportunity},
		{"commercial launch in nsclc", nil, model.ImpactCompetitiveThreat},
		{"met primary endpoint", nil, model.ImpactCompetitiveThreat},
		{"routine earnings call", nil, model.ImpactNeutral},
	}
	for _, tt := range tests {
		got := c.Classify(fact(tt.eventType, tt.values, 0.8))
		if got != tt.want {
			t.Errorf("Classify(%q) = %q, want %q", tt.eventType, got, tt.want)
		}
	}
}

func TestClassify_PriorityOrder(t *testing.T) {
	c := newClassifier()

	// Matches both the slip keywords ("delayed") and the regulatory set
	// would not, but "clinical hold" + "safety" matches rules 1 and 5;
	// rule 1 must win.
	got := c.Classify(fact("clinical hold due to safety signal", nil, 0.8))
	if got != model.ImpactTimelineSlip {
		t.Errorf("Expected TIMELINE_SLIP to win priority, got %q", got)
	}

	// "withdrawal" (rule 2) beats "approval" (rule 7).
	got = c.Classify(fact("accelerated approval withdrawal", nil, 0.8))
	if got != model.ImpactRegulatoryRisk {
		t.Errorf("Expected REGULATORY_RISK to win priority, got %q", got)
	}
}

func TestClassify_LocalNegation(t *testing.T) {
	c := newClassifier()

	// "denied" suppresses the advance rule but nothing else.
	got := c.Classify(fact("breakthrough therapy denied", nil, 0.8))
	if got == model.ImpactTimelineAdvance {
		t.Error("Expected negation to suppress TIMELINE_ADVANCE")
	}

	// "missed" suppresses the threat rule.
	got = c.Classify(fact("missed primary endpoint approval hopes", nil, 0.8))
	if got == model.ImpactCompetitiveThreat {
		t.Error("Expected negation to suppress COMPETITIVE_THREAT")
	}
}

func TestClassify_DesignRiskMagnitude(t *testing.T) {
	c := newClassifier()

	tests := []struct {
		name   string
		values map[string]any
		event  string
		want   model.ImpactCode
	}{
		{"small pfs delta", map[string]any{"delta": 2.1, "endpoint": "PFS"}, "efficacy data update", model.ImpactDesignRisk},
		{"large pfs delta", map[string]any{"delta": 5.0, "endpoint": "PFS"}, "efficacy data update", model.ImpactNeutral},
		{"small orr delta", map[string]any{"delta": 8.0, "endpoint": "ORR"}, "phase 2 readout", model.ImpactDesignRisk},
		{"large orr delta", map[string]any{"delta": 22.0, "endpoint": "ORR"}, "phase 2 readout", model.ImpactNeutral},
		{"no efficacy context", map[string]any{"delta": 1.0, "endpoint": "PFS"}, "investor update", model.ImpactNeutral},
		{"missing delta", map[string]any{"endpoint": "PFS"}, "efficacy data update", model.ImpactNeutral},
	}
	for _, tt := range tests {
		got := c.Classify(fact(tt.event, tt.values, 0.8))
		if got != tt.want {
			t.Errorf("%s: Classify = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestClassify_SafetyRateThreshold(t *testing.T) {
	c := newClassifier()

	got := c.Classify(fact("interim data update", map[string]any{"grade3_rate": 62.0}, 0.8))
	if got != model.ImpactSafetyRisk {
		t.Errorf("Expected SAFETY_RISK for grade3_rate > 50, got %q", got)
	}

	got = c.Classify(fact("interim data update", map[string]any{"grade3_rate": 30.0}, 0.8))
	if got == model.ImpactSafetyRisk {
		t.Error("Expected no SAFETY_RISK for grade3_rate below threshold")
	}
}

func TestScore_BoostsAndClamp(t *testing.T) {
	c := newClassifier()

	tests := []struct {
		confidence float64
		code       model.ImpactCode
		want       float64
	}{
		{0.80, model.ImpactRegulatoryRisk, 0.95},
		{0.95, model.ImpactRegulatoryRisk, 1.00}, // clamped at max
		{0.80, model.ImpactTimelineSlip, 0.90},
		{0.80, model.ImpactNeutral, 0.60},
		{0.15, model.ImpactNeutral, 0.10}, // clamped at min
		{0.80, model.ImpactDesignRisk, 0.80},
	}
	for _, tt := range tests {
		got := c.Score(fact("e", nil, tt.confidence), tt.code)
		if got != tt.want {
			t.Errorf("Score(conf=%v, %q) = %v, want %v", tt.confidence, tt.code, got, tt.want)
		}
	}
}

func TestRationale_InterpolatesEventAndEntities(t *testing.T) {
	c := newClassifier()

	f := fact("partial clinical hold", nil, 0.9)
	f.Entities = []string{"CompanyX", "DrugY", "NSCLC", "Extra"}

	why := c.Rationale(f, model.ImpactTimelineSlip)
	if why == "" {
		t.Fatal("Expected non-empty rationale")
	}
	for _, want := range []string{"partial clinical hold", "CompanyX", "DrugY", "NSCLC"} {
		if !strings.Contains(why, want) {
			t.Errorf("Expected rationale to contain %q: %s", want, why)
		}
	}
	if strings.Contains(why, "Extra") {
		t.Error("Expected rationale limited to first 3 entities")
	}
}

func TestSignal_EndToEnd(t *testing.T) {
	c := newClassifier()

	sig, err := c.Signal(fact("complete response letter", nil, 0.9), "sig_001")
	if err != nil {
		t.Fatalf("Signal failed: %v", err)
	}
	if sig.ImpactCode != model.ImpactRegulatoryRisk {
		t.Errorf("Expected REGULATORY_RISK, got %q", sig.ImpactCode)
	}
	if sig.Score != 1.0 {
		t.Errorf("Expected score 1.0 (0.9 + 0.15 clamped), got %v", sig.Score)
	}
	if sig.FromFact != "fact_001" {
		t.Errorf("Expected from_fact linkage, got %q", sig.FromFact)
	}
}
