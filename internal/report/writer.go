// Package report assembles fixed-template Markdown reports from facts,
// signals, and actions, and validates them with a rule-based critic.
package report

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/ppiankov/ciscope/internal/model"
)

// Writer renders the seven-section report template. The format is fixed so
// reports are comparable run to run and checkable by the critic.
type Writer struct {
	programName string
	cfg         model.ReportConfig
	now         func() time.Time
}

// NewWriter builds a writer for the given program.
func NewWriter(programName string, cfg model.ReportConfig) *Writer {
	return &Writer{programName: programName, cfg: cfg, now: time.Now}
}

var keySanitizer = regexp.MustCompile(`[^a-zA-Z0-9_]`)

// Render produces the full Markdown report.
func (w *Writer) Render(query string, facts []model.Fact, signals []model.Signal, actions []model.Action) string {
	sections := []string{
		w.header(query),
		w.executiveSummary(signals),
		w.whatHappened(facts),
		w.whyItMatters(signals),
		w.actionsSection(actions),
		w.evidenceTable(facts),
		w.confidenceSection(facts, signals),
		w.sources(facts),
	}
	return strings.Join(sections, "\n\n")
}

func (w *Writer) header(query string) string {
	return fmt.Sprintf(`# CI Analysis Report

**Program:** %s
**Query:** %s
**Date:** %s

---
`, w.programName, query, w.now().Format("2006-01-02"))
}

func (w *Writer) executiveSummary(signals []model.Signal) string {
	lines := []string{"## Executive Summary\n"}

	top := sortedByScore(signals)
	if len(top) > w.cfg.MaxSummaryBullets {
		top = top[:w.cfg.MaxSummaryBullets]
	}
	if len(top) == 0 {
		lines = append(lines, "- No significant competitive intelligence signals identified [S0]")
		return strings.Join(lines, "\n")
	}

	for i, sig := range top {
		stance := "Pending"
		if sig.Stance != "" {
			stance = string(sig.Stance)
		}
		lines = append(lines, fmt.Sprintf("- **%s**: %s. Stance: %s. [S%d]",
			sig.ImpactCode, firstSentence(sig.Why), stance, i+1))
	}
	return strings.Join(lines, "\n")
}

func (w *Writer) whatHappened(facts []model.Fact) string {
	lines := []string{"## What Happened\n"}

	shown := facts
	if len(shown) > w.cfg.MaxWhatHappenedFacts {
		shown = shown[:w.cfg.MaxWhatHappenedFacts]
	}
	for i, fact := range shown {
		entities := fact.Entities
		if len(entities) > 2 {
			entities = entities[:2]
		}
		lines = append(lines, fmt.Sprintf("- %s: %s%s [S%d]",
			strings.Join(entities, ", "), fact.EventType, w.formatValues(fact.Values), i+1))
	}
	if len(facts) == 0 {
		lines = append(lines, "- No factual events extracted from sources [S0]")
	}
	return strings.Join(lines, "\n")
}

// formatValues renders up to MaxValuesPerFact key=value pairs in sorted key
// order. Non-finite and absurdly large numbers are dropped rather than
// rendered, since every emitted number must trace back to a quote.
func (w *Writer) formatValues(values map[string]any) string {
	if len(values) == 0 {
		return ""
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var pairs []string
	for _, k := range keys {
		if len(pairs) >= w.cfg.MaxValuesPerFact {
			break
		}
		safe := keySanitizer.ReplaceAllString(k, "")
		switch v := values[k].(type) {
		case float64:
			if math.IsNaN(v) || math.IsInf(v, 0) || math.Abs(v) > 1e15 {
				continue
			}
			pairs = append(pairs, fmt.Sprintf("%s=%.4g", safe, v))
		case int:
			pairs = append(pairs, fmt.Sprintf("%s=%d", safe, v))
		default:
			s := fmt.Sprintf("%v", v)
			if len(s) > 50 {
				s = s[:50]
			}
			pairs = append(pairs, fmt.Sprintf("%s=%s", safe, s))
		}
	}
	if len(pairs) == 0 {
		return ""
	}
	return " (" + strings.Join(pairs, ", ") + ")"
}

func (w *Writer) whyItMatters(signals []model.Signal) string {
	lines := []string{fmt.Sprintf("## Why It Matters to %s\n", w.programName)}

	var harmful, helpful, neutral []model.Signal
	for _, sig := range signals {
		switch {
		case strings.Contains(string(sig.Stance), "Harmful") || strings.Contains(string(sig.Stance), "harmful"):
			harmful = append(harmful, sig)
		case strings.Contains(string(sig.Stance), "Helpful") || strings.Contains(string(sig.Stance), "helpful"):
			helpful = append(helpful, sig)
		default:
			neutral = append(neutral, sig)
		}
	}

	if len(harmful) > 0 {
		lines = append(lines, "### Threats to Our Program\n")
		for i, sig := range harmful {
			lines = append(lines, fmt.Sprintf("**Signal %d: %s** (%s)\n\n%s\n",
				i+1, sig.ImpactCode, sig.Stance, rationaleOf(sig)))
		}
	}
	if len(helpful) > 0 {
		lines = append(lines, "### Opportunities for Our Program\n")
		for i, sig := range helpful {
			lines = append(lines, fmt.Sprintf("**Signal %d: %s** (%s)\n\n%s\n",
				i+1, sig.ImpactCode, sig.Stance, rationaleOf(sig)))
		}
	}
	if len(neutral) > 0 {
		lines = append(lines, "### Neutral Developments\n")
		shown := neutral
		if len(shown) > 3 {
			shown = shown[:3]
		}
		for _, sig := range shown {
			lines = append(lines, fmt.Sprintf("- %s: %s.\n", sig.ImpactCode, firstSentence(sig.Why)))
		}
	}
	if len(signals) == 0 {
		lines = append(lines, "No strategic implications identified for our program.\n")
	}
	return strings.Join(lines, "\n")
}

func (w *Writer) actionsSection(actions []model.Action) string {
	lines := []string{"## Recommended Actions\n"}

	if len(actions) == 0 {
		lines = append(lines, "No actions recommended at this time.\n")
		return strings.Join(lines, "\n")
	}

	sorted := make([]model.Action, len(actions))
	copy(sorted, actions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Confidence > sorted[j].Confidence
	})
	for i, a := range sorted {
		lines = append(lines, fmt.Sprintf("%d. **%s** - Owner: %s - Horizon: %s - Confidence: %d%%",
			i+1, a.Title, a.Owner, a.Horizon, int(math.Round(a.Confidence*100))))
	}
	return strings.Join(lines, "\n")
}

func (w *Writer) evidenceTable(facts []model.Fact) string {
	lines := []string{"## Evidence Table\n"}

	if len(facts) == 0 {
		lines = append(lines, "No evidence available.\n")
		return strings.Join(lines, "\n")
	}

	lines = append(lines,
		"| ID | Claim | Key Numbers | Date | Source |",
		"|----|-------|-------------|------|--------|")
	for i, fact := range facts {
		claim := fact.EventType
		if len(claim) > 40 {
			claim = claim[:40] + "..."
		}
		lines = append(lines, fmt.Sprintf("| F%d | %s | %s | %s | %s |",
			i+1, claim, w.keyNumbers(fact.Values), fact.Date, fact.SourceID))
	}
	lines = append(lines, "\n*All numbers are traceable to verbatim quotes in source documents.*\n")
	return strings.Join(lines, "\n")
}

func (w *Writer) keyNumbers(values map[string]any) string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var numbers []string
	for _, k := range keys {
		if len(numbers) >= w.cfg.MaxNumbersInTable {
			break
		}
		var f float64
		switch v := values[k].(type) {
		case float64:
			f = v
		case int:
			f = float64(v)
		default:
			continue
		}
		if math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) > 1e15 {
			continue
		}
		numbers = append(numbers, fmt.Sprintf("%s=%.4g", keySanitizer.ReplaceAllString(k, ""), f))
	}
	if len(numbers) == 0 {
		return "N/A"
	}
	return strings.Join(numbers, ", ")
}

func (w *Writer) confidenceSection(facts []model.Fact, signals []model.Signal) string {
	lines := []string{"## Confidence and Risks\n"}

	if len(facts) > 0 {
		total := 0.0
		for _, f := range facts {
			total += f.Confidence
		}
		avg := total / float64(len(facts))
		lines = append(lines, fmt.Sprintf("- **Data Confidence**: %d%% based on %d factual data points",
			int(math.Round(avg*100)), len(facts)))
	}

	highQuality := 0
	for _, s := range signals {
		if s.Score >= 0.7 {
			highQuality++
		}
	}
	lines = append(lines,
		fmt.Sprintf("- **Signal Quality**: %d/%d signals have high relevance (score >=0.7)", highQuality, len(signals)),
		"- **Limitations**: Analysis based on available sources; may not reflect unreported developments")
	return strings.Join(lines, "\n")
}

func (w *Writer) sources(facts []model.Fact) string {
	lines := []string{"## Sources\n"}

	type sourceInfo struct {
		date  string
		quote string
	}
	seen := make(map[string]sourceInfo)
	var order []string
	for _, fact := range facts {
		if _, ok := seen[fact.SourceID]; ok {
			continue
		}
		quote := fact.Quote
		if len(quote) > 100 {
			quote = quote[:100] + "..."
		}
		seen[fact.SourceID] = sourceInfo{date: fact.Date, quote: quote}
		order = append(order, fact.SourceID)
	}
	sort.Strings(order)

	for i, id := range order {
		info := seen[id]
		lines = append(lines,
			fmt.Sprintf("%d. **%s** (%s)", i+1, id, info.date),
			fmt.Sprintf("   > \"%s\"", info.quote))
	}
	if len(order) == 0 {
		lines = append(lines, "No sources cited.\n")
	}
	return strings.Join(lines, "\n")
}

// actionTemplate maps an impact code to its standing playbook entry.
type actionTemplate struct {
	title   string
	owner   string
	horizon string
}

var actionTemplates = map[model.ImpactCode]actionTemplate{
	model.ImpactTimelineSlip:         {"Review timeline assumptions", "Clinical Ops", "2 weeks"},
	model.ImpactRegulatoryRisk:       {"Update regulatory strategy", "Regulatory", "1 month"},
	model.ImpactTimelineAdvance:      {"Expedite development plan", "Program Lead", "3 weeks"},
	model.ImpactDesignRisk:           {"Recheck trial design assumptions", "Biostats", "2 weeks"},
	model.ImpactSafetyRisk:           {"Enhance safety monitoring protocol", "Medical", "1 week"},
	model.ImpactBiomarkerOpportunity: {"Evaluate biomarker strategy", "Translational", "1 month"},
	model.ImpactCompetitiveThreat:    {"Update competitive positioning", "Marketing", "2 weeks"},
}

// Actions derives recommended actions from the highest-scoring signals,
// padding with a generic monitoring action up to the configured minimum.
func (w *Writer) Actions(signals []model.Signal, facts []model.Fact) []model.Action {
	minActions := w.cfg.MinActions

	var actions []model.Action
	for _, sig := range sortedByScore(signals) {
		if len(actions) >= minActions {
			break
		}
		tpl, ok := actionTemplates[sig.ImpactCode]
		if !ok {
			continue
		}
		title := tpl.title
		if strings.Contains(string(sig.Stance), "Harmful") || strings.Contains(string(sig.Stance), "harmful") {
			title += " (high priority)"
		}
		a, err := model.NewAction(title, tpl.owner, tpl.horizon, []string{sig.FromFact}, sig.Score)
		if err != nil {
			continue
		}
		actions = append(actions, a)
	}

	for len(actions) < minActions {
		rationale := ""
		if len(facts) > 0 {
			rationale = facts[0].ID
		} else if len(signals) > 0 {
			rationale = signals[0].FromFact
		}
		if rationale == "" {
			break
		}
		a, err := model.NewAction("Monitor competitive landscape", "CI Team", "Ongoing", []string{rationale}, 0.6)
		if err != nil {
			break
		}
		actions = append(actions, a)
	}
	return actions
}

func sortedByScore(signals []model.Signal) []model.Signal {
	out := make([]model.Signal, len(signals))
	copy(out, signals)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}

func firstSentence(s string) string {
	if i := strings.Index(s, "."); i >= 0 {
		return s[:i]
	}
	return s
}

func rationaleOf(sig model.Signal) string {
	if sig.StanceRationale != "" {
		return sig.StanceRationale
	}
	return sig.Why
}
