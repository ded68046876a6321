package report

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ppiankov/ciscope/internal/model"
)

// Critic validates a rendered report against four quality gates. It never
// mutates the report; blocking emission is the caller's call.
type Critic struct {
	minActions        int
	maxSentenceSplits int
}

// NewCritic builds a critic from report config.
func NewCritic(cfg model.ReportConfig) *Critic {
	minActions := cfg.MinActions
	if minActions <= 0 {
		minActions = 3
	}
	maxSplits := cfg.MaxSentenceSplits
	if maxSplits <= 0 {
		maxSplits = 100
	}
	return &Critic{minActions: minActions, maxSentenceSplits: maxSplits}
}

var (
	citationEnd    = regexp.MustCompile(`\[[SF]\d+\]\s*[.!?]?\s*$`)
	tableSeparator = regexp.MustCompile(`^\|[-\s|]+\|$`)
	formattingOnly = regexp.MustCompile(`^[*\-\s]+$`)
	numberPattern  = regexp.MustCompile(`\b\d+\.?\d*`)
	sentenceEnders = regexp.MustCompile(`[.!?]`)
)

// Vague time expressions gate 3 rejects. Absolute dates only.
var vagueTimePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\brecently\b`),
	regexp.MustCompile(`(?i)\bsoon\b`),
	regexp.MustCompile(`(?i)\bnext month\b`),
	regexp.MustCompile(`(?i)\blast month\b`),
	regexp.MustCompile(`(?i)\bthis week\b`),
	regexp.MustCompile(`(?i)\blast week\b`),
	regexp.MustCompile(`(?i)\bupcoming\b`),
	regexp.MustCompile(`(?i)\bin the near future\b`),
	regexp.MustCompile(`(?i)\bshortly\b`),
	regexp.MustCompile(`(?i)\byesterday\b`),
	regexp.MustCompile(`(?i)\btomorrow\b`),
	regexp.MustCompile(`(?i)\btoday\b`),
}

// Run executes the four gates in order and returns whether the report
// passed plus the itemized violations.
func (c *Critic) Run(markdown string, facts []model.Fact, actions []model.Action) (bool, []string) {
	var violations []string
	violations = append(violations, c.CheckCitationCoverage(markdown)...)
	violations = append(violations, c.CheckNumericTraceability(markdown, facts)...)
	violations = append(violations, c.CheckTimeReferences(markdown)...)
	violations = append(violations, c.CheckActionCompleteness(actions)...)
	return len(violations) == 0, violations
}

// CheckCitationCoverage (gate 1): every sentence of content text must end
// with an [S#] or [F#] citation marker. Headings, tables, blockquotes, and
// emphasis-only lines are not content.
func (c *Critic) CheckCitationCoverage(text string) []string {
	var violations []string
	for _, line := range contentLines(text) {
		if strings.HasPrefix(line, ">") || strings.HasPrefix(line, "*") || strings.HasPrefix(line, "---") {
			continue
		}
		for _, sentence := range splitSentences(line, c.maxSentenceSplits) {
			sentence = strings.TrimSpace(sentence)
			if len(sentence) < 10 {
				continue
			}
			if !citationEnd.MatchString(sentence) {
				violations = append(violations,
					fmt.Sprintf("Gate 1 (Citation): Missing citation at end of sentence: '%s...'", truncate(sentence, 60)))
			}
		}
	}
	return violations
}

// CheckNumericTraceability (gate 2): every number in the report must appear
// verbatim inside at least one fact quote. Four-digit years are exempt;
// citation-bracket numbers never match because of the word boundary.
func (c *Critic) CheckNumericTraceability(text string, facts []model.Fact) []string {
	quoteNumbers := make(map[string]bool)
	for _, fact := range facts {
		for _, n := range numberPattern.FindAllString(strings.ToLower(fact.Quote), -1) {
			quoteNumbers[strings.TrimSuffix(n, ".")] = true
		}
	}

	var violations []string
	for _, number := range numberPattern.FindAllString(text, -1) {
		if len(number) == 4 && !strings.Contains(number, ".") {
			continue // year
		}
		clean := strings.TrimSuffix(number, ".")
		if !quoteNumbers[clean] {
			violations = append(violations,
				fmt.Sprintf("Gate 2 (Numeric): Number '%s' not found in any fact quote", number))
		}
	}
	return violations
}

// CheckTimeReferences (gate 3): no relative or vague time expressions.
func (c *Critic) CheckTimeReferences(text string) []string {
	var violations []string
	for _, re := range vagueTimePatterns {
		if m := re.FindString(text); m != "" {
			violations = append(violations,
				fmt.Sprintf("Gate 3 (Time): Vague time reference found: '%s' (should use absolute date)", m))
		}
	}
	return violations
}

// CheckActionCompleteness (gate 4): at least the configured minimum of
// actions, each with a real owner and horizon. Duplicates the Action
// constructor's checks on purpose: the report path must hold even for
// actions built without the constructor.
func (c *Critic) CheckActionCompleteness(actions []model.Action) []string {
	var violations []string
	if len(actions) < c.minActions {
		violations = append(violations,
			fmt.Sprintf("Gate 4 (Actions): Only %d actions found, need at least %d", len(actions), c.minActions))
	}
	for i, a := range actions {
		if isPlaceholder(a.Owner) {
			violations = append(violations,
				fmt.Sprintf("Gate 4 (Actions): Action %d '%s' missing owner", i+1, a.Title))
		}
		if isPlaceholder(a.Horizon) {
			violations = append(violations,
				fmt.Sprintf("Gate 4 (Actions): Action %d '%s' missing horizon", i+1, a.Title))
		}
	}
	return violations
}

// Metrics computes the three coverage percentages recorded in the report
// trace. The vacuous cases are asymmetric: zero numbers is a vacuous pass
// (100%), zero sentences or zero actions a vacuous fail (0%), since an
// empty report should not claim quality.
func (c *Critic) Metrics(markdown string, facts []model.Fact, actions []model.Action) (citation, numeric, action float64) {
	totalSentences := len(sentenceEnders.FindAllString(markdown, -1))
	if totalSentences > 0 {
		cited := totalSentences - len(c.CheckCitationCoverage(markdown))
		if cited < 0 {
			cited = 0
		}
		citation = float64(cited) / float64(totalSentences) * 100
	}

	totalNumbers := len(numberPattern.FindAllString(markdown, -1))
	if totalNumbers > 0 {
		traced := totalNumbers - len(c.CheckNumericTraceability(markdown, facts))
		if traced < 0 {
			traced = 0
		}
		numeric = float64(traced) / float64(totalNumbers) * 100
	} else {
		numeric = 100
	}

	if len(actions) > 0 {
		complete := 0
		for _, a := range actions {
			if !isPlaceholder(a.Owner) && !isPlaceholder(a.Horizon) {
				complete++
			}
		}
		action = float64(complete) / float64(len(actions)) * 100
	}
	return citation, numeric, action
}

// contentLines strips headings, table rows, blanks, and formatting-only
// lines, leaving the prose gate 1 applies to.
func contentLines(text string) []string {
	var out []string
	inTable := false
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(line, "#") {
			continue
		}
		if tableSeparator.MatchString(line) {
			inTable = true
			continue
		}
		if inTable && !strings.HasPrefix(line, "|") {
			inTable = false
		}
		if inTable {
			continue
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		if formattingOnly.MatchString(line) {
			continue
		}
		out = append(out, strings.TrimSpace(line))
	}
	return out
}

// splitSentences breaks text after terminal punctuation followed by
// whitespace, keeping the punctuation. The split count is capped to bound
// cost on pathological input.
func splitSentences(text string, maxSplits int) []string {
	var out []string
	start := 0
	splits := 0
	runes := []rune(text)
	for i := 0; i < len(runes)-1 && splits < maxSplits; i++ {
		if isTerminal(runes[i]) && isSpace(runes[i+1]) {
			out = append(out, string(runes[start:i+1]))
			for i+1 < len(runes) && isSpace(runes[i+1]) {
				i++
			}
			start = i + 1
			splits++
		}
	}
	if start < len(runes) {
		out = append(out, string(runes[start:]))
	}
	return out
}

func isTerminal(r rune) bool { return r == '.' || r == '!' || r == '?' }
func isSpace(r rune) bool    { return r == ' ' || r == '\t' }

func isPlaceholder(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "tbd", "unknown":
		return true
	}
	return false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
