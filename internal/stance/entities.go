// Package stance scores how a competitor signal reads relative to the
// user's own program: weighted Jaccard overlap across typed entity
// categories, then a threshold policy keyed on the impact code.
package stance

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ppiankov/ciscope/internal/model"
)

// Category names, also the keys of the weight map. Order is the
// tie-breaking order when reporting top overlapping categories.
var categories = []string{"target", "disease", "line", "biomarker", "moa"}

type linePattern struct {
	re         *regexp.Regexp
	normalized string
}

// Extractor pulls typed entity sets out of free text using the curated
// domain vocabularies. Deterministic pattern matching, not NLP.
type Extractor struct {
	targets    []*regexp.Regexp
	diseases   []patternEntry
	lines      []linePattern
	biomarkers []patternEntry
	moa        []patternEntry
}

// patternEntry pairs a compiled pattern with the canonical set member it
// contributes on match.
type patternEntry struct {
	re    *regexp.Regexp
	entry string
}

var (
	separators = regexp.MustCompile(`[-_.]`)
	spaces     = regexp.MustCompile(`\s+`)
)

// NewExtractor compiles the vocabulary patterns.
func NewExtractor(vocab model.StanceVocabulary) (*Extractor, error) {
	e := &Extractor{}

	for _, p := range vocab.Targets {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("target pattern %q: %w", p, err)
		}
		e.targets = append(e.targets, re)
	}
	var err error
	if e.diseases, err = compileEntries(vocab.Diseases, "disease"); err != nil {
		return nil, err
	}
	for _, lp := range vocab.Lines {
		re, err := regexp.Compile(lp.Pattern)
		if err != nil {
			return nil, fmt.Errorf("line pattern %q: %w", lp.Pattern, err)
		}
		e.lines = append(e.lines, linePattern{re: re, normalized: lp.Normalized})
	}
	if e.biomarkers, err = compileEntries(vocab.Biomarkers, "biomarker"); err != nil {
		return nil, err
	}
	if e.moa, err = compileEntries(vocab.Mechanisms, "mechanism"); err != nil {
		return nil, err
	}
	return e, nil
}

func compileEntries(patterns []string, kind string) ([]patternEntry, error) {
	entries := make([]patternEntry, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("%s pattern %q: %w", kind, p, err)
		}
		// The pattern itself is the canonical set member, with the
		// escaped "+" restored so "her2\+" contributes "her2+".
		entries = append(entries, patternEntry{re: re, entry: strings.ReplaceAll(p, `\+`, "+")})
	}
	return entries, nil
}

// NormalizeEntity lowercases, replaces separator punctuation with spaces,
// and collapses whitespace, so "CLDN18.2" and "cldn18-2" compare equal.
func NormalizeEntity(entity string) string {
	cleaned := strings.ToLower(strings.TrimSpace(entity))
	cleaned = separators.ReplaceAllString(cleaned, " ")
	return strings.TrimSpace(spaces.ReplaceAllString(cleaned, " "))
}

// NormalizeEntityList normalizes each non-empty entity into a set.
func NormalizeEntityList(entities []string) map[string]bool {
	set := make(map[string]bool)
	for _, e := range entities {
		if n := NormalizeEntity(e); n != "" {
			set[n] = true
		}
	}
	return set
}

// Targets extracts normalized molecular targets. Every pattern is searched
// independently, so text mentioning "CLDN18.2" yields both "cldn18 2" and
// "cldn18", which makes exact-form differences across documents overlap.
func (e *Extractor) Targets(text string) map[string]bool {
	set := make(map[string]bool)
	lower := strings.ToLower(text)
	for _, re := range e.targets {
		if m := re.FindString(lower); m != "" {
			set[NormalizeEntity(m)] = true
		}
	}
	return set
}

// Diseases extracts disease names.
func (e *Extractor) Diseases(text string) map[string]bool {
	return matchEntries(e.diseases, text)
}

// Lines extracts lines of therapy in canonical form ("1L", "2L", ...).
func (e *Extractor) Lines(text string) map[string]bool {
	set := make(map[string]bool)
	lower := strings.ToLower(text)
	for _, lp := range e.lines {
		if lp.re.MatchString(lower) {
			set[lp.normalized] = true
		}
	}
	return set
}

// Biomarkers extracts biomarker names.
func (e *Extractor) Biomarkers(text string) map[string]bool {
	return matchEntries(e.biomarkers, text)
}

// MoA extracts mechanisms of action.
func (e *Extractor) MoA(text string) map[string]bool {
	return matchEntries(e.moa, text)
}

func matchEntries(entries []patternEntry, text string) map[string]bool {
	set := make(map[string]bool)
	lower := strings.ToLower(text)
	for _, pe := range entries {
		if pe.re.MatchString(lower) {
			set[pe.entry] = true
		}
	}
	return set
}

// ProgramEntities builds the per-category sets for the user's program
// profile. The program name feeds target and mechanism extraction since
// names like "KRAS-G12C-inhibitor" encode both.
func (e *Extractor) ProgramEntities(profile model.ProgramProfile) map[string]map[string]bool {
	entities := map[string]map[string]bool{
		"target":    {},
		"disease":   {},
		"line":      {},
		"biomarker": {},
		"moa":       {},
	}

	if profile.Target != "" {
		entities["target"] = NormalizeEntityList([]string{profile.Target})
	}
	for t := range e.Targets(profile.ProgramName) {
		entities["target"][t] = true
	}

	if profile.Indication != "" {
		entities["disease"] = e.Diseases(profile.Indication)
		entities["line"] = e.Lines(profile.Indication)
	}
	entities["biomarker"] = e.Biomarkers(profile.Differentiators + " " + profile.Indication)
	entities["moa"] = e.MoA(profile.ProgramName + " " + profile.Differentiators)

	return entities
}

// CompetitorEntities builds the per-category sets from a fact's raw entity
// list. The target set also keeps the normalized raw entities themselves,
// so company and drug names can still overlap a profile target verbatim.
func (e *Extractor) CompetitorEntities(entities []string) map[string]map[string]bool {
	text := strings.Join(entities, " ")
	targets := NormalizeEntityList(entities)
	for t := range e.Targets(text) {
		targets[t] = true
	}
	return map[string]map[string]bool{
		"target":    targets,
		"disease":   e.Diseases(text),
		"line":      e.Lines(text),
		"biomarker": e.Biomarkers(text),
		"moa":       e.MoA(text),
	}
}
