package pipeline

import (
	"fmt"
	"strings"

	"github.com/ppiankov/ciscope/internal/model"
)

// Delta is the difference between two runs' signals. Signals are matched by
// source fact: positional signal ids change between runs, fact ids do not.
type Delta struct {
	New     []model.Signal
	Changed []SignalChange
}

// SignalChange pairs the previous and current reading of one fact's signal.
type SignalChange struct {
	Before model.Signal
	After  model.Signal
}

// Empty reports whether nothing changed since the previous run.
func (d Delta) Empty() bool {
	return len(d.New) == 0 && len(d.Changed) == 0
}

// Diff compares the current report against a previous one.
func Diff(previous, current *model.Report) Delta {
	before := make(map[string]model.Signal, len(previous.Signals))
	for _, s := range previous.Signals {
		before[s.FromFact] = s
	}

	var delta Delta
	for _, s := range current.Signals {
		prev, seen := before[s.FromFact]
		if !seen {
			delta.New = append(delta.New, s)
			continue
		}
		if signalChanged(prev, s) {
			delta.Changed = append(delta.Changed, SignalChange{Before: prev, After: s})
		}
	}

	return delta
}

func signalChanged(a, b model.Signal) bool {
	return a.ImpactCode != b.ImpactCode || a.Score != b.Score || a.Stance != b.Stance
}

// Format renders the delta for the CLI summary.
func (d Delta) Format() string {
	if d.Empty() {
		return "No new or changed signals since the previous run.\n"
	}

	var b strings.Builder

	if len(d.New) > 0 {
		fmt.Fprintf(&b, "New signals (%d):\n", len(d.New))
		for _, s := range d.New {
			fmt.Fprintf(&b, "  + %s [%s] score=%.2f\n", s.FromFact, s.ImpactCode, s.Score)
		}
	}

	if len(d.Changed) > 0 {
		fmt.Fprintf(&b, "Changed signals (%d):\n", len(d.Changed))
		for _, c := range d.Changed {
			fmt.Fprintf(&b, "  ~ %s [%s score=%.2f stance=%s] -> [%s score=%.2f stance=%s]\n",
				c.Before.FromFact,
				c.Before.ImpactCode, c.Before.Score, stanceLabel(c.Before.Stance),
				c.After.ImpactCode, c.After.Score, stanceLabel(c.After.Stance))
		}
	}

	return b.String()
}

func stanceLabel(s model.Stance) string {
	if s == "" {
		return "none"
	}
	return string(s)
}
