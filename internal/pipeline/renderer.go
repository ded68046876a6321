package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/ciscope/internal/model"
)

// Renderer writes a report to its output artifacts. The Markdown file and
// the JSON sidecar carry the same logical content; the sidecar adds trace
// metrics and the machine-readable signal data.
type Renderer struct {
	verbose bool
}

// NewRenderer creates a new renderer
func NewRenderer(verbose bool) *Renderer {
	return &Renderer{verbose: verbose}
}

// RenderMarkdown writes the rendered Markdown report to a file.
func (r *Renderer) RenderMarkdown(report *model.Report, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(report.Markdown), 0o644); err != nil {
		return fmt.Errorf("write markdown: %w", err)
	}
	return nil
}

// RenderJSON writes the report's JSON sidecar to a file.
func (r *Renderer) RenderJSON(report *model.Report, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write JSON: %w", err)
	}
	return nil
}

// RenderReport writes both artifacts and prints the run summary.
func (r *Renderer) RenderReport(report *model.Report, mdPath, jsonPath string) error {
	if mdPath != "" {
		if err := r.RenderMarkdown(report, mdPath); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		if r.verbose {
			fmt.Printf("✓ Wrote Markdown: %s\n", mdPath)
		}
	}

	if jsonPath != "" {
		if err := r.RenderJSON(report, jsonPath); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		if r.verbose {
			fmt.Printf("✓ Wrote JSON: %s\n", jsonPath)
		}
	}

	fmt.Print(r.Summary(report))

	return nil
}

// Summary returns the one-screen run summary printed to stdout.
func (r *Renderer) Summary(report *model.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Program: %s\n", report.ProgramName)
	fmt.Fprintf(&b, "Query:   %s\n", report.Query)
	fmt.Fprintf(&b, "Facts: %d  Signals: %d  Actions: %d\n",
		report.Trace.TotalFacts, report.Trace.TotalSignals, report.Trace.TotalActions)
	fmt.Fprintf(&b, "Citation coverage: %.1f%%  Numeric traceability: %.1f%%  Action completeness: %.1f%%\n",
		report.Trace.CitationCoverage, report.Trace.NumericTraceability, report.Trace.ActionCompleteness)

	if report.CriticPassed {
		b.WriteString("Critic: PASSED\n")
	} else {
		fmt.Fprintf(&b, "Critic: FAILED (%d violations)\n", len(report.Violations))
		for _, v := range report.Violations {
			fmt.Fprintf(&b, "  - %s\n", v)
		}
	}

	return b.String()
}

// LoadJSON reads a previously written JSON sidecar.
func LoadJSON(path string) (*model.Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}
	var report model.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("parse report: %w", err)
	}
	return &report, nil
}
