package ingest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/ciscope/internal/model"
)

// LoadDocuments reads every .txt, .md, and .html file under dir and chunks
// it. The full file name, extension included, becomes the document id so
// acme.txt and acme.md never collide; HTML is reduced to visible text first.
func LoadDocuments(dir string, chunker *Chunker) ([]model.Chunk, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read documents dir: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".txt", ".md", ".html", ".htm":
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var chunks []model.Chunk
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("read document %s: %w", name, err)
		}
		text := string(data)
		ext := strings.ToLower(filepath.Ext(name))
		if ext == ".html" || ext == ".htm" {
			text, err = HTMLText(text)
			if err != nil {
				return nil, fmt.Errorf("document %s: %w", name, err)
			}
		}
		chunks = append(chunks, chunker.Chunk(name, text, map[string]string{"source": name})...)
	}
	return chunks, nil
}

// LoadFacts reads a JSON or YAML fact file. Records that fail validation
// are rejected individually and reported; one bad record never aborts the
// batch. The returned errors are per-record rejection reasons.
func LoadFacts(path string) ([]model.Fact, []error, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read facts file: %w", err)
	}

	var raw []model.Fact
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, nil, fmt.Errorf("parse facts yaml: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, nil, fmt.Errorf("parse facts json: %w", err)
		}
	}

	facts := make([]model.Fact, 0, len(raw))
	var rejected []error
	for i, f := range raw {
		if err := f.Validate(); err != nil {
			rejected = append(rejected, fmt.Errorf("record %d: %w", i+1, err))
			continue
		}
		facts = append(facts, f)
	}
	return facts, rejected, nil
}
