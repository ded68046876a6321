// Package ingest loads competitor documents and fact files into the shapes
// the pipeline consumes: text chunks for indexing, validated facts for
// signal generation.
package ingest

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/ppiankov/ciscope/internal/model"
)

// Chunker cuts document text into overlapping word windows. Overlap keeps
// sentences that straddle a boundary retrievable from both sides.
type Chunker struct {
	size    int
	overlap int
}

// NewChunker builds a chunker from ingest config.
func NewChunker(cfg model.IngestConfig) *Chunker {
	size := cfg.ChunkSize
	if size <= 0 {
		size = 220
	}
	overlap := cfg.ChunkOverlap
	if overlap < 0 || overlap >= size {
		overlap = size / 5
	}
	return &Chunker{size: size, overlap: overlap}
}

// Chunk splits text into windows of up to size words, each sharing overlap
// words with its predecessor. Metadata is copied onto every chunk.
func (c *Chunker) Chunk(docID, text string, metadata map[string]string) []model.Chunk {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	step := c.size - c.overlap
	var chunks []model.Chunk
	for start := 0; start < len(words); start += step {
		end := start + c.size
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, model.Chunk{
			ID:       fmt.Sprintf("%s#%d", docID, len(chunks)),
			DocID:    docID,
			Text:     strings.Join(words[start:end], " "),
			Position: len(chunks),
			Metadata: copyMetadata(metadata),
		})
		if end == len(words) {
			break
		}
	}
	return chunks
}

func copyMetadata(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// HTMLText returns the visible text of an HTML document, skipping script,
// style, and other non-content elements.
func HTMLText(content string) (string, error) {
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe":
				return
			}
		}
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				buf.WriteString(text)
				buf.WriteString(" ")
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)
	return strings.TrimSpace(buf.String()), nil
}
