package model

import "fmt"

// Chunk is a retrieval unit cut from an ingested document. Metadata holds
// flat key/value pairs usable as equality filters in dense search.
type Chunk struct {
	ID       string            `json:"id" yaml:"id"`
	DocID    string            `json:"doc_id" yaml:"doc_id"`
	Text     string            `json:"text" yaml:"text"`
	Position int               `json:"position" yaml:"position"`
	Metadata map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Validate checks that the chunk is usable for indexing.
func (c *Chunk) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("chunk id must not be empty")
	}
	if c.Text == "" {
		return fmt.Errorf("chunk %s: text must not be empty", c.ID)
	}
	return nil
}
