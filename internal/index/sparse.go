// Package index provides the in-memory sparse (BM25) and dense (cosine)
// indices backing hybrid retrieval. Both indices serialize rebuilds against
// reads with a single RWMutex so a search never observes a half-built corpus.
package index

import (
	"math"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/ppiankov/ciscope/internal/model"
)

// BM25 free parameters. Standard Okapi values.
const (
	bm25K1 = 1.2
	bm25B  = 0.75
)

var tokenPattern = regexp.MustCompile(`[a-z0-9]+(?:[.\-/][a-z0-9]+)*`)

// Tokenize lowercases text and splits it into index terms. Hyphenated and
// dotted terms like "pd-l1" and "cldn18.2" stay whole so drug and target
// names survive tokenization.
func Tokenize(text string) []string {
	return tokenPattern.FindAllString(strings.ToLower(text), -1)
}

// Hit is a single scored match from an index.
type Hit struct {
	ID    string
	Text  string
	Score float64
}

type sparseDoc struct {
	chunk  model.Chunk
	length int
}

// SparseIndex is a BM25 Okapi index over tokenized chunks.
// The zero value is empty: Search on an unbuilt index returns nil,
// which lets the retriever degrade to dense-only.
type SparseIndex struct {
	mu        sync.RWMutex
	docs      []sparseDoc
	byID      map[string]int
	postings  map[string]map[int]int // term -> doc ordinal -> term frequency
	totalLen  int
}

// NewSparseIndex returns an empty index.
func NewSparseIndex() *SparseIndex {
	return &SparseIndex{
		byID:     make(map[string]int),
		postings: make(map[string]map[int]int),
	}
}

// Build replaces the index contents with the given chunks. A chunk whose ID
// already appeared in the batch replaces the earlier occurrence before any
// term is indexed, so postings always describe the surviving text.
func (s *SparseIndex) Build(chunks []model.Chunk) {
	docs := make([]sparseDoc, 0, len(chunks))
	byID := make(map[string]int, len(chunks))
	for _, c := range chunks {
		if prev, ok := byID[c.ID]; ok {
			docs[prev].chunk = c
			continue
		}
		byID[c.ID] = len(docs)
		docs = append(docs, sparseDoc{chunk: c})
	}

	postings := make(map[string]map[int]int)
	totalLen := 0
	for ord := range docs {
		terms := Tokenize(docs[ord].chunk.Text)
		docs[ord].length = len(terms)
		totalLen += len(terms)
		for _, t := range terms {
			if postings[t] == nil {
				postings[t] = make(map[int]int)
			}
			postings[t][ord]++
		}
	}

	s.mu.Lock()
	s.docs = docs
	s.byID = byID
	s.postings = postings
	s.totalLen = totalLen
	s.mu.Unlock()
}

// Len reports the number of indexed chunks.
func (s *SparseIndex) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

// Search returns the top-n chunks by BM25 score for the query. An unbuilt
// or empty index returns nil. Ties break on chunk ID for determinism.
func (s *SparseIndex) Search(query string, n int) []Hit {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.docs) == 0 || n <= 0 {
		return nil
	}

	avgLen := float64(s.totalLen) / float64(len(s.docs))
	scores := make(map[int]float64)
	for _, term := range Tokenize(query) {
		posting, ok := s.postings[term]
		if !ok {
			continue
		}
		idf := idf(len(s.docs), len(posting))
		for ord, tf := range posting {
			scores[ord] += idf * tfNorm(float64(tf), float64(s.docs[ord].length), avgLen)
		}
	}

	hits := make([]Hit, 0, len(scores))
	for ord, score := range scores {
		hits = append(hits, Hit{
			ID:    s.docs[ord].chunk.ID,
			Text:  s.docs[ord].chunk.Text,
			Score: score,
		})
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].ID < hits[j].ID
	})
	if len(hits) > n {
		hits = hits[:n]
	}
	return hits
}

func idf(totalDocs, docFreq int) float64 {
	return math.Log((float64(totalDocs)-float64(docFreq))/(float64(docFreq)+0.5) + 1)
}

func tfNorm(tf, docLen, avgLen float64) float64 {
	if avgLen == 0 {
		return 0
	}
	return (tf * (bm25K1 + 1)) / (tf + bm25K1*(1-bm25B+bm25B*docLen/avgLen))
}
