package index

import (
	"context"
	"io/fs"
	"math"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"docuchat/pkg/cache"
	"docuchat/pkg/core"
	"docuchat/pkg/logger"
	"docuchat/pkg/types"
	"docuchat/pkg/utils"
)

// Document is one indexed page of a source file.
type Document struct {
	File       string
	Page       int
	Method     types.ExtractionMethod
	Incomplete bool
	Text       string
}

// Match is a scored search hit.
type Match struct {
	Document Document
	Score    float64
}

// Index is an in-memory TF-IDF index over extracted document pages. Vectors
// are l2-normalized at build time so cosine similarity reduces to a dot
// product at query time.
type Index struct {
	vocabulary map[string]int
	idf        []float64
	vectors    []map[int]float64
	docs       []Document
	logger     *logger.Logger
}

var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}]+`)

// NewIndex returns an empty index.
func NewIndex(log *logger.Logger) *Index {
	return &Index{
		vocabulary: make(map[string]int),
		logger:     log,
	}
}

// Len reports the number of indexed documents.
func (ix *Index) Len() int {
	return len(ix.docs)
}

// Add queues a document for indexing. Call Build after the last Add.
func (ix *Index) Add(doc Document) {
	ix.docs = append(ix.docs, doc)
}

// AddEntry queues every non-failed page of a cache entry under the given
// file name. Failed OCR pages are skipped but mark the remaining pages of
// the document as incomplete.
func (ix *Index) AddEntry(file string, entry *cache.CacheEntry) {
	incomplete := !entry.Complete()
	for _, page := range entry.Pages {
		if page.Failed || strings.TrimSpace(page.Text) == "" {
			continue
		}
		ix.Add(Document{
			File:       file,
			Page:       page.Number,
			Method:     entry.Method,
			Incomplete: incomplete,
			Text:       page.Text,
		})
	}
}

// Build computes term frequencies, inverse document frequencies and the
// normalized vector for every queued document.
func (ix *Index) Build() {
	ix.vocabulary = make(map[string]int)
	docTokens := make([][]string, len(ix.docs))

	for i, doc := range ix.docs {
		tokens := tokenize(doc.Text)
		docTokens[i] = tokens
		for _, tok := range tokens {
			if _, ok := ix.vocabulary[tok]; !ok {
				ix.vocabulary[tok] = len(ix.vocabulary)
			}
		}
	}

	docFreq := make([]int, len(ix.vocabulary))
	for _, tokens := range docTokens {
		seen := make(map[int]bool, len(tokens))
		for _, tok := range tokens {
			seen[ix.vocabulary[tok]] = true
		}
		for id := range seen {
			docFreq[id]++
		}
	}

	// Smoothed IDF keeps terms that appear in every document from zeroing
	// out entirely.
	total := float64(len(ix.docs))
	ix.idf = make([]float64, len(ix.vocabulary))
	for id, df := range docFreq {
		ix.idf[id] = math.Log((1+total)/(1+float64(df))) + 1
	}

	ix.vectors = make([]map[int]float64, len(ix.docs))
	for i, tokens := range docTokens {
		ix.vectors[i] = ix.vectorize(tokens)
	}

	if ix.logger != nil {
		ix.logger.Debug("Index built: %d documents, %d terms", len(ix.docs), len(ix.vocabulary))
	}
}

// Search scores the query against every document and returns up to topK
// matches with cosine similarity at or above minScore, best first.
func (ix *Index) Search(query string, topK int, minScore float64) []Match {
	queryVec := ix.vectorize(tokenize(query))
	if len(queryVec) == 0 {
		return nil
	}

	var matches []Match
	for i, vec := range ix.vectors {
		score := dot(queryVec, vec)
		if score >= minScore {
			matches = append(matches, Match{Document: ix.docs[i], Score: score})
		}
	}

	sort.Slice(matches, func(a, b int) bool {
		if matches[a].Score != matches[b].Score {
			return matches[a].Score > matches[b].Score
		}
		if matches[a].Document.File != matches[b].Document.File {
			return matches[a].Document.File < matches[b].Document.File
		}
		return matches[a].Document.Page < matches[b].Document.Page
	})

	if topK > 0 && len(matches) > topK {
		matches = matches[:topK]
	}
	return matches
}

// vectorize maps tokens to an l2-normalized sparse TF-IDF vector. Tokens
// outside the vocabulary are ignored.
func (ix *Index) vectorize(tokens []string) map[int]float64 {
	counts := make(map[int]float64)
	for _, tok := range tokens {
		if id, ok := ix.vocabulary[tok]; ok {
			counts[id]++
		}
	}
	if len(counts) == 0 {
		return counts
	}

	var norm float64
	for id, tf := range counts {
		w := tf * ix.idf[id]
		counts[id] = w
		norm += w * w
	}
	norm = math.Sqrt(norm)
	for id := range counts {
		counts[id] /= norm
	}
	return counts
}

func dot(a, b map[int]float64) float64 {
	if len(b) < len(a) {
		a, b = b, a
	}
	var sum float64
	for id, w := range a {
		sum += w * b[id]
	}
	return sum
}

func tokenize(text string) []string {
	raw := tokenPattern.FindAllString(strings.ToLower(text), -1)
	tokens := raw[:0]
	for _, tok := range raw {
		if len(tok) < 2 || stopwords[tok] {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

// BuildFromDirectory loads every supported file under dir through the cache
// and indexes the results. Files that fail extraction are logged and
// skipped; one bad document never aborts the batch.
func BuildFromDirectory(ctx context.Context, dir string, loader *core.Loader, log *logger.Logger) (*Index, error) {
	ix := NewIndex(log)

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !utils.IsSupportedFile(path) {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		entry, err := loader.Load(ctx, path)
		if err != nil {
			log.Warn("Skipping %s: %v", path, err)
			return nil
		}
		ix.AddEntry(filepath.Base(path), entry)
		return nil
	})
	if err != nil {
		return nil, utils.NewIOError("failed to scan document directory", err)
	}

	ix.Build()
	return ix, nil
}
