package storage

import (
	"math"
	"strings"
)

// bm25Params holds the Okapi BM25 tuning constants named in spec §4.2.
type bm25Params struct {
	K1 float64
	B  float64
}

var defaultBM25Params = bm25Params{K1: 1.2, B: 0.75}

// bm25Doc is one document's tokenized body plus its precomputed term
// frequencies, as indexed by bm25Index.
type bm25Doc struct {
	id     string
	tokens []string
	tf     map[string]int
	length int
}

// bm25Index is a small in-memory Okapi BM25 index. It backs MemoryStore and
// is also the reference implementation other backends' lexical search is
// checked against in tests.
type bm25Index struct {
	params bm25Params
	docs   []*bm25Doc
	byID   map[string]*bm25Doc
	df     map[string]int // document frequency per term
	avgLen float64
}

func newBM25Index(params bm25Params) *bm25Index {
	return &bm25Index{
		params: params,
		byID:   make(map[string]*bm25Doc),
		df:     make(map[string]int),
	}
}

// tokenizeForIndex lowercases and splits on non-alphanumeric runs. It is
// intentionally simple; query-side normalization (spec §4.1) is the
// Normalizer's job, not the index's.
func tokenizeForIndex(body string) []string {
	return strings.FieldsFunc(strings.ToLower(body), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
}

// Add indexes a document body under id, replacing any prior entry for id.
func (idx *bm25Index) Add(id, body string) {
	if old, ok := idx.byID[id]; ok {
		idx.remove(old)
	}
	tokens := tokenizeForIndex(body)
	tf := make(map[string]int, len(tokens))
	for _, t := range tokens {
		tf[t]++
	}
	doc := &bm25Doc{id: id, tokens: tokens, tf: tf, length: len(tokens)}
	idx.docs = append(idx.docs, doc)
	idx.byID[id] = doc
	for term := range tf {
		idx.df[term]++
	}
	idx.recomputeAvgLen()
}

func (idx *bm25Index) remove(doc *bm25Doc) {
	for term := range doc.tf {
		idx.df[term]--
		if idx.df[term] <= 0 {
			delete(idx.df, term)
		}
	}
	delete(idx.byID, doc.id)
	filtered := idx.docs[:0]
	for _, d := range idx.docs {
		if d.id != doc.id {
			filtered = append(filtered, d)
		}
	}
	idx.docs = filtered
}

func (idx *bm25Index) recomputeAvgLen() {
	if len(idx.docs) == 0 {
		idx.avgLen = 0
		return
	}
	total := 0
	for _, d := range idx.docs {
		total += d.length
	}
	idx.avgLen = float64(total) / float64(len(idx.docs))
}

// Score scores every indexed document against queryTokens and returns hits
// sorted by descending score, truncated to k. Documents scoring zero (no
// overlapping terms) are excluded rather than returned as noise.
func (idx *bm25Index) Score(queryTokens []string, k int) []LexicalResult {
	n := float64(len(idx.docs))
	if n == 0 {
		return nil
	}

	results := make([]LexicalResult, 0, len(idx.docs))
	for _, doc := range idx.docs {
		score := idx.scoreDoc(doc, queryTokens, n)
		if score > 0 {
			results = append(results, LexicalResult{DocID: doc.id, Score: score})
		}
	}

	sortResultsDesc(results)
	if k > 0 && len(results) > k {
		results = results[:k]
	}
	return results
}

func (idx *bm25Index) scoreDoc(doc *bm25Doc, queryTokens []string, n float64) float64 {
	var score float64
	seen := make(map[string]struct{}, len(queryTokens))
	for _, term := range queryTokens {
		if _, dup := seen[term]; dup {
			continue
		}
		seen[term] = struct{}{}

		df := idx.df[term]
		if df == 0 {
			continue
		}
		tf := float64(doc.tf[term])
		if tf == 0 {
			continue
		}

		idf := math.Log(1 + (n-float64(df)+0.5)/(float64(df)+0.5))
		norm := 1 - idx.params.B + idx.params.B*float64(doc.length)/maxFloat(idx.avgLen, 1)
		denom := tf + idx.params.K1*norm
		score += idf * (tf * (idx.params.K1 + 1)) / denom
	}
	return score
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func sortResultsDesc(results []LexicalResult) {
	// Small result sets; insertion sort keeps this dependency-free and
	// deterministic (stable on ties, which the Retriever's own tie-break
	// rules then resolve deterministically by document metadata).
	for i := 1; i < len(results); i++ {
		j := i
		for j > 0 && results[j-1].Score < results[j].Score {
			results[j-1], results[j] = results[j], results[j-1]
			j--
		}
	}
}
