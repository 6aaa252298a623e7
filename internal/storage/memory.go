package storage

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/admitly/admitly/internal/integrity"
	"github.com/admitly/admitly/internal/model"
)

// MemoryStore is an in-memory Storage backend: Okapi BM25 for lexical search
// and brute-force cosine similarity for dense search. It is the primary test
// fixture for the pipeline packages and is also usable as a demo/no-database
// backend for cmd/admitly.
type MemoryStore struct {
	mu         sync.RWMutex
	docs       map[string]model.Document
	embeddings map[string][]float32
	byCollection map[model.Collection]*bm25Index
	all          *bm25Index
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs:          make(map[string]model.Document),
		embeddings:    make(map[string][]float32),
		byCollection:  make(map[model.Collection]*bm25Index),
		all:           newBM25Index(defaultBM25Params),
	}
}

// Put indexes a document with its (already L2-normalized) dense embedding.
// A nil or empty embedding is permitted; the document simply never surfaces
// in dense search results.
func (m *MemoryStore) Put(doc model.Document, embedding []float32) {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc.ContentHash = integrity.ComputeDocumentHash(doc)
	m.docs[doc.ID] = doc
	if len(embedding) > 0 {
		m.embeddings[doc.ID] = embedding
	}

	m.all.Add(doc.ID, doc.Body)
	idx, ok := m.byCollection[doc.Collection]
	if !ok {
		idx = newBM25Index(defaultBM25Params)
		m.byCollection[doc.Collection] = idx
	}
	idx.Add(doc.ID, doc.Body)
}

// SearchLexical implements LexicalSearcher.
func (m *MemoryStore) SearchLexical(_ context.Context, queryTokens []string, collection *model.Collection, k int) ([]LexicalResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	idx := m.all
	if collection != nil {
		idx = m.byCollection[*collection]
		if idx == nil {
			return nil, nil
		}
	}
	return idx.Score(queryTokens, k), nil
}

// SearchDense implements DenseSearcher.
func (m *MemoryStore) SearchDense(_ context.Context, queryEmbedding []float32, collection *model.Collection, k int) ([]DenseResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(queryEmbedding) == 0 {
		return nil, nil
	}

	results := make([]DenseResult, 0, len(m.embeddings))
	for id, emb := range m.embeddings {
		if collection != nil {
			doc, ok := m.docs[id]
			if !ok || doc.Collection != *collection {
				continue
			}
		}
		sim := cosineSimilarity(queryEmbedding, emb)
		if sim > 0 {
			results = append(results, DenseResult{DocID: id, Score: sim})
		}
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if k > 0 && len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// GetDocument implements DocumentStore.
func (m *MemoryStore) GetDocument(_ context.Context, id string) (model.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	doc, ok := m.docs[id]
	if !ok {
		return model.Document{}, ErrNotFound
	}
	return doc, nil
}

// ListCollections implements DocumentStore.
func (m *MemoryStore) ListCollections(_ context.Context) ([]CollectionInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	counts := make(map[model.Collection]int)
	for _, doc := range m.docs {
		counts[doc.Collection]++
	}
	out := make([]CollectionInfo, 0, len(counts))
	for name, count := range counts {
		out = append(out, CollectionInfo{Name: name, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// cosineSimilarity assumes neither vector is all-zero and that both share a
// dimension; mismatched dimensions are treated as zero similarity rather
// than a panic, since a corpus embedding-model change should degrade
// search, not crash the request.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, magA, magB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		magA += float64(a[i]) * float64(a[i])
		magB += float64(b[i]) * float64(b[i])
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}
