package storage

import (
	"context"
	"testing"

	"github.com/admitly/admitly/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedStore(t *testing.T) *MemoryStore {
	t.Helper()
	s := NewMemoryStore()
	s.Put(model.Document{
		ID:         "doc-1",
		Collection: model.CollectionAidPolicies,
		SourceURL:  "https://studentaid.gov/parent-plus",
		Body:       "Parent PLUS loan denial appeal process for adverse credit history",
	}, []float32{1, 0, 0})
	s.Put(model.Document{
		ID:         "doc-2",
		Collection: model.CollectionAidPolicies,
		SourceURL:  "https://studentaid.gov/sap",
		Body:       "Satisfactory academic progress SAP appeal for foster care students",
	}, []float32{0, 1, 0})
	s.Put(model.Document{
		ID:         "doc-3",
		Collection: model.CollectionMajorGates,
		SourceURL:  "https://washington.edu/cs/transfer",
		Body:       "Computer science internal transfer GPA threshold requirements",
	}, nil)
	return s
}

func TestMemoryStoreSearchLexical(t *testing.T) {
	s := seedStore(t)
	ctx := context.Background()

	results, err := s.SearchLexical(ctx, []string{"parent", "plus", "denial"}, nil, 10)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "doc-1", results[0].DocID)
}

func TestMemoryStoreSearchLexicalScopedToCollection(t *testing.T) {
	s := seedStore(t)
	ctx := context.Background()

	gate := model.CollectionMajorGates
	results, err := s.SearchLexical(ctx, []string{"transfer"}, &gate, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "doc-3", results[0].DocID)
}

func TestMemoryStoreSearchLexicalNoMatchReturnsEmptyNotError(t *testing.T) {
	s := seedStore(t)
	results, err := s.SearchLexical(context.Background(), []string{"zzqqnonexistent"}, nil, 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestMemoryStoreSearchDense(t *testing.T) {
	s := seedStore(t)
	results, err := s.SearchDense(context.Background(), []float32{1, 0, 0}, nil, 10)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "doc-1", results[0].DocID)
}

func TestMemoryStoreSearchDenseEmptyQueryReturnsEmpty(t *testing.T) {
	s := seedStore(t)
	results, err := s.SearchDense(context.Background(), nil, nil, 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestMemoryStoreGetDocument(t *testing.T) {
	s := seedStore(t)
	doc, err := s.GetDocument(context.Background(), "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "https://studentaid.gov/parent-plus", doc.SourceURL)

	_, err = s.GetDocument(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreListCollections(t *testing.T) {
	s := seedStore(t)
	infos, err := s.ListCollections(context.Background())
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, model.CollectionAidPolicies, infos[0].Name)
	assert.Equal(t, 2, infos[0].Count)
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, cosineSimilarity([]float32{1, 2, 3}, []float32{1, 2, 3}), 1e-9)
	assert.InDelta(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.Equal(t, 0.0, cosineSimilarity([]float32{1, 2}, []float32{1, 2, 3}))
	assert.Equal(t, 0.0, cosineSimilarity(nil, nil))
}
