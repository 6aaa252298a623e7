package retrieval

import (
	"context"
	"testing"
	"time"

	"github.com/admitly/admitly/internal/model"
	"github.com/admitly/admitly/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEmbedder struct {
	vector []float32
}

func (f fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return f.vector, nil
}

func defaultParams() Params {
	return Params{
		RetrievalK:            50,
		FusionC:                60,
		AuthorityBoost:         1.5,
		ScoreFloor:             0.001,
		TopN:                   8,
		MinSurvivingForAnswer:  3,
	}
}

func seedRetrievalStore(t *testing.T) *storage.MemoryStore {
	t.Helper()
	s := storage.NewMemoryStore()
	now := time.Now()
	s.Put(model.Document{
		ID: "auth-1", Collection: model.CollectionAidPolicies,
		SourceURL: "https://studentaid.gov/parent-plus", Body: "Parent PLUS denial appeal unsubsidized loan",
		LastVerified: now,
	}, []float32{1, 0, 0})
	s.Put(model.Document{
		ID: "auth-2", Collection: model.CollectionAidPolicies,
		SourceURL: "https://washington.edu/aid/parent-plus", Body: "Parent PLUS denial endorser additional loan",
		LastVerified: now,
	}, []float32{0.9, 0.1, 0})
	s.Put(model.Document{
		ID: "nonauth-1", Collection: model.CollectionAidPolicies,
		SourceURL: "https://blog.example.com/parent-plus", Body: "Parent PLUS denial opinion blog",
		LastVerified: now,
	}, []float32{0.8, 0.2, 0})
	return s
}

func TestRetrieveFusesAndBoostsAuthority(t *testing.T) {
	store := seedRetrievalStore(t)
	r := New(store, fakeEmbedder{vector: []float32{1, 0, 0}}, defaultParams())

	result, err := r.Retrieve(context.Background(), "parent plus denial", []string{"parent", "plus", "denial"}, nil)
	require.NoError(t, err)
	require.NotEmpty(t, result.Candidates)

	// authoritative documents should outrank the non-authoritative one given
	// comparable raw fusion scores.
	assert.True(t, result.Candidates[0].Document.IsAuthoritative())
}

func TestRetrieveInsufficientEvidenceBelowMinimum(t *testing.T) {
	store := storage.NewMemoryStore()
	store.Put(model.Document{ID: "d1", SourceURL: "https://a.edu/x", Body: "foster care appeal"}, []float32{1, 0})
	r := New(store, fakeEmbedder{vector: []float32{1, 0}}, defaultParams())

	result, err := r.Retrieve(context.Background(), "foster care", []string{"foster", "care"}, nil)
	require.NoError(t, err)
	assert.True(t, result.InsufficientEvidence)
}

func TestRetrieveScopedToCollection(t *testing.T) {
	store := storage.NewMemoryStore()
	store.Put(model.Document{ID: "d1", Collection: model.CollectionMajorGates, SourceURL: "https://a.edu/x", Body: "gpa threshold transfer"}, []float32{1, 0})
	store.Put(model.Document{ID: "d2", Collection: model.CollectionAidPolicies, SourceURL: "https://a.edu/y", Body: "gpa threshold transfer"}, []float32{1, 0})

	r := New(store, fakeEmbedder{vector: []float32{1, 0}}, defaultParams())
	gate := model.CollectionMajorGates
	result, err := r.Retrieve(context.Background(), "gpa threshold transfer", []string{"gpa", "threshold", "transfer"}, &gate)
	require.NoError(t, err)
	for _, c := range result.Candidates {
		assert.Equal(t, model.CollectionMajorGates, c.Document.Collection)
	}
}

func TestRetrieveScoreFloorExcludesWeakMatches(t *testing.T) {
	store := storage.NewMemoryStore()
	store.Put(model.Document{ID: "d1", SourceURL: "https://a.edu/x", Body: "unrelated veterans content"}, []float32{0, 1})

	params := defaultParams()
	params.ScoreFloor = 10.0 // impossibly high, nothing survives
	r := New(store, fakeEmbedder{vector: []float32{1, 0}}, params)

	result, err := r.Retrieve(context.Background(), "veterans", []string{"veterans"}, nil)
	require.NoError(t, err)
	assert.Empty(t, result.Candidates)
}

func TestFuseCombinesRanksFromBothArms(t *testing.T) {
	lex := []storage.LexicalResult{{DocID: "a", Score: 5}, {DocID: "b", Score: 3}}
	dense := []storage.DenseResult{{DocID: "b", Score: 0.9}, {DocID: "c", Score: 0.5}}

	fused := fuse(lex, dense, 60)
	require.Contains(t, fused, "b")
	assert.Equal(t, model.ScoreSourceBoth, fused["b"].source)
	assert.Equal(t, model.ScoreSourceLexical, fused["a"].source)
	assert.Equal(t, model.ScoreSourceDense, fused["c"].source)

	expectedB := 1.0/(60+2) + 1.0/(60+1)
	assert.InDelta(t, expectedB, fused["b"].score, 1e-9)
}

func TestSortCandidatesTieBreaks(t *testing.T) {
	now := time.Now()
	older := now.AddDate(0, -1, 0)

	candidates := []model.CandidatePassage{
		{Document: model.Document{ID: "z", SourceURL: "https://x.com", LastVerified: now}, FinalScore: 1.0},
		{Document: model.Document{ID: "a", SourceURL: "https://x.edu", LastVerified: older}, FinalScore: 1.0},
		{Document: model.Document{ID: "b", SourceURL: "https://y.edu", LastVerified: now}, FinalScore: 1.0},
	}
	sortCandidates(candidates)

	// authority wins first among equal scores, then recency.
	assert.Equal(t, "b", candidates[0].Document.ID)
	assert.Equal(t, "a", candidates[1].Document.ID)
	assert.Equal(t, "z", candidates[2].Document.ID)
}
