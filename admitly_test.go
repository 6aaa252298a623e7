package admitly

import (
	"context"
	"testing"
	"time"

	"github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/admitly/admitly/internal/config"
	"github.com/admitly/admitly/internal/handlers"
	"github.com/admitly/admitly/internal/model"
	"github.com/admitly/admitly/internal/normalizer"
	"github.com/admitly/admitly/internal/retrieval"
	"github.com/admitly/admitly/internal/router"
	"github.com/admitly/admitly/internal/service/embedding"
	"github.com/admitly/admitly/internal/storage"
	"github.com/admitly/admitly/internal/validator"
)

// testApp builds an App without going through New (which touches the
// environment, .env loading, and OTEL init) — a plain in-memory pipeline
// wired the same way New wires it, for pipeline-level tests.
func testApp(t *testing.T, cfg config.Config) *App {
	t.Helper()
	store := storage.NewMemoryStore()
	registry := handlers.NewRegistry()
	askDuration, retrievalDuration := askMetrics()
	return &App{
		cfg:        cfg,
		store:      store,
		normalizer: normalizer.New(cfg.CurrentYear, nil),
		retriever: retrieval.New(store, nil, retrieval.Params{
			RetrievalK: 50, FusionC: 60, AuthorityBoost: 1.5, ScoreFloor: 0, TopN: 8, MinSurvivingForAnswer: 0,
		}),
		widenedRetriever: retrieval.New(store, nil, retrieval.Params{
			RetrievalK: 50, FusionC: 60, AuthorityBoost: 1.5, ScoreFloor: 0, TopN: 8, MinSurvivingForAnswer: 0,
		}),
		router:    router.New(registry.Registrations()),
		registry:  registry,
		validator:         validator.New(validator.Params{CitationCoverageFloor: 0.9, MinAuthoritativeSources: 3}),
		formatter:         PlainTextFormatter{},
		askDuration:       askDuration,
		retrievalDuration: retrievalDuration,
	}
}

func TestAsk_ExpiredRequestTimeoutAbstainsInsteadOfErroring(t *testing.T) {
	app := testApp(t, config.Config{RequestTimeout: time.Nanosecond, HandlerRetryLimit: 1, CurrentYear: 2026})
	time.Sleep(time.Millisecond)

	answer, err := app.Ask(context.Background(), "what is the FAFSA deadline?")

	require.NoError(t, err, "a blown deadline must never surface as a Go error")
	require.True(t, answer.IsAbstention())
	assert.Equal(t, model.ReasonInsufficientEvidence, answer.Abstention.Reason)
}

// fakeNoopProvider mimics embedding.NoopProvider's contract without
// importing it directly, so this test documents the contract
// embedderAdapter relies on rather than just re-exercising the real type.
type fakeNoopProvider struct{}

func (fakeNoopProvider) Embed(context.Context, string) (pgvector.Vector, error) {
	return pgvector.Vector{}, embedding.ErrNoProvider
}

func (fakeNoopProvider) EmbedBatch(context.Context, []string) ([]pgvector.Vector, error) {
	return nil, embedding.ErrNoProvider
}

func (fakeNoopProvider) Dimensions() int { return 1024 }

type fakeFailingProvider struct{ err error }

func (f fakeFailingProvider) Embed(context.Context, string) (pgvector.Vector, error) {
	return pgvector.Vector{}, f.err
}

func (f fakeFailingProvider) EmbedBatch(context.Context, []string) ([]pgvector.Vector, error) {
	return nil, f.err
}

func (fakeFailingProvider) Dimensions() int { return 1024 }

func TestEmbedderAdapter_NoProviderDegradesToNilEmbedding(t *testing.T) {
	adapter := embedderAdapter{provider: fakeNoopProvider{}}

	vec, err := adapter.Embed(context.Background(), "what is the FAFSA deadline?")

	require.NoError(t, err, "ErrNoProvider must not surface as a retrieval error")
	assert.Nil(t, vec, "a disabled embedder must produce a zero-length embedding so dense search is skipped, not queried with garbage")
}

func TestEmbedderAdapter_OtherErrorsPropagate(t *testing.T) {
	boom := assert.AnError
	adapter := embedderAdapter{provider: fakeFailingProvider{err: boom}}

	_, err := adapter.Embed(context.Background(), "what is the FAFSA deadline?")

	assert.ErrorIs(t, err, boom, "a real provider failure (e.g. network error) must still surface, not be silently swallowed")
}

func TestEmbedderAdapter_SuccessSlicesVector(t *testing.T) {
	adapter := embedderAdapter{provider: stubProvider{vec: pgvector.NewVector([]float32{0.1, 0.2, 0.3})}}

	vec, err := adapter.Embed(context.Background(), "what is the FAFSA deadline?")

	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vec)
}

type stubProvider struct{ vec pgvector.Vector }

func (s stubProvider) Embed(context.Context, string) (pgvector.Vector, error) {
	return s.vec, nil
}

func (s stubProvider) EmbedBatch(context.Context, []string) ([]pgvector.Vector, error) {
	return []pgvector.Vector{s.vec}, nil
}

func (stubProvider) Dimensions() int { return 3 }

func TestDeadlineAbstention_ExpiredContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 0)
	defer cancel()
	time.Sleep(time.Millisecond) // ensure the deadline has actually elapsed

	abst := deadlineAbstention(ctx, nil)

	require.NotNil(t, abst)
	assert.Equal(t, model.ReasonInsufficientEvidence, abst.Reason)
}

func TestDeadlineAbstention_ContextErrorWithoutCtxErr(t *testing.T) {
	// A blocking call can return context.DeadlineExceeded directly even
	// when the caller's own ctx.Err() check races against cancellation
	// propagation; deadlineAbstention must catch it via err too.
	abst := deadlineAbstention(context.Background(), context.DeadlineExceeded)

	require.NotNil(t, abst)
	assert.Equal(t, model.ReasonInsufficientEvidence, abst.Reason)
}

func TestDeadlineAbstention_LiveContextAndNilErr(t *testing.T) {
	abst := deadlineAbstention(context.Background(), nil)

	assert.Nil(t, abst)
}

func TestDeadlineAbstention_UnrelatedErrDoesNotAbstain(t *testing.T) {
	abst := deadlineAbstention(context.Background(), assert.AnError)

	assert.Nil(t, abst)
}
