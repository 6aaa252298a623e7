// Package admitly is the public API for the cite-or-abstain college
// admissions and financial aid question-answering engine.
//
// Construct an App with New, then call Ask for each incoming query:
//
//	app, err := admitly.New(admitly.WithStorage(store))
//	if err != nil { ... }
//	answer, err := app.Ask(ctx, "What GPA do I need to transfer into CS?")
//
// The import graph enforces a strict no-cycle rule: admitly (root) imports
// internal/*, but internal/* never imports admitly (root).
package admitly

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/admitly/admitly/internal/config"
	"github.com/admitly/admitly/internal/handlers"
	"github.com/admitly/admitly/internal/model"
	"github.com/admitly/admitly/internal/normalizer"
	"github.com/admitly/admitly/internal/reqctx"
	"github.com/admitly/admitly/internal/retrieval"
	"github.com/admitly/admitly/internal/router"
	"github.com/admitly/admitly/internal/service/embedding"
	"github.com/admitly/admitly/internal/storage"
	"github.com/admitly/admitly/internal/telemetry"
	"github.com/admitly/admitly/internal/validator"
)

// tracer names the spans Ask starts around the full pipeline, mirroring
// the teacher's http.request span on the HTTP layer one level down: here
// the span covers Normalize → Retrieve → Route → Handle → Validate for a
// single query, independent of whatever transport embeds admitly.
var tracer = otel.Tracer("admitly/ask")

// App is the assembled query-answering pipeline: Normalizer, Retriever,
// Router, Handler registry, Calculators, and Validator, wired from
// internal/config and a Storage backend. App has no public fields — use
// New's options to configure it.
type App struct {
	cfg              config.Config
	store            storage.Storage
	normalizer       *normalizer.Normalizer
	retriever        *retrieval.Retriever
	widenedRetriever *retrieval.Retriever
	router           *router.Router
	registry         *handlers.Registry
	validator        *validator.Validator
	formatter        Formatter
	otelShutdown     func(context.Context) error
	logger           *slog.Logger

	askDuration       metric.Float64Histogram
	retrievalDuration metric.Float64Histogram
}

// askMetrics builds the histograms Ask records into. Shared by New and
// tests so both observe the same instrumentation scope; the global meter
// provider defaults to a no-op implementation until telemetry.Init runs,
// so this is safe to call even when OTEL export is disabled.
func askMetrics() (askDuration, retrievalDuration metric.Float64Histogram) {
	meter := telemetry.Meter("admitly/ask")
	askDuration, _ = meter.Float64Histogram("admitly.ask.duration",
		metric.WithDescription("Time to answer or abstain on a single query (ms)"),
		metric.WithUnit("ms"),
	)
	retrievalDuration, _ = meter.Float64Histogram("admitly.retrieval.duration",
		metric.WithDescription("Time spent in the Hybrid Retriever per Ask call, including any widened retry (ms)"),
		metric.WithUnit("ms"),
	)
	return askDuration, retrievalDuration
}

// New wires a ready-to-use App. It loads configuration from the
// environment, connects the configured storage backend (unless
// WithStorage supplied one), initializes the embedding provider and OTEL
// exporters, and builds the Normalizer/Retriever/Router/Handler/Validator
// chain. It does not run any query; call Ask for that.
func New(opts ...Option) (*App, error) {
	o := resolvedOptions{}
	for _, fn := range opts {
		fn(&o)
	}

	logger := o.logger
	if logger == nil {
		logger = slog.Default()
	}

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("admitly: load config: %w", err)
	}
	if o.currentYear != 0 {
		cfg.CurrentYear = o.currentYear
	}
	if o.cfgOverrides != nil {
		o.cfgOverrides(&cfg)
	}

	otelShutdown, err := telemetry.Init(context.Background(), cfg.OTELEndpoint, cfg.ServiceName, "dev", cfg.OTELInsecure)
	if err != nil {
		return nil, fmt.Errorf("admitly: init telemetry: %w", err)
	}

	store := o.store
	if store == nil {
		store, err = openConfiguredStorage(context.Background(), cfg)
		if err != nil {
			return nil, fmt.Errorf("admitly: open storage: %w", err)
		}
	}

	embedder := configuredEmbedder(cfg, logger)

	norm := normalizer.New(cfg.CurrentYear, o.knownEntities)

	retr := retrieval.New(store, embedder, retrieval.Params{
		RetrievalK:            cfg.RetrievalK,
		FusionC:               float64(cfg.FusionC),
		AuthorityBoost:        cfg.AuthorityBoost,
		ScoreFloor:            cfg.ScoreFloor,
		TopN:                  cfg.TopN,
		MinSurvivingForAnswer: cfg.MinSurvivingForAnswer,
	})

	// widenedRetriever backs a handler's single post-rejection retry (spec
	// §4.4): a larger top-N (WidenedRetrievalK) and a lower score floor,
	// everything else unchanged.
	widenedRetr := retrieval.New(store, embedder, retrieval.Params{
		RetrievalK:            cfg.RetrievalK,
		FusionC:               float64(cfg.FusionC),
		AuthorityBoost:        cfg.AuthorityBoost,
		ScoreFloor:            cfg.WidenedScoreFloor,
		TopN:                  cfg.WidenedRetrievalK,
		MinSurvivingForAnswer: cfg.MinSurvivingForAnswer,
	})

	registry := handlers.NewRegistry()
	rt := router.New(registry.Registrations())

	v := validator.New(validator.Params{
		CitationCoverageFloor:   cfg.CitationCoverageFloor,
		MinAuthoritativeSources: cfg.MinAuthoritativeSources,
	})

	askDuration, retrievalDuration := askMetrics()

	return &App{
		cfg:               cfg,
		store:             store,
		normalizer:        norm,
		retriever:         retr,
		widenedRetriever:  widenedRetr,
		router:            rt,
		registry:          registry,
		validator:         v,
		formatter:         PlainTextFormatter{},
		otelShutdown:      otelShutdown,
		logger:            logger,
		askDuration:       askDuration,
		retrievalDuration: retrievalDuration,
	}, nil
}

// Close shuts down the OTEL exporters. It does not close the storage
// backend, including one that New opened itself.
func (a *App) Close(ctx context.Context) error {
	if a.otelShutdown != nil {
		return a.otelShutdown(ctx)
	}
	return nil
}

// Ask runs the full pipeline — Normalizer, Retriever, Router, Handler(s),
// Validator — for a single raw query, returning exactly one of a sealed
// Answer.Result or an Answer.Abstention (spec §3, §7). The whole pipeline
// is bounded by cfg.RequestTimeout (spec §5): exceeding it never surfaces
// as a Go error, only as an INSUFFICIENT_EVIDENCE abstention.
func (a *App) Ask(ctx context.Context, rawQuery string) (Answer, error) {
	ctx, cancel := context.WithTimeout(ctx, a.cfg.RequestTimeout)
	defer cancel()

	ctx, span := tracer.Start(ctx, "admitly.ask")
	defer span.End()
	askStart := time.Now()
	defer func() {
		a.recordDuration(ctx, a.askDuration, askStart)
	}()

	ctx, state := reqctx.New(ctx, a.cfg.HandlerRetryLimit)

	signals, abst := a.normalizer.Normalize(rawQuery)
	if abst != nil {
		return Answer{Abstention: abst}, nil
	}
	span.SetAttributes(attribute.StringSlice("admitly.query_tokens", signals.Tokens))

	retrievalStart := time.Now()
	retrieved, err := a.retriever.Retrieve(ctx, signals.RawQuery, signals.Tokens, nil)
	a.recordDuration(ctx, a.retrievalDuration, retrievalStart)
	if deadline := deadlineAbstention(ctx, err); deadline != nil {
		return Answer{Abstention: deadline}, nil
	}
	if err != nil {
		return Answer{}, fmt.Errorf("admitly: retrieve: %w", err)
	}
	if retrieved.InsufficientEvidence {
		return Answer{Abstention: &model.Abstention{
			Reason:  model.ReasonInsufficientEvidence,
			Message: "not enough relevant passages were retrieved to answer this query",
		}}, nil
	}
	state.Candidates = retrieved.Candidates

	for {
		if deadline := deadlineAbstention(ctx, nil); deadline != nil {
			return Answer{Abstention: deadline}, nil
		}

		decision := a.router.Route(signals, state.Candidates)
		if decision.Abstention != nil {
			return Answer{Abstention: decision.Abstention}, nil
		}

		merged, abst := a.applyAndMerge(ctx, decision.HandlerIDs, signals, state.Candidates)
		if abst != nil {
			return Answer{Abstention: abst}, nil
		}

		outcome := a.validator.Validate(merged, state.Candidates, nil)
		if outcome.Abstention != nil {
			return Answer{Abstention: outcome.Abstention}, nil
		}
		if !outcome.Retryable {
			sealed := outcome.Accepted
			return Answer{Result: &sealed}, nil
		}

		if !state.CanRetry() {
			return Answer{Abstention: &model.Abstention{
				Reason:  model.ReasonInsufficientEvidence,
				Message: "the answer could not be validated even after a widened retrieval retry",
			}}, nil
		}
		state.RecordRetry()

		widenedStart := time.Now()
		widened, err := a.widenedRetriever.Retrieve(ctx, signals.RawQuery, signals.Tokens, nil)
		a.recordDuration(ctx, a.retrievalDuration, widenedStart)
		if deadline := deadlineAbstention(ctx, err); deadline != nil {
			return Answer{Abstention: deadline}, nil
		}
		if err != nil {
			return Answer{}, fmt.Errorf("admitly: widened retrieve: %w", err)
		}
		state.Candidates = widened.Candidates
	}
}

// recordDuration records the elapsed time since start into h, in
// milliseconds. h is nil for an App built by hand (e.g. in tests) without
// going through askMetrics, in which case this is a no-op.
func (a *App) recordDuration(ctx context.Context, h metric.Float64Histogram, start time.Time) {
	if h == nil {
		return
	}
	h.Record(ctx, float64(time.Since(start).Microseconds())/1000)
}

// deadlineAbstention reports the request-timeout abstention when ctx has
// expired or been canceled, or when err itself is a context error (a
// blocking call can return context.DeadlineExceeded/Canceled directly
// rather than leaving it to be observed via ctx.Err()). Returns nil when
// neither condition holds, so the caller falls through to normal handling.
func deadlineAbstention(ctx context.Context, err error) *model.Abstention {
	if ctx.Err() == nil && !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled) {
		return nil
	}
	return &model.Abstention{
		Reason:  model.ReasonInsufficientEvidence,
		Message: "the request deadline was exceeded before an answer could be validated",
	}
}

// Format renders answer through the App's configured Formatter.
func (a *App) Format(ctx context.Context, answer Answer) (string, error) {
	return a.formatter.Format(ctx, answer)
}

// applyAndMerge runs every handler the Router selected and concatenates
// their sections/calculations into a single candidate result (spec §4.3's
// compose behavior: two disjoint-trigger handlers within the priority
// window contribute to one answer).
func (a *App) applyAndMerge(ctx context.Context, handlerIDs []string, signals model.QuerySignals, candidates []model.CandidatePassage) (model.HandlerResult, *model.Abstention) {
	merged := model.HandlerResult{}
	var ids []string
	for _, id := range handlerIDs {
		h := a.registry.Handler(id)
		if h == nil {
			continue
		}
		result, abst := h.Apply(ctx, signals, candidates, handlers.DefaultCalculators)
		if abst != nil {
			return model.HandlerResult{}, abst
		}
		ids = append(ids, result.HandlerID)
		merged.Sections = append(merged.Sections, result.Sections...)
		merged.Calculations = append(merged.Calculations, result.Calculations...)
		if result.Confidence > merged.Confidence {
			merged.Confidence = result.Confidence
		}
	}
	merged.HandlerID = joinIDs(ids)
	return merged, nil
}

func joinIDs(ids []string) string {
	out := ""
	for i, id := range ids {
		if i > 0 {
			out += "+"
		}
		out += id
	}
	return out
}

// embedderAdapter adapts internal/service/embedding's pgvector-returning
// Provider to retrieval.Embedder's narrower []float32 seam.
type embedderAdapter struct {
	provider embedding.Provider
}

// Embed special-cases embedding.ErrNoProvider the same way the teacher's
// own decisions service does: it is a signal to skip embedding, never a
// retrieval failure. Returning (nil, nil) here makes the Retriever's Stage
// A dense arm a no-op (storage.DenseSearcher implementations all treat a
// zero-length query embedding as "skip dense search"), so a Noop embedder
// degrades retrieval to lexical-only instead of failing every query.
func (e embedderAdapter) Embed(ctx context.Context, text string) ([]float32, error) {
	vec, err := e.provider.Embed(ctx, text)
	if err != nil {
		if errors.Is(err, embedding.ErrNoProvider) {
			return nil, nil
		}
		return nil, err
	}
	return vec.Slice(), nil
}

// configuredEmbedder selects an embedding.Provider per cfg.EmbeddingProvider
// and wraps it for retrieval.Embedder. It never fails outright: an
// unreachable or misconfigured provider falls back to NoopProvider (no
// vectors, dense retrieval degrades to lexical-only) rather than blocking
// startup — semantic search is an enhancement, not a hard dependency.
func configuredEmbedder(cfg config.Config, logger *slog.Logger) retrieval.Embedder {
	dims := cfg.EmbeddingDimensions

	switch cfg.EmbeddingProvider {
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			logger.Error("OPENAI_API_KEY required when ADMITLY_EMBEDDING_PROVIDER=openai")
			return embedderAdapter{embedding.NewNoopProvider(dims)}
		}
		p, err := embedding.NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.EmbeddingModel, dims)
		if err != nil {
			logger.Error("openai provider init failed", "error", err)
			return embedderAdapter{embedding.NewNoopProvider(dims)}
		}
		return embedderAdapter{p}
	case "ollama":
		return embedderAdapter{embedding.NewOllamaProvider(cfg.OllamaURL, cfg.OllamaModel, dims)}
	case "noop":
		return embedderAdapter{embedding.NewNoopProvider(dims)}
	case "auto":
		fallthrough
	default:
		if ollamaReachable(cfg.OllamaURL) {
			return embedderAdapter{embedding.NewOllamaProvider(cfg.OllamaURL, cfg.OllamaModel, dims)}
		}
		if cfg.OpenAIAPIKey != "" {
			p, err := embedding.NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.EmbeddingModel, dims)
			if err != nil {
				logger.Error("openai provider init failed", "error", err)
				return embedderAdapter{embedding.NewNoopProvider(dims)}
			}
			return embedderAdapter{p}
		}
		logger.Warn("no embedding provider available, using noop (semantic search disabled)")
		return embedderAdapter{embedding.NewNoopProvider(dims)}
	}
}

// ollamaReachable probes baseURL's /api/tags endpoint for auto-detection.
func ollamaReachable(baseURL string) bool {
	c, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(c, http.MethodGet, baseURL+"/api/tags", nil)
	if err != nil {
		return false
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false
	}
	_ = resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

func openConfiguredStorage(ctx context.Context, cfg config.Config) (storage.Storage, error) {
	switch cfg.StorageBackend {
	case "memory":
		return storage.NewMemoryStore(), nil
	case "sqlite":
		return storage.OpenSQLiteStore(ctx, cfg.SQLitePath)
	case "postgres":
		return storage.OpenPostgresStore(ctx, cfg.DatabaseURL, cfg.EmbeddingDimensions)
	case "qdrant":
		return openQdrantBackedStorage(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

// openQdrantBackedStorage pairs Postgres (lexical search + document
// hydration) with Qdrant (dense search), for deployments that need the
// ANN index to scale independently of the relational store.
func openQdrantBackedStorage(ctx context.Context, cfg config.Config) (storage.Storage, error) {
	pg, err := storage.OpenPostgresStore(ctx, cfg.DatabaseURL, cfg.EmbeddingDimensions)
	if err != nil {
		return nil, fmt.Errorf("admitly: open postgres facet: %w", err)
	}

	host, port, err := storage.ParseQdrantAddr(cfg.QdrantURL)
	if err != nil {
		return nil, fmt.Errorf("admitly: parse qdrant url: %w", err)
	}
	qdrantIdx, err := storage.NewQdrantIndex(ctx, storage.QdrantConfig{
		Host:           host,
		Port:           port,
		APIKey:         cfg.QdrantAPIKey,
		CollectionName: cfg.QdrantCollection,
		VectorSize:     uint64(cfg.EmbeddingDimensions),
	})
	if err != nil {
		return nil, fmt.Errorf("admitly: open qdrant facet: %w", err)
	}

	return storage.Compose(pg, qdrantIdx, pg), nil
}
