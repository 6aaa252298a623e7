// Package config loads and validates application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all tunable parameters for the query-answering pipeline.
// Every field corresponds to one of the environment parameters enumerated
// in the specification's external-interfaces section.
type Config struct {
	// CurrentYear is the temporal guardrail comparison point. Queries about
	// years strictly greater than this abstain with TEMPORAL_OUT_OF_RANGE.
	CurrentYear int

	// RetrievalK is the number of candidates each retrieval arm (lexical,
	// dense) returns before fusion.
	RetrievalK int
	// FusionC is the Reciprocal Rank Fusion constant c in 1/(c+rank).
	FusionC int
	// AuthorityBoost multiplies a candidate's fused score when its source
	// host ends in .edu or .gov.
	AuthorityBoost float64
	// ScoreFloor is the minimum fused+authority score required to survive
	// Stage C filtering.
	ScoreFloor float64
	// TopN is the number of candidates returned to the Router after Stage C.
	TopN int

	// WidenedRetrievalK and WidenedScoreFloor parameterize a handler's single
	// widened-retrieval retry after a validator rejection.
	WidenedRetrievalK int
	WidenedScoreFloor float64
	// MinSurvivingForAnswer is the minimum candidate count Stage C must
	// produce before the query is even attempted; below this, the Retriever
	// reports INSUFFICIENT_EVIDENCE.
	MinSurvivingForAnswer int

	// CitationCoverageFloor is the minimum fraction of factual claims that
	// must carry at least one citation for a Handler Result to be accepted.
	CitationCoverageFloor float64
	// MinAuthoritativeSources is the minimum number of distinct .edu/.gov or
	// internal cited_answers citations an accepted answer must carry.
	MinAuthoritativeSources int
	// HandlerRetryLimit bounds how many times a handler may retry after a
	// validator rejection (with widened retrieval) before abstaining.
	HandlerRetryLimit int

	// RequestTimeout bounds a single query's end-to-end pipeline execution.
	// Exceeding it yields an INSUFFICIENT_EVIDENCE abstention, never a
	// technical error.
	RequestTimeout time.Duration

	// LogLevel controls slog verbosity ("debug", "info", "warn", "error").
	LogLevel string

	// Embedding provider settings, consumed by internal/service/embedding.
	EmbeddingProvider   string // "auto", "openai", "ollama", or "noop"
	OpenAIAPIKey        string
	EmbeddingModel      string
	EmbeddingDimensions int
	OllamaURL           string
	OllamaModel         string

	// OTEL settings, consumed by internal/telemetry.
	OTELEndpoint string
	OTELInsecure bool
	ServiceName  string

	// Storage backend settings.
	StorageBackend string // "sqlite", "postgres", "qdrant", or "memory"
	DatabaseURL    string // Postgres DSN; used when StorageBackend == "postgres" or "qdrant".
	SQLitePath     string // File path or ":memory:"; used when StorageBackend == "sqlite".

	// Qdrant vector search settings (alternate dense-index backend, paired
	// with Postgres for the lexical/document facets). Used when
	// StorageBackend == "qdrant".
	QdrantURL        string
	QdrantAPIKey     string
	QdrantCollection string
}

// Load reads configuration from environment variables with sensible defaults.
// Returns an error if any environment variable contains an unparseable value.
// Missing variables use sensible defaults; only malformed values are rejected.
func Load() (Config, error) {
	var errs []error
	cfg := Config{
		LogLevel:         envStr("ADMITLY_LOG_LEVEL", "info"),
		EmbeddingProvider: envStr("ADMITLY_EMBEDDING_PROVIDER", "auto"),
		OpenAIAPIKey:     envStr("OPENAI_API_KEY", ""),
		EmbeddingModel:   envStr("ADMITLY_EMBEDDING_MODEL", "text-embedding-3-small"),
		OllamaURL:        envStr("OLLAMA_URL", "http://localhost:11434"),
		OllamaModel:      envStr("OLLAMA_MODEL", "mxbai-embed-large"),
		OTELEndpoint:     envStr("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		ServiceName:      envStr("OTEL_SERVICE_NAME", "admitly"),
		StorageBackend:   envStr("ADMITLY_STORAGE_BACKEND", "sqlite"),
		DatabaseURL:      envStr("DATABASE_URL", ""),
		SQLitePath:       envStr("ADMITLY_SQLITE_PATH", "admitly.db"),
		QdrantURL:        envStr("QDRANT_URL", ""),
		QdrantAPIKey:     envStr("QDRANT_API_KEY", ""),
		QdrantCollection: envStr("QDRANT_COLLECTION", "admitly_documents"),
	}

	cfg.CurrentYear, errs = collectInt(errs, "CURRENT_YEAR", time.Now().Year())
	cfg.RetrievalK, errs = collectInt(errs, "RETRIEVAL_K", 50)
	cfg.FusionC, errs = collectInt(errs, "FUSION_C", 60)
	cfg.TopN, errs = collectInt(errs, "TOP_N", 8)
	cfg.MinAuthoritativeSources, errs = collectInt(errs, "MIN_AUTHORITATIVE_SOURCES", 3)
	cfg.HandlerRetryLimit, errs = collectInt(errs, "HANDLER_RETRY_LIMIT", 1)
	cfg.MinSurvivingForAnswer, errs = collectInt(errs, "ADMITLY_MIN_SURVIVING_CANDIDATES", 3)
	cfg.WidenedRetrievalK, errs = collectInt(errs, "ADMITLY_WIDENED_RETRIEVAL_K", 12)
	cfg.EmbeddingDimensions, errs = collectInt(errs, "ADMITLY_EMBEDDING_DIMENSIONS", 1024)

	cfg.AuthorityBoost, errs = collectFloat(errs, "AUTHORITY_BOOST", 1.5)
	cfg.ScoreFloor, errs = collectFloat(errs, "SCORE_FLOOR", 0.3)
	cfg.WidenedScoreFloor, errs = collectFloat(errs, "ADMITLY_WIDENED_SCORE_FLOOR", 0.25)
	cfg.CitationCoverageFloor, errs = collectFloat(errs, "CITATION_COVERAGE_FLOOR", 0.90)

	cfg.OTELInsecure, errs = collectBool(errs, "OTEL_EXPORTER_OTLP_INSECURE", false)

	cfg.RequestTimeout, errs = collectDuration(errs, "ADMITLY_REQUEST_TIMEOUT", 10*time.Second)

	if len(errs) > 0 {
		msgs := make([]string, 0, len(errs))
		for _, e := range errs {
			msgs = append(msgs, e.Error())
		}
		return Config{}, fmt.Errorf("config: invalid environment variables:\n  %s", strings.Join(msgs, "\n  "))
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that configuration values are internally consistent.
func (c Config) Validate() error {
	var errs []error

	if c.RetrievalK <= 0 {
		errs = append(errs, errors.New("config: RETRIEVAL_K must be positive"))
	}
	if c.TopN <= 0 {
		errs = append(errs, errors.New("config: TOP_N must be positive"))
	}
	if c.ScoreFloor < 0 || c.ScoreFloor > 1 {
		errs = append(errs, errors.New("config: SCORE_FLOOR must be between 0 and 1"))
	}
	if c.CitationCoverageFloor < 0 || c.CitationCoverageFloor > 1 {
		errs = append(errs, errors.New("config: CITATION_COVERAGE_FLOOR must be between 0 and 1"))
	}
	if c.MinAuthoritativeSources < 0 {
		errs = append(errs, errors.New("config: MIN_AUTHORITATIVE_SOURCES must not be negative"))
	}
	if c.HandlerRetryLimit < 0 {
		errs = append(errs, errors.New("config: HANDLER_RETRY_LIMIT must not be negative"))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, errors.New("config: ADMITLY_REQUEST_TIMEOUT must be positive"))
	}
	if c.EmbeddingDimensions <= 0 {
		errs = append(errs, errors.New("config: ADMITLY_EMBEDDING_DIMENSIONS must be positive"))
	}
	switch c.StorageBackend {
	case "sqlite", "postgres", "qdrant", "memory":
	default:
		errs = append(errs, fmt.Errorf("config: ADMITLY_STORAGE_BACKEND %q is not one of sqlite, postgres, qdrant, memory", c.StorageBackend))
	}
	if c.StorageBackend == "postgres" && c.DatabaseURL == "" {
		errs = append(errs, errors.New("config: DATABASE_URL is required when ADMITLY_STORAGE_BACKEND=postgres"))
	}
	if c.StorageBackend == "qdrant" {
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("config: DATABASE_URL is required when ADMITLY_STORAGE_BACKEND=qdrant (Postgres backs the lexical/document facets)"))
		}
		if c.QdrantURL == "" {
			errs = append(errs, errors.New("config: QDRANT_URL is required when ADMITLY_STORAGE_BACKEND=qdrant"))
		}
	}

	return errors.Join(errs...)
}

func collectInt(errs []error, key string, fallback int) (int, []error) {
	v, err := envInt(key, fallback)
	if err != nil {
		errs = append(errs, err)
	}
	return v, errs
}

func collectFloat(errs []error, key string, fallback float64) (float64, []error) {
	v, err := envFloat(key, fallback)
	if err != nil {
		errs = append(errs, err)
	}
	return v, errs
}

func collectBool(errs []error, key string, fallback bool) (bool, []error) {
	v, err := envBool(key, fallback)
	if err != nil {
		errs = append(errs, err)
	}
	return v, errs
}

func collectDuration(errs []error, key string, fallback time.Duration) (time.Duration, []error) {
	v, err := envDuration(key, fallback)
	if err != nil {
		errs = append(errs, err)
	}
	return v, errs
}

func envStr(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s=%q is not a valid integer", key, v)
	}
	return n, nil
}

func envFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s=%q is not a valid float", key, v)
	}
	return f, nil
}

func envBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s=%q is not a valid boolean", key, v)
	}
	return b, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s=%q is not a valid duration", key, v)
	}
	return d, nil
}
