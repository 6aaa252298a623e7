package admitly

import (
	"log/slog"

	"github.com/admitly/admitly/internal/config"
	"github.com/admitly/admitly/internal/storage"
)

// Option configures an App at construction time, following the same
// functional-options shape as every other tunable subsystem in this
// repository.
type Option func(*resolvedOptions)

type resolvedOptions struct {
	logger        *slog.Logger
	currentYear   int
	knownEntities []string
	store         storage.Storage
	cfgOverrides  func(*config.Config)
}

// WithLogger overrides the default slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *resolvedOptions) { o.logger = logger }
}

// WithCurrentYear overrides the Normalizer's temporal guardrail comparison
// point. Defaults to config.Config.CurrentYear (the actual current year)
// when unset; tests pin this to get deterministic TEMPORAL_OUT_OF_RANGE
// behavior.
func WithCurrentYear(year int) Option {
	return func(o *resolvedOptions) { o.currentYear = year }
}

// WithKnownEntities supplies the institution/program names the Normalizer
// checks candidate entities against (spec §4.1). Corpus ingestion is an
// external collaborator (spec §1 Non-goals), so the caller — not this
// package — is responsible for deriving this list from whatever process
// built the corpus.
func WithKnownEntities(names []string) Option {
	return func(o *resolvedOptions) { o.knownEntities = names }
}

// WithStorage injects a pre-built Storage backend (e.g. for tests, or to
// reuse a connection pool the host process already owns) instead of
// letting New construct one from config.Config.StorageBackend.
func WithStorage(store storage.Storage) Option {
	return func(o *resolvedOptions) { o.store = store }
}

// WithConfigOverride applies fn to the loaded config.Config before it is
// used to wire subsystems, for overriding any of the environment-derived
// tunables programmatically.
func WithConfigOverride(fn func(*config.Config)) Option {
	return func(o *resolvedOptions) { o.cfgOverrides = fn }
}
