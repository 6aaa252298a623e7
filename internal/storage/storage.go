// Package storage defines the knowledge-base contract the query-answering
// core depends on (spec §6), plus the reference backends the repository
// ships: an in-memory fake for tests, a pure-Go SQLite/FTS5 backend for
// single-binary deployments, and a Postgres+pgvector / Qdrant pairing for
// service deployments. Corpus acquisition and embedding ingestion are
// external collaborators (spec §1 Non-goals) — these backends only serve
// a corpus that already exists; they never scrape or chunk documents.
package storage

import (
	"context"
	"errors"

	"github.com/admitly/admitly/internal/model"
)

// ErrNotFound is returned by GetDocument for an unknown id.
var ErrNotFound = errors.New("storage: not found")

// LexicalResult is one hit from a lexical (BM25-shaped) search.
type LexicalResult struct {
	DocID string
	Score float64
}

// DenseResult is one hit from a dense (cosine-similarity) search.
type DenseResult struct {
	DocID string
	Score float64
}

// CollectionInfo reports a collection's name and document count, used for
// startup/health validation.
type CollectionInfo struct {
	Name  model.Collection
	Count int
}

// LexicalSearcher performs BM25-shaped lexical search over document bodies.
// Implementations must be deterministic for a fixed corpus build and must
// return an empty slice (never an error) for a query that matches nothing.
type LexicalSearcher interface {
	SearchLexical(ctx context.Context, queryTokens []string, collection *model.Collection, k int) ([]LexicalResult, error)
}

// DenseSearcher performs cosine-similarity search over L2-normalized
// embeddings of a single fixed dimension. Implementations must return an
// empty slice (never an error) for a query that matches nothing.
type DenseSearcher interface {
	SearchDense(ctx context.Context, queryEmbedding []float32, collection *model.Collection, k int) ([]DenseResult, error)
}

// DocumentStore hydrates full documents and reports corpus composition.
type DocumentStore interface {
	GetDocument(ctx context.Context, id string) (model.Document, error)
	ListCollections(ctx context.Context) ([]CollectionInfo, error)
}

// Storage is the full knowledge-base contract consumed by the Hybrid
// Retriever (spec §6). A concrete backend may implement all three facets
// itself (Memory, SQLite) or be assembled from independent lexical/dense/
// document backends via Compose (Postgres lexical + Qdrant dense).
type Storage interface {
	LexicalSearcher
	DenseSearcher
	DocumentStore
}

// composite assembles a Storage from independently-sourced facets.
type composite struct {
	LexicalSearcher
	DenseSearcher
	DocumentStore
}

// Compose builds a Storage value from separate lexical, dense, and document
// backends. This is how a deployment pairs a Postgres-backed lexical/
// document store with an externalized Qdrant dense index, mirroring the
// way the pipeline treats "where the BM25 index lives" and "where the ANN
// index lives" as independently swappable.
func Compose(lex LexicalSearcher, dense DenseSearcher, docs DocumentStore) Storage {
	return composite{LexicalSearcher: lex, DenseSearcher: dense, DocumentStore: docs}
}
