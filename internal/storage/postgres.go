package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/admitly/admitly/internal/integrity"
	"github.com/admitly/admitly/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// postgresSchema creates the documents table, its tsvector-backed lexical
// index, and its pgvector-backed dense index. It is embedded here rather
// than living in a separate migrations tool, since this backend is the
// only consumer of this schema.
const postgresSchema = `
CREATE EXTENSION IF NOT EXISTS vector;

CREATE TABLE IF NOT EXISTS documents (
	id              TEXT PRIMARY KEY,
	collection      TEXT NOT NULL,
	source_url      TEXT NOT NULL,
	sub_url         TEXT NOT NULL DEFAULT '',
	body            TEXT NOT NULL,
	last_verified   TIMESTAMPTZ NOT NULL,
	entity_tags     JSONB NOT NULL DEFAULT '{}',
	effective_from  TIMESTAMPTZ,
	effective_to    TIMESTAMPTZ,
	content_hash    TEXT NOT NULL DEFAULT '',
	embedding       VECTOR(%d),
	body_tsv        TSVECTOR GENERATED ALWAYS AS (to_tsvector('english', body)) STORED
);

CREATE INDEX IF NOT EXISTS documents_tsv_idx ON documents USING GIN (body_tsv);
CREATE INDEX IF NOT EXISTS documents_embedding_idx ON documents USING hnsw (embedding vector_cosine_ops);
CREATE INDEX IF NOT EXISTS documents_collection_idx ON documents (collection);
`

// PostgresStore is the service-deployment Storage backend: Postgres
// full-text search (tsvector/ts_rank) for the lexical arm and pgvector's
// cosine operator for the dense arm, in the same table. Pair it with
// QdrantIndex instead via Compose when the dense arm needs to scale
// independently of the relational store.
type PostgresStore struct {
	pool *pgxpool.Pool
	dims int
}

// OpenPostgresStore connects to dsn and ensures the schema exists, sized
// for embeddingDimensions-wide vectors.
func OpenPostgresStore(ctx context.Context, dsn string, embeddingDimensions int) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("storage: connect postgres: %w", err)
	}
	s := &PostgresStore{pool: pool, dims: embeddingDimensions}
	if _, err := pool.Exec(ctx, fmt.Sprintf(postgresSchema, embeddingDimensions)); err != nil {
		pool.Close()
		return nil, fmt.Errorf("storage: ensure postgres schema: %w", err)
	}
	return s, nil
}

func (s *PostgresStore) Close() { s.pool.Close() }

// PutDocument upserts a document and its embedding. ContentHash is
// (re)computed from doc's canonical fields before the write, so a stored
// row's hash always reflects what is actually persisted.
func (s *PostgresStore) PutDocument(ctx context.Context, doc model.Document, embedding []float32) error {
	doc.ContentHash = integrity.ComputeDocumentHash(doc)

	tags, err := json.Marshal(doc.EntityTags)
	if err != nil {
		return fmt.Errorf("storage: marshal entity tags: %w", err)
	}

	var vec *pgvector.Vector
	if len(embedding) > 0 {
		v := pgvector.NewVector(embedding)
		vec = &v
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO documents (id, collection, source_url, sub_url, body, last_verified, entity_tags, effective_from, effective_to, content_hash, embedding)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			collection=excluded.collection, source_url=excluded.source_url, sub_url=excluded.sub_url,
			body=excluded.body, last_verified=excluded.last_verified, entity_tags=excluded.entity_tags,
			effective_from=excluded.effective_from, effective_to=excluded.effective_to,
			content_hash=excluded.content_hash, embedding=excluded.embedding
	`, doc.ID, string(doc.Collection), doc.SourceURL, doc.SubURL, doc.Body, doc.LastVerified,
		tags, doc.EffectiveRange.From, doc.EffectiveRange.To, doc.ContentHash, vec)
	if err != nil {
		return fmt.Errorf("storage: upsert document: %w", err)
	}
	return nil
}

// SearchLexical implements LexicalSearcher using ts_rank over the generated
// tsvector column.
func (s *PostgresStore) SearchLexical(ctx context.Context, queryTokens []string, collection *model.Collection, k int) ([]LexicalResult, error) {
	if len(queryTokens) == 0 {
		return nil, nil
	}
	tsQuery := tsQueryFromTokens(queryTokens)

	sql := `
		SELECT id, ts_rank(body_tsv, websearch_to_tsquery('english', $1)) AS score
		FROM documents
		WHERE body_tsv @@ websearch_to_tsquery('english', $1)`
	args := []any{tsQuery}
	if collection != nil {
		sql += ` AND collection = $2`
		args = append(args, string(*collection))
		sql += ` ORDER BY score DESC LIMIT $3`
		args = append(args, k)
	} else {
		sql += ` ORDER BY score DESC LIMIT $2`
		args = append(args, k)
	}

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("storage: lexical search: %w", err)
	}
	defer rows.Close()

	var out []LexicalResult
	for rows.Next() {
		var r LexicalResult
		if err := rows.Scan(&r.DocID, &r.Score); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// tsQueryFromTokens joins tokens for websearch_to_tsquery, which accepts
// plain space-separated terms as an implicit AND/OR-weighted query.
func tsQueryFromTokens(tokens []string) string {
	out := ""
	for i, t := range tokens {
		if i > 0 {
			out += " "
		}
		out += t
	}
	return out
}

// SearchDense implements DenseSearcher using pgvector's cosine distance
// operator (<=>), converted to a similarity score (1 - distance).
func (s *PostgresStore) SearchDense(ctx context.Context, queryEmbedding []float32, collection *model.Collection, k int) ([]DenseResult, error) {
	if len(queryEmbedding) == 0 {
		return nil, nil
	}
	vec := pgvector.NewVector(queryEmbedding)

	sql := `SELECT id, 1 - (embedding <=> $1) AS score FROM documents WHERE embedding IS NOT NULL`
	args := []any{vec}
	if collection != nil {
		sql += ` AND collection = $2`
		args = append(args, string(*collection))
		sql += ` ORDER BY embedding <=> $1 LIMIT $3`
		args = append(args, k)
	} else {
		sql += ` ORDER BY embedding <=> $1 LIMIT $2`
		args = append(args, k)
	}

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("storage: dense search: %w", err)
	}
	defer rows.Close()

	var out []DenseResult
	for rows.Next() {
		var r DenseResult
		if err := rows.Scan(&r.DocID, &r.Score); err != nil {
			return nil, err
		}
		if r.Score > 0 {
			out = append(out, r)
		}
	}
	return out, rows.Err()
}

// GetDocument implements DocumentStore.
func (s *PostgresStore) GetDocument(ctx context.Context, id string) (model.Document, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, collection, source_url, sub_url, body, last_verified, entity_tags, effective_from, effective_to, content_hash
		FROM documents WHERE id = $1`, id)

	var doc model.Document
	var collection string
	var tags []byte
	var from, to *time.Time
	if err := row.Scan(&doc.ID, &collection, &doc.SourceURL, &doc.SubURL, &doc.Body, &doc.LastVerified, &tags, &from, &to, &doc.ContentHash); err != nil {
		if err == pgx.ErrNoRows {
			return model.Document{}, ErrNotFound
		}
		return model.Document{}, fmt.Errorf("storage: get document: %w", err)
	}
	doc.Collection = model.Collection(collection)
	doc.EffectiveRange = model.EffectiveRange{From: from, To: to}
	if len(tags) > 0 {
		_ = json.Unmarshal(tags, &doc.EntityTags)
	}
	return doc, nil
}

// ListCollections implements DocumentStore.
func (s *PostgresStore) ListCollections(ctx context.Context) ([]CollectionInfo, error) {
	rows, err := s.pool.Query(ctx, `SELECT collection, COUNT(*) FROM documents GROUP BY collection ORDER BY collection`)
	if err != nil {
		return nil, fmt.Errorf("storage: list collections: %w", err)
	}
	defer rows.Close()

	var out []CollectionInfo
	for rows.Next() {
		var name string
		var count int
		if err := rows.Scan(&name, &count); err != nil {
			return nil, err
		}
		out = append(out, CollectionInfo{Name: model.Collection(name), Count: count})
	}
	return out, rows.Err()
}
