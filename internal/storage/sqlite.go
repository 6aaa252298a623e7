package storage

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/admitly/admitly/internal/integrity"
	"github.com/admitly/admitly/internal/model"
	_ "modernc.org/sqlite"
)

// SQLiteStore is the default single-binary backend: FTS5's native bm25()
// ranking function for lexical search, and a blob-packed float32 column
// scanned brute-force for dense search. It uses the pure-Go modernc.org
// driver so cmd/admitly needs no CGo toolchain to build or ship.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLiteStore opens (creating if absent) a SQLite database at path and
// ensures its schema exists.
func OpenSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage: open sqlite: %w", err)
	}
	s := &SQLiteStore{db: db}
	if err := s.ensureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS documents (
	id              TEXT PRIMARY KEY,
	collection      TEXT NOT NULL,
	source_url      TEXT NOT NULL,
	sub_url         TEXT NOT NULL DEFAULT '',
	body            TEXT NOT NULL,
	last_verified   TEXT NOT NULL,
	entity_tags     TEXT NOT NULL DEFAULT '{}',
	effective_from  TEXT,
	effective_to    TEXT,
	content_hash    TEXT NOT NULL DEFAULT '',
	embedding       BLOB
);

CREATE VIRTUAL TABLE IF NOT EXISTS documents_fts USING fts5(
	id UNINDEXED,
	collection UNINDEXED,
	body
);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("storage: ensure sqlite schema: %w", err)
	}
	return nil
}

// PutDocument upserts a document and its (optional) L2-normalized dense
// embedding, keeping the FTS5 shadow table in sync. ContentHash is
// (re)computed from doc's canonical fields before the write.
func (s *SQLiteStore) PutDocument(ctx context.Context, doc model.Document, embedding []float32) error {
	doc.ContentHash = integrity.ComputeDocumentHash(doc)

	tags, err := json.Marshal(doc.EntityTags)
	if err != nil {
		return fmt.Errorf("storage: marshal entity tags: %w", err)
	}

	var from, to sql.NullString
	if doc.EffectiveRange.From != nil {
		from = sql.NullString{String: doc.EffectiveRange.From.Format(time.RFC3339), Valid: true}
	}
	if doc.EffectiveRange.To != nil {
		to = sql.NullString{String: doc.EffectiveRange.To.Format(time.RFC3339), Valid: true}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage: begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO documents (id, collection, source_url, sub_url, body, last_verified, entity_tags, effective_from, effective_to, content_hash, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			collection=excluded.collection, source_url=excluded.source_url, sub_url=excluded.sub_url,
			body=excluded.body, last_verified=excluded.last_verified, entity_tags=excluded.entity_tags,
			effective_from=excluded.effective_from, effective_to=excluded.effective_to,
			content_hash=excluded.content_hash, embedding=excluded.embedding
	`, doc.ID, string(doc.Collection), doc.SourceURL, doc.SubURL, doc.Body,
		doc.LastVerified.Format(time.RFC3339), string(tags), from, to, doc.ContentHash, packEmbedding(embedding))
	if err != nil {
		return fmt.Errorf("storage: upsert document: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM documents_fts WHERE id = ?`, doc.ID); err != nil {
		return fmt.Errorf("storage: clear fts row: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO documents_fts (id, collection, body) VALUES (?, ?, ?)`,
		doc.ID, string(doc.Collection), doc.Body); err != nil {
		return fmt.Errorf("storage: index fts row: %w", err)
	}

	return tx.Commit()
}

// SearchLexical implements LexicalSearcher using FTS5's bm25() ranking
// function. FTS5 returns bm25() as a cost (lower is better); it is negated
// here so LexicalResult.Score follows the package-wide higher-is-better
// convention.
func (s *SQLiteStore) SearchLexical(ctx context.Context, queryTokens []string, collection *model.Collection, k int) ([]LexicalResult, error) {
	if len(queryTokens) == 0 {
		return nil, nil
	}
	match := ftsMatchQuery(queryTokens)

	query := `SELECT id, bm25(documents_fts) FROM documents_fts WHERE documents_fts MATCH ?`
	args := []any{match}
	if collection != nil {
		query += ` AND collection = ?`
		args = append(args, string(*collection))
	}
	query += ` ORDER BY bm25(documents_fts) LIMIT ?`
	args = append(args, k)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("storage: fts search: %w", err)
	}
	defer rows.Close()

	var out []LexicalResult
	for rows.Next() {
		var id string
		var cost float64
		if err := rows.Scan(&id, &cost); err != nil {
			return nil, fmt.Errorf("storage: scan fts row: %w", err)
		}
		out = append(out, LexicalResult{DocID: id, Score: -cost})
	}
	return out, rows.Err()
}

// ftsMatchQuery builds an FTS5 MATCH expression that ORs every token,
// quoting each to avoid it being parsed as FTS5 query syntax.
func ftsMatchQuery(tokens []string) string {
	quoted := make([]string, len(tokens))
	for i, t := range tokens {
		quoted[i] = `"` + strings.ReplaceAll(t, `"`, `""`) + `"`
	}
	return strings.Join(quoted, " OR ")
}

// SearchDense implements DenseSearcher via a brute-force scan of the blob-
// packed embedding column. SQLite has no native vector index; this is
// adequate for a single-binary deployment's corpus sizes and is replaced by
// QdrantIndex when a deployment needs ANN search at scale.
func (s *SQLiteStore) SearchDense(ctx context.Context, queryEmbedding []float32, collection *model.Collection, k int) ([]DenseResult, error) {
	if len(queryEmbedding) == 0 {
		return nil, nil
	}

	query := `SELECT id, embedding FROM documents WHERE embedding IS NOT NULL`
	args := []any{}
	if collection != nil {
		query += ` AND collection = ?`
		args = append(args, string(*collection))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("storage: dense scan: %w", err)
	}
	defer rows.Close()

	var out []DenseResult
	for rows.Next() {
		var id string
		var blob []byte
		if err := rows.Scan(&id, &blob); err != nil {
			return nil, fmt.Errorf("storage: scan embedding row: %w", err)
		}
		emb := unpackEmbedding(blob)
		sim := cosineSimilarity(queryEmbedding, emb)
		if sim > 0 {
			out = append(out, DenseResult{DocID: id, Score: sim})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sortDenseDesc(out)
	if k > 0 && len(out) > k {
		out = out[:k]
	}
	return out, nil
}

func sortDenseDesc(results []DenseResult) {
	for i := 1; i < len(results); i++ {
		j := i
		for j > 0 && results[j-1].Score < results[j].Score {
			results[j-1], results[j] = results[j], results[j-1]
			j--
		}
	}
}

// GetDocument implements DocumentStore.
func (s *SQLiteStore) GetDocument(ctx context.Context, id string) (model.Document, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, collection, source_url, sub_url, body, last_verified, entity_tags, effective_from, effective_to, content_hash
		FROM documents WHERE id = ?`, id)

	var doc model.Document
	var collection, lastVerified, tags string
	var from, to sql.NullString
	if err := row.Scan(&doc.ID, &collection, &doc.SourceURL, &doc.SubURL, &doc.Body, &lastVerified, &tags, &from, &to, &doc.ContentHash); err != nil {
		if err == sql.ErrNoRows {
			return model.Document{}, ErrNotFound
		}
		return model.Document{}, fmt.Errorf("storage: get document: %w", err)
	}

	doc.Collection = model.Collection(collection)
	if t, err := time.Parse(time.RFC3339, lastVerified); err == nil {
		doc.LastVerified = t
	}
	if tags != "" {
		_ = json.Unmarshal([]byte(tags), &doc.EntityTags)
	}
	if from.Valid {
		if t, err := time.Parse(time.RFC3339, from.String); err == nil {
			doc.EffectiveRange.From = &t
		}
	}
	if to.Valid {
		if t, err := time.Parse(time.RFC3339, to.String); err == nil {
			doc.EffectiveRange.To = &t
		}
	}
	return doc, nil
}

// ListCollections implements DocumentStore.
func (s *SQLiteStore) ListCollections(ctx context.Context) ([]CollectionInfo, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT collection, COUNT(*) FROM documents GROUP BY collection ORDER BY collection`)
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

// packEmbedding encodes a float32 vector as a little-endian byte blob for
// storage in a BLOB column.
func packEmbedding(v []float32) []byte {
	if len(v) == 0 {
		return nil
	}
	buf := new(bytes.Buffer)
	buf.Grow(len(v) * 4)
	for _, f := range v {
		_ = binary.Write(buf, binary.LittleEndian, math.Float32bits(f))
	}
	return buf.Bytes()
}

// unpackEmbedding reverses packEmbedding. A blob whose length isn't a
// multiple of 4 is treated as absent rather than panicking.
func unpackEmbedding(blob []byte) []float32 {
	if len(blob) == 0 || len(blob)%4 != 0 {
		return nil
	}
	out := make([]float32, len(blob)/4)
	for i := range out {
		bits := binary.LittleEndian.Uint32(blob[i*4 : i*4+4])
		out[i] = math.Float32frombits(bits)
	}
	return out
}
