package storage

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strconv"

	"github.com/admitly/admitly/internal/model"
	"github.com/google/uuid"
	qdrant "github.com/qdrant/go-client/qdrant"
)

// ParseQdrantAddr splits a QDRANT_URL value (e.g. "localhost:6334" or
// "http://localhost:6334") into the host/port QdrantConfig needs, defaulting
// to Qdrant's standard gRPC port 6334 when none is given.
func ParseQdrantAddr(addr string) (host string, port int, err error) {
	if u, perr := url.Parse(addr); perr == nil && u.Host != "" {
		addr = u.Host
	}
	h, p, serr := net.SplitHostPort(addr)
	if serr != nil {
		return addr, 6334, nil
	}
	portNum, perr := strconv.Atoi(p)
	if perr != nil {
		return "", 0, fmt.Errorf("storage: parse qdrant port %q: %w", p, perr)
	}
	return h, portNum, nil
}

// QdrantConfig names a collection and connection for QdrantIndex.
type QdrantConfig struct {
	Host           string
	Port           int
	APIKey         string
	CollectionName string
	VectorSize     uint64
}

// QdrantIndex implements DenseSearcher only, against an externalized
// Qdrant collection. Pair it with Compose alongside a Postgres or SQLite
// backend's lexical/document facets when a deployment needs the dense
// index to scale independently of the relational store.
type QdrantIndex struct {
	client     *qdrant.Client
	collection string
}

// NewQdrantIndex connects to cfg.Host/Port and ensures the collection
// exists with cosine-distance HNSW indexing, plus payload indexes on the
// fields the Retriever filters by (collection, entity tags).
func NewQdrantIndex(ctx context.Context, cfg QdrantConfig) (*QdrantIndex, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("storage: connect qdrant: %w", err)
	}

	idx := &QdrantIndex{client: client, collection: cfg.CollectionName}
	if err := idx.ensureCollection(ctx, cfg.VectorSize); err != nil {
		return nil, err
	}
	return idx, nil
}

func (q *QdrantIndex) ensureCollection(ctx context.Context, vectorSize uint64) error {
	exists, err := q.client.CollectionExists(ctx, q.collection)
	if err != nil {
		return fmt.Errorf("storage: check qdrant collection: %w", err)
	}
	if exists {
		return nil
	}

	err = q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: q.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     vectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("storage: create qdrant collection: %w", err)
	}

	for _, field := range []string{"collection", "institution"} {
		if _, err := q.client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
			CollectionName: q.collection,
			FieldName:      field,
			FieldType:      qdrant.FieldType_FieldTypeKeyword.Enum(),
		}); err != nil {
			return fmt.Errorf("storage: index qdrant field %q: %w", field, err)
		}
	}
	return nil
}

// Upsert stores a document's embedding, payload-tagged by collection so
// SearchDense can filter without a round trip to the document store.
func (q *QdrantIndex) Upsert(ctx context.Context, doc model.Document, embedding []float32) error {
	// doc_id is carried in the payload rather than relied on via point.Id,
	// since Qdrant point IDs must be an unsigned integer or a UUID and our
	// document IDs are not guaranteed to be either.
	payload := map[string]any{"collection": string(doc.Collection), "doc_id": doc.ID}
	for k, v := range doc.EntityTags {
		payload[k] = v
	}

	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collection,
		Points: []*qdrant.PointStruct{
			{
				Id:      qdrant.NewID(uuid.NewSHA1(uuid.NameSpaceURL, []byte(doc.ID)).String()),
				Vectors: qdrant.NewVectors(embedding...),
				Payload: qdrant.NewValueMap(payload),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("storage: qdrant upsert: %w", err)
	}
	return nil
}

// SearchDense implements DenseSearcher.
func (q *QdrantIndex) SearchDense(ctx context.Context, queryEmbedding []float32, collection *model.Collection, k int) ([]DenseResult, error) {
	if len(queryEmbedding) == 0 {
		return nil, nil
	}

	req := &qdrant.QueryPoints{
		CollectionName: q.collection,
		Query:          qdrant.NewQuery(queryEmbedding...),
		Limit:          qdrant.PtrOf(uint64(k)),
		WithPayload:    qdrant.NewWithPayload(true),
	}
	if collection != nil {
		req.Filter = &qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatch("collection", string(*collection)),
			},
		}
	}

	resp, err := q.client.Query(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("storage: qdrant query: %w", err)
	}

	out := make([]DenseResult, 0, len(resp))
	for _, point := range resp {
		docID := point.Id.String()
		if v, ok := point.Payload["doc_id"]; ok {
			docID = v.GetStringValue()
		}
		out = append(out, DenseResult{DocID: docID, Score: float64(point.Score)})
	}
	return out, nil
}
