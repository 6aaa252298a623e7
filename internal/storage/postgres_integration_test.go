//go:build integration

package storage

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/admitly/admitly/internal/model"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestPostgresStoreIntegration exercises PostgresStore against a real
// pgvector/pgvector Postgres image. Run with -tags=integration; it is
// excluded from the default test run since it requires a Docker daemon.
func TestPostgresStoreIntegration(t *testing.T) {
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "pgvector/pgvector:pg16",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_PASSWORD": "admitly",
				"POSTGRES_DB":       "admitly",
			},
			WaitingFor: wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://postgres:admitly@%s:%s/admitly?sslmode=disable", host, port.Port())

	store, err := OpenPostgresStore(ctx, dsn, 3)
	require.NoError(t, err)
	defer store.Close()

	doc := model.Document{
		ID:           "doc-1",
		Collection:   model.CollectionAidPolicies,
		SourceURL:    "https://studentaid.gov/parent-plus",
		Body:         "Parent PLUS loan denial appeal process",
		LastVerified: time.Now().UTC(),
	}
	require.NoError(t, store.PutDocument(ctx, doc, []float32{1, 0, 0}))

	got, err := store.GetDocument(ctx, "doc-1")
	require.NoError(t, err)
	require.Equal(t, doc.SourceURL, got.SourceURL)

	lexResults, err := store.SearchLexical(ctx, []string{"parent", "plus", "denial"}, nil, 10)
	require.NoError(t, err)
	require.NotEmpty(t, lexResults)

	denseResults, err := store.SearchDense(ctx, []float32{1, 0, 0}, nil, 10)
	require.NoError(t, err)
	require.NotEmpty(t, denseResults)
}
