//go:build integration

package store_test

import (
	"log/slog"
	"testing"

	"github.com/UnknownOlympus/itinera/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

func TestPostgresStoreIntegration(t *testing.T) {
	ctx := t.Context()

	container, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("itinera"),
		postgres.WithUsername("itinera"),
		postgres.WithPassword("secret"),
		postgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	pool, err := store.NewDatabase(host, port.Port(), "itinera", "secret", "itinera")
	require.NoError(t, err)
	defer pool.Close()

	st := store.NewPostgresStore(pool, pool, project, slog.Default())
	require.NoError(t, st.Migrate(ctx))
	require.NoError(t, st.Migrate(ctx), "migration must be repeatable")

	stream, err := st.Watch(ctx, collection)
	require.NoError(t, err)
	defer stream.Close()

	doc := store.Document{ID: "ChIJLU7jZClu5kcR4PcOOO6p3I0", Data: []byte(`{"name":"Eiffel Tower","tasks":[]}`)}
	require.NoError(t, st.Set(ctx, collection, doc))
	assert.Equal(t, store.Change{Project: project, Collection: collection, ID: doc.ID, Op: store.OpPut}, receive(t, stream))

	got, err := st.Get(ctx, collection, doc.ID)
	require.NoError(t, err)
	assert.JSONEq(t, string(doc.Data), string(got.Data))

	id, err := st.Add(ctx, collection, []byte(`{"name":"Louvre"}`))
	require.NoError(t, err)
	assert.Equal(t, id, receive(t, stream).ID)

	docs, err := st.List(ctx, collection)
	require.NoError(t, err)
	assert.Len(t, docs, 2)

	require.NoError(t, st.Delete(ctx, collection, doc.ID))
	assert.Equal(t, store.OpDelete, receive(t, stream).Op)

	_, err = st.Get(ctx, collection, doc.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
}
