package store_test

import (
	"testing"
	"time"

	"github.com/UnknownOlympus/itinera/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	t.Parallel()

	t.Run("get missing document", func(t *testing.T) {
		t.Parallel()
		st := store.NewMemoryStore(project)

		_, err := st.Get(t.Context(), collection, "nope")

		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("set then get", func(t *testing.T) {
		t.Parallel()
		st := store.NewMemoryStore(project)
		data := []byte(`{"name":"Louvre"}`)

		require.NoError(t, st.Set(t.Context(), collection, store.Document{ID: "abc", Data: data}))
		data[2] = 'X'

		doc, err := st.Get(t.Context(), collection, "abc")

		require.NoError(t, err)
		assert.JSONEq(t, `{"name":"Louvre"}`, string(doc.Data), "stored data must not alias the caller's slice")
	})

	t.Run("set requires id", func(t *testing.T) {
		t.Parallel()
		st := store.NewMemoryStore(project)

		err := st.Set(t.Context(), collection, store.Document{Data: []byte(`{}`)})

		require.ErrorIs(t, err, store.ErrEmptyID)
	})

	t.Run("list ordered by id", func(t *testing.T) {
		t.Parallel()
		st := store.NewMemoryStore(project)
		for _, id := range []string{"c", "a", "b"} {
			require.NoError(t, st.Set(t.Context(), collection, store.Document{ID: id, Data: []byte(`{}`)}))
		}

		docs, err := st.List(t.Context(), collection)

		require.NoError(t, err)
		require.Len(t, docs, 3)
		assert.Equal(t, []string{"a", "b", "c"}, []string{docs[0].ID, docs[1].ID, docs[2].ID})
	})

	t.Run("add mints distinct ids", func(t *testing.T) {
		t.Parallel()
		st := store.NewMemoryStore(project)

		first, err := st.Add(t.Context(), collection, []byte(`{}`))
		require.NoError(t, err)
		second, err := st.Add(t.Context(), collection, []byte(`{}`))
		require.NoError(t, err)

		assert.NotEmpty(t, first)
		assert.NotEqual(t, first, second)
	})

	t.Run("delete", func(t *testing.T) {
		t.Parallel()
		st := store.NewMemoryStore(project)
		require.NoError(t, st.Set(t.Context(), collection, store.Document{ID: "abc", Data: []byte(`{}`)}))

		require.NoError(t, st.Delete(t.Context(), collection, "abc"))
		require.NoError(t, st.Delete(t.Context(), collection, "abc"))

		_, err := st.Get(t.Context(), collection, "abc")
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestMemoryStoreWatch(t *testing.T) {
	t.Parallel()
	st := store.NewMemoryStore(project)

	stream, err := st.Watch(t.Context(), collection)
	require.NoError(t, err)

	require.NoError(t, st.Set(t.Context(), collection, store.Document{ID: "abc", Data: []byte(`{}`)}))
	require.NoError(t, st.Set(t.Context(), "other", store.Document{ID: "zzz", Data: []byte(`{}`)}))
	require.NoError(t, st.Delete(t.Context(), collection, "abc"))

	assert.Equal(t, store.Change{Project: project, Collection: collection, ID: "abc", Op: store.OpPut}, receive(t, stream))
	assert.Equal(t, store.Change{Project: project, Collection: collection, ID: "abc", Op: store.OpDelete}, receive(t, stream))

	stream.Close()

	_, open := <-stream.Changes()
	assert.False(t, open)
	require.NoError(t, stream.Err())

	// writes after close must not block or panic
	require.NoError(t, st.Set(t.Context(), collection, store.Document{ID: "def", Data: []byte(`{}`)}))
}

func receive(t *testing.T, stream *store.ChangeStream) store.Change {
	t.Helper()

	select {
	case change, ok := <-stream.Changes():
		require.True(t, ok, "stream closed unexpectedly")
		return change
	case <-time.After(time.Second):
		require.FailNow(t, "timed out waiting for change")
		return store.Change{}
	}
}
