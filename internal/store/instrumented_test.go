package store_test

import (
	"testing"

	"github.com/UnknownOlympus/itinera/internal/metrics"
	"github.com/UnknownOlympus/itinera/internal/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstrumented(t *testing.T) {
	m := metrics.NewMetrics(prometheus.NewRegistry())
	st := store.NewInstrumented(store.NewMemoryStore(project), "memory", m)
	ctx := t.Context()

	require.NoError(t, st.Set(ctx, collection, store.Document{ID: "abc", Data: []byte(`{}`)}))
	_, err := st.Get(ctx, collection, "abc")
	require.NoError(t, err)
	_, err = st.Get(ctx, collection, "missing")
	require.ErrorIs(t, err, store.ErrNotFound)
	require.ErrorIs(t, st.Set(ctx, collection, store.Document{}), store.ErrEmptyID)

	assert.InDelta(t, 1, testutil.ToFloat64(m.StoreOperations.WithLabelValues("memory", "set", "success")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.StoreOperations.WithLabelValues("memory", "set", "failure")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.StoreOperations.WithLabelValues("memory", "get", "success")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.StoreOperations.WithLabelValues("memory", "get", "not_found")), 0)
	assert.Equal(t, 2, testutil.CollectAndCount(m.StoreSeconds))
}
