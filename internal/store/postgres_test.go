package store_test

import (
	"encoding/json"
	"log/slog"
	"regexp"
	"testing"

	"github.com/UnknownOlympus/itinera/internal/store"
	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	project    = "arc-trip"
	collection = "places"
)

const getQuery = `
		SELECT data
		FROM documents
		WHERE project = $1 AND collection = $2 AND id = $3;
	`

const listQuery = `
		SELECT id, data
		FROM documents
		WHERE project = $1 AND collection = $2
		ORDER BY id ASC;
	`

const upsertQuery = `
		INSERT INTO documents (project, collection, id, data)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (project, collection, id)
		DO UPDATE SET data = EXCLUDED.data, updated_at = now();
	`

const insertQuery = `
		INSERT INTO documents (project, collection, id, data)
		VALUES ($1, $2, $3, $4);
	`

const deleteQuery = `
		DELETE FROM documents
		WHERE project = $1 AND collection = $2 AND id = $3;
	`

func TestPostgresGet(t *testing.T) {
	t.Parallel()
	logger := slog.Default()
	ctx := t.Context()

	t.Run("error - query document", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		st := store.NewPostgresStore(mock, nil, project, logger)

		mock.ExpectQuery(regexp.QuoteMeta(getQuery)).
			WithArgs(project, collection, "abc").
			WillReturnError(assert.AnError)

		_, err = st.Get(ctx, collection, "abc")

		require.Error(t, err)
		require.ErrorContains(t, err, "failed to query document")
		require.ErrorIs(t, err, assert.AnError)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		st := store.NewPostgresStore(mock, nil, project, logger)

		mock.ExpectQuery(regexp.QuoteMeta(getQuery)).
			WithArgs(project, collection, "missing").
			WillReturnRows(pgxmock.NewRows([]string{"data"}))

		_, err = st.Get(ctx, collection, "missing")

		require.ErrorIs(t, err, store.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("success - get document", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		st := store.NewPostgresStore(mock, nil, project, logger)

		mock.ExpectQuery(regexp.QuoteMeta(getQuery)).
			WithArgs(project, collection, "abc").
			WillReturnRows(pgxmock.NewRows([]string{"data"}).AddRow([]byte(`{"name":"Louvre"}`)))

		doc, err := st.Get(ctx, collection, "abc")

		require.NoError(t, err)
		assert.Equal(t, "abc", doc.ID)
		assert.JSONEq(t, `{"name":"Louvre"}`, string(doc.Data))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresList(t *testing.T) {
	t.Parallel()
	logger := slog.Default()
	ctx := t.Context()

	t.Run("error - query documents", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		st := store.NewPostgresStore(mock, nil, project, logger)

		mock.ExpectQuery(regexp.QuoteMeta(listQuery)).
			WithArgs(project, collection).
			WillReturnError(assert.AnError)

		docs, err := st.List(ctx, collection)

		require.Nil(t, docs)
		require.ErrorContains(t, err, "failed to query documents")
		require.ErrorIs(t, err, assert.AnError)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error - scan document", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		st := store.NewPostgresStore(mock, nil, project, logger)

		mock.ExpectQuery(regexp.QuoteMeta(listQuery)).
			WithArgs(project, collection).
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow("a"))

		docs, err := st.List(ctx, collection)

		require.Nil(t, docs)
		require.ErrorContains(t, err, "failed to scan document")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error - rows error", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		st := store.NewPostgresStore(mock, nil, project, logger)

		mock.ExpectQuery(regexp.QuoteMeta(listQuery)).
			WithArgs(project, collection).
			WillReturnRows(
				pgxmock.NewRows([]string{"id", "data"}).AddRow("a", []byte(`{}`)).
					RowError(1, assert.AnError),
			)

		docs, err := st.List(ctx, collection)

		require.Nil(t, docs)
		require.ErrorContains(t, err, "failed to read row")
		require.ErrorIs(t, err, assert.AnError)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("success - empty collection", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		st := store.NewPostgresStore(mock, nil, project, logger)

		mock.ExpectQuery(regexp.QuoteMeta(listQuery)).
			WithArgs(project, collection).
			WillReturnRows(pgxmock.NewRows([]string{"id", "data"}))

		docs, err := st.List(ctx, collection)

		require.NoError(t, err)
		require.NotNil(t, docs)
		assert.Empty(t, docs)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("success - list documents", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		st := store.NewPostgresStore(mock, nil, project, logger)

		mock.ExpectQuery(regexp.QuoteMeta(listQuery)).
			WithArgs(project, collection).
			WillReturnRows(pgxmock.NewRows([]string{"id", "data"}).
				AddRow("a", []byte(`{"name":"A"}`)).
				AddRow("b", []byte(`{"name":"B"}`)))

		docs, err := st.List(ctx, collection)

		require.NoError(t, err)
		require.Len(t, docs, 2)
		assert.Equal(t, "a", docs[0].ID)
		assert.Equal(t, "b", docs[1].ID)
		assert.JSONEq(t, `{"name":"B"}`, string(docs[1].Data))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresSet(t *testing.T) {
	t.Parallel()
	logger := slog.Default()
	ctx := t.Context()
	doc := store.Document{ID: "abc", Data: []byte(`{"placeId":"abc"}`)}

	t.Run("error - empty id", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		st := store.NewPostgresStore(mock, nil, project, logger)

		err = st.Set(ctx, collection, store.Document{Data: doc.Data})

		require.ErrorIs(t, err, store.ErrEmptyID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error - upsert document", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		st := store.NewPostgresStore(mock, nil, project, logger)

		mock.ExpectExec(regexp.QuoteMeta(upsertQuery)).
			WithArgs(project, collection, doc.ID, json.RawMessage(doc.Data)).
			WillReturnError(assert.AnError)

		err = st.Set(ctx, collection, doc)

		require.ErrorContains(t, err, "failed to upsert document")
		require.ErrorIs(t, err, assert.AnError)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("success - upsert document", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		st := store.NewPostgresStore(mock, nil, project, logger)

		mock.ExpectExec(regexp.QuoteMeta(upsertQuery)).
			WithArgs(project, collection, doc.ID, json.RawMessage(doc.Data)).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		err = st.Set(ctx, collection, doc)

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresAdd(t *testing.T) {
	t.Parallel()
	logger := slog.Default()
	ctx := t.Context()
	data := []byte(`{"name":"Sé"}`)

	t.Run("error - insert document", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		st := store.NewPostgresStore(mock, nil, project, logger)

		mock.ExpectExec(regexp.QuoteMeta(insertQuery)).
			WithArgs(project, collection, pgxmock.AnyArg(), json.RawMessage(data)).
			WillReturnError(assert.AnError)

		id, err := st.Add(ctx, collection, data)

		require.Empty(t, id)
		require.ErrorContains(t, err, "failed to insert document")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("success - insert with minted id", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		st := store.NewPostgresStore(mock, nil, project, logger)

		mock.ExpectExec(regexp.QuoteMeta(insertQuery)).
			WithArgs(project, collection, pgxmock.AnyArg(), json.RawMessage(data)).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		id, err := st.Add(ctx, collection, data)

		require.NoError(t, err)
		_, err = uuid.Parse(id)
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresDelete(t *testing.T) {
	t.Parallel()
	logger := slog.Default()
	ctx := t.Context()

	t.Run("error - delete document", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		st := store.NewPostgresStore(mock, nil, project, logger)

		mock.ExpectExec(regexp.QuoteMeta(deleteQuery)).
			WithArgs(project, collection, "abc").
			WillReturnError(assert.AnError)

		err = st.Delete(ctx, collection, "abc")

		require.ErrorContains(t, err, "failed to delete document")
		require.ErrorIs(t, err, assert.AnError)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("success - delete document", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		st := store.NewPostgresStore(mock, nil, project, logger)

		mock.ExpectExec(regexp.QuoteMeta(deleteQuery)).
			WithArgs(project, collection, "abc").
			WillReturnResult(pgxmock.NewResult("DELETE", 1))

		err = st.Delete(ctx, collection, "abc")

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresMigrate(t *testing.T) {
	t.Parallel()
	logger := slog.Default()
	ctx := t.Context()

	t.Run("error - apply schema", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		st := store.NewPostgresStore(mock, nil, project, logger)

		mock.ExpectExec("CREATE TABLE IF NOT EXISTS documents").WillReturnError(assert.AnError)

		err = st.Migrate(ctx)

		require.ErrorContains(t, err, "failed to apply schema")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("success - apply schema", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		st := store.NewPostgresStore(mock, nil, project, logger)

		mock.ExpectExec("CREATE TABLE IF NOT EXISTS documents").WillReturnResult(pgxmock.NewResult("CREATE", 0))
		mock.ExpectExec("CREATE OR REPLACE FUNCTION notify_document_change").
			WillReturnResult(pgxmock.NewResult("CREATE", 0))
		mock.ExpectExec("DROP TRIGGER IF EXISTS documents_notify").WillReturnResult(pgxmock.NewResult("DROP", 0))
		mock.ExpectExec("CREATE TRIGGER documents_notify").WillReturnResult(pgxmock.NewResult("CREATE", 0))

		err = st.Migrate(ctx)

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresWatchWithoutListener(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	st := store.NewPostgresStore(mock, nil, project, slog.Default())

	stream, err := st.Watch(t.Context(), collection)

	require.Nil(t, stream)
	require.ErrorIs(t, err, store.ErrWatchUnsupported)
}
