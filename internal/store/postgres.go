package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// changesChannel is the NOTIFY channel the documents trigger publishes to.
const changesChannel = "document_changes"

// schema creates the documents table and the trigger announcing every write.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS documents (
		project    TEXT        NOT NULL,
		collection TEXT        NOT NULL,
		id         TEXT        NOT NULL,
		data       JSONB       NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (project, collection, id)
	);`,
	`CREATE OR REPLACE FUNCTION notify_document_change() RETURNS trigger AS $$
	DECLARE
		rec documents;
	BEGIN
		IF TG_OP = 'DELETE' THEN
			rec := OLD;
		ELSE
			rec := NEW;
		END IF;
		PERFORM pg_notify('` + changesChannel + `', json_build_object(
			'project', rec.project,
			'collection', rec.collection,
			'id', rec.id,
			'op', CASE TG_OP WHEN 'DELETE' THEN 'delete' ELSE 'put' END
		)::text);
		RETURN NULL;
	END;
	$$ LANGUAGE plpgsql;`,
	`DROP TRIGGER IF EXISTS documents_notify ON documents;`,
	`CREATE TRIGGER documents_notify
		AFTER INSERT OR UPDATE OR DELETE ON documents
		FOR EACH ROW EXECUTE FUNCTION notify_document_change();`,
}

// PostgresStore keeps documents as JSONB rows, one table shared by all collections.
type PostgresStore struct {
	db       Database
	listener Listener
	project  string
	log      *slog.Logger
}

// NewPostgresStore creates a store over db. The listener is optional;
// without it Watch returns ErrWatchUnsupported.
func NewPostgresStore(db Database, listener Listener, project string, log *slog.Logger) *PostgresStore {
	return &PostgresStore{db: db, listener: listener, project: project, log: log}
}

// Migrate creates the documents table and its change trigger if they are missing.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	s.log.InfoContext(ctx, "Documents schema is up to date")

	return nil
}

// Get retrieves a single document of the collection by id.
// It returns ErrNotFound when no row matches.
func (s *PostgresStore) Get(ctx context.Context, collection, id string) (Document, error) {
	query := `
		SELECT data
		FROM documents
		WHERE project = $1 AND collection = $2 AND id = $3;
	`

	var data []byte
	err := s.db.QueryRow(ctx, query, s.project, collection, id).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return Document{}, ErrNotFound
	}
	if err != nil {
		return Document{}, fmt.Errorf("failed to query document: %w", err)
	}

	return Document{ID: id, Data: data}, nil
}

// List retrieves every document of the collection ordered by id.
func (s *PostgresStore) List(ctx context.Context, collection string) ([]Document, error) {
	query := `
		SELECT id, data
		FROM documents
		WHERE project = $1 AND collection = $2
		ORDER BY id ASC;
	`

	rows, err := s.db.Query(ctx, query, s.project, collection)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	docs := []Document{}
	for rows.Next() {
		var doc Document
		if errScan := rows.Scan(&doc.ID, &doc.Data); errScan != nil {
			return nil, fmt.Errorf("failed to scan document: %w", errScan)
		}
		docs = append(docs, doc)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read row: %w", err)
	}
	s.log.DebugContext(ctx, "Documents listed", "collection", collection, "count", len(docs))

	return docs, nil
}

// Set upserts the full document stored under doc.ID.
func (s *PostgresStore) Set(ctx context.Context, collection string, doc Document) error {
	if doc.ID == "" {
		return ErrEmptyID
	}

	query := `
		INSERT INTO documents (project, collection, id, data)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (project, collection, id)
		DO UPDATE SET data = EXCLUDED.data, updated_at = now();
	`

	_, err := s.db.Exec(ctx, query, s.project, collection, doc.ID, json.RawMessage(doc.Data))
	if err != nil {
		return fmt.Errorf("failed to upsert document: %w", err)
	}

	return nil
}

// Add inserts data under a new random id.
func (s *PostgresStore) Add(ctx context.Context, collection string, data []byte) (string, error) {
	query := `
		INSERT INTO documents (project, collection, id, data)
		VALUES ($1, $2, $3, $4);
	`

	id := uuid.NewString()
	_, err := s.db.Exec(ctx, query, s.project, collection, id, json.RawMessage(data))
	if err != nil {
		return "", fmt.Errorf("failed to insert document: %w", err)
	}

	return id, nil
}

// Delete removes a document. Deleting a missing document is not an error.
func (s *PostgresStore) Delete(ctx context.Context, collection, id string) error {
	query := `
		DELETE FROM documents
		WHERE project = $1 AND collection = $2 AND id = $3;
	`

	_, err := s.db.Exec(ctx, query, s.project, collection, id)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Watch listens for the notifications of the documents trigger on a connection
// taken out of the pool for the lifetime of the stream.
func (s *PostgresStore) Watch(ctx context.Context, collection string) (*ChangeStream, error) {
	if s.listener == nil {
		return nil, ErrWatchUnsupported
	}

	pooled, err := s.listener.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire listen connection: %w", err)
	}
	conn := pooled.Hijack()

	if _, err = conn.Exec(ctx, "LISTEN "+changesChannel); err != nil {
		_ = conn.Close(context.Background())
		return nil, fmt.Errorf("failed to listen for document changes: %w", err)
	}

	stream, streamCtx := newChangeStream(ctx)
	go s.listen(streamCtx, conn, stream, collection)

	return stream, nil
}

func (s *PostgresStore) listen(ctx context.Context, conn *pgx.Conn, stream *ChangeStream, collection string) {
	var err error
	defer func() {
		_ = conn.Close(context.Background())
		stream.finish(err)
	}()

	s.log.DebugContext(ctx, "Listening for document changes", "collection", collection)

	for {
		notification, errWait := conn.WaitForNotification(ctx)
		if errWait != nil {
			err = errWait
			if ctx.Err() != nil {
				err = ctx.Err()
			}
			return
		}

		var change Change
		if errJSON := json.Unmarshal([]byte(notification.Payload), &change); errJSON != nil {
			s.log.WarnContext(ctx, "Malformed change notification", "payload", notification.Payload, "error", errJSON)
			continue
		}
		if change.Project != s.project || change.Collection != collection {
			continue
		}

		if !stream.send(ctx, change) {
			err = ctx.Err()
			return
		}
	}
}
