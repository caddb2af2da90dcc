package store

import (
	"context"
	"errors"
	"sync"
)

// Common store errors.
var (
	ErrNotFound         = errors.New("document not found")
	ErrEmptyID          = errors.New("document id is empty")
	ErrWatchUnsupported = errors.New("store does not support watching for changes")
)

// streamBuffer is the number of pending change notifications held per stream.
const streamBuffer = 16

// Document is a single record of a collection.
// Data holds the record as a JSON object.
type Document struct {
	ID   string
	Data []byte
}

// Op is the kind of change applied to a document.
type Op string

const (
	OpPut    Op = "put"
	OpDelete Op = "delete"
)

// Change notifies that a document of a collection was written or removed.
type Change struct {
	Project    string `json:"project"`
	Collection string `json:"collection"`
	ID         string `json:"id"`
	Op         Op     `json:"op"`
}

// Store is a keyed document database split in named collections.
type Store interface {
	// Get returns ErrNotFound when the collection holds no document under id.
	Get(ctx context.Context, collection, id string) (Document, error)
	// List returns all documents of the collection ordered by id.
	List(ctx context.Context, collection string) ([]Document, error)
	// Set replaces the whole document stored under doc.ID, creating it if needed.
	Set(ctx context.Context, collection string, doc Document) error
	// Add stores data under a freshly minted id and returns that id.
	Add(ctx context.Context, collection string, data []byte) (string, error)
	Delete(ctx context.Context, collection, id string) error
	// Watch pushes a Change for every committed write to the collection until the stream is closed.
	Watch(ctx context.Context, collection string) (*ChangeStream, error)
	Ping(ctx context.Context) error
}

// ChangeStream delivers change notifications of one collection.
type ChangeStream struct {
	changes chan Change
	cancel  context.CancelFunc
	done    chan struct{}

	mu  sync.Mutex
	err error
}

// newChangeStream returns a stream and the context its producer must watch.
// The producer must call finish exactly once when it stops.
func newChangeStream(ctx context.Context) (*ChangeStream, context.Context) {
	ctx, cancel := context.WithCancel(ctx)

	return &ChangeStream{
		changes: make(chan Change, streamBuffer),
		cancel:  cancel,
		done:    make(chan struct{}),
	}, ctx
}

// Changes returns the notification channel. It is closed when the stream ends.
func (s *ChangeStream) Changes() <-chan Change {
	return s.changes
}

// Err returns the error that ended the stream, if any.
// A stream stopped through Close has no error.
func (s *ChangeStream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.err
}

// Close stops the stream and waits for its producer to release resources.
func (s *ChangeStream) Close() {
	s.cancel()
	<-s.done
}

func (s *ChangeStream) finish(err error) {
	s.mu.Lock()
	if err != nil && !errors.Is(err, context.Canceled) {
		s.err = err
	}
	s.mu.Unlock()

	close(s.changes)
	close(s.done)
	s.cancel()
}

// send blocks until the change is delivered or ctx ends.
func (s *ChangeStream) send(ctx context.Context, change Change) bool {
	select {
	case s.changes <- change:
		return true
	case <-ctx.Done():
		return false
	}
}

// offer never blocks. A full buffer already holds a notification that makes
// the consumer re-read the collection, so the dropped one carries no news.
func (s *ChangeStream) offer(change Change) {
	select {
	case s.changes <- change:
	default:
	}
}
