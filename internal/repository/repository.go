package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/UnknownOlympus/itinera/internal/store"
)

// ErrKeyRequired is returned by Set when the record carries no key.
var ErrKeyRequired = errors.New("record key is required")

// Saver is implemented by records that normalize themselves before being stored.
type Saver interface {
	BeforeSave()
}

// Loader is implemented by records that normalize themselves after being read.
type Loader interface {
	AfterLoad()
}

// Repository gives typed access to one collection of a document store.
// Records are encoded as JSON and keyed by the value of their keyField attribute.
type Repository[T any] struct {
	store      store.Store
	collection string
	keyField   string
	log        *slog.Logger
}

// New binds a repository to collection. keyField is the JSON name of the record key.
func New[T any](st store.Store, collection, keyField string, log *slog.Logger) *Repository[T] {
	return &Repository[T]{
		store:      st,
		collection: collection,
		keyField:   keyField,
		log:        log.With("collection", collection),
	}
}

// Collection returns the name of the bound collection.
func (r *Repository[T]) Collection() string {
	return r.collection
}

// Set replaces the whole record stored under its key.
func (r *Repository[T]) Set(ctx context.Context, item T) error {
	data, key, err := r.encode(item)
	if err != nil {
		return err
	}
	if key == "" {
		return ErrKeyRequired
	}

	if err = r.store.Set(ctx, r.collection, store.Document{ID: key, Data: data}); err != nil {
		return fmt.Errorf("failed to set record %s: %w", key, err)
	}
	r.log.DebugContext(ctx, "Record stored", "key", key)

	return nil
}

// Add stores item under its own key when it has one, otherwise under a key
// minted by the store. The key used is returned.
func (r *Repository[T]) Add(ctx context.Context, item T) (string, error) {
	data, key, err := r.encode(item)
	if err != nil {
		return "", err
	}

	if key != "" {
		if err = r.store.Set(ctx, r.collection, store.Document{ID: key, Data: data}); err != nil {
			return "", fmt.Errorf("failed to set record %s: %w", key, err)
		}
		r.log.DebugContext(ctx, "Record stored", "key", key)

		return key, nil
	}

	key, err = r.store.Add(ctx, r.collection, data)
	if err != nil {
		return "", fmt.Errorf("failed to add record: %w", err)
	}
	r.log.DebugContext(ctx, "Record added", "key", key)

	return key, nil
}

// Get fetches one record. found is false when the collection holds nothing under id.
func (r *Repository[T]) Get(ctx context.Context, id string) (T, bool, error) {
	var zero T

	doc, err := r.store.Get(ctx, r.collection, id)
	if errors.Is(err, store.ErrNotFound) {
		return zero, false, nil
	}
	if err != nil {
		return zero, false, fmt.Errorf("failed to get record %s: %w", id, err)
	}

	item, err := r.decode(doc)
	if err != nil {
		return zero, false, err
	}

	return item, true, nil
}

// Delete removes the record stored under id.
func (r *Repository[T]) Delete(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, r.collection, id); err != nil {
		return fmt.Errorf("failed to delete record %s: %w", id, err)
	}
	r.log.DebugContext(ctx, "Record deleted", "key", id)

	return nil
}

// Snapshot returns the current contents of the collection in key order.
func (r *Repository[T]) Snapshot(ctx context.Context) ([]T, error) {
	docs, err := r.store.List(ctx, r.collection)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}

	items := make([]T, 0, len(docs))
	for _, doc := range docs {
		item, err := r.decode(doc)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return items, nil
}

// List subscribes to the collection. The subscription first emits the current
// contents and then a fresh snapshot after every change, until Unsubscribe is
// called or ctx ends.
func (r *Repository[T]) List(ctx context.Context) (*Subscription[T], error) {
	ctx, cancel := context.WithCancel(ctx)

	stream, err := r.store.Watch(ctx, r.collection)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to watch collection: %w", err)
	}

	sub := newSubscription[T](cancel)
	go sub.run(ctx, r, stream)

	return sub, nil
}

func (r *Repository[T]) encode(item T) ([]byte, string, error) {
	if saver, ok := any(&item).(Saver); ok {
		saver.BeforeSave()
	}

	data, err := json.Marshal(item)
	if err != nil {
		return nil, "", fmt.Errorf("failed to encode record: %w", err)
	}

	var fields map[string]json.RawMessage
	if err = json.Unmarshal(data, &fields); err != nil {
		return nil, "", fmt.Errorf("failed to encode record: %w", err)
	}

	raw, ok := fields[r.keyField]
	if !ok || string(raw) == "null" {
		return data, "", nil
	}

	var key string
	if err = json.Unmarshal(raw, &key); err != nil {
		return nil, "", fmt.Errorf("failed to read key field %q: %w", r.keyField, err)
	}

	return data, key, nil
}

// decode fills the key field from the document id, whatever the stored body holds.
func (r *Repository[T]) decode(doc store.Document) (T, error) {
	var item T

	if err := json.Unmarshal(doc.Data, &item); err != nil {
		return item, fmt.Errorf("failed to decode record %s: %w", doc.ID, err)
	}

	key, err := json.Marshal(map[string]string{r.keyField: doc.ID})
	if err != nil {
		return item, fmt.Errorf("failed to decode record %s: %w", doc.ID, err)
	}
	if err = json.Unmarshal(key, &item); err != nil {
		return item, fmt.Errorf("failed to decode record %s: %w", doc.ID, err)
	}

	if loader, ok := any(&item).(Loader); ok {
		loader.AfterLoad()
	}

	return item, nil
}
