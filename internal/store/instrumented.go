package store

import (
	"context"
	"errors"
	"time"

	"github.com/UnknownOlympus/itinera/internal/metrics"
)

// Instrumented wraps a Store and records operation counts and latencies.
type Instrumented struct {
	next    Store
	backend string
	metrics *metrics.Metrics
}

// NewInstrumented decorates next with metrics labelled by backend.
func NewInstrumented(next Store, backend string, m *metrics.Metrics) *Instrumented {
	return &Instrumented{next: next, backend: backend, metrics: m}
}

func (i *Instrumented) Get(ctx context.Context, collection, id string) (Document, error) {
	defer i.observe("get", time.Now())
	doc, err := i.next.Get(ctx, collection, id)
	i.count("get", err)

	return doc, err
}

func (i *Instrumented) List(ctx context.Context, collection string) ([]Document, error) {
	defer i.observe("list", time.Now())
	docs, err := i.next.List(ctx, collection)
	i.count("list", err)

	return docs, err
}

func (i *Instrumented) Set(ctx context.Context, collection string, doc Document) error {
	defer i.observe("set", time.Now())
	err := i.next.Set(ctx, collection, doc)
	i.count("set", err)

	return err
}

func (i *Instrumented) Add(ctx context.Context, collection string, data []byte) (string, error) {
	defer i.observe("add", time.Now())
	id, err := i.next.Add(ctx, collection, data)
	i.count("add", err)

	return id, err
}

func (i *Instrumented) Delete(ctx context.Context, collection, id string) error {
	defer i.observe("delete", time.Now())
	err := i.next.Delete(ctx, collection, id)
	i.count("delete", err)

	return err
}

func (i *Instrumented) Watch(ctx context.Context, collection string) (*ChangeStream, error) {
	stream, err := i.next.Watch(ctx, collection)
	i.count("watch", err)

	return stream, err
}

func (i *Instrumented) Ping(ctx context.Context) error {
	return i.next.Ping(ctx)
}

func (i *Instrumented) observe(operation string, start time.Time) {
	i.metrics.StoreSeconds.WithLabelValues(i.backend, operation).Observe(time.Since(start).Seconds())
}

func (i *Instrumented) count(operation string, err error) {
	status := "success"
	switch {
	case err == nil:
	case errors.Is(err, ErrNotFound):
		status = "not_found"
	default:
		status = "failure"
	}
	i.metrics.StoreOperations.WithLabelValues(i.backend, operation, status).Inc()
}
