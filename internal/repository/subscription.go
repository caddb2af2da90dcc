package repository

import (
	"context"
	"errors"
	"sync"

	"github.com/UnknownOlympus/itinera/internal/store"
)

// Subscription is a live view over a collection.
type Subscription[T any] struct {
	updates chan []T
	cancel  context.CancelFunc
	done    chan struct{}

	mu  sync.Mutex
	err error
}

func newSubscription[T any](cancel context.CancelFunc) *Subscription[T] {
	return &Subscription[T]{
		updates: make(chan []T),
		cancel:  cancel,
		done:    make(chan struct{}),
	}
}

// Updates delivers one full snapshot per change. The channel is closed when
// the subscription ends.
func (s *Subscription[T]) Updates() <-chan []T {
	return s.updates
}

// Err returns the failure that ended the subscription, if any.
func (s *Subscription[T]) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.err
}

// Unsubscribe releases the underlying listener and waits until it is gone.
// It is safe to call more than once.
func (s *Subscription[T]) Unsubscribe() {
	s.cancel()
	<-s.done
}

// Done is closed once the subscription has fully stopped.
func (s *Subscription[T]) Done() <-chan struct{} {
	return s.done
}

func (s *Subscription[T]) run(ctx context.Context, repo *Repository[T], stream *store.ChangeStream) {
	defer close(s.done)
	defer close(s.updates)
	defer stream.Close()

	if !s.emit(ctx, repo) {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case change, ok := <-stream.Changes():
			if !ok {
				if err := stream.Err(); err != nil {
					repo.log.ErrorContext(ctx, "Change stream stopped", "error", err)
					s.fail(err)
				}
				return
			}
			repo.log.DebugContext(ctx, "Collection changed", "key", change.ID, "op", change.Op)
			if !s.emit(ctx, repo) {
				return
			}
		}
	}
}

func (s *Subscription[T]) emit(ctx context.Context, repo *Repository[T]) bool {
	items, err := repo.Snapshot(ctx)
	if err != nil {
		if ctx.Err() == nil && !errors.Is(err, context.Canceled) {
			repo.log.ErrorContext(ctx, "Failed to refresh subscription", "error", err)
			s.fail(err)
		}
		return false
	}

	select {
	case s.updates <- items:
		return true
	case <-ctx.Done():
		return false
	}
}

func (s *Subscription[T]) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.err = err
}
