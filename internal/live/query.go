package live

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// ErrStopped is returned by First when the query ended without an error of
// its own, for example because it was closed before a snapshot arrived.
var ErrStopped = errors.New("live: query stopped")

// FetchFunc evaluates a query and returns one snapshot.
type FetchFunc[T any] func(ctx context.Context) (T, error)

// Query is a stream of snapshots. The first snapshot is the current result;
// each later one follows a write to a watched table. A consumer that falls
// behind receives the newest snapshot, not a backlog. A Query cannot be
// restarted once it has ended.
type Query[T any] struct {
	ch      chan T
	cancel  context.CancelFunc
	done    chan struct{}
	stopped atomic.Bool

	mu  sync.Mutex
	err error
}

// Watch starts a Query that runs fetch now and again after every
// notification for tables. The query ends when ctx is cancelled, Close is
// called, or fetch fails.
func Watch[T any](ctx context.Context, reg *Registry, fetch FetchFunc[T], tables ...string) *Query[T] {
	ctx, cancel := context.WithCancel(ctx)
	q := &Query[T]{
		ch:     make(chan T),
		cancel: cancel,
		done:   make(chan struct{}),
	}

	// Subscribe before the first fetch so a write racing with it is not lost.
	changes, unsubscribe := reg.Subscribe(tables...)
	go q.run(ctx, changes, unsubscribe, fetch)
	return q
}

func (q *Query[T]) run(ctx context.Context, changes <-chan struct{}, unsubscribe func(), fetch FetchFunc[T]) {
	defer close(q.done)
	defer close(q.ch)
	defer unsubscribe()

	for {
		snapshot, err := fetch(ctx)
		if err != nil {
			q.finish(ctx, err)
			return
		}

		select {
		case q.ch <- snapshot:
		case _, ok := <-changes:
			if !ok {
				changes = nil
			}
			continue
		case <-ctx.Done():
			q.finish(ctx, nil)
			return
		}

		select {
		case _, ok := <-changes:
			if !ok {
				changes = nil
			}
		case <-ctx.Done():
			q.finish(ctx, nil)
			return
		}
	}
}

// finish records why the stream ended. Cancellation through Close is not
// an error.
func (q *Query[T]) finish(ctx context.Context, err error) {
	if q.stopped.Load() {
		return
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		err = ctxErr
	}
	q.mu.Lock()
	q.err = err
	q.mu.Unlock()
}

// C returns the snapshot channel. It is closed when the query ends.
func (q *Query[T]) C() <-chan T {
	return q.ch
}

// Err returns the error that ended the query, or nil if it is still
// running or was closed by the caller.
func (q *Query[T]) Err() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.err
}

// Done is closed once the query's goroutine has exited.
func (q *Query[T]) Done() <-chan struct{} {
	return q.done
}

// Close ends the query and waits for its resources to be released.
func (q *Query[T]) Close() {
	q.stopped.Store(true)
	q.cancel()
	<-q.done
}

// First returns the next snapshot and closes the query.
func (q *Query[T]) First(ctx context.Context) (T, error) {
	defer q.Close()

	var zero T
	select {
	case v, ok := <-q.ch:
		if !ok {
			if err := q.Err(); err != nil {
				return zero, err
			}
			return zero, ErrStopped
		}
		return v, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}
