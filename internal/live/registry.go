// Package live implements change-driven queries: a Registry of
// subscriptions keyed by table name, and Query, a stream of snapshots that
// is re-evaluated whenever a watched table is written.
package live

import "sync"

// Registry tracks active subscriptions keyed by table name. Writers call
// Notify after committing; subscribers receive a coalesced signal.
type Registry struct {
	mu     sync.Mutex
	subs   map[string]map[*subscription]struct{}
	closed bool
}

type subscription struct {
	ch     chan struct{}
	tables []string
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{subs: make(map[string]map[*subscription]struct{})}
}

// Subscribe registers interest in the given tables. The returned channel
// receives at most one pending signal at a time; signals raised while one
// is pending are merged into it. The channel is closed when the Registry
// is closed. The returned func unsubscribes and is safe to call more than
// once.
func (r *Registry) Subscribe(tables ...string) (<-chan struct{}, func()) {
	sub := &subscription{ch: make(chan struct{}, 1), tables: tables}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		close(sub.ch)
		return sub.ch, func() {}
	}
	for _, table := range tables {
		set, ok := r.subs[table]
		if !ok {
			set = make(map[*subscription]struct{})
			r.subs[table] = set
		}
		set[sub] = struct{}{}
	}

	var once sync.Once
	return sub.ch, func() {
		once.Do(func() { r.remove(sub) })
	}
}

func (r *Registry) remove(sub *subscription) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, table := range sub.tables {
		set := r.subs[table]
		delete(set, sub)
		if len(set) == 0 {
			delete(r.subs, table)
		}
	}
}

// Notify signals every subscriber of the given tables. It never blocks.
func (r *Registry) Notify(tables ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, table := range tables {
		for sub := range r.subs[table] {
			select {
			case sub.ch <- struct{}{}:
			default:
			}
		}
	}
}

// Len returns the number of distinct active subscriptions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[*subscription]struct{})
	for _, set := range r.subs {
		for sub := range set {
			seen[sub] = struct{}{}
		}
	}
	return len(seen)
}

// Close closes every subscriber channel. Later subscriptions receive an
// already-closed channel. Close is idempotent.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}
	r.closed = true

	closed := make(map[*subscription]struct{})
	for _, set := range r.subs {
		for sub := range set {
			if _, ok := closed[sub]; ok {
				continue
			}
			closed[sub] = struct{}{}
			close(sub.ch)
		}
	}
	r.subs = make(map[string]map[*subscription]struct{})
}
