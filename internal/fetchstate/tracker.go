// Package fetchstate tracks keyed asynchronous fetches so that a result
// is only applied while its request is still the current one.
package fetchstate

import (
	"context"
	"sync"
)

// Phase is the lifecycle stage of a Tracker.
type Phase int

const (
	Idle Phase = iota
	Loading
	Settled
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Settled:
		return "settled"
	default:
		return "unknown"
	}
}

// State is a snapshot of a Tracker. Data from the last successful fetch
// is kept while a new fetch is loading and when it fails; Idle clears it.
type State[T any] struct {
	Phase Phase
	Key   string
	Token uint64
	Data  T
	Err   error
}

// IsLoading reports whether a fetch is in flight.
func (s State[T]) IsLoading() bool { return s.Phase == Loading }

// Ticket identifies one dispatched fetch.
type Ticket struct {
	Key   string
	Token uint64
}

// Fetcher loads the data for key.
type Fetcher[T any] func(ctx context.Context, key string) (T, error)

// Tracker is a {Idle, Loading(token), Settled(token, result)} state
// machine with a monotonic token counter. Every Begin issues a new token;
// Resolve discards results whose token is no longer current.
type Tracker[T any] struct {
	mu     sync.Mutex
	emitMu sync.Mutex
	state  State[T]
	next   uint64
	cancel context.CancelFunc
	subs   map[int]func(State[T])
	subID  int
	wg     sync.WaitGroup
}

// New creates an idle Tracker.
func New[T any]() *Tracker[T] {
	return &Tracker[T]{subs: make(map[int]func(State[T]))}
}

// State returns the current snapshot.
func (t *Tracker[T]) State() State[T] {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Subscribe registers fn to be called with every new state, in order.
// fn may call State but must not call Begin, Resolve or Run.
func (t *Tracker[T]) Subscribe(fn func(State[T])) (unsubscribe func()) {
	t.mu.Lock()
	id := t.subID
	t.subID++
	t.subs[id] = fn
	t.mu.Unlock()

	return func() {
		t.mu.Lock()
		delete(t.subs, id)
		t.mu.Unlock()
	}
}

// Begin starts a fetch for key and returns its ticket. An empty key
// moves the tracker to Idle instead, invalidating any in-flight fetch;
// ok is false in that case and nothing should be fetched.
func (t *Tracker[T]) Begin(key string) (ticket Ticket, ok bool) {
	return t.begin(key, nil)
}

func (t *Tracker[T]) begin(key string, cancel context.CancelFunc) (Ticket, bool) {
	t.mu.Lock()
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
	t.next++
	ticket := Ticket{Key: key, Token: t.next}

	if key == "" {
		t.state = State[T]{Phase: Idle, Token: ticket.Token}
	} else {
		t.cancel = cancel
		t.state = State[T]{Phase: Loading, Key: key, Token: ticket.Token, Data: t.state.Data}
	}
	t.emitLocked()
	return ticket, key != ""
}

// Resolve applies the outcome of the fetch identified by ticket. It
// returns false, leaving the state untouched, when a newer Begin has
// superseded the ticket or the ticket was already resolved.
func (t *Tracker[T]) Resolve(ticket Ticket, data T, err error) bool {
	t.mu.Lock()
	if t.state.Phase != Loading || t.state.Token != ticket.Token {
		t.mu.Unlock()
		return false
	}

	t.cancel = nil
	next := State[T]{Phase: Settled, Key: ticket.Key, Token: ticket.Token, Data: data, Err: err}
	if err != nil {
		next.Data = t.state.Data
	}
	t.state = next
	t.emitLocked()
	return true
}

// Run begins a fetch for key and runs fetch on its own goroutine. The
// previous fetch's context is canceled; its result is discarded either
// way. Run returns immediately.
func (t *Tracker[T]) Run(ctx context.Context, key string, fetch Fetcher[T]) Ticket {
	if key == "" {
		ticket, _ := t.begin("", nil)
		return ticket
	}

	fctx, cancel := context.WithCancel(ctx)
	ticket, _ := t.begin(key, cancel)

	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		defer cancel()
		data, err := fetch(fctx, key)
		t.Resolve(ticket, data, err)
	}()
	return ticket
}

// Wait blocks until every fetch started by Run has returned.
func (t *Tracker[T]) Wait() {
	t.wg.Wait()
}

// Close cancels the in-flight fetch and waits for Run goroutines.
func (t *Tracker[T]) Close() {
	t.mu.Lock()
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
	t.mu.Unlock()
	t.wg.Wait()
}

// emitLocked hands the current state to subscribers. It is called with
// t.mu held and releases it; emitMu keeps notifications in order.
func (t *Tracker[T]) emitLocked() {
	snap := t.state
	subs := make([]func(State[T]), 0, len(t.subs))
	for i := 0; i < t.subID; i++ {
		if fn, ok := t.subs[i]; ok {
			subs = append(subs, fn)
		}
	}
	t.emitMu.Lock()
	t.mu.Unlock()
	defer t.emitMu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
}
