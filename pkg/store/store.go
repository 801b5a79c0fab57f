package store

import (
	"context"
	"errors"
	"sync"

	"github.com/caseboard/backend/pkg/common"
	"github.com/caseboard/backend/pkg/graph"
)

var (
	// ErrClosed is returned by every operation after Close.
	ErrClosed = errors.New("graph store closed")
	// ErrEmptyName rejects entities without a display name.
	ErrEmptyName = errors.New("entity name is empty")
	// ErrNotFound is returned when an entity ID does not exist.
	ErrNotFound = errors.New("entity not found")
)

// Store is the authoritative, single-writer home of one investigation
// graph. All mutations are expressed as typed commands delivered
// through one channel and applied by one goroutine, so every operation
// is atomic with respect to the graph invariants: no caller ever
// observes a dangling relationship, a self-loop, or a duplicate
// undirected fact, no matter how many goroutines feed the store.
//
// Consumers read through Snapshot (a deep copy) or Subscribe (a deep
// copy delivered after every mutation); they never touch shared state.
type Store struct {
	commands  chan command
	done      chan struct{}
	closeOnce sync.Once
}

// Params configures a new Store.
type Params struct {
	// Matcher decides entity identity for merge-aware operations.
	// Defaults to graph.HeuristicMatcher.
	Matcher graph.Matcher
	// Metadata seeds the case metadata of the empty graph.
	Metadata common.Metadata
}

// New creates a store and starts its reducer goroutine.
func New(params Params) *Store {
	matcher := params.Matcher
	if matcher == nil {
		matcher = graph.HeuristicMatcher{}
	}

	s := &Store{
		commands: make(chan command),
		done:     make(chan struct{}),
	}

	st := &state{
		matcher:     matcher,
		subscribers: make(map[int]chan common.Graph),
	}
	st.graph.Metadata = params.Metadata

	go s.run(st)
	return s
}

// Close stops the reducer. Pending and future operations fail with
// ErrClosed; subscriber channels are closed.
func (s *Store) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
	})
}

func (s *Store) run(st *state) {
	for {
		select {
		case cmd := <-s.commands:
			if cmd.apply(st) {
				st.broadcast()
			}
		case <-s.done:
			for _, ch := range st.subscribers {
				close(ch)
			}
			return
		}
	}
}

// dispatch hands a command to the reducer and waits for it to be
// accepted. The reducer applies commands strictly in arrival order.
func (s *Store) dispatch(ctx context.Context, cmd command) error {
	select {
	case s.commands <- cmd:
		return nil
	case <-s.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// await blocks until the reducer replies, the store closes, or the
// context expires.
func await[T any](ctx context.Context, s *Store, reply <-chan T) (T, error) {
	var zero T
	select {
	case v := <-reply:
		return v, nil
	case <-s.done:
		return zero, ErrClosed
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// state is owned exclusively by the reducer goroutine.
type state struct {
	graph    common.Graph
	selected string
	matcher  graph.Matcher
	sessions int

	subscribers map[int]chan common.Graph
	nextSub     int
}

func (st *state) broadcast() {
	if len(st.subscribers) == 0 {
		return
	}
	snapshot := st.graph.Clone()
	for _, ch := range st.subscribers {
		// Never block the reducer on a slow subscriber; it will
		// catch up with the next snapshot.
		select {
		case ch <- snapshot:
		default:
		}
	}
}

func (st *state) findEntity(id string) int {
	for i := range st.graph.Entities {
		if st.graph.Entities[i].ID == id {
			return i
		}
	}
	return -1
}

func (st *state) replaceEntity(id string, e common.Entity) {
	if idx := st.findEntity(id); idx >= 0 {
		st.graph.Entities[idx] = e
	}
}
