package ingest

import (
	"context"
	"errors"
	"sync"

	"github.com/caseboard/backend/pkg/logger"
	"github.com/caseboard/backend/pkg/store"
)

// A handful of concurrent sessions is normal (a manual extraction plus a
// background enrichment), a flood is not.
const defaultMaxSessions = 8

var (
	// ErrTooManySessions is returned by Start when the session limit is reached.
	ErrTooManySessions = errors.New("ingest: too many active sessions")
	// ErrSessionNotFound is returned by Cancel for an unknown session ID.
	ErrSessionNotFound = errors.New("ingest: session not found")
)

type running struct {
	session *Session
	cancel  context.CancelFunc
	done    chan struct{}
}

// Manager tracks running ingestion sessions so they can be cancelled
// individually or torn down together.
type Manager struct {
	store *store.Store
	max   int

	mu       sync.Mutex
	sessions map[string]*running
}

func NewManager(st *store.Store) *Manager {
	return &Manager{
		store:    st,
		max:      defaultMaxSessions,
		sessions: make(map[string]*running),
	}
}

// Start launches a session consuming source and returns its ID. The
// session runs until the source ends, fails, or the session is cancelled;
// the source is closed by the session in every case.
func (m *Manager) Start(ctx context.Context, source EventSource, calls Callbacks) (string, error) {
	session := NewSession(m.store, source, calls)

	runCtx, cancel := context.WithCancel(ctx)
	r := &running{session: session, cancel: cancel, done: make(chan struct{})}

	m.mu.Lock()
	if len(m.sessions) >= m.max {
		m.mu.Unlock()
		cancel()
		return "", ErrTooManySessions
	}
	m.sessions[session.ID] = r
	m.mu.Unlock()

	go func() {
		defer close(r.done)
		defer cancel()

		err := session.Run(runCtx)
		switch {
		case err == nil:
		case errors.Is(err, context.Canceled):
			logger.Info("[Ingest] Session cancelled", "session", session.ID)
		default:
			logger.Error("[Ingest] Session failed", "session", session.ID, "err", err)
		}

		m.mu.Lock()
		delete(m.sessions, session.ID)
		m.mu.Unlock()
	}()

	logger.Info("[Ingest] Session started", "session", session.ID)
	return session.ID, nil
}

// Cancel stops one session. Facts it already applied stay in the graph.
func (m *Manager) Cancel(id string) error {
	m.mu.Lock()
	r, ok := m.sessions[id]
	m.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	r.cancel()
	return nil
}

// Active returns the IDs of sessions still consuming events.
func (m *Manager) Active() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	return ids
}

// Shutdown cancels every session and waits for each to wind down.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	active := make([]*running, 0, len(m.sessions))
	for _, r := range m.sessions {
		active = append(active, r)
	}
	m.mu.Unlock()

	for _, r := range active {
		r.cancel()
	}
	for _, r := range active {
		<-r.done
	}
}
