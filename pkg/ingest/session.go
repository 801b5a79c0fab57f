package ingest

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/caseboard/backend/internal/metric"
	"github.com/caseboard/backend/pkg/common"
	"github.com/caseboard/backend/pkg/graph"
	"github.com/caseboard/backend/pkg/logger"
	"github.com/caseboard/backend/pkg/store"
)

// Relationships whose endpoints have not arrived yet wait here and are
// retried after every entity fact. When the buffer is full the oldest
// entry gives way, since recent facts are the ones a producer is still
// talking about.
const maxPendingRelationships = 64

const endSessionTimeout = 5 * time.Second

// EventSource yields producer facts in arrival order. Next returns io.EOF
// when the stream ends normally; any other error is terminal for the session.
type EventSource interface {
	Next(ctx context.Context) (*Fact, error)
	Close() error
}

// Callbacks let the caller observe facts as they are applied. Either
// field may be nil.
type Callbacks struct {
	OnEntity       func(canonicalID string, fact EntityFact)
	OnRelationship func(outcome store.RelationshipOutcome, fact RelationshipFact)
}

// Session consumes one event stream and integrates its facts into the
// graph. The producer-local ID map and the pending-relationship buffer
// live only as long as the session.
type Session struct {
	ID     string
	store  *store.Store
	source EventSource
	calls  Callbacks

	ids     map[string]string
	pending []RelationshipFact
}

func NewSession(st *store.Store, source EventSource, calls Callbacks) *Session {
	return &Session{
		ID:     common.NewID(),
		store:  st,
		source: source,
		calls:  calls,
		ids:    make(map[string]string),
	}
}

// Run consumes the source until it ends or ctx is cancelled. Facts already
// applied to the graph stay applied; cancellation only stops further
// consumption. A closed store or a broken transport ends the session with
// an error, a plain end of stream does not.
func (s *Session) Run(ctx context.Context) error {
	if err := s.store.BeginSession(ctx); err != nil {
		return err
	}
	metric.SessionsActive.Inc()

	defer func() {
		metric.SessionsActive.Dec()
		endCtx, cancel := context.WithTimeout(context.Background(), endSessionTimeout)
		defer cancel()
		if err := s.store.EndSession(endCtx); err != nil && !errors.Is(err, store.ErrClosed) {
			logger.Warn("[Ingest] Failed to end session", "session", s.ID, "err", err)
		}
		if err := s.source.Close(); err != nil {
			logger.Debug("[Ingest] Source close failed", "session", s.ID, "err", err)
		}
	}()

	for {
		fact, err := s.source.Next(ctx)
		if errors.Is(err, io.EOF) {
			s.dropPending("stream ended")
			logger.Info("[Ingest] Session finished", "session", s.ID, "entities", len(s.ids))
			return nil
		}
		if err != nil {
			s.dropPending("session aborted")
			return err
		}

		switch fact.Event {
		case EventEntityFound:
			if err := s.handleEntity(ctx, fact.Entity); err != nil {
				return err
			}
			if err := s.retryPending(ctx); err != nil {
				return err
			}
		case EventRelationshipFound:
			if err := s.handleRelationship(ctx, *fact.Relationship); err != nil {
				return err
			}
		}
	}
}

// sessionKeys returns the lookup keys a producer may later use to refer
// to this entity: its producer-local ID if present, and its lowercased name.
func sessionKeys(fact *EntityFact) []string {
	keys := make([]string, 0, 2)
	if fact.ID != "" {
		keys = append(keys, fact.ID)
	}
	if name := strings.ToLower(strings.TrimSpace(fact.Name)); name != "" {
		keys = append(keys, name)
	}
	return keys
}

func (s *Session) handleEntity(ctx context.Context, fact *EntityFact) error {
	keys := sessionKeys(fact)

	for _, key := range keys {
		if canonical, ok := s.ids[key]; ok {
			// Already bound this session; note the repeat arrival and
			// make sure every key points at the canonical ID.
			logger.Debug("[Ingest] Entity seen again", "session", s.ID, "key", key)
			for _, k := range keys {
				s.ids[k] = canonical
			}
			return nil
		}
	}

	canonical, err := s.store.AddOrMergeEntity(ctx, common.Entity{
		Name:        fact.Name,
		Type:        common.EntityType(fact.Type),
		Description: fact.Description,
		Importance:  fact.Importance,
	})
	if err != nil {
		return err
	}

	for _, key := range keys {
		s.ids[key] = canonical
	}

	metric.FactsIngested.WithLabelValues("entity").Inc()
	if s.calls.OnEntity != nil {
		s.calls.OnEntity(canonical, *fact)
	}
	return nil
}

// handleRelationship applies one relationship fact. Unresolved endpoints
// park the fact in the pending buffer instead of dropping it outright,
// since the entity it names may simply not have arrived yet.
func (s *Session) handleRelationship(ctx context.Context, fact RelationshipFact) error {
	outcome, err := s.apply(ctx, fact)
	if err != nil {
		return err
	}
	if outcome != store.RelationshipUnresolved {
		return nil
	}

	if len(s.pending) >= maxPendingRelationships {
		evicted := s.pending[0]
		s.pending = s.pending[1:]
		metric.FactsDropped.WithLabelValues("overflow").Inc()
		logger.Warn("[Ingest] Pending buffer full, dropping oldest",
			"session", s.ID, "source", evicted.Source, "target", evicted.Target)
	}
	s.pending = append(s.pending, fact)
	return nil
}

// retryPending re-resolves buffered relationships after a new entity fact.
func (s *Session) retryPending(ctx context.Context) error {
	if len(s.pending) == 0 {
		return nil
	}

	remaining := s.pending[:0]
	for _, fact := range s.pending {
		outcome, err := s.apply(ctx, fact)
		if err != nil {
			return err
		}
		if outcome == store.RelationshipUnresolved {
			remaining = append(remaining, fact)
		}
	}
	s.pending = remaining
	return nil
}

// apply sends one relationship fact through the store and records the
// outcome. Unresolved facts are not counted as dropped here, the caller
// decides whether they wait or fall away.
func (s *Session) apply(ctx context.Context, fact RelationshipFact) (store.RelationshipOutcome, error) {
	outcome, err := s.store.AddRelationship(ctx, graph.RawRelationship{
		Source:     fact.Source,
		Target:     fact.Target,
		Type:       fact.Type,
		Label:      fact.Label,
		Confidence: fact.Confidence,
	}, s.ids)
	if err != nil {
		return outcome, err
	}

	switch outcome {
	case store.RelationshipAdded:
		metric.FactsIngested.WithLabelValues("relationship").Inc()
		if s.calls.OnRelationship != nil {
			s.calls.OnRelationship(outcome, fact)
		}
	case store.RelationshipDuplicate:
		metric.FactsDropped.WithLabelValues("duplicate").Inc()
	case store.RelationshipSelfLoop:
		metric.FactsDropped.WithLabelValues("self_loop").Inc()
	}
	return outcome, nil
}

func (s *Session) dropPending(why string) {
	for _, fact := range s.pending {
		metric.FactsDropped.WithLabelValues("unresolved").Inc()
		logger.Debug("[Ingest] Dropping unresolved relationship",
			"session", s.ID, "source", fact.Source, "target", fact.Target, "reason", why)
	}
	s.pending = nil
}
