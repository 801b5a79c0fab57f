package store

import (
	"context"
	"strings"

	"github.com/caseboard/backend/pkg/common"
	"github.com/caseboard/backend/pkg/graph"
)

// command is one unit of work for the reducer. apply returns true when
// the graph changed and subscribers must be notified.
type command interface {
	apply(st *state) bool
}

type setGraphCmd struct {
	graph common.Graph
	reply chan struct{}
}

func (c setGraphCmd) apply(st *state) bool {
	st.graph = c.graph.Clone()
	st.selected = ""
	c.reply <- struct{}{}
	return true
}

// SetGraph replaces the whole graph (e.g. loading a persisted or shared
// case) and clears the selection.
func (s *Store) SetGraph(ctx context.Context, g common.Graph) error {
	cmd := setGraphCmd{graph: g, reply: make(chan struct{}, 1)}
	if err := s.dispatch(ctx, cmd); err != nil {
		return err
	}
	_, err := await(ctx, s, cmd.reply)
	return err
}

type addEntityCmd struct {
	entity common.Entity
	reply  chan string
}

func (c addEntityCmd) apply(st *state) bool {
	e := sanitizeEntity(c.entity)
	st.graph.Entities = append(st.graph.Entities, e)
	c.reply <- e.ID
	return true
}

// AddEntity appends an entity verbatim, without consulting the matcher.
// This is the manual-entry path where a duplicate is the investigator's
// decision, not an error. Returns the assigned entity ID.
func (s *Store) AddEntity(ctx context.Context, e common.Entity) (string, error) {
	if strings.TrimSpace(e.Name) == "" {
		return "", ErrEmptyName
	}
	cmd := addEntityCmd{entity: e, reply: make(chan string, 1)}
	if err := s.dispatch(ctx, cmd); err != nil {
		return "", err
	}
	return await(ctx, s, cmd.reply)
}

type addOrMergeCmd struct {
	entity common.Entity
	reply  chan string
}

func (c addOrMergeCmd) apply(st *state) bool {
	canonical, _ := st.applyAddOrMerge(c.entity)
	c.reply <- canonical
	return true
}

// AddOrMergeEntity runs the matcher against the current graph. On a hit
// the matched entity is replaced with the merge of both records; on a
// miss the entity is appended. Returns the canonical entity ID either
// way.
func (s *Store) AddOrMergeEntity(ctx context.Context, e common.Entity) (string, error) {
	if strings.TrimSpace(e.Name) == "" {
		return "", ErrEmptyName
	}
	cmd := addOrMergeCmd{entity: e, reply: make(chan string, 1)}
	if err := s.dispatch(ctx, cmd); err != nil {
		return "", err
	}
	return await(ctx, s, cmd.reply)
}

type addRelationshipCmd struct {
	raw        graph.RawRelationship
	sessionIDs map[string]string
	reply      chan RelationshipOutcome
}

func (c addRelationshipCmd) apply(st *state) bool {
	outcome := st.applyRelationship(c.raw, c.sessionIDs, false)
	c.reply <- outcome
	return outcome == RelationshipAdded
}

// AddRelationship resolves a raw relationship against the session ID
// map and the current entities, atomically with the invariant checks.
// sessionIDs may be nil for manual additions.
func (s *Store) AddRelationship(
	ctx context.Context,
	raw graph.RawRelationship,
	sessionIDs map[string]string,
) (RelationshipOutcome, error) {
	cmd := addRelationshipCmd{raw: raw, sessionIDs: sessionIDs, reply: make(chan RelationshipOutcome, 1)}
	if err := s.dispatch(ctx, cmd); err != nil {
		return RelationshipUnresolved, err
	}
	return await(ctx, s, cmd.reply)
}

type addBatchCmd struct {
	entities []common.Entity
	rels     []graph.RawRelationship
	reply    chan BatchResult
}

func (c addBatchCmd) apply(st *state) bool {
	c.reply <- st.applyBatch(c.entities, c.rels)
	return true
}

// AddBatch applies entities and relationships together: entities are
// resolved and merged first (against the existing graph and against
// earlier members of the same batch), then relationships are resolved
// against the union. Facts that fail resolution are excluded; the rest
// is applied in a single atomic step.
func (s *Store) AddBatch(
	ctx context.Context,
	entities []common.Entity,
	rels []graph.RawRelationship,
) (BatchResult, error) {
	cmd := addBatchCmd{entities: entities, rels: rels, reply: make(chan BatchResult, 1)}
	if err := s.dispatch(ctx, cmd); err != nil {
		return BatchResult{}, err
	}
	return await(ctx, s, cmd.reply)
}

type deleteEntityCmd struct {
	id    string
	reply chan bool
}

func (c deleteEntityCmd) apply(st *state) bool {
	found := st.applyDelete(c.id)
	c.reply <- found
	return found
}

// DeleteEntity removes an entity and every relationship touching it.
// Returns ErrNotFound when the ID does not exist.
func (s *Store) DeleteEntity(ctx context.Context, id string) error {
	cmd := deleteEntityCmd{id: id, reply: make(chan bool, 1)}
	if err := s.dispatch(ctx, cmd); err != nil {
		return err
	}
	found, err := await(ctx, s, cmd.reply)
	if err != nil {
		return err
	}
	if !found {
		return ErrNotFound
	}
	return nil
}

type dedupeCmd struct {
	reply chan DedupeResult
}

func (c dedupeCmd) apply(st *state) bool {
	c.reply <- st.applyDedupe()
	return true
}

// Deduplicate compacts the whole graph: entities are replayed through
// the matcher and merger, relationship endpoints are rewritten, and
// resulting duplicates and self-loops are removed.
func (s *Store) Deduplicate(ctx context.Context) (DedupeResult, error) {
	cmd := dedupeCmd{reply: make(chan DedupeResult, 1)}
	if err := s.dispatch(ctx, cmd); err != nil {
		return DedupeResult{}, err
	}
	return await(ctx, s, cmd.reply)
}

type clearCmd struct {
	reply chan struct{}
}

func (c clearCmd) apply(st *state) bool {
	metadata := st.graph.Metadata
	st.graph = common.Graph{Metadata: metadata}
	st.selected = ""
	c.reply <- struct{}{}
	return true
}

// Clear resets the graph to empty while keeping the case metadata.
func (s *Store) Clear(ctx context.Context) error {
	cmd := clearCmd{reply: make(chan struct{}, 1)}
	if err := s.dispatch(ctx, cmd); err != nil {
		return err
	}
	_, err := await(ctx, s, cmd.reply)
	return err
}

type setMetadataCmd struct {
	metadata common.Metadata
	reply    chan struct{}
}

func (c setMetadataCmd) apply(st *state) bool {
	st.graph.Metadata = c.metadata
	c.reply <- struct{}{}
	return true
}

// SetMetadata updates the case title, description, and context.
func (s *Store) SetMetadata(ctx context.Context, metadata common.Metadata) error {
	cmd := setMetadataCmd{metadata: metadata, reply: make(chan struct{}, 1)}
	if err := s.dispatch(ctx, cmd); err != nil {
		return err
	}
	_, err := await(ctx, s, cmd.reply)
	return err
}

type selectCmd struct {
	id    string
	reply chan bool
}

func (c selectCmd) apply(st *state) bool {
	if c.id == "" {
		st.selected = ""
		c.reply <- true
		return false
	}
	if st.findEntity(c.id) < 0 {
		c.reply <- false
		return false
	}
	st.selected = c.id
	c.reply <- true
	return false
}

// Select marks an entity as selected; the empty ID clears the
// selection. Selection does not notify subscribers.
func (s *Store) Select(ctx context.Context, id string) error {
	cmd := selectCmd{id: id, reply: make(chan bool, 1)}
	if err := s.dispatch(ctx, cmd); err != nil {
		return err
	}
	ok, err := await(ctx, s, cmd.reply)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

type selectedCmd struct {
	reply chan string
}

func (c selectedCmd) apply(st *state) bool {
	c.reply <- st.selected
	return false
}

// Selected returns the currently selected entity ID, or "".
func (s *Store) Selected(ctx context.Context) (string, error) {
	cmd := selectedCmd{reply: make(chan string, 1)}
	if err := s.dispatch(ctx, cmd); err != nil {
		return "", err
	}
	return await(ctx, s, cmd.reply)
}

type snapshotCmd struct {
	reply chan common.Graph
}

func (c snapshotCmd) apply(st *state) bool {
	c.reply <- st.graph.Clone()
	return false
}

// Snapshot returns a deep copy of the current graph. Mutating the copy
// never affects the store.
func (s *Store) Snapshot(ctx context.Context) (common.Graph, error) {
	cmd := snapshotCmd{reply: make(chan common.Graph, 1)}
	if err := s.dispatch(ctx, cmd); err != nil {
		return common.Graph{}, err
	}
	return await(ctx, s, cmd.reply)
}

type statsCmd struct {
	reply chan Stats
}

func (c statsCmd) apply(st *state) bool {
	c.reply <- Stats{
		Entities:       len(st.graph.Entities),
		Relationships:  len(st.graph.Relationships),
		ActiveSessions: st.sessions,
	}
	return false
}

// Stats returns entity/relationship counts and the number of active
// ingestion sessions.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	cmd := statsCmd{reply: make(chan Stats, 1)}
	if err := s.dispatch(ctx, cmd); err != nil {
		return Stats{}, err
	}
	return await(ctx, s, cmd.reply)
}

type sessionCountCmd struct {
	delta int
	reply chan struct{}
}

func (c sessionCountCmd) apply(st *state) bool {
	st.sessions += c.delta
	if st.sessions < 0 {
		st.sessions = 0
	}
	c.reply <- struct{}{}
	return false
}

// BeginSession marks the start of a streaming ingestion session. The
// store keeps serving manual mutations; the counter only distinguishes
// the idle and ingesting modes for observers.
func (s *Store) BeginSession(ctx context.Context) error {
	cmd := sessionCountCmd{delta: 1, reply: make(chan struct{}, 1)}
	if err := s.dispatch(ctx, cmd); err != nil {
		return err
	}
	_, err := await(ctx, s, cmd.reply)
	return err
}

// EndSession marks the end of a streaming ingestion session.
func (s *Store) EndSession(ctx context.Context) error {
	cmd := sessionCountCmd{delta: -1, reply: make(chan struct{}, 1)}
	if err := s.dispatch(ctx, cmd); err != nil {
		return err
	}
	_, err := await(ctx, s, cmd.reply)
	return err
}

type subscribeCmd struct {
	buffer int
	reply  chan subscription
}

type subscription struct {
	id int
	ch chan common.Graph
}

func (c subscribeCmd) apply(st *state) bool {
	ch := make(chan common.Graph, c.buffer)
	id := st.nextSub
	st.nextSub++
	st.subscribers[id] = ch
	c.reply <- subscription{id: id, ch: ch}
	return false
}

type unsubscribeCmd struct {
	id    int
	reply chan struct{}
}

func (c unsubscribeCmd) apply(st *state) bool {
	if ch, ok := st.subscribers[c.id]; ok {
		delete(st.subscribers, c.id)
		close(ch)
	}
	c.reply <- struct{}{}
	return false
}

// Subscribe registers for graph snapshots delivered after every
// mutation. Slow subscribers miss intermediate snapshots instead of
// blocking the store. The returned cancel function unregisters the
// subscription and closes the channel; the channel is also closed when
// the store closes.
func (s *Store) Subscribe(ctx context.Context, buffer int) (<-chan common.Graph, func(), error) {
	if buffer < 1 {
		buffer = 1
	}
	cmd := subscribeCmd{buffer: buffer, reply: make(chan subscription, 1)}
	if err := s.dispatch(ctx, cmd); err != nil {
		return nil, nil, err
	}
	sub, err := await(ctx, s, cmd.reply)
	if err != nil {
		return nil, nil, err
	}

	cancel := func() {
		unsub := unsubscribeCmd{id: sub.id, reply: make(chan struct{}, 1)}
		if err := s.dispatch(context.Background(), unsub); err != nil {
			return
		}
		_, _ = await(context.Background(), s, unsub.reply)
	}
	return sub.ch, cancel, nil
}
