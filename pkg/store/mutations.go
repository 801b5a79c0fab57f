package store

import (
	"strings"

	"github.com/caseboard/backend/pkg/common"
	"github.com/caseboard/backend/pkg/graph"
)

// RelationshipOutcome reports what happened to a single relationship
// fact. Only Unresolved is worth retrying: the endpoint may still
// arrive later in the same stream.
type RelationshipOutcome int

const (
	// RelationshipAdded means the relationship entered the graph.
	RelationshipAdded RelationshipOutcome = iota
	// RelationshipDuplicate means an equivalent undirected fact exists.
	RelationshipDuplicate
	// RelationshipSelfLoop means both endpoints resolved to one entity.
	RelationshipSelfLoop
	// RelationshipUnresolved means an endpoint could not be resolved.
	RelationshipUnresolved
)

func (o RelationshipOutcome) String() string {
	switch o {
	case RelationshipAdded:
		return "added"
	case RelationshipDuplicate:
		return "duplicate"
	case RelationshipSelfLoop:
		return "self_loop"
	case RelationshipUnresolved:
		return "unresolved"
	}
	return "unknown"
}

// BatchResult summarizes a batch mutation.
type BatchResult struct {
	EntitiesAdded        int `json:"entities_added"`
	EntitiesMerged       int `json:"entities_merged"`
	EntitiesDropped      int `json:"entities_dropped"`
	RelationshipsAdded   int `json:"relationships_added"`
	RelationshipsMerged  int `json:"relationships_merged"`
	RelationshipsDropped int `json:"relationships_dropped"`
}

// DedupeResult summarizes a full-graph deduplication pass.
type DedupeResult struct {
	EntitiesBefore      int `json:"entities_before"`
	EntitiesAfter       int `json:"entities_after"`
	RelationshipsBefore int `json:"relationships_before"`
	RelationshipsAfter  int `json:"relationships_after"`
}

// Stats is a cheap point-in-time summary of the store.
type Stats struct {
	Entities       int `json:"entities"`
	Relationships  int `json:"relationships"`
	ActiveSessions int `json:"active_sessions"`
}

// sanitizeEntity prepares an entity for entry into the graph: assigns
// an ID when missing, clamps the importance, and drops an invalid type
// down to unknown. The name must already be checked by the caller.
func sanitizeEntity(e common.Entity) common.Entity {
	out := e.Clone()
	out.Name = strings.TrimSpace(out.Name)
	if out.ID == "" {
		out.ID = common.NewID()
	}
	out.Importance = common.ClampImportance(out.Importance)
	if !out.Type.Valid() {
		out.Type = common.EntityUnknown
	}
	return out
}

// applyAddOrMerge runs the matcher against the current entities; on a
// hit the matched entity is replaced with the merge result, on a miss
// the entity is appended. Returns the canonical ID and whether the
// entity was merged into an existing one.
func (st *state) applyAddOrMerge(e common.Entity) (string, bool) {
	incoming := sanitizeEntity(e)
	if match := st.matcher.Match(incoming, st.graph.Entities); match != nil {
		canonical := match.ID
		st.replaceEntity(canonical, graph.Merge(*match, incoming))
		return canonical, true
	}
	st.graph.Entities = append(st.graph.Entities, incoming)
	return incoming.ID, false
}

// applyRelationship resolves a raw relationship against the session ID
// map plus the current entities and applies it when the invariants
// hold. In batch mode a duplicate raises the existing relationship's
// confidence to the maximum of the two; confidence is never lowered.
func (st *state) applyRelationship(
	raw graph.RawRelationship,
	sessionIDs map[string]string,
	raiseConfidence bool,
) RelationshipOutcome {
	source, ok := graph.ResolveEndpoint(raw.Source, sessionIDs, st.graph.Entities)
	if !ok {
		return RelationshipUnresolved
	}
	target, ok := graph.ResolveEndpoint(raw.Target, sessionIDs, st.graph.Entities)
	if !ok {
		return RelationshipUnresolved
	}
	if source == target {
		return RelationshipSelfLoop
	}
	if idx := graph.FindDuplicate(st.graph.Relationships, source, target, raw.Type); idx >= 0 {
		if raiseConfidence && raw.Confidence > st.graph.Relationships[idx].Confidence {
			st.graph.Relationships[idx].Confidence = raw.Confidence
		}
		return RelationshipDuplicate
	}
	st.graph.Relationships = append(st.graph.Relationships, graph.NewRelationship(raw, source, target))
	return RelationshipAdded
}

// applyBatch is the batch path used by manual multi-add and ingestion
// completion. Entities are resolved against the existing graph and
// against entities added earlier in the same batch, building a name-to-
// ID map; relationships are then resolved against the union. Entities
// and relationships that fail resolution are excluded; the well-formed
// remainder is still applied.
func (st *state) applyBatch(entities []common.Entity, rels []graph.RawRelationship) BatchResult {
	var res BatchResult

	nameToID := make(map[string]string, len(entities))
	for _, e := range entities {
		if strings.TrimSpace(e.Name) == "" {
			res.EntitiesDropped++
			continue
		}
		canonical, merged := st.applyAddOrMerge(e)
		nameToID[strings.ToLower(strings.TrimSpace(e.Name))] = canonical
		if e.ID != "" {
			nameToID[e.ID] = canonical
		}
		if merged {
			res.EntitiesMerged++
		} else {
			res.EntitiesAdded++
		}
	}

	for _, raw := range rels {
		switch st.applyRelationship(raw, nameToID, true) {
		case RelationshipAdded:
			res.RelationshipsAdded++
		case RelationshipDuplicate:
			res.RelationshipsMerged++
		default:
			res.RelationshipsDropped++
		}
	}

	return res
}

// applyDelete removes an entity and cascades to every relationship
// referencing it. The selection is cleared when it pointed at the
// deleted entity.
func (st *state) applyDelete(id string) bool {
	idx := st.findEntity(id)
	if idx < 0 {
		return false
	}
	st.graph.Entities = append(st.graph.Entities[:idx], st.graph.Entities[idx+1:]...)

	kept := st.graph.Relationships[:0]
	for _, rel := range st.graph.Relationships {
		if rel.Source == id || rel.Target == id {
			continue
		}
		kept = append(kept, rel)
	}
	st.graph.Relationships = kept

	if st.selected == id {
		st.selected = ""
	}
	return true
}

// applyDedupe replays the whole graph through the matcher and merger
// and rewrites the selection through the resulting remap.
func (st *state) applyDedupe() DedupeResult {
	res := DedupeResult{
		EntitiesBefore:      len(st.graph.Entities),
		RelationshipsBefore: len(st.graph.Relationships),
	}

	deduped, remap := graph.Deduplicate(st.graph, st.matcher)
	st.graph = deduped
	if canonical, ok := remap[st.selected]; ok {
		st.selected = canonical
	}

	res.EntitiesAfter = len(st.graph.Entities)
	res.RelationshipsAfter = len(st.graph.Relationships)
	return res
}
