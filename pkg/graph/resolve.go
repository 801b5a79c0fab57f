package graph

import (
	"strings"

	"github.com/caseboard/backend/pkg/common"
)

// RawRelationship is a relationship fact whose endpoints have not been
// resolved yet. Source and Target are either a producer-local entity ID
// or a plain name string.
type RawRelationship struct {
	Source     string
	Target     string
	Type       string
	Label      string
	Status     common.RelationshipStatus
	Confidence float64
}

// ResolveEndpoint maps a raw endpoint token onto a canonical entity ID.
// The session ID map is consulted first (exact string key), then the
// current entities by ID and by case-insensitive name. Returns false
// when the token cannot be resolved.
func ResolveEndpoint(token string, sessionIDs map[string]string, entities []common.Entity) (string, bool) {
	if token == "" {
		return "", false
	}
	if id, ok := sessionIDs[token]; ok {
		return id, true
	}
	for i := range entities {
		if entities[i].ID == token {
			return token, true
		}
	}
	lower := strings.ToLower(token)
	for i := range entities {
		if strings.ToLower(entities[i].Name) == lower {
			return entities[i].ID, true
		}
	}
	return "", false
}

// FindDuplicate returns the index of a relationship in rels that
// represents the same fact as {source, target, typ}: the unordered
// endpoint pair matches and the type matches. Returns -1 when none
// exists. A relationship A->B of type X and one B->A of type X are the
// same fact.
func FindDuplicate(rels []common.Relationship, source, target, typ string) int {
	for i := range rels {
		if rels[i].Type != typ {
			continue
		}
		if (rels[i].Source == source && rels[i].Target == target) ||
			(rels[i].Source == target && rels[i].Target == source) {
			return i
		}
	}
	return -1
}

// NewRelationship builds a relationship from a raw fact and resolved
// endpoint IDs, assigning a fresh ID and filling defaults: the label
// falls back to the type, the status to confirmed, and the confidence
// is clipped into [0, 1].
func NewRelationship(raw RawRelationship, source, target string) common.Relationship {
	rel := common.Relationship{
		ID:         common.NewID(),
		Source:     source,
		Target:     target,
		Type:       raw.Type,
		Label:      raw.Label,
		Status:     raw.Status,
		Confidence: raw.Confidence,
	}
	if rel.Label == "" {
		rel.Label = rel.Type
	}
	if rel.Status == "" {
		rel.Status = common.StatusConfirmed
	}
	if rel.Confidence < 0 {
		rel.Confidence = 0
	}
	if rel.Confidence > 1 {
		rel.Confidence = 1
	}
	return rel
}

// Resolve maps a raw relationship onto canonical graph entity IDs and
// checks the graph invariants. It returns nil when the fact must be
// dropped: an endpoint cannot be resolved, the endpoints collapse to a
// self-loop, or an equivalent relationship already exists. Resolve is
// stateless per call; retrying facts whose endpoints arrive later in a
// stream is the caller's responsibility.
func Resolve(
	raw RawRelationship,
	sessionIDs map[string]string,
	entities []common.Entity,
	existing []common.Relationship,
) *common.Relationship {
	source, ok := ResolveEndpoint(raw.Source, sessionIDs, entities)
	if !ok {
		return nil
	}
	target, ok := ResolveEndpoint(raw.Target, sessionIDs, entities)
	if !ok {
		return nil
	}
	if source == target {
		return nil
	}
	if FindDuplicate(existing, source, target, raw.Type) >= 0 {
		return nil
	}
	rel := NewRelationship(raw, source, target)
	return &rel
}
