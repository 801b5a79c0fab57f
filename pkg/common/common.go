package common

import (
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Graph is the authoritative collection of entities and relationships
// under investigation, together with free-form case metadata.
//
// A graph contains:
//   - Entities: nodes representing people, organizations, assets, etc.
//   - Relationships: edges connecting two entities
//   - Metadata: title, description, and investigation context
type Graph struct {
	Entities      []Entity       `json:"entities"`
	Relationships []Relationship `json:"relationships"`
	Metadata      Metadata       `json:"metadata"`
}

// Metadata holds case-level information about a graph.
type Metadata struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Context     string `json:"context,omitempty"`
}

// EntityType classifies an entity into one of a closed set of kinds.
type EntityType string

const (
	EntityPerson       EntityType = "person"
	EntityCorporation  EntityType = "corporation"
	EntityOrganization EntityType = "organization"
	EntityFinancial    EntityType = "financial"
	EntityGovernment   EntityType = "government"
	EntityEvent        EntityType = "event"
	EntityLocation     EntityType = "location"
	EntityAsset        EntityType = "asset"
	EntityUnknown      EntityType = "unknown"
)

// Valid reports whether t is a member of the closed entity type set.
// The empty string is accepted and treated like unknown.
func (t EntityType) Valid() bool {
	switch t {
	case "", EntityPerson, EntityCorporation, EntityOrganization,
		EntityFinancial, EntityGovernment, EntityEvent,
		EntityLocation, EntityAsset, EntityUnknown:
		return true
	}
	return false
}

// Known reports whether t carries actual type information.
// Empty and unknown types do not participate in type-mismatch checks.
func (t EntityType) Known() bool {
	return t != "" && t != EntityUnknown
}

// Importance bounds. Entities outside this range are clamped on entry.
const (
	MinImportance     = 1
	MaxImportance     = 10
	DefaultImportance = 5
)

// ClampImportance forces v into the [MinImportance, MaxImportance] range.
// Zero means "not supplied" and resolves to DefaultImportance.
func ClampImportance(v int) int {
	if v == 0 {
		return DefaultImportance
	}
	if v < MinImportance {
		return MinImportance
	}
	if v > MaxImportance {
		return MaxImportance
	}
	return v
}

// Entity represents a node in the graph. An entity can be a person,
// corporation, financial vehicle, or any other relevant actor. Aliases
// accumulate every historical name merged into the entity; sources are
// opaque provenance tags from the producers that reported it.
type Entity struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Type        EntityType `json:"type,omitempty"`
	Description string     `json:"description,omitempty"`
	Importance  int        `json:"importance"`
	Aliases     []string   `json:"aliases,omitempty"`
	Sources     []string   `json:"sources,omitempty"`
}

// Clone returns a deep copy of the entity.
func (e Entity) Clone() Entity {
	out := e
	if e.Aliases != nil {
		out.Aliases = append([]string(nil), e.Aliases...)
	}
	if e.Sources != nil {
		out.Sources = append([]string(nil), e.Sources...)
	}
	return out
}

// RelationshipStatus expresses how certain a relationship is.
type RelationshipStatus string

const (
	StatusConfirmed RelationshipStatus = "confirmed"
	StatusSuspected RelationshipStatus = "suspected"
	StatusFormer    RelationshipStatus = "former"
)

// Valid reports whether s is a member of the closed status set.
// The empty string is accepted and defaults to confirmed on entry.
func (s RelationshipStatus) Valid() bool {
	switch s {
	case "", StatusConfirmed, StatusSuspected, StatusFormer:
		return true
	}
	return false
}

// Relationship represents an edge between two entities. Source and
// Target hold entity IDs and must both reference entities currently in
// the graph. The unordered {Source, Target} pair combined with Type is
// unique within a graph.
type Relationship struct {
	ID         string             `json:"id"`
	Source     string             `json:"source"`
	Target     string             `json:"target"`
	Type       string             `json:"type"`
	Label      string             `json:"label,omitempty"`
	Status     RelationshipStatus `json:"status"`
	Confidence float64            `json:"confidence,omitempty"`
}

// Clone returns a deep copy of the graph. Mutating the copy never
// affects the original.
func (g Graph) Clone() Graph {
	out := g
	out.Entities = make([]Entity, len(g.Entities))
	for i := range g.Entities {
		out.Entities[i] = g.Entities[i].Clone()
	}
	out.Relationships = append([]Relationship(nil), g.Relationships...)
	return out
}

// NewID returns a fresh opaque identifier for entities, relationships,
// and ingestion sessions.
func NewID() string {
	id, _ := gonanoid.New()
	return id
}
