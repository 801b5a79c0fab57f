package graph

import (
	"github.com/caseboard/backend/pkg/common"
)

// Merge combines an existing and an incoming record for the same
// real-world entity into one. The existing entity's identity survives:
// its ID is kept and the result replaces it in the graph.
//
// Field rules:
//   - Name: the longer of the two (ties keep existing).
//   - Description: incoming if non-empty, else existing.
//   - Type: incoming if known, else existing.
//   - Importance: the maximum, clamped to the valid range.
//   - Aliases: union of both alias sets plus both names.
//   - Sources: union of both source sets.
//
// Merge is pure, deterministic, and idempotent:
// Merge(Merge(a, b), b) == Merge(a, b).
func Merge(existing, incoming common.Entity) common.Entity {
	out := existing.Clone()

	if len(incoming.Name) > len(existing.Name) {
		out.Name = incoming.Name
	}
	if incoming.Description != "" {
		out.Description = incoming.Description
	}
	if incoming.Type.Known() {
		out.Type = incoming.Type
	}
	out.Importance = common.ClampImportance(maxImportance(existing.Importance, incoming.Importance))
	out.Aliases = unionStrings(existing.Aliases, incoming.Aliases, []string{existing.Name, incoming.Name})
	out.Sources = unionStrings(existing.Sources, incoming.Sources)

	return out
}

func maxImportance(a, b int) int {
	a = common.ClampImportance(a)
	b = common.ClampImportance(b)
	if a > b {
		return a
	}
	return b
}

// unionStrings concatenates the given sets preserving first-seen order,
// dropping duplicates and empty strings.
func unionStrings(sets ...[]string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, set := range sets {
		for _, s := range set {
			if s == "" {
				continue
			}
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}
