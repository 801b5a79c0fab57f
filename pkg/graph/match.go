package graph

import (
	"strings"

	"github.com/caseboard/backend/pkg/common"
)

// Matcher decides whether a candidate entity already exists in a pool.
// Implementations must be deterministic; given the same candidate and
// pool they return the same result. The default is HeuristicMatcher;
// stricter strategies (edit-distance thresholds, embedding similarity)
// can be substituted without touching the merger or resolver.
type Matcher interface {
	// Match returns a pointer into pool for the first entity that
	// represents the same real-world thing as candidate, or nil.
	Match(candidate common.Entity, pool []common.Entity) *common.Entity
}

// HeuristicMatcher matches entities by name using three conservative
// rules, checked against each pool entity in insertion order:
//
//  1. Names are equal after normalization.
//  2. One normalized name is a substring of the other
//     ("jpmorgan" vs "jpmorgan chase").
//  3. The initials of one name equal the other name verbatim and the
//     initials are longer than two characters
//     ("international business machines" vs "ibm").
//
// When both entities carry a known type and the types differ, the pair
// is never a match regardless of name similarity. False negatives are
// preferred over false positives: a wrong merge destroys the separate
// identity of two real-world entities, while a missed merge only
// leaves a duplicate that a later dedupe pass can collapse.
type HeuristicMatcher struct{}

func (HeuristicMatcher) Match(candidate common.Entity, pool []common.Entity) *common.Entity {
	n1 := Normalize(candidate.Name)
	if n1 == "" {
		return nil
	}

	for i := range pool {
		e := &pool[i]
		if candidate.Type.Known() && e.Type.Known() && candidate.Type != e.Type {
			continue
		}

		n2 := Normalize(e.Name)
		if n2 == "" {
			continue
		}

		if n1 == n2 {
			return e
		}
		if strings.Contains(n1, n2) || strings.Contains(n2, n1) {
			return e
		}
		if initialsMatch(n1, n2) || initialsMatch(n2, n1) {
			return e
		}
	}

	return nil
}

// initialsMatch reports whether the initials of full equal short.
// Short abbreviations of one or two letters are too ambiguous to trust.
func initialsMatch(full, short string) bool {
	ini := initials(full)
	return len(ini) > 2 && ini == short
}
