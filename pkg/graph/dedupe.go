package graph

import (
	"github.com/caseboard/backend/pkg/common"
)

// Deduplicate runs a full-graph compaction pass. Every entity is
// replayed through the matcher against an accumulator (first-seen
// entities win and become the merge base), producing an ID remap table.
// Every relationship endpoint is then rewritten through the remap;
// relationships that collapse into self-loops or duplicate an earlier
// relationship are removed, keeping the higher confidence.
//
// The returned remap maps every original entity ID to its canonical ID
// so callers can rewrite references they hold (e.g. a selection).
func Deduplicate(g common.Graph, matcher Matcher) (common.Graph, map[string]string) {
	kept := make([]common.Entity, 0, len(g.Entities))
	remap := make(map[string]string, len(g.Entities))

	for _, e := range g.Entities {
		match := matcher.Match(e, kept)
		if match == nil {
			remap[e.ID] = e.ID
			kept = append(kept, e.Clone())
			continue
		}
		canonical := match.ID
		merged := Merge(*match, e)
		for i := range kept {
			if kept[i].ID == canonical {
				kept[i] = merged
				break
			}
		}
		remap[e.ID] = canonical
	}

	rels := make([]common.Relationship, 0, len(g.Relationships))
	for _, rel := range g.Relationships {
		source, okS := remap[rel.Source]
		target, okT := remap[rel.Target]
		if !okS || !okT {
			continue
		}
		if source == target {
			continue
		}
		if idx := FindDuplicate(rels, source, target, rel.Type); idx >= 0 {
			if rel.Confidence > rels[idx].Confidence {
				rels[idx].Confidence = rel.Confidence
			}
			continue
		}
		rel.Source = source
		rel.Target = target
		rels = append(rels, rel)
	}

	out := g
	out.Entities = kept
	out.Relationships = rels
	return out, remap
}
