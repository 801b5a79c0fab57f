package graph

import (
	"testing"

	"github.com/caseboard/backend/pkg/common"
)

func TestDeduplicate(t *testing.T) {
	g := common.Graph{
		Entities: []common.Entity{
			{ID: "e1", Name: "IBM", Type: common.EntityOrganization, Importance: 5},
			{ID: "e2", Name: "International Business Machines", Type: common.EntityOrganization, Importance: 5},
			{ID: "e3", Name: "ibm corp", Type: common.EntityOrganization, Importance: 5},
			{ID: "e4", Name: "Globex", Type: common.EntityCorporation, Importance: 5},
		},
		Relationships: []common.Relationship{
			{ID: "r1", Source: "e1", Target: "e4", Type: "supplies"},
			{ID: "r2", Source: "e4", Target: "e2", Type: "supplies"},
			{ID: "r3", Source: "e2", Target: "e3", Type: "owns"},
		},
	}

	deduped, remap := Deduplicate(g, HeuristicMatcher{})

	if len(deduped.Entities) != 2 {
		t.Fatalf("entity count = %d, want 2 (%#v)", len(deduped.Entities), deduped.Entities)
	}

	var ibm *common.Entity
	for i := range deduped.Entities {
		if deduped.Entities[i].ID == "e1" {
			ibm = &deduped.Entities[i]
		}
	}
	if ibm == nil {
		t.Fatal("canonical entity e1 missing from result")
	}
	for _, alias := range []string{"IBM", "International Business Machines", "ibm corp"} {
		if !containsString(ibm.Aliases, alias) {
			t.Errorf("aliases %v missing %q", ibm.Aliases, alias)
		}
	}
	if ibm.Name != "International Business Machines" {
		t.Errorf("canonical name = %q, want longest name", ibm.Name)
	}

	for _, id := range []string{"e1", "e2", "e3"} {
		if remap[id] != "e1" {
			t.Errorf("remap[%s] = %q, want e1", id, remap[id])
		}
	}

	// r1 and r2 collapse into one undirected fact, r3 becomes a
	// self-loop and is removed.
	if len(deduped.Relationships) != 1 {
		t.Fatalf("relationship count = %d, want 1 (%#v)", len(deduped.Relationships), deduped.Relationships)
	}
	rel := deduped.Relationships[0]
	if rel.Type != "supplies" {
		t.Errorf("surviving relationship type = %q, want supplies", rel.Type)
	}
	if !(rel.Source == "e1" && rel.Target == "e4") && !(rel.Source == "e4" && rel.Target == "e1") {
		t.Errorf("surviving relationship endpoints = %s -> %s, want e1/e4", rel.Source, rel.Target)
	}
}

func TestDeduplicateKeepsHigherConfidence(t *testing.T) {
	g := common.Graph{
		Entities: []common.Entity{
			{ID: "e1", Name: "Acme", Importance: 5},
			{ID: "e2", Name: "Globex", Importance: 5},
		},
		Relationships: []common.Relationship{
			{ID: "r1", Source: "e1", Target: "e2", Type: "owns", Confidence: 0.4},
			{ID: "r2", Source: "e2", Target: "e1", Type: "owns", Confidence: 0.9},
		},
	}

	deduped, _ := Deduplicate(g, HeuristicMatcher{})
	if len(deduped.Relationships) != 1 {
		t.Fatalf("relationship count = %d, want 1", len(deduped.Relationships))
	}
	if deduped.Relationships[0].Confidence != 0.9 {
		t.Errorf("confidence = %v, want 0.9 (never lowered)", deduped.Relationships[0].Confidence)
	}
}

func TestDeduplicateEmptyGraph(t *testing.T) {
	deduped, remap := Deduplicate(common.Graph{}, HeuristicMatcher{})
	if len(deduped.Entities) != 0 || len(deduped.Relationships) != 0 {
		t.Errorf("deduplicating an empty graph produced data: %#v", deduped)
	}
	if len(remap) != 0 {
		t.Errorf("remap for empty graph = %v, want empty", remap)
	}
}

func containsString(set []string, s string) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}
