package graph

import (
	"testing"

	"github.com/caseboard/backend/pkg/common"
)

func TestResolveEndpoint(t *testing.T) {
	entities := []common.Entity{
		{ID: "id-acme", Name: "Acme"},
		{ID: "id-globex", Name: "Globex"},
	}
	sessionIDs := map[string]string{
		"E1": "id-acme",
	}

	tests := []struct {
		name   string
		token  string
		wantID string
		wantOK bool
	}{
		{name: "session id map wins", token: "E1", wantID: "id-acme", wantOK: true},
		{name: "case-insensitive name fallback", token: "globex", wantID: "id-globex", wantOK: true},
		{name: "unknown token", token: "E99", wantOK: false},
		{name: "empty token", token: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ResolveEndpoint(tt.token, sessionIDs, entities)
			if ok != tt.wantOK || got != tt.wantID {
				t.Errorf("ResolveEndpoint(%q) = (%q, %v), want (%q, %v)",
					tt.token, got, ok, tt.wantID, tt.wantOK)
			}
		})
	}
}

func TestFindDuplicate(t *testing.T) {
	rels := []common.Relationship{
		{ID: "r1", Source: "a", Target: "b", Type: "owns"},
		{ID: "r2", Source: "b", Target: "c", Type: "invested_in"},
	}

	tests := []struct {
		name   string
		source string
		target string
		typ    string
		want   int
	}{
		{name: "same direction", source: "a", target: "b", typ: "owns", want: 0},
		{name: "reversed direction is the same fact", source: "b", target: "a", typ: "owns", want: 0},
		{name: "different type is a different fact", source: "a", target: "b", typ: "sued", want: -1},
		{name: "different pair", source: "a", target: "c", typ: "owns", want: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FindDuplicate(rels, tt.source, tt.target, tt.typ)
			if got != tt.want {
				t.Errorf("FindDuplicate() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	entities := []common.Entity{
		{ID: "id-acme", Name: "Acme"},
		{ID: "id-globex", Name: "Globex"},
	}
	existing := []common.Relationship{
		{ID: "r1", Source: "id-acme", Target: "id-globex", Type: "owns"},
	}
	sessionIDs := map[string]string{
		"E1": "id-acme",
	}

	tests := []struct {
		name     string
		raw      RawRelationship
		wantNil  bool
		wantSrc  string
		wantTgt  string
		wantType string
	}{
		{
			name:    "new relationship resolves by name",
			raw:     RawRelationship{Source: "acme", Target: "Globex", Type: "sued"},
			wantSrc: "id-acme", wantTgt: "id-globex", wantType: "sued",
		},
		{
			name:    "session id and name mix",
			raw:     RawRelationship{Source: "E1", Target: "globex", Type: "supplies"},
			wantSrc: "id-acme", wantTgt: "id-globex", wantType: "supplies",
		},
		{
			name:    "dangling endpoint is dropped",
			raw:     RawRelationship{Source: "Acme", Target: "Initech", Type: "owns"},
			wantNil: true,
		},
		{
			name:    "self loop by alternate key is dropped",
			raw:     RawRelationship{Source: "E1", Target: "Acme", Type: "owns"},
			wantNil: true,
		},
		{
			name:    "duplicate undirected fact is dropped",
			raw:     RawRelationship{Source: "Globex", Target: "Acme", Type: "owns"},
			wantNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(tt.raw, sessionIDs, entities, existing)
			if tt.wantNil {
				if got != nil {
					t.Fatalf("Resolve() = %#v, want nil", got)
				}
				return
			}
			if got == nil {
				t.Fatal("Resolve() = nil, want relationship")
			}
			if got.Source != tt.wantSrc || got.Target != tt.wantTgt || got.Type != tt.wantType {
				t.Errorf("Resolve() = {%s %s %s}, want {%s %s %s}",
					got.Source, got.Target, got.Type, tt.wantSrc, tt.wantTgt, tt.wantType)
			}
			if got.ID == "" {
				t.Error("Resolve() did not assign an ID")
			}
		})
	}
}

func TestNewRelationshipDefaults(t *testing.T) {
	rel := NewRelationship(RawRelationship{Type: "owns", Confidence: 1.4}, "a", "b")
	if rel.Label != "owns" {
		t.Errorf("label = %q, want type fallback %q", rel.Label, "owns")
	}
	if rel.Status != common.StatusConfirmed {
		t.Errorf("status = %q, want %q", rel.Status, common.StatusConfirmed)
	}
	if rel.Confidence != 1 {
		t.Errorf("confidence = %v, want clipped to 1", rel.Confidence)
	}
}
