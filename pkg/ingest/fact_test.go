package ingest

import (
	"errors"
	"testing"
)

func TestDecodeFact(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		event   string
		wantErr error
	}{
		{
			name:  "entity fact",
			input: `{"event":"entity_found","id":"E1","name":"Acme","type":"corporation","importance":7}`,
			event: EventEntityFound,
		},
		{
			name:  "relationship fact",
			input: `{"event":"relationship_found","source":"E1","target":"Bob","type":"owns","confidence":0.9}`,
			event: EventRelationshipFound,
		},
		{
			name:  "double encoded",
			input: `"{\"event\":\"entity_found\",\"name\":\"Acme\"}"`,
			event: EventEntityFound,
		},
		{
			name:  "repairable json",
			input: `{event: "entity_found", name: 'Acme'}`,
			event: EventEntityFound,
		},
		{
			name:    "entity missing name",
			input:   `{"event":"entity_found","id":"E1"}`,
			wantErr: ErrMalformedFact,
		},
		{
			name:    "relationship missing target",
			input:   `{"event":"relationship_found","source":"E1"}`,
			wantErr: ErrMalformedFact,
		},
		{
			name:    "unknown event",
			input:   `{"event":"graph_exploded","name":"Acme"}`,
			wantErr: ErrUnknownEvent,
		},
		{
			name:    "not json at all",
			input:   ``,
			wantErr: ErrMalformedFact,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fact, err := DecodeFact([]byte(tc.input))
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("DecodeFact() error = %v, want %v", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeFact() error = %v", err)
			}
			if fact.Event != tc.event {
				t.Errorf("event = %q, want %q", fact.Event, tc.event)
			}
			switch tc.event {
			case EventEntityFound:
				if fact.Entity == nil || fact.Relationship != nil {
					t.Errorf("entity fact not populated exclusively: %+v", fact)
				}
			case EventRelationshipFound:
				if fact.Relationship == nil || fact.Entity != nil {
					t.Errorf("relationship fact not populated exclusively: %+v", fact)
				}
			}
		})
	}
}

func TestDecodeFactEntityFields(t *testing.T) {
	fact, err := DecodeFact([]byte(
		`{"event":"entity_found","id":"E1","name":"Acme","type":"corporation","description":"shell company","importance":8}`,
	))
	if err != nil {
		t.Fatalf("DecodeFact() error = %v", err)
	}
	e := fact.Entity
	if e.ID != "E1" || e.Name != "Acme" || e.Type != "corporation" ||
		e.Description != "shell company" || e.Importance != 8 {
		t.Errorf("entity fields = %+v", e)
	}
}
