package graph

import (
	"reflect"
	"testing"

	"github.com/caseboard/backend/pkg/common"
)

func TestMerge(t *testing.T) {
	tests := []struct {
		name     string
		existing common.Entity
		incoming common.Entity
		want     common.Entity
	}{
		{
			name: "existing id survives, longer name wins",
			existing: common.Entity{
				ID: "e1", Name: "Tesla", Importance: 5,
			},
			incoming: common.Entity{
				ID: "e2", Name: "Tesla, Inc.", Importance: 5,
			},
			want: common.Entity{
				ID: "e1", Name: "Tesla, Inc.", Importance: 5,
				Aliases: []string{"Tesla", "Tesla, Inc."},
			},
		},
		{
			name: "name tie keeps existing",
			existing: common.Entity{
				ID: "e1", Name: "Acme", Importance: 5,
			},
			incoming: common.Entity{
				ID: "e2", Name: "ACME", Importance: 5,
			},
			want: common.Entity{
				ID: "e1", Name: "Acme", Importance: 5,
				Aliases: []string{"Acme", "ACME"},
			},
		},
		{
			name: "incoming description and type win when set",
			existing: common.Entity{
				ID: "e1", Name: "Acme", Description: "old", Importance: 5,
			},
			incoming: common.Entity{
				ID: "e2", Name: "Acme", Description: "new",
				Type: common.EntityCorporation, Importance: 5,
			},
			want: common.Entity{
				ID: "e1", Name: "Acme", Description: "new",
				Type: common.EntityCorporation, Importance: 5,
				Aliases: []string{"Acme"},
			},
		},
		{
			name: "empty incoming description keeps existing",
			existing: common.Entity{
				ID: "e1", Name: "Acme", Description: "kept",
				Type: common.EntityCorporation, Importance: 5,
			},
			incoming: common.Entity{
				ID: "e2", Name: "Acme", Importance: 5,
			},
			want: common.Entity{
				ID: "e1", Name: "Acme", Description: "kept",
				Type: common.EntityCorporation, Importance: 5,
				Aliases: []string{"Acme"},
			},
		},
		{
			name: "higher importance wins and is clamped",
			existing: common.Entity{
				ID: "e1", Name: "Acme", Importance: 3,
			},
			incoming: common.Entity{
				ID: "e2", Name: "Acme", Importance: 40,
			},
			want: common.Entity{
				ID: "e1", Name: "Acme", Importance: 10,
				Aliases: []string{"Acme"},
			},
		},
		{
			name: "unset importance resolves to default",
			existing: common.Entity{
				ID: "e1", Name: "Acme",
			},
			incoming: common.Entity{
				ID: "e2", Name: "Acme",
			},
			want: common.Entity{
				ID: "e1", Name: "Acme", Importance: 5,
				Aliases: []string{"Acme"},
			},
		},
		{
			name: "aliases and sources union",
			existing: common.Entity{
				ID: "e1", Name: "Tesla", Importance: 5,
				Aliases: []string{"Tesla Motors"},
				Sources: []string{"filing-2019"},
			},
			incoming: common.Entity{
				ID: "e2", Name: "Tesla, Inc.", Importance: 5,
				Aliases: []string{"Tesla Motors", "TSLA"},
				Sources: []string{"filing-2019", "news-2024"},
			},
			want: common.Entity{
				ID: "e1", Name: "Tesla, Inc.", Importance: 5,
				Aliases: []string{"Tesla Motors", "TSLA", "Tesla", "Tesla, Inc."},
				Sources: []string{"filing-2019", "news-2024"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Merge(tt.existing, tt.incoming)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Merge() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestMergeIdempotent(t *testing.T) {
	a := common.Entity{
		ID: "e1", Name: "Tesla", Description: "car maker",
		Type: common.EntityCorporation, Importance: 6,
		Aliases: []string{"Tesla Motors"},
		Sources: []string{"filing-2019"},
	}
	b := common.Entity{
		ID: "e2", Name: "Tesla, Inc.", Description: "ev manufacturer",
		Importance: 8,
		Aliases:    []string{"TSLA"},
		Sources:    []string{"news-2024"},
	}

	once := Merge(a, b)
	twice := Merge(once, b)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("Merge is not idempotent:\nonce  = %#v\ntwice = %#v", once, twice)
	}
}

func TestMergeUnionFieldsCommutative(t *testing.T) {
	a := common.Entity{
		ID: "e1", Name: "Acme", Importance: 5,
		Aliases: []string{"Acme Corp", "ACME"},
		Sources: []string{"s1", "s2"},
	}
	b := common.Entity{
		ID: "e2", Name: "Acme", Importance: 5,
		Aliases: []string{"ACME", "Acme Inc"},
		Sources: []string{"s2", "s3"},
	}

	ab := Merge(a, b)
	ba := Merge(b, a)

	// Order of merge must not change the resulting sets.
	if !sameStringSet(ab.Aliases, ba.Aliases) {
		t.Errorf("alias sets differ: %v vs %v", ab.Aliases, ba.Aliases)
	}
	if !sameStringSet(ab.Sources, ba.Sources) {
		t.Errorf("source sets differ: %v vs %v", ab.Sources, ba.Sources)
	}
}

func sameStringSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[string]struct{}, len(a))
	for _, s := range a {
		set[s] = struct{}{}
	}
	for _, s := range b {
		if _, ok := set[s]; !ok {
			return false
		}
	}
	return true
}
