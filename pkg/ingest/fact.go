package ingest

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator"
	"github.com/kaptinlin/jsonrepair"
)

// Fact kinds carried in the "event" field of every inbound message. The
// payload fields live next to the discriminator, not nested under it,
// because both fact shapes already use "type" for their own purposes.
const (
	EventEntityFound       = "entity_found"
	EventRelationshipFound = "relationship_found"
)

var (
	// ErrUnknownEvent marks a message whose "event" field names no known fact kind.
	ErrUnknownEvent = errors.New("ingest: unknown event kind")
	// ErrMalformedFact marks a message missing a required field.
	ErrMalformedFact = errors.New("ingest: malformed fact")
)

var validate = validator.New()

// EntityFact is an "entity found" message from an external producer.
// The ID is producer-local and only meaningful within one session.
type EntityFact struct {
	ID          string `json:"id"`
	Name        string `json:"name" validate:"required"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Importance  int    `json:"importance"`
}

// RelationshipFact is a "relationship found" message. Source and Target
// are either a producer-local entity ID or a plain name string.
type RelationshipFact struct {
	Source     string  `json:"source" validate:"required"`
	Target     string  `json:"target" validate:"required"`
	Type       string  `json:"type"`
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// Fact is the decoded form of one inbound message. Exactly one of Entity
// and Relationship is set, matching Event.
type Fact struct {
	Event        string
	Entity       *EntityFact
	Relationship *RelationshipFact
}

// DecodeFact parses and validates one raw producer message. Producers are
// noisy, so malformed JSON goes through a repair pass before being
// rejected. Messages failing validation return ErrMalformedFact.
func DecodeFact(raw []byte) (*Fact, error) {
	input, err := normalizeJSON(string(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFact, err)
	}

	var envelope struct {
		Event string `json:"event"`
	}
	if err := json.Unmarshal([]byte(input), &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFact, err)
	}

	switch envelope.Event {
	case EventEntityFound:
		fact := new(EntityFact)
		if err := json.Unmarshal([]byte(input), fact); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedFact, err)
		}
		if err := validate.Struct(fact); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedFact, err)
		}
		return &Fact{Event: EventEntityFound, Entity: fact}, nil
	case EventRelationshipFound:
		fact := new(RelationshipFact)
		if err := json.Unmarshal([]byte(input), fact); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedFact, err)
		}
		if err := validate.Struct(fact); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedFact, err)
		}
		return &Fact{Event: EventRelationshipFound, Relationship: fact}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, envelope.Event)
	}
}

// normalizeJSON returns input as parseable JSON, trying the raw text,
// then a double-encoded string, then a repair pass. Extraction backends
// regularly emit all three shapes.
func normalizeJSON(input string) (string, error) {
	input = strings.TrimSpace(input)

	if json.Valid([]byte(input)) && !isJSONString(input) {
		return input, nil
	}

	var asString string
	if err := json.Unmarshal([]byte(input), &asString); err == nil {
		asString = strings.TrimSpace(asString)
		if json.Valid([]byte(asString)) {
			return asString, nil
		}
		input = asString
	}

	repaired, err := jsonrepair.JSONRepair(input)
	if err != nil {
		return "", fmt.Errorf("json repair failed: %w", err)
	}
	return repaired, nil
}

func isJSONString(input string) bool {
	return strings.HasPrefix(input, `"`)
}
