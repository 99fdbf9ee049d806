package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// OutcomeKind tags the terminal outcome of a stream.
type OutcomeKind int

const (
	// OutcomeNone means the event is progress-only.
	OutcomeNone OutcomeKind = iota
	// OutcomeResult is a non-ambiguous final answer.
	OutcomeResult
	// OutcomeError is a pipeline-reported failure.
	OutcomeError
	// OutcomeAmbiguity means the pipeline needs clarification before it can
	// answer.
	OutcomeAmbiguity
)

// Outcome is the normalized terminal state of a stream. Ambiguity can reach
// the client two ways (a dedicated event, or a flag on the result payload);
// both collapse into OutcomeAmbiguity here so the conversation layer only
// ever sees one shape.
type Outcome struct {
	Kind      OutcomeKind
	Response  *ChatResponse
	ErrorText string
	Ambiguity *AmbiguityResponse
}

// Normalize classifies an event into a terminal outcome. Progress events
// yield OutcomeNone. A malformed terminal payload is returned as an error:
// the stream contract treats it the same as a transport failure.
func Normalize(ev StreamEvent) (Outcome, error) {
	switch ev.Step {
	case KindError:
		return Outcome{Kind: OutcomeError, ErrorText: ev.Message}, nil

	case KindAmbiguityDetected:
		amb, err := parseAmbiguity(ev.Data)
		if err != nil {
			return Outcome{}, fmt.Errorf("ambiguity payload: %w", err)
		}
		return Outcome{Kind: OutcomeAmbiguity, Ambiguity: amb}, nil

	case KindResult:
		if amb := embeddedAmbiguity(ev.Data); amb != nil {
			return Outcome{Kind: OutcomeAmbiguity, Ambiguity: amb}, nil
		}
		var resp ChatResponse
		if err := json.Unmarshal(ev.Data, &resp); err != nil {
			return Outcome{}, fmt.Errorf("result payload: %w", err)
		}
		return Outcome{Kind: OutcomeResult, Response: &resp}, nil
	}

	return Outcome{Kind: OutcomeNone}, nil
}

func parseAmbiguity(data json.RawMessage) (*AmbiguityResponse, error) {
	var amb AmbiguityResponse
	if err := json.Unmarshal(data, &amb); err != nil {
		return nil, err
	}
	return &amb, nil
}

// embeddedAmbiguity probes a result payload for the ambiguity flag. Older
// backends put hasAmbiguity at the top level of the result; newer ones nest
// a full AmbiguityResponse under "ambiguity".
func embeddedAmbiguity(data json.RawMessage) *AmbiguityResponse {
	if nested := gjson.GetBytes(data, "ambiguity.hasAmbiguity"); nested.Bool() {
		var wrapper struct {
			Ambiguity AmbiguityResponse `json:"ambiguity"`
		}
		if err := json.Unmarshal(data, &wrapper); err == nil {
			return &wrapper.Ambiguity
		}
	}
	if gjson.GetBytes(data, "hasAmbiguity").Bool() {
		if amb, err := parseAmbiguity(data); err == nil {
			return amb
		}
	}
	return nil
}
