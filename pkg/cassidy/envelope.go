package cassidy

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"
)

// Envelope is the provider's asynchronous-workflow response wrapper.
type Envelope struct {
	WorkflowRun WorkflowRun `json:"workflowRun"`
}

// WorkflowRun is one workflow execution on the provider.
type WorkflowRun struct {
	Status        string         `json:"status"`
	ActionResults []ActionResult `json:"actionResults"`
}

// ActionResult is one step's outcome within a workflow run.
type ActionResult struct {
	Status string        `json:"status"`
	Output *ActionOutput `json:"output,omitempty"`
	Error  string        `json:"error,omitempty"`
}

// ActionOutput wraps the step's result value. The value is either inline
// JSON or a JSON-encoded string holding JSON.
type ActionOutput struct {
	Value json.RawMessage `json:"value"`
}

// DecodeEnvelope extracts the domain payload embedded in a workflow envelope.
//
// A FAILED run produces a *WorkflowError aggregating every action-result
// error. Otherwise the first action result whose status is success/completed
// and whose output value is non-null wins; string-encoded values get a second
// parse and single-element arrays are unwrapped. ErrNoPayload is returned
// when no action result qualifies.
func DecodeEnvelope(raw []byte) (json.RawMessage, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, eris.Wrap(ErrMalformedResponse, err.Error())
	}

	if strings.EqualFold(env.WorkflowRun.Status, "failed") {
		var msgs []string
		for _, ar := range env.WorkflowRun.ActionResults {
			if ar.Error != "" {
				msgs = append(msgs, ar.Error)
			}
		}
		if len(msgs) == 0 {
			msgs = []string{"workflow run reported FAILED with no action errors"}
		}
		return nil, &WorkflowError{Errors: msgs}
	}

	for _, ar := range env.WorkflowRun.ActionResults {
		if !successStatus(ar.Status) {
			continue
		}
		if ar.Output == nil || isNullValue(ar.Output.Value) {
			continue
		}
		return normalizeValue(ar.Output.Value)
	}

	return nil, ErrNoPayload
}

func successStatus(s string) bool {
	return strings.EqualFold(s, "success") || strings.EqualFold(s, "completed")
}

func isNullValue(v json.RawMessage) bool {
	trimmed := bytes.TrimSpace(v)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// normalizeValue unwraps the two shapes the provider is known to emit: a
// JSON-encoded string holding the real document, and a single-element array
// wrapping it.
func normalizeValue(v json.RawMessage) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(v)

	if len(trimmed) > 0 && trimmed[0] == '"' {
		var inner string
		if err := json.Unmarshal(trimmed, &inner); err != nil {
			return nil, eris.Wrap(ErrMalformedResponse, err.Error())
		}
		inner = strings.TrimSpace(inner)
		if inner == "" {
			return nil, ErrNoPayload
		}
		if !json.Valid([]byte(inner)) {
			return nil, eris.Wrap(ErrMalformedResponse, "output value is not valid JSON")
		}
		trimmed = bytes.TrimSpace([]byte(inner))
	}

	if len(trimmed) > 0 && trimmed[0] == '[' {
		var elems []json.RawMessage
		if err := json.Unmarshal(trimmed, &elems); err != nil {
			return nil, eris.Wrap(ErrMalformedResponse, err.Error())
		}
		if len(elems) == 1 {
			return elems[0], nil
		}
	}

	return json.RawMessage(trimmed), nil
}
