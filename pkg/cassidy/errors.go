package cassidy

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
)

// ErrMalformedResponse indicates the provider returned a body that could not
// be parsed as a workflow envelope.
var ErrMalformedResponse = eris.New("cassidy: malformed response envelope")

// ErrNoPayload indicates the workflow completed but no action result carried
// a usable output value.
var ErrNoPayload = eris.New("cassidy: workflow completed without a payload")

// APIError is returned when the provider responds with a non-2xx status that
// is not retryable. It is never auto-retried.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("cassidy: HTTP %d: %s", e.StatusCode, e.Body)
}

// HTTPStatus returns the upstream status code. The retry layer uses it to
// keep provider responses terminal even when the echoed body contains
// transport-failure phrases.
func (e *APIError) HTTPStatus() int {
	return e.StatusCode
}

// WorkflowError is raised when a workflow run reports FAILED. It aggregates
// every error message from the run's action results.
type WorkflowError struct {
	Errors []string
}

func (e *WorkflowError) Error() string {
	return "cassidy: workflow failed: " + strings.Join(e.Errors, "; ")
}
