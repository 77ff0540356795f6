package adapter

import (
	"fmt"
	"strings"
)

// IncompleteDataError is raised when a provider document is missing essential
// fields. It lists every missing or blank field, not just the first, so the
// caller can report the full set. It is never swallowed: a document failing
// essential-field validation is unusable downstream.
type IncompleteDataError struct {
	Entity        string
	MissingFields []string
}

func (e *IncompleteDataError) Error() string {
	return fmt.Sprintf("incomplete %s data: missing required fields: %s",
		e.Entity, strings.Join(e.MissingFields, ", "))
}
