package checkout

import (
	"errors"
	"fmt"
)

// ErrUpstream marks failures of a dependency (catalog, payment provider)
// during order submission. Handlers map it to 502.
var ErrUpstream = errors.New("upstream dependency failed")

// ValidationError reports a single rejected input field.
type ValidationError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
