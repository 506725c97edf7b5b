// Package ranger is the outbound adapter (C2) for the Ranger-compatible
// policy source: fetching policies, the service-definition id, and user
// group/role attributes over HTTP basic auth.
package ranger

import "fmt"

// TransportError wraps a failure to reach or parse a response from the
// policy source, distinguishing it from a well-formed "not found" result.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("ranger: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
