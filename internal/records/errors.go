package records

import "fmt"

// ValidationError reports malformed or missing client input. Its message is
// safe to return to the client verbatim.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// GatewayError reports a failed spreadsheet read, write, or structural edit.
// The wrapped cause is for server-side logs only and must not reach clients.
type GatewayError struct {
	Op  string
	Err error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("sheet %s failed: %v", e.Op, e.Err)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}
