package assessment

import "fmt"

// UnexpectedFieldError is returned when a declaration fails validation on a
// field that is not a question in the declaration content. The schema and the
// content disagree, so the results cannot be trusted.
type UnexpectedFieldError struct {
	SupplierID int
	Field      string
}

func (e *UnexpectedFieldError) Error() string {
	return fmt.Sprintf("Unexpected validation error for supplier %d: field %q is not a declaration question", e.SupplierID, e.Field)
}

// ValidationRunError wraps a failure running the validator itself.
type ValidationRunError struct {
	SupplierID int
	Cause      error
}

func (e *ValidationRunError) Error() string {
	return fmt.Sprintf("failed to validate declaration for supplier %d: %v", e.SupplierID, e.Cause)
}

func (e *ValidationRunError) Unwrap() error {
	return e.Cause
}
