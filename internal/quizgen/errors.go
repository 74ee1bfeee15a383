package quizgen

import "fmt"

// InputError reports a request that cannot be served as given. It is
// never retried.
type InputError struct {
	Field string
	Err   error
}

func (e *InputError) Error() string {
	if e.Field == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *InputError) Unwrap() error {
	return e.Err
}

func inputErrorf(field, format string, args ...any) *InputError {
	return &InputError{Field: field, Err: fmt.Errorf(format, args...)}
}

// UnparsableResponseError is returned when no repair strategy could
// recover a question array from a model response.
type UnparsableResponseError struct {
	// Err is the error from the plain parse attempt.
	Err error

	// Preview is the start of the response, for diagnostics.
	Preview string
}

func (e *UnparsableResponseError) Error() string {
	return fmt.Sprintf("unparsable model response: %v", e.Err)
}

func (e *UnparsableResponseError) Unwrap() error {
	return e.Err
}
