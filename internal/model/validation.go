package model

// ValidationError marks a rejected payload the caller can fix, as opposed to
// an engine policy or state violation.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

func Invalid(msg string) error {
	return &ValidationError{msg: msg}
}
