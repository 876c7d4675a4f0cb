package utils

import "errors"

var ErrorRecordNotFound = errors.New("record not found")

// FieldError is one user-correctable validation failure. Validation paths
// return the full list so a form can render every error at once; they never
// panic and never abort on the first failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type FieldErrors []FieldError

func (e FieldErrors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	msg := e[0].Field + ": " + e[0].Message
	if len(e) > 1 {
		msg += " (and more)"
	}
	return msg
}

func (e FieldErrors) HasErrors() bool {
	return len(e) > 0
}
