/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package task

import "errors"

var (
	// ErrNotFound is returned when no task has the requested id.
	ErrNotFound = errors.New("task not found")

	// ErrDuplicateID is returned by Store.Insert when the id is taken.
	ErrDuplicateID = errors.New("task id already exists")
)

// ValidationError describes a missing or malformed input field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
