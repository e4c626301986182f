package entity

import "fmt"

// FieldError reports the first structural violation found in a form or
// product payload. Validation always runs before any write, so a
// FieldError guarantees nothing was persisted.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}
