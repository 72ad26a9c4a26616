package user

import "fmt"

// ValidationError indica que un value object no cumple sus reglas.
// Atraviesa la capa de persistencia sin ser reemplazado.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("user: invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

func invalid(field, value, reason string) error {
	return &ValidationError{Field: field, Value: value, Reason: reason}
}
