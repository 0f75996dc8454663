package provider

import "fmt"

// Error is a failure reported by the identity provider itself.
type Error struct {
	Status  int    // HTTP status, 0 when unknown
	Code    string // machine-readable code when the provider sends one
	Message string
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s (%s)", e.Message, e.Code)
	}
	return e.Message
}
