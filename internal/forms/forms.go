// Package forms holds the caller-side schemas the console validates before
// anything is sent to the remote API: the sign-in email, the agent create and
// settings forms, and YAML workflow definitions.
package forms

import (
	"fmt"
	"net/mail"
	"strings"
)

// ValidationError describes one invalid field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// ValidationErrors is every problem found in one form submission.
type ValidationErrors []*ValidationError

func (es ValidationErrors) Error() string {
	msgs := make([]string, len(es))
	for i, e := range es {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}

// add records a problem; it exists so validators read as a list of checks.
func (es *ValidationErrors) add(field, format string, args ...any) {
	*es = append(*es, &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
}

// err returns nil for an empty list so callers can `return errs.err()`.
func (es ValidationErrors) err() error {
	if len(es) == 0 {
		return nil
	}
	return es
}

// ValidateEmail checks a sign-in address and returns it without any display
// name or surrounding whitespace.
func ValidateEmail(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", &ValidationError{Field: "email", Message: "Email is required"}
	}
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return "", &ValidationError{Field: "email", Message: "Invalid email address"}
	}
	return addr.Address, nil
}
