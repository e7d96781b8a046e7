package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// ValidationError reports caller-supplied data that fails domain validation.
// It is surfaced synchronously and never causes partial mutation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Message)
}

// NewValidationError creates a ValidationError for the given field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

var symbolPattern = regexp.MustCompile(`^[A-Za-z0-9.\-_]{1,64}$`)

// NormalizeSymbol trims, validates and uppercases a ticker symbol.
func NormalizeSymbol(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if !symbolPattern.MatchString(s) {
		return "", NewValidationError("symbol", fmt.Sprintf("invalid symbol %q", raw))
	}
	return strings.ToUpper(s), nil
}
