// Package form holds the request forms of the usuarios panel and their
// field-level validation. Every rule runs independently and all failures are
// collected together, keyed by field name, before cross-field checks run.
package form

import (
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// validate performs the syntactic checks (required, email, len) shared with
// gin's binding layer.
var validate = validator.New()

// Errors collects validation messages keyed by field name.
type Errors map[string][]string

// Add appends a message to the given field.
func (e Errors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

// Has reports whether any field failed validation.
func (e Errors) Has() bool {
	return len(e) > 0
}

func hasSpace(s string) bool {
	return strings.Contains(s, " ")
}

func hasDigit(s string) bool {
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

func isEmail(s string) bool {
	return validate.Var(s, "required,email") == nil
}
