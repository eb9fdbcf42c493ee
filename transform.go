package formz

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Transform rewrites a field value at the propagation boundary, after the
// debounce window closes and before the value reaches the form. The local
// echo always holds the raw value.
type Transform func(any) any

// strictHTML strips all markup.
var strictHTML = bluemonday.StrictPolicy()

// SanitizeHTML returns a Transform that removes all HTML from string values.
// Non-string values pass through unchanged.
func SanitizeHTML() Transform {
	return func(v any) any {
		s, ok := v.(string)
		if !ok {
			return v
		}
		return strictHTML.Sanitize(s)
	}
}

// TrimSpace returns a Transform that trims surrounding whitespace from
// string values. Non-string values pass through unchanged.
func TrimSpace() Transform {
	return func(v any) any {
		s, ok := v.(string)
		if !ok {
			return v
		}
		return strings.TrimSpace(s)
	}
}
