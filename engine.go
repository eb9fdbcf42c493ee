package formz

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Engine maps the full set of form values to field-level error messages.
//
// A returned Errors map carries validation outcomes as data; it is never an
// operation failure. The error return is reserved for the engine itself
// failing (a broken rule set, an unreachable backend), which callers surface
// instead of storing.
type Engine interface {
	Validate(ctx context.Context, values Values) (Errors, error)
}

// EngineFunc adapts a function to the Engine interface.
type EngineFunc func(ctx context.Context, values Values) (Errors, error)

// Validate calls f.
func (f EngineFunc) Validate(ctx context.Context, values Values) (Errors, error) {
	return f(ctx, values)
}

// tagValidate is the shared validator instance for tag engines.
var tagValidate = validator.New()

// TagEngine validates individual field values against
// go-playground/validator tag expressions.
//
// Example:
//
//	engine := formz.NewTagEngine(map[string]string{
//	    "email":    "required,email",
//	    "username": "required,min=3,max=32",
//	})
type TagEngine struct {
	rules map[string]string
}

// NewTagEngine creates a TagEngine from a field name → tag expression map.
func NewTagEngine(rules map[string]string) *TagEngine {
	out := make(map[string]string, len(rules))
	for field, tag := range rules {
		out[field] = tag
	}
	return &TagEngine{rules: out}
}

// Validate checks each configured field against its tag expression.
func (e *TagEngine) Validate(ctx context.Context, values Values) (Errors, error) {
	result := Errors{}
	for field, tag := range e.rules {
		err := tagValidate.VarCtx(ctx, values[field], tag)
		if err == nil {
			continue
		}
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return nil, fmt.Errorf("tag engine: field %q: %w", field, err)
		}
		result[field] = tagMessage(verrs)
	}
	if len(result) == 0 {
		return nil, nil
	}
	return result, nil
}

// tagMessage renders the failed rules of a single field as one message.
func tagMessage(verrs validator.ValidationErrors) string {
	rules := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule = rule + "=" + fe.Param()
		}
		rules = append(rules, rule)
	}
	sort.Strings(rules)
	return fmt.Sprintf("fails %q", strings.Join(rules, ","))
}
