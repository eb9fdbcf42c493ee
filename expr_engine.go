package formz

import (
	"context"
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// ExprRule is one boolean rule expression over the form values.
// The expression must evaluate to true for the field to be valid.
// Field names appear as variables in the expression environment.
type ExprRule struct {
	Field   string
	Expr    string
	Message string
}

type exprRule struct {
	field   string
	program *vm.Program
	message string
}

// ExprEngine evaluates compiled expr-lang rule expressions against the
// form values. Rules are compiled once at construction; a rule that
// evaluates to false records its message against its field.
//
// Example:
//
//	engine, err := formz.NewExprEngine(
//	    formz.ExprRule{Field: "age", Expr: "age >= 18", Message: "must be an adult"},
//	    formz.ExprRule{Field: "email", Expr: `email contains "@"`, Message: "invalid email"},
//	)
type ExprEngine struct {
	rules []exprRule
}

// NewExprEngine compiles the given rules into an ExprEngine.
func NewExprEngine(rules ...ExprRule) (*ExprEngine, error) {
	compiled := make([]exprRule, 0, len(rules))
	for _, r := range rules {
		if r.Field == "" {
			return nil, fmt.Errorf("expr engine: rule %q has no field", r.Expr)
		}
		if r.Expr == "" {
			return nil, fmt.Errorf("expr engine: field %q has an empty expression", r.Field)
		}
		program, err := expr.Compile(r.Expr,
			expr.Env(map[string]any{}),
			expr.AllowUndefinedVariables(),
			expr.AsBool(),
		)
		if err != nil {
			return nil, fmt.Errorf("expr engine: compile rule for %q: %w", r.Field, err)
		}
		msg := r.Message
		if msg == "" {
			msg = fmt.Sprintf("fails %q", r.Expr)
		}
		compiled = append(compiled, exprRule{field: r.Field, program: program, message: msg})
	}
	return &ExprEngine{rules: compiled}, nil
}

// Validate runs every rule against the values. The first failing rule per
// field wins; later rules for the same field do not overwrite its message.
func (e *ExprEngine) Validate(_ context.Context, values Values) (Errors, error) {
	env := map[string]any(values)
	result := Errors{}
	for _, r := range e.rules {
		if _, done := result[r.field]; done {
			continue
		}
		out, err := expr.Run(r.program, env)
		if err != nil {
			return nil, fmt.Errorf("expr engine: evaluate rule for %q: %w", r.field, err)
		}
		ok, isBool := out.(bool)
		if !isBool {
			return nil, fmt.Errorf("expr engine: rule for %q returned %T, want bool", r.field, out)
		}
		if !ok {
			result[r.field] = r.message
		}
	}
	if len(result) == 0 {
		return nil, nil
	}
	return result, nil
}
