/*
Package formz provides debounced synchronization between transient input
state and a shared form-state store.

The core types are Form, which owns the canonical values, errors, and
touched flags for a set of named fields, and Binding, which bridges one
input's change and blur events to a single Form field with a zero-latency
local echo and trailing-edge debounced propagation.

# Form

A Form is created at mount with its initial values and a validation engine,
shared by reference with any number of bindings, and discarded at unmount:

	form := formz.NewForm(
	    formz.Values{"email": "", "age": 0},
	    formz.WithEngine(formz.NewTagEngine(map[string]string{
	        "email": "required,email",
	        "age":   "min=18",
	    })),
	    formz.WithSubmitHandler(func(ctx context.Context, vals formz.Values) error {
	        return api.CreateAccount(ctx, vals)
	    }),
	)

Errors display in one of two modes. Initially only touched fields report
as invalid; a Validate call switches the form to reporting every
outstanding error until the next Reset:

	state := form.FieldState("email") // invalid only if touched
	form.Validate(ctx)                // now all errors report
	form.Reset()                      // back to touched-only

# Binding

A Binding keeps the input responsive while coalescing rapid events into a
single propagation per debounce window:

	binding := formz.Bind(form, "email",
	    formz.WithDebounce(300*time.Millisecond),
	    formz.WithTransform(formz.TrimSpace()),
	)
	binding.Start(ctx)
	defer binding.Close()

	binding.OnChange("a")   // local echo updates immediately
	binding.OnChange("ab")  // coalesces with the previous event
	binding.OnChange("abc") // only "abc" reaches the form

Close cancels pending windows: no propagation fires after teardown.
Change and blur events debounce on independent timers.

# Validation Engines

Validation is a capability handed to the form. Three engines ship with the
package: tag rules via go-playground/validator (NewTagEngine), compiled
boolean expressions via expr-lang (NewExprEngine), and OpenAPI object
schemas via kin-openapi (NewSchemaEngine). EngineFunc adapts a closure.

# Testing

WithSyncMode disables the background loop so tests drive propagation with
explicit Flush calls. For debounce behavior itself, WithClock accepts a
clockz.FakeClock.

# Observability

All lifecycle transitions emit capitan signals (BindingFlushed, FormReset,
FormModeChanged, ...) carrying typed fields such as KeyField and KeyForm.
*/
package formz
