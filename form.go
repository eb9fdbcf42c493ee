package formz

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/google/uuid"
	"github.com/zoobzio/capitan"
)

// Form owns the canonical values, errors, and touched flags for a named set
// of fields. It is created at form mount, shared by reference with any
// number of bindings, and discarded at unmount. All state lives in memory
// for the lifetime of the instance.
//
// Values, errors, and touched flags are mutated only through Form's own
// operations. Bindings share one Form but each owns a disjoint field key.
type Form struct {
	id     string
	engine Engine
	submit func(context.Context, Values) error

	mu      sync.Mutex
	initial Values
	current Values
	errors  Errors
	touched map[string]struct{}
	mode    DisplayMode
	updated bool
	subs    map[chan struct{}]struct{}
}

// FormOption configures a Form.
type FormOption func(*Form)

// WithEngine sets the validation engine. The engine is fixed for the life
// of the form except via WithResetEngine at reset.
func WithEngine(e Engine) FormOption {
	return func(f *Form) {
		f.engine = e
	}
}

// WithSubmitHandler sets the callback Submit invokes with the current values.
func WithSubmitHandler(fn func(context.Context, Values) error) FormOption {
	return func(f *Form) {
		f.submit = fn
	}
}

// NewForm creates a Form seeded with the given initial values.
func NewForm(initial Values, opts ...FormOption) *Form {
	f := &Form{
		id:      uuid.NewString(),
		initial: initial.Clone(),
		current: initial.Clone(),
		errors:  Errors{},
		touched: map[string]struct{}{},
		mode:    ModeTouchedOnly,
		subs:    map[chan struct{}]struct{}{},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// ID returns the unique identifier of this form instance.
func (f *Form) ID() string {
	return f.id
}

// Mode returns the current error display mode.
func (f *Form) Mode() DisplayMode {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mode
}

// Value returns the canonical value for a field and whether it exists.
func (f *Form) Value(field string) (any, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.current[field]
	return v, ok
}

// Errors returns a copy of the current error map.
func (f *Form) Errors() Errors {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.errors.Clone()
}

// Snapshot returns a read-only view of the form state. The snapshot is
// recomputed on every call and never cached.
func (f *Form) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()

	touched := make(map[string]bool, len(f.touched))
	for name := range f.touched {
		touched[name] = true
	}
	return Snapshot{
		Initial: f.initial.Clone(),
		Values:  f.current.Clone(),
		Errors:  f.errors.Clone(),
		Touched: touched,
		Valid:   len(f.errors) == 0,
		Dirty:   !reflect.DeepEqual(map[string]any(f.initial), map[string]any(f.current)),
		Updated: f.updated,
		Mode:    f.mode,
	}
}

// FieldState reports whether a field should display as invalid, and its
// error message. While the form is in ModeTouchedOnly, untouched fields
// never report as invalid regardless of the error map. In ModeAllErrors
// the touched check is bypassed.
func (f *Form) FieldState(field string) FieldState {
	f.mu.Lock()
	defer f.mu.Unlock()

	msg, hasErr := f.errors[field]
	if f.mode == ModeAllErrors {
		return FieldState{Invalid: hasErr, Error: msg}
	}
	if _, isTouched := f.touched[field]; !isTouched {
		return FieldState{}
	}
	return FieldState{Invalid: hasErr, Error: msg}
}

// SetValue writes a field value, runs the validation engine, and marks the
// field touched. The touched write happens after the error map update, so
// when SetValue returns both the value and the touched flag reflect the
// update; an error can never be visible for a field that is not touched.
//
// An engine failure leaves the value written but the field untouched, and
// is returned to the caller unretried.
func (f *Form) SetValue(ctx context.Context, field string, value any) error {
	f.mu.Lock()
	prev, existed := f.current[field]
	f.current[field] = value
	if !existed || !reflect.DeepEqual(prev, value) {
		f.updated = true
	}
	engine := f.engine
	var vals Values
	if engine != nil {
		vals = f.current.Clone()
	}
	f.mu.Unlock()

	if engine != nil {
		result, err := engine.Validate(ctx, vals)
		if err != nil {
			capitan.Emit(ctx, EngineFailed,
				KeyForm.Field(f.id),
				KeyField.Field(field),
				KeyError.Field(err.Error()),
			)
			return fmt.Errorf("set %q: %w", field, err)
		}
		f.mu.Lock()
		f.errors = result.Clone()
		f.mu.Unlock()
	}

	f.mu.Lock()
	f.touched[field] = struct{}{}
	f.mu.Unlock()

	capitan.Emit(ctx, FieldUpdated,
		KeyForm.Field(f.id),
		KeyField.Field(field),
	)
	return nil
}

// PutValue writes a field value and marks it touched without running the
// validation engine.
func (f *Form) PutValue(field string, value any) {
	f.mu.Lock()
	prev, existed := f.current[field]
	f.current[field] = value
	if !existed || !reflect.DeepEqual(prev, value) {
		f.updated = true
	}
	f.touched[field] = struct{}{}
	f.mu.Unlock()

	capitan.Emit(context.Background(), FieldUpdated,
		KeyForm.Field(f.id),
		KeyField.Field(field),
	)
}

// Validate switches the form to ModeAllErrors, then runs the validation
// engine. With no arguments the whole error map is replaced; with field
// names only those entries are updated and the fields are marked touched.
// The mode switch persists until the next Reset.
func (f *Form) Validate(ctx context.Context, fields ...string) error {
	f.mu.Lock()
	oldMode := f.mode
	f.mode = ModeAllErrors
	for _, name := range fields {
		f.touched[name] = struct{}{}
	}
	engine := f.engine
	var vals Values
	if engine != nil {
		vals = f.current.Clone()
	}
	f.mu.Unlock()

	if oldMode != ModeAllErrors {
		capitan.Emit(ctx, FormModeChanged,
			KeyForm.Field(f.id),
			KeyOldMode.Field(oldMode.String()),
			KeyNewMode.Field(ModeAllErrors.String()),
		)
	}
	if engine == nil {
		return nil
	}

	result, err := engine.Validate(ctx, vals)
	if err != nil {
		capitan.Emit(ctx, EngineFailed,
			KeyForm.Field(f.id),
			KeyError.Field(err.Error()),
		)
		return fmt.Errorf("validate: %w", err)
	}

	f.mu.Lock()
	if len(fields) == 0 {
		f.errors = result.Clone()
	} else {
		for _, name := range fields {
			if msg, ok := result[name]; ok {
				f.errors[name] = msg
			} else {
				delete(f.errors, name)
			}
		}
	}
	count := len(f.errors)
	f.mu.Unlock()

	capitan.Emit(ctx, FormValidated,
		KeyForm.Field(f.id),
		KeyErrorCount.Field(count),
	)
	return nil
}

// ClearErrors deletes the named field errors, then wipes the full error
// map. The wipe happens regardless of which fields were named; callers
// rely on clearing being global.
func (f *Form) ClearErrors(fields ...string) {
	f.mu.Lock()
	for _, name := range fields {
		delete(f.errors, name)
	}
	f.errors = Errors{}
	f.mu.Unlock()

	capitan.Emit(context.Background(), FormErrorsCleared,
		KeyForm.Field(f.id),
	)
}

// resetConfig holds configuration for a Reset call.
type resetConfig struct {
	values Values
	engine Engine
}

// ResetOption configures a Reset call.
type ResetOption func(*resetConfig)

// WithResetValues merges the given values over the current values instead
// of restoring the initial values. The two strategies are mutually
// exclusive: a merge reset does not revert to the initial values.
func WithResetValues(values Values) ResetOption {
	return func(c *resetConfig) {
		c.values = values
	}
}

// WithResetEngine replaces the validation engine as part of the reset.
func WithResetEngine(e Engine) ResetOption {
	return func(c *resetConfig) {
		c.engine = e
	}
}

// Reset clears the error map, forgets all touched flags, and reverts the
// display mode to ModeTouchedOnly. Without WithResetValues the current
// values revert to the initial values and the updated flag clears; with it
// the given values merge over the current values. Attached bindings are
// notified so they resynchronize their local echo.
func (f *Form) Reset(opts ...ResetOption) {
	var cfg resetConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	f.mu.Lock()
	oldMode := f.mode
	f.mode = ModeTouchedOnly
	f.errors = Errors{}
	f.touched = map[string]struct{}{}
	if cfg.engine != nil {
		f.engine = cfg.engine
	}
	if cfg.values != nil {
		for name, v := range cfg.values {
			prev, existed := f.current[name]
			if !existed || !reflect.DeepEqual(prev, v) {
				f.updated = true
			}
			f.current[name] = v
		}
	} else {
		f.current = f.initial.Clone()
		f.updated = false
	}
	f.notifyLocked()
	f.mu.Unlock()

	capitan.Emit(context.Background(), FormReset,
		KeyForm.Field(f.id),
	)
	if oldMode != ModeTouchedOnly {
		capitan.Emit(context.Background(), FormModeChanged,
			KeyForm.Field(f.id),
			KeyOldMode.Field(oldMode.String()),
			KeyNewMode.Field(ModeTouchedOnly.String()),
		)
	}
}

// Submit invokes the submit handler with a copy of the current values.
// Submit performs no validation of its own; the handler is expected to
// short-circuit if validation has not passed.
func (f *Form) Submit(ctx context.Context) error {
	if f.submit == nil {
		return fmt.Errorf("form %s has no submit handler", f.id)
	}

	f.mu.Lock()
	vals := f.current.Clone()
	f.mu.Unlock()

	capitan.Emit(ctx, FormSubmitted,
		KeyForm.Field(f.id),
	)
	return f.submit(ctx, vals)
}

// subscribe registers a notification channel for external value changes.
// The channel has capacity one; notifications coalesce.
func (f *Form) subscribe() chan struct{} {
	ch := make(chan struct{}, 1)
	f.mu.Lock()
	f.subs[ch] = struct{}{}
	f.mu.Unlock()
	return ch
}

// unsubscribe removes a notification channel.
func (f *Form) unsubscribe(ch chan struct{}) {
	f.mu.Lock()
	delete(f.subs, ch)
	f.mu.Unlock()
}

// notifyLocked signals all subscribers without blocking.
// Callers must hold f.mu.
func (f *Form) notifyLocked() {
	for ch := range f.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
