package formz

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// bothInvalid is an engine that always reports errors on fields "a" and "b".
func bothInvalid(_ context.Context, _ Values) (Errors, error) {
	return Errors{"a": "bad a", "b": "bad b"}, nil
}

func TestForm_FieldState_UntouchedNeverInvalid(t *testing.T) {
	ctx := context.Background()
	form := NewForm(Values{"a": "", "b": ""}, WithEngine(EngineFunc(bothInvalid)))

	// Editing "a" fills the error map for both fields, but only "a" is touched.
	if err := form.SetValue(ctx, "a", "x"); err != nil {
		t.Fatalf("SetValue failed: %v", err)
	}

	if state := form.FieldState("a"); !state.Invalid {
		t.Error("expected touched field a to be invalid")
	}
	if state := form.FieldState("b"); state.Invalid {
		t.Error("expected untouched field b to not be invalid in touched-only mode")
	}
	if state := form.FieldState("b"); state.Error != "" {
		t.Errorf("expected no visible error for untouched field, got %q", state.Error)
	}
}

func TestForm_SetValue_MarksTouched(t *testing.T) {
	ctx := context.Background()
	form := NewForm(Values{"name": ""})

	if err := form.SetValue(ctx, "name", "ada"); err != nil {
		t.Fatalf("SetValue failed: %v", err)
	}

	if !form.Snapshot().Touched["name"] {
		t.Error("expected name to be touched after SetValue")
	}
}

func TestForm_SetValue_ErrorsUpdatedBeforeReturn(t *testing.T) {
	ctx := context.Background()
	form := NewForm(Values{"a": ""}, WithEngine(EngineFunc(bothInvalid)))

	if err := form.SetValue(ctx, "a", "x"); err != nil {
		t.Fatalf("SetValue failed: %v", err)
	}

	// Both the error and the touched flag must be observable immediately.
	snap := form.Snapshot()
	if snap.Errors["a"] != "bad a" {
		t.Errorf("expected error for a, got %q", snap.Errors["a"])
	}
	if !snap.Touched["a"] {
		t.Error("expected a touched when its error is visible")
	}
}

func TestForm_Validate_SwitchesToAllErrors(t *testing.T) {
	ctx := context.Background()
	form := NewForm(Values{"a": "", "b": ""}, WithEngine(EngineFunc(bothInvalid)))

	if err := form.Validate(ctx); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	if form.Mode() != ModeAllErrors {
		t.Fatalf("expected all-errors mode, got %s", form.Mode())
	}
	// Untouched fields now report their errors.
	if state := form.FieldState("b"); !state.Invalid || state.Error != "bad b" {
		t.Errorf("expected b invalid with error in all-errors mode, got %+v", state)
	}
}

func TestForm_Validate_ModePersistsUntilReset(t *testing.T) {
	ctx := context.Background()
	form := NewForm(Values{"a": ""}, WithEngine(EngineFunc(bothInvalid)))

	form.Validate(ctx)
	if form.Mode() != ModeAllErrors {
		t.Fatalf("expected all-errors mode, got %s", form.Mode())
	}

	// Further edits do not flip the mode back.
	form.SetValue(ctx, "a", "x")
	if form.Mode() != ModeAllErrors {
		t.Errorf("expected mode to persist after edits, got %s", form.Mode())
	}

	form.Reset()
	if form.Mode() != ModeTouchedOnly {
		t.Errorf("expected touched-only mode after reset, got %s", form.Mode())
	}
}

func TestForm_Validate_SingleFieldUpdatesOnlyThatEntry(t *testing.T) {
	ctx := context.Background()
	calls := 0
	engine := EngineFunc(func(_ context.Context, vals Values) (Errors, error) {
		calls++
		out := Errors{}
		if vals["a"] == "" {
			out["a"] = "a required"
		}
		if vals["b"] == "" {
			out["b"] = "b required"
		}
		return out, nil
	})
	form := NewForm(Values{"a": "", "b": ""}, WithEngine(engine))

	if err := form.Validate(ctx, "a"); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	errs := form.Errors()
	want := Errors{"a": "a required"}
	if diff := cmp.Diff(want, errs); diff != "" {
		t.Errorf("errors mismatch (-want +got):\n%s", diff)
	}
	if !form.Snapshot().Touched["a"] {
		t.Error("expected explicitly validated field to be touched")
	}
	if form.Snapshot().Touched["b"] {
		t.Error("expected b to stay untouched")
	}
	if calls != 1 {
		t.Errorf("expected 1 engine run, got %d", calls)
	}
}

func TestForm_Reset_RestoresInitial(t *testing.T) {
	ctx := context.Background()
	form := NewForm(Values{"a": 0, "b": 2}, WithEngine(EngineFunc(bothInvalid)))

	form.SetValue(ctx, "a", 9)
	form.Validate(ctx)
	form.Reset()

	snap := form.Snapshot()
	want := Values{"a": 0, "b": 2}
	if diff := cmp.Diff(map[string]any(want), map[string]any(snap.Values)); diff != "" {
		t.Errorf("values mismatch (-want +got):\n%s", diff)
	}
	if len(snap.Errors) != 0 {
		t.Errorf("expected no errors after reset, got %v", snap.Errors)
	}
	if snap.Mode != ModeTouchedOnly {
		t.Errorf("expected touched-only mode after reset, got %s", snap.Mode)
	}
	if len(snap.Touched) != 0 {
		t.Errorf("expected no touched fields after reset, got %v", snap.Touched)
	}
	if snap.Dirty {
		t.Error("expected form not dirty after reset")
	}
}

func TestForm_Reset_MergesValues(t *testing.T) {
	form := NewForm(Values{"a": 0, "b": 2})

	form.Reset(WithResetValues(Values{"a": 1}))

	snap := form.Snapshot()
	want := Values{"a": 1, "b": 2}
	if diff := cmp.Diff(map[string]any(want), map[string]any(snap.Values)); diff != "" {
		t.Errorf("values mismatch (-want +got):\n%s", diff)
	}
}

func TestForm_Reset_MergeDoesNotRevertOtherFields(t *testing.T) {
	ctx := context.Background()
	form := NewForm(Values{"a": 0, "b": 0})

	form.SetValue(ctx, "b", 7)
	form.Reset(WithResetValues(Values{"a": 1}))

	snap := form.Snapshot()
	if snap.Values["b"] != 7 {
		t.Errorf("expected b to keep its edited value 7, got %v", snap.Values["b"])
	}
}

func TestForm_Reset_SwapsEngine(t *testing.T) {
	ctx := context.Background()
	form := NewForm(Values{"a": ""}, WithEngine(EngineFunc(bothInvalid)))

	clean := EngineFunc(func(_ context.Context, _ Values) (Errors, error) {
		return nil, nil
	})
	form.Reset(WithResetEngine(clean))

	if err := form.SetValue(ctx, "a", "x"); err != nil {
		t.Fatalf("SetValue failed: %v", err)
	}
	if errs := form.Errors(); len(errs) != 0 {
		t.Errorf("expected replacement engine to report no errors, got %v", errs)
	}
}

func TestForm_ClearErrors_IsGlobal(t *testing.T) {
	ctx := context.Background()
	form := NewForm(Values{"a": "", "b": ""}, WithEngine(EngineFunc(bothInvalid)))

	form.Validate(ctx)
	if len(form.Errors()) != 2 {
		t.Fatalf("expected 2 errors, got %v", form.Errors())
	}

	// Naming a single field still wipes the whole map.
	form.ClearErrors("a")

	if errs := form.Errors(); len(errs) != 0 {
		t.Errorf("expected empty error map after targeted clear, got %v", errs)
	}
}

func TestForm_Snapshot_UpdatedFlag(t *testing.T) {
	ctx := context.Background()
	form := NewForm(Values{"a": "x"})

	if form.Snapshot().Updated {
		t.Error("expected updated false immediately after construction")
	}

	// Writing the same value back does not count as a change.
	form.SetValue(ctx, "a", "x")
	if form.Snapshot().Updated {
		t.Error("expected updated false after writing an identical value")
	}

	form.SetValue(ctx, "a", "y")
	if !form.Snapshot().Updated {
		t.Error("expected updated true after changing a value")
	}

	form.Reset()
	if form.Snapshot().Updated {
		t.Error("expected updated false after full reset")
	}
}

func TestForm_Snapshot_Dirty(t *testing.T) {
	ctx := context.Background()
	form := NewForm(Values{"a": "x"})

	if form.Snapshot().Dirty {
		t.Error("expected clean form after construction")
	}

	form.SetValue(ctx, "a", "y")
	if !form.Snapshot().Dirty {
		t.Error("expected dirty form after change")
	}

	form.SetValue(ctx, "a", "x")
	if form.Snapshot().Dirty {
		t.Error("expected clean form after reverting to the initial value")
	}
}

func TestForm_PutValue_SkipsValidation(t *testing.T) {
	form := NewForm(Values{"a": ""}, WithEngine(EngineFunc(bothInvalid)))

	form.PutValue("a", "x")

	if errs := form.Errors(); len(errs) != 0 {
		t.Errorf("expected no errors after PutValue, got %v", errs)
	}
	if !form.Snapshot().Touched["a"] {
		t.Error("expected a touched after PutValue")
	}
}

func TestForm_SetValue_EngineFailurePropagates(t *testing.T) {
	ctx := context.Background()
	broken := EngineFunc(func(_ context.Context, _ Values) (Errors, error) {
		return nil, errors.New("engine exploded")
	})
	form := NewForm(Values{"a": ""}, WithEngine(broken))

	err := form.SetValue(ctx, "a", "x")
	if err == nil {
		t.Fatal("expected engine failure to propagate")
	}

	// A failed operation leaves the field untouched.
	if form.Snapshot().Touched["a"] {
		t.Error("expected a untouched after a failed SetValue")
	}
	// The value write itself happened before validation.
	if v, _ := form.Value("a"); v != "x" {
		t.Errorf("expected value written before validation, got %v", v)
	}
}

func TestForm_Submit_InvokesHandler(t *testing.T) {
	ctx := context.Background()
	var got Values
	form := NewForm(Values{"a": 1},
		WithSubmitHandler(func(_ context.Context, vals Values) error {
			got = vals
			return nil
		}),
	)

	if err := form.Submit(ctx); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if got["a"] != 1 {
		t.Errorf("expected handler to receive current values, got %v", got)
	}
}

func TestForm_Submit_NoHandler(t *testing.T) {
	form := NewForm(Values{})

	if err := form.Submit(context.Background()); err == nil {
		t.Error("expected error when submitting without a handler")
	}
}

func TestForm_Submit_HandlerErrorPropagates(t *testing.T) {
	sentinel := errors.New("rejected")
	form := NewForm(Values{},
		WithSubmitHandler(func(_ context.Context, _ Values) error {
			return sentinel
		}),
	)

	if err := form.Submit(context.Background()); !errors.Is(err, sentinel) {
		t.Errorf("expected handler error, got %v", err)
	}
}

func TestForm_NoEngine_SetValueSucceeds(t *testing.T) {
	form := NewForm(nil)

	if err := form.SetValue(context.Background(), "a", 1); err != nil {
		t.Fatalf("SetValue failed: %v", err)
	}
	if v, ok := form.Value("a"); !ok || v != 1 {
		t.Errorf("expected stored value 1, got %v (%v)", v, ok)
	}
}

func TestForm_Snapshot_IsACopy(t *testing.T) {
	form := NewForm(Values{"a": 1})

	snap := form.Snapshot()
	snap.Values["a"] = 99

	if v, _ := form.Value("a"); v != 1 {
		t.Errorf("expected snapshot mutation to be invisible, got %v", v)
	}
}

func TestForm_IDs_AreUnique(t *testing.T) {
	a := NewForm(nil)
	b := NewForm(nil)
	if a.ID() == "" || a.ID() == b.ID() {
		t.Errorf("expected distinct non-empty ids, got %q and %q", a.ID(), b.ID())
	}
}
