package formz

import "github.com/zoobzio/capitan"

// Form lifecycle signals.
var (
	// FormReset is emitted when a form's state is reset.
	FormReset = capitan.NewSignal(
		"formz.form.reset",
		"Form state reset",
	)

	// FormSubmitted is emitted when a form's submit handler is invoked.
	FormSubmitted = capitan.NewSignal(
		"formz.form.submitted",
		"Form submitted",
	)

	// FormModeChanged is emitted when a form transitions between error
	// display modes.
	FormModeChanged = capitan.NewSignal(
		"formz.form.mode.changed",
		"Error display mode transition",
	)

	// FormErrorsCleared is emitted when a form's error map is wiped.
	FormErrorsCleared = capitan.NewSignal(
		"formz.form.errors.cleared",
		"Form errors cleared",
	)
)

// Field and validation signals.
var (
	// FieldUpdated is emitted when a canonical field value is written.
	FieldUpdated = capitan.NewSignal(
		"formz.field.updated",
		"Canonical field value updated",
	)

	// FormValidated is emitted after the validation engine runs to completion.
	FormValidated = capitan.NewSignal(
		"formz.form.validated",
		"Validation engine run completed",
	)

	// EngineFailed is emitted when the validation engine itself fails,
	// as opposed to reporting field errors.
	EngineFailed = capitan.NewSignal(
		"formz.engine.failed",
		"Validation engine failure",
	)
)

// Binding lifecycle signals.
var (
	// BindingStarted is emitted when a binding begins synchronizing.
	BindingStarted = capitan.NewSignal(
		"formz.binding.started",
		"Binding synchronization started",
	)

	// BindingStopped is emitted when a binding stops synchronizing.
	BindingStopped = capitan.NewSignal(
		"formz.binding.stopped",
		"Binding synchronization stopped",
	)

	// BindingFlushed is emitted when a debounced propagation reaches the form.
	BindingFlushed = capitan.NewSignal(
		"formz.binding.flushed",
		"Debounced propagation delivered",
	)

	// BindingFlushFailed is emitted when a debounced propagation fails.
	BindingFlushFailed = capitan.NewSignal(
		"formz.binding.flush.failed",
		"Debounced propagation failed",
	)

	// BindingResynced is emitted when a binding reloads its local value
	// from the form after an external change.
	BindingResynced = capitan.NewSignal(
		"formz.binding.resynced",
		"Binding local value resynchronized",
	)
)
