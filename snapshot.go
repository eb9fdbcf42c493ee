package formz

// Snapshot is an immutable view of form state at a point in time.
type Snapshot struct {
	// Initial holds the values the form was constructed with.
	Initial Values

	// Values holds the current canonical values.
	Values Values

	// Errors holds the current validation errors.
	Errors Errors

	// Touched marks the fields the user has interacted with.
	Touched map[string]bool

	// Valid is true when no field has an error.
	Valid bool

	// Dirty is true when the current values differ structurally from the
	// initial values.
	Dirty bool

	// Updated is true once any value write has changed a value.
	Updated bool

	// Mode is the error display mode at snapshot time.
	Mode DisplayMode
}

// FieldState is the display state of a single field.
type FieldState struct {
	// Invalid reports whether the field should display as erroneous.
	Invalid bool

	// Error is the field's error message, if any.
	Error string
}
