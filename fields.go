package formz

import "github.com/zoobzio/capitan"

// Field keys for form and binding events.
var (
	// KeyForm is the unique identifier of the form instance.
	KeyForm = capitan.NewStringKey("form")

	// KeyField is the field name an event relates to.
	KeyField = capitan.NewStringKey("field")

	// KeyError is the error message when an operation fails.
	KeyError = capitan.NewStringKey("error")

	// KeyDebounce is the configured debounce window.
	KeyDebounce = capitan.NewDurationKey("debounce")

	// KeyOldMode is the display mode before a transition.
	KeyOldMode = capitan.NewStringKey("old_mode")

	// KeyNewMode is the display mode after a transition.
	KeyNewMode = capitan.NewStringKey("new_mode")

	// KeyKind identifies the event flavor a flush carried ("change" or "blur").
	KeyKind = capitan.NewStringKey("kind")

	// KeyErrorCount is the number of field errors after a validation run.
	KeyErrorCount = capitan.NewIntKey("error_count")
)
