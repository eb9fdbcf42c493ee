package formz

// DisplayMode controls which validation errors a form reports as visible.
type DisplayMode int32

const (
	// ModeTouchedOnly reports an error for a field only once the field has
	// been touched. This is the initial mode of every form.
	ModeTouchedOnly DisplayMode = iota

	// ModeAllErrors reports every outstanding error regardless of touched
	// state. A form enters this mode on Validate and stays in it until the
	// next Reset.
	ModeAllErrors
)

// String returns the string representation of the mode.
func (m DisplayMode) String() string {
	switch m {
	case ModeTouchedOnly:
		return "touched-only"
	case ModeAllErrors:
		return "all-errors"
	default:
		return "unknown"
	}
}
