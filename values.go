package formz

// Values maps field names to their current values. Field names are unique
// within a form instance; value types are whatever the application stores.
type Values map[string]any

// Clone returns a shallow copy of the values map.
// Nested reference values are shared with the original.
func (v Values) Clone() Values {
	if v == nil {
		return Values{}
	}
	out := make(Values, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

// Errors maps field names to validation error messages.
// Absence of a key means the field has no error.
type Errors map[string]string

// Clone returns a copy of the errors map.
func (e Errors) Clone() Errors {
	if e == nil {
		return Errors{}
	}
	out := make(Errors, len(e))
	for k, msg := range e {
		out[k] = msg
	}
	return out
}
