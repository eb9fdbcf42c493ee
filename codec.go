package formz

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// DecodeValues parses a JSON or YAML document into a Values map, detecting
// the format from content. Useful for seeding a form's initial values from
// a fixture or an API payload.
func DecodeValues(data []byte) (Values, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return Values{}, nil
	}

	// Detect JSON by leading character
	if trimmed[0] == '{' {
		var vals Values
		if err := json.Unmarshal(data, &vals); err != nil {
			return nil, fmt.Errorf("decode values: %w", err)
		}
		return vals, nil
	}

	// Default to YAML (which also handles plain JSON)
	var vals Values
	if err := yaml.Unmarshal(data, &vals); err != nil {
		return nil, fmt.Errorf("decode values: %w", err)
	}
	if vals == nil {
		vals = Values{}
	}
	return vals, nil
}
