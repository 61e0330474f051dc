package types

import (
	"encoding/json"
	"strings"
)

// TagList is a tag slice that can be unmarshaled from either a JSON array of
// strings or a single comma-separated string.
type TagList []string

// UnmarshalJSON implements the json.Unmarshaler interface.
func (t *TagList) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}

	// If it starts with '[', treat it as a normal array
	if data[0] == '[' {
		var slice []string
		if err := json.Unmarshal(data, &slice); err != nil {
			return err
		}
		*t = TagList(slice)
		return nil
	}

	// Otherwise split a single comma-joined string
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*t = TagList{}
		return nil
	}
	*t = TagList(strings.Split(s, ","))
	return nil
}

// Slice converts TagList back to []string.
func (t TagList) Slice() []string {
	return []string(t)
}
