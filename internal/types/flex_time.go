package types

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Date layouts accepted for intervention dates, tried in order.
var flexTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"02/01/2006",
	"02-01-2006",
	"02/01/06",
	"2006/01/02",
}

// FlexTime is a time.Time that can be unmarshaled from any of the date
// formats clients and sheet exports actually send.
type FlexTime time.Time

// UnmarshalJSON implements the json.Unmarshaler interface.
func (f *FlexTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("FlexTime: expected string: %w", err)
	}
	t, err := ParseFlexTime(s)
	if err != nil {
		return err
	}
	*f = FlexTime(t)
	return nil
}

// MarshalJSON implements the json.Marshaler interface.
func (f FlexTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Time(f))
}

// Time converts FlexTime back to time.Time.
func (f FlexTime) Time() time.Time {
	return time.Time(f)
}

// ParseFlexTime parses a date string against the accepted layouts.
func ParseFlexTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range flexTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("FlexTime: unparseable date %q", s)
}
