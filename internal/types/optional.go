package types

import (
	"encoding/json"
)

// Optional is a JSON field that tracks presence. It distinguishes a field that
// was absent from the request body (Set == false, leave the stored value
// untouched) from an explicit null (Set && !Valid, clear the stored value) and
// from a real value (Set && Valid).
type Optional[T any] struct {
	Set   bool
	Valid bool
	Value T
}

// UnmarshalJSON implements the json.Unmarshaler interface.
// It is only invoked when the field is present in the payload.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if len(data) == 0 || string(data) == "null" {
		o.Valid = false
		return nil
	}
	if err := json.Unmarshal(data, &o.Value); err != nil {
		return err
	}
	o.Valid = true
	return nil
}

// MarshalJSON implements the json.Marshaler interface.
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Set || !o.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// Some wraps a value in a present, non-null Optional.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Valid: true, Value: v}
}

// Null returns a present but explicitly null Optional.
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true}
}
