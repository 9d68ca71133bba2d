package entity

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSONStringArray persists as a JSON array of strings, never a scalar or a
// comma-joined string — the r_cat_id invariant in §3 of the specification
// depends on this (the legacy store at times held a scalar there, which the
// bootstrap migration coerces away).
type JSONStringArray []string

func (a JSONStringArray) Value() (driver.Value, error) {
	if a == nil {
		return json.Marshal([]string{})
	}
	return json.Marshal([]string(a))
}

func (a *JSONStringArray) Scan(value interface{}) error {
	if value == nil {
		*a = JSONStringArray{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		if s, ok := value.(string); ok {
			bytes = []byte(s)
		} else {
			return fmt.Errorf("cannot scan %T into JSONStringArray", value)
		}
	}
	var out []string
	if len(bytes) == 0 {
		*a = JSONStringArray{}
		return nil
	}
	if err := json.Unmarshal(bytes, &out); err != nil {
		return fmt.Errorf("unmarshal JSONStringArray: %w", err)
	}
	*a = JSONStringArray(out)
	return nil
}

// JSONDoc persists an arbitrary JSON document (object or array) as a single
// column, matching the teacher's use of typed Valuer/Scanner wrappers
// instead of free-form interface{} columns.
type JSONDoc[T any] struct {
	Value T
}

func (d JSONDoc[T]) Value() (driver.Value, error) {
	return json.Marshal(d.Value)
}

func (d *JSONDoc[T]) Scan(value interface{}) error {
	if value == nil {
		var zero T
		d.Value = zero
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		if s, ok := value.(string); ok {
			bytes = []byte(s)
		} else {
			return fmt.Errorf("cannot scan %T into JSONDoc", value)
		}
	}
	if len(bytes) == 0 {
		var zero T
		d.Value = zero
		return nil
	}
	return json.Unmarshal(bytes, &d.Value)
}

func (d JSONDoc[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Value)
}

func (d *JSONDoc[T]) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &d.Value)
}
