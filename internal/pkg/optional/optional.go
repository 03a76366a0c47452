// Package optional distinguishes "field absent" from "field set to null" in
// partial-update payloads: an absent field leaves the stored value
// unchanged, an explicit null clears it.
package optional

import (
	"bytes"
	"encoding/json"
)

// Field is a tri-state JSON value: undefined, null, or a value.
type Field[T any] struct {
	Defined bool
	Value   *T
}

func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.Defined = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		f.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	f.Value = &v
	return nil
}

func (f Field[T]) MarshalJSON() ([]byte, error) {
	if f.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*f.Value)
}
