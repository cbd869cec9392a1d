package models

import (
	"bytes"
	"encoding/json"
)

// Patch is an optional change to a nullable reference.
// The zero value leaves the field alone; Set with a nil Value clears it.
type Patch[T any] struct {
	Set   bool
	Value *T
}

// SetTo returns a patch that connects the field to v
func SetTo[T any](v T) Patch[T] {
	return Patch[T]{Set: true, Value: &v}
}

// Clear returns a patch that disconnects the field
func Clear[T any]() Patch[T] {
	return Patch[T]{Set: true}
}

// UnmarshalJSON marks the patch as set; JSON null clears the field
func (p *Patch[T]) UnmarshalJSON(data []byte) error {
	p.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		p.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	p.Value = &v
	return nil
}
