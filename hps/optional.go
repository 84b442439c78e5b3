// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package hps

import (
	"bytes"
	"fmt"
	"github.com/ugorji/go/codec"
	"reflect"
)

type fieldState uint8

const (
	// notFetched is the zero state: the server never sent the
	// field, or the caller never assigned it.
	notFetched fieldState = iota
	null
	present
)

// Optional is a resource field with three states: not fetched,
// explicitly null, or holding a value.  The zero value is not
// fetched.
type Optional[T any] struct {
	state fieldState
	value T
}

// Some returns an Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{state: present, value: v}
}

// Null returns an Optional that is explicitly null.
func Null[T any]() Optional[T] {
	return Optional[T]{state: null}
}

// IsSet returns true if the field was fetched or assigned, even if
// its value is null.
func (o Optional[T]) IsSet() bool {
	return o.state != notFetched
}

// IsNull returns true if the field is explicitly null.
func (o Optional[T]) IsNull() bool {
	return o.state == null
}

// Get returns the field's value and true, or a zero value and false
// if the field is null or not fetched.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.state == present
}

// ValueOr returns the field's value, or def if there is none.
func (o Optional[T]) ValueOr(def T) T {
	if o.state == present {
		return o.value
	}
	return def
}

// Set assigns a value.
func (o *Optional[T]) Set(v T) {
	o.state = present
	o.value = v
}

// SetNull makes the field explicitly null.
func (o *Optional[T]) SetNull() {
	var zero T
	o.state = null
	o.value = zero
}

// Unset returns the field to the not-fetched state, so it will not
// be transmitted.
func (o *Optional[T]) Unset() {
	var zero T
	o.state = notFetched
	o.value = zero
}

// wireValue returns the value as it is sent to the server: nil for
// null, the plain value otherwise.
func (o Optional[T]) wireValue() interface{} {
	if o.state != present {
		return nil
	}
	return o.value
}

func (o Optional[T]) String() string {
	switch o.state {
	case null:
		return "null"
	case present:
		return fmt.Sprintf("%v", o.value)
	default:
		return "<not fetched>"
	}
}

// MarshalJSON encodes the value, or null.  A field that was never
// fetched also encodes as null; EncodeObject leaves such fields out
// entirely.
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if o.state != present {
		return []byte("null"), nil
	}
	var out []byte
	err := codec.NewEncoderBytes(&out, jsonHandle()).Encode(o.value)
	return out, err
}

// UnmarshalJSON is only called for keys present in the input, so it
// never produces the not-fetched state.
func (o *Optional[T]) UnmarshalJSON(in []byte) error {
	if bytes.Equal(bytes.TrimSpace(in), []byte("null")) {
		o.SetNull()
		return nil
	}
	var v T
	if err := codec.NewDecoderBytes(in, jsonHandle()).Decode(&v); err != nil {
		return err
	}
	o.Set(v)
	return nil
}

var mapStringInterfaceType = reflect.TypeOf(map[string]interface{}(nil))

// jsonHandle returns the codec settings shared by all resource
// encoding.  Untyped JSON objects decode as map[string]interface{}.
func jsonHandle() *codec.JsonHandle {
	h := &codec.JsonHandle{}
	h.MapType = mapStringInterfaceType
	return h
}
