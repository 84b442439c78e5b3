// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package hps

import (
	"errors"
	"fmt"
	"github.com/ugorji/go/codec"
	"reflect"
	"strings"
)

// field is implemented by every *Optional[T].
type field interface {
	IsSet() bool
	SetNull()
	UnmarshalJSON([]byte) error
	wireValue() interface{}
}

// EncodeObject flattens a resource into the map that is sent on the
// wire.  Optional fields that are not set are left out; null fields
// are sent as nil.
func EncodeObject(obj Object) (map[string]interface{}, error) {
	v, err := structOf(obj)
	if err != nil {
		return nil, err
	}
	out := make(map[string]interface{})
	walkFields(v, func(name string, f field) error {
		if f.IsSet() {
			out[name] = f.wireValue()
		}
		return nil
	})
	return out, nil
}

// DecodeObject builds a new object of the descriptor's type from an
// untyped map, as found inside a collection envelope.  Keys absent
// from the map leave the corresponding fields unset, keys mapped to
// nil make them null, and unknown keys are ignored.
func DecodeObject(d *Descriptor, data map[string]interface{}) (Object, error) {
	obj := d.New()
	v, err := structOf(obj)
	if err != nil {
		return nil, err
	}
	h := jsonHandle()
	err = walkFields(v, func(name string, f field) error {
		value, present := data[name]
		if !present {
			return nil
		}
		if value == nil {
			f.SetNull()
			return nil
		}
		var buf []byte
		if err := codec.NewEncoderBytes(&buf, h).Encode(value); err != nil {
			return err
		}
		if err := f.UnmarshalJSON(buf); err != nil {
			return fmt.Errorf("field %q: %v", name, err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("hps: decoding %s: %v", d.Type, err)
	}
	return obj, nil
}

func structOf(obj Object) (reflect.Value, error) {
	if obj == nil {
		return reflect.Value{}, errors.New("hps: nil object")
	}
	v := reflect.ValueOf(obj)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return reflect.Value{}, fmt.Errorf("hps: %s must be a non-nil pointer", obj.ObjType())
	}
	v = v.Elem()
	if v.Kind() != reflect.Struct {
		return reflect.Value{}, fmt.Errorf("hps: cannot encode %s of kind %v", obj.ObjType(), v.Kind())
	}
	return v, nil
}

// walkFields calls fn for every Optional field of the addressable
// struct v, descending into embedded structs.
func walkFields(v reflect.Value, fn func(name string, f field) error) error {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		tag := sf.Tag.Get("json")
		if sf.Anonymous && sf.Type.Kind() == reflect.Struct && tag == "" {
			if err := walkFields(v.Field(i), fn); err != nil {
				return err
			}
			continue
		}
		if sf.PkgPath != "" {
			continue
		}
		name := strings.Split(tag, ",")[0]
		if name == "-" {
			continue
		}
		if name == "" {
			name = sf.Name
		}
		f, ok := v.Field(i).Addr().Interface().(field)
		if !ok {
			continue
		}
		if err := fn(name, f); err != nil {
			return err
		}
	}
	return nil
}
