// Copyright 2015-2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restdata

import (
	"bytes"
	"github.com/ugorji/go/codec"
	"io"
	"mime"
	"reflect"
)

var mapStringInterfaceType = reflect.TypeOf(map[string]interface{}(nil))

// Handle returns the JSON codec settings used for every body.  Nested
// objects decode as map[string]interface{}.
func Handle() *codec.JsonHandle {
	h := &codec.JsonHandle{}
	h.MapType = mapStringInterfaceType
	return h
}

// Encode produces the JSON encoding of v.
func Encode(v interface{}) ([]byte, error) {
	var out []byte
	err := codec.NewEncoderBytes(&out, Handle()).Encode(v)
	return out, err
}

// Decode tries to decode a restdata object from a reader, such as an
// HTTP request or response.  out must be a pointer type.
func Decode(contentType string, r io.Reader, out interface{}) error {
	if contentType == "" {
		// RFC 7231 section 3.1.1.5
		contentType = "application/octet-stream"
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return err
	}

	switch mediaType {
	case "text/json", JSONMediaType, "application/problem+json":
		return codec.NewDecoder(r, Handle()).Decode(out)
	default:
		return ErrUnsupportedMediaType{Type: mediaType}
	}
}

// DecodeBytes is Decode over an already-read body.
func DecodeBytes(contentType string, body []byte, out interface{}) error {
	return Decode(contentType, bytes.NewReader(body), out)
}
