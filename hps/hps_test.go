// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package hps

import (
	"errors"
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestRegistryConsistent(t *testing.T) {
	for _, d := range Descriptors() {
		obj := d.New()
		assert.Equal(t, d.Type, obj.ObjType(), "collection %v", d.Collection)

		byColl, ok := LookupCollection(d.Collection)
		assert.True(t, ok)
		assert.Equal(t, d, byColl)

		byType, ok := Lookup(d.Type)
		assert.True(t, ok)
		assert.Equal(t, d, byType)
	}
}

func TestDescriptorFor(t *testing.T) {
	d, ok := DescriptorFor[*Job]()
	if assert.True(t, ok) {
		assert.Equal(t, "jobs", d.Collection)
	}

	_, ok = DescriptorFor[Object]()
	assert.False(t, ok)
}

func TestDescriptorOf(t *testing.T) {
	d, err := DescriptorOf(&TaskDefinition{})
	if assert.NoError(t, err) {
		assert.Equal(t, "task_definitions", d.Collection)
	}

	var nilFile *File
	d, err = DescriptorOf(nilFile)
	if assert.NoError(t, err) {
		assert.Equal(t, "files", d.Collection)
	}

	_, err = DescriptorOf(nil)
	assert.Error(t, err)
}

func TestErrorMessages(t *testing.T) {
	err := ErrorForStatus(&RequestError{
		Reason:      "bad_request",
		Description: "reason text",
		StatusCode:  400,
		Method:      "GET",
		URL:         "https://hps/jobs",
	})
	assert.EqualError(t, err, "400 Client Error: bad_request for: GET https://hps/jobs\nreason text")

	var ce *ClientError
	assert.True(t, errors.As(err, &ce))
	var re *RequestError
	if assert.True(t, errors.As(err, &re)) {
		assert.Equal(t, "bad_request", re.Reason)
	}

	err = ErrorForStatus(&RequestError{Reason: "Internal Server Error", StatusCode: 502, Method: "PUT", URL: "u"})
	assert.EqualError(t, err, "502 Server Error: Internal Server Error for: PUT u")
	var ae *APIError
	assert.True(t, errors.As(err, &ae))

	assert.Nil(t, ErrorForStatus(&RequestError{StatusCode: 204}))
}

func TestWrapClientError(t *testing.T) {
	cause := errors.New("cause")
	err := WrapClientError("outer", NewClientError("inner", ""))
	assert.Equal(t, "outer", err.Reason)
	assert.Equal(t, "inner", err.Description)

	err = WrapClientError("outer", cause)
	assert.True(t, errors.Is(err, cause))
	var re *RequestError
	if assert.True(t, errors.As(err, &re)) {
		assert.Equal(t, cause, re.Err)
	}
	assert.False(t, errors.Is(NewClientError("plain", ""), cause))
}

func TestMixedTypesError(t *testing.T) {
	err := MixedTypesError([]string{"Job", "Task"})
	assert.Contains(t, err.Error(), "Mixed object types")
	assert.Contains(t, err.Error(), "Job, Task")
}
