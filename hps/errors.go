// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package hps

import (
	"fmt"
	"net/http"
	"strings"
)

// RequestError is the common shape of every error raised for a failed
// request or a violated client contract.  Use errors.As with a
// *RequestError to catch both ClientError and APIError.
type RequestError struct {
	// Reason is a short description of the failure: the
	// server-supplied "title" or OAuth "error" field, or the HTTP
	// status text if the server supplied neither.
	Reason string

	// Description is the longer server-supplied explanation, if
	// any.
	Description string

	// StatusCode is the HTTP status of the failing response, or 0
	// if the error was detected without a response.
	StatusCode int

	// Method and URL identify the failing request, if any.
	Method string
	URL    string

	// Response is the failing HTTP response, with its body
	// already consumed.
	Response *http.Response

	// Err is the underlying cause, if there is one.
	Err error
}

func (e *RequestError) Error() string {
	var msg string
	switch {
	case e.StatusCode >= 500:
		msg = fmt.Sprintf("%d Server Error: %s for: %s %s", e.StatusCode, e.Reason, e.Method, e.URL)
	case e.StatusCode >= 400:
		msg = fmt.Sprintf("%d Client Error: %s for: %s %s", e.StatusCode, e.Reason, e.Method, e.URL)
	default:
		msg = e.Reason
	}
	if e.Description != "" {
		msg += "\n" + e.Description
	}
	return msg
}

// Unwrap returns the underlying cause, if any.
func (e *RequestError) Unwrap() error {
	return e.Err
}

// ClientError reports a caller-side problem: HTTP 4xx responses, bad
// credentials, mixed-type batches, non-unique ids, and operations that
// did not finish in time.
type ClientError struct {
	*RequestError
}

// Unwrap exposes the embedded RequestError to errors.As.
func (e *ClientError) Unwrap() error {
	return e.RequestError
}

// APIError reports a server-side problem: HTTP 5xx responses and
// operations that the server reports as failed.
type APIError struct {
	*RequestError
}

// Unwrap exposes the embedded RequestError to errors.As.
func (e *APIError) Unwrap() error {
	return e.RequestError
}

// NewClientError creates a ClientError that is not tied to an HTTP
// response.
func NewClientError(reason, description string) *ClientError {
	return &ClientError{&RequestError{Reason: reason, Description: description}}
}

// WrapClientError creates a ClientError with the given reason whose
// description and cause are err.
func WrapClientError(reason string, err error) *ClientError {
	return &ClientError{&RequestError{Reason: reason, Description: err.Error(), Err: err}}
}

// NewAPIError creates an APIError that is not tied to an HTTP
// response.
func NewAPIError(reason, description string) *APIError {
	return &APIError{&RequestError{Reason: reason, Description: description}}
}

// ErrorForStatus wraps a RequestError in ClientError or APIError
// according to its status code.  It returns nil for statuses below
// 400.
func ErrorForStatus(e *RequestError) error {
	switch {
	case e.StatusCode >= 500:
		return &APIError{e}
	case e.StatusCode >= 400:
		return &ClientError{e}
	default:
		return nil
	}
}

// MixedTypesError is returned when a batch operation is given objects
// of more than one type.
func MixedTypesError(types []string) *ClientError {
	return NewClientError(fmt.Sprintf("Mixed object types: %s", strings.Join(types, ", ")), "")
}
