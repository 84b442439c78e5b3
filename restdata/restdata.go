// Copyright 2015-2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package restdata defines the wire representation shared by the
// restclient package and the hpstest fake server.  Everything is
// passed across the wire as application/json.
//
// Envelopes
//
// Every collection endpoint answers with a JSON object keyed by the
// collection name, whose value is a list of objects, even when a
// single object was requested by id:
//
//     {
//         "jobs": [
//             {"id": "02q4bg", "eval_status": "pending"}
//         ]
//     }
//
// The same envelope is sent to create (POST) and update (PUT)
// objects.  Deleting and copying objects sends a SourceIDs object
// instead.  A GET with the "count" query parameter answers with a
// single number keyed "num_" plus the collection name.
//
// Errors
//
// Failing responses carry an ErrorResponse.  The job management
// service fills in "title" and "description"; the authentication
// service fills in the OAuth "error" and "error_description" fields.
// ErrorResponse.Normalize collapses both into a reason and a
// description, and CheckResponse turns a failing response into the
// error types of the hps package.
//
// Timestamps, when they appear, are represented in JSON as RFC 3339
// strings, "2012-03-04T05:06:07.890Z".
package restdata

import (
	"fmt"
)

// JSONMediaType is the MIME type of every request and response body.
const JSONMediaType = "application/json"

// FormMediaType is the MIME type of token endpoint requests.
const FormMediaType = "application/x-www-form-urlencoded"

// SourceIDs is the body of delete and copy requests.
type SourceIDs struct {
	SourceIDs []string `json:"source_ids"`
}

// ErrorResponse is the body of a failing response from either the
// job management service or the authentication service.
type ErrorResponse struct {
	// Title and Description are set by the job management
	// service.
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`

	// Error and ErrorDescription are set by the OAuth token
	// endpoint.
	Error            string `json:"error,omitempty"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// Normalize returns the reason and description of the error,
// whichever convention the server used.
func (e *ErrorResponse) Normalize() (reason, description string) {
	reason = e.Title
	if reason == "" {
		reason = e.Error
	}
	description = e.Description
	if description == "" {
		description = e.ErrorDescription
	}
	return
}

// Envelope is a decoded collection response.
type Envelope map[string]interface{}

// NewEnvelope wraps a list of encoded objects under a collection key.
func NewEnvelope(collection string, items []map[string]interface{}) Envelope {
	list := make([]interface{}, len(items))
	for i, item := range items {
		list[i] = item
	}
	return Envelope{collection: list}
}

// Items returns the objects listed under the collection key.  A
// missing or null key yields an empty list.
func (e Envelope) Items(collection string) ([]map[string]interface{}, error) {
	raw, present := e[collection]
	if !present || raw == nil {
		return nil, nil
	}
	list, ok := raw.([]interface{})
	if !ok {
		return nil, fmt.Errorf("restdata: %q is a %T, not a list", collection, raw)
	}
	items := make([]map[string]interface{}, len(list))
	for i, item := range list {
		m, ok := item.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("restdata: %q item %d is a %T, not an object", collection, i, item)
		}
		items[i] = m
	}
	return items, nil
}

// Count returns the "num_<collection>" value of a count response.
func (e Envelope) Count(collection string) (int, error) {
	key := "num_" + collection
	raw, present := e[key]
	if !present {
		return 0, fmt.Errorf("restdata: response has no %q", key)
	}
	switch n := raw.(type) {
	case int64:
		return int(n), nil
	case uint64:
		return int(n), nil
	case float64:
		return int(n), nil
	case int:
		return n, nil
	default:
		return 0, fmt.Errorf("restdata: %q is a %T, not a number", key, raw)
	}
}
