// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restdata

import (
	"errors"
	"github.com/diffeo/go-hps/hps"
	"github.com/stretchr/testify/assert"
	"net/http"
	"net/url"
	"testing"
)

func response(status int, contentType string) *http.Response {
	u, _ := url.Parse("https://hps.example/jms/api/v1/jobs")
	resp := &http.Response{
		StatusCode: status,
		Header:     http.Header{},
		Request:    &http.Request{Method: "GET", URL: u},
	}
	if contentType != "" {
		resp.Header.Set("Content-Type", contentType)
	}
	return resp
}

func TestCheckResponseOK(t *testing.T) {
	assert.NoError(t, CheckResponse(response(200, ""), nil))
	assert.NoError(t, CheckResponse(response(201, JSONMediaType), []byte(`{}`)))
}

func TestCheckResponseTitle(t *testing.T) {
	err := CheckResponse(response(400, JSONMediaType),
		[]byte(`{"title": "bad_request", "description": "reason text"}`))
	var ce *hps.ClientError
	if assert.True(t, errors.As(err, &ce)) {
		assert.Equal(t, "bad_request", ce.Reason)
		assert.Equal(t, "reason text", ce.Description)
		assert.Equal(t, 400, ce.StatusCode)
		assert.Equal(t, "GET", ce.Method)
	}
	assert.EqualError(t, err,
		"400 Client Error: bad_request for: GET https://hps.example/jms/api/v1/jobs\nreason text")
}

func TestCheckResponseOAuth(t *testing.T) {
	err := CheckResponse(response(401, JSONMediaType),
		[]byte(`{"error": "invalid_grant", "error_description": "Invalid user credentials"}`))
	var ce *hps.ClientError
	if assert.True(t, errors.As(err, &ce)) {
		assert.Equal(t, "invalid_grant", ce.Reason)
		assert.Equal(t, "Invalid user credentials", ce.Description)
	}
}

func TestCheckResponseNoBody(t *testing.T) {
	err := CheckResponse(response(503, "text/html"), []byte("<html>down</html>"))
	var ae *hps.APIError
	if assert.True(t, errors.As(err, &ae)) {
		assert.Equal(t, "Service Unavailable", ae.Reason)
		assert.Equal(t, "", ae.Description)
	}
}
