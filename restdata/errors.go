// Copyright 2015-2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restdata

import (
	"fmt"
	"github.com/diffeo/go-hps/hps"
	"net/http"
)

// ErrUnsupportedMediaType is returned from Decode() if the provided
// Content-Type: is unrecognized.
type ErrUnsupportedMediaType struct {
	Type string
}

func (e ErrUnsupportedMediaType) Error() string {
	return fmt.Sprintf("Unsupported media type %q", e.Type)
}

// HTTPStatus returns a fixed 415 Unsupported Media Type error code.
func (e ErrUnsupportedMediaType) HTTPStatus() int {
	return http.StatusUnsupportedMediaType
}

// CheckResponse returns nil if resp is successful.  Otherwise it
// returns an *hps.ClientError for 4xx statuses or an *hps.APIError
// for 5xx statuses, carrying the server-supplied reason and
// description from body.  If the body is not a recognizable error
// response the reason is the HTTP status text.
func CheckResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode < 400 {
		return nil
	}
	var er ErrorResponse
	// A body that isn't an error response is fine; the status
	// alone still produces an error.
	_ = DecodeBytes(resp.Header.Get("Content-Type"), body, &er)
	reason, description := er.Normalize()
	if reason == "" {
		reason = http.StatusText(resp.StatusCode)
	}
	re := &hps.RequestError{
		Reason:      reason,
		Description: description,
		StatusCode:  resp.StatusCode,
		Response:    resp,
	}
	if resp.Request != nil {
		re.Method = resp.Request.Method
		re.URL = resp.Request.URL.String()
	}
	return hps.ErrorForStatus(re)
}
