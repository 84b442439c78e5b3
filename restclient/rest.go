// Copyright 2015-2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restclient

// This file provides generic REST client code.

import (
	"bytes"
	"context"
	"fmt"
	"github.com/diffeo/go-hps/restdata"
	"github.com/jtacoma/uritemplates"
	"github.com/satori/go.uuid"
	"github.com/sirupsen/logrus"
	"io"
	"io/ioutil"
	"net/http"
	"net/url"
)

// Endpoint is one REST API root of the service, such as the job
// management API or one project's API.
type Endpoint struct {
	client *Client
	URL    *url.URL
}

// NewEndpoint creates an endpoint rooted at the given template,
// expanded with vars and taken relative to the client's base URL.
// The template may refer to the base URL as {+url}.
func (c *Client) NewEndpoint(template string, vars map[string]interface{}) (*Endpoint, error) {
	all := map[string]interface{}{"url": c.config.URL}
	for k, v := range vars {
		all[k] = v
	}
	u, err := expand(template, all)
	if err != nil {
		return nil, err
	}
	return &Endpoint{client: c, URL: u}, nil
}

// Client returns the client that sends the endpoint's requests.
func (e *Endpoint) Client() *Client {
	return e.client
}

func expand(template string, vars map[string]interface{}) (*url.URL, error) {
	// Build the template object
	tmpl, err := uritemplates.Parse(template)
	if err != nil {
		return nil, err
	}

	// Expand the template to produce a string
	expanded, err := tmpl.Expand(vars)
	if err != nil {
		return nil, err
	}
	return url.Parse(expanded)
}

// Template expands a URI template below the endpoint.  The template
// may refer to the endpoint's own URL as {+base}.  q, if not nil,
// becomes the query string, with "fields=all" added if the client
// requests all fields by default.
func (e *Endpoint) Template(template string, vars map[string]interface{}, q Query) (*url.URL, error) {
	all := map[string]interface{}{"base": e.URL.String()}
	for k, v := range vars {
		all[k] = v
	}
	u, err := expand(template, all)
	if err != nil {
		return nil, err
	}
	values := url.Values{}
	for k, vs := range q {
		values[k] = append([]string(nil), vs...)
	}
	if *e.client.config.AllFields && values.Get("fields") == "" {
		values.Set("fields", "all")
	}
	u.RawQuery = values.Encode()
	return u, nil
}

// Do performs some HTTP action.  If in is non-nil, the request data
// is serialized and sent as the body of, for instance, a POST
// request.  If out is non-nil, the response data (if any) is
// deserialized into this object, which must be of pointer type.  The
// response is returned with its body already consumed.
//
// A 401 Unauthorized response causes one token refresh and one
// repeat of the request.  Any 4xx or 5xx response that remains is
// returned as an *hps.ClientError or *hps.APIError.
func (e *Endpoint) Do(ctx context.Context, method string, u *url.URL, in, out interface{}) (*http.Response, error) {
	c := e.client

	var body []byte
	if in != nil {
		var err error
		body, err = restdata.Encode(in)
		if err != nil {
			return nil, err
		}
	}

	resp, respBody, err := c.send(ctx, method, u, body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized && c.canRefresh() {
		c.logger.WithFields(logrus.Fields{
			"method": method,
			"url":    u.String(),
		}).Info("access token rejected, refreshing")
		if err := c.RefreshAccessToken(ctx); err != nil {
			return nil, err
		}
		resp, respBody, err = c.send(ctx, method, u, body)
		if err != nil {
			return nil, err
		}
	}

	if err = restdata.CheckResponse(resp, respBody); err != nil {
		return resp, err
	}

	if out != nil && len(respBody) > 0 {
		err = restdata.DecodeBytes(resp.Header.Get("Content-Type"), respBody, out)
		if err != nil {
			err = fmt.Errorf("%s %s: %w", method, u, err)
		}
	}
	return resp, err
}

// send issues one request with the current access token and reads
// the whole response.
func (c *Client) send(ctx context.Context, method string, u *url.URL, body []byte) (*http.Response, []byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequest(method, u.String(), reader)
	if err != nil {
		return nil, nil, err
	}
	req = req.WithContext(ctx)
	requestID := uuid.NewV4().String()
	if body != nil {
		req.Header.Set("Content-Type", restdata.JSONMediaType)
	}
	req.Header.Set("Accept", restdata.JSONMediaType)
	req.Header.Set("X-Request-ID", requestID)
	c.currentToken().SetAuthHeader(req)

	start := c.clock.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("%s %s: %w", method, u, err)
	}
	defer resp.Body.Close()
	respBody, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("%s %s: %w", method, u, err)
	}

	requestsTotal.WithLabelValues(method, fmt.Sprint(resp.StatusCode)).Inc()
	c.logger.WithFields(logrus.Fields{
		"method":     method,
		"url":        u.String(),
		"status":     resp.StatusCode,
		"duration":   c.clock.Now().Sub(start),
		"request_id": requestID,
	}).Debug("request")
	return resp, respBody, nil
}

// Get retrieves a resource.  template is interpreted as a URI
// template below the endpoint.  The result is stored in out, which
// must be of pointer type.
func (e *Endpoint) Get(ctx context.Context, template string, vars map[string]interface{}, q Query, out interface{}) error {
	u, err := e.Template(template, vars, q)
	if err == nil {
		_, err = e.Do(ctx, "GET", u, nil, out)
	}
	return err
}

// PostTo submits data to a service below the endpoint.  The server
// response is stored in out, which must be of pointer type, and the
// response is returned for its headers.
func (e *Endpoint) PostTo(ctx context.Context, template string, vars map[string]interface{}, q Query, in, out interface{}) (*http.Response, error) {
	u, err := e.Template(template, vars, q)
	if err != nil {
		return nil, err
	}
	return e.Do(ctx, "POST", u, in, out)
}

// PutTo updates a resource below the endpoint.  The server response
// is stored in out, which must be of pointer type.
func (e *Endpoint) PutTo(ctx context.Context, template string, vars map[string]interface{}, q Query, in, out interface{}) error {
	u, err := e.Template(template, vars, q)
	if err == nil {
		_, err = e.Do(ctx, "PUT", u, in, out)
	}
	return err
}

// DeleteAt deletes resources below the endpoint.  in, if not nil, is
// sent as the request body.
func (e *Endpoint) DeleteAt(ctx context.Context, template string, vars map[string]interface{}, in interface{}) error {
	u, err := e.Template(template, vars, nil)
	if err == nil {
		_, err = e.Do(ctx, "DELETE", u, in, nil)
	}
	return err
}
