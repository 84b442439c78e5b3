// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package auth

import (
	"context"
	"fmt"
	"github.com/diffeo/go-hps/hps"
	"github.com/diffeo/go-hps/restdata"
	"github.com/sirupsen/logrus"
	"io/ioutil"
	"net/http"
	"strings"
)

// HTTPProvider requests tokens over HTTP.
type HTTPProvider struct {
	// HTTPClient carries the request.  If nil, uses
	// http.DefaultClient.
	HTTPClient *http.Client

	// Logger receives a debug line per request.  If nil, uses
	// the logrus standard logger.
	Logger logrus.FieldLogger
}

// Authenticate posts req to its token endpoint.  A 4xx or 5xx answer
// is returned as an *hps.ClientError or *hps.APIError whose reason
// and description are the OAuth "error" and "error_description"
// fields.
func (p *HTTPProvider) Authenticate(ctx context.Context, req Request) (map[string]interface{}, error) {
	client := p.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	logger := p.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	timeout := req.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	endpoint := TokenURL(req.URL, req.Realm)
	httpReq, err := http.NewRequest("POST", endpoint, strings.NewReader(req.Form().Encode()))
	if err != nil {
		return nil, err
	}
	httpReq = httpReq.WithContext(ctx)
	httpReq.Header.Set("Content-Type", restdata.FormMediaType)
	httpReq.Header.Set("Accept", restdata.JSONMediaType)

	logger.WithFields(logrus.Fields{
		"url":        endpoint,
		"grant_type": req.GrantType,
		"client_id":  req.ClientID,
	}).Debug("requesting token")

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("POST %s: %w", endpoint, err)
	}
	defer resp.Body.Close()
	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("POST %s: %w", endpoint, err)
	}
	if err := restdata.CheckResponse(resp, body); err != nil {
		return nil, err
	}

	var result map[string]interface{}
	err = restdata.DecodeBytes(resp.Header.Get("Content-Type"), body, &result)
	if err != nil {
		return nil, fmt.Errorf("POST %s: %w", endpoint, err)
	}
	if token, _ := result["access_token"].(string); token == "" {
		return nil, &hps.APIError{RequestError: &hps.RequestError{
			Reason:     ErrNoAccessToken.Error(),
			StatusCode: 0,
			Method:     "POST",
			URL:        endpoint,
			Response:   resp,
		}}
	}
	return result, nil
}
