// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restclient

import (
	"context"
	"github.com/diffeo/go-hps/hps"
)

// RMSAPI is the resource management API.
type RMSAPI struct {
	*Endpoint
}

// RMS returns the resource management API of the service.
func (c *Client) RMS() (*RMSAPI, error) {
	e, err := c.NewEndpoint(rmsTemplate, nil)
	if err != nil {
		return nil, err
	}
	return &RMSAPI{e}, nil
}

// GetEvaluators lists registered evaluators.
func (api *RMSAPI) GetEvaluators(ctx context.Context, q Query) ([]*hps.Evaluator, error) {
	return ListObjects[*hps.Evaluator](ctx, api.Endpoint, q)
}

// CountEvaluators returns the number of registered evaluators
// matching q.
func (api *RMSAPI) CountEvaluators(ctx context.Context, q Query) (int, error) {
	return CountObjects[*hps.Evaluator](ctx, api.Endpoint, q)
}
