// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restclient

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
	"io"
	"io/ioutil"
	"net/http"
	"time"
)

var errUnavailable = errors.New("503 Service Unavailable")

// retryTransport retries requests answered with 503 Service
// Unavailable, with exponential backoff.  Every other response, and
// every transport error, is returned as is.  When the retries run out
// the last 503 response is returned.
type retryTransport struct {
	Base       http.RoundTripper
	MaxRetries int
	Wait       time.Duration
	Logger     logrus.FieldLogger
}

func (t *retryTransport) policy(req *http.Request) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = t.Wait
	exp.MaxElapsedTime = 0
	exp.Reset()
	return backoff.WithContext(backoff.WithMaxRetries(exp, uint64(t.MaxRetries)), req.Context())
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var resp *http.Response
	attempt := 0
	op := func() error {
		r := req
		if attempt > 0 && req.Body != nil {
			if req.GetBody == nil {
				return backoff.Permanent(errors.New("request body cannot be replayed"))
			}
			body, err := req.GetBody()
			if err != nil {
				return backoff.Permanent(err)
			}
			r = req.Clone(req.Context())
			r.Body = body
		}
		attempt++
		var err error
		resp, err = t.Base.RoundTrip(r)
		if err != nil {
			resp = nil
			return backoff.Permanent(err)
		}
		if resp.StatusCode == http.StatusServiceUnavailable {
			return errUnavailable
		}
		return nil
	}
	notify := func(err error, wait time.Duration) {
		if resp != nil {
			io.Copy(ioutil.Discard, resp.Body)
			resp.Body.Close()
			resp = nil
		}
		t.Logger.WithFields(logrus.Fields{
			"method":  req.Method,
			"url":     req.URL.String(),
			"attempt": attempt,
			"wait":    wait,
		}).Warn("service unavailable, retrying")
	}

	err := backoff.RetryNotify(op, t.policy(req), notify)
	if err == errUnavailable {
		return resp, nil
	}
	if err != nil && resp != nil {
		resp.Body.Close()
		resp = nil
	}
	return resp, err
}

// tlsConfig builds the TLS settings for a Config.
func tlsConfig(config *Config) (*tls.Config, error) {
	tc := &tls.Config{}
	if !*config.Verify {
		tc.InsecureSkipVerify = true
	}
	if config.CAFile != "" {
		pem, err := ioutil.ReadFile(config.CAFile)
		if err != nil {
			return nil, err
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("no certificates found in %v", config.CAFile)
		}
		tc.RootCAs = pool
	}
	return tc, nil
}

// httpClients builds the HTTP clients for the service and for the
// token endpoint.  Only the service client retries.
func httpClients(config *Config) (service, token *http.Client, err error) {
	base := config.HTTPClient
	if base == nil {
		tc, err := tlsConfig(config)
		if err != nil {
			return nil, nil, err
		}
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.TLSClientConfig = tc
		base = &http.Client{Transport: transport}
	}
	rt := base.Transport
	if rt == nil {
		rt = http.DefaultTransport
	}

	service = &http.Client{
		Transport: &retryTransport{
			Base:       rt,
			MaxRetries: config.RetryMax,
			Wait:       config.RetryWait,
			Logger:     config.Logger,
		},
		CheckRedirect: base.CheckRedirect,
		Jar:           base.Jar,
		Timeout:       config.Timeout,
	}
	token = &http.Client{
		Transport:     rt,
		CheckRedirect: base.CheckRedirect,
		Jar:           base.Jar,
		Timeout:       base.Timeout,
	}
	return service, token, nil
}
