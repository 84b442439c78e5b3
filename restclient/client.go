// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package restclient is a client for the REST interface of an HPS job
// management deployment.
//
// A Client holds an authenticated session.  It is built from a
// Config, and authenticates once at construction:
//
//     client, err := restclient.New(ctx, restclient.Config{
//         URL:      "https://hps.example.com/hps",
//         Username: "repuser",
//         Password: "repuser",
//     })
//
// Whenever the service answers 401 Unauthorized the client refreshes
// its access token and repeats the request, once.  Every other 4xx or
// 5xx answer becomes an *hps.ClientError or *hps.APIError.
//
// Objects are read and written through an Endpoint, one REST API root:
// the job management API (JMS), one project within it (Project), or
// the resource management API (RMS).  The generic functions
// ListObjects, GetObject, CreateObjects, UpdateObjects, DeleteObjects,
// and CopyObjects work on any resource type of the hps package.
package restclient

import (
	"context"
	"errors"
	"github.com/benbjohnson/clock"
	"github.com/diffeo/go-hps/auth"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"net/http"
	"sync"
)

// ErrNoCredentials is returned from New if the configuration has no
// access token, no username and password, no refresh token, and no
// client secret.
var ErrNoCredentials = errors.New("restclient: no credentials configured")

// ErrCannotRefresh is returned from RefreshAccessToken if the client
// has neither a refresh token nor client credentials.
var ErrCannotRefresh = errors.New("restclient: access token cannot be refreshed")

// Client is an authenticated session with an HPS deployment.  It is
// safe for concurrent use.
type Client struct {
	config     Config
	logger     logrus.FieldLogger
	clock      clock.Clock
	provider   auth.Provider
	httpClient *http.Client

	// grantType is the grant used to authenticate, or empty if
	// the access token was supplied directly.
	grantType string

	// mu protects token.  The access and refresh tokens are
	// always replaced together.
	mu    sync.Mutex
	token *oauth2.Token
}

// New creates a client and authenticates it.  Exactly one grant is
// attempted, chosen in order of precedence: a supplied access token
// (no request at all), username and password, a refresh token, then
// client credentials.
func New(ctx context.Context, config Config) (*Client, error) {
	config.setDefaults()
	service, tokenClient, err := httpClients(&config)
	if err != nil {
		return nil, err
	}
	c := &Client{
		config:     config,
		logger:     config.Logger,
		clock:      config.Clock,
		provider:   config.Provider,
		httpClient: service,
	}
	if c.provider == nil {
		c.provider = &auth.HTTPProvider{
			HTTPClient: tokenClient,
			Logger:     config.Logger,
		}
	}
	if !*config.Verify && !config.SuppressInsecureWarning {
		c.logger.WithField("url", config.URL).Warn("TLS certificate verification is disabled; requests will be unverified")
	}

	switch {
	case config.AccessToken != "":
		c.token = &oauth2.Token{AccessToken: config.AccessToken, TokenType: "Bearer"}
		c.logger.Info("using supplied access token")
		return c, nil
	case config.Username != "" && config.Password != "":
		c.grantType = auth.GrantPassword
	case config.RefreshToken != "":
		c.grantType = auth.GrantRefreshToken
	case config.ClientSecret != "":
		c.grantType = auth.GrantClientCredentials
	default:
		return nil, ErrNoCredentials
	}

	c.logger.WithFields(logrus.Fields{
		"grant_type": c.grantType,
		"client_id":  config.ClientID,
		"realm":      config.Realm,
	}).Info("authenticating")
	req := c.authRequest(c.grantType)
	req.RefreshToken = config.RefreshToken
	token, err := c.authenticate(ctx, req)
	if err != nil {
		return nil, err
	}
	c.token = token
	return c, nil
}

func (c *Client) authRequest(grantType string) auth.Request {
	req := auth.Request{
		URL:       c.config.AuthURL,
		Realm:     c.config.Realm,
		GrantType: grantType,
		ClientID:  c.config.ClientID,
		Scope:     c.config.Scope,
		Timeout:   c.config.AuthTimeout,
	}
	switch grantType {
	case auth.GrantPassword:
		req.Username = c.config.Username
		req.Password = c.config.Password
	case auth.GrantClientCredentials:
		req.ClientSecret = c.config.ClientSecret
	case auth.GrantRefreshToken:
		// Confidential clients need their secret to refresh.
		req.ClientSecret = c.config.ClientSecret
	}
	return req
}

func (c *Client) authenticate(ctx context.Context, req auth.Request) (*oauth2.Token, error) {
	resp, err := c.provider.Authenticate(ctx, req)
	if err != nil {
		return nil, err
	}
	return auth.NewToken(resp, c.clock.Now())
}

// canRefresh reports whether RefreshAccessToken can do anything.
func (c *Client) canRefresh() bool {
	if c.grantType == auth.GrantClientCredentials {
		return true
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token.RefreshToken != ""
}

// RefreshAccessToken obtains a new access token.  A client that
// authenticated with client credentials repeats that grant; any other
// client uses its refresh token, and fails with ErrCannotRefresh if
// it has none.
func (c *Client) RefreshAccessToken(ctx context.Context) error {
	var req auth.Request
	if c.grantType == auth.GrantClientCredentials {
		req = c.authRequest(auth.GrantClientCredentials)
	} else {
		refreshToken := c.RefreshToken()
		if refreshToken == "" {
			return ErrCannotRefresh
		}
		req = c.authRequest(auth.GrantRefreshToken)
		req.RefreshToken = refreshToken
	}

	c.logger.WithField("grant_type", req.GrantType).Debug("refreshing access token")
	token, err := c.authenticate(ctx, req)
	if err != nil {
		return err
	}
	tokenRefreshesTotal.WithLabelValues(req.GrantType).Inc()

	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
	return nil
}

// currentToken returns the token pair in use.
func (c *Client) currentToken() *oauth2.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// AccessToken returns the current access token.
func (c *Client) AccessToken() string {
	return c.currentToken().AccessToken
}

// RefreshToken returns the current refresh token, or an empty string
// if there is none.
func (c *Client) RefreshToken() string {
	return c.currentToken().RefreshToken
}

// GrantType returns the grant used to authenticate, or an empty
// string if the access token was supplied directly.
func (c *Client) GrantType() string {
	return c.grantType
}

// Token returns a copy of the current token.  With this Client
// implements oauth2.TokenSource.
func (c *Client) Token() (*oauth2.Token, error) {
	tok := *c.currentToken()
	return &tok, nil
}

// URL returns the base address of the service.
func (c *Client) URL() string {
	return c.config.URL
}

// Logger returns the client's logger.
func (c *Client) Logger() logrus.FieldLogger {
	return c.logger
}
