// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package auth requests OAuth 2.0 tokens from the Keycloak-style
// authentication service that fronts an HPS deployment.
//
// Tokens come from a single form-encoded POST to the realm's token
// endpoint,
//
//     {base}/auth/realms/{realm}/protocol/openid-connect/token
//
// with a grant type of "password", "refresh_token", or
// "client_credentials".  Other grant types, such as token exchange,
// can be requested by setting Request.GrantType and passing their
// fields in Request.Extra.  This package does not retry; a failed
// request is returned directly to the caller.
package auth

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Grant types understood by the token endpoint.
const (
	GrantPassword          = "password"
	GrantRefreshToken      = "refresh_token"
	GrantClientCredentials = "client_credentials"
)

// DefaultTimeout bounds a token request if Request.Timeout is zero.
const DefaultTimeout = 10 * time.Second

// ErrNoAccessToken is returned if the token endpoint answers
// successfully without an access token.
var ErrNoAccessToken = errors.New("auth: token response has no access_token")

// RealmURL joins a base URL with "auth/realms/{realm}".  If base
// already ends with that suffix (with or without a trailing slash) it
// is returned without the trailing slash and otherwise unchanged.
func RealmURL(base, realm string) string {
	base = strings.TrimRight(base, "/")
	suffix := "auth/realms/" + realm
	if strings.HasSuffix(base, "/"+suffix) || base == suffix {
		return base
	}
	return base + "/" + suffix
}

// TokenURL returns the realm's token endpoint for a base URL.
func TokenURL(base, realm string) string {
	return RealmURL(base, realm) + "/protocol/openid-connect/token"
}

// Request describes one token request.  Empty credential fields are
// not sent.
type Request struct {
	// URL is the base URL of the authentication service, or the
	// realm URL itself.
	URL   string
	Realm string

	GrantType    string
	ClientID     string
	ClientSecret string
	Scope        string
	Username     string
	Password     string
	RefreshToken string

	// Extra fields are added to the form, overriding any of the
	// fields above.
	Extra map[string]string

	// Timeout bounds the request.  Zero means DefaultTimeout.
	Timeout time.Duration
}

// Form returns the form-encoded body of the request.
func (r *Request) Form() url.Values {
	form := url.Values{}
	form.Set("client_id", r.ClientID)
	form.Set("grant_type", r.GrantType)
	form.Set("scope", r.Scope)
	for name, value := range map[string]string{
		"client_secret": r.ClientSecret,
		"username":      r.Username,
		"password":      r.Password,
		"refresh_token": r.RefreshToken,
	} {
		if value != "" {
			form.Set(name, value)
		}
	}
	for name, value := range r.Extra {
		form.Set(name, value)
	}
	return form
}

// A Provider obtains tokens.  The result is the decoded JSON body of
// the token response, which contains at least "access_token".
type Provider interface {
	Authenticate(ctx context.Context, req Request) (map[string]interface{}, error)
}

// ProviderFunc adapts a plain function to Provider.
type ProviderFunc func(ctx context.Context, req Request) (map[string]interface{}, error)

// Authenticate calls f.
func (f ProviderFunc) Authenticate(ctx context.Context, req Request) (map[string]interface{}, error) {
	return f(ctx, req)
}

// Authenticate performs a single token request with the default HTTP
// client.
func Authenticate(ctx context.Context, req Request) (map[string]interface{}, error) {
	return (&HTTPProvider{HTTPClient: http.DefaultClient}).Authenticate(ctx, req)
}
