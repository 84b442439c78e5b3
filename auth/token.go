// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package auth

import (
	"errors"
	"github.com/golang-jwt/jwt/v5"
	"github.com/mitchellh/mapstructure"
	"golang.org/x/oauth2"
	"time"
)

// tokenResponse is the part of a token response this package
// understands.
type tokenResponse struct {
	AccessToken  string `mapstructure:"access_token"`
	RefreshToken string `mapstructure:"refresh_token"`
	TokenType    string `mapstructure:"token_type"`
	ExpiresIn    int64  `mapstructure:"expires_in"`
}

// NewToken converts a token response into an oauth2.Token.  The full
// response stays available through Token.Extra.  now is used to
// compute the expiry from "expires_in"; if the response has no
// expiry the token never expires.
func NewToken(resp map[string]interface{}, now time.Time) (*oauth2.Token, error) {
	var tr tokenResponse
	if err := mapstructure.Decode(resp, &tr); err != nil {
		return nil, err
	}
	if tr.AccessToken == "" {
		return nil, ErrNoAccessToken
	}
	tok := &oauth2.Token{
		AccessToken:  tr.AccessToken,
		RefreshToken: tr.RefreshToken,
		TokenType:    tr.TokenType,
	}
	if tok.TokenType == "" {
		tok.TokenType = "Bearer"
	}
	if tr.ExpiresIn > 0 {
		tok.Expiry = now.Add(time.Duration(tr.ExpiresIn) * time.Second)
	}
	return tok.WithExtra(resp), nil
}

// Claims are the identity claims of an access token.
type Claims struct {
	Subject           string
	PreferredUsername string
	ExpiresAt         time.Time
}

// ParseClaims reads the claims of a JWT access token without checking
// its signature.  The result is informational only and must not be
// used for authorization decisions.
func ParseClaims(accessToken string) (*Claims, error) {
	token, _, err := jwt.NewParser().ParseUnverified(accessToken, jwt.MapClaims{})
	if err != nil {
		return nil, err
	}
	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("auth: unexpected claims type")
	}
	claims := &Claims{}
	claims.Subject, _ = mc.GetSubject()
	claims.PreferredUsername, _ = mc["preferred_username"].(string)
	if exp, _ := mc.GetExpirationTime(); exp != nil {
		claims.ExpiresAt = exp.Time
	}
	return claims, nil
}
