// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restclient

import (
	"context"
	"errors"
	"github.com/diffeo/go-hps/auth"
	"github.com/diffeo/go-hps/hps"
	"github.com/diffeo/go-hps/hpstest"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	"testing"
	"time"
)

var _ oauth2.TokenSource = (*Client)(nil)

// newServer starts a fake service with one user, "u"/"p", and one
// client, "rep-cli"/"secret".
func newServer(t *testing.T) *hpstest.Server {
	s := hpstest.New()
	t.Cleanup(s.Close)
	s.AddUser("u", "p")
	s.AddClient("rep-cli", "secret")
	return s
}

// testConfig returns a configuration for s that logs nowhere.
func testConfig(s *hpstest.Server) Config {
	logger, _ := logtest.NewNullLogger()
	return Config{
		URL:       s.URL,
		Username:  "u",
		Password:  "p",
		RetryWait: time.Microsecond,
		Logger:    logger,
	}
}

func newClient(t *testing.T, config Config) *Client {
	c, err := New(context.Background(), config)
	require.NoError(t, err)
	return c
}

func getProjects(t *testing.T, c *Client) ([]*hps.Project, error) {
	jms, err := c.JMS()
	require.NoError(t, err)
	return jms.GetProjects(context.Background(), nil)
}

// recordingProvider answers every token request with a fixed token
// pair and remembers the requests.
type recordingProvider struct {
	requests []auth.Request
}

func (p *recordingProvider) Authenticate(ctx context.Context, req auth.Request) (map[string]interface{}, error) {
	p.requests = append(p.requests, req)
	return map[string]interface{}{
		"access_token":  "access",
		"refresh_token": "refresh",
	}, nil
}

func (p *recordingProvider) grants() []string {
	var result []string
	for _, req := range p.requests {
		result = append(result, req.GrantType)
	}
	return result
}

func TestPasswordGrant(t *testing.T) {
	s := newServer(t)
	c := newClient(t, testConfig(s))

	assert.Equal(t, "A1", c.AccessToken())
	assert.Equal(t, "R1", c.RefreshToken())
	assert.Equal(t, auth.GrantPassword, c.GrantType())
	assert.Equal(t, []string{"password"}, s.TokenRequests())

	tok, err := c.Token()
	require.NoError(t, err)
	assert.Equal(t, "A1", tok.AccessToken)
	assert.Equal(t, "Bearer", tok.TokenType)
}

func TestGrantPrecedence(t *testing.T) {
	for _, test := range []struct {
		name   string
		config Config
		grant  string
	}{
		{
			name: "everything",
			config: Config{
				Username:     "u",
				Password:     "p",
				RefreshToken: "r",
				ClientSecret: "s",
			},
			grant: auth.GrantPassword,
		},
		{
			name:   "refresh beats secret",
			config: Config{RefreshToken: "r", ClientSecret: "s"},
			grant:  auth.GrantRefreshToken,
		},
		{
			name:   "username without password",
			config: Config{Username: "u", ClientSecret: "s"},
			grant:  auth.GrantClientCredentials,
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			provider := &recordingProvider{}
			config := test.config
			config.Provider = provider
			config.Logger, _ = logtest.NewNullLogger()
			c := newClient(t, config)

			assert.Equal(t, []string{test.grant}, provider.grants())
			assert.Equal(t, test.grant, c.GrantType())
			assert.Equal(t, "access", c.AccessToken())

			req := provider.requests[0]
			assert.Equal(t, "rep-cli", req.ClientID)
			assert.Equal(t, "rep", req.Realm)
			assert.Equal(t, "openid", req.Scope)
			assert.Equal(t, DefaultURL, req.URL)
		})
	}
}

func TestSuppliedAccessToken(t *testing.T) {
	provider := &recordingProvider{}
	logger, _ := logtest.NewNullLogger()
	c := newClient(t, Config{
		AccessToken: "given",
		Username:    "u",
		Password:    "p",
		Provider:    provider,
		Logger:      logger,
	})
	assert.Empty(t, provider.requests)
	assert.Equal(t, "given", c.AccessToken())
	assert.Equal(t, "", c.RefreshToken())
	assert.Equal(t, "", c.GrantType())

	err := c.RefreshAccessToken(context.Background())
	assert.Equal(t, ErrCannotRefresh, err)
}

func TestNoCredentials(t *testing.T) {
	provider := &recordingProvider{}
	logger, _ := logtest.NewNullLogger()
	_, err := New(context.Background(), Config{
		Username: "u",
		Provider: provider,
		Logger:   logger,
	})
	assert.Equal(t, ErrNoCredentials, err)
	assert.Empty(t, provider.requests)
}

func TestBadCredentials(t *testing.T) {
	s := newServer(t)
	config := testConfig(s)
	config.Password = "wrong"
	_, err := New(context.Background(), config)

	var ce *hps.ClientError
	require.True(t, errors.As(err, &ce), "%+v", err)
	assert.Equal(t, 401, ce.StatusCode)
	assert.Equal(t, "invalid_grant", ce.Reason)
	assert.Equal(t, "Invalid user credentials", ce.Description)
}

func TestRefreshOn401(t *testing.T) {
	s := newServer(t)
	c := newClient(t, testConfig(s))
	s.ExpireAccessTokens()

	projects, err := getProjects(t, c)
	require.NoError(t, err)
	assert.Empty(t, projects)
	assert.Equal(t, "A2", c.AccessToken())
	assert.Equal(t, "R2", c.RefreshToken())
	assert.Equal(t, []string{"password", "refresh_token"}, s.TokenRequests())

	requests := s.APIRequests()
	require.Len(t, requests, 2)
	assert.Equal(t, "Bearer A1", requests[0].Authorization)
	assert.Equal(t, "Bearer A2", requests[1].Authorization)
	assert.NotEmpty(t, requests[0].RequestID)
}

func TestAlways401(t *testing.T) {
	s := newServer(t)
	c := newClient(t, testConfig(s))
	s.RejectTokens(true)

	_, err := getProjects(t, c)
	var ce *hps.ClientError
	require.True(t, errors.As(err, &ce), "%+v", err)
	assert.Equal(t, 401, ce.StatusCode)
	assert.Equal(t, "Unauthorized", ce.Reason)
	assert.Equal(t, "GET", ce.Method)
	assert.Len(t, s.APIRequests(), 2)
	assert.Equal(t, []string{"password", "refresh_token"}, s.TokenRequests())

	// The next request gets its own retry.
	_, err = getProjects(t, c)
	assert.Error(t, err)
	assert.Len(t, s.APIRequests(), 4)
	assert.Equal(t, []string{"password", "refresh_token", "refresh_token"}, s.TokenRequests())
}

func TestClientCredentialsRefresh(t *testing.T) {
	s := newServer(t)
	config := testConfig(s)
	config.Username = ""
	config.Password = ""
	config.ClientSecret = "secret"
	c := newClient(t, config)
	assert.Equal(t, "A1", c.AccessToken())
	assert.Equal(t, "", c.RefreshToken())

	s.ExpireAccessTokens()
	_, err := getProjects(t, c)
	require.NoError(t, err)
	assert.Equal(t, "A2", c.AccessToken())
	assert.Equal(t, "", c.RefreshToken())
	assert.Equal(t, []string{"client_credentials", "client_credentials"}, s.TokenRequests())
}

func TestSuppliedTokenRejected(t *testing.T) {
	s := newServer(t)
	config := testConfig(s)
	config.AccessToken = "bogus"
	c := newClient(t, config)

	_, err := getProjects(t, c)
	var ce *hps.ClientError
	require.True(t, errors.As(err, &ce), "%+v", err)
	assert.Equal(t, 401, ce.StatusCode)
	assert.Len(t, s.APIRequests(), 1)
	assert.Empty(t, s.TokenRequests())
}

func TestRefreshFailure(t *testing.T) {
	s := newServer(t)
	s.RejectTokens(true)
	refreshErr := hps.NewClientError("invalid_grant", "Token is not active")
	logger, _ := logtest.NewNullLogger()
	c := newClient(t, Config{
		URL:          s.URL,
		RefreshToken: "old",
		Logger:       logger,
		Provider: auth.ProviderFunc(func(ctx context.Context, req auth.Request) (map[string]interface{}, error) {
			if req.RefreshToken == "old" {
				return map[string]interface{}{"access_token": "a", "refresh_token": "new"}, nil
			}
			return nil, refreshErr
		}),
	})

	_, err := getProjects(t, c)
	assert.Equal(t, refreshErr, err)
	assert.Equal(t, "a", c.AccessToken())
	assert.Equal(t, "new", c.RefreshToken())
}

func TestInsecureWarning(t *testing.T) {
	for _, suppress := range []bool{false, true} {
		logger, hook := logtest.NewNullLogger()
		newClient(t, Config{
			AccessToken:             "given",
			Verify:                  Bool(false),
			SuppressInsecureWarning: suppress,
			Logger:                  logger,
		})
		var warnings int
		for _, entry := range hook.AllEntries() {
			if entry.Level == logrus.WarnLevel {
				warnings++
			}
		}
		if suppress {
			assert.Equal(t, 0, warnings)
		} else {
			assert.Equal(t, 1, warnings)
		}
	}
}

func TestEndToEndRefresh(t *testing.T) {
	s := newServer(t)
	c := newClient(t, testConfig(s))
	require.Equal(t, "A1", c.AccessToken())
	require.Equal(t, "R1", c.RefreshToken())
	s.ExpireAccessTokens()

	jobs, err := projectAPI(t, c, "p1").GetJobs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, jobs)
	assert.Equal(t, "A2", c.AccessToken())

	requests := s.APIRequests()
	require.Len(t, requests, 2)
	assert.Equal(t, "/jms/api/v1/projects/p1/jobs", requests[1].Path)
	assert.Equal(t, "Bearer A2", requests[1].Authorization)
}
