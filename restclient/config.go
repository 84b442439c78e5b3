// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restclient

import (
	"github.com/benbjohnson/clock"
	"github.com/diffeo/go-hps/auth"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"
	"io/ioutil"
	"net/http"
	"time"
)

// DefaultURL is the service address used when Config.URL is empty.
const DefaultURL = "https://127.0.0.1:8443/hps"

// Config describes how to reach and authenticate to an HPS
// deployment.  The zero value, with credentials filled in, talks to
// a local deployment.
type Config struct {
	// URL is the base address of the service, such as
	// "https://hps.example.com/hps".
	URL string `yaml:"url"`

	// AuthURL is the base address of the authentication service,
	// if it is not hosted under URL.
	AuthURL string `yaml:"auth_url"`

	Realm    string `yaml:"realm"`
	ClientID string `yaml:"client_id"`
	Scope    string `yaml:"scope"`

	// Credentials.  The first usable of AccessToken, Username and
	// Password, RefreshToken, or ClientSecret selects the grant.
	ClientSecret string `yaml:"client_secret"`
	Username     string `yaml:"username"`
	Password     string `yaml:"password"`
	RefreshToken string `yaml:"refresh_token"`
	AccessToken  string `yaml:"access_token"`

	// Verify controls TLS certificate verification.  Nil means
	// true.  CAFile, if set, replaces the system roots.
	Verify *bool  `yaml:"verify"`
	CAFile string `yaml:"ca_file"`

	// SuppressInsecureWarning silences the warning logged when
	// Verify is false.
	SuppressInsecureWarning bool `yaml:"suppress_insecure_warning"`

	// AllFields requests every field of every object unless a
	// query names its own fields.  Nil means true.
	AllFields *bool `yaml:"all_fields"`

	// Timeout bounds each request to the service, including
	// retries.  Zero means no timeout.
	Timeout time.Duration `yaml:"timeout"`

	// AuthTimeout bounds each token request.
	AuthTimeout time.Duration `yaml:"auth_timeout"`

	// RetryMax is the number of times a request answered with
	// 503 Service Unavailable is retried, and RetryWait the first
	// delay between attempts.
	RetryMax  int           `yaml:"retry_max"`
	RetryWait time.Duration `yaml:"retry_wait"`

	// HTTPClient, if set, is used instead of a client built from
	// the TLS settings above.  Its transport is wrapped to retry
	// 503 responses.
	HTTPClient *http.Client `yaml:"-"`

	// Provider obtains tokens.  If nil, tokens are requested over
	// HTTP.
	Provider auth.Provider `yaml:"-"`

	Logger logrus.FieldLogger `yaml:"-"`
	Clock  clock.Clock        `yaml:"-"`
}

// Bool returns a pointer to b, for Config.Verify and
// Config.AllFields.
func Bool(b bool) *bool {
	return &b
}

// LoadConfig reads a YAML configuration file.
func LoadConfig(filename string) (Config, error) {
	var config Config
	bytes, err := ioutil.ReadFile(filename)
	if err == nil {
		err = yaml.Unmarshal(bytes, &config)
	}
	return config, err
}

// setDefaults sets default values for any Config fields that are
// uninitialized.
func (c *Config) setDefaults() {
	if c.URL == "" {
		c.URL = DefaultURL
	}

	if c.AuthURL == "" {
		c.AuthURL = c.URL
	}

	if c.Realm == "" {
		c.Realm = "rep"
	}

	if c.ClientID == "" {
		c.ClientID = "rep-cli"
	}

	if c.Scope == "" {
		c.Scope = "openid"
	}

	if c.Verify == nil {
		c.Verify = Bool(true)
	}

	if c.AllFields == nil {
		c.AllFields = Bool(true)
	}

	if c.AuthTimeout == time.Duration(0) {
		c.AuthTimeout = auth.DefaultTimeout
	}

	if c.RetryMax == 0 {
		c.RetryMax = 5
	}

	if c.RetryWait == time.Duration(0) {
		c.RetryWait = time.Duration(200) * time.Millisecond
	}

	if c.Logger == nil {
		c.Logger = logrus.StandardLogger()
	}

	if c.Clock == nil {
		c.Clock = clock.New()
	}
}
