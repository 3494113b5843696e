package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	BaseURLDefault            = "http://localhost:5000/api"
	TimeoutDefault            = 60 * time.Second
	UploadStallTimeoutDefault = 5 * time.Minute
	HealthIntervalDefault     = 10 * time.Second
	HealthTimeoutDefault      = 3 * time.Second
	MaxRetriesDefault         = 2
)

// OAuthConfig configures the OAuth2 client credentials grant.
type OAuthConfig struct {
	ClientID     string   `yaml:"client_id"`
	ClientSecret string   `yaml:"client_secret"`
	TokenURL     string   `yaml:"token_url"`
	Scopes       []string `yaml:"scopes"`
}

// Empty reports whether no OAuth field is set.
func (o *OAuthConfig) Empty() bool {
	return o == nil || (o.ClientID == "" && o.ClientSecret == "" && o.TokenURL == "" && len(o.Scopes) == 0)
}

// ClientConfig holds all client configuration.
type ClientConfig struct {
	BaseURL            string        `yaml:"base_url"`
	Timeout            time.Duration `yaml:"timeout"`
	UploadStallTimeout time.Duration `yaml:"upload_stall_timeout"`
	MaxRetries         int           `yaml:"max_retries"`
	AccessToken        string        `yaml:"access_token"`
	OAuth              *OAuthConfig  `yaml:"oauth"`
	HealthInterval     time.Duration `yaml:"health_interval"`
	HealthTimeout      time.Duration `yaml:"health_timeout"`
	Verbose            bool          `yaml:"verbose"`
	Debug              bool          `yaml:"debug"`
}

// Default returns the built-in configuration.
func Default() *ClientConfig {
	return &ClientConfig{
		BaseURL:            BaseURLDefault,
		Timeout:            TimeoutDefault,
		UploadStallTimeout: UploadStallTimeoutDefault,
		MaxRetries:         MaxRetriesDefault,
		HealthInterval:     HealthIntervalDefault,
		HealthTimeout:      HealthTimeoutDefault,
	}
}

// DefaultFromEnv creates a ClientConfig with defaults overridden by
// CHORUS_* environment variables.
func DefaultFromEnv() *ClientConfig {
	cfg := Default()
	cfg.ApplyEnv()
	return cfg
}

// ApplyEnv overrides fields whose CHORUS_* variable is set. Unparseable
// durations and numbers are ignored.
func (c *ClientConfig) ApplyEnv() {
	if v := envString("CHORUS_BASE_URL"); v != "" {
		c.BaseURL = v
	}
	if v := envString("CHORUS_ACCESS_TOKEN"); v != "" {
		c.AccessToken = v
	}
	envDuration("CHORUS_TIMEOUT", &c.Timeout)
	envDuration("CHORUS_UPLOAD_STALL_TIMEOUT", &c.UploadStallTimeout)
	envDuration("CHORUS_HEALTH_INTERVAL", &c.HealthInterval)
	envDuration("CHORUS_HEALTH_TIMEOUT", &c.HealthTimeout)
	if v := envString("CHORUS_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			c.MaxRetries = n
		}
	}
	if envBool("CHORUS_VERBOSE") {
		c.Verbose = true
	}
	if envBool("CHORUS_DEBUG") {
		c.Debug = true
	}

	oauth := OAuthConfig{
		ClientID:     envString("CHORUS_OAUTH_CLIENT_ID"),
		ClientSecret: envString("CHORUS_OAUTH_CLIENT_SECRET"),
		TokenURL:     envString("CHORUS_OAUTH_TOKEN_URL"),
	}
	if scopes := envString("CHORUS_OAUTH_SCOPES"); scopes != "" {
		oauth.Scopes = strings.FieldsFunc(scopes, func(r rune) bool { return r == ',' || r == ' ' })
	}
	if !oauth.Empty() {
		if c.OAuth == nil {
			c.OAuth = &OAuthConfig{}
		}
		mergeOAuth(c.OAuth, oauth)
	}
}

// Validate checks the fields a client cannot work without.
func (c *ClientConfig) Validate() error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return ErrMissingBaseURL
	}
	if !strings.HasPrefix(c.BaseURL, "http://") && !strings.HasPrefix(c.BaseURL, "https://") {
		return fmt.Errorf("%w: %q", ErrInvalidBaseURL, c.BaseURL)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max_retries must not be negative, got %d", c.MaxRetries)
	}
	return nil
}

// Endpoint joins the base URL and a path.
func (c *ClientConfig) Endpoint(path string) string {
	return strings.TrimRight(c.BaseURL, "/") + "/" + strings.TrimLeft(path, "/")
}

func mergeOAuth(dst *OAuthConfig, src OAuthConfig) {
	if src.ClientID != "" {
		dst.ClientID = src.ClientID
	}
	if src.ClientSecret != "" {
		dst.ClientSecret = src.ClientSecret
	}
	if src.TokenURL != "" {
		dst.TokenURL = src.TokenURL
	}
	if len(src.Scopes) > 0 {
		dst.Scopes = src.Scopes
	}
}

func envString(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func envDuration(key string, dst *time.Duration) {
	v := envString(key)
	if v == "" {
		return
	}
	if d, err := time.ParseDuration(v); err == nil && d >= 0 {
		*dst = d
	}
}

func envBool(key string) bool {
	v := strings.ToLower(envString(key))
	return v == "1" || v == "true" || v == "yes" || v == "on"
}
