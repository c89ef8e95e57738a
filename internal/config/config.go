// Package config loads the portal settings from defaults, an optional YAML
// file and SPARK_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
	"gopkg.in/yaml.v3"
)

const (
	DefaultAuthBaseURL    = "/api/auth"
	DefaultScooterBaseURL = "/api/v1"
	DefaultTimeout        = "10s"
	DefaultAppName        = "SparkRunner"
	DefaultFrontendURL    = "http://localhost:5173"
	DefaultStateDirName   = ".sparkrunner"
)

// Environment variables read by Load.
const (
	EnvAuthBaseURL    = "SPARK_AUTH_API_URL"
	EnvScooterBaseURL = "SPARK_SCOOTER_API_URL"
	EnvTimeout        = "SPARK_API_TIMEOUT"
	EnvGoogleClientID = "SPARK_GOOGLE_CLIENT_ID"
	EnvGitHubClientID = "SPARK_GITHUB_CLIENT_ID"
	EnvAppName        = "SPARK_APP_NAME"
	EnvFrontendURL    = "SPARK_FRONTEND_URL"
	EnvStateDir       = "SPARK_STATE_DIR"
)

var ErrInvalidConfig = errors.New("invalid config")

// Config is the effective portal configuration.
type Config struct {
	API      APIConfig   `yaml:"api"`
	OAuth    OAuthConfig `yaml:"oauth"`
	App      AppConfig   `yaml:"app"`
	StateDir string      `yaml:"state_dir"`
}

// APIConfig holds the two backend locations.
type APIConfig struct {
	AuthBaseURL    string `yaml:"auth_base_url"`
	ScooterBaseURL string `yaml:"scooter_base_url"`
	Timeout        string `yaml:"timeout"`
}

type OAuthConfig struct {
	Google ProviderConfig `yaml:"google"`
	GitHub ProviderConfig `yaml:"github"`
}

type ProviderConfig struct {
	ClientID string `yaml:"client_id"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	FrontendURL string `yaml:"frontend_url"`
}

// Default returns the built in configuration.
func Default() *Config {
	return &Config{
		API: APIConfig{
			AuthBaseURL:    DefaultAuthBaseURL,
			ScooterBaseURL: DefaultScooterBaseURL,
			Timeout:        DefaultTimeout,
		},
		App: AppConfig{
			Name:        DefaultAppName,
			FrontendURL: DefaultFrontendURL,
		},
	}
}

// Load builds the configuration. path may be empty, in which case no file is
// read; a path that is given must exist.
func Load(path string) (*Config, error) {
	return load(path, os.LookupEnv)
}

func load(path string, lookup func(string) (string, bool)) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv(lookup)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	overrides := []struct {
		key    string
		target *string
	}{
		{EnvAuthBaseURL, &c.API.AuthBaseURL},
		{EnvScooterBaseURL, &c.API.ScooterBaseURL},
		{EnvTimeout, &c.API.Timeout},
		{EnvGoogleClientID, &c.OAuth.Google.ClientID},
		{EnvGitHubClientID, &c.OAuth.GitHub.ClientID},
		{EnvAppName, &c.App.Name},
		{EnvFrontendURL, &c.App.FrontendURL},
		{EnvStateDir, &c.StateDir},
	}

	for _, o := range overrides {
		if v, ok := lookup(o.key); ok && v != "" {
			*o.target = v
		}
	}
}

// Validate checks the values that are parsed later.
func (c *Config) Validate() error {
	if _, err := c.Timeout(); err != nil {
		return err
	}

	frontend, err := url.Parse(c.App.FrontendURL)
	if err != nil || !frontend.IsAbs() {
		return fmt.Errorf("%w: frontend url %q must be absolute", ErrInvalidConfig, c.App.FrontendURL)
	}

	for name, raw := range map[string]string{"auth": c.API.AuthBaseURL, "scooter": c.API.ScooterBaseURL} {
		if raw == "" {
			return fmt.Errorf("%w: %s base url is empty", ErrInvalidConfig, name)
		}
		if _, err := url.Parse(raw); err != nil {
			return fmt.Errorf("%w: %s base url: %v", ErrInvalidConfig, name, err)
		}
	}

	return nil
}

// Timeout parses the per request timeout.
func (c *Config) Timeout() (time.Duration, error) {
	d, err := time.ParseDuration(c.API.Timeout)
	if err != nil {
		return 0, fmt.Errorf("%w: timeout %q: %v", ErrInvalidConfig, c.API.Timeout, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%w: timeout must be positive", ErrInvalidConfig)
	}
	return d, nil
}

// AuthURL is the auth service base URL, resolved against the frontend URL
// when relative.
func (c *Config) AuthURL() (string, error) {
	return c.resolve(c.API.AuthBaseURL)
}

// ScooterURL is the profile/scooter service base URL.
func (c *Config) ScooterURL() (string, error) {
	return c.resolve(c.API.ScooterBaseURL)
}

func (c *Config) resolve(raw string) (string, error) {
	ref, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if ref.IsAbs() {
		return ref.String(), nil
	}

	base, err := url.Parse(c.App.FrontendURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	return base.ResolveReference(ref).String(), nil
}

// StateDirectory returns the directory holding the session token, expanding
// a leading ~ and defaulting to ~/.sparkrunner.
func (c *Config) StateDirectory() (string, error) {
	dir := c.StateDir
	if dir == "" || dir == "~" || strings.HasPrefix(dir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		switch {
		case dir == "":
			return filepath.Join(home, DefaultStateDirName), nil
		case dir == "~":
			return home, nil
		default:
			return filepath.Join(home, dir[2:]), nil
		}
	}
	return filepath.Clean(dir), nil
}

// OAuthProviders returns an oauth2 config for every provider with a client
// id. The frontend handles the redirect, so no secret is carried.
func (c *Config) OAuthProviders() map[string]*oauth2.Config {
	providers := map[string]*oauth2.Config{}

	add := func(name, clientID string, endpoint oauth2.Endpoint, scopes ...string) {
		if clientID == "" {
			return
		}
		providers[name] = &oauth2.Config{
			ClientID:    clientID,
			Endpoint:    endpoint,
			RedirectURL: strings.TrimSuffix(c.App.FrontendURL, "/") + "/auth/callback/" + name,
			Scopes:      scopes,
		}
	}

	add("google", c.OAuth.Google.ClientID, endpoints.Google, "openid", "email", "profile")
	add("github", c.OAuth.GitHub.ClientID, endpoints.GitHub, "read:user", "user:email")

	return providers
}

// ProviderLogin is the browser URL that starts a provider sign in.
type ProviderLogin struct {
	Provider string
	URL      string
}

// OAuthLoginURLs builds the authorization URL of every configured provider,
// google first. state is echoed back to the frontend callback.
func (c *Config) OAuthLoginURLs(state string) []ProviderLogin {
	providers := c.OAuthProviders()

	var logins []ProviderLogin
	for _, name := range []string{"google", "github"} {
		p, ok := providers[name]
		if !ok {
			continue
		}
		logins = append(logins, ProviderLogin{
			Provider: name,
			URL:      p.AuthCodeURL(state, oauth2.AccessTypeOnline),
		})
	}
	return logins
}
