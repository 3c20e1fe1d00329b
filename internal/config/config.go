// Package config provides configuration loading and validation for the CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Environment variables read by Load.
const (
	StageEnv        = "DM_STAGE"
	DataAPITokenEnv = "DM_DATA_API_TOKEN"
	DataAPIURLEnv   = "DM_DATA_API_URL"
	AdminURLEnv     = "DM_ADMIN_URL"
	NotifyAPIKeyEnv = "NOTIFY_API_KEY"
	DatabaseURLEnv  = "DATABASE_URL"
	AWSRegionEnv    = "AWS_REGION"
)

// Config holds the settings shared by every script. Values come from
// defaults, then an optional YAML file, then the environment.
type Config struct {
	Stage        string `yaml:"stage" validate:"required,oneof=development preview staging production"`
	DataAPIURL   string `yaml:"data_api_url" validate:"omitempty,url"`
	DataAPIToken string `yaml:"data_api_token"`
	AdminURL     string `yaml:"admin_url" validate:"omitempty,url"`
	NotifyAPIKey string `yaml:"notify_api_key" validate:"omitempty,min=73"`
	DatabaseURL  string `yaml:"database_url"`
	AWSRegion    string `yaml:"aws_region"`
}

// Default returns the configuration used when nothing else is set.
func Default() Config {
	return Config{
		Stage:     "development",
		AWSRegion: "eu-west-1",
	}
}

// Load reads the YAML file at path, if given, and applies environment
// overrides on top.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	}

	cfg.applyEnvOverrides()
	return &cfg, nil
}

func (c *Config) applyEnvOverrides() {
	overrides := map[string]*string{
		StageEnv:        &c.Stage,
		DataAPITokenEnv: &c.DataAPIToken,
		DataAPIURLEnv:   &c.DataAPIURL,
		AdminURLEnv:     &c.AdminURL,
		NotifyAPIKeyEnv: &c.NotifyAPIKey,
		DatabaseURLEnv:  &c.DatabaseURL,
		AWSRegionEnv:    &c.AWSRegion,
	}
	for env, field := range overrides {
		if v := os.Getenv(env); v != "" {
			*field = v
		}
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field formats. Settings only some scripts need are
// checked with Require.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("'%s' failed '%s'", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("config error: %s", strings.Join(msgs, ", "))
		}
		return fmt.Errorf("config error: %w", err)
	}
	return nil
}

// Require returns an error naming every empty setting among the given
// environment variable names.
func (c *Config) Require(envNames ...string) error {
	values := map[string]string{
		StageEnv:        c.Stage,
		DataAPITokenEnv: c.DataAPIToken,
		DataAPIURLEnv:   c.DataAPIURL,
		AdminURLEnv:     c.AdminURL,
		NotifyAPIKeyEnv: c.NotifyAPIKey,
		DatabaseURLEnv:  c.DatabaseURL,
		AWSRegionEnv:    c.AWSRegion,
	}
	var missing []string
	for _, name := range envNames {
		if err := validate.Var(values[name], "required"); err != nil {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("config error: missing %s", strings.Join(missing, ", "))
	}
	return nil
}

// Endpoints returns the stage's defaults with any explicit URLs applied.
func (c *Config) Endpoints() (StageEndpoints, error) {
	ep, err := EndpointsForStage(c.Stage)
	if err != nil {
		return ep, err
	}
	if c.DataAPIURL != "" {
		ep.DataAPIURL = c.DataAPIURL
	}
	if c.AdminURL != "" {
		ep.AdminURL = c.AdminURL
	}
	return ep, nil
}
