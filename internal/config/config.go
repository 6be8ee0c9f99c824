// Package config provides configuration loading and management.
package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dvmodel/dvctl/internal/flows"
)

// PlatformConfig contains the platform connection settings.
type PlatformConfig struct {
	// URL is the platform base URL, without the API prefix.
	// Env: DVCTL_PLATFORM_URL, VS_URL
	URL string `mapstructure:"url" yaml:"url"`

	// Username is the platform user.
	// Env: DVCTL_PLATFORM_USERNAME, VS_USER
	Username string `mapstructure:"username" yaml:"username"`

	// Password is the platform password. Prefer the environment over the file.
	// Env: DVCTL_PLATFORM_PASSWORD, VS_PASSWORD
	Password string `mapstructure:"password" yaml:"password,omitempty"`

	// Caller is sent as X-Caller on every request.
	Caller string `mapstructure:"caller" yaml:"caller"`

	// Timeout bounds each request, as a Go duration string.
	Timeout string `mapstructure:"timeout" yaml:"timeout"`
}

// LogConfig contains logging-related settings.
type LogConfig struct {
	// Timestamps controls whether timestamps are shown in log output.
	// Default: true. Override with --timestamps flag.
	Timestamps *bool `mapstructure:"timestamps" yaml:"timestamps,omitempty"`
}

// FlowsConfig contains the settings used by `flow setup`.
type FlowsConfig struct {
	Concurrency            int    `mapstructure:"concurrency" yaml:"concurrency"`
	SourceConnection       string `mapstructure:"sourceConnection" yaml:"sourceConnection"`
	SourceTargetConnection string `mapstructure:"sourceTargetConnection" yaml:"sourceTargetConnection"`
	BVTargetConnection     string `mapstructure:"bvTargetConnection" yaml:"bvTargetConnection"`
	SourceSchedule         string `mapstructure:"sourceSchedule" yaml:"sourceSchedule"`
	BVSchedule             string `mapstructure:"bvSchedule" yaml:"bvSchedule"`
	GroupTasks             bool   `mapstructure:"groupTasks" yaml:"groupTasks"`
}

// Config represents the dvctl configuration.
// Loaded from ~/.dvctl/config.yaml, validated against the embedded CUE schema.
type Config struct {
	Platform PlatformConfig `mapstructure:"platform" yaml:"platform"`
	Log      LogConfig      `mapstructure:"log" yaml:"log,omitempty"`
	Flows    FlowsConfig    `mapstructure:"flows" yaml:"flows"`
}

// DefaultConfig returns a Config with all default values populated.
// Used by `dvctl config init` to generate the initial config file.
func DefaultConfig() *Config {
	return &Config{
		Platform: PlatformConfig{
			Caller:  "dvctl",
			Timeout: "5m",
		},
		Flows: FlowsConfig(flows.DefaultSettings()),
	}
}

// Settings returns the flow settings in the form flows.Setup takes.
func (f FlowsConfig) Settings() flows.Settings {
	return flows.Settings(f)
}

// RequestTimeout parses Platform.Timeout. An empty value returns zero.
func (c *Config) RequestTimeout() (time.Duration, error) {
	if c.Platform.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Platform.Timeout)
	if err != nil {
		return 0, fmt.Errorf("platform.timeout: %w", err)
	}
	return d, nil
}

// Marshal renders the config as YAML. The password is never written.
func (c *Config) Marshal() ([]byte, error) {
	out := *c
	out.Platform.Password = ""
	return yaml.Marshal(&out)
}
