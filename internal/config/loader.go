package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Environment variable prefix for dvctl configuration.
const envPrefix = "DVCTL"

// envBindings lists the environment variables bound to each key, in the order
// they are consulted. The VS_* names are kept for existing deployments.
var envBindings = map[string][]string{
	"platform.url":      {"DVCTL_PLATFORM_URL", "VS_URL"},
	"platform.username": {"DVCTL_PLATFORM_USERNAME", "VS_USER"},
	"platform.password": {"DVCTL_PLATFORM_PASSWORD", "VS_PASSWORD"},
	"platform.caller":   {"DVCTL_PLATFORM_CALLER"},
	"platform.timeout":  {"DVCTL_PLATFORM_TIMEOUT"},
	"log.timestamps":    {"DVCTL_LOG_TIMESTAMPS"},
}

// Loader handles loading and merging configuration from multiple sources.
type Loader struct {
	// v merges defaults, the config file and the environment.
	v *viper.Viper
	// file holds the config file alone, for reporting shadowed values.
	file *viper.Viper

	defaults map[string]string
}

// NewLoader creates a new configuration loader.
func NewLoader() *Loader {
	v := viper.New()

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, names := range envBindings {
		_ = v.BindEnv(append([]string{key}, names...)...)
	}

	defaults := map[string]string{}
	def := DefaultConfig()
	for key, value := range map[string]any{
		"platform.url":                 def.Platform.URL,
		"platform.username":            def.Platform.Username,
		"platform.password":            def.Platform.Password,
		"platform.caller":              def.Platform.Caller,
		"platform.timeout":             def.Platform.Timeout,
		"flows.concurrency":            def.Flows.Concurrency,
		"flows.sourceConnection":       def.Flows.SourceConnection,
		"flows.sourceTargetConnection": def.Flows.SourceTargetConnection,
		"flows.bvTargetConnection":     def.Flows.BVTargetConnection,
		"flows.sourceSchedule":         def.Flows.SourceSchedule,
		"flows.bvSchedule":             def.Flows.BVSchedule,
		"flows.groupTasks":             def.Flows.GroupTasks,
	} {
		v.SetDefault(key, value)
		defaults[key] = fmt.Sprint(value)
	}

	return &Loader{v: v, file: viper.New(), defaults: defaults}
}

// Load loads configuration from the given file path.
// If configFile is empty, it uses the default config file path.
// A missing file is not an error. An existing file is validated against the
// schema before use. Environment variables take precedence over file values.
func (l *Loader) Load(configFile string) (*Config, error) {
	if configFile == "" {
		var err error
		configFile, err = GetConfigFile()
		if err != nil {
			return nil, fmt.Errorf("getting config file path: %w", err)
		}
	}

	expandedPath, err := ExpandPath(configFile)
	if err != nil {
		return nil, fmt.Errorf("expanding config path: %w", err)
	}

	exists, err := ConfigFileExists(expandedPath)
	if err != nil {
		return nil, fmt.Errorf("checking config file: %w", err)
	}

	if exists {
		validator, err := NewValidator()
		if err != nil {
			return nil, err
		}
		if err := validator.ValidateFile(expandedPath); err != nil {
			return nil, err
		}

		for _, v := range []*viper.Viper{l.v, l.file} {
			v.SetConfigFile(expandedPath)
			v.SetConfigType("yaml")
			if err := v.ReadInConfig(); err != nil && !os.IsNotExist(err) {
				return nil, fmt.Errorf("reading config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// Resolve resolves a string key using precedence:
// (1) flag, (2) bound environment variables, (3) config file, (4) default.
// Load must have been called first for the config file to be consulted.
func (l *Loader) Resolve(key, flagValue string) ResolvedValue {
	envName, envValue := lookupEnv(key)
	var fileValue string
	if l.file.IsSet(key) {
		fileValue = l.file.GetString(key)
	}

	rv := resolve(key,
		candidate{SourceFlag, flagValue},
		candidate{SourceEnv, envValue},
		candidate{SourceConfig, fileValue},
		candidate{SourceDefault, l.defaults[key]},
	)
	if rv.Source == SourceEnv {
		rv.Env = envName
	}
	return rv
}

// lookupEnv returns the first bound environment variable that is set.
func lookupEnv(key string) (string, string) {
	for _, name := range envBindings[key] {
		if v, ok := os.LookupEnv(name); ok && v != "" {
			return name, v
		}
	}
	return "", ""
}
