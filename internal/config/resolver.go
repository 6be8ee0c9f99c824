package config

import (
	"os"

	"github.com/dvmodel/dvctl/internal/output"
)

// ConfigSource indicates where a configuration value came from.
type ConfigSource string

const (
	// SourceFlag indicates value came from command-line flag.
	SourceFlag ConfigSource = "flag"
	// SourceEnv indicates value came from environment variable.
	SourceEnv ConfigSource = "env"
	// SourceConfig indicates value came from config file.
	SourceConfig ConfigSource = "config"
	// SourceDefault indicates value is the built-in default.
	SourceDefault ConfigSource = "default"
)

// ResolvedValue is a resolved setting and where it came from.
type ResolvedValue struct {
	Key    string
	Value  string
	Source ConfigSource

	// Env is the variable name when Source is SourceEnv.
	Env string

	// Shadowed contains values that were overridden by higher precedence.
	Shadowed map[ConfigSource]string

	// Secret values are masked when logged.
	Secret bool
}

type candidate struct {
	source ConfigSource
	value  string
}

// resolve picks the first non-empty candidate and records the rest as
// shadowed. Candidates are given in precedence order.
func resolve(key string, candidates ...candidate) ResolvedValue {
	rv := ResolvedValue{Key: key, Shadowed: make(map[ConfigSource]string)}
	for _, c := range candidates {
		if c.value == "" {
			continue
		}
		if rv.Source == "" {
			rv.Value = c.value
			rv.Source = c.source
			continue
		}
		rv.Shadowed[c.source] = c.value
	}
	return rv
}

// ResolveConfigPath resolves the config file path using precedence:
// (1) --config flag, (2) DVCTL_CONFIG env, (3) ~/.dvctl/config.yaml default
func ResolveConfigPath(flagValue string) (ResolvedValue, error) {
	paths, err := DefaultPaths()
	if err != nil {
		return ResolvedValue{}, err
	}

	envValue := os.Getenv(EnvConfig)
	rv := resolve("config",
		candidate{SourceFlag, flagValue},
		candidate{SourceEnv, envValue},
		candidate{SourceDefault, paths.ConfigFile},
	)
	if rv.Source == SourceEnv {
		rv.Env = EnvConfig
	}
	return rv, nil
}

// ResolveOptions carries the global flag values that take part in resolution.
type ResolveOptions struct {
	ConfigFlag string
	URLFlag    string
	UserFlag   string
}

// Resolved is the loaded configuration with the platform settings resolved.
type Resolved struct {
	Config     *Config
	ConfigPath ResolvedValue
	URL        ResolvedValue
	Username   ResolvedValue
	Password   ResolvedValue
}

// Values returns the resolved settings in display order.
func (r *Resolved) Values() []ResolvedValue {
	return []ResolvedValue{r.ConfigPath, r.URL, r.Username, r.Password}
}

// Resolve locates and loads the config file, then resolves the platform
// connection settings against flags and the environment.
func Resolve(opts ResolveOptions) (*Resolved, error) {
	path, err := ResolveConfigPath(opts.ConfigFlag)
	if err != nil {
		return nil, err
	}

	loader := NewLoader()
	cfg, err := loader.Load(path.Value)
	if err != nil {
		return nil, err
	}

	r := &Resolved{
		Config:     cfg,
		ConfigPath: path,
		URL:        loader.Resolve("platform.url", opts.URLFlag),
		Username:   loader.Resolve("platform.username", opts.UserFlag),
		Password:   loader.Resolve("platform.password", ""),
	}
	r.Password.Secret = true

	cfg.Platform.URL = r.URL.Value
	cfg.Platform.Username = r.Username.Value
	cfg.Platform.Password = r.Password.Value
	return r, nil
}

// LogResolvedValues logs configuration resolution at DEBUG level.
func LogResolvedValues(values []ResolvedValue) {
	for _, v := range values {
		output.Debug("config value resolved",
			"key", v.Key,
			"value", display(v, v.Value),
			"source", v.Source,
		)
		for source, shadowed := range v.Shadowed {
			output.Debug("  shadowed by higher precedence",
				"key", v.Key,
				"shadowed_source", source,
				"shadowed_value", display(v, shadowed),
			)
		}
	}
}

func display(v ResolvedValue, value string) string {
	if v.Secret && value != "" {
		return "****"
	}
	return value
}
