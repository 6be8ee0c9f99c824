package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveConfigPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	defaultPath := filepath.Join(home, ".dvctl", "config.yaml")

	t.Run("flag precedence", func(t *testing.T) {
		t.Setenv(EnvConfig, "/env/config.yaml")
		rv, err := ResolveConfigPath("/flag/config.yaml")
		require.NoError(t, err)
		assert.Equal(t, "/flag/config.yaml", rv.Value)
		assert.Equal(t, SourceFlag, rv.Source)
		assert.Equal(t, "/env/config.yaml", rv.Shadowed[SourceEnv])
		assert.Equal(t, defaultPath, rv.Shadowed[SourceDefault])
	})

	t.Run("env precedence", func(t *testing.T) {
		t.Setenv(EnvConfig, "/env/config.yaml")
		rv, err := ResolveConfigPath("")
		require.NoError(t, err)
		assert.Equal(t, "/env/config.yaml", rv.Value)
		assert.Equal(t, SourceEnv, rv.Source)
		assert.Equal(t, EnvConfig, rv.Env)
		assert.NotContains(t, rv.Shadowed, SourceFlag)
	})

	t.Run("default", func(t *testing.T) {
		t.Setenv(EnvConfig, "")
		rv, err := ResolveConfigPath("")
		require.NoError(t, err)
		assert.Equal(t, defaultPath, rv.Value)
		assert.Equal(t, SourceDefault, rv.Source)
		assert.Empty(t, rv.Shadowed)
	})
}

func TestResolve(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOME", t.TempDir())
	configFile := writeConfig(t, `
platform:
  url: https://file.example.com
  username: file-user
`)
	t.Setenv("VS_PASSWORD", "pw")

	r, err := Resolve(ResolveOptions{ConfigFlag: configFile, UserFlag: "flag-user"})
	require.NoError(t, err)

	assert.Equal(t, configFile, r.ConfigPath.Value)
	assert.Equal(t, SourceConfig, r.URL.Source)
	assert.Equal(t, SourceFlag, r.Username.Source)
	assert.Equal(t, "file-user", r.Username.Shadowed[SourceConfig])
	assert.True(t, r.Password.Secret)
	assert.Equal(t, "VS_PASSWORD", r.Password.Env)

	assert.Equal(t, "https://file.example.com", r.Config.Platform.URL)
	assert.Equal(t, "flag-user", r.Config.Platform.Username)
	assert.Equal(t, "pw", r.Config.Platform.Password)
	assert.Len(t, r.Values(), 4)
}

func TestResolve_MissingConfigFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOME", t.TempDir())

	r, err := Resolve(ResolveOptions{URLFlag: "https://flag.example.com"})
	require.NoError(t, err)
	assert.Equal(t, SourceDefault, r.ConfigPath.Source)
	assert.Equal(t, "https://flag.example.com", r.Config.Platform.URL)
	assert.Equal(t, 4, r.Config.Flows.Concurrency)
}

func TestDisplayMasksSecrets(t *testing.T) {
	assert.Equal(t, "****", display(ResolvedValue{Secret: true}, "pw"))
	assert.Equal(t, "", display(ResolvedValue{Secret: true}, ""))
	assert.Equal(t, "admin", display(ResolvedValue{}, "admin"))
}
