package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPaths(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	paths, err := DefaultPaths()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".dvctl"), paths.HomeDir)
	assert.Equal(t, filepath.Join(home, ".dvctl", "config.yaml"), paths.ConfigFile)
}

func TestGetConfigFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	t.Setenv(EnvConfig, "")
	path, err := GetConfigFile()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".dvctl", "config.yaml"), path)

	t.Setenv(EnvConfig, "/etc/dvctl.yaml")
	path, err = GetConfigFile()
	require.NoError(t, err)
	assert.Equal(t, "/etc/dvctl.yaml", path)
}

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"absolute", "/tmp/config.yaml", "/tmp/config.yaml"},
		{"relative", "config.yaml", "config.yaml"},
		{"tilde only", "~", home},
		{"tilde path", "~/.dvctl/config.yaml", filepath.Join(home, ".dvctl", "config.yaml")},
		{"other user", "~bob/config.yaml", "~bob/config.yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExpandPath(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConfigFileExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	exists, err := ConfigFileExists(path)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, os.WriteFile(path, nil, 0o600))
	exists, err = ConfigFileExists(path)
	require.NoError(t, err)
	assert.True(t, exists)
}
