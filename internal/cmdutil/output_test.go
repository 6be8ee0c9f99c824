package cmdutil

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvmodel/dvctl/internal/cmdtypes"
	"github.com/dvmodel/dvctl/internal/config"
	oerrors "github.com/dvmodel/dvctl/internal/errors"
	"github.com/dvmodel/dvctl/internal/output"
	"github.com/dvmodel/dvctl/internal/platform"
	"github.com/dvmodel/dvctl/internal/platform/platformtest"
)

func TestFail(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"not found", oerrors.NewNotFoundError("project x", nil, ""), oerrors.ExitNotFound},
		{"release state", fmt.Errorf("resolving: %w", oerrors.ErrNoLockedRelease), oerrors.ExitReleaseState},
		{"permission", oerrors.ErrPermission, oerrors.ExitPermissionDenied},
		{"plain", errors.New("boom"), oerrors.ExitGeneralError},
		{"already coded", &ExitError{Code: 42, Err: errors.New("x")}, 42},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Fail(tt.err)
			var exitErr *ExitError
			require.True(t, errors.As(err, &exitErr))
			assert.Equal(t, tt.wantCode, exitErr.Code)
			assert.True(t, errors.Is(err, tt.err))
		})
	}

	assert.NoError(t, Fail(nil))
}

func TestWriteResult(t *testing.T) {
	v := map[string]int{"flows": 3}

	var buf bytes.Buffer
	require.NoError(t, WriteResult(&buf, output.FormatTable, v, func() string { return "table\n" }))
	assert.Equal(t, "table\n", buf.String())

	buf.Reset()
	require.NoError(t, WriteResult(&buf, output.FormatJSON, v, nil))
	assert.JSONEq(t, `{"flows":3}`, buf.String())

	buf.Reset()
	require.NoError(t, WriteResult(&buf, output.FormatYAML, v, nil))
	assert.Equal(t, "flows: 3\n", buf.String())
}

func TestNewPlatformClient(t *testing.T) {
	t.Run("not loaded", func(t *testing.T) {
		_, err := NewPlatformClient(&cmdtypes.GlobalConfig{})
		var exitErr *ExitError
		require.True(t, errors.As(err, &exitErr))
		assert.Equal(t, ExitGeneralError, exitErr.Code)
	})

	t.Run("load error is reported", func(t *testing.T) {
		loadErr := oerrors.NewValidationError("bad key", "config.yaml", "", "")
		_, err := NewPlatformClient(&cmdtypes.GlobalConfig{LoadErr: loadErr})
		assert.Equal(t, oerrors.ExitValidationError, oerrors.ExitCodeFromError(err))
	})

	t.Run("missing url", func(t *testing.T) {
		_, err := NewPlatformClient(&cmdtypes.GlobalConfig{Config: config.DefaultConfig()})
		assert.Equal(t, oerrors.ExitValidationError, oerrors.ExitCodeFromError(err))
	})

	t.Run("bad timeout", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.Platform.URL = "https://vault.example.com"
		cfg.Platform.Username = "admin"
		cfg.Platform.Timeout = "soon"
		_, err := NewPlatformClient(&cmdtypes.GlobalConfig{Config: cfg})
		assert.True(t, errors.Is(err, oerrors.ErrValidation))
	})

	t.Run("rest client", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.Platform.URL = "https://vault.example.com"
		cfg.Platform.Username = "admin"
		c, err := NewPlatformClient(&cmdtypes.GlobalConfig{Config: cfg})
		require.NoError(t, err)
		assert.NotNil(t, c)
	})

	t.Run("factory override", func(t *testing.T) {
		fake := platformtest.NewFake()
		c, err := NewPlatformClient(&cmdtypes.GlobalConfig{
			Config:    config.DefaultConfig(),
			NewClient: func(*config.Config) (platform.Client, error) { return fake, nil },
		})
		require.NoError(t, err)
		assert.Same(t, fake, c)
	})
}
