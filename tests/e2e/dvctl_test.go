// Package e2e provides end-to-end tests for the dvctl binary.
package e2e

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvmodel/dvctl/internal/platform"
)

var dvctlBinary string

func TestMain(m *testing.M) {
	// Build the binary once for all tests
	tmpDir, err := os.MkdirTemp("", "dvctl-e2e-*")
	if err != nil {
		panic("failed to create temp dir: " + err.Error())
	}

	dvctlBinary = filepath.Join(tmpDir, "dvctl")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	cmd := exec.CommandContext(ctx, "go", "build", "-o", dvctlBinary, "../../cmd/dvctl")
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		cancel()
		os.RemoveAll(tmpDir)
		panic("failed to build dvctl binary: " + err.Error())
	}
	cancel()

	code := m.Run()
	os.RemoveAll(tmpDir)
	os.Exit(code)
}

// result is the outcome of one dvctl run.
type result struct {
	stdout string
	stderr string
	code   int
}

// runDVCTL runs the binary with HOME at home and the dvctl environment
// cleared, plus the given extra environment.
func runDVCTL(t *testing.T, home string, env []string, args ...string) result {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, dvctlBinary, args...)
	cmd.Dir = home
	cmd.Env = append(os.Environ(),
		"HOME="+home,
		"DVCTL_CONFIG=",
		"DVCTL_PLATFORM_URL=", "DVCTL_PLATFORM_USERNAME=", "DVCTL_PLATFORM_PASSWORD=",
		"VS_URL=", "VS_USER=", "VS_PASSWORD=",
	)
	cmd.Env = append(cmd.Env, env...)

	stdout, err := cmd.Output()
	res := result{stdout: string(stdout)}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.stderr = string(exitErr.Stderr)
		res.code = exitErr.ExitCode()
	} else {
		require.NoError(t, err)
	}
	return res
}

// newPlatform serves the login and project parameter routes.
func newPlatform(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["password"] != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"bad credentials"}`))
			return
		}
		_, _ = w.Write([]byte(`{"token":"tok"}`))
	})
	mux.HandleFunc("GET /api/v1/projects", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]platform.Project{{ID: 1, Name: "sales"}})
	})
	mux.HandleFunc("GET /api/v1/projects/1/parameters", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]platform.Parameter{
			{Name: "FMC_SCHEMA", Value: "fmc", Type: "TEXT", Description: "flow schema"},
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestE2E_Version(t *testing.T) {
	res := runDVCTL(t, t.TempDir(), nil, "version")
	require.Zero(t, res.code, res.stderr)
	assert.Contains(t, res.stdout, "dvctl version")
}

func TestE2E_ConfigInitAndVet(t *testing.T) {
	home := t.TempDir()

	res := runDVCTL(t, home, nil, "config", "init")
	require.Zero(t, res.code, res.stderr)
	assert.FileExists(t, filepath.Join(home, ".dvctl", "config.yaml"))

	res = runDVCTL(t, home, nil, "config", "vet")
	require.Zero(t, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Configuration is valid")

	res = runDVCTL(t, home, nil, "config", "init")
	assert.Equal(t, 2, res.code, "existing config without --force")
}

func TestE2E_ParamExport(t *testing.T) {
	srv := newPlatform(t)
	env := []string{"DVCTL_PLATFORM_URL=" + srv.URL, "VS_USER=admin", "VS_PASSWORD=secret"}

	res := runDVCTL(t, t.TempDir(), env, "param", "export", "sales", "-")
	require.Zero(t, res.code, res.stderr)
	assert.Equal(t, "name,value,type,description\nFMC_SCHEMA,fmc,TEXT,flow schema\n", res.stdout)
}

func TestE2E_ExitCodes(t *testing.T) {
	srv := newPlatform(t)

	tests := []struct {
		name string
		env  []string
		args []string
		want int
	}{
		{
			name: "missing url",
			args: []string{"param", "export", "sales", "-"},
			want: 2,
		},
		{
			name: "bad password",
			env:  []string{"VS_URL=" + srv.URL, "VS_USER=admin", "VS_PASSWORD=wrong"},
			args: []string{"param", "export", "sales", "-"},
			want: 4,
		},
		{
			name: "unknown project",
			env:  []string{"VS_URL=" + srv.URL, "VS_USER=admin", "VS_PASSWORD=secret"},
			args: []string{"param", "export", "finance", "-"},
			want: 5,
		},
		{
			name: "unreachable platform",
			env:  []string{"VS_URL=http://127.0.0.1:1", "VS_USER=admin"},
			args: []string{"param", "export", "sales", "-"},
			want: 3,
		},
		{
			name: "unknown technology",
			args: []string{"generate", "sales", "edw", "COBOL"},
			want: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := runDVCTL(t, t.TempDir(), tt.env, tt.args...)
			assert.Equal(t, tt.want, res.code, "stderr: %s", res.stderr)
			assert.NotEmpty(t, res.stderr)
		})
	}
}
