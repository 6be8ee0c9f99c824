// Package testutil provides test helpers for dvctl tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// isolatedEnv lists the variables dvctl reads. IsolateHome clears them.
var isolatedEnv = []string{
	"DVCTL_CONFIG",
	"DVCTL_PLATFORM_URL", "DVCTL_PLATFORM_USERNAME", "DVCTL_PLATFORM_PASSWORD",
	"DVCTL_PLATFORM_CALLER", "DVCTL_PLATFORM_TIMEOUT", "DVCTL_LOG_TIMESTAMPS",
	"VS_URL", "VS_USER", "VS_PASSWORD",
}

// IsolateHome points HOME at a fresh temp directory and clears the dvctl
// environment for the duration of the test. It returns the new HOME.
func IsolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, name := range isolatedEnv {
		t.Setenv(name, "")
	}
	return home
}

// FixturePath returns the absolute path to a test fixture.
func FixturePath(t *testing.T, parts ...string) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}

	// Walk up to find tests/fixtures
	dir := wd
	for {
		fixturesPath := filepath.Join(dir, "tests", "fixtures")
		if _, err := os.Stat(fixturesPath); err == nil {
			return filepath.Join(append([]string{fixturesPath}, parts...)...)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatalf("could not find tests/fixtures directory from %s", wd)
		}
		dir = parent
	}
}

// WriteFile creates a file with the given content in the specified directory.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create parent dirs for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write file %s: %v", path, err)
	}
	return path
}

// CopyFixture copies a fixture directory to a temporary location.
func CopyFixture(t *testing.T, fixtureName string) string {
	t.Helper()
	src := FixturePath(t, fixtureName)
	dst := t.TempDir()

	if err := copyDir(src, dst); err != nil {
		t.Fatalf("failed to copy fixture %s: %v", fixtureName, err)
	}
	return dst
}

func copyDir(src, dst string) error {
	return filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		dstPath := filepath.Join(dst, relPath)

		if info.IsDir() {
			return os.MkdirAll(dstPath, 0o755)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		return os.WriteFile(dstPath, data, 0o644)
	})
}
