//go:build integration

package integration

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// FixturesDir returns the path to the fixtures directory
func FixturesDir(t *testing.T) string {
	t.Helper()
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get current file path")
	}
	return filepath.Join(filepath.Dir(filename), "fixtures")
}

// SumTaskDir returns the path to the "sum" task fixtures
func SumTaskDir(t *testing.T) string {
	t.Helper()
	return filepath.Join(FixturesDir(t), "sum")
}

// TempConfigPath returns a config file path in a fresh temp directory
func TempConfigPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "judgerun.toml")
}

// CopyFixturesToTemp copies the sum task to a temp directory and installs
// solution as its executable. Returns the task directory.
func CopyFixturesToTemp(t *testing.T, solution string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell solutions are not supported on windows")
	}
	dst := filepath.Join(t.TempDir(), "sum")

	if err := copyDir(SumTaskDir(t), dst); err != nil {
		t.Fatalf("Failed to copy fixtures: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dst, "sum"), []byte("#!/bin/sh\n"+solution+"\n"), 0755); err != nil {
		t.Fatalf("Failed to write solution: %v", err)
	}

	return dst
}

// copyDir recursively copies a directory
func copyDir(src, dst string) error {
	return filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		// Get relative path
		relPath, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}

		targetPath := filepath.Join(dst, relPath)

		if info.IsDir() {
			return os.MkdirAll(targetPath, 0755)
		}

		// Copy file
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		return os.WriteFile(targetPath, data, 0644)
	})
}
