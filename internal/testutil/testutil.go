// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// MustChdir switches into dir and returns a func that switches back.
func MustChdir(t testing.TB, dir string) func() {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir %s: %v", dir, err)
	}
	return func() {
		if err := os.Chdir(prev); err != nil {
			t.Errorf("chdir back to %s: %v", prev, err)
		}
	}
}

// MustSetenv sets key and returns a func restoring its previous state,
// unsetting it if it was absent. Tests that can use t.Setenv should.
func MustSetenv(t testing.TB, key, value string) func() {
	t.Helper()
	prev, had := os.LookupEnv(key)
	if err := os.Setenv(key, value); err != nil {
		t.Fatalf("setenv %s: %v", key, err)
	}
	return func() {
		var err error
		if had {
			err = os.Setenv(key, prev)
		} else {
			err = os.Unsetenv(key)
		}
		if err != nil {
			t.Errorf("restore env %s: %v", key, err)
		}
	}
}

// MustMkdirAll is os.MkdirAll that fails the test on error.
func MustMkdirAll(t testing.TB, path string, perm os.FileMode) {
	t.Helper()
	if err := os.MkdirAll(path, perm); err != nil {
		t.Fatalf("mkdir %s: %v", path, err)
	}
}

// MustWriteFile writes content to path with 0644 permissions, creating any
// missing parent directories. Used to lay out fake pipeline trees and params
// files.
func MustWriteFile(t testing.TB, path, content string) {
	t.Helper()
	MustMkdirAll(t, filepath.Dir(path), 0o755)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
