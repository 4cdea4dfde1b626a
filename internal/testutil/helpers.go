// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// SiteMarker is the file that makes a directory a managed site.
const SiteMarker = "wp-config.php"

// RequireBinary skips the test if name is not on PATH.
func RequireBinary(t *testing.T, name string) {
	t.Helper()
	if _, err := exec.LookPath(name); err != nil {
		t.Skipf("Skipping test: %s not available", name)
	}
}

// MakeSite creates <sitesRoot>/<id> with its marker file and returns the
// site root.
func MakeSite(t *testing.T, sitesRoot, id string) string {
	t.Helper()
	root := filepath.Join(sitesRoot, id)
	require.NoError(t, os.MkdirAll(root, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, SiteMarker), []byte("<?php\n"), 0644))
	return root
}

// WriteFile writes content to dir/name and returns the path.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}
