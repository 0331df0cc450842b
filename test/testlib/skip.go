// Copyright 2026 the Mystapp contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package testlib

import (
	"errors"
	"os/exec"
	"strings"
	"testing"
)

// SkipUnlessIntegration skips the current test if `-short` has been passed to `go test`.
func SkipUnlessIntegration(t *testing.T) {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test because of '-short' flag")
	}
}

// SkipWhenBrowserIsUnavailable skips the current test when err says Chrome could not be started
// because it is not installed.
func SkipWhenBrowserIsUnavailable(t *testing.T, err error) {
	t.Helper()

	if err == nil {
		return
	}
	if errors.Is(err, exec.ErrNotFound) || strings.Contains(err.Error(), "executable file not found") {
		t.Skipf("browser test requires Chrome or Chromium on the PATH: %v", err)
	}
}
