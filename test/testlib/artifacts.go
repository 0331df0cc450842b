// Copyright 2026 the Mystapp contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package testlib

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
	"k8s.io/utils/clock"

	"go.mystapp.dev/internal/config"
	"go.mystapp.dev/internal/plog"
	"go.mystapp.dev/internal/timing"
)

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// ArtifactName turns a test name into something usable as a file name.
func ArtifactName(t *testing.T) string {
	return unsafeNameChars.ReplaceAllString(t.Name(), "-")
}

// ArtifactDir returns the directory that collects the files written by the current test, creating it.
func ArtifactDir(t *testing.T, cfg *config.Config) string {
	t.Helper()
	dir := filepath.Join(cfg.OutputDir, ArtifactName(t))
	require.NoError(t, os.MkdirAll(dir, 0o755))
	return dir
}

// Attach logs paths so they show up next to the test's output.
func Attach(t *testing.T, paths ...string) {
	t.Helper()
	for _, path := range paths {
		t.Logf("attached %s", path)
	}
}

// Timings returns a recorder whose timings are written into the test's artifact directory when the test
// finishes, whether or not it passed.
func Timings(t *testing.T, cfg *config.Config) *timing.Recorder {
	t.Helper()
	rec := timing.New(clock.RealClock{}, plog.New().WithValues("test", t.Name()))
	t.Cleanup(func() {
		if rec.Set().Len() == 0 {
			return
		}
		paths, err := rec.Write(ArtifactDir(t, cfg), ArtifactName(t))
		if err != nil {
			t.Errorf("could not write timings: %v", err)
			return
		}
		Attach(t, paths...)
	})
	return rec
}
