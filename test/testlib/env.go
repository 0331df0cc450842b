// Copyright 2026 the Mystapp contributors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package testlib

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"go.mystapp.dev/internal/config"
	"go.mystapp.dev/internal/credentials"
	"go.mystapp.dev/internal/datefill"
	"go.mystapp.dev/internal/locator"
	"go.mystapp.dev/internal/plog"
)

//nolint:gochecknoglobals
var (
	memoizedConfigsByTest sync.Map
	setLogSpecOnce        sync.Once
)

// Config loads the suite configuration from the environment, once per test. It implies
// SkipUnlessIntegration.
func Config(t *testing.T) *config.Config {
	if existing, exists := memoizedConfigsByTest.Load(t); exists {
		return existing.(*config.Config)
	}
	t.Helper()
	SkipUnlessIntegration(t)

	cfg, err := config.FromEnv()
	require.NoError(t, err)

	setLogSpecOnce.Do(func() {
		require.NoError(t, plog.ValidateAndSetLogLevelAndFormatGlobally(cfg.Log))
	})

	memoizedConfigsByTest.Store(t, cfg)
	return cfg
}

// DeployedConfig is Config for scenarios that run against a real deployment. The test is skipped
// when no base URL was configured.
func DeployedConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := Config(t)
	if _, err := cfg.LoginURL(); err != nil {
		SkipWhenNotConfigured(t, err)
	}
	return cfg
}

// LocalConfig is Config pointed at a server started by the test itself, usually a fakeapp. Selector
// overrides, credential sources, date settings and capture filters from the environment are dropped,
// since they describe the deployed application.
func LocalConfig(t *testing.T, baseURL string, creds credentials.Source) *config.Config {
	t.Helper()
	local := *Config(t)
	local.BaseURL = baseURL
	local.LoginPath = "/login"
	local.Credentials = creds
	local.Selectors = map[locator.Field]string{}
	local.APILatencyPattern = nil
	local.Capture.Filter = nil
	local.StartDate, local.EndDate, local.GridPath = "", "", ""
	local.DateFormat = datefill.MonthFirst
	return &local
}

// Credentials resolves count credentials, skipping the test when the environment cannot supply them.
func Credentials(t *testing.T, cfg *config.Config, count int) []credentials.Credential {
	t.Helper()
	creds, err := credentials.Resolve(cfg.Credentials, count)
	SkipWhenNotConfigured(t, err)
	return creds
}

// SkipWhenNotConfigured turns a configuration error into a skip. Any other error fails the test.
func SkipWhenNotConfigured(t *testing.T, err error) {
	t.Helper()
	if errors.Is(err, config.ErrNotConfigured) || errors.Is(err, credentials.ErrNotConfigured) {
		t.Skipf("skipping: %v", err)
	}
	require.NoError(t, err)
}
